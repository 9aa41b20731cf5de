package mailer

import (
	"context"
	"fmt"

	"blog-backend/config"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/metrics"

	"go.uber.org/zap"
)

// Message 一封待发送的邮件，HTML 可为空
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Sender 邮件发送方
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New 按配置创建发送方：log 只写日志，mailgun 直接发送，queue 写入 RabbitMQ 由 worker 发送
func New(cfg config.MailConfig, mq config.RabbitMQConfig) (Sender, error) {
	switch cfg.Driver {
	case "", "log":
		return &LogSender{}, nil
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			return nil, fmt.Errorf("mailgun 未配置 domain 或 api key")
		}
		return NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.From), nil
	case "queue":
		return NewQueueSender(mq.URL, mq.EmailQueue)
	default:
		return nil, fmt.Errorf("不支持的邮件驱动: %s", cfg.Driver)
	}
}

// LogSender 开发环境使用，仅记录日志
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info("邮件（仅日志）",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text),
	)
	metrics.EmailsTotal.WithLabelValues("log", "sent").Inc()
	return nil
}

func observe(driver string, err error) error {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	metrics.EmailsTotal.WithLabelValues(driver, result).Inc()
	return err
}
