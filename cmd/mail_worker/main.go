package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"blog-backend/config"
	"blog-backend/pkg/logger"
	"blog-backend/pkg/mailer"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// 单封邮件的发送超时
const sendTimeout = 30 * time.Second

func main() {
	// 1. 加载配置与日志
	cfg := config.LoadConfig()
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	// 2. 实际发送方：配置了 Mailgun 时直接发送，否则只写日志
	var sender mailer.Sender = mailer.LogSender{}
	if cfg.Mail.MailgunDomain != "" && cfg.Mail.MailgunAPIKey != "" {
		sender = mailer.NewMailgun(cfg.Mail.MailgunDomain, cfg.Mail.MailgunAPIKey, cfg.Mail.From)
	}
	worker := mailer.NewWorker(sender, sendTimeout)

	// 3. 连接RabbitMQ
	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Fatal("RabbitMQ连接失败", zap.Error(err))
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal("打开RabbitMQ通道失败", zap.Error(err))
	}
	defer ch.Close()

	if err := mailer.DeclareQueue(ch, cfg.RabbitMQ.EmailQueue); err != nil {
		log.Fatal("声明邮件队列失败", zap.Error(err))
	}
	prefetch := cfg.RabbitMQ.Prefetch
	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		log.Fatal("设置预取数量失败", zap.Error(err))
	}

	deliveries, err := ch.Consume(cfg.RabbitMQ.EmailQueue, "blog-mail-worker", false, false, false, false, nil)
	if err != nil {
		log.Fatal("订阅邮件队列失败", zap.Error(err))
	}
	log.Info("邮件worker启动", zap.String("queue", cfg.RabbitMQ.EmailQueue), zap.Int("prefetch", prefetch))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. 消费循环
	for {
		select {
		case <-ctx.Done():
			log.Info("邮件worker退出")
			return
		case d, ok := <-deliveries:
			if !ok {
				log.Warn("邮件队列已关闭")
				return
			}
			handleDelivery(ctx, worker, d)
		}
	}
}

func handleDelivery(ctx context.Context, worker *mailer.Worker, d amqp.Delivery) {
	outcome, err := worker.Handle(ctx, d.Body)
	switch outcome {
	case mailer.Ack:
		_ = d.Ack(false)
	case mailer.Requeue:
		logger.Warn("邮件发送失败，重新入队", zap.String("message_id", d.MessageId), zap.Error(err))
		time.Sleep(time.Second)
		_ = d.Nack(false, true)
	default:
		logger.Error("丢弃无法处理的邮件消息", zap.String("message_id", d.MessageId), zap.Error(err))
		_ = d.Nack(false, false)
	}
}
