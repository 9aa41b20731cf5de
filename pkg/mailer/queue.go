package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"blog-backend/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// publisher QueueSender 所需的 channel 能力
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// dialFunc 建立连接并返回已声明队列的 channel
type dialFunc func() (io.Closer, publisher, error)

// QueueSender 将邮件写入 RabbitMQ 持久队列，由 mail_worker 异步发送
// 连接或 channel 断开后，下一次 Send 会重新建立连接
type QueueSender struct {
	mu    sync.Mutex
	dial  dialFunc
	conn  io.Closer
	ch    publisher
	queue string
}

func NewQueueSender(url, queue string) (*QueueSender, error) {
	q := &QueueSender{queue: queue, dial: amqpDialer(url, queue)}
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, err := q.channel(); err != nil {
		return nil, err
	}
	return q, nil
}

func amqpDialer(url, queue string) dialFunc {
	return func() (io.Closer, publisher, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, fmt.Errorf("连接 RabbitMQ 失败: %w", err)
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("打开 RabbitMQ channel 失败: %w", err)
		}
		if err := DeclareQueue(ch, queue); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, nil, err
		}
		return conn, ch, nil
	}
}

// channel 返回可用的 channel，已关闭时重新拨号；调用方需持有 q.mu
func (q *QueueSender) channel() (publisher, error) {
	if q.ch != nil && !q.ch.IsClosed() {
		return q.ch, nil
	}
	q.reset()
	conn, ch, err := q.dial()
	if err != nil {
		return nil, err
	}
	q.conn, q.ch = conn, ch
	return ch, nil
}

func (q *QueueSender) reset() {
	if q.ch != nil {
		_ = q.ch.Close()
		q.ch = nil
	}
	if q.conn != nil {
		_ = q.conn.Close()
		q.conn = nil
	}
}

// DeclareQueue 声明持久队列，生产者与消费者共用
func DeclareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("声明队列 %s 失败: %w", queue, err)
	}
	return nil
}

func (q *QueueSender) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	// 连接在两次发送之间断开时重连后再试一次
	for attempt := 0; attempt < 2; attempt++ {
		var ch publisher
		ch, err = q.channel()
		if err != nil {
			break
		}
		err = ch.PublishWithContext(ctx,
			"",      // 默认 exchange
			q.queue, // routing key = 队列名
			false,   // mandatory
			false,   // immediate
			pub,
		)
		if err == nil || !errors.Is(err, amqp.ErrClosed) {
			break
		}
		logger.Warn("RabbitMQ 连接已断开，重新连接", zap.String("queue", q.queue))
		q.reset()
	}
	if err != nil {
		err = fmt.Errorf("邮件入队失败: %w", err)
	}
	return observe("queue", err)
}

// Close 关闭连接
func (q *QueueSender) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reset()
}

// Outcome worker 对单条消息的处理结果
type Outcome int

const (
	Ack     Outcome = iota // 发送成功
	Requeue                // 暂时失败，重新入队
	Drop                   // 消息损坏，丢弃
)

// Worker 消费队列中的邮件并交给实际发送方
type Worker struct {
	sender  Sender
	timeout time.Duration
}

func NewWorker(sender Sender, timeout time.Duration) *Worker {
	return &Worker{sender: sender, timeout: timeout}
}

// Handle 处理一条消息体
func (w *Worker) Handle(ctx context.Context, body []byte) (Outcome, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Drop, fmt.Errorf("无法解析邮件消息: %w", err)
	}
	if msg.To == "" {
		return Drop, fmt.Errorf("邮件缺少收件人")
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sender.Send(c, msg); err != nil {
		return Requeue, err
	}
	return Ack, nil
}
