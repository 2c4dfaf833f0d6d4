// Package service holds adapters between the domain services and external
// infrastructure.  QueuePublisher delivers purchase events to RabbitMQ.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/coin-rewards/internal/queue"
)

// QueuePublisher publishes CoinsPurchasedEvent messages.  It dials the
// broker per message so a broker outage never blocks startup; errors are
// logged and returned so the caller can choose to ignore them.
type QueuePublisher struct {
    URL   string
    Queue string // defaults to queue.CoinsPurchasedQueue
}

func NewQueuePublisher(url string) *QueuePublisher {
    return &QueuePublisher{URL: url, Queue: queue.CoinsPurchasedQueue}
}

func (p *QueuePublisher) queueName() string {
    if p.Queue == "" {
        return queue.CoinsPurchasedQueue
    }
    return p.Queue
}

// PublishCoinsPurchased sends ev as a persistent JSON message through the
// default exchange, routed by queue name.
func (p *QueuePublisher) PublishCoinsPurchased(ctx context.Context, ev queue.CoinsPurchasedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.queueName(), true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", p.queueName(), false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
