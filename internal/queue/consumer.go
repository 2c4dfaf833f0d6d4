package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// PurchaseConsumer appends every coins.purchased message to LogPath as one
// human-readable line.
type PurchaseConsumer struct {
    URL     string
    LogPath string
}

// Run connects to the broker, declares the durable queue and consumes until
// ctx is cancelled.  Connection failures are retried with exponential
// backoff; a message that cannot be handled is rejected without requeue so
// it cannot loop.
func (pc *PurchaseConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(pc.URL)
        if err != nil {
            log.Printf("purchase-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = pc.consume(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("purchase-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-t.C:
        return true
    case <-ctx.Done():
        return false
    }
}

func (pc *PurchaseConsumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("purchase-consumer: set QoS failed: %v", err)
    }
    if _, err := ch.QueueDeclare(CoinsPurchasedQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(CoinsPurchasedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := pc.Handle(d.Body); err != nil {
                log.Printf("purchase-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle decodes one message body and appends its log line.
func (pc *PurchaseConsumer) Handle(body []byte) error {
    var ev CoinsPurchasedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.UserID == "" {
        return errors.New("event without user_id")
    }
    if err := os.MkdirAll(filepath.Dir(pc.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(pc.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    line := fmt.Sprintf("[%s] Coins purchased | user_id=%s | user=%q | package=%q x%d | amount=%d | coins=%d | coupon=%s (%d) | balance=%d\n",
        ev.PurchasedAt, ev.UserID, ev.UserName, ev.PackageName, ev.Quantity, ev.Amount, ev.Coins, ev.CouponCode, ev.CouponValue, ev.Balance)
    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
