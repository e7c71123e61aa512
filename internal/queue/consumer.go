package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/club-space-reservation/internal/logger"
)

// Consumer drains ReservationQueue and appends one line per event to an
// audit file (logs/reservation.log by default).
type Consumer struct {
    URL     string
    LogPath string
    Log     *logger.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  It runs
// a reconnect loop with exponential backoff capped at 30s; a message that
// cannot be handled is rejected without requeue so the loop keeps going.
func (c *Consumer) Run(ctx context.Context) error {
    if c.Log == nil {
        c.Log = logger.Nop()
    }
    if c.LogPath == "" {
        c.LogPath = filepath.Join("logs", "reservation.log")
    }

    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warnf("QUEUE", "consumer dial failed: %v; retrying in %s", err, backoff)
            if !sleepCtx(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warnf("QUEUE", "consume loop ended: %v; reconnecting", err)
        if !sleepCtx(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warnf("QUEUE", "set QoS failed: %v", err)
    }
    if _, err := declareQueue(ch); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(ReservationQueue, "", false, false, false, false, nil)
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
            if err := c.HandleMessage(d.Body); err != nil {
                c.Log.Errorf("QUEUE", "handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one event body and appends its audit line.
func (c *Consumer) HandleMessage(body []byte) error {
    var ev ReservationEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" {
        return errors.New("event without type")
    }
    if err := os.MkdirAll(filepath.Dir(c.LogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    f, err := os.OpenFile(c.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    if _, err := f.WriteString(FormatLine(ev)); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}

// FormatLine renders an event as a single human-friendly audit line.
func FormatLine(ev ReservationEvent) string {
    at := ev.OccurredAt.UTC().Format(time.RFC3339)
    switch ev.Type {
    case EventBulkDeleted:
        return fmt.Sprintf("[%s] %s | status=%s | count=%d | event_id=%s\n",
            at, ev.Type, ev.NewStatus, ev.Count, ev.EventID)
    case EventStatusChanged:
        return fmt.Sprintf("[%s] %s | reservation_id=%d | club_id=%d | %s -> %s | event_id=%s\n",
            at, ev.Type, ev.ReservationID, ev.ClubID, ev.OldStatus, ev.NewStatus, ev.EventID)
    default:
        return fmt.Sprintf("[%s] %s | reservation_id=%d | club_id=%d | space_id=%d | title=%q | event_id=%s\n",
            at, ev.Type, ev.ReservationID, ev.ClubID, ev.SpaceID, ev.Title, ev.EventID)
    }
}
