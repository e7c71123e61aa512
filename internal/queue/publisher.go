package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/club-space-reservation/internal/logger"
)

// Publisher sends reservation events to RabbitMQ.  Each publish dials its
// own connection so a broker outage never leaves a broken channel behind;
// errors are logged and returned so the caller can choose to ignore them.
type Publisher struct {
    url string
    log *logger.Logger
}

// NewPublisher builds a Publisher for the broker at url.
func NewPublisher(url string, log *logger.Logger) *Publisher {
    if log == nil {
        log = logger.Nop()
    }
    return &Publisher{url: url, log: log}
}

// Publish marshals ev and sends it, persistent, to ReservationQueue
// through the default exchange.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
    conn, err := amqp.Dial(p.url)
    if err != nil {
        p.log.Errorf("QUEUE", "dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.log.Errorf("QUEUE", "channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if _, err := declareQueue(ch); err != nil {
        p.log.Errorf("QUEUE", "queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        p.log.Errorf("QUEUE", "marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.EventID,
        Type:         ev.Type,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", ReservationQueue, false, false, pub); err != nil {
        p.log.Errorf("QUEUE", "publish %s failed: %v", ev.Type, err)
        return err
    }
    p.log.Debugf("QUEUE", "published %s id=%s", ev.Type, ev.EventID)
    return nil
}

// declareQueue is idempotent; durable so messages survive broker restarts.
func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
    return ch.QueueDeclare(
        ReservationQueue, // name
        true,             // durable
        false,            // autoDelete
        false,            // exclusive
        false,            // noWait
        nil,              // args
    )
}
