package events

import (
	"context"

	"github.com/nats-io/nats.go"

	"solace/internal/bootstrap/logging"
	"solace/internal/errs"
	"solace/internal/ports"
)

// NatsBus implements ports.EventBus over a NATS connection. Core NATS gives
// at-least-once semantics here because handlers republish on failure paths;
// ordering is never assumed downstream.
type NatsBus struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

func Connect(url string) (*NatsBus, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
	)
	if err != nil {
		return nil, errs.Wrapf(err, "connect nats at %s", url)
	}
	return &NatsBus{conn: conn}, nil
}

func (b *NatsBus) Publish(ctx context.Context, subject string, payload []byte) error {
	if err := b.conn.Publish(subject, payload); err != nil {
		return errs.Wrapf(err, "publish %s", subject)
	}
	return nil
}

func (b *NatsBus) Subscribe(subject string, queue string, handler ports.EventHandler) error {
	sub, err := b.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		ctx := logging.WithAttrs(context.Background())
		handler(ctx, msg.Data)
	})
	if err != nil {
		return errs.Wrapf(err, "subscribe %s", subject)
	}
	b.subs = append(b.subs, sub)
	return nil
}

// Drain unsubscribes and flushes pending messages before close.
func (b *NatsBus) Drain() error {
	for _, sub := range b.subs {
		if err := sub.Drain(); err != nil {
			return errs.Wrap(err, "drain subscription")
		}
	}
	return b.conn.Drain()
}
