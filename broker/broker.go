// Package broker fans live chat traffic out over NATS. Every user has
// two private subjects, one for message echoes and one for notification
// pushes; gateway sessions subscribe to them and bridge onto the
// websocket. Delivery is best effort: history in postgres is the source
// of truth.
package broker

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/fixitnow/fixitnow/types"
)

type Broker struct {
	conn *nats.Conn
}

func New(conn *nats.Conn) *Broker {
	return &Broker{conn: conn}
}

func MessageSubject(userID string) string {
	return "fixitnow.messages." + userID
}

func NotificationSubject(userID string) string {
	return "fixitnow.notifications." + userID
}

func (b *Broker) PublishMessage(userID string, msg types.Message) error {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return fmt.Errorf("msgpack marshal message: %w", err)
	}

	if err := b.conn.Publish(MessageSubject(userID), payload); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	return nil
}

func (b *Broker) PublishNotification(userID string, n types.Notification) error {
	payload, err := msgpack.Marshal(n)
	if err != nil {
		return fmt.Errorf("msgpack marshal notification: %w", err)
	}

	if err := b.conn.Publish(NotificationSubject(userID), payload); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}

	return nil
}

// SubscribeMessages delivers every message published to the user's
// message subject. Decode failures are dropped; the callback never sees
// a partial value.
func (b *Broker) SubscribeMessages(userID string, fn func(types.Message)) (unsub func() error, err error) {
	sub, err := b.conn.Subscribe(MessageSubject(userID), func(m *nats.Msg) {
		var msg types.Message
		if err := msgpack.Unmarshal(m.Data, &msg); err != nil {
			return
		}
		fn(msg)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe messages: %w", err)
	}

	return sub.Unsubscribe, nil
}

func (b *Broker) SubscribeNotifications(userID string, fn func(types.Notification)) (unsub func() error, err error) {
	sub, err := b.conn.Subscribe(NotificationSubject(userID), func(m *nats.Msg) {
		var n types.Notification
		if err := msgpack.Unmarshal(m.Data, &n); err != nil {
			return
		}
		fn(n)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe notifications: %w", err)
	}

	return sub.Unsubscribe, nil
}
