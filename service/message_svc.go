package service

import (
	"context"
	"fmt"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/metrics"
	"github.com/fixitnow/fixitnow/types"
)

// SendMessage persists a direct message and routes it to the private
// channels of both participants. The sender receives their own copy so
// every open session of theirs converges on the same conversation.
func (svc *Service) SendMessage(ctx context.Context, in types.SendMessage) (types.Message, error) {
	var out types.Message

	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetSenderID(usr.ID)
	in.Content = svc.sanitizer.Sanitize(in.Content)

	if err := in.Validate(); err != nil {
		return out, err
	}

	if in.ReceiverID == usr.ID {
		return out, errs.NewInvalidArgumentError("receiver_id", "cannot message yourself")
	}

	out, err := svc.Postgres.CreateMessage(ctx, in)
	if err != nil {
		return out, fmt.Errorf("create message: %w", err)
	}

	metrics.MessagesRouted.Inc()

	msg := out
	svc.background(func(ctx context.Context) error {
		if err := svc.Broker.PublishMessage(msg.ReceiverID, msg); err != nil {
			return fmt.Errorf("publish message to receiver: %w", err)
		}
		if err := svc.Broker.PublishMessage(msg.SenderID, msg); err != nil {
			return fmt.Errorf("publish message to sender: %w", err)
		}
		return nil
	})

	// The notification row is written before returning so the inbox
	// can never miss a persisted message. A failure here is reported
	// but does not undo the send.
	_, err = svc.Notify(ctx, types.CreateNotification{
		SenderID:   out.SenderID,
		ReceiverID: out.ReceiverID,
		Content:    out.Content,
		SentAt:     out.SentAt,
	})
	if err != nil {
		select {
		case svc.errs <- fmt.Errorf("notify on message send: %w", err):
		default:
		}
	}

	return out, nil
}

// Messages lists the full conversation between the requester and
// another user, oldest first.
func (svc *Service) Messages(ctx context.Context, in types.ListMessages) ([]types.Message, error) {
	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	in.SetRequesterID(usr.ID)

	if err := in.Validate(); err != nil {
		return nil, err
	}

	mm, err := svc.Postgres.MessagesBetween(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("messages between: %w", err)
	}

	return mm, nil
}
