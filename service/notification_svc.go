package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/metrics"
	"github.com/fixitnow/fixitnow/types"
	"github.com/fixitnow/fixitnow/webpush"
)

// Notify stores a notification for the receiver and pushes it to their
// live channel. Repeats of the same sender/receiver/content pair inside
// the dedup window collapse onto the stored row and are not re-pushed.
func (svc *Service) Notify(ctx context.Context, in types.CreateNotification) (types.Notification, error) {
	var out types.Notification

	if err := in.Validate(); err != nil {
		return out, err
	}

	out, created, err := svc.Postgres.CreateNotification(ctx, in)
	if err != nil {
		return out, fmt.Errorf("create notification: %w", err)
	}

	if !created {
		metrics.NotificationsTotal.WithLabelValues("deduplicated").Inc()
		return out, nil
	}

	metrics.NotificationsTotal.WithLabelValues("created").Inc()

	n := out
	svc.background(func(ctx context.Context) error {
		if err := svc.Broker.PublishNotification(n.ReceiverID, n); err != nil {
			return fmt.Errorf("publish notification: %w", err)
		}
		return nil
	})

	if svc.Push.Enabled() && !svc.Presence.IsOnline(out.ReceiverID) {
		svc.background(func(ctx context.Context) error {
			return svc.pushNotification(ctx, n)
		})
	}

	return out, nil
}

func (svc *Service) pushNotification(ctx context.Context, n types.Notification) error {
	subs, err := svc.Postgres.PushSubscriptions(ctx, n.ReceiverID)
	if err != nil {
		return fmt.Errorf("push subscriptions: %w", err)
	}

	for _, sub := range subs {
		err := svc.Push.Send(ctx, sub, n)
		if errors.Is(err, webpush.ErrSubscriptionGone) {
			if err := svc.Postgres.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
				return fmt.Errorf("delete stale push subscription: %w", err)
			}
			continue
		}
		if err != nil {
			return fmt.Errorf("send web push: %w", err)
		}
	}

	return nil
}

// Notifications lists the requester's inbox, newest first.
func (svc *Service) Notifications(ctx context.Context, in types.ListNotifications) ([]types.Notification, error) {
	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return nil, errs.Unauthenticated
	}

	in.SetReceiverID(usr.ID)

	nn, err := svc.Postgres.Notifications(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}

	return nn, nil
}

func (svc *Service) UnreadNotificationCount(ctx context.Context) (int64, error) {
	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return 0, errs.Unauthenticated
	}

	count, err := svc.Postgres.UnreadNotificationCount(ctx, usr.ID)
	if err != nil {
		return 0, fmt.Errorf("unread notification count: %w", err)
	}

	return count, nil
}

// MarkNotificationRead marks one notification as read. Only the
// receiver may do so; marking an already read notification is a no-op.
func (svc *Service) MarkNotificationRead(ctx context.Context, in types.ReadNotification) error {
	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetRequesterID(usr.ID)

	if err := in.Validate(); err != nil {
		return err
	}

	if err := svc.Postgres.MarkNotificationRead(ctx, in); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	return nil
}

func (svc *Service) MarkAllNotificationsRead(ctx context.Context) error {
	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	if err := svc.Postgres.MarkAllNotificationsRead(ctx, usr.ID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}

// MarkNotificationsFromSenderRead clears the unread state of every
// notification the requester got from one sender, typically when they
// open that conversation.
func (svc *Service) MarkNotificationsFromSenderRead(ctx context.Context, in types.ReadNotificationsFromSender) error {
	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return errs.Unauthenticated
	}

	in.SetReceiverID(usr.ID)

	if err := in.Validate(); err != nil {
		return err
	}

	if err := svc.Postgres.MarkNotificationsFromSenderRead(ctx, in); err != nil {
		return fmt.Errorf("mark notifications from sender read: %w", err)
	}

	return nil
}

// CreatePushSubscription registers a browser push endpoint for the
// requester, replacing any previous registration of the same endpoint.
func (svc *Service) CreatePushSubscription(ctx context.Context, in types.CreatePushSubscription) (types.PushSubscription, error) {
	var out types.PushSubscription

	usr, ok := auth.UserFromContext(ctx)
	if !ok {
		return out, errs.Unauthenticated
	}

	in.SetUserID(usr.ID)

	if err := in.Validate(); err != nil {
		return out, err
	}

	out, err := svc.Postgres.UpsertPushSubscription(ctx, in)
	if err != nil {
		return out, fmt.Errorf("upsert push subscription: %w", err)
	}

	return out, nil
}
