package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"
	"github.com/nicolasparada/go-db"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/types"
)

const notificationColumnsStr = `
	notifications.id,
	notifications.sender_id,
	notifications.receiver_id,
	notifications.content,
	notifications.sent_at,
	notifications.is_read,
	notifications.created_at
`

// CreateNotification inserts an unread notification, unless one with
// the same sender, receiver and content already exists with sent_at
// inside the dedup window; then the existing record is returned and
// created is false. Lookup and insert share a transaction so retried
// deliveries racing each other still collapse to one row.
func (p *Postgres) CreateNotification(ctx context.Context, in types.CreateNotification) (out types.Notification, created bool, err error) {
	err = p.db.RunTx(ctx, func(ctx context.Context) error {
		query := `
			SELECT ` + notificationColumnsStr + `
			FROM notifications
			WHERE notifications.sender_id = @sender_id
				AND notifications.receiver_id = @receiver_id
				AND notifications.content = @content
				AND notifications.sent_at BETWEEN @window_start AND @window_end
			ORDER BY notifications.sent_at ASC
			LIMIT 1
		`
		args := pgx.StrictNamedArgs{
			"sender_id":    in.SenderID,
			"receiver_id":  in.ReceiverID,
			"content":      in.Content,
			"window_start": in.SentAt.Add(-types.NotificationDedupWindow),
			"window_end":   in.SentAt.Add(types.NotificationDedupWindow),
		}

		existing, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.Notification])
		if err == nil {
			out = existing
			created = false
			return nil
		}

		if !db.IsNotFoundError(err) {
			return fmt.Errorf("sql select duplicate notification: %w", err)
		}

		query = `
			INSERT INTO notifications (id, sender_id, receiver_id, content, sent_at)
			VALUES (@notification_id, @sender_id, @receiver_id, @content, @sent_at)
			RETURNING ` + notificationColumnsStr

		rows, err := p.db.Query(ctx, query, pgx.StrictNamedArgs{
			"notification_id": id.Generate(),
			"sender_id":       in.SenderID,
			"receiver_id":     in.ReceiverID,
			"content":         in.Content,
			"sent_at":         in.SentAt,
		})
		if err != nil {
			return fmt.Errorf("sql insert notification: %w", err)
		}

		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Notification])
		if err != nil {
			return fmt.Errorf("sql collect inserted notification: %w", err)
		}

		created = true
		return nil
	})
	return out, created, err
}

// Notifications is the receiver's inbox, most recent first.
func (p *Postgres) Notifications(ctx context.Context, in types.ListNotifications) ([]types.Notification, error) {
	query := `
		SELECT ` + notificationColumnsStr + `,
			` + userJSONFor("sender") + ` AS sender
		FROM notifications
		INNER JOIN users AS sender ON sender.id = notifications.sender_id
		WHERE notifications.receiver_id = @receiver_id
	`
	if in.UnreadOnly {
		query += ` AND NOT notifications.is_read`
	}
	query += ` ORDER BY notifications.sent_at DESC, notifications.id DESC`

	args := pgx.StrictNamedArgs{
		"receiver_id": in.ReceiverID(),
	}

	notifications, err := pgxutil.Select(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.Notification])
	if err != nil {
		return nil, fmt.Errorf("sql select notifications: %w", err)
	}

	return notifications, nil
}

func (p *Postgres) UnreadNotificationCount(ctx context.Context, receiverID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE receiver_id = @receiver_id AND NOT is_read
	`
	args := pgx.StrictNamedArgs{
		"receiver_id": receiverID,
	}

	count, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowTo[int64])
	if err != nil {
		return 0, fmt.Errorf("sql count unread notifications: %w", err)
	}

	return count, nil
}

// MarkNotificationRead flips is_read for a notification the requester
// owns. Marking an already-read notification again is a no-op.
func (p *Postgres) MarkNotificationRead(ctx context.Context, in types.ReadNotification) error {
	return p.db.RunTx(ctx, func(ctx context.Context) error {
		query := `
			SELECT receiver_id FROM notifications
			WHERE id = @notification_id
		`
		args := pgx.StrictNamedArgs{
			"notification_id": in.NotificationID,
		}

		receiverID, err := pgxutil.SelectRow(ctx, p.db, query, []any{args}, pgx.RowTo[string])
		if db.IsNotFoundError(err) {
			return errs.NewNotFoundError("notification not found")
		}

		if err != nil {
			return fmt.Errorf("sql select notification receiver: %w", err)
		}

		if receiverID != in.RequesterID() {
			return errs.NewPermissionDeniedError("only the receiver can mark this notification as read")
		}

		_, err = p.db.Exec(ctx, `
			UPDATE notifications SET is_read = true
			WHERE id = @notification_id AND NOT is_read
		`, pgx.StrictNamedArgs{
			"notification_id": in.NotificationID,
		})
		if err != nil {
			return fmt.Errorf("sql update notification is_read: %w", err)
		}

		return nil
	})
}

func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, receiverID string) error {
	_, err := p.db.Exec(ctx, `
		UPDATE notifications SET is_read = true
		WHERE receiver_id = @receiver_id AND NOT is_read
	`, pgx.StrictNamedArgs{
		"receiver_id": receiverID,
	})
	if err != nil {
		return fmt.Errorf("sql update notifications is_read: %w", err)
	}

	return nil
}

func (p *Postgres) MarkNotificationsFromSenderRead(ctx context.Context, in types.ReadNotificationsFromSender) error {
	return p.db.RunTx(ctx, func(ctx context.Context) error {
		exists, err := p.userExists(ctx, in.SenderID)
		if err != nil {
			return err
		}

		if !exists {
			return errs.NewNotFoundError("sender not found")
		}

		_, err = p.db.Exec(ctx, `
			UPDATE notifications SET is_read = true
			WHERE receiver_id = @receiver_id AND sender_id = @sender_id AND NOT is_read
		`, pgx.StrictNamedArgs{
			"receiver_id": in.ReceiverID(),
			"sender_id":   in.SenderID,
		})
		if err != nil {
			return fmt.Errorf("sql update sender notifications is_read: %w", err)
		}

		return nil
	})
}
