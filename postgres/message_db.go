package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/types"
)

const userJSON = `
	json_build_object(
		'id', %[1]s.id,
		'email', %[1]s.email,
		'name', %[1]s.name,
		'role', %[1]s.role
	)
`

func userJSONFor(alias string) string {
	return fmt.Sprintf(userJSON, alias)
}

// CreateMessage persists a chat message with sent_at assigned by the
// database clock. The receiver is resolved in the same transaction so
// a send to an unknown user stores nothing.
func (p *Postgres) CreateMessage(ctx context.Context, in types.SendMessage) (types.Message, error) {
	var out types.Message
	return out, p.db.RunTx(ctx, func(ctx context.Context) error {
		exists, err := p.userExists(ctx, in.ReceiverID)
		if err != nil {
			return err
		}

		if !exists {
			return errs.NewNotFoundError("receiver not found")
		}

		query := `
			INSERT INTO messages (id, sender_id, receiver_id, content)
			VALUES (@message_id, @sender_id, @receiver_id, @content)
			RETURNING messages.id, messages.sender_id, messages.receiver_id, messages.content, messages.sent_at
		`

		rows, err := p.db.Query(ctx, query, pgx.StrictNamedArgs{
			"message_id":  id.Generate(),
			"sender_id":   in.SenderID(),
			"receiver_id": in.ReceiverID,
			"content":     in.Content,
		})
		if err != nil {
			return fmt.Errorf("sql insert message: %w", err)
		}

		out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.Message])
		if err != nil {
			return fmt.Errorf("sql collect inserted message: %w", err)
		}

		return nil
	})
}

// MessagesBetween is the conversation history between the requester and
// the other user, both directions, ordered by sent_at ascending with id
// as the tie-break. The result is identical no matter which of the two
// users asks.
func (p *Postgres) MessagesBetween(ctx context.Context, in types.ListMessages) ([]types.Message, error) {
	exists, err := p.userExists(ctx, in.OtherUserID)
	if err != nil {
		return nil, err
	}

	if !exists {
		return nil, errs.NewNotFoundError("user not found")
	}

	query := `
		SELECT messages.id, messages.sender_id, messages.receiver_id, messages.content, messages.sent_at,
			` + userJSONFor("sender") + ` AS sender,
			` + userJSONFor("receiver") + ` AS receiver
		FROM messages
		INNER JOIN users AS sender ON sender.id = messages.sender_id
		INNER JOIN users AS receiver ON receiver.id = messages.receiver_id
		WHERE (messages.sender_id = @user_id AND messages.receiver_id = @other_user_id)
			OR (messages.sender_id = @other_user_id AND messages.receiver_id = @user_id)
		ORDER BY messages.sent_at ASC, messages.id ASC
	`
	args := pgx.StrictNamedArgs{
		"user_id":       in.RequesterID(),
		"other_user_id": in.OtherUserID,
	}

	messages, err := pgxutil.Select(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.Message])
	if err != nil {
		return nil, fmt.Errorf("sql select messages between users: %w", err)
	}

	return messages, nil
}
