package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgxutil"

	"github.com/fixitnow/fixitnow/types"
)

const pushSubscriptionColumnsStr = `
	push_subscriptions.user_id,
	push_subscriptions.endpoint,
	push_subscriptions.p256dh,
	push_subscriptions.auth,
	push_subscriptions.created_at
`

// UpsertPushSubscription registers a web-push endpoint, re-keying it to
// the requesting user if the browser re-submits a known endpoint.
func (p *Postgres) UpsertPushSubscription(ctx context.Context, in types.CreatePushSubscription) (types.PushSubscription, error) {
	var out types.PushSubscription

	query := `
		INSERT INTO push_subscriptions (user_id, endpoint, p256dh, auth)
		VALUES (@user_id, @endpoint, @p256dh, @auth)
		ON CONFLICT (endpoint) DO UPDATE
		SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth
		RETURNING ` + pushSubscriptionColumnsStr

	rows, err := p.db.Query(ctx, query, pgx.StrictNamedArgs{
		"user_id":  in.UserID(),
		"endpoint": in.Endpoint,
		"p256dh":   in.P256dh,
		"auth":     in.Auth,
	})
	if err != nil {
		return out, fmt.Errorf("sql upsert push subscription: %w", err)
	}

	out, err = pgx.CollectExactlyOneRow(rows, pgx.RowToStructByNameLax[types.PushSubscription])
	if err != nil {
		return out, fmt.Errorf("sql collect upserted push subscription: %w", err)
	}

	return out, nil
}

func (p *Postgres) PushSubscriptions(ctx context.Context, userID string) ([]types.PushSubscription, error) {
	query := `
		SELECT ` + pushSubscriptionColumnsStr + `
		FROM push_subscriptions
		WHERE push_subscriptions.user_id = @user_id
	`
	args := pgx.StrictNamedArgs{
		"user_id": userID,
	}

	subs, err := pgxutil.Select(ctx, p.db, query, []any{args}, pgx.RowToStructByNameLax[types.PushSubscription])
	if err != nil {
		return nil, fmt.Errorf("sql select push subscriptions: %w", err)
	}

	return subs, nil
}

// DeletePushSubscription drops an endpoint the push service reported gone.
func (p *Postgres) DeletePushSubscription(ctx context.Context, endpoint string) error {
	_, err := p.db.Exec(ctx, `
		DELETE FROM push_subscriptions WHERE endpoint = @endpoint
	`, pgx.StrictNamedArgs{
		"endpoint": endpoint,
	})
	if err != nil {
		return fmt.Errorf("sql delete push subscription: %w", err)
	}

	return nil
}
