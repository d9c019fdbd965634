package service

import (
	"context"
	"fmt"

	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/types"
)

// UserOnline reports whether the given user has a live session. The
// user must exist; unknown IDs are a not-found, not an offline.
func (svc *Service) UserOnline(ctx context.Context, userID string) (types.PresenceStatus, error) {
	var out types.PresenceStatus

	if _, err := svc.Postgres.User(ctx, userID); err != nil {
		if errs.IsNotFound(err) {
			return out, err
		}
		return out, fmt.Errorf("user lookup for presence: %w", err)
	}

	out.Online = svc.Presence.IsOnline(userID)
	return out, nil
}
