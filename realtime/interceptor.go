package realtime

import (
	"context"
	"log/slog"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/metrics"
	"github.com/fixitnow/fixitnow/types"
)

// UserResolver maps a verified token subject to a stored user.
type UserResolver interface {
	UserByEmail(ctx context.Context, email string) (types.User, error)
}

// Interceptor authenticates inbound frames. It fails open: a frame
// with a missing or bad credential still proceeds, just without a
// principal. Handlers that need one fail closed on their own.
type Interceptor struct {
	Tokens *auth.Tokens
	Users  UserResolver
	Logger *slog.Logger
}

// Principal resolves the frame's bearer credential to a user. The
// second return is false when the frame carries no usable credential;
// verification and lookup failures are logged and counted, never
// surfaced to the connection.
func (ic *Interceptor) Principal(ctx context.Context, f Frame) (types.User, bool) {
	token, ok := f.BearerToken()
	if !ok {
		return types.User{}, false
	}

	claims, err := ic.Tokens.Verify(token)
	if err != nil {
		metrics.FrameAuthFailures.Inc()
		ic.Logger.Warn("live channel credential rejected", "frame", f.Type, "error", err)
		return types.User{}, false
	}

	usr, err := ic.Users.UserByEmail(ctx, claims.Subject)
	if err != nil {
		metrics.FrameAuthFailures.Inc()
		ic.Logger.Warn("live channel principal lookup failed", "frame", f.Type, "error", err)
		return types.User{}, false
	}

	return usr, true
}
