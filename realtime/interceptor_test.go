package realtime

import (
	"context"
	"log/slog"
	"testing"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/types"
)

type userResolverFunc func(ctx context.Context, email string) (types.User, error)

func (fn userResolverFunc) UserByEmail(ctx context.Context, email string) (types.User, error) {
	return fn(ctx, email)
}

func TestInterceptor_Principal(t *testing.T) {
	tokens := auth.NewTokens("test-secret")

	want := types.User{ID: "u1", Email: "jane@example.com", Name: "Jane", Role: types.UserRoleCustomer}
	resolver := userResolverFunc(func(ctx context.Context, email string) (types.User, error) {
		if email != want.Email {
			return types.User{}, errs.NewNotFoundError("user not found")
		}
		return want, nil
	})

	ic := &Interceptor{
		Tokens: tokens,
		Users:  resolver,
		Logger: slog.New(slog.DiscardHandler),
	}

	ctx := context.Background()

	t.Run("valid_credential", func(t *testing.T) {
		token, err := tokens.Issue(want.Email, want.Role)
		if err != nil {
			t.Fatal(err)
		}

		got, ok := ic.Principal(ctx, Frame{
			Type:    FrameConnect,
			Headers: map[string]string{"Authorization": "Bearer " + token},
		})
		if !ok {
			t.Fatal("expected a principal")
		}
		if got != want {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	})

	t.Run("no_credential_fails_open", func(t *testing.T) {
		_, ok := ic.Principal(ctx, Frame{Type: FrameConnect})
		if ok {
			t.Fatal("expected no principal")
		}
	})

	t.Run("garbage_credential_fails_open", func(t *testing.T) {
		_, ok := ic.Principal(ctx, Frame{
			Type:    FrameSend,
			Headers: map[string]string{"Authorization": "Bearer not-a-token"},
		})
		if ok {
			t.Fatal("expected no principal")
		}
	})

	t.Run("unknown_subject_fails_open", func(t *testing.T) {
		token, err := tokens.Issue("ghost@example.com", types.UserRoleCustomer)
		if err != nil {
			t.Fatal(err)
		}

		_, ok := ic.Principal(ctx, Frame{
			Type:    FrameSubscribe,
			Headers: map[string]string{"Authorization": "Bearer " + token},
		})
		if ok {
			t.Fatal("expected no principal")
		}
	})

	t.Run("wrong_key_fails_open", func(t *testing.T) {
		other := auth.NewTokens("other-secret")
		token, err := other.Issue(want.Email, want.Role)
		if err != nil {
			t.Fatal(err)
		}

		_, ok := ic.Principal(ctx, Frame{
			Type:    FrameConnect,
			Headers: map[string]string{"Authorization": "Bearer " + token},
		})
		if ok {
			t.Fatal("expected no principal")
		}
	})
}
