package types

import (
	"time"

	"github.com/fixitnow/fixitnow/validator"
)

// PushSubscription is a browser web-push endpoint registered by a user.
// Notifications are pushed here when the user has no live session online.
type PushSubscription struct {
	UserID    string    `json:"userId" db:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type CreatePushSubscription struct {
	Endpoint string
	P256dh   string
	Auth     string

	userID string
}

func (in *CreatePushSubscription) SetUserID(userID string) {
	in.userID = userID
}

func (in CreatePushSubscription) UserID() string {
	return in.userID
}

func (in *CreatePushSubscription) Validate() error {
	v := validator.New()

	if in.Endpoint == "" {
		v.AddError("Endpoint", "Endpoint is required")
	}
	if in.P256dh == "" {
		v.AddError("P256dh", "P256dh key is required")
	}
	if in.Auth == "" {
		v.AddError("Auth", "Auth secret is required")
	}

	return v.AsError()
}
