// Package webpush delivers notification payloads to browsers of users
// who have no live session online.
package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	wp "github.com/SherClockHolmes/webpush-go"

	"github.com/fixitnow/fixitnow/types"
)

// ErrSubscriptionGone reports an endpoint the push service no longer
// accepts; callers should drop the stored subscription.
var ErrSubscriptionGone = fmt.Errorf("push subscription gone")

type Sender struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
}

// Enabled reports whether VAPID keys were configured. When false the
// notification service skips push delivery entirely.
func (s *Sender) Enabled() bool {
	return s != nil && s.VAPIDPublicKey != "" && s.VAPIDPrivateKey != ""
}

func (s *Sender) Send(ctx context.Context, sub types.PushSubscription, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("json marshal push payload: %w", err)
	}

	resp, err := wp.SendNotificationWithContext(ctx, b, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys: wp.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &wp.Options{
		Subscriber:      s.Subscriber,
		VAPIDPublicKey:  s.VAPIDPublicKey,
		VAPIDPrivateKey: s.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send push notification: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound {
		return ErrSubscriptionGone
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}

	return nil
}
