package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fixitnow/fixitnow/postgres"
	"github.com/fixitnow/fixitnow/types"
)

// Broker is the live-channel fan-out. Publishing is best effort; the
// service never rolls persistence back over a failed publish.
type Broker interface {
	PublishMessage(userID string, msg types.Message) error
	PublishNotification(userID string, n types.Notification) error
}

// Presence answers whether a user currently holds a live session.
type Presence interface {
	IsOnline(userID string) bool
	OnlineUsers() []string
}

// PushSender delivers a notification payload out-of-band when the
// receiver is offline.
type PushSender interface {
	Enabled() bool
	Send(ctx context.Context, sub types.PushSubscription, payload any) error
}

type Config struct {
	Postgres          *postgres.Postgres
	Broker            Broker
	Presence          Presence
	Push              PushSender
	BaseCtx           context.Context
	BackgroundTimeout time.Duration
}

type Service struct {
	Postgres *postgres.Postgres
	Broker   Broker
	Presence Presence
	Push     PushSender

	baseCtx           context.Context
	backgroundTimeout time.Duration
	sanitizer         *bluemonday.Policy
	wg                sync.WaitGroup
	errs              chan error
}

func New(cfg *Config) *Service {
	return &Service{
		Postgres: cfg.Postgres,
		Broker:   cfg.Broker,
		Presence: cfg.Presence,
		Push:     cfg.Push,

		baseCtx:           cfg.BaseCtx,
		backgroundTimeout: cfg.BackgroundTimeout,
		sanitizer:         bluemonday.StrictPolicy(),
		errs:              make(chan error, 1),
	}
}

func (svc *Service) Errs() <-chan error {
	return svc.errs
}

func (svc *Service) Close() error {
	svc.wg.Wait()
	close(svc.errs)
	return nil
}

func (svc *Service) background(fn func(ctx context.Context) error) {
	svc.wg.Go(func() {
		defer func() {
			if rcv := recover(); rcv != nil {
				select {
				case svc.errs <- fmt.Errorf("service background panic: %v", rcv):
				default:
				}
			}
		}()

		ctx, cancel := context.WithTimeout(svc.baseCtx, svc.backgroundTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			select {
			case svc.errs <- fmt.Errorf("service background error: %w", err):
			default:
			}
		}
	})
}
