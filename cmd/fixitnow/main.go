package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/broker"
	"github.com/fixitnow/fixitnow/config"
	"github.com/fixitnow/fixitnow/postgres"
	"github.com/fixitnow/fixitnow/postgres/migrator"
	"github.com/fixitnow/fixitnow/presence"
	"github.com/fixitnow/fixitnow/realtime"
	"github.com/fixitnow/fixitnow/service"
	"github.com/fixitnow/fixitnow/web"
	"github.com/fixitnow/fixitnow/webpush"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	errLogger := slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	}))
	infoLogger := slog.New(charmlog.NewWithOptions(os.Stdout, charmlog.Options{
		ReportTimestamp: true,
	}))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPool, err := pgxpool.New(context.Background(), cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("open postgres connection pool: %w", err)
	}

	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	migrationStart := time.Now()
	infoLogger.Info("starting postgres migrations")

	if err := migrator.Migrate(context.Background(), dbPool, postgres.MigrationsFS); err != nil {
		return fmt.Errorf("migrate postgres schema: %w", err)
	}

	infoLogger.Info("finished postgres migrations", "took", time.Since(migrationStart))

	natsConn, err := nats.Connect(cfg.NATSURL, nats.Timeout(time.Second*5))
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}

	defer natsConn.Close()

	db := postgres.New(dbPool)
	brk := broker.New(natsConn)
	tracker := presence.NewTracker()
	tokens := auth.NewTokens(cfg.TokenSecret)
	push := &webpush.Sender{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subscriber:      cfg.VAPIDSubscriber,
	}

	svc := service.New(&service.Config{
		Postgres:          db,
		Broker:            brk,
		Presence:          tracker,
		Push:              push,
		BaseCtx:           context.Background(),
		BackgroundTimeout: cfg.BackgroundTimeout,
	})
	go func() {
		for err := range svc.Errs() {
			errLogger.Error("service error", "error", err)
		}
	}()

	gateway := &realtime.Gateway{
		Sender:     svc,
		Subscriber: brk,
		Presence:   tracker,
		Interceptor: &realtime.Interceptor{
			Tokens: tokens,
			Users:  db,
			Logger: errLogger,
		},
		Logger: errLogger,
	}

	handler := &web.Handler{
		Service: svc,
		Tokens:  tokens,
		Gateway: gateway,
		Logger:  errLogger,
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: handler,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		infoLogger.Info("starting fixitnow server", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start fixitnow server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if err := natsConn.Drain(); err != nil {
		errLogger.Error("drain nats connection", "error", err)
	}

	return svc.Close()
}
