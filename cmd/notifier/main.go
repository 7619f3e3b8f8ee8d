package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"

	eventhandler "github.com/musehub/event-notifier/internal/api/handlers/event"
	inboxhandler "github.com/musehub/event-notifier/internal/api/handlers/inbox"
	notifhandler "github.com/musehub/event-notifier/internal/api/handlers/notification"
	participanthandler "github.com/musehub/event-notifier/internal/api/handlers/participant"
	"github.com/musehub/event-notifier/internal/api/router"
	"github.com/musehub/event-notifier/internal/api/server"
	"github.com/musehub/event-notifier/internal/config"
	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/rabbitmq/handlers/domainevent"
	"github.com/musehub/event-notifier/internal/rabbitmq/queue"
	eventrepo "github.com/musehub/event-notifier/internal/repository/event"
	inboxrepo "github.com/musehub/event-notifier/internal/repository/inbox"
	notifrepo "github.com/musehub/event-notifier/internal/repository/notification"
	"github.com/musehub/event-notifier/internal/service/dispatcher"
	"github.com/musehub/event-notifier/internal/service/scheduler"
	"github.com/musehub/event-notifier/internal/worker"
	"github.com/musehub/event-notifier/pkg/email"
	"github.com/musehub/event-notifier/pkg/push"
	"github.com/musehub/event-notifier/pkg/sms"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zlog.Init()
	cfg := config.Must()
	val := validator.New()

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Retries, cfg.RabbitMQ.Pause)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to rabbitmq")
	}

	ch, err := conn.Channel()
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to open channel")
	}

	q, err := queue.NewDomainEventQueue(ch)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to declare domain event queue")
	}

	opts := &dbpg.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}

	slaveDSNs := make([]string, 0, len(cfg.Database.Slaves))
	for _, s := range cfg.Database.Slaves {
		slaveDSNs = append(slaveDSNs, s.DSN())
	}

	db, err := dbpg.New(cfg.Database.Master.DSN(), slaveDSNs, opts)
	if err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	rdb := redis.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.Database)
	if err := rdb.Ping(ctx).Err(); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}

	notifications := notifrepo.NewRepository(db)
	providers := eventrepo.NewRepository(db)
	inboxStore := inboxrepo.NewRepository(db)

	senders := map[model.Channel]dispatcher.Sender{
		model.ChannelEmail: email.NewClient(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.From,
			cfg.Email.Timeout,
		),
		model.ChannelSMS:   sms.NewClient(cfg.SMS.GatewayURL, cfg.SMS.APIKey, cfg.SMS.From),
		model.ChannelPush:  push.NewClient(cfg.Push.GatewayURL, cfg.Push.APIKey),
		model.ChannelInApp: inboxStore,
	}

	schedulerSvc := scheduler.NewService(notifications, providers, rdb, cfg.Retry)
	dispatcherSvc := dispatcher.NewService(notifications, providers, senders, rdb, cfg.Retry, dispatcher.Config{
		BatchSize:   cfg.Dispatch.BatchSize,
		SendTimeout: cfg.Dispatch.SendTimeout,
		StaleAfter:  cfg.Dispatch.StaleAfter,
		MaxAttempts: cfg.Dispatch.MaxAttempts,
		RetryDelay:  cfg.Dispatch.RetryDelay,
	})

	messageHandler := domainevent.NewHandler(schedulerSvc)
	notifier := worker.NewNotifier(q, messageHandler)
	go notifier.Run(ctx, cfg.Retry, cfg.Workers.Count)

	c := cron.New()

	if _, err := c.AddFunc(cfg.Dispatch.Schedule, func() {
		summary, err := dispatcherSvc.RunDue(ctx, time.Now())
		if err != nil {
			zlog.Logger.Error().Err(err).Msg("dispatch batch failed")
			return
		}

		if summary.Claimed > 0 {
			zlog.Logger.Info().
				Int("sent", summary.Sent).
				Int("failed", summary.Failed).
				Msg("dispatch batch done")
		}
	}); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to schedule dispatch job")
	}

	if _, err := c.AddFunc(cfg.Dispatch.SweepSchedule, func() {
		now := time.Now()

		if _, err := dispatcherSvc.RequeueStale(ctx, now); err != nil {
			zlog.Logger.Error().Err(err).Msg("stale sweep failed")
		}

		if _, err := dispatcherSvc.RequeueFailed(ctx, now); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed sweep failed")
		}
	}); err != nil {
		zlog.Logger.Fatal().Err(err).Msg("failed to schedule sweep job")
	}

	c.Start()

	r := router.New(
		notifhandler.NewHandler(schedulerSvc, dispatcherSvc, val),
		participanthandler.NewHandler(schedulerSvc, val),
		eventhandler.NewHandler(schedulerSvc, val),
		inboxhandler.NewHandler(inboxStore),
	)
	s := server.New(cfg.Server.HTTPPort, r, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)

	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	zlog.Logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	zlog.Logger.Info().Msg("shutting down server")
	if err := s.Shutdown(shutdownCtx); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to shutdown server")
	}

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		zlog.Logger.Info().Msg("timeout exceeded, forcing shutdown")
	}

	<-c.Stop().Done()

	if err := db.Master.Close(); err != nil {
		zlog.Logger.Printf("failed to close master DB: %v", err)
	}

	for i, slave := range db.Slaves {
		if err := slave.Close(); err != nil {
			zlog.Logger.Printf("failed to close slave DB %d: %v", i, err)
		}
	}

	if err := ch.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ channel")
	}

	if err := conn.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to close RabbitMQ connection")
	}
}
