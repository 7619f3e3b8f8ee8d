package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/repository/notification"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/dispatcher/mock.go -package=mocks

type notificationRepository interface {
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.NotificationRecord, error)
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	ResetFailed(ctx context.Context, id uuid.UUID) error
	RequeueStale(ctx context.Context, cutoff time.Time) (int64, error)
	RequeueFailed(ctx context.Context, now time.Time, maxAttempts int, baseDelay time.Duration) (int64, error)
}

type userProvider interface {
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
}

// Sender delivers a rendered message to a channel-specific address.
type Sender interface {
	Send(ctx context.Context, to string, msg string) error
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
}

// Config bounds one dispatch run.
type Config struct {
	BatchSize   int
	SendTimeout time.Duration
	StaleAfter  time.Duration
	MaxAttempts int
	RetryDelay  time.Duration // base backoff applied when requeueing failed records
}

// Summary is the observable outcome of one dispatch batch.
type Summary struct {
	Claimed int `json:"claimed"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
}

// Service is the dispatch batch: it claims due pending records, pushes them
// through the per-channel senders and records each outcome. Channel failures
// stay isolated per record; only store failures abort a run.
type Service struct {
	repo     notificationRepository
	users    userProvider
	senders  map[model.Channel]Sender
	cache    cache
	strategy retry.Strategy
	cfg      Config
}

func NewService(
	repo notificationRepository,
	users userProvider,
	senders map[model.Channel]Sender,
	cache cache,
	strategy retry.Strategy,
	cfg Config,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		senders:  senders,
		cache:    cache,
		strategy: strategy,
		cfg:      cfg,
	}
}

// RunDue processes every record due at now. The claim is a conditional
// write, so overlapping invocations never double-send: a record claimed by
// one run is invisible to the other. Safe to call repeatedly; with nothing
// due it does nothing.
func (s *Service) RunDue(ctx context.Context, now time.Time) (Summary, error) {
	var sum Summary

	recs, err := s.repo.ClaimDue(ctx, now, s.cfg.BatchSize)
	if err != nil {
		return sum, fmt.Errorf("claim due notifications: %w", err)
	}
	sum.Claimed = len(recs)

	for _, rec := range recs {
		if err := s.deliver(ctx, rec); err != nil {
			zlog.Logger.Warn().
				Str("id", rec.ID.String()).
				Str("channel", string(rec.Channel)).
				Err(err).
				Msg("notification delivery failed")

			if markErr := s.repo.MarkFailed(ctx, rec.ID, err.Error()); markErr != nil {
				if errors.Is(markErr, notification.ErrNotificationNotFound) {
					zlog.Logger.Warn().Str("id", rec.ID.String()).Msg("record no longer in flight, skipping outcome")
					continue
				}

				return sum, fmt.Errorf("mark notification failed: %w", markErr)
			}
			s.cacheStatus(ctx, rec.ID, model.StatusFailed)
			sum.Failed++
			continue
		}

		if markErr := s.repo.MarkSent(ctx, rec.ID, time.Now()); markErr != nil {
			if errors.Is(markErr, notification.ErrNotificationNotFound) {
				zlog.Logger.Warn().Str("id", rec.ID.String()).Msg("record no longer in flight, skipping outcome")
				continue
			}

			return sum, fmt.Errorf("mark notification sent: %w", markErr)
		}
		s.cacheStatus(ctx, rec.ID, model.StatusSent)
		sum.Sent++
	}

	if sum.Claimed > 0 {
		zlog.Logger.Info().
			Int("claimed", sum.Claimed).
			Int("sent", sum.Sent).
			Int("failed", sum.Failed).
			Msg("dispatch batch finished")
	}

	return sum, nil
}

// RetryFailed is the administrative reset of a failed record back to pending.
func (s *Service) RetryFailed(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.ResetFailed(ctx, id); err != nil {
		return fmt.Errorf("reset notification: %w", err)
	}

	s.cacheStatus(ctx, id, model.StatusPending)

	return nil
}

// RequeueStale recovers claims abandoned by a killed batch: processing rows
// untouched for longer than the stale window go back to pending.
func (s *Service) RequeueStale(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.RequeueStale(ctx, now.Add(-s.cfg.StaleAfter))
	if err != nil {
		return 0, fmt.Errorf("requeue stale notifications: %w", err)
	}

	if n > 0 {
		zlog.Logger.Warn().Int64("count", n).Msg("requeued stale in-flight notifications")
	}

	return n, nil
}

// RequeueFailed reschedules failed records below the attempt cap with
// exponential backoff. Records at the cap stay failed until an operator
// resets them.
func (s *Service) RequeueFailed(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repo.RequeueFailed(ctx, now, s.cfg.MaxAttempts, s.cfg.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("requeue failed notifications: %w", err)
	}

	if n > 0 {
		zlog.Logger.Info().Int64("count", n).Msg("requeued failed notifications for retry")
	}

	return n, nil
}

// deliver resolves the recipient and pushes the message through the channel
// sender, bounded by the send timeout. The inner attempts follow the
// configured retry strategy; the returned error is the final one.
func (s *Service) deliver(ctx context.Context, rec model.NotificationRecord) error {
	sender, ok := s.senders[rec.Channel]
	if !ok {
		return fmt.Errorf("unknown channel %q", rec.Channel)
	}

	user, err := s.users.GetUser(ctx, rec.UserID)
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}

	to, err := recipientFor(user, rec.Channel)
	if err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.SendTimeout)
	defer cancel()

	return retry.Do(func() error {
		select {
		case <-sendCtx.Done():
			return sendCtx.Err()
		default:
			return sendBounded(sendCtx, sender, to, rec.Message)
		}
	}, s.strategy)
}

// sendBounded guards against senders that ignore ctx (the SMTP dialer): the
// call runs in its own goroutine and the wait is cut off at the deadline.
func sendBounded(ctx context.Context, sender Sender, to, msg string) error {
	done := make(chan error, 1)

	go func() {
		done <- sender.Send(ctx, to, msg)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("delivery timed out: %w", ctx.Err())
	}
}

// recipientFor picks the channel-specific address of a user.
func recipientFor(user model.User, channel model.Channel) (string, error) {
	switch channel {
	case model.ChannelEmail:
		return user.Email, nil
	case model.ChannelSMS:
		if user.Phone == "" {
			return "", fmt.Errorf("user %s has no phone number", user.ID)
		}
		return user.Phone, nil
	case model.ChannelPush, model.ChannelInApp:
		return user.ID.String(), nil
	default:
		return "", fmt.Errorf("unknown channel %q", channel)
	}
}

func (s *Service) cacheStatus(ctx context.Context, id uuid.UUID, status model.Status) {
	if err := s.cache.SetWithRetry(ctx, s.strategy, id.String(), string(status)); err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache notification status")
	}
}
