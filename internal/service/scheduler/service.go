package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/repository/event"
)

//go:generate mockgen -source=service.go -destination=../../mocks/service/scheduler/mock.go -package=mocks

const (
	reminder24hOffset = 24 * time.Hour
	reminder1hOffset  = time.Hour
)

// importantFields are the event fields whose change is worth telling
// participants about. Changes outside this set are ignored.
var importantFields = map[string]struct{}{
	"title":       {},
	"date_time":   {},
	"location":    {},
	"description": {},
}

type notificationRepository interface {
	Create(ctx context.Context, rec model.NotificationRecord) (model.NotificationRecord, error)
	CreateBatch(ctx context.Context, recs []model.NotificationRecord) ([]model.NotificationRecord, error)
	RegisterParticipant(ctx context.Context, p model.Participant, recs []model.NotificationRecord) (model.Participant, []model.NotificationRecord, error)
	HasScheduled(ctx context.Context, eventID, userID uuid.UUID, typ model.Type) (bool, error)
	GetStatusByID(ctx context.Context, id uuid.UUID) (model.Status, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.NotificationRecord, error)
}

type eventProvider interface {
	GetEvent(ctx context.Context, id uuid.UUID) (model.Event, error)
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
	ListParticipants(ctx context.Context, eventID uuid.UUID) ([]model.Participant, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Service translates domain events (new participant, event field change)
// into pending notification records. It never sends anything itself.
type Service struct {
	repo      notificationRepository
	providers eventProvider
	cache     cache
	strategy  retry.Strategy
	now       func() time.Time
}

func NewService(repo notificationRepository, providers eventProvider, cache cache, strategy retry.Strategy) *Service {
	return &Service{
		repo:      repo,
		providers: providers,
		cache:     cache,
		strategy:  strategy,
		now:       time.Now,
	}
}

// ScheduleNotification persists one pending record for the given pair.
// No uniqueness check happens at this layer; callers decide whether to call.
// scheduledAt may be in the past, which makes the record due immediately.
func (s *Service) ScheduleNotification(
	ctx context.Context,
	ev model.Event,
	user model.User,
	typ model.Type,
	scheduledAt time.Time,
	channel model.Channel,
) (model.NotificationRecord, error) {
	if channel == "" {
		channel = model.ChannelEmail
	}

	rec, err := s.repo.Create(ctx, model.NotificationRecord{
		EventID:     ev.ID,
		UserID:      user.ID,
		Type:        typ,
		Status:      model.StatusPending,
		Channel:     channel,
		ScheduledAt: scheduledAt,
		Message:     renderMessage(typ, ev),
	})
	if err != nil {
		return model.NotificationRecord{}, fmt.Errorf("schedule notification: %w", err)
	}

	s.cacheStatus(ctx, rec.ID, rec.Status)

	return rec, nil
}

// ScheduleByID resolves the entities and schedules one notification.
// Unresolvable event or user surfaces as the provider's NotFound error.
func (s *Service) ScheduleByID(
	ctx context.Context,
	eventID, userID uuid.UUID,
	typ model.Type,
	scheduledAt time.Time,
	channel model.Channel,
) (model.NotificationRecord, error) {
	ev, user, err := s.resolve(ctx, eventID, userID)
	if err != nil {
		return model.NotificationRecord{}, err
	}

	return s.ScheduleNotification(ctx, ev, user, typ, scheduledAt, channel)
}

// OnParticipantRegistered creates the notification set for a fresh
// registration: an immediate confirmation plus the 24h and 1h reminders
// whose windows have not yet passed. The whole set persists in one
// transaction. An unresolvable event or user is logged and skipped.
func (s *Service) OnParticipantRegistered(ctx context.Context, p model.Participant) ([]model.NotificationRecord, error) {
	ev, user, err := s.resolve(ctx, p.EventID, p.UserID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) || errors.Is(err, event.ErrUserNotFound) {
			zlog.Logger.Warn().
				Str("event_id", p.EventID.String()).
				Str("user_id", p.UserID.String()).
				Err(err).
				Msg("skipping notification scheduling")
			return nil, nil
		}

		return nil, err
	}

	recs, err := s.buildRegistrationSet(ctx, ev, user)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateBatch(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("create notification set: %w", err)
	}

	for _, rec := range created {
		s.cacheStatus(ctx, rec.ID, rec.Status)
	}

	zlog.Logger.Info().
		Str("event", ev.Title).
		Str("user", user.Email).
		Int("count", len(created)).
		Msg("scheduled registration notifications")

	return created, nil
}

// RegisterParticipant is the registration workflow: the participant row and
// its notification set commit in a single transaction, so a rollback leaves
// no partial state.
func (s *Service) RegisterParticipant(ctx context.Context, eventID, userID uuid.UUID) (model.Participant, []model.NotificationRecord, error) {
	ev, user, err := s.resolve(ctx, eventID, userID)
	if err != nil {
		return model.Participant{}, nil, err
	}

	recs, err := s.buildRegistrationSet(ctx, ev, user)
	if err != nil {
		return model.Participant{}, nil, err
	}

	p, created, err := s.repo.RegisterParticipant(ctx, model.Participant{EventID: eventID, UserID: userID}, recs)
	if err != nil {
		return model.Participant{}, nil, fmt.Errorf("register participant: %w", err)
	}

	for _, rec := range created {
		s.cacheStatus(ctx, rec.ID, rec.Status)
	}

	return p, created, nil
}

// OnEventUpdated fans an event_updated notification out to every current
// participant, but only when at least one important field changed. Existing
// reminder records are left untouched even when date_time changed; stale
// reminder times after a reschedule are a known gap.
func (s *Service) OnEventUpdated(ctx context.Context, eventID uuid.UUID, changedFields []string) (int, error) {
	if !hasImportantChange(changedFields) {
		return 0, nil
	}

	ev, err := s.providers.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			zlog.Logger.Warn().Str("event_id", eventID.String()).Msg("event not found, skipping update fan-out")
			return 0, nil
		}

		return 0, fmt.Errorf("resolve event: %w", err)
	}

	participants, err := s.providers.ListParticipants(ctx, eventID)
	if err != nil {
		return 0, fmt.Errorf("list participants: %w", err)
	}

	now := s.now()
	recs := make([]model.NotificationRecord, 0, len(participants))
	for _, p := range participants {
		recs = append(recs, model.NotificationRecord{
			EventID:     ev.ID,
			UserID:      p.UserID,
			Type:        model.TypeEventUpdated,
			Status:      model.StatusPending,
			Channel:     model.ChannelEmail,
			ScheduledAt: now,
			Message:     renderMessage(model.TypeEventUpdated, ev),
		})
	}

	created, err := s.repo.CreateBatch(ctx, recs)
	if err != nil {
		return 0, fmt.Errorf("create update notifications: %w", err)
	}

	for _, rec := range created {
		s.cacheStatus(ctx, rec.ID, rec.Status)
	}

	zlog.Logger.Info().
		Str("event", ev.Title).
		Strs("changed", changedFields).
		Int("participants", len(created)).
		Msg("scheduled event update notifications")

	return len(created), nil
}

// Status returns a record's status, cache first.
func (s *Service) Status(ctx context.Context, id uuid.UUID) (model.Status, error) {
	cached, err := s.cache.GetWithRetry(ctx, s.strategy, id.String())
	if err == nil {
		return model.Status(cached), nil
	}
	if !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get notification status from cache")
	}

	status, err := s.repo.GetStatusByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("get notification status: %w", err)
	}

	s.cacheStatus(ctx, id, status)

	return status, nil
}

// ListForEvent returns all records created for an event.
func (s *Service) ListForEvent(ctx context.Context, eventID uuid.UUID) ([]model.NotificationRecord, error) {
	recs, err := s.repo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return recs, nil
}

func (s *Service) resolve(ctx context.Context, eventID, userID uuid.UUID) (model.Event, model.User, error) {
	ev, err := s.providers.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) {
			return model.Event{}, model.User{}, err
		}

		return model.Event{}, model.User{}, fmt.Errorf("resolve event: %w", err)
	}

	user, err := s.providers.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, event.ErrUserNotFound) {
			return model.Event{}, model.User{}, err
		}

		return model.Event{}, model.User{}, fmt.Errorf("resolve user: %w", err)
	}

	return ev, user, nil
}

// buildRegistrationSet computes the records for one registration: the
// confirmation always, each reminder only while its window is still ahead
// and no record of that type exists yet for the pair.
func (s *Service) buildRegistrationSet(ctx context.Context, ev model.Event, user model.User) ([]model.NotificationRecord, error) {
	now := s.now()

	recs := []model.NotificationRecord{{
		EventID:     ev.ID,
		UserID:      user.ID,
		Type:        model.TypeEventCreated,
		Status:      model.StatusPending,
		Channel:     model.ChannelEmail,
		ScheduledAt: now,
		Message:     renderMessage(model.TypeEventCreated, ev),
	}}

	reminders := []struct {
		typ model.Type
		at  time.Time
	}{
		{model.TypeReminder24h, ev.DateTime.Add(-reminder24hOffset)},
		{model.TypeReminder1h, ev.DateTime.Add(-reminder1hOffset)},
	}

	for _, rem := range reminders {
		if !rem.at.After(now) {
			continue // the reminder window has already passed
		}

		exists, err := s.repo.HasScheduled(ctx, ev.ID, user.ID, rem.typ)
		if err != nil {
			return nil, fmt.Errorf("check existing %s: %w", rem.typ, err)
		}
		if exists {
			continue
		}

		recs = append(recs, model.NotificationRecord{
			EventID:     ev.ID,
			UserID:      user.ID,
			Type:        rem.typ,
			Status:      model.StatusPending,
			Channel:     model.ChannelEmail,
			ScheduledAt: rem.at,
			Message:     renderMessage(rem.typ, ev),
		})
	}

	return recs, nil
}

func (s *Service) cacheStatus(ctx context.Context, id uuid.UUID, status model.Status) {
	if err := s.cache.SetWithRetry(ctx, s.strategy, id.String(), string(status)); err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to cache notification status")
	}
}

func hasImportantChange(changedFields []string) bool {
	for _, f := range changedFields {
		if _, ok := importantFields[f]; ok {
			return true
		}
	}

	return false
}
