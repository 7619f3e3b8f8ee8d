package domainevent

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	mocks "github.com/musehub/event-notifier/internal/mocks/rabbitmq/handlers/domainevent"
	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/rabbitmq/queue"
)

func TestHandler_HandleMessage_ParticipantRegistered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schedulerMock := mocks.NewMockschedulerService(ctrl)
	h := NewHandler(schedulerMock)

	msg := queue.DomainEventMessage{
		Kind:          queue.KindParticipantRegistered,
		ParticipantID: uuid.New(),
		EventID:       uuid.New(),
		UserID:        uuid.New(),
	}

	schedulerMock.EXPECT().
		OnParticipantRegistered(gomock.Any(), model.Participant{
			ID:      msg.ParticipantID,
			EventID: msg.EventID,
			UserID:  msg.UserID,
		}).
		Return([]model.NotificationRecord{{ID: uuid.New()}}, nil)

	h.HandleMessage(context.Background(), msg)
}

func TestHandler_HandleMessage_EventUpdated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schedulerMock := mocks.NewMockschedulerService(ctrl)
	h := NewHandler(schedulerMock)

	msg := queue.DomainEventMessage{
		Kind:          queue.KindEventUpdated,
		EventID:       uuid.New(),
		ChangedFields: []string{"date_time", "location"},
	}

	schedulerMock.EXPECT().
		OnEventUpdated(gomock.Any(), msg.EventID, msg.ChangedFields).
		Return(5, nil)

	h.HandleMessage(context.Background(), msg)
}

func TestHandler_HandleMessage_SchedulerErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schedulerMock := mocks.NewMockschedulerService(ctrl)
	h := NewHandler(schedulerMock)

	msg := queue.DomainEventMessage{
		Kind:    queue.KindEventUpdated,
		EventID: uuid.New(),
	}

	schedulerMock.EXPECT().
		OnEventUpdated(gomock.Any(), msg.EventID, gomock.Any()).
		Return(0, errors.New("db down"))

	h.HandleMessage(context.Background(), msg)
}

func TestHandler_HandleMessage_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	schedulerMock := mocks.NewMockschedulerService(ctrl)
	h := NewHandler(schedulerMock)

	// No scheduler call expected.
	h.HandleMessage(context.Background(), queue.DomainEventMessage{Kind: "event.deleted"})
}
