package dispatcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/musehub/event-notifier/internal/mocks/service/dispatcher"
	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/repository/notification"
)

var testStrategy = retry.Strategy{Attempts: 1, Delay: time.Millisecond}

func testConfig() Config {
	return Config{
		BatchSize:   10,
		SendTimeout: time.Second,
		StaleAfter:  5 * time.Minute,
		MaxAttempts: 5,
		RetryDelay:  time.Minute,
	}
}

func dueRecord(channel model.Channel) model.NotificationRecord {
	return model.NotificationRecord{
		ID:      uuid.New(),
		EventID: uuid.New(),
		UserID:  uuid.New(),
		Type:    model.TypeReminder24h,
		Status:  model.StatusProcessing,
		Channel: channel,
		Message: "Reminder: Jazz Evening starts soon",
	}
}

func TestService_RunDue_Sends(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	usersMock := mocks.NewMockuserProvider(ctrl)
	senderMock := mocks.NewMockSender(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)

	svc := NewService(repoMock, usersMock, map[model.Channel]Sender{model.ChannelEmail: senderMock}, cacheMock, testStrategy, testConfig())

	rec := dueRecord(model.ChannelEmail)
	user := model.User{ID: rec.UserID, Email: "user@example.com"}
	now := time.Now()

	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return([]model.NotificationRecord{rec}, nil)
	usersMock.EXPECT().GetUser(gomock.Any(), rec.UserID).Return(user, nil)
	senderMock.EXPECT().Send(gomock.Any(), "user@example.com", rec.Message).Return(nil)
	repoMock.EXPECT().MarkSent(gomock.Any(), rec.ID, gomock.Any()).Return(nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), testStrategy, rec.ID.String(), "sent").Return(nil)

	sum, err := svc.RunDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Claimed: 1, Sent: 1}, sum)
}

func TestService_RunDue_SenderFailureMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	usersMock := mocks.NewMockuserProvider(ctrl)
	senderMock := mocks.NewMockSender(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)

	svc := NewService(repoMock, usersMock, map[model.Channel]Sender{model.ChannelEmail: senderMock}, cacheMock, testStrategy, testConfig())

	rec := dueRecord(model.ChannelEmail)
	user := model.User{ID: rec.UserID, Email: "user@example.com"}
	now := time.Now()

	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return([]model.NotificationRecord{rec}, nil)
	usersMock.EXPECT().GetUser(gomock.Any(), rec.UserID).Return(user, nil)
	senderMock.EXPECT().Send(gomock.Any(), "user@example.com", rec.Message).Return(errors.New("smtp unreachable"))
	repoMock.EXPECT().MarkFailed(gomock.Any(), rec.ID, gomock.Any()).Return(nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), testStrategy, rec.ID.String(), "failed").Return(nil)

	sum, err := svc.RunDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Claimed: 1, Failed: 1}, sum)
}

func TestService_RunDue_UnknownChannelMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)

	svc := NewService(repoMock, nil, map[model.Channel]Sender{}, cacheMock, testStrategy, testConfig())

	rec := dueRecord(model.ChannelSMS)
	now := time.Now()

	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return([]model.NotificationRecord{rec}, nil)
	repoMock.EXPECT().MarkFailed(gomock.Any(), rec.ID, gomock.Any()).Return(nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), testStrategy, rec.ID.String(), "failed").Return(nil)

	sum, err := svc.RunDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Claimed: 1, Failed: 1}, sum)
}

func TestService_RunDue_NothingDue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	svc := NewService(repoMock, nil, nil, nil, testStrategy, testConfig())

	now := time.Now()
	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return(nil, nil)

	sum, err := svc.RunDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestService_RunDue_MarkSentFailureAbortsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	usersMock := mocks.NewMockuserProvider(ctrl)
	senderMock := mocks.NewMockSender(ctrl)

	svc := NewService(repoMock, usersMock, map[model.Channel]Sender{model.ChannelEmail: senderMock}, nil, testStrategy, testConfig())

	rec := dueRecord(model.ChannelEmail)
	user := model.User{ID: rec.UserID, Email: "user@example.com"}
	now := time.Now()

	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return([]model.NotificationRecord{rec}, nil)
	usersMock.EXPECT().GetUser(gomock.Any(), rec.UserID).Return(user, nil)
	senderMock.EXPECT().Send(gomock.Any(), "user@example.com", rec.Message).Return(nil)
	repoMock.EXPECT().MarkSent(gomock.Any(), rec.ID, gomock.Any()).Return(errors.New("connection reset"))

	sum, err := svc.RunDue(context.Background(), now)
	assert.Error(t, err)
	assert.Equal(t, 1, sum.Claimed)
	assert.Equal(t, 0, sum.Sent)
}

func TestService_RunDue_RequeuedRecordIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	usersMock := mocks.NewMockuserProvider(ctrl)
	senderMock := mocks.NewMockSender(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)

	svc := NewService(repoMock, usersMock, map[model.Channel]Sender{model.ChannelEmail: senderMock}, cacheMock, testStrategy, testConfig())

	// Two records claimed; a stale sweep steals the first one back to
	// pending mid-batch, so its outcome write misses. The run must skip it
	// and still process the second.
	stolen := dueRecord(model.ChannelEmail)
	kept := dueRecord(model.ChannelEmail)
	now := time.Now()

	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return([]model.NotificationRecord{stolen, kept}, nil)

	usersMock.EXPECT().GetUser(gomock.Any(), stolen.UserID).Return(model.User{ID: stolen.UserID, Email: "a@example.com"}, nil)
	senderMock.EXPECT().Send(gomock.Any(), "a@example.com", stolen.Message).Return(nil)
	repoMock.EXPECT().MarkSent(gomock.Any(), stolen.ID, gomock.Any()).Return(notification.ErrNotificationNotFound)

	usersMock.EXPECT().GetUser(gomock.Any(), kept.UserID).Return(model.User{ID: kept.UserID, Email: "b@example.com"}, nil)
	senderMock.EXPECT().Send(gomock.Any(), "b@example.com", kept.Message).Return(nil)
	repoMock.EXPECT().MarkSent(gomock.Any(), kept.ID, gomock.Any()).Return(nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), testStrategy, kept.ID.String(), "sent").Return(nil)

	sum, err := svc.RunDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Claimed: 2, Sent: 1}, sum)
}

func TestService_RunDue_RequeuedRecordFailureIsSkipped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	usersMock := mocks.NewMockuserProvider(ctrl)
	senderMock := mocks.NewMockSender(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)

	svc := NewService(repoMock, usersMock, map[model.Channel]Sender{model.ChannelEmail: senderMock}, cacheMock, testStrategy, testConfig())

	rec := dueRecord(model.ChannelEmail)
	now := time.Now()

	repoMock.EXPECT().ClaimDue(gomock.Any(), now, 10).Return([]model.NotificationRecord{rec}, nil)
	usersMock.EXPECT().GetUser(gomock.Any(), rec.UserID).Return(model.User{ID: rec.UserID, Email: "a@example.com"}, nil)
	senderMock.EXPECT().Send(gomock.Any(), "a@example.com", rec.Message).Return(errors.New("smtp unreachable"))
	repoMock.EXPECT().MarkFailed(gomock.Any(), rec.ID, gomock.Any()).Return(notification.ErrNotificationNotFound)

	sum, err := svc.RunDue(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, Summary{Claimed: 1}, sum)
}

func TestService_RetryFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	cacheMock := mocks.NewMockcache(ctrl)
	svc := NewService(repoMock, nil, nil, cacheMock, testStrategy, testConfig())

	id := uuid.New()
	repoMock.EXPECT().ResetFailed(gomock.Any(), id).Return(nil)
	cacheMock.EXPECT().SetWithRetry(gomock.Any(), testStrategy, id.String(), "pending").Return(nil)

	assert.NoError(t, svc.RetryFailed(context.Background(), id))
}

func TestService_RequeueStale(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	svc := NewService(repoMock, nil, nil, nil, testStrategy, testConfig())

	now := time.Now()
	repoMock.EXPECT().RequeueStale(gomock.Any(), now.Add(-5*time.Minute)).Return(int64(2), nil)

	n, err := svc.RequeueStale(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestService_RequeueFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repoMock := mocks.NewMocknotificationRepository(ctrl)
	svc := NewService(repoMock, nil, nil, nil, testStrategy, testConfig())

	now := time.Now()
	repoMock.EXPECT().RequeueFailed(gomock.Any(), now, 5, time.Minute).Return(int64(3), nil)

	n, err := svc.RequeueFailed(context.Background(), now)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestSendBounded_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	senderMock := mocks.NewMockSender(ctrl)
	senderMock.EXPECT().Send(gomock.Any(), "user@example.com", "hi").DoAndReturn(
		func(ctx context.Context, to, msg string) error {
			time.Sleep(200 * time.Millisecond)
			return nil
		})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sendBounded(ctx, senderMock, "user@example.com", "hi")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestRecipientFor(t *testing.T) {
	user := model.User{ID: uuid.New(), Email: "user@example.com", Phone: "+15551234567"}

	to, err := recipientFor(user, model.ChannelEmail)
	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", to)

	to, err = recipientFor(user, model.ChannelSMS)
	assert.NoError(t, err)
	assert.Equal(t, "+15551234567", to)

	to, err = recipientFor(user, model.ChannelInApp)
	assert.NoError(t, err)
	assert.Equal(t, user.ID.String(), to)

	_, err = recipientFor(model.User{ID: user.ID}, model.ChannelSMS)
	assert.Error(t, err)
}
