package notification

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/dbpg"

	"github.com/musehub/event-notifier/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func pendingRecord() model.NotificationRecord {
	return model.NotificationRecord{
		EventID:     uuid.New(),
		UserID:      uuid.New(),
		Type:        model.TypeReminder24h,
		Status:      model.StatusPending,
		Channel:     model.ChannelEmail,
		ScheduledAt: time.Now().Add(time.Hour),
		Message:     "Reminder: Jazz Evening starts in 24 hours",
	}
}

func TestCreate(t *testing.T) {
	repo, mock := setupMockDB(t)

	rec := pendingRecord()
	id := uuid.New()
	createdAt := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(rec.EventID, rec.UserID, rec.Type, rec.Status, rec.Channel, rec.ScheduledAt, rec.Message).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(id, createdAt))

	got, err := repo.Create(context.Background(), rec)
	assert.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, createdAt, got.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch(t *testing.T) {
	repo, mock := setupMockDB(t)

	r1 := pendingRecord()
	r2 := pendingRecord()
	r2.Type = model.TypeReminder1h

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(r1.EventID, r1.UserID, r1.Type, r1.Status, r1.Channel, r1.ScheduledAt, r1.Message).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(r2.EventID, r2.UserID, r2.Type, r2.Status, r2.Channel, r2.ScheduledAt, r2.Message).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))
	mock.ExpectCommit()

	created, err := repo.CreateBatch(context.Background(), []model.NotificationRecord{r1, r2})
	assert.NoError(t, err)
	assert.Len(t, created, 2)
	assert.NotEqual(t, uuid.Nil, created[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_RollsBackOnFailure(t *testing.T) {
	repo, mock := setupMockDB(t)

	rec := pendingRecord()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(rec.EventID, rec.UserID, rec.Type, rec.Status, rec.Channel, rec.ScheduledAt, rec.Message).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, err := repo.CreateBatch(context.Background(), []model.NotificationRecord{rec})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterParticipant(t *testing.T) {
	repo, mock := setupMockDB(t)

	rec := pendingRecord()
	p := model.Participant{EventID: rec.EventID, UserID: rec.UserID}
	participantID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO participants (event_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at;
    `)).
		WithArgs(p.EventID, p.UserID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(participantID, time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta(insertQuery)).
		WithArgs(rec.EventID, rec.UserID, rec.Type, rec.Status, rec.Channel, rec.ScheduledAt, rec.Message).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New(), time.Now()))
	mock.ExpectCommit()

	gotP, created, err := repo.RegisterParticipant(context.Background(), p, []model.NotificationRecord{rec})
	assert.NoError(t, err)
	assert.Equal(t, participantID, gotP.ID)
	assert.Len(t, created, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimDue(t *testing.T) {
	repo, mock := setupMockDB(t)

	now := time.Now()
	rec := pendingRecord()
	id := uuid.New()

	cols := []string{
		"id", "event_id", "user_id", "type", "status", "channel", "scheduled_at",
		"sent_at", "error_message", "retry_count", "message", "created_at", "updated_at",
	}
	earlier := rec.ScheduledAt.Add(-time.Hour)
	laterID := uuid.New()
	rows := sqlmock.NewRows(cols).
		AddRow(id, rec.EventID, rec.UserID, rec.Type, "processing", rec.Channel, earlier,
			nil, nil, 0, rec.Message, now, now).
		AddRow(laterID, rec.EventID, rec.UserID, rec.Type, "processing", rec.Channel, rec.ScheduledAt,
			nil, nil, 0, rec.Message, now, now)

	mock.ExpectQuery(regexp.QuoteMeta(`
		WITH claimed AS (
		    UPDATE event_notifications
		    SET status = 'processing', updated_at = $1
		    WHERE id IN (
		        SELECT id FROM event_notifications
		        WHERE status = 'pending' AND scheduled_at <= $1
		        ORDER BY scheduled_at ASC
		        LIMIT $2
		        FOR UPDATE SKIP LOCKED
		    )
		    RETURNING id, event_id, user_id, type, status, channel, scheduled_at,
		              sent_at, error_message, retry_count, message, created_at, updated_at
		)
		SELECT * FROM claimed ORDER BY scheduled_at ASC;
    `)).
		WithArgs(now, 10).
		WillReturnRows(rows)

	claimed, err := repo.ClaimDue(context.Background(), now, 10)
	assert.NoError(t, err)
	assert.Len(t, claimed, 2)
	assert.Equal(t, id, claimed[0].ID)
	assert.Equal(t, laterID, claimed[1].ID)
	assert.True(t, claimed[0].ScheduledAt.Before(claimed[1].ScheduledAt))
	assert.Equal(t, model.StatusProcessing, claimed[0].Status)
	assert.Nil(t, claimed[0].SentAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSent(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	sentAt := time.Now()
	query := regexp.QuoteMeta(`
		UPDATE event_notifications
		SET status = 'sent', sent_at = $1, error_message = NULL, updated_at = $1
		WHERE id = $2 AND status = 'processing';
    `)

	mock.ExpectExec(query).
		WithArgs(sentAt, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkSent(context.Background(), id, sentAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	// A record not in flight anymore is not transitioned.
	mock.ExpectExec(query).
		WithArgs(sentAt, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkSent(context.Background(), id, sentAt)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailed(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	query := regexp.QuoteMeta(`
		UPDATE event_notifications
		SET status = 'failed', error_message = $1,
		    retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $2 AND status = 'processing';
    `)

	mock.ExpectExec(query).
		WithArgs("smtp unreachable", id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkFailed(context.Background(), id, "smtp unreachable")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetFailed(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	query := regexp.QuoteMeta(`
		UPDATE event_notifications
		SET status = 'pending', error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'failed';
    `)

	mock.ExpectExec(query).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ResetFailed(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectExec(query).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.ResetFailed(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequeueStale(t *testing.T) {
	repo, mock := setupMockDB(t)

	cutoff := time.Now().Add(-5 * time.Minute)

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE event_notifications
		SET status = 'pending', updated_at = NOW()
		WHERE status = 'processing' AND updated_at < $1;
    `)).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.RequeueStale(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequeueFailed(t *testing.T) {
	repo, mock := setupMockDB(t)

	now := time.Now()

	// The sweep must clear error_message: only failed rows carry one.
	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE event_notifications
		SET status = 'pending',
		    error_message = NULL,
		    scheduled_at = $1::timestamptz + make_interval(secs => $2 * power(2, retry_count - 1)),
		    updated_at = NOW()
		WHERE status = 'failed' AND retry_count < $3;
    `)).
		WithArgs(now, float64(60), 5).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.RequeueFailed(context.Background(), now, 5, time.Minute)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHasScheduled(t *testing.T) {
	repo, mock := setupMockDB(t)

	eventID := uuid.New()
	userID := uuid.New()
	query := regexp.QuoteMeta(`
		SELECT EXISTS (
		    SELECT 1 FROM event_notifications
		    WHERE event_id = $1 AND user_id = $2 AND type = $3
		);
    `)

	mock.ExpectQuery(query).
		WithArgs(eventID, userID, model.TypeReminder24h).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.HasScheduled(context.Background(), eventID, userID, model.TypeReminder24h)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatusByID(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	query := regexp.QuoteMeta(`
		SELECT status
		FROM event_notifications
		WHERE id = $1;
    `)

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	status, err := repo.GetStatusByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, status)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetStatusByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByEvent(t *testing.T) {
	repo, mock := setupMockDB(t)

	eventID := uuid.New()
	now := time.Now()
	query := regexp.QuoteMeta(`
		SELECT id, event_id, user_id, type, status, channel, scheduled_at,
		       sent_at, error_message, retry_count, message, created_at, updated_at
		FROM event_notifications
		WHERE event_id = $1
		ORDER BY scheduled_at ASC;
    `)

	cols := []string{
		"id", "event_id", "user_id", "type", "status", "channel", "scheduled_at",
		"sent_at", "error_message", "retry_count", "message", "created_at", "updated_at",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(uuid.New(), eventID, uuid.New(), "event_created", "sent", "email", now, now, nil, 0, "msg1", now, now).
		AddRow(uuid.New(), eventID, uuid.New(), "reminder_24h", "failed", "email", now, nil, "smtp unreachable", 2, "msg2", now, now)

	mock.ExpectQuery(query).
		WithArgs(eventID).
		WillReturnRows(rows)

	list, err := repo.ListByEvent(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Len(t, list, 2)
	assert.NotNil(t, list[0].SentAt)
	assert.Equal(t, "smtp unreachable", list[1].ErrorMessage)
	assert.Equal(t, 2, list[1].RetryCount)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(query).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = repo.ListByEvent(context.Background(), eventID)
	assert.ErrorIs(t, err, ErrNoNotificationsFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
