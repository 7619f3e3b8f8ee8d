package event

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

func TestGetEvent(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	start := time.Now().Add(48 * time.Hour)
	query := regexp.QuoteMeta(`
		SELECT id, title, description, location, date_time
		FROM events
		WHERE id = $1;
    `)

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "location", "date_time"}).
			AddRow(id, "Jazz Evening", "An evening of jazz", "Blue Note", start))

	ev, err := repo.GetEvent(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "Jazz Evening", ev.Title)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetEvent(context.Background(), id)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUser(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	query := regexp.QuoteMeta(`
		SELECT id, email, COALESCE(phone, '')
		FROM users
		WHERE id = $1;
    `)

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "phone"}).
			AddRow(id, "user@example.com", ""))

	u, err := repo.GetUser(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, "user@example.com", u.Email)
	assert.Empty(t, u.Phone)
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetUser(context.Background(), id)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListParticipants(t *testing.T) {
	repo, mock := setupMockDB(t)

	eventID := uuid.New()
	now := time.Now()
	query := regexp.QuoteMeta(`
		SELECT id, event_id, user_id, created_at
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC;
    `)

	rows := sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at"}).
		AddRow(uuid.New(), eventID, uuid.New(), now).
		AddRow(uuid.New(), eventID, uuid.New(), now)

	mock.ExpectQuery(query).
		WithArgs(eventID).
		WillReturnRows(rows)

	participants, err := repo.ListParticipants(context.Background(), eventID)
	assert.NoError(t, err)
	assert.Len(t, participants, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
