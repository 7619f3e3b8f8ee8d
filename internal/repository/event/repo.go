package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/musehub/event-notifier/internal/model"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrUserNotFound  = errors.New("user not found")
)

// Repository reads events, users and participants from the shared musehub
// schema. The web application owns those tables; this repository only
// resolves the fields the notifier needs.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new event provider repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// GetEvent resolves an event by its ID.
func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (model.Event, error) {
	query := `
		SELECT id, title, description, location, date_time
		FROM events
		WHERE id = $1;
    `

	var e model.Event
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.Title, &e.Description, &e.Location, &e.DateTime,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Event{}, ErrEventNotFound
		}

		return model.Event{}, fmt.Errorf("failed to get event: %w", err)
	}

	return e, nil
}

// GetUser resolves a user by its ID.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	query := `
		SELECT id, email, COALESCE(phone, '')
		FROM users
		WHERE id = $1;
    `

	var u model.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Phone)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrUserNotFound
		}

		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// ListParticipants returns the materialized participant list of an event.
func (r *Repository) ListParticipants(ctx context.Context, eventID uuid.UUID) ([]model.Participant, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC;
    `

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &p.CreatedAt); err != nil {
			return nil, err
		}

		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read participants: %w", err)
	}

	return participants, nil
}
