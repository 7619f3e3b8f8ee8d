// Package inbox persists in-app notifications: the unread feed users see on
// their musehub dashboard. The repository doubles as the in_app delivery
// channel, so dispatching to it is just an insert.
package inbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"
)

// Entry is one in-app inbox row.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository provides methods to interact with the notifications inbox table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new inbox repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// Send implements the dispatcher's channel contract: to is the recipient
// user ID and the message lands in their inbox unread.
func (r *Repository) Send(ctx context.Context, to, message string) error {
	userID, err := uuid.Parse(to)
	if err != nil {
		return fmt.Errorf("invalid inbox recipient %q: %w", to, err)
	}

	query := `
		INSERT INTO notifications (user_id, message)
		VALUES ($1, $2);
    `

	if _, err := r.db.ExecContext(ctx, query, userID, message); err != nil {
		return fmt.Errorf("failed to create inbox entry: %w", err)
	}

	return nil
}

// ListUnread returns a user's unread inbox entries, newest first.
func (r *Repository) ListUnread(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	query := `
		SELECT id, user_id, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unread entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Message, &e.IsRead, &e.CreatedAt); err != nil {
			return nil, err
		}

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read unread entries: %w", err)
	}

	return entries, nil
}

// CountUnread returns the number of unread entries for a user.
func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE;
    `

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread entries: %w", err)
	}

	return count, nil
}

// MarkRead marks a single inbox entry as read.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1;
    `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to mark entry read: %w", err)
	}

	return nil
}
