package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/musehub/event-notifier/internal/model"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNoNotificationsFound = errors.New("no notifications found")
)

// Repository provides methods to interact with the event_notifications table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

const insertQuery = `
		INSERT INTO event_notifications (
		    event_id, user_id, type, status, channel, scheduled_at, message
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at;
    `

// Create inserts a single pending notification record and returns it with
// the generated id and creation timestamp filled in.
func (r *Repository) Create(ctx context.Context, rec model.NotificationRecord) (model.NotificationRecord, error) {
	err := r.db.QueryRowContext(
		ctx, insertQuery,
		rec.EventID, rec.UserID, rec.Type, rec.Status, rec.Channel, rec.ScheduledAt, rec.Message,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return model.NotificationRecord{}, fmt.Errorf("failed to create notification: %w", err)
	}

	return rec, nil
}

// CreateBatch inserts a set of records in a single transaction. Either the
// whole set persists or none of it does.
func (r *Repository) CreateBatch(ctx context.Context, recs []model.NotificationRecord) ([]model.NotificationRecord, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := insertAllTx(ctx, tx, recs)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit notifications: %w", err)
	}

	return created, nil
}

// RegisterParticipant persists a participant row together with its
// notification set in one transaction. A rollback leaves neither the
// registration nor a partial notification set behind.
func (r *Repository) RegisterParticipant(ctx context.Context, p model.Participant, recs []model.NotificationRecord) (model.Participant, []model.NotificationRecord, error) {
	tx, err := r.db.Master.BeginTx(ctx, nil)
	if err != nil {
		return model.Participant{}, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO participants (event_id, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at;
    `, p.EventID, p.UserID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return model.Participant{}, nil, fmt.Errorf("failed to create participant: %w", err)
	}

	created, err := insertAllTx(ctx, tx, recs)
	if err != nil {
		return model.Participant{}, nil, err
	}

	if err := tx.Commit(); err != nil {
		return model.Participant{}, nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	return p, created, nil
}

func insertAllTx(ctx context.Context, tx *sql.Tx, recs []model.NotificationRecord) ([]model.NotificationRecord, error) {
	created := make([]model.NotificationRecord, 0, len(recs))

	for _, rec := range recs {
		err := tx.QueryRowContext(
			ctx, insertQuery,
			rec.EventID, rec.UserID, rec.Type, rec.Status, rec.Channel, rec.ScheduledAt, rec.Message,
		).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create notification: %w", err)
		}

		created = append(created, rec)
	}

	return created, nil
}

// ClaimDue atomically claims up to limit due pending records, earliest first.
// Claimed rows move to status 'processing' so a concurrent batch cannot pick
// them up again; SKIP LOCKED keeps overlapping invocations from blocking on
// each other. RETURNING alone has no defined order, so the claimed set is
// re-sorted through the CTE.
func (r *Repository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.NotificationRecord, error) {
	query := `
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
    `

	rows, err := r.db.QueryContext(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim due notifications: %w", err)
	}
	defer rows.Close()

	var recs []model.NotificationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed notifications: %w", err)
	}

	return recs, nil
}

// MarkSent transitions a claimed record to 'sent' and stamps sent_at.
func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE event_notifications
		SET status = 'sent', sent_at = $1, error_message = NULL, updated_at = $1
		WHERE id = $2 AND status = 'processing';
    `

	res, err := r.db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// MarkFailed transitions a claimed record to 'failed', records the failure
// detail and increments the retry counter by exactly one.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error {
	query := `
		UPDATE event_notifications
		SET status = 'failed', error_message = $1,
		    retry_count = retry_count + 1, updated_at = NOW()
		WHERE id = $2 AND status = 'processing';
    `

	res, err := r.db.ExecContext(ctx, query, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// ResetFailed is the administrative retry: a failed record goes back to
// 'pending' with its error cleared. The retry counter is preserved.
func (r *Repository) ResetFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE event_notifications
		SET status = 'pending', error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND status = 'failed';
    `

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to reset notification: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

// RequeueStale returns records abandoned mid-claim (a dispatch batch killed
// after claiming but before recording an outcome) to 'pending'.
func (r *Repository) RequeueStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE event_notifications
		SET status = 'pending', updated_at = NOW()
		WHERE status = 'processing' AND updated_at < $1;
    `

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue stale notifications: %w", err)
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

// RequeueFailed moves failed records below the attempt cap back to 'pending',
// pushing scheduled_at forward by baseDelay doubled per prior attempt. The
// error text is cleared like in ResetFailed; only failed rows carry one.
// Records at or above the cap stay failed until reset manually.
func (r *Repository) RequeueFailed(ctx context.Context, now time.Time, maxAttempts int, baseDelay time.Duration) (int64, error) {
	query := `
		UPDATE event_notifications
		SET status = 'pending',
		    error_message = NULL,
		    scheduled_at = $1::timestamptz + make_interval(secs => $2 * power(2, retry_count - 1)),
		    updated_at = NOW()
		WHERE status = 'failed' AND retry_count < $3;
    `

	res, err := r.db.ExecContext(ctx, query, now, baseDelay.Seconds(), maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("failed to requeue failed notifications: %w", err)
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

// HasScheduled reports whether any record exists for the (event, user, type)
// triple, regardless of status. Used by the scheduler as a duplicate guard.
func (r *Repository) HasScheduled(ctx context.Context, eventID, userID uuid.UUID, typ model.Type) (bool, error) {
	query := `
		SELECT EXISTS (
		    SELECT 1 FROM event_notifications
		    WHERE event_id = $1 AND user_id = $2 AND type = $3
		);
    `

	var exists bool
	err := r.db.QueryRowContext(ctx, query, eventID, userID, typ).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check scheduled notification: %w", err)
	}

	return exists, nil
}

// GetByID retrieves one record.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (model.NotificationRecord, error) {
	query := `
		SELECT id, event_id, user_id, type, status, channel, scheduled_at,
		       sent_at, error_message, retry_count, message, created_at, updated_at
		FROM event_notifications
		WHERE id = $1;
    `

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NotificationRecord{}, ErrNotificationNotFound
		}

		return model.NotificationRecord{}, fmt.Errorf("failed to get notification: %w", err)
	}

	return rec, nil
}

// GetStatusByID retrieves the status of a record by its ID.
func (r *Repository) GetStatusByID(ctx context.Context, id uuid.UUID) (model.Status, error) {
	query := `
		SELECT status
		FROM event_notifications
		WHERE id = $1;
    `

	var status model.Status
	err := r.db.QueryRowContext(ctx, query, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotificationNotFound
		}

		return "", fmt.Errorf("failed to get notification status: %w", err)
	}

	return status, nil
}

// ListByEvent retrieves all records for an event ordered by scheduled_at.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]model.NotificationRecord, error) {
	query := `
		SELECT id, event_id, user_id, type, status, channel, scheduled_at,
		       sent_at, error_message, retry_count, message, created_at, updated_at
		FROM event_notifications
		WHERE event_id = $1
		ORDER BY scheduled_at ASC;
    `

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var recs []model.NotificationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read notifications: %w", err)
	}

	if len(recs) == 0 {
		return nil, ErrNoNotificationsFound
	}

	return recs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.NotificationRecord, error) {
	var (
		rec     model.NotificationRecord
		sentAt  sql.NullTime
		errMsg  sql.NullString
		message sql.NullString
	)

	err := row.Scan(
		&rec.ID, &rec.EventID, &rec.UserID, &rec.Type, &rec.Status, &rec.Channel,
		&rec.ScheduledAt, &sentAt, &errMsg, &rec.RetryCount, &message,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return model.NotificationRecord{}, err
	}

	if sentAt.Valid {
		t := sentAt.Time
		rec.SentAt = &t
	}
	rec.ErrorMessage = errMsg.String
	rec.Message = message.String

	return rec, nil
}
