package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

// RemindersRepository handles reminder persistence.
type RemindersRepository struct {
	db *sql.DB
}

// NewRemindersRepository creates a new reminders repository.
func NewRemindersRepository(db *sql.DB) *RemindersRepository {
	return &RemindersRepository{db: db}
}

// Create creates a new reminder.
func (r *RemindersRepository) Create(ctx context.Context, reminder *domain.Reminder) error {
	query := `
		INSERT INTO reminders (id, organization_id, created_by, message, remind_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.OrganizationID,
		reminder.CreatedBy,
		reminder.Message,
		reminder.RemindAt,
		reminder.CreatedAt,
	)
	return err
}

// ListByOrganization retrieves an organization's reminders ordered by due time.
func (r *RemindersRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Reminder, error) {
	query := `
		SELECT id, organization_id, created_by, message, remind_at, created_at, deleted_at
		FROM reminders
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY remind_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []*domain.Reminder
	for rows.Next() {
		var reminder domain.Reminder
		err := rows.Scan(
			&reminder.ID,
			&reminder.OrganizationID,
			&reminder.CreatedBy,
			&reminder.Message,
			&reminder.RemindAt,
			&reminder.CreatedAt,
			&reminder.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, &reminder)
	}

	return reminders, rows.Err()
}

// Delete soft deletes a reminder.
func (r *RemindersRepository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE reminders
		SET deleted_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id, orgID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}
