package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

// StudentsRepository handles student roster persistence.
type StudentsRepository struct {
	db *sql.DB
}

// NewStudentsRepository creates a new students repository.
func NewStudentsRepository(db *sql.DB) *StudentsRepository {
	return &StudentsRepository{db: db}
}

const studentColumns = `id, organization_id, user_id, email, name, created_at, updated_at, deleted_at`

func scanStudent(row interface{ Scan(...any) error }) (*domain.Student, error) {
	var student domain.Student
	err := row.Scan(
		&student.ID,
		&student.OrganizationID,
		&student.UserID,
		&student.Email,
		&student.Name,
		&student.CreatedAt,
		&student.UpdatedAt,
		&student.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, err
	}
	return &student, nil
}

// Create adds a student to the roster.
func (r *StudentsRepository) Create(ctx context.Context, student *domain.Student) error {
	query := `
		INSERT INTO students (id, organization_id, user_id, email, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.OrganizationID,
		student.UserID,
		student.Email,
		student.Name,
		student.CreatedAt,
		student.UpdatedAt,
	)
	return err
}

// GetByID retrieves a student scoped to an organization.
func (r *StudentsRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`
	return scanStudent(r.db.QueryRowContext(ctx, query, id, orgID))
}

// ListByOrganization retrieves an organization's student roster.
func (r *StudentsRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]*domain.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE organization_id = $1 AND deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*domain.Student
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	return students, rows.Err()
}

// Remove soft deletes a student from the roster.
func (r *StudentsRepository) Remove(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE students
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
		return domain.ErrStudentNotFound
	}
	return nil
}

// CountByOrganization counts live students in an organization.
func (r *StudentsRepository) CountByOrganization(ctx context.Context, orgID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM students WHERE organization_id = $1 AND deleted_at IS NULL`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
