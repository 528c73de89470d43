package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/academyos/academyos/pkg/domain"
)

// CoursesRepository handles course persistence.
type CoursesRepository struct {
	db *sql.DB
}

// NewCoursesRepository creates a new courses repository.
func NewCoursesRepository(db *sql.DB) *CoursesRepository {
	return &CoursesRepository{db: db}
}

const courseColumns = `id, organization_id, title, description, published, created_at, updated_at, deleted_at`

func scanCourse(row interface{ Scan(...any) error }) (*domain.Course, error) {
	var course domain.Course
	err := row.Scan(
		&course.ID,
		&course.OrganizationID,
		&course.Title,
		&course.Description,
		&course.Published,
		&course.CreatedAt,
		&course.UpdatedAt,
		&course.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// Create creates a new course.
func (r *CoursesRepository) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (id, organization_id, title, description, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		course.ID,
		course.OrganizationID,
		course.Title,
		course.Description,
		course.Published,
		course.CreatedAt,
		course.UpdatedAt,
	)
	return err
}

// GetByID retrieves a course scoped to an organization.
func (r *CoursesRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`
	return scanCourse(r.db.QueryRowContext(ctx, query, id, orgID))
}

// ListByOrganization retrieves an organization's courses.
// When publishedOnly is true, only published courses are returned.
func (r *CoursesRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID, publishedOnly bool) ([]*domain.Course, error) {
	query := `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE organization_id = $1
			AND deleted_at IS NULL
			AND ($2 = false OR published = true)
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, publishedOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []*domain.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}

	return courses, rows.Err()
}

// Update updates a course's title, description, and published state.
func (r *CoursesRepository) Update(ctx context.Context, orgID uuid.UUID, course *domain.Course) error {
	query := `
		UPDATE courses
		SET title = $3, description = $4, published = $5, updated_at = NOW()
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		course.ID,
		orgID,
		course.Title,
		course.Description,
		course.Published,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

// Archive soft deletes a course.
func (r *CoursesRepository) Archive(ctx context.Context, orgID, id uuid.UUID) error {
	query := `
		UPDATE courses
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
		return domain.ErrCourseNotFound
	}
	return nil
}

// CountByOrganization counts live courses in an organization.
func (r *CoursesRepository) CountByOrganization(ctx context.Context, orgID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM courses WHERE organization_id = $1 AND deleted_at IS NULL`
	var count int
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(&count)
	return count, err
}
