package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/techmaa/portal/types"
)

const courseColumns = `c.id, c.title, c.description, c.created_at, c.updated_at`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course types.Course) (types.Course, error) {
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	const query = `
		INSERT INTO courses (title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		course.Title,
		course.Description,
		course.CreatedAt,
		course.UpdatedAt,
	).Scan(&course.ID); err != nil {
		return types.Course{}, mapWriteError(err)
	}
	return course, nil
}

func (r *CourseRepository) GetActiveByID(ctx context.Context, id int64) (types.Course, error) {
	const query = `
		SELECT ` + courseColumns + `
		FROM courses c
		WHERE c.id = $1 AND NOT c.is_deleted`
	var course types.Course
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Course{}, ErrNotFound
		}
		return types.Course{}, err
	}
	return course, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]types.Course, error) {
	const query = `
		SELECT ` + courseColumns + `
		FROM courses c
		WHERE NOT c.is_deleted
		ORDER BY LOWER(c.title), c.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	courses := make([]types.Course, 0)
	for rows.Next() {
		var course types.Course
		if err := rows.Scan(
			&course.ID,
			&course.Title,
			&course.Description,
			&course.CreatedAt,
			&course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}

// courseScan receives a LEFT JOINed course, which may be absent.
type courseScan struct {
	id          sql.NullInt64
	title       sql.NullString
	description sql.NullString
	createdAt   sql.NullTime
	updatedAt   sql.NullTime
}

func (s *courseScan) dest() []any {
	return []any{&s.id, &s.title, &s.description, &s.createdAt, &s.updatedAt}
}

func (s *courseScan) course() *types.Course {
	if !s.id.Valid {
		return nil
	}
	return &types.Course{
		ID:          s.id.Int64,
		Title:       s.title.String,
		Description: s.description.String,
		CreatedAt:   s.createdAt.Time,
		UpdatedAt:   s.updatedAt.Time,
	}
}

func courseID(c *types.Course) int64 {
	if c == nil {
		return 0
	}
	return c.ID
}
