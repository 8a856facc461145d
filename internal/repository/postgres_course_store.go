package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/courses-backend/internal/model"
)

const coursesTable = "courses"

var courseColumns = []string{"course_id", "course_name", "credits", "description", "semester"}

// PostgresCourseStore persists courses in the courses table. CourseID is
// assigned by the table's sequence.
type PostgresCourseStore struct {
	pool *pgxpool.Pool
	psql sq.StatementBuilderType
}

// NewPostgresCourseStore creates a new PostgresCourseStore.
func NewPostgresCourseStore(pool *pgxpool.Pool) *PostgresCourseStore {
	return &PostgresCourseStore{
		pool: pool,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Insert adds c and writes the assigned CourseID back into it.
func (r *PostgresCourseStore) Insert(ctx context.Context, c *model.Course[int64]) error {
	query, args, err := r.psql.Insert(coursesTable).
		Columns("course_name", "credits", "description", "semester").
		Values(c.CourseName, c.Credits, c.Description, c.Semester).
		Suffix("RETURNING course_id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&c.CourseID); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

// Get retrieves a course by its ID.
func (r *PostgresCourseStore) Get(ctx context.Context, id int64) (*model.Course[int64], error) {
	query, args, err := r.psql.Select(courseColumns...).
		From(coursesTable).
		Where(sq.Eq{"course_id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	c := &model.Course[int64]{}
	if err := pgxscan.Get(ctx, r.pool, c, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("get course %d: %w", id, err)
	}
	return c, nil
}

// List retrieves the courses matching filter, ordered by CourseID.
func (r *PostgresCourseStore) List(ctx context.Context, filter model.CourseFilter) ([]model.Course[int64], error) {
	sel := r.psql.Select(courseColumns...).From(coursesTable).OrderBy("course_id")
	if filter.Semester != nil {
		sel = sel.Where(sq.Eq{"semester": *filter.Semester})
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	courses := []model.Course[int64]{}
	if err := pgxscan.Select(ctx, r.pool, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Replace overwrites every mutable field of a course.
func (r *PostgresCourseStore) Replace(ctx context.Context, id int64, fields model.CourseFields) (*model.Course[int64], error) {
	return r.update(ctx, id, map[string]any{
		"course_name": fields.CourseName,
		"credits":     fields.Credits,
		"description": fields.Description,
		"semester":    fields.Semester,
	})
}

// Merge updates only the columns present in patch, in a single statement.
func (r *PostgresCourseStore) Merge(ctx context.Context, id int64, patch model.CoursePatch) (*model.Course[int64], error) {
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	return r.update(ctx, id, patch.Columns())
}

// Delete removes a course by its ID.
func (r *PostgresCourseStore) Delete(ctx context.Context, id int64) error {
	query, args, err := r.psql.Delete(coursesTable).Where(sq.Eq{"course_id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete course %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCourseNotFound
	}
	return nil
}

func (r *PostgresCourseStore) update(ctx context.Context, id int64, cols map[string]any) (*model.Course[int64], error) {
	query, args, err := r.psql.Update(coursesTable).
		SetMap(cols).
		Where(sq.Eq{"course_id": id}).
		Suffix("RETURNING course_id, course_name, credits, description, semester").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}

	c := &model.Course[int64]{}
	if err := pgxscan.Get(ctx, r.pool, c, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("update course %d: %w", id, err)
	}
	return c, nil
}
