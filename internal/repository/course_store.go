package repository

import (
	"context"
	"errors"

	"github.com/stemsi/courses-backend/internal/model"
)

var (
	ErrCourseNotFound   = errors.New("course not found")
	ErrCourseExists     = errors.New("course with this CourseID already exists")
	ErrNoFieldsToUpdate = errors.New("no fields to update")
)

// CourseStore is the set of operations every course backend provides.
type CourseStore[K model.CourseKey] interface {
	// Insert stores c. Backends that assign identity write it back into c;
	// backends keyed by the caller return ErrCourseExists on a duplicate.
	Insert(ctx context.Context, c *model.Course[K]) error
	Get(ctx context.Context, id K) (*model.Course[K], error)
	List(ctx context.Context, filter model.CourseFilter) ([]model.Course[K], error)
	// Replace overwrites every mutable field.
	Replace(ctx context.Context, id K, fields model.CourseFields) (*model.Course[K], error)
	// Merge applies only the fields present in patch.
	Merge(ctx context.Context, id K, patch model.CoursePatch) (*model.Course[K], error)
	Delete(ctx context.Context, id K) error
}
