package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/stemsi/courses-backend/internal/model"
	"github.com/stemsi/courses-backend/internal/repository"
)

// CourseService handles course business logic over any course backend.
type CourseService[K model.CourseKey] struct {
	store repository.CourseStore[K]
	log   zerolog.Logger
}

// NewCourseService creates a new CourseService. component names the
// backend in log lines.
func NewCourseService[K model.CourseKey](store repository.CourseStore[K], log zerolog.Logger, component string) *CourseService[K] {
	return &CourseService[K]{
		store: store,
		log:   log.With().Str("component", component).Logger(),
	}
}

// Create stores a new course. For backends that assign identity the
// assigned CourseID is written back into course.
func (s *CourseService[K]) Create(ctx context.Context, course *model.Course[K]) error {
	if err := s.store.Insert(ctx, course); err != nil {
		s.logFailure(err, "create", course.CourseID)
		return err
	}
	s.log.Debug().Any("course_id", course.CourseID).Msg("course created")
	return nil
}

// Get retrieves a course by its ID.
func (s *CourseService[K]) Get(ctx context.Context, id K) (*model.Course[K], error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		s.logFailure(err, "get", id)
		return nil, err
	}
	return c, nil
}

// List retrieves the courses matching filter.
func (s *CourseService[K]) List(ctx context.Context, filter model.CourseFilter) ([]model.Course[K], error) {
	courses, err := s.store.List(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list courses")
		return nil, err
	}
	return courses, nil
}

// Replace overwrites every mutable field of an existing course.
func (s *CourseService[K]) Replace(ctx context.Context, id K, fields model.CourseFields) (*model.Course[K], error) {
	c, err := s.store.Replace(ctx, id, fields)
	if err != nil {
		s.logFailure(err, "replace", id)
		return nil, err
	}
	s.log.Debug().Any("course_id", id).Msg("course replaced")
	return c, nil
}

// Patch applies the fields present in patch to an existing course. An
// empty patch is rejected before the store is consulted.
func (s *CourseService[K]) Patch(ctx context.Context, id K, patch model.CoursePatch) (*model.Course[K], error) {
	if patch.IsEmpty() {
		return nil, repository.ErrNoFieldsToUpdate
	}

	c, err := s.store.Merge(ctx, id, patch)
	if err != nil {
		s.logFailure(err, "patch", id)
		return nil, err
	}
	s.log.Debug().Any("course_id", id).Msg("course patched")
	return c, nil
}

// Delete removes a course.
func (s *CourseService[K]) Delete(ctx context.Context, id K) error {
	if err := s.store.Delete(ctx, id); err != nil {
		s.logFailure(err, "delete", id)
		return err
	}
	s.log.Debug().Any("course_id", id).Msg("course deleted")
	return nil
}

// logFailure logs store errors that are not an expected outcome.
func (s *CourseService[K]) logFailure(err error, op string, id K) {
	if IsExpected(err) {
		return
	}
	s.log.Error().Err(err).Str("op", op).Any("course_id", id).Msg("course store failure")
}

// IsExpected reports whether err is one of the outcomes callers translate
// into a client response rather than a server failure.
func IsExpected(err error) bool {
	return errors.Is(err, repository.ErrCourseNotFound) ||
		errors.Is(err, repository.ErrCourseExists) ||
		errors.Is(err, repository.ErrNoFieldsToUpdate)
}
