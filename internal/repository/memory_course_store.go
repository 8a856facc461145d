package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/stemsi/courses-backend/internal/model"
)

// MemoryCourseStore keeps catalog courses in process memory, keyed by the
// caller-supplied CourseID. Contents live as long as the store instance.
type MemoryCourseStore struct {
	mu      sync.RWMutex
	courses map[string]model.Course[string]
}

// NewMemoryCourseStore creates an empty MemoryCourseStore.
func NewMemoryCourseStore() *MemoryCourseStore {
	return &MemoryCourseStore{courses: make(map[string]model.Course[string])}
}

// Insert adds c, failing with ErrCourseExists if its CourseID is taken.
func (s *MemoryCourseStore) Insert(_ context.Context, c *model.Course[string]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[c.CourseID]; ok {
		return ErrCourseExists
	}
	s.courses[c.CourseID] = *c
	return nil
}

// Get returns a copy of the course stored under id.
func (s *MemoryCourseStore) Get(_ context.Context, id string) (*model.Course[string], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	return &c, nil
}

// List returns the courses matching filter, ordered by CourseID.
func (s *MemoryCourseStore) List(_ context.Context, filter model.CourseFilter) ([]model.Course[string], error) {
	s.mu.RLock()
	courses := make([]model.Course[string], 0, len(s.courses))
	for _, c := range s.courses {
		if filter.Matches(c.CourseFields) {
			courses = append(courses, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(courses, func(i, j int) bool { return courses[i].CourseID < courses[j].CourseID })
	return courses, nil
}

// Replace overwrites every mutable field of the course stored under id.
func (s *MemoryCourseStore) Replace(_ context.Context, id string, fields model.CourseFields) (*model.Course[string], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return nil, ErrCourseNotFound
	}
	c := model.Course[string]{CourseID: id, CourseFields: fields}
	s.courses[id] = c
	return &c, nil
}

// Merge applies patch on top of the course stored under id.
func (s *MemoryCourseStore) Merge(_ context.Context, id string, patch model.CoursePatch) (*model.Course[string], error) {
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.courses[id]
	if !ok {
		return nil, ErrCourseNotFound
	}
	patch.ApplyTo(&c.CourseFields)
	s.courses[id] = c
	return &c, nil
}

// Delete removes the course stored under id.
func (s *MemoryCourseStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[id]; !ok {
		return ErrCourseNotFound
	}
	delete(s.courses, id)
	return nil
}
