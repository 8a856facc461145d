package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/courses-backend/internal/config"
	"github.com/stemsi/courses-backend/internal/handler"
	"github.com/stemsi/courses-backend/internal/model"
	"github.com/stemsi/courses-backend/internal/repository"
	"github.com/stemsi/courses-backend/internal/response"
	"github.com/stemsi/courses-backend/internal/router"
	"github.com/stemsi/courses-backend/internal/service"
)

// fakeCourseStore stands in for the Postgres store: it assigns increasing
// ids and can be told to fail every call.
type fakeCourseStore struct {
	mu      sync.Mutex
	nextID  int64
	courses map[int64]model.Course[int64]
	err     error
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{courses: make(map[int64]model.Course[int64])}
}

func (s *fakeCourseStore) Insert(_ context.Context, c *model.Course[int64]) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.nextID++
	c.CourseID = s.nextID
	s.courses[c.CourseID] = *c
	return nil
}

func (s *fakeCourseStore) Get(_ context.Context, id int64) (*model.Course[int64], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.courses[id]
	if !ok {
		return nil, repository.ErrCourseNotFound
	}
	return &c, nil
}

func (s *fakeCourseStore) List(_ context.Context, filter model.CourseFilter) ([]model.Course[int64], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := []model.Course[int64]{}
	for _, c := range s.courses {
		if filter.Matches(c.CourseFields) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CourseID < out[j].CourseID })
	return out, nil
}

func (s *fakeCourseStore) Replace(_ context.Context, id int64, fields model.CourseFields) (*model.Course[int64], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.courses[id]; !ok {
		return nil, repository.ErrCourseNotFound
	}
	c := model.Course[int64]{CourseID: id, CourseFields: fields}
	s.courses[id] = c
	return &c, nil
}

func (s *fakeCourseStore) Merge(_ context.Context, id int64, patch model.CoursePatch) (*model.Course[int64], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.courses[id]
	if !ok {
		return nil, repository.ErrCourseNotFound
	}
	patch.ApplyTo(&c.CourseFields)
	s.courses[id] = c
	return &c, nil
}

func (s *fakeCourseStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if _, ok := s.courses[id]; !ok {
		return repository.ErrCourseNotFound
	}
	delete(s.courses, id)
	return nil
}

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *response.ErrorBody `json:"error"`
}

type testServer struct {
	engine  *gin.Engine
	courses *fakeCourseStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	courses := newFakeCourseStore()
	log := zerolog.Nop()
	handlers := &router.Handlers{
		Course:  handler.NewCourseHandler(service.NewCourseService[int64](courses, log, "course_service")),
		Catalog: handler.NewCatalogHandler(service.NewCourseService[string](repository.NewMemoryCourseStore(), log, "catalog_service")),
	}
	cfg := &config.Config{GinMode: gin.TestMode, CompressionMinBytes: 1024}

	return &testServer{engine: router.SetupRouter(handlers, cfg, log, nil), courses: courses}
}

func (s *testServer) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

var errConnectionLost = errors.New("connection lost")
