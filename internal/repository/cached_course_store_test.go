package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/courses-backend/internal/config"
	"github.com/stemsi/courses-backend/internal/model"
	"github.com/stemsi/courses-backend/internal/repository"
)

var _ repository.CourseStore[int64] = (*repository.CachedCourseStore)(nil)

// countingStore serves a single course and counts reads. afterRead, when
// set, runs once between reading the row and returning it.
type countingStore struct {
	course    model.Course[int64]
	gets      int
	afterRead func()
}

func (s *countingStore) Insert(_ context.Context, c *model.Course[int64]) error {
	c.CourseID = s.course.CourseID
	return nil
}

func (s *countingStore) Get(_ context.Context, id int64) (*model.Course[int64], error) {
	s.gets++
	if id != s.course.CourseID {
		return nil, repository.ErrCourseNotFound
	}
	c := s.course
	if hook := s.afterRead; hook != nil {
		s.afterRead = nil
		hook()
	}
	return &c, nil
}

func (s *countingStore) List(context.Context, model.CourseFilter) ([]model.Course[int64], error) {
	return []model.Course[int64]{s.course}, nil
}

func (s *countingStore) Replace(_ context.Context, _ int64, fields model.CourseFields) (*model.Course[int64], error) {
	s.course.CourseFields = fields
	c := s.course
	return &c, nil
}

func (s *countingStore) Merge(_ context.Context, _ int64, patch model.CoursePatch) (*model.Course[int64], error) {
	patch.ApplyTo(&s.course.CourseFields)
	c := s.course
	return &c, nil
}

func (s *countingStore) Delete(context.Context, int64) error { return nil }

func newCountingStore() *countingStore {
	return &countingStore{course: model.Course[int64]{
		CourseID:     7,
		CourseFields: model.CourseFields{CourseName: "Old", Credits: 4, Semester: 2},
	}}
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// unreachableRedis points at a port nothing listens on.
func unreachableRedis(t *testing.T) *redis.Client {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestCachedCourseStore_ServesHitsAndEvictsOnWrite(t *testing.T) {
	t.Parallel()

	mr, rdb := newMiniredis(t)
	next := newCountingStore()
	store := repository.NewCachedCourseStore(next, rdb, time.Minute, zerolog.Nop())

	for range 3 {
		got, err := store.Get(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "Old", got.CourseName)
	}
	assert.Equal(t, 1, next.gets)
	assert.True(t, mr.Exists(config.CacheKey.CourseKey(7)))

	_, err := store.Merge(ctx, 7, model.CoursePatch{CourseName: ptr("New")})
	require.NoError(t, err)
	assert.False(t, mr.Exists(config.CacheKey.CourseKey(7)))

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "New", got.CourseName)
	assert.Equal(t, 2, next.gets)
}

func TestCachedCourseStore_ReadRacingWriteDoesNotCacheOldRecord(t *testing.T) {
	t.Parallel()

	_, rdb := newMiniredis(t)
	next := newCountingStore()
	store := repository.NewCachedCourseStore(next, rdb, time.Minute, zerolog.Nop())

	// The write lands after the read has loaded the old row but before it
	// fills the cache.
	next.afterRead = func() {
		_, err := store.Merge(ctx, 7, model.CoursePatch{CourseName: ptr("New")})
		require.NoError(t, err)
	}

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Old", got.CourseName)

	got, err = store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "New", got.CourseName)
}

func TestCachedCourseStore_WriteRefusedWhenCacheCannotBeInvalidated(t *testing.T) {
	t.Parallel()

	mr, rdb := newMiniredis(t)
	next := newCountingStore()
	store := repository.NewCachedCourseStore(next, rdb, time.Minute, zerolog.Nop())

	_, err := store.Get(ctx, 7)
	require.NoError(t, err)

	mr.SetError("LOADING Redis is loading the dataset in memory")
	_, err = store.Merge(ctx, 7, model.CoursePatch{CourseName: ptr("New")})
	require.Error(t, err)
	assert.Error(t, store.Delete(ctx, 7))
	mr.SetError("")

	assert.Equal(t, "Old", next.course.CourseName)
	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, next.course.CourseName, got.CourseName)
}

func TestCachedCourseStore_CancelledRequestStillInvalidates(t *testing.T) {
	t.Parallel()

	mr, rdb := newMiniredis(t)
	next := newCountingStore()
	store := repository.NewCachedCourseStore(next, rdb, time.Minute, zerolog.Nop())

	_, err := store.Get(ctx, 7)
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Replace(cancelled, 7, model.CourseFields{CourseName: "New", Credits: 1, Semester: 1})
	require.NoError(t, err)
	assert.False(t, mr.Exists(config.CacheKey.CourseKey(7)))

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "New", got.CourseName)
}

func TestCachedCourseStore_RedisDown(t *testing.T) {
	t.Parallel()

	next := newCountingStore()
	store := repository.NewCachedCourseStore(next, unreachableRedis(t), time.Minute, zerolog.Nop())

	got, err := store.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Old", got.CourseName)

	_, err = store.Get(ctx, 8)
	assert.ErrorIs(t, err, repository.ErrCourseNotFound)

	_, err = store.Merge(ctx, 7, model.CoursePatch{Credits: ptr(6)})
	require.Error(t, err)
	assert.Equal(t, 4, next.course.Credits)
}
