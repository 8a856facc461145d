package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/courses-backend/internal/config"
	"github.com/stemsi/courses-backend/internal/model"
)

const (
	// invalidateTimeout bounds cache invalidation, which runs detached from
	// the request so a cancelled client cannot leave a stale entry behind.
	invalidateTimeout = 2 * time.Second
	// genTTL keeps write generations around far longer than any fill.
	genTTL = 24 * time.Hour
)

// errStaleFill aborts a cache fill that lost the race against a write.
var errStaleFill = errors.New("course changed during cache fill")

// CachedCourseStore is a read-through Redis cache in front of a persistent
// course store. Single-course reads are cached.
//
// Every write invalidates the entry before and after touching the store and
// bumps a per-course generation counter. A fill only lands when the
// generation it observed before reading the store is still current, so a
// read racing a write cannot re-cache the old record. If the cache cannot be
// invalidated before a write, the write is refused.
type CachedCourseStore struct {
	next CourseStore[int64]
	rdb  *redis.Client
	ttl  time.Duration
	log  zerolog.Logger
}

// NewCachedCourseStore wraps next with a Redis cache.
func NewCachedCourseStore(next CourseStore[int64], rdb *redis.Client, ttl time.Duration, log zerolog.Logger) *CachedCourseStore {
	return &CachedCourseStore{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With().Str("component", "course_cache").Logger(),
	}
}

func (s *CachedCourseStore) Insert(ctx context.Context, c *model.Course[int64]) error {
	return s.next.Insert(ctx, c)
}

func (s *CachedCourseStore) Get(ctx context.Context, id int64) (*model.Course[int64], error) {
	key := config.CacheKey.CourseKey(id)

	data, err := s.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var c model.Course[int64]
		if jsonErr := json.Unmarshal(data, &c); jsonErr == nil {
			return &c, nil
		}
		s.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	// The generation must be read before the store so that any write
	// committed after this point is detected when filling.
	gen, genErr := s.generation(ctx, id)
	if genErr != nil {
		s.log.Warn().Err(genErr).Str("key", key).Msg("cache generation read failed")
	}

	c, err := s.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if genErr == nil {
		s.fill(ctx, id, gen, c)
	}
	return c, nil
}

func (s *CachedCourseStore) List(ctx context.Context, filter model.CourseFilter) ([]model.Course[int64], error) {
	return s.next.List(ctx, filter)
}

func (s *CachedCourseStore) Replace(ctx context.Context, id int64, fields model.CourseFields) (*model.Course[int64], error) {
	if err := s.invalidate(ctx, id); err != nil {
		return nil, err
	}
	c, err := s.next.Replace(ctx, id, fields)
	s.invalidateAfterWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CachedCourseStore) Merge(ctx context.Context, id int64, patch model.CoursePatch) (*model.Course[int64], error) {
	if patch.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}
	if err := s.invalidate(ctx, id); err != nil {
		return nil, err
	}
	c, err := s.next.Merge(ctx, id, patch)
	s.invalidateAfterWrite(ctx, id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CachedCourseStore) Delete(ctx context.Context, id int64) error {
	if err := s.invalidate(ctx, id); err != nil {
		return err
	}
	err := s.next.Delete(ctx, id)
	s.invalidateAfterWrite(ctx, id)
	return err
}

// generation returns the current write generation of a course, 0 if it
// was never written through this cache.
func (s *CachedCourseStore) generation(ctx context.Context, id int64) (int64, error) {
	gen, err := s.rdb.Get(ctx, config.CacheKey.CourseGenKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// fill caches c unless the course was written since generation gen was read.
func (s *CachedCourseStore) fill(ctx context.Context, id, gen int64, c *model.Course[int64]) {
	key := config.CacheKey.CourseKey(id)
	genKey := config.CacheKey.CourseGenKey(id)

	payload, err := json.Marshal(c)
	if err != nil {
		return
	}

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		s.log.Debug().Str("key", key).Msg("skipping cache fill after concurrent write")
	default:
		s.log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// invalidate bumps the course generation and drops its cached entry.
func (s *CachedCourseStore) invalidate(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	genKey := config.CacheKey.CourseGenKey(id)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, genTTL)
		pipe.Del(ctx, config.CacheKey.CourseKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate course cache %d: %w", id, err)
	}
	return nil
}

// invalidateAfterWrite clears anything a concurrent read cached while the
// store was being written.
func (s *CachedCourseStore) invalidateAfterWrite(ctx context.Context, id int64) {
	if err := s.invalidate(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("course_id", id).Msg("cache invalidation after write failed")
	}
}
