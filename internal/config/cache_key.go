package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CourseKey returns the cache key for a persistent course record
func (r *CacheKeyStruct) CourseKey(courseID int64) string {
	return fmt.Sprintf("course:%d", courseID)
}

// CourseGenKey returns the key of the write generation counter guarding
// cache fills for a persistent course record
func (r *CacheKeyStruct) CourseGenKey(courseID int64) string {
	return fmt.Sprintf("course:%d:gen", courseID)
}

var CacheKey = NewCacheKeyStruct()
