package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ConversionsKey returns the cache key for the conversions of one sheet,
// or of all sheets when sheet is empty.
func (r *CacheKeyStruct) ConversionsKey(sheet string) string {
	if sheet == "" {
		return "conversions:all"
	}
	return fmt.Sprintf("conversions:sheet:%s", sheet)
}

// CoursesKey returns the cache key for the courses collection
func (r *CacheKeyStruct) CoursesKey() string {
	return "courses:all"
}

// ExamsKey returns the cache key for the exams collection
func (r *CacheKeyStruct) ExamsKey() string {
	return "exams:all"
}

// ReadModelPattern matches every cached read-side collection
func (r *CacheKeyStruct) ReadModelPattern() []string {
	return []string{"conversions:*", "courses:*", "exams:*"}
}

// ImportJobKey returns the hash key holding an import job's state
func (r *CacheKeyStruct) ImportJobKey(importID string) string {
	return fmt.Sprintf("import:%s:job", importID)
}

// ImportProgressChannel returns the Redis PubSub channel name for an import's progress
func (r *CacheKeyStruct) ImportProgressChannel(importID string) string {
	return fmt.Sprintf("import:%s:progress", importID)
}

var CacheKey = NewCacheKeyStruct()
