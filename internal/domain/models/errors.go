package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"SentiPull/pkg/util"
)

var (
	// ErrInvalidParameter marks a source, instrument or bin size outside the upstream vocabulary.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrTransientFetch marks an upstream failure that survived every retry.
	ErrTransientFetch = errors.New("transient fetch failure")
	// ErrRangeConsistency marks a fetched batch whose bounds differ from the request.
	ErrRangeConsistency = errors.New("range consistency failure")
	// ErrCacheReadGap marks a requested day with no cache file under a strict read.
	ErrCacheReadGap = errors.New("cache read gap")
)

// InvalidParameterError reports which value was rejected and what was allowed.
type InvalidParameterError struct {
	Source  string
	Param   string
	Value   string
	Allowed []string
}

func (e *InvalidParameterError) Error() string {
	allowed := e.Allowed
	if len(allowed) > 20 {
		allowed = append(allowed[:20:20], "...")
	}
	return fmt.Sprintf("%s: invalid %s %q, not in [%s]", e.Source, e.Param, e.Value, strings.Join(allowed, ", "))
}

func (e *InvalidParameterError) Unwrap() error { return ErrInvalidParameter }

// CacheGapError lists the days that had no cache file.
type CacheGapError struct {
	Dir  string
	Days []time.Time
}

func (e *CacheGapError) Error() string {
	stems := make([]string, len(e.Days))
	for i, d := range e.Days {
		stems[i] = util.FormatDayStem(d)
	}
	return fmt.Sprintf("%s: %d day(s) missing: %s", e.Dir, len(e.Days), strings.Join(stems, ","))
}

func (e *CacheGapError) Unwrap() error { return ErrCacheReadGap }
