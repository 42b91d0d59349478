package repository

import (
	"context"
	"time"

	"SentiPull/internal/domain/models"
)

// Source is one upstream time-series provider backed by the day cache.
type Source interface {
	Name() string
	CacheKey(p models.InstrumentParams, binSize int) (models.CacheKey, error)
	FetchAndCache(ctx context.Context, dir string, p models.InstrumentParams, binSize int, start, end time.Time) error
	LoadCached(ctx context.Context, dir string, start, end time.Time, policy models.ReadPolicy) (*models.Series, *models.ReadReport, error)
	LoadKeys(ctx context.Context) (map[string]int, error)
}

// DayStore persists one compressed blob per calendar day.
type DayStore interface {
	ListDays(dir string) ([]time.Time, error)
	WriteDay(ctx context.Context, key models.CacheKey, dir string, day time.Time, records any, count int) error
	ReadDay(dir string, day time.Time, dest any) (bool, error)
}

// Publisher announces cache writes.
type Publisher interface {
	Publish(ctx context.Context, ev *models.CacheEvent) error
	Close() error
}

type Metrics interface {
	RecordUpstreamRequest(source, endpoint, result string)
	RecordRetry(source, endpoint string)
	RecordDaysWritten(source string, n int)
	RecordCacheDays(source string, hit, miss int)
	RecordReadGap(source string, n int)
	RecordLatency(op string, seconds float64)
}
