package repository

import (
	"context"
	"fmt"
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/internal/domain/repository"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"
)

// DayBucket holds the records of one calendar day.
type DayBucket[T any] struct {
	Day     time.Time
	Records []T
}

// PartitionByDay buckets records by the UTC day of their epoch seconds,
// with day_start <= t < day_start+1d. Every day in [start, end) gets a
// bucket, ascending, with an empty list when nothing fell on it so the day
// reads as cached afterwards. Record order is kept.
func PartitionByDay[T any](records []T, epoch func(T) float64, start, end time.Time) []DayBucket[T] {
	var buckets []DayBucket[T]
	for _, day := range util.DaysBetween(start, end) {
		if !day.Before(end) {
			break
		}
		lo := util.ToEpoch(day)
		hi := util.ToEpoch(util.AddDays(day, 1))
		rs := []T{}
		for _, r := range records {
			t := epoch(r)
			if t >= lo && t < hi {
				rs = append(rs, r)
			}
		}
		buckets = append(buckets, DayBucket[T]{Day: day, Records: rs})
	}
	return buckets
}

// WriteBuckets writes every bucket through store and returns the number of
// day files written.
func WriteBuckets[T any](ctx context.Context, store repository.DayStore, key models.CacheKey, dir string, buckets []DayBucket[T]) (int, error) {
	for i, b := range buckets {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := store.WriteDay(ctx, key, dir, b.Day, b.Records, len(b.Records)); err != nil {
			return i, err
		}
	}
	return len(buckets), nil
}

// ReadRange reads every day file from day(start) through day(end) and
// concatenates their records. Absent days are listed in the report; under
// ReadPolicyStrict they fail the read with a *models.CacheGapError.
func ReadRange[T any](ctx context.Context, store repository.DayStore, dir string, start, end time.Time, policy models.ReadPolicy, l *applogger.Logger) ([]T, *models.ReadReport, error) {
	report := &models.ReadReport{Dir: dir}
	var out []T
	for _, day := range util.DaysBetween(start, end) {
		if err := ctx.Err(); err != nil {
			return nil, report, err
		}
		var rs []T
		ok, err := store.ReadDay(dir, day, &rs)
		if err != nil {
			return nil, report, fmt.Errorf("read cache %s: %w", dir, err)
		}
		if !ok {
			report.MissingDays = append(report.MissingDays, day)
			continue
		}
		report.DaysRead++
		out = append(out, rs...)
	}

	if len(report.MissingDays) > 0 {
		if policy == models.ReadPolicyStrict {
			return nil, report, &models.CacheGapError{Dir: dir, Days: report.MissingDays}
		}
		if l != nil {
			l.Warn("cache days absent on read",
				applogger.String("dir", dir),
				applogger.Int("missing", len(report.MissingDays)),
				applogger.Day("first_missing", report.MissingDays[0]),
			)
		}
	}
	return out, report, nil
}
