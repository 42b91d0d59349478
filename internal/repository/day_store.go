package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/internal/domain/repository"
	"SentiPull/pkg/codec"
	applogger "SentiPull/pkg/logger"
	"SentiPull/pkg/util"
)

var dayFilePattern = regexp.MustCompile(`^\d{8}` + regexp.QuoteMeta(codec.Extension) + `$`)

// FileDayStore keeps one msgpack+zlib blob per day under a cache directory.
type FileDayStore struct {
	publisher repository.Publisher
	log       *applogger.Logger
	now       func() time.Time
}

// NewFileDayStore creates a day store. A nil publisher disables cache events.
func NewFileDayStore(publisher repository.Publisher, l *applogger.Logger) *FileDayStore {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &FileDayStore{publisher: publisher, log: l, now: time.Now}
}

// DayPath returns the file holding day under dir.
func DayPath(dir string, day time.Time) string {
	return filepath.Join(dir, util.FormatDayStem(day)+codec.Extension)
}

// ListDays returns the days with a cache file in dir, ascending. A missing
// directory holds no days.
func (s *FileDayStore) ListDays(dir string) ([]time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list cache dir %s: %w", dir, err)
	}

	days := make([]time.Time, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !dayFilePattern.MatchString(e.Name()) {
			continue
		}
		day, err := util.ParseDayStem(strings.TrimSuffix(e.Name(), codec.Extension))
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// WriteDay encodes records into the file for day, replacing any previous
// content. The file is written to a temp name and renamed into place.
func (s *FileDayStore) WriteDay(ctx context.Context, key models.CacheKey, dir string, day time.Time, records any, count int) error {
	data, err := codec.Encode(records)
	if err != nil {
		return fmt.Errorf("encode day %s: %w", util.FormatDayStem(day), err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := DayPath(dir, day)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}

	s.log.Debug("day written",
		applogger.String("key", key.String()),
		applogger.Day("day", day),
		applogger.Int("records", count),
	)

	ev := &models.CacheEvent{
		Key:       key.String(),
		Day:       day.UTC().Format(time.DateOnly),
		Records:   count,
		Path:      path,
		WrittenAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		// The file is already in place; a lost event does not undo it.
		s.log.Warn("cache event not published",
			applogger.String("key", ev.Key),
			applogger.String("day", ev.Day),
			applogger.Error(err),
		)
	}
	return nil
}

// ReadDay decodes the file for day into dest. It reports false when the
// file does not exist.
func (s *FileDayStore) ReadDay(dir string, day time.Time, dest any) (bool, error) {
	data, err := os.ReadFile(DayPath(dir, day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read day %s: %w", util.FormatDayStem(day), err)
	}
	if err := codec.Decode(data, dest); err != nil {
		return false, fmt.Errorf("decode day %s: %w", util.FormatDayStem(day), err)
	}
	return true, nil
}
