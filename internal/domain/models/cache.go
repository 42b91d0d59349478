package models

import (
	"path/filepath"
	"strconv"
	"time"

	"SentiPull/pkg/util"
)

// Source types, the first level of the cache tree.
const (
	SourceTypeSentiment = "augmento"
	SourceTypePrice     = "binance"
)

// CacheKey identifies one day-partitioned cache directory. SourceID is empty
// for the price source.
type CacheKey struct {
	SourceType   string
	SourceID     string
	InstrumentID string
	BinSize      int
}

// Dir returns the cache directory for the key under root.
func (k CacheKey) Dir(root string) string {
	parts := []string{root, k.SourceType}
	if k.SourceID != "" {
		parts = append(parts, k.SourceID)
	}
	parts = append(parts, k.InstrumentID, strconv.Itoa(k.BinSize))
	return filepath.Join(parts...)
}

func (k CacheKey) String() string {
	if k.SourceID == "" {
		return k.SourceType + "/" + k.InstrumentID + "/" + strconv.Itoa(k.BinSize)
	}
	return k.SourceType + "/" + k.SourceID + "/" + k.InstrumentID + "/" + strconv.Itoa(k.BinSize)
}

// MissingBatch is a maximal run of consecutive uncached days.
type MissingBatch struct {
	Days []time.Time
}

// Start is the first day of the batch.
func (b MissingBatch) Start() time.Time { return b.Days[0] }

// End is the exclusive end of the batch: the day after its last day.
func (b MissingBatch) End() time.Time { return util.AddDays(b.Days[len(b.Days)-1], 1) }

// Len returns the number of days in the batch.
func (b MissingBatch) Len() int { return len(b.Days) }

// CacheEvent is published after a day file has been written.
type CacheEvent struct {
	Key       string    `json:"key"`
	Day       string    `json:"day"`
	Records   int       `json:"records"`
	Path      string    `json:"path"`
	WrittenAt time.Time `json:"written_at"`
}
