package models

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Series is a time-aligned pair of arrays: one timestamp per row of features.
type Series struct {
	Keys       []string
	Timestamps []float64
	Features   [][]float64
}

// Len returns the number of rows.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Timestamps)
}

// First returns the first timestamp.
func (s *Series) First() float64 { return s.Timestamps[0] }

// Last returns the last timestamp.
func (s *Series) Last() float64 { return s.Timestamps[len(s.Timestamps)-1] }

// ErrEmptySeries is returned by Matrix for a series without rows or keys.
var ErrEmptySeries = errors.New("empty series")

// Matrix returns the features as a dense rows×keys matrix. Every row must
// have exactly one value per key.
func (s *Series) Matrix() (*mat.Dense, error) {
	if s.Len() == 0 || len(s.Keys) == 0 {
		return nil, ErrEmptySeries
	}
	cols := len(s.Keys)
	data := make([]float64, 0, len(s.Features)*cols)
	for i, row := range s.Features {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), cols)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(s.Features), cols, data), nil
}

// Column returns a copy of the named feature column.
func (s *Series) Column(key string) ([]float64, bool) {
	idx := -1
	for i, k := range s.Keys {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, false
	}
	out := make([]float64, len(s.Features))
	for i, row := range s.Features {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out, true
}

// Trim returns the rows with tMin <= t <= tMax.
func (s *Series) Trim(tMin, tMax float64) *Series {
	out := &Series{Keys: s.Keys, Timestamps: []float64{}, Features: [][]float64{}}
	for i, t := range s.Timestamps {
		if t >= tMin && t <= tMax {
			out.Timestamps = append(out.Timestamps, t)
			out.Features = append(out.Features, s.Features[i])
		}
	}
	return out
}

// OrderedKeys turns a name→index mapping into names ordered by index.
func OrderedKeys(mapping map[string]int) []string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return mapping[keys[i]] < mapping[keys[j]] })
	return keys
}

// KeyIndex builds the name→index mapping for ordered keys.
func KeyIndex(keys []string) map[string]int {
	m := make(map[string]int, len(keys))
	for i, k := range keys {
		m[k] = i
	}
	return m
}
