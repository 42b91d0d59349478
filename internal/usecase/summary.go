package usecase

import (
	"SentiPull/internal/domain/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// FeatureStat describes one feature column of a loaded series.
type FeatureStat struct {
	Key    string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summarize computes per-column statistics over the feature matrix of s.
// StdDev is the sample deviation, NaN for a single row.
func Summarize(s *models.Series) ([]FeatureStat, error) {
	m, err := s.Matrix()
	if err != nil {
		return nil, err
	}
	_, cols := m.Dims()
	out := make([]FeatureStat, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, m)
		mean, std := stat.MeanStdDev(col, nil)
		out[j] = FeatureStat{
			Key:    s.Keys[j],
			Mean:   mean,
			StdDev: std,
			Min:    floats.Min(col),
			Max:    floats.Max(col),
		}
	}
	return out, nil
}
