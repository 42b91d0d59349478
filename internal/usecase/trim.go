package usecase

import (
	"math"

	"SentiPull/internal/domain/models"
)

// TrimToOverlap cuts both series to their shared time window clipped to
// [startEpoch, endEpoch], bounds inclusive. When either series is empty
// both results are empty and the bounds are NaN.
func TrimToOverlap(a, b *models.Series, startEpoch, endEpoch float64) (*models.Series, *models.Series, float64, float64) {
	if a.Len() == 0 || b.Len() == 0 {
		return emptyLike(a), emptyLike(b), math.NaN(), math.NaN()
	}
	tMin := math.Max(math.Max(a.First(), b.First()), startEpoch)
	tMax := math.Min(math.Min(a.Last(), b.Last()), endEpoch)
	return a.Trim(tMin, tMax), b.Trim(tMin, tMax), tMin, tMax
}

func emptyLike(s *models.Series) *models.Series {
	out := &models.Series{Timestamps: []float64{}, Features: [][]float64{}}
	if s != nil {
		out.Keys = s.Keys
	}
	return out
}
