package usecase

import (
	"time"

	"SentiPull/internal/domain/models"
	"SentiPull/pkg/util"
)

// PlanBatches groups ascending missing days into maximal runs of
// consecutive days. Each run becomes one fetch over [Start, End).
func PlanBatches(missing []time.Time) []models.MissingBatch {
	var batches []models.MissingBatch
	var run []time.Time
	for _, d := range missing {
		if len(run) > 0 && !util.AddDays(run[len(run)-1], 1).Equal(d) {
			batches = append(batches, models.MissingBatch{Days: run})
			run = nil
		}
		run = append(run, d)
	}
	if len(run) > 0 {
		batches = append(batches, models.MissingBatch{Days: run})
	}
	return batches
}
