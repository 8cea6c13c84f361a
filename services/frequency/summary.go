package frequency

import (
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/fulltiltgenomics/genetics-results-api/models"
)

// Summarize counts, over the preferred sub-dataset of every variant, how
// often each population has the highest and the lowest frequency. Any
// failure yields an empty summary.
func Summarize(data map[string]*models.FrequencyResult, populations []string) (summary []models.PopulationSummary) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("frequency summary failed: %v", r)
			summary = []models.PopulationSummary{}
		}
	}()

	summary, err := summarize(data, populations)
	if err != nil {
		log.Errorf("frequency summary failed: %v", err)
		return []models.PopulationSummary{}
	}
	return summary
}

func summarize(data map[string]*models.FrequencyResult, populations []string) ([]models.PopulationSummary, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no variants to summarize")
	}

	maxCounts := map[string]int{}
	minCounts := map[string]int{}
	for key, res := range data {
		rec := res.PreferredRecord()
		if rec == nil {
			return nil, fmt.Errorf("%s has no %s record", key, res.Preferred)
		}

		maxPop, minPop := "", ""
		var maxAF, minAF float64
		for _, pop := range populations {
			af, ok := rec.AF[pop]
			if !ok || !af.Valid {
				continue
			}
			if maxPop == "" || af.Float64 > maxAF {
				maxPop, maxAF = pop, af.Float64
			}
			if minPop == "" || af.Float64 < minAF {
				minPop, minAF = pop, af.Float64
			}
		}
		maxCounts[maxPop]++
		minCounts[minPop]++
	}

	n := float64(len(data))
	summary := make([]models.PopulationSummary, 0, len(populations))
	for _, pop := range populations {
		summary = append(summary, models.PopulationSummary{
			Pop:     pop,
			Max:     maxCounts[pop],
			MaxPerc: float64(maxCounts[pop]) / n,
			Min:     minCounts[pop],
			MinPerc: float64(minCounts[pop]) / n,
		})
	}
	return summary, nil
}
