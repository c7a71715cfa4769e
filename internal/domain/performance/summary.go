package performance

import (
	"fmt"

	"scorecard/internal/domain/scoring"
)

func buildSummary(scores []EmployeeScore) Summary {
	summary := Summary{Employees: len(scores), Distribution: map[string]int{}}
	var total float64
	for _, sc := range scores {
		if len(sc.Items) == 0 {
			continue
		}
		summary.Scored++
		total += sc.Global
		summary.Distribution[bucketOf(sc.Global)]++
	}
	if summary.Scored > 0 {
		summary.Average = scoring.Round1(total / float64(summary.Scored))
	}
	return summary
}

func bucketOf(score float64) string {
	bucket := scoreBuckets[0]
	for _, lower := range scoreBuckets {
		if score >= lower {
			bucket = lower
		}
	}
	return fmt.Sprintf("%g+", bucket)
}
