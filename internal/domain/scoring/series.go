package scoring

import "sort"

// Observation is one submitted value for a goal in one period. Ordinal is
// the period's position in the generated schedule.
type Observation struct {
	PeriodCode string  `json:"periodCode"`
	Ordinal    int     `json:"ordinal"`
	Value      float64 `json:"value"`
}

// PeriodResult is the score of a goal for one period. Value is the value
// actually scored, i.e. the running total for cumulative goals.
type PeriodResult struct {
	PeriodCode string  `json:"periodCode"`
	Ordinal    int     `json:"ordinal"`
	Value      float64 `json:"value"`
	Result
}

// ScoreSeries scores each observation in chronological order. Cumulative
// goals score the running sum of all values up to and including the period.
// The input slice is not modified.
func ScoreSeries(g Goal, observations []Observation) []PeriodResult {
	ordered := make([]Observation, len(observations))
	copy(ordered, observations)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	out := make([]PeriodResult, 0, len(ordered))
	var running float64
	for _, obs := range ordered {
		value := obs.Value
		if g.Unit == UnitBinary {
			value = binaryValue(value)
		}
		if g.Accumulation == Cumulative {
			running += value
			value = running
		}
		out = append(out, PeriodResult{
			PeriodCode: obs.PeriodCode,
			Ordinal:    obs.Ordinal,
			Value:      value,
			Result:     Score(g, value),
		})
	}
	return out
}

// Close applies the goal's closure rule to its per-period results. tracked
// is the number of periods the goal is tracked against; when it is not
// positive the number of results is used.
func Close(g Goal, results []PeriodResult, tracked int) Result {
	if len(results) == 0 {
		return Result{}
	}
	if tracked <= 0 {
		tracked = len(results)
	}

	switch g.Closure {
	case ClosureLastPeriod:
		last := results[0]
		for _, r := range results[1:] {
			if r.Ordinal >= last.Ordinal {
				last = r
			}
		}
		return last.Result

	case ClosureThresholdCount:
		metCount := 0
		for _, r := range results {
			if r.Met {
				metCount++
			}
		}
		threshold := g.Threshold
		if threshold <= 0 {
			threshold = tracked
		}
		return Result{
			Score: float64(metCount) / float64(tracked) * 100,
			Met:   metCount >= threshold,
		}

	default:
		var sum float64
		anyMet := false
		for _, r := range results {
			sum += r.Score
			anyMet = anyMet || r.Met
		}
		avg := sum / float64(len(results))
		return Result{Score: avg, Met: avg >= 100 || anyMet}
	}
}

func binaryValue(v float64) float64 {
	if v != 0 {
		return 1
	}
	return 0
}
