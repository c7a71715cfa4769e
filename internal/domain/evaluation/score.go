package evaluation

import (
	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/scoring"
)

// PeriodScore derives the score stored on an evaluation. Objectives score
// each submitted goal; cumulative goals add the values submitted for earlier
// periods found in history. Aptitudes convert the rating to 0..100. The
// result is nil when nothing has been submitted yet.
func PeriodScore(tpl assignment.Template, ev Evaluation, history []Evaluation, ratingScale float64) (*float64, error) {
	if tpl.Kind == assignment.KindAptitude {
		if ev.Rating == nil {
			return nil, nil
		}
		score := scoring.Round2(scoring.RatingToScore(*ev.Rating, ratingScale))
		return &score, nil
	}

	periods, err := tpl.Periods()
	if err != nil {
		return nil, err
	}
	ordinals := make(map[string]int, len(periods))
	for _, p := range periods {
		ordinals[p.Code] = p.Ordinal
	}
	current := ordinals[ev.PeriodCode]

	var goals []scoring.GoalScore
	for _, g := range tpl.Goals {
		value, ok := ev.Results[g.ID]
		if !ok {
			continue
		}
		observations := []scoring.Observation{{PeriodCode: ev.PeriodCode, Ordinal: current, Value: value}}
		if g.Accumulation == scoring.Cumulative {
			for _, h := range history {
				ord, known := ordinals[h.PeriodCode]
				if h.ID == ev.ID || !known || ord >= current {
					continue
				}
				if v, ok := h.Results[g.ID]; ok {
					observations = append(observations, scoring.Observation{PeriodCode: h.PeriodCode, Ordinal: ord, Value: v})
				}
			}
		}
		series := scoring.ScoreSeries(g, observations)
		last := series[len(series)-1]
		goals = append(goals, scoring.GoalScore{GoalID: g.ID, Weight: g.Weight, Result: last.Result})
	}
	if len(goals) == 0 {
		return nil, nil
	}
	score := scoring.Round2(scoring.ObjectiveScore(goals))
	return &score, nil
}
