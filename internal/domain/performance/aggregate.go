package performance

import (
	"sort"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/core"
	"scorecard/internal/domain/evaluation"
	"scorecard/internal/domain/override"
	"scorecard/internal/domain/scoring"
)

// Input is everything Aggregate reads for one employee and year.
type Input struct {
	Employee    core.Employee
	Year        int
	Templates   []assignment.Template
	Evaluations []evaluation.Evaluation
	Overrides   *override.Index
}

type Options struct {
	Mode              Mode
	ObjectiveMixRatio float64
	RatingScale       float64
}

func DefaultOptions() Options {
	return Options{Mode: ModeOfficial, ObjectiveMixRatio: scoring.DefaultObjectiveMixRatio, RatingScale: 5}
}

// Aggregate computes an employee's scores for a year from source documents
// only. It has no side effects and returns the same result for the same
// input.
//
// A template contributes when it is active, belongs to the year and applies
// to the employee. Sub-unit templates are scaled by the employee's recorded
// participation in that sub-unit. Overrides then exclude the template or
// replace its weight. Templates without usable evaluations are listed in
// Excluded and do not dilute the blocks.
func Aggregate(in Input, opts Options) EmployeeScore {
	out := EmployeeScore{EmployeeID: in.Employee.ID, Year: in.Year, Mode: opts.Mode, Items: []ItemScore{}}
	byTemplate := groupByTemplate(in.Employee.ID, in.Evaluations, opts.Mode)

	var objectives, aptitudes []scoring.Item
	for _, tpl := range in.Templates {
		if tpl.Year != in.Year || !tpl.Active || !tpl.AppliesTo(in.Employee) {
			continue
		}
		item := ItemScore{
			TemplateID: tpl.ID,
			Name:       tpl.Name,
			Kind:       tpl.Kind,
			Scope:      tpl.Scope,
			BaseWeight: tpl.Weight,
			Periods:    []PeriodScore{},
		}

		base := tpl.Weight
		if tpl.Scope == assignment.ScopeSubUnit {
			if share, ok := in.Employee.ParticipationShare(tpl.TargetID); ok {
				item.Participation = &share
				base *= share
			}
		}
		res := in.Overrides.Resolve(in.Employee.ID, in.Employee.OrgUnitID, tpl.ID)
		item.OverrideSource = res.Source
		weight, included := res.Apply(base)
		if !included {
			out.Excluded = append(out.Excluded, Exclusion{TemplateID: tpl.ID, Reason: ReasonOverride})
			continue
		}
		item.EffectiveWeight = weight

		evs := byTemplate[tpl.ID]
		item.Evaluations = len(evs)
		var score float64
		var scored bool
		if tpl.Kind == assignment.KindAptitude {
			score, scored = scoreAptitude(&item, tpl, evs, opts.RatingScale)
		} else {
			score, scored = scoreObjective(&item, tpl, evs)
		}
		if !scored {
			out.Excluded = append(out.Excluded, Exclusion{TemplateID: tpl.ID, Reason: ReasonNoEvaluations})
			continue
		}
		item.Score = scoring.Round2(score)
		out.Items = append(out.Items, item)

		entry := scoring.Item{Score: score, Weight: weight}
		if tpl.Kind == assignment.KindAptitude {
			aptitudes = append(aptitudes, entry)
		} else {
			objectives = append(objectives, entry)
		}
	}

	out.Objectives = scoring.NewBlock(objectives)
	out.Aptitudes = scoring.NewBlock(aptitudes)
	out.Global = scoring.Global(out.Objectives, out.Aptitudes, opts.ObjectiveMixRatio)
	out.Objectives.Score = scoring.Round2(out.Objectives.Score)
	out.Aptitudes.Score = scoring.Round2(out.Aptitudes.Score)
	return out
}

func groupByTemplate(employeeID string, evs []evaluation.Evaluation, mode Mode) map[string][]evaluation.Evaluation {
	out := make(map[string][]evaluation.Evaluation)
	for _, ev := range evs {
		if ev.EmployeeID != employeeID {
			continue
		}
		if mode != ModeProvisional && ev.State != evaluation.StateClosed {
			continue
		}
		out[ev.TemplateID] = append(out[ev.TemplateID], ev)
	}
	return out
}

func ordinalsOf(tpl assignment.Template) (map[string]int, int) {
	periods, err := tpl.Periods()
	if err != nil {
		return nil, 0
	}
	ordinals := make(map[string]int, len(periods))
	for _, p := range periods {
		ordinals[p.Code] = p.Ordinal
	}
	return ordinals, len(periods)
}

// scoreObjective closes every goal that has at least one result and combines
// them. Results for period codes outside the template's schedule are
// ignored.
func scoreObjective(item *ItemScore, tpl assignment.Template, evs []evaluation.Evaluation) (float64, bool) {
	ordinals, tracked := ordinalsOf(tpl)
	if tracked == 0 {
		return 0, false
	}

	var closed []scoring.GoalScore
	perPeriod := make(map[int][]scoring.GoalScore)
	codes := make(map[int]string)
	for _, g := range tpl.Goals {
		var observations []scoring.Observation
		for _, ev := range evs {
			ord, ok := ordinals[ev.PeriodCode]
			if !ok {
				continue
			}
			if v, ok := ev.Results[g.ID]; ok {
				observations = append(observations, scoring.Observation{PeriodCode: ev.PeriodCode, Ordinal: ord, Value: v})
			}
		}
		if len(observations) == 0 {
			continue
		}
		series := scoring.ScoreSeries(g, observations)
		result := scoring.Close(g, series, tracked)
		closed = append(closed, scoring.GoalScore{GoalID: g.ID, Weight: g.Weight, Result: result})
		for _, r := range series {
			perPeriod[r.Ordinal] = append(perPeriod[r.Ordinal], scoring.GoalScore{GoalID: g.ID, Weight: g.Weight, Result: r.Result})
			codes[r.Ordinal] = r.PeriodCode
		}
		item.Goals = append(item.Goals, GoalBreakdown{
			GoalID:  g.ID,
			Name:    g.Name,
			Weight:  g.Weight,
			Tracked: tracked,
			Periods: series,
			Closed:  scoring.Result{Score: scoring.Round2(result.Score), Met: result.Met},
		})
	}
	if len(closed) == 0 {
		return 0, false
	}
	for ord, goals := range perPeriod {
		item.Periods = append(item.Periods, PeriodScore{
			PeriodCode: codes[ord],
			Ordinal:    ord,
			Score:      scoring.Round2(scoring.ObjectiveScore(goals)),
		})
	}
	sortPeriods(item.Periods)
	return scoring.ObjectiveScore(closed), true
}

// scoreAptitude averages the converted ratings of every rated period.
func scoreAptitude(item *ItemScore, tpl assignment.Template, evs []evaluation.Evaluation, ratingScale float64) (float64, bool) {
	ordinals, _ := ordinalsOf(tpl)
	var scores []scoring.Item
	for _, ev := range evs {
		ord, ok := ordinals[ev.PeriodCode]
		if !ok || ev.Rating == nil {
			continue
		}
		s := scoring.RatingToScore(*ev.Rating, ratingScale)
		scores = append(scores, scoring.Item{Score: s, Weight: 1})
		item.Periods = append(item.Periods, PeriodScore{PeriodCode: ev.PeriodCode, Ordinal: ord, Score: scoring.Round2(s)})
	}
	if len(scores) == 0 {
		return 0, false
	}
	sortPeriods(item.Periods)
	return scoring.WeightedMean(scores), true
}

func sortPeriods(periods []PeriodScore) {
	sort.Slice(periods, func(i, j int) bool { return periods[i].Ordinal < periods[j].Ordinal })
}
