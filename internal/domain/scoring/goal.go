// Package scoring holds the pure scoring math: per-goal scores, closure of a
// goal across its tracked periods, and weighted aggregation into objective,
// block and global scores. Nothing here touches storage.
package scoring

import "math"

type Unit string

const (
	UnitBinary     Unit = "binary"
	UnitPercentage Unit = "percentage"
	UnitNumeric    Unit = "numeric"
)

type Operator string

const (
	OpGreaterOrEqual Operator = ">="
	OpGreater        Operator = ">"
	OpLessOrEqual    Operator = "<="
	OpLess           Operator = "<"
	OpEqual          Operator = "=="
)

type Accumulation string

const (
	PerPeriod  Accumulation = "per_period"
	Cumulative Accumulation = "cumulative"
)

type ClosureRule string

const (
	ClosureAverage        ClosureRule = "average"
	ClosureLastPeriod     ClosureRule = "last_period"
	ClosureThresholdCount ClosureRule = "threshold_count"
)

// DefaultOverachievementCap is the score ceiling for goals that allow
// overachievement without configuring their own cap.
const DefaultOverachievementCap = 120.0

// Goal is the canonical goal definition inside an objective template.
type Goal struct {
	ID                 string       `json:"id"`
	Name               string       `json:"name"`
	Expected           float64      `json:"expected"`
	Unit               Unit         `json:"unit"`
	Operator           Operator     `json:"operator"`
	Weight             *float64     `json:"weight,omitempty"`
	Accumulation       Accumulation `json:"accumulation"`
	Closure            ClosureRule  `json:"closure"`
	Threshold          int          `json:"threshold,omitempty"`
	Tolerance          float64      `json:"tolerance,omitempty"`
	EffortCredit       bool         `json:"effortCredit,omitempty"`
	Overachievement    bool         `json:"overachievement,omitempty"`
	OverachievementCap float64      `json:"overachievementCap,omitempty"`
}

// Result is the outcome of scoring one value, or of closing a goal.
type Result struct {
	Score float64 `json:"score"`
	Met   bool    `json:"met"`
}

// Cap returns the highest score the goal can reach.
func (g Goal) Cap() float64 {
	if !g.Overachievement {
		return 100
	}
	if g.OverachievementCap > 100 {
		return g.OverachievementCap
	}
	return DefaultOverachievementCap
}

// Score converts one submitted (or accumulated) value into a score.
//
// Binary goals and goals without effort credit are all-or-nothing. With
// effort credit the score is value/expected*100 for every operator, clamped
// to [0, Cap()], while Met still follows the tolerance-adjusted comparison.
func Score(g Goal, value float64) Result {
	if g.Unit == UnitBinary {
		expected := g.Expected
		if expected <= 0 {
			expected = 1
		}
		met := Satisfies(g.Operator, value, expected, 0)
		return Result{Score: allOrNothing(met), Met: met}
	}

	met := Satisfies(g.Operator, value, g.Expected, g.Tolerance)
	if !g.EffortCredit || g.Expected == 0 {
		return Result{Score: allOrNothing(met), Met: met}
	}

	return Result{Score: clamp(value/g.Expected*100, 0, g.Cap()), Met: met}
}

// Satisfies applies the operator with tolerance relaxing the comparison in
// the direction of the goal: added for ">=" and ">", subtracted for "<=" and
// "<", and used as an absolute band for "==".
func Satisfies(op Operator, value, expected, tolerance float64) bool {
	switch op {
	case OpGreater:
		return value+tolerance > expected
	case OpLessOrEqual:
		return value-tolerance <= expected
	case OpLess:
		return value-tolerance < expected
	case OpEqual:
		return math.Abs(value-expected) <= tolerance
	default:
		return value+tolerance >= expected
	}
}

func allOrNothing(met bool) float64 {
	if met {
		return 100
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
