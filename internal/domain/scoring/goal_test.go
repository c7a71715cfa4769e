package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func salesGoal() Goal {
	return Goal{
		ID:        "g-sales",
		Name:      "Sales volume",
		Expected:  80,
		Unit:      UnitNumeric,
		Operator:  OpGreaterOrEqual,
		Tolerance: 2,
	}
}

func TestScoreWithoutEffortCreditIsAllOrNothing(t *testing.T) {
	g := salesGoal()

	res := Score(g, 75)
	assert.False(t, res.Met, "75+2=77 is below 80")
	assert.Equal(t, 0.0, res.Score)

	res = Score(g, 78)
	assert.True(t, res.Met, "78+2 reaches 80")
	assert.Equal(t, 100.0, res.Score)

	for _, v := range []float64{-10, 0, 12.5, 40, 79.99, 200, 1e6} {
		s := Score(g, v).Score
		assert.True(t, s == 0 || s == 100, "score %v for value %v must be 0 or 100", s, v)
	}
}

func TestScoreWithEffortCreditIsProportional(t *testing.T) {
	g := salesGoal()
	g.EffortCredit = true

	res := Score(g, 75)
	assert.InDelta(t, 93.75, res.Score, 1e-9)
	assert.False(t, res.Met)

	res = Score(g, 120)
	assert.Equal(t, 100.0, res.Score, "capped at 100 without overachievement")
	assert.True(t, res.Met)

	res = Score(g, -5)
	assert.Equal(t, 0.0, res.Score)
}

func TestScoreOverachievementCap(t *testing.T) {
	g := salesGoal()
	g.EffortCredit = true
	g.Overachievement = true

	assert.Equal(t, 120.0, Score(g, 200).Score, "default ceiling")
	assert.InDelta(t, 112.5, Score(g, 90).Score, 1e-9)

	g.OverachievementCap = 150
	assert.Equal(t, 150.0, Score(g, 400).Score)
}

func TestScoreBinary(t *testing.T) {
	g := Goal{Unit: UnitBinary, Operator: OpGreaterOrEqual, EffortCredit: true}
	assert.Equal(t, Result{Score: 100, Met: true}, Score(g, 1))
	assert.Equal(t, Result{Score: 0, Met: false}, Score(g, 0))
}

func TestScoreUpperBoundGoalUsesSameRatio(t *testing.T) {
	g := Goal{Expected: 10, Unit: UnitNumeric, Operator: OpLessOrEqual, Tolerance: 1, EffortCredit: true}

	res := Score(g, 11)
	assert.True(t, res.Met, "11-1 is within 10")
	assert.InDelta(t, 100.0, res.Score, 1e-9, "capped at 100 without overachievement")

	res = Score(g, 8)
	assert.True(t, res.Met)
	assert.InDelta(t, 80.0, res.Score, 1e-9)

	res = Score(g, 0)
	assert.Equal(t, 0.0, res.Score)

	g.Operator = OpLess
	assert.InDelta(t, 50.0, Score(g, 5).Score, 1e-9)
}

func TestSatisfiesEqualityBand(t *testing.T) {
	assert.True(t, Satisfies(OpEqual, 98, 100, 2))
	assert.False(t, Satisfies(OpEqual, 97.5, 100, 2))
	assert.True(t, Satisfies(OpGreater, 99, 100, 2))
	assert.False(t, Satisfies(OpLess, 12, 10, 1))
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, 12.5, Coerce("12.5"))
	assert.Equal(t, 80.0, Coerce(" 80% "))
	assert.Equal(t, 1.0, Coerce(true))
	assert.Equal(t, 1.0, Coerce("yes"))
	assert.Equal(t, 0.0, Coerce("n/a"))
	assert.Equal(t, 0.0, Coerce(nil))
	assert.Equal(t, 0.0, Coerce(map[string]any{"v": 1}))
	assert.Equal(t, 3.0, Coerce(json.Number("3")))
	assert.Equal(t, 7.0, Coerce(int64(7)))
}
