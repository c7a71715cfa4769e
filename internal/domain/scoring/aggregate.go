package scoring

import "github.com/shopspring/decimal"

// DefaultObjectiveMixRatio is the objective block's share of the global
// score. The aptitude block receives the remainder.
const DefaultObjectiveMixRatio = 0.7

// GoalScore pairs a goal's closed result with its configured weight.
type GoalScore struct {
	GoalID string   `json:"goalId"`
	Weight *float64 `json:"weight,omitempty"`
	Result
}

// ObjectiveScore combines closed goal results into one objective score.
//
// When no goal carries a weight the mean is unweighted. Once any goal has a
// weight, goals without one, or with weight 0, contribute nothing. If the
// weights still sum to zero the mean falls back to unweighted.
func ObjectiveScore(goals []GoalScore) float64 {
	if len(goals) == 0 {
		return 0
	}
	weighted := false
	for _, g := range goals {
		if g.Weight != nil {
			weighted = true
			break
		}
	}
	items := make([]Item, len(goals))
	for i, g := range goals {
		w := 1.0
		if weighted {
			w = 0
			if g.Weight != nil && *g.Weight > 0 {
				w = *g.Weight
			}
		}
		items[i] = Item{Score: g.Score, Weight: w}
	}
	return WeightedMean(items)
}

// Item is one weighted score inside a block.
type Item struct {
	Score  float64
	Weight float64
}

// WeightedMean returns the mean of scores weighted by Weight. Negative
// weights count as zero; if all weights are zero the mean is unweighted.
func WeightedMean(items []Item) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum, weights, plain float64
	for _, it := range items {
		plain += it.Score
		if it.Weight > 0 {
			sum += it.Score * it.Weight
			weights += it.Weight
		}
	}
	if weights == 0 {
		return plain / float64(len(items))
	}
	return sum / weights
}

// Block is an aggregated objective or aptitude block.
type Block struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

func NewBlock(items []Item) Block {
	return Block{Score: WeightedMean(items), Count: len(items)}
}

// Global mixes the objective and aptitude blocks. objectiveRatio is the
// objective share in [0,1]. An empty block leaves the other block as the
// whole global score. The result is rounded to one decimal place.
func Global(objectives, aptitudes Block, objectiveRatio float64) float64 {
	switch {
	case objectives.Count == 0 && aptitudes.Count == 0:
		return 0
	case aptitudes.Count == 0:
		return Round1(objectives.Score)
	case objectives.Count == 0:
		return Round1(aptitudes.Score)
	}
	ratio := clamp(objectiveRatio, 0, 1)
	return Round1(objectives.Score*ratio + aptitudes.Score*(1-ratio))
}

// RatingToScore converts a rating on a 0..scaleMax scale into 0..100.
func RatingToScore(rating, scaleMax float64) float64 {
	if scaleMax <= 0 {
		return 0
	}
	return clamp(rating/scaleMax*100, 0, 100)
}

func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// Round2 is used for per-period and per-item scores kept for display.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
