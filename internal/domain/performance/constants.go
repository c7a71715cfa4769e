package performance

// Mode selects which evaluations feed the aggregation.
type Mode string

const (
	// ModeOfficial counts only CLOSED evaluations.
	ModeOfficial Mode = "official"
	// ModeProvisional counts evaluations in every state, for previews.
	ModeProvisional Mode = "provisional"
)

func (m Mode) Valid() bool {
	return m == ModeOfficial || m == ModeProvisional
}

// scoreBuckets are the lower bounds of the distribution buckets reported in
// a Summary.
var scoreBuckets = []float64{0, 50, 70, 85, 100}
