package bonus

type ScaleKind string

const (
	ScaleLinear ScaleKind = "linear"
	ScaleTiered ScaleKind = "tiered"
)

// DefaultSampleSize is the number of per-employee results echoed back by a
// batch calculation when the service is not configured otherwise.
const DefaultSampleSize = 5

const fractionPlaces = 6
