package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Coerce turns a loosely typed submitted value into a number. Anything that
// cannot be read as a finite number becomes 0 so score reads never fail on
// malformed input; writes validate separately.
func Coerce(v any) float64 {
	var f float64
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case int32:
		f = float64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
		switch strings.ToLower(s) {
		case "true", "yes":
			return 1
		case "false", "no":
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
