package evaluation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/domain/assignment"
	"scorecard/internal/domain/scoring"
	"scorecard/internal/platform/apperror"
)

func TestApplyResultsStrict(t *testing.T) {
	tpl := salesTemplate()
	tpl.Goals = append(tpl.Goals, scoring.Goal{ID: "done", Name: "Done", Unit: scoring.UnitBinary})

	out, err := applyResults(tpl, map[string]float64{"nps": 70}, map[string]any{
		"rev":  json.Number("42.5"),
		"done": true,
		"nps":  nil,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"rev": 42.5, "done": 1}, out)

	_, err = applyResults(tpl, nil, map[string]any{"ghost": 1.0})
	assert.Equal(t, "results.ghost", apperror.FieldOf(err))

	_, err = applyResults(tpl, nil, map[string]any{"rev": "lots"})
	assert.Equal(t, "results.rev", apperror.FieldOf(err))

	_, err = applyResults(tpl, nil, map[string]any{"done": 2.0})
	assert.Equal(t, "results.done", apperror.FieldOf(err))
}

func TestValidateRating(t *testing.T) {
	apt := assignment.Template{Kind: assignment.KindAptitude}
	ok, high := 3.0, 6.0
	assert.NoError(t, validateRating(apt, &ok, 5))
	assert.Equal(t, "rating", apperror.FieldOf(validateRating(apt, &high, 5)))
	assert.Equal(t, "rating", apperror.FieldOf(validateRating(salesTemplate(), &ok, 5)))
	assert.NoError(t, validateRating(apt, nil, 5))
}
