package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scorecard/internal/platform/apperror"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestFailErrorMapsValidationField(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, fmt.Errorf("create: %w", apperror.Validation("weight", "must be positive")), "req-1")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	require.NotNil(t, env.Error)
	assert.False(t, env.Success)
	assert.Equal(t, "validation_error", env.Error.Code)
	assert.Equal(t, "weight", env.Error.Details["field"])
	assert.Equal(t, "req-1", env.RequestID)
}

func TestFailErrorHidesInternalMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, errors.New("dial tcp 10.0.0.1:5432: refused"), "req-2")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "internal", env.Error.Code)
	assert.Equal(t, "internal error", env.Error.Message)
}

func TestFailErrorConflict(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, apperror.ErrConcurrentModification, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "concurrent modification detected", decode(t, rec).Error.Message)
}
