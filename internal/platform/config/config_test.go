package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/scorecard")
	t.Setenv("OBJECTIVE_MIX_RATIO", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 0.7, cfg.ObjectiveMixRatio)
	assert.Equal(t, 5.0, cfg.RatingScaleMax)
	assert.Equal(t, 120.0, cfg.OverachievementCap)
	require.NoError(t, cfg.Validate())
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/scorecard")
	t.Setenv("OBJECTIVE_MIX_RATIO", "0.8")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BONUS_SAMPLE_SIZE", "not-a-number")

	cfg := Load()
	assert.Equal(t, 0.8, cfg.ObjectiveMixRatio)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 5, cfg.BonusSampleSize)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := Config{DatabaseURL: "postgres://x", ObjectiveMixRatio: 0.7, RatingScaleMax: 5, OverachievementCap: 120}
	require.NoError(t, base.Validate())

	missingDB := base
	missingDB.DatabaseURL = " "
	assert.Error(t, missingDB.Validate())

	badRatio := base
	badRatio.ObjectiveMixRatio = 1.2
	assert.Error(t, badRatio.Validate())

	badScale := base
	badScale.RatingScaleMax = 0
	assert.Error(t, badScale.Validate())

	prod := base
	prod.Environment = "production"
	assert.Error(t, prod.Validate())
}
