package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicyDenyWins(t *testing.T) {
	p, err := ParsePolicy([]byte(`
roles:
  auditor:
    allow: ["*"]
    deny: [bonus.calculate]
`))
	require.NoError(t, err)
	assert.True(t, p.Allowed("auditor", CapScoresRead))
	assert.False(t, p.Allowed("auditor", CapBonusCalculate))
}

func TestParsePolicyRejectsUnknownCapability(t *testing.T) {
	_, err := ParsePolicy([]byte("roles:\n  hr:\n    allow: [evaluation.delete]\n"))
	require.Error(t, err)

	_, err = ParsePolicy([]byte("roles: {}\n"))
	require.Error(t, err)
}

func TestLoadPolicyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("roles:\n  manager:\n    allow: [evaluation.close]\n"), 0o600))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.True(t, p.Can(Actor{Role: RoleManager}, CapEvaluationClose))
	assert.False(t, p.Can(Actor{Role: RoleHR}, CapEvaluationClose))

	def, err := LoadPolicy("")
	require.NoError(t, err)
	assert.True(t, def.Can(Actor{Role: RoleHR}, CapEvaluationClose))
}

func TestTokenRoundTrip(t *testing.T) {
	actor := Actor{UserID: "u1", EmployeeID: "e1", Role: RoleManager}
	token, err := GenerateToken("secret", actor, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, err := GenerateToken("secret", actor, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("secret", expired)
	assert.Error(t, err)
}
