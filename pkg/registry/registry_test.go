package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin_DescribesBothWorkers(t *testing.T) {
	reg := Builtin(map[string]time.Duration{"plan-trip": 6 * time.Minute})

	plan, ok := reg.Find("plan-trip")
	require.True(t, ok)
	assert.Equal(t, "6m0s", plan.Timeout)
	assert.Contains(t, plan.ErrorCodes, "AGENT_TIMEOUT")
	assert.Contains(t, plan.OutputKeys, "best_trip_recommendation")

	info, ok := reg.Find("destination-info")
	require.True(t, ok)
	assert.Empty(t, info.Timeout)
	assert.NotNil(t, info.InputSchema["properties"])

	_, ok = reg.Find("send-email")
	assert.False(t, ok)
}

func TestLoadRegistry_RoundTripsBuiltin(t *testing.T) {
	data, err := json.Marshal(Builtin(nil))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	reg, err := LoadRegistry(path)

	require.NoError(t, err)
	assert.Equal(t, Version, reg.Version)
	assert.Len(t, reg.Activities, 2)
}

func TestLoadRegistry_Errors(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err = LoadRegistry(path)
	assert.Error(t, err)
}
