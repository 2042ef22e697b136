// pkg/registry/registry_test.go
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInRegistryIsValid(t *testing.T) {
	reg := BuiltIn()
	require.NoError(t, reg.Validate())
	assert.Len(t, reg.Activities, 4)
}

func TestFind(t *testing.T) {
	reg := BuiltIn()

	activity, ok := reg.Find("recommendation.ranking.rank-candidates")
	require.True(t, ok)
	assert.Equal(t, "Rank Candidates", activity.DisplayName)
	assert.Contains(t, activity.ErrorCodes, "DEPARTMENT_REQUIRED")

	_, ok = reg.Find("does.not.exist")
	assert.False(t, ok)
}

func TestValidate_RejectsBadNaming(t *testing.T) {
	reg := BuiltIn()
	reg.Activities[0].ID = "FetchCandidates"

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FetchCandidates")
}

func TestValidate_RejectsDuplicateTaskTypes(t *testing.T) {
	reg := BuiltIn()
	reg.Activities[1].TaskType = reg.Activities[0].TaskType

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate task type")
}

func TestValidate_RejectsMissingSchema(t *testing.T) {
	reg := BuiltIn()
	reg.Activities[2].OutputSchema = nil

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outputSchema")
}

func TestValidate_RejectsMissingErrorCodes(t *testing.T) {
	reg := BuiltIn()
	reg.Activities[3].ErrorCodes = nil

	err := reg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no error codes")
}

func TestLoadRegistryRoundTrip(t *testing.T) {
	reg := BuiltIn()
	data, err := json.Marshal(reg)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.NoError(t, loaded.Validate())
	assert.Equal(t, reg.Version, loaded.Version)
	assert.Len(t, loaded.Activities, len(reg.Activities))
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
