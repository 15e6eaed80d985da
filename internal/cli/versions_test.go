package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/gamedb"
)

func TestVersionsText(t *testing.T) {
	stdout, _, err := executeCommand(t, "versions")
	require.NoError(t, err)

	for _, v := range gamedb.Versions() {
		assert.Contains(t, stdout, string(v.ID))
	}
	assert.Contains(t, stdout, "* "+string(gamedb.Latest()))
	assert.Contains(t, stdout, "(deprecated)")
}

func TestVersionsVerboseShowsDescriptions(t *testing.T) {
	stdout, _, err := executeCommand(t, "versions", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Geothermal Generator")
}

func TestVersionsJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "versions", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string               `json:"status"`
		Data   []gamedb.VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data, len(gamedb.Versions()))

	last := resp.Data[len(resp.Data)-1]
	assert.Equal(t, gamedb.Latest(), last.ID)
	assert.False(t, last.Deprecated)
}
