package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tally/internal/report"
)

// starterPlan is a small factory against the embedded v1.0-geo
// database: one iron miner feeding one smelter. The smelter's only
// recipe is selected by default.
const starterPlan = `
database: v1.0-geo
name: Starter Iron
nodes:
  - building: Build_MinerMk1_C
    resource: Desc_OreIron_C
  - building: Build_SmelterMk1_C
`

// writePlanFile writes plan source to a temp file.
func writePlanFile(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestBalanceText(t *testing.T) {
	stdout, _, err := executeCommand(t, "balance", writePlanFile(t, starterPlan))
	require.NoError(t, err)

	assert.Contains(t, stdout, "Starter Iron")
	assert.Contains(t, stdout, "database v1.0-geo")
	assert.Contains(t, stdout, "Power (MW)")
	assert.Contains(t, stdout, "-9.00")
	assert.Contains(t, stdout, "Iron Ingot")
	assert.Contains(t, stdout, "+30.00")
}

func TestBalanceJSON(t *testing.T) {
	stdout, _, err := executeCommand(t, "balance", writePlanFile(t, starterPlan), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   report.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)

	assert.Equal(t, "Starter Iron", resp.Data.Name)
	assert.Equal(t, 2, resp.Data.Buildings)
	assert.Equal(t, -9.0, resp.Data.Power.Net)

	rates := map[string]float64{}
	for _, item := range resp.Data.Items {
		rates[string(item.ID)] = item.Net
	}
	assert.Equal(t, 30.0, rates["Desc_IronIngot_C"])
	assert.Equal(t, 30.0, rates["Desc_OreIron_C"])
	assert.Empty(t, resp.Data.Warnings)
}

func TestBalanceGermanLocale(t *testing.T) {
	stdout, _, err := executeCommand(t, "balance", writePlanFile(t, starterPlan), "--locale", "de")
	require.NoError(t, err)
	// German decimal comma.
	assert.Contains(t, stdout, "30,00")
}

func TestBalanceInvalidLocale(t *testing.T) {
	_, _, err := executeCommand(t, "balance", writePlanFile(t, starterPlan), "--locale", "no-such-locale!")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBalanceMissingPlan(t *testing.T) {
	_, _, err := executeCommand(t, "balance", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBalanceBrokenPlan(t *testing.T) {
	path := writePlanFile(t, "nodes:\n  - building: Build_Imaginary_C\n")
	_, _, err := executeCommand(t, "balance", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "unable to compile plan")
}
