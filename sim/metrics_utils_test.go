package sim

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveResults_JSONRoundTrip(t *testing.T) {
	// GIVEN results from a finished run
	n, _ := mustRun(t, twoStationCycle(3, 1.0, 1.5, 42), RunConfig{Horizon: 200, Warmup: 20})
	res := n.Results()
	path := filepath.Join(t.TempDir(), "results.json")

	// WHEN they are saved as JSON
	require.NoError(t, res.SaveResults(path, "json"))

	// THEN the file decodes to the same values
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Results
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, res.TotalCompletions, got.TotalCompletions)
	assert.Equal(t, res.NumJobs, got.NumJobs)
	assert.Len(t, got.Stations, 2)
}

func TestSaveResults_UnknownFormat(t *testing.T) {
	res := &Results{}
	err := res.SaveResults(filepath.Join(t.TempDir(), "out.txt"), "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestSaveResults_BadPath(t *testing.T) {
	res := &Results{}
	err := res.SaveResults(filepath.Join(t.TempDir(), "missing", "out.json"), "json")
	assert.Error(t, err)
}
