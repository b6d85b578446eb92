package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lineYAML = `
population: 6
initial_station: 0
seed: 7
stations:
  - name: Cut
    servers: 2
    mean_service_time: 0.8
  - name: Weld
    servers: 1
    mean_service_time: 2.0
routing:
  - [0, 1]
  - [1, 0]
run:
  horizon: 500
  warmup: 50
sweep:
  levels: [2, 4, 8]
  replications: 2
`

func TestParseNetworkSpec_Valid(t *testing.T) {
	// GIVEN a complete network file
	spec, err := ParseNetworkSpec([]byte(lineYAML))

	// THEN every section is decoded
	require.NoError(t, err)
	assert.Equal(t, 6, spec.Network.NumJobs)
	require.Len(t, spec.Network.Stations, 2)
	assert.Equal(t, "Weld", spec.Network.Stations[1].Name)
	assert.Equal(t, 2, spec.Network.Stations[0].Servers)
	require.NotNil(t, spec.Network.Seed)
	assert.Equal(t, int64(7), *spec.Network.Seed)
	assert.Equal(t, 500.0, spec.Run.Horizon)
	assert.Equal(t, 50.0, spec.Run.Warmup)
	require.NotNil(t, spec.Sweep)
	assert.Equal(t, []int{2, 4, 8}, spec.Sweep.Levels)
	assert.NoError(t, spec.Validate())
}

func TestParseNetworkSpec_UnknownField_Rejected(t *testing.T) {
	// GIVEN a file with a misspelled key
	data := []byte(`
populaton: 6
stations:
  - servers: 1
    mean_service_time: 1.0
routing: [[1]]
run:
  horizon: 10
`)

	// WHEN it is parsed, THEN strict decoding refuses it
	_, err := ParseNetworkSpec(data)
	assert.ErrorContains(t, err, "parsing network spec")
	assert.ErrorContains(t, err, "populaton")
}

func TestParseNetworkSpec_NoSeed_LeavesNil(t *testing.T) {
	spec, err := ParseNetworkSpec([]byte(`
population: 1
stations: [{servers: 1, mean_service_time: 1.0}]
routing: [[1]]
run: {horizon: 10}
`))
	require.NoError(t, err)
	assert.Nil(t, spec.Network.Seed)
	assert.Nil(t, spec.Sweep)
}

func TestLoadNetworkSpec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "line.yaml")
	require.NoError(t, os.WriteFile(path, []byte(lineYAML), 0o644))

	spec, err := LoadNetworkSpec(path)
	require.NoError(t, err)
	assert.Equal(t, 6, spec.Network.NumJobs)

	_, err = LoadNetworkSpec(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading network spec")
}

func TestNetworkSpec_Validate_PrefixesSection(t *testing.T) {
	spec, err := ParseNetworkSpec([]byte(lineYAML))
	require.NoError(t, err)

	spec.Network.Routing[0] = []float64{0.5, 0.3}
	assert.ErrorContains(t, spec.Validate(), "network: routing[0]: probabilities must sum to 1")

	spec.Network.Routing[0] = []float64{0, 1}
	spec.Run.Warmup = 1000
	assert.ErrorContains(t, spec.Validate(), "run: warmup")
}
