package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// RoutingTolerance is the allowed deviation of a routing row sum from 1.
const RoutingTolerance = 1e-6

// StationConfig describes one station of the network.
type StationConfig struct {
	Name            string  `yaml:"name,omitempty" json:"name,omitempty"`
	Servers         int     `yaml:"servers" json:"servers"`                     // parallel servers (must be > 0)
	MeanServiceTime float64 `yaml:"mean_service_time" json:"mean_service_time"` // exponential mean (must be > 0)
}

// NetworkConfig groups the construction-time parameters of a closed network.
type NetworkConfig struct {
	NumJobs        int             `yaml:"population" json:"population"` // closed population (WIP), must be > 0
	Stations       []StationConfig `yaml:"stations" json:"stations"`
	Routing        [][]float64     `yaml:"routing" json:"routing"`                 // row i = P(next station | leaving i)
	InitialStation int             `yaml:"initial_station" json:"initial_station"` // where every job starts
	Seed           *int64          `yaml:"seed,omitempty" json:"seed,omitempty"`   // nil = seed from process entropy
}

// RunConfig groups the run-time parameters of a simulation.
type RunConfig struct {
	Horizon         float64 `yaml:"horizon" json:"horizon"` // total simulated time (must be > 0)
	Warmup          float64 `yaml:"warmup" json:"warmup"`   // statistics before this time are discarded
	CheckInvariants bool    `yaml:"-" json:"-"`             // verify WIP conservation after every event
}

// Validate checks the network configuration. Any error means the network
// has no valid trajectory and must not be constructed.
func (c *NetworkConfig) Validate() error {
	if c.NumJobs <= 0 {
		return fmt.Errorf("population must be positive, got %d", c.NumJobs)
	}
	n := len(c.Stations)
	if n == 0 {
		return fmt.Errorf("at least one station required")
	}
	for i, st := range c.Stations {
		if err := validateStation(&st, i); err != nil {
			return err
		}
	}
	if len(c.Routing) != n {
		return fmt.Errorf("routing matrix must have %d rows (one per station), got %d", n, len(c.Routing))
	}
	for i, row := range c.Routing {
		if err := validateRoutingRow(row, i, n); err != nil {
			return err
		}
	}
	if c.InitialStation < 0 || c.InitialStation >= n {
		return fmt.Errorf("initial_station must be in [0, %d), got %d", n, c.InitialStation)
	}
	return nil
}

func validateStation(st *StationConfig, idx int) error {
	prefix := fmt.Sprintf("station[%d]", idx)
	if st.Servers <= 0 {
		return fmt.Errorf("%s: servers must be positive, got %d", prefix, st.Servers)
	}
	if err := validateFinitePositive(prefix+".mean_service_time", st.MeanServiceTime); err != nil {
		return err
	}
	return nil
}

func validateRoutingRow(row []float64, idx, n int) error {
	prefix := fmt.Sprintf("routing[%d]", idx)
	if len(row) != n {
		return fmt.Errorf("%s: must have %d columns, got %d", prefix, n, len(row))
	}
	for j, p := range row {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%s[%d] must be a finite number, got %f", prefix, j, p)
		}
		if p < 0 {
			return fmt.Errorf("%s[%d] must be non-negative, got %f", prefix, j, p)
		}
	}
	if sum := floats.Sum(row); math.Abs(sum-1) > RoutingTolerance {
		return fmt.Errorf("%s: probabilities must sum to 1, got %f", prefix, sum)
	}
	return nil
}

// Validate checks the run configuration.
func (c *RunConfig) Validate() error {
	if err := validateFinitePositive("horizon", c.Horizon); err != nil {
		return err
	}
	if math.IsNaN(c.Warmup) || c.Warmup < 0 {
		return fmt.Errorf("warmup must be non-negative, got %f", c.Warmup)
	}
	if c.Warmup > c.Horizon {
		return fmt.Errorf("warmup (%f) must not exceed horizon (%f)", c.Warmup, c.Horizon)
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
