package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cqnsim/cqnsim/sim"
)

// SweepSpec is the optional sweep section of a network file.
type SweepSpec struct {
	Levels       []int `yaml:"levels"`
	Replications int   `yaml:"replications"`
}

// NetworkSpec is the on-disk description of a closed network and how to run it.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type NetworkSpec struct {
	Network sim.NetworkConfig `yaml:",inline"`
	Run     sim.RunConfig     `yaml:"run"`
	Sweep   *SweepSpec        `yaml:"sweep,omitempty"`
}

// LoadNetworkSpec reads a network file. Unknown fields are rejected so that
// typos fail loudly instead of silently falling back to zero values.
func LoadNetworkSpec(path string) (*NetworkSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network spec: %w", err)
	}
	return ParseNetworkSpec(data)
}

// ParseNetworkSpec decodes a network file held in memory.
func ParseNetworkSpec(data []byte) (*NetworkSpec, error) {
	var spec NetworkSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing network spec: %w", err)
	}
	return &spec, nil
}

// Validate checks both the network and its run parameters.
func (s *NetworkSpec) Validate() error {
	if err := s.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := s.Run.Validate(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
