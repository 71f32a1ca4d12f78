package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/volley-simulations/pkg/logger"
	"github.com/picogrid/volley-simulations/pkg/simulation"
)

// metadataFile is the scenario metadata file name.
const metadataFile = "simulation.yaml"

// SimulationInfo contains information about a discovered scenario
type SimulationInfo struct {
	Path   string
	Config simulation.SimulationConfig
}

// DiscoverSimulations finds all scenarios in the cmd directory
func DiscoverSimulations() ([]SimulationInfo, error) {
	rootDir, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	return DiscoverIn(filepath.Join(rootDir, "cmd"))
}

// DiscoverIn finds every simulation.yaml under cmdDir.
func DiscoverIn(cmdDir string) ([]SimulationInfo, error) {
	var simulations []SimulationInfo

	// Walk through cmd directory
	err := filepath.Walk(cmdDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Name() == metadataFile {
			simInfo, err := loadSimulationConfig(path)
			if err != nil {
				logger.Warnf("failed to load %s: %v", path, err)
				return nil
			}
			simulations = append(simulations, *simInfo)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan for simulations: %w", err)
	}

	return simulations, nil
}

// FindSimulation returns the metadata of the named scenario.
func FindSimulation(infos []SimulationInfo, name string) (*SimulationInfo, error) {
	for i := range infos {
		if infos[i].Config.Name == name {
			return &infos[i], nil
		}
	}
	return nil, fmt.Errorf("simulation configuration not found for %s", name)
}

// loadSimulationConfig loads a simulation configuration from a file
func loadSimulationConfig(path string) (*SimulationInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	var config simulation.SimulationConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}
	if config.Name == "" {
		return nil, fmt.Errorf("simulation config has no name")
	}

	return &SimulationInfo{
		Path:   filepath.Dir(path),
		Config: config,
	}, nil
}

// findProjectRoot finds the project root by looking for go.mod
func findProjectRoot() (string, error) {
	// Start from current directory
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	// Walk up until we find go.mod
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root without finding go.mod
			return "", fmt.Errorf("could not find project root (no go.mod found)")
		}
		dir = parent
	}
}
