package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/laundry-sim/laundry-sim/sim/facility"
	"github.com/laundry-sim/laundry-sim/sim/forecast"
)

// decodeStrict decodes a YAML file on top of out's current values.
// Unknown keys are rejected so typos surface as errors.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// loadFacilityConfig returns the defaults when path is empty.
func loadFacilityConfig(path string) (*facility.Config, error) {
	if path == "" {
		cfg := facility.DefaultConfig()
		return &cfg, nil
	}
	return facility.LoadConfig(path)
}

// loadTrainConfig returns the defaults when path is empty.
func loadTrainConfig(path string) (forecast.TrainConfig, error) {
	cfg := forecast.DefaultTrainConfig()
	if path == "" {
		return cfg, nil
	}
	err := decodeStrict(path, &cfg)
	return cfg, err
}

// ServeConfig is the optional YAML file of the serve command.
type ServeConfig struct {
	Addr     string                 `yaml:"addr"`
	Model    string                 `yaml:"model"`
	Serving  forecast.ServingConfig `yaml:"serving"`
	Messages forecast.Messages      `yaml:"messages"`
}

func defaultServeConfig() ServeConfig {
	return ServeConfig{
		Addr:     ":8080",
		Model:    "model.json",
		Messages: forecast.DefaultMessages(),
	}
}

// loadServeConfig returns the defaults when path is empty.
func loadServeConfig(path string) (ServeConfig, error) {
	cfg := defaultServeConfig()
	if path == "" {
		return cfg, nil
	}
	err := decodeStrict(path, &cfg)
	return cfg, err
}
