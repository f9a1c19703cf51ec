package facility

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/laundry-sim/laundry-sim/sim"
)

// RoomSpec describes one laundry room. Each room runs its own pool.
type RoomSpec struct {
	Name       string `yaml:"name"`
	Code       int    `yaml:"code"`       // numeric room feature used by the classifier
	Population *int   `yaml:"population,omitempty"` // overrides pool.population when set
}

// Config is the top-level facility configuration.
// Loaded from YAML via LoadConfig(path).
type Config struct {
	Seed  int64          `yaml:"seed"`
	Days  int            `yaml:"days"`
	Rooms []RoomSpec     `yaml:"rooms"`
	Pool  sim.PoolConfig `yaml:"pool"`
}

// DefaultConfig returns a month-long run of two dormitory rooms that share
// the default pool population.
func DefaultConfig() Config {
	return Config{
		Seed: 42,
		Days: 31,
		Rooms: []RoomSpec{
			{Name: "men", Code: 0},
			{Name: "women", Code: 1},
		},
		Pool: sim.DefaultPoolConfig(),
	}
}

// LoadConfig reads a YAML facility configuration on top of DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading facility config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration bytes on top of DefaultConfig.
// A rooms list in the document replaces the default rooms.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing facility config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the facility and every room's pool.
// All errors wrap sim.ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", sim.ErrInvalidConfig, c.Days)
	}
	if len(c.Rooms) == 0 {
		return fmt.Errorf("%w: at least one room required", sim.ErrInvalidConfig)
	}
	names := make(map[string]bool, len(c.Rooms))
	codes := make(map[int]bool, len(c.Rooms))
	for i, r := range c.Rooms {
		prefix := fmt.Sprintf("rooms[%d]", i)
		if r.Name == "" {
			return fmt.Errorf("%w: %s: name must not be empty", sim.ErrInvalidConfig, prefix)
		}
		if names[r.Name] {
			return fmt.Errorf("%w: %s: duplicate room name %q", sim.ErrInvalidConfig, prefix, r.Name)
		}
		if codes[r.Code] {
			return fmt.Errorf("%w: %s: duplicate room code %d", sim.ErrInvalidConfig, prefix, r.Code)
		}
		names[r.Name] = true
		codes[r.Code] = true
		if err := c.RoomPool(r).Validate(); err != nil {
			return fmt.Errorf("%s (%s): %w", prefix, r.Name, err)
		}
	}
	return nil
}

// RoomPool returns the pool configuration for one room. A room without its
// own population inherits pool.population.
func (c Config) RoomPool(r RoomSpec) sim.PoolConfig {
	pool := c.Pool
	if r.Population != nil {
		pool.Population = *r.Population
	}
	return pool
}

// RoomCodes maps room names to their numeric codes.
func (c Config) RoomCodes() map[string]int {
	codes := make(map[string]int, len(c.Rooms))
	for _, r := range c.Rooms {
		codes[r.Name] = r.Code
	}
	return codes
}

// Horizon returns the number of ticks to simulate.
func (c Config) Horizon() int64 {
	return int64(c.Days) * sim.TicksPerDay
}
