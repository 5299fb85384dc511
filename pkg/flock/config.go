package flock

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Config carries the world bounds and the per-agent tuning constants.
// The constants are stamped onto each agent at construction time, so they
// are logically per-agent even though every agent shares the same values in
// practice.
type Config struct {
	// World dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Population
	NumAgents int `json:"numAgents"`

	// Physics caps
	AgentRadius float64 `json:"agentRadius"`
	MaxSpeed    float64 `json:"maxSpeed"`
	MaxForce    float64 `json:"maxForce"`

	// Neighbor interaction radii
	SeparationRadius float64 `json:"separationRadius"`
	AlignmentRadius  float64 `json:"alignmentRadius"`
	CohesionRadius   float64 `json:"cohesionRadius"`

	// Workers sizes the parallel tick's pool; 0 means one per hardware
	// thread.
	Workers int `json:"workers"`

	// Seed makes agent placement reproducible; 0 seeds from the clock.
	Seed uint64 `json:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:       1000,
		WorldHeight:      800,
		NumAgents:        150,
		AgentRadius:      3.0,
		MaxSpeed:         4.0,
		MaxForce:         0.5,
		SeparationRadius: 25.0,
		AlignmentRadius:  50.0,
		CohesionRadius:   50.0,
		Workers:          0,
		Seed:             0,
	}
}

// LoadConfig loads configuration from a JSON file and validates it against
// the schema before unmarshalling.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Start from defaults so omitted optional fields keep sane values.
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}
