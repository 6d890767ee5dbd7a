package random

import (
	"fmt"
	"math"
	"reflect"

	"github.com/samuelfneumann/gocrawler/agent"
	"github.com/samuelfneumann/gocrawler/environment"
)

func init() {
	// Register ConfigList type so that it can be typed using
	// agent.TypedConfigList to help with serialization/deserialization.
	agent.Register(agent.UniformRandom, ConfigList{})
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	Low  []float64
	High []float64
}

// NewConfigList returns a new ConfigList as an agent.TypedConfigList
// so that it can easily be JSON serialized/deserialized without
// knowing the underlying concrete type.
func NewConfigList(low, high []float64) agent.TypedConfigList {
	config := ConfigList{Low: low, High: high}
	return agent.NewTypedConfigList(config)
}

// Config returns an empty Config that is of the type stored by
// ConfigList
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the ConfigList
func (c ConfigList) NumFields() int {
	rValue := reflect.ValueOf(c)
	return rValue.NumField()
}

// Len returns the number of Configs stored by the list
func (c ConfigList) Len() int {
	return len(c.Low) * len(c.High)
}

// Config represents a configuration for the Random agent. Actions are
// sampled from [Low, High] in every dimension.
type Config struct {
	Low  float64
	High float64
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	r, err := New(env, c, seed)
	if err != nil {
		return nil, fmt.Errorf("createAgent: %v", err)
	}
	return r, nil
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*Random)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if math.IsNaN(c.Low) || math.IsInf(c.Low, 0) ||
		math.IsNaN(c.High) || math.IsInf(c.High, 0) {
		return fmt.Errorf("validate: bounds must be finite")
	}
	if c.Low > c.High {
		return fmt.Errorf("validate: low bound %v exceeds high bound %v",
			c.Low, c.High)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.UniformRandom
}
