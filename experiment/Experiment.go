// Package experiment implements functionality for running an experiment
package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/gocrawler/agent"
	"github.com/samuelfneumann/gocrawler/environment/envconfig"
	"github.com/samuelfneumann/gocrawler/experiment/tracker"
)

// Interface Experiment outlines structs that can run experiments.
// Experiments send each environment TimeStep to their Trackers, which
// cache the data they track in RAM. The Save() method then saves all
// cached data to disk, usually after an experiment has been run. The
// Run() method runs episodes until the maximum timestep limit is
// reached, and RunEpisode() runs a single episode.
type Experiment interface {
	Run() error

	// RunEpisode returns whether or not the timestep limit of the
	// experiment has been reached
	RunEpisode() (bool, error)

	// Save all tracked data to disk
	Save() error

	// Adds a new tracker.Tracker to the (possibly already running)
	// experiment. Useful if you want to track data only after a
	// specified event.
	Register(t tracker.Tracker)
}

// Type is a type of Experiment
type Type string

const (
	OnlineExp Type = "OnlineExperiment"
)

// Config represents a configuration of an experiment.
type Config struct {
	Type
	MaxSteps  uint
	EnvConf   envconfig.Config
	AgentConf agent.TypedConfigList
}

// Validate returns an error describing why the Config is invalid, if it
// is
func (c Config) Validate() error {
	if c.Type != OnlineExp {
		return fmt.Errorf("validate: no such experiment type %v", c.Type)
	}
	if c.MaxSteps == 0 {
		return fmt.Errorf("validate: max steps must be positive")
	}
	if c.AgentConf.ConfigList == nil || c.AgentConf.Len() == 0 {
		return fmt.Errorf("validate: no agent configurations")
	}
	if err := c.EnvConf.Validate(); err != nil {
		return fmt.Errorf("validate: %v", err)
	}
	return nil
}

// CreateExp creates the Experiment described by the Config, using the
// agent configuration at index i of the Config's agent configurations.
// Environment and agent are both seeded with seed.
func (c Config) CreateExp(i int, seed uint64,
	t []tracker.Tracker) (Experiment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %v", err)
	}

	env, _, err := c.EnvConf.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create "+
			"environment: %v", err)
	}

	conf := c.AgentConf.At(i)
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: invalid agent config: %v", err)
	}
	a, err := conf.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %v", err)
	}

	switch c.Type {
	case OnlineExp:
		return NewOnline(env, a, c.MaxSteps, t...), nil
	}

	return nil, fmt.Errorf("createExp: no such experiment type %v", c.Type)
}

// LoadConfig loads an experiment Config from the JSON file filename
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v", err)
	}
	return c, nil
}
