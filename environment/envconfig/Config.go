// Package envconfig provides configuration structs for configuring
// environments with default physical parameters and tasks. Environment
// configurations in this package are JSON serializable.
package envconfig

import (
	"fmt"
	"math"

	env "github.com/samuelfneumann/gocrawler/environment"
	"github.com/samuelfneumann/gocrawler/environment/locomotion/crawler"
	ts "github.com/samuelfneumann/gocrawler/timestep"
	"gonum.org/v1/gonum/spatial/r3"
)

// EnvName stores the name of environments that can be configured with
// this package
type EnvName string

// Environments available for configuration
const (
	Crawler EnvName = "Crawler"
)

// TaskName stores the tasks that can be configured with this package.
// Note that not all tasks can be used with all environments. The tasks
// that can be used with each environment are as follows:
//
//	Environment			Task
//	Crawler				Walk
type TaskName string

// Tasks available for configuration
const (
	Walk TaskName = "Walk"
)

// Config implements a specific configuration of a specific environment
// and specific task. Not all environments can have all tasks.
//
// Fields other than Environment, Task, EpisodeCutoff, and Discount
// configure the Crawler. Zero values of FrameSkip, Dt, and GoalDirection
// select the Crawler's defaults.
type Config struct {
	Environment   EnvName
	Task          TaskName
	EpisodeCutoff uint
	Discount      float64

	SpawnRadius       float64
	TargetRadius      float64
	FrameSkip         int
	Dt                float64
	GoalDirection     [3]float64
	PenalizedSegments []crawler.Segment
	ContactPenalty    float64
	ObservationSize   int
}

// NewConfig returns a new environment Config with the default Crawler
// parameters
func NewConfig(envName EnvName, taskName TaskName, episodeCutoff uint,
	discount float64) Config {
	return Config{
		Environment:   envName,
		Task:          taskName,
		EpisodeCutoff: episodeCutoff,
		Discount:      discount,
		SpawnRadius:   10.0,
		TargetRadius:  crawler.TargetRadius,
	}
}

// Validate returns an error describing why the Config is invalid, if
// it is
func (c Config) Validate() error {
	switch c.Environment {
	case Crawler:
		if c.Task != Walk {
			return fmt.Errorf("validate: Crawler environment has no task %v",
				c.Task)
		}
	default:
		return fmt.Errorf("validate: no such environment %v", c.Environment)
	}

	if c.EpisodeCutoff == 0 {
		return fmt.Errorf("validate: episode cutoff must be positive")
	}
	if c.EpisodeCutoff > math.MaxInt {
		return fmt.Errorf("validate: episode cutoff must be at most %v "+
			"\n\thave(%v)", math.MaxInt, c.EpisodeCutoff)
	}
	if c.Discount < 0 || c.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] \n\thave(%v)",
			c.Discount)
	}
	return nil
}

// Create returns the environment described by the Config as well as
// the first timestep of the environment.
func (c Config) Create(seed uint64) (env.Environment, ts.TimeStep, error) {
	if err := c.Validate(); err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
	}

	switch c.Environment {
	case Crawler:
		e, step, err := CreateCrawler(c, seed)
		if err != nil {
			return nil, ts.TimeStep{}, fmt.Errorf("create: %v", err)
		}
		return e, step, nil
	}

	return nil, ts.TimeStep{}, fmt.Errorf("create: cannot create "+
		"environment %v, no such environment", c.Environment)
}

// CreateCrawler is a factory for creating the Crawler environment with
// the physical and task parameters of a Config
func CreateCrawler(c Config, seed uint64) (env.Environment, ts.TimeStep,
	error) {
	starter, err := env.NewDiscStarter(c.SpawnRadius, crawler.SpawnHeight,
		seed)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCrawler: %v", err)
	}

	targetRadius := c.TargetRadius
	if targetRadius == 0 {
		targetRadius = crawler.TargetRadius
	}
	arena, err := crawler.NewArena(starter, targetRadius)
	if err != nil {
		return nil, ts.TimeStep{}, fmt.Errorf("createCrawler: %v", err)
	}

	var task env.Task
	switch c.Task {
	case Walk:
		task = crawler.NewWalk(int(c.EpisodeCutoff))

	default:
		return nil, ts.TimeStep{}, fmt.Errorf("createCrawler: Crawler "+
			"environment has no task %v", c.Task)
	}

	return crawler.New(task, arena, c.crawlerConfig(), c.Discount)
}

// crawlerConfig returns the crawler.Config described by c
func (c Config) crawlerConfig() crawler.Config {
	conf := crawler.DefaultConfig()
	if c.FrameSkip > 0 {
		conf.FrameSkip = c.FrameSkip
	}
	if c.Dt > 0 {
		conf.Dt = c.Dt
	}

	goal := r3.Vec{X: c.GoalDirection[0], Y: c.GoalDirection[1],
		Z: c.GoalDirection[2]}
	if r3.Norm(goal) > 0 {
		conf.GoalDirection = goal
	}

	conf.PenalizedSegments = c.PenalizedSegments
	conf.ContactPenalty = c.ContactPenalty
	conf.ObservationSize = c.ObservationSize

	return conf
}
