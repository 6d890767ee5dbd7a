// Package trackers implements Trackers, which track and save data
// generated by an experiment
package trackers

import (
	"fmt"

	"github.com/samuelfneumann/gocrawler/experiment/tracker"
	ts "github.com/samuelfneumann/gocrawler/timestep"
)

// Return tracks and saves the episodic return in an experiment. When
// an environment returns a TimeStep, this Tracker will extract the
// reward and accumulate the return for each episode in the experiment.
//
// Note: An episode must finish for this Tracker to save its data.
// If the last episode in an experiment does not finish, that episode's
// return will not be saved.
type Return struct {
	lastTimeStep   int
	currentReturn  float64
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker which saves its
// data to filename
func NewReturn(filename string) *Return {
	return &Return{
		lastTimeStep: -1,
		filename:     filename,
	}
}

// Track tracks the rewards seen on a timestep. By calling this method
// on every timestep, the Tracker accumulates the rewards of the current
// episode and caches the episodic return once the last timestep of the
// episode is seen.
//
// Track panics if it is called for non-sequential timesteps
func (r *Return) Track(step ts.TimeStep) {
	if r.lastTimeStep+1 != step.Number {
		panic(fmt.Sprintf("track: last two timesteps tracked are not "+
			"sequential: timestep %v --> timestep %v were tracked",
			r.lastTimeStep, step.Number))
	}

	r.currentReturn += step.Reward
	if !step.Last() {
		r.lastTimeStep = step.Number
		return
	}

	// Episode has ended, cache the return and begin tracking the
	// return for a new episode
	r.episodeReturns = append(r.episodeReturns, r.currentReturn)
	r.currentReturn = 0.0
	r.lastTimeStep = -1
}

// Returns returns the returns of all finished episodes
func (r *Return) Returns() []float64 {
	returns := make([]float64, len(r.episodeReturns))
	copy(returns, r.episodeReturns)
	return returns
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	if err := tracker.Save(r.filename, r.episodeReturns); err != nil {
		return fmt.Errorf("save: %v", err)
	}
	return nil
}
