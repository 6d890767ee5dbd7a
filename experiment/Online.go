package experiment

import (
	"fmt"
	"os"

	"github.com/samuelfneumann/gocrawler/agent"
	env "github.com/samuelfneumann/gocrawler/environment"
	"github.com/samuelfneumann/gocrawler/experiment/tracker"
	ts "github.com/samuelfneumann/gocrawler/timestep"
	"github.com/samuelfneumann/gocrawler/utils/progressbar"
)

// Online is an Experiment that runs an agent online only. No offline
// evaluation is performed.
type Online struct {
	env.Environment
	agent.Agent
	maxSteps     uint
	currentSteps uint
	trackers     []tracker.Tracker
	progBar      *progressbar.ManualProgressBar
}

// NewOnline creates and returns a new online experiment on a given
// environment with a given agent. The steps parameter determines how
// many timesteps the experiment is run for, and the t parameter
// is a slice of tracker.Tracker which determine what data is saved.
func NewOnline(e env.Environment, a agent.Agent, steps uint,
	t ...tracker.Tracker) *Online {
	return &Online{
		Environment: e,
		Agent:       a,
		maxSteps:    steps,
		trackers:    t,
	}
}

// ShowProgress displays a progress bar width characters wide while the
// experiment runs
func (o *Online) ShowProgress(width int) {
	o.progBar = progressbar.NewManualProgressBar(os.Stdout, width,
		int(o.maxSteps))
}

// Register registers a tracker.Tracker with an Experiment so that data
// generated during the experiment can be tracked and saved
func (o *Online) Register(t tracker.Tracker) {
	o.trackers = append(o.trackers, t)
}

// Steps returns the number of timesteps run so far
func (o *Online) Steps() uint {
	return o.currentSteps
}

// RunEpisode runs a single episode of the experiment
func (o *Online) RunEpisode() (bool, error) {
	step, err := o.Environment.Reset()
	if err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}
	if err := o.Agent.ObserveFirst(step); err != nil {
		return false, fmt.Errorf("runEpisode: %v", err)
	}
	o.track(step)

	for !step.Last() && o.currentSteps < o.maxSteps {
		o.currentSteps++

		action := o.Agent.SelectAction(step)
		step, _, err = o.Environment.Step(action)
		if err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
		o.track(step)

		if err := o.Agent.Observe(action, step); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}
		if err := o.Agent.Step(); err != nil {
			return false, fmt.Errorf("runEpisode: %v", err)
		}

		if o.progBar != nil {
			o.progBar.Increment()
			o.progBar.Display()
		}
	}

	if step.Last() {
		o.Agent.EndEpisode()
	}

	return o.currentSteps >= o.maxSteps, nil
}

// Run runs the entire experiment for all timesteps
func (o *Online) Run() error {
	for ended := false; !ended; {
		var err error
		if ended, err = o.RunEpisode(); err != nil {
			return fmt.Errorf("run: %v", err)
		}
	}
	if o.progBar != nil {
		fmt.Println()
	}
	return nil
}

// Save saves all the data cached by the Trackers to disk
func (o *Online) Save() error {
	for _, t := range o.trackers {
		if err := t.Save(); err != nil {
			return fmt.Errorf("save: %v", err)
		}
	}
	return nil
}

// track tracks the current timestep by caching its data in each Tracker
func (o *Online) track(t ts.TimeStep) {
	for _, tr := range o.trackers {
		tr.Track(t)
	}
}
