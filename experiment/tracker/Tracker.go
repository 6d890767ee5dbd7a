// Package tracker defines Trackers, which track and save data in an
// experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"

	ts "github.com/samuelfneumann/gocrawler/timestep"
)

// Interface Tracker keeps track of experiment data and saves the data
// after the experiment has finished
type Tracker interface {
	Track(t ts.TimeStep)
	Save() error
}

// LoadData loads and returns the data saved by a Tracker which saves
// one float64 per episode, such as the episodic return
func LoadData(filename string) ([]float64, error) {
	var data []float64
	if err := load(filename, &data); err != nil {
		return nil, fmt.Errorf("loadData: %v", err)
	}
	return data, nil
}

// LoadLengths loads and returns the episode lengths saved by a Tracker
func LoadLengths(filename string) ([]int, error) {
	var data []int
	if err := load(filename, &data); err != nil {
		return nil, fmt.Errorf("loadLengths: %v", err)
	}
	return data, nil
}

// load decodes the gob encoded data in filename into data
func load(filename string, data interface{}) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("could not open data file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(data); err != nil {
		return fmt.Errorf("could not decode data: %v", err)
	}
	return nil
}

// Save gob encodes data to filename, replacing any existing file
func Save(filename string, data interface{}) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not open save file: %v", err)
	}

	en := gob.NewEncoder(file)
	if err := en.Encode(data); err != nil {
		file.Close()
		return fmt.Errorf("could not encode data: %v", err)
	}
	return file.Close()
}
