package agent

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/gocrawler/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent created by the Config
	Type() Type
}

// ConfigList stores a number of Configs as one slice of values per
// Config field. The list holds every combination of field values, so
// that its length is the product of the lengths of its fields.
//
// Concrete ConfigList types must be structs whose fields are slices,
// with each field named after the Config field it holds values for.
type ConfigList interface {
	// Config returns an empty Config of the type stored in the list
	Config() Config

	// Type returns the type of agent created by Configs in the list
	Type() Type

	// NumFields returns the number of settable fields
	NumFields() int

	// Len returns the number of Configs stored in the list
	Len() int
}

// ConfigAt returns the Config at index i in the ConfigList. Indices
// wrap around the length of the list, so that the same index can be
// used to index hyperparameter settings across repeated runs.
//
// The first field of the ConfigList varies fastest with i.
func ConfigAt(i int, c ConfigList) Config {
	if c.Len() == 0 {
		panic("configAt: empty config list")
	}
	i %= c.Len()

	list := reflect.ValueOf(c)
	if list.Kind() != reflect.Struct {
		panic(fmt.Sprintf("configAt: config list must be a struct, have %v",
			list.Kind()))
	}

	config := reflect.New(reflect.TypeOf(c.Config())).Elem()
	for f := 0; f < list.NumField(); f++ {
		name := list.Type().Field(f).Name
		values := list.Field(f)

		field := config.FieldByName(name)
		if !field.IsValid() {
			panic(fmt.Sprintf("configAt: config has no field %v", name))
		}

		field.Set(values.Index(i % values.Len()))
		i /= values.Len()
	}

	return config.Interface().(Config)
}
