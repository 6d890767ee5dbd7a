package agent

import (
	"fmt"
	"reflect"
	"sort"
)

// Type names the kind of agent a Config creates. A TypedConfigList
// stores its Type so that it can be decoded into the concrete
// ConfigList registered for that Type.
type Type string

const (
	UniformRandom Type = "UniformRandom"
)

// registeredTypes maps each Type to the concrete type of its
// ConfigList. Agent packages register themselves in their init
// functions, since this package cannot import them.
var registeredTypes = make(map[Type]reflect.Type)

// Register registers the concrete type of configs as the ConfigList of
// agentType. Register panics if agentType is already registered.
func Register(agentType Type, configs ConfigList) {
	if _, ok := registeredTypes[agentType]; ok {
		panic(fmt.Sprintf("register: agent type %v already registered",
			agentType))
	}
	registeredTypes[agentType] = reflect.TypeOf(configs)
}

// RegisteredTypes returns the registered agent Types in sorted order
func RegisteredTypes() []Type {
	types := make([]Type, 0, len(registeredTypes))
	for t := range registeredTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// newConfigList returns a pointer to a new, empty ConfigList of the
// concrete type registered for agentType
func newConfigList(agentType Type) (interface{}, error) {
	ty, ok := registeredTypes[agentType]
	if !ok {
		return nil, fmt.Errorf("no such agent type %v, registered types "+
			"are %v", agentType, RegisteredTypes())
	}
	return reflect.New(ty).Interface(), nil
}
