package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypedConfigList is a ConfigList which stores its Type, so that it
// can be decoded from JSON into its concrete type without knowing that
// type beforehand. The concrete type must have been registered with
// Register.
type TypedConfigList struct {
	Type
	ConfigList
}

// NewTypedConfigList types the argument ConfigList
func NewTypedConfigList(c ConfigList) TypedConfigList {
	return TypedConfigList{Type: c.Type(), ConfigList: c}
}

// typedJSON is the serialized layout of a TypedConfigList
type typedJSON struct {
	Type       Type
	ConfigList json.RawMessage
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (t *TypedConfigList) UnmarshalJSON(data []byte) error {
	var raw typedJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	if raw.Type == "" {
		return fmt.Errorf("unmarshalJSON: missing agent type")
	}

	list, err := newConfigList(raw.Type)
	if err != nil {
		return fmt.Errorf("unmarshalJSON: %v", err)
	}
	if len(raw.ConfigList) > 0 {
		if err := json.Unmarshal(raw.ConfigList, list); err != nil {
			return fmt.Errorf("unmarshalJSON: %v", err)
		}
	}

	t.Type = raw.Type
	t.ConfigList = reflect.ValueOf(list).Elem().Interface().(ConfigList)
	return nil
}

// At returns the Config at index i in the TypedConfigList
func (t *TypedConfigList) At(i int) Config {
	return ConfigAt(i, t.ConfigList)
}
