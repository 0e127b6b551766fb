// SPDX-License-Identifier: MIT
// Package: lvconnect/conf
//
// yaml.go - YAML decoding of dictionaries.

package conf

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML implements yaml.Unmarshaler. A scalar string is accepted
// as shorthand for {rule: <string>}, mirroring the "conn_spec may be a rule
// name" convenience of the original interface.
func (d *Dict) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*d = *New(map[string]any{"rule": name})
		return nil
	}

	var m map[string]any
	if err := node.Decode(&m); err != nil {
		return fmt.Errorf("decode dictionary: %w", err)
	}
	*d = *New(m)

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d *Dict) MarshalYAML() (any, error) {
	return d.Raw(), nil
}

// ParseYAML decodes a single YAML mapping into a Dict.
func ParseYAML(data []byte) (*Dict, error) {
	var d Dict
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("ParseYAML: %w", err)
	}
	if d.values == nil {
		return New(nil), nil
	}

	return &d, nil
}
