// Package plan reads factory plans from YAML files and compiles them
// into worlds.
//
// A plan is the text form of a factory tree: nested groups of
// configured buildings, plus the database version the factory is
// planned against. Compiling a plan resolves every building, recipe,
// and item against the database and reports the path of the first
// node that does not check out.
package plan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a factory description read from YAML.
type Plan struct {
	// Name of the factory. It becomes the root group's name.
	Name string `yaml:"name,omitempty"`
	// Database is the standard database version the factory is
	// planned against, such as "v1.0-geo". Empty selects the latest
	// version.
	Database string `yaml:"database,omitempty"`
	// Nodes are the top-level entries of the factory.
	Nodes []Node `yaml:"nodes,omitempty"`
}

// Node is one entry of a plan: a group of further nodes, or a single
// configured building. Setting building makes the node a building;
// the group fields and the building fields are mutually exclusive.
type Node struct {
	// Name of the group.
	Name string `yaml:"name,omitempty"`
	// Children of the group, in display order.
	Children []Node `yaml:"children,omitempty"`
	// Collapsed marks the group as folded when the tree is shown.
	Collapsed bool `yaml:"collapsed,omitempty"`

	// Building is a building type id such as "Build_SmelterMk1_C".
	Building string `yaml:"building,omitempty"`
	// Recipe produced by a manufacturer.
	Recipe string `yaml:"recipe,omitempty"`
	// Resource extracted by a miner or pump.
	Resource string `yaml:"resource,omitempty"`
	// Fuel burned by a generator or dispensed by a station.
	Fuel string `yaml:"fuel,omitempty"`
	// Target of a balance adjustment: an item id or "power".
	Target string `yaml:"target,omitempty"`
	// Purity of the pad under a miner or geothermal generator.
	Purity string `yaml:"purity,omitempty"`
	// Clock speed of an overclockable building, as a fraction.
	Clock *float64 `yaml:"clock,omitempty"`
	// Rate configures a station's fuel consumption or a balance
	// adjustment's rate.
	Rate *float64 `yaml:"rate,omitempty"`
	// PurePads, NormalPads, and ImpurePads count the pads connected
	// to a fracking pump.
	PurePads   *int `yaml:"pure_pads,omitempty"`
	NormalPads *int `yaml:"normal_pads,omitempty"`
	ImpurePads *int `yaml:"impure_pads,omitempty"`

	// Copies of this group or building. Defaults to 1.
	Copies *float64 `yaml:"copies,omitempty"`
}

// Load reads and parses a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a plan from YAML. Unknown fields are rejected. An
// empty document is an empty plan.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return &Plan{}, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &p, nil
}
