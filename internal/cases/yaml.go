package cases

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alexiusacademia/bridgepsci/internal/params"
)

// File is the YAML layout of a case table:
//
//	cases:
//	  - label: case2
//	    description: softer bearings
//	    overrides:
//	      - key: bearing_multiplier
//	        value: 0.5
//	        type: float
type File struct {
	Cases []FileCase `yaml:"cases"`
}

// FileCase is one labelled case in a YAML table.
type FileCase struct {
	Label       string         `yaml:"label"`
	Description string         `yaml:"description,omitempty"`
	Overrides   []FileOverride `yaml:"overrides"`
}

// FileOverride is one override entry in a YAML table.
type FileOverride struct {
	Key         string `yaml:"key"`
	Value       any    `yaml:"value"`
	Type        string `yaml:"type,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// LoadYAML reads a case table from a YAML file.
func LoadYAML(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	t, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// DecodeYAML reads a case table from r. Values with a declared type are
// converted the same way workbook cells are; untyped numbers become float64.
func DecodeYAML(r io.Reader) (*Table, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return nil, err
	}

	t := &Table{}
	for _, c := range file.Cases {
		if Normalize(c.Label) == "" {
			return nil, fmt.Errorf("case without label")
		}
		t.Declare(c.Label)
		for _, o := range c.Overrides {
			typ, err := params.ParseType(o.Type)
			if err != nil {
				return nil, fmt.Errorf("case %s key %s: %w", c.Label, o.Key, err)
			}
			v := params.Generic(o.Value)
			if typ != params.TypeAuto {
				if v, err = params.Parse(params.Format(v), typ); err != nil {
					var pe *params.ParseError
					if errors.As(err, &pe) {
						pe.Sheet, pe.Key = "cases", o.Key
					}
					return nil, err
				}
			}
			t.Add(Override{Case: c.Label, Key: o.Key, Value: v, Type: typ, Description: o.Description})
		}
	}
	return t, nil
}
