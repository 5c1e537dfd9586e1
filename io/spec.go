// Package io holds the model's outer-surface collaborators: TOML
// model-spec parsing, CSV and NetCDF forcings/results, kept separate
// from the core engine package per §6's scope boundary ("the engine
// treats a forcings source/results sink purely as an interface").
package io

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/hydrobricks/hydrobricks"
)

// ParseModelSpecFile reads a TOML model specification file into a
// hydrobricks.ModelSpec. Field names match the TOML table/key names
// case-insensitively, the same convention the teacher's config layer
// uses for its own settings structs.
func ParseModelSpecFile(path string) (*hydrobricks.ModelSpec, error) {
	var spec hydrobricks.ModelSpec
	if _, err := toml.DecodeFile(path, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ParseModelSpecReader parses a TOML model specification from an
// already-open reader.
func ParseModelSpecReader(f *os.File) (*hydrobricks.ModelSpec, error) {
	var spec hydrobricks.ModelSpec
	if _, err := toml.DecodeReader(f, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// BuildTimer constructs a hydrobricks.Timer from a parsed TimerSpec.
func BuildTimer(ts hydrobricks.TimerSpec) (*hydrobricks.Timer, error) {
	start, err := hydrobricks.ParseISODate(ts.Start)
	if err != nil {
		return nil, err
	}
	end, err := hydrobricks.ParseISODate(ts.End)
	if err != nil {
		return nil, err
	}
	unit, err := hydrobricks.ParseStepUnit(ts.StepUnit)
	if err != nil {
		return nil, err
	}
	return hydrobricks.NewTimer(start, end, ts.Step, unit), nil
}
