package calculator

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// SimulationParameters is the input of one solve. Lengths in m, time in s,
// temperatures in °C, diffusivity in m²/s.
type SimulationParameters struct {
	Radius             float64 `json:"radius" yaml:"radius"`
	Length             float64 `json:"length" yaml:"length"`
	Time               float64 `json:"time" yaml:"time"`
	InitialTemp        float64 `json:"initial_temp" yaml:"initial_temp"`
	BoundaryTemp       float64 `json:"boundary_temp" yaml:"boundary_temp"`
	ThermalDiffusivity float64 `json:"thermal_diffusivity" yaml:"thermal_diffusivity"`
}

func (p SimulationParameters) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"radius", p.Radius},
		{"length", p.Length},
		{"thermal_diffusivity", p.ThermalDiffusivity},
	}
	for _, v := range positive {
		if !(v.value > 0) || math.IsInf(v.value, 1) {
			return &ParameterError{Name: v.name, Value: v.value, Reason: "must be positive and finite"}
		}
	}
	if !(p.Time >= 0) || math.IsInf(p.Time, 1) {
		return &ParameterError{Name: "time", Value: p.Time, Reason: "must be non-negative and finite"}
	}
	if math.IsNaN(p.InitialTemp) || math.IsInf(p.InitialTemp, 0) {
		return &ParameterError{Name: "initial_temp", Value: p.InitialTemp, Reason: "must be finite"}
	}
	if math.IsNaN(p.BoundaryTemp) || math.IsInf(p.BoundaryTemp, 0) {
		return &ParameterError{Name: "boundary_temp", Value: p.BoundaryTemp, Reason: "must be finite"}
	}
	return nil
}

// ValidateFor is Validate plus the checks that depend on the grid config:
// the step count floor(time/dt) must fit in an int.
func (p SimulationParameters) ValidateFor(cfg Config) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Time/cfg.TimeStep >= float64(math.MaxInt) {
		return &ParameterError{Name: "time", Value: p.Time, Reason: "too many time steps"}
	}
	return nil
}

// LoadParameters reads a parameter set from a YAML scenario file. Keys the
// file omits keep the [defaults] values of cfg.
func LoadParameters(path string, cfg Config) (SimulationParameters, error) {
	p := SimulationParameters{
		BoundaryTemp:       cfg.DefaultBoundaryTemp,
		ThermalDiffusivity: cfg.DefaultThermalDiffusivity,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading scenario file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parsing scenario YAML: %w", err)
	}
	return p, nil
}
