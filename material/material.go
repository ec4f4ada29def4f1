package material

import (
	"fmt"
	"sort"
	"strings"
)

// Material is a homogeneous solid with a constant thermal diffusivity (m²/s).
type Material struct {
	Name        string  `json:"name"`
	Diffusivity float64 `json:"diffusivity"`
}

const Default = "default"

// 常温下的导温系数, m²/s
var materials = map[string]Material{
	Default:           {Name: Default, Diffusivity: 1e-6},
	"steel":           {Name: "steel", Diffusivity: 1.172e-5},
	"stainless_steel": {Name: "stainless_steel", Diffusivity: 4.2e-6},
	"iron":            {Name: "iron", Diffusivity: 2.3e-5},
	"copper":          {Name: "copper", Diffusivity: 1.11e-4},
	"aluminium":       {Name: "aluminium", Diffusivity: 9.7e-5},
	"brass":           {Name: "brass", Diffusivity: 3.4e-5},
	"glass":           {Name: "glass", Diffusivity: 3.4e-7},
	"brick":           {Name: "brick", Diffusivity: 5.2e-7},
	"wood":            {Name: "wood", Diffusivity: 8.2e-8},
	"concrete":        {Name: "concrete", Diffusivity: 7.5e-7},
	"water":           {Name: "water", Diffusivity: 1.43e-7},
}

// 别名
var aliases = map[string]string{
	"aluminum":  "aluminium",
	"stainless": "stainless_steel",
	"cu":        "copper",
	"al":        "aluminium",
	"fe":        "iron",
}

// Lookup finds a preset by name, case-insensitively.
func Lookup(name string) (Material, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if a, ok := aliases[key]; ok {
		key = a
	}
	m, ok := materials[key]
	if !ok {
		return Material{}, fmt.Errorf("unknown material %q", name)
	}
	return m, nil
}

// Names returns the preset names in order.
func Names() []string {
	names := make([]string, 0, len(materials))
	for k := range materials {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
