package render

import (
	"gonum.org/v1/gonum/mat"

	"github.com/guptarohit/asciigraph"
)

// RadialProfile plots T(r) at the axial center, axis on the left.
func RadialProfile(field mat.Matrix) string {
	nr, nz := field.Dims()
	if nr == 0 || nz == 0 {
		return ""
	}
	profile := mat.Col(nil, nz/2, field)
	return asciigraph.Plot(profile,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("T(r) at mid-height, axis -> surface"))
}
