package calculator

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// RGB intensities in [0, 1].
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// ColorOf maps temp within [minTemp, maxTemp] to a blue-white-red ramp:
// minTemp gives (0,1,1), the midpoint (1,1,1), maxTemp (1,1,0). Temperatures
// outside the range are clamped to it; a degenerate range maps to the midpoint.
func ColorOf(temp, minTemp, maxTemp float64) RGB {
	norm := 0.5
	if maxTemp > minTemp {
		norm = (temp - minTemp) / (maxTemp - minTemp)
	}
	norm = math.Max(0, math.Min(1, norm))
	return RGB{
		R: math.Min(1, 2*norm),
		G: math.Min(1, 2*(1-math.Abs(norm-0.5))),
		B: math.Min(1, 2*(1-norm)),
	}
}

// 整个温度场的颜色，供前端直接渲染
func ColorField(m mat.Matrix, minTemp, maxTemp float64) [][]RGB {
	nr, nz := m.Dims()
	colors := make([][]RGB, nr)
	for i := range colors {
		colors[i] = make([]RGB, nz)
		for j := range colors[i] {
			colors[i][j] = ColorOf(m.At(i, j), minTemp, maxTemp)
		}
	}
	return colors
}
