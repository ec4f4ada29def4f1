package calculator

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type Summary struct {
	Max         float64 `json:"max"`
	Min         float64 `json:"min"`
	Average     float64 `json:"average"`
	CenterTemp  float64 `json:"center_temp"`
	SurfaceTemp float64 `json:"surface_temp"`
	Gradient    float64 `json:"gradient"`
}

// Summarize scans the grid once. Center is (nr/2, nz/2), surface is the outer
// radial row at the axial center.
func Summarize(m mat.Matrix) (Summary, error) {
	if m == nil {
		return Summary{}, ErrEmptyGrid
	}
	if d, ok := m.(*mat.Dense); ok && d == nil {
		return Summary{}, ErrEmptyGrid
	}
	nr, nz := m.Dims()
	if nr == 0 || nz == 0 {
		return Summary{}, ErrEmptyGrid
	}

	max, min, sum := math.Inf(-1), math.Inf(1), 0.0
	for i := 0; i < nr; i++ {
		for j := 0; j < nz; j++ {
			t := m.At(i, j)
			max = math.Max(max, t)
			min = math.Min(min, t)
			sum += t
		}
	}
	// 舍入误差不能让平均值越过极值
	average := math.Max(min, math.Min(max, sum/float64(nr*nz)))

	return Summary{
		Max:         max,
		Min:         min,
		Average:     average,
		CenterTemp:  m.At(nr/2, nz/2),
		SurfaceTemp: m.At(nr-1, nz/2),
		Gradient:    max - min,
	}, nil
}
