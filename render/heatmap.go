package render

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"cylheat/calculator"
)

// fieldGrid 把温度场适配为 plotter.GridXYZ: X 为轴向 z, Y 为径向 r
type fieldGrid struct {
	field  mat.Matrix
	dr, dz float64
}

func (g fieldGrid) Dims() (c, r int) {
	nr, nz := g.field.Dims()
	return nz, nr
}

func (g fieldGrid) Z(c, r int) float64 { return g.field.At(r, c) }
func (g fieldGrid) X(c int) float64    { return float64(c) * g.dz }
func (g fieldGrid) Y(r int) float64    { return float64(r) * g.dr }

// SaveHeatMap writes the r-z section of the field. The format follows the file
// extension (png, svg, pdf, ...).
func SaveHeatMap(field *mat.Dense, p calculator.SimulationParameters, path string) error {
	s, err := calculator.Summarize(field)
	if err != nil {
		return err
	}
	nr, nz := field.Dims()
	g := fieldGrid{
		field: field,
		dr:    p.Radius / float64(nr-1),
		dz:    p.Length / float64(nz-1),
	}

	h := plotter.NewHeatMap(g, palette.Heat(32, 1))
	h.Min, h.Max = s.Min, s.Max
	if h.Max <= h.Min {
		h.Max = h.Min + 1
	}

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("t = %gs, %.2f..%.2f °C", p.Time, s.Min, s.Max)
	pl.X.Label.Text = "z (m)"
	pl.Y.Label.Text = "r (m)"
	pl.Add(h)

	if err := pl.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving heat map: %w", err)
	}
	return nil
}
