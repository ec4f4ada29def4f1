package calculator

import (
	"context"
	"math"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// 显式格式的稳定性界限
const stabilityLimit = 0.5

// Calculator runs the explicit finite-difference scheme for an axisymmetric
// cylinder on an Nr x Nz grid (rows = radial, columns = axial). It holds no
// per-solve state and may be shared between goroutines.
type Calculator struct {
	cfg Config
	e   executor
}

// Result of one solve. Field is freshly allocated and owned by the caller.
type Result struct {
	Field        *mat.Dense
	Steps        int
	ClampedSteps int // 发生截断的步数
	ClampedCells int // 最后一步被截断的节点数
	Stability    float64
	Elapsed      time.Duration
}

func NewCalculator(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg, e: newExecutor(cfg.Workers)}, nil
}

func (c *Calculator) Config() Config {
	return c.cfg
}

// Solve runs the reference configuration and returns the final grid.
func Solve(p SimulationParameters) (*mat.Dense, error) {
	c, err := NewCalculator(DefaultConfig())
	if err != nil {
		return nil, err
	}
	res, err := c.Calculate(context.Background(), p)
	if err != nil {
		return nil, err
	}
	return res.Field, nil
}

// NumTimeSteps is floor(time / dt). p must pass ValidateFor(cfg).
func NumTimeSteps(p SimulationParameters, cfg Config) int {
	return int(math.Floor(p.Time / cfg.TimeStep))
}

// StabilityNumber is alpha*dt*(1/dr² + 1/dz²). The explicit scheme is only
// conditionally stable; values above 0.5 may diverge and end up pinned by the
// clamp. dt is never adjusted.
func StabilityNumber(p SimulationParameters, cfg Config) float64 {
	dr := p.Radius / float64(cfg.Nr-1)
	dz := p.Length / float64(cfg.Nz-1)
	return p.ThermalDiffusivity * cfg.TimeStep * (1/(dr*dr) + 1/(dz*dz))
}

// Calculate marches the field to p.Time. ctx is checked between time steps.
func (c *Calculator) Calculate(ctx context.Context, p SimulationParameters) (*Result, error) {
	return c.calculate(ctx, p, nil)
}

// CalculateWithProgress is Calculate with progress(done, total) called every
// Config.ProgressEvery steps.
func (c *Calculator) CalculateWithProgress(ctx context.Context, p SimulationParameters, progress func(done, total int)) (*Result, error) {
	return c.calculate(ctx, p, progress)
}

func (c *Calculator) calculate(ctx context.Context, p SimulationParameters, progress func(done, total int)) (*Result, error) {
	if err := p.ValidateFor(c.cfg); err != nil {
		return nil, err
	}
	start := time.Now()
	nr, nz := c.cfg.Nr, c.cfg.Nz
	dr := p.Radius / float64(nr-1)
	dz := p.Length / float64(nz-1)

	res := &Result{
		Steps:     NumTimeSteps(p, c.cfg),
		Stability: StabilityNumber(p, c.cfg),
	}
	if res.Stability > stabilityLimit {
		log.WithFields(log.Fields{
			"stability": res.Stability,
			"limit":     stabilityLimit,
			"dt":        c.cfg.TimeStep,
			"dr":        dr,
			"dz":        dz,
		}).Warn("explicit scheme beyond its stability bound, dt is not adjusted")
	}

	// 两个温度场交替使用，每一步只读 field、只写 next
	thermalField := mat.NewDense(nr, nz, nil)
	thermalField1 := mat.NewDense(nr, nz, nil)
	initField(thermalField, p, dr, dz)
	field, next := thermalField, thermalField1

	var sweep time.Duration
	for step := 0; step < res.Steps; step++ {
		if err := ctx.Err(); err != nil {
			log.WithFields(log.Fields{
				"step":  step,
				"steps": res.Steps,
			}).Info("calculation canceled")
			return nil, err
		}
		clamped, d := c.step(field, next, p, dr, dz)
		sweep += d
		if clamped > 0 {
			res.ClampedSteps++
		}
		res.ClampedCells = clamped
		field, next = next, field

		if progress != nil && c.cfg.ProgressEvery > 0 && (step+1)%c.cfg.ProgressEvery == 0 {
			progress(step+1, res.Steps)
		}
	}
	res.Field = field
	res.Elapsed = time.Since(start)

	if res.ClampedCells > 0 {
		log.WithFields(log.Fields{
			"clampedSteps": res.ClampedSteps,
			"steps":        res.Steps,
			"cells":        res.ClampedCells,
		}).Warn("temperature still clamped at bounds after the last step")
	}
	log.WithFields(log.Fields{
		"steps":   res.Steps,
		"sweep":   sweep,
		"elapsed": res.Elapsed,
	}).Debug("temperature field calculated")
	return res, nil
}

// 初始温度场: 以轴线中点为中心向外线性降温
func initField(f *mat.Dense, p SimulationParameters, dr, dz float64) {
	nr, _ := f.Dims()
	half := p.Length / 2
	maxDistance := math.Sqrt(p.Radius*p.Radius + half*half)
	for i := 0; i < nr; i++ {
		r := float64(i) * dr
		row := f.RawRowView(i)
		for j := range row {
			z := float64(j) * dz
			distance := math.Sqrt(r*r + (z-half)*(z-half))
			row[j] = p.InitialTemp - (p.InitialTemp-p.BoundaryTemp)*(distance/maxDistance)
		}
	}
}

// 计算一个时间步长，返回被截断的内部节点数
func (c *Calculator) step(field, next *mat.Dense, p SimulationParameters, dr, dz float64) (int, time.Duration) {
	nr, nz := field.Dims()
	bottom, top := p.BoundaryTemp, p.InitialTemp*c.cfg.MaxTempFactor
	core := p.Radius / c.cfg.SourceCoreDivisor
	dt, alpha := c.cfg.TimeStep, p.ThermalDiffusivity

	// 内部节点
	clamped, d := c.e.dispatchTask(1, nr-1, func(low, high int) int {
		count := 0
		for i := low; i < high; i++ {
			r := float64(i) * dr
			source := 0.0
			if r < core {
				source = c.cfg.HeatSource
			}
			prev, cur, after := field.RawRowView(i-1), field.RawRowView(i), field.RawRowView(i+1)
			out := next.RawRowView(i)
			for j := 1; j < nz-1; j++ {
				d2Tdr2 := (after[j] - 2*cur[j] + prev[j]) / (dr * dr)
				dTdr := (after[j] - prev[j]) / (2 * dr)
				d2Tdz2 := (cur[j+1] - 2*cur[j] + cur[j-1]) / (dz * dz)
				t := cur[j] + dt*(alpha*(d2Tdr2+(1/r)*dTdr+d2Tdz2)+source)
				if t < bottom || t > top {
					count++
				}
				out[j] = math.Max(bottom, math.Min(top, t))
			}
		}
		return count
	})

	// 边界: 轴线取环境温度，外表面和两端面保留内部过余温度的 SurfaceCarry
	carry := c.cfg.SurfaceCarry
	axis, surface, inner := next.RawRowView(0), next.RawRowView(nr-1), next.RawRowView(nr-2)
	for j := 0; j < nz; j++ {
		axis[j] = bottom
	}
	for j := 1; j < nz-1; j++ {
		surface[j] = bottom + (inner[j]-bottom)*carry
	}
	// 端面在径向边界之后计算，角点取更新后的外表面值
	for i := 0; i < nr; i++ {
		row := next.RawRowView(i)
		row[0] = bottom + (row[1]-bottom)*carry
		row[nz-1] = bottom + (row[nz-2]-bottom)*carry
	}
	return clamped, d
}
