package calculator

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// 参考界面的默认参数
func referenceParams() SimulationParameters {
	return SimulationParameters{
		Radius:             1,
		Length:             2,
		Time:               1,
		InitialTemp:        80,
		BoundaryTemp:       20,
		ThermalDiffusivity: 1e-6,
	}
}

func newTestCalculator(t testing.TB, cfg Config) *Calculator {
	c, err := NewCalculator(cfg)
	require.NoError(t, err)
	return c
}

func assertWithinClamp(t *testing.T, f *mat.Dense, p SimulationParameters) {
	t.Helper()
	nr, nz := f.Dims()
	for i := 0; i < nr; i++ {
		for j := 0; j < nz; j++ {
			v := f.At(i, j)
			if v < p.BoundaryTemp || v > p.InitialTemp*1.5 {
				t.Fatalf("cell (%d,%d)=%v outside [%v,%v]", i, j, v, p.BoundaryTemp, p.InitialTemp*1.5)
			}
		}
	}
}

func TestSolveReferenceScenario(t *testing.T) {
	p := referenceParams()
	c := newTestCalculator(t, DefaultConfig())
	res, err := c.Calculate(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, 100, res.Steps)
	nr, nz := res.Field.Dims()
	require.Equal(t, 30, nr)
	require.Equal(t, 30, nz)
	for j := 0; j < nz; j++ {
		assert.Equal(t, 20.0, res.Field.At(0, j), "axis column %d", j)
	}
	assertWithinClamp(t, res.Field, p)

	// 与参考实现逐点对比
	golden := []struct {
		i, j int
		want float64
	}{
		{1, 1, 50.46078963616051},
		{1, 15, 87.9028069579451},
		{5, 15, 82.53976286090308},
		{9, 15, 76.74749583618424},
		{10, 15, 65.30094526121982},
		{15, 15, 58.00643153356203},
		{28, 15, 39.006776398536914},
		{29, 15, 33.30474347897584},
		{29, 0, 21.516222663059832},
		{15, 0, 30.368850240854485},
		{0, 0, 20},
	}
	for _, g := range golden {
		assert.InDelta(t, g.want, res.Field.At(g.i, g.j), 1e-9, "cell (%d,%d)", g.i, g.j)
	}

	s, err := Summarize(res.Field)
	require.NoError(t, err)
	assert.InDelta(t, 87.9028069579451, s.Max, 1e-9)
	assert.Equal(t, 20.0, s.Min)
	assert.InDelta(t, 48.38523789012076, s.Average, 1e-9)
	assert.InDelta(t, 58.00643153356203, s.CenterTemp, 1e-9)
	assert.InDelta(t, 33.30474347897584, s.SurfaceTemp, 1e-9)
	assert.GreaterOrEqual(t, s.Max, s.Min)
}

func TestSolveUniformField(t *testing.T) {
	p := SimulationParameters{Radius: 1, Length: 2, Time: 0, InitialTemp: 20, BoundaryTemp: 20, ThermalDiffusivity: 1e-6}
	f, err := Solve(p)
	require.NoError(t, err)

	for _, v := range f.RawMatrix().Data {
		require.Equal(t, 20.0, v)
	}
	s, err := Summarize(f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Max: 20, Min: 20, Average: 20, CenterTemp: 20, SurfaceTemp: 20, Gradient: 0}, s)
}

func TestSolveZeroTime(t *testing.T) {
	p := referenceParams()
	p.Time = 0
	f, err := Solve(p)
	require.NoError(t, err)

	dr, dz := p.Radius/29, p.Length/29
	half := p.Length / 2
	maxDistance := math.Sqrt(p.Radius*p.Radius + half*half)
	for i := 0; i < 30; i++ {
		for j := 0; j < 30; j++ {
			r, z := float64(i)*dr, float64(j)*dz
			distance := math.Sqrt(r*r + (z-half)*(z-half))
			want := p.InitialTemp - (p.InitialTemp-p.BoundaryTemp)*(distance/maxDistance)
			assert.Equal(t, want, f.At(i, j), "cell (%d,%d)", i, j)
		}
	}
	assert.Equal(t, 20.0, f.At(29, 29))
}

func TestSolveZeroTimeIsInitialField(t *testing.T) {
	p := referenceParams()
	p.Time = 0.009 // 不足一个时间步长
	f, err := Solve(p)
	require.NoError(t, err)

	dr, dz := p.Radius/29, p.Length/29
	maxDistance := math.Sqrt(p.Radius*p.Radius + p.Length*p.Length/4)
	for i := 0; i < 30; i++ {
		for j := 0; j < 30; j++ {
			r, z := float64(i)*dr, float64(j)*dz-p.Length/2
			want := p.InitialTemp - (p.InitialTemp-p.BoundaryTemp)*math.Sqrt(r*r+z*z)/maxDistance
			assert.InDelta(t, want, f.At(i, j), 1e-12, "cell (%d,%d)", i, j)
		}
	}
	// 轴线端点和外表面角点
	assert.InDelta(t, 37.573593128807154, f.At(0, 0), 1e-12)
	assert.InDelta(t, 20.0, f.At(29, 29), 1e-12)
	assert.InDelta(t, 78.53702045271748, f.At(0, 14), 1e-12)
}

func TestSolveAxisPinnedEveryStep(t *testing.T) {
	c := newTestCalculator(t, DefaultConfig())
	p := referenceParams()
	for steps := 1; steps <= 5; steps++ {
		p.Time = float64(steps)*0.01 + 0.005
		res, err := c.Calculate(context.Background(), p)
		require.NoError(t, err)
		require.Equal(t, steps, res.Steps)
		for j := 0; j < 30; j++ {
			assert.Equal(t, p.BoundaryTemp, res.Field.At(0, j))
		}
	}
}

func TestSolveClampInvariant(t *testing.T) {
	cases := []SimulationParameters{
		referenceParams(),
		{Radius: 0.5, Length: 1, Time: 3, InitialTemp: 100, BoundaryTemp: 20, ThermalDiffusivity: 1e-6},
		{Radius: 5, Length: 10, Time: 100, InitialTemp: 100, BoundaryTemp: 20, ThermalDiffusivity: 1e-6},
		{Radius: 0.01, Length: 0.02, Time: 2, InitialTemp: 60, BoundaryTemp: 20, ThermalDiffusivity: 1.11e-4},
		{Radius: 1, Length: 2, Time: 1, InitialTemp: 80, BoundaryTemp: 20, ThermalDiffusivity: 1},
	}
	c := newTestCalculator(t, DefaultConfig())
	for _, p := range cases {
		res, err := c.Calculate(context.Background(), p)
		require.NoError(t, err)
		r, z := res.Field.Dims()
		assert.Equal(t, 30, r)
		assert.Equal(t, 30, z)
		assertWithinClamp(t, res.Field, p)
	}
}

func TestSolveUnstableIsReported(t *testing.T) {
	p := referenceParams()
	p.ThermalDiffusivity = 1
	c := newTestCalculator(t, DefaultConfig())
	res, err := c.Calculate(context.Background(), p)
	require.NoError(t, err)
	assert.Greater(t, res.Stability, 0.5)
	assert.Greater(t, res.ClampedSteps, 0)

	res, err = c.Calculate(context.Background(), referenceParams())
	require.NoError(t, err)
	assert.Less(t, res.Stability, 0.5)
}

func TestSolveDeterministic(t *testing.T) {
	p := referenceParams()
	p.Time = 2.5
	a, err := Solve(p)
	require.NoError(t, err)
	b, err := Solve(p)
	require.NoError(t, err)
	assert.True(t, mat.Equal(a, b))
	// 每次求解返回新的温度场
	assert.NotSame(t, a, b)
}

func TestParallelMatchesSerial(t *testing.T) {
	p := referenceParams()
	p.Time = 3
	serial := newTestCalculator(t, DefaultConfig())

	cfg := DefaultConfig()
	cfg.Workers = 4
	parallel := newTestCalculator(t, cfg)

	want, err := serial.Calculate(context.Background(), p)
	require.NoError(t, err)
	got, err := parallel.Calculate(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, mat.Equal(want.Field, got.Field))
	assert.Equal(t, want.ClampedSteps, got.ClampedSteps)
	assert.Equal(t, want.ClampedCells, got.ClampedCells)
}

func TestCustomGrid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Nr, cfg.Nz = 3, 7
	c := newTestCalculator(t, cfg)
	res, err := c.Calculate(context.Background(), referenceParams())
	require.NoError(t, err)
	r, z := res.Field.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, 7, z)
	assertWithinClamp(t, res.Field, referenceParams())
}

func TestCalculateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := newTestCalculator(t, DefaultConfig())

	_, err := c.Calculate(ctx, referenceParams())
	assert.True(t, errors.Is(err, context.Canceled))

	// 没有时间步时不检查 ctx
	p := referenceParams()
	p.Time = 0
	res, err := c.Calculate(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Steps)
}

func TestCalculateWithProgress(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProgressEvery = 10
	c := newTestCalculator(t, cfg)

	var done []int
	res, err := c.CalculateWithProgress(context.Background(), referenceParams(), func(d, total int) {
		assert.Equal(t, 100, total)
		done = append(done, d)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, done)

	plain, err := c.Calculate(context.Background(), referenceParams())
	require.NoError(t, err)
	assert.True(t, mat.Equal(plain.Field, res.Field))
}

func TestInvalidParameters(t *testing.T) {
	cases := []struct {
		name   string
		modify func(p *SimulationParameters)
	}{
		{"radius", func(p *SimulationParameters) { p.Radius = 0 }},
		{"radius", func(p *SimulationParameters) { p.Radius = -1 }},
		{"length", func(p *SimulationParameters) { p.Length = 0 }},
		{"length", func(p *SimulationParameters) { p.Length = math.NaN() }},
		{"thermal_diffusivity", func(p *SimulationParameters) { p.ThermalDiffusivity = 0 }},
		{"thermal_diffusivity", func(p *SimulationParameters) { p.ThermalDiffusivity = math.Inf(1) }},
		{"time", func(p *SimulationParameters) { p.Time = -0.5 }},
		{"time", func(p *SimulationParameters) { p.Time = math.Inf(1) }},
		{"time", func(p *SimulationParameters) { p.Time = 1e30 }},
		{"initial_temp", func(p *SimulationParameters) { p.InitialTemp = math.NaN() }},
		{"boundary_temp", func(p *SimulationParameters) { p.BoundaryTemp = math.Inf(-1) }},
	}
	for _, tc := range cases {
		p := referenceParams()
		tc.modify(&p)
		_, err := Solve(p)
		require.Error(t, err, tc.name)
		assert.True(t, errors.Is(err, ErrInvalidParameter), tc.name)

		var pe *ParameterError
		require.True(t, errors.As(err, &pe), tc.name)
		assert.Equal(t, tc.name, pe.Name)
	}
}

func TestStabilityNumber(t *testing.T) {
	got := StabilityNumber(referenceParams(), DefaultConfig())
	dr, dz := 1.0/29, 2.0/29
	assert.InDelta(t, 1e-6*0.01*(1/(dr*dr)+1/(dz*dz)), got, 1e-18)
}

func TestNumTimeSteps(t *testing.T) {
	cfg := DefaultConfig()
	for time, want := range map[float64]int{0: 0, 0.009: 0, 0.01: 1, 0.5: 50, 1: 100, 100: 10000} {
		p := referenceParams()
		p.Time = time
		assert.Equal(t, want, NumTimeSteps(p, cfg), "time %v", time)
	}
}

func BenchmarkSolve(b *testing.B) {
	p := referenceParams()
	p.Time = 10
	c := newTestCalculator(b, DefaultConfig())
	for i := 0; i < b.N; i++ {
		if _, err := c.Calculate(context.Background(), p); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSolveParallel(b *testing.B) {
	p := referenceParams()
	p.Time = 10
	cfg := DefaultConfig()
	cfg.Workers = 4
	c := newTestCalculator(b, cfg)
	for i := 0; i < b.N; i++ {
		if _, err := c.Calculate(context.Background(), p); err != nil {
			b.Fatal(err)
		}
	}
}
