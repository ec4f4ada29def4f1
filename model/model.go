package model

import (
	"fmt"

	"cylheat/calculator"
	"cylheat/material"
)

// 前后端通信消息结构
type Msg struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// 前端设置的模拟参数。环境温度和导温系数可以省略，省略时使用配置中的默认值；
// 给出材料名时使用材料的导温系数，显式给出的导温系数优先
type Env struct {
	Radius             float64  `json:"radius"`
	Length             float64  `json:"length"`
	Time               float64  `json:"time"`
	InitialTemp        float64  `json:"initial_temp"`
	BoundaryTemp       *float64 `json:"boundary_temp,omitempty"`
	ThermalDiffusivity *float64 `json:"thermal_diffusivity,omitempty"`
	Material           string   `json:"material,omitempty"`
}

// Parameters resolves defaults and the material preset and validates the result.
func (e Env) Parameters(cfg calculator.Config) (calculator.SimulationParameters, error) {
	p := calculator.SimulationParameters{
		Radius:             e.Radius,
		Length:             e.Length,
		Time:               e.Time,
		InitialTemp:        e.InitialTemp,
		BoundaryTemp:       cfg.DefaultBoundaryTemp,
		ThermalDiffusivity: cfg.DefaultThermalDiffusivity,
	}
	if e.BoundaryTemp != nil {
		p.BoundaryTemp = *e.BoundaryTemp
	}
	if e.Material != "" {
		m, err := material.Lookup(e.Material)
		if err != nil {
			return p, fmt.Errorf("resolving env: %w", err)
		}
		p.ThermalDiffusivity = m.Diffusivity
	}
	if e.ThermalDiffusivity != nil {
		p.ThermalDiffusivity = *e.ThermalDiffusivity
	}
	return p, p.ValidateFor(cfg)
}

// 计算进度
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// 计算结果推送
type ResultContent struct {
	Field        [][]float64        `json:"field"`  // [径向][轴向]
	Colors       [][]calculator.RGB `json:"colors"` // 按 summary 的 min/max 着色
	Summary      calculator.Summary `json:"summary"`
	Steps        int                `json:"steps"`
	ClampedSteps int                `json:"clamped_steps"`
	ClampedCells int                `json:"clamped_cells"`
	Stability    float64            `json:"stability"`
	ElapsedMs    int64              `json:"elapsed_ms"`
}

func NewResultContent(res *calculator.Result) (ResultContent, error) {
	summary, err := calculator.Summarize(res.Field)
	if err != nil {
		return ResultContent{}, err
	}
	nr, _ := res.Field.Dims()
	field := make([][]float64, nr)
	for i := range field {
		field[i] = append([]float64(nil), res.Field.RawRowView(i)...)
	}
	return ResultContent{
		Field:        field,
		Colors:       calculator.ColorField(res.Field, summary.Min, summary.Max),
		Summary:      summary,
		Steps:        res.Steps,
		ClampedSteps: res.ClampedSteps,
		ClampedCells: res.ClampedCells,
		Stability:    res.Stability,
		ElapsedMs:    res.Elapsed.Milliseconds(),
	}, nil
}
