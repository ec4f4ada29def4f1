package calculator

import (
	"gopkg.in/ini.v1"
)

// 网格与差分格式配置，默认值与参考设计一致
type Config struct {
	Nr int // 径向节点数
	Nz int // 轴向节点数

	TimeStep          float64 // 时间步长 s
	HeatSource        float64 // 内热源 °C/s
	SourceCoreDivisor float64 // 热源区域 r < radius / SourceCoreDivisor
	SurfaceCarry      float64 // 表面保留的内部过余温度比例
	MaxTempFactor     float64 // 温度上限 = InitialTemp * MaxTempFactor

	Workers       int // 并行行块数, 1 为串行
	ProgressEvery int // 进度回调间隔步数, 0 为关闭

	// 请求缺省时使用的环境温度和导温系数
	DefaultBoundaryTemp       float64
	DefaultThermalDiffusivity float64
}

func DefaultConfig() Config {
	return Config{
		Nr:                        30,
		Nz:                        30,
		TimeStep:                  0.01,
		HeatSource:                10,
		SourceCoreDivisor:         3,
		SurfaceCarry:              0.7,
		MaxTempFactor:             1.5,
		Workers:                   1,
		ProgressEvery:             100,
		DefaultBoundaryTemp:       20,
		DefaultThermalDiffusivity: 1e-6,
	}
}

// LoadConfig reads the [calculator] and [defaults] sections. Missing keys keep
// their defaults.
func LoadConfig(file *ini.File) (Config, error) {
	d := DefaultConfig()
	sec := file.Section("calculator")
	defaults := file.Section("defaults")
	cfg := Config{
		Nr:                        sec.Key("Nr").MustInt(d.Nr),
		Nz:                        sec.Key("Nz").MustInt(d.Nz),
		TimeStep:                  sec.Key("TimeStep").MustFloat64(d.TimeStep),
		HeatSource:                sec.Key("HeatSource").MustFloat64(d.HeatSource),
		SourceCoreDivisor:         sec.Key("SourceCoreDivisor").MustFloat64(d.SourceCoreDivisor),
		SurfaceCarry:              sec.Key("SurfaceCarry").MustFloat64(d.SurfaceCarry),
		MaxTempFactor:             sec.Key("MaxTempFactor").MustFloat64(d.MaxTempFactor),
		Workers:                   sec.Key("Workers").MustInt(d.Workers),
		ProgressEvery:             sec.Key("ProgressEvery").MustInt(d.ProgressEvery),
		DefaultBoundaryTemp:       defaults.Key("BoundaryTemp").MustFloat64(d.DefaultBoundaryTemp),
		DefaultThermalDiffusivity: defaults.Key("ThermalDiffusivity").MustFloat64(d.DefaultThermalDiffusivity),
	}
	if err := cfg.Validate(); err != nil {
		return d, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Nr < 3 {
		return &ParameterError{Name: "Nr", Value: float64(c.Nr), Reason: "must be at least 3"}
	}
	if c.Nz < 3 {
		return &ParameterError{Name: "Nz", Value: float64(c.Nz), Reason: "must be at least 3"}
	}
	if !(c.TimeStep > 0) {
		return &ParameterError{Name: "TimeStep", Value: c.TimeStep, Reason: "must be positive"}
	}
	if !(c.SourceCoreDivisor > 0) {
		return &ParameterError{Name: "SourceCoreDivisor", Value: c.SourceCoreDivisor, Reason: "must be positive"}
	}
	if c.Workers < 1 {
		return &ParameterError{Name: "Workers", Value: float64(c.Workers), Reason: "must be at least 1"}
	}
	if c.ProgressEvery < 0 {
		return &ParameterError{Name: "ProgressEvery", Value: float64(c.ProgressEvery), Reason: "must not be negative"}
	}
	return nil
}
