package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/ini.v1"

	"cylheat/calculator"
	"cylheat/model"
	"cylheat/render"
)

type solveOptions struct {
	scenario    string
	env         model.Env
	boundary    float64
	diffusivity float64
	png         string
	profile     bool
	json        bool
}

// 读取配置文件，读取失败时使用默认配置
func loadIni(path string) *ini.File {
	file, err := ini.Load(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("config not loaded, using defaults")
		file = ini.Empty()
	}
	setupLog(file)
	return file
}

func setupLog(file *ini.File) {
	sec := file.Section("log")
	level, err := log.ParseLevel(sec.Key("Level").MustString("info"))
	if err != nil {
		log.WithError(err).Warn("unknown log level")
		level = log.InfoLevel
	}
	log.SetLevel(level)
	if strings.EqualFold(sec.Key("Format").MustString("text"), "json") {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func newCalculator(file *ini.File) (*calculator.Calculator, error) {
	cfg, err := calculator.LoadConfig(file)
	if err != nil {
		return nil, fmt.Errorf("loading calculator config: %w", err)
	}
	log.WithFields(log.Fields{
		"nr":       cfg.Nr,
		"nz":       cfg.Nz,
		"timeStep": cfg.TimeStep,
		"workers":  cfg.Workers,
	}).Debug("calculator config")
	return calculator.NewCalculator(cfg)
}

func runSolve(cmd *cobra.Command, configPath string, opts solveOptions) error {
	file := loadIni(configPath)
	c, err := newCalculator(file)
	if err != nil {
		return err
	}

	p, err := resolveParameters(cmd, c.Config(), opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	res, err := c.Calculate(ctx, p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.json {
		content, err := model.NewResultContent(res)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(content); err != nil {
			return err
		}
	} else {
		s, err := calculator.Summarize(res.Field)
		if err != nil {
			return err
		}
		printSummary(out, p, res, s)
	}

	if opts.profile {
		fmt.Fprintln(out, render.RadialProfile(res.Field))
	}
	if opts.png != "" {
		if err := render.SaveHeatMap(res.Field, p, opts.png); err != nil {
			return err
		}
		fmt.Fprintf(out, "heat map written to %s\n", opts.png)
	}
	return nil
}

// resolveParameters 合并场景文件和命令行参数，命令行显式给出的值优先
func resolveParameters(cmd *cobra.Command, cfg calculator.Config, opts solveOptions) (calculator.SimulationParameters, error) {
	env := opts.env
	flags := cmd.Flags()
	if flags.Changed("boundary") {
		env.BoundaryTemp = &opts.boundary
	}
	if flags.Changed("diffusivity") {
		env.ThermalDiffusivity = &opts.diffusivity
	}
	if opts.scenario == "" {
		return env.Parameters(cfg)
	}

	p, err := calculator.LoadParameters(opts.scenario, cfg)
	if err != nil {
		return p, err
	}
	if flags.Changed("radius") {
		p.Radius = env.Radius
	}
	if flags.Changed("length") {
		p.Length = env.Length
	}
	if flags.Changed("time") {
		p.Time = env.Time
	}
	if flags.Changed("initial") {
		p.InitialTemp = env.InitialTemp
	}
	if env.BoundaryTemp != nil {
		p.BoundaryTemp = *env.BoundaryTemp
	}
	if env.Material != "" || env.ThermalDiffusivity != nil {
		// 借用 Env 的材料解析
		resolved, err := model.Env{
			Radius:             p.Radius,
			Length:             p.Length,
			Time:               p.Time,
			InitialTemp:        p.InitialTemp,
			BoundaryTemp:       &p.BoundaryTemp,
			ThermalDiffusivity: env.ThermalDiffusivity,
			Material:           env.Material,
		}.Parameters(cfg)
		if err != nil {
			return resolved, err
		}
		p = resolved
	}
	return p, p.ValidateFor(cfg)
}

func printSummary(w io.Writer, p calculator.SimulationParameters, res *calculator.Result, s calculator.Summary) {
	fmt.Fprintf(w, "radius %g m, length %g m, time %g s, initial %g °C, ambient %g °C, diffusivity %g m²/s\n",
		p.Radius, p.Length, p.Time, p.InitialTemp, p.BoundaryTemp, p.ThermalDiffusivity)
	fmt.Fprintf(w, "steps %d, clamped steps %d, stability %.3g\n", res.Steps, res.ClampedSteps, res.Stability)
	fmt.Fprintf(w, "max      %8.3f °C\n", s.Max)
	fmt.Fprintf(w, "min      %8.3f °C\n", s.Min)
	fmt.Fprintf(w, "average  %8.3f °C\n", s.Average)
	fmt.Fprintf(w, "center   %8.3f °C\n", s.CenterTemp)
	fmt.Fprintf(w, "surface  %8.3f °C\n", s.SurfaceTemp)
	fmt.Fprintf(w, "gradient %8.3f °C\n", s.Gradient)
}
