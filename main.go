package main

import (
	"net/http"
	"os"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"cylheat/server"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "cylheat",
		Short: "Transient heat conduction in a solid cylinder",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "conf/config.ini", "ini config file")

	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(solveCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the websocket server for the 3D front end",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			file := loadIni(*configPath)
			c, err := newCalculator(file)
			if err != nil {
				return err
			}
			cfg := server.LoadConfig(file)
			if addr != "" {
				cfg.Addr = addr
			}
			upgrader := websocket.Upgrader{
				ReadBufferSize:  cfg.ReadBufferSize,
				WriteBufferSize: cfg.WriteBufferSize,
			}
			upgrader.CheckOrigin = func(r *http.Request) bool {
				return true
			}
			return server.NewServer(cfg.Addr, upgrader, c).Serve()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address, overrides [server] Addr")
	return cmd
}

func solveCmd(configPath *string) *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve one parameter set and print the summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolve(cmd, *configPath, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.scenario, "scenario", "s", "", "YAML scenario file, flags override its values")
	f.Float64Var(&opts.env.Radius, "radius", 1, "cylinder radius (m)")
	f.Float64Var(&opts.env.Length, "length", 2, "cylinder length (m)")
	f.Float64Var(&opts.env.Time, "time", 0, "elapsed time (s)")
	f.Float64Var(&opts.env.InitialTemp, "initial", 20, "initial temperature (°C)")
	f.Float64Var(&opts.boundary, "boundary", 0, "ambient temperature (°C), default from config")
	f.Float64Var(&opts.diffusivity, "diffusivity", 0, "thermal diffusivity (m²/s), default from config")
	f.StringVarP(&opts.env.Material, "material", "m", "", "material preset instead of --diffusivity")
	f.StringVar(&opts.png, "png", "", "write an r-z heat map to this file")
	f.BoolVar(&opts.profile, "profile", false, "print the radial profile at mid-height")
	f.BoolVar(&opts.json, "json", false, "print the full result as JSON")
	return cmd
}
