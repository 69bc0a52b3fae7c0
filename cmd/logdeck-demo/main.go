package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logdeck/logdeck/config"
	"github.com/logdeck/logdeck/internal/demo"
	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/registry"
)

var (
	configPath   string
	defaultLevel string
	rate         int

	rootCmd = &cobra.Command{
		Use:          "logdeck-demo",
		Short:        "logdeck-demo shows the capture pipeline driven by synthetic log producers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "override config path (optional)")
	rootCmd.Flags().StringVarP(&defaultLevel, "level", "l", "", "default capture level (optional)")
	rootCmd.Flags().IntVarP(&rate, "rate", "r", 0, "events per second across all producers")
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if defaultLevel != "" {
		lv, err := level.Parse(defaultLevel)
		if err != nil {
			return fmt.Errorf("parse level: %w", err)
		}
		cfg.DefaultLevel = lv
	}

	engine, dump, err := cfg.Apply()
	if err != nil {
		return err
	}
	if err := engine.Registry().ApplyEnvFilter(""); err != nil {
		return fmt.Errorf("parse %s: %w", registry.EnvVar, err)
	}
	engine.Start()
	defer func() {
		engine.Close(context.Background())
		if dump != nil {
			dump.Close()
		}
	}()

	demoRate := rate
	if demoRate <= 0 {
		demoRate = cfg.DemoRate
	}
	return demo.Run(ctx, demo.Options{Engine: engine, Rate: demoRate})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
