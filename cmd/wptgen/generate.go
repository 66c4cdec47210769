package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wptgen/wptgen/internal/config"
	"github.com/wptgen/wptgen/internal/generate"
	"github.com/wptgen/wptgen/internal/logging"
	"github.com/wptgen/wptgen/internal/observability"
	"github.com/wptgen/wptgen/internal/spec"
)

func newGenerateCmd() *cobra.Command {
	var configPath string
	var specOverride string
	var outOverride string
	var templatesOverride string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Expand a spec and render test files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applyOverrides(cfg, specOverride, outOverride, templatesOverride)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runGenerate(cmd.Context(), cmd.ErrOrStderr(), cfg, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (defaults apply when omitted)")
	cmd.Flags().StringVar(&specOverride, "spec", "", "Override spec path")
	cmd.Flags().StringVar(&outOverride, "out", "", "Override output directory")
	cmd.Flags().StringVar(&templatesOverride, "templates", "", "Override template directory")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Expand and log without writing files")

	return cmd
}

func runGenerate(ctx context.Context, logOut io.Writer, cfg *config.Config, dryRun bool) error {
	logger := logging.NewLogger(logOut, cfg.Logging.Level, cfg.Logging.Format)

	s, err := spec.Load(cfg.ResolvePath(cfg.Spec))
	if err != nil {
		return err
	}
	if err := s.Check(); err != nil {
		return err
	}

	gen := generate.New(generate.Options{
		OutputDir: cfg.ResolvePath(cfg.Output.Dir),
		Extension: cfg.Output.Extension,
		Template:  cfg.Templates.TestCase,
		WriteJSON: cfg.Output.JSON,
		DryRun:    dryRun,
	}, generate.NewRenderer(cfg.ResolvePath(cfg.Templates.Dir)))
	gen.SetLogger(logger)

	if cfg.Logging.GenerationLog != "" {
		genLog, closer, err := logging.OpenGenerationLog(cfg.ResolvePath(cfg.Logging.GenerationLog))
		if err != nil {
			return err
		}
		defer func() { _ = closer() }()
		gen.SetGenerationLogger(genLog)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(nil)
		gen.SetMetrics(metrics)
	}

	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := gen.Run(signalCtx, s)

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.ResolvePath(cfg.Metrics.Textfile)); err != nil {
			logger.Warn("write metrics textfile", "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	logger.Info("generation finished",
		"run_id", summary.RunID,
		"test_cases", summary.TestCases,
		"overridden", summary.Overridden,
		"written", len(summary.Written),
		"dry_run", dryRun,
	)
	return nil
}

func applyOverrides(cfg *config.Config, specOverride, outOverride, templatesOverride string) {
	if specOverride != "" {
		cfg.Spec = specOverride
	}
	if outOverride != "" {
		cfg.Output.Dir = outOverride
	}
	if templatesOverride != "" {
		cfg.Templates.Dir = templatesOverride
	}
}
