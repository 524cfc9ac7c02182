package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"agent-dispatch/internal/agent"
	"agent-dispatch/internal/agent/factory"
	"agent-dispatch/internal/config"
	"agent-dispatch/internal/history"
	"agent-dispatch/internal/router"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

// Execute runs the CLI with the provided arguments.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "agent-dispatch",
		Short:         "Dispatch prompts and documents to recruitment agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts.logLevel)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newServeCmd(opts),
		newChatCmd(opts),
		newAgentsCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// runtime bundles the components shared by serve and chat.
type runtime struct {
	cfg    config.Config
	router *router.Router
	store  *history.Store
	pruner *history.Pruner
}

func newRuntime(cfg config.Config, withPruner bool) (*runtime, error) {
	registry := agent.NewRegistry()
	if err := factory.RegisterConfiguredAgents(cfg, registry); err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg}
	var opts []router.Option

	if cfg.History.Enabled() {
		store, err := history.Open(cfg.History)
		if err != nil {
			return nil, err
		}
		rt.store = store
		opts = append(opts, router.WithRecorder(store))

		if withPruner && cfg.History.Retention > 0 {
			pruner, err := history.NewPruner(store, cfg.History.PruneSchedule, cfg.History.Retention)
			if err != nil {
				_ = store.Close()
				return nil, err
			}
			pruner.Start()
			rt.pruner = pruner
		}
	}

	rt.router = router.New(registry, opts...)
	return rt, nil
}

func (r *runtime) Close() {
	if r.pruner != nil {
		r.pruner.Stop()
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			slog.Warn("failed to close history store", "err", err)
		}
	}
}
