// Package cli provides the cobra command tree for docqa.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// errNotConfigured is returned when no Factory has been installed.
var errNotConfigured = errors.New("docqa is not configured: no service factory installed")

// Options carries global flags and per-command setting overrides into the
// Factory. Overrides are keyed by setting key (for example "retrieval.top_k")
// and take precedence over environment and config file values.
type Options struct {
	ConfigDir string
	Overrides map[string]string
}

// Runtime holds the services a command needs.
type Runtime struct {
	Settings  domain.Settings
	Catalogue domain.Catalogue
	Ingestion driving.IngestionService
	Query     driving.QueryService
	Stats     driving.StatsRecorder

	// Warnings lists non-fatal setup problems, such as a missing LLM.
	Warnings []string

	// Closer releases the runtime's resources. May be nil.
	Closer func() error
}

// Close releases the runtime's resources.
func (r *Runtime) Close() error {
	if r == nil || r.Closer == nil {
		return nil
	}
	return r.Closer()
}

// Factory builds services from resolved configuration. The composition root
// in cmd/docqa installs one with SetFactory.
type Factory interface {
	// Settings resolves configuration without creating any service.
	Settings(opts Options) (driven.ConfigStore, domain.Settings, error)

	// Runtime builds the full service graph.
	Runtime(ctx context.Context, opts Options) (*Runtime, error)
}

// factory is the installed service factory.
var factory Factory

// Global flag values.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Grounded question answering over a PDF corpus",
	Long: `docqa indexes a directory of PDF documents and answers questions about
them with citations to the passages it used.

Get started:
  docqa ingest --source ./documents
  docqa ask "What were the key financial highlights in 2024?"
  docqa chat`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug and progress logs")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Configuration directory (default ~/.docqa)")
}

// SetFactory installs the service factory used by every command.
func SetFactory(f Factory) {
	factory = f
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// options builds Options from the global flags and overrides.
// Empty override values are dropped.
func options(overrides map[string]string) Options {
	opts := Options{ConfigDir: configDir}
	for k, v := range overrides {
		if v == "" {
			continue
		}
		if opts.Overrides == nil {
			opts.Overrides = make(map[string]string)
		}
		opts.Overrides[k] = v
	}
	return opts
}

// openRuntime builds the runtime and logs its warnings.
func openRuntime(cmd *cobra.Command, overrides map[string]string) (*Runtime, error) {
	if factory == nil {
		return nil, errNotConfigured
	}
	rt, err := factory.Runtime(commandContext(cmd), options(overrides))
	if err != nil {
		return nil, err
	}
	for _, w := range rt.Warnings {
		logger.Warn("%s", w)
	}
	return rt, nil
}

// closeRuntime closes rt, logging any failure.
func closeRuntime(rt *Runtime) {
	if err := rt.Close(); err != nil {
		logger.Warn("closing services: %v", err)
	}
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
