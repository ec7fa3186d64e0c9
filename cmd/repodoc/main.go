// cmd/repodoc/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/julianshen/repodoc/internal/config"
	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/generator"
	"github.com/julianshen/repodoc/internal/server"
	"github.com/julianshen/repodoc/internal/source"
	"github.com/julianshen/repodoc/internal/store"

	// Register generators via init() side effects.
	_ "github.com/julianshen/repodoc/internal/generator/gemini"
	_ "github.com/julianshen/repodoc/internal/generator/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
)

func versionString() string {
	return fmt.Sprintf("repodoc %s (commit: %s, built: %s)", version, commit, date)
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "repodoc",
		Short:         "Generate documentation for a hosted repository",
		Long:          "repodoc selects the key files of a GitHub or GitLab repository and asks a generative model to document it.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(visitsCmd())
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		dir, err := config.DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "config.toml")
	}
	return config.Load(path)
}

// isInteractive reports whether both stdin and stderr are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

func generatorFactory(cfg *config.Config) server.GeneratorFactory {
	return func(ctx context.Context, apiKey string) (docgen.LLMCompleter, string, error) {
		g, err := generator.New(ctx, cfg, apiKey)
		if err != nil {
			return nil, "", fmt.Errorf("creating generator: %w", err)
		}
		return g, g.Name(), nil
	}
}

// openStore opens the visit counter. An empty sqlite DSN means a file in
// the config directory.
func openStore(cfg *config.Config) (*store.Store, error) {
	dsn := cfg.Store.DSN
	if dsn == "" {
		if cfg.Store.Driver != "sqlite" {
			return nil, fmt.Errorf("store dsn is required for driver %s", cfg.Store.Driver)
		}
		dir, err := config.DefaultDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}
		dsn = filepath.Join(dir, "visits.db")
	}
	s, err := store.Open(cfg.Store.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening visit store: %w", err)
	}
	return s, nil
}

// app bundles what the repository commands share.
type app struct {
	cfg          *config.Config
	sources      *source.Registry
	newGenerator server.GeneratorFactory
	// interactive enables prompts, spinners and the progress bar.
	interactive bool
}

func newApp(cfg *config.Config, noInput bool) (*app, error) {
	sources, err := source.NewRegistryFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:          cfg,
		sources:      sources,
		newGenerator: generatorFactory(cfg),
		interactive:  !noInput && isInteractive(),
	}, nil
}
