// cmd/repodoc/serve.go
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/server"
	"github.com/julianshen/repodoc/internal/source"
)

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the documentation API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			sources, err := source.NewRegistryFromConfig(cfg)
			if err != nil {
				return err
			}
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			srv, err := server.New(server.Options{
				Sources:       sources,
				Visits:        st,
				NewGenerator:  generatorFactory(cfg),
				Pipeline:      docgen.ConfigFrom(cfg),
				TreeCacheSize: cfg.Server.TreeCacheSize,
				TreeCacheTTL:  time.Duration(cfg.Server.TreeCacheTTL) * time.Second,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :3000)")
	return cmd
}
