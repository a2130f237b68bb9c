package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/escapetime/pkg/server"
)

// serveCommand creates the "serve" command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		presets string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve charts over HTTP and websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			available, err := c.loadPresets(cfg, presets)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer runner.Close()

			logger.Info("cache ready", "backend", cfg.Cache.Backend)
			srv := server.New(runner, server.Config{
				Addr:           cfg.Server.Addr,
				MaxPoints:      cfg.Server.MaxPoints,
				MaxThreshold:   cfg.Server.MaxThreshold,
				MaxCells:       cfg.Server.MaxCells,
				RequestTimeout: cfg.Server.RequestTimeout.Duration,
				Presets:        available,
			}, logger)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&presets, "presets", "", "HCL file with extra region presets")
	return cmd
}
