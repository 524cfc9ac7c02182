package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"agent-dispatch/internal/config"
	"agent-dispatch/internal/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var overridePort int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("port") {
				if overridePort <= 0 || overridePort > 65535 {
					return fmt.Errorf("port override %d must be a valid TCP port", overridePort)
				}
				cfg.Server.Port = overridePort
			}

			rt, err := newRuntime(cfg, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			var hist server.HistoryLister
			if rt.store != nil {
				hist = rt.store
			}

			srv, err := server.New(cfg, rt.router, hist)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&overridePort, "port", 0, "override server port from configuration")
	return cmd
}
