package main

import (
	"github.com/spf13/cobra"

	"github.com/buildwithgo/amarodoc/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr, comments string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the petstore HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			if addr != "" {
				cfg.Server.Addr = addr
			}
			var opts []server.Option
			if comments != "" {
				opts = append(opts, server.WithCommentsDir(comments))
			}
			s, err := server.New(cfg, logger, opts...)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides the configuration")
	cmd.Flags().StringVar(&comments, "comments", "", "directory whose Go doc comments describe the schemas")
	return cmd
}
