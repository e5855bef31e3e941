package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildwithgo/amarodoc/internal/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "amarodoc",
		Short: "Serve and document the amarodoc petstore",
		Long: `amarodoc serves an in-memory petstore whose OpenAPI document is generated
from the Go declarations of its handlers.

Parameter requiredness follows Go: a parameter is optional when it has a
default or its type can be nil, and required otherwise.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path of the YAML configuration file")

	cmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newValidateCmd(),
		newTokenCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := cfg.Logging.Logger()
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}
