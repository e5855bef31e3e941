package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/buildwithgo/amarodoc/internal/server"
)

func newGenerateCmd(root *rootOptions) *cobra.Command {
	var format, comments, output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the OpenAPI document of the petstore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q, want json or yaml", format)
			}
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			var opts []server.Option
			if comments != "" {
				opts = append(opts, server.WithCommentsDir(comments))
			}
			s, err := server.New(cfg, zap.NewNop(), opts...)
			if err != nil {
				return err
			}
			defer s.Close()
			gen := s.Generator()
			if !gen.Enabled() {
				return fmt.Errorf("openapi documentation is disabled by the configuration")
			}

			data, err := gen.JSON()
			if format == "yaml" {
				data, err = gen.YAML()
			}
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if _, err := w.Write(data); err != nil {
				return err
			}
			if format == "json" {
				_, err = io.WriteString(w, "\n")
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVar(&comments, "comments", "", "directory whose Go doc comments describe the schemas")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, standard output when empty")
	return cmd
}
