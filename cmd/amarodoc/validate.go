package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/buildwithgo/amarodoc/openapi"
)

var errInvalidDocument = errors.New("openapi document validation failed")

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an OpenAPI document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := filepath.Clean(args[0])
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("failed to open file: %w", err)
			}
			defer f.Close()

			findings, err := openapi.ValidateDocument(cmd.Context(), f)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(findings) == 0 {
				fmt.Fprintf(out, "%s is valid\n", file)
				return nil
			}
			fmt.Fprintf(out, "%s is invalid, %d errors:\n", file, len(findings))
			width := len(strconv.Itoa(len(findings)))
			for i, finding := range findings {
				fmt.Fprintf(out, "%*d. %s\n", width, i+1, finding.Error())
			}
			return errInvalidDocument
		},
	}
}
