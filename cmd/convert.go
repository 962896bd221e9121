package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cohortschema/convert"
	"cohortschema/loader"
)

func newConvertCmd() *cobra.Command {
	var target string
	var output string

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a cohort definition between wire conventions",
		Long: `Convert renames every mapped key of a cohort definition document to the
target convention. Unknown fields pass through unchanged, so the conversion
is lossless and round-trip safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			logger, err := buildLogger(settings.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			doc, err := loader.New(logger).Load(args[0])
			if err != nil {
				return err
			}

			var converted map[string]interface{}
			switch target {
			case "circe":
				converted = convert.ToCirce(doc)
			case "webapi":
				converted = convert.ToWebAPI(doc)
			default:
				return fmt.Errorf("invalid target %q, must be circe or webapi", target)
			}

			out, err := json.MarshalIndent(converted, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode converted document: %w", err)
			}

			if output != "" {
				if err := os.WriteFile(output, append(out, '\n'), 0o644); err != nil {
					return fmt.Errorf("failed to write output file: %w", err)
				}
				successColor.Fprintf(cmd.OutOrStdout(), "✓ wrote %s\n", output)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "circe", "target convention: circe or webapi")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to file instead of stdout")

	return cmd
}
