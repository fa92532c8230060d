// =============================================================================
// CFDI Extractor - Inspect Command
// =============================================================================
//
// COMMAND USAGE:
//   cfdi inspect <file.xml>
//
// Extracts a single document and prints the full record as YAML, including
// the per-item taxes and the decoded complements that the workbook does not
// show. Useful to check how a problematic file is read.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/cfdi-extractor/internal/extractor"
	"github.com/ginjaninja78/cfdi-extractor/internal/logger"
)

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file.xml>",
	Short: "Print the record extracted from one CFDI as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext := extractor.New(extractor.WithLogger(logger.WithComponent("extractor")))

		record, err := ext.Process(args[0])
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
