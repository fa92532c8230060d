// =============================================================================
// CFDI Extractor - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (cfdi)
//   ├── processCmd (cfdi process)
//   ├── inspectCmd (cfdi inspect <file>)
//   └── versionCmd (cfdi version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads config.yaml (or the file given with --config)
//   2. Applies --verbose
//   3. Sets up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/cfdi-extractor/internal/config"
	"github.com/ginjaninja78/cfdi-extractor/internal/logger"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig is loaded once by PersistentPreRunE and shared by subcommands.
var mainConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cfdi",
	Short: "CFDI Extractor - Turn CFDI XML invoices into an Excel report",
	Long: `CFDI Extractor reads Mexican electronic invoices (CFDI 3.3 and 4.0) from a
directory and writes a multi-sheet Excel workbook with their general data,
their line items, and the documents settled by payment receipts.

Example Usage:
  cfdi process                         # Process every .xml in ./input_cfdi
  cfdi process --input-dir ./facturas  # Use another input directory
  cfdi inspect factura.xml             # Print what is extracted from one file`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initConfig loads the configuration and sets up logging. The default
// config.yaml may be absent; a file named explicitly with --config must exist.
func initConfig(cmd *cobra.Command) error {
	cfg, err := config.LoadMainConfig(cfgFile, cmd.Flags().Changed("config"))
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.LogLevel
	logConfig.Format = cfg.LogFormat
	logConfig.Output = cfg.LogOutput
	if err := logger.Setup(logConfig); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	log.Debug().Str("config", cfgFile).Msg("Configuration loaded")
	mainConfig = cfg
	return nil
}
