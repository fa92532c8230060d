// =============================================================================
// CFDI Extractor - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command of the
// tool. It orchestrates the whole pipeline for one input directory.
//
// COMMAND USAGE:
//   cfdi process [flags]
//
// FLAGS:
//   --input-dir   : Directory with the .xml documents (overrides input_dir)
//   --output-dir  : Directory for the workbook (overrides output_dir)
//   --output-file : Workbook file name (overrides output_file)
//   --dry-run     : Extract and summarize without writing anything
//
// PROCESSING PIPELINE:
//   1. Apply flag overrides to the configuration
//   2. Check the input directory and create the output directory
//   3. Discover the .xml files in the input directory
//   4. Extract every document (max_concurrency at a time)
//   5. Export the successful records to the workbook
//   6. Print the summary and write the optional logs
//
// A document that cannot be read is logged and skipped; the rest of the batch
// continues.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/cfdi-extractor/internal/config"
	"github.com/ginjaninja78/cfdi-extractor/internal/extractor"
	"github.com/ginjaninja78/cfdi-extractor/internal/logger"
	"github.com/ginjaninja78/cfdi-extractor/internal/report"
	"github.com/ginjaninja78/cfdi-extractor/internal/types"
	"github.com/ginjaninja78/cfdi-extractor/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	inputDir   string
	outputDir  string
	outputFile string
	dryRun     bool
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Extract every CFDI in the input directory into an Excel report",
	Long: `The process command scans the input directory for .xml files, extracts each
CFDI document and writes a workbook with three sheets:

  CFDI_General             one row per document
  Conceptos                one row per line item
  Documentos Relacionados  one row per document settled by a payment receipt

Documents that cannot be parsed are reported and skipped. When no document
could be extracted, no workbook is written.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&inputDir, "input-dir", "", "Directory containing the CFDI .xml files")
	processCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory where the workbook is written")
	processCmd.Flags().StringVar(&outputFile, "output-file", "", "Workbook file name (supports {timestamp}, {date}, {uuid})")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract and summarize without writing output files")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// fileResult is the outcome of extracting one input file.
type fileResult struct {
	FilePath string
	Record   *types.InvoiceRecord
	Error    error
}

// runProcess is the main function that orchestrates the pipeline.
func runProcess(cmd *cobra.Command) error {
	startTime := time.Now()
	out := cmd.OutOrStdout()
	runID := uuid.New().String()
	log := logger.WithComponent("process").With().Str("run_id", runID).Logger()

	// =========================================================================
	// STEP 1: APPLY FLAG OVERRIDES
	// =========================================================================

	cfg := *mainConfig
	applyProcessFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Fprintln(out, "=== CFDI Extractor ===")

	// =========================================================================
	// STEP 2: CHECK DIRECTORIES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir)
	if err := fm.CheckInputDir(); err != nil {
		log.Error().Err(err).Msg("Input directory is not usable")
		return err
	}
	if !dryRun {
		if err := fm.EnsureOutputDir(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := fm.DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		log.Warn().Str("dir", cfg.InputDir).Msg("No XML files found in the input directory")
		fmt.Fprintf(out, "No XML files found in %s\n", cfg.InputDir)
		return nil
	}
	log.Info().Int("files", len(inputFiles)).Str("dir", cfg.InputDir).Msg("Found CFDI files")

	// =========================================================================
	// STEP 4: EXTRACT
	// =========================================================================

	ext := extractor.New(extractor.WithLogger(logger.WithComponent("extractor")))
	results := extractAll(cmd.Context(), ext, inputFiles, cfg.MaxConcurrency)

	var records []*types.InvoiceRecord
	var errorEntries []utils.ErrorLogEntry
	summary := utils.ProcessingSummary{
		RunID:      runID,
		StartTime:  startTime,
		TotalFiles: len(inputFiles),
	}

	for _, result := range results {
		name := filepath.Base(result.FilePath)
		if result.Error != nil {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			errorEntries = append(errorEntries, utils.ErrorLogEntry{
				Timestamp:    time.Now(),
				FileName:     result.FilePath,
				ErrorType:    errorType(result.Error),
				ErrorMessage: result.Error.Error(),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, result.Error)
			continue
		}
		summary.SuccessfulFiles++
		records = append(records, result.Record)
		fmt.Fprintf(out, "  ✓ %s (%s)\n", name, result.Record.InvoiceID())
	}

	// =========================================================================
	// STEP 5: EXPORT
	// =========================================================================

	var exportErr error
	if dryRun {
		fmt.Fprintln(out, "Dry run: no workbook written")
	} else {
		name := utils.GenerateOutputFileName(cfg.OutputFile, map[string]string{"run": runID})
		exported := report.New(logger.WithComponent("report")).Export(records, fm.OutputPath(name))
		summary.TotalLineItems = exported.Stats.LineItems
		summary.TotalRelatedDocuments = exported.Stats.RelatedDocuments
		switch {
		case exported.Error != nil:
			exportErr = exported.Error
		case exported.Skipped:
			fmt.Fprintln(out, "No CFDI data to export")
		default:
			summary.OutputFile = exported.OutputFile
		}
	}

	// =========================================================================
	// STEP 6: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()
	printSummary(out, summary)
	writeLogs(log, cfg, summary, errorEntries)

	return exportErr
}

// applyProcessFlags copies the flags that were set onto cfg.
func applyProcessFlags(cfg *config.MainConfig) {
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if outputFile != "" {
		cfg.OutputFile = outputFile
	}
}

// =============================================================================
// EXTRACTION WORKERS
// =============================================================================

// extractAll extracts every file with at most workers extractions in flight.
// Results are indexed like files, whatever order the workers finish in.
func extractAll(ctx context.Context, ext *extractor.Extractor, files []string, workers int) []fileResult {
	if ctx == nil {
		ctx = context.Background()
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]fileResult, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			results[i] = fileResult{FilePath: file, Error: err}
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			record, err := ext.Process(path)
			results[i] = fileResult{FilePath: path, Record: record, Error: err}
		}(i, file)
	}

	wg.Wait()
	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// errorType classifies an extraction error for the error log.
func errorType(err error) string {
	switch {
	case errors.Is(err, extractor.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, extractor.ErrParse):
		return "parse"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "io"
	}
}

func printSummary(out io.Writer, s utils.ProcessingSummary) {
	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total files:     %d\n", s.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", s.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", s.FailedFiles)
	if s.OutputFile != "" {
		fmt.Fprintf(out, "Output file:     %s\n", s.OutputFile)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", s.EndTime.Sub(s.StartTime))
}

// writeLogs writes the optional error log and run summary. Failures are
// logged but do not fail the run.
func writeLogs(log zerolog.Logger, cfg config.MainConfig, summary utils.ProcessingSummary, entries []utils.ErrorLogEntry) {
	if dryRun {
		return
	}
	if cfg.WriteErrorLog {
		path, err := utils.WriteErrorLog(entries, cfg.OutputDir)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write error log")
		} else if path != "" {
			log.Info().Str("path", path).Msg("Errors have been logged to the output directory")
		}
	}
	if cfg.WriteSummaryLog {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write summary log")
		} else {
			log.Info().Str("path", path).Msg("Summary written")
		}
	}
}
