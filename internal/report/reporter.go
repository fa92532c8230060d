// =============================================================================
// CFDI Extractor - Excel Reporter
// =============================================================================
//
// This module writes the extracted records to a multi-sheet XLSX workbook.
//
// EXPORT PIPELINE:
//   1. Flatten records into general / line-item / related-document rows
//   2. Stop without writing anything if there are no general rows
//   3. Build the workbook (bold header, autofilter on every sheet with rows)
//   4. Write it to a temporary file next to the target
//   5. Rename the temporary file into place
//
// A failed export never leaves a partial workbook behind: the temporary file
// is removed and the error is returned in Result.Error.
//
// =============================================================================

package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/cfdi-extractor/internal/types"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one export.
type Result struct {
	// OutputFile is the path of the written workbook. Empty if nothing was written.
	OutputFile string

	// Written is true when the workbook is in place at OutputFile.
	Written bool

	// Skipped is true when there was nothing to export. It is not an error.
	Skipped bool

	// Error is the write failure, if any.
	Error error

	Stats ExportStats
}

// ExportStats counts the rows written to each sheet.
type ExportStats struct {
	Invoices         int
	LineItems        int
	RelatedDocuments int

	// SkippedRecords is the number of records without general data.
	SkippedRecords int

	ExportTime time.Duration
}

// =============================================================================
// REPORTER
// =============================================================================

// Reporter exports records to Excel.
type Reporter struct {
	log zerolog.Logger
}

// New creates a Reporter that logs through log.
func New(log zerolog.Logger) *Reporter {
	return &Reporter{log: log}
}

// Export writes records to outputPath. The directory of outputPath must exist.
func (r *Reporter) Export(records []*types.InvoiceRecord, outputPath string) Result {
	start := time.Now()

	tables := BuildTables(records)
	result := Result{
		Stats: ExportStats{
			Invoices:         len(tables.General),
			LineItems:        len(tables.LineItems),
			RelatedDocuments: len(tables.RelatedDocuments),
			SkippedRecords:   tables.Skipped,
		},
	}

	if tables.Skipped > 0 {
		r.log.Warn().Int("records", tables.Skipped).Msg("Records without general data were not exported")
	}

	if len(tables.General) == 0 {
		r.log.Warn().Msg("No general data to export")
		result.Skipped = true
		return result
	}

	r.log.Info().
		Int("cfdi", result.Stats.Invoices).
		Int("conceptos", result.Stats.LineItems).
		Int("documentos_relacionados", result.Stats.RelatedDocuments).
		Msg("Exporting to Excel")

	if err := writeWorkbook(tables, outputPath); err != nil {
		result.Error = fmt.Errorf("report: export %s: %w", outputPath, err)
		r.log.Error().Err(result.Error).Msg("Error writing Excel file")
		return result
	}

	result.OutputFile = outputPath
	result.Written = true
	result.Stats.ExportTime = time.Since(start)
	r.log.Info().Str("path", outputPath).Msg("Excel file saved")
	return result
}

// =============================================================================
// WORKBOOK
// =============================================================================

// writeWorkbook builds the workbook and moves it into place atomically.
func writeWorkbook(tables Tables, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with a single sheet; it becomes the general sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetGeneral); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeSheet(f, SheetGeneral, GeneralColumns, tables.General, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, SheetLineItems, LineItemColumns, tables.LineItems, headerStyle); err != nil {
		return err
	}
	if len(tables.RelatedDocuments) > 0 {
		if err := writeSheet(f, SheetRelatedDocuments, RelatedDocumentColumns, tables.RelatedDocuments, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	return saveAtomically(f, outputPath)
}

// writeSheet writes the header and rows of one sheet, creating it if needed.
func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]interface{}, headerStyle int) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet, err)
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}

	if len(rows) == 0 {
		return nil
	}
	lastCell, err := excelize.CoordinatesToCellName(len(columns), len(rows)+1)
	if err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:"+lastCell, nil); err != nil {
		return fmt.Errorf("failed to set autofilter on %s: %w", sheet, err)
	}

	return nil
}

// saveAtomically writes f to a temporary file in the target directory and
// renames it to outputPath. On any failure the temporary file is removed.
func saveAtomically(f *excelize.File, outputPath string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".cfdi-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	// CreateTemp opens the file owner-only; the report is meant to be shared.
	if err = tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set workbook permissions: %w", err)
	}
	if _, err = f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = os.Rename(tmpPath, outputPath); err != nil {
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}
	return nil
}
