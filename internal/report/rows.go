// =============================================================================
// CFDI Extractor - Report Rows
// =============================================================================
//
// This module flattens InvoiceRecord values into the three row-sets of the
// report workbook. Every row carries the invoice ID (tax-stamp UUID or
// SIN_UUID) so the sheets can be joined back together:
//
//   CFDI_General              one row per invoice       key: UUID
//   Conceptos                 one row per line item     key: UUID_CFDI
//   Documentos Relacionados   one row per related doc   key: UUID_CFDI, UUID_Pago
//
// Amounts are written as numbers, everything else as text.
//
// =============================================================================

package report

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/cfdi-extractor/internal/types"
)

// =============================================================================
// SHEETS AND COLUMNS
// =============================================================================

// Sheet names.
const (
	SheetGeneral          = "CFDI_General"
	SheetLineItems        = "Conceptos"
	SheetRelatedDocuments = "Documentos Relacionados"
)

// GeneralColumns is the header of the CFDI_General sheet.
var GeneralColumns = []string{
	"UUID", "Archivo", "Fecha", "Tipo Comprobante", "Serie", "Folio",
	"Subtotal", "Total", "Moneda",
	"Emisor RFC", "Emisor Nombre", "Receptor RFC", "Receptor Nombre", "Uso CFDI",
}

// LineItemColumns is the header of the Conceptos sheet.
var LineItemColumns = []string{
	"UUID_CFDI", "ClaveProdServ", "Cantidad", "ClaveUnidad", "Descripcion",
	"ValorUnitario", "Importe", "Descuento",
}

// RelatedDocumentColumns is the header of the Documentos Relacionados sheet.
var RelatedDocumentColumns = []string{
	"UUID_CFDI", "UUID_Pago", "IdDocumento", "Serie", "Folio", "MonedaDR",
	"ImpSaldoAnt", "ImpPagado", "ImpSaldoInsoluto",
}

// =============================================================================
// TABLES
// =============================================================================

// Tables holds the flattened rows of every sheet, headers excluded.
type Tables struct {
	General          [][]interface{}
	LineItems        [][]interface{}
	RelatedDocuments [][]interface{}

	// Skipped counts records that could not produce a general row (nil
	// record or nil General). None of their rows are emitted.
	Skipped int
}

// BuildTables flattens records in order.
func BuildTables(records []*types.InvoiceRecord) Tables {
	var t Tables

	for _, record := range records {
		if record == nil || record.General == nil {
			t.Skipped++
			continue
		}

		id := record.InvoiceID()
		t.General = append(t.General, generalRow(id, record))

		for _, item := range record.LineItems {
			t.LineItems = append(t.LineItems, lineItemRow(id, item))
		}

		if payments, ok := record.Payments(); ok {
			for _, payment := range payments.Payments {
				for _, doc := range payment.RelatedDocuments {
					t.RelatedDocuments = append(t.RelatedDocuments, relatedDocumentRow(id, payment.ID, doc))
				}
			}
		}
	}

	return t
}

func generalRow(id string, r *types.InvoiceRecord) []interface{} {
	g := r.General
	return []interface{}{
		id,
		r.SourcePath,
		g.Date,
		g.TypeLabel(),
		g.Series,
		g.Folio,
		number(g.Subtotal),
		number(g.Total),
		g.Currency,
		r.Issuer.TaxID,
		r.Issuer.Name,
		r.Recipient.TaxID,
		r.Recipient.Name,
		r.Recipient.UsageCode,
	}
}

func lineItemRow(id string, item types.LineItem) []interface{} {
	return []interface{}{
		id,
		item.ProductCode,
		number(item.Quantity),
		item.UnitCode,
		item.Description,
		number(item.UnitValue),
		number(item.Amount),
		number(item.Discount),
	}
}

func relatedDocumentRow(invoiceID, paymentID string, doc types.RelatedDocument) []interface{} {
	return []interface{}{
		invoiceID,
		paymentID,
		doc.ID,
		doc.Series,
		doc.Folio,
		doc.Currency,
		number(doc.PreviousBalance),
		number(doc.AmountPaid),
		number(doc.OutstandingBalance),
	}
}

// number converts an amount to a spreadsheet number.
func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
