// =============================================================================
// CFDI Extractor - Extractor Module
// =============================================================================
//
// This module turns one CFDI XML document into a types.InvoiceRecord.
//
// EXTRACTION PIPELINE:
//   1. Load and parse the XML file
//   2. Detect the schema version (attribute, then root namespace)
//   3. Read the comprobante attributes (general data)
//   4. Read Emisor and Receptor
//   5. Read every Concepto and its taxes
//   6. Read the tax stamp (TimbreFiscalDigital)
//   7. Run the complement decoders
//   8. Log a summary of the document
//
// Missing or malformed attributes never fail the extraction: numbers default
// to zero and a few strings default to a placeholder. Only an unreadable file
// or malformed XML makes Process return an error.
//
// CONCURRENCY:
//   An Extractor holds no per-document state. One instance can process many
//   files from several goroutines.
//
// =============================================================================

package extractor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ginjaninja78/cfdi-extractor/internal/logger"
	"github.com/ginjaninja78/cfdi-extractor/internal/types"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// Placeholders used when an optional attribute is absent.
const (
	DefaultSeries        = "Sin Serie"
	DefaultFolio         = "Sin Folio"
	DefaultCurrency      = "MXN"
	DefaultPaymentMethod = "No especificado"
	DefaultPartyName     = "Sin Nombre"
)

// =============================================================================
// EXTRACTOR STRUCTURE
// =============================================================================

// Extractor reads CFDI documents.
type Extractor struct {
	invoice  Chain
	stamp    Chain
	registry *Registry
	now      func() time.Time
	log      zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock replaces time.Now as the source of ProcessedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) { e.now = now }
}

// WithRegistry replaces the default complement registry.
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) { e.registry = r }
}

// WithLogger sets the logger used for per-document traces.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Extractor) { e.log = log }
}

// New creates an Extractor with the default schema chains and complement registry.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		invoice:  InvoiceChain,
		stamp:    StampChain,
		registry: DefaultRegistry(),
		now:      time.Now,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Process extracts the record of the document at path.
//
// RETURNS:
//   - The extracted record.
//   - A *ParseError when the file is missing or is not well-formed XML. The
//     error is already logged; the caller should skip the document.
func (e *Extractor) Process(path string) (*types.InvoiceRecord, error) {
	log := e.log.With().Str("file", path).Logger()
	log.Debug().Msg("Processing CFDI")

	root, err := load(path)
	if err != nil {
		log.Error().Err(err).Msg("Skipping document")
		return nil, err
	}

	version := e.invoice.DetectVersion(root)
	log.Debug().Str("version", version).Msg("CFDI loaded")

	record := &types.InvoiceRecord{
		SourcePath:  path,
		ProcessedAt: e.now(),
		General:     e.extractGeneral(root, version),
		Issuer:      e.extractIssuer(root),
		Recipient:   e.extractRecipient(root),
		LineItems:   e.extractLineItems(root),
		TaxStamp:    e.extractTaxStamp(root),
	}
	record.Complements = e.registry.Decode(root, DecodeContext{InvoiceID: record.InvoiceID()})

	if record.TaxStamp.UUID != "" {
		if _, err := uuid.Parse(record.TaxStamp.UUID); err != nil {
			log.Warn().Str("uuid", record.TaxStamp.UUID).Msg("Tax stamp UUID is not a well-formed UUID")
		}
	}

	e.logSummary(log, record)
	return record, nil
}

// load reads and parses the XML file and returns its root element.
func load(path string) (*etree.Element, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ParseError{Path: path, Err: ErrFileNotFound}
		}
		return nil, &ParseError{Path: path, Err: err}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}

	root := doc.Root()
	if root == nil {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("%w: document has no root element", ErrParse)}
	}
	return root, nil
}

// =============================================================================
// FIELD EXTRACTION
// =============================================================================

// extractGeneral reads the attributes of the root Comprobante element.
func (e *Extractor) extractGeneral(root *etree.Element, version string) *types.General {
	return &types.General{
		Version:         version,
		Series:          attrOr(root, "Serie", DefaultSeries),
		Folio:           attrOr(root, "Folio", DefaultFolio),
		Date:            attr(root, "Fecha"),
		Subtotal:        decimalAttr(root, "SubTotal"),
		Total:           decimalAttr(root, "Total"),
		Currency:        attrOr(root, "Moneda", DefaultCurrency),
		TypeCode:        attr(root, "TipoDeComprobante"),
		PaymentMethod:   attrOr(root, "MetodoPago", DefaultPaymentMethod),
		PaymentForm:     attr(root, "FormaPago"),
		ExpeditionPlace: attr(root, "LugarExpedicion"),
	}
}

// extractIssuer reads Emisor. A missing element yields an empty Issuer.
func (e *Extractor) extractIssuer(root *etree.Element) types.Issuer {
	el := e.invoice.Child(root, "Emisor")
	if el == nil {
		return types.Issuer{}
	}
	return types.Issuer{
		TaxID:     attr(el, "Rfc"),
		Name:      attrOr(el, "Nombre", DefaultPartyName),
		TaxRegime: attr(el, "RegimenFiscal"),
	}
}

// extractRecipient reads Receptor. A missing element yields an empty Recipient.
func (e *Extractor) extractRecipient(root *etree.Element) types.Recipient {
	el := e.invoice.Child(root, "Receptor")
	if el == nil {
		return types.Recipient{}
	}
	return types.Recipient{
		TaxID:         attr(el, "Rfc"),
		Name:          attrOr(el, "Nombre", DefaultPartyName),
		UsageCode:     attr(el, "UsoCFDI"),
		TaxRegime:     attr(el, "RegimenFiscalReceptor"),
		FiscalAddress: attr(el, "DomicilioFiscalReceptor"),
	}
}

// extractLineItems reads every Conceptos/Concepto. The result is never nil.
func (e *Extractor) extractLineItems(root *etree.Element) []types.LineItem {
	nodes := e.invoice.Children(root, "Conceptos", "Concepto")
	items := make([]types.LineItem, 0, len(nodes))

	for _, node := range nodes {
		items = append(items, types.LineItem{
			ProductCode: attr(node, "ClaveProdServ"),
			Quantity:    decimalAttr(node, "Cantidad"),
			UnitCode:    attr(node, "ClaveUnidad"),
			Description: attr(node, "Descripcion"),
			UnitValue:   decimalAttr(node, "ValorUnitario"),
			Amount:      decimalAttr(node, "Importe"),
			Discount:    decimalAttr(node, "Descuento"),
			TaxObject:   attr(node, "ObjetoImp"),
			Taxes: types.ItemTaxes{
				Transfers:    e.extractTaxes(node, "Traslado"),
				Withholdings: e.extractTaxes(node, "Retencion"),
			},
		})
	}

	return items
}

// extractTaxes collects every tag node anywhere under item, in document order.
// The result is never nil.
func (e *Extractor) extractTaxes(item *etree.Element, tag string) []types.TaxEntry {
	nodes := e.invoice.Descendants(item, tag)
	entries := make([]types.TaxEntry, 0, len(nodes))

	for _, node := range nodes {
		entries = append(entries, types.TaxEntry{
			Base:      decimalAttr(node, "Base"),
			TaxKind:   attr(node, "Impuesto"),
			RateType:  attr(node, "TipoFactor"),
			RateOrFee: decimalAttr(node, "TasaOCuota"),
			Amount:    decimalAttr(node, "Importe"),
		})
	}

	return entries
}

// extractTaxStamp finds the TimbreFiscalDigital anywhere in the document.
func (e *Extractor) extractTaxStamp(root *etree.Element) types.TaxStamp {
	el, _, ok := e.stamp.FirstDescendant(root, "TimbreFiscalDigital")
	if !ok {
		return types.TaxStamp{}
	}
	return types.TaxStamp{
		UUID:           attr(el, "UUID"),
		StampedAt:      attr(el, "FechaTimbrado"),
		CertifierTaxID: attr(el, "RfcProvCertif"),
		SATCertificate: attr(el, "NoCertificadoSAT"),
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

// logSummary emits one human-readable line per processed document.
func (e *Extractor) logSummary(log zerolog.Logger, record *types.InvoiceRecord) {
	kinds := make([]string, 0, len(record.Complements))
	for kind := range record.Complements {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	g := record.General
	log.Info().
		Str("uuid", record.InvoiceID()).
		Str("tipo", g.TypeLabel()).
		Str("serie_folio", g.Series+"-"+g.Folio).
		Str("total", g.Total.StringFixed(2)+" "+g.Currency).
		Str("emisor", fmt.Sprintf("%s (%s)", record.Issuer.Name, record.Issuer.TaxID)).
		Str("receptor", fmt.Sprintf("%s (%s)", record.Recipient.Name, record.Recipient.TaxID)).
		Int("conceptos", len(record.LineItems)).
		Strs("complementos", kinds).
		Msg("CFDI processed")
}
