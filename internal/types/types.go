// =============================================================================
// CFDI Extractor - Shared Types
// =============================================================================
//
// This package contains the record model shared by the extractor, the
// reporter and the CLI. Keeping it in its own package avoids import cycles:
//   - extractor  builds InvoiceRecord values
//   - report     flattens them into sheet rows
//   - cmd        collects them and prints them (inspect)
//
// =============================================================================

package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINELS
// =============================================================================

const (
	// NoUUID replaces the invoice identifier when the document has no tax stamp.
	// It is used consistently in every derived table.
	NoUUID = "SIN_UUID"

	// VersionUnknown is reported when neither the version attribute nor the
	// root namespace identify the schema generation.
	VersionUnknown = "Desconocida"
)

// =============================================================================
// INVOICE RECORD
// =============================================================================

// InvoiceRecord is everything extracted from a single CFDI document.
type InvoiceRecord struct {
	// SourcePath is the path of the XML file the record was read from.
	SourcePath string `yaml:"archivo"`

	// ProcessedAt is when the extraction ran. It is the only field that
	// differs between two extractions of the same file.
	ProcessedAt time.Time `yaml:"fecha_procesamiento"`

	// General holds the comprobante attributes. A nil General means the
	// record cannot be exported as a row.
	General *General `yaml:"datos_generales"`

	Issuer    Issuer     `yaml:"emisor"`
	Recipient Recipient  `yaml:"receptor"`
	LineItems []LineItem `yaml:"conceptos"`
	TaxStamp  TaxStamp   `yaml:"timbre"`

	// Complements maps a complement kind (e.g. "pagos") to its decoded payload.
	Complements map[string]Complement `yaml:"complementos"`
}

// InvoiceID returns the tax-stamp UUID, or NoUUID when the document was never stamped.
func (r *InvoiceRecord) InvoiceID() string {
	if r.TaxStamp.UUID != "" {
		return r.TaxStamp.UUID
	}
	return NoUUID
}

// Payments returns the payments complement, if the document carries one.
func (r *InvoiceRecord) Payments() (*PaymentsComplement, bool) {
	c, ok := r.Complements[ComplementPayments]
	if !ok {
		return nil, false
	}
	p, ok := c.(*PaymentsComplement)
	return p, ok
}

// General holds the attributes of the root Comprobante element.
type General struct {
	Version         string          `yaml:"version"`
	Series          string          `yaml:"serie"`
	Folio           string          `yaml:"folio"`
	Date            string          `yaml:"fecha"`
	Subtotal        decimal.Decimal `yaml:"subtotal"`
	Total           decimal.Decimal `yaml:"total"`
	Currency        string          `yaml:"moneda"`
	TypeCode        string          `yaml:"tipo_comprobante"`
	PaymentMethod   string          `yaml:"metodo_pago"`
	PaymentForm     string          `yaml:"forma_pago,omitempty"`
	ExpeditionPlace string          `yaml:"lugar_expedicion,omitempty"`
}

// voucherTypes maps TipoDeComprobante codes to their display labels.
var voucherTypes = map[string]string{
	"I": "Ingreso (Factura)",
	"E": "Egreso (Nota de Crédito)",
	"P": "Pago",
	"N": "Nómina",
	"T": "Traslado",
}

// TypeLabel translates TypeCode into the label used in reports.
func (g *General) TypeLabel() string {
	if label, ok := voucherTypes[g.TypeCode]; ok {
		return label
	}
	return fmt.Sprintf("Desconocido (%s)", g.TypeCode)
}

// Issuer is the Emisor element.
type Issuer struct {
	TaxID     string `yaml:"rfc"`
	Name      string `yaml:"nombre"`
	TaxRegime string `yaml:"regimen_fiscal,omitempty"`
}

// Recipient is the Receptor element.
type Recipient struct {
	TaxID         string `yaml:"rfc"`
	Name          string `yaml:"nombre"`
	UsageCode     string `yaml:"uso_cfdi"`
	TaxRegime     string `yaml:"regimen_fiscal,omitempty"`
	FiscalAddress string `yaml:"domicilio_fiscal,omitempty"`
}

// TaxStamp is the TimbreFiscalDigital block.
type TaxStamp struct {
	UUID           string `yaml:"uuid"`
	StampedAt      string `yaml:"fecha_timbrado"`
	CertifierTaxID string `yaml:"rfc_prov_certif,omitempty"`
	SATCertificate string `yaml:"no_certificado_sat,omitempty"`
}

// =============================================================================
// LINE ITEMS
// =============================================================================

// LineItem is a single Concepto of the invoice.
type LineItem struct {
	ProductCode string          `yaml:"clave_prod_serv"`
	Quantity    decimal.Decimal `yaml:"cantidad"`
	UnitCode    string          `yaml:"clave_unidad"`
	Description string          `yaml:"descripcion"`
	UnitValue   decimal.Decimal `yaml:"valor_unitario"`
	Amount      decimal.Decimal `yaml:"importe"`
	Discount    decimal.Decimal `yaml:"descuento"`
	TaxObject   string          `yaml:"objeto_imp,omitempty"`
	Taxes       ItemTaxes       `yaml:"impuestos"`
}

// ItemTaxes separates taxes charged to the recipient (transfers) from taxes
// withheld from the issuer (withholdings). Both slices are never nil.
type ItemTaxes struct {
	Transfers    []TaxEntry `yaml:"traslados"`
	Withholdings []TaxEntry `yaml:"retenciones"`
}

// TaxEntry is one Traslado or Retencion node.
type TaxEntry struct {
	Base      decimal.Decimal `yaml:"base"`
	TaxKind   string          `yaml:"impuesto"`
	RateType  string          `yaml:"tipo_factor"`
	RateOrFee decimal.Decimal `yaml:"tasa_cuota"`
	Amount    decimal.Decimal `yaml:"importe"`
}
