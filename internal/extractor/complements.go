// =============================================================================
// CFDI Extractor - Complement Decoders
// =============================================================================
//
// Complements are optional extension blocks found under cfdi:Complemento.
// Each kind is handled by a Decoder registered under its kind name. The
// record only stores a map of kind -> payload, so supporting a new complement
// means writing a decoder and registering it; InvoiceRecord does not change.
//
// DEFAULT REGISTRY:
//   pagos   - Recepción de Pagos 2.0, falling back to 1.0
//   nomina  - Nómina 1.2 (summary attributes only)
//
// =============================================================================

package extractor

import (
	"github.com/beevik/etree"

	"github.com/ginjaninja78/cfdi-extractor/internal/types"
)

// DecodeContext carries the invoice-level values a decoder may need.
type DecodeContext struct {
	// InvoiceID is the tax-stamp UUID of the document, or types.NoUUID.
	InvoiceID string
}

// Decoder extracts one complement kind from the document root. It returns
// false when the document does not carry that complement.
type Decoder func(root *etree.Element, ctx DecodeContext) (types.Complement, bool)

// Registry maps complement kinds to decoders. Decoders run in registration order.
type Registry struct {
	kinds    []string
	decoders map[string]Decoder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]Decoder)}
}

// DefaultRegistry returns a registry with every built-in decoder.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(types.ComplementPayments, DecodePayments)
	r.Register(types.ComplementPayroll, DecodePayroll)
	return r
}

// Register adds or replaces the decoder for kind.
func (r *Registry) Register(kind string, decoder Decoder) {
	if _, exists := r.decoders[kind]; !exists {
		r.kinds = append(r.kinds, kind)
	}
	r.decoders[kind] = decoder
}

// Kinds returns the registered kinds in registration order.
func (r *Registry) Kinds() []string {
	return append([]string(nil), r.kinds...)
}

// Decode runs every decoder against root. The returned map is never nil.
func (r *Registry) Decode(root *etree.Element, ctx DecodeContext) map[string]types.Complement {
	complements := make(map[string]types.Complement)
	for _, kind := range r.kinds {
		if c, ok := r.decoders[kind](root, ctx); ok {
			complements[kind] = c
		}
	}
	return complements
}

// =============================================================================
// PAYMENTS
// =============================================================================

// DecodePayments reads the Pagos complement. Every level (Pagos, Pago,
// DoctoRelacionado) tries Pagos 2.0 first and Pagos 1.0 second.
//
// A Pago without NumOperacion takes ctx.InvoiceID as its ID. Distinct
// payments of one invoice then share an ID; IDInherited marks those rows.
func DecodePayments(root *etree.Element, ctx DecodeContext) (types.Complement, bool) {
	block, schema, ok := PaymentsChain.FirstDescendant(root, "Pagos")
	if !ok {
		return nil, false
	}

	complement := &types.PaymentsComplement{
		Version:  attrOr(block, "Version", schema.Version),
		Payments: []types.Payment{},
	}

	for _, node := range PaymentsChain.Descendants(block, "Pago") {
		payment := types.Payment{
			ID:               attr(node, "NumOperacion"),
			Date:             attr(node, "FechaPago"),
			Form:             attr(node, "FormaDePagoP"),
			Currency:         attr(node, "MonedaP"),
			Amount:           decimalAttr(node, "Monto"),
			RelatedDocuments: []types.RelatedDocument{},
		}
		if payment.ID == "" {
			payment.ID = ctx.InvoiceID
			payment.IDInherited = true
		}

		for _, doc := range PaymentsChain.Descendants(node, "DoctoRelacionado") {
			payment.RelatedDocuments = append(payment.RelatedDocuments, types.RelatedDocument{
				ID:                 attr(doc, "IdDocumento"),
				Series:             attr(doc, "Serie"),
				Folio:              attr(doc, "Folio"),
				Currency:           attr(doc, "MonedaDR"),
				PreviousBalance:    decimalAttr(doc, "ImpSaldoAnt"),
				AmountPaid:         decimalAttr(doc, "ImpPagado"),
				OutstandingBalance: decimalAttr(doc, "ImpSaldoInsoluto"),
			})
		}

		complement.Payments = append(complement.Payments, payment)
	}

	return complement, true
}

// =============================================================================
// PAYROLL
// =============================================================================

// DecodePayroll reads the summary attributes of the Nomina complement.
func DecodePayroll(root *etree.Element, _ DecodeContext) (types.Complement, bool) {
	node, schema, ok := PayrollChain.FirstDescendant(root, "Nomina")
	if !ok {
		return nil, false
	}

	return &types.PayrollComplement{
		Version:            attrOr(node, "Version", schema.Version),
		Type:               attr(node, "TipoNomina"),
		PaymentDate:        attr(node, "FechaPago"),
		DaysPaid:           decimalAttr(node, "NumDiasPagados"),
		TotalPerceptions:   decimalAttr(node, "TotalPercepciones"),
		TotalDeductions:    decimalAttr(node, "TotalDeducciones"),
		TotalOtherPayments: decimalAttr(node, "TotalOtrosPagos"),
	}, true
}
