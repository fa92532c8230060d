package types

import "github.com/shopspring/decimal"

// Complement kinds known to the default decoder registry.
const (
	ComplementPayments = "pagos"
	ComplementPayroll  = "nomina"
)

// Complement is the payload decoded from one complement block. New kinds only
// need a new implementation and a registered decoder; InvoiceRecord is unchanged.
type Complement interface {
	Kind() string
}

// PaymentsComplement is the "Recepción de Pagos" complement (Pagos 1.0 / 2.0).
type PaymentsComplement struct {
	Version  string    `yaml:"version"`
	Payments []Payment `yaml:"pagos"`
}

// Kind implements Complement.
func (*PaymentsComplement) Kind() string { return ComplementPayments }

// Payment is one Pago entry.
type Payment struct {
	// ID is the payment's own identifier (NumOperacion). When the payment has
	// none it inherits the parent invoice ID and IDInherited is set. Several
	// payments of the same invoice can therefore share one ID.
	ID          string `yaml:"id"`
	IDInherited bool   `yaml:"id_heredado"`

	Date     string          `yaml:"fecha_pago"`
	Form     string          `yaml:"forma_pago"`
	Currency string          `yaml:"moneda"`
	Amount   decimal.Decimal `yaml:"monto"`

	RelatedDocuments []RelatedDocument `yaml:"documentos_relacionados"`
}

// RelatedDocument references an earlier invoice settled by a payment. It does
// not own that invoice.
type RelatedDocument struct {
	ID                 string          `yaml:"id_documento"`
	Series             string          `yaml:"serie"`
	Folio              string          `yaml:"folio"`
	Currency           string          `yaml:"moneda"`
	PreviousBalance    decimal.Decimal `yaml:"imp_saldo_ant"`
	AmountPaid         decimal.Decimal `yaml:"imp_pagado"`
	OutstandingBalance decimal.Decimal `yaml:"imp_saldo_insoluto"`
}

// PayrollComplement summarizes the Nomina 1.2 complement.
type PayrollComplement struct {
	Version            string          `yaml:"version"`
	Type               string          `yaml:"tipo_nomina"`
	PaymentDate        string          `yaml:"fecha_pago"`
	DaysPaid           decimal.Decimal `yaml:"num_dias_pagados"`
	TotalPerceptions   decimal.Decimal `yaml:"total_percepciones"`
	TotalDeductions    decimal.Decimal `yaml:"total_deducciones"`
	TotalOtherPayments decimal.Decimal `yaml:"total_otros_pagos"`
}

// Kind implements Complement.
func (*PayrollComplement) Kind() string { return ComplementPayroll }
