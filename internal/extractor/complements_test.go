package extractor_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/cfdi-extractor/internal/extractor"
	"github.com/ginjaninja78/cfdi-extractor/internal/types"
)

// =============================================================================
// PAYMENTS
// =============================================================================

func TestDecodePayments_Pagos20(t *testing.T) {
	record, err := extractor.New().Process(writeXML(t, "pago20.xml", paymentsV20XML))
	require.NoError(t, err)

	assert.Equal(t, "Pago", record.General.TypeLabel())
	assert.Equal(t, "9A1B2C3D-4E5F-4A6B-8C7D-8E9F0A1B2C3D", record.InvoiceID())

	payments, ok := record.Payments()
	require.True(t, ok)
	assert.Equal(t, "2.0", payments.Version)
	require.Len(t, payments.Payments, 2)

	first := payments.Payments[0]
	assert.Equal(t, "OP-123", first.ID)
	assert.False(t, first.IDInherited)
	assert.Equal(t, "2024-04-01T12:00:00", first.Date)
	assert.Equal(t, "03", first.Form)
	assert.Equal(t, "MXN", first.Currency)
	assertDecimal(t, "1000.00", first.Amount)
	require.Len(t, first.RelatedDocuments, 1)
	doc := first.RelatedDocuments[0]
	assert.Equal(t, testUUID, doc.ID)
	assert.Equal(t, "A", doc.Series)
	assert.Equal(t, "1001", doc.Folio)
	assertDecimal(t, "1160.00", doc.PreviousBalance)
	assertDecimal(t, "1000.00", doc.AmountPaid)
	assertDecimal(t, "160.00", doc.OutstandingBalance)

	second := payments.Payments[1]
	assert.Equal(t, record.InvoiceID(), second.ID)
	assert.True(t, second.IDInherited)
	require.Len(t, second.RelatedDocuments, 2)
	assert.Empty(t, second.RelatedDocuments[1].Series)
	assert.Empty(t, second.RelatedDocuments[1].Folio)
	assertDecimal(t, "0", second.RelatedDocuments[1].AmountPaid)
	assertDecimal(t, "50.00", second.RelatedDocuments[1].PreviousBalance)
}

func TestDecodePayments_Pagos10WithoutStamp(t *testing.T) {
	record, err := extractor.New().Process(writeXML(t, "pago10.xml", paymentsV10XML))
	require.NoError(t, err)

	assert.Equal(t, "3.3", record.General.Version)
	assert.Equal(t, extractor.DefaultPartyName, record.Recipient.Name)
	assert.Equal(t, types.NoUUID, record.InvoiceID())

	payments, ok := record.Payments()
	require.True(t, ok)
	assert.Equal(t, "1.0", payments.Version)
	require.Len(t, payments.Payments, 1)
	assert.Equal(t, types.NoUUID, payments.Payments[0].ID)
	assert.True(t, payments.Payments[0].IDInherited)
	require.Len(t, payments.Payments[0].RelatedDocuments, 1)
	assert.Equal(t, "9", payments.Payments[0].RelatedDocuments[0].Folio)
	assertDecimal(t, "500.00", payments.Payments[0].Amount)
}

func TestDecodePayments_EmptyBlock(t *testing.T) {
	body := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:p="http://www.sat.gob.mx/Pagos20">
  <cfdi:Complemento><p:Pagos/></cfdi:Complemento>
</cfdi:Comprobante>`
	record, err := extractor.New().Process(writeXML(t, "vacio.xml", body))
	require.NoError(t, err)

	payments, ok := record.Payments()
	require.True(t, ok)
	// Version falls back to the schema that matched.
	assert.Equal(t, "2.0", payments.Version)
	assert.NotNil(t, payments.Payments)
	assert.Empty(t, payments.Payments)
}

func TestDecodePayments_AbsentComplement(t *testing.T) {
	record, err := extractor.New().Process(writeXML(t, "factura.xml", invoiceXML(nsCFDI40, "4.0")))
	require.NoError(t, err)

	payments, ok := record.Payments()
	assert.False(t, ok)
	assert.Nil(t, payments)
}

// =============================================================================
// PAYROLL
// =============================================================================

func TestDecodePayroll(t *testing.T) {
	record, err := extractor.New().Process(writeXML(t, "nomina.xml", payrollXML))
	require.NoError(t, err)

	assert.Equal(t, "Nómina", record.General.TypeLabel())
	require.Contains(t, record.Complements, types.ComplementPayroll)
	assert.NotContains(t, record.Complements, types.ComplementPayments)

	payroll, ok := record.Complements[types.ComplementPayroll].(*types.PayrollComplement)
	require.True(t, ok)
	assert.Equal(t, types.ComplementPayroll, payroll.Kind())
	assert.Equal(t, "1.2", payroll.Version)
	assert.Equal(t, "O", payroll.Type)
	assert.Equal(t, "2024-01-31", payroll.PaymentDate)
	assertDecimal(t, "15", payroll.DaysPaid)
	assertDecimal(t, "15000", payroll.TotalPerceptions)
	assertDecimal(t, "2000", payroll.TotalDeductions)
	assertDecimal(t, "0", payroll.TotalOtherPayments)
}

// =============================================================================
// REGISTRY
// =============================================================================

type donationComplement struct {
	Authorization string
}

func (donationComplement) Kind() string { return "donatarias" }

func decodeDonation(root *etree.Element, ctx extractor.DecodeContext) (types.Complement, bool) {
	el := root.FindElement(".//Donatarias")
	if el == nil {
		return nil, false
	}
	return donationComplement{Authorization: el.SelectAttrValue("noAutorizacion", "") + "@" + ctx.InvoiceID}, true
}

func TestRegistry_DefaultKinds(t *testing.T) {
	assert.Equal(t,
		[]string{types.ComplementPayments, types.ComplementPayroll},
		extractor.DefaultRegistry().Kinds())
}

func TestRegistry_RegisterReplacesInPlace(t *testing.T) {
	r := extractor.DefaultRegistry()
	r.Register("donatarias", decodeDonation)
	r.Register(types.ComplementPayments, func(*etree.Element, extractor.DecodeContext) (types.Complement, bool) {
		return nil, false
	})

	assert.Equal(t, []string{types.ComplementPayments, types.ComplementPayroll, "donatarias"}, r.Kinds())

	kinds := r.Kinds()
	kinds[0] = "mutated"
	assert.Equal(t, types.ComplementPayments, r.Kinds()[0])
}

func TestRegistry_CustomDecoderReceivesInvoiceID(t *testing.T) {
	body := `<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital">
  <cfdi:Complemento>
    <Donatarias noAutorizacion="123"/>
    <tfd:TimbreFiscalDigital UUID="` + testUUID + `"/>
  </cfdi:Complemento>
</cfdi:Comprobante>`

	r := extractor.NewRegistry()
	r.Register("donatarias", decodeDonation)

	record, err := extractor.New(extractor.WithRegistry(r)).Process(writeXML(t, "donativo.xml", body))
	require.NoError(t, err)

	require.Len(t, record.Complements, 1)
	assert.Equal(t, donationComplement{Authorization: "123@" + testUUID}, record.Complements["donatarias"])
}

func TestRegistry_EmptyRegistryYieldsEmptyMap(t *testing.T) {
	record, err := extractor.New(extractor.WithRegistry(extractor.NewRegistry())).
		Process(writeXML(t, "pago.xml", paymentsV20XML))
	require.NoError(t, err)

	assert.NotNil(t, record.Complements)
	assert.Empty(t, record.Complements)
}
