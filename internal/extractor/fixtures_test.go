package extractor_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// FIXTURES
// =============================================================================

const (
	nsCFDI40 = "http://www.sat.gob.mx/cfd/4"
	nsCFDI33 = "http://www.sat.gob.mx/cfd/3"

	testUUID = "5FB2822E-396D-4725-8521-CDC4BDD20CCF"
)

var fixedClock = func() time.Time {
	return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
}

// invoiceTemplate is an income invoice with one taxed line item and one
// untaxed line item. {{NS}} and {{VERSION_ATTR}} select the generation.
const invoiceTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="{{NS}}" xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"
    xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    {{VERSION_ATTR}} Serie="A" Folio="1001" Fecha="2024-03-15T10:30:00"
    SubTotal="100.00" Total="116.00" Moneda="MXN" TipoDeComprobante="I"
    MetodoPago="PUE" FormaPago="03" LugarExpedicion="64000">
  <cfdi:Emisor Rfc="EKU9003173C9" Nombre="ESCUELA KEMPER URGATE" RegimenFiscal="601"/>
  <cfdi:Receptor Rfc="XAXX010101000" Nombre="PUBLICO EN GENERAL" UsoCFDI="G03"
      RegimenFiscalReceptor="616" DomicilioFiscalReceptor="64000"/>
  <cfdi:Conceptos>
    <cfdi:Concepto ClaveProdServ="84111506" Cantidad="1" ClaveUnidad="E48"
        Descripcion="Servicio de facturación" ValorUnitario="100.00" Importe="100.00" ObjetoImp="02">
      <cfdi:Impuestos>
        <cfdi:Traslados>
          <cfdi:Traslado Base="100.00" Impuesto="002" TipoFactor="Tasa" TasaOCuota="0.160000" Importe="16.00"/>
        </cfdi:Traslados>
        <cfdi:Retenciones>
          <cfdi:Retencion Base="100.00" Impuesto="001" TipoFactor="Tasa" TasaOCuota="0.100000" Importe="10.00"/>
        </cfdi:Retenciones>
      </cfdi:Impuestos>
    </cfdi:Concepto>
    <cfdi:Concepto ClaveProdServ="01010101" Cantidad="2" ClaveUnidad="H87"
        Descripcion="Muestra" ValorUnitario="0" Importe="0" Descuento="0" ObjetoImp="01"/>
  </cfdi:Conceptos>
  <cfdi:Impuestos TotalImpuestosTrasladados="16.00">
    <cfdi:Traslados>
      <cfdi:Traslado Base="100.00" Impuesto="002" TipoFactor="Tasa" TasaOCuota="0.160000" Importe="16.00"/>
    </cfdi:Traslados>
  </cfdi:Impuestos>
  <cfdi:Complemento>
    <tfd:TimbreFiscalDigital Version="1.1" UUID="` + testUUID + `"
        FechaTimbrado="2024-03-15T10:31:00" RfcProvCertif="SPR190613I52" NoCertificadoSAT="30001000000500003456"/>
  </cfdi:Complemento>
</cfdi:Comprobante>
`

func invoiceXML(ns, version string) string {
	versionAttr := ""
	if version != "" {
		versionAttr = `Version="` + version + `"`
	}
	return strings.NewReplacer("{{NS}}", ns, "{{VERSION_ATTR}}", versionAttr).Replace(invoiceTemplate)
}

// paymentsV20XML is a payment receipt with two payments, only the first one
// carrying its own NumOperacion.
const paymentsV20XML = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:pago20="http://www.sat.gob.mx/Pagos20"
    xmlns:tfd="http://www.sat.gob.mx/TimbreFiscalDigital"
    Version="4.0" Serie="P" Folio="77" Fecha="2024-04-20T12:00:00" SubTotal="0" Total="0"
    Moneda="XXX" TipoDeComprobante="P" LugarExpedicion="64000">
  <cfdi:Emisor Rfc="EKU9003173C9" Nombre="ESCUELA KEMPER URGATE" RegimenFiscal="601"/>
  <cfdi:Receptor Rfc="URE180429TM6" Nombre="UNIVERSIDAD ROBOTICA ESPAÑOLA" UsoCFDI="CP01"/>
  <cfdi:Conceptos>
    <cfdi:Concepto ClaveProdServ="84111506" Cantidad="1" ClaveUnidad="ACT" Descripcion="Pago"
        ValorUnitario="0" Importe="0" ObjetoImp="01"/>
  </cfdi:Conceptos>
  <cfdi:Complemento>
    <pago20:Pagos Version="2.0">
      <pago20:Totales MontoTotalPagos="1160.00"/>
      <pago20:Pago FechaPago="2024-04-01T12:00:00" FormaDePagoP="03" MonedaP="MXN" Monto="1000.00" NumOperacion="OP-123">
        <pago20:DoctoRelacionado IdDocumento="` + testUUID + `" Serie="A" Folio="1001" MonedaDR="MXN"
            ImpSaldoAnt="1160.00" ImpPagado="1000.00" ImpSaldoInsoluto="160.00"/>
      </pago20:Pago>
      <pago20:Pago FechaPago="2024-04-15T12:00:00" FormaDePagoP="01" MonedaP="MXN" Monto="160.00">
        <pago20:DoctoRelacionado IdDocumento="` + testUUID + `" Serie="A" Folio="1001" MonedaDR="MXN"
            ImpSaldoAnt="160.00" ImpPagado="160.00" ImpSaldoInsoluto="0.00"/>
        <pago20:DoctoRelacionado IdDocumento="0E2E3C4D-1111-4222-8333-444455556666" MonedaDR="MXN"
            ImpSaldoAnt="50.00" ImpPagado="oops" ImpSaldoInsoluto="50.00"/>
      </pago20:Pago>
    </pago20:Pagos>
    <tfd:TimbreFiscalDigital Version="1.1" UUID="9A1B2C3D-4E5F-4A6B-8C7D-8E9F0A1B2C3D" FechaTimbrado="2024-04-20T12:01:00"/>
  </cfdi:Complemento>
</cfdi:Comprobante>
`

// paymentsV10XML is a 3.3 payment receipt using Pagos 1.0 and no tax stamp.
const paymentsV10XML = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/3" xmlns:pago10="http://www.sat.gob.mx/Pagos"
    Version="3.3" Serie="P" Folio="12" Fecha="2021-06-01T08:00:00" SubTotal="0" Total="0"
    Moneda="XXX" TipoDeComprobante="P">
  <cfdi:Emisor Rfc="EKU9003173C9" Nombre="ESCUELA KEMPER URGATE"/>
  <cfdi:Receptor Rfc="XAXX010101000" UsoCFDI="P01"/>
  <cfdi:Complemento>
    <pago10:Pagos Version="1.0">
      <pago10:Pago FechaPago="2021-05-30T12:00:00" FormaDePagoP="02" MonedaP="MXN" Monto="500.00">
        <pago10:DoctoRelacionado IdDocumento="11111111-2222-4333-8444-555555555555" Folio="9"
            MonedaDR="MXN" ImpSaldoAnt="500.00" ImpPagado="500.00" ImpSaldoInsoluto="0"/>
      </pago10:Pago>
    </pago10:Pagos>
  </cfdi:Complemento>
</cfdi:Comprobante>
`

// payrollXML carries a Nomina 1.2 complement.
const payrollXML = `<?xml version="1.0" encoding="UTF-8"?>
<cfdi:Comprobante xmlns:cfdi="http://www.sat.gob.mx/cfd/4" xmlns:nomina12="http://www.sat.gob.mx/nomina12"
    Version="4.0" Fecha="2024-01-31T18:00:00" SubTotal="15000.00" Total="13000.00" TipoDeComprobante="N">
  <cfdi:Emisor Rfc="EKU9003173C9" Nombre="ESCUELA KEMPER URGATE"/>
  <cfdi:Receptor Rfc="XOJI740919U48" Nombre="INGRID XODAR JIMENEZ" UsoCFDI="CN01"/>
  <cfdi:Complemento>
    <nomina12:Nomina Version="1.2" TipoNomina="O" FechaPago="2024-01-31" NumDiasPagados="15.000"
        TotalPercepciones="15000.00" TotalDeducciones="2000.00"/>
  </cfdi:Complemento>
</cfdi:Comprobante>
`

// =============================================================================
// HELPERS
// =============================================================================

func writeXML(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}
