package nfe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claritax/internal/domain"
	"claritax/internal/nfe"
)

const sampleNFe = `<?xml version="1.0" encoding="UTF-8"?>
<nfeProc xmlns="http://www.portalfiscal.inf.br/nfe" versao="4.00">
  <NFe>
    <infNFe Id="NFe35240101234567000199550010000012341000012349" versao="4.00">
      <det nItem="1">
        <prod>
          <cProd>001</cProd>
          <cEAN>7891000100103</cEAN>
          <xProd>LEITE UHT INTEGRAL 1L</xProd>
          <NCM>04012010</NCM>
          <qCom>12.0000</qCom>
          <vUnCom>4.9900</vUnCom>
          <vProd>59.88</vProd>
          <vDesc>2.00</vDesc>
        </prod>
        <imposto>
          <ICMS>
            <ICMS00>
              <orig>0</orig>
            </ICMS00>
          </ICMS>
        </imposto>
      </det>
      <det nItem="2">
        <prod>
          <cProd>002</cProd>
          <cEAN>SEM GTIN</cEAN>
          <xProd>QUEIJO IMPORTADO 200G</xProd>
          <NCM>04061010</NCM>
          <qCom>abc</qCom>
          <vUnCom>32,90</vUnCom>
          <vProd>32.90</vProd>
        </prod>
        <imposto>
          <ICMS>
            <ICMS10>
              <orig>1</orig>
            </ICMS10>
          </ICMS>
        </imposto>
      </det>
    </infNFe>
  </NFe>
</nfeProc>`

func TestParse_NfeProcEnvelope(t *testing.T) {
	items, err := nfe.Parse([]byte(sampleNFe))

	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "001", first.InternalCode)
	assert.Equal(t, "LEITE UHT INTEGRAL 1L", first.Description)
	assert.Equal(t, "04012010", first.TariffCode)
	assert.Equal(t, "7891000100103", first.Barcode)
	assert.Equal(t, 12.0, first.Quantity)
	assert.Equal(t, 4.99, first.UnitPrice)
	assert.Equal(t, 59.88, first.TotalPrice)
	assert.Equal(t, 2.00, first.Discount)
	assert.False(t, first.Imported)
	assert.Equal(t, domain.StatusSearching, first.Status)
}

func TestParse_SemGTINAndLenientNumbers(t *testing.T) {
	items, err := nfe.Parse([]byte(sampleNFe))

	require.NoError(t, err)
	second := items[1]

	// The SEM GTIN sentinel means "no barcode", not a barcode value.
	assert.Equal(t, "", second.Barcode)
	// Malformed quantity degrades to zero; comma decimals parse.
	assert.Equal(t, 0.0, second.Quantity)
	assert.Equal(t, 32.90, second.UnitPrice)
	assert.True(t, second.Imported)
}

func TestParse_BareNFeRoot(t *testing.T) {
	doc := `<NFe xmlns="http://www.portalfiscal.inf.br/nfe">
  <infNFe>
    <det nItem="1">
      <prod>
        <cProd>010</cProd>
        <xProd>ARROZ TIPO 1 5KG</xProd>
        <NCM>10063021</NCM>
        <qCom>2</qCom>
        <vUnCom>25.90</vUnCom>
      </prod>
    </det>
  </infNFe>
</NFe>`

	items, err := nfe.Parse([]byte(doc))

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "ARROZ TIPO 1 5KG", items[0].Description)
	assert.False(t, items[0].Imported)
}

func TestParse_MalformedDocument(t *testing.T) {
	_, err := nfe.Parse([]byte("not xml at all"))

	assert.ErrorIs(t, err, domain.ErrDocumentMalformed)
}

func TestParse_NoLineItems(t *testing.T) {
	doc := `<nfeProc><NFe><infNFe></infNFe></NFe></nfeProc>`

	_, err := nfe.Parse([]byte(doc))

	assert.ErrorIs(t, err, domain.ErrNoLineItems)
}
