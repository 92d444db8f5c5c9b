// Package nfe extracts line items from NF-e invoice XML (the nfeProc
// envelope or a bare NFe document).
package nfe

import (
	"encoding/xml"
	"fmt"
	"strings"

	"claritax/internal/domain"
	"claritax/internal/taxengine"
)

// noGTIN is the sentinel the NF-e layout uses for products without a
// global trade item number.
const noGTIN = "SEM GTIN"

type nfeProc struct {
	XMLName xml.Name `xml:"nfeProc"`
	NFe     nfeDoc   `xml:"NFe"`
}

type nfeDoc struct {
	InfNFe struct {
		Det []det `xml:"det"`
	} `xml:"infNFe"`
}

type det struct {
	Prod struct {
		CProd  string `xml:"cProd"`
		CEAN   string `xml:"cEAN"`
		XProd  string `xml:"xProd"`
		NCM    string `xml:"NCM"`
		QCom   string `xml:"qCom"`
		VUnCom string `xml:"vUnCom"`
		VProd  string `xml:"vProd"`
		VDesc  string `xml:"vDesc"`
	} `xml:"prod"`
	Imposto struct {
		ICMS struct {
			ICMS00    origGroup `xml:"ICMS00"`
			ICMS10    origGroup `xml:"ICMS10"`
			ICMS20    origGroup `xml:"ICMS20"`
			ICMS40    origGroup `xml:"ICMS40"`
			ICMS60    origGroup `xml:"ICMS60"`
			ICMS90    origGroup `xml:"ICMS90"`
			ICMSSN101 origGroup `xml:"ICMSSN101"`
			ICMSSN102 origGroup `xml:"ICMSSN102"`
			ICMSSN500 origGroup `xml:"ICMSSN500"`
		} `xml:"ICMS"`
	} `xml:"imposto"`
}

type origGroup struct {
	Orig string `xml:"orig"`
}

// Parse extracts the line items of an NF-e document in input order. Each
// item starts in the searching state. Numeric fields use the engine's
// lenient parse, so a malformed quantity or price degrades to zero instead
// of rejecting the whole document.
func Parse(data []byte) ([]domain.LineItem, error) {
	var proc nfeProc
	if err := xml.Unmarshal(data, &proc); err != nil {
		// Some emitters ship the NFe element without the nfeProc envelope.
		var doc nfeDoc
		if err2 := xml.Unmarshal(data, &doc); err2 != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrDocumentMalformed, err)
		}
		proc.NFe = doc
	}

	dets := proc.NFe.InfNFe.Det
	if len(dets) == 0 {
		return nil, domain.ErrNoLineItems
	}

	items := make([]domain.LineItem, 0, len(dets))
	for i := range dets {
		d := &dets[i]
		items = append(items, domain.LineItem{
			InternalCode: strings.TrimSpace(d.Prod.CProd),
			Description:  strings.TrimSpace(d.Prod.XProd),
			TariffCode:   strings.TrimSpace(d.Prod.NCM),
			Barcode:      barcode(d.Prod.CEAN),
			Quantity:     taxengine.Normalize(d.Prod.QCom),
			UnitPrice:    taxengine.Normalize(d.Prod.VUnCom),
			TotalPrice:   taxengine.Normalize(d.Prod.VProd),
			Discount:     taxengine.Normalize(d.Prod.VDesc),
			Imported:     imported(d),
			Status:       domain.StatusSearching,
		})
	}
	return items, nil
}

func barcode(cEAN string) string {
	c := strings.TrimSpace(cEAN)
	if strings.EqualFold(c, noGTIN) {
		return ""
	}
	return c
}

// imported reads the origin flag from whichever ICMS group the item uses.
// Origin "0" is domestic; anything else marks foreign origin.
func imported(d *det) bool {
	icms := &d.Imposto.ICMS
	for _, g := range []origGroup{
		icms.ICMS00, icms.ICMS10, icms.ICMS20, icms.ICMS40, icms.ICMS60,
		icms.ICMS90, icms.ICMSSN101, icms.ICMSSN102, icms.ICMSSN500,
	} {
		orig := strings.TrimSpace(g.Orig)
		if orig != "" {
			return orig != "0"
		}
	}
	return false
}
