// Package csvexport renders analysis results as CSV downloads.
package csvexport

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"claritax/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row (18 columns).
var columns = []string{
	"Position",
	"Internal Code",
	"Description",
	"NCM",
	"EAN",
	"Quantity",
	"Unit Price",
	"Status",
	"Source",
	"Product ID",
	"Product Name",
	"IBS Value",
	"IBS Effective Rate",
	"CBS Value",
	"CBS Effective Rate",
	"New Regime Total",
	"Legacy Estimate",
	"Basic Basket",
}

// Writer wraps csv.Writer for exporting analysis items as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteItems converts analysis items to CSV rows and writes them.
func (w *Writer) WriteItems(items []domain.AnalysisItem) error {
	for i := range items {
		if err := w.csv.Write(itemToRow(&items[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// itemToRow converts a single item to an 18-element string slice. Items
// that did not resolve keep their extracted fields and leave the
// computation columns empty.
func itemToRow(item *domain.AnalysisItem) []string {
	row := make([]string, len(columns))

	row[0] = strconv.Itoa(item.Position + 1)
	row[1] = item.InternalCode
	row[2] = item.Description
	row[3] = item.TariffCode
	row[4] = item.Barcode
	row[5] = strconv.FormatFloat(item.Quantity, 'f', -1, 64)
	row[6] = formatMoney(item.UnitPrice)
	row[7] = string(item.Status)
	row[8] = string(item.Source)

	if item.ProductID != nil {
		row[9] = strconv.FormatInt(*item.ProductID, 10)
	}
	row[10] = item.ProductName

	if item.Status != domain.StatusFound || len(item.Breakdown) == 0 {
		return row
	}

	var b domain.TaxBreakdown
	if err := json.Unmarshal(item.Breakdown, &b); err != nil {
		return row
	}

	row[11] = formatMoney(b.IBS.Value)
	row[12] = formatRate(b.IBS.FinalRate)
	row[13] = formatMoney(b.CBS.Value)
	row[14] = formatRate(b.CBS.FinalRate)
	row[15] = formatMoney(b.NewTotal)
	row[16] = formatMoney(b.LegacyTotal)
	row[17] = formatBool(b.BasicBasket)

	return row
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatRate(fraction float64) string {
	return strconv.FormatFloat(fraction*100, 'f', 2, 64) + "%"
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a document name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses
// consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition.
// Format: {sanitized_document_name}_{YYYY-MM-DD}.csv
func BuildFilename(documentName string) string {
	sanitized := SanitizeFilename(documentName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
