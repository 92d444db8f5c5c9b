// Command seedcatalog converts the product catalog Excel file into a SQL
// seed file covering products and their tax detail rows.
// Usage: go run ./cmd/seedcatalog
// Output: db/seeds/catalog.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type catalogEntry struct {
	barcode       string
	tariffCode    string
	secondaryCode string
	name          string
	category      string
	unitPrice     string // empty = NULL

	ibsCST      string
	ibsClass    string
	ibsRate     string
	ibsRed      string
	cbsCST      string
	cbsClass    string
	cbsRate     string
	cbsRed      string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "Catalogo_Produtos_Classificacao.xlsx"
	outPath := "db/seeds/catalog.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parseCatalogSheet(f)
	if err != nil {
		return fmt.Errorf("parse catalog sheet: %w", err)
	}
	log.Printf("catalog sheet: %d entries", len(entries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Product catalog seed data generated from Excel.",
		fmt.Sprintf("-- %d products in batches of %d.", len(entries), batchSize),
		"-- Run: make seed-catalog",
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end], i); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{
		"",
		"SELECT setval('products_id_seq', (SELECT MAX(id) FROM products));",
		"COMMIT;",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}

	log.Printf("Generated %d products (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseCatalogSheet reads the first sheet.
// Columns: A=barcode, B=NCM, C=CEST, D=name, E=category, F=unit price,
// G-J=IBS cst/class/rate/reduction, K-N=CBS cst/class/rate/reduction.
// Data starts at row index 1 (row 0 is the header).
func parseCatalogSheet(f *excelize.File) ([]catalogEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []catalogEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 5 {
			continue
		}

		name := strings.TrimSpace(cell(row, 3))
		if name == "" {
			continue
		}

		e := catalogEntry{
			barcode:       strings.TrimSpace(cell(row, 0)),
			tariffCode:    digitsOnly(cell(row, 1)),
			secondaryCode: digitsOnly(cell(row, 2)),
			name:          name,
			category:      strings.ToLower(strings.TrimSpace(cell(row, 4))),
			unitPrice:     numericOrEmpty(cell(row, 5)),
			ibsCST:        strings.TrimSpace(cell(row, 6)),
			ibsClass:      strings.TrimSpace(cell(row, 7)),
			ibsRate:       numericOrEmpty(cell(row, 8)),
			ibsRed:        numericOrEmpty(cell(row, 9)),
			cbsCST:        strings.TrimSpace(cell(row, 10)),
			cbsClass:      strings.TrimSpace(cell(row, 11)),
			cbsRate:       numericOrEmpty(cell(row, 12)),
			cbsRed:        numericOrEmpty(cell(row, 13)),
		}

		// Barcodes must be unique; later duplicates lose.
		if e.barcode != "" {
			if seen[e.barcode] {
				continue
			}
			seen[e.barcode] = true
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func writeBatch(out *os.File, entries []catalogEntry, offset int) error {
	var products strings.Builder
	var details strings.Builder

	products.WriteString("INSERT INTO products (id, barcode, tariff_code, secondary_code, name, category, unit_price) VALUES\n")
	details.WriteString("INSERT INTO product_tax_details (product_id, tax_type, cst, c_class, aliquota, reducao) VALUES\n")

	for i, e := range entries {
		id := offset + i + 1
		sep := ",\n"
		if i == len(entries)-1 {
			sep = ";\n"
		}
		products.WriteString(fmt.Sprintf("(%d, %s, %s, %s, %s, %s, %s)%s",
			id, sqlString(e.barcode), sqlString(e.tariffCode), sqlString(e.secondaryCode),
			sqlString(e.name), sqlString(e.category), sqlNumeric(e.unitPrice), sep))

		details.WriteString(fmt.Sprintf("(%d, 'ibs', %s, %s, %s, %s),\n",
			id, sqlString(e.ibsCST), sqlString(e.ibsClass), sqlNumeric(e.ibsRate), sqlNumeric(e.ibsRed)))
		dsep := ",\n"
		if i == len(entries)-1 {
			dsep = ";\n"
		}
		details.WriteString(fmt.Sprintf("(%d, 'cbs', %s, %s, %s, %s)%s",
			id, sqlString(e.cbsCST), sqlString(e.cbsClass), sqlNumeric(e.cbsRate), sqlNumeric(e.cbsRed), dsep))
	}

	if _, err := fmt.Fprintln(out, products.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, details.String())
	return err
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// numericOrEmpty normalizes a spreadsheet number cell. Brazilian sheets use
// a comma decimal separator and sometimes carry a trailing percent sign.
func numericOrEmpty(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return ""
	}
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return ""
	}
	return s
}

func sqlString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlNumeric(s string) string {
	if s == "" {
		return "NULL"
	}
	return s
}
