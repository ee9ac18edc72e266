// Package export builds the spreadsheet reports offered for download.
package export

import (
	"fmt"
	"time"

	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	agingSheet  = "Antigüedad"
	clientSheet = "Clientes"
)

// AgingBuckets are the overdue ranges, in days past due, of the aging report.
var AgingBuckets = []string{"Vigente", "1-30", "31-60", "61-90", "+90"}

// Bucket returns the index in AgingBuckets for a receivable as of now.
func Bucket(due, now time.Time) int {
	days := int(now.Truncate(24*time.Hour).Sub(due.Truncate(24*time.Hour)).Hours() / 24)
	switch {
	case days <= 0:
		return 0
	case days <= 30:
		return 1
	case days <= 60:
		return 2
	case days <= 90:
		return 3
	default:
		return 4
	}
}

// ReceivablesAging writes one row per open receivable with its balance placed
// in the matching overdue bucket, plus a totals row.
func ReceivablesAging(receivables []entity.Receivable, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", agingSheet); err != nil {
		return nil, err
	}

	headers := append([]string{"Cliente", "Concepto", "Vencimiento", "Total", "Pagado", "Saldo"}, AgingBuckets...)
	if err := writeHeader(f, agingSheet, headers); err != nil {
		return nil, err
	}

	totals := make([]decimal.Decimal, len(AgingBuckets))
	row := 2
	for _, r := range receivables {
		if r.IsPaid() {
			continue
		}
		client := ""
		if r.Client != nil {
			client = r.Client.CompanyName
		}
		values := []interface{}{
			client,
			r.Concept,
			r.DueDate.Format("2006-01-02"),
			r.TotalAmount.InexactFloat64(),
			r.PaidAmount.InexactFloat64(),
			r.Balance.InexactFloat64(),
		}
		bucket := Bucket(r.DueDate, now)
		for i := range AgingBuckets {
			if i == bucket {
				values = append(values, r.Balance.InexactFloat64())
				totals[i] = totals[i].Add(r.Balance)
			} else {
				values = append(values, nil)
			}
		}
		if err := writeRow(f, agingSheet, row, values); err != nil {
			return nil, err
		}
		row++
	}

	footer := []interface{}{"Total", nil, nil, nil, nil, nil}
	for _, t := range totals {
		footer = append(footer, t.InexactFloat64())
	}
	if err := writeRow(f, agingSheet, row, footer); err != nil {
		return nil, err
	}
	return finish(f)
}

// Clients writes the client directory with fiscal data.
func Clients(clients []entity.Client) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", clientSheet); err != nil {
		return nil, err
	}
	headers := []string{"Empresa", "Contacto", "Correo", "Teléfono", "RFC", "Razón social", "Régimen", "C.P.", "Alta"}
	if err := writeHeader(f, clientSheet, headers); err != nil {
		return nil, err
	}
	for i, c := range clients {
		values := []interface{}{c.CompanyName, c.ContactName, c.Email, c.Phone, c.RFC, c.FiscalName,
			c.FiscalRegime, c.TaxZipCode, c.CreatedAt.Format("2006-01-02")}
		if err := writeRow(f, clientSheet, i+2, values); err != nil {
			return nil, err
		}
	}
	return finish(f)
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDDDDD"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := writeRow(f, sheet, 1, values); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	return f.SetColWidth(sheet, "A", lastCol, 18)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func finish(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
