package main

import (
	"context"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	sheetPurchases = "Purchases"
	sheetInvoices  = "Invoices"

	exportLimit = 10000
)

// ExportJournal writes the newest journal entries as an xlsx workbook.
func ExportJournal(ctx context.Context, j Journal, w io.Writer) error {
	purchases, err := j.ListPurchases(ctx, exportLimit)
	if err != nil {
		return err
	}
	invoices, err := j.ListInvoices(ctx, exportLimit)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetPurchases); err != nil {
		return err
	}
	if _, err := f.NewSheet(sheetInvoices); err != nil {
		return err
	}

	rows := make([][]any, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, []any{
			p.ID, p.CreatedAt.UTC().Format(time.RFC3339), p.SessionID, string(p.Panel), p.Restaurant,
			p.PaymentMethod, p.Units, p.Subtotal, p.DiscountPercent, p.Discount, p.Total,
			p.Success, p.ErrorCategory, p.Items,
		})
	}
	if err := writeSheet(f, sheetPurchases, []any{
		"id", "created_at", "session", "panel", "restaurant", "payment_method", "units",
		"subtotal", "discount_pct", "discount", "total", "success", "error", "items",
	}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, inv := range invoices {
		rows = append(rows, []any{
			inv.ID, inv.CreatedAt.UTC().Format(time.RFC3339), inv.TargetID, inv.TargetName,
			inv.Amount, inv.PaymentMethod, inv.Success, inv.Items,
		})
	}
	if err := writeSheet(f, sheetInvoices, []any{
		"id", "created_at", "target_id", "target_name", "amount", "payment_method", "success", "items",
	}, rows); err != nil {
		return err
	}

	_, err = f.WriteTo(w)
	return err
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	return sw.Flush()
}
