package main

import (
	"context"
	"database/sql"
	"time"
)

type PurchaseRecord struct {
	ID              int64
	SessionID       string
	Panel           Kind
	Restaurant      string
	PaymentMethod   string
	Units           int
	Subtotal        int64
	DiscountPercent int
	Discount        int64
	Total           int64
	Success         bool
	ErrorCategory   string
	Items           string
	CreatedAt       time.Time
}

type InvoiceRecord struct {
	ID            int64
	TargetID      int
	TargetName    string
	Amount        int64
	PaymentMethod string
	Items         string
	Success       bool
	CreatedAt     time.Time
}

// Journal keeps a panel-side record of purchase attempts and invoices.
type Journal interface {
	RecordPurchase(ctx context.Context, p PurchaseRecord) error
	RecordInvoice(ctx context.Context, inv InvoiceRecord) error
	ListPurchases(ctx context.Context, limit int) ([]PurchaseRecord, error)
	ListInvoices(ctx context.Context, limit int) ([]InvoiceRecord, error)
}

type sqliteJournal struct{ db *sql.DB }

func NewSQLiteJournal(db *sql.DB) Journal { return &sqliteJournal{db: db} }

func (j *sqliteJournal) RecordPurchase(ctx context.Context, p PurchaseRecord) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO purchases(session_id, panel, restaurant, payment_method, units, subtotal,
		                      discount_pct, discount, total, success, error_category, items, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SessionID, string(p.Panel), p.Restaurant, p.PaymentMethod, p.Units, p.Subtotal,
		p.DiscountPercent, p.Discount, p.Total, p.Success, p.ErrorCategory, p.Items, p.CreatedAt.Unix())
	return err
}

func (j *sqliteJournal) RecordInvoice(ctx context.Context, inv InvoiceRecord) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO invoices(target_id, target_name, amount, payment_method, items, success, created_unix)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.TargetID, inv.TargetName, inv.Amount, inv.PaymentMethod, inv.Items, inv.Success, inv.CreatedAt.Unix())
	return err
}

// ListPurchases returns the newest records first.
func (j *sqliteJournal) ListPurchases(ctx context.Context, limit int) ([]PurchaseRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, panel, restaurant, payment_method, units, subtotal,
		       discount_pct, discount, total, success, error_category, items, created_unix
		FROM purchases ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PurchaseRecord
	for rows.Next() {
		var p PurchaseRecord
		var panel string
		var created int64
		if err := rows.Scan(&p.ID, &p.SessionID, &panel, &p.Restaurant, &p.PaymentMethod, &p.Units,
			&p.Subtotal, &p.DiscountPercent, &p.Discount, &p.Total, &p.Success, &p.ErrorCategory,
			&p.Items, &created); err != nil {
			return nil, err
		}
		p.Panel = Kind(panel)
		p.CreatedAt = time.Unix(created, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (j *sqliteJournal) ListInvoices(ctx context.Context, limit int) ([]InvoiceRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, target_id, target_name, amount, payment_method, items, success, created_unix
		FROM invoices ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InvoiceRecord
	for rows.Next() {
		var inv InvoiceRecord
		var created int64
		if err := rows.Scan(&inv.ID, &inv.TargetID, &inv.TargetName, &inv.Amount, &inv.PaymentMethod,
			&inv.Items, &inv.Success, &created); err != nil {
			return nil, err
		}
		inv.CreatedAt = time.Unix(created, 0)
		out = append(out, inv)
	}
	return out, rows.Err()
}
