package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const invoiceColumns = `id, invoice_number, client_name, period_start, period_end, total_amount, notes, created_at`

// CreateInvoice persists a new invoice. numberFor receives the number of
// invoices already stored and returns the new invoice number; counting and
// inserting happen in the same transaction.
func (s *Store) CreateInvoice(numberFor func(existing int) string, p InvoiceParams) (*Invoice, error) {
	var id int64
	err := s.withTx(func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&count); err != nil {
			return fmt.Errorf("count invoices: %w", err)
		}
		number := numberFor(count)
		res, err := tx.Exec(
			`INSERT INTO invoices (invoice_number, client_name, period_start, period_end, total_amount, notes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			number, strings.TrimSpace(p.ClientName), formatTime(p.PeriodStart), formatTime(p.PeriodEnd),
			p.TotalAmount.String(), strings.TrimSpace(p.Notes), formatTime(time.Now()),
		)
		if err != nil {
			return fmt.Errorf("insert invoice %s: %w", number, err)
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetInvoice(id)
}

func (s *Store) GetInvoice(id int64) (*Invoice, error) {
	row := s.db.QueryRow(`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invoice %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice %d: %w", id, err)
	}
	return inv, nil
}

func (s *Store) ListInvoices() ([]Invoice, error) {
	rows, err := s.db.Query(`SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *Store) CountInvoices() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

func scanInvoice(sc scanner) (*Invoice, error) {
	inv := &Invoice{}
	var start, end, total, createdAt string
	err := sc.Scan(&inv.ID, &inv.Number, &inv.ClientName, &start, &end, &total, &inv.Notes, &createdAt)
	if err != nil {
		return nil, err
	}
	inv.PeriodStart = parseTime(start)
	inv.PeriodEnd = parseTime(end)
	inv.TotalAmount = parseDecimal(total)
	inv.CreatedAt = parseTime(createdAt)
	return inv, nil
}
