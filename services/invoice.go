package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rizwana27/psa/db"
)

type InvoiceService struct {
	PG *sql.DB
}

func NewInvoiceService(pg *sql.DB) *InvoiceService {
	return &InvoiceService{PG: pg}
}

// OverdueInvoice is the snapshot consumed by the invoice overdue rule.
type OverdueInvoice struct {
	InvoiceID     string  `json:"invoice_id"`
	InvoiceNumber string  `json:"invoice_number"`
	ClientName    string  `json:"client_name"`
	Amount        float64 `json:"amount"`
	DaysOverdue   int     `json:"days_overdue"`
}

// CreateInvoice creates a new invoice
func (s *InvoiceService) CreateInvoice(req db.CreateInvoiceRequest, createdBy string) (db.Invoice, error) {
	invoice := db.Invoice{
		ID:            uuid.New().String(),
		InvoiceNumber: req.InvoiceNumber,
		ClientID:      req.ClientID,
		ProjectID:     req.ProjectID,
		Amount:        req.Amount,
		Status:        db.InvoiceStatusDraft,
		IssuedAt:      req.IssuedAt,
		DueDate:       req.DueDate,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
		CreatedBy:     createdBy,
	}

	_, err := s.PG.Exec(`
		INSERT INTO invoices (id, invoice_number, client_id, project_id, amount, status,
						  issued_at, due_date, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, invoice.ID, invoice.InvoiceNumber, invoice.ClientID, nullIfEmptyStr(invoice.ProjectID),
		invoice.Amount, invoice.Status, invoice.IssuedAt, invoice.DueDate,
		invoice.CreatedAt, invoice.UpdatedAt, nullIfEmptyStr(invoice.CreatedBy))

	if err != nil {
		return invoice, fmt.Errorf("failed to create invoice: %w", err)
	}

	return invoice, nil
}

// GetInvoice returns a specific invoice by ID
func (s *InvoiceService) GetInvoice(invoiceID string) (db.Invoice, error) {
	var invoice db.Invoice
	var projectID sql.NullString
	var issuedAt, dueDate, paidAt sql.NullTime
	var projectName sql.NullString

	err := s.PG.QueryRow(`
		SELECT i.id, i.invoice_number, i.client_id, i.project_id, i.amount, i.status,
		       i.issued_at, i.due_date, i.paid_at, i.created_at, i.updated_at,
		       COALESCE(i.created_by, '') as created_by,
		       c.name as client_name, p.name as project_name
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		LEFT JOIN projects p ON i.project_id = p.id
		WHERE i.id = $1
	`, invoiceID).Scan(
		&invoice.ID, &invoice.InvoiceNumber, &invoice.ClientID, &projectID,
		&invoice.Amount, &invoice.Status, &issuedAt, &dueDate, &paidAt,
		&invoice.CreatedAt, &invoice.UpdatedAt, &invoice.CreatedBy,
		&invoice.ClientName, &projectName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return invoice, ErrNotFound
		}
		return invoice, fmt.Errorf("failed to get invoice: %w", err)
	}

	if projectID.Valid {
		invoice.ProjectID = projectID.String
	}
	if projectName.Valid {
		invoice.ProjectName = projectName.String
	}
	if issuedAt.Valid {
		invoice.IssuedAt = &issuedAt.Time
	}
	if dueDate.Valid {
		invoice.DueDate = &dueDate.Time
	}
	if paidAt.Valid {
		invoice.PaidAt = &paidAt.Time
	}

	return invoice, nil
}

// ListInvoices returns invoices, optionally filtered by client, project or status
func (s *InvoiceService) ListInvoices(filters map[string]interface{}) ([]db.Invoice, error) {
	query := `
		SELECT i.id, i.invoice_number, i.client_id, i.project_id, i.amount, i.status,
		       i.issued_at, i.due_date, i.paid_at, i.created_at, i.updated_at,
		       COALESCE(i.created_by, '') as created_by,
		       c.name as client_name, p.name as project_name
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		LEFT JOIN projects p ON i.project_id = p.id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if clientID, ok := filters["client_id"].(string); ok && clientID != "" {
		query += fmt.Sprintf(" AND i.client_id = $%d", argIndex)
		args = append(args, clientID)
		argIndex++
	}

	if projectID, ok := filters["project_id"].(string); ok && projectID != "" {
		query += fmt.Sprintf(" AND i.project_id = $%d", argIndex)
		args = append(args, projectID)
		argIndex++
	}

	if status, ok := filters["status"].(string); ok && status != "" {
		query += fmt.Sprintf(" AND i.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += " ORDER BY i.created_at DESC"

	rows, err := s.PG.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []db.Invoice
	for rows.Next() {
		var invoice db.Invoice
		var projectID, projectName sql.NullString
		var issuedAt, dueDate, paidAt sql.NullTime

		err := rows.Scan(
			&invoice.ID, &invoice.InvoiceNumber, &invoice.ClientID, &projectID,
			&invoice.Amount, &invoice.Status, &issuedAt, &dueDate, &paidAt,
			&invoice.CreatedAt, &invoice.UpdatedAt, &invoice.CreatedBy,
			&invoice.ClientName, &projectName,
		)
		if err != nil {
			continue
		}

		if projectID.Valid {
			invoice.ProjectID = projectID.String
		}
		if projectName.Valid {
			invoice.ProjectName = projectName.String
		}
		if issuedAt.Valid {
			invoice.IssuedAt = &issuedAt.Time
		}
		if dueDate.Valid {
			invoice.DueDate = &dueDate.Time
		}
		if paidAt.Valid {
			invoice.PaidAt = &paidAt.Time
		}

		invoices = append(invoices, invoice)
	}

	return invoices, nil
}

// UpdateInvoice updates an existing invoice
func (s *InvoiceService) UpdateInvoice(invoiceID string, req db.UpdateInvoiceRequest) (db.Invoice, error) {
	invoice, err := s.GetInvoice(invoiceID)
	if err != nil {
		return invoice, err
	}

	if invoice.Status == db.InvoiceStatusPaid || invoice.Status == db.InvoiceStatusVoid {
		return invoice, fmt.Errorf("%w: %s invoices cannot be modified", ErrInvalidInput, invoice.Status)
	}

	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.Status != nil {
		invoice.Status = *req.Status
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}
	if req.PaidAt != nil {
		invoice.PaidAt = req.PaidAt
	}

	invoice.UpdatedAt = time.Now()

	_, err = s.PG.Exec(`
		UPDATE invoices
		SET amount = $2, status = $3, due_date = $4, paid_at = $5, updated_at = $6
		WHERE id = $1
	`, invoiceID, invoice.Amount, invoice.Status, invoice.DueDate, invoice.PaidAt,
		invoice.UpdatedAt)

	if err != nil {
		return invoice, fmt.Errorf("failed to update invoice: %w", err)
	}

	return invoice, nil
}

// SendInvoice marks a draft invoice as sent and stamps the issue date
func (s *InvoiceService) SendInvoice(invoiceID string) (db.Invoice, error) {
	now := time.Now()
	result, err := s.PG.Exec(`
		UPDATE invoices SET status = $2, issued_at = COALESCE(issued_at, $3), updated_at = $3
		WHERE id = $1 AND status = $4
	`, invoiceID, db.InvoiceStatusSent, now, db.InvoiceStatusDraft)

	if err != nil {
		return db.Invoice{}, fmt.Errorf("failed to send invoice: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		if _, err := s.GetInvoice(invoiceID); err != nil {
			return db.Invoice{}, err
		}
		return db.Invoice{}, fmt.Errorf("%w: only draft invoices can be sent", ErrInvalidInput)
	}

	return s.GetInvoice(invoiceID)
}

// MarkPaid records payment against an invoice
func (s *InvoiceService) MarkPaid(invoiceID string) (db.Invoice, error) {
	now := time.Now()
	result, err := s.PG.Exec(`
		UPDATE invoices SET status = $2, paid_at = $3, updated_at = $3
		WHERE id = $1 AND status IN ($4, $5)
	`, invoiceID, db.InvoiceStatusPaid, now, db.InvoiceStatusSent, db.InvoiceStatusOverdue)

	if err != nil {
		return db.Invoice{}, fmt.Errorf("failed to mark invoice paid: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		if _, err := s.GetInvoice(invoiceID); err != nil {
			return db.Invoice{}, err
		}
		return db.Invoice{}, fmt.Errorf("%w: invoice is not payable in its current state", ErrInvalidInput)
	}

	return s.GetInvoice(invoiceID)
}

// ListOverdue returns unpaid invoices past their due date, with days
// overdue computed in the database. Also used by the evaluation worker.
func (s *InvoiceService) ListOverdue() ([]OverdueInvoice, error) {
	rows, err := s.PG.Query(`
		SELECT i.id, i.invoice_number, COALESCE(c.name, '') as client_name, i.amount,
		       GREATEST(0, EXTRACT(DAY FROM NOW() - i.due_date))::int as days_overdue
		FROM invoices i
		LEFT JOIN clients c ON i.client_id = c.id
		WHERE i.status IN ($1, $2)
		AND i.due_date IS NOT NULL
		AND i.due_date < NOW()
		ORDER BY days_overdue DESC
	`, db.InvoiceStatusSent, db.InvoiceStatusOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue invoices: %w", err)
	}
	defer rows.Close()

	var overdue []OverdueInvoice
	for rows.Next() {
		var o OverdueInvoice
		if err := rows.Scan(&o.InvoiceID, &o.InvoiceNumber, &o.ClientName, &o.Amount, &o.DaysOverdue); err != nil {
			continue
		}
		overdue = append(overdue, o)
	}

	return overdue, nil
}

// FlagOverdue transitions sent invoices past their due date to overdue.
// Called periodically by the evaluation worker.
func (s *InvoiceService) FlagOverdue() (int64, error) {
	result, err := s.PG.Exec(`
		UPDATE invoices SET status = $1, updated_at = NOW()
		WHERE status = $2 AND due_date IS NOT NULL AND due_date < NOW()
	`, db.InvoiceStatusOverdue, db.InvoiceStatusSent)

	if err != nil {
		return 0, fmt.Errorf("failed to flag overdue invoices: %w", err)
	}

	return result.RowsAffected()
}
