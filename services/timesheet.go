package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rizwana27/psa/db"
)

type TimesheetService struct {
	PG *sql.DB
}

func NewTimesheetService(pg *sql.DB) *TimesheetService {
	return &TimesheetService{PG: pg}
}

// CreateEntry records a day's hours against a project
func (s *TimesheetService) CreateEntry(req db.CreateTimesheetEntryRequest) (db.TimesheetEntry, error) {
	entry := db.TimesheetEntry{
		ID:         uuid.New().String(),
		ResourceID: req.ResourceID,
		ProjectID:  req.ProjectID,
		Date:       req.Date,
		Hours:      req.Hours,
		Billable:   req.Billable,
		Notes:      req.Notes,
		Status:     db.TimesheetStatusDraft,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	if entry.Hours < 0 {
		return entry, fmt.Errorf("%w: hours must be non-negative", ErrInvalidInput)
	}

	_, err := s.PG.Exec(`
		INSERT INTO timesheet_entries (id, resource_id, project_id, date, hours, billable, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, entry.ID, entry.ResourceID, entry.ProjectID, entry.Date, entry.Hours,
		entry.Billable, entry.Notes, entry.Status, entry.CreatedAt, entry.UpdatedAt)

	if err != nil {
		return entry, fmt.Errorf("failed to create timesheet entry: %w", err)
	}

	return entry, nil
}

// GetEntry returns a specific timesheet entry by ID
func (s *TimesheetService) GetEntry(entryID string) (db.TimesheetEntry, error) {
	var entry db.TimesheetEntry

	err := s.PG.QueryRow(`
		SELECT t.id, t.resource_id, t.project_id, t.date, t.hours, t.billable,
		       COALESCE(t.notes, '') as notes, t.status, t.created_at, t.updated_at,
		       r.name as resource_name, p.name as project_name
		FROM timesheet_entries t
		LEFT JOIN resources r ON t.resource_id = r.id
		LEFT JOIN projects p ON t.project_id = p.id
		WHERE t.id = $1
	`, entryID).Scan(
		&entry.ID, &entry.ResourceID, &entry.ProjectID, &entry.Date, &entry.Hours,
		&entry.Billable, &entry.Notes, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt,
		&entry.ResourceName, &entry.ProjectName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return entry, ErrNotFound
		}
		return entry, fmt.Errorf("failed to get timesheet entry: %w", err)
	}

	return entry, nil
}

// ListEntries returns timesheet entries, optionally filtered by resource,
// project, status or date range
func (s *TimesheetService) ListEntries(filters map[string]interface{}) ([]db.TimesheetEntry, error) {
	query := `
		SELECT t.id, t.resource_id, t.project_id, t.date, t.hours, t.billable,
		       COALESCE(t.notes, '') as notes, t.status, t.created_at, t.updated_at,
		       r.name as resource_name, p.name as project_name
		FROM timesheet_entries t
		LEFT JOIN resources r ON t.resource_id = r.id
		LEFT JOIN projects p ON t.project_id = p.id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if resourceID, ok := filters["resource_id"].(string); ok && resourceID != "" {
		query += fmt.Sprintf(" AND t.resource_id = $%d", argIndex)
		args = append(args, resourceID)
		argIndex++
	}

	if projectID, ok := filters["project_id"].(string); ok && projectID != "" {
		query += fmt.Sprintf(" AND t.project_id = $%d", argIndex)
		args = append(args, projectID)
		argIndex++
	}

	if status, ok := filters["status"].(string); ok && status != "" {
		query += fmt.Sprintf(" AND t.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	if from, ok := filters["from"].(time.Time); ok && !from.IsZero() {
		query += fmt.Sprintf(" AND t.date >= $%d", argIndex)
		args = append(args, from)
		argIndex++
	}

	if to, ok := filters["to"].(time.Time); ok && !to.IsZero() {
		query += fmt.Sprintf(" AND t.date <= $%d", argIndex)
		args = append(args, to)
		argIndex++
	}

	query += " ORDER BY t.date DESC, r.name"

	rows, err := s.PG.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []db.TimesheetEntry
	for rows.Next() {
		var entry db.TimesheetEntry
		err := rows.Scan(
			&entry.ID, &entry.ResourceID, &entry.ProjectID, &entry.Date, &entry.Hours,
			&entry.Billable, &entry.Notes, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt,
			&entry.ResourceName, &entry.ProjectName,
		)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// ListEntriesInWindow returns all entries with dates inside [from, to).
// This is the feed for the utilization engine, so no status filtering is
// applied here.
func (s *TimesheetService) ListEntriesInWindow(from, to time.Time) ([]db.TimesheetEntry, error) {
	rows, err := s.PG.Query(`
		SELECT id, resource_id, project_id, date, hours, billable,
		       COALESCE(notes, '') as notes, status, created_at, updated_at
		FROM timesheet_entries
		WHERE date >= $1 AND date < $2
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries in window: %w", err)
	}
	defer rows.Close()

	var entries []db.TimesheetEntry
	for rows.Next() {
		var entry db.TimesheetEntry
		err := rows.Scan(
			&entry.ID, &entry.ResourceID, &entry.ProjectID, &entry.Date, &entry.Hours,
			&entry.Billable, &entry.Notes, &entry.Status, &entry.CreatedAt, &entry.UpdatedAt,
		)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// SubmitEntry moves a draft entry to submitted
func (s *TimesheetService) SubmitEntry(entryID string) (db.TimesheetEntry, error) {
	return s.transition(entryID, db.TimesheetStatusDraft, db.TimesheetStatusSubmitted)
}

// ApproveEntry moves a submitted entry to approved. Approved entries are
// immutable.
func (s *TimesheetService) ApproveEntry(entryID string) (db.TimesheetEntry, error) {
	return s.transition(entryID, db.TimesheetStatusSubmitted, db.TimesheetStatusApproved)
}

// RejectEntry moves a submitted entry back to rejected
func (s *TimesheetService) RejectEntry(entryID string) (db.TimesheetEntry, error) {
	return s.transition(entryID, db.TimesheetStatusSubmitted, db.TimesheetStatusRejected)
}

func (s *TimesheetService) transition(entryID, fromStatus, toStatus string) (db.TimesheetEntry, error) {
	result, err := s.PG.Exec(`
		UPDATE timesheet_entries SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, entryID, fromStatus, toStatus, time.Now())

	if err != nil {
		return db.TimesheetEntry{}, fmt.Errorf("failed to update timesheet status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		// Either the entry doesn't exist or it isn't in the expected state
		if _, err := s.GetEntry(entryID); err != nil {
			return db.TimesheetEntry{}, err
		}
		return db.TimesheetEntry{}, fmt.Errorf("%w: entry is not in %s state", ErrInvalidInput, fromStatus)
	}

	return s.GetEntry(entryID)
}

// DeleteEntry removes a draft entry. Submitted or approved entries cannot
// be deleted.
func (s *TimesheetService) DeleteEntry(entryID string) error {
	result, err := s.PG.Exec(`
		DELETE FROM timesheet_entries WHERE id = $1 AND status = $2
	`, entryID, db.TimesheetStatusDraft)

	if err != nil {
		return fmt.Errorf("failed to delete timesheet entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		if _, err := s.GetEntry(entryID); err != nil {
			return err
		}
		return fmt.Errorf("%w: only draft entries can be deleted", ErrInvalidInput)
	}

	return nil
}
