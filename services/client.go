package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rizwana27/psa/db"
)

type ClientService struct {
	PG *sql.DB
}

func NewClientService(pg *sql.DB) *ClientService {
	return &ClientService{PG: pg}
}

// CreateClient creates a new client account
func (s *ClientService) CreateClient(req db.CreateClientRequest, createdBy string) (db.Client, error) {
	client := db.Client{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Industry:    req.Industry,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Status:      req.Status,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		CreatedBy:   createdBy,
	}
	if client.Status == "" {
		client.Status = "active"
	}

	_, err := s.PG.Exec(`
		INSERT INTO clients (id, name, industry, contact_name, email, phone, status,
						 is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, client.ID, client.Name, client.Industry, client.ContactName, client.Email,
		client.Phone, client.Status, client.IsActive, client.CreatedAt,
		client.UpdatedAt, nullIfEmptyStr(client.CreatedBy))

	if err != nil {
		return client, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// nullIfEmptyStr returns nil if string is empty, otherwise returns the string
func nullIfEmptyStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// GetClient returns a specific client by ID
func (s *ClientService) GetClient(clientID string) (db.Client, error) {
	var client db.Client

	err := s.PG.QueryRow(`
		SELECT c.id, c.name, COALESCE(c.industry, '') as industry,
		       COALESCE(c.contact_name, '') as contact_name,
		       COALESCE(c.email, '') as email, COALESCE(c.phone, '') as phone,
		       c.status, c.is_active, c.created_at, c.updated_at,
		       COALESCE(c.created_by, '') as created_by,
		       (SELECT COUNT(*) FROM projects p WHERE p.client_id = c.id AND p.is_active = true) as project_count
		FROM clients c
		WHERE c.id = $1
	`, clientID).Scan(
		&client.ID, &client.Name, &client.Industry, &client.ContactName,
		&client.Email, &client.Phone, &client.Status, &client.IsActive,
		&client.CreatedAt, &client.UpdatedAt, &client.CreatedBy, &client.ProjectCount,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return client, ErrNotFound
		}
		return client, fmt.Errorf("failed to get client: %w", err)
	}

	return client, nil
}

// ListClients returns clients, optionally filtered by status or search text
func (s *ClientService) ListClients(filters map[string]interface{}) ([]db.Client, error) {
	query := `
		SELECT c.id, c.name, COALESCE(c.industry, '') as industry,
		       COALESCE(c.contact_name, '') as contact_name,
		       COALESCE(c.email, '') as email, COALESCE(c.phone, '') as phone,
		       c.status, c.is_active, c.created_at, c.updated_at,
		       COALESCE(c.created_by, '') as created_by
		FROM clients c
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	// Default to showing only active clients unless explicitly set to false
	if isActive, ok := filters["is_active"].(bool); ok {
		query += fmt.Sprintf(" AND c.is_active = $%d", argIndex)
		args = append(args, isActive)
		argIndex++
	} else {
		query += " AND c.is_active = true"
	}

	if status, ok := filters["status"].(string); ok && status != "" {
		query += fmt.Sprintf(" AND c.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	if search, ok := filters["search"].(string); ok && search != "" {
		query += fmt.Sprintf(" AND (c.name ILIKE $%d OR c.contact_name ILIKE $%d)", argIndex, argIndex+1)
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
		argIndex += 2
	}

	query += " ORDER BY c.name ASC"

	rows, err := s.PG.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []db.Client
	for rows.Next() {
		var client db.Client
		err := rows.Scan(
			&client.ID, &client.Name, &client.Industry, &client.ContactName,
			&client.Email, &client.Phone, &client.Status, &client.IsActive,
			&client.CreatedAt, &client.UpdatedAt, &client.CreatedBy,
		)
		if err != nil {
			continue
		}
		clients = append(clients, client)
	}

	return clients, nil
}

// UpdateClient updates an existing client
func (s *ClientService) UpdateClient(clientID string, req db.UpdateClientRequest) (db.Client, error) {
	client, err := s.GetClient(clientID)
	if err != nil {
		return client, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Industry != nil {
		client.Industry = *req.Industry
	}
	if req.ContactName != nil {
		client.ContactName = *req.ContactName
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	client.UpdatedAt = time.Now()

	_, err = s.PG.Exec(`
		UPDATE clients
		SET name = $2, industry = $3, contact_name = $4, email = $5, phone = $6,
		    status = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`, clientID, client.Name, client.Industry, client.ContactName, client.Email,
		client.Phone, client.Status, client.IsActive, client.UpdatedAt)

	if err != nil {
		return client, fmt.Errorf("failed to update client: %w", err)
	}

	return client, nil
}

// DeleteClient soft deletes a client
func (s *ClientService) DeleteClient(clientID string) error {
	result, err := s.PG.Exec(`
		UPDATE clients SET is_active = false, updated_at = $1 WHERE id = $2
	`, time.Now(), clientID)

	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
