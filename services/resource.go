package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rizwana27/psa/db"
)

type ResourceService struct {
	PG *sql.DB
}

func NewResourceService(pg *sql.DB) *ResourceService {
	return &ResourceService{PG: pg}
}

// CreateResource creates a new resource
func (s *ResourceService) CreateResource(req db.CreateResourceRequest, createdBy string) (db.Resource, error) {
	resource := db.Resource{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Department:   req.Department,
		Availability: req.Availability,
		HourlyRate:   req.HourlyRate,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
		CreatedBy:    createdBy,
	}
	// Full-time unless stated otherwise
	if resource.Availability == 0 {
		resource.Availability = 100
	}

	_, err := s.PG.Exec(`
		INSERT INTO resources (id, name, email, role, department, availability, hourly_rate,
						   is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, resource.ID, resource.Name, resource.Email, resource.Role, resource.Department,
		resource.Availability, resource.HourlyRate, resource.IsActive,
		resource.CreatedAt, resource.UpdatedAt, nullIfEmptyStr(resource.CreatedBy))

	if err != nil {
		return resource, fmt.Errorf("failed to create resource: %w", err)
	}

	return resource, nil
}

// GetResource returns a specific resource by ID
func (s *ResourceService) GetResource(resourceID string) (db.Resource, error) {
	var resource db.Resource

	err := s.PG.QueryRow(`
		SELECT id, name, COALESCE(email, '') as email, COALESCE(role, '') as role,
		       COALESCE(department, '') as department, availability, hourly_rate,
		       is_active, created_at, updated_at, COALESCE(created_by, '') as created_by
		FROM resources
		WHERE id = $1
	`, resourceID).Scan(
		&resource.ID, &resource.Name, &resource.Email, &resource.Role,
		&resource.Department, &resource.Availability, &resource.HourlyRate,
		&resource.IsActive, &resource.CreatedAt, &resource.UpdatedAt, &resource.CreatedBy,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return resource, ErrNotFound
		}
		return resource, fmt.Errorf("failed to get resource: %w", err)
	}

	return resource, nil
}

// ListResources returns resources, optionally filtered by department or role
func (s *ResourceService) ListResources(filters map[string]interface{}) ([]db.Resource, error) {
	query := `
		SELECT id, name, COALESCE(email, '') as email, COALESCE(role, '') as role,
		       COALESCE(department, '') as department, availability, hourly_rate,
		       is_active, created_at, updated_at, COALESCE(created_by, '') as created_by
		FROM resources
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if isActive, ok := filters["is_active"].(bool); ok {
		query += fmt.Sprintf(" AND is_active = $%d", argIndex)
		args = append(args, isActive)
		argIndex++
	} else {
		query += " AND is_active = true"
	}

	if department, ok := filters["department"].(string); ok && department != "" {
		query += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, department)
		argIndex++
	}

	if role, ok := filters["role"].(string); ok && role != "" {
		query += fmt.Sprintf(" AND role = $%d", argIndex)
		args = append(args, role)
		argIndex++
	}

	query += " ORDER BY name ASC"

	rows, err := s.PG.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []db.Resource
	for rows.Next() {
		var resource db.Resource
		err := rows.Scan(
			&resource.ID, &resource.Name, &resource.Email, &resource.Role,
			&resource.Department, &resource.Availability, &resource.HourlyRate,
			&resource.IsActive, &resource.CreatedAt, &resource.UpdatedAt, &resource.CreatedBy,
		)
		if err != nil {
			continue
		}
		resources = append(resources, resource)
	}

	return resources, nil
}

// ListAllResources returns every resource row including inactive ones.
// The aggregation engine does its own active filtering and malformed-row
// accounting, so it wants the unfiltered set.
func (s *ResourceService) ListAllResources() ([]db.Resource, error) {
	rows, err := s.PG.Query(`
		SELECT id, name, COALESCE(email, '') as email, COALESCE(role, '') as role,
		       COALESCE(department, '') as department, availability, hourly_rate,
		       is_active, created_at, updated_at, COALESCE(created_by, '') as created_by
		FROM resources
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []db.Resource
	for rows.Next() {
		var resource db.Resource
		err := rows.Scan(
			&resource.ID, &resource.Name, &resource.Email, &resource.Role,
			&resource.Department, &resource.Availability, &resource.HourlyRate,
			&resource.IsActive, &resource.CreatedAt, &resource.UpdatedAt, &resource.CreatedBy,
		)
		if err != nil {
			continue
		}
		resources = append(resources, resource)
	}

	return resources, nil
}

// UpdateResource updates an existing resource
func (s *ResourceService) UpdateResource(resourceID string, req db.UpdateResourceRequest) (db.Resource, error) {
	resource, err := s.GetResource(resourceID)
	if err != nil {
		return resource, err
	}

	if req.Name != nil {
		resource.Name = *req.Name
	}
	if req.Email != nil {
		resource.Email = *req.Email
	}
	if req.Role != nil {
		resource.Role = *req.Role
	}
	if req.Department != nil {
		resource.Department = *req.Department
	}
	if req.Availability != nil {
		resource.Availability = *req.Availability
	}
	if req.HourlyRate != nil {
		resource.HourlyRate = *req.HourlyRate
	}
	if req.IsActive != nil {
		resource.IsActive = *req.IsActive
	}

	resource.UpdatedAt = time.Now()

	_, err = s.PG.Exec(`
		UPDATE resources
		SET name = $2, email = $3, role = $4, department = $5, availability = $6,
		    hourly_rate = $7, is_active = $8, updated_at = $9
		WHERE id = $1
	`, resourceID, resource.Name, resource.Email, resource.Role, resource.Department,
		resource.Availability, resource.HourlyRate, resource.IsActive, resource.UpdatedAt)

	if err != nil {
		return resource, fmt.Errorf("failed to update resource: %w", err)
	}

	return resource, nil
}

// DeleteResource soft deletes a resource
func (s *ResourceService) DeleteResource(resourceID string) error {
	result, err := s.PG.Exec(`
		UPDATE resources SET is_active = false, updated_at = $1 WHERE id = $2
	`, time.Now(), resourceID)

	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
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
