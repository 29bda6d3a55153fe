package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rizwana27/psa/db"
)

type VendorService struct {
	PG *sql.DB
}

func NewVendorService(pg *sql.DB) *VendorService {
	return &VendorService{PG: pg}
}

// CreateVendor creates a new vendor
func (s *VendorService) CreateVendor(req db.CreateVendorRequest, createdBy string) (db.Vendor, error) {
	vendor := db.Vendor{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Category:    req.Category,
		ContactName: req.ContactName,
		Email:       req.Email,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		CreatedBy:   createdBy,
	}

	_, err := s.PG.Exec(`
		INSERT INTO vendors (id, name, category, contact_name, email, is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, vendor.ID, vendor.Name, vendor.Category, vendor.ContactName, vendor.Email,
		vendor.IsActive, vendor.CreatedAt, vendor.UpdatedAt, nullIfEmptyStr(vendor.CreatedBy))

	if err != nil {
		return vendor, fmt.Errorf("failed to create vendor: %w", err)
	}

	return vendor, nil
}

// GetVendor returns a specific vendor by ID
func (s *VendorService) GetVendor(vendorID string) (db.Vendor, error) {
	var vendor db.Vendor

	err := s.PG.QueryRow(`
		SELECT id, name, COALESCE(category, '') as category,
		       COALESCE(contact_name, '') as contact_name,
		       COALESCE(email, '') as email, is_active, created_at, updated_at,
		       COALESCE(created_by, '') as created_by
		FROM vendors
		WHERE id = $1
	`, vendorID).Scan(
		&vendor.ID, &vendor.Name, &vendor.Category, &vendor.ContactName,
		&vendor.Email, &vendor.IsActive, &vendor.CreatedAt, &vendor.UpdatedAt,
		&vendor.CreatedBy,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return vendor, ErrNotFound
		}
		return vendor, fmt.Errorf("failed to get vendor: %w", err)
	}

	return vendor, nil
}

// ListVendors returns all active vendors, optionally filtered by category
func (s *VendorService) ListVendors(category string) ([]db.Vendor, error) {
	query := `
		SELECT id, name, COALESCE(category, '') as category,
		       COALESCE(contact_name, '') as contact_name,
		       COALESCE(email, '') as email, is_active, created_at, updated_at,
		       COALESCE(created_by, '') as created_by
		FROM vendors
		WHERE is_active = true
	`
	args := []interface{}{}

	if category != "" {
		query += " AND category = $1"
		args = append(args, category)
	}

	query += " ORDER BY name ASC"

	rows, err := s.PG.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []db.Vendor
	for rows.Next() {
		var vendor db.Vendor
		err := rows.Scan(
			&vendor.ID, &vendor.Name, &vendor.Category, &vendor.ContactName,
			&vendor.Email, &vendor.IsActive, &vendor.CreatedAt, &vendor.UpdatedAt,
			&vendor.CreatedBy,
		)
		if err != nil {
			continue
		}
		vendors = append(vendors, vendor)
	}

	return vendors, nil
}

// UpdateVendor updates an existing vendor
func (s *VendorService) UpdateVendor(vendorID string, req db.UpdateVendorRequest) (db.Vendor, error) {
	vendor, err := s.GetVendor(vendorID)
	if err != nil {
		return vendor, err
	}

	if req.Name != nil {
		vendor.Name = *req.Name
	}
	if req.Category != nil {
		vendor.Category = *req.Category
	}
	if req.ContactName != nil {
		vendor.ContactName = *req.ContactName
	}
	if req.Email != nil {
		vendor.Email = *req.Email
	}
	if req.IsActive != nil {
		vendor.IsActive = *req.IsActive
	}

	vendor.UpdatedAt = time.Now()

	_, err = s.PG.Exec(`
		UPDATE vendors
		SET name = $2, category = $3, contact_name = $4, email = $5, is_active = $6, updated_at = $7
		WHERE id = $1
	`, vendorID, vendor.Name, vendor.Category, vendor.ContactName, vendor.Email,
		vendor.IsActive, vendor.UpdatedAt)

	if err != nil {
		return vendor, fmt.Errorf("failed to update vendor: %w", err)
	}

	return vendor, nil
}

// DeleteVendor soft deletes a vendor
func (s *VendorService) DeleteVendor(vendorID string) error {
	result, err := s.PG.Exec(`
		UPDATE vendors SET is_active = false, updated_at = $1 WHERE id = $2
	`, time.Now(), vendorID)

	if err != nil {
		return fmt.Errorf("failed to delete vendor: %w", err)
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
