package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rizwana27/psa/db"
)

type ProjectService struct {
	PG *sql.DB
}

func NewProjectService(pg *sql.DB) *ProjectService {
	return &ProjectService{PG: pg}
}

// ProjectBudgetUsage is the per-project budget snapshot consumed by the
// budget alert rule.
type ProjectBudgetUsage struct {
	ProjectID  string  `json:"project_id"`
	Name       string  `json:"name"`
	Budget     float64 `json:"budget"`
	BudgetUsed float64 `json:"budget_used"`
}

// ProjectDeadline is the per-project deadline snapshot consumed by the
// deadline approaching rule.
type ProjectDeadline struct {
	ProjectID string    `json:"project_id"`
	Name      string    `json:"name"`
	EndDate   time.Time `json:"end_date"`
}

// CreateProject creates a new project for a client
func (s *ProjectService) CreateProject(req db.CreateProjectRequest, createdBy string) (db.Project, error) {
	project := db.Project{
		ID:          uuid.New().String(),
		ClientID:    req.ClientID,
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		CreatedBy:   createdBy,
	}
	if project.Status == "" {
		project.Status = db.ProjectStatusPlanning
	}

	_, err := s.PG.Exec(`
		INSERT INTO projects (id, client_id, name, description, status, budget, budget_used,
						  start_date, end_date, is_active, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $8, $9, $10, $11, $12)
	`, project.ID, project.ClientID, project.Name, project.Description, project.Status,
		project.Budget, project.StartDate, project.EndDate, project.IsActive,
		project.CreatedAt, project.UpdatedAt, nullIfEmptyStr(project.CreatedBy))

	if err != nil {
		return project, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// GetProject returns a specific project by ID
func (s *ProjectService) GetProject(projectID string) (db.Project, error) {
	var project db.Project
	var startDate, endDate sql.NullTime

	err := s.PG.QueryRow(`
		SELECT p.id, p.client_id, p.name, COALESCE(p.description, '') as description,
		       p.status, p.budget, p.budget_used, p.start_date, p.end_date,
		       p.is_active, p.created_at, p.updated_at, COALESCE(p.created_by, '') as created_by,
		       c.name as client_name
		FROM projects p
		LEFT JOIN clients c ON p.client_id = c.id
		WHERE p.id = $1
	`, projectID).Scan(
		&project.ID, &project.ClientID, &project.Name, &project.Description,
		&project.Status, &project.Budget, &project.BudgetUsed, &startDate, &endDate,
		&project.IsActive, &project.CreatedAt, &project.UpdatedAt, &project.CreatedBy,
		&project.ClientName,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return project, ErrNotFound
		}
		return project, fmt.Errorf("failed to get project: %w", err)
	}

	if startDate.Valid {
		project.StartDate = &startDate.Time
	}
	if endDate.Valid {
		project.EndDate = &endDate.Time
	}

	return project, nil
}

// ListProjects returns projects, optionally filtered by client or status
func (s *ProjectService) ListProjects(filters map[string]interface{}) ([]db.Project, error) {
	query := `
		SELECT p.id, p.client_id, p.name, COALESCE(p.description, '') as description,
		       p.status, p.budget, p.budget_used, p.start_date, p.end_date,
		       p.is_active, p.created_at, p.updated_at, COALESCE(p.created_by, '') as created_by,
		       c.name as client_name
		FROM projects p
		LEFT JOIN clients c ON p.client_id = c.id
		WHERE 1=1
	`
	args := []interface{}{}
	argIndex := 1

	if isActive, ok := filters["is_active"].(bool); ok {
		query += fmt.Sprintf(" AND p.is_active = $%d", argIndex)
		args = append(args, isActive)
		argIndex++
	} else {
		query += " AND p.is_active = true"
	}

	if clientID, ok := filters["client_id"].(string); ok && clientID != "" {
		query += fmt.Sprintf(" AND p.client_id = $%d", argIndex)
		args = append(args, clientID)
		argIndex++
	}

	if status, ok := filters["status"].(string); ok && status != "" {
		query += fmt.Sprintf(" AND p.status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	if search, ok := filters["search"].(string); ok && search != "" {
		query += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex+1)
		searchPattern := "%" + search + "%"
		args = append(args, searchPattern, searchPattern)
		argIndex += 2
	}

	query += " ORDER BY c.name, p.name"

	rows, err := s.PG.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []db.Project
	for rows.Next() {
		var project db.Project
		var startDate, endDate sql.NullTime

		err := rows.Scan(
			&project.ID, &project.ClientID, &project.Name, &project.Description,
			&project.Status, &project.Budget, &project.BudgetUsed, &startDate, &endDate,
			&project.IsActive, &project.CreatedAt, &project.UpdatedAt, &project.CreatedBy,
			&project.ClientName,
		)
		if err != nil {
			continue
		}

		if startDate.Valid {
			project.StartDate = &startDate.Time
		}
		if endDate.Valid {
			project.EndDate = &endDate.Time
		}

		projects = append(projects, project)
	}

	return projects, nil
}

// UpdateProject updates an existing project
func (s *ProjectService) UpdateProject(projectID string, req db.UpdateProjectRequest) (db.Project, error) {
	project, err := s.GetProject(projectID)
	if err != nil {
		return project, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = *req.Status
	}
	if req.Budget != nil {
		project.Budget = *req.Budget
	}
	if req.BudgetUsed != nil {
		project.BudgetUsed = *req.BudgetUsed
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	project.UpdatedAt = time.Now()

	_, err = s.PG.Exec(`
		UPDATE projects
		SET name = $2, description = $3, status = $4, budget = $5, budget_used = $6,
		    start_date = $7, end_date = $8, is_active = $9, updated_at = $10
		WHERE id = $1
	`, projectID, project.Name, project.Description, project.Status, project.Budget,
		project.BudgetUsed, project.StartDate, project.EndDate, project.IsActive,
		project.UpdatedAt)

	if err != nil {
		return project, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject soft deletes a project
func (s *ProjectService) DeleteProject(projectID string) error {
	result, err := s.PG.Exec(`
		UPDATE projects SET is_active = false, updated_at = $1 WHERE id = $2
	`, time.Now(), projectID)

	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
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

// AddBudgetUsed increments a project's consumed budget. Used when an
// approved timesheet entry or an invoice is posted against the project.
func (s *ProjectService) AddBudgetUsed(projectID string, amount float64) error {
	result, err := s.PG.Exec(`
		UPDATE projects SET budget_used = budget_used + $2, updated_at = $3 WHERE id = $1
	`, projectID, amount, time.Now())

	if err != nil {
		return fmt.Errorf("failed to add budget used: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// ListBudgetUsage returns budget snapshots for all active projects that
// have a non-zero budget.
func (s *ProjectService) ListBudgetUsage() ([]ProjectBudgetUsage, error) {
	rows, err := s.PG.Query(`
		SELECT id, name, budget, budget_used
		FROM projects
		WHERE is_active = true AND status IN ($1, $2) AND budget > 0
	`, db.ProjectStatusActive, db.ProjectStatusOnHold)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget usage: %w", err)
	}
	defer rows.Close()

	var usages []ProjectBudgetUsage
	for rows.Next() {
		var u ProjectBudgetUsage
		if err := rows.Scan(&u.ProjectID, &u.Name, &u.Budget, &u.BudgetUsed); err != nil {
			continue
		}
		usages = append(usages, u)
	}

	return usages, nil
}

// ListApproachingDeadlines returns active projects whose end date falls
// within the next `withinDays` days.
func (s *ProjectService) ListApproachingDeadlines(withinDays int) ([]ProjectDeadline, error) {
	rows, err := s.PG.Query(`
		SELECT id, name, end_date
		FROM projects
		WHERE is_active = true AND status = $1
		AND end_date IS NOT NULL
		AND end_date > NOW()
		AND end_date <= NOW() + ($2 || ' days')::interval
		ORDER BY end_date ASC
	`, db.ProjectStatusActive, withinDays)
	if err != nil {
		return nil, fmt.Errorf("failed to list approaching deadlines: %w", err)
	}
	defer rows.Close()

	var deadlines []ProjectDeadline
	for rows.Next() {
		var d ProjectDeadline
		if err := rows.Scan(&d.ProjectID, &d.Name, &d.EndDate); err != nil {
			continue
		}
		deadlines = append(deadlines, d)
	}

	return deadlines, nil
}
