package db

import "time"

// ===========================
// CLIENT / VENDOR MODELS
// ===========================

// Client represents a customer account that projects are billed against
type Client struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Industry    string    `json:"industry,omitempty"`
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Status      string    `json:"status"` // active, inactive, prospect
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by,omitempty"`

	// For API responses
	ProjectCount int `json:"project_count,omitempty"`
}

// Vendor represents an external supplier/subcontractor
type Vendor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category,omitempty"` // staffing, software, consulting
	ContactName string    `json:"contact_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

type CreateClientRequest struct {
	Name        string `json:"name" binding:"required"`
	Industry    string `json:"industry"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Status      string `json:"status" binding:"omitempty,oneof=active inactive prospect"`
}

type UpdateClientRequest struct {
	Name        *string `json:"name,omitempty"`
	Industry    *string `json:"industry,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Status      *string `json:"status,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CreateVendorRequest struct {
	Name        string `json:"name" binding:"required"`
	Category    string `json:"category"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
}

type UpdateVendorRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	ContactName *string `json:"contact_name,omitempty"`
	Email       *string `json:"email,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ===========================
// PROJECT MODELS
// ===========================

// Project represents a client engagement with a budget and deadline
type Project struct {
	ID          string     `json:"id"`
	ClientID    string     `json:"client_id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"` // planning, active, on_hold, completed, cancelled
	Budget      float64    `json:"budget"`
	BudgetUsed  float64    `json:"budget_used"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"` // deadline
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedBy   string     `json:"created_by,omitempty"`

	// For API responses (populated via JOINs)
	ClientName string `json:"client_name,omitempty"`
}

type CreateProjectRequest struct {
	ClientID    string     `json:"client_id" binding:"required"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Budget      float64    `json:"budget" binding:"omitempty,min=0"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

type UpdateProjectRequest struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Budget      *float64   `json:"budget,omitempty"`
	BudgetUsed  *float64   `json:"budget_used,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}

// Project status constants
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// ===========================
// RESOURCE / TIMESHEET MODELS
// ===========================

// Resource represents a billable person with an expected capacity.
// Availability is a percentage of full-time capacity (0-100).
type Resource struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Role         string    `json:"role,omitempty"` // engineer, consultant, designer, pm
	Department   string    `json:"department,omitempty"`
	Availability float64   `json:"availability"` // 0-100
	HourlyRate   float64   `json:"hourly_rate,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	CreatedBy    string    `json:"created_by,omitempty"`
}

// TimesheetEntry is a single day's booked hours against a project.
// Entries are immutable once approved; aggregation treats them as read-only.
type TimesheetEntry struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	ProjectID  string    `json:"project_id"`
	Date       time.Time `json:"date"`
	Hours      float64   `json:"hours"`
	Billable   bool      `json:"billable"`
	Notes      string    `json:"notes,omitempty"`
	Status     string    `json:"status"` // draft, submitted, approved, rejected
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// For API responses (populated via JOINs)
	ResourceName string `json:"resource_name,omitempty"`
	ProjectName  string `json:"project_name,omitempty"`
}

type CreateResourceRequest struct {
	Name         string  `json:"name" binding:"required"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Department   string  `json:"department"`
	Availability float64 `json:"availability" binding:"omitempty,min=0,max=100"`
	HourlyRate   float64 `json:"hourly_rate" binding:"omitempty,min=0"`
}

type UpdateResourceRequest struct {
	Name         *string  `json:"name,omitempty"`
	Email        *string  `json:"email,omitempty"`
	Role         *string  `json:"role,omitempty"`
	Department   *string  `json:"department,omitempty"`
	Availability *float64 `json:"availability,omitempty"`
	HourlyRate   *float64 `json:"hourly_rate,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

type CreateTimesheetEntryRequest struct {
	ResourceID string    `json:"resource_id" binding:"required"`
	ProjectID  string    `json:"project_id" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
	Hours      float64   `json:"hours" binding:"required,min=0"`
	Billable   bool      `json:"billable"`
	Notes      string    `json:"notes"`
}

// Timesheet entry status constants
const (
	TimesheetStatusDraft     = "draft"
	TimesheetStatusSubmitted = "submitted"
	TimesheetStatusApproved  = "approved"
	TimesheetStatusRejected  = "rejected"
)

// ===========================
// INVOICE MODELS
// ===========================

// Invoice represents a bill issued to a client for a project
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	ClientID      string     `json:"client_id"`
	ProjectID     string     `json:"project_id,omitempty"`
	Amount        float64    `json:"amount"`
	Status        string     `json:"status"` // draft, sent, paid, overdue, void
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CreatedBy     string     `json:"created_by,omitempty"`

	// For API responses (populated via JOINs)
	ClientName  string `json:"client_name,omitempty"`
	ProjectName string `json:"project_name,omitempty"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber string     `json:"invoice_number" binding:"required"`
	ClientID      string     `json:"client_id" binding:"required"`
	ProjectID     string     `json:"project_id"`
	Amount        float64    `json:"amount" binding:"required,min=0"`
	IssuedAt      *time.Time `json:"issued_at,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
}

type UpdateInvoiceRequest struct {
	Amount  *float64   `json:"amount,omitempty"`
	Status  *string    `json:"status,omitempty" binding:"omitempty,oneof=draft sent paid overdue void"`
	DueDate *time.Time `json:"due_date,omitempty"`
	PaidAt  *time.Time `json:"paid_at,omitempty"`
}

// Invoice status constants
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusVoid    = "void"
)

// ===========================
// NOTIFICATION MODELS
// ===========================

// SmartNotification is a single entry in the notification center.
// Created by the rule evaluator or directly by handlers; the read flag is
// the only mutable field, dismissal removes the record.
type SmartNotification struct {
	ID              string                 `json:"id"`
	Type            string                 `json:"type"`     // alert, warning, info, success
	Category        string                 `json:"category"` // project, resource, financial, client, system
	Title           string                 `json:"title"`
	Message         string                 `json:"message"`
	Priority        string                 `json:"priority"` // high, medium, low
	Timestamp       time.Time              `json:"timestamp"`
	Read            bool                   `json:"read"`
	Actionable      bool                   `json:"actionable"`
	RelatedEntityID string                 `json:"related_entity_id,omitempty"`
	Metadata        map[string]interface{} `json:"metadata,omitempty"`
}

type CreateNotificationRequest struct {
	Type            string                 `json:"type" binding:"required,oneof=alert warning info success"`
	Category        string                 `json:"category" binding:"required,oneof=project resource financial client system"`
	Title           string                 `json:"title" binding:"required"`
	Message         string                 `json:"message" binding:"required"`
	Priority        string                 `json:"priority" binding:"omitempty,oneof=high medium low"`
	Actionable      bool                   `json:"actionable"`
	RelatedEntityID string                 `json:"related_entity_id"`
	Metadata        map[string]interface{} `json:"metadata"`
}

// Notification type constants
const (
	NotificationTypeAlert   = "alert"
	NotificationTypeWarning = "warning"
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
)

// Notification category constants
const (
	NotificationCategoryProject   = "project"
	NotificationCategoryResource  = "resource"
	NotificationCategoryFinancial = "financial"
	NotificationCategoryClient    = "client"
	NotificationCategorySystem    = "system"
)

// Notification priority constants
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ===========================
// USER MODEL
// ===========================

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"` // admin, manager, member, finance
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"provider_id"`
	FCMToken   string    `json:"fcm_token,omitempty"`
}

// ===========================
// EXPORT MODELS
// ===========================

// ExportRequest describes a report export job
type ExportRequest struct {
	Report string `json:"report" binding:"required,oneof=timesheets invoices utilization"`
	Format string `json:"format" binding:"required,oneof=csv html xlsx"`
	From   string `json:"from"` // ISO-8601 date, optional
	To     string `json:"to"`   // ISO-8601 date, optional
}

// Export format constants
const (
	ExportFormatCSV  = "csv"
	ExportFormatHTML = "html"
	ExportFormatXLSX = "xlsx"
)
