package router

import (
	"database/sql"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/rizwana27/psa/authz"
	"github.com/rizwana27/psa/handlers"
	"github.com/rizwana27/psa/internal/analytics"
	"github.com/rizwana27/psa/internal/config"
	"github.com/rizwana27/psa/rules"
	"github.com/rizwana27/psa/services"
)

func NewGinRouter(pg *sql.DB, rdb *redis.Client) *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	window := analytics.Window{
		WorkingDays: config.App.Analytics.WorkingDays,
		HoursPerDay: config.App.Analytics.HoursPerDay,
	}
	if err := window.Validate(); err != nil {
		log.Printf("Warning: invalid analytics window in config, using defaults: %v", err)
		window = analytics.DefaultWindow
	}
	cacheTTL := time.Duration(config.App.Analytics.CacheTTLSec) * time.Second

	// Initialize services
	pushService, _ := services.NewPushService(pg)
	clientService := services.NewClientService(pg)
	vendorService := services.NewVendorService(pg)
	projectService := services.NewProjectService(pg)
	resourceService := services.NewResourceService(pg)
	timesheetService := services.NewTimesheetService(pg)
	invoiceService := services.NewInvoiceService(pg)
	userService := services.NewUserService(pg)
	apiKeyService := services.NewAPIKeyService(pg)
	analyticsService := services.NewAnalyticsService(pg, rdb, window, cacheTTL)
	exportService := services.NewExportService(pg, analyticsService)

	deliveryService := services.NewDeliveryService(pg)
	if err := deliveryService.CreateQueueIfNotExists(); err != nil {
		log.Printf("⚠️  Warning: Failed to create delivery queue: %v", err)
	}

	// Notification pipeline: postgres store, push alerter, optional dedup
	notificationStore := services.NewPostgresNotificationStore(pg)
	var dedup rules.Deduper
	if config.App.Notifications.DedupWindowMin > 0 {
		dedup = rules.NewWindowDeduper(time.Duration(config.App.Notifications.DedupWindowMin) * time.Minute)
	}
	notifier := rules.NewNotifier(notificationStore, pushService, dedup, rules.DefaultRules())

	// Initialize handlers
	clientHandler := handlers.NewClientHandler(clientService)
	vendorHandler := handlers.NewVendorHandler(vendorService)
	projectHandler := handlers.NewProjectHandler(projectService)
	resourceHandler := handlers.NewResourceHandler(resourceService)
	timesheetHandler := handlers.NewTimesheetHandler(timesheetService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	notificationHandler := handlers.NewNotificationHandler(notificationStore, notifier)
	dashboardHandler := handlers.NewDashboardHandler(analyticsService)
	exportHandler := handlers.NewExportHandler(exportService)
	userHandler := handlers.NewUserHandler(userService, apiKeyService, pushService)

	// Initialize middleware
	authMiddleware := handlers.NewAuthMiddleware(userService, apiKeyService)

	// PUBLIC ENDPOINTS (no authentication required)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.GET("/env", func(c *gin.Context) {
		env := os.Getenv("psa_ENV")
		if env == "" {
			env = "development"
		}
		c.Header("x-psa-env", env)

		// Use PublicSupabaseURL for browser access, fallback to SupabaseURL
		supabaseURL := config.App.PublicSupabaseURL
		if supabaseURL == "" {
			supabaseURL = config.App.SupabaseURL
		}

		c.JSON(200, gin.H{
			"supabase_url":      supabaseURL,
			"supabase_anon_key": config.App.SupabaseAnonKey,
		})
	})

	// PROTECTED ENDPOINTS (require Supabase authentication)
	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth())
	{
		// =====================================================================
		// CLIENTS / VENDORS
		// =====================================================================
		clientRoutes := protected.Group("/clients")
		{
			clientRoutes.GET("", authz.Require(authz.CorePermissions, authz.ActionView), clientHandler.ListClients)
			clientRoutes.GET("/:id", authz.Require(authz.CorePermissions, authz.ActionView), clientHandler.GetClient)
			clientRoutes.POST("", authz.RequireRole(authz.RoleAdmin, authz.RoleManager), clientHandler.CreateClient)
			clientRoutes.PATCH("/:id", authz.Require(authz.CorePermissions, authz.ActionUpdate), clientHandler.UpdateClient)
			clientRoutes.DELETE("/:id", authz.Require(authz.CorePermissions, authz.ActionDelete), clientHandler.DeleteClient)
		}

		vendorRoutes := protected.Group("/vendors")
		{
			vendorRoutes.GET("", authz.Require(authz.CorePermissions, authz.ActionView), vendorHandler.ListVendors)
			vendorRoutes.GET("/:id", authz.Require(authz.CorePermissions, authz.ActionView), vendorHandler.GetVendor)
			vendorRoutes.POST("", authz.RequireRole(authz.RoleAdmin, authz.RoleManager), vendorHandler.CreateVendor)
			vendorRoutes.PATCH("/:id", authz.Require(authz.CorePermissions, authz.ActionUpdate), vendorHandler.UpdateVendor)
			vendorRoutes.DELETE("/:id", authz.Require(authz.CorePermissions, authz.ActionDelete), vendorHandler.DeleteVendor)
		}

		// =====================================================================
		// PROJECTS
		// =====================================================================
		projectRoutes := protected.Group("/projects")
		{
			projectRoutes.GET("", authz.Require(authz.CorePermissions, authz.ActionView), projectHandler.ListProjects)
			projectRoutes.GET("/budget-usage", authz.RequireRole(authz.RoleAdmin, authz.RoleManager, authz.RoleFinance), projectHandler.GetBudgetUsage)
			projectRoutes.GET("/:id", authz.Require(authz.CorePermissions, authz.ActionView), projectHandler.GetProject)
			projectRoutes.POST("", authz.RequireRole(authz.RoleAdmin, authz.RoleManager), projectHandler.CreateProject)
			projectRoutes.PATCH("/:id", authz.Require(authz.CorePermissions, authz.ActionUpdate), projectHandler.UpdateProject)
			projectRoutes.DELETE("/:id", authz.Require(authz.CorePermissions, authz.ActionDelete), projectHandler.DeleteProject)
		}

		// =====================================================================
		// RESOURCES / TIMESHEETS
		// =====================================================================
		resourceRoutes := protected.Group("/resources")
		{
			resourceRoutes.GET("", authz.Require(authz.CorePermissions, authz.ActionView), resourceHandler.ListResources)
			resourceRoutes.GET("/:id", authz.Require(authz.CorePermissions, authz.ActionView), resourceHandler.GetResource)
			resourceRoutes.POST("", authz.RequireRole(authz.RoleAdmin, authz.RoleManager), resourceHandler.CreateResource)
			resourceRoutes.PATCH("/:id", authz.Require(authz.CorePermissions, authz.ActionUpdate), resourceHandler.UpdateResource)
			resourceRoutes.DELETE("/:id", authz.Require(authz.CorePermissions, authz.ActionDelete), resourceHandler.DeleteResource)
		}

		timesheetRoutes := protected.Group("/timesheets")
		{
			timesheetRoutes.GET("", authz.Require(authz.CorePermissions, authz.ActionView), timesheetHandler.ListEntries)
			timesheetRoutes.GET("/:id", authz.Require(authz.CorePermissions, authz.ActionView), timesheetHandler.GetEntry)
			timesheetRoutes.POST("", authz.Require(authz.CorePermissions, authz.ActionCreate), timesheetHandler.CreateEntry)
			timesheetRoutes.POST("/:id/submit", authz.Require(authz.CorePermissions, authz.ActionCreate), timesheetHandler.SubmitEntry)
			timesheetRoutes.POST("/:id/approve", authz.Require(authz.CorePermissions, authz.ActionApprove), timesheetHandler.ApproveEntry)
			timesheetRoutes.POST("/:id/reject", authz.Require(authz.CorePermissions, authz.ActionApprove), timesheetHandler.RejectEntry)
			timesheetRoutes.DELETE("/:id", authz.Require(authz.CorePermissions, authz.ActionCreate), timesheetHandler.DeleteEntry)
		}

		// =====================================================================
		// INVOICES (finance-gated)
		// =====================================================================
		invoiceRoutes := protected.Group("/invoices")
		{
			invoiceRoutes.GET("", authz.Require(authz.FinancePermissions, authz.ActionView), invoiceHandler.ListInvoices)
			invoiceRoutes.GET("/overdue", authz.Require(authz.FinancePermissions, authz.ActionView), invoiceHandler.ListOverdue)
			invoiceRoutes.GET("/:id", authz.Require(authz.FinancePermissions, authz.ActionView), invoiceHandler.GetInvoice)
			invoiceRoutes.POST("", authz.Require(authz.FinancePermissions, authz.ActionCreate), invoiceHandler.CreateInvoice)
			invoiceRoutes.PATCH("/:id", authz.Require(authz.FinancePermissions, authz.ActionUpdate), invoiceHandler.UpdateInvoice)
			invoiceRoutes.POST("/:id/send", authz.Require(authz.FinancePermissions, authz.ActionApprove), invoiceHandler.SendInvoice)
			invoiceRoutes.POST("/:id/pay", authz.Require(authz.FinancePermissions, authz.ActionApprove), invoiceHandler.MarkPaid)
		}

		// =====================================================================
		// NOTIFICATION CENTER
		// =====================================================================
		notificationRoutes := protected.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.ListNotifications)
			notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
			notificationRoutes.GET("/rules", notificationHandler.ListRules)
			notificationRoutes.PATCH("/rules/:id", authz.Require(authz.CorePermissions, authz.ActionManage), notificationHandler.SetRuleEnabled)
			notificationRoutes.GET("/:id", notificationHandler.GetNotification)
			notificationRoutes.POST("", authz.RequireRole(authz.RoleAdmin, authz.RoleManager), notificationHandler.CreateNotification)
			notificationRoutes.POST("/read-all", notificationHandler.MarkAllRead)
			notificationRoutes.POST("/:id/read", notificationHandler.MarkRead)
			notificationRoutes.DELETE("/:id", notificationHandler.Dismiss)
		}

		// =====================================================================
		// DASHBOARD / EXPORTS
		// =====================================================================
		dashboardRoutes := protected.Group("/dashboard")
		{
			dashboardRoutes.GET("/utilization", authz.Require(authz.CorePermissions, authz.ActionView), dashboardHandler.GetUtilization)
			dashboardRoutes.GET("/allocation", authz.Require(authz.CorePermissions, authz.ActionView), dashboardHandler.GetAllocation)
			dashboardRoutes.GET("/kpis", authz.Require(authz.CorePermissions, authz.ActionView), dashboardHandler.GetKPIs)
		}

		protected.POST("/exports", authz.Require(authz.CorePermissions, authz.ActionExport), exportHandler.Export)

		// =====================================================================
		// USERS / API KEYS
		// =====================================================================
		userRoutes := protected.Group("/users")
		{
			userRoutes.GET("/me", userHandler.GetMe)
			userRoutes.GET("", authz.Require(authz.CorePermissions, authz.ActionManage), userHandler.ListUsers)
			userRoutes.PATCH("/:id/role", authz.Require(authz.CorePermissions, authz.ActionManage), userHandler.UpdateUserRole)
			userRoutes.POST("/me/fcm-token", userHandler.UpdateFCMToken)
			userRoutes.GET("/me/api-keys", userHandler.ListAPIKeys)
			userRoutes.POST("/me/api-keys", userHandler.CreateAPIKey)
			userRoutes.DELETE("/me/api-keys/:id", userHandler.RevokeAPIKey)
		}
	}

	return r
}
