package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`
	Port        string `mapstructure:"port"`
	PublicURL   string `mapstructure:"public_url"`

	// Supabase
	SupabaseURL            string `mapstructure:"supabase_url"`        // Internal URL for API→Supabase communication
	PublicSupabaseURL      string `mapstructure:"public_supabase_url"` // Public URL for frontend/browser
	SupabaseAnonKey        string `mapstructure:"supabase_anon_key"`
	SupabaseServiceRoleKey string `mapstructure:"supabase_service_role_key"`
	SupabaseJWTSecret      string `mapstructure:"supabase_jwt_secret"`

	// Utilization window defaults
	Analytics AnalyticsConfig `mapstructure:"analytics"`

	// Notification pipeline
	Notifications NotificationConfig `mapstructure:"notifications"`

	// Push relay (fallback when Firebase credentials are absent)
	PushRelay PushRelayConfig `mapstructure:"push_relay"`
}

type AnalyticsConfig struct {
	WorkingDays int     `mapstructure:"working_days"`
	HoursPerDay float64 `mapstructure:"hours_per_day"`
	CacheTTLSec int     `mapstructure:"cache_ttl_sec"`
}

type NotificationConfig struct {
	// EvalIntervalSec is how often the evaluation worker scans
	// projects, resources and invoices for rule matches.
	EvalIntervalSec int `mapstructure:"eval_interval_sec"`
	// DedupWindowMin suppresses repeat notifications for the same
	// rule/entity/priority within the window. 0 disables dedup.
	DedupWindowMin int    `mapstructure:"dedup_window_min"`
	QueueName      string `mapstructure:"queue_name"`
}

type PushRelayConfig struct {
	URL        string `mapstructure:"url"`
	InstanceID string `mapstructure:"instance_id"`
	APIToken   string `mapstructure:"api_token"`
}

// App holds the global config instance
var App Config

// LoadConfig loads configuration from file and environment variables
func LoadConfig(path string) error {
	// Auto-load .env file if present (Local Development Convenience)
	// This makes 'go run' work without manually exporting env vars
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env doesn't exist (e.g. in Production/Docker)
	} else {
		log.Println("✅ Loaded .env file")
	}

	v := viper.New()

	// Set default values
	v.SetDefault("port", "8080")
	v.SetDefault("analytics.working_days", 22)
	v.SetDefault("analytics.hours_per_day", 8.0)
	v.SetDefault("analytics.cache_ttl_sec", 300)
	v.SetDefault("notifications.eval_interval_sec", 300)
	v.SetDefault("notifications.dedup_window_min", 0)
	v.SetDefault("notifications.queue_name", "psa_notifications")

	// Config file settings
	if path != "" {
		v.SetConfigFile(path)
	} else {
		// Try to find config file in multiple locations
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("dev.config") // Look for dev.config.yaml
		v.SetConfigType("yaml")
	}

	// Environment variable settings
	v.SetEnvPrefix("psa")

	// Bind standard environment variables (Docker/deploy compatibility)
	// This allows using standard keys like DATABASE_URL instead of psa_DATABASE_URL
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_url", "REDIS_URL")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("public_url", "PUBLIC_URL")

	// Bind Supabase Env Vars
	_ = v.BindEnv("supabase_url", "SUPABASE_URL")
	_ = v.BindEnv("public_supabase_url", "PUBLIC_SUPABASE_URL")
	_ = v.BindEnv("supabase_anon_key", "SUPABASE_ANON_KEY")
	_ = v.BindEnv("supabase_service_role_key", "SUPABASE_SERVICE_ROLE_KEY")
	_ = v.BindEnv("supabase_jwt_secret", "SUPABASE_JWT_SECRET")

	// Bind analytics / notification pipeline Env Vars
	_ = v.BindEnv("analytics.working_days", "ANALYTICS_WORKING_DAYS")
	_ = v.BindEnv("analytics.hours_per_day", "ANALYTICS_HOURS_PER_DAY")
	_ = v.BindEnv("analytics.cache_ttl_sec", "ANALYTICS_CACHE_TTL_SEC")
	_ = v.BindEnv("notifications.eval_interval_sec", "NOTIFY_EVAL_INTERVAL_SEC")
	_ = v.BindEnv("notifications.dedup_window_min", "NOTIFY_DEDUP_WINDOW_MIN")
	_ = v.BindEnv("notifications.queue_name", "NOTIFY_QUEUE_NAME")

	// Bind Push Relay Env Vars
	_ = v.BindEnv("push_relay.url", "psa_RELAY_URL")
	_ = v.BindEnv("push_relay.api_token", "psa_RELAY_TOKEN")
	_ = v.BindEnv("push_relay.instance_id", "psa_INSTANCE_ID")

	v.AutomaticEnv()

	// 1. Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("ℹ️  No config file found, using defaults and environment variables")
		} else {
			return err
		}
	} else {
		log.Printf("✅ Loaded config from: %s", v.ConfigFileUsed())
	}

	// 2. Unmarshal into struct
	if err := v.Unmarshal(&App); err != nil {
		return err
	}

	// 3. Backfill environment variables for code that still uses os.Getenv()
	setEnvIfEmpty("DATABASE_URL", App.DatabaseURL)
	setEnvIfEmpty("REDIS_URL", App.RedisURL)
	setEnvIfEmpty("PORT", App.Port)

	setEnvIfEmpty("SUPABASE_URL", App.SupabaseURL)
	setEnvIfEmpty("PUBLIC_SUPABASE_URL", App.PublicSupabaseURL)
	setEnvIfEmpty("SUPABASE_ANON_KEY", App.SupabaseAnonKey)
	setEnvIfEmpty("SUPABASE_SERVICE_ROLE_KEY", App.SupabaseServiceRoleKey)
	setEnvIfEmpty("SUPABASE_JWT_SECRET", App.SupabaseJWTSecret)

	setEnvIfEmpty("psa_RELAY_URL", App.PushRelay.URL)
	setEnvIfEmpty("psa_INSTANCE_ID", App.PushRelay.InstanceID)
	setEnvIfEmpty("psa_RELAY_TOKEN", App.PushRelay.APIToken)

	return nil
}

func setEnvIfEmpty(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}
