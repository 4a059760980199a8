package config

import (
	"log"
	"time"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	FrontendBaseURL   string

	// Stripe
	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutCurrency    string
	WebhookRateLimit    string

	// Printify
	PrintifyAPIToken string
	PrintifyShopID   string
	PrintifyBaseURL  string

	// Instagram Graph API
	InstagramGraphURL string

	// Redis backs the cross-process token refresh lock; empty disables it.
	RedisURL       string
	RefreshLockTTL time.Duration

	// Google Sheets dues export
	GoogleSheetsCredentialsFile string
	DuesSpreadsheetID           string
	DuesSheetRange              string

	// Reconciliation and outbound calls
	HTTPClientTimeout    time.Duration
	CalendarOrphanPolicy domain.OrphanPolicy
	CatalogOrphanPolicy  domain.OrphanPolicy
	SyncInterval         time.Duration
	TokenRefreshInterval time.Duration
	EnableJobs           bool

	PosthogAPIKey   string
	PosthogEndpoint string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", true)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "club-management-app")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("CHECKOUT_CURRENCY", "usd")
	viper.SetDefault("WEBHOOK_RATE_LIMIT", "120-M")
	viper.SetDefault("PRINTIFY_API_TOKEN", "")
	viper.SetDefault("PRINTIFY_SHOP_ID", "")
	viper.SetDefault("PRINTIFY_BASE_URL", "https://api.printify.com/v1")
	viper.SetDefault("INSTAGRAM_GRAPH_URL", "https://graph.instagram.com")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REFRESH_LOCK_TTL", "2m")
	viper.SetDefault("GOOGLE_SHEETS_CREDENTIALS_FILE", "")
	viper.SetDefault("DUES_SPREADSHEET_ID", "")
	viper.SetDefault("DUES_SHEET_RANGE", "Dues!A1")
	viper.SetDefault("HTTP_CLIENT_TIMEOUT", "20s")
	viper.SetDefault("CALENDAR_ORPHAN_POLICY", string(domain.OrphanFlag))
	viper.SetDefault("CATALOG_ORPHAN_POLICY", string(domain.OrphanDisable))
	viper.SetDefault("SYNC_INTERVAL", "1h")
	viper.SetDefault("TOKEN_REFRESH_INTERVAL", "24h")
	viper.SetDefault("ENABLE_JOBS", true)
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://eu.i.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTExpiryDuration = durationOrDefault("JWT_EXPIRY_DURATION", time.Hour)
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	cfg.StripeSecretKey = viper.GetString("STRIPE_SECRET_KEY")
	cfg.StripeWebhookSecret = viper.GetString("STRIPE_WEBHOOK_SECRET")
	if cfg.StripeWebhookSecret == "" {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET not set. Payment webhooks will be rejected.")
	}
	cfg.CheckoutCurrency = viper.GetString("CHECKOUT_CURRENCY")
	cfg.WebhookRateLimit = viper.GetString("WEBHOOK_RATE_LIMIT")

	cfg.PrintifyAPIToken = viper.GetString("PRINTIFY_API_TOKEN")
	cfg.PrintifyShopID = viper.GetString("PRINTIFY_SHOP_ID")
	cfg.PrintifyBaseURL = viper.GetString("PRINTIFY_BASE_URL")
	if cfg.PrintifyAPIToken == "" || cfg.PrintifyShopID == "" {
		log.Println("Warning: PRINTIFY_API_TOKEN or PRINTIFY_SHOP_ID not set. Catalog sync and fulfillment will fail.")
	}
	cfg.InstagramGraphURL = viper.GetString("INSTAGRAM_GRAPH_URL")

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.RefreshLockTTL = durationOrDefault("REFRESH_LOCK_TTL", 2*time.Minute)

	cfg.GoogleSheetsCredentialsFile = viper.GetString("GOOGLE_SHEETS_CREDENTIALS_FILE")
	cfg.DuesSpreadsheetID = viper.GetString("DUES_SPREADSHEET_ID")
	cfg.DuesSheetRange = viper.GetString("DUES_SHEET_RANGE")

	cfg.HTTPClientTimeout = durationOrDefault("HTTP_CLIENT_TIMEOUT", 20*time.Second)
	cfg.CalendarOrphanPolicy = orphanPolicyOrDefault("CALENDAR_ORPHAN_POLICY", domain.OrphanFlag)
	cfg.CatalogOrphanPolicy = orphanPolicyOrDefault("CATALOG_ORPHAN_POLICY", domain.OrphanDisable)
	cfg.SyncInterval = durationOrDefault("SYNC_INTERVAL", time.Hour)
	cfg.TokenRefreshInterval = durationOrDefault("TOKEN_REFRESH_INTERVAL", 24*time.Hour)
	cfg.EnableJobs = viper.GetBool("ENABLE_JOBS")

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}

func durationOrDefault(key string, def time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def.String())
		}
		return def
	}
	return d
}

func orphanPolicyOrDefault(key string, def domain.OrphanPolicy) domain.OrphanPolicy {
	raw := viper.GetString(key)
	p, err := domain.ParseOrphanPolicy(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, def)
		return def
	}
	return p
}
