package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"github.com/hashicorp/go-cleanhttp"
	stripego "github.com/stripe/stripe-go/v79"

	"github.com/SscSPs/club_management_app/internal/adapters/ical"
	"github.com/SscSPs/club_management_app/internal/adapters/instagram"
	"github.com/SscSPs/club_management_app/internal/adapters/printify"
	"github.com/SscSPs/club_management_app/internal/adapters/redislock"
	"github.com/SscSPs/club_management_app/internal/adapters/sheets"
	"github.com/SscSPs/club_management_app/internal/adapters/stripe"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/platform/config"
)

// NewExternalClients builds every configured third-party adapter. Members
// whose credentials are missing stay nil. rdb may be nil.
func NewExternalClients(ctx context.Context, cfg *config.Config, rdb *redis.Client) (portssvc.ExternalClients, error) {
	var clients portssvc.ExternalClients

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = cfg.HTTPClientTimeout

	// Always present so unsigned webhooks are rejected rather than ignored.
	clients.Webhooks = stripe.NewProcessor(cfg.StripeWebhookSecret)

	if cfg.StripeSecretKey != "" {
		backends := &stripego.Backends{
			API: stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
				HTTPClient: httpClient,
			}),
		}
		clients.Payments = stripe.NewGateway(cfg.StripeSecretKey, cfg.CheckoutCurrency, backends)
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	if cfg.PrintifyAPIToken != "" && cfg.PrintifyShopID != "" {
		pf := printify.NewClient(cfg.PrintifyBaseURL, cfg.PrintifyShopID, cfg.PrintifyAPIToken, httpClient)
		clients.Catalog = pf
		clients.Fulfillment = pf
	}

	clients.Calendar = ical.NewFeed(httpClient)
	clients.Social = instagram.NewClient(cfg.InstagramGraphURL, httpClient)

	if rdb != nil {
		clients.Lock = redislock.New(rdb)
	}

	if cfg.GoogleSheetsCredentialsFile != "" && cfg.DuesSpreadsheetID != "" {
		w, err := sheets.NewRosterWriterFromFile(ctx, cfg.GoogleSheetsCredentialsFile, cfg.DuesSpreadsheetID, cfg.DuesSheetRange)
		if err != nil {
			return clients, fmt.Errorf("failed to set up dues roster export: %w", err)
		}
		clients.Roster = w
	} else {
		slog.Warn("Google Sheets export not configured, dues roster export disabled")
	}

	return clients, nil
}
