package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/club_management_app/internal/platform/config"
)

func TestNewExternalClients_OnlyConfiguredMembers(t *testing.T) {
	cfg := &config.Config{
		HTTPClientTimeout: 5 * time.Second,
		InstagramGraphURL: "https://graph.instagram.com",
		PrintifyBaseURL:   "https://api.printify.com/v1",
		CheckoutCurrency:  "usd",
	}

	clients, err := NewExternalClients(context.Background(), cfg, nil)
	require.NoError(t, err)

	assert.NotNil(t, clients.Webhooks)
	assert.NotNil(t, clients.Calendar)
	assert.NotNil(t, clients.Social)
	assert.Nil(t, clients.Payments)
	assert.Nil(t, clients.Catalog)
	assert.Nil(t, clients.Fulfillment)
	assert.Nil(t, clients.Lock)
	assert.Nil(t, clients.Roster)
}

func TestNewExternalClients_StripeAndPrintify(t *testing.T) {
	cfg := &config.Config{
		HTTPClientTimeout: 5 * time.Second,
		StripeSecretKey:   "sk_test_123",
		CheckoutCurrency:  "usd",
		PrintifyAPIToken:  "token",
		PrintifyShopID:    "42",
		PrintifyBaseURL:   "https://api.printify.com/v1",
	}

	clients, err := NewExternalClients(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, clients.Payments)
	assert.NotNil(t, clients.Catalog)
	assert.NotNil(t, clients.Fulfillment)
}

func TestNewExternalClients_MissingSheetsCredentials(t *testing.T) {
	cfg := &config.Config{
		HTTPClientTimeout:           5 * time.Second,
		GoogleSheetsCredentialsFile: "/nonexistent/creds.json",
		DuesSpreadsheetID:           "sheet-1",
		DuesSheetRange:              "Dues!A1",
	}

	_, err := NewExternalClients(context.Background(), cfg, nil)
	assert.Error(t, err)
}
