package services

import (
	"strings"

	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, clients portssvc.ExternalClients) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Dues first: player creation and checkout both post through it.
	container.Dues = NewDuesService(repos.DuesRepo)
	container.Player = NewPlayerService(repos.PlayerRepo, repos.DuesRepo)
	container.Export = NewExportService(repos.DuesRepo, clients.Roster)

	container.Calendar = NewCalendarService(repos.CalendarSourceRepo, repos.EventRepo, clients.Calendar, cfg.CalendarOrphanPolicy)
	container.Catalog = NewCatalogService(repos.ProductRepo, repos.VariantRepo, repos.ImageRepo, clients.Catalog, cfg.CatalogOrphanPolicy)

	base := strings.TrimRight(cfg.FrontendBaseURL, "/")
	container.Checkout = NewCheckoutService(CheckoutDeps{
		Orders:        repos.OrderRepo,
		Registrations: repos.RegistrationRepo,
		Receipts:      repos.WebhookReceiptRepo,
		Products:      repos.ProductRepo,
		Variants:      repos.VariantRepo,
		Events:        repos.EventRepo,
		Players:       repos.PlayerRepo,
		Ledger:        container.Dues,
		Payments:      clients.Payments,
		Webhooks:      clients.Webhooks,
		Fulfillment:   clients.Fulfillment,
		SuccessURL:    base + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     base + "/checkout/cancelled",
	})

	container.Social = NewSocialService(repos.SocialRepo, clients.Social, clients.Lock, cfg.RefreshLockTTL)

	return container
}
