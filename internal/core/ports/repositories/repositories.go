package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	PlayerRepo         PlayerRepositoryWithTx
	DuesRepo           DuesRepositoryWithTx
	CalendarSourceRepo CalendarSourceRepository
	EventRepo          EventRepository
	ProductRepo        ProductRepository
	VariantRepo        VariantRepository
	ImageRepo          ImageRepository
	OrderRepo          OrderRepository
	RegistrationRepo   RegistrationRepository
	WebhookReceiptRepo WebhookReceiptRepository
	SocialRepo         SocialCredentialRepository
}
