package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers, the
// background workers and the CLI.
type ServiceContainer struct {
	Player   PlayerSvcFacade
	Dues     DuesSvcFacade
	Export   DuesExportSvc
	Calendar CalendarSvcFacade
	Catalog  CatalogSvcFacade
	Checkout CheckoutSvcFacade
	Social   SocialTokenSvc
}
