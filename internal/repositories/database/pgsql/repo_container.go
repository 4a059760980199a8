package pgsql

import (
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool DBPool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		PlayerRepo:         newPgxPlayerRepository(dbPool),
		DuesRepo:           newPgxDuesRepository(dbPool),
		CalendarSourceRepo: newPgxCalendarSourceRepository(dbPool),
		EventRepo:          newPgxEventRepository(dbPool),
		ProductRepo:        newPgxProductRepository(dbPool),
		VariantRepo:        newPgxVariantRepository(dbPool),
		ImageRepo:          newPgxImageRepository(dbPool),
		OrderRepo:          newPgxOrderRepository(dbPool),
		RegistrationRepo:   newPgxRegistrationRepository(dbPool),
		WebhookReceiptRepo: newPgxWebhookReceiptRepository(dbPool),
		SocialRepo:         newPgxSocialCredentialRepository(dbPool),
	}
}
