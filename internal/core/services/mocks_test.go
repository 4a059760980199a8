package services_test

import (
	"context"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	portsrepo "github.com/SscSPs/club_management_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
)

// fakeTx stands in for a pgx transaction; repositories are mocked so its
// methods are never called.
type fakeTx struct {
	pgx.Tx
}

// --- Dues ---

type MockDuesRepository struct {
	mock.Mock
}

var _ portsrepo.DuesRepositoryWithTx = (*MockDuesRepository)(nil)

func (m *MockDuesRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockDuesRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockDuesRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockDuesRepository) FindDuesAccountByPlayerID(ctx context.Context, playerID string) (*domain.DuesAccount, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesAccount), args.Error(1)
}

func (m *MockDuesRepository) ListDuesRoster(ctx context.Context) ([]domain.DuesRosterEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuesRosterEntry), args.Error(1)
}

func (m *MockDuesRepository) ListDuesTransactions(ctx context.Context, accountID string, limit int, after *domain.LedgerCursor) ([]domain.DuesTransaction, error) {
	args := m.Called(ctx, accountID, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuesTransaction), args.Error(1)
}

func (m *MockDuesRepository) ListAllDuesTransactions(ctx context.Context, accountID string) ([]domain.DuesTransaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DuesTransaction), args.Error(1)
}

func (m *MockDuesRepository) CreateDuesAccountInTx(ctx context.Context, tx pgx.Tx, account domain.DuesAccount) error {
	return m.Called(ctx, tx, account).Error(0)
}

func (m *MockDuesRepository) LockDuesAccountByPlayerIDInTx(ctx context.Context, tx pgx.Tx, playerID string) (*domain.DuesAccount, error) {
	args := m.Called(ctx, tx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesAccount), args.Error(1)
}

func (m *MockDuesRepository) UpdateDuesAccountInTx(ctx context.Context, tx pgx.Tx, account domain.DuesAccount) error {
	return m.Called(ctx, tx, account).Error(0)
}

func (m *MockDuesRepository) AppendDuesTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.DuesTransaction) (domain.DuesTransaction, error) {
	args := m.Called(ctx, tx, txn)
	return args.Get(0).(domain.DuesTransaction), args.Error(1)
}

type MockLedger struct {
	mock.Mock
}

var _ portssvc.DuesLedgerTxSvc = (*MockLedger)(nil)

func (m *MockLedger) AddChargeInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	args := m.Called(ctx, tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesTransaction), args.Error(1)
}

func (m *MockLedger) AddPaymentInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	args := m.Called(ctx, tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesTransaction), args.Error(1)
}

// --- Checkout ---

type MockOrderRepository struct {
	mock.Mock
}

var _ portsrepo.OrderRepository = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockOrderRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockOrderRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	return m.Called(ctx, tx).Error(0)
}

func (m *MockOrderRepository) SaveOrderInTx(ctx context.Context, tx pgx.Tx, order domain.Order) error {
	return m.Called(ctx, tx, order).Error(0)
}

func (m *MockOrderRepository) FindOrderBySessionIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.Order, error) {
	args := m.Called(ctx, tx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindOrderByPaymentIntentForUpdate(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*domain.Order, error) {
	args := m.Called(ctx, tx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderStatusInTx(ctx context.Context, tx pgx.Tx, orderID string, status domain.PaymentStatus, paymentIntentID *string, now time.Time) error {
	return m.Called(ctx, tx, orderID, status, paymentIntentID, now).Error(0)
}

func (m *MockOrderRepository) UpdateOrderFulfillment(ctx context.Context, orderID string, status domain.FulfillmentStatus, fulfillmentOrderID *string, now time.Time) error {
	return m.Called(ctx, orderID, status, fulfillmentOrderID, now).Error(0)
}

type MockRegistrationRepository struct {
	mock.Mock
}

var _ portsrepo.RegistrationRepository = (*MockRegistrationRepository)(nil)

func (m *MockRegistrationRepository) SaveRegistrationInTx(ctx context.Context, tx pgx.Tx, reg domain.EventRegistration) error {
	return m.Called(ctx, tx, reg).Error(0)
}

func (m *MockRegistrationRepository) FindRegistrationBySessionIDForUpdate(ctx context.Context, tx pgx.Tx, sessionID string) (*domain.EventRegistration, error) {
	args := m.Called(ctx, tx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventRegistration), args.Error(1)
}

func (m *MockRegistrationRepository) FindRegistrationByPaymentIntentForUpdate(ctx context.Context, tx pgx.Tx, paymentIntentID string) (*domain.EventRegistration, error) {
	args := m.Called(ctx, tx, paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EventRegistration), args.Error(1)
}

func (m *MockRegistrationRepository) UpdateRegistrationStatusInTx(ctx context.Context, tx pgx.Tx, registrationID string, status domain.PaymentStatus, paymentIntentID *string, now time.Time) error {
	return m.Called(ctx, tx, registrationID, status, paymentIntentID, now).Error(0)
}

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) RecordReceiptInTx(ctx context.Context, tx pgx.Tx, provider string, dedupKey string, eventType string, at time.Time) (bool, error) {
	args := m.Called(ctx, tx, provider, dedupKey, eventType, at)
	return args.Bool(0), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

var _ portsrepo.ProductRepository = (*MockProductRepository)(nil)

func (m *MockProductRepository) SaveSyncSummary(ctx context.Context, productID string, summary domain.SyncSummary) error {
	return m.Called(ctx, productID, summary).Error(0)
}

func (m *MockProductRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) FindProductsByIDs(ctx context.Context, productIDs []string) (map[string]domain.Product, error) {
	args := m.Called(ctx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Product), args.Error(1)
}

func (m *MockProductRepository) ListPrintOnDemandProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) DecrementInventoryInTx(ctx context.Context, tx pgx.Tx, productID string, quantity int, now time.Time) (int, error) {
	args := m.Called(ctx, tx, productID, quantity, now)
	return args.Int(0), args.Error(1)
}

type MockVariantRepository struct {
	mock.Mock
}

var _ portsrepo.VariantRepository = (*MockVariantRepository)(nil)

func (m *MockVariantRepository) FindSyncRecord(ctx context.Context, sourceID string, externalID string) (*domain.SyncRecord, error) {
	args := m.Called(ctx, sourceID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRecord), args.Error(1)
}

func (m *MockVariantRepository) CreateFromRemote(ctx context.Context, sourceID string, remote domain.RemoteVariant, syncedAt time.Time) error {
	return m.Called(ctx, sourceID, remote, syncedAt).Error(0)
}

func (m *MockVariantRepository) UpdateFromRemote(ctx context.Context, localID string, remote domain.RemoteVariant, syncedAt time.Time) error {
	return m.Called(ctx, localID, remote, syncedAt).Error(0)
}

func (m *MockVariantRepository) ClearOrphan(ctx context.Context, localID string, at time.Time) error {
	return m.Called(ctx, localID, at).Error(0)
}

func (m *MockVariantRepository) MarkOrphans(ctx context.Context, sourceID string, seen []string, policy domain.OrphanPolicy, at time.Time) (int, error) {
	args := m.Called(ctx, sourceID, seen, policy, at)
	return args.Int(0), args.Error(1)
}

func (m *MockVariantRepository) FindVariantByID(ctx context.Context, variantID string) (*domain.ProductVariant, error) {
	args := m.Called(ctx, variantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductVariant), args.Error(1)
}

func (m *MockVariantRepository) FindVariantsByIDs(ctx context.Context, variantIDs []string) (map[string]domain.ProductVariant, error) {
	args := m.Called(ctx, variantIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ProductVariant), args.Error(1)
}

func (m *MockVariantRepository) UpdateVariantLocally(ctx context.Context, variantID string, patch domain.VariantPatch, now time.Time) (*domain.ProductVariant, error) {
	args := m.Called(ctx, variantID, patch, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductVariant), args.Error(1)
}

func (m *MockVariantRepository) ResetVariantLocalModification(ctx context.Context, variantID string, now time.Time) error {
	return m.Called(ctx, variantID, now).Error(0)
}

type MockEventRepository struct {
	mock.Mock
}

var _ portsrepo.EventRepository = (*MockEventRepository)(nil)

func (m *MockEventRepository) FindSyncRecord(ctx context.Context, sourceID string, externalID string) (*domain.SyncRecord, error) {
	args := m.Called(ctx, sourceID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRecord), args.Error(1)
}

func (m *MockEventRepository) CreateFromRemote(ctx context.Context, sourceID string, remote domain.RemoteEvent, syncedAt time.Time) error {
	return m.Called(ctx, sourceID, remote, syncedAt).Error(0)
}

func (m *MockEventRepository) UpdateFromRemote(ctx context.Context, localID string, remote domain.RemoteEvent, syncedAt time.Time) error {
	return m.Called(ctx, localID, remote, syncedAt).Error(0)
}

func (m *MockEventRepository) ClearOrphan(ctx context.Context, localID string, at time.Time) error {
	return m.Called(ctx, localID, at).Error(0)
}

func (m *MockEventRepository) MarkOrphans(ctx context.Context, sourceID string, seen []string, policy domain.OrphanPolicy, at time.Time) (int, error) {
	args := m.Called(ctx, sourceID, seen, policy, at)
	return args.Int(0), args.Error(1)
}

func (m *MockEventRepository) FindEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) ListEventsBySource(ctx context.Context, sourceID string) ([]domain.Event, error) {
	args := m.Called(ctx, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Event), args.Error(1)
}

func (m *MockEventRepository) UpdateEventLocally(ctx context.Context, eventID string, patch domain.EventPatch, userID string, now time.Time) (*domain.Event, error) {
	args := m.Called(ctx, eventID, patch, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepository) ResetEventLocalModification(ctx context.Context, eventID string, userID string, now time.Time) error {
	return m.Called(ctx, eventID, userID, now).Error(0)
}

type MockPlayerReader struct {
	mock.Mock
}

func (m *MockPlayerReader) FindPlayerByID(ctx context.Context, playerID string) (*domain.Player, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Player), args.Error(1)
}

func (m *MockPlayerReader) ListPlayers(ctx context.Context, limit int, offset int) ([]domain.Player, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Player), args.Error(1)
}

// --- External clients ---

type MockWebhookVerifier struct {
	mock.Mock
}

func (m *MockWebhookVerifier) VerifyAndParse(payload []byte, signatureHeader string) (*domain.PaymentEvent, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentEvent), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutSessionRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

type MockFulfillment struct {
	mock.Mock
}

func (m *MockFulfillment) SubmitOrder(ctx context.Context, req domain.FulfillmentRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockFulfillment) QuoteShipping(ctx context.Context, req domain.FulfillmentRequest) (*domain.ShippingQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ShippingQuote), args.Error(1)
}

type MockCatalogProvider struct {
	mock.Mock
}

func (m *MockCatalogProvider) GetProductCatalog(ctx context.Context, externalProductID string) (*domain.RemoteProduct, error) {
	args := m.Called(ctx, externalProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteProduct), args.Error(1)
}

type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) FindSyncRecord(ctx context.Context, sourceID string, externalID string) (*domain.SyncRecord, error) {
	args := m.Called(ctx, sourceID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SyncRecord), args.Error(1)
}

func (m *MockImageRepository) CreateFromRemote(ctx context.Context, sourceID string, remote domain.RemoteImage, syncedAt time.Time) error {
	return m.Called(ctx, sourceID, remote, syncedAt).Error(0)
}

func (m *MockImageRepository) UpdateFromRemote(ctx context.Context, localID string, remote domain.RemoteImage, syncedAt time.Time) error {
	return m.Called(ctx, localID, remote, syncedAt).Error(0)
}

func (m *MockImageRepository) ClearOrphan(ctx context.Context, localID string, at time.Time) error {
	return m.Called(ctx, localID, at).Error(0)
}

func (m *MockImageRepository) MarkOrphans(ctx context.Context, sourceID string, seen []string, policy domain.OrphanPolicy, at time.Time) (int, error) {
	args := m.Called(ctx, sourceID, seen, policy, at)
	return args.Int(0), args.Error(1)
}

// --- Social ---

type MockSocialRepository struct {
	mock.Mock
}

var _ portsrepo.SocialCredentialRepository = (*MockSocialRepository)(nil)

func (m *MockSocialRepository) FindCredentialByAccount(ctx context.Context, accountName string) (*domain.SocialCredential, error) {
	args := m.Called(ctx, accountName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SocialCredential), args.Error(1)
}

func (m *MockSocialRepository) ListCredentials(ctx context.Context) ([]domain.SocialCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SocialCredential), args.Error(1)
}

func (m *MockSocialRepository) UpdateCredentialToken(ctx context.Context, credentialID string, token string, expiresAt time.Time, now time.Time) error {
	return m.Called(ctx, credentialID, token, expiresAt, now).Error(0)
}

func (m *MockSocialRepository) RecordRefreshError(ctx context.Context, credentialID string, message string, now time.Time) error {
	return m.Called(ctx, credentialID, message, now).Error(0)
}

type MockTokenRefresher struct {
	mock.Mock
}

func (m *MockTokenRefresher) RefreshToken(ctx context.Context, accessToken string) (*domain.RefreshedToken, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshedToken), args.Error(1)
}

type MockRefreshLock struct {
	mock.Mock
	released int
}

func (m *MockRefreshLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key, ttl)
	release := func(context.Context) error {
		m.released++
		return nil
	}
	return release, args.Bool(0), args.Error(1)
}

type MockRosterWriter struct {
	mock.Mock
}

func (m *MockRosterWriter) WriteRoster(ctx context.Context, header []string, rows [][]any) error {
	return m.Called(ctx, header, rows).Error(0)
}

// seqOf turns records into a fetch sequence, optionally failing after them.
func seqOf[R any](records []R, failWith error) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for _, r := range records {
			if !yield(r, nil) {
				return
			}
		}
		if failWith != nil {
			var zero R
			yield(zero, failWith)
		}
	}
}
