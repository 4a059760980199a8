package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/club_management_app/internal/apperrors"
	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/dto"
	"github.com/SscSPs/club_management_app/internal/handlers"
	"github.com/SscSPs/club_management_app/internal/middleware"
	"github.com/SscSPs/club_management_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock DuesService ---
type MockDuesService struct {
	mock.Mock
}

func (m *MockDuesService) GetAccount(ctx context.Context, playerID string) (*domain.DuesAccount, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesAccount), args.Error(1)
}
func (m *MockDuesService) ListTransactions(ctx context.Context, playerID string, params dto.ListDuesTransactionsParams) (*dto.ListDuesTransactionsResponse, error) {
	args := m.Called(ctx, playerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListDuesTransactionsResponse), args.Error(1)
}
func (m *MockDuesService) VerifyLedger(ctx context.Context, playerID string) (*domain.LedgerVerification, error) {
	args := m.Called(ctx, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerVerification), args.Error(1)
}
func (m *MockDuesService) AddCharge(ctx context.Context, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesTransaction), args.Error(1)
}
func (m *MockDuesService) AddPayment(ctx context.Context, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesTransaction), args.Error(1)
}
func (m *MockDuesService) AddChargeInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	args := m.Called(ctx, tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesTransaction), args.Error(1)
}
func (m *MockDuesService) AddPaymentInTx(ctx context.Context, tx pgx.Tx, req domain.LedgerEntryRequest) (*domain.DuesTransaction, error) {
	args := m.Called(ctx, tx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DuesTransaction), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.DuesSvcFacade = (*MockDuesService)(nil)

type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportDuesRoster(ctx context.Context) (*dto.ExportDuesResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExportDuesResponse), args.Error(1)
}

var _ portssvc.DuesExportSvc = (*MockExportService)(nil)

type trackedEvent struct {
	userID string
	name   string
	props  map[string]any
}

// recordingAnalytics captures analytics events in memory.
type recordingAnalytics struct {
	events []trackedEvent
}

func (a *recordingAnalytics) IsInitialized() bool { return true }

func (a *recordingAnalytics) Enqueue(distinctID string, event string, properties map[string]any) {
	a.events = append(a.events, trackedEvent{userID: distinctID, name: event, props: properties})
}

func (a *recordingAnalytics) find(name string) (trackedEvent, bool) {
	for _, e := range a.events {
		if e.name == name {
			return e, true
		}
	}
	return trackedEvent{}, false
}

// --- Test Suite ---
type DuesHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockDues    *MockDuesService
	mockExport  *MockExportService
	analytics   *recordingAnalytics
	jwtSecret   string
	playerID    string
	treasurerID string
}

func (suite *DuesHandlerTestSuite) token(userID string, role domain.Role) string {
	tok, err := utils.GenerateJWT(userID, role, suite.jwtSecret, time.Hour, "club-test")
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return tok
}

func (suite *DuesHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.playerID = uuid.NewString()
	suite.treasurerID = uuid.NewString()

	suite.mockDues = new(MockDuesService)
	suite.mockExport = new(MockExportService)
	suite.analytics = &recordingAnalytics{}

	suite.router.Use(middleware.PosthogMiddleware(suite.analytics))
	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	handlers.RegisterDuesRoutes(v1, suite.mockDues, suite.mockExport)
}

func (suite *DuesHandlerTestSuite) do(method, url string, body any, role domain.Role) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.token(suite.treasurerID, role))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *DuesHandlerTestSuite) TestAddCharge_Success() {
	balance := decimal.RequireFromString("150")
	suite.mockDues.On("AddCharge", mock.Anything, mock.MatchedBy(func(r domain.LedgerEntryRequest) bool {
		return r.PlayerID == suite.playerID && r.Actor == suite.treasurerID &&
			r.Amount.Equal(balance) && r.Description == "Spring season"
	})).Return(&domain.DuesTransaction{
		TransactionID:   uuid.NewString(),
		TransactionType: domain.DuesCharge,
		Amount:          balance,
		BalanceAfter:    balance,
		Description:     "Spring season",
	}, nil).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/players/%s/dues/charges", suite.playerID),
		gin.H{"amount": "150.00", "description": "Spring season"}, domain.RoleTreasurer)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.DuesTransactionResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.BalanceAfter.Equal(balance))
	suite.mockDues.AssertExpectations(suite.T())

	posted, ok := suite.analytics.find(middleware.EventDuesChargePosted)
	suite.Require().True(ok)
	suite.Equal(suite.treasurerID, posted.userID)
	suite.Equal(suite.playerID, posted.props["player_id"])
	suite.Equal("150.00", posted.props["amount"])
	suite.Equal(string(domain.RoleTreasurer), posted.props["role"])

	route, ok := suite.analytics.find("api_v1_players_:playerID_dues_charges")
	suite.Require().True(ok)
	suite.Equal(string(domain.RoleTreasurer), route.props["role"])
}

func (suite *DuesHandlerTestSuite) TestAddPayment_ValidationError() {
	suite.mockDues.On("AddPayment", mock.Anything, mock.Anything).
		Return(nil, apperrors.NewBadRequestError("amount must be positive")).Once()

	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/players/%s/dues/payments", suite.playerID),
		gin.H{"amount": "0", "description": "cash"}, domain.RoleTreasurer)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Contains(w.Body.String(), "amount must be positive")
}

func (suite *DuesHandlerTestSuite) TestAddCharge_CoachForbidden() {
	w := suite.do(http.MethodPost, fmt.Sprintf("/api/v1/players/%s/dues/charges", suite.playerID),
		gin.H{"amount": "10", "description": "kit"}, domain.RoleCoach)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockDues.AssertNotCalled(suite.T(), "AddCharge", mock.Anything, mock.Anything)
	suite.Empty(suite.analytics.events)
}

func (suite *DuesHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockDues.On("GetAccount", mock.Anything, suite.playerID).
		Return(nil, fmt.Errorf("%w: dues account for player %s", apperrors.ErrNotFound, suite.playerID)).Once()

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/players/%s/dues", suite.playerID), nil, domain.RoleCoach)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *DuesHandlerTestSuite) TestListTransactions_PassesPaging() {
	next := "opaque"
	suite.mockDues.On("ListTransactions", mock.Anything, suite.playerID, mock.MatchedBy(func(p dto.ListDuesTransactionsParams) bool {
		return p.Limit == 10 && p.NextToken != nil && *p.NextToken == "abc"
	})).Return(&dto.ListDuesTransactionsResponse{
		Transactions: []dto.DuesTransactionResponse{{TransactionID: "t-2"}, {TransactionID: "t-1"}},
		NextToken:    &next,
	}, nil).Once()

	w := suite.do(http.MethodGet, fmt.Sprintf("/api/v1/players/%s/dues/transactions?limit=10&nextToken=abc", suite.playerID), nil, domain.RoleTreasurer)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListDuesTransactionsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 2)
	suite.Equal("t-2", resp.Transactions[0].TransactionID)
	suite.Equal("opaque", *resp.NextToken)
}

func (suite *DuesHandlerTestSuite) TestExport_RemoteFailure() {
	suite.mockExport.On("ExportDuesRoster", mock.Anything).
		Return(nil, apperrors.NewRemoteError("sheets update", fmt.Errorf("403"))).Once()

	w := suite.do(http.MethodPost, "/api/v1/dues/export", nil, domain.RoleAdmin)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func (suite *DuesHandlerTestSuite) TestMissingToken() {
	req, _ := http.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/players/%s/dues", suite.playerID), nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

// --- Run Test Suite ---
func TestDuesHandler(t *testing.T) {
	suite.Run(t, new(DuesHandlerTestSuite))
}
