package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	eventapp "github.com/parcelhub/backend/internal/application/event"
	ledgerapp "github.com/parcelhub/backend/internal/application/ledger"
	"github.com/parcelhub/backend/internal/domain/ledger"
	"github.com/parcelhub/backend/internal/infrastructure/auth"
	"github.com/parcelhub/backend/internal/infrastructure/config"
	"github.com/parcelhub/backend/internal/infrastructure/event"
	"github.com/parcelhub/backend/internal/infrastructure/persistence"
	"github.com/parcelhub/backend/internal/interfaces/http/handler"
	"github.com/parcelhub/backend/internal/interfaces/http/middleware"
	"github.com/parcelhub/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// LedgerStack is the full ledger wired over a real database, without the background loops.
// Tests deliver outbox entries explicitly with Drain.
type LedgerStack struct {
	DB         *TestDB
	Engine     *gin.Engine
	Debts      *ledgerapp.DebtService
	Reports    *ledgerapp.ReportService
	Cash       *ledgerapp.CashLedgerService
	OutboxRepo *event.GormOutboxRepository
	Processor  *event.OutboxProcessor
	Bus        *event.InMemoryEventBus
	Serializer *event.EventSerializer
	jwt        *auth.JWTService
}

// NewLedgerStack builds the stack on the shared container with three branches:
// 1 Downtown, 2 Harbor and 3 Airport (inactive).
func NewLedgerStack(t *testing.T) *LedgerStack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, middleware.SetupValidator())

	db := NewSharedTestDB(t)
	db.CleanTables()
	db.CreateBranch(1, "Downtown", true)
	db.CreateBranch(2, "Harbor", true)
	db.CreateBranch(3, "Airport", false)

	log := zap.NewNop()
	debtRepo := persistence.NewGormDebtRepository(db.DB)
	cashRepo := persistence.NewGormCashTransactionRepository(db.DB)
	branches := persistence.NewGormBranchDirectory(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	serializer := event.NewLedgerSerializer()
	scope := persistence.NewGormTransactionScope(db.DB, event.NewOutboxPublisher(serializer, 3))

	debts := ledgerapp.NewDebtService(scope, debtRepo, branches)
	cash := ledgerapp.NewCashLedgerService(cashRepo, nil, log)
	reports := ledgerapp.NewReportService(debts, debtRepo, cashRepo, branches, nil, nil, 0, log)

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(ledgerapp.NewCashEntryHandler(cash, log))
	bus.Subscribe(ledgerapp.NewActivityHandler(nil, log))
	processor := event.NewOutboxProcessor(outboxRepo, bus, serializer, event.DefaultOutboxProcessorConfig(), log)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-secret-at-least-32-bytes!",
		Issuer:                "parcelhub-test",
		AccessTokenExpiration: time.Hour,
	})

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithGroupMiddleware(
		middleware.JWTAuthMiddlewareWithConfig(middleware.DefaultJWTConfig(jwtService)),
	))
	r.Register(
		handler.NewLedgerHandler(debts, reports, cash),
		handler.NewOutboxHandler(eventapp.NewDeliveryService(outboxRepo, log)),
	)
	r.Setup()

	return &LedgerStack{
		DB:         db,
		Engine:     engine,
		Debts:      debts,
		Reports:    reports,
		Cash:       cash,
		OutboxRepo: outboxRepo,
		Processor:  processor,
		Bus:        bus,
		Serializer: serializer,
		jwt:        jwtService,
	}
}

// Drain delivers pending outbox entries until none are left
func (s *LedgerStack) Drain(t *testing.T) int {
	t.Helper()
	total := 0
	for {
		n, err := s.Processor.ProcessOnce(context.Background())
		require.NoError(t, err)
		if n == 0 {
			return total
		}
		total += n
	}
}

// Token issues an access token for a caller
func (s *LedgerStack) Token(t *testing.T, role ledger.Role, branchID *int64) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:   uuid.New(),
		Username: "it-" + string(role),
		Role:     role,
		BranchID: branchID,
	})
	require.NoError(t, err)
	return token
}

// BranchToken issues a branch manager token for branchID
func (s *LedgerStack) BranchToken(t *testing.T, branchID int64) string {
	return s.Token(t, ledger.RoleBranchManager, &branchID)
}

// Request sends a JSON request with an optional bearer token
func (s *LedgerStack) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

// APIResponse mirrors the response envelope with a typed payload
type APIResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	} `json:"meta"`
}

// Decode unmarshals the recorder body into an APIResponse
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// ErrorCode returns the error code of a failed response, or "" on success
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	resp := Decode[json.RawMessage](t, w)
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

// Paths
const (
	debtsPath  = "/api/v1/ledger/debts"
	cashPath   = "/api/v1/ledger/cash-transactions"
	outboxPath = "/api/v1/ledger/outbox"
)

func debtPath(id uuid.UUID) string {
	return debtsPath + "/" + id.String()
}

func int64Ptr(v int64) *int64 {
	return &v
}

func expectStatus(t *testing.T, want int, w *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
