package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestNewRouter_Defaults(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.Prefix())

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouter_SetupMountsRegistrars(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(
		registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/ledger/debts", okHandler) }),
		registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/system/ping", okHandler) }),
	)
	api := r.Setup()
	assert.Equal(t, "/api/v1", api.BasePath())

	for _, path := range []string{"/api/v1/ledger/debts", "/api/v1/system/ping"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_GroupMiddlewareSkipsEngineRoutes(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", okHandler)

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	r := NewRouter(engine, WithGroupMiddleware(deny))
	r.Register(registrarFunc(func(rg *gin.RouterGroup) { rg.GET("/ledger/branches", okHandler) }))
	r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/branches", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RouteTableSorted(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Register(registrarFunc(func(rg *gin.RouterGroup) {
		rg.POST("/ledger/debts", okHandler)
		rg.GET("/ledger/debts", okHandler)
		rg.GET("/ledger/branches", okHandler)
	}))
	r.Setup()

	assert.Equal(t, []string{
		"GET /api/v1/ledger/branches",
		"GET /api/v1/ledger/debts",
		"POST /api/v1/ledger/debts",
	}, r.RouteTable())

	core, logs := observer.New(zap.DebugLevel)
	r.LogRoutes(zap.New(core))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Routes mounted", logs.All()[0].Message)
}
