package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/parcelhub/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg config.SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "swagger")
	})
	return router
}

func swaggerRequest(router *gin.Engine, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	denyAll := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	allowAll := func(c *gin.Context) {}

	tests := []struct {
		name   string
		cfg    config.SwaggerConfig
		jwt    gin.HandlerFunc
		remote string
		want   int
	}{
		{"disabled", config.SwaggerConfig{Enabled: false}, nil, "10.0.0.1:1234", http.StatusNotFound},
		{"open", config.SwaggerConfig{Enabled: true}, nil, "10.0.0.1:1234", http.StatusOK},
		{"exact ip allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil, "10.0.0.1:1234", http.StatusOK},
		{"ip denied", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil, "10.0.0.2:1234", http.StatusForbidden},
		{"cidr allowed", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.0.0/16"}}, nil, "192.168.4.20:80", http.StatusOK},
		{"garbage entries deny", config.SwaggerConfig{Enabled: true, AllowedIPs: []string{"not-an-ip"}}, nil, "10.0.0.1:1234", http.StatusForbidden},
		{"auth rejects", config.SwaggerConfig{Enabled: true, RequireAuth: true}, denyAll, "10.0.0.1:1234", http.StatusUnauthorized},
		{"auth passes", config.SwaggerConfig{Enabled: true, RequireAuth: true}, allowAll, "10.0.0.1:1234", http.StatusOK},
		{"ip checked before auth", config.SwaggerConfig{Enabled: true, RequireAuth: true, AllowedIPs: []string{"10.0.0.1"}}, allowAll, "172.16.0.1:1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := swaggerRequest(swaggerRouter(tt.cfg, tt.jwt), tt.remote)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestIPAllowed(t *testing.T) {
	prefixes := []netip.Prefix{
		netip.MustParsePrefix("10.1.0.0/16"),
		netip.MustParsePrefix("::1/128"),
	}
	assert.True(t, ipAllowed("10.1.2.3", prefixes))
	assert.True(t, ipAllowed("::ffff:10.1.2.3", prefixes))
	assert.True(t, ipAllowed("::1", prefixes))
	assert.False(t, ipAllowed("10.2.0.1", prefixes))
	assert.False(t, ipAllowed("", prefixes))
}
