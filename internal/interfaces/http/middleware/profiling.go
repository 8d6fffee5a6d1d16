package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parcelhub/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig skips health probes and the swagger UI.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:          true,
		SkipPaths:        []string{"/health", "/healthz", "/ready"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// ProfilingWithConfig labels CPU and allocation samples with the request's
// method, route, ledger operation and branch. Run it after JWT authentication.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		route := c.FullPath()
		labels := map[string]string{
			telemetry.ProfilingLabelMethod:    c.Request.Method,
			telemetry.ProfilingLabelRoute:     route,
			telemetry.ProfilingLabelOperation: operationFromRoute(route),
			telemetry.ProfilingLabelBranchID:  c.GetString(BranchIDKey),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// operationFromRoute returns the ledger resource a route belongs to.
//
//	/api/v1/ledger/debts/:id/settle -> debts.settle
//	/api/v1/ledger/branches/:id/summary -> branches.summary
func operationFromRoute(route string) string {
	route = strings.TrimPrefix(route, "/api/v1/ledger/")
	if route == "" || strings.HasPrefix(route, "/") {
		return ""
	}
	var parts []string
	for _, seg := range strings.Split(route, "/") {
		if seg == "" || strings.HasPrefix(seg, ":") {
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, ".")
}
