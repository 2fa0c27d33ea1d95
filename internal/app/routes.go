package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// APIPrefix is the route group every module registers under.
const APIPrefix = "/api/v1"

// HealthPath serves the liveness probe.
const HealthPath = "/health"

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// InMemory reports that records live in process memory and no
	// database connection exists.
	InMemory       bool
	MetricsPath    string
	MetricsHandler http.Handler
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.MetricsHandler != nil && deps.MetricsPath == "" {
		return errors.New("metrics path is required when metrics are enabled")
	}

	r.GET(HealthPath, healthHandler(deps.DB, deps.InMemory))

	if deps.MetricsHandler != nil {
		r.GET(deps.MetricsPath, gin.WrapH(deps.MetricsHandler))
	}

	api := r.Group(APIPrefix)
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(noRouteHandler())
	r.NoMethod(noMethodHandler())

	return nil
}

// healthHandler returns a handler that pings the database and reports status.
// The in-memory store is always reported healthy.
func healthHandler(db *gorm.DB, inMemory bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if inMemory {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"components": gin.H{
					"database": "memory",
				},
			})
			return
		}

		dbStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if err := pingDB(c.Request.Context(), db); err != nil {
			dbStatus = "error"
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"database": dbStatus,
			},
		})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("database is not configured")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "not found")
	}
}

func noMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		renderError(c, http.StatusMethodNotAllowed, "method not allowed")
	}
}
