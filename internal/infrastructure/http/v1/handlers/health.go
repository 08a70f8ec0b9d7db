package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pinger is the readiness dependency (the database pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// AppInfo is reported by /health/info.
type AppInfo struct {
	Name     string   `json:"app"`
	Version  string   `json:"version"`
	Storage  string   `json:"storage"`
	Pipeline []string `json:"pipeline"`
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db   Pinger
	info AppInfo
}

// NewHealthHandler creates a new health handler. db may be nil in memory
// mode.
func NewHealthHandler(db Pinger, info AppInfo) *HealthHandler {
	return &HealthHandler{db: db, info: info}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": map[string]string{"database": "memory"}})
		return
	}
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": map[string]string{"database": "unhealthy: " + err.Error()},
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": map[string]string{"database": "healthy"},
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":      h.info.Name,
		"version":  h.info.Version,
		"storage":  h.info.Storage,
		"pipeline": h.info.Pipeline,
	}
	if s, ok := h.db.(interface{ Stat() *pgxpool.Stat }); ok {
		stat := s.Stat()
		body["database"] = map[string]any{
			"total_conns":    stat.TotalConns(),
			"acquired_conns": stat.AcquiredConns(),
			"idle_conns":     stat.IdleConns(),
			"max_conns":      stat.MaxConns(),
		}
	}
	c.JSON(http.StatusOK, body)
}
