package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/schoolfin/voucher/internal/infrastructure/logger"
	"github.com/schoolfin/voucher/internal/interfaces/http/dto"
)

// Pinger checks a dependency is reachable
type Pinger interface {
	Ping() error
}

// HealthHandler reports liveness
type HealthHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler. db may be nil when jobs are
// kept in memory.
func NewHealthHandler(name, version string, db Pinger) *HealthHandler {
	return &HealthHandler{name: name, version: version, db: db, startTime: time.Now()}
}

// HealthResponse is the health check result
type HealthResponse struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
	Database  string `json:"database"`
	Time      string `json:"time"`
}

// Health answers 200 while the service can serve requests, or 503 when the
// configured database is unreachable
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "healthy",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  "disabled",
		Time:      time.Now().Format(time.RFC3339),
	}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
			resp.Status = "unhealthy"
			resp.Database = "error"
			c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
			return
		}
		resp.Database = "ok"
	}
	h.Success(c, resp)
}
