// Package health serves GET /api/health.
package health

import (
	"context"
	"net/http"
	"time"

	"gallery-api/internal/api/response"
	"gallery-api/internal/logging"

	"github.com/gin-gonic/gin"
)

// Pinger is the database check. Postgres and the in-memory store both satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Status is the health payload. Pool is nil for the in-memory store.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
	Pool     any    `json:"pool,omitempty"`
}

type Handler struct {
	db      Pinger
	pool    func() any
	started time.Time
}

// NewHandler takes an optional pool stats source.
func NewHandler(db Pinger, pool func() any) *Handler {
	return &Handler{db: db, pool: pool, started: time.Now()}
}

func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	st := Status{Status: "ok", Database: "connected", Uptime: time.Since(h.started).Round(time.Second).String()}
	if h.pool != nil {
		st.Pool = h.pool()
	}
	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("health check: database unreachable")
		st.Status, st.Database = "degraded", "disconnected"
		c.JSON(http.StatusServiceUnavailable, response.Build(false, nil, "Database unreachable", st))
		return
	}
	response.OK(c, "Service healthy", st)
}
