package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	models "VixWatch/internal/domain/models"
	"VixWatch/internal/service/ratelimit"
	"VixWatch/internal/usecase"
	xhttp "VixWatch/pkg/http"
	xlogger "VixWatch/pkg/logger"
)

// Manual cycle triggers per client IP.
const (
	runBurst     = 3.0
	runPerSecond = 1.0 / 30.0
)

// MonitorEchoHandler exposes the monitor over HTTP.
type MonitorEchoHandler struct {
	logger  *xlogger.Logger
	monitor *usecase.MonitorService
	limiter *ratelimit.Limiter
}

func NewMonitorEchoHandler(logger *xlogger.Logger, monitor *usecase.MonitorService) *MonitorEchoHandler {
	return &MonitorEchoHandler{
		logger:  logger,
		monitor: monitor,
		limiter: ratelimit.New(),
	}
}

func (h *MonitorEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/snapshot", h.Snapshot)
	g.GET("/audit", h.Audit)
	g.POST("/settings", h.UpdateSettings)
	g.POST("/run", h.RunNow)
	g.POST("/start", h.Start)
	g.POST("/stop", h.Stop)
	g.POST("/test-alert", h.TestAlert)
}

func (h *MonitorEchoHandler) Snapshot(c echo.Context) error {
	snap, err := h.monitor.Snapshot(c.Request().Context())
	if err != nil {
		h.logger.Error("snapshot load error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

func (h *MonitorEchoHandler) Audit(c echo.Context) error {
	req := &models.AuditRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	entries, err := h.monitor.Audit(c.Request().Context(), req.Limit)
	if err != nil {
		h.logger.Error("audit load error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, entries, int64(len(entries)))
}

func (h *MonitorEchoHandler) UpdateSettings(c echo.Context) error {
	req := &models.SettingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	err := h.monitor.UpdateSettings(c.Request().Context(), req.Thresholds(), req.Cash)
	switch {
	case errors.Is(err, usecase.ErrBadThresholds) || errors.Is(err, usecase.ErrBadCash):
		return xhttp.BadRequestResponse(c, err.Error())
	case err != nil:
		h.logger.Error("settings update error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, req)
}

// RunNow triggers an immediate cycle. The cycle runs in the background; the
// response only acknowledges scheduling.
func (h *MonitorEchoHandler) RunNow(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), runBurst, runPerSecond) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "slow down")
	}

	// Request context dies with the response, so the background run gets its
	// own.
	go func() {
		if err := h.monitor.RunCycle(context.Background()); err != nil &&
			!errors.Is(err, usecase.ErrCycleQueued) && !errors.Is(err, usecase.ErrCycleInFlight) {
			h.logger.Error("manual cycle failed", xlogger.Error(err))
		}
	}()
	return xhttp.DataResponse(c, http.StatusAccepted, "cycle scheduled")
}

func (h *MonitorEchoHandler) Start(c echo.Context) error {
	if err := h.monitor.Start(c.Request().Context()); err != nil {
		h.logger.Error("start monitoring error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, "monitoring started")
}

func (h *MonitorEchoHandler) Stop(c echo.Context) error {
	if err := h.monitor.Stop(c.Request().Context()); err != nil {
		h.logger.Error("stop monitoring error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, "monitoring stopped")
}

func (h *MonitorEchoHandler) TestAlert(c echo.Context) error {
	if err := h.monitor.TestAlert(c.Request().Context()); err != nil {
		h.logger.Error("test alert error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, "test alert published")
}
