package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/akave-ai/seclog/internal/ingest"
	"github.com/akave-ai/seclog/internal/model"
	"github.com/akave-ai/seclog/internal/repository"
	"github.com/akave-ai/seclog/internal/response"
)

const (
	msgMalformed   = "Invalid input data. Expected a JSON object with a 'logs' array."
	msgInternal    = "An internal server error occurred while processing your request."
	msgNoValidLogs = "No valid logs to insert."
	adminErrorHTML = "<h1>Error</h1><p>Failed to load logs.</p>"
)

// Ingester runs the ingestion pipeline for one request body.
type Ingester interface {
	Ingest(ctx context.Context, body []byte) (ingest.Result, error)
}

// RecentReader returns the newest stored entries.
type RecentReader interface {
	Recent(ctx context.Context) ([]model.StoredLogEntry, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// LogHandler serves the ingest, recent logs and health endpoints.
type LogHandler struct {
	Ingester Ingester
	Reader   RecentReader
	DB       Pinger
	Logger   zerolog.Logger
}

type ingestResponse struct {
	Status   string `json:"status"`
	Count    int    `json:"count"`
	Rejected int    `json:"rejected"`
	BatchID  string `json:"batch_id"`
}

// Ingest accepts a batch of log items (POST /api/log).
func (h *LogHandler) Ingest(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return response.BadRequest(c, msgMalformed, "could not read request body")
	}

	res, err := h.Ingester.Ingest(c.Request().Context(), body)
	switch {
	case errors.Is(err, ingest.ErrMalformedRequest):
		return response.BadRequest(c, msgMalformed, err.Error())
	case err != nil:
		return response.InternalError(c, msgInternal)
	}

	msg := msgNoValidLogs
	if res.Written > 0 {
		msg = fmt.Sprintf("Successfully logged %d entries.", res.Written)
	}
	return response.OK(c, ingestResponse{
		Status:   "success",
		Count:    res.Written,
		Rejected: len(res.Rejected),
		BatchID:  res.BatchID,
	}, msg)
}

// Recent returns the newest entries as JSON (GET /api/logs/recent).
func (h *LogHandler) Recent(c echo.Context) error {
	logs, err := h.Reader.Recent(c.Request().Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("error retrieving recent logs")
		return response.InternalError(c, "Failed to load logs.")
	}
	return response.OK(c, map[string]any{"logs": logs}, "")
}

// AdminView renders the newest entries as HTML (GET /admin/logs).
func (h *LogHandler) AdminView(c echo.Context) error {
	logs, err := h.Reader.Recent(c.Request().Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("error retrieving logs for admin view")
		return c.HTML(http.StatusInternalServerError, adminErrorHTML)
	}
	return c.Render(http.StatusOK, "logs.html", map[string]any{
		"Logs":  logs,
		"Limit": repository.RecentLimit,
	})
}

// Health pings the database (GET /healthz).
func (h *LogHandler) Health(c echo.Context) error {
	if err := h.DB.Ping(c.Request().Context()); err != nil {
		h.Logger.Warn().Err(err).Msg("health check failed")
		return response.ServiceUnavailable(c, "database unavailable")
	}
	return response.OK(c, map[string]string{"status": "ok"}, "")
}
