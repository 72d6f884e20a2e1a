package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/league-vault/internal/usecase"
)

type runJobRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) RunJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunJob")
	defer span.End()

	if h.scheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: weekly scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req runJobRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	job := strings.TrimSpace(r.PathValue("job"))
	result, err := h.scheduler.RunJob(ctx, job, req.Force)
	if err != nil {
		h.logger.WarnContext(ctx, "manual job run failed", "job", job, "force", req.Force, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) ListJobRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobRuns")
	defer span.End()

	if h.scheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: weekly scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(ctx, w, fmt.Errorf("%w: limit must be a positive integer", usecase.ErrInvalidInput))
			return
		}
		limit = parsed
	}

	runs, err := h.scheduler.ListRuns(ctx, limit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, runs)
}

func (h *Handler) ListJobWindows(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListJobWindows")
	defer span.End()

	if h.scheduler == nil {
		writeError(ctx, w, fmt.Errorf("%w: weekly scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var at time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("at")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: at must be an RFC 3339 timestamp", usecase.ErrInvalidInput))
			return
		}
		at = parsed
	}

	windows, err := h.scheduler.Windows(ctx, at)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, windows)
}
