package httpapi

import (
	"net/http"

	"github.com/riskibarqy/league-vault/internal/domain/league"
)

type createSnapshotRequest struct {
	Label string `json:"label" validate:"omitempty,max=200"`
}

type snapshotDTO struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
}

func toSnapshotDTO(info league.SnapshotInfo) snapshotDTO {
	return snapshotDTO{
		ID:        info.ID,
		CreatedAt: info.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSnapshots")
	defer span.End()

	items, err := h.snapshotService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list snapshots failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]snapshotDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toSnapshotDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSnapshot")
	defer span.End()

	var req createSnapshotRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	info, err := h.snapshotService.Create(ctx, req.Label)
	if err != nil {
		h.logger.WarnContext(ctx, "create snapshot failed", "label", req.Label, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, toSnapshotDTO(info))
}

func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshot")
	defer span.End()

	state, err := h.snapshotService.Get(ctx, r.PathValue("snapshotID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}

func (h *Handler) RestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RestoreSnapshot")
	defer span.End()

	snapshotID := r.PathValue("snapshotID")
	state, err := h.snapshotService.Restore(ctx, snapshotID)
	if err != nil {
		h.logger.WarnContext(ctx, "restore snapshot failed", "snapshot_id", snapshotID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, state)
}
