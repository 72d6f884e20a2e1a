package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/league-vault/internal/usecase"
)

const (
	eventStreamBuffer    = 32
	eventStreamHeartbeat = 25 * time.Second
)

// StreamEvents relays league notifications as Server-Sent Events until the
// client goes away.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StreamEvents")
	defer span.End()

	if h.events == nil {
		writeError(ctx, w, fmt.Errorf("%w: event stream is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	controller := http.NewResponseController(w)
	// The server write timeout would cut every stream; this route manages its own lifetime.
	_ = controller.SetWriteDeadline(time.Time{})

	events, cancel := h.events.Subscribe(eventStreamBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "retry: 3000\n\n")
	if err := controller.Flush(); err != nil {
		h.logger.WarnContext(ctx, "event stream flush unsupported", "error", err)
		return
	}

	heartbeat := time.NewTicker(eventStreamHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case ev := <-events:
			data, err := sonic.ConfigDefault.Marshal(ev)
			if err != nil {
				h.logger.WarnContext(ctx, "encode event failed", "event", ev.Name, "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return
			}
		}
		if err := controller.Flush(); err != nil {
			return
		}
	}
}
