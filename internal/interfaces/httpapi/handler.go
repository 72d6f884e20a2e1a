package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/league-vault/internal/infrastructure/notify"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/usecase"
)

// EventSubscriber hands out live notification feeds for the event stream.
type EventSubscriber interface {
	Subscribe(buffer int) (<-chan notify.Event, func())
}

type Handler struct {
	leagueService   *usecase.LeagueService
	snapshotService *usecase.SnapshotService
	scheduler       *usecase.WeeklyScheduler
	events          EventSubscriber
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	snapshotService *usecase.SnapshotService,
	scheduler *usecase.WeeklyScheduler,
	events EventSubscriber,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagueService:   leagueService,
		snapshotService: snapshotService,
		scheduler:       scheduler,
		events:          events,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a strict JSON body. An empty body leaves out untouched
// when allowEmpty is set.
func decodeJSON(r *http.Request, out any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
