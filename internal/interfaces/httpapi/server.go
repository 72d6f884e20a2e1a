package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/league-vault/internal/platform/logging"
)

// NewRouter mounts every route. metricsHandler may be nil, in which case
// /metrics is not served.
func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	corsAllowedOrigins []string,
	metricsHandler http.Handler,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, metricsHandler)
	registerLeagueRoutes(mux, handler)
	registerSnapshotRoutes(mux, handler)
	registerEventRoutes(mux, handler)
	registerInternalJobRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(r.Context(), "panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", fmt.Sprint(rec),
			)
			writeInternalError(r.Context(), w)
		}()
		next.ServeHTTP(w, r)
	})
}
