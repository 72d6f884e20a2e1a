package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerLeagueRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/league", handler.GetLeague)
	mux.HandleFunc("PUT /v1/league", handler.SaveLeague)
	mux.HandleFunc("POST /v1/league/bids", handler.PlaceBid)
}

func registerSnapshotRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/snapshots", handler.ListSnapshots)
	mux.HandleFunc("POST /v1/snapshots", handler.CreateSnapshot)
	mux.HandleFunc("GET /v1/snapshots/{snapshotID}", handler.GetSnapshot)
	mux.HandleFunc("POST /v1/snapshots/{snapshotID}/restore", handler.RestoreSnapshot)
}

func registerEventRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/events", handler.StreamEvents)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/internal/jobs/runs", handler.ListJobRuns)
	mux.HandleFunc("GET /v1/internal/jobs/windows", handler.ListJobWindows)
	mux.HandleFunc("POST /v1/internal/jobs/{job}/run", handler.RunJob)
}
