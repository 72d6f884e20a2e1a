package app

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/riskibarqy/league-vault/internal/config"
	"github.com/riskibarqy/league-vault/internal/domain/jobscheduler"
	"github.com/riskibarqy/league-vault/internal/infrastructure/notify"
	"github.com/riskibarqy/league-vault/internal/infrastructure/repository/filestore"
	"github.com/riskibarqy/league-vault/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-vault/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/league-vault/internal/platform/id"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
	"github.com/riskibarqy/league-vault/internal/platform/metrics"
	"github.com/riskibarqy/league-vault/internal/usecase"
)

const snapshotDirName = "snapshots"

// Services are the use cases shared by the API server and the operator CLI.
type Services struct {
	Store     *filestore.StateStore
	League    *usecase.LeagueService
	Snapshots *usecase.SnapshotService
	Metrics   *metrics.Manager
}

// NewServices opens the data directory and builds the league use cases on top of it.
func NewServices(cfg config.Config, publisher usecase.Publisher, m *metrics.Manager, logger *logging.Logger) (*Services, error) {
	if m == nil {
		m = metrics.New()
	}

	store, err := filestore.NewStateStore(cfg.DataDir, cfg.StateFileName, logger, m)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	snapshotRepo, err := filestore.NewSnapshotStore(filepath.Join(cfg.DataDir, snapshotDirName), logger)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	return &Services{
		Store:  store,
		League: usecase.NewLeagueService(store, publisher, idgen.NewUUIDGenerator(), logger),
		Snapshots: usecase.NewSnapshotService(
			store,
			snapshotRepo,
			publisher,
			usecase.SnapshotServiceConfig{
				CollisionPolicy: cfg.SnapshotCollisionPolicy,
				CacheTTL:        cfg.SnapshotCacheTTL,
			},
			m,
			logger,
		),
		Metrics: m,
	}, nil
}

// NewScheduler builds the weekly scheduler over the same store and archive.
func (s *Services) NewScheduler(cfg config.Config, publisher usecase.Publisher, runs jobscheduler.Repository, logger *logging.Logger) *usecase.WeeklyScheduler {
	return usecase.NewWeeklyScheduler(
		s.Store,
		s.Snapshots,
		publisher,
		runs,
		idgen.NewUUIDGenerator(),
		s.Metrics,
		usecase.WeeklySchedulerConfig{
			TickInterval:   cfg.SchedulerTickInterval,
			SnapshotWindow: cfg.SnapshotWindow(),
			AuctionWindow:  cfg.AuctionWindow(),
		},
		logger,
	)
}

// App is the assembled API process.
type App struct {
	Server    *http.Server
	Scheduler *usecase.WeeklyScheduler
	Broker    *notify.Broker
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	m := metrics.New()
	broker, err := notify.NewBroker(cfg.NotifyWorkers, logger, m)
	if err != nil {
		return nil, fmt.Errorf("create notify broker: %w", err)
	}

	services, err := NewServices(cfg, broker, m, logger)
	if err != nil {
		broker.Close()
		return nil, err
	}

	scheduler := services.NewScheduler(cfg, broker, memory.NewJobRunRepository(cfg.JobRunHistorySize), logger)

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = m.Handler()
	}

	handler := httpapi.NewHandler(services.League, services.Snapshots, scheduler, broker, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, metricsHandler)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		broker.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return &App{
		Server:    server,
		Scheduler: scheduler,
		Broker:    broker,
	}, nil
}
