package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppEnv != EnvDev {
		t.Fatalf("unexpected AppEnv: %q", cfg.AppEnv)
	}
	if cfg.ServiceName != "league-vault-api" {
		t.Fatalf("unexpected ServiceName: %q", cfg.ServiceName)
	}
	if cfg.DataDir != "./data" || cfg.StateFileName != "league.json" {
		t.Fatalf("unexpected data paths: %q %q", cfg.DataDir, cfg.StateFileName)
	}
	if !cfg.SchedulerEnabled {
		t.Fatalf("expected SchedulerEnabled=true by default")
	}
	if cfg.SchedulerTickInterval != time.Minute {
		t.Fatalf("unexpected SchedulerTickInterval: %s", cfg.SchedulerTickInterval)
	}
	if cfg.SchedulerLocation == nil || cfg.SchedulerLocation.String() != "America/Los_Angeles" {
		t.Fatalf("unexpected SchedulerLocation: %v", cfg.SchedulerLocation)
	}
	if cfg.SnapshotCollisionPolicy != CollisionReject {
		t.Fatalf("unexpected SnapshotCollisionPolicy: %q", cfg.SnapshotCollisionPolicy)
	}
	if cfg.SnapshotCacheTTL != 10*time.Minute {
		t.Fatalf("unexpected SnapshotCacheTTL: %s", cfg.SnapshotCacheTTL)
	}
	if cfg.JobRunHistorySize != 200 || cfg.NotifyWorkers != 8 {
		t.Fatalf("unexpected sizes: history=%d workers=%d", cfg.JobRunHistorySize, cfg.NotifyWorkers)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected MetricsEnabled=true by default")
	}
}

func TestLoad_WeeklyWindows(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")
	t.Setenv("AUCTION_ROLLOVER_WEEKDAY", "Monday")
	t.Setenv("AUCTION_ROLLOVER_HOUR", "9")
	t.Setenv("WEEKLY_SNAPSHOT_WEEKDAY", "sat")
	t.Setenv("WEEKLY_SNAPSHOT_HOUR", "23")
	t.Setenv("SCHEDULER_WINDOW_MINUTES", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	auction := cfg.AuctionWindow()
	if auction.Weekday != time.Monday || auction.StartHour != 9 || auction.WindowMinutes != 5 {
		t.Fatalf("unexpected auction window: %+v", auction)
	}
	snapshot := cfg.SnapshotWindow()
	if snapshot.Weekday != time.Saturday || snapshot.StartHour != 23 {
		t.Fatalf("unexpected snapshot window: %+v", snapshot)
	}
	if snapshot.Location != time.UTC {
		t.Fatalf("expected UTC location, got %v", snapshot.Location)
	}
}

func TestLoad_SchedulerValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown timezone", key: "SCHEDULER_TIMEZONE", value: "Mars/Olympus"},
		{name: "zero tick", key: "SCHEDULER_TICK_INTERVAL", value: "0s"},
		{name: "bad weekday", key: "AUCTION_ROLLOVER_WEEKDAY", value: "someday"},
		{name: "hour out of range", key: "WEEKLY_SNAPSHOT_HOUR", value: "24"},
		{name: "negative hour", key: "AUCTION_ROLLOVER_HOUR", value: "-1"},
		{name: "window too wide", key: "SCHEDULER_WINDOW_MINUTES", value: "60"},
		{name: "collision policy", key: "SNAPSHOT_COLLISION_POLICY", value: "merge"},
		{name: "history size", key: "JOB_RUN_HISTORY_SIZE", value: "0"},
		{name: "notify workers", key: "NOTIFY_WORKERS", value: "x"},
		{name: "state file path", key: "STATE_FILE_NAME", value: "nested/league.json"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("APP_ENV", EnvDev)
			t.Setenv("UPTRACE_ENABLED", "false")
			t.Setenv(tc.key, tc.value)

			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_CollisionPolicyIsCaseInsensitive(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("SNAPSHOT_COLLISION_POLICY", " Overwrite ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SnapshotCollisionPolicy != CollisionOverwrite {
		t.Fatalf("unexpected SnapshotCollisionPolicy: %q", cfg.SnapshotCollisionPolicy)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn=\"https://token@api.uptrace.dev?grpc=4317\"")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}

func TestLoad_PyroscopeAppNameDefaultsToServiceName(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_SERVICE_NAME", "league-vault-api-test")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "http://localhost:4040")
	t.Setenv("PYROSCOPE_APP_NAME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.PyroscopeAppName != "league-vault-api-test" {
		t.Fatalf("unexpected pyroscope app name: %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_CORSOriginsDefaultAndParsing(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	t.Run("default wildcard", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
			t.Fatalf("unexpected default CORS origins: %+v", cfg.CORSAllowedOrigins)
		}
	})

	t.Run("comma separated parsing", func(t *testing.T) {
		t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, http://localhost:5173 ")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load config: %v", err)
		}
		if len(cfg.CORSAllowedOrigins) != 2 {
			t.Fatalf("unexpected CORS origins length: %d", len(cfg.CORSAllowedOrigins))
		}
		if cfg.CORSAllowedOrigins[0] != "https://a.example.com" {
			t.Fatalf("unexpected first CORS origin: %s", cfg.CORSAllowedOrigins[0])
		}
		if cfg.CORSAllowedOrigins[1] != "http://localhost:5173" {
			t.Fatalf("unexpected second CORS origin: %s", cfg.CORSAllowedOrigins[1])
		}
	})
}

func TestLoad_LogLevel(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("APP_LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.LogLevel.String() != "warn" {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel.String())
	}
}
