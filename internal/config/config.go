package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/league-vault/internal/domain/schedule"
	"github.com/riskibarqy/league-vault/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	CORSAllowedOrigins []string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	LogLevel           logging.Level

	DataDir       string
	StateFileName string

	SchedulerEnabled       bool
	SchedulerTickInterval  time.Duration
	SchedulerLocation      *time.Location
	AuctionRolloverWeekday time.Weekday
	AuctionRolloverHour    int
	WeeklySnapshotWeekday  time.Weekday
	WeeklySnapshotHour     int
	SchedulerWindowMinutes int

	SnapshotCacheTTL        time.Duration
	SnapshotCollisionPolicy string
	JobRunHistorySize       int
	NotifyWorkers           int
	MetricsEnabled          bool

	UptraceEnabled     bool
	UptraceDSN         string
	UptraceLogsEnabled bool

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

const (
	CollisionReject    = "reject"
	CollisionOverwrite = "overwrite"
)

// AuctionWindow is the weekly window in which pending auctions roll over.
func (c Config) AuctionWindow() schedule.Weekly {
	return schedule.Weekly{
		Weekday:       c.AuctionRolloverWeekday,
		StartHour:     c.AuctionRolloverHour,
		WindowMinutes: c.SchedulerWindowMinutes,
		Location:      c.SchedulerLocation,
	}
}

// SnapshotWindow is the weekly window in which the automatic snapshot is taken.
func (c Config) SnapshotWindow() schedule.Weekly {
	return schedule.Weekly{
		Weekday:       c.WeeklySnapshotWeekday,
		StartHour:     c.WeeklySnapshotHour,
		WindowMinutes: c.SchedulerWindowMinutes,
		Location:      c.SchedulerLocation,
	}
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	serviceName := getEnv("APP_SERVICE_NAME", "league-vault-api")
	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                serviceName,
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		DataDir:                    strings.TrimSpace(getEnv("DATA_DIR", "./data")),
		StateFileName:              strings.TrimSpace(getEnv("STATE_FILE_NAME", "league.json")),
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAppName:           getEnv("PYROSCOPE_APP_NAME", serviceName),
		PyroscopeAuthToken:         getEnv("PYROSCOPE_AUTH_TOKEN", ""),
		PyroscopeBasicAuthUser:     getEnv("PYROSCOPE_BASIC_AUTH_USER", ""),
		PyroscopeBasicAuthPassword: getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	if strings.ContainsAny(cfg.StateFileName, `/\`) {
		return Config{}, fmt.Errorf("STATE_FILE_NAME must be a bare file name")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}
	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout

	schedulerEnabled, err := strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}
	tickInterval, err := time.ParseDuration(getEnv("SCHEDULER_TICK_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_TICK_INTERVAL: %w", err)
	}
	if tickInterval <= 0 {
		return Config{}, fmt.Errorf("SCHEDULER_TICK_INTERVAL must be > 0")
	}
	location, err := time.LoadLocation(getEnv("SCHEDULER_TIMEZONE", "America/Los_Angeles"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_TIMEZONE: %w", err)
	}
	cfg.SchedulerEnabled = schedulerEnabled
	cfg.SchedulerTickInterval = tickInterval
	cfg.SchedulerLocation = location

	auctionWeekday, err := schedule.ParseWeekday(getEnv("AUCTION_ROLLOVER_WEEKDAY", "sunday"))
	if err != nil {
		return Config{}, fmt.Errorf("parse AUCTION_ROLLOVER_WEEKDAY: %w", err)
	}
	auctionHour, err := getEnvAsHour("AUCTION_ROLLOVER_HOUR", schedule.DefaultStartHour)
	if err != nil {
		return Config{}, err
	}
	snapshotWeekday, err := schedule.ParseWeekday(getEnv("WEEKLY_SNAPSHOT_WEEKDAY", "sunday"))
	if err != nil {
		return Config{}, fmt.Errorf("parse WEEKLY_SNAPSHOT_WEEKDAY: %w", err)
	}
	snapshotHour, err := getEnvAsHour("WEEKLY_SNAPSHOT_HOUR", schedule.DefaultStartHour)
	if err != nil {
		return Config{}, err
	}
	windowMinutes, err := getEnvAsInt("SCHEDULER_WINDOW_MINUTES", schedule.DefaultWindowMinutes)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCHEDULER_WINDOW_MINUTES: %w", err)
	}
	if windowMinutes < 0 || windowMinutes > 59 {
		return Config{}, fmt.Errorf("SCHEDULER_WINDOW_MINUTES must be within 0..59")
	}
	cfg.AuctionRolloverWeekday = auctionWeekday
	cfg.AuctionRolloverHour = auctionHour
	cfg.WeeklySnapshotWeekday = snapshotWeekday
	cfg.WeeklySnapshotHour = snapshotHour
	cfg.SchedulerWindowMinutes = windowMinutes

	snapshotCacheTTL, err := time.ParseDuration(getEnv("SNAPSHOT_CACHE_TTL", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SNAPSHOT_CACHE_TTL: %w", err)
	}
	if snapshotCacheTTL <= 0 {
		return Config{}, fmt.Errorf("SNAPSHOT_CACHE_TTL must be > 0")
	}
	collisionPolicy := strings.ToLower(strings.TrimSpace(getEnv("SNAPSHOT_COLLISION_POLICY", CollisionReject)))
	if collisionPolicy != CollisionReject && collisionPolicy != CollisionOverwrite {
		return Config{}, fmt.Errorf("invalid SNAPSHOT_COLLISION_POLICY %q: valid values are %s, %s", collisionPolicy, CollisionReject, CollisionOverwrite)
	}
	cfg.SnapshotCacheTTL = snapshotCacheTTL
	cfg.SnapshotCollisionPolicy = collisionPolicy

	historySize, err := getEnvAsInt("JOB_RUN_HISTORY_SIZE", 200)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_RUN_HISTORY_SIZE: %w", err)
	}
	if historySize < 1 {
		return Config{}, fmt.Errorf("JOB_RUN_HISTORY_SIZE must be >= 1")
	}
	notifyWorkers, err := getEnvAsInt("NOTIFY_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse NOTIFY_WORKERS: %w", err)
	}
	if notifyWorkers < 1 {
		return Config{}, fmt.Errorf("NOTIFY_WORKERS must be >= 1")
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}
	cfg.JobRunHistorySize = historySize
	cfg.NotifyWorkers = notifyWorkers
	cfg.MetricsEnabled = metricsEnabled

	cfg.LogLevel = logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsHour(key string, fallback int) (int, error) {
	out, err := getEnvAsInt(key, fallback)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out < 0 || out > 23 {
		return 0, fmt.Errorf("%s must be within 0..23", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
