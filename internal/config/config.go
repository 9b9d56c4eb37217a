package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/propstats/internal/platform/logging"
)

const (
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"

	minStatsTimeout = 10 * time.Second
	maxStatsTimeout = 15 * time.Second
)

var seasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                     string
	ServiceName                string
	ServiceVersion             string
	HTTPAddr                   string
	ReadTimeout                time.Duration
	WriteTimeout               time.Duration
	LogLevel                   logging.Level
	CORSAllowedOrigins         []string
	AdminToken                 string
	CurrentSeason              string
	RefreshInterval            time.Duration
	CacheBackend               string
	DBURL                      string
	DBBinaryParameters         bool
	DBReadCacheTTL             time.Duration
	PlayerDirectoryTTL         time.Duration
	DefenseRankTTL             time.Duration
	StatsBaseURL               string
	StatsTimeout               time.Duration
	StatsMinInterval           time.Duration
	StatsMaxRetries            int
	StatsCircuitEnabled        bool
	StatsCircuitFailureCount   int
	StatsCircuitOpenTimeout    time.Duration
	StatsCircuitHalfOpenMaxReq int
	BoardMaxConcurrency        int
	WarmWorkers                int
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	// Analysis of a stale player waits on one upstream fetch, so the write
	// timeout has to outlive STATS_TIMEOUT.
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	currentSeason := strings.TrimSpace(getEnv("CURRENT_SEASON", "2025-26"))
	if !seasonPattern.MatchString(currentSeason) {
		return Config{}, fmt.Errorf("CURRENT_SEASON must look like 2025-26, got %q", currentSeason)
	}

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be > 0")
	}

	cacheBackend := strings.ToLower(strings.TrimSpace(getEnv("CACHE_BACKEND", CacheBackendMemory)))
	if cacheBackend != CacheBackendMemory && cacheBackend != CacheBackendPostgres {
		return Config{}, fmt.Errorf("invalid CACHE_BACKEND %q: valid values are %s, %s", cacheBackend, CacheBackendMemory, CacheBackendPostgres)
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if cacheBackend == CacheBackendPostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when CACHE_BACKEND=postgres")
	}
	dbBinaryParameters, err := strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}
	dbReadCacheTTL, err := time.ParseDuration(getEnv("DB_READ_CACHE_TTL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_READ_CACHE_TTL: %w", err)
	}
	if dbReadCacheTTL < 0 {
		return Config{}, fmt.Errorf("DB_READ_CACHE_TTL must be >= 0")
	}

	playerDirectoryTTL, err := time.ParseDuration(getEnv("PLAYER_DIRECTORY_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PLAYER_DIRECTORY_TTL: %w", err)
	}
	if playerDirectoryTTL <= 0 {
		return Config{}, fmt.Errorf("PLAYER_DIRECTORY_TTL must be > 0")
	}
	defenseRankTTL, err := time.ParseDuration(getEnv("DEFENSE_RANK_TTL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DEFENSE_RANK_TTL: %w", err)
	}
	if defenseRankTTL <= 0 {
		return Config{}, fmt.Errorf("DEFENSE_RANK_TTL must be > 0")
	}

	statsTimeout, err := time.ParseDuration(getEnv("STATS_TIMEOUT", "12s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_TIMEOUT: %w", err)
	}
	if statsTimeout < minStatsTimeout || statsTimeout > maxStatsTimeout {
		return Config{}, fmt.Errorf("STATS_TIMEOUT must be between %s and %s", minStatsTimeout, maxStatsTimeout)
	}
	statsMinInterval, err := time.ParseDuration(getEnv("STATS_MIN_INTERVAL", "600ms"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_MIN_INTERVAL: %w", err)
	}
	if statsMinInterval <= 0 {
		return Config{}, fmt.Errorf("STATS_MIN_INTERVAL must be > 0")
	}
	statsMaxRetries, err := getEnvAsInt("STATS_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_MAX_RETRIES: %w", err)
	}
	if statsMaxRetries < 0 {
		return Config{}, fmt.Errorf("STATS_MAX_RETRIES must be >= 0")
	}
	statsCircuitEnabled, err := strconv.ParseBool(getEnv("STATS_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CIRCUIT_ENABLED: %w", err)
	}
	statsCircuitFailureCount, err := getEnvAsInt("STATS_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if statsCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("STATS_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	statsCircuitOpenTimeout, err := time.ParseDuration(getEnv("STATS_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if statsCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("STATS_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	statsCircuitHalfOpenMaxReq, err := getEnvAsInt("STATS_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse STATS_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if statsCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("STATS_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	boardMaxConcurrency, err := getEnvAsInt("BOARD_MAX_CONCURRENCY", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse BOARD_MAX_CONCURRENCY: %w", err)
	}
	if boardMaxConcurrency < 1 {
		return Config{}, fmt.Errorf("BOARD_MAX_CONCURRENCY must be >= 1")
	}
	warmWorkers, err := getEnvAsInt("WARM_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse WARM_WORKERS: %w", err)
	}
	if warmWorkers < 1 {
		return Config{}, fmt.Errorf("WARM_WORKERS must be >= 1")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
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

	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "propstats-api"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                   getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                readTimeout,
		WriteTimeout:               writeTimeout,
		LogLevel:                   logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		CORSAllowedOrigins:         splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		AdminToken:                 strings.TrimSpace(getEnv("ADMIN_TOKEN", "")),
		CurrentSeason:              currentSeason,
		RefreshInterval:            refreshInterval,
		CacheBackend:               cacheBackend,
		DBURL:                      dbURL,
		DBBinaryParameters:         dbBinaryParameters,
		DBReadCacheTTL:             dbReadCacheTTL,
		PlayerDirectoryTTL:         playerDirectoryTTL,
		DefenseRankTTL:             defenseRankTTL,
		StatsBaseURL:               strings.TrimSpace(getEnv("STATS_BASE_URL", "https://stats.nba.com/stats")),
		StatsTimeout:               statsTimeout,
		StatsMinInterval:           statsMinInterval,
		StatsMaxRetries:            statsMaxRetries,
		StatsCircuitEnabled:        statsCircuitEnabled,
		StatsCircuitFailureCount:   statsCircuitFailureCount,
		StatsCircuitOpenTimeout:    statsCircuitOpenTimeout,
		StatsCircuitHalfOpenMaxReq: statsCircuitHalfOpenMaxReq,
		BoardMaxConcurrency:        boardMaxConcurrency,
		WarmWorkers:                warmWorkers,
		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.AppEnv == EnvProd && cfg.AdminToken == "" {
		return Config{}, fmt.Errorf("ADMIN_TOKEN is required when APP_ENV=prod")
	}

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
