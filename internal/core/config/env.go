package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: TOPICSDK_[SECTION]_[KEY] (e.g., TOPICSDK_PATHS_LOGS_DIR).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.EnlistmentDir, "TOPICSDK_ENLISTMENT_DIR")
	setEnvString(&cfg.StubDir, "TOPICSDK_STUB_DIR")
	setEnvBool(&cfg.DryRun, "TOPICSDK_DRY_RUN")
	setEnvList(&cfg.Tasks, "TOPICSDK_TASKS")

	// Paths
	setEnvString(&cfg.Paths.LogsDir, "TOPICSDK_PATHS_LOGS_DIR")
	setEnvString(&cfg.Paths.ModuleDB, "TOPICSDK_PATHS_MODULE_DB")
	setEnvString(&cfg.Paths.HistoryDB, "TOPICSDK_PATHS_HISTORY_DB")

	// Checkout
	setEnvString(&cfg.Checkout.Command, "TOPICSDK_CHECKOUT_COMMAND")
	setEnvFloat64(&cfg.Checkout.Rate, "TOPICSDK_CHECKOUT_RATE")
	setEnvInt(&cfg.Checkout.Burst, "TOPICSDK_CHECKOUT_BURST")

	// Observability
	setEnvString(&cfg.Observability.MetricsFile, "TOPICSDK_OBSERVABILITY_METRICS_FILE")
	setEnvString(&cfg.Observability.OTLPEndpoint, "TOPICSDK_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.RecordDiffs, "TOPICSDK_OBSERVABILITY_RECORD_DIFFS")

	// Cache
	setEnvInt(&cfg.Cache.TopicCacheSize, "TOPICSDK_CACHE_TOPIC_CACHE_SIZE")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, ",")
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}
