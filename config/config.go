package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the resolved server configuration. Defaults come from this
// package's constants; every field can be overridden by a MERCHSTATS_*
// environment variable (e.g. MERCHSTATS_MAX_OPEN_DATASETS) or an optional
// merchstats.yaml file.
type Settings struct {
	MaxConcurrentRequests int           `mapstructure:"max_concurrent_requests"`
	MaxOpenDatasets       int           `mapstructure:"max_open_datasets"`
	MaxRowsPerBatch       int           `mapstructure:"max_rows_per_batch"`
	MaxPayloadBytes       int           `mapstructure:"max_payload_bytes"`
	PreviewRowLimit       int           `mapstructure:"preview_row_limit"`
	HistogramStep         float64       `mapstructure:"histogram_step"`
	TopN                  int           `mapstructure:"top_n"`
	OperationTimeout      time.Duration `mapstructure:"operation_timeout"`
	AcquireRequestTimeout time.Duration `mapstructure:"acquire_request_timeout"`
	DatasetIdleTTL        time.Duration `mapstructure:"dataset_idle_ttl"`
	DatasetCleanupPeriod  time.Duration `mapstructure:"dataset_cleanup_period"`

	// AllowedDirs are the loader allow-list roots, path-list separated in the
	// environment (MERCHSTATS_ALLOWED_DIRS).
	AllowedDirs []string `mapstructure:"allowed_dirs"`
}

// Load resolves Settings from defaults, an optional config file in the given
// directory (or the working directory when empty), and the environment.
func Load(dir string) (Settings, error) {
	v := viper.New()
	v.SetDefault("max_concurrent_requests", DefaultMaxConcurrentRequests)
	v.SetDefault("max_open_datasets", DefaultMaxOpenDatasets)
	v.SetDefault("max_rows_per_batch", DefaultMaxRowsPerBatch)
	v.SetDefault("max_payload_bytes", DefaultMaxPayloadBytes)
	v.SetDefault("preview_row_limit", DefaultPreviewRowLimit)
	v.SetDefault("histogram_step", DefaultHistogramStep)
	v.SetDefault("top_n", DefaultTopN)
	v.SetDefault("operation_timeout", DefaultOperationTimeout)
	v.SetDefault("acquire_request_timeout", DefaultAcquireRequestTimeout)
	v.SetDefault("dataset_idle_ttl", DefaultDatasetIdleTTL)
	v.SetDefault("dataset_cleanup_period", DefaultDatasetCleanupPeriod)
	v.SetDefault("allowed_dirs", []string{})

	v.SetEnvPrefix("MERCHSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("merchstats")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; only real parse errors bubble up.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Settings{}, err
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, err
	}
	// Env values arrive as a single path-list string.
	if len(s.AllowedDirs) == 1 {
		s.AllowedDirs = splitPathList(s.AllowedDirs[0])
	}
	return s, nil
}

func splitPathList(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ':' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
