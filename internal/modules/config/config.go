package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"

	"signal_bot/internal/models"
	"signal_bot/pkg/logger"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	ledgerPathENV     = "LEDGER_PATH"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	// Postgres DSN; empty means the CSV file store is used.
	DB string `yaml:"db_dsn"`

	Service struct {
		HealthAddr string `yaml:"health_addr"`
	} `yaml:"service"`

	Jaeger struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"jaeger"`

	Feed struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		// Pause between upstream calls inside one scan, keeps the
		// provider's rate limiter happy.
		Spacing time.Duration `yaml:"spacing"`
	} `yaml:"feed"`

	Stream struct {
		Enabled bool          `yaml:"enabled"`
		URL     string        `yaml:"url"`
		MaxAge  time.Duration `yaml:"max_age"` // cached price older than this is ignored
	} `yaml:"stream"`

	Scan struct {
		Timeframe string        `yaml:"timeframe"`
		TZOffset  string        `yaml:"tz_offset"`
		Interval  time.Duration `yaml:"interval"`
	} `yaml:"scan"`

	Evaluator struct {
		Interval time.Duration `yaml:"interval"`
	} `yaml:"evaluator"`

	Ledger struct {
		Path          string `yaml:"path"`
		MemoryPath    string `yaml:"memory_path"`
		RetentionDays int    `yaml:"retention_days"`
		WindowHours   int    `yaml:"window_hours"`
	} `yaml:"ledger"`

	// Extra or overriding instrument records; merged over the defaults.
	Instruments []models.Instrument `yaml:"instruments"`
}

func NewConfig() (*Config, error) {
	config := Config{}

	config.Service.HealthAddr = getenvDefault("HEALTH_ADDR", ":8080")
	config.Feed.BaseURL = getenvDefault("FEED_BASE_URL", "https://query1.finance.yahoo.com")
	config.Feed.Timeout = durationFromEnv("FEED_TIMEOUT", "12s")
	config.Feed.Spacing = durationFromEnv("FEED_SPACING", "150ms")
	config.Stream.MaxAge = durationFromEnv("STREAM_MAX_AGE", "30s")
	config.Scan.Timeframe = getenvDefault("TIMEFRAME", models.DefaultTimeframe)
	config.Scan.TZOffset = getenvDefault("TZ_OFFSET", "00:00")
	config.Scan.Interval = durationFromEnv("SCAN_INTERVAL", "15m")
	config.Evaluator.Interval = durationFromEnv("EVAL_INTERVAL", "5m")
	config.Ledger.Path = getenvDefault(ledgerPathENV, "data/taken_signals.csv")
	config.Ledger.MemoryPath = getenvDefault("MEMORY_PATH", "data/market_memory.csv")
	config.Ledger.RetentionDays = intFromEnv("RETENTION_DAYS", 30)
	config.Ledger.WindowHours = intFromEnv("WINDOW_HOURS", 48)

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		// No file is fine: env + defaults carry a full configuration.
		logger.Warn("config file not found, using env/defaults: %v", err)
	} else {
		defer func() {
			_ = file.Close()
		}()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(&config); err != nil {
			logger.Fatal("Failed to decode config file: %v", err)
		}
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if !models.ValidTimeframe(config.Scan.Timeframe) {
		config.Scan.Timeframe = models.DefaultTimeframe
	}

	return &config, nil
}

// InstrumentSet merges configured instrument records over the defaults.
func (c *Config) InstrumentSet() *models.InstrumentSet {
	merged := models.DefaultInstruments()
	for _, in := range c.Instruments {
		replaced := false
		for i := range merged {
			if merged[i].Symbol == in.Symbol {
				merged[i] = in
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, in)
		}
	}
	return models.NewInstrumentSet(merged)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
