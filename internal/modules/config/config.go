package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	adminUserIDENV    = "ADMIN_USER_ID"
)

// Config ...
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	AdminUserID int64  `yaml:"admin_user_id"`
	DB          string `yaml:"db_dsn"`
	LogLevel    string `yaml:"log_level"`

	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	// Monitoring knobs. RSIPeriod is the lookback of the oscillator;
	// UseAdjust selects the dividend/split-adjusted price scale.
	RSIPeriod                  int  `yaml:"rsi_period"`
	UseAdjust                  bool `yaml:"use_adjust"`
	HistFetchDays              int  `yaml:"hist_fetch_days"`
	MaxNotificationsPerTrigger int  `yaml:"max_notifications_per_trigger"`
	CheckInterval              time.Duration
	RandomDelayMax             time.Duration

	// Upstream etiquette. RequestInterval spaces out sequential calls so the
	// quote source does not rate-limit us; the sina endpoints in particular
	// prefer an interval of a second or more.
	RequestInterval       time.Duration
	HTTPTimeout           time.Duration
	FetchRetryAttempts    int
	FetchRetryDelay       time.Duration
	FetchFailureThreshold int
	BlockCheckInterval    time.Duration

	EnableDailyBriefing bool
	BriefingTimes       string // comma-separated HH:MM, exchange-local
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		LogLevel:                   getenvDefault("LOG_LEVEL", "info"),
		RSIPeriod:                  intFromEnv("RSI_PERIOD", 6),
		UseAdjust:                  boolFromEnv("USE_ADJUST", true),
		HistFetchDays:              intFromEnv("HIST_FETCH_DAYS", 200),
		MaxNotificationsPerTrigger: intFromEnv("MAX_NOTIFICATIONS_PER_TRIGGER", 1),
		CheckInterval:              durationFromEnv("CHECK_INTERVAL", "60s"),
		RandomDelayMax:             durationFromEnv("RANDOM_DELAY_MAX", "0s"),

		RequestInterval:       durationFromEnv("REQUEST_INTERVAL", "1s"),
		HTTPTimeout:           durationFromEnv("HTTP_TIMEOUT", "10s"),
		FetchRetryAttempts:    intFromEnv("FETCH_RETRY_ATTEMPTS", 3),
		FetchRetryDelay:       durationFromEnv("FETCH_RETRY_DELAY", "5s"),
		FetchFailureThreshold: intFromEnv("FETCH_FAILURE_THRESHOLD", 5),
		BlockCheckInterval:    durationFromEnv("EM_BLOCK_CHECK_INTERVAL", "300s"),

		EnableDailyBriefing: boolFromEnv("ENABLE_DAILY_BRIEFING", false),
		BriefingTimes:       getenvDefault("DAILY_BRIEFING_TIMES", "15:30"),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	if v := os.Getenv(adminUserIDENV); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("env %s must be numeric: %w", adminUserIDENV, err)
		}
		config.AdminUserID = id
	}

	if config.Telegram.Token == "" {
		return nil, fmt.Errorf("telegram token is required (%s or telegram.token)", tokenTelegramENV)
	}
	if config.AdminUserID == 0 {
		return nil, fmt.Errorf("admin user id is required (%s or admin_user_id)", adminUserIDENV)
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
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
