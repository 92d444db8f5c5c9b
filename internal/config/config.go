package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Tax     TaxConfig
	Insight InsightConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for uploaded documents.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// TaxConfig holds the engine's reference rates, as 0-100 percentages.
type TaxConfig struct {
	IBSNominal    float64 `mapstructure:"ibs_nominal"`
	CBSNominal    float64 `mapstructure:"cbs_nominal"`
	LegacyFood    float64 `mapstructure:"legacy_food"`
	LegacyGeneral float64 `mapstructure:"legacy_general"`
	CashbackPct   float64 `mapstructure:"cashback_pct"`
}

// InsightConfig holds generative explanation provider settings. An empty
// APIKey disables the generative tier.
type InsightConfig struct {
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// Load reads configuration from environment variables with the CLARITAX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CLARITAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "claritax")
	v.SetDefault("db.password", "claritax_secret")
	v.SetDefault("db.name", "claritax_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "claritax-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Tax defaults: standard reference rates assumed for unclassified
	// products, plus the flat legacy-regime approximation per category.
	v.SetDefault("tax.ibs_nominal", 8.8)
	v.SetDefault("tax.cbs_nominal", 17.7)
	v.SetDefault("tax.legacy_food", 12.5)
	v.SetDefault("tax.legacy_general", 34.4)
	v.SetDefault("tax.cashback_pct", 20.0)

	// Insight defaults
	v.SetDefault("insight.api_key", "")
	v.SetDefault("insight.model", "claude-sonnet-4-20250514")
	v.SetDefault("insight.timeout_secs", 30)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":           "CLARITAX_SERVER_PORT",
		"server.read_timeout":   "CLARITAX_SERVER_READ_TIMEOUT",
		"server.write_timeout":  "CLARITAX_SERVER_WRITE_TIMEOUT",
		"server.environment":    "CLARITAX_SERVER_ENVIRONMENT",
		"db.host":               "CLARITAX_DB_HOST",
		"db.port":               "CLARITAX_DB_PORT",
		"db.user":               "CLARITAX_DB_USER",
		"db.password":           "CLARITAX_DB_PASSWORD",
		"db.name":               "CLARITAX_DB_NAME",
		"db.sslmode":            "CLARITAX_DB_SSLMODE",
		"db.max_open":           "CLARITAX_DB_MAX_OPEN",
		"db.max_idle":           "CLARITAX_DB_MAX_IDLE",
		"s3.region":             "CLARITAX_S3_REGION",
		"s3.bucket":             "CLARITAX_S3_BUCKET",
		"s3.endpoint":           "CLARITAX_S3_ENDPOINT",
		"s3.access_key":         "CLARITAX_S3_ACCESS_KEY",
		"s3.secret_key":         "CLARITAX_S3_SECRET_KEY",
		"s3.max_file_size_mb":   "CLARITAX_S3_MAX_FILE_SIZE_MB",
		"log.level":             "CLARITAX_LOG_LEVEL",
		"log.format":            "CLARITAX_LOG_FORMAT",
		"cors.allowed_origins":  "CLARITAX_CORS_ALLOWED_ORIGINS",
		"tax.ibs_nominal":       "CLARITAX_TAX_IBS_NOMINAL",
		"tax.cbs_nominal":       "CLARITAX_TAX_CBS_NOMINAL",
		"tax.legacy_food":       "CLARITAX_TAX_LEGACY_FOOD",
		"tax.legacy_general":    "CLARITAX_TAX_LEGACY_GENERAL",
		"tax.cashback_pct":      "CLARITAX_TAX_CASHBACK_PCT",
		"insight.api_key":       "CLARITAX_INSIGHT_API_KEY",
		"insight.model":         "CLARITAX_INSIGHT_MODEL",
		"insight.timeout_secs":  "CLARITAX_INSIGHT_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if CLARITAX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("CLARITAX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Tax = TaxConfig{
		IBSNominal:    v.GetFloat64("tax.ibs_nominal"),
		CBSNominal:    v.GetFloat64("tax.cbs_nominal"),
		LegacyFood:    v.GetFloat64("tax.legacy_food"),
		LegacyGeneral: v.GetFloat64("tax.legacy_general"),
		CashbackPct:   v.GetFloat64("tax.cashback_pct"),
	}
	cfg.Insight = InsightConfig{
		APIKey:      v.GetString("insight.api_key"),
		Model:       v.GetString("insight.model"),
		TimeoutSecs: v.GetInt("insight.timeout_secs"),
	}

	return cfg, nil
}
