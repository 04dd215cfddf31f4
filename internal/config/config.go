package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ContractsConfig struct {
	NumberMaxAttempts   int
	ExpiringHorizonDays int
	RenewalInterval     time.Duration
	RenewalWorkers      int
	RenewalBatchSize    int
}

type ProviderConfig struct {
	APIURL        string
	APIKey        string
	WebhookSecret string
}

type SignatureConfig struct {
	DefaultProvider string
	Sandbox         bool
	SandboxSecret   string
	Clicksign       ProviderConfig
	Docusign        ProviderConfig
	RequestTimeout  time.Duration
}

type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	UseSSL         bool
	URLExpireHours int
}

// Enabled reports whether rendered documents should be uploaded.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != ""
}

type Config struct {
	Environment string
	LogLevel    string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Contracts   ContractsConfig
	Signature   SignatureConfig
	Storage     StorageConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")
	v.AutomaticEnv()

	setDefaults(v)

	_ = v.ReadInConfig()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_HOST", "0.0.0.0")
	v.SetDefault("HTTP_PORT", 7090)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("CONTRACT_NUMBER_MAX_ATTEMPTS", 10)
	v.SetDefault("ANALYTICS_EXPIRING_HORIZON_DAYS", 30)
	v.SetDefault("RENEWAL_INTERVAL", "1h")
	v.SetDefault("RENEWAL_WORKERS", 1)
	v.SetDefault("RENEWAL_BATCH_SIZE", 500)
	v.SetDefault("SIGNATURE_DEFAULT_PROVIDER", "clicksign")
	v.SetDefault("SIGNATURE_SANDBOX", false)
	v.SetDefault("SIGNATURE_REQUEST_TIMEOUT", "15s")
	v.SetDefault("MINIO_BUCKET", "contracts")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_URL_EXPIRE_HOURS", 24)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Host:               v.GetString("HTTP_HOST"),
			Port:               v.GetInt("HTTP_PORT"),
			CORSAllowedOrigins: parseList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Contracts: ContractsConfig{
			NumberMaxAttempts:   v.GetInt("CONTRACT_NUMBER_MAX_ATTEMPTS"),
			ExpiringHorizonDays: v.GetInt("ANALYTICS_EXPIRING_HORIZON_DAYS"),
			RenewalInterval:     v.GetDuration("RENEWAL_INTERVAL"),
			RenewalWorkers:      v.GetInt("RENEWAL_WORKERS"),
			RenewalBatchSize:    v.GetInt("RENEWAL_BATCH_SIZE"),
		},
		Signature: SignatureConfig{
			DefaultProvider: strings.ToLower(strings.TrimSpace(v.GetString("SIGNATURE_DEFAULT_PROVIDER"))),
			Sandbox:         v.GetBool("SIGNATURE_SANDBOX"),
			SandboxSecret:   v.GetString("SANDBOX_WEBHOOK_SECRET"),
			RequestTimeout:  v.GetDuration("SIGNATURE_REQUEST_TIMEOUT"),
			Clicksign: ProviderConfig{
				APIURL:        v.GetString("CLICKSIGN_API_URL"),
				APIKey:        v.GetString("CLICKSIGN_API_KEY"),
				WebhookSecret: v.GetString("CLICKSIGN_WEBHOOK_SECRET"),
			},
			Docusign: ProviderConfig{
				APIURL:        v.GetString("DOCUSIGN_API_URL"),
				APIKey:        v.GetString("DOCUSIGN_API_KEY"),
				WebhookSecret: v.GetString("DOCUSIGN_WEBHOOK_SECRET"),
			},
		},
		Storage: StorageConfig{
			Endpoint:       v.GetString("MINIO_ENDPOINT"),
			AccessKey:      v.GetString("MINIO_ACCESS_KEY"),
			SecretKey:      v.GetString("MINIO_SECRET_KEY"),
			Bucket:         v.GetString("MINIO_BUCKET"),
			UseSSL:         v.GetBool("MINIO_USE_SSL"),
			URLExpireHours: v.GetInt("MINIO_URL_EXPIRE_HOURS"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.Contracts.NumberMaxAttempts < 1 {
		return fmt.Errorf("CONTRACT_NUMBER_MAX_ATTEMPTS must be positive")
	}
	if cfg.Contracts.ExpiringHorizonDays < 0 {
		return fmt.Errorf("ANALYTICS_EXPIRING_HORIZON_DAYS must not be negative")
	}
	if cfg.Contracts.RenewalWorkers < 1 {
		return fmt.Errorf("RENEWAL_WORKERS must be positive")
	}
	if cfg.Contracts.RenewalInterval <= 0 {
		return fmt.Errorf("RENEWAL_INTERVAL must be positive")
	}
	if cfg.Storage.Enabled() && (cfg.Storage.AccessKey == "" || cfg.Storage.SecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when MINIO_ENDPOINT is set")
	}
	if cfg.Signature.Sandbox && cfg.Signature.SandboxSecret == "" && cfg.Environment != "development" {
		return fmt.Errorf("SANDBOX_WEBHOOK_SECRET is required when SIGNATURE_SANDBOX is set outside development")
	}
	if !cfg.Signature.Sandbox {
		switch cfg.Signature.DefaultProvider {
		case "clicksign":
			if cfg.Signature.Clicksign.WebhookSecret == "" {
				return fmt.Errorf("CLICKSIGN_WEBHOOK_SECRET is required")
			}
		case "docusign":
			if cfg.Signature.Docusign.WebhookSecret == "" {
				return fmt.Errorf("DOCUSIGN_WEBHOOK_SECRET is required")
			}
		default:
			return fmt.Errorf("unknown SIGNATURE_DEFAULT_PROVIDER %q", cfg.Signature.DefaultProvider)
		}
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
