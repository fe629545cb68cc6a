package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Mail          MailConfig          `mapstructure:"mail"`
	Client        ClientConfig        `mapstructure:"client"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"min=0,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ValidateRequests  bool          `mapstructure:"validate_requests"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	BCryptCost int `mapstructure:"bcrypt_cost" validate:"omitempty,min=4,max=15"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

type MailConfig struct {
	Driver         string `mapstructure:"driver" validate:"omitempty,oneof=log sendgrid"`
	SendGridAPIKey string `mapstructure:"sendgrid_api_key" validate:"required_if=Driver sendgrid"`
	FromName       string `mapstructure:"from_name"`
	FromEmail      string `mapstructure:"from_email" validate:"omitempty,email"`
	MaxWorkers     int    `mapstructure:"max_workers" validate:"min=0"`
	QueueSize      int    `mapstructure:"queue_size" validate:"min=0"`
}

// ClientConfig drives the console: where the backend lives and where the
// session entry is kept between invocations.
type ClientConfig struct {
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	StoragePath string        `mapstructure:"storage_path"`
}

const (
	DefaultClientBaseURL = "http://localhost:5000"
	DefaultClientTimeout = 10 * time.Second
)

// ----------------- DEFAULTS -----------------

func (c *Config) ApplyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
	if c.Mail.Driver == "" {
		c.Mail.Driver = "log"
	}
	if c.Mail.FromName == "" {
		c.Mail.FromName = "InsightPulse"
	}
	if c.Client.BaseURL == "" {
		c.Client.BaseURL = DefaultClientBaseURL
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = DefaultClientTimeout
	}
	if c.Client.StoragePath == "" {
		c.Client.StoragePath = DefaultStoragePath()
	}
}

// DefaultStoragePath is the file that plays the part of browser local
// storage for the console.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "insight-pulse", "storage.json")
}

func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port:             getEnvAsInt("HTTP_SERVER_PORT", 5000),
			BaseURL:          getEnv("HTTP_SERVER_BASE_URL", ""),
			AllowedOrigins:   getEnv("HTTP_SERVER_ALLOWED_ORIGINS", "*"),
			ValidateRequests: getEnv("HTTP_SERVER_VALIDATE_REQUESTS", "false") == "true",
		},
		Database: DatabaseConfig{
			MaxOpenConns: getEnvAsInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DATABASE_MAX_IDLE_CONNS", 5),
			Source:       getEnv("DATABASE_SOURCE", ""),
		},
		Security: SecurityConfig{
			BCryptCost: getEnvAsInt("SECURITY_BCRYPT_COST", 10),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Mail: MailConfig{
			Driver:         getEnv("MAIL_DRIVER", "log"),
			SendGridAPIKey: getEnv("MAIL_SENDGRID_API_KEY", ""),
			FromName:       getEnv("MAIL_FROM_NAME", "InsightPulse"),
			FromEmail:      getEnv("MAIL_FROM_EMAIL", ""),
			MaxWorkers:     getEnvAsInt("MAIL_MAX_WORKERS", 2),
			QueueSize:      getEnvAsInt("MAIL_QUEUE_SIZE", 100),
		},
		Client: ClientConfig{
			BaseURL:     getEnv("CLIENT_BASE_URL", DefaultClientBaseURL),
			StoragePath: getEnv("CLIENT_STORAGE_PATH", ""),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

// RequireSource is checked by commands that actually open the database;
// the console never needs one.
func (c *DatabaseConfig) RequireSource() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("database.source is required")
	}
	return nil
}
