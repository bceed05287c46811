package config

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port            string   `yaml:"port" env:"SERVER_PORT"`
		Mode            string   `yaml:"mode" env:"SERVER_MODE"`
		FrontendURL     string   `yaml:"frontend_url" env:"FRONTEND_URL"`
		AppBaseURL      string   `yaml:"app_base_url" env:"APP_BASE_URL"`
		AllowedOrigins  []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
		ReadTimeout     string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout    string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		ShutdownTimeout string   `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		VerifyTokenExpiration string `yaml:"verify_token_expiration" env:"JWT_VERIFY_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	SMTP struct {
		Host      string `yaml:"host" env:"SMTP_HOST"`
		Port      int    `yaml:"port" env:"SMTP_PORT"`
		Username  string `yaml:"username" env:"SMTP_USER"`
		Password  string `yaml:"password" env:"SMTP_PASS"`
		FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME"`
		FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL"`
	} `yaml:"smtp"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	RateLimit struct {
		// Per-IP limit on the public auth endpoints
		AuthRequestsPerMinute int `yaml:"auth_requests_per_minute" env:"RATE_LIMIT_AUTH_RPM"`
		AuthBurst             int `yaml:"auth_burst" env:"RATE_LIMIT_AUTH_BURST"`
		// Per-connection limit on chat messages
		ChatMessagesPerSecond float64 `yaml:"chat_messages_per_second" env:"RATE_LIMIT_CHAT_MPS"`
		ChatBurst             int     `yaml:"chat_burst" env:"RATE_LIMIT_CHAT_BURST"`
	} `yaml:"rate_limit"`

	// Colleges maps a supported college name to the email domain its members register with.
	Colleges map[string]string `yaml:"colleges" env:"COLLEGES"`

	Mentions struct {
		// Budget for the asynchronous notification fan-out of one message
		Timeout string `yaml:"timeout" env:"MENTION_TIMEOUT"`
	} `yaml:"mentions"`

	Seed struct {
		Enabled bool `yaml:"enabled" env:"SEED_ENABLED"`
	} `yaml:"seed"`
}

// College is a supported college and its email domain
type College struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// DefaultColleges are the colleges supported out of the box
func DefaultColleges() map[string]string {
	return map[string]string{
		"NIT Calicut":           "nitc.ac.in",
		"NIT Trichy":            "nitt.edu",
		"IIT Bombay":            "iitb.ac.in",
		"IIT Delhi":             "iitd.ac.in",
		"Chandigarh University": "cuchd.in",
	}
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if len(config.Colleges) == 0 {
		config.Colleges = DefaultColleges()
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "5000"
	config.Server.Mode = "development"
	config.Server.FrontendURL = "http://localhost:5173"
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "peerconnect"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"

	config.JWT.AccessTokenExpiration = "720h"
	config.JWT.VerifyTokenExpiration = "24h"
	config.JWT.Issuer = "peerconnect"

	config.SMTP.Port = 587
	config.SMTP.FromName = "PeerConnect"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.RateLimit.AuthRequestsPerMinute = 30
	config.RateLimit.AuthBurst = 10
	config.RateLimit.ChatMessagesPerSecond = 5
	config.RateLimit.ChatBurst = 10

	config.Mentions.Timeout = "30s"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(reflect.ValueOf(config))
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	durations := map[string]string{
		"JWT access token expiration": config.JWT.AccessTokenExpiration,
		"JWT verify token expiration": config.JWT.VerifyTokenExpiration,
		"server read timeout":         config.Server.ReadTimeout,
		"server write timeout":        config.Server.WriteTimeout,
		"server shutdown timeout":     config.Server.ShutdownTimeout,
		"mention timeout":             config.Mentions.Timeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	for name, domain := range config.Colleges {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(domain) == "" {
			return fmt.Errorf("college entries need both a name and a domain")
		}
	}

	return nil
}

// CollegeDomain returns the email domain registered for a college
func (c *Config) CollegeDomain(college string) (string, bool) {
	domain, ok := c.Colleges[college]
	return domain, ok
}

// CollegeList returns the supported colleges sorted by name
func (c *Config) CollegeList() []College {
	list := make([]College, 0, len(c.Colleges))
	for name, domain := range c.Colleges {
		list = append(list, College{Name: name, Domain: domain})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// PublicBaseURL is where verification links point. It falls back to the local listener.
func (c *Config) PublicBaseURL() string {
	if c.Server.AppBaseURL != "" {
		return strings.TrimRight(c.Server.AppBaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
