package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"

	// placeholder shipped in config/config.yaml; refused in release mode
	DefaultJWTSecret = "change-me"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	// SQLite file path (driver: sqlite3)
	Path    string `yaml:"path"`
	Migrate bool   `yaml:"migrate"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	StaticDir       string        `yaml:"static_dir"`
	Swagger         bool          `yaml:"swagger"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
}

// RateLimit caps requests per client IP: Requests per Window, refilled
// evenly.
type RateLimit struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
	// idle clients are forgotten after this long
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type Certs struct {
	Cert string `yaml:"cert"`
	Key  string `yaml:"key"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Certificate Certs          `yaml:"certificate"`
}

// Load reads the YAML file at path, overlays LRS_* environment variables
// (a .env file in the working directory is honoured) and applies defaults.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("LRS_MODE", &c.Mode)
	str("LRS_ADDR", &c.Server.Addr)
	str("LRS_DB_DRIVER", &c.DB.Driver)
	str("LRS_DB_HOST", &c.DB.Host)
	str("LRS_DB_USER", &c.DB.Username)
	str("LRS_DB_PASSWORD", &c.DB.Password)
	str("LRS_DB_NAME", &c.DB.DBName)
	str("LRS_DB_PATH", &c.DB.Path)
	str("LRS_JWT_SECRET", &c.Auth.JWTSecret)

	if v, ok := lookup("LRS_DB_PORT"); ok && v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LRS_DB_PORT %q: %w", v, err)
		}
		c.DB.Port = p
	}
	if v, ok := lookup("LRS_RATE_LIMIT"); ok && v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LRS_RATE_LIMIT %q: %w", v, err)
		}
		c.Server.RateLimit.Enabled = on
	}
	if v, ok := lookup("LRS_ALLOWED_ORIGINS"); ok && v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDev
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8443"
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RateLimit.Requests <= 0 {
		c.Server.RateLimit.Requests = 100
	}
	if c.Server.RateLimit.Window <= 0 {
		c.Server.RateLimit.Window = 15 * time.Minute
	}
	if c.Server.RateLimit.IdleTTL < c.Server.RateLimit.Window {
		c.Server.RateLimit.IdleTTL = c.Server.RateLimit.Window
	}
	if c.DB.Driver == "" {
		c.DB.Driver = DriverMySQL
	}
	if c.DB.Port == 0 && c.DB.Driver == DriverMySQL {
		c.DB.Port = 3306
	}
	// pool sizes sum must stay below MySQL max_connections
	if c.DB.MaxOpenConns == 0 {
		c.DB.MaxOpenConns = 80
	}
	if c.DB.MaxIdleConns == 0 {
		c.DB.MaxIdleConns = 20
	}
	if c.DB.ConnMaxLifetime == 0 {
		c.DB.ConnMaxLifetime = 30 * time.Minute
	}
	if c.DB.ConnMaxIdleTime == 0 {
		c.DB.ConnMaxIdleTime = 5 * time.Minute
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = DefaultJWTSecret
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
}

func (c *Config) Validate() error {
	var problems []string
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		problems = append(problems, fmt.Sprintf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode))
	}
	switch c.DB.Driver {
	case DriverMySQL:
		if c.DB.Host == "" || c.DB.DBName == "" {
			problems = append(problems, "database.host and database.dbname are required for mysql")
		}
	case DriverSQLite:
		if c.DB.Path == "" {
			problems = append(problems, "database.path is required for sqlite3")
		}
	default:
		problems = append(problems, fmt.Sprintf("unsupported database.driver %q", c.DB.Driver))
	}
	if c.Mode == ModeRelease && c.Auth.JWTSecret == DefaultJWTSecret {
		problems = append(problems, "auth.jwt_secret must be set in release mode")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		problems = append(problems, "auth.bcrypt_cost must be between 4 and 31")
	}
	if (c.Certificate.Cert == "") != (c.Certificate.Key == "") {
		problems = append(problems, "certificate.cert and certificate.key must be set together")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// TLSFiles mirrors the config/tls/<mode>/ layout.
func (c *Config) TLSFiles() (certFile, keyFile string, ok bool) {
	if c.Certificate.Cert == "" {
		return "", "", false
	}
	dir := "config/tls/dev"
	if c.Mode == ModeRelease {
		dir = "config/tls/release"
	}
	return fmt.Sprintf("%s/%s", dir, c.Certificate.Cert), fmt.Sprintf("%s/%s", dir, c.Certificate.Key), true
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
