// Package config gathers settings for the lox tools. Values come from, in
// increasing priority: built-in defaults, a YAML file, a .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel    string `yaml:"log_level"`
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`

	Server ServerConfig `yaml:"server"`
	SMTP   SMTPConfig   `yaml:"smtp"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	JWTSecret    string        `yaml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	PasswordHash string        `yaml:"password_hash"`
}

type SMTPConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
	From string `yaml:"from"`
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

func Default() *Config {
	return &Config{
		LogLevel:    "warn",
		Prompt:      "> ",
		HistoryFile: ".lox_history",
		Server: ServerConfig{
			Addr:     ":8080",
			TokenTTL: time.Hour,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
	}
}

// Load builds the configuration. Either path may be empty, and a file that
// does not exist is skipped.
func Load(envFile, yamlFile string) (*Config, error) {
	cfg := Default()

	if yamlFile != "" {
		if err := cfg.loadYAML(yamlFile); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	setString("LOX_LOG_LEVEL", &c.LogLevel)
	setString("LOX_PROMPT", &c.Prompt)
	setString("LOX_HISTORY_FILE", &c.HistoryFile)
	setString("LOX_SERVER_ADDR", &c.Server.Addr)
	setString("LOX_JWT_SECRET", &c.Server.JWTSecret)
	setString("LOX_PASSWORD_HASH", &c.Server.PasswordHash)
	setString("SMTP_HOST", &c.SMTP.Host)
	setString("SMTP_USER", &c.SMTP.User)
	setString("SMTP_PASS", &c.SMTP.Pass)
	setString("SMTP_FROM", &c.SMTP.From)

	if v, ok := os.LookupEnv("LOX_TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: LOX_TOKEN_TTL: %w", err)
		}
		c.Server.TokenTTL = ttl
	}
	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: SMTP_PORT must be an integer: %w", err)
		}
		c.SMTP.Port = port
	}
	return nil
}

// Validate checks the settings every tool depends on.
func (c *Config) Validate() error {
	var errs ValidationError
	if _, err := c.SlogLevel(); err != nil {
		errs.Issues = append(errs.Issues, fmt.Sprintf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Server.TokenTTL <= 0 {
		errs.Issues = append(errs.Issues, "server.token_ttl must be positive")
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		errs.Issues = append(errs.Issues, fmt.Sprintf("smtp.port %d is out of range", c.SMTP.Port))
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// RequireServer checks the settings needed by the remote REPL server.
func (c *Config) RequireServer() error {
	var errs ValidationError
	if c.Server.Addr == "" {
		errs.Issues = append(errs.Issues, "server.addr must be provided")
	}
	if c.Server.JWTSecret == "" {
		errs.Issues = append(errs.Issues, "server.jwt_secret (LOX_JWT_SECRET) must be provided")
	}
	if c.Server.PasswordHash == "" {
		errs.Issues = append(errs.Issues, "server.password_hash (LOX_PASSWORD_HASH) must be provided; see 'lox hash'")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// RequireSMTP checks the settings needed to send mail.
func (c *Config) RequireSMTP() error {
	var errs ValidationError
	if c.SMTP.Host == "" {
		errs.Issues = append(errs.Issues, "smtp.host (SMTP_HOST) must be provided")
	}
	if c.SMTP.Port == 0 {
		errs.Issues = append(errs.Issues, "smtp.port (SMTP_PORT) must be provided")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}
