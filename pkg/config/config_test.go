package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultsWhenFilesMissing(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, ".env"), filepath.Join(dir, "lox.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prompt != "> " || cfg.Server.Addr != ":8080" || cfg.Server.TokenTTL != time.Hour {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelWarn {
		t.Fatalf("expected warn level, got %v (%v)", level, err)
	}
}

func TestYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lox.yaml", `
log_level: debug
prompt: "lox> "
server:
  addr: "127.0.0.1:9000"
  token_ttl: 15m
smtp:
  host: smtp.example.com
  port: 2525
`)

	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Prompt != "lox> " {
		t.Errorf("top-level fields wrong: %+v", cfg)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.TokenTTL != 15*time.Minute {
		t.Errorf("server fields wrong: %+v", cfg.Server)
	}
	if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 2525 {
		t.Errorf("smtp fields wrong: %+v", cfg.SMTP)
	}
}

func TestYAMLUnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lox.yaml", "colour: blue\n")
	if _, err := Load("", path); err == nil {
		t.Fatalf("expected an error for an unknown field")
	}
}

func TestEnvironmentOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "lox.yaml", "prompt: \"yaml> \"\n")
	t.Setenv("LOX_PROMPT", "env> ")
	t.Setenv("LOX_TOKEN_TTL", "2h")
	t.Setenv("SMTP_PORT", "465")

	cfg, err := Load("", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Prompt != "env> " {
		t.Errorf("expected env prompt, got %q", cfg.Prompt)
	}
	if cfg.Server.TokenTTL != 2*time.Hour {
		t.Errorf("expected 2h ttl, got %s", cfg.Server.TokenTTL)
	}
	if cfg.SMTP.Port != 465 {
		t.Errorf("expected port 465, got %d", cfg.SMTP.Port)
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "LOX_JWT_SECRET=from-dotenv\nSMTP_HOST=mail.local\n")
	// Registered so t.Setenv's cleanup unsets what godotenv writes.
	t.Setenv("LOX_JWT_SECRET", "")
	os.Unsetenv("LOX_JWT_SECRET")
	t.Setenv("SMTP_HOST", "")
	os.Unsetenv("SMTP_HOST")

	cfg, err := Load(envPath, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.JWTSecret != "from-dotenv" || cfg.SMTP.Host != "mail.local" {
		t.Fatalf(".env values not applied: %+v", cfg)
	}
}

func TestValidation(t *testing.T) {
	t.Setenv("LOX_LOG_LEVEL", "loud")
	t.Setenv("LOX_TOKEN_TTL", "-1s")

	_, err := Load("", "")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(vErr.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", vErr.Issues)
	}
	if !strings.Contains(err.Error(), "log_level \"loud\"") {
		t.Errorf("message should name the bad level: %s", err.Error())
	}
}

func TestBadPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "abc")
	if _, err := Load("", ""); err == nil {
		t.Fatalf("expected an error for a non-numeric port")
	}
}

func TestRequireServer(t *testing.T) {
	cfg := Default()
	var vErr *ValidationError
	if err := cfg.RequireServer(); !errors.As(err, &vErr) || len(vErr.Issues) != 2 {
		t.Fatalf("expected secret and hash issues, got %v", err)
	}

	cfg.Server.JWTSecret = "s"
	cfg.Server.PasswordHash = "h"
	if err := cfg.RequireServer(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequireSMTP(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireSMTP(); err == nil {
		t.Fatalf("expected missing host to be reported")
	}
	cfg.SMTP.Host = "smtp.example.com"
	if err := cfg.RequireSMTP(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
