package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"SERVICE_NAME", "HTTP_PORT", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "ANSWER_PAGE_SIZE", "ENABLE_ANSWER_EVENTS", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "qaboard" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.AnswerPageSize != 10 || !cfg.EnableAnswerEvents || cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected answer defaults %+v", cfg)
	}
	if cfg.RedisAddr != "" || cfg.RedisDB != 0 {
		t.Fatalf("expected redis disabled by default, got %+v", cfg)
	}
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "answers")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_ADDR", " localhost:6379 ")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ANSWER_PAGE_SIZE", "25")
	t.Setenv("ENABLE_ANSWER_EVENTS", "off")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "answers" || cfg.HTTPPort != "9090" {
		t.Fatalf("unexpected process config %+v", cfg)
	}
	if cfg.RedisAddr != "localhost:6379" || cfg.RedisDB != 2 {
		t.Fatalf("unexpected redis config %+v", cfg)
	}
	if cfg.AnswerPageSize != 25 || cfg.EnableAnswerEvents || cfg.ShutdownTimeout != 3*time.Second {
		t.Fatalf("unexpected answer config %+v", cfg)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"REDIS_DB":         "two",
		"ANSWER_PAGE_SIZE": "500",
		"SHUTDOWN_TIMEOUT": "soon",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("REDIS_DB", "")
			t.Setenv("ANSWER_PAGE_SIZE", "")
			t.Setenv("SHUTDOWN_TIMEOUT", "")
			t.Setenv(name, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected %s=%q to be rejected", name, value)
			}
		})
	}
}

func TestEnvBoolFallsBackOnUnknownValue(t *testing.T) {
	t.Setenv("ENABLE_ANSWER_EVENTS", "maybe")
	if !envBool("ENABLE_ANSWER_EVENTS", true) {
		t.Fatalf("expected fallback for unrecognised value")
	}
}
