package config

import (
	"testing"
	"time"
)

func TestLoadFromEnvRequiresSigningKey(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error without JWT_SIGNING_KEY")
	}
}

func TestLoadFromEnvDefaultsAndOverrides(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("STATS_CACHE_TTL", "10s")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000, ,https://fuel.example")
	t.Setenv("ADMIN_EMAIL", "  Admin@Example.com ")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.StatsCacheTTL != 10*time.Second {
		t.Errorf("StatsCacheTTL = %v", cfg.StatsCacheTTL)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://fuel.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.AdminEmail != "admin@example.com" {
		t.Errorf("AdminEmail = %q", cfg.AdminEmail)
	}
	if cfg.JWTAccessTTL != 30*time.Minute {
		t.Errorf("JWTAccessTTL = %v", cfg.JWTAccessTTL)
	}
}

func TestLoadFromEnvRazorpayPair(t *testing.T) {
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("RAZORPAY_KEY_ID", "rzp_test_x")
	t.Setenv("RAZORPAY_KEY_SECRET", "")
	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("expected error when only key id is set")
	}
}
