package config

import (
	"testing"
	"time"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"secretKey": map[string]any{
			"access": "",
		},
		"passwordStrength": map[string]any{
			"minLength": 8,
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "PASSWORDSTRENGTH_MINLENGTH", want: "passwordStrength.minLength"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("AccessTokenTTL = %v, want 30m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.PasswordStrength.MinLength != 8 {
		t.Fatalf("PasswordStrength.MinLength = %d, want 8", cfg.PasswordStrength.MinLength)
	}
	if !cfg.PasswordStrength.RequireUppercase || !cfg.PasswordStrength.RequireLowercase || !cfg.PasswordStrength.RequireNumbers {
		t.Fatal("expected uppercase/lowercase/number requirements on by default")
	}
	if cfg.PasswordStrength.RequireSpecial {
		t.Fatal("special characters must not be required by default")
	}
	if cfg.Pagination.DefaultPageSize != 20 || cfg.Pagination.MaxPageSize != 100 {
		t.Fatalf("pagination defaults = %+v, want 20/100", cfg.Pagination)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Auth:             &AuthConfig{AccessTokenTTL: time.Hour, BcryptCost: 12},
		PasswordStrength: &PasswordStrengthConfig{MinLength: 12, MaxLength: 64},
		Pagination:       &PaginationConfig{DefaultPageSize: 10, MaxPageSize: 50},
	}
	applyDefaults(cfg)

	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Fatalf("AccessTokenTTL = %v, want 1h", cfg.Auth.AccessTokenTTL)
	}
	if cfg.PasswordStrength.MinLength != 12 {
		t.Fatalf("MinLength = %d, want 12", cfg.PasswordStrength.MinLength)
	}
	if cfg.Pagination.MaxPageSize != 50 {
		t.Fatalf("MaxPageSize = %d, want 50", cfg.Pagination.MaxPageSize)
	}
}
