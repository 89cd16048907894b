package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_RequiredFields(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate(), "empty config should fail validation")

	cfg = &Config{Port: "8460"}
	assert.Error(t, cfg.Validate(), "missing JWT secret should fail validation")

	cfg = &Config{Port: "8460", JWTSecret: "dev-secret"}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionHardening(t *testing.T) {
	base := Config{
		Port:       "8460",
		Env:        "production",
		DBPassword: "s3cure-db-password",
		DBSSLMode:  "require",
	}

	t.Run("default secret rejected", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "your-secret-key-change-in-production"
		assert.Error(t, cfg.Validate())
	})

	t.Run("short secret rejected", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "short"
		assert.Error(t, cfg.Validate())
	})

	t.Run("weak db password rejected", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "a-very-long-production-grade-secret-value"
		cfg.DBPassword = "password"
		assert.Error(t, cfg.Validate())
	})

	t.Run("hardened config accepted", func(t *testing.T) {
		cfg := base
		cfg.JWTSecret = "a-very-long-production-grade-secret-value"
		assert.NoError(t, cfg.Validate())
	})
}
