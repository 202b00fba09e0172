package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, "fs", cfg.PhotoDriver)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.IsProduction())
	assert.NotEmpty(t, cfg.Warnings)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("PHOTO_DRIVER", "s3")
	t.Setenv("PHOTO_S3_BUCKET", "erp-photos")
	t.Setenv("PHOTO_S3_PATH_STYLE", "true")
	t.Setenv("IDEMPOTENCY_TTL", "1h")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, "erp-photos", cfg.PhotoS3Bucket)
	assert.True(t, cfg.PhotoS3PathStyle)
	assert.Equal(t, time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.IsProduction())
	assert.Contains(t, cfg.Warnings, "STORAGE_DRIVER=memory in production, data is lost on restart")
}

func TestLoad_Rejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"unknown storage", map[string]string{"JWT_SECRET": testSecret, "STORAGE_DRIVER": "sqlite"}},
		{"s3 without bucket", map[string]string{"JWT_SECRET": testSecret, "PHOTO_DRIVER": "s3"}},
		{"bad ttl", map[string]string{"JWT_SECRET": testSecret, "IDEMPOTENCY_TTL": "soon"}},
		{"negative timeout", map[string]string{"JWT_SECRET": testSecret, "REQUEST_TIMEOUT": "-1s"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
