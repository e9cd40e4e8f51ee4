package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsInt64List(t *testing.T) {
	t.Setenv("TEST_IDS", "42, 77,abc, 9000")

	got := getEnvAsInt64List("TEST_IDS", nil)
	assert.Equal(t, []int64{42, 77, 9000}, got)
}

func TestGetEnvAsInt64ListFallback(t *testing.T) {
	got := getEnvAsInt64List("TEST_IDS_UNSET", []int64{1})
	assert.Equal(t, []int64{1}, got)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "memory", cfg.App.SessionBackend)
	assert.Equal(t, 20, cfg.Limits.MaxRequests)
	assert.Equal(t, time.Minute, cfg.Limits.Window)
	assert.Equal(t, "Category", cfg.Notion.CategoryProperty)
}
