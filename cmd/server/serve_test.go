package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunServeReturnsSetupErrors(t *testing.T) {
	t.Setenv("BLOG_ENV", "test")
	t.Setenv("BLOG_LOG_LEVEL", "error")
	t.Setenv("BLOG_DB_DRIVER", "sqlite3")
	t.Setenv("DATABASE_URI", filepath.Join(t.TempDir(), "serve.db"))
	t.Setenv("BLOG_SESSION_BACKEND", "redis")
	t.Setenv("BLOG_REDIS_URL", "not-a-redis-url")

	err := runServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to setup redis session store")
}

func TestRunServeRejectsBadLogLevel(t *testing.T) {
	t.Setenv("BLOG_ENV", "test")
	t.Setenv("BLOG_LOG_LEVEL", "loud")
	t.Setenv("DATABASE_URI", filepath.Join(t.TempDir(), "serve.db"))

	err := runServe()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create logger")
}
