// Package testapp boots a fully wired application on an in-memory database.
package testapp

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/config"
	"github.com/talkincode/storefront/internal/app"
)

var seq int64

const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "Adm1n!pass"
)

// Config sqlite in-memory configuration with a bootstrap user and no rate limit
func Config(t testing.TB) *config.AppConfig {
	t.Helper()
	cfg := *config.DefaultAppConfig
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg.System.Workdir = t.TempDir()
	cfg.System.SeedDemo = false
	cfg.Web.RateLimit = 0
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, atomic.AddInt64(&seq, 1))
	cfg.Auth.JwtSecret = "test-jwt-secret"
	cfg.Auth.SessionSecret = "test-session-secret"
	cfg.Auth.BootstrapEmail = AdminEmail
	cfg.Auth.BootstrapPassword = AdminPassword
	cfg.Cache.Driver = "memory"
	cfg.Dispatcher.Notifier = "log"
	cfg.Dispatcher.Backoff = 0
	cfg.Logger.FileEnable = false
	return &cfg
}

// New initialised application released when the test ends
func New(t testing.TB) *app.Application {
	t.Helper()
	return NewWithConfig(t, Config(t))
}

func NewWithConfig(t testing.TB, cfg *config.AppConfig) *app.Application {
	t.Helper()
	a := app.NewApplication(cfg)
	require.NoError(t, a.Init(cfg))
	t.Cleanup(a.Release)
	return a
}
