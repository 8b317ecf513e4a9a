package state

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
)

// Config is the read-once container for the server's feature flags.
// It is fetched at application start and re-fetched only after the
// first-run setup completes.
type Config struct {
	mu  sync.Mutex
	cfg *api.ServerConfig

	api *api.API
	log *zap.Logger
}

// NewConfig builds the server-config container.
func NewConfig(a *api.API, log *zap.Logger) *Config {
	if log == nil {
		log = zap.NewNop()
	}
	return &Config{api: a, log: log}
}

// Load fetches the config if it has not been fetched yet.
func (c *Config) Load(ctx context.Context) error {
	c.mu.Lock()
	loaded := c.cfg != nil
	c.mu.Unlock()
	if loaded {
		return nil
	}
	return c.Refresh(ctx)
}

// Refresh re-fetches the config. Called after setup completes so the
// setup_done flag and base URL reflect the restarted server.
func (c *Config) Refresh(ctx context.Context) error {
	cfg, err := c.api.Config(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.cfg = cfg
	c.mu.Unlock()
	c.log.Debug("server config loaded",
		zap.Bool("setup_done", cfg.SetupDone),
		zap.String("base_url", cfg.BaseURL),
	)
	return nil
}

// Get returns the cached config, or nil before the first Load.
func (c *Config) Get() *api.ServerConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}
