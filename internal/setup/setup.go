// Package setup drives the first-run configuration wizard: submit
// the initial server config, then poll the health endpoint until the
// restarted server comes back.
package setup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ebelousov/linkdash/internal/api"
)

// Wizard submits the setup payload and tracks the validation errors
// the setup endpoint reports as a list.
type Wizard struct {
	mu     sync.Mutex
	errs   []string
	errMsg string

	api *api.API
	log *zap.Logger
}

// New builds a setup wizard client.
func New(a *api.API, log *zap.Logger) *Wizard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Wizard{api: a, log: log}
}

// Apply submits the first-run configuration. Validation failures are
// recorded and readable via Errors; any other failure via ErrMessage.
func (w *Wizard) Apply(ctx context.Context, cfg api.SetupConfig) error {
	w.mu.Lock()
	w.errs = nil
	w.errMsg = ""
	w.mu.Unlock()

	err := w.api.ApplySetup(ctx, cfg)
	if err == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if len(apiErr.Errors) > 0 {
			w.errs = apiErr.Errors
		} else {
			w.errMsg = apiErr.Message
		}
	} else {
		w.errMsg = err.Error()
	}
	return err
}

// Errors returns the validation errors from the last failed Apply.
func (w *Wizard) Errors() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs
}

// ErrMessage returns the non-validation error from the last failed
// Apply, or "".
func (w *Wizard) ErrMessage() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errMsg
}

// WaitHealthy polls the health endpoint until it answers 2xx, up to
// maxTries attempts spaced by delay. Submitting the setup config
// restarts the server, so the first probes are expected to fail.
func (w *Wizard) WaitHealthy(ctx context.Context, maxTries int, delay time.Duration) error {
	for try := 1; try <= maxTries; try++ {
		if err := w.api.Health(ctx); err == nil {
			return nil
		} else {
			w.log.Debug("health probe failed",
				zap.Int("try", try),
				zap.Int("max_tries", maxTries),
				zap.Error(err),
			)
		}

		if try == maxTries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("server did not become healthy after %d tries", maxTries)
}
