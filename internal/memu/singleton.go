package memu

import (
	"context"
	"fmt"

	"github.com/Charpup/openclaw-memu-skill/internal/config"
	"github.com/Charpup/openclaw-memu-skill/internal/logging"
	"go.uber.org/zap"
)

// State describes the process-wide service lifecycle.
type State int

const (
	// StateUninitialized means Default has not run yet, or the last
	// connection attempt failed and may be retried.
	StateUninitialized State = iota
	// StateValidating means an initialization is in flight.
	StateValidating
	// StateConfigInvalid is terminal: the config snapshot failed
	// validation and no retry can succeed without a config change.
	StateConfigInvalid
	// StateConnected means the shared service is ready.
	StateConnected
	// StateClosed means the shared service was torn down explicitly.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateValidating:
		return "validating"
	case StateConfigInvalid:
		return "config_invalid"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// The process-wide shared service. Entry points run one operation per
// process, so they share a single connection pool and cache.
var defaultSvc = struct {
	ch    chan struct{} // capacity 1, held while mutating
	state State
	svc   *Service
	err   error
}{ch: make(chan struct{}, 1)}

func lockDefault() { defaultSvc.ch <- struct{}{} }

func unlockDefault() { <-defaultSvc.ch }

// Default returns the shared service, initializing it on first use.
//
// Initialization is guarded: concurrent callers block until the first
// finishes, then observe its outcome. A config validation failure is
// remembered and returned to every later call without touching the
// backend again. A connection failure is not remembered; the next
// call retries from scratch.
func Default(ctx context.Context) (*Service, error) {
	lockDefault()
	defer unlockDefault()

	switch defaultSvc.state {
	case StateConnected:
		return defaultSvc.svc, nil
	case StateConfigInvalid:
		return nil, defaultSvc.err
	case StateClosed:
		// A closed handle behaves like a fresh process; reinitialize.
		defaultSvc.state = StateUninitialized
	}

	defaultSvc.state = StateValidating

	cfg, err := config.Load()
	if err != nil {
		// Fail fast and stay failed: validation involves no IO, so
		// retrying without a config change cannot succeed.
		defaultSvc.state = StateConfigInvalid
		defaultSvc.err = fmt.Errorf("%w: %v", ErrConfigInvalid, err)
		return nil, defaultSvc.err
	}

	logger := newDefaultLogger(cfg)
	svc, err := NewService(ctx, cfg, logger)
	if err != nil {
		// Backend trouble is transient; let the next call retry.
		defaultSvc.state = StateUninitialized
		return nil, err
	}

	defaultSvc.state = StateConnected
	defaultSvc.svc = svc
	return svc, nil
}

// DefaultState reports the current lifecycle state.
func DefaultState() State {
	lockDefault()
	defer unlockDefault()
	return defaultSvc.state
}

// CloseDefault tears down the shared service. Safe to call in any
// state; closing an uninitialized handle is a no-op.
func CloseDefault() error {
	lockDefault()
	defer unlockDefault()

	var err error
	if defaultSvc.svc != nil {
		err = defaultSvc.svc.Close()
		defaultSvc.svc = nil
	}
	defaultSvc.state = StateClosed
	defaultSvc.err = nil
	return err
}

// ResetDefault returns the singleton to its pristine state, dropping
// even a remembered config failure. Intended for tests.
func ResetDefault() {
	lockDefault()
	defer unlockDefault()

	if defaultSvc.svc != nil {
		defaultSvc.svc.Close()
		defaultSvc.svc = nil
	}
	defaultSvc.state = StateUninitialized
	defaultSvc.err = nil
}

func newDefaultLogger(cfg *config.Config) *zap.Logger {
	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
