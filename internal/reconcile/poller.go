package reconcile

import (
	"context"
	"time"

	"ycensure/internal/compute"
	"ycensure/internal/logging"

	"go.uber.org/zap"
)

// Finder is the read side of the instance directory.
type Finder interface {
	FindByName(ctx context.Context, name, folderID string) (*compute.Instance, error)
}

// Poll defaults. YC usually reports a status within seconds of create, but
// the delay is unbounded in principle.
const (
	DefaultPollTimeout  = 90 * time.Second
	DefaultPollInterval = 2 * time.Second
)

// Poller waits for a freshly created instance to report a status. The
// timeout is soft: when the budget runs out the poller returns whatever the
// final lookup observed, possibly nothing, and no error.
type Poller struct {
	directory Finder
	timeout   time.Duration
	interval  time.Duration

	// Now and Sleep are swappable so tests run against a fake clock.
	Now   func() time.Time
	Sleep func(time.Duration)
}

// NewPoller creates a Poller. Non-positive durations fall back to defaults.
func NewPoller(directory Finder, timeout, interval time.Duration) *Poller {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		directory: directory,
		timeout:   timeout,
		interval:  interval,
		Now:       time.Now,
		Sleep:     time.Sleep,
	}
}

// Wait polls the directory until the instance reports a non-empty status or
// the budget elapses. Lookup failures abort the poll and propagate.
func (p *Poller) Wait(ctx context.Context, name, folderID string) (*compute.Instance, error) {
	start := p.Now()

	for p.Now().Sub(start) < p.timeout {
		inst, err := p.directory.FindByName(ctx, name, folderID)
		if err != nil {
			return nil, err
		}
		if inst != nil && inst.Status != "" {
			return inst, nil
		}

		logging.Logger().Debug("instance status not reported yet, retrying",
			zap.String("name", name),
			zap.Duration("elapsed", p.Now().Sub(start)))
		p.Sleep(p.interval)
	}

	logging.Logger().Warn("status poll budget exhausted, returning best-effort state",
		zap.String("name", name),
		zap.Duration("timeout", p.timeout))

	return p.directory.FindByName(ctx, name, folderID)
}
