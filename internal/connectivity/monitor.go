// Package connectivity tracks whether the remote chunking service is reachable.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/Zachkp/zach-dev-chunker/internal/logger"
)

type Status string

const (
	Checking     Status = "checking"
	Connected    Status = "connected"
	Disconnected Status = "disconnected"
)

// DefaultTimeout bounds a single health probe.
const DefaultTimeout = 5 * time.Second

// Prober is the health endpoint of the chunking service.
type Prober interface {
	Health(ctx context.Context) error
}

type Monitor struct {
	prober  Prober
	timeout time.Duration

	mu       sync.RWMutex
	status   Status
	onStatus func(Status)
}

func NewMonitor(prober Prober, timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		prober:  prober,
		timeout: timeout,
		status:  Checking,
	}
}

func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// OnStatus registers fn to run after every probe resolves.
func (m *Monitor) OnStatus(fn func(Status)) {
	m.mu.Lock()
	m.onStatus = fn
	m.mu.Unlock()
}

// Check probes the service and records the outcome. It never fails: every
// error, including the deadline, resolves to Disconnected.
func (m *Monitor) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	status := Connected
	if err := m.prober.Health(ctx); err != nil {
		logger.FromContext(ctx).Warn("chunking service unreachable", "error", err)
		status = Disconnected
	}

	m.mu.Lock()
	m.status = status
	fn := m.onStatus
	m.mu.Unlock()

	if fn != nil {
		fn(status)
	}
	return status
}

// Refresh runs Check in the background. Overlapping refreshes are not
// coalesced; whichever probe resolves last decides the status. The returned
// channel receives that probe's result.
func (m *Monitor) Refresh(ctx context.Context) <-chan Status {
	done := make(chan Status, 1)
	go func() {
		done <- m.Check(ctx)
	}()
	return done
}
