package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ProviderPinger probes the identity provider's health endpoint.
type ProviderPinger interface {
	Ping(ctx context.Context) error
}

// SlotPinger probes a local session slot backend.
type SlotPinger interface {
	Ping() error
}

// Monitor periodically checks the identity provider and the session slot
// backend. It feeds the health endpoint only; the demo login path never
// consults it.
type Monitor struct {
	provider ProviderPinger
	slot     SlotPinger
	redis    *redislib.Client

	status Status
	mu     sync.RWMutex
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates a monitor. Exactly one of slot/redis is expected to be
// non-nil, matching the configured session backend.
func New(provider ProviderPinger, slot SlotPinger, redis *redislib.Client, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Monitor{
		provider: provider,
		slot:     slot,
		redis:    redis,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger,
	}

	schedule := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	_, _ = m.cron.AddFunc(schedule, m.refresh)

	return m
}

// Start runs an immediate probe and launches the schedule.
func (m *Monitor) Start() {
	if m == nil || m.cron == nil {
		return
	}
	m.refresh()
	m.cron.Start()
}

// Stop halts the schedule and waits for a running probe to finish.
func (m *Monitor) Stop() {
	if m == nil || m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
}

// IsOnline reports whether both legs answered the last probe.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Provider && m.status.Slot
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) refresh() {
	status := Status{
		Provider:  m.checkProvider(),
		Slot:      m.checkSlot(),
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) checkProvider() bool {
	if m.provider == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.provider.Ping(ctx); err != nil {
		m.logger.Debug("provider probe failed", zap.Error(err))
		return false
	}
	return true
}

func (m *Monitor) checkSlot() bool {
	switch {
	case m.slot != nil:
		if err := m.slot.Ping(); err != nil {
			m.logger.Warn("session slot probe failed", zap.Error(err))
			return false
		}
		return true
	case m.redis != nil:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return m.redis.Ping(ctx).Err() == nil
	default:
		return false
	}
}
