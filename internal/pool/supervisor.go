package pool

import (
	"context"
	"errors"
	"sync"
	"time"
)

// supervisor drives the periodic sweep of §4.5: every HealthCheckInterval
// it walks every family, probes entries whose checkHealth flag allows it,
// and applies the resulting verdicts. It also serves the ad-hoc,
// operator-triggered "performHealthChecks(isInit)" call used at daemon
// startup.
type supervisor struct {
	manager  *Manager
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
}

func newSupervisor(m *Manager, interval time.Duration) *supervisor {
	return &supervisor{manager: m, interval: interval}
}

// start launches the periodic sweep loop in a background goroutine. Safe
// to call once; a second call is a no-op.
func (s *supervisor) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.stopped = make(chan struct{})

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.manager.PerformHealthChecks(ctx, false)
			}
		}
	}()
}

// stop cancels the sweep loop and waits for it to exit.
func (s *supervisor) stop() {
	s.mu.Lock()
	cancel := s.cancel
	stopped := s.stopped
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

// PerformHealthChecks probes every eligible entry across every family.
// isInit relaxes nothing about which entries are eligible — checkHealth
// still gates participation — but callers use it to distinguish a
// startup sweep from a periodic one for logging/event purposes.
func (m *Manager) PerformHealthChecks(ctx context.Context, isInit bool) {
	m.adapterCache.clear()
	now := time.Now()

	for _, family := range m.store.Families() {
		fs, ok := m.store.familyIfExists(family)
		if !ok {
			continue
		}

		fs.mu.RLock()
		entries := make([]*Entry, len(fs.entries))
		copy(entries, fs.entries)
		fs.mu.RUnlock()

		for _, e := range entries {
			if e.IsDisabled || !e.checkHealthEnabled() {
				continue
			}
			// An unhealthy entry that hasn't cooled down yet gets left
			// alone here too; it'll get probed by Select's own recovery
			// sweep once healthCheckInterval elapses (§4.5).
			if !e.IsHealthy && now.Sub(parseTime(e.LastErrorTime)) < m.healthCheckInterval {
				continue
			}
			m.runProbeAndApply(ctx, family, e, isInit, false)
		}
	}
}

// scheduleRecoveryProbes probes a batch of cooled-down unhealthy entries
// synchronously from within the selector's critical section is not
// possible (it would block request-serving on network I/O), so instead
// this dedups against an in-flight set and fires each probe on its own
// goroutine.
func (m *Manager) scheduleRecoveryProbes(family Family, entries []*Entry) {
	for _, e := range entries {
		key := adapterCacheKey(family, e.UUID)

		m.inFlightMu.Lock()
		if m.inFlightRecovery[key] {
			m.inFlightMu.Unlock()
			continue
		}
		m.inFlightRecovery[key] = true
		m.inFlightMu.Unlock()

		go func(e *Entry) {
			defer func() {
				m.inFlightMu.Lock()
				delete(m.inFlightRecovery, key)
				m.inFlightMu.Unlock()
			}()
			m.runProbeAndApply(context.Background(), family, e, false, true)
		}(e)
	}
}

// runProbeAndApply probes one entry and applies the resulting verdict.
// isRecovery distinguishes the two callers that share this function:
// scheduleRecoveryProbes (§4.4, a selection-triggered recovery attempt
// against an already-unhealthy entry) versus the periodic supervisor sweep
// (§4.5, checking any eligible entry regardless of current health). The two
// paths diverge on failure and on resetUsageCount, so both still funnel
// through the same MarkHealthy/MarkUnhealthy(-Failed) calls to keep event
// logging and persistence centralized.
func (m *Manager) runProbeAndApply(ctx context.Context, family Family, e *Entry, isInit bool, isRecovery bool) {
	m.adapterCache.invalidate(family, e.UUID)

	uuid := e.UUID
	model := e.resolveCheckModel(family)
	m.store.withEntry(family, uuid, func(entry *Entry) {
		entry.LastHealthCheckTime = nowString()
		entry.LastHealthCheckModel = model
	})

	healthy, message, err := m.probeEntry(ctx, family, e)
	if errors.Is(err, ErrNoAdapterFactory) {
		// No collaborator configured to actually run the probe — this is
		// not evidence the entry is unhealthy, so leave its health state
		// untouched and just clear its counters (§4.5, probe returned
		// null).
		m.ResetCounters(family, uuid)
		return
	}
	if err != nil {
		if isRecovery {
			// §4.4: a failed recovery attempt does not bump errorCount —
			// the entry is already unhealthy — only its failure reason
			// and probe timestamp are refreshed.
			m.MarkRecoveryFailed(family, uuid, err.Error())
		} else {
			m.MarkUnhealthy(family, uuid, err.Error())
		}
		return
	}
	if healthy {
		// §4.4/§4.5: only the supervisor's own sweep resets usageCount on
		// success; a selection-triggered recovery leaves it accumulating.
		m.MarkHealthy(family, uuid, !isRecovery, model)
		return
	}
	if message == "" {
		message = "health probe reported unhealthy"
	}
	if isRecovery {
		m.MarkRecoveryFailed(family, uuid, message)
	} else {
		m.MarkUnhealthy(family, uuid, message)
	}
}
