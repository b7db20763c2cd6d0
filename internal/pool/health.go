package pool

// MarkUnhealthy records a request failure against an entry (§4.2). Once
// errorCount reaches maxErrorCount, the entry flips unhealthy so the
// selector stops routing to it until recovery. Returns false if the entry
// or family is unknown.
func (m *Manager) MarkUnhealthy(family Family, uuid string, reason string) bool {
	found := m.store.withEntry(family, uuid, func(e *Entry) {
		e.ErrorCount++
		e.LastErrorTime = nowString()
		e.LastErrorMessage = reason
		if e.ErrorCount >= m.maxErrorCount && e.IsHealthy {
			e.IsHealthy = false
			m.recordEvent(family, e.UUID, "provider_error", reason)
		}
	})
	if found {
		m.scheduleSave()
	}
	return found
}

// MarkHealthy clears the failure streak on a successful call (§4.2). When
// resetUsageCount is true (the supervisor's success branch, §4.5) usageCount
// is zeroed too; request-path callers pass false so usageCount keeps
// accumulating through Select's own bump. healthCheckModel, when non-empty,
// stamps lastHealthCheckTime/lastHealthCheckModel the way a completed probe
// does.
func (m *Manager) MarkHealthy(family Family, uuid string, resetUsageCount bool, healthCheckModel string) bool {
	found := m.store.withEntry(family, uuid, func(e *Entry) {
		wasUnhealthy := !e.IsHealthy
		e.ErrorCount = 0
		e.LastErrorTime = ""
		e.LastErrorMessage = ""
		e.IsHealthy = true
		if resetUsageCount {
			e.UsageCount = 0
		}
		if healthCheckModel != "" {
			e.LastHealthCheckModel = healthCheckModel
			e.LastHealthCheckTime = nowString()
		}
		if wasUnhealthy {
			m.recordEvent(family, e.UUID, "provider_recovered", "")
		}
	})
	if found {
		m.scheduleSave()
	}
	return found
}

// MarkRecoveryFailed records a failed selection-triggered recovery probe
// (§4.4). Unlike MarkUnhealthy, errorCount is left untouched — the entry
// is already unhealthy, so a failed recovery attempt isn't a new failure
// to count against it — only lastErrorMessage is refreshed.
func (m *Manager) MarkRecoveryFailed(family Family, uuid string, reason string) bool {
	found := m.store.withEntry(family, uuid, func(e *Entry) {
		e.LastErrorMessage = reason
	})
	if found {
		m.scheduleSave()
	}
	return found
}

// ResetCounters zeroes an entry's error and usage counters without
// changing its health or disabled flag (an operator action, §4.2).
func (m *Manager) ResetCounters(family Family, uuid string) bool {
	found := m.store.withEntry(family, uuid, func(e *Entry) {
		e.ErrorCount = 0
		e.UsageCount = 0
		e.LastErrorMessage = ""
	})
	if found {
		m.scheduleSave()
	}
	return found
}

// Disable removes an entry from selection until re-enabled, regardless of
// its health state.
func (m *Manager) Disable(family Family, uuid string) bool {
	found := m.store.withEntry(family, uuid, func(e *Entry) {
		e.IsDisabled = true
	})
	if found {
		m.scheduleSave()
	}
	return found
}

// Enable makes a previously disabled entry selectable again. It does not
// by itself mark the entry healthy; a probe or a subsequent MarkHealthy
// call still governs that.
func (m *Manager) Enable(family Family, uuid string) bool {
	found := m.store.withEntry(family, uuid, func(e *Entry) {
		e.IsDisabled = false
	})
	if found {
		m.scheduleSave()
	}
	return found
}
