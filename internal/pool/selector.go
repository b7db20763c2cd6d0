package pool

import (
	"errors"
	"time"
)

// ErrNoHealthyProvider is returned when a family has no entry able to serve
// a request at all — every candidate is disabled or model-unsupported.
var ErrNoHealthyProvider = errors.New("pool: no available provider for family")

// SelectOptions configures a single selection call (§4.1).
type SelectOptions struct {
	// Model restricts candidates to entries that support it. Empty means
	// no restriction.
	Model string
	// SkipUsageCount suppresses the lastUsed/usageCount bump this
	// selection would otherwise cause — used by health probes so a probe
	// call doesn't count as production traffic.
	SkipUsageCount bool
}

// Select applies the round-robin, health-preferring algorithm of §4.1:
//  1. filter out disabled entries
//  2. filter out entries that don't support the requested model
//  3. sweep cooled-down unhealthy candidates onto a recovery probe list
//  4. prefer healthy entries; fall back to unhealthy ones only if no
//     healthy candidate exists (FallbackSelection = true in that case)
//  5. advance a round-robin index keyed by (family, model)
//  6. unless SkipUsageCount, bump usageCount/lastUsed and schedule a save
func (m *Manager) Select(family Family, opts SelectOptions) (Snapshot, error) {
	fs := m.store.family(family)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	if len(fs.entries) == 0 {
		return Snapshot{}, ErrNoHealthyProvider
	}

	type candidate struct {
		entry *Entry
		index int
	}
	var healthy, unhealthy []candidate
	var dueForRecovery []*Entry

	now := time.Now()
	for i, e := range fs.entries {
		if e.IsDisabled {
			continue
		}
		if !e.supportsModel(opts.Model) {
			continue
		}
		if e.IsHealthy {
			healthy = append(healthy, candidate{e, i})
			continue
		}
		unhealthy = append(unhealthy, candidate{e, i})
		if now.Sub(parseTime(e.LastErrorTime)) >= m.healthCheckInterval {
			dueForRecovery = append(dueForRecovery, e)
		}
	}

	if len(healthy) == 0 && len(unhealthy) == 0 {
		return Snapshot{}, ErrNoHealthyProvider
	}

	m.scheduleRecoveryProbes(family, dueForRecovery)

	pool := healthy
	fallback := false
	if len(pool) == 0 {
		pool = unhealthy
		fallback = true
	}

	key := string(family)
	if opts.Model != "" {
		key = string(family) + ":" + opts.Model
	}
	idx := fs.rrIndex[key] % len(pool)
	fs.rrIndex[key] = (idx + 1) % len(pool)
	chosen := pool[idx].entry

	if !opts.SkipUsageCount {
		chosen.UsageCount++
		chosen.LastUsed = nowString()
		m.scheduleSave()
	}

	return snapshotOf(family, chosen, fallback), nil
}
