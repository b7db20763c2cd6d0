package pool

import (
	"fmt"
	"sync"
	"time"

	"github.com/poolkeeper/provider-pool-manager/internal/logging"
)

// EventSink receives audit-worthy pool events. internal/events.Service
// implements this against the audit database; tests can supply a stub.
type EventSink interface {
	RecordProviderEvent(family, uuid, eventType, message string)
}

// noopEventSink discards events; used when the manager is built without
// an audit sink (e.g. in unit tests that don't care about the audit
// trail).
type noopEventSink struct{}

func (noopEventSink) RecordProviderEvent(string, string, string, string) {}

// ManagerConfig configures a Manager. Zero values fall back to spec
// defaults.
type ManagerConfig struct {
	PoolFilePath        string
	MaxErrorCount       int
	HealthCheckInterval time.Duration
	SaveDebounceTime    time.Duration
	Proxy               ProxySettings
	Adapters            AdapterFactory
	Events              EventSink
	Logger              *logging.Logger
}

// Manager is the pool's public facade: selection, health/lifecycle
// actions, the periodic supervisor, and debounced persistence, all wired
// together (§4).
type Manager struct {
	store        *Store
	adapterCache *adapterCache
	adapters     AdapterFactory
	proxy        ProxySettings
	events       EventSink
	logger       *logging.Logger

	maxErrorCount       int
	healthCheckInterval time.Duration
	persist             *persister
	sup                 *supervisor

	inFlightMu       sync.Mutex
	inFlightRecovery map[string]bool
}

const (
	defaultMaxErrorCount       = 3
	defaultHealthCheckInterval = 600 * time.Second
	defaultSaveDebounce        = time.Second
	defaultPoolFilePath        = "provider_pools.json"
)

// NewManager constructs a Manager and loads its initial state from
// cfg.PoolFilePath, if present.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.PoolFilePath == "" {
		cfg.PoolFilePath = defaultPoolFilePath
	}
	if cfg.MaxErrorCount <= 0 {
		cfg.MaxErrorCount = defaultMaxErrorCount
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = defaultHealthCheckInterval
	}
	if cfg.SaveDebounceTime <= 0 {
		cfg.SaveDebounceTime = defaultSaveDebounce
	}
	if cfg.Events == nil {
		cfg.Events = noopEventSink{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.New(logging.LevelInfo)
	}

	store := NewStore()
	data, err := loadDocumentFile(cfg.PoolFilePath)
	if err != nil {
		return nil, err
	}
	if err := store.Load(data); err != nil {
		return nil, fmt.Errorf("pool: load %s: %w", cfg.PoolFilePath, err)
	}

	m := &Manager{
		store:               store,
		adapterCache:        newAdapterCache(),
		adapters:            cfg.Adapters,
		proxy:               cfg.Proxy,
		events:              cfg.Events,
		logger:              cfg.Logger,
		maxErrorCount:       cfg.MaxErrorCount,
		healthCheckInterval: cfg.HealthCheckInterval,
		inFlightRecovery:    make(map[string]bool),
	}
	m.persist = newPersister(cfg.PoolFilePath, cfg.SaveDebounceTime, m.store.snapshotDocument, func(err error) {
		// §4.6/§7: a failed write is logged; state remains in memory and
		// the next mutation will re-arm the debounce timer and retry.
		m.logger.Errorf("供应商池落盘失败: %v", err)
	})
	m.sup = newSupervisor(m, cfg.HealthCheckInterval)

	return m, nil
}

// Start launches the periodic health-check supervisor loop.
func (m *Manager) Start() {
	m.sup.start()
}

// Stop halts the supervisor and performs one synchronous final flush, so
// no debounced write is lost on shutdown (§5, "cancellation and
// timeouts").
func (m *Manager) Stop() error {
	m.sup.stop()
	m.persist.stop()
	return m.persist.flushNow()
}

// GetPoolSnapshot exposes a family's entries for the admin surface and
// tests.
func (m *Manager) GetPoolSnapshot(family Family) ([]Snapshot, error) {
	snaps, ok := m.store.GetPoolSnapshot(family)
	if !ok {
		return nil, ErrFamilyNotFound
	}
	return snaps, nil
}

// Families lists every family currently tracked.
func (m *Manager) Families() []Family {
	return m.store.Families()
}

func (m *Manager) scheduleSave() {
	m.persist.schedule()
}

func (m *Manager) recordEvent(family Family, uuid, eventType, message string) {
	m.events.RecordProviderEvent(string(family), uuid, eventType, message)
}
