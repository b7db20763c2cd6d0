package pool

import (
	"testing"

	"github.com/poolkeeper/provider-pool-manager/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, doc string) *Manager {
	t.Helper()
	store := NewStore()
	require.NoError(t, store.Load([]byte(doc)))

	m := &Manager{
		store:               store,
		adapterCache:        newAdapterCache(),
		events:              noopEventSink{},
		logger:              logging.New(logging.LevelError),
		maxErrorCount:       3,
		healthCheckInterval: defaultHealthCheckInterval,
		inFlightRecovery:    make(map[string]bool),
	}
	m.persist = newPersister(t.TempDir()+"/pool.json", 0, m.store.snapshotDocument, nil)
	return m
}

const twoHealthyEntriesDoc = `{
  "openai-custom": [
    {"uuid": "a", "credentials": {"apiKey": "a"}, "isHealthy": true},
    {"uuid": "b", "credentials": {"apiKey": "b"}, "isHealthy": true}
  ]
}`

func TestSelect_RoundRobinAcrossHealthyEntries(t *testing.T) {
	m := newTestManager(t, twoHealthyEntriesDoc)

	first, err := m.Select(FamilyOpenAICustom, SelectOptions{})
	require.NoError(t, err)
	second, err := m.Select(FamilyOpenAICustom, SelectOptions{})
	require.NoError(t, err)
	third, err := m.Select(FamilyOpenAICustom, SelectOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, first.UUID, second.UUID)
	assert.Equal(t, first.UUID, third.UUID)
	assert.False(t, first.FallbackSelection)
}

func TestSelect_ModelFiltering(t *testing.T) {
	doc := `{
	  "openai-custom": [
	    {"uuid": "a", "credentials": {}, "isHealthy": true, "notSupportedModels": ["gpt-4"]},
	    {"uuid": "b", "credentials": {}, "isHealthy": true}
	  ]
	}`
	m := newTestManager(t, doc)

	for i := 0; i < 5; i++ {
		snap, err := m.Select(FamilyOpenAICustom, SelectOptions{Model: "gpt-4"})
		require.NoError(t, err)
		assert.Equal(t, "b", snap.UUID)
	}
}

func TestSelect_DisabledEntryExcluded(t *testing.T) {
	doc := `{
	  "openai-custom": [
	    {"uuid": "a", "credentials": {}, "isHealthy": true, "isDisabled": true},
	    {"uuid": "b", "credentials": {}, "isHealthy": true}
	  ]
	}`
	m := newTestManager(t, doc)

	for i := 0; i < 5; i++ {
		snap, err := m.Select(FamilyOpenAICustom, SelectOptions{})
		require.NoError(t, err)
		assert.Equal(t, "b", snap.UUID)
	}
}

func TestSelect_FallsBackToUnhealthyWhenNoneHealthy(t *testing.T) {
	doc := `{
	  "openai-custom": [
	    {"uuid": "a", "credentials": {}, "isHealthy": false, "lastErrorTime": "2026-08-06T00:00:00Z"}
	  ]
	}`
	m := newTestManager(t, doc)

	snap, err := m.Select(FamilyOpenAICustom, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a", snap.UUID)
	assert.True(t, snap.FallbackSelection)
}

func TestSelect_NoCandidates(t *testing.T) {
	doc := `{
	  "openai-custom": [
	    {"uuid": "a", "credentials": {}, "isHealthy": true, "isDisabled": true}
	  ]
	}`
	m := newTestManager(t, doc)

	_, err := m.Select(FamilyOpenAICustom, SelectOptions{})
	assert.ErrorIs(t, err, ErrNoHealthyProvider)
}

func TestSelect_UnknownFamilyIsNoHealthyProvider(t *testing.T) {
	m := newTestManager(t, `{}`)

	_, err := m.Select(FamilyClaudeCustom, SelectOptions{})
	assert.ErrorIs(t, err, ErrNoHealthyProvider)
}

func TestSelect_SkipUsageCountLeavesCountersUntouched(t *testing.T) {
	m := newTestManager(t, twoHealthyEntriesDoc)

	snap, err := m.Select(FamilyOpenAICustom, SelectOptions{SkipUsageCount: true})
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.UsageCount)
	assert.Empty(t, snap.LastUsed)
}

func TestSelect_BumpsUsageCountByDefault(t *testing.T) {
	m := newTestManager(t, twoHealthyEntriesDoc)

	_, err := m.Select(FamilyOpenAICustom, SelectOptions{})
	require.NoError(t, err)

	snaps, ok := m.store.GetPoolSnapshot(FamilyOpenAICustom)
	require.True(t, ok)

	var touched int
	for _, s := range snaps {
		if s.UsageCount > 0 {
			touched++
			assert.NotEmpty(t, s.LastUsed)
		}
	}
	assert.Equal(t, 1, touched)
}
