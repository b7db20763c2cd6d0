package pool

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersister_CoalescesBurstOfSchedules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")

	var writes int32
	source := func() document {
		return document{"openai-custom": []*Entry{{UUID: "a", IsHealthy: true}}}
	}
	p := newPersister(path, 30*time.Millisecond, source, nil)

	orig := writeDocumentAtomicFn
	writeDocumentAtomicFn = func(path string, doc document) error {
		atomic.AddInt32(&writes, 1)
		return orig(path, doc)
	}
	defer func() { writeDocumentAtomicFn = orig }()

	for i := 0; i < 10; i++ {
		p.schedule()
	}

	time.Sleep(100 * time.Millisecond)

	assert.EqualValues(t, 1, atomic.LoadInt32(&writes))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openai-custom")
}

func TestPersister_FlushNowWritesImmediately(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.json")
	source := func() document {
		return document{"openai-custom": []*Entry{{UUID: "a", IsHealthy: true}}}
	}
	p := newPersister(path, time.Hour, source, nil)

	require.NoError(t, p.flushNow())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\"uuid\": \"a\"")
}

func TestLoadDocumentFile_MissingFileIsNotAnError(t *testing.T) {
	data, err := loadDocumentFile(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Nil(t, data)
}
