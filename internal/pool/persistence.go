package pool

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// persister coalesces bursts of pool mutations into a single debounced
// write, so a hot request path doesn't fsync on every counter bump (§4.6).
// A pending save is represented purely by a running timer: repeated calls
// to schedule while one is pending just let the existing timer fire,
// matching the "single pending flag + rearming timer" idiom rather than a
// channel-based work queue.
type persister struct {
	mu       sync.Mutex
	timer    *time.Timer
	path     string
	debounce time.Duration
	source   func() document

	// onError reports a failed write; nil is a valid no-op logger.
	onError func(error)
}

func newPersister(path string, debounce time.Duration, source func() document, onError func(error)) *persister {
	return &persister{path: path, debounce: debounce, source: source, onError: onError}
}

// schedule arms (or re-arms) the debounce timer. Concurrent callers all
// collapse onto the same pending write.
func (p *persister) schedule() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		if err := p.flushNow(); err != nil && p.onError != nil {
			p.onError(err)
		}
	})
}

// flushNow persists immediately, bypassing the debounce timer. Used for
// the final flush on shutdown.
func (p *persister) flushNow() error {
	doc := p.source()
	return writeDocumentAtomicFn(p.path, doc)
}

// writeDocumentAtomicFn is an indirection point so tests can count writes
// without touching the filesystem more than the production path does.
var writeDocumentAtomicFn = writeDocumentAtomic

// stop cancels any pending debounced write without flushing.
func (p *persister) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// writeDocumentAtomic serializes doc and writes it via a temp-file-then-
// rename swap so a crash mid-write never leaves a truncated pool file on
// disk.
func writeDocumentAtomic(path string, doc document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("pool: encode document: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".pool-*.tmp")
	if err != nil {
		return fmt.Errorf("pool: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("pool: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pool: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pool: rename temp file: %w", err)
	}
	return nil
}

// loadDocumentFile reads and decodes the on-disk pool document. A missing
// file is treated as an empty pool rather than an error, so first-run
// startup doesn't require pre-creating the file.
func loadDocumentFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pool: read pool file: %w", err)
	}
	return data, nil
}
