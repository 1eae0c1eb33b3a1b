// Package cache holds the file contents shared by analysis, planning and
// fix application within one process.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Content maps file paths to their current text. Reads populate it from
// disk; writes replace the file atomically and update the entry while the
// path's lock is held, so later reads in the process see the new text.
type Content struct {
	mu      sync.RWMutex
	entries map[string]string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewContent creates an empty cache
func NewContent() *Content {
	return &Content{
		entries: make(map[string]string),
		locks:   make(map[string]*sync.Mutex),
	}
}

// Get returns the text of path, reading it from disk on a miss
func (c *Content) Get(path string) (string, error) {
	key := filepath.Clean(path)
	c.mu.RLock()
	text, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return text, nil
	}

	data, err := os.ReadFile(key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text = string(data)

	c.mu.Lock()
	// keep a concurrent writer's newer text
	if existing, ok := c.entries[key]; ok {
		text = existing
	} else {
		c.entries[key] = text
	}
	c.mu.Unlock()
	return text, nil
}

// Set stores text for path without touching the disk
func (c *Content) Set(path, text string) {
	c.mu.Lock()
	c.entries[filepath.Clean(path)] = text
	c.mu.Unlock()
}

// Invalidate drops the cached text of path
func (c *Content) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, filepath.Clean(path))
	c.mu.Unlock()
}

// Len returns the number of cached files
func (c *Content) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Write atomically replaces path with text and updates the cache
func (c *Content) Write(path, text string) error {
	unlock := c.lock(path)
	defer unlock()
	return c.writeLocked(path, text)
}

// Update runs fn on the current text of path while holding the path's lock.
// When fn reports a change, the new text is written and cached before the
// lock is released.
func (c *Content) Update(path string, fn func(current string) (updated string, changed bool, err error)) error {
	unlock := c.lock(path)
	defer unlock()

	current, err := c.Get(path)
	if err != nil {
		return err
	}
	updated, changed, err := fn(current)
	if err != nil || !changed {
		return err
	}
	return c.writeLocked(path, updated)
}

func (c *Content) lock(path string) func() {
	key := filepath.Clean(path)
	c.locksMu.Lock()
	m, ok := c.locks[key]
	if !ok {
		m = &sync.Mutex{}
		c.locks[key] = m
	}
	c.locksMu.Unlock()

	m.Lock()
	return m.Unlock
}

// writeLocked writes through a temporary file in the target directory and
// renames it over path. The caller holds the path's lock.
func (c *Content) writeLocked(path, text string) error {
	key := filepath.Clean(path)
	dir := filepath.Dir(key)

	mode := os.FileMode(0o644)
	if info, err := os.Stat(key); err == nil {
		mode = info.Mode().Perm()
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write content: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, key); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to atomic rename: %w", err)
	}

	c.Set(key, text)
	return nil
}
