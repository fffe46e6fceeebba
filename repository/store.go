package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by lookups that miss; services translate it into
// the caller-facing error kind.
var ErrNotFound = errors.New("record not found")

// jsonFile is a whole-file JSON document. Every read loads the complete
// document and every write replaces it, matching the on-disk contract of the
// four data files.
type jsonFile[T any] struct {
	path string
	mu   sync.Mutex
}

func newJSONFile[T any](path string) *jsonFile[T] {
	return &jsonFile[T]{path: path}
}

// load parses the document. A missing, unreadable or malformed file degrades
// to the zero document so read paths keep working before first write.
func (f *jsonFile[T]) load() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadLocked()
}

func (f *jsonFile[T]) loadLocked() T {
	var doc T
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("failed to read %s, treating as empty: %v", f.path, err)
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("failed to parse %s, treating as empty: %v", f.path, err)
		var zero T
		return zero
	}
	return doc
}

func (f *jsonFile[T]) saveLocked(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", f.path, err)
	}
	// Write to a temp file in the same directory and rename over the target
	// so a crash mid-write cannot leave partial JSON behind.
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", f.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file for %s: %w", f.path, err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

// update runs a read-modify-write cycle under the store lock, so two
// concurrent mutations of the same document cannot lose writes.
func (f *jsonFile[T]) update(fn func(doc T) (T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, err := fn(f.loadLocked())
	if err != nil {
		return err
	}
	return f.saveLocked(doc)
}
