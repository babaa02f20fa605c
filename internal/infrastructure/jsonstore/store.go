package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/odner-app/odner/internal/core/domain"
)

// Store reads and writes path-addressed JSON artifacts. Mutual exclusion
// is per path, not global: a lock is acquired for the duration of each
// read or write so that two concurrent writers to the same path never
// interleave, while unrelated documents proceed concurrently. Writes go
// to a temp file in the target directory and are renamed into place, so
// readers always observe a complete document.
type Store struct {
	locks sync.Map // path -> *sync.Mutex
}

func New() *Store {
	return &Store{}
}

func (s *Store) pathLock(path string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(filepath.Clean(path), &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Load reads the JSON file at path into v.
func (s *Store) Load(path string, v any) error {
	mu := s.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.WrapError(domain.ErrNotFound, "load json", err)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return domain.WrapError(domain.ErrCorruptArtifact, "load json "+path, err)
	}
	return nil
}

// Save atomically overwrites the file at path with the serialization of v,
// creating parent directories if absent.
func (s *Store) Save(path string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal json for %s: %w", path, err)
	}

	mu := s.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

// String loads the file and re-serializes it canonically, so the result
// byte-matches the string caches produced from in-memory maps.
func (s *Store) String(path string) (string, error) {
	var v any
	if err := s.Load(path, &v); err != nil {
		return "", err
	}
	return domain.CanonicalJSON(v)
}

func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) Remove(path string) error {
	mu := s.pathLock(path)
	mu.Lock()
	defer mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// ListDir returns the absolute paths of the regular files directly under dir.
// A missing directory lists as empty.
func (s *Store) ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, entry.Name()))
	}
	return out, nil
}
