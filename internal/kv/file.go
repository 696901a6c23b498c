package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore persists each key as a file under a data directory.
type FileStore struct {
	dataDir string
	mu      sync.RWMutex
}

func NewFileStore(dataDir string) *FileStore {
	return &FileStore{dataDir: dataDir}
}

// keyToFilename replaces unsafe characters for use as a filename.
func keyToFilename(key string) string {
	r := strings.NewReplacer(":", "_", "/", "_")
	return r.Replace(key) + ".json"
}

func filenameToKey(name string) string {
	return strings.TrimSuffix(name, ".json")
}

func (s *FileStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dataDir, keyToFilename(key)))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	path := filepath.Join(s.dataDir, keyToFilename(key))
	if err := os.WriteFile(path, value, 0o644); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(filepath.Join(s.dataDir, keyToFilename(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *FileStore) Keys(prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list data dir: %w", err)
	}

	// prefixes are sanitized the same way keys are, so a prefix match on
	// filenames matches the original keys
	filePrefix := strings.NewReplacer(":", "_", "/", "_").Replace(prefix)
	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if strings.HasPrefix(e.Name(), filePrefix) {
			keys = append(keys, filenameToKey(e.Name()))
		}
	}
	sort.Strings(keys)
	return keys, nil
}
