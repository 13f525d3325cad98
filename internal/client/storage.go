package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// StorageKey is the persisted key of an instance's opened set.
func StorageKey(instanceID string) string {
	return fmt.Sprintf("advent-%s-doors", instanceID)
}

// Storage persists opened door days per key.
type Storage interface {
	Load(key string) ([]int, error)
	Save(key string, days []int) error
}

// MemoryStorage keeps opened sets in process. Err, when set, fails every call.
type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]int
	Err  error
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]int)}
}

func (m *MemoryStorage) Load(key string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]int(nil), m.data[key]...), nil
}

func (m *MemoryStorage) Save(key string, days []int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.data[key] = append([]int(nil), days...)
	return nil
}

// FileStorage keeps every key in one JSON document.
type FileStorage struct {
	Path string
	mu   sync.Mutex
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{Path: path}
}

func (f *FileStorage) read() (map[string][]int, error) {
	data := map[string][]int{}
	raw, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	} else if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("storage %s: %w", f.Path, err)
	}
	return data, nil
}

func (f *FileStorage) Load(key string) ([]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		return nil, err
	}
	return data[key], nil
}

// Save rewrites the document. Concurrent writers of other processes are
// not merged; the last one wins.
func (f *FileStorage) Save(key string, days []int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.read()
	if err != nil {
		data = map[string][]int{}
	}
	data[key] = days

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func sortedDays(set map[int]bool) []int {
	days := make([]int, 0, len(set))
	for day, ok := range set {
		if ok {
			days = append(days, day)
		}
	}
	sort.Ints(days)
	return days
}
