package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileKV persists the whole namespace as one JSON object on disk, rewritten
// atomically (temp file + rename) on every change.
type FileKV struct {
	mu   sync.RWMutex
	path string
	data map[string]string
}

var _ KV = (*FileKV)(nil)

// NewFileKV opens path, loading it when it exists. A missing file is an
// empty namespace.
func NewFileKV(path string) (*FileKV, error) {
	if path == "" {
		return nil, fmt.Errorf("file path required for file backend")
	}
	f := &FileKV{path: path, data: make(map[string]string)}
	if err := f.load(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *FileKV) load() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, &f.data); err != nil {
		return fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	return nil
}

func (f *FileKV) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	// encoding/json writes map keys sorted, so the file diff stays stable
	b, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.data[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(v), true, nil
}

func (f *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = string(value)
	return f.flush()
}

func (f *FileKV) Delete(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return f.flush()
}

func (f *FileKV) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := os.Stat(filepath.Dir(f.path))
	return err
}

func (f *FileKV) Close() error { return nil }
