package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage keeps all keys in a single JSON document on disk. Writes go to
// a temporary file that is renamed over the document.
type FileStorage struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	values map[string]json.RawMessage
}

// OpenFile loads the document at path. A missing file starts empty. A file
// that cannot be parsed is logged and replaced on the next write. The parent
// directory must be creatable.
func OpenFile(path string, logger *slog.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	fsto := &FileStorage{
		path:   path,
		logger: logger,
		values: make(map[string]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fsto, nil
	case err != nil:
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &fsto.values); err != nil {
			logger.Warn("storage file corrupt, starting empty", "path", path, "error", err)
			fsto.values = make(map[string]json.RawMessage)
		}
	}
	return fsto, nil
}

// Path returns the document location.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(key string, dst any) bool {
	f.mu.Lock()
	raw, ok := f.values[key]
	f.mu.Unlock()
	if !ok {
		return false
	}
	return decode(f.logger, key, raw, dst)
}

func (f *FileStorage) Set(key string, v any) bool {
	raw, ok := encode(f.logger, key, v)
	if !ok {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	f.values[key] = raw
	if err := f.flushLocked(); err != nil {
		if had {
			f.values[key] = prev
		} else {
			delete(f.values, key)
		}
		f.logger.Warn("storage write failed", "key", key, "error", err)
		return false
	}
	return true
}

func (f *FileStorage) Remove(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.values[key]
	if !had {
		return true
	}
	delete(f.values, key)
	if err := f.flushLocked(); err != nil {
		f.values[key] = prev
		f.logger.Warn("storage remove failed", "key", key, "error", err)
		return false
	}
	return true
}

func (f *FileStorage) Clear() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev := f.values
	f.values = make(map[string]json.RawMessage)
	if err := f.flushLocked(); err != nil {
		f.values = prev
		f.logger.Warn("storage clear failed", "error", err)
		return false
	}
	return true
}

func (f *FileStorage) flushLocked() error {
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}
