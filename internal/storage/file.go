package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// File is a Store backed by one file per key under a data directory.
// Writes go through a temp file and rename so a crash mid-write never
// leaves a half-written snapshot. Values are optionally gzip-compressed.
type File struct {
	dir      string
	compress bool
	mu       sync.Mutex
}

// NewFile creates a file-backed store rooted at dir
func NewFile(dir string, compress bool) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &File{dir: dir, compress: compress}, nil
}

// Get returns the stored value and whether the key exists
func (f *File) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.keyPath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if f.compress {
		value, err := gunzip(data)
		if err != nil {
			// Treat an unreadable value like a corrupt one: present, undecodable
			return nil, true, fmt.Errorf("failed to decompress %s: %w", key, err)
		}
		return value, true, nil
	}
	return data, true, nil
}

// Set writes a value atomically
func (f *File) Set(key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := value
	if f.compress {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(value); err != nil {
			return fmt.Errorf("failed to compress %s: %w", key, err)
		}
		if err := zw.Close(); err != nil {
			return fmt.Errorf("failed to compress %s: %w", key, err)
		}
		data = buf.Bytes()
	}

	path := f.keyPath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

// Delete removes a key
func (f *File) Delete(key string) error {
	err := os.Remove(f.keyPath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// keyPath maps a key to a filename. Key separators become underscores so
// "tabs:proj1" lands at tabs_proj1.json.
func (f *File) keyPath(key string) string {
	name := strings.NewReplacer(":", "_", "/", "_", string(os.PathSeparator), "_").Replace(key)
	ext := ".json"
	if f.compress {
		ext = ".json.gz"
	}
	return filepath.Join(f.dir, name+ext)
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}
