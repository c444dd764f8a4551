package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var _ Store = &File{}

// File keeps every key in a single JSON object on disk. The whole document
// is rewritten on each change. An empty path keeps everything in memory.
type File struct {
	data     map[string]string
	mu       *sync.RWMutex
	filepath string
}

// NewFile opens the store at path, loading existing content if present.
func NewFile(path string) (*File, error) {
	f := &File{
		filepath: path,
		mu:       &sync.RWMutex{},
	}
	err := f.Load()
	if err != nil {
		return nil, err
	}

	return f, nil
}

// NewMemory returns a store that is never written to disk.
func NewMemory() *File {
	return &File{
		data: map[string]string{},
		mu:   &sync.RWMutex{},
	}
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value
	return f.save()
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.data[key]; !ok {
		return nil
	}
	delete(f.data, key)
	return f.save()
}

func (f *File) Keys(_ context.Context, prefix string) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var keys []string
	for k := range f.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// Load reads the store from disk, replacing what is in memory.
func (f *File) Load() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.filepath == "" {
		if f.data == nil {
			f.data = map[string]string{}
		}
		return nil
	}

	fp, err := os.Open(f.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			// Missing file is an empty store. Do not make f.data a nil.
			f.data = map[string]string{}
			return nil
		}
		return pkgerrors.Wrapf(err, "failed to open file %s", f.filepath)
	}
	defer func(fp *os.File) {
		err := fp.Close()
		if err != nil {
			logrus.Warnf("failed to close file %s", f.filepath)
		}
	}(fp)

	b, err := io.ReadAll(fp)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to read file %s", f.filepath)
	}

	if strings.TrimSpace(string(b)) == "" {
		f.data = map[string]string{}
		return nil
	}

	data := map[string]string{}
	err = json.Unmarshal(b, &data)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to unmarshal storage from file %s", f.filepath)
	}
	f.data = data

	return nil
}

// save must be called with f.mu held.
func (f *File) save() error {
	if f.filepath == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.filepath), 0755); err != nil {
		return pkgerrors.Wrapf(err, "failed to create directory for %s", f.filepath)
	}

	// Write to a temp file and rename so a crash never leaves half a document.
	tmp := f.filepath + ".tmp"
	fp, err := os.OpenFile(tmp, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to open file %s", tmp)
	}

	enc := json.NewEncoder(fp)
	enc.SetIndent("", "  ")
	err = enc.Encode(f.data)
	if closeErr := fp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to encode storage to file %s", tmp)
	}

	if err := os.Rename(tmp, f.filepath); err != nil {
		return pkgerrors.Wrapf(err, "failed to replace %s", f.filepath)
	}
	return nil
}
