package framework

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrVersionConflict = errors.New("framework version conflict")

// Store persists the framework document.
type Store interface {
	// Load returns the stored document, or the defaults at version 0 when
	// nothing has been saved yet.
	Load(ctx context.Context) (*Framework, error)

	// Save overwrites the document. f.Version must equal the stored version;
	// the returned copy carries the incremented version and timestamp.
	Save(ctx context.Context, f *Framework) (*Framework, error)

	// Reset replaces the stored document with the defaults.
	Reset(ctx context.Context) (*Framework, error)
}

// stamp prepares a validated copy of f for writing over current.
func stamp(f, current *Framework, now time.Time) *Framework {
	next := f.Clone()
	next.Version = current.Version + 1
	next.UpdatedAt = now.UTC().Truncate(time.Millisecond)
	return next
}

// FileStore keeps the document as a JSON file. Writes replace the file
// atomically; the version check only covers writers in this process.
type FileStore struct {
	path     string
	defaults *Framework
	logger   *zap.Logger
	now      func() time.Time

	mu sync.Mutex
}

func NewFileStore(path string, defaults *Framework, logger *zap.Logger) *FileStore {
	if defaults == nil {
		defaults = Default()
	}
	return &FileStore{
		path:     path,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *FileStore) Load(ctx context.Context) (*Framework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) Save(ctx context.Context, f *Framework) (*Framework, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return nil, err
	}
	if f.Version != current.Version {
		return nil, fmt.Errorf("%w: have version %d, stored version is %d", ErrVersionConflict, f.Version, current.Version)
	}

	next := stamp(f, current, s.now())
	if err := s.write(next); err != nil {
		return nil, err
	}
	s.logger.Info("Framework saved", zap.String("path", s.path), zap.Int64("version", next.Version))
	return next.Clone(), nil
}

func (s *FileStore) Reset(ctx context.Context) (*Framework, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read()
	if err != nil {
		return nil, err
	}
	next := stamp(s.defaults, current, s.now())
	if err := s.write(next); err != nil {
		return nil, err
	}
	s.logger.Info("Framework reset to defaults", zap.String("path", s.path), zap.Int64("version", next.Version))
	return next.Clone(), nil
}

func (s *FileStore) read() (*Framework, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		f := s.defaults.Clone()
		f.Version = 0
		f.UpdatedAt = time.Time{}
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read framework: %w", err)
	}

	var f Framework
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode framework %s: %w", s.path, err)
	}
	return &f, nil
}

func (s *FileStore) write(f *Framework) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode framework: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create framework dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".framework-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write framework: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close framework: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace framework: %w", err)
	}
	return nil
}
