package placement

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OpenTraceLab/eda2kicad/pkg/model"
)

// OverrideFile is the name of the JSON override store inside a library
const OverrideFile = "model_overrides.json"

// Triple is an (x, y, z) value stored as a three element list
type Triple [3]float64

// Vec returns t as a model vector
func (t Triple) Vec() model.Vec3 {
	return model.Vec3{X: t[0], Y: t[1], Z: t[2]}
}

// TripleOf converts a model vector
func TripleOf(v model.Vec3) *Triple {
	return &Triple{v.X, v.Y, v.Z}
}

// Override is an operator supplied transform. Fields left nil keep their
// default when resolved: zero offset and rotation, unit scale.
type Override struct {
	Offset   *Triple `json:"offset,omitempty"`
	Rotation *Triple `json:"rotation,omitempty"`
	Scale    *Triple `json:"scale,omitempty"`
}

func (o Override) resolve() Transform {
	t := Identity()
	if o.Offset != nil {
		t.Offset = o.Offset.Vec()
	}
	if o.Rotation != nil {
		t.Rotation = o.Rotation.Vec()
	}
	if o.Scale != nil {
		t.Scale = o.Scale.Vec()
	}
	return t
}

// Empty reports whether no field is set
func (o Override) Empty() bool {
	return o.Offset == nil && o.Rotation == nil && o.Scale == nil
}

// Merge returns o with the fields set in update replaced
func (o Override) Merge(update Override) Override {
	if update.Offset != nil {
		v := *update.Offset
		o.Offset = &v
	}
	if update.Rotation != nil {
		v := *update.Rotation
		o.Rotation = &v
	}
	if update.Scale != nil {
		v := *update.Scale
		o.Scale = &v
	}
	return o
}

func (o Override) String() string {
	return Resolve(o).String()
}

// Key normalizes a component id for use as a store key
func Key(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// Store keeps overrides keyed by component id. Ids are case-insensitive.
type Store interface {
	// Get returns ErrNotFound when id has no override.
	Get(id string) (Override, error)
	// Set merges the fields present in o into the entry for id.
	Set(id string, o Override) error
	// Remove deletes the entry for id; a missing entry is not an error.
	Remove(id string) error
	// List returns all entries keyed by normalized id.
	List() (map[string]Override, error)
	Close() error
}

// SortedKeys returns the keys of entries in order
func SortedKeys(entries map[string]Override) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MemoryStore is an in-memory store useful during tests or when overrides
// should not outlive the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Override
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Override)}
}

// Get implements the Store interface.
func (s *MemoryStore) Get(id string) (Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.entries[Key(id)]
	if !ok {
		return Override{}, fmt.Errorf("%w for %s", ErrNotFound, Key(id))
	}
	return o, nil
}

// Set implements the Store interface.
func (s *MemoryStore) Set(id string, o Override) error {
	key := Key(id)
	if key == "" {
		return fmt.Errorf("placement: empty component id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.entries[key].Merge(o)
	return nil
}

// Remove implements the Store interface.
func (s *MemoryStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, Key(id))
	return nil
}

// List implements the Store interface.
func (s *MemoryStore) List() (map[string]Override, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Override, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out, nil
}

// Close implements the Store interface.
func (s *MemoryStore) Close() error { return nil }

// FileStore keeps overrides in a JSON file that is rewritten after every
// change.
type FileStore struct {
	mem    *MemoryStore
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// OpenFileStore loads the store at path. A missing file gives an empty
// store. An unreadable or corrupt file also gives an empty store and a
// warning, so a damaged file never blocks conversion.
func OpenFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &FileStore{mem: NewMemoryStore(), path: path, logger: logger}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s
	case err != nil:
		logger.Warn("failed to read model overrides", "path", path, "err", err)
		return s
	}

	var raw map[string]Override
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("failed to load model overrides", "path", path, "err", err)
		return s
	}
	for id, o := range raw {
		s.mem.entries[Key(id)] = o
	}
	logger.Info("loaded model overrides", "path", path, "count", len(s.mem.entries))
	return s
}

// OpenLibraryStore opens the JSON store inside a library directory
func OpenLibraryStore(dir string, logger *slog.Logger) *FileStore {
	return OpenFileStore(filepath.Join(dir, OverrideFile), logger)
}

// Path returns the backing file
func (s *FileStore) Path() string { return s.path }

// Get implements the Store interface.
func (s *FileStore) Get(id string) (Override, error) {
	return s.mem.Get(id)
}

// Set implements the Store interface.
func (s *FileStore) Set(id string, o Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mem.Set(id, o); err != nil {
		return err
	}
	return s.flush()
}

// Remove implements the Store interface.
func (s *FileStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.mem.Get(id); err != nil {
		return nil
	}
	s.mem.Remove(id)
	return s.flush()
}

// List implements the Store interface.
func (s *FileStore) List() (map[string]Override, error) {
	return s.mem.List()
}

// Close implements the Store interface.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) flush() error {
	entries, _ := s.mem.List()
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("placement: encode overrides: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("placement: create %s: %w", dir, err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("placement: write overrides: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("placement: write overrides: %w", err)
	}
	s.logger.Debug("saved model overrides", "path", s.path, "count", len(entries))
	return nil
}
