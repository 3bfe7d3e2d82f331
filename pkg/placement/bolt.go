package placement

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

// BoltFile is the name of the bolt override database inside a library
const BoltFile = "model_overrides.db"

var overrideBucket = []byte("overrides")

// BoltStore keeps overrides in a bolt database, one JSON value per id.
// Values that do not decode are treated as absent and logged.
type BoltStore struct {
	db     *bolt.DB
	logger *slog.Logger
}

// OpenBoltStore opens or creates the database at path. A nil logger
// discards.
func OpenBoltStore(path string, logger *slog.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("placement: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(overrideBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("placement: init %s: %w", path, err)
	}
	return &BoltStore{db: db, logger: logger}, nil
}

// OpenLibraryBoltStore opens the bolt store inside a library directory
func OpenLibraryBoltStore(dir string, logger *slog.Logger) (*BoltStore, error) {
	return OpenBoltStore(filepath.Join(dir, BoltFile), logger)
}

// decode unmarshals a stored value, warning when it is corrupt
func (s *BoltStore) decode(key, data []byte) (Override, bool) {
	var o Override
	if err := json.Unmarshal(data, &o); err != nil {
		s.logger.Warn("ignoring unreadable model override", "id", string(key), "err", err)
		return Override{}, false
	}
	return o, true
}

// Get implements the Store interface.
func (s *BoltStore) Get(id string) (Override, error) {
	var o Override
	key := Key(id)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(overrideBucket).Get([]byte(key))
		if data == nil {
			return fmt.Errorf("%w for %s", ErrNotFound, key)
		}
		v, ok := s.decode([]byte(key), data)
		if !ok {
			return fmt.Errorf("%w for %s: stored value unreadable", ErrNotFound, key)
		}
		o = v
		return nil
	})
	return o, err
}

// Set implements the Store interface.
func (s *BoltStore) Set(id string, o Override) error {
	key := Key(id)
	if key == "" {
		return fmt.Errorf("placement: empty component id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(overrideBucket)
		var current Override
		if data := b.Get([]byte(key)); data != nil {
			current, _ = s.decode([]byte(key), data)
		}
		data, err := json.Marshal(current.Merge(o))
		if err != nil {
			return fmt.Errorf("placement: encode %s: %w", key, err)
		}
		return b.Put([]byte(key), data)
	})
}

// Remove implements the Store interface.
func (s *BoltStore) Remove(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(overrideBucket).Delete([]byte(Key(id)))
	})
}

// List implements the Store interface.
func (s *BoltStore) List() (map[string]Override, error) {
	out := make(map[string]Override)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(overrideBucket).ForEach(func(k, v []byte) error {
			if o, ok := s.decode(k, v); ok {
				out[string(k)] = o
			}
			return nil
		})
	})
	return out, err
}

// Close implements the Store interface.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
