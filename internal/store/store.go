package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/pdiview/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketDocuments = []byte("documents")
	bucketMeta      = []byte("meta")
)

// schemaVersion is bumped when cached document keys change meaning
const schemaVersion = "1"

// DocumentStore implements domain.DocumentStore using BoltDB.
type DocumentStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

var _ domain.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore opens the cache for one bundle. Each bundle base gets its
// own database under baseCacheDir. An empty baseCacheDir keeps everything in memory.
func NewDocumentStore(baseCacheDir, bundleBase string) (*DocumentStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &DocumentStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if bundleBase != "" {
		dir = filepath.Join(baseCacheDir, hashBundleBase(bundleBase))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "pdiview.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	stale := false
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketDocuments, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		meta := tx.Bucket(bucketMeta)
		if v := meta.Get([]byte("schema")); string(v) != schemaVersion {
			stale = v != nil
			return meta.Put([]byte("schema"), []byte(schemaVersion))
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &DocumentStore{db: db, cache: make(map[string][]byte)}
	if stale {
		s.InvalidateAll()
	}
	return s, nil
}

// hashBundleBase gives each bundle location a short stable directory name
func hashBundleBase(base string) string {
	normalized := strings.TrimRight(strings.ToLower(strings.TrimSpace(base)), "/\\")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *DocumentStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Persistent reports whether documents survive a restart
func (s *DocumentStore) Persistent() bool {
	return s.db != nil
}

func (s *DocumentStore) GetDocument(path string) ([]byte, bool) {
	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[path]; ok {
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(path)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return nil, false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[path] = data
	s.mu.Unlock()

	return data, true
}

func (s *DocumentStore) SaveDocument(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("empty document key")
	}
	buf := make([]byte, len(data))
	copy(buf, data)

	// Update memory cache
	s.mu.Lock()
	s.cache[path] = buf
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	// Write to BoltDB
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDocuments)
		return b.Put([]byte(path), buf)
	})
}

// Len returns the number of persisted documents (memory entries in memory-only mode)
func (s *DocumentStore) Len() int {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return len(s.cache)
	}
	n := 0
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketDocuments); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n
}

func (s *DocumentStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Drop and recreate the bucket; deleting under a live cursor skips keys
	s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketDocuments) != nil {
			if err := tx.DeleteBucket(bucketDocuments); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket(bucketDocuments)
		return err
	})
}
