package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var bucketEmbeddings = []byte("embeddings")

// Cache stores embeddings by key. Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) ([]float32, bool, error)
	Put(key string, vec []float32) error
}

// CacheKey identifies the embedding of text under model.
func CacheKey(model, text string) string {
	h := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(h[:])
}

// BoltCache is an on-disk Cache backed by bbolt.
type BoltCache struct {
	db *bbolt.DB
}

// OpenBoltCache opens (creating if needed) the cache file at path.
// It fails after a second if another process holds the file.
func OpenBoltCache(path string) (*BoltCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEmbeddings)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket %s: %w", bucketEmbeddings, err)
	}
	return &BoltCache{db: db}, nil
}

// Get returns the cached vector for key, if any.
func (c *BoltCache) Get(key string) ([]float32, bool, error) {
	var vec []float32
	err := c.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketEmbeddings).Get([]byte(key))
		if data == nil {
			return nil
		}
		var err error
		vec, err = bytesToVector(data)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return vec, vec != nil, nil
}

// Put stores vec under key, replacing any previous value.
func (c *BoltCache) Put(key string, vec []float32) error {
	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEmbeddings).Put([]byte(key), vectorToBytes(vec))
	})
}

// Close releases the database file.
func (c *BoltCache) Close() error {
	return c.db.Close()
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
