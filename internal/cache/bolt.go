package cache

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("cache")

// BoltStore file backed store that survives restarts. Each value is
// prefixed with its expiry as unix nanoseconds, zero meaning no expiry.
type BoltStore struct {
	db  *bolt.DB
	now func() time.Time
}

func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open cache file %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create cache bucket")
	}
	return &BoltStore{db: db, now: time.Now}, nil
}

func (b *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var (
		value   []byte
		expired bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(boltBucket).Get([]byte(key))
		if len(raw) < 8 {
			return ErrMiss
		}
		if b.expired(raw, b.now()) {
			expired = true
			return ErrMiss
		}
		value = append([]byte(nil), raw[8:]...)
		return nil
	})
	if expired {
		_ = b.Delete(context.Background(), key)
	}
	return value, err
}

func (b *BoltStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	raw := make([]byte, 8+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(raw, uint64(b.now().Add(ttl).UnixNano()))
	}
	copy(raw[8:], value)
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), raw)
	})
}

func (b *BoltStore) Delete(_ context.Context, keys ...string) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		for _, k := range keys {
			if err := bucket.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sweep removes expired entries and returns how many were dropped
func (b *BoltStore) Sweep() int {
	now := b.now()
	n := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(boltBucket)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if len(v) < 8 || b.expired(v, now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		n = len(stale)
		return nil
	})
	if err != nil {
		return 0
	}
	return n
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}

func (b *BoltStore) expired(raw []byte, now time.Time) bool {
	exp := binary.BigEndian.Uint64(raw[:8])
	return exp != 0 && now.UnixNano() >= int64(exp)
}
