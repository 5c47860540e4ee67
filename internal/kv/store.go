// Package kv implements the persistent store adapter (spec C2 / §6): a
// typed facade over a byte-oriented key/value store, backed by bbolt —
// the teacher's actual persistence dependency (node/store/db.go).
//
// Keys are 32-byte digests; values are opaque byte sequences. The two
// well-known keys (canonical tip, canonical height) and the per-block
// body/height entries all live in a single bucket, matching the flat
// key space spec.md §6 describes.
package kv

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("blocks")

// Key is a 32-byte store key — either a block hash or one of the
// well-known digests (hash("canonical_tip"), hash("canonical_height")).
type Key [32]byte

// Store is the narrow persistence contract the core requires: get, put,
// delete, and an atomic batch of operations.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a bbolt-backed store at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("kv: open bbolt: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: create bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value for k, or ok=false if absent.
func (s *Store) Get(k Key) (value []byte, ok bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketName).Get(k[:])
		if v == nil {
			return nil
		}
		value = append([]byte(nil), v...)
		ok = true
		return nil
	})
	return value, ok, err
}

// Emplace writes k -> v, overwriting any existing value.
func (s *Store) Emplace(k Key, v []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(k[:], v)
	})
}

// Delete removes k, a no-op if absent.
func (s *Store) Delete(k Key) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Delete(k[:])
	})
}

// Op is a single mutation queued for a Batch.
type Op struct {
	Key    Key
	Value  []byte // written under Key; ignored when Delete is set
	Delete bool
}

// Batch applies ops as a single bbolt transaction: every key is written
// (or deleted) or none are, satisfying the atomicity spec §4.1/§5 require
// for a single append_block call's store mutations. Grounded on the
// teacher's node/store/reorg.go use of d.db.Update(func(tx *bolt.Tx) ...)
// to group multi-key writes.
func (s *Store) Batch(ops []Op) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		for _, op := range ops {
			if op.Delete {
				if err := b.Delete(op.Key[:]); err != nil {
					return err
				}
				continue
			}
			if err := b.Put(op.Key[:], op.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// EncodeHeight encodes a height as the big-endian 8-byte value the spec's
// well-known height key and per-block height index store.
func EncodeHeight(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return buf[:]
}

// DecodeHeight is the inverse of EncodeHeight.
func DecodeHeight(v []byte) (uint64, error) {
	if len(v) != 8 {
		return 0, fmt.Errorf("kv: malformed height value (%d bytes)", len(v))
	}
	return binary.BigEndian.Uint64(v), nil
}
