// Alternative engine backed by bbolt, an embedded B-tree store.
//
// The wrapper is thin: one bucket, string keys and values, and the
// same KeyNotFound semantics as the native engine — Remove on an
// absent key fails rather than silently succeeding, which bbolt's own
// Delete would do.
package kiln

import (
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

// boltFileName is the database file inside the data directory.
const boltFileName = "bolt.db"

var boltBucket = []byte("kiln")

type boltEngine struct {
	db *bolt.DB
}

func openBolt(dir string) (*boltEngine, error) {
	db, err := bolt.Open(filepath.Join(dir, boltFileName), 0o644, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &boltEngine{db: db}, nil
}

func (e *boltEngine) Set(key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if value == "" {
		return ErrEmptyValue
	}
	return e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
}

func (e *boltEngine) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	var value string
	err := e.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(boltBucket).Get([]byte(key))
		if v == nil {
			return ErrKeyNotFound
		}
		// v is only valid inside the transaction.
		value = string(v)
		return nil
	})
	return value, err
}

func (e *boltEngine) Remove(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return e.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(boltBucket)
		if b.Get([]byte(key)) == nil {
			return ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
}

func (e *boltEngine) Close() error {
	return e.db.Close()
}
