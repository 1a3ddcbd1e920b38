package storage

import (
	"context"
	"time"

	"go.etcd.io/bbolt"
)

const boltBucketCollections = "collections" // key: collection name -> JSON array

type BoltRepository struct {
	db *bbolt.DB
}

func NewBoltRepository(path string) (*BoltRepository, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketCollections))
		return err
	}); err != nil {
		_ = db.Close()

		return nil, err
	}

	return &BoltRepository{db: db}, nil
}

func (b *BoltRepository) Load(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot

	err := b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketCollections))

		raw := make(map[string][]byte)
		if err := bucket.ForEach(func(k, v []byte) error {
			raw[string(k)] = v
			return nil
		}); err != nil {
			return err
		}

		// Values are only valid inside the transaction.
		var err error
		snap, err = decodeSnapshot(raw)

		return err
	})

	return snap, err
}

func (b *BoltRepository) Save(ctx context.Context, snap *Snapshot) error {
	encoded, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketCollections))

		for name, payload := range encoded {
			if err := bucket.Put([]byte(name), payload); err != nil {
				return err
			}
		}

		return nil
	})
}

func (b *BoltRepository) Close() error {
	return b.db.Close()
}
