// Package boltqueue implements scheduledexec.Store against
// go.etcd.io/bbolt, the scheduled-execution queue's dedicated
// priority-ordered store (distinct from the chain-state leveldb
// provider). Bucket layout and transaction style are grounded on the
// rubin-protocol node's bbolt store (node/store/db.go): one bucket per
// index, buckets created up front inside an Update, reads copy the
// returned []byte out of the view before it escapes the transaction.
//
// There is a single bucket, scheduled_by_hash, keyed by the execution
// hash; ScanAtTopoheight, CountInWindow, GetPendingByTarget, and
// GetByHandle all walk it the same way scheduledexec.MemStore does,
// since the queue's working set is small enough that a full bucket scan
// per dispatch tick is the same cost the in-memory reference
// implementation already pays.
package boltqueue

import (
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/tos-network/tosd/consensustypes"
	"github.com/tos-network/tosd/daghash"
	"github.com/tos-network/tosd/wire"
)

var bucketByHash = []byte("scheduled_by_hash")

// DB is a bbolt-backed scheduledexec.Store.
type DB struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the scheduled-execution queue's
// bbolt database at path.
func Open(path string) (*DB, error) {
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := bdb.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketByHash)
		return err
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}
	return &DB{db: bdb}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) Put(e *consensustypes.ScheduledExecution) error {
	encoded, err := wire.EncodeScheduledExecution(e)
	if err != nil {
		return err
	}
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketByHash).Put(e.Hash[:], encoded)
	})
}

func (d *DB) Get(hash daghash.Hash) (*consensustypes.ScheduledExecution, bool) {
	var out *consensustypes.ScheduledExecution
	_ = d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketByHash).Get(hash[:])
		if v == nil {
			return nil
		}
		e, err := wire.DecodeScheduledExecution(append([]byte(nil), v...))
		if err != nil {
			return err
		}
		out = e
		return nil
	})
	return out, out != nil
}

func (d *DB) Delete(hash daghash.Hash) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketByHash).Delete(hash[:])
	})
}

func (d *DB) ScanAtTopoheight(t uint64) ([]*consensustypes.ScheduledExecution, error) {
	var out []*consensustypes.ScheduledExecution
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketByHash).ForEach(func(_, v []byte) error {
			e, err := wire.DecodeScheduledExecution(v)
			if err != nil {
				return err
			}
			if e.Status != consensustypes.StatusPending {
				return nil
			}
			switch e.Kind.Tag {
			case consensustypes.ScheduledKindTopoHeight:
				if e.Kind.TopoHeight == t {
					out = append(out, e)
				}
			case consensustypes.ScheduledKindBlockEnd:
				if e.RegistrationTopoheight <= t {
					out = append(out, e)
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (d *DB) CountInWindow(contract daghash.Hash, from, to uint64) (uint64, error) {
	var count uint64
	err := d.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketByHash).ForEach(func(_, v []byte) error {
			e, err := wire.DecodeScheduledExecution(v)
			if err != nil {
				return err
			}
			if e.SchedulerContract != contract {
				return nil
			}
			if e.RegistrationTopoheight >= from && e.RegistrationTopoheight <= to {
				count++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (d *DB) GetPendingByTarget(target daghash.Hash) (*consensustypes.ScheduledExecution, bool) {
	var out *consensustypes.ScheduledExecution
	_ = d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketByHash).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			e, err := wire.DecodeScheduledExecution(v)
			if err != nil {
				return err
			}
			if e.TargetContract == target && e.Status == consensustypes.StatusPending {
				out = e
				return nil
			}
		}
		return nil
	})
	return out, out != nil
}

// GetByHandle resolves the opaque handle a contract was given at
// registration, derived from the first 8 bytes of its hash (same
// convention as scheduledexec's internal handleFromHash).
func (d *DB) GetByHandle(handle uint64) (*consensustypes.ScheduledExecution, bool) {
	var out *consensustypes.ScheduledExecution
	_ = d.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketByHash).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if len(k) < 8 {
				continue
			}
			if binary.BigEndian.Uint64(k[:8]) != handle {
				continue
			}
			e, err := wire.DecodeScheduledExecution(v)
			if err != nil {
				return err
			}
			out = e
			return nil
		}
		return nil
	})
	return out, out != nil
}
