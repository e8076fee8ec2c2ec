// Package leveldb adapts github.com/syndtr/goleveldb into a
// storage.Provider, grounded on database/ffldb/ldb's LevelDB wrapper and
// LevelDBCursor (prefix-scoped native iterators, keys trimmed of their
// prefix on the way out).
package leveldb

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tos-network/tosd/storage"
)

// DB is a leveldb-backed storage.Provider.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if necessary) a leveldb database at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, errors.Wrapf(err, "opening leveldb at %s", path)
	}
	return &DB{ldb: ldb}, nil
}

func (db *DB) Put(key, value []byte) error {
	return db.ldb.Put(key, value, nil)
}

func (db *DB) Get(key []byte) ([]byte, bool, error) {
	value, err := db.ldb.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (db *DB) Has(key []byte) (bool, error) {
	return db.ldb.Has(key, nil)
}

func (db *DB) Delete(key []byte) error {
	return db.ldb.Delete(key, nil)
}

func (db *DB) Cursor(prefix []byte) (storage.Cursor, error) {
	it := db.ldb.NewIterator(util.BytesPrefix(prefix), nil)
	return &cursor{it: it, prefix: prefix}, nil
}

func (db *DB) Close() error {
	return db.ldb.Close()
}

// cursor is a thin wrapper around a native goleveldb iterator, matching
// LevelDBCursor's prefix-trimming behavior.
type cursor struct {
	it       iterator.Iterator
	prefix   []byte
	isClosed bool
}

func (c *cursor) Next() bool {
	if c.isClosed {
		return false
	}
	return c.it.Next()
}

func (c *cursor) First() bool {
	if c.isClosed {
		return false
	}
	return c.it.First()
}

func (c *cursor) Seek(key []byte) bool {
	if c.isClosed {
		return false
	}
	return c.it.Seek(key)
}

func (c *cursor) Key() []byte {
	if c.isClosed {
		return nil
	}
	full := c.it.Key()
	if full == nil {
		return nil
	}
	return bytes.TrimPrefix(full, c.prefix)
}

func (c *cursor) Value() []byte {
	if c.isClosed {
		return nil
	}
	return c.it.Value()
}

func (c *cursor) Error() error {
	return c.it.Error()
}

func (c *cursor) Close() error {
	if c.isClosed {
		return errors.New("cursor already closed")
	}
	c.isClosed = true
	c.it.Release()
	return nil
}
