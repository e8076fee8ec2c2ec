package leveldb

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestPutGetHasDelete(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	key, value := []byte("account/abc"), []byte("balance-bytes")
	if err := db.Put(key, value); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := db.Get(key)
	if err != nil || !ok || !bytes.Equal(got, value) {
		t.Fatalf("Get = %v, %v, %v; want %v, true, nil", got, ok, err, value)
	}

	has, err := db.Has(key)
	if err != nil || !has {
		t.Fatalf("Has = %v, %v; want true, nil", has, err)
	}

	if err := db.Delete(key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, err := db.Get(key); err != nil || ok {
		t.Fatalf("Get after delete = ok=%v, err=%v; want false, nil", ok, err)
	}
}

func TestCursorIteratesPrefixAndTrimsKeys(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	prefix := []byte("account/")
	entries := map[string]string{
		"account/a": "1",
		"account/b": "2",
		"other/c":   "3",
	}
	for k, v := range entries {
		if err := db.Put([]byte(k), []byte(v)); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	cur, err := db.Cursor(prefix)
	if err != nil {
		t.Fatalf("Cursor: %v", err)
	}
	defer cur.Close()

	seen := map[string]string{}
	for ok := cur.First(); ok; ok = cur.Next() {
		seen[string(cur.Key())] = string(cur.Value())
	}
	if len(seen) != 2 || seen["a"] != "1" || seen["b"] != "2" {
		t.Fatalf("unexpected cursor contents: %v", seen)
	}
}
