package reachability

import (
	"testing"

	"github.com/tos-network/tosd/daghash"
)

func hashN(b byte) daghash.Hash {
	var h daghash.Hash
	h[0] = b
	return h
}

func TestIsAncestorTreeChain(t *testing.T) {
	genesis := hashN(0)
	idx := NewIndex(genesis)

	a := hashN(1)
	if err := idx.Insert(a, genesis, nil); err != nil {
		t.Fatalf("insert a: %v", err)
	}
	b := hashN(2)
	if err := idx.Insert(b, a, nil); err != nil {
		t.Fatalf("insert b: %v", err)
	}

	ok, err := idx.IsAncestor(genesis, b)
	if err != nil || !ok {
		t.Fatalf("expected genesis ancestor of b, got %v, %v", ok, err)
	}
	ok, err = idx.IsAncestor(b, genesis)
	if err != nil || ok {
		t.Fatalf("expected b not ancestor of genesis, got %v, %v", ok, err)
	}
	ok, err = idx.IsAncestor(a, a)
	if err != nil || !ok {
		t.Fatalf("a should be its own ancestor")
	}
}

func TestIsAncestorMissingParent(t *testing.T) {
	genesis := hashN(0)
	idx := NewIndex(genesis)
	missing := hashN(9)
	err := idx.Insert(hashN(1), missing, nil)
	if !IsDataMissing(err) {
		t.Fatalf("expected DataMissingError, got %v", err)
	}
}

func TestFutureCoveringSetCoversNonTreeDescendant(t *testing.T) {
	genesis := hashN(0)
	idx := NewIndex(genesis)

	x1 := hashN(1)
	x2 := hashN(2)
	if err := idx.Insert(x1, genesis, nil); err != nil {
		t.Fatal(err)
	}
	if err := idx.Insert(x2, genesis, nil); err != nil {
		t.Fatal(err)
	}

	// y has selected parent x1, with x2 as a secondary DAG parent.
	y := hashN(3)
	if err := idx.Insert(y, x1, []daghash.Hash{x2}); err != nil {
		t.Fatal(err)
	}

	ok, err := idx.IsAncestor(x2, y)
	if err != nil || !ok {
		t.Fatalf("expected x2 ancestor of y via future covering set, got %v, %v", ok, err)
	}
}

func TestReindexOnManyChildren(t *testing.T) {
	genesis := hashN(0)
	idx := NewIndex(genesis)

	// Force many children off genesis so allocateChild must reindex.
	for i := byte(1); i < 64; i++ {
		if err := idx.Insert(hashN(i), genesis, nil); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	// All children should still be mutually non-ancestors and all
	// descend from genesis.
	for i := byte(1); i < 64; i++ {
		ok, err := idx.IsAncestor(genesis, hashN(i))
		if err != nil || !ok {
			t.Fatalf("genesis should be ancestor of %d", i)
		}
	}
	ok, err := idx.IsAncestor(hashN(1), hashN(2))
	if err != nil || ok {
		t.Fatalf("siblings should not be ancestors of each other")
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	genesis := hashN(0)
	idx := NewIndex(genesis)
	a := hashN(1)
	if err := idx.Insert(a, genesis, nil); err != nil {
		t.Fatal(err)
	}
	if err := idx.Delete(a); err != nil {
		t.Fatal(err)
	}
	if idx.Has(a) {
		t.Fatalf("expected a to be removed")
	}
	gData, _ := idx.Get(genesis)
	for _, c := range gData.Children {
		if *c == a {
			t.Fatalf("expected a removed from genesis children")
		}
	}
}
