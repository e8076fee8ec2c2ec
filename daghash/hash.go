// Package daghash defines the fixed-size block/transaction identifier used
// throughout the consensus core.
package daghash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

// HashSize is the number of bytes in a Hash.
const HashSize = 32

// MaxHashStringSize is the maximum length of a Hash hash string.
const MaxHashStringSize = HashSize * 2

// ErrHashStrSize describes an error that indicates the caller specified a
// hash string that has too many characters.
var ErrHashStrSize = errors.Errorf("max hash string length is %d bytes", MaxHashStringSize)

// Hash is a fixed 32-byte identifier, used for blocks, transactions,
// contracts, and scheduled-execution handles.
type Hash [HashSize]byte

// ZeroHash is the Hash value of all zero bytes.
var ZeroHash Hash

// String returns the Hash as the hexadecimal string of the byte-reversed
// hash, matching the big-endian display convention the teacher's daghash
// package uses for block hashes.
func (hash Hash) String() string {
	for i := 0; i < HashSize/2; i++ {
		hash[i], hash[HashSize-1-i] = hash[HashSize-1-i], hash[i]
	}
	return hex.EncodeToString(hash[:])
}

// CloneBytes returns a copy of the bytes backing the hash.
func (hash *Hash) CloneBytes() []byte {
	newHash := make([]byte, HashSize)
	copy(newHash, hash[:])
	return newHash
}

// SetBytes sets the bytes which represent the hash. An error is returned if
// the number of bytes passed in is not HashSize.
func (hash *Hash) SetBytes(newHash []byte) error {
	nhlen := len(newHash)
	if nhlen != HashSize {
		return errors.Errorf("invalid hash length of %d, want %d", nhlen, HashSize)
	}
	copy(hash[:], newHash)
	return nil
}

// IsEqual returns true if target is the same as the hash.
func (hash *Hash) IsEqual(target *Hash) bool {
	if hash == nil && target == nil {
		return true
	}
	if hash == nil || target == nil {
		return false
	}
	return *hash == *target
}

// Clone returns a pointer to a copy of hash.
func (hash *Hash) Clone() *Hash {
	clone := *hash
	return &clone
}

// Less reports whether hash sorts before other, used as the deterministic
// hash tiebreaker required throughout GHOSTDAG mergeset ordering and
// scheduled-execution priority composite keys.
func (hash *Hash) Less(other *Hash) bool {
	return bytes.Compare(hash[:], other[:]) < 0
}

// NewHash returns a new Hash from a byte slice.
func NewHash(newHash []byte) (*Hash, error) {
	var sh Hash
	err := sh.SetBytes(newHash)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

// NewHashFromStr creates a Hash from a hash string.
func NewHashFromStr(hash string) (*Hash, error) {
	ret := new(Hash)
	err := Decode(ret, hash)
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Decode decodes the byte-reversed hexadecimal string encoding of a Hash to
// a destination.
func Decode(dst *Hash, src string) error {
	reversedHashStr, err := hex.DecodeString(src)
	if err != nil {
		return err
	}
	if len(reversedHashStr) != HashSize {
		return ErrHashStrSize
	}
	for i, b := range reversedHashStr {
		dst[HashSize-1-i] = b
	}
	return nil
}

// HashData hashes the given data with double SHA-256, mirroring the
// teacher's daghash.DoubleHashH helper.
func HashData(data []byte) Hash {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// HashesEqual returns whether the given hash slices are equal element-wise.
func HashesEqual(a, b []*Hash) bool {
	if len(a) != len(b) {
		return false
	}
	for i, h := range a {
		if !h.IsEqual(b[i]) {
			return false
		}
	}
	return true
}

// Sorted reports whether hashes is sorted in ascending byte order.
func Sorted(hashes []*Hash) bool {
	for i := 1; i < len(hashes); i++ {
		if !hashes[i-1].Less(hashes[i]) {
			return false
		}
	}
	return true
}
