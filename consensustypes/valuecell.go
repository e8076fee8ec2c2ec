package consensustypes

import "github.com/tos-network/tosd/cerrors"

// MaxContainerDepth bounds how deeply ValueCell Object/Map nesting may go
// (spec §6 limits).
const MaxContainerDepth = 64

// MaxContainerSize bounds the number of entries an Object/Map ValueCell
// may hold (spec §6 limits).
const MaxContainerSize = 10000

// ValueCellTag is the outer tagged-sum discriminant for a contract value
// (spec §6): 0=Primitive, 1=Bytes, 2=Object, 3=Map.
type ValueCellTag uint8

// ValueCellTag values.
const (
	CellPrimitive ValueCellTag = 0
	CellBytes     ValueCellTag = 1
	CellObject    ValueCellTag = 2
	CellMap       ValueCellTag = 3
)

// PrimitiveTag is the inner tag for CellPrimitive values (spec §6: 0=Null,
// 1=U8, …, 8=String, 9=Range, 10=Opaque).
type PrimitiveTag uint8

// PrimitiveTag values.
const (
	PrimNull PrimitiveTag = iota
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimI64
	PrimBool
	PrimString
	PrimRange
	PrimOpaque
)

// Primitive is one scalar contract value.
type Primitive struct {
	Tag     PrimitiveTag
	U64     uint64
	U128Lo  uint64
	U128Hi  uint64
	I64     int64
	Bool    bool
	Str     string
	RangeLo uint64
	RangeHi uint64
	Opaque  []byte
}

// MapEntry is one key/value pair of a CellMap ValueCell. Entries are kept
// in insertion order (rather than a Go map) so encode/decode round-trips
// are deterministic, matching spec testable property 10.
type MapEntry struct {
	Key   ValueCell
	Value ValueCell
}

// ValueCell is a tagged-sum contract value: a scalar Primitive, raw Bytes,
// an ordered Object (list of ValueCell, used for both arrays and structs
// in this wire format), or a Map of ValueCell pairs.
type ValueCell struct {
	Tag       ValueCellTag
	Primitive Primitive
	Bytes     []byte
	Object    []ValueCell
	Map       []MapEntry
}

// Validate walks the cell enforcing MaxContainerDepth/MaxContainerSize,
// returning the matching *cerrors.Error (ExceedsMaxDepth/
// ExceedsMaxArraySize/ExceedsMaxMapSize) the first invariant it breaks
// (spec §6 limits, §8 testable property 10).
func (v *ValueCell) Validate() error {
	return v.validate(1)
}

func (v *ValueCell) validate(depth int) error {
	if depth > MaxContainerDepth {
		return cerrors.New(cerrors.ExceedsMaxDepth)
	}
	switch v.Tag {
	case CellObject:
		if len(v.Object) > MaxContainerSize {
			return cerrors.New(cerrors.ExceedsMaxArraySize)
		}
		for i := range v.Object {
			if err := v.Object[i].validate(depth + 1); err != nil {
				return err
			}
		}
	case CellMap:
		if len(v.Map) > MaxContainerSize {
			return cerrors.New(cerrors.ExceedsMaxMapSize)
		}
		for i := range v.Map {
			if err := v.Map[i].Key.validate(depth + 1); err != nil {
				return err
			}
			if err := v.Map[i].Value.validate(depth + 1); err != nil {
				return err
			}
		}
	}
	return nil
}
