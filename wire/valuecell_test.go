package wire

import (
	"testing"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

func TestValueCellPrimitiveRoundTrip(t *testing.T) {
	v := &consensustypes.ValueCell{
		Tag: consensustypes.CellPrimitive,
		Primitive: consensustypes.Primitive{
			Tag: consensustypes.PrimU128,
			U128Hi: 1,
			U128Lo: 2,
		},
	}
	encoded, err := EncodeValueCell(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeValueCell(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Primitive.U128Hi != 1 || decoded.Primitive.U128Lo != 2 {
		t.Fatalf("u128 mismatch: %+v", decoded.Primitive)
	}
}

func TestValueCellObjectAndMapRoundTrip(t *testing.T) {
	v := &consensustypes.ValueCell{
		Tag: consensustypes.CellObject,
		Object: []consensustypes.ValueCell{
			{Tag: consensustypes.CellPrimitive, Primitive: consensustypes.Primitive{Tag: consensustypes.PrimString, Str: "hi"}},
			{
				Tag: consensustypes.CellMap,
				Map: []consensustypes.MapEntry{
					{
						Key:   consensustypes.ValueCell{Tag: consensustypes.CellPrimitive, Primitive: consensustypes.Primitive{Tag: consensustypes.PrimU8, U64: 1}},
						Value: consensustypes.ValueCell{Tag: consensustypes.CellBytes, Bytes: []byte{9, 9}},
					},
				},
			},
		},
	}

	encoded, err := EncodeValueCell(v)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeValueCell(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Object) != 2 {
		t.Fatalf("object length mismatch: got %d", len(decoded.Object))
	}
	if decoded.Object[0].Primitive.Str != "hi" {
		t.Fatalf("string mismatch: %+v", decoded.Object[0].Primitive)
	}
	mapCell := decoded.Object[1]
	if len(mapCell.Map) != 1 || mapCell.Map[0].Key.Primitive.U64 != 1 {
		t.Fatalf("map mismatch: %+v", mapCell)
	}
}

func TestValueCellRejectsExcessiveDepth(t *testing.T) {
	var v consensustypes.ValueCell
	v.Tag = consensustypes.CellPrimitive
	v.Primitive.Tag = consensustypes.PrimU8

	for i := 0; i < consensustypes.MaxContainerDepth+1; i++ {
		v = consensustypes.ValueCell{Tag: consensustypes.CellObject, Object: []consensustypes.ValueCell{v}}
	}

	_, err := EncodeValueCell(&v)
	if err == nil {
		t.Fatalf("expected depth error")
	}
	if !cerrors.Is(err, cerrors.ExceedsMaxDepth) {
		t.Fatalf("expected ExceedsMaxDepth, got %v", err)
	}
}

func TestValueCellRejectsExcessiveArraySize(t *testing.T) {
	v := &consensustypes.ValueCell{
		Tag:    consensustypes.CellObject,
		Object: make([]consensustypes.ValueCell, consensustypes.MaxContainerSize+1),
	}
	for i := range v.Object {
		v.Object[i] = consensustypes.ValueCell{Tag: consensustypes.CellPrimitive, Primitive: consensustypes.Primitive{Tag: consensustypes.PrimNull}}
	}

	_, err := EncodeValueCell(v)
	if err == nil {
		t.Fatalf("expected array size error")
	}
	if !cerrors.Is(err, cerrors.ExceedsMaxArraySize) {
		t.Fatalf("expected ExceedsMaxArraySize, got %v", err)
	}
}

func TestValueCellRejectsExcessiveMapSize(t *testing.T) {
	entries := make([]consensustypes.MapEntry, consensustypes.MaxContainerSize+1)
	null := consensustypes.ValueCell{Tag: consensustypes.CellPrimitive, Primitive: consensustypes.Primitive{Tag: consensustypes.PrimNull}}
	for i := range entries {
		entries[i] = consensustypes.MapEntry{Key: null, Value: null}
	}
	v := &consensustypes.ValueCell{Tag: consensustypes.CellMap, Map: entries}

	_, err := EncodeValueCell(v)
	if err == nil {
		t.Fatalf("expected map size error")
	}
	if !cerrors.Is(err, cerrors.ExceedsMaxMapSize) {
		t.Fatalf("expected ExceedsMaxMapSize, got %v", err)
	}
}
