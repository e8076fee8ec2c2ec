package wire

import (
	"bytes"

	"github.com/tos-network/tosd/cerrors"
	"github.com/tos-network/tosd/consensustypes"
)

// EncodeValueCell writes a ValueCell in its tagged-sum wire layout (spec
// §6): an outer tag byte, then tag-specific payload. Object is a u16-count
// prefixed list of ValueCells, Map a u16-count prefixed list of key/value
// ValueCell pairs. Validate is invoked first so a caller never produces
// wire bytes for a cell that breaks the depth/size limits.
func EncodeValueCell(v *consensustypes.ValueCell) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	buf := newBuffer(64)
	if err := writeValueCell(buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeValueCell parses a ValueCell and validates its limits.
func DecodeValueCell(data []byte) (*consensustypes.ValueCell, error) {
	r := bytes.NewReader(data)
	v, err := readValueCell(r)
	if err != nil {
		return nil, err
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return v, nil
}

func writeValueCell(w *bytes.Buffer, v *consensustypes.ValueCell) error {
	if err := writeUint8(w, uint8(v.Tag)); err != nil {
		return err
	}
	switch v.Tag {
	case consensustypes.CellPrimitive:
		return writePrimitive(w, &v.Primitive)
	case consensustypes.CellBytes:
		return writeBigBytes(w, v.Bytes)
	case consensustypes.CellObject:
		if err := writeUint16(w, uint16(len(v.Object))); err != nil {
			return err
		}
		for i := range v.Object {
			if err := writeValueCell(w, &v.Object[i]); err != nil {
				return err
			}
		}
		return nil
	case consensustypes.CellMap:
		if err := writeUint16(w, uint16(len(v.Map))); err != nil {
			return err
		}
		for i := range v.Map {
			if err := writeValueCell(w, &v.Map[i].Key); err != nil {
				return err
			}
			if err := writeValueCell(w, &v.Map[i].Value); err != nil {
				return err
			}
		}
		return nil
	default:
		return cerrors.Newf(cerrors.InvalidValue, "unknown value cell tag %d", v.Tag)
	}
}

func readValueCell(r *bytes.Reader) (*consensustypes.ValueCell, error) {
	tag, err := readUint8(r)
	if err != nil {
		return nil, err
	}
	v := &consensustypes.ValueCell{Tag: consensustypes.ValueCellTag(tag)}
	switch v.Tag {
	case consensustypes.CellPrimitive:
		p, err := readPrimitive(r)
		if err != nil {
			return nil, err
		}
		v.Primitive = p
	case consensustypes.CellBytes:
		b, err := readBigBytes(r, 0)
		if err != nil {
			return nil, err
		}
		v.Bytes = b
	case consensustypes.CellObject:
		n, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		v.Object = make([]consensustypes.ValueCell, n)
		for i := range v.Object {
			elem, err := readValueCell(r)
			if err != nil {
				return nil, err
			}
			v.Object[i] = *elem
		}
	case consensustypes.CellMap:
		n, err := readUint16(r)
		if err != nil {
			return nil, err
		}
		v.Map = make([]consensustypes.MapEntry, n)
		for i := range v.Map {
			key, err := readValueCell(r)
			if err != nil {
				return nil, err
			}
			val, err := readValueCell(r)
			if err != nil {
				return nil, err
			}
			v.Map[i] = consensustypes.MapEntry{Key: *key, Value: *val}
		}
	default:
		return nil, cerrors.Newf(cerrors.InvalidValue, "unknown value cell tag %d", tag)
	}
	return v, nil
}

func writePrimitive(w *bytes.Buffer, p *consensustypes.Primitive) error {
	if err := writeUint8(w, uint8(p.Tag)); err != nil {
		return err
	}
	switch p.Tag {
	case consensustypes.PrimNull:
		return nil
	case consensustypes.PrimU8:
		return writeUint8(w, uint8(p.U64))
	case consensustypes.PrimU16:
		return writeUint16(w, uint16(p.U64))
	case consensustypes.PrimU32:
		return writeUint32(w, uint32(p.U64))
	case consensustypes.PrimU64:
		return writeUint64(w, p.U64)
	case consensustypes.PrimU128:
		if err := writeUint64(w, p.U128Hi); err != nil {
			return err
		}
		return writeUint64(w, p.U128Lo)
	case consensustypes.PrimI64:
		return writeUint64(w, uint64(p.I64))
	case consensustypes.PrimBool:
		if p.Bool {
			return writeUint8(w, 1)
		}
		return writeUint8(w, 0)
	case consensustypes.PrimString:
		return writeBigBytes(w, []byte(p.Str))
	case consensustypes.PrimRange:
		if err := writeUint64(w, p.RangeLo); err != nil {
			return err
		}
		return writeUint64(w, p.RangeHi)
	case consensustypes.PrimOpaque:
		return writeBigBytes(w, p.Opaque)
	default:
		return cerrors.Newf(cerrors.InvalidValue, "unknown primitive tag %d", p.Tag)
	}
}

func readPrimitive(r *bytes.Reader) (consensustypes.Primitive, error) {
	tag, err := readUint8(r)
	if err != nil {
		return consensustypes.Primitive{}, err
	}
	p := consensustypes.Primitive{Tag: consensustypes.PrimitiveTag(tag)}
	switch p.Tag {
	case consensustypes.PrimNull:
		return p, nil
	case consensustypes.PrimU8:
		v, err := readUint8(r)
		p.U64 = uint64(v)
		return p, err
	case consensustypes.PrimU16:
		v, err := readUint16(r)
		p.U64 = uint64(v)
		return p, err
	case consensustypes.PrimU32:
		v, err := readUint32(r)
		p.U64 = uint64(v)
		return p, err
	case consensustypes.PrimU64:
		v, err := readUint64(r)
		p.U64 = v
		return p, err
	case consensustypes.PrimU128:
		hi, err := readUint64(r)
		if err != nil {
			return p, err
		}
		lo, err := readUint64(r)
		if err != nil {
			return p, err
		}
		p.U128Hi, p.U128Lo = hi, lo
		return p, nil
	case consensustypes.PrimI64:
		v, err := readUint64(r)
		p.I64 = int64(v)
		return p, err
	case consensustypes.PrimBool:
		v, err := readUint8(r)
		p.Bool = v != 0
		return p, err
	case consensustypes.PrimString:
		b, err := readBigBytes(r, 0)
		p.Str = string(b)
		return p, err
	case consensustypes.PrimRange:
		lo, err := readUint64(r)
		if err != nil {
			return p, err
		}
		hi, err := readUint64(r)
		if err != nil {
			return p, err
		}
		p.RangeLo, p.RangeHi = lo, hi
		return p, nil
	case consensustypes.PrimOpaque:
		b, err := readBigBytes(r, 0)
		p.Opaque = b
		return p, err
	default:
		return p, cerrors.Newf(cerrors.InvalidValue, "unknown primitive tag %d", tag)
	}
}
