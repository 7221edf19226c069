package ctype

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ConversionError reports a value that cannot be converted to or from a C
// type.
type ConversionError struct {
	Type   string
	Reason string
	Err    error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot convert to %s: %s: %v", e.Type, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot convert to %s: %s", e.Type, e.Reason)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Codec converts between raw memory and cty values using a fixed byte order.
type Codec struct {
	Order binary.ByteOrder
}

// Native is the codec for memory of the running process.
var Native = Codec{Order: binary.NativeEndian}

// Decode converts the first t.Size bytes of data to a cty value.
func (c Codec) Decode(data []byte, t *Type) (cty.Value, error) {
	if len(data) < t.Size {
		return cty.NilVal, &ConversionError{Type: t.Name, Reason: fmt.Sprintf("need %d bytes, have %d", t.Size, len(data))}
	}
	data = data[:t.Size]

	switch t.Kind {
	case KindSigned:
		u := c.readUint(data)
		return cty.NumberIntVal(signExtend(u, t.Size)), nil
	case KindUnsigned:
		return cty.NumberUIntVal(c.readUint(data)), nil
	case KindFloat:
		var f float64
		if t.Size == 4 {
			f = float64(math.Float32frombits(c.Order.Uint32(data)))
		} else {
			f = math.Float64frombits(c.Order.Uint64(data))
		}
		// cty numbers are big.Float values, which have no NaN.
		if math.IsNaN(f) {
			return cty.NilVal, &ConversionError{Type: t.Name, Reason: "NaN has no cty representation"}
		}
		return cty.NumberFloatVal(f), nil
	case KindBool:
		return cty.BoolVal(data[0] != 0), nil
	case KindChar:
		return cty.StringVal(string(rune(data[0]))), nil
	case KindArray:
		return c.decodeArray(data, t)
	case KindStruct:
		if len(t.Fields) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(t.Fields))
		for _, f := range t.Fields {
			v, err := c.Decode(data[f.Offset:], f.Type)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[f.Name] = v
		}
		return cty.ObjectVal(attrs), nil
	default:
		return cty.NilVal, &ConversionError{Type: t.Name, Reason: "type has no value representation"}
	}
}

func (c Codec) decodeArray(data []byte, t *Type) (cty.Value, error) {
	if t.IsCharArray() {
		if i := bytes.IndexByte(data, 0); i >= 0 {
			data = data[:i]
		}
		return cty.StringVal(string(data)), nil
	}
	if t.Len == 0 {
		return cty.ListValEmpty(t.Elem.cty), nil
	}
	elems := make([]cty.Value, t.Len)
	for i := range elems {
		v, err := c.Decode(data[i*t.Elem.Size:], t.Elem)
		if err != nil {
			return cty.NilVal, err
		}
		elems[i] = v
	}
	return cty.ListVal(elems), nil
}

// Encode converts v to the memory representation of t and writes it to the
// first t.Size bytes of dst. On error dst may be partially written; callers
// that need all-or-nothing writes encode into a scratch buffer first.
func (c Codec) Encode(v cty.Value, t *Type, dst []byte) error {
	if len(dst) < t.Size {
		return &ConversionError{Type: t.Name, Reason: fmt.Sprintf("need %d bytes, have %d", t.Size, len(dst))}
	}
	if v.IsNull() {
		return &ConversionError{Type: t.Name, Reason: "value is null"}
	}
	if !v.IsWhollyKnown() {
		return &ConversionError{Type: t.Name, Reason: "value is not known"}
	}
	v, _ = v.Unmark()

	conv, err := convert.Convert(v, t.cty)
	if err != nil {
		return &ConversionError{Type: t.Name, Reason: fmt.Sprintf("unsuitable %s value", v.Type().FriendlyName()), Err: err}
	}
	dst = dst[:t.Size]

	switch t.Kind {
	case KindSigned:
		u, err := signedBits(conv, t.Size)
		if err != nil {
			return &ConversionError{Type: t.Name, Reason: "integer out of range", Err: err}
		}
		c.writeUint(dst, u)
	case KindUnsigned:
		u, err := unsignedBits(conv, t.Size)
		if err != nil {
			return &ConversionError{Type: t.Name, Reason: "integer out of range", Err: err}
		}
		c.writeUint(dst, u)
	case KindFloat:
		if t.Size == 4 {
			var f float32
			if err := gocty.FromCtyValue(conv, &f); err != nil {
				return &ConversionError{Type: t.Name, Reason: "float out of range", Err: err}
			}
			if math.IsInf(float64(f), 0) && !conv.AsBigFloat().IsInf() {
				return &ConversionError{Type: t.Name, Reason: "float out of range"}
			}
			c.Order.PutUint32(dst, math.Float32bits(f))
			return nil
		}
		var f float64
		if err := gocty.FromCtyValue(conv, &f); err != nil {
			return &ConversionError{Type: t.Name, Reason: "float out of range", Err: err}
		}
		c.Order.PutUint64(dst, math.Float64bits(f))
	case KindBool:
		dst[0] = 0
		if conv.True() {
			dst[0] = 1
		}
	case KindChar:
		r := []rune(conv.AsString())
		if len(r) != 1 || r[0] > 0xff {
			return &ConversionError{Type: t.Name, Reason: fmt.Sprintf("expected a single byte-sized character, got %q", conv.AsString())}
		}
		dst[0] = byte(r[0])
	case KindArray:
		return c.encodeArray(conv, t, dst)
	case KindStruct:
		for _, f := range t.Fields {
			if err := c.Encode(conv.GetAttr(f.Name), f.Type, dst[f.Offset:]); err != nil {
				return err
			}
		}
	default:
		return &ConversionError{Type: t.Name, Reason: "type has no value representation"}
	}
	return nil
}

func (c Codec) encodeArray(v cty.Value, t *Type, dst []byte) error {
	clear(dst)
	if t.IsCharArray() {
		s := v.AsString()
		if len(s) > t.Len {
			return &ConversionError{Type: t.Name, Reason: fmt.Sprintf("string of %d bytes does not fit", len(s))}
		}
		copy(dst, s)
		return nil
	}
	n := v.LengthInt()
	if n > t.Len {
		return &ConversionError{Type: t.Name, Reason: fmt.Sprintf("list of %d elements does not fit", n)}
	}
	for i, elem := range v.AsValueSlice() {
		if err := c.Encode(elem, t.Elem, dst[i*t.Elem.Size:]); err != nil {
			return err
		}
	}
	return nil
}

func (c Codec) readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(c.Order.Uint16(b))
	case 4:
		return uint64(c.Order.Uint32(b))
	default:
		return c.Order.Uint64(b)
	}
}

func (c Codec) writeUint(b []byte, u uint64) {
	switch len(b) {
	case 1:
		b[0] = byte(u)
	case 2:
		c.Order.PutUint16(b, uint16(u))
	case 4:
		c.Order.PutUint32(b, uint32(u))
	default:
		c.Order.PutUint64(b, u)
	}
}

func signExtend(u uint64, size int) int64 {
	switch size {
	case 1:
		return int64(int8(u))
	case 2:
		return int64(int16(u))
	case 4:
		return int64(int32(u))
	default:
		return int64(u)
	}
}

func signedBits(v cty.Value, size int) (uint64, error) {
	switch size {
	case 1:
		var x int8
		err := gocty.FromCtyValue(v, &x)
		return uint64(uint8(x)), err
	case 2:
		var x int16
		err := gocty.FromCtyValue(v, &x)
		return uint64(uint16(x)), err
	case 4:
		var x int32
		err := gocty.FromCtyValue(v, &x)
		return uint64(uint32(x)), err
	default:
		var x int64
		err := gocty.FromCtyValue(v, &x)
		return uint64(x), err
	}
}

func unsignedBits(v cty.Value, size int) (uint64, error) {
	switch size {
	case 1:
		var x uint8
		err := gocty.FromCtyValue(v, &x)
		return uint64(x), err
	case 2:
		var x uint16
		err := gocty.FromCtyValue(v, &x)
		return uint64(x), err
	case 4:
		var x uint32
		err := gocty.FromCtyValue(v, &x)
		return uint64(x), err
	default:
		var x uint64
		err := gocty.FromCtyValue(v, &x)
		return x, err
	}
}
