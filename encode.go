package enval

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encode serializes a value of type T to bytes using msgpack encoding.
// Values, and structs holding them, keep their kinds across Encode and Decode.
func Encode[T any](value T) ([]byte, error) {
	return msgpack.Marshal(value)
}

// Decode deserializes bytes into a value of type T using msgpack encoding.
func Decode[T any](data []byte) (T, error) {
	var value T
	err := msgpack.Unmarshal(data, &value)
	return value, err
}

var (
	_ msgpack.CustomEncoder = Value{}
	_ msgpack.CustomDecoder = (*Value)(nil)
)

// EncodeMsgpack implements msgpack.CustomEncoder. A Value is written as a
// two element array of kind and payload, so undefined and null stay distinct.
// Numbers are always written as float64.
func (v Value) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(v.kind)); err != nil {
		return err
	}

	switch v.kind {
	case KindUndefined, KindNull:
		return enc.EncodeNil()
	case KindBool:
		b, _ := v.Boolean()
		return enc.EncodeBool(b)
	case KindNumber:
		f, _ := v.Float()
		return enc.EncodeFloat64(f)
	case KindString:
		s, _ := v.Str()
		return enc.EncodeString(s)
	default:
		return enc.Encode(v.raw)
	}
}

// DecodeMsgpack implements msgpack.CustomDecoder.
func (v *Value) DecodeMsgpack(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n != 2 {
		return fmt.Errorf("enval: decoding value: expected 2 elements, got %d", n)
	}
	k, err := dec.DecodeInt()
	if err != nil {
		return err
	}

	kind := Kind(k)
	switch kind {
	case KindUndefined, KindNull:
		if err := dec.DecodeNil(); err != nil {
			return err
		}
		*v = Value{kind: kind}
	case KindBool:
		b, err := dec.DecodeBool()
		if err != nil {
			return err
		}
		*v = Bool(b)
	case KindNumber:
		f, err := dec.DecodeFloat64()
		if err != nil {
			return err
		}
		*v = Number(f)
	case KindString:
		s, err := dec.DecodeString()
		if err != nil {
			return err
		}
		*v = String(s)
	case KindObject, KindArray, KindOther:
		raw, err := dec.DecodeInterface()
		if err != nil {
			return err
		}
		*v = Value{kind: kind, raw: raw}
	default:
		return fmt.Errorf("enval: decoding value: unknown kind %d", k)
	}
	return nil
}
