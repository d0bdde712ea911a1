package rlp

import (
	"fmt"
	"math/big"
	"reflect"
)

// EncodeToBytes returns the canonical RLP encoding of val.
//
// Supported types: []byte and fixed-size byte arrays (string items),
// *big.Int and unsigned integers (minimal big-endian string items, zero
// encodes as the empty string), string, bool (0x01 for true, empty string
// for false), RawValue (copied verbatim), slices/arrays of any supported
// element type (list items), and structs (a list of the struct's exported
// fields, in declaration order). Pointers are dereferenced; a nil pointer
// other than *big.Int encodes as an empty list.
func EncodeToBytes(val interface{}) ([]byte, error) {
	return encodeValue(reflect.ValueOf(val))
}

func encodeValue(v reflect.Value) ([]byte, error) {
	if !v.IsValid() {
		return encodeString(nil), nil
	}
	switch x := v.Interface().(type) {
	case RawValue:
		if len(x) == 0 {
			return nil, fmt.Errorf("rlp: empty RawValue")
		}
		return append([]byte{}, x...), nil
	case *big.Int:
		if x == nil {
			return encodeString(nil), nil
		}
		if x.Sign() < 0 {
			return nil, fmt.Errorf("rlp: cannot encode negative big.Int")
		}
		return encodeString(minimalBigEndian(x.Bytes())), nil
	}

	switch v.Kind() {
	case reflect.Ptr:
		if v.IsNil() {
			return []byte{0xC0}, nil // empty list
		}
		return encodeValue(v.Elem())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeString(minimalBigEndian(uint64ToBytes(v.Uint()))), nil
	case reflect.Bool:
		if v.Bool() {
			return []byte{0x01}, nil
		}
		return []byte{0x80}, nil
	case reflect.String:
		return encodeString([]byte(v.String())), nil
	case reflect.Slice, reflect.Array:
		if isByteSliceOrArray(v) {
			return encodeString(byteSliceOf(v)), nil
		}
		var items [][]byte
		for i := 0; i < v.Len(); i++ {
			enc, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		return encodeList(items), nil
	case reflect.Struct:
		var items [][]byte
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).PkgPath != "" {
				continue // unexported
			}
			enc, err := encodeValue(v.Field(i))
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		return encodeList(items), nil
	case reflect.Interface:
		return encodeValue(v.Elem())
	default:
		return nil, fmt.Errorf("rlp: unsupported type %s", v.Type())
	}
}

func isByteSliceOrArray(v reflect.Value) bool {
	return v.Type().Elem().Kind() == reflect.Uint8
}

func byteSliceOf(v reflect.Value) []byte {
	if v.Kind() == reflect.Slice {
		return v.Bytes()
	}
	b := make([]byte, v.Len())
	reflect.Copy(reflect.ValueOf(b), v)
	return b
}

func minimalBigEndian(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

// encodeString returns the RLP string encoding of b.
func encodeString(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return b
	}
	head := encodeHead(0x80, 0xB7, uint64(len(b)))
	return append(head, b...)
}

// encodeList returns the RLP list encoding of the already-encoded items.
func encodeList(items [][]byte) []byte {
	var size int
	for _, it := range items {
		size += len(it)
	}
	head := encodeHead(0xC0, 0xF7, uint64(size))
	out := make([]byte, 0, len(head)+size)
	out = append(out, head...)
	for _, it := range items {
		out = append(out, it...)
	}
	return out
}

// encodeHead returns the RLP header bytes for a string (short=0x80) or
// list (short=0xC0) of payload length size.
func encodeHead(short, longBase byte, size uint64) []byte {
	if size < 56 {
		return []byte{short + byte(size)}
	}
	lenBytes := minimalBigEndian(uint64ToBytes(size))
	head := make([]byte, 1+len(lenBytes))
	head[0] = longBase + byte(len(lenBytes))
	copy(head[1:], lenBytes)
	return head
}

// Encode writes the canonical RLP encoding of val to w.
func Encode(w interface {
	Write([]byte) (int, error)
}, val interface{}) error {
	b, err := EncodeToBytes(val)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
