package pack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"fortio.org/safecast"
	"github.com/x448/float16"

	"metabin/internal/typecode"
)

var (
	errNotInteger = errors.New("required argument is not an integer")
	errNotNumber  = errors.New("required argument is not a number")
)

// integer holds a Go integer value without losing its signedness.
type integer struct {
	i        int64
	u        uint64
	unsigned bool
}

func integerOf(v any) (integer, error) {
	switch x := v.(type) {
	case bool:
		if x {
			return integer{i: 1}, nil
		}
		return integer{}, nil
	case int:
		return integer{i: int64(x)}, nil
	case int8:
		return integer{i: int64(x)}, nil
	case int16:
		return integer{i: int64(x)}, nil
	case int32:
		return integer{i: int64(x)}, nil
	case int64:
		return integer{i: x}, nil
	case uint:
		return integer{u: uint64(x), unsigned: true}, nil
	case uint8:
		return integer{u: uint64(x), unsigned: true}, nil
	case uint16:
		return integer{u: uint64(x), unsigned: true}, nil
	case uint32:
		return integer{u: uint64(x), unsigned: true}, nil
	case uint64:
		return integer{u: x, unsigned: true}, nil
	case uintptr:
		return integer{u: uint64(x), unsigned: true}, nil
	default:
		return integer{}, fmt.Errorf("%w (got %T)", errNotInteger, v)
	}
}

func conv[T int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64](n integer) (T, error) {
	if n.unsigned {
		return safecast.Conv[T](n.u)
	}
	return safecast.Conv[T](n.i)
}

func floatOf(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	}
	n, err := integerOf(v)
	if err != nil {
		return 0, fmt.Errorf("%w (got %T)", errNotNumber, v)
	}
	if n.unsigned {
		return float64(n.u), nil
	}
	return float64(n.i), nil
}

// encode serializes value under p. The returned chunk is exactly p.Width()
// bytes long.
func encode(p typecode.Pattern, order binary.ByteOrder, value any) ([]byte, error) {
	prim := p.Primitive
	if prim.Kind == typecode.KindFloat {
		return encodeFloat(prim, order, value)
	}
	n, err := integerOf(value)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, prim.Width)
	if prim.Kind == typecode.KindSigned {
		err = putSigned(buf, order, n)
	} else {
		err = putUnsigned(buf, order, n)
	}
	if err != nil {
		return nil, fmt.Errorf("%q format out of range for %s: %w", p.Code, prim.Token, err)
	}
	return buf, nil
}

func putSigned(buf []byte, order binary.ByteOrder, n integer) error {
	switch len(buf) {
	case 1:
		x, err := conv[int8](n)
		buf[0] = byte(x)
		return err
	case 2:
		x, err := conv[int16](n)
		order.PutUint16(buf, uint16(x))
		return err
	case 4:
		x, err := conv[int32](n)
		order.PutUint32(buf, uint32(x))
		return err
	case 8:
		x, err := conv[int64](n)
		order.PutUint64(buf, uint64(x))
		return err
	}
	return fmt.Errorf("unsupported width %d", len(buf))
}

func putUnsigned(buf []byte, order binary.ByteOrder, n integer) error {
	switch len(buf) {
	case 1:
		x, err := conv[uint8](n)
		buf[0] = x
		return err
	case 2:
		x, err := conv[uint16](n)
		order.PutUint16(buf, x)
		return err
	case 4:
		x, err := conv[uint32](n)
		order.PutUint32(buf, x)
		return err
	case 8:
		x, err := conv[uint64](n)
		order.PutUint64(buf, x)
		return err
	}
	return fmt.Errorf("unsupported width %d", len(buf))
}

func encodeFloat(prim typecode.Primitive, order binary.ByteOrder, value any) ([]byte, error) {
	f, err := floatOf(value)
	if err != nil {
		return nil, err
	}
	finite := !math.IsInf(f, 0) && !math.IsNaN(f)
	buf := make([]byte, prim.Width)
	switch prim.Width {
	case 2:
		h := toFloat16(f)
		if finite && h.IsInf(0) {
			return nil, fmt.Errorf("float too large to pack with %s format", prim.Token)
		}
		order.PutUint16(buf, h.Bits())
	case 4:
		s := float32(f)
		if finite && math.IsInf(float64(s), 0) {
			return nil, fmt.Errorf("float too large to pack with %s format", prim.Token)
		}
		order.PutUint32(buf, math.Float32bits(s))
	case 8:
		order.PutUint64(buf, math.Float64bits(f))
	default:
		return nil, fmt.Errorf("unsupported float width %d", prim.Width)
	}
	return buf, nil
}

// f16Overflow is the magnitude of the infinity bit pattern when it is
// treated as the next step above the largest finite half.
const f16Overflow = 65536

// toFloat16 rounds f to the nearest half, ties to even, in a single step.
// Going through float32 first can land exactly on a half-way point and
// then tie the wrong way, so the float32 result is only a first guess that
// is compared with its neighbour toward f.
func toFloat16(f float64) float16.Float16 {
	h := float16.Fromfloat32(float32(f))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return h
	}
	sign := h.Bits() & 0x8000
	mag := h.Bits() &^ 0x8000
	a := math.Abs(f)
	g := halfMagnitude(mag)
	var next uint16
	switch {
	case a > g && mag < 0x7c00:
		next = mag + 1
	case a < g && mag > 0:
		next = mag - 1
	default:
		return h
	}
	n := halfMagnitude(next)
	dh, dn := math.Abs(a-g), math.Abs(a-n)
	if dn < dh || (dn == dh && next&1 == 0) {
		mag = next
	}
	return float16.Frombits(sign | mag)
}

// halfMagnitude returns the value of a non-negative half bit pattern, with
// infinity standing for f16Overflow.
func halfMagnitude(bits uint16) float64 {
	if bits >= 0x7c00 {
		return f16Overflow
	}
	return float64(float16.Frombits(bits).Float32())
}
