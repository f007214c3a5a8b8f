// Package leb128 implements the unsigned and signed LEB128 variable-length
// integer encodings used by the emitted bytecode's LIT_INT, LIT_BYTES length
// prefixes, TUPLE_N, and CLOSURE_BIND operand forms.
//
// This is the one abstract numeric codec spec.md treats as an external
// collaborator; no third-party Go module in the retrieved example pack
// provides it, so it is grounded directly on the reference compiler's use
// of the Python "leb128" package (leb128.u.encode / leb128.i.encode) rather
// than on an importable library.
package leb128

// EncodeUnsigned encodes v as unsigned LEB128: 7 bits per byte, low-order
// first, with the high bit of each byte set except the last.
func EncodeUnsigned(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// EncodeSigned encodes v as signed LEB128: two's-complement, sign-extended
// from the last emitted byte's sign bit.
func EncodeSigned(v int64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		signBitSet := b&0x40 != 0
		done := (v == 0 && !signBitSet) || (v == -1 && signBitSet)
		if !done {
			b |= 0x80
		}
		out = append(out, b)
		if done {
			return out
		}
	}
}

// DecodeUnsigned reads an unsigned LEB128 value from the front of buf,
// returning the value and the number of bytes consumed. Used only by tests
// to verify the encoder round-trips; the compiler itself never decodes.
func DecodeUnsigned(buf []byte) (uint64, int) {
	var result uint64
	var shift uint
	for i, b := range buf {
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return result, len(buf)
}

// DecodeSigned reads a signed LEB128 value from the front of buf, returning
// the value and the number of bytes consumed.
func DecodeSigned(buf []byte) (int64, int) {
	var result int64
	var shift uint
	var b byte
	var i int
	for i, b = range buf {
		result |= int64(b&0x7f) << shift
		shift += 7
		if b&0x80 == 0 {
			break
		}
	}
	if shift < 64 && b&0x40 != 0 {
		result |= -1 << shift
	}
	return result, i + 1
}
