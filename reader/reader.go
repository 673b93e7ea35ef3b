package reader

import (
	"math"

	"github.com/wippyai/decodergen/errors"
)

// Func decodes one value starting at offset. The caller guarantees
// offset+Size() bytes are available.
type Func func(buf []byte, offset int) float64

// Read decodes the value of type t at offset. It mirrors the emitted
// JavaScript function for t operation for operation, so it can be used to
// predict decoder output without a JavaScript runtime.
func Read(t Type, buf []byte, offset int) (float64, error) {
	if !t.Valid() {
		return 0, errors.UnknownCodec(errors.PhaseDecode, t)
	}
	if offset < 0 || offset+t.Size() > len(buf) {
		return 0, errors.New(errors.PhaseDecode, errors.KindInvalidInput).
			Codec(t.String()).
			Value(offset).
			Detail("offset %d needs %d bytes, buffer has %d", offset, t.Size(), len(buf)).
			Build()
	}
	return funcs[t](buf, offset), nil
}

// FuncFor returns the Go reference decoder for t, or nil if t is invalid.
func FuncFor(t Type) Func {
	if !t.Valid() {
		return nil
	}
	return funcs[t]
}

var funcs = [numTypes]Func{
	Uint8:       readUint8,
	Int8:        readInt8,
	Uint16LE:    readUint16LE,
	Uint16BE:    readUint16BE,
	Int16LE:     readInt16LE,
	Int16BE:     readInt16BE,
	Uint32LE:    readUint32LE,
	Uint32BE:    readUint32BE,
	Int32LE:     readInt32LE,
	Int32BE:     readInt32BE,
	BigUint64LE: readBigUint64LE,
	BigUint64BE: readBigUint64BE,
	BigInt64LE:  readBigInt64LE,
	BigInt64BE:  readBigInt64BE,
	Float16LE:   readFloat16LE,
	Float16BE:   readFloat16BE,
	Float32LE:   readFloat32LE,
	Float32BE:   readFloat32BE,
	Float64LE:   readFloat64LE,
	Float64BE:   readFloat64BE,
}

const twoTo32 = 4294967296

func readUint8(buf []byte, offset int) float64 {
	return float64(buf[offset])
}

func readInt8(buf []byte, offset int) float64 {
	val := int(buf[offset])
	if val&0x80 != 0 {
		return float64(val - 0x100)
	}
	return float64(val)
}

func readUint16LE(buf []byte, offset int) float64 {
	return float64(uint16(buf[offset]) | uint16(buf[offset+1])<<8)
}

func readUint16BE(buf []byte, offset int) float64 {
	return float64(uint16(buf[offset])<<8 | uint16(buf[offset+1]))
}

func readInt16LE(buf []byte, offset int) float64 {
	val := int(buf[offset]) | int(buf[offset+1])<<8
	if val&0x8000 != 0 {
		return float64(val - 0x10000)
	}
	return float64(val)
}

func readInt16BE(buf []byte, offset int) float64 {
	val := int(buf[offset])<<8 | int(buf[offset+1])
	if val&0x8000 != 0 {
		return float64(val - 0x10000)
	}
	return float64(val)
}

func uint32LE(buf []byte, offset int) uint32 {
	return uint32(buf[offset]) | uint32(buf[offset+1])<<8 | uint32(buf[offset+2])<<16 | uint32(buf[offset+3])<<24
}

func uint32BE(buf []byte, offset int) uint32 {
	return uint32(buf[offset])<<24 | uint32(buf[offset+1])<<16 | uint32(buf[offset+2])<<8 | uint32(buf[offset+3])
}

func readUint32LE(buf []byte, offset int) float64 {
	return float64(uint32LE(buf, offset))
}

func readUint32BE(buf []byte, offset int) float64 {
	return float64(uint32BE(buf, offset))
}

func readInt32LE(buf []byte, offset int) float64 {
	return float64(int32(uint32LE(buf, offset)))
}

func readInt32BE(buf []byte, offset int) float64 {
	return float64(int32(uint32BE(buf, offset)))
}

func readBigUint64LE(buf []byte, offset int) float64 {
	lo := readUint32LE(buf, offset)
	hi := readUint32LE(buf, offset+4)
	return hi*twoTo32 + lo
}

func readBigUint64BE(buf []byte, offset int) float64 {
	hi := readUint32BE(buf, offset)
	lo := readUint32BE(buf, offset+4)
	return hi*twoTo32 + lo
}

func readBigInt64LE(buf []byte, offset int) float64 {
	lo := readUint32LE(buf, offset)
	hi := readInt32LE(buf, offset+4)
	return hi*twoTo32 + lo
}

func readBigInt64BE(buf []byte, offset int) float64 {
	hi := readInt32BE(buf, offset)
	lo := readUint32BE(buf, offset+4)
	return hi*twoTo32 + lo
}

func signOf(sign uint32) float64 {
	if sign != 0 {
		return -1
	}
	return 1
}

func signedZero(sign uint32) float64 {
	if sign != 0 {
		return math.Copysign(0, -1)
	}
	return 0
}

func signedInf(sign uint32) float64 {
	if sign != 0 {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// decodeFloat16 decodes a binary16 value from its high and low bytes.
func decodeFloat16(hi, lo byte) float64 {
	sign := uint32(hi) >> 7
	exponent := (uint32(hi) & 0x7C) >> 2
	mantissa := (uint32(hi)&0x03)<<8 | uint32(lo)

	switch exponent {
	case 0:
		if mantissa == 0 {
			return signedZero(sign)
		}
		return signOf(sign) * math.Ldexp(float64(mantissa), -24)
	case 31:
		if mantissa == 0 {
			return signedInf(sign)
		}
		return math.NaN()
	}
	return signOf(sign) * math.Ldexp(1+float64(mantissa)/1024, int(exponent)-15)
}

func readFloat16LE(buf []byte, offset int) float64 {
	return decodeFloat16(buf[offset+1], buf[offset])
}

func readFloat16BE(buf []byte, offset int) float64 {
	return decodeFloat16(buf[offset], buf[offset+1])
}

// decodeFloat32 decodes a binary32 value from its bytes, most significant first.
func decodeFloat32(b0, b1, b2, b3 byte) float64 {
	sign := uint32(b0) >> 7
	exponent := (uint32(b0)&0x7F)<<1 | uint32(b1)>>7
	mantissa := (uint32(b1)&0x7F)<<16 | uint32(b2)<<8 | uint32(b3)

	switch exponent {
	case 0:
		if mantissa == 0 {
			return signedZero(sign)
		}
		return signOf(sign) * math.Ldexp(float64(mantissa), -149)
	case 255:
		if mantissa == 0 {
			return signedInf(sign)
		}
		return math.NaN()
	}
	return signOf(sign) * math.Ldexp(1+float64(mantissa)/8388608, int(exponent)-127)
}

func readFloat32LE(buf []byte, offset int) float64 {
	return decodeFloat32(buf[offset+3], buf[offset+2], buf[offset+1], buf[offset])
}

func readFloat32BE(buf []byte, offset int) float64 {
	return decodeFloat32(buf[offset], buf[offset+1], buf[offset+2], buf[offset+3])
}

// decodeFloat64 decodes a binary64 value from a big-endian ordered copy of its bytes.
// The 52-bit mantissa is kept as a 20-bit high and 32-bit low part.
func decodeFloat64(b [8]byte) float64 {
	sign := uint32(b[0]) >> 7
	exponent := (uint32(b[0])&0x7F)<<4 | uint32(b[1])>>4
	mantissaHi := (uint32(b[1])&0x0F)<<16 | uint32(b[2])<<8 | uint32(b[3])
	mantissaLo := uint32(b[4])<<24 | uint32(b[5])<<16 | uint32(b[6])<<8 | uint32(b[7])

	switch exponent {
	case 0:
		if mantissaHi == 0 && mantissaLo == 0 {
			return signedZero(sign)
		}
		return signOf(sign) * math.Ldexp(float64(mantissaHi)*twoTo32+float64(mantissaLo), -1074)
	case 2047:
		if mantissaHi == 0 && mantissaLo == 0 {
			return signedInf(sign)
		}
		return math.NaN()
	}
	m := 1 + float64(mantissaHi)/1048576 + float64(mantissaLo)/4503599627370496
	return signOf(sign) * math.Ldexp(m, int(exponent)-1023)
}

func readFloat64LE(buf []byte, offset int) float64 {
	var b [8]byte
	for i := range b {
		b[i] = buf[offset+7-i]
	}
	return decodeFloat64(b)
}

func readFloat64BE(buf []byte, offset int) float64 {
	var b [8]byte
	copy(b[:], buf[offset:offset+8])
	return decodeFloat64(b)
}
