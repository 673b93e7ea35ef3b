package reader

import (
	"github.com/wippyai/decodergen/errors"
)

// dependencies lists, for composite codecs, the codecs their emitted function calls.
// Signed 64-bit values combine a signed high word with an unsigned low word
// in both byte orders.
var dependencies = map[Type][]Type{
	BigUint64LE: {BigUint64LE, Uint32LE},
	BigUint64BE: {BigUint64BE, Uint32BE},
	BigInt64LE:  {BigInt64LE, Uint32LE, Int32LE},
	BigInt64BE:  {BigInt64BE, Uint32BE, Int32BE},
}

// Dependencies returns t followed by every codec whose function t's emitted
// function calls. Emitting exactly this list is sufficient for t to run.
func Dependencies(t Type) []Type {
	if deps, ok := dependencies[t]; ok {
		out := make([]Type, len(deps))
		copy(out, deps)
		return out
	}
	return []Type{t}
}

// Source returns the JavaScript definition of t's read function.
// The text uses only ES3 syntax and plain array indexing.
func Source(t Type) (string, error) {
	if !t.Valid() || sources[t] == "" {
		return "", errors.New(errors.PhaseAssemble, errors.KindUnknownCodec).
			Codec(t.String()).
			Value(uint8(t)).
			Detail("no function body registered").
			Build()
	}
	return sources[t], nil
}

// MustSource is like Source but panics on unknown types.
func MustSource(t Type) string {
	src, err := Source(t)
	if err != nil {
		panic(err)
	}
	return src
}

var sources = [numTypes]string{
	Uint8: `function readUint8(buf, offset){
    return buf[offset];
}`,
	Int8: `function readInt8(buf, offset){
    var val = buf[offset];
    return (val & 0x80) ? val - 0x100 : val;
}`,
	Uint16LE: `function readUint16LE(buf, offset){
    return buf[offset] | (buf[offset + 1] << 8);
}`,
	Uint16BE: `function readUint16BE(buf, offset){
    return (buf[offset] << 8) | buf[offset + 1];
}`,
	Int16LE: `function readInt16LE(buf, offset){
    var val = buf[offset] | (buf[offset + 1] << 8);
    return (val & 0x8000) ? val - 0x10000 : val;
}`,
	Int16BE: `function readInt16BE(buf, offset){
    var val = (buf[offset] << 8) | buf[offset + 1];
    return (val & 0x8000) ? val - 0x10000 : val;
}`,
	Uint32LE: `function readUint32LE(buf, offset){
    return (buf[offset] | (buf[offset + 1] << 8) | (buf[offset + 2] << 16) | (buf[offset + 3] << 24)) >>> 0;
}`,
	Uint32BE: `function readUint32BE(buf, offset){
    return ((buf[offset] << 24) | (buf[offset + 1] << 16) | (buf[offset + 2] << 8) | buf[offset + 3]) >>> 0;
}`,
	Int32LE: `function readInt32LE(buf, offset){
    return buf[offset] | (buf[offset + 1] << 8) | (buf[offset + 2] << 16) | (buf[offset + 3] << 24);
}`,
	Int32BE: `function readInt32BE(buf, offset){
    return (buf[offset] << 24) | (buf[offset + 1] << 16) | (buf[offset + 2] << 8) | buf[offset + 3];
}`,
	BigUint64LE: `function readBigUint64LE(buf, offset){
    var lo = readUint32LE(buf, offset);
    var hi = readUint32LE(buf, offset + 4);
    return hi * 0x100000000 + lo;
}`,
	BigUint64BE: `function readBigUint64BE(buf, offset){
    var hi = readUint32BE(buf, offset);
    var lo = readUint32BE(buf, offset + 4);
    return hi * 0x100000000 + lo;
}`,
	BigInt64LE: `function readBigInt64LE(buf, offset){
    var lo = readUint32LE(buf, offset);
    var hi = readInt32LE(buf, offset + 4);
    return hi * 0x100000000 + lo;
}`,
	BigInt64BE: `function readBigInt64BE(buf, offset){
    var hi = readInt32BE(buf, offset);
    var lo = readUint32BE(buf, offset + 4);
    return hi * 0x100000000 + lo;
}`,
	Float16LE: `function readFloat16LE(buf, offset){
    var sign = buf[offset + 1] >> 7;
    var exponent = (buf[offset + 1] & 0x7C) >> 2;
    var mantissa = ((buf[offset + 1] & 0x03) << 8) | buf[offset];
    if(exponent === 0){
        if(mantissa === 0){
            return sign ? -0 : 0;
        }
        return (sign ? -1 : 1) * mantissa * 5.960464477539063e-8;
    }
    if(exponent === 31){
        if(mantissa === 0){
            return sign ? -Infinity : Infinity;
        }
        return NaN;
    }
    return (sign ? -1 : 1) * (1 + mantissa / 1024) * Math.pow(2, exponent - 15);
}`,
	Float16BE: `function readFloat16BE(buf, offset){
    var sign = buf[offset] >> 7;
    var exponent = (buf[offset] & 0x7C) >> 2;
    var mantissa = ((buf[offset] & 0x03) << 8) | buf[offset + 1];
    if(exponent === 0){
        if(mantissa === 0){
            return sign ? -0 : 0;
        }
        return (sign ? -1 : 1) * mantissa * 5.960464477539063e-8;
    }
    if(exponent === 31){
        if(mantissa === 0){
            return sign ? -Infinity : Infinity;
        }
        return NaN;
    }
    return (sign ? -1 : 1) * (1 + mantissa / 1024) * Math.pow(2, exponent - 15);
}`,
	Float32LE: `function readFloat32LE(buf, offset){
    var sign = buf[offset + 3] >> 7;
    var exponent = ((buf[offset + 3] & 0x7F) << 1) | (buf[offset + 2] >> 7);
    var mantissa = ((buf[offset + 2] & 0x7F) << 16) | (buf[offset + 1] << 8) | buf[offset];
    if(exponent === 0){
        if(mantissa === 0){
            return sign ? -0 : 0;
        }
        return (sign ? -1 : 1) * mantissa * 1.401298464324817e-45;
    }
    if(exponent === 255){
        if(mantissa === 0){
            return sign ? -Infinity : Infinity;
        }
        return NaN;
    }
    return (sign ? -1 : 1) * (1 + mantissa / 8388608) * Math.pow(2, exponent - 127);
}`,
	Float32BE: `function readFloat32BE(buf, offset){
    var sign = buf[offset] >> 7;
    var exponent = ((buf[offset] & 0x7F) << 1) | (buf[offset + 1] >> 7);
    var mantissa = ((buf[offset + 1] & 0x7F) << 16) | (buf[offset + 2] << 8) | buf[offset + 3];
    if(exponent === 0){
        if(mantissa === 0){
            return sign ? -0 : 0;
        }
        return (sign ? -1 : 1) * mantissa * 1.401298464324817e-45;
    }
    if(exponent === 255){
        if(mantissa === 0){
            return sign ? -Infinity : Infinity;
        }
        return NaN;
    }
    return (sign ? -1 : 1) * (1 + mantissa / 8388608) * Math.pow(2, exponent - 127);
}`,
	Float64LE: `function readFloat64LE(buf, offset){
    var sign = buf[offset + 7] >> 7;
    var exponent = ((buf[offset + 7] & 0x7F) << 4) | (buf[offset + 6] >> 4);
    var mantissaHi = ((buf[offset + 6] & 0x0F) << 16) | (buf[offset + 5] << 8) | buf[offset + 4];
    var mantissaLo = ((buf[offset + 3] << 24) | (buf[offset + 2] << 16) | (buf[offset + 1] << 8) | buf[offset]) >>> 0;
    if(exponent === 0){
        if(mantissaHi === 0 && mantissaLo === 0){
            return sign ? -0 : 0;
        }
        return (sign ? -1 : 1) * (mantissaHi * 4294967296 + mantissaLo) * 5e-324;
    }
    if(exponent === 2047){
        if(mantissaHi === 0 && mantissaLo === 0){
            return sign ? -Infinity : Infinity;
        }
        return NaN;
    }
    return (sign ? -1 : 1) * (1 + mantissaHi / 1048576 + mantissaLo / 4503599627370496) * Math.pow(2, exponent - 1023);
}`,
	Float64BE: `function readFloat64BE(buf, offset){
    var sign = buf[offset] >> 7;
    var exponent = ((buf[offset] & 0x7F) << 4) | (buf[offset + 1] >> 4);
    var mantissaHi = ((buf[offset + 1] & 0x0F) << 16) | (buf[offset + 2] << 8) | buf[offset + 3];
    var mantissaLo = ((buf[offset + 4] << 24) | (buf[offset + 5] << 16) | (buf[offset + 6] << 8) | buf[offset + 7]) >>> 0;
    if(exponent === 0){
        if(mantissaHi === 0 && mantissaLo === 0){
            return sign ? -0 : 0;
        }
        return (sign ? -1 : 1) * (mantissaHi * 4294967296 + mantissaLo) * 5e-324;
    }
    if(exponent === 2047){
        if(mantissaHi === 0 && mantissaLo === 0){
            return sign ? -Infinity : Infinity;
        }
        return NaN;
    }
    return (sign ? -1 : 1) * (1 + mantissaHi / 1048576 + mantissaLo / 4503599627370496) * Math.pow(2, exponent - 1023);
}`,
}
