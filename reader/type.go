package reader

import "strconv"

// Kind is a numeric accessor kind as named by the DataView API
// (getUint16, getBigInt64, getFloat32, ...).
type Kind string

const (
	KindUint8     Kind = "Uint8"
	KindInt8      Kind = "Int8"
	KindUint16    Kind = "Uint16"
	KindInt16     Kind = "Int16"
	KindUint32    Kind = "Uint32"
	KindInt32     Kind = "Int32"
	KindBigUint64 Kind = "BigUint64"
	KindBigInt64  Kind = "BigInt64"
	KindFloat16   Kind = "Float16"
	KindFloat32   Kind = "Float32"
	KindFloat64   Kind = "Float64"
)

// ParseKind returns the Kind for an accessor suffix, e.g. "Uint16" from getUint16.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	switch k {
	case KindUint8, KindInt8, KindUint16, KindInt16, KindUint32, KindInt32,
		KindBigUint64, KindBigInt64, KindFloat16, KindFloat32, KindFloat64:
		return k, true
	}
	return "", false
}

// Type identifies one numeric decode primitive: width, signedness or float,
// and byte order. The set is closed; zero-width types are not representable.
type Type uint8

const (
	Uint8 Type = iota
	Int8
	Uint16LE
	Uint16BE
	Int16LE
	Int16BE
	Uint32LE
	Uint32BE
	Int32LE
	Int32BE
	BigUint64LE
	BigUint64BE
	BigInt64LE
	BigInt64BE
	Float16LE
	Float16BE
	Float32LE
	Float32BE
	Float64LE
	Float64BE

	numTypes
)

var typeNames = [numTypes]string{
	Uint8:       "Uint8",
	Int8:        "Int8",
	Uint16LE:    "Uint16LE",
	Uint16BE:    "Uint16BE",
	Int16LE:     "Int16LE",
	Int16BE:     "Int16BE",
	Uint32LE:    "Uint32LE",
	Uint32BE:    "Uint32BE",
	Int32LE:     "Int32LE",
	Int32BE:     "Int32BE",
	BigUint64LE: "BigUint64LE",
	BigUint64BE: "BigUint64BE",
	BigInt64LE:  "BigInt64LE",
	BigInt64BE:  "BigInt64BE",
	Float16LE:   "Float16LE",
	Float16BE:   "Float16BE",
	Float32LE:   "Float32LE",
	Float32BE:   "Float32BE",
	Float64LE:   "Float64LE",
	Float64BE:   "Float64BE",
}

var typeKinds = [numTypes]Kind{
	Uint8:       KindUint8,
	Int8:        KindInt8,
	Uint16LE:    KindUint16,
	Uint16BE:    KindUint16,
	Int16LE:     KindInt16,
	Int16BE:     KindInt16,
	Uint32LE:    KindUint32,
	Uint32BE:    KindUint32,
	Int32LE:     KindInt32,
	Int32BE:     KindInt32,
	BigUint64LE: KindBigUint64,
	BigUint64BE: KindBigUint64,
	BigInt64LE:  KindBigInt64,
	BigInt64BE:  KindBigInt64,
	Float16LE:   KindFloat16,
	Float16BE:   KindFloat16,
	Float32LE:   KindFloat32,
	Float32BE:   KindFloat32,
	Float64LE:   KindFloat64,
	Float64BE:   KindFloat64,
}

// All returns every Type in enumeration order.
func All() []Type {
	out := make([]Type, numTypes)
	for i := range out {
		out[i] = Type(i)
	}
	return out
}

// Valid reports whether t belongs to the enumeration.
func (t Type) Valid() bool {
	return t < numTypes
}

// String returns the codec name, as used in the emitted read<Name> function.
func (t Type) String() string {
	if !t.Valid() {
		return "Type(" + strconv.Itoa(int(t)) + ")"
	}
	return typeNames[t]
}

// FuncName returns the name of the emitted JavaScript function.
func (t Type) FuncName() string {
	return "read" + t.String()
}

// Kind returns the accessor kind of t.
func (t Type) Kind() Kind {
	if !t.Valid() {
		return ""
	}
	return typeKinds[t]
}

// Size returns the number of bytes consumed by t.
func (t Type) Size() int {
	switch t.Kind() {
	case KindUint8, KindInt8:
		return 1
	case KindUint16, KindInt16, KindFloat16:
		return 2
	case KindUint32, KindInt32, KindFloat32:
		return 4
	case KindBigUint64, KindBigInt64, KindFloat64:
		return 8
	}
	return 0
}

// LittleEndian reports whether t reads little-endian bytes.
// Single byte types report false.
func (t Type) LittleEndian() bool {
	if t.Size() <= 1 {
		return false
	}
	name := t.String()
	return name[len(name)-2:] == "LE"
}

// For maps an accessor kind and byte order to its Type.
// Single byte kinds ignore littleEndian.
func For(kind Kind, littleEndian bool) (Type, bool) {
	switch kind {
	case KindUint8:
		return Uint8, true
	case KindInt8:
		return Int8, true
	}
	suffix := "BE"
	if littleEndian {
		suffix = "LE"
	}
	return ParseType(string(kind) + suffix)
}

// ParseType returns the Type with the given codec name.
func ParseType(name string) (Type, bool) {
	for t := Type(0); t < numTypes; t++ {
		if typeNames[t] == name {
			return t, true
		}
	}
	return 0, false
}
