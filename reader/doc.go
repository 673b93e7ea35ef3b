// Package reader is the numeric codec library embedded into generated decoders.
//
// Every codec Type names one fixed-width read: 8/16/32/64-bit signed or
// unsigned integers and IEEE-754 binary16/32/64 floats, qualified by byte
// order for anything wider than one byte. For each Type the package holds:
//
//   - the JavaScript function text emitted into decoders (Source), written
//     against a plain array of byte values with bitwise integer arithmetic
//     only, so it runs where typed arrays and DataView are unavailable;
//   - a Go reference implementation (Read, FuncFor) computing the same
//     value with the same formula;
//   - its dependency list (Dependencies): 64-bit integer readers are built
//     from two 32-bit reads and need those functions emitted too.
//
// # Numeric Semantics
//
//	Type          Result
//	───────────────────────────────────────────────────────────
//	Uint8/Int8    raw byte / byte - 256 when bit 7 is set
//	Uint16/Int16  byte composition / minus 0x10000 when bit 15 is set
//	Uint32        composition normalized with >>> 0
//	Int32         natural signed 32-bit composition
//	BigUint64     hi * 2^32 + lo, both words unsigned
//	BigInt64      hi * 2^32 + lo, hi signed and lo unsigned
//	Float16/32/64 sign, exponent, mantissa; subnormal, Inf, NaN and -0 kept
//
// 64-bit integers lose precision above 2^53, exactly as the emitted
// JavaScript does.
//
// The tables are read-only after init and safe for concurrent use.
package reader
