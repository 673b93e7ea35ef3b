// Package sandbox runs generated decoders in an embedded JavaScript runtime.
//
// The runtime is stripped of typed arrays, DataView and other globals the
// target codec hosts lack, so a decoder that loads and runs here does not
// depend on them.
//
//	dec, err := sandbox.Load(src, assembler.ShellV4)
//	out, err := dec.DecodeJSON(ctx, 2, []byte{0x34, 0x12}) // {"v":4660}
package sandbox
