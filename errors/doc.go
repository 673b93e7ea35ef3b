// Package errors provides structured error types for decodergen.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries a location path (port, line), the codec involved and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseTranspile, errors.KindUnknownCodec).
//		Path(errors.PortPath(2), "line 7").
//		Codec("Float128LE").
//		Detail("accessor kind not in the codec table").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownCodec(errors.PhaseAssemble, t)
//	err := errors.Downlevel(port, cause)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
