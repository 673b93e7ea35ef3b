// Package decodergen generates standalone JavaScript payload decoders.
//
// Input is a table of ports, each carrying the body a parser DSL generated
// for it plus any embedded subroutines. Output is one ES3-compatible script
// that runs in sandboxes without typed arrays or DataView, such as LoRaWAN
// network server codec hooks.
//
// # Architecture Overview
//
//	decodergen/          Generator facade, options, transpile cache
//	├── reader/          Numeric codecs: JS sources, dependencies, Go reference readers
//	├── transpiler/      Per-port line rewriting and subroutine tables
//	├── downlevel/       esbuild-backed Downleveler
//	├── assembler/       Codec emission, port functions, dispatcher, shells
//	├── sandbox/         goja harness that runs emitted decoders
//	├── manifest/        YAML port table loader
//	├── errors/          Structured error types
//	└── cmd/decodergen/  CLI and interactive port tester
//
// # Quick Start
//
//	src, err := decodergen.GenerateChirpstackV4(ctx, decodergen.Ports{
//	    2: transpiler.Definition{Body: body},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The result defines decodeUplink(input). GenerateChirpstackV3 emits
// Decode(fPort, bytes, variables) instead. Both return null for ports
// absent from the table.
//
// # Concurrency
//
// Ports are transpiled in parallel, bounded by WithConcurrency. A Generator
// is safe for concurrent use; its cache is shared by every call.
//
// # Errors
//
// Every error returned is an *errors.Error, matched with errors.Is on
// Phase and Kind:
//
//	if errors.Is(err, &errors.Error{Phase: errors.PhaseDownlevel, Kind: errors.KindDownlevelFailed}) {
//	    // a subroutine did not compile
//	}
//
// Generation never returns partial output.
package decodergen
