// Package downlevel provides transpiler.Downleveler implementations.
//
// Esbuild compiles subroutine tables in-process with esbuild. Its ES3 mode
// wraps the compiler in two source passes built on the goja parser: Lower
// rewrites let, const, default and rest parameters, simple destructuring
// and for-of before compiling, and QuoteReserved quotes reserved-word
// property names after.
//
// Command runs an external compiler such as babel for sources beyond what
// Lower handles. Identity passes text through, for subroutines already
// written as ES3.
package downlevel
