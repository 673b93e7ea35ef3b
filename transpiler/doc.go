// Package transpiler rewrites generated decoder bodies into code that runs
// on a plain byte array in a pre-ES5 sandbox.
//
// A body is processed one line at a time. Each trimmed line is parsed as a
// standalone statement and offered to an ordered Registry of Handlers:
//
//	var dataView = new DataView(...);         dropped
//	vars.v = dataView.getUint16(offset, true); vars.v = readUint16LE(buffer, offset);
//	vars.raw = buffer.subarray(a, b);          explicit copy loop
//
// Anything else, including lines that do not parse on their own, is kept
// verbatim. Matching works on the parsed statement, so spacing and optional
// trailing commas in the input do not change the result.
//
// Subroutine tables are rendered as
//
//	var imports = [
//	function (...) {...},
//	...
//	];
//
// passed through a Downleveler and placed before the body.
package transpiler
