// Package assembler composes transpiled port bodies into one decoder.
//
// Output layout:
//
//	function readUint16LE(buf, offset){...}   codecs, each once
//	function parsePort2(buffer){ <body> }     one per port, ascending
//	function decodeUplink (input) {           shell
//	var fPort = input.fPort;
//	var buffer = input.bytes;
//	switch(fPort){
//	case 2: return parsePort2(buffer);
//	default: return null;
//	}
//	}
//
// The text references nothing beyond the entry point's arguments.
package assembler
