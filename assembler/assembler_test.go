package assembler_test

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/decodergen/assembler"
	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/reader"
	"github.com/wippyai/decodergen/transpiler"
)

func body(lines ...string) string {
	return strings.Join(append(append([]string{"var vars = {};", "var offset = 0;"}, lines...), "return vars;"), "\n")
}

func port(n uint32, readers reader.Set, lines ...string) assembler.Port {
	return assembler.Port{Number: n, Result: &transpiler.Result{Body: body(lines...), Readers: readers}}
}

func run(t *testing.T, src, call string) string {
	t.Helper()
	vm := goja.New()
	_, err := vm.RunString(src)
	require.NoError(t, err)
	v, err := vm.RunString("JSON.stringify(" + call + ")")
	require.NoError(t, err)
	return v.String()
}

func samplePorts() []assembler.Port {
	return []assembler.Port{
		port(10, reader.NewSet(reader.BigUint64LE, reader.Uint32LE),
			"vars.n = readBigUint64LE(buffer, offset);"),
		port(2, reader.NewSet(reader.Uint16LE),
			"vars.v = readUint16LE(buffer, offset);"),
		port(3, reader.NewSet(reader.Uint32LE, reader.Int8),
			"vars.a = readUint32LE(buffer, offset);",
			"vars.b = readInt8(buffer, offset + 4);"),
	}
}

func TestAssemble_V4(t *testing.T) {
	src, err := assembler.Assemble(assembler.ShellV4, samplePorts())
	require.NoError(t, err)

	assert.Equal(t, `{"v":4660}`, run(t, src, "decodeUplink({fPort: 2, bytes: [0x34, 0x12]})"))
	assert.Equal(t, `{"a":4294967295,"b":-2}`, run(t, src, "decodeUplink({fPort: 3, bytes: [255, 255, 255, 255, 0xFE]})"))
	assert.Equal(t, `{"n":4294967297}`, run(t, src, "decodeUplink({fPort: 10, bytes: [1, 0, 0, 0, 1, 0, 0, 0]})"))
	assert.Equal(t, "null", run(t, src, "decodeUplink({fPort: 7, bytes: [1, 2]})"))
}

func TestAssemble_ShellsAgree(t *testing.T) {
	v4, err := assembler.Assemble(assembler.ShellV4, samplePorts())
	require.NoError(t, err)
	v3, err := assembler.Assemble(assembler.ShellV3, samplePorts())
	require.NoError(t, err)

	payloads := []string{"[0x34, 0x12]", "[0, 0, 0, 128, 127]", "[255, 255, 255, 255, 255, 255, 255, 255]"}
	for _, fPort := range []string{"2", "3", "10", "0", "99"} {
		for _, bytes := range payloads {
			want := run(t, v4, "decodeUplink({fPort: "+fPort+", bytes: "+bytes+"})")
			got := run(t, v3, "Decode("+fPort+", "+bytes+", {})")
			assert.Equal(t, want, got, "fPort %s bytes %s", fPort, bytes)
		}
	}
}

func TestAssemble_Layout(t *testing.T) {
	src, err := assembler.Assemble(assembler.ShellV3, samplePorts())
	require.NoError(t, err)

	// codecs once each, closed over dependencies, in enumeration order
	for _, typ := range []reader.Type{reader.Int8, reader.Uint16LE, reader.Uint32LE, reader.BigUint64LE} {
		assert.Equal(t, 1, strings.Count(src, "function "+typ.FuncName()+"("), typ.String())
	}
	assert.NotContains(t, src, "readUint32BE")
	assert.Less(t, strings.Index(src, "function readInt8("), strings.Index(src, "function readUint16LE("))

	// ports ascending, codecs before ports, shell last
	i2 := strings.Index(src, "function parsePort2(buffer){")
	i3 := strings.Index(src, "function parsePort3(buffer){")
	i10 := strings.Index(src, "function parsePort10(buffer){")
	assert.True(t, strings.Index(src, "function readBigUint64LE(") < i2)
	assert.True(t, i2 < i3 && i3 < i10)
	assert.True(t, strings.HasPrefix(src[strings.Index(src, "function Decode "):], "function Decode (fPort, buffer, variables) {\nswitch(fPort){\ncase 2: return parsePort2(buffer);\ncase 3: return parsePort3(buffer);\ncase 10: return parsePort10(buffer);\ndefault: return null;\n}\n}"))
}

func TestAssemble_ClosesReaderSet(t *testing.T) {
	// a hand-built result that lists only the composite codec
	src, err := assembler.Assemble(assembler.ShellV4, []assembler.Port{
		port(1, reader.NewSet(reader.BigInt64BE), "vars.n = readBigInt64BE(buffer, offset);"),
	})
	require.NoError(t, err)
	assert.Contains(t, src, "function readUint32BE(")
	assert.Contains(t, src, "function readInt32BE(")
	assert.Equal(t, `{"n":-1}`, run(t, src, "decodeUplink({fPort: 1, bytes: [255, 255, 255, 255, 255, 255, 255, 255]})"))
}

func TestAssemble_NoPorts(t *testing.T) {
	src, err := assembler.Assemble(assembler.ShellV4, nil)
	require.NoError(t, err)
	assert.Equal(t, "function decodeUplink (input) {\nvar fPort = input.fPort;\nvar buffer = input.bytes;\nswitch(fPort){\ndefault: return null;\n}\n}", src)
	assert.Equal(t, "null", run(t, src, "decodeUplink({fPort: 1, bytes: []})"))
}

func TestAssemble_Errors(t *testing.T) {
	_, err := assembler.Assemble(assembler.Shell(9), samplePorts())
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAssemble, Kind: errors.KindUnsupported})

	ports := append(samplePorts(), port(3, 0))
	_, err = assembler.Assemble(assembler.ShellV4, ports)
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAssemble, Kind: errors.KindInvalidInput})
	assert.Contains(t, err.Error(), "port 3")

	_, err = assembler.Assemble(assembler.ShellV4, []assembler.Port{{Number: 5}})
	require.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAssemble, Kind: errors.KindInvalidInput})
	assert.Contains(t, err.Error(), "port 5")
}

func TestAssemble_DoesNotReorderInput(t *testing.T) {
	ports := samplePorts()
	_, err := assembler.Assemble(assembler.ShellV4, ports)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), ports[0].Number)
}

func TestShell(t *testing.T) {
	tests := []struct {
		in   string
		want assembler.Shell
		ok   bool
	}{
		{"v4", assembler.ShellV4, true},
		{"V3", assembler.ShellV3, true},
		{"chirpstack-v4", assembler.ShellV4, true},
		{" 3 ", assembler.ShellV3, true},
		{"v5", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := assembler.ParseShell(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.Equal(t, "decodeUplink", assembler.ShellV4.EntryPoint())
	assert.Equal(t, "Decode", assembler.ShellV3.EntryPoint())
	assert.Equal(t, "v3", assembler.ShellV3.String())
	assert.Equal(t, "Shell(0)", assembler.Shell(0).String())
	assert.False(t, assembler.Shell(0).Valid())
}
