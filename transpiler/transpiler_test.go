package transpiler_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/reader"
	"github.com/wippyai/decodergen/transpiler"
)

func transpile(t *testing.T, body string, subs ...string) *transpiler.Result {
	t.Helper()
	res, err := transpiler.Transpile(context.Background(),
		transpiler.Definition{Body: body, Subroutines: subs}, transpiler.Config{})
	require.NoError(t, err)
	return res
}

func lines(s ...string) string {
	return strings.Join(s, "\n")
}

func TestTranspile_PassThrough(t *testing.T) {
	body := lines(
		"var vars = {};",
		"var offset = 0;",
		"vars.flag = (buffer[offset] >> 7) & 1;",
		"if (vars.flag) {",
		"offset += 1;",
		"}",
		"return vars;",
	)
	res := transpile(t, body)
	assert.Equal(t, body, res.Body)
	assert.Equal(t, 0, res.Readers.Len())
}

func TestTranspile_TrimsAndDropsBlankLines(t *testing.T) {
	res := transpile(t, "  var vars = {};\n\n\t\n   return vars;   \n")
	assert.Equal(t, "var vars = {};\nreturn vars;", res.Body)
}

func TestTranspile_DropsView(t *testing.T) {
	res := transpile(t, lines(
		"var dataView = new DataView(buffer.buffer, buffer.byteOffset, buffer.length);",
		"return vars;",
	))
	assert.Equal(t, "return vars;", res.Body)

	// a different variable is not the prologue
	res = transpile(t, "var view = new DataView(buffer.buffer);")
	assert.Equal(t, "var view = new DataView(buffer.buffer);", res.Body)
}

func TestTranspile_Getter(t *testing.T) {
	tests := []struct {
		line string
		want string
		typ  reader.Type
	}{
		{"vars.v = dataView.getUint16(offset, true);", "vars.v = readUint16LE(buffer, offset);", reader.Uint16LE},
		{"vars.v = dataView.getUint16(offset, false);", "vars.v = readUint16BE(buffer, offset);", reader.Uint16BE},
		{"vars.v = dataView.getInt32(offset);", "vars.v = readInt32BE(buffer, offset);", reader.Int32BE},
		{"vars.b = dataView.getUint8(offset);", "vars.b = readUint8(buffer, offset);", reader.Uint8},
		{"vars.b = dataView.getInt8(offset, true);", "vars.b = readInt8(buffer, offset);", reader.Int8},
		{"vars.f = dataView.getFloat16(offset, true);", "vars.f = readFloat16LE(buffer, offset);", reader.Float16LE},
		{"vars.d = dataView.getFloat64(offset + 4, false);", "vars.d = readFloat64BE(buffer, offset + 4);", reader.Float64BE},
		{"var $tmp0 = dataView.getUint32(offset, true);", "var $tmp0 = readUint32LE(buffer, offset);", reader.Uint32LE},
		{"vars.v=dataView.getUint16( offset ,true );", "vars.v = readUint16LE(buffer, offset);", reader.Uint16LE},
	}
	for _, tt := range tests {
		res := transpile(t, tt.line)
		assert.Equal(t, tt.want, res.Body, tt.line)
		assert.True(t, res.Readers.Has(tt.typ), tt.line)
		assert.True(t, res.Readers.Closed(), tt.line)
	}
}

func TestTranspile_GetterNotRecognized(t *testing.T) {
	for _, line := range []string{
		"vars.v = dataView.getUint24(offset, true);",
		"vars.v = dataView.getUint16(offset, le);",
		"vars.v = other.getUint16(offset, true);",
		"vars.v = dataView.getUint16();",
		"vars.v += dataView.getUint16(offset, true);",
	} {
		res := transpile(t, line)
		assert.Equal(t, line, res.Body)
		assert.Equal(t, 0, res.Readers.Len(), line)
	}
}

func TestTranspile_RequirementClosure(t *testing.T) {
	res := transpile(t, "vars.n = dataView.getBigUint64(offset, true);")
	assert.Equal(t, "vars.n = readBigUint64LE(buffer, offset);", res.Body)
	assert.Equal(t, reader.NewSet(reader.BigUint64LE, reader.Uint32LE), res.Readers)

	res = transpile(t, lines(
		"vars.a = dataView.getBigInt64(offset, false);",
		"vars.b = dataView.getUint16(offset, true);",
	))
	assert.Equal(t,
		[]reader.Type{reader.Uint16LE, reader.Uint32BE, reader.Int32BE, reader.BigInt64BE},
		res.Readers.Types())
}

func TestTranspile_Subarray(t *testing.T) {
	res := transpile(t, "vars.raw = buffer.subarray(offset, buffer.length);")
	assert.Equal(t, lines(
		"vars.raw = [];",
		"var $len0 = buffer.length;",
		"for(var $i0 = offset; $i0 < $len0; $i0++){",
		"vars.raw[vars.raw.length] = buffer[$i0];",
		"}",
	), res.Body)

	res = transpile(t, "var x = buf.subarray();")
	assert.Equal(t, lines(
		"var x = [];",
		"var $len0 = buf.length;",
		"for(var $i0 = 0; $i0 < $len0; $i0++){",
		"x[x.length] = buf[$i0];",
		"}",
	), res.Body)
}

func TestTranspile_SubarrayUniqueNames(t *testing.T) {
	res := transpile(t, lines(
		"a = buf.subarray(0, 1);",
		"b = buf.subarray(Math.min(offset, 2), f(g[0], 3));",
	))
	assert.Contains(t, res.Body, "var $len0 = 1;")
	assert.Contains(t, res.Body, "for(var $i0 = 0; $i0 < $len0; $i0++){")
	assert.Contains(t, res.Body, "var $len1 = f(g[0], 3);")
	assert.Contains(t, res.Body, "for(var $i1 = Math.min(offset, 2); $i1 < $len1; $i1++){")
}

func TestTranspile_SubarrayExecutes(t *testing.T) {
	res := transpile(t, "x = buf.subarray(1,3)")

	vm := goja.New()
	_, err := vm.RunString("var buf = [0xA, 0xB, 0x0C]; var x;\n" + res.Body)
	require.NoError(t, err)
	v, err := vm.RunString("JSON.stringify(x)")
	require.NoError(t, err)
	assert.Equal(t, "[11,12]", v.String())
}

func TestTranspile_ImportsWithoutDownleveler(t *testing.T) {
	res := transpile(t, "vars.x = imports[0].call(this, 1);",
		"function (a) { return a * 2; }",
		"function (b) { return b + 1; }",
	)
	assert.Equal(t, lines(
		"var imports = [",
		"function (a) { return a * 2; },",
		"function (b) { return b + 1; }",
		"];",
		"vars.x = imports[0].call(this, 1);",
	), res.Body)
}

func TestTranspile_ImportsDownleveled(t *testing.T) {
	var seen []string
	d := transpiler.DownlevelFunc(func(_ context.Context, src string) (string, error) {
		seen = append(seen, src)
		return "\nvar imports = [function (a) { return a * 2; }];\n\n", nil
	})

	res, err := transpiler.Transpile(context.Background(), transpiler.Definition{
		Body:        "vars.x = imports[0].call(this, 2);\nreturn vars;",
		Subroutines: []string{"(a) => a * 2"},
	}, transpiler.Config{Downleveler: d})
	require.NoError(t, err)

	require.Len(t, seen, 1)
	assert.Equal(t, "var imports = [\n(a) => a * 2\n];", seen[0])
	assert.Equal(t, lines(
		"var imports = [function (a) { return a * 2; }];",
		"vars.x = imports[0].call(this, 2);",
		"return vars;",
	), res.Body)
}

func TestTranspile_NoImportsSkipsDownleveler(t *testing.T) {
	called := false
	d := transpiler.DownlevelFunc(func(_ context.Context, src string) (string, error) {
		called = true
		return src, nil
	})
	_, err := transpiler.Transpile(context.Background(),
		transpiler.Definition{Body: "return vars;"}, transpiler.Config{Downleveler: d})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestTranspile_DownlevelFailure(t *testing.T) {
	cause := errors.NewDownlevelError([]errors.DownlevelMessage{{Text: "Unexpected token", Line: 2, Column: 4}})
	d := transpiler.DownlevelFunc(func(context.Context, string) (string, error) {
		return "", cause
	})

	_, err := transpiler.Transpile(context.Background(), transpiler.Definition{
		Body:        "return vars;",
		Subroutines: []string{"function ( {"},
	}, transpiler.Config{Downleveler: d, Port: 9})
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseDownlevel, Kind: errors.KindDownlevelFailed})

	var dl *errors.DownlevelError
	require.True(t, stderrors.As(err, &dl))
	assert.Equal(t, "Unexpected token", dl.Messages[0].Text)
	assert.Contains(t, err.Error(), "port 9")
}

func TestTranspile_CanceledBeforeDownlevel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := transpiler.DownlevelFunc(func(context.Context, string) (string, error) {
		t.Fatal("downleveler must not run on a canceled context")
		return "", nil
	})
	_, err := transpiler.Transpile(ctx, transpiler.Definition{
		Body:        "return vars;",
		Subroutines: []string{"function () {}"},
	}, transpiler.Config{Downleveler: d})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTranspile_NilSource(t *testing.T) {
	_, err := transpiler.Transpile(context.Background(), nil, transpiler.Config{})
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseTranspile, Kind: errors.KindInvalidInput})
}

func TestTranspile_CustomRegistry(t *testing.T) {
	r := transpiler.NewRegistry()
	r.RegisterFunc("strip-debugger", func(_ *transpiler.Context, s *transpiler.Statement) (bool, error) {
		return strings.HasPrefix(s.Line, "debugger"), nil
	})
	r.RegisterFunc("fail", func(_ *transpiler.Context, s *transpiler.Statement) (bool, error) {
		if s.Line == "boom();" {
			return false, stderrors.New("boom")
		}
		return false, nil
	})
	assert.Equal(t, []string{"strip-debugger", "fail"}, r.Names())

	// the default shapes are not part of an empty registry
	res, err := transpiler.Transpile(context.Background(), transpiler.Definition{
		Body: "debugger;\nvars.v = dataView.getUint8(offset);",
	}, transpiler.Config{Registry: r})
	require.NoError(t, err)
	assert.Equal(t, "vars.v = dataView.getUint8(offset);", res.Body)

	_, err = transpiler.Transpile(context.Background(), transpiler.Definition{
		Body: "a = 1;\nboom();",
	}, transpiler.Config{Registry: r, Port: 4})
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseTranspile, Kind: errors.KindInvalidData})
	assert.Contains(t, err.Error(), "port 4.line 2")
	assert.Contains(t, err.Error(), "handler fail")
}

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"dataview", "getter", "subarray"}, transpiler.DefaultRegistry().Names())
	assert.Equal(t, 0, transpiler.NewRegistry().Len())
}
