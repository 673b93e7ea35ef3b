package reader_test

import (
	"strings"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/reader"
)

// loadReader evaluates t's function and its dependencies in a fresh runtime.
func loadReader(t *testing.T, typ reader.Type) (*goja.Runtime, goja.Callable) {
	t.Helper()
	vm := goja.New()
	for _, dep := range reader.Dependencies(typ) {
		src, err := reader.Source(dep)
		require.NoError(t, err)
		_, err = vm.RunString(src)
		require.NoError(t, err, "evaluate %s", dep)
	}
	fn, ok := goja.AssertFunction(vm.Get(typ.FuncName()))
	require.True(t, ok, "%s is not a function", typ.FuncName())
	return vm, fn
}

func callReader(t *testing.T, vm *goja.Runtime, fn goja.Callable, buf []byte, offset int) float64 {
	t.Helper()
	items := make([]any, len(buf))
	for i, b := range buf {
		items[i] = int64(b)
	}
	res, err := fn(goja.Undefined(), vm.NewArray(items...), vm.ToValue(offset))
	require.NoError(t, err)
	return res.ToFloat()
}

func TestSource_JavaScriptMatchesGo(t *testing.T) {
	for _, typ := range reader.All() {
		t.Run(typ.String(), func(t *testing.T) {
			vm, fn := loadReader(t, typ)

			var patterns []uint64
			if typ.Kind() == reader.KindFloat16 {
				for _, tc := range float16Cases {
					patterns = append(patterns, uint64(tc.bits))
				}
			} else {
				patterns = patternsFor(typ)
			}

			for _, bits := range patterns {
				buf := place(typ, bits)
				want, err := reader.Read(typ, buf, testOffset)
				require.NoError(t, err)
				got := callReader(t, vm, fn, buf, testOffset)
				assertSameFloat(t, want, got, typ.String())
			}
		})
	}
}

func TestSource_Float16ExpectedValues(t *testing.T) {
	for _, typ := range []reader.Type{reader.Float16LE, reader.Float16BE} {
		vm, fn := loadReader(t, typ)
		for _, tc := range float16Cases {
			got := callReader(t, vm, fn, place(typ, uint64(tc.bits)), testOffset)
			assertSameFloat(t, tc.want, got, typ.String())
		}
	}
}

func TestSource_StandaloneWithoutDependencies(t *testing.T) {
	for _, typ := range reader.All() {
		if len(reader.Dependencies(typ)) != 1 {
			continue
		}
		src := reader.MustSource(typ)
		assert.True(t, strings.HasPrefix(src, "function "+typ.FuncName()+"(buf, offset){"), typ.String())
		for _, other := range reader.All() {
			if other != typ {
				assert.NotContains(t, src, other.FuncName()+"(", "%s calls %s", typ, other)
			}
		}
	}
}

func TestSource_NoModernSyntax(t *testing.T) {
	banned := []string{"DataView", "Uint8Array", "let ", "const ", "=>", "`", "**"}
	for _, typ := range reader.All() {
		src := reader.MustSource(typ)
		for _, b := range banned {
			assert.NotContains(t, src, b, typ.String())
		}
	}
}

func TestSource_UnknownType(t *testing.T) {
	_, err := reader.Source(reader.Type(77))
	require.Error(t, err)
	assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseAssemble, Kind: errors.KindUnknownCodec})
	assert.Panics(t, func() { reader.MustSource(reader.Type(77)) })
}
