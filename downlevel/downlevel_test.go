package downlevel_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/decodergen/downlevel"
	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/transpiler"
)

func TestEsbuild_LowersModernSyntax(t *testing.T) {
	src := transpiler.ImportsTable([]string{
		"function (x) { return x ?? 7; }",
		"function (o) { return o?.n; }",
	})

	out, err := downlevel.NewEsbuild().Downlevel(context.Background(), src)
	require.NoError(t, err)
	assert.NotContains(t, out, "??")
	assert.NotContains(t, out, "?.")

	vm := goja.New()
	_, err = vm.RunString(out)
	require.NoError(t, err)

	v, err := vm.RunString("imports[0](null) + imports[0](1) + imports[1]({n: 5})")
	require.NoError(t, err)
	assert.Equal(t, int64(13), v.ToInteger())

	v, err = vm.RunString("typeof imports[1](null)")
	require.NoError(t, err)
	assert.Equal(t, "undefined", v.String())
}

func TestEsbuild_KeepsPlainCode(t *testing.T) {
	src := transpiler.ImportsTable([]string{"function (a) { return a * 2; }"})
	out, err := downlevel.NewEsbuild().Downlevel(context.Background(), src)
	require.NoError(t, err)
	assert.Contains(t, out, "var imports = [")

	vm := goja.New()
	_, err = vm.RunString(out)
	require.NoError(t, err)
	v, err := vm.RunString("imports[0](21)")
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.ToInteger())
}

func TestEsbuild_SyntaxError(t *testing.T) {
	_, err := downlevel.NewEsbuild().Downlevel(context.Background(), "var imports = [\nfunction ( {\n];")
	require.Error(t, err)

	var dl *errors.DownlevelError
	require.True(t, stderrors.As(err, &dl))
	require.NotEmpty(t, dl.Messages)
	assert.NotEmpty(t, dl.Messages[0].Text)
	assert.Positive(t, dl.Messages[0].Line)
}

func TestEsbuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := downlevel.NewEsbuild().Downlevel(ctx, "var a = 1;")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIdentity(t *testing.T) {
	out, err := downlevel.Identity.Downlevel(context.Background(), "var imports = [\nf\n];")
	require.NoError(t, err)
	assert.Equal(t, "var imports = [\nf\n];", out)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = downlevel.Identity.Downlevel(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
