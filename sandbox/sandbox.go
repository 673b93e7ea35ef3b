package sandbox

import (
	"context"
	"sync"

	"github.com/dop251/goja"

	"github.com/wippyai/decodergen/assembler"
	"github.com/wippyai/decodergen/errors"
)

// restricted lists globals removed before a decoder is loaded. Codec hosts
// running ES3 engines do not provide them.
var restricted = []string{
	"ArrayBuffer", "SharedArrayBuffer", "DataView",
	"Int8Array", "Uint8Array", "Uint8ClampedArray",
	"Int16Array", "Uint16Array", "Int32Array", "Uint32Array",
	"Float32Array", "Float64Array", "BigInt64Array", "BigUint64Array",
	"BigInt", "Proxy", "Reflect", "Symbol",
}

// Decoder is a loaded decoder script. Calls are serialized; a Decoder is
// safe for concurrent use.
type Decoder struct {
	vm        *goja.Runtime
	entry     goja.Callable
	stringify goja.Callable
	shell     assembler.Shell
	mu        sync.Mutex
}

// Load evaluates src in a fresh runtime stripped of typed arrays and other
// post-ES5 globals, and binds the entry point shell declares.
func Load(src string, shell assembler.Shell) (*Decoder, error) {
	if !shell.Valid() {
		return nil, errors.Unsupported(errors.PhaseSandbox, "unknown shell "+shell.String())
	}

	vm := goja.New()
	global := vm.GlobalObject()
	for _, name := range restricted {
		_ = global.Delete(name)
	}

	if _, err := vm.RunScript("decoder.js", src); err != nil {
		return nil, errors.Wrap(errors.PhaseSandbox, errors.KindRuntime, err, "evaluate decoder")
	}

	entry, ok := goja.AssertFunction(vm.Get(shell.EntryPoint()))
	if !ok {
		return nil, errors.NotFound(errors.PhaseSandbox, "entry point", shell.EntryPoint())
	}

	stringify, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return nil, errors.NotFound(errors.PhaseSandbox, "function", "JSON.stringify")
	}

	return &Decoder{vm: vm, entry: entry, stringify: stringify, shell: shell}, nil
}

// Shell returns the entry-point signature the decoder was loaded with.
func (d *Decoder) Shell() assembler.Shell {
	return d.shell
}

// Decode runs the decoder on payload and returns the result exported to Go
// values (map[string]any, []any, int64, float64, ...). An unknown port
// yields nil.
func (d *Decoder) Decode(ctx context.Context, fPort uint32, payload []byte) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.call(ctx, fPort, payload)
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

// DecodeJSON is like Decode but returns the result as JSON text, as the
// host would serialize it. An unknown port yields "null".
func (d *Decoder) DecodeJSON(ctx context.Context, fPort uint32, payload []byte) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.call(ctx, fPort, payload)
	if err != nil {
		return "", err
	}
	out, err := d.stringify(goja.Undefined(), v)
	if err != nil {
		return "", errors.Wrap(errors.PhaseSandbox, errors.KindRuntime, err, "serialize result")
	}
	if goja.IsUndefined(out) {
		return "null", nil
	}
	return out.String(), nil
}

func (d *Decoder) call(ctx context.Context, fPort uint32, payload []byte) (goja.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseSandbox, errors.KindCanceled, err, "decode")
	}

	stop := context.AfterFunc(ctx, func() {
		d.vm.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		d.vm.ClearInterrupt()
	}()

	bytes := d.bytes(payload)
	var (
		v   goja.Value
		err error
	)
	switch d.shell {
	case assembler.ShellV4:
		input := d.vm.NewObject()
		_ = input.Set("fPort", fPort)
		_ = input.Set("bytes", bytes)
		v, err = d.entry(goja.Undefined(), input)
	default:
		v, err = d.entry(goja.Undefined(), d.vm.ToValue(fPort), bytes, d.vm.NewObject())
	}
	if err != nil {
		if _, ok := err.(*goja.InterruptedError); ok {
			return nil, errors.Wrap(errors.PhaseSandbox, errors.KindCanceled, err, "decode interrupted")
		}
		return nil, errors.New(errors.PhaseSandbox, errors.KindRuntime).
			Path(errors.PortPath(fPort)).
			Detail("decoder threw").
			Cause(err).
			Build()
	}
	return v, nil
}

// bytes converts payload to a plain JS array of numbers.
func (d *Decoder) bytes(payload []byte) *goja.Object {
	items := make([]any, len(payload))
	for i, b := range payload {
		items[i] = int64(b)
	}
	return d.vm.NewArray(items...)
}
