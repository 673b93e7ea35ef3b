package downlevel

import (
	"context"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.uber.org/zap"

	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/transpiler"
)

// Esbuild downlevels source text with the esbuild transform API.
//
// esbuild's oldest target is ES5, and it rejects block bindings, default
// and rest parameters, destructuring and for-of at that target. With ES3
// set, the source first goes through Lower, which rewrites those forms, and
// the output through QuoteReserved. ES5-only library calls the source makes
// explicitly are kept.
type Esbuild struct {
	Target  api.Target
	Charset api.Charset
	ES3     bool
}

var _ transpiler.Downleveler = (*Esbuild)(nil)

// NewEsbuild creates an esbuild downleveler targeting ES5 with ASCII output.
func NewEsbuild() *Esbuild {
	return &Esbuild{
		Target:  api.ES5,
		Charset: api.CharsetASCII,
		ES3:     true,
	}
}

// Downlevel implements transpiler.Downleveler.
//
// Syntax errors and unsupported constructs are returned as an
// *errors.DownlevelError carrying every diagnostic.
func (e *Esbuild) Downlevel(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if e.ES3 {
		// Unparsable input goes to esbuild as is so its diagnostics are reported.
		if lowered, err := Lower(src); err == nil {
			src = lowered
		} else {
			Logger().Debug("lowering skipped", zap.Error(err))
		}
	}

	result := api.Transform(src, api.TransformOptions{
		Loader:        api.LoaderJS,
		Target:        e.Target,
		Charset:       e.Charset,
		LegalComments: api.LegalCommentsNone,
	})

	for _, w := range result.Warnings {
		Logger().Warn("downlevel warning", zap.String("text", w.Text), locationField(w.Location))
	}

	if len(result.Errors) > 0 {
		msgs := make([]errors.DownlevelMessage, 0, len(result.Errors))
		for _, m := range result.Errors {
			msg := errors.DownlevelMessage{Text: m.Text}
			if m.Location != nil {
				msg.Line = m.Location.Line
				msg.Column = m.Location.Column
			}
			msgs = append(msgs, msg)
		}
		return "", errors.NewDownlevelError(msgs)
	}

	out := strings.TrimSpace(string(result.Code))
	if e.ES3 {
		quoted, err := QuoteReserved(out)
		if err != nil {
			return "", errors.NewDownlevelError([]errors.DownlevelMessage{{Text: "reparse compiled output: " + err.Error()}})
		}
		out = quoted
	}
	return out, nil
}

func locationField(loc *api.Location) zap.Field {
	if loc == nil {
		return zap.Skip()
	}
	return zap.Int("line", loc.Line)
}

// Identity returns its input unchanged. Use it when subroutine sources are
// already written in the target dialect.
var Identity transpiler.Downleveler = transpiler.DownlevelFunc(func(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return src, nil
})
