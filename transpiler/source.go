package transpiler

import "context"

// Source is the generated-code handle of one port, as produced by the
// upstream parser DSL.
type Source interface {
	// Code returns the generated decoder body.
	Code() string
	// Imports returns the embedded subroutine sources in declaration order.
	// Generated bodies call them as imports[i].
	Imports() []string
}

// Definition is a plain-data Source.
type Definition struct {
	Body        string
	Subroutines []string
}

// Code implements Source.
func (d Definition) Code() string {
	return d.Body
}

// Imports implements Source.
func (d Definition) Imports() []string {
	return d.Subroutines
}

// Downleveler converts source text to the restricted target dialect.
//
// Implementations may block (out-of-process compilers) and must honor ctx.
// Any returned error is fatal for the whole generation.
type Downleveler interface {
	Downlevel(ctx context.Context, src string) (string, error)
}

// DownlevelFunc is an adapter to use ordinary functions as Downlevelers.
type DownlevelFunc func(ctx context.Context, src string) (string, error)

// Downlevel implements Downleveler.
func (f DownlevelFunc) Downlevel(ctx context.Context, src string) (string, error) {
	return f(ctx, src)
}
