package transpiler

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/reader"
)

// ImportsName is the variable generated bodies index subroutines through.
const ImportsName = "imports"

// Config controls one transpile pass. The zero value uses the default
// registry, leaves subroutine tables as written and logs to the package logger.
type Config struct {
	Registry    *Registry
	Downleveler Downleveler
	Logger      *zap.Logger
	// Port is only used to label errors and log entries.
	Port uint32
}

// Result is the output of one pass. It is immutable once returned.
type Result struct {
	Body string
	// Readers is closed under reader.Dependencies.
	Readers reader.Set
}

// Context is the mutable state of one pass. It is owned by a single
// goroutine and discarded when the pass returns.
type Context struct {
	readers reader.Set
	slices  int
	lines   []string
	logger  *zap.Logger
}

func newContext(log *zap.Logger) *Context {
	return &Context{logger: log}
}

// Emit appends output lines.
func (c *Context) Emit(lines ...string) {
	c.lines = append(c.lines, lines...)
}

// Require adds t and everything it depends on to the required codecs.
func (c *Context) Require(t reader.Type) {
	c.readers.Require(t)
}

// Readers returns the codecs required so far.
func (c *Context) Readers() reader.Set {
	return c.readers
}

// NextSlice returns a fresh suffix for synthesized loop variables.
func (c *Context) NextSlice() int {
	n := c.slices
	c.slices++
	return n
}

// Logger returns the logger of the pass.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// Transpile rewrites the generated body of src into byte-array-only code.
//
// When src carries subroutines, their table is compiled by cfg.Downleveler
// and placed before every body line. The returned error is always an
// *errors.Error; lines no handler recognizes are never an error.
func Transpile(ctx context.Context, src Source, cfg Config) (*Result, error) {
	if src == nil {
		return nil, errors.InvalidInput(errors.PhaseTranspile, "nil source")
	}
	registry := cfg.Registry
	if registry == nil {
		registry = DefaultRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = Logger()
	}
	log = log.With(zap.Uint32("port", cfg.Port))

	tc := newContext(log)

	if subs := src.Imports(); len(subs) > 0 {
		table, err := downlevelImports(ctx, subs, cfg.Downleveler)
		if err != nil {
			return nil, errors.Downlevel(cfg.Port, err)
		}
		tc.Emit(table)
		log.Debug("subroutine table compiled", zap.Int("subroutines", len(subs)))
	}

	for i, raw := range strings.Split(src.Code(), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		stmt, ok := ParseStatement(line)
		if !ok {
			tc.Emit(line)
			continue
		}
		stmt.Num = i + 1

		name, err := registry.dispatch(tc, stmt)
		if err != nil {
			return nil, errors.New(errors.PhaseTranspile, errors.KindInvalidData).
				Path(errors.PortPath(cfg.Port), "line "+strconv.Itoa(stmt.Num)).
				Detail("handler %s", name).
				Cause(err).
				Build()
		}
		if name == "" {
			tc.Emit(line)
			continue
		}
		log.Debug("statement rewritten", zap.String("shape", name), zap.Int("line", stmt.Num))
	}

	return &Result{
		Body:    strings.Join(tc.lines, "\n"),
		Readers: tc.readers,
	}, nil
}

// ImportsTable renders the subroutine table declaration, one entry per line.
func ImportsTable(subs []string) string {
	var b strings.Builder
	b.WriteString("var " + ImportsName + " = [\n")
	b.WriteString(strings.Join(subs, ",\n"))
	b.WriteString("\n];")
	return b.String()
}

func downlevelImports(ctx context.Context, subs []string, d Downleveler) (string, error) {
	table := ImportsTable(subs)
	if d == nil {
		return table, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	out, err := d.Downlevel(ctx, table)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
