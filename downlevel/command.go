package downlevel

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/decodergen/errors"
	"github.com/wippyai/decodergen/transpiler"
)

// Command downlevels by piping source through an external compiler. The
// program reads the table on stdin and writes the compiled table to stdout,
// e.g. babel with an ES3 preset:
//
//	npx babel --no-babelrc --presets=@babel/preset-env
//
// Use it when subroutines need constructs Lower cannot rewrite.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the process environment.
	Env []string
}

var _ transpiler.Downleveler = (*Command)(nil)

// ParseCommand splits a command line at whitespace. Quoting is not
// interpreted.
func ParseCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, errors.InvalidInput(errors.PhaseDownlevel, "empty downlevel command")
	}
	return &Command{Name: fields[0], Args: fields[1:]}, nil
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Downlevel implements transpiler.Downleveler. The process is killed when
// ctx is done. A non-zero exit is returned as an *errors.DownlevelError
// holding one message per line the program wrote to stderr.
func (c *Command) Downlevel(ctx context.Context, src string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	Logger().Debug("downlevel command finished",
		zap.Stringer("command", c),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(err))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", commandError(err, stderr.String())
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", errors.NewDownlevelError([]errors.DownlevelMessage{{Text: c.Name + " produced no output"}})
	}
	return out, nil
}

func commandError(err error, stderr string) error {
	var msgs []errors.DownlevelMessage
	for _, line := range strings.Split(stderr, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			msgs = append(msgs, errors.DownlevelMessage{Text: line})
		}
	}
	msgs = append(msgs, errors.DownlevelMessage{Text: err.Error()})
	return errors.NewDownlevelError(msgs)
}
