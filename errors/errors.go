package errors

import (
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in generation the error occurred
type Phase string

const (
	PhaseTranspile Phase = "transpile" // per-port body rewriting
	PhaseDownlevel Phase = "downlevel" // subroutine table compilation
	PhaseAssemble  Phase = "assemble"  // decoder text emission
	PhaseGenerate  Phase = "generate"  // top-level orchestration
	PhaseDecode    Phase = "decode"    // Go reference decoding
	PhaseLoad      Phase = "load"      // manifest loading
	PhaseSandbox   Phase = "sandbox"   // executing emitted decoders
)

// Kind categorizes the error
type Kind string

const (
	KindUnknownCodec    Kind = "unknown_codec"
	KindDownlevelFailed Kind = "downlevel_failed"
	KindInvalidInput    Kind = "invalid_input"
	KindInvalidData     Kind = "invalid_data"
	KindUnsupported     Kind = "unsupported"
	KindNotFound        Kind = "not_found"
	KindRuntime         Kind = "runtime"
	KindCanceled        Kind = "canceled"
)

// Error is the structured error type used throughout decodergen
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Codec  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Codec != "" {
		b.WriteString(": codec ")
		b.WriteString(e.Codec)
	}

	if e.Detail != "" {
		if e.Codec != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path, e.g. "port 2", "line 7"
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Codec sets the codec name
func (b *Builder) Codec(name string) *Builder {
	b.err.Codec = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// PortPath renders a port number as a path element.
func PortPath(port uint32) string {
	return "port " + strconv.FormatUint(uint64(port), 10)
}

// Convenience constructors for common error patterns

// UnknownCodec creates an error for a codec outside the closed enumeration
func UnknownCodec(phase Phase, value any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownCodec,
		Detail: fmt.Sprintf("no codec registered for %v", value),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// DuplicatePort creates an error for a port number listed twice
func DuplicatePort(phase Phase, port uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Path:   []string{PortPath(port)},
		Detail: "port listed more than once",
		Value:  port,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load creates a manifest loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// DownlevelMessage is a single diagnostic reported by the downlevel compiler
type DownlevelMessage struct {
	Text   string
	Line   int // 1-based, 0 when unknown
	Column int // 0-based
}

// DownlevelError is returned when the downlevel compiler rejects a subroutine table
type DownlevelError struct {
	Messages []DownlevelMessage
}

// NewDownlevelError creates an error from compiler diagnostics
func NewDownlevelError(messages []DownlevelMessage) *DownlevelError {
	return &DownlevelError{Messages: messages}
}

func (e *DownlevelError) Error() string {
	if len(e.Messages) == 0 {
		return "[downlevel] downlevel_failed: no diagnostics reported"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("downlevel compiler reported %d error(s):", len(e.Messages)))
	for _, m := range e.Messages {
		b.WriteString("\n  ")
		if m.Line > 0 {
			b.WriteString(strconv.Itoa(m.Line))
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(m.Column))
			b.WriteString(": ")
		}
		b.WriteString(m.Text)
	}
	return b.String()
}

// Is reports whether target matches this error type
func (e *DownlevelError) Is(target error) bool {
	_, ok := target.(*DownlevelError)
	return ok
}

// Downlevel wraps a downlevel compiler failure for one port
func Downlevel(port uint32, cause error) *Error {
	return &Error{
		Phase:  PhaseDownlevel,
		Kind:   KindDownlevelFailed,
		Path:   []string{PortPath(port)},
		Detail: "compile subroutine table",
		Cause:  cause,
	}
}
