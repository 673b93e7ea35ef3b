package transpiler

// Handler recognizes and rewrites one statement shape.
//
// Handlers are stateless and can be shared across concurrent passes.
// All mutable state lives in the Context.
//
// Handle returns false, without emitting anything, when the statement is
// not its shape; the next handler is then tried. A handler that matched
// emits the rewritten lines via ctx.Emit (or nothing, to drop the line).
type Handler interface {
	Handle(ctx *Context, stmt *Statement) (bool, error)
}

// Func is an adapter to use ordinary functions as Handlers.
//
// Example:
//
//	r.Register("strip-debugger", transpiler.Func(func(ctx *transpiler.Context, s *transpiler.Statement) (bool, error) {
//	    _, ok := s.Node.(*ast.DebuggerStatement)
//	    return ok, nil
//	}))
type Func func(ctx *Context, stmt *Statement) (bool, error)

// Handle implements Handler.
func (f Func) Handle(ctx *Context, stmt *Statement) (bool, error) {
	return f(ctx, stmt)
}

// Registry is an ordered list of Handlers. The first handler that matches
// a statement wins; statements no handler matches pass through verbatim.
type Registry struct {
	handlers []Handler
	names    []string
}

// NewRegistry creates an empty Registry. Every line passes through it unchanged.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns a new Registry holding the generated-code shapes:
// the DataView prologue, numeric reads and subarray derivations.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("dataview", ViewHandler{})
	r.Register("getter", GetterHandler{})
	r.Register("subarray", SubarrayHandler{})
	return r
}

// Register appends a handler. The name is used in logs and errors.
func (r *Registry) Register(name string, h Handler) {
	r.handlers = append(r.handlers, h)
	r.names = append(r.names, name)
}

// RegisterFunc registers a function as a handler.
func (r *Registry) RegisterFunc(name string, fn func(*Context, *Statement) (bool, error)) {
	r.Register(name, Func(fn))
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Names returns handler names in match order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// dispatch offers stmt to each handler in order and returns the name of the
// one that matched, or "" when none did.
func (r *Registry) dispatch(ctx *Context, stmt *Statement) (string, error) {
	for i, h := range r.handlers {
		ok, err := h.Handle(ctx, stmt)
		if err != nil {
			return r.names[i], err
		}
		if ok {
			return r.names[i], nil
		}
	}
	return "", nil
}
