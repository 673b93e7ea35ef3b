package transpiler

import (
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
	"go.uber.org/zap"

	"github.com/wippyai/decodergen/reader"
)

// ViewName is the variable the generated code binds its DataView to.
const ViewName = "dataView"

// ViewHandler drops the DataView prologue. Rewritten code reads the raw
// byte array directly, so the view object has no use.
type ViewHandler struct{}

// Handle implements Handler.
func (ViewHandler) Handle(_ *Context, stmt *Statement) (bool, error) {
	a, ok := stmt.Assignment()
	if !ok || a.Name != ViewName {
		return false, nil
	}
	ne, ok := a.Value.(*ast.NewExpression)
	if !ok {
		return false, nil
	}
	name, ok := identifierName(ne.Callee)
	return ok && name == "DataView", nil
}

// GetterHandler rewrites `target = dataView.get<Kind>(offset[, le]);`
// into `target = read<Type>(buffer, offset);` and records the codec.
type GetterHandler struct{}

// Handle implements Handler.
func (GetterHandler) Handle(ctx *Context, stmt *Statement) (bool, error) {
	a, ok := stmt.Assignment()
	if !ok {
		return false, nil
	}
	call, ok := stmt.MethodCall(a.Value)
	if !ok || !strings.HasPrefix(call.Method, "get") {
		return false, nil
	}
	if name, ok := identifierName(call.Object); !ok || name != ViewName {
		return false, nil
	}
	if len(call.Args) == 0 || len(call.Args) > 2 {
		return false, nil
	}

	littleEndian := false
	if len(call.Args) == 2 {
		lit, ok := call.Args[1].(*ast.BooleanLiteral)
		if !ok {
			ctx.Logger().Warn("endianness is not a literal, line left as is",
				zap.Int("line", stmt.Num), zap.String("text", stmt.Line))
			return false, nil
		}
		littleEndian = lit.Value
	}

	kind, ok := reader.ParseKind(strings.TrimPrefix(call.Method, "get"))
	if !ok {
		ctx.Logger().Warn("unknown view accessor, line left as is",
			zap.Int("line", stmt.Num), zap.String("method", call.Method))
		return false, nil
	}
	typ, _ := reader.For(kind, littleEndian)

	ctx.Require(typ)
	ctx.Emit(a.Prefix() + " = " + typ.FuncName() + "(buffer, " + call.ArgText[0] + ");")
	return true, nil
}

// SubarrayHandler rewrites `target = buf.subarray(begin, end);` into an
// element-by-element copy loop over a plain array.
type SubarrayHandler struct{}

// Handle implements Handler.
func (SubarrayHandler) Handle(ctx *Context, stmt *Statement) (bool, error) {
	a, ok := stmt.Assignment()
	if !ok {
		return false, nil
	}
	call, ok := stmt.MethodCall(a.Value)
	if !ok || call.Method != "subarray" || len(call.Args) > 2 {
		return false, nil
	}

	begin, end := "0", call.ObjectText+".length"
	if len(call.ArgText) > 0 {
		begin = call.ArgText[0]
	}
	if len(call.ArgText) > 1 {
		end = call.ArgText[1]
	}

	n := strconv.Itoa(ctx.NextSlice())
	idx, length := "$i"+n, "$len"+n

	ctx.Emit(
		a.Prefix()+" = [];",
		"var "+length+" = "+end+";",
		"for(var "+idx+" = "+begin+"; "+idx+" < "+length+"; "+idx+"++){",
		a.Target+"["+a.Target+".length] = "+call.ObjectText+"["+idx+"];",
		"}",
	)
	return true, nil
}
