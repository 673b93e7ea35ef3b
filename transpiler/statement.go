package transpiler

import (
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// Statement is one normalized line of a generated body: the trimmed text and
// its parsed form. Handlers match on Node and slice source text back out
// with Text, so formatting differences in the input do not matter.
type Statement struct {
	Node ast.Statement
	Line string
	Num  int // 1-based line number in the body
	base int
}

// ParseStatement parses line as a standalone program holding exactly one
// statement. Lines that are fragments of larger constructs (an opening
// "for (...) {", a lone "}") or hold several statements do not parse to a
// Statement and report false.
func ParseStatement(line string) (*Statement, bool) {
	prg, err := parser.ParseFile(nil, "", line, 0)
	if err != nil || prg == nil || len(prg.Body) != 1 {
		return nil, false
	}
	base := 1
	if prg.File != nil {
		base = prg.File.Base()
	}
	return &Statement{Node: prg.Body[0], Line: line, base: base}, true
}

// Text returns the source text of n, which must belong to this statement.
func (s *Statement) Text(n ast.Node) string {
	start := int(n.Idx0()) - s.base
	end := int(n.Idx1()) - s.base
	if start < 0 || end > len(s.Line) || start > end {
		return ""
	}
	return s.Line[start:end]
}

// Assignment is a statement of the form `target = value;` or `var name = value;`.
type Assignment struct {
	Value ast.Expression
	// Target is the assigned expression text without any declaration keyword.
	Target string
	// Name is set when the target is a plain identifier.
	Name    string
	Declare bool
}

// Prefix returns the text to place before " = " when re-emitting the assignment.
func (a *Assignment) Prefix() string {
	if a.Declare {
		return "var " + a.Target
	}
	return a.Target
}

// Assignment reports the statement as an Assignment when it is one.
// Compound operators (+=, |=, ...) and multi-binding declarations do not count.
func (s *Statement) Assignment() (*Assignment, bool) {
	switch n := s.Node.(type) {
	case *ast.ExpressionStatement:
		assign, ok := n.Expression.(*ast.AssignExpression)
		if !ok || assign.Operator != token.ASSIGN {
			return nil, false
		}
		target := s.Text(assign.Left)
		if target == "" || !balanced(target) {
			return nil, false
		}
		a := &Assignment{Value: assign.Right, Target: target}
		if name, ok := identifierName(assign.Left); ok {
			a.Name = name
		}
		return a, true

	case *ast.VariableStatement:
		if len(n.List) != 1 || n.List[0].Initializer == nil {
			return nil, false
		}
		name, ok := identifierName(n.List[0].Target)
		if !ok {
			return nil, false
		}
		return &Assignment{
			Value:   n.List[0].Initializer,
			Target:  name,
			Name:    name,
			Declare: true,
		}, true
	}
	return nil, false
}

// MethodCall is a call of the form `object.method(args...)`.
type MethodCall struct {
	Object ast.Expression
	Method string
	Args   []ast.Expression
	// ObjectText and ArgText hold the source text of the receiver and of
	// each argument, cut at top-level commas between the call parentheses.
	ObjectText string
	ArgText    []string
}

// MethodCall reports expr as a MethodCall. Calls with spread arguments are rejected.
func (s *Statement) MethodCall(expr ast.Expression) (*MethodCall, bool) {
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		return nil, false
	}
	dot, ok := call.Callee.(*ast.DotExpression)
	if !ok {
		return nil, false
	}
	for _, arg := range call.ArgumentList {
		if _, spread := arg.(*ast.SpreadElement); spread {
			return nil, false
		}
	}
	object := s.Text(dot.Left)
	if object == "" || !balanced(object) {
		return nil, false
	}
	open := int(call.LeftParenthesis) - s.base
	closing := int(call.RightParenthesis) - s.base
	if open < 0 || closing > len(s.Line) || open >= closing {
		return nil, false
	}
	args := splitArgs(s.Line[open+1 : closing])
	if len(args) != len(call.ArgumentList) {
		return nil, false
	}
	return &MethodCall{
		Object:     dot.Left,
		Method:     string(dot.Identifier.Name),
		Args:       call.ArgumentList,
		ObjectText: object,
		ArgText:    args,
	}, true
}

// identifierName returns the name of n when it is a plain identifier.
func identifierName(n ast.Node) (string, bool) {
	id, ok := n.(*ast.Identifier)
	if !ok {
		return "", false
	}
	return string(id.Name), true
}

// splitArgs cuts an argument list at commas outside of brackets and string
// literals. Pieces are trimmed; a trailing comma does not produce an argument.
func splitArgs(raw string) []string {
	var (
		args    []string
		depth   int
		start   int
		quote   byte
		escaped bool
	)
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(raw[start:]); last != "" {
		args = append(args, last)
	}
	return args
}

// balanced reports whether brackets in text pair up, ignoring string literals.
func balanced(text string) bool {
	var (
		stack   []byte
		quote   byte
		escaped bool
	)
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == quote:
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(', '[', '{':
			stack = append(stack, ch)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != pairOf(ch) {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0 && quote == 0
}

func pairOf(closing byte) byte {
	switch closing {
	case ')':
		return '('
	case ']':
		return '['
	}
	return '{'
}
