package downlevel

import (
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// maxLowerPasses bounds the re-parse loop of Lower. A pass that rewrites an
// outer construct waits for the constructs nested in it, so deep nesting
// needs several passes.
const maxLowerPasses = 8

// Lower rewrites the ES2015 binding forms esbuild cannot lower for an ES5
// target into plain ES3:
//
//   - let and const become var when no name is shadowed, no reference
//     escapes the declaring block and no closure can capture a per-iteration
//     binding
//   - default parameters become `if (p === void 0) p = ...;` prologues
//   - rest parameters of function expressions become arguments slices
//   - destructuring of identifiers in parameters and declarations becomes
//     property reads from a temporary
//   - for-of over an array becomes an indexed loop
//
// Anything else is left in place for the compiler to accept or report.
// Lower fails only when src does not parse.
func Lower(src string) (string, error) {
	temps := 0
	for range maxLowerPasses {
		prg, err := parser.ParseFile(nil, "", src, 0)
		if err != nil {
			return "", err
		}
		l := &lowerer{src: src, base: prg.File.Base(), temps: temps}
		l.program(prg)
		temps = l.temps

		out, pending := l.apply()
		src = out
		if !pending {
			break
		}
	}
	return src, nil
}

type span struct {
	start, end int
}

func (s span) contains(off int) bool {
	return off >= s.start && off < s.end
}

type edit struct {
	span
	text string
}

// group is a set of edits that only make sense together.
type group []edit

func (g group) extent() int {
	lo, hi := g[0].start, g[0].end
	for _, e := range g[1:] {
		lo = min(lo, e.start)
		hi = max(hi, e.end)
	}
	return hi - lo
}

type ref struct {
	name string
	off  int
}

// frame is the var scope of one function, or of the program.
type frame struct {
	span
	decls map[string]int
	loops []span
}

// lexical is a let or const declaration waiting for the scope check.
type lexical struct {
	frame *frame
	names []string
	block span
	loop  *span // outermost loop of the frame around the declaration
	lower func()
}

type lowerer struct {
	src      string
	base     int
	temps    int
	refs     []ref
	funcs    []int
	frame    *frame
	blocks   []span
	lexicals []*lexical
	groups   []group
}

func (l *lowerer) off(idx int) int {
	return idx - l.base
}

func (l *lowerer) span(n ast.Node) span {
	return span{start: l.off(int(n.Idx0())), end: l.off(int(n.Idx1()))}
}

func (l *lowerer) text(n ast.Node) string {
	s := l.span(n)
	return l.src[s.start:s.end]
}

func (l *lowerer) temp(prefix string) string {
	name := "$" + prefix + strconv.Itoa(l.temps)
	l.temps++
	return name
}

func (l *lowerer) add(g ...edit) {
	l.groups = append(l.groups, g)
}

func (l *lowerer) program(prg *ast.Program) {
	l.frame = &frame{span: span{0, len(l.src)}, decls: map[string]int{}}
	l.blocks = []span{l.frame.span}
	for _, s := range prg.Body {
		l.visit(s)
	}
	for _, d := range l.lexicals {
		if l.safe(d) {
			d.lower()
		}
	}
}

func (l *lowerer) declare(names ...string) {
	for _, n := range names {
		l.frame.decls[n]++
	}
}

func (l *lowerer) visitChildren(n ast.Node) {
	for _, c := range children(n) {
		l.visit(c)
	}
}

func (l *lowerer) visit(n ast.Node) {
	switch n := n.(type) {
	case *ast.Identifier:
		l.refs = append(l.refs, ref{name: string(n.Name), off: l.off(int(n.Idx))})

	case *ast.FunctionDeclaration:
		if n.Function.Name != nil {
			l.declare(string(n.Function.Name.Name))
		}
		l.visit(n.Function)

	case *ast.FunctionLiteral:
		if n.Name != nil {
			l.visit(n.Name)
		}
		l.function(n, n.ParameterList, n.Body, true)

	case *ast.ArrowFunctionLiteral:
		l.function(n, n.ParameterList, n.Body, false)

	case *ast.BlockStatement:
		l.block(l.span(n), func() { l.visitChildren(n) })

	case *ast.SwitchStatement:
		l.visit(n.Discriminant)
		l.block(l.span(n), func() {
			for _, c := range n.Body {
				l.visit(c)
			}
		})

	case *ast.ForStatement, *ast.WhileStatement, *ast.DoWhileStatement:
		l.loop(l.span(n), func() { l.visitChildren(n) })

	case *ast.ForInStatement:
		l.loop(l.span(n), func() {
			if d, ok := n.Into.(*ast.ForDeclaration); ok {
				l.forDecl(d)
			}
			l.visitChildren(n)
		})

	case *ast.ForOfStatement:
		l.loop(l.span(n), func() {
			l.forOf(n)
			l.visitChildren(n)
		})

	case *ast.LexicalDeclaration:
		l.lexicalDecl(n, true)
		l.destructure(n.List)
		l.visitChildren(n)

	case *ast.ForLoopInitializerLexicalDecl:
		l.lexicalDecl(&n.LexicalDeclaration, false)
		l.visitChildren(n)

	case *ast.ForDeclaration:
		l.visitChildren(n)

	case *ast.VariableStatement:
		for _, b := range n.List {
			l.declare(bindingNames(b.Target)...)
		}
		l.destructure(n.List)
		l.visitChildren(n)

	case *ast.ForLoopInitializerVarDeclList:
		for _, b := range n.List {
			l.declare(bindingNames(b.Target)...)
		}
		l.visitChildren(n)

	case *ast.ForIntoVar:
		l.declare(bindingNames(n.Binding.Target)...)
		l.visitChildren(n)

	case *ast.CatchStatement:
		if n.Parameter != nil {
			l.declare(bindingNames(n.Parameter)...)
		}
		l.visitChildren(n)

	default:
		l.visitChildren(n)
	}
}

func (l *lowerer) block(s span, fn func()) {
	l.blocks = append(l.blocks, s)
	fn()
	l.blocks = l.blocks[:len(l.blocks)-1]
}

func (l *lowerer) loop(s span, fn func()) {
	l.frame.loops = append(l.frame.loops, s)
	l.block(s, fn)
	l.frame.loops = l.frame.loops[:len(l.frame.loops)-1]
}

func (l *lowerer) function(fn ast.Node, params *ast.ParameterList, body ast.ConciseBody, hasArguments bool) {
	s := l.span(fn)
	l.funcs = append(l.funcs, s.start)

	outer, blocks := l.frame, l.blocks
	l.frame = &frame{span: s, decls: map[string]int{}}
	l.blocks = []span{s}

	if params != nil {
		for _, b := range params.List {
			l.declare(bindingNames(b.Target)...)
		}
		if params.Rest != nil {
			l.declare(bindingNames(params.Rest)...)
		}
		if block, ok := body.(*ast.BlockStatement); ok && block != nil {
			l.parameters(params, block, hasArguments)
		}
		l.visit(params)
	}
	if body != nil && !reflect.ValueOf(body).IsNil() {
		l.visit(body)
	}

	l.frame, l.blocks = outer, blocks
}

// lexicalDecl queues a let or const declaration for the scope check.
func (l *lowerer) lexicalDecl(n *ast.LexicalDeclaration, statement bool) {
	var names []string
	for _, b := range n.List {
		names = append(names, bindingNames(b.Target)...)
	}
	l.declare(names...)

	d := l.queue(names)
	d.lower = func() {
		kw := l.off(int(n.Idx))
		g := group{{span{kw, kw + len(n.Token.String())}, "var"}}
		if statement {
			for _, b := range n.List {
				if b.Initializer == nil {
					end := l.span(b).end
					g = append(g, edit{span{end, end}, " = void 0"})
				}
			}
		}
		l.add(g...)
	}
}

// forDecl queues the let or const head of a for-in loop.
func (l *lowerer) forDecl(n *ast.ForDeclaration) {
	names := bindingNames(n.Target)
	l.declare(names...)

	kw := l.off(int(n.Idx))
	length := len("let")
	if n.IsConst {
		length = len("const")
	}
	d := l.queue(names)
	d.lower = func() {
		l.add(edit{span{kw, kw + length}, "var"})
	}
}

func (l *lowerer) queue(names []string) *lexical {
	d := &lexical{frame: l.frame, names: names, block: l.blocks[len(l.blocks)-1]}
	if len(l.frame.loops) > 0 {
		outer := l.frame.loops[0]
		d.loop = &outer
	}
	l.lexicals = append(l.lexicals, d)
	return d
}

// safe reports whether d keeps its meaning as a var declaration.
func (l *lowerer) safe(d *lexical) bool {
	for _, name := range d.names {
		if d.frame.decls[name] != 1 {
			return false
		}
		for _, r := range l.refs {
			if r.name == name && d.frame.contains(r.off) && !d.block.contains(r.off) {
				return false
			}
		}
	}
	if d.loop != nil {
		for _, f := range l.funcs {
			if d.loop.contains(f) {
				return false
			}
		}
	}
	return true
}

// parameters lowers default, rest and destructured parameters into a
// prologue at the top of body. A list holding any other form is left alone.
func (l *lowerer) parameters(params *ast.ParameterList, body *ast.BlockStatement, hasArguments bool) {
	var (
		g        group
		prologue []string
	)
	for _, b := range params.List {
		var (
			name  string
			reads func(string) []string
		)
		switch t := b.Target.(type) {
		case *ast.Identifier:
			name = string(t.Name)
		case *ast.ObjectPattern, *ast.ArrayPattern:
			var ok bool
			if reads, ok = l.pattern(t); !ok {
				return
			}
			name = l.temp("p")
			g = append(g, edit{l.span(t), name})
		default:
			return
		}
		if b.Initializer != nil {
			cut := span{l.span(b.Target).end, l.span(b.Initializer).end}
			g = append(g, edit{cut, ""})
			prologue = append(prologue, "if ("+name+" === void 0) "+name+" = "+l.text(b.Initializer)+";")
		}
		if reads != nil {
			prologue = append(prologue, "var "+strings.Join(reads(name), ", ")+";")
		}
	}

	if params.Rest != nil {
		rest, ok := params.Rest.(*ast.Identifier)
		if !ok || !hasArguments {
			return
		}
		from := l.off(int(params.Opening)) + 1
		if n := len(params.List); n > 0 {
			from = l.span(params.List[n-1]).end
		}
		g = append(g, edit{span{from, l.span(rest).end}, ""})
		prologue = append(prologue, "var "+string(rest.Name)+
			" = Array.prototype.slice.call(arguments, "+strconv.Itoa(len(params.List))+");")
	}

	if len(g) == 0 {
		return
	}
	at := l.off(int(body.LeftBrace)) + 1
	l.add(append(g, edit{span{at, at}, " " + strings.Join(prologue, " ")})...)
}

// destructure lowers declarations whose target is a simple pattern.
func (l *lowerer) destructure(list []*ast.Binding) {
	for _, b := range list {
		if b.Initializer == nil {
			continue
		}
		switch b.Target.(type) {
		case *ast.ObjectPattern, *ast.ArrayPattern:
		default:
			continue
		}
		reads, ok := l.pattern(b.Target)
		if !ok {
			continue
		}
		tmp := l.temp("d")
		parts := append([]string{tmp + " = " + l.text(b.Initializer)}, reads(tmp)...)
		l.add(edit{l.span(b), strings.Join(parts, ", ")})
	}
}

// pattern returns a function producing `name = tmp.key` assignments for a
// pattern of plain identifiers. Nested patterns and element defaults are
// not simple.
func (l *lowerer) pattern(p ast.Expression) (func(tmp string) []string, bool) {
	type read struct {
		name, access string
	}
	var reads []read

	switch p := p.(type) {
	case *ast.ObjectPattern:
		if p.Rest != nil {
			return nil, false
		}
		for _, prop := range p.Properties {
			switch prop := prop.(type) {
			case *ast.PropertyShort:
				if prop.Initializer != nil {
					return nil, false
				}
				name := string(prop.Name.Name)
				reads = append(reads, read{name, memberAccess(name, "")})
			case *ast.PropertyKeyed:
				target, ok := prop.Value.(*ast.Identifier)
				if !ok || prop.Computed {
					return nil, false
				}
				var access string
				switch key := prop.Key.(type) {
				case *ast.StringLiteral:
					access = memberAccess(string(key.Value), key.Literal)
				case *ast.NumberLiteral:
					access = "[" + key.Literal + "]"
				default:
					return nil, false
				}
				reads = append(reads, read{string(target.Name), access})
			default:
				return nil, false
			}
		}

	case *ast.ArrayPattern:
		for i, el := range p.Elements {
			if el == nil {
				continue
			}
			id, ok := el.(*ast.Identifier)
			if !ok {
				return nil, false
			}
			reads = append(reads, read{string(id.Name), "[" + strconv.Itoa(i) + "]"})
		}
		if p.Rest != nil {
			id, ok := p.Rest.(*ast.Identifier)
			if !ok {
				return nil, false
			}
			reads = append(reads, read{string(id.Name), ".slice(" + strconv.Itoa(len(p.Elements)) + ")"})
		}

	default:
		return nil, false
	}

	return func(tmp string) []string {
		out := make([]string, len(reads))
		for i, r := range reads {
			out[i] = r.name + " = " + tmp + r.access
		}
		return out
	}, true
}

// memberAccess renders a property read. literal is the key as written, or
// "" for shorthand properties.
func memberAccess(name, literal string) string {
	if literal != "" && (literal[0] == '"' || literal[0] == '\'') {
		return "[" + literal + "]"
	}
	if reserved[name] {
		return "[" + strconv.Quote(name) + "]"
	}
	return "." + name
}

// forOf lowers `for (x of arr)` into an indexed loop. The loop variable
// must be a plain identifier; iteration follows array indices, not the
// iterator protocol.
func (l *lowerer) forOf(n *ast.ForOfStatement) {
	var (
		name    string
		declare bool
		lexical bool
	)
	switch into := n.Into.(type) {
	case *ast.ForDeclaration:
		id, ok := into.Target.(*ast.Identifier)
		if !ok {
			return
		}
		name, declare, lexical = string(id.Name), true, true
		l.declare(name)
	case *ast.ForIntoVar:
		id, ok := into.Binding.Target.(*ast.Identifier)
		if !ok || into.Binding.Initializer != nil {
			return
		}
		name, declare = string(id.Name), true
	case *ast.ForIntoExpression:
		id, ok := into.Expression.(*ast.Identifier)
		if !ok {
			return
		}
		name = string(id.Name)
	default:
		return
	}

	lower := func() {
		list, idx := l.temp("of"), l.temp("ix")
		head := span{l.off(int(n.For)), l.span(n.Body).start}
		g := group{{head, "for (var " + list + " = " + l.text(n.Source) + ", " + idx + " = 0; " +
			idx + " < " + list + ".length; " + idx + "++) "}}

		bind := name + " = " + list + "[" + idx + "];"
		if declare {
			bind = "var " + bind
		}
		body := l.span(n.Body)
		if _, ok := n.Body.(*ast.BlockStatement); ok {
			g = append(g, edit{span{body.start + 1, body.start + 1}, " " + bind})
		} else {
			g = append(g,
				edit{span{body.start, body.start}, "{ " + bind + " "},
				edit{span{body.end, body.end}, " }"})
		}
		l.add(g...)
	}

	if !lexical {
		lower()
		return
	}
	// The loop itself is on the loop stack, so the closure check covers
	// functions in its body.
	d := l.queue([]string{name})
	d.block = l.span(n)
	d.lower = lower
}

// apply performs the edits that do not overlap, innermost first, and
// reports whether any were held back for another pass.
func (l *lowerer) apply() (string, bool) {
	groups := make([]group, len(l.groups))
	copy(groups, l.groups)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].extent() < groups[j].extent() })

	var (
		accepted []edit
		pending  bool
	)
	for _, g := range groups {
		if overlapsAny(g, accepted) {
			pending = true
			continue
		}
		accepted = append(accepted, g...)
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	var b strings.Builder
	pos := 0
	for _, e := range accepted {
		b.WriteString(l.src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(l.src[pos:])
	return b.String(), pending
}

func overlapsAny(g group, accepted []edit) bool {
	for _, e := range g {
		for _, a := range accepted {
			if e.start < a.end && a.start < e.end {
				return true
			}
		}
	}
	return false
}

// reserved holds the ES3 reserved words, which ES3 engines reject as
// property names after a dot or as unquoted object keys.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "continue": true, "default": true,
	"delete": true, "do": true, "else": true, "finally": true, "for": true,
	"function": true, "if": true, "in": true, "instanceof": true, "new": true,
	"return": true, "switch": true, "this": true, "throw": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"abstract": true, "boolean": true, "byte": true, "char": true, "class": true,
	"const": true, "debugger": true, "double": true, "enum": true, "export": true,
	"extends": true, "final": true, "float": true, "goto": true, "implements": true,
	"import": true, "int": true, "interface": true, "long": true, "native": true,
	"package": true, "private": true, "protected": true, "public": true, "short": true,
	"static": true, "super": true, "synchronized": true, "throws": true,
	"transient": true, "volatile": true, "null": true, "true": true, "false": true,
	"let": true, "yield": true,
}
