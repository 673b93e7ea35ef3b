package downlevel

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// QuoteReserved rewrites property names that are ES3 reserved words:
// `o.default` becomes `o["default"]` and `{default: 1}` becomes
// `{"default": 1}`. ES5 allows both forms, ES3 engines reject them.
func QuoteReserved(src string) (string, error) {
	prg, err := parser.ParseFile(nil, "", src, 0)
	if err != nil {
		return "", err
	}

	base := prg.File.Base()
	var edits []edit
	var visit func(ast.Node)
	visit = func(n ast.Node) {
		switch n := n.(type) {
		case *ast.DotExpression:
			name := string(n.Identifier.Name)
			if reserved[name] {
				start := int(n.Identifier.Idx) - base
				dot := strings.LastIndexByte(src[:start], '.')
				if dot >= 0 && strings.TrimSpace(src[dot+1:start]) == "" {
					edits = append(edits, edit{span{dot, start + len(name)}, "[" + strconv.Quote(name) + "]"})
				}
			}
		case *ast.PropertyKeyed:
			if key, ok := n.Key.(*ast.StringLiteral); ok && !n.Computed && reserved[key.Literal] {
				start := int(key.Idx) - base
				edits = append(edits, edit{span{start, start + len(key.Literal)}, strconv.Quote(key.Literal)})
			}
		}
		for _, c := range children(n) {
			visit(c)
		}
	}
	for _, s := range prg.Body {
		visit(s)
	}
	if len(edits) == 0 {
		return src, nil
	}

	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })
	var b strings.Builder
	pos := 0
	for _, e := range edits {
		b.WriteString(src[pos:e.start])
		b.WriteString(e.text)
		pos = e.end
	}
	b.WriteString(src[pos:])
	return b.String(), nil
}
