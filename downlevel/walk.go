package downlevel

import (
	"reflect"

	"github.com/dop251/goja/ast"
)

// children returns the direct child nodes of n in source order. Property
// names (the identifier after a dot, non-computed object keys, labels) are
// not expressions and are left out.
func children(n ast.Node) []ast.Node {
	var out []ast.Node
	add := func(nodes ...ast.Node) {
		for _, c := range nodes {
			if c == nil || reflect.ValueOf(c).IsNil() {
				continue
			}
			out = append(out, c)
		}
	}
	addExprs := func(list []ast.Expression) {
		for _, e := range list {
			add(e)
		}
	}
	addStmts := func(list []ast.Statement) {
		for _, s := range list {
			add(s)
		}
	}
	addBindings := func(list []*ast.Binding) {
		for _, b := range list {
			add(b)
		}
	}

	switch n := n.(type) {
	case *ast.Program:
		addStmts(n.Body)

	// expressions
	case *ast.ArrayLiteral:
		addExprs(n.Value)
	case *ast.ArrayPattern:
		addExprs(n.Elements)
		add(n.Rest)
	case *ast.AssignExpression:
		add(n.Left, n.Right)
	case *ast.BinaryExpression:
		add(n.Left, n.Right)
	case *ast.BracketExpression:
		add(n.Left, n.Member)
	case *ast.CallExpression:
		add(n.Callee)
		addExprs(n.ArgumentList)
	case *ast.ConditionalExpression:
		add(n.Test, n.Consequent, n.Alternate)
	case *ast.DotExpression:
		add(n.Left)
	case *ast.PrivateDotExpression:
		add(n.Left)
	case *ast.OptionalChain:
		add(n.Expression)
	case *ast.Optional:
		add(n.Expression)
	case *ast.FunctionLiteral:
		if n.Name != nil {
			add(n.Name)
		}
		if n.ParameterList != nil {
			add(n.ParameterList)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *ast.ArrowFunctionLiteral:
		if n.ParameterList != nil {
			add(n.ParameterList)
		}
		add(n.Body)
	case *ast.ExpressionBody:
		add(n.Expression)
	case *ast.ClassLiteral:
		if n.Name != nil {
			add(n.Name)
		}
		add(n.SuperClass)
		for _, el := range n.Body {
			add(el)
		}
	case *ast.FieldDefinition:
		if n.Computed {
			add(n.Key)
		}
		add(n.Initializer)
	case *ast.MethodDefinition:
		if n.Computed {
			add(n.Key)
		}
		if n.Body != nil {
			add(n.Body)
		}
	case *ast.ClassStaticBlock:
		if n.Block != nil {
			add(n.Block)
		}
	case *ast.NewExpression:
		add(n.Callee)
		addExprs(n.ArgumentList)
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			add(p)
		}
	case *ast.ObjectPattern:
		for _, p := range n.Properties {
			add(p)
		}
		add(n.Rest)
	case *ast.ParameterList:
		addBindings(n.List)
		add(n.Rest)
	case *ast.Binding:
		add(n.Target, n.Initializer)
	case *ast.PropertyShort:
		add(&n.Name, n.Initializer)
	case *ast.PropertyKeyed:
		if n.Computed {
			add(n.Key)
		}
		add(n.Value)
	case *ast.SpreadElement:
		add(n.Expression)
	case *ast.SequenceExpression:
		addExprs(n.Sequence)
	case *ast.TemplateLiteral:
		add(n.Tag)
		addExprs(n.Expressions)
	case *ast.UnaryExpression:
		add(n.Operand)
	case *ast.YieldExpression:
		add(n.Argument)
	case *ast.AwaitExpression:
		add(n.Argument)

	// statements
	case *ast.BlockStatement:
		addStmts(n.List)
	case *ast.CaseStatement:
		add(n.Test)
		addStmts(n.Consequent)
	case *ast.CatchStatement:
		add(n.Parameter)
		if n.Body != nil {
			add(n.Body)
		}
	case *ast.DoWhileStatement:
		add(n.Body, n.Test)
	case *ast.ExpressionStatement:
		add(n.Expression)
	case *ast.ForInStatement:
		add(n.Into, n.Source, n.Body)
	case *ast.ForOfStatement:
		add(n.Into, n.Source, n.Body)
	case *ast.ForStatement:
		add(n.Initializer, n.Test, n.Update, n.Body)
	case *ast.ForLoopInitializerExpression:
		add(n.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		addBindings(n.List)
	case *ast.ForLoopInitializerLexicalDecl:
		add(&n.LexicalDeclaration)
	case *ast.ForIntoVar:
		if n.Binding != nil {
			add(n.Binding)
		}
	case *ast.ForDeclaration:
		add(n.Target)
	case *ast.ForIntoExpression:
		add(n.Expression)
	case *ast.IfStatement:
		add(n.Test, n.Consequent, n.Alternate)
	case *ast.LabelledStatement:
		add(n.Statement)
	case *ast.ReturnStatement:
		add(n.Argument)
	case *ast.SwitchStatement:
		add(n.Discriminant)
		for _, c := range n.Body {
			add(c)
		}
	case *ast.ThrowStatement:
		add(n.Argument)
	case *ast.TryStatement:
		if n.Body != nil {
			add(n.Body)
		}
		if n.Catch != nil {
			add(n.Catch)
		}
		if n.Finally != nil {
			add(n.Finally)
		}
	case *ast.VariableStatement:
		addBindings(n.List)
	case *ast.LexicalDeclaration:
		addBindings(n.List)
	case *ast.WhileStatement:
		add(n.Test, n.Body)
	case *ast.WithStatement:
		add(n.Object, n.Body)
	case *ast.FunctionDeclaration:
		if n.Function != nil {
			add(n.Function)
		}
	case *ast.ClassDeclaration:
		if n.Class != nil {
			add(n.Class)
		}
	}
	return out
}

// bindingNames returns the identifiers a binding target declares.
func bindingNames(n ast.Node) []string {
	var names []string
	var collect func(ast.Node)
	collect = func(n ast.Node) {
		switch n := n.(type) {
		case *ast.Identifier:
			names = append(names, string(n.Name))
		case *ast.Binding:
			collect(n.Target)
		case *ast.AssignExpression:
			collect(n.Left)
		case *ast.SpreadElement:
			collect(n.Expression)
		case *ast.PropertyShort:
			names = append(names, string(n.Name.Name))
		case *ast.PropertyKeyed:
			collect(n.Value)
		case *ast.ArrayPattern:
			for _, e := range n.Elements {
				if e != nil {
					collect(e)
				}
			}
			if n.Rest != nil {
				collect(n.Rest)
			}
		case *ast.ObjectPattern:
			for _, p := range n.Properties {
				collect(p)
			}
			if n.Rest != nil {
				collect(n.Rest)
			}
		}
	}
	collect(n)
	return names
}
