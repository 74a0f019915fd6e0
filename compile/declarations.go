package compile

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

// declarations is the first pass over a scope. It binds every function
// declaration to a fresh closure and every var name to undefined, without
// descending into nested functions. Functions are bound before variables so
// a var never shadows a function of the same name.
func (c *compiler) declarations(body []ast.Statement) []compute.Computation {
	var funcs, vars []compute.Computation
	declareVar := func(e ast.Expression) {
		if v, ok := e.(*ast.VariableExpression); ok {
			vars = append(vars, ops.DeclareVar(v.Name))
		}
	}
	var visit func(s ast.Statement)
	visit = func(s ast.Statement) {
		switch s := s.(type) {
		case *ast.VariableStatement:
			for _, e := range s.List {
				declareVar(e)
			}
		case *ast.FunctionStatement:
			funcs = append(funcs, c.declareFunction(s.Function))
		case *ast.BlockStatement:
			for _, inner := range s.List {
				visit(inner)
			}
		case *ast.IfStatement:
			visit(s.Consequent)
			if s.Alternate != nil {
				visit(s.Alternate)
			}
		case *ast.LabelledStatement:
			visit(s.Statement)
		case *ast.WhileStatement:
			visit(s.Body)
		case *ast.DoWhileStatement:
			visit(s.Body)
		case *ast.ForStatement:
			if seq, ok := s.Initializer.(*ast.SequenceExpression); ok {
				for _, e := range seq.Sequence {
					declareVar(e)
				}
			} else if s.Initializer != nil {
				declareVar(s.Initializer)
			}
			visit(s.Body)
		case *ast.ForInStatement:
			declareVar(s.Into)
			visit(s.Body)
		case *ast.SwitchStatement:
			for _, cs := range s.Body {
				for _, inner := range cs.Consequent {
					visit(inner)
				}
			}
		case *ast.TryStatement:
			visit(s.Body)
			if s.Catch != nil {
				visit(s.Catch.Body)
			}
			if s.Finally != nil {
				visit(s.Finally)
			}
		}
	}
	for _, s := range body {
		visit(s)
	}
	return append(funcs, vars...)
}

func (c *compiler) declareFunction(lit *ast.FunctionLiteral) compute.Computation {
	template := c.function(lit)
	return compute.Then(ops.MakeClosure(template, false), func(fn value.Object, _ compute.Context) compute.Computation {
		return ops.DeclareFunction(template.Name, fn)
	})
}

// function compiles a function literal into a closure template.
func (c *compiler) function(lit *ast.FunctionLiteral) *ops.ScriptFunction {
	var stmts []ast.Statement
	if block, ok := lit.Body.(*ast.BlockStatement); ok {
		stmts = block.List
	} else if lit.Body != nil {
		stmts = []ast.Statement{lit.Body}
	}
	inner := *c
	inner.strict = c.strict || hasUseStrict(stmts)

	f := &ops.ScriptFunction{
		Strict:  inner.strict,
		Source:  lit.Source,
		Defined: c.point(lit.Idx0()),
	}
	if lit.Name != nil {
		f.Name = lit.Name.Name
	}
	if lit.ParameterList != nil {
		for _, p := range lit.ParameterList.List {
			if inner.strict && (p.Name == "eval" || p.Name == "arguments") {
				c.fail(p, "Unexpected eval or arguments in strict mode")
			}
			f.Params = append(f.Params, p.Name)
		}
	}
	f.Body = inner.scope(stmts)
	return f
}
