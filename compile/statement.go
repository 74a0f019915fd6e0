package compile

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"
	"github.com/timewinder-dev/ecmastep/completion"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

func (c *compiler) statements(list []ast.Statement) []compute.Computation {
	out := make([]compute.Computation, 0, len(list))
	for _, s := range list {
		out = append(out, c.statement(s, nil))
	}
	return out
}

func empty() compute.Computation { return compute.Just(completion.Empty()) }

// statement compiles s into a computation yielding a completion. labels are
// the labels directly enclosing s.
func (c *compiler) statement(s ast.Statement, labels completion.LabelSet) compute.Computation {
	switch s := s.(type) {
	case *ast.BlockStatement:
		return completion.StatementList(c.statements(s.List))
	case *ast.EmptyStatement:
		return empty()
	case *ast.FunctionStatement:
		// Bound by the declaration pass.
		return empty()
	case *ast.DebuggerStatement:
		at := c.point(s.Idx0())
		at.Debugger = true
		return compute.Mark(at, empty())
	case *ast.ExpressionStatement:
		return c.mark(s, compute.Then(c.expr(s.Expression), func(v value.Value, _ compute.Context) compute.Computation {
			return compute.Just(completion.Normal(v))
		}))
	case *ast.VariableStatement:
		inits := make([]compute.Computation, 0, len(s.List))
		for _, e := range s.List {
			inits = append(inits, c.expr(e))
		}
		return c.mark(s, compute.Bind(compute.Sequence(inits...), func(any, compute.Context) compute.Computation {
			return empty()
		}))
	case *ast.IfStatement:
		var alternate compute.Computation
		if s.Alternate != nil {
			alternate = c.statement(s.Alternate, nil)
		}
		return c.mark(s, completion.If(c.expr(s.Test), c.statement(s.Consequent, nil), alternate))
	case *ast.LabelledStatement:
		label := s.Label.Name
		return completion.Labelled(label, c.statement(s.Statement, labels.With(label)))
	case *ast.BranchStatement:
		label := ""
		if s.Label != nil {
			label = s.Label.Name
		}
		if s.Token == token.CONTINUE {
			return c.mark(s, compute.Just(completion.Continue(label)))
		}
		return c.mark(s, compute.Just(completion.Break(label)))
	case *ast.ReturnStatement:
		if s.Argument == nil {
			return c.mark(s, compute.Just(completion.Return(value.Undefined{})))
		}
		return c.mark(s, compute.Then(c.expr(s.Argument), func(v value.Value, _ compute.Context) compute.Computation {
			return compute.Just(completion.Return(v))
		}))
	case *ast.ThrowStatement:
		return c.mark(s, compute.Then(c.expr(s.Argument), func(v value.Value, _ compute.Context) compute.Computation {
			return completion.Raise(v)
		}))
	case *ast.WhileStatement:
		return c.mark(s, completion.While(labels, c.expr(s.Test), c.statement(s.Body, nil)))
	case *ast.DoWhileStatement:
		return c.mark(s, completion.DoWhile(labels, c.statement(s.Body, nil), c.expr(s.Test)))
	case *ast.ForStatement:
		return c.mark(s, c.forStatement(s, labels))
	case *ast.ForInStatement:
		return c.mark(s, c.forIn(s, labels))
	case *ast.SwitchStatement:
		cases := make([]completion.Case, len(s.Body))
		for i, cs := range s.Body {
			if cs.Test != nil {
				cases[i].Test = c.expr(cs.Test)
			}
			cases[i].Body = c.statements(cs.Consequent)
		}
		return c.mark(s, completion.Switch(labels, c.expr(s.Discriminant), cases))
	case *ast.TryStatement:
		return c.try(s)
	case *ast.WithStatement:
		return c.fail(s, "with statement is not supported")
	case *ast.BadStatement:
		return c.fail(s, "invalid statement")
	}
	return c.fail(s, "unsupported statement %T", s)
}

func (c *compiler) forStatement(s *ast.ForStatement, labels completion.LabelSet) compute.Computation {
	var test, update compute.Computation
	if s.Test != nil {
		test = c.expr(s.Test)
	}
	if s.Update != nil {
		update = c.expr(s.Update)
	}
	loop := completion.For(labels, test, update, c.statement(s.Body, nil))
	if s.Initializer == nil {
		return loop
	}
	return compute.Bind(c.expr(s.Initializer), func(any, compute.Context) compute.Computation {
		return loop
	})
}

// forIn enumerates the keys present when the loop starts. Keys deleted
// before their turn are skipped.
func (c *compiler) forIn(s *ast.ForInStatement, labels completion.LabelSet) compute.Computation {
	target := s.Into
	if v, ok := target.(*ast.VariableExpression); ok {
		target = &ast.Identifier{Name: v.Name, Idx: v.Idx}
		if v.Initializer != nil {
			return c.fail(s, "for-in variable may not have an initializer")
		}
	}
	switch target.(type) {
	case *ast.Identifier, *ast.DotExpression, *ast.BracketExpression:
	default:
		return c.fail(s, "Invalid left-hand side in for-in")
	}
	ref := c.reference(target)
	body := c.statement(s.Body, nil)
	return compute.Then(c.expr(s.Source), func(src value.Value, _ compute.Context) compute.Computation {
		if value.IsNullish(src) {
			return empty()
		}
		return compute.Then(ops.ToObject(src), func(o value.Object, ctx compute.Context) compute.Computation {
			keys := ops.EnumerableKeys(ctx.Store(), o)
			visit := func(key string) compute.Computation {
				return compute.WithContext(func(ctx compute.Context) compute.Computation {
					if !ctx.Store().HasProperty(o, key) {
						return compute.Just(false)
					}
					return compute.Then(ref, func(r reference, _ compute.Context) compute.Computation {
						return compute.Bind(r.put(value.String(key)), func(any, compute.Context) compute.Computation {
							return compute.Just(true)
						})
					})
				})
			}
			return completion.ForIn(labels, keys, visit, body)
		})
	})
}

func (c *compiler) try(s *ast.TryStatement) compute.Computation {
	block := c.statement(s.Body, nil)
	var handler func(value.Value) compute.Computation
	if s.Catch != nil {
		name := s.Catch.Parameter.Name
		if c.strict && (name == "eval" || name == "arguments") {
			return c.fail(s.Catch.Parameter, "Catch variable may not be eval or arguments in strict mode")
		}
		body := c.statement(s.Catch.Body, nil)
		handler = func(thrown value.Value) compute.Computation {
			return ops.WithScope(name, thrown, body)
		}
	}
	switch {
	case s.Finally == nil:
		return c.mark(s, completion.TryCatch(block, handler))
	case handler == nil:
		return c.mark(s, completion.TryFinally(c.opts.Finally, block, c.statement(s.Finally, nil)))
	}
	return c.mark(s, completion.TryCatchFinally(c.opts.Finally, block, handler, c.statement(s.Finally, nil)))
}
