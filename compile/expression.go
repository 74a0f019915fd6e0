package compile

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/token"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/env"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

// expr compiles e into a computation yielding a value.Value.
func (c *compiler) expr(e ast.Expression) compute.Computation {
	switch e := e.(type) {
	case nil:
		return compute.Just(value.Undefined{})
	case *ast.Identifier:
		return ops.GetBinding(e.Name)
	case *ast.NumberLiteral:
		switch n := e.Value.(type) {
		case int64:
			return compute.Just(value.Number(n))
		case float64:
			return compute.Just(value.Number(n))
		}
		return compute.Just(value.Number(value.ParseNumber(e.Literal)))
	case *ast.StringLiteral:
		return compute.Just(value.String(e.Value))
	case *ast.BooleanLiteral:
		return compute.Just(value.Boolean(e.Value))
	case *ast.NullLiteral:
		return compute.Just(value.Null{})
	case *ast.ThisExpression:
		return ops.This()
	case *ast.EmptyExpression:
		return compute.Just(value.Undefined{})
	case *ast.ArrayLiteral:
		return c.array(e)
	case *ast.ObjectLiteral:
		return c.object(e)
	case *ast.FunctionLiteral:
		return ops.MakeClosure(c.function(e), e.Name != nil)
	case *ast.DotExpression:
		name := e.Identifier.Name
		return compute.Then(c.expr(e.Left), func(base value.Value, _ compute.Context) compute.Computation {
			return ops.Get(base, name)
		})
	case *ast.BracketExpression:
		return compute.Then(c.reference(e), func(r reference, _ compute.Context) compute.Computation {
			return r.get()
		})
	case *ast.CallExpression:
		return c.call(e)
	case *ast.NewExpression:
		return compute.Then(c.expr(e.Callee), func(fn value.Value, _ compute.Context) compute.Computation {
			return compute.Then(c.args(e.ArgumentList), func(args []value.Value, _ compute.Context) compute.Computation {
				return ops.Construct(fn, args)
			})
		})
	case *ast.UnaryExpression:
		return c.unary(e)
	case *ast.BinaryExpression:
		return c.binary(e)
	case *ast.AssignExpression:
		return c.assign(e)
	case *ast.ConditionalExpression:
		return compute.Branch(c.expr(e.Test), c.expr(e.Consequent), c.expr(e.Alternate))
	case *ast.SequenceExpression:
		cs := make([]compute.Computation, len(e.Sequence))
		for i, x := range e.Sequence {
			cs[i] = c.expr(x)
		}
		return compute.Sequence(cs...)
	case *ast.VariableExpression:
		if e.Initializer == nil {
			return compute.Just(value.Undefined{})
		}
		name := e.Name
		if c.strict && (name == "eval" || name == "arguments") {
			return c.fail(e, "Unexpected eval or arguments in strict mode")
		}
		return compute.Then(c.expr(e.Initializer), func(v value.Value, _ compute.Context) compute.Computation {
			return ops.SetBinding(name, v)
		})
	case *ast.RegExpLiteral:
		return c.fail(e, "regular expression literals are not supported")
	case *ast.BadExpression:
		return c.fail(e, "invalid expression")
	}
	return c.fail(e, "unsupported expression %T", e)
}

func (c *compiler) args(list []ast.Expression) compute.Computation {
	cs := make([]compute.Computation, len(list))
	for i, a := range list {
		cs[i] = c.expr(a)
	}
	return compute.Collect(cs, func(vs []value.Value, _ compute.Context) compute.Computation {
		return compute.Just(vs)
	})
}

func (c *compiler) array(e *ast.ArrayLiteral) compute.Computation {
	cs := make([]compute.Computation, len(e.Value))
	for i, x := range e.Value {
		if x == nil {
			cs[i] = compute.Just(nil)
			continue
		}
		cs[i] = c.expr(x)
	}
	return compute.Then(compute.Enumeration(cs...), func(vs []any, _ compute.Context) compute.Computation {
		vals := make([]value.Value, len(vs))
		for i, v := range vs {
			if v != nil {
				vals[i] = v.(value.Value)
			}
		}
		return ops.NewArray(vals)
	})
}

func (c *compiler) object(e *ast.ObjectLiteral) compute.Computation {
	props := make([]func(o value.Object) compute.Computation, 0, len(e.Value))
	for _, p := range e.Value {
		key, kind := p.Key, p.Kind
		switch kind {
		case "get", "set":
			lit, ok := p.Value.(*ast.FunctionLiteral)
			if !ok {
				return c.fail(e, "invalid accessor %s", key)
			}
			template := c.function(lit)
			props = append(props, func(o value.Object) compute.Computation {
				return compute.Then(ops.MakeClosure(template, false), func(fn value.Object, ctx compute.Context) compute.Computation {
					obj, _ := ctx.Store().Object(o)
					prop, ok := obj.Own(key)
					if !ok || !prop.Accessor {
						prop = env.Property{
							Accessor:     true,
							Getter:       value.Undefined{},
							Setter:       value.Undefined{},
							Enumerable:   true,
							Configurable: true,
						}
					}
					if kind == "get" {
						prop.Getter = fn
					} else {
						prop.Setter = fn
					}
					return compute.Put(ctx.WithStore(ctx.Store().PutObject(o, obj.With(key, prop))), o)
				})
			})
		default:
			init := c.expr(p.Value)
			props = append(props, func(o value.Object) compute.Computation {
				return compute.Then(init, func(v value.Value, ctx compute.Context) compute.Computation {
					obj, _ := ctx.Store().Object(o)
					return compute.Put(ctx.WithStore(ctx.Store().PutObject(o, obj.With(key, env.Data(v)))), o)
				})
			})
		}
	}
	return compute.Then(ops.NewObject(), func(o value.Object, _ compute.Context) compute.Computation {
		cs := make([]compute.Computation, 0, len(props)+1)
		for _, p := range props {
			cs = append(cs, p(o))
		}
		cs = append(cs, compute.Just(o))
		return compute.Sequence(cs...)
	})
}

// call evaluates the callee, binding this for method calls, then the
// arguments from left to right.
func (c *compiler) call(e *ast.CallExpression) compute.Computation {
	text := c.text(e.Callee)
	var callee compute.Computation
	switch e.Callee.(type) {
	case *ast.DotExpression, *ast.BracketExpression:
		callee = compute.Then(c.reference(e.Callee), func(r reference, _ compute.Context) compute.Computation {
			return compute.Then(r.get(), func(fn value.Value, _ compute.Context) compute.Computation {
				return compute.Just([2]value.Value{fn, r.base})
			})
		})
	default:
		callee = compute.Then(c.expr(e.Callee), func(fn value.Value, _ compute.Context) compute.Computation {
			return compute.Just([2]value.Value{fn, value.Undefined{}})
		})
	}
	args := c.args(e.ArgumentList)
	return compute.Then(callee, func(target [2]value.Value, _ compute.Context) compute.Computation {
		return compute.Then(args, func(args []value.Value, ctx compute.Context) compute.Computation {
			if !ops.IsCallable(ctx.Store(), target[0]) {
				return ops.ThrowTypeError("%s is not a function", text)
			}
			return ops.Call(target[0], target[1], args)
		})
	})
}

func (c *compiler) unary(e *ast.UnaryExpression) compute.Computation {
	switch e.Operator {
	case token.INCREMENT, token.DECREMENT:
		return c.update(e)
	case token.TYPEOF:
		if id, ok := e.Operand.(*ast.Identifier); ok {
			return ops.TypeofBinding(id.Name)
		}
		return compute.Then(c.expr(e.Operand), func(v value.Value, ctx compute.Context) compute.Computation {
			return compute.Just(value.String(ops.Typeof(ctx.Store(), v)))
		})
	case token.DELETE:
		switch e.Operand.(type) {
		case *ast.Identifier, *ast.DotExpression, *ast.BracketExpression:
			if _, ok := e.Operand.(*ast.Identifier); ok && c.strict {
				return c.fail(e, "Delete of an unqualified identifier in strict mode.")
			}
			return compute.Then(c.reference(e.Operand), func(r reference, _ compute.Context) compute.Computation {
				return r.delete()
			})
		}
		return compute.Then(c.expr(e.Operand), func(value.Value, compute.Context) compute.Computation {
			return compute.Just(value.True)
		})
	}
	operand := c.expr(e.Operand)
	var op func(v value.Value) compute.Computation
	switch e.Operator {
	case token.NOT:
		op = func(v value.Value) compute.Computation {
			return compute.Just(value.Boolean(!value.ToBoolean(v)))
		}
	case token.MINUS:
		op = ops.Negate
	case token.PLUS:
		op = ops.ToNumber
	case token.BITWISE_NOT:
		op = ops.BitNot
	case token.VOID:
		op = func(value.Value) compute.Computation { return compute.Just(value.Undefined{}) }
	default:
		return c.fail(e, "unsupported unary operator %s", e.Operator)
	}
	return compute.Then(operand, func(v value.Value, _ compute.Context) compute.Computation {
		return op(v)
	})
}

func (c *compiler) update(e *ast.UnaryExpression) compute.Computation {
	delta := value.Number(1)
	if e.Operator == token.DECREMENT {
		delta = -1
	}
	postfix := e.Postfix
	return compute.Then(c.reference(e.Operand), func(r reference, _ compute.Context) compute.Computation {
		return compute.Then(r.get(), func(old value.Value, _ compute.Context) compute.Computation {
			return compute.Then(ops.ToNumber(old), func(n value.Number, _ compute.Context) compute.Computation {
				next := n + delta
				return compute.Bind(r.put(next), func(any, compute.Context) compute.Computation {
					if postfix {
						return compute.Just(n)
					}
					return compute.Just(next)
				})
			})
		})
	})
}

func (c *compiler) binary(e *ast.BinaryExpression) compute.Computation {
	left, right := c.expr(e.Left), c.expr(e.Right)
	switch e.Operator {
	case token.LOGICAL_AND, token.LOGICAL_OR:
		and := e.Operator == token.LOGICAL_AND
		return compute.Then(left, func(l value.Value, _ compute.Context) compute.Computation {
			if value.ToBoolean(l) == and {
				return right
			}
			return compute.Just(l)
		})
	}
	op, ok := binaryOps[e.Operator]
	if !ok {
		return c.fail(e, "unsupported binary operator %s", e.Operator)
	}
	return compute.Then(left, func(l value.Value, _ compute.Context) compute.Computation {
		return compute.Then(right, func(r value.Value, _ compute.Context) compute.Computation {
			return op(l, r)
		})
	})
}

func (c *compiler) assign(e *ast.AssignExpression) compute.Computation {
	if id, ok := e.Left.(*ast.Identifier); ok && c.strict && (id.Name == "eval" || id.Name == "arguments") {
		return c.fail(e, "Unexpected eval or arguments in strict mode")
	}
	target, right := c.reference(e.Left), c.expr(e.Right)
	if e.Operator == token.ASSIGN {
		return compute.Then(target, func(r reference, _ compute.Context) compute.Computation {
			return compute.Then(right, func(v value.Value, _ compute.Context) compute.Computation {
				return r.put(v)
			})
		})
	}
	op, ok := binaryOps[e.Operator]
	if !ok {
		return c.fail(e, "unsupported assignment operator %s=", e.Operator)
	}
	return compute.Then(target, func(r reference, _ compute.Context) compute.Computation {
		return compute.Then(r.get(), func(old value.Value, _ compute.Context) compute.Computation {
			return compute.Then(right, func(v value.Value, _ compute.Context) compute.Computation {
				return compute.Then(op(old, v), func(result value.Value, _ compute.Context) compute.Computation {
					return r.put(result)
				})
			})
		})
	})
}

type binaryOp func(a, b value.Value) compute.Computation

func numeric(op ops.NumericOp) binaryOp {
	return func(a, b value.Value) compute.Computation { return ops.Arithmetic(op, a, b) }
}

func relation(rel ops.Relation) binaryOp {
	return func(a, b value.Value) compute.Computation { return ops.Compare(rel, a, b) }
}

func not(op binaryOp) binaryOp {
	return func(a, b value.Value) compute.Computation {
		return compute.Then(op(a, b), func(v value.Value, _ compute.Context) compute.Computation {
			return compute.Just(value.Boolean(!value.ToBoolean(v)))
		})
	}
}

func strictEquals(a, b value.Value) compute.Computation {
	return compute.Just(value.Boolean(value.StrictEquals(a, b)))
}

var binaryOps = map[token.Token]binaryOp{
	token.PLUS:                 ops.Add,
	token.MINUS:                numeric(ops.Sub),
	token.MULTIPLY:             numeric(ops.Mul),
	token.SLASH:                numeric(ops.Div),
	token.REMAINDER:            numeric(ops.Mod),
	token.SHIFT_LEFT:           numeric(ops.Shl),
	token.SHIFT_RIGHT:          numeric(ops.Shr),
	token.UNSIGNED_SHIFT_RIGHT: numeric(ops.UShr),
	token.AND:                  numeric(ops.BitAnd),
	token.OR:                   numeric(ops.BitOr),
	token.EXCLUSIVE_OR:         numeric(ops.BitXor),
	token.LESS:                 relation(ops.Less),
	token.LESS_OR_EQUAL:        relation(ops.LessOrEqual),
	token.GREATER:              relation(ops.Greater),
	token.GREATER_OR_EQUAL:     relation(ops.GreaterOrEqual),
	token.EQUAL:                ops.LooseEquals,
	token.NOT_EQUAL:            not(ops.LooseEquals),
	token.STRICT_EQUAL:         strictEquals,
	token.STRICT_NOT_EQUAL:     not(strictEquals),
	token.INSTANCEOF:           ops.InstanceOf,
	token.IN:                   ops.In,
}
