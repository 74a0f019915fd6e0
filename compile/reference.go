package compile

import (
	"github.com/robertkrimen/otto/ast"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/ops"
	"github.com/timewinder-dev/ecmastep/value"
)

// reference is an evaluated assignment target: a binding name, or a
// property of base when base is set.
type reference struct {
	base value.Value
	name string
}

func (r reference) get() compute.Computation {
	if r.base == nil {
		return ops.GetBinding(r.name)
	}
	return ops.Get(r.base, r.name)
}

// put stores v and yields it.
func (r reference) put(v value.Value) compute.Computation {
	if r.base == nil {
		return ops.SetBinding(r.name, v)
	}
	return ops.Put(r.base, r.name, v)
}

func (r reference) delete() compute.Computation {
	if r.base == nil {
		return ops.DeleteBinding(r.name)
	}
	return ops.Delete(r.base, r.name)
}

// reference compiles e into a computation yielding a reference.
func (c *compiler) reference(e ast.Expression) compute.Computation {
	switch e := e.(type) {
	case *ast.Identifier:
		return compute.Just(reference{name: e.Name})
	case *ast.DotExpression:
		return compute.Then(c.expr(e.Left), func(base value.Value, _ compute.Context) compute.Computation {
			return compute.Just(reference{base: base, name: e.Identifier.Name})
		})
	case *ast.BracketExpression:
		return compute.Then(c.expr(e.Left), func(base value.Value, _ compute.Context) compute.Computation {
			return compute.Then(c.expr(e.Member), func(k value.Value, _ compute.Context) compute.Computation {
				if value.IsNullish(base) {
					return ops.ThrowTypeError("Cannot read property '%s' of %s", value.StringOf(k), value.StringOf(base))
				}
				return compute.Then(ops.ToKey(k), func(key string, _ compute.Context) compute.Computation {
					return compute.Just(reference{base: base, name: key})
				})
			})
		})
	}
	return c.fail(e, "Invalid left-hand side in assignment")
}
