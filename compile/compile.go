// Package compile translates programs parsed by otto into computations. A
// scope is compiled in two passes: declarations are bound first, then the
// statements run in order.
package compile

import (
	"errors"
	"fmt"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/file"
	"github.com/robertkrimen/otto/parser"
	"github.com/timewinder-dev/ecmastep/completion"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/logging"
)

type Options struct {
	// Finally decides which completion survives when a finally block
	// completes abruptly.
	Finally completion.FinallyPolicy
	// Strict compiles every scope as strict code.
	Strict bool
}

// Program is a compiled script. Body yields the completion value of the
// script as a value.Value.
type Program struct {
	Name   string
	Strict bool
	Source string
	Body   compute.Computation
}

// Error is a parse or compile error with its source position.
type Error struct {
	Pos compute.Point
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Parse parses src into an otto syntax tree.
func Parse(name, src string) (*ast.Program, error) {
	prog, err := parser.ParseFile(nil, name, src, 0)
	if err != nil {
		var list parser.ErrorList
		if errors.As(err, &list) && len(list) > 0 {
			first := list[0]
			return nil, &Error{
				Pos: compute.Point{File: name, Line: first.Position.Line, Column: first.Position.Column},
				Msg: first.Message,
			}
		}
		var single *parser.Error
		if errors.As(err, &single) {
			return nil, &Error{
				Pos: compute.Point{File: name, Line: single.Position.Line, Column: single.Position.Column},
				Msg: single.Message,
			}
		}
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return prog, nil
}

// Compile parses and compiles src.
func Compile(name, src string, opts Options) (*Program, error) {
	prog, err := Parse(name, src)
	if err != nil {
		return nil, err
	}
	return CompileAST(name, prog, opts)
}

// CompileAST compiles an already parsed program.
func CompileAST(name string, prog *ast.Program, opts Options) (*Program, error) {
	c := &compiler{
		name:   name,
		file:   prog.File,
		opts:   opts,
		strict: opts.Strict || hasUseStrict(prog.Body),
		diag:   &diagnostics{},
	}
	body := c.scope(prog.Body)
	if c.diag.err != nil {
		return nil, c.diag.err
	}
	src := ""
	if prog.File != nil {
		src = prog.File.Source()
	}
	logging.Logger().Debug().Str("name", name).Bool("strict", c.strict).Int("statements", len(prog.Body)).Msg("compiled program")
	return &Program{
		Name:   name,
		Strict: c.strict,
		Source: src,
		Body:   enterProgram(c.strict, body),
	}, nil
}

// enterProgram runs body with the strictness of the program applied to the
// current execution context and converts its completion to a value.
func enterProgram(strict bool, body compute.Computation) compute.Computation {
	return compute.WithContext(func(ctx compute.Context) compute.Computation {
		saved := ctx.Exec()
		exec := saved
		exec.Strict = saved.Strict || strict
		run := compute.Then(body, func(c completion.Completion, _ compute.Context) compute.Computation {
			return compute.Just(c.ValueOf())
		})
		return compute.Guard(compute.Enter(ctx.WithExec(exec), run), func(cur compute.Context) compute.Context {
			e := cur.Exec()
			e.Strict = saved.Strict
			return cur.WithExec(e)
		})
	})
}

type diagnostics struct {
	err *Error
}

type compiler struct {
	name   string
	file   *file.File
	opts   Options
	strict bool
	diag   *diagnostics
}

func (c *compiler) point(idx file.Idx) compute.Point {
	if c.file == nil {
		return compute.Point{File: c.name}
	}
	p := c.file.Position(idx)
	if p == nil {
		return compute.Point{File: c.name}
	}
	return compute.Point{File: c.name, Line: p.Line, Column: p.Column}
}

// text is the source text of n.
func (c *compiler) text(n ast.Node) string {
	if c.file == nil {
		return "expression"
	}
	src, base := c.file.Source(), c.file.Base()
	i, j := int(n.Idx0())-base, int(n.Idx1())-base
	if i < 0 || j > len(src) || i >= j {
		return "expression"
	}
	return src[i:j]
}

// fail records a compile error. The returned computation is never run.
func (c *compiler) fail(n ast.Node, format string, args ...any) compute.Computation {
	err := &Error{Pos: c.point(n.Idx0()), Msg: fmt.Sprintf(format, args...)}
	if c.diag.err == nil {
		c.diag.err = err
	}
	return compute.Fatal(err)
}

func (c *compiler) mark(n ast.Node, body compute.Computation) compute.Computation {
	return compute.Mark(c.point(n.Idx0()), body)
}

// scope compiles the body of a program or function: the declaration pass
// followed by the statement list.
func (c *compiler) scope(body []ast.Statement) compute.Computation {
	decls := c.declarations(body)
	stmts := completion.StatementList(c.statements(body))
	if len(decls) == 0 {
		return stmts
	}
	return compute.Sequence(compute.Sequence(decls...), stmts)
}

func hasUseStrict(body []ast.Statement) bool {
	for _, s := range body {
		es, ok := s.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.StringLiteral)
		if !ok {
			return false
		}
		if lit.Value == "use strict" {
			return true
		}
	}
	return false
}
