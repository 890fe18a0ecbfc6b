package pipeline

import (
	"github.com/cinderlang/cinder/internal/ast"
	"github.com/cinderlang/cinder/internal/diagnostics"
)

// TypeProcessor decodes and types every input expression.
type TypeProcessor struct{}

func (TypeProcessor) Process(ctx *Context) *Context {
	for _, in := range ctx.Inputs {
		e, err := ast.DecodeExpr(in.Data)
		if err != nil {
			ctx.Errors = append(ctx.Errors, err)
			continue
		}
		te, err := ctx.Typer.TypeExpr(e)
		if err != nil {
			if diagnostics.IsSignal(err) {
				ctx.Errors = append(ctx.Errors, err)
				continue
			}
			ctx.Typer.Globals().Reporter.Report(err)
			continue
		}
		ctx.Typed = append(ctx.Typed, te)
	}
	return ctx
}

// FinalizeProcessor drains the delayed queue after all inputs are typed.
type FinalizeProcessor struct{}

func (FinalizeProcessor) Process(ctx *Context) *Context {
	ctx.Typer.Finalize()
	return ctx
}
