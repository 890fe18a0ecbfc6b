package pipeline

import (
	"github.com/cinderlang/cinder/internal/typer"
	"github.com/cinderlang/cinder/internal/typesystem"
)

// Context is the state threaded through the stages of one compilation.
type Context struct {
	Typer  *typer.Typer
	Inputs []Input
	Typed  []*typesystem.TExpr
	Errors []error
}

// Input is one serialized expression to type, tagged with its origin.
type Input struct {
	Name string
	Data []byte
}

// Processor is one stage.
type Processor interface {
	Process(ctx *Context) *Context
}

// Pipeline is a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages run even after earlier errors so one
// pass collects diagnostics from every stage.
func (p *Pipeline) Run(initialCtx *Context) *Context {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
