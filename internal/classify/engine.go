// Package classify provides the middleware-based classification engine.
// Each record passes through a pipeline that looks up the matching rule,
// rewrites the category on a copy of the record and records the change.
package classify

import (
	"recat/internal/exercise"
	"recat/internal/rules"
)

// Result is the outcome of classifying one record.
type Result struct {
	Record  exercise.Record
	Change  exercise.Change
	Changed bool
}

// Middleware defines a processing step in the classification pipeline.
type Middleware func(ProcessContext) ProcessContext

// ProcessContext carries state through the classification pipeline.
type ProcessContext struct {
	Rules    *rules.RuleSet
	Original exercise.Record
	Target   string
	Matched  bool
	Result   *Result
	Error    error
}

// Engine runs records through the classification pipeline.
// It holds the rule set and an ordered middleware chain; every record passes
// through the whole chain unless a step sets an error.
type Engine struct {
	rules      *rules.RuleSet
	middleware []Middleware
}

// NewEngine creates an engine with the standard pipeline: match, apply, track.
// The match step only reads the record's original category, name and
// muscles, so extra middleware added with Use sees the final decision.
func NewEngine(rs *rules.RuleSet) *Engine {
	engine := &Engine{
		rules:      rs,
		middleware: []Middleware{},
	}

	engine.Use(matchRuleMiddleware)
	engine.Use(applyCategoryMiddleware)
	engine.Use(trackChangeMiddleware)

	return engine
}

// Use adds a middleware to the end of the pipeline.
func (e *Engine) Use(middleware Middleware) {
	e.middleware = append(e.middleware, middleware)
}

// ClassifyRecord runs one record through the pipeline. The input record is
// never modified; Result.Record is always an independent copy.
func (e *Engine) ClassifyRecord(rec exercise.Record) (Result, error) {
	ctx := ProcessContext{
		Rules:    e.rules,
		Original: rec,
		Result:   &Result{Record: rec.Clone()},
	}

	for _, mw := range e.middleware {
		ctx = mw(ctx)
		if ctx.Error != nil {
			return Result{}, ctx.Error
		}
	}

	return *ctx.Result, nil
}

// The decision depends only on the record's original category.
func matchRuleMiddleware(ctx ProcessContext) ProcessContext {
	if ctx.Rules == nil {
		return ctx
	}

	target, ok := ctx.Rules.Classify(ctx.Original.Category(), ctx.Original.Name(), ctx.Original.MuscleText())
	ctx.Target = target
	ctx.Matched = ok
	return ctx
}

func applyCategoryMiddleware(ctx ProcessContext) ProcessContext {
	if !ctx.Matched || ctx.Target == ctx.Original.Category() {
		return ctx
	}

	updated, err := ctx.Original.WithCategory(ctx.Target)
	if err != nil {
		ctx.Error = err
		return ctx
	}
	ctx.Result.Record = updated
	return ctx
}

func trackChangeMiddleware(ctx ProcessContext) ProcessContext {
	if ctx.Result.Record.Category() == ctx.Original.Category() {
		return ctx
	}

	ctx.Result.Change = exercise.NewChange(ctx.Original, ctx.Result.Record.Category())
	ctx.Result.Changed = true
	return ctx
}
