package compiler

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// WarnUnresolvedReference marks a bare string action that names no declared
// delivery method.
const WarnUnresolvedReference = "UNRESOLVED_REFERENCE"

// Warning is a non-blocking compile diagnostic.
type Warning struct {
	Code    string `json:"code"`
	StepID  string `json:"step_id,omitempty"`
	Message string `json:"message"`
}

// Result is the output of one compilation.
type Result struct {
	Steps     []workflow.Step `json:"workflow_steps"`
	Warnings  []Warning       `json:"warnings"`
	EdgeCases []ir.EdgeCase   `json:"edge_cases"`

	// Features names the IR sections that contributed steps.
	Features []string `json:"features"`
}

// ErrNoDataSources is returned for an IR without data sources.
var ErrNoDataSources = errors.New("ir has no data sources")

// Options configures a Compiler.
type Options struct {
	Plugins        PluginResolver
	ModelTiers     map[string]ModelSpec
	MaxIterations  int
	MaxConcurrency int
	Logger         *slog.Logger
}

// Compiler turns validated IR into workflow steps. A Compiler holds only
// configuration and may be shared between goroutines.
type Compiler struct {
	plugins        PluginResolver
	tiers          map[string]ModelSpec
	maxIterations  int
	maxConcurrency int
	logger         *slog.Logger
}

// New creates a compiler. Zero options select the defaults.
func New(opts Options) *Compiler {
	c := &Compiler{
		plugins:        opts.Plugins,
		tiers:          opts.ModelTiers,
		maxIterations:  orDefault(opts.MaxIterations, DefaultMaxIterations),
		maxConcurrency: orDefault(opts.MaxConcurrency, DefaultMaxConcurrency),
		logger:         opts.Logger,
	}
	if c.plugins == nil {
		c.plugins = NewStaticPluginResolver()
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// compilation is the per-call state of Compile.
type compilation struct {
	doc      *ir.DeclarativeIR
	names    *nameSet
	ai       *AIOperationResolver
	loops    *LoopResolver
	steps    []workflow.Step
	warnings []Warning
	features []string

	// current is the variable holding the data the next step consumes.
	current string
	// primary is the output of the first data source.
	primary string
}

// Compile turns doc into a step graph. The order is fixed:
//
//  1. data sources (read actions)
//  2. filters
//  3. top-level AI operations
//  4. conditionals (branch transforms)
//  5. per-group batch processing when grouping emits per group, with the
//     loop actions run inside each group; otherwise partitions, grouping
//     and loops in that order
//  6. rendering
//  7. the remaining deliveries
//
// Bare string loop actions naming a declared delivery method are bound to
// that delivery, which is then not emitted again at the top level.
func (c *Compiler) Compile(doc *ir.DeclarativeIR) (*Result, error) {
	if doc == nil {
		return nil, errors.New("compile: nil ir")
	}
	if len(doc.DataSources) == 0 {
		return nil, ErrNoDataSources
	}

	ai := NewAIOperationResolver(c.tiers)
	loops := NewLoopResolver(c.plugins, ai)
	loops.MaxIterations = c.maxIterations
	loops.MaxConcurrency = c.maxConcurrency
	loops.subject = doc.Goal

	cc := &compilation{doc: doc, names: ai.names, ai: ai, loops: loops}

	cc.compileSources(c.plugins)
	cc.compileFilters()
	if err := cc.compileAI(); err != nil {
		return nil, err
	}
	if err := cc.compileConditionals(); err != nil {
		return nil, err
	}

	remaining := doc.Delivery
	batch := doc.Grouping != nil && doc.Grouping.EmitPerGroup
	switch {
	case batch:
		if err := cc.compileBatch(); err != nil {
			return nil, err
		}
		remaining = nil
	case len(doc.Loops) > 0:
		if err := cc.compileLoops(); err != nil {
			return nil, err
		}
	default:
		cc.compilePartitionsAndGrouping()
	}

	bound := cc.bindReferences(remaining)

	if doc.Rendering != nil && !batch {
		step := renderStep(*doc.Rendering, cc.current, cc.names.claim("rendered_output"))
		cc.emit(step)
		cc.feature("rendering")
	}

	for i, d := range remaining {
		if bound[i] {
			continue
		}
		cc.emit(deliveryStep(d, c.plugins, ir.Ref(cc.current), cc.current, doc.Goal))
	}

	Number(cc.steps)
	cc.warnUnresolved()

	c.logger.Debug("compiled ir",
		"steps", workflow.Count(cc.steps, func(workflow.Step) bool { return true }),
		"top_level", len(cc.steps),
		"warnings", len(cc.warnings),
		"features", strings.Join(cc.features, ","))

	edgeCases := doc.EdgeCases
	if edgeCases == nil {
		edgeCases = []ir.EdgeCase{}
	}
	warnings := cc.warnings
	if warnings == nil {
		warnings = []Warning{}
	}
	features := cc.features
	if features == nil {
		features = []string{}
	}
	return &Result{
		Steps:     cc.steps,
		Warnings:  warnings,
		EdgeCases: edgeCases,
		Features:  features,
	}, nil
}

func (cc *compilation) emit(s workflow.Step) {
	cc.steps = append(cc.steps, s)
	if out := s.Output(); out != "" {
		cc.current = out
	}
}

func (cc *compilation) feature(name string) {
	for _, f := range cc.features {
		if f == name {
			return
		}
	}
	cc.features = append(cc.features, name)
}

func (cc *compilation) compileSources(plugins PluginResolver) {
	for i, ds := range cc.doc.DataSources {
		out := ds.OutputVariable
		if out == "" {
			out = identifier(ds.Source)
		}
		if out == "" {
			out = "data"
		}
		step := sourceStep(ds, plugins, cc.names.claim(out))
		cc.steps = append(cc.steps, step)
		if i == 0 || ds.Role == "primary" {
			cc.primary = step.OutputVariable
		}
	}
	cc.current = cc.primary
}

func (cc *compilation) compileFilters() {
	for _, f := range cc.doc.Filters {
		cc.emit(filterStep(f, cc.current, cc.names.claim("filtered_data")))
	}
	if len(cc.doc.Filters) > 0 {
		cc.feature("filters")
	}
}

func (cc *compilation) compileAI() error {
	if len(cc.doc.AIOperations) == 0 {
		return nil
	}
	steps, err := cc.ai.Resolve(cc.doc.AIOperations, cc.current)
	if err != nil {
		return err
	}
	for _, s := range steps {
		cc.emit(s)
	}
	cc.feature("ai_operations")
	return nil
}

func (cc *compilation) compileConditionals() error {
	for i, cond := range cc.doc.Conditionals {
		then, err := cc.loops.resolveNested(cond.Then, cc.current, cc.current)
		if err != nil {
			return fmt.Errorf("conditionals[%d].then: %w", i, err)
		}
		var els []workflow.Step
		if len(cond.Else) > 0 {
			if els, err = cc.loops.resolveNested(cond.Else, cc.current, cc.current); err != nil {
				return fmt.Errorf("conditionals[%d].else: %w", i, err)
			}
		}
		var when ir.Condition
		if cond.When != nil {
			when = *cond.When
		}
		cc.emit(&workflow.TransformStep{
			Input: workflow.Template(ir.Ref(cc.current)),
			Config: &workflow.BranchConfig{
				Condition: when,
				Then:      then,
				Else:      els,
			},
		})
	}
	if len(cc.doc.Conditionals) > 0 {
		cc.feature("conditionals")
	}
	return nil
}

func (cc *compilation) compileBatch() error {
	plan := BatchPlan{
		Partitions: cc.doc.Partitions,
		Grouping:   *cc.doc.Grouping,
		Rendering:  cc.doc.Rendering,
		Deliveries: cc.doc.Delivery,
	}
	for _, loop := range cc.doc.Loops {
		plan.Actions = append(plan.Actions, loop.Do...)
		if plan.ItemVariable == "" {
			plan.ItemVariable = loop.ItemVariable
		}
	}
	steps, err := cc.loops.ResolveBatchProcessing(plan, cc.current)
	if err != nil {
		return fmt.Errorf("loops: %w", err)
	}
	for _, s := range steps {
		cc.emit(s)
	}
	if len(cc.doc.Partitions) > 0 {
		cc.feature("partitions")
	}
	cc.feature("grouping")
	if len(cc.doc.Loops) > 0 {
		cc.feature("loops")
	}
	cc.feature("batch")
	if cc.doc.Rendering != nil {
		cc.feature("rendering")
	}
	return nil
}

// compileLoops emits any partitions and grouping ahead of the loops, which
// name their own input.
func (cc *compilation) compileLoops() error {
	cc.compilePartitionsAndGrouping()
	steps, err := cc.loops.ResolveLoops(cc.doc.Loops)
	if err != nil {
		return err
	}
	for _, s := range steps {
		cc.emit(s)
	}
	cc.feature("loops")
	return nil
}

func (cc *compilation) compilePartitionsAndGrouping() {
	for _, s := range cc.loops.ResolvePartitions(cc.doc.Partitions, cc.current) {
		cc.emit(s)
	}
	if len(cc.doc.Partitions) > 0 {
		cc.feature("partitions")
	}
	if g := cc.doc.Grouping; g != nil {
		cc.emit(cc.loops.ResolveGrouping(*g, cc.current))
		cc.feature("grouping")
	}
}

// bindReferences replaces unresolved nested actions whose reference names a
// declared delivery method with that delivery. recipient_source is read from
// the enclosing scatter_gather item, or from a branch's own input. It returns
// the indexes of the deliveries that were bound.
func (cc *compilation) bindReferences(deliveries []ir.Delivery) map[int]bool {
	bound := map[int]bool{}
	var bind func(list []workflow.Step, scope string)
	bind = func(list []workflow.Step, scope string) {
		for idx := range cc.loops.bindDeliveries(list, deliveries, scope) {
			bound[idx] = true
		}
		for _, s := range list {
			inner := scope
			switch v := s.(type) {
			case *workflow.ScatterGatherStep:
				inner = v.ItemVariable
			case *workflow.TransformStep:
				if _, ok := v.Config.(*workflow.BranchConfig); ok {
					inner = referenceName(string(v.Input))
				}
			}
			for _, children := range workflow.Children(s) {
				bind(children, inner)
			}
		}
	}
	bind(cc.steps, cc.current)
	return bound
}

// warnUnresolved reports every reference that could not be bound.
func (cc *compilation) warnUnresolved() {
	workflow.Walk(cc.steps, func(s workflow.Step, _ int) bool {
		if a, ok := s.(*workflow.ActionStep); ok && a.Unresolved {
			cc.warnings = append(cc.warnings, Warning{
				Code:    WarnUnresolvedReference,
				StepID:  a.ID,
				Message: fmt.Sprintf("action %q does not name a declared delivery method", a.Reference),
			})
		}
		return true
	})
}

// referenceName strips placeholder braces from a bare reference.
func referenceName(ref string) string {
	if r, ok := ir.SingleRef(ref); ok {
		return r.Name
	}
	return strings.TrimSpace(ref)
}
