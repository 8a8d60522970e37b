// Package lift orchestrates lowering across a whole translation
// unit: it walks the top-level declarations, lowers every function
// through the CFG lowerer and assembles the resulting module.
package lift

import (
	stderrors "errors"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"lisa/internal/cast"
	"lisa/internal/errors"
	"lisa/internal/ir"
	"lisa/internal/lower"
)

var log = commonlog.GetLogger("lisa.lift")

// Failure policies for a fatal error in one function.
const (
	OnErrorAbort    = "abort"    // first fatal error fails the whole lift
	OnErrorContinue = "continue" // record the failure, keep lifting the rest
)

// Options control how a unit is lifted.
type Options struct {
	// OnError picks the failure policy; OnErrorContinue is the
	// default. Under OnErrorContinue a failed function is dropped
	// from the module and reported as an error diagnostic.
	OnError string

	// Parallel lowers independent functions concurrently. Each
	// function owns its block counter and scope, so the result is
	// identical to the sequential one.
	Parallel bool
}

// Lifter lowers translation units against one knowledge base
// snapshot.
type Lifter struct {
	db   lower.SemanticSource
	opts Options
}

// New creates a lifter. db may be nil when no knowledge base is
// available; calls then simply carry no annotations.
func New(db lower.SemanticSource, opts Options) *Lifter {
	if opts.OnError == "" {
		opts.OnError = OnErrorContinue
	}
	return &Lifter{db: db, opts: opts}
}

// LiftFile decodes the syntax tree exchange file at path and lifts
// it.
func (l *Lifter) LiftFile(path string) (*ir.Module, *errors.Diagnostics, error) {
	log.Infof("lifting %s", path)
	unit, err := cast.DecodeFile(path)
	if err != nil {
		return nil, nil, err
	}
	if unit.Name == "" {
		unit.Name = path
	}
	return l.LiftUnit(unit)
}

// ModuleName derives the module name from the source path the way
// downstream tooling expects: path separators and dots become
// underscores.
func ModuleName(sourcePath string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ".", "_")
	return r.Replace(sourcePath)
}

// LiftUnit lowers every function of a unit into a fresh module.
// Recoverable conditions accumulate in the returned diagnostics; a
// fatal condition either fails the lift or, under OnErrorContinue,
// drops that one function and is recorded as an error diagnostic.
func (l *Lifter) LiftUnit(unit *cast.TranslationUnit) (*ir.Module, *errors.Diagnostics, error) {
	if unit == nil {
		return nil, nil, errors.Fatalf(errors.ErrorMalformedSyntaxTree, "", "translation unit is missing")
	}

	name := unit.Name
	if name == "" {
		name = "<input>"
	}
	module := ir.NewModule(ModuleName(name), cast.Position{File: name, Line: 1, Column: 1}.Coord())
	diags := &errors.Diagnostics{}

	for _, inc := range unit.Includes {
		module.AddInclude(inc)
	}

	var funcs []*cast.FunctionDef
	for _, decl := range unit.Decls {
		switch d := decl.(type) {
		case *cast.FunctionDef:
			funcs = append(funcs, d)
		case *cast.Declaration:
			module.AddGlobalVar(d.Name, d.Type)
			if d.Init != nil {
				// Global initializers are constant expressions the
				// analyses read straight off the declaration; there
				// is no block to lower them into.
				log.Debugf("global %s carries an initializer, recorded as declaration only", d.Name)
			}
		}
	}

	results := l.lowerAll(funcs)

	for i, res := range results {
		for _, d := range res.diags.Items() {
			diags.Add(d)
		}
		if res.err != nil {
			var lerr *errors.LiftError
			if !stderrors.As(res.err, &lerr) {
				lerr = errors.Fatalf(errors.ErrorMalformedSyntaxTree, "", "%s", res.err)
			}
			if l.opts.OnError == OnErrorAbort {
				return nil, nil, lerr
			}
			log.Errorf("function %s failed to lower: %s", funcs[i].Name, lerr)
			diags.Errorf(lerr.Code, lerr.Coord, "function %s dropped: %s", funcs[i].Name, lerr.Message)
			continue
		}
		module.AddFunction(res.fn)
	}

	if err := module.Validate(); err != nil {
		// A module that fails validation would hand downstream
		// analyses a function missing its terminator; never return
		// it silently.
		return nil, nil, errors.Fatalf(errors.ErrorDuplicateTerminator, module.Coord, "%s", err)
	}

	log.Infof("lifted %s: %d functions, %d diagnostics", name, module.Functions.Len(), diags.Len())
	return module, diags, nil
}

type funcResult struct {
	fn    *ir.Function
	diags *errors.Diagnostics
	err   error
}

// lowerAll lowers the functions, sequentially or in parallel, and
// returns the results in input order so diagnostics stay
// deterministic either way.
func (l *Lifter) lowerAll(funcs []*cast.FunctionDef) []funcResult {
	results := make([]funcResult, len(funcs))

	if !l.opts.Parallel {
		for i, def := range funcs {
			results[i] = lowerOne(def, l.db)
		}
		return results
	}

	var wg sync.WaitGroup
	for i, def := range funcs {
		wg.Add(1)
		go func(i int, def *cast.FunctionDef) {
			defer wg.Done()
			results[i] = lowerOne(def, l.db)
		}(i, def)
	}
	wg.Wait()
	return results
}

func lowerOne(def *cast.FunctionDef, db lower.SemanticSource) funcResult {
	diags := &errors.Diagnostics{}
	fn, err := lower.Function(def, db, diags)
	return funcResult{fn: fn, diags: diags, err: err}
}
