package ir

import "fmt"

// OrderedMap is a name-keyed map that preserves insertion order, the
// contract both serialization forms depend on. Overwriting an existing
// key keeps its original position.
type OrderedMap[V any] struct {
	keys []string
	vals map[string]V
}

func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{vals: make(map[string]V)}
}

func (m *OrderedMap[V]) Set(key string, val V) {
	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.vals[key] = val
}

func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.vals[key]
	return v, ok
}

func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.vals[key]
	return ok
}

// Keys returns the keys in insertion order. The returned slice is the
// map's own backing; callers must not mutate it.
func (m *OrderedMap[V]) Keys() []string {
	return m.keys
}

func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Param is one function parameter in declaration order.
type Param struct {
	Name      string
	ParamType string
	Coord     string
}

func (p *Param) Kind() string      { return "param" }
func (p *Param) NodeCoord() string { return p.Coord }

// Function owns its basic blocks, keyed by name, unique within the
// function. EntryPoint names the block lowering starts from.
type Function struct {
	Name       string
	Params     []*Param
	EntryPoint string
	Blocks     *OrderedMap[*BasicBlock]
	LocalVars  *OrderedMap[string]
	Coord      string
}

// NewFunction creates a function with the conventional "entry" entry
// point and no blocks yet.
func NewFunction(name, coord string) *Function {
	return &Function{
		Name:       name,
		EntryPoint: "entry",
		Blocks:     NewOrderedMap[*BasicBlock](),
		LocalVars:  NewOrderedMap[string](),
		Coord:      coord,
	}
}

func (f *Function) Kind() string      { return "func_def" }
func (f *Function) NodeCoord() string { return f.Coord }

// AddBlock registers a block under its name.
func (f *Function) AddBlock(b *BasicBlock) {
	f.Blocks.Set(b.Name, b)
}

// Block looks up a block by name.
func (f *Function) Block(name string) (*BasicBlock, bool) {
	return f.Blocks.Get(name)
}

// AddLocalVar records a local variable's declared type.
func (f *Function) AddLocalVar(name, varType string) {
	f.LocalVars.Set(name, varType)
}

// Validate walks the blocks reachable from the entry point and checks
// the structural invariant: every reachable block has exactly one
// terminator and every referenced target exists.
func (f *Function) Validate() error {
	if !f.Blocks.Has(f.EntryPoint) {
		return fmt.Errorf("function %q: entry block %q is not registered", f.Name, f.EntryPoint)
	}
	seen := make(map[string]bool)
	stack := []string{f.EntryPoint}
	for len(stack) > 0 {
		name := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[name] {
			continue
		}
		seen[name] = true

		blk, ok := f.Blocks.Get(name)
		if !ok {
			return fmt.Errorf("function %q: terminator targets unregistered block %q", f.Name, name)
		}
		if blk.Terminator == nil {
			return fmt.Errorf("function %q: reachable block %q has no terminator", f.Name, name)
		}
		stack = append(stack, blk.Terminator.Successors()...)
	}
	return nil
}

// Module is one lifted translation unit: functions keyed by name,
// global variable declarations, and the ordered include list.
// Immutable once lowering completes.
type Module struct {
	Name       string
	Functions  *OrderedMap[*Function]
	GlobalVars *OrderedMap[string]
	Includes   []string
	Coord      string
}

func NewModule(name, coord string) *Module {
	return &Module{
		Name:       name,
		Functions:  NewOrderedMap[*Function](),
		GlobalVars: NewOrderedMap[string](),
		Coord:      coord,
	}
}

func (m *Module) Kind() string      { return "module" }
func (m *Module) NodeCoord() string { return m.Coord }

func (m *Module) AddFunction(f *Function) {
	m.Functions.Set(f.Name, f)
}

func (m *Module) AddGlobalVar(name, varType string) {
	m.GlobalVars.Set(name, varType)
}

// AddInclude appends an include path, keeping the list duplicate-free
// in first-seen order.
func (m *Module) AddInclude(path string) {
	for _, p := range m.Includes {
		if p == path {
			return
		}
	}
	m.Includes = append(m.Includes, path)
}

// Validate checks the block invariant for every function.
func (m *Module) Validate() error {
	for _, name := range m.Functions.Keys() {
		fn, _ := m.Functions.Get(name)
		if err := fn.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MakeCoord renders the opaque coordinate string for diagnostics.
func MakeCoord(file string, line, col int) string {
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}
