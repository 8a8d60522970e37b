package ir

import (
	"errors"
	"fmt"
)

// ErrBlockTerminated reports a mutation attempt on a block that has
// already received its terminator. Hitting it during lowering is a
// DuplicateTerminator invariant violation.
var ErrBlockTerminated = errors.New("basic block already terminated")

// BasicBlock is a straight-line operation sequence ending in exactly
// one terminator. Construction starts empty; once the terminator is
// set the block is frozen and rejects further mutation.
type BasicBlock struct {
	Name       string
	Operations []Operation
	Terminator Terminator
	Coord      string
}

// NewBasicBlock creates an empty, unterminated block.
func NewBasicBlock(name, coord string) *BasicBlock {
	return &BasicBlock{Name: name, Coord: coord}
}

func (b *BasicBlock) Kind() string      { return "basic_block" }
func (b *BasicBlock) NodeCoord() string { return b.Coord }

// AddOperation appends an operation. Ordering is meaningful: it is
// the temporal execution order.
func (b *BasicBlock) AddOperation(op Operation) error {
	if b.Terminator != nil {
		return fmt.Errorf("block %q: %w", b.Name, ErrBlockTerminated)
	}
	b.Operations = append(b.Operations, op)
	return nil
}

// SetTerminator closes the block. A second call fails with
// ErrBlockTerminated.
func (b *BasicBlock) SetTerminator(t Terminator) error {
	if b.Terminator != nil {
		return fmt.Errorf("block %q: %w", b.Name, ErrBlockTerminated)
	}
	b.Terminator = t
	return nil
}

// Terminated reports whether the block is frozen.
func (b *BasicBlock) Terminated() bool {
	return b.Terminator != nil
}
