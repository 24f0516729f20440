package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// OpKind identifies which catalogue mutation an Operation performs.
type OpKind uint8

const (
	OpAdd OpKind = iota + 1
	OpEdit
	OpDelete
)

func (k OpKind) String() string {
	switch k {
	case OpAdd:
		return "add"
	case OpEdit:
		return "edit"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("OpKind(%d)", uint8(k))
}

// Operation is one reversible catalogue mutation. It carries both the
// forward and the inverse data so that a single apply function can
// interpret it. Operations are values and never change once built.
//
//	Add:    New is inserted at Index (or appended when Index < 0).
//	Delete: Old is removed, Index holds where it was once executed.
//	Edit:   Old is replaced by New at the same position.
type Operation struct {
	Kind  OpKind
	Old   Book
	New   Book
	Index int
}

// AddOp builds the operation adding a book at the end of the collection.
func AddOp(book Book) (Operation, error) {
	if err := book.Validate(); err != nil {
		return Operation{}, err
	}
	return Operation{Kind: OpAdd, New: book, Index: -1}, nil
}

// EditOp builds the operation replacing old by updated. The replacement is
// validated now so that the recorded values are the ones applied.
func EditOp(old, updated Book) (Operation, error) {
	if err := updated.Validate(); err != nil {
		return Operation{}, err
	}
	return Operation{Kind: OpEdit, Old: old, New: updated, Index: -1}, nil
}

// DeleteOp builds the operation removing book.
func DeleteOp(book Book) Operation {
	return Operation{Kind: OpDelete, Old: book, Index: -1}
}

// Description returns the human readable summary shown to users.
func (op Operation) Description() string {
	switch op.Kind {
	case OpAdd:
		return fmt.Sprintf("Add book: %s (%s)", op.New.Title, op.New.Author)
	case OpEdit:
		return fmt.Sprintf("Edit book: %s -> %s", op.Old.Title, op.New.Title)
	case OpDelete:
		return fmt.Sprintf("Delete book: %s (%s)", op.Old.Title, op.Old.Author)
	}
	return op.Kind.String()
}

// Inverse returns the operation that cancels op.
func (op Operation) Inverse() Operation {
	switch op.Kind {
	case OpAdd:
		return Operation{Kind: OpDelete, Old: op.New, Index: op.Index}
	case OpDelete:
		return Operation{Kind: OpAdd, New: op.Old, Index: op.Index}
	case OpEdit:
		return Operation{Kind: OpEdit, Old: op.New, New: op.Old, Index: op.Index}
	}
	return op
}

// apply runs op against c and returns it completed with the position
// it touched, so that its inverse puts things back where they were.
func apply(ctx context.Context, c Collection, op Operation) (Operation, error) {
	switch op.Kind {
	case OpAdd:
		if err := c.Insert(ctx, op.Index, op.New); err != nil {
			return op, err
		}
		return op, nil
	case OpDelete:
		index, err := c.Remove(ctx, op.Old)
		if err != nil {
			return op, err
		}
		op.Index = index
		return op, nil
	case OpEdit:
		return op, c.Replace(ctx, op.Old, op.New)
	}
	return op, fmt.Errorf("cannot apply %s operation", op.Kind)
}

// History is the linear undo/redo log of the operations executed against
// a collection. It is not safe for concurrent use.
type History struct {
	logger     *zap.Logger
	collection Collection
	undo       []Operation
	redo       []Operation
}

// NewHistory provides an empty history bound to the collection.
func NewHistory(logger *zap.Logger, c Collection) *History {
	return &History{logger: logger, collection: c}
}

// Execute applies op and records it. A new operation discards everything
// that could have been redone. Nothing is recorded when op fails.
func (h *History) Execute(ctx context.Context, op Operation) error {
	done, err := apply(ctx, h.collection, op)
	if err != nil {
		h.logger.Debug("history: operation failed", zap.String("operation", op.Description()), zap.Error(err))
		return err
	}
	h.undo = append(h.undo, done)
	h.redo = h.redo[:0]
	h.logger.Debug("history: operation executed", zap.String("operation", done.Description()), zap.Int("undo", len(h.undo)))
	return nil
}

// Undo reverts the last executed operation. It reports false when
// there is nothing to undo.
func (h *History) Undo(ctx context.Context) (bool, error) {
	if len(h.undo) == 0 {
		return false, nil
	}
	last := h.undo[len(h.undo)-1]
	if _, err := apply(ctx, h.collection, last.Inverse()); err != nil {
		return false, fmt.Errorf("undo %q: %w", last.Description(), err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, last)
	h.logger.Debug("history: operation undone", zap.String("operation", last.Description()))
	return true, nil
}

// Redo applies again the last undone operation. It reports false when
// there is nothing to redo.
func (h *History) Redo(ctx context.Context) (bool, error) {
	if len(h.redo) == 0 {
		return false, nil
	}
	last := h.redo[len(h.redo)-1]
	done, err := apply(ctx, h.collection, last)
	if err != nil {
		return false, fmt.Errorf("redo %q: %w", last.Description(), err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, done)
	h.logger.Debug("history: operation redone", zap.String("operation", done.Description()))
	return true, nil
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }

func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// PeekUndo returns the description of the operation Undo would revert.
func (h *History) PeekUndo() (string, bool) {
	if len(h.undo) == 0 {
		return "", false
	}
	return h.undo[len(h.undo)-1].Description(), true
}

// PeekRedo returns the description of the operation Redo would apply.
func (h *History) PeekRedo() (string, bool) {
	if len(h.redo) == 0 {
		return "", false
	}
	return h.redo[len(h.redo)-1].Description(), true
}

// Clear forgets every recorded operation. It must be called whenever
// the collection is replaced as a whole.
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}

// Len returns the number of undoable and redoable operations.
func (h *History) Len() (int, int) {
	return len(h.undo), len(h.redo)
}
