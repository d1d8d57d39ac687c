package dsl

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Frame is one group of rows: an ordered set of equal-length, uniquely
// named columns. Frames are immutable; every operation returns a new Frame
// sharing the underlying column data.
type Frame struct {
	columns  map[string]*Column
	colOrder []string // Preserve insertion order
	height   int
}

// ============================================================================
// Creation
// ============================================================================

// NewFrame creates a Frame from columns. All columns must have the same
// length and distinct names.
func NewFrame(cols ...*Column) (*Frame, error) {
	f := &Frame{columns: make(map[string]*Column, len(cols))}
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if i == 0 {
			f.height = c.Len()
		} else if c.Len() != f.height {
			return nil, fmt.Errorf("%w: column '%s' has %d rows, expected %d", ErrSchema, c.Name(), c.Len(), f.height)
		}
		if _, exists := f.columns[c.Name()]; exists {
			return nil, fmt.Errorf("%w: duplicate column name: %s", ErrSchema, c.Name())
		}
		f.columns[c.Name()] = c
		f.colOrder = append(f.colOrder, c.Name())
	}
	return f, nil
}

// MustFrame is NewFrame that panics on error. Intended for tests and
// examples with literal data.
func MustFrame(cols ...*Column) *Frame {
	f, err := NewFrame(cols...)
	if err != nil {
		panic(err)
	}
	return f
}

// emptyFrame is a Frame with no columns but a known height
func emptyFrame(height int) *Frame {
	return &Frame{columns: map[string]*Column{}, height: height}
}

// ============================================================================
// Accessors
// ============================================================================

// Column returns the column with the given name, or nil if not found
func (f *Frame) Column(name string) *Column {
	return f.columns[name]
}

// Columns returns the columns in order
func (f *Frame) Columns() []*Column {
	out := make([]*Column, len(f.colOrder))
	for i, name := range f.colOrder {
		out[i] = f.columns[name]
	}
	return out
}

// ColumnNames returns the names of all columns in insertion order
func (f *Frame) ColumnNames() []string {
	result := make([]string, len(f.colOrder))
	copy(result, f.colOrder)
	return result
}

// Height returns the number of rows
func (f *Frame) Height() int { return f.height }

// Width returns the number of columns
func (f *Frame) Width() int { return len(f.colOrder) }

// Schema returns the fields of the frame in column order
func (f *Frame) Schema() *Schema {
	fields := make([]Field, len(f.colOrder))
	for i, name := range f.colOrder {
		fields[i] = f.columns[name].Field()
	}
	return &Schema{fields: fields}
}

// ============================================================================
// Expressions
// ============================================================================

// Select evaluates exprs against the frame and returns a frame holding only
// the results. Wildcards and multi-column selections expand in place.
func (f *Frame) Select(ctx context.Context, exprs ...Expr) (*Frame, error) {
	cols, err := EvaluateAll(ctx, f, exprs...)
	if err != nil {
		return nil, err
	}
	return NewFrame(cols...)
}

// WithColumns evaluates exprs and adds the results, replacing existing
// columns with the same name in place.
func (f *Frame) WithColumns(ctx context.Context, exprs ...Expr) (*Frame, error) {
	cols, err := EvaluateAll(ctx, f, exprs...)
	if err != nil {
		return nil, err
	}
	result := f.Clone()
	for _, c := range cols {
		if c.Len() != f.height && f.Width() > 0 {
			return nil, fmt.Errorf("%w: column '%s' has %d rows, frame has %d", ErrSchema, c.Name(), c.Len(), f.height)
		}
		if _, exists := result.columns[c.Name()]; !exists {
			result.colOrder = append(result.colOrder, c.Name())
		}
		result.columns[c.Name()] = c
		result.height = c.Len()
	}
	return result, nil
}

// ============================================================================
// Reshaping
// ============================================================================

// SelectColumns returns a frame with only the named columns
func (f *Frame) SelectColumns(names ...string) (*Frame, error) {
	cols := make([]*Column, len(names))
	for i, name := range names {
		c := f.columns[name]
		if c == nil {
			return nil, fmt.Errorf("%w: column '%s' not found", ErrColumnNotFound, name)
		}
		cols[i] = c
	}
	out, err := NewFrame(cols...)
	if err != nil {
		return nil, err
	}
	out.height = f.height
	return out, nil
}

// Head returns the first n rows
func (f *Frame) Head(n int) *Frame {
	return f.Slice(0, n)
}

// Slice returns rows from start to end (exclusive)
func (f *Frame) Slice(start, end int) *Frame {
	if start < 0 {
		start = 0
	}
	if end > f.height {
		end = f.height
	}
	if start >= end {
		start, end = 0, 0
	}

	result := emptyFrame(end - start)
	for _, name := range f.colOrder {
		result.columns[name] = f.columns[name].Slice(start, end)
		result.colOrder = append(result.colOrder, name)
	}
	return result
}

// Clone creates a shallow copy of the Frame.
// The underlying columns are shared, not copied.
func (f *Frame) Clone() *Frame {
	result := emptyFrame(f.height)
	for _, name := range f.colOrder {
		result.columns[name] = f.columns[name]
		result.colOrder = append(result.colOrder, name)
	}
	return result
}

// Release drops the frame's references to its column data
func (f *Frame) Release() {
	for _, c := range f.columns {
		c.Release()
	}
}

// ConcatFrames stacks frames with identical schemas vertically
func ConcatFrames(frames ...*Frame) (*Frame, error) {
	return concatFrames(frames, GetEvalConfig().allocator())
}

func concatFrames(frames []*Frame, mem memory.Allocator) (*Frame, error) {
	if len(frames) == 0 {
		return emptyFrame(0), nil
	}
	first := frames[0]
	for _, fr := range frames[1:] {
		if fr.Width() != first.Width() {
			return nil, fmt.Errorf("%w: cannot concat frames of width %d and %d", ErrSchema, first.Width(), fr.Width())
		}
	}

	height := 0
	for _, fr := range frames {
		height += fr.height
	}
	result := emptyFrame(height)
	for _, name := range first.colOrder {
		parts := make([]*Column, len(frames))
		for i, fr := range frames {
			c := fr.columns[name]
			if c == nil {
				return nil, fmt.Errorf("%w: column '%s' missing from frame %d", ErrColumnNotFound, name, i)
			}
			parts[i] = c
		}
		c, err := concatColumns(parts, mem)
		if err != nil {
			return nil, err
		}
		result.columns[name] = c
		result.colOrder = append(result.colOrder, name)
	}
	return result, nil
}

// splitColumn cuts a column back into per-group pieces of the given heights
func splitColumn(c *Column, heights []int) []*Column {
	out := make([]*Column, len(heights))
	start := 0
	for i, h := range heights {
		out[i] = c.Slice(start, start+h)
		start += h
	}
	return out
}
