package dsl

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Arrow Export
// ============================================================================

// ToArrow exports the Frame as an Arrow Record sharing the column buffers.
// The caller is responsible for calling Release() on the returned Record.
func (f *Frame) ToArrow() (arrow.Record, error) {
	fields := make([]arrow.Field, f.Width())
	arrays := make([]arrow.Array, f.Width())
	for i, col := range f.Columns() {
		dt, err := dtypeToArrowType(col.Field())
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name(), err)
		}
		fields[i] = arrow.Field{Name: col.Name(), Type: dt, Nullable: true}
		arrays[i] = col.Arrow()
	}
	schema := arrow.NewSchema(fields, nil)

	// NewRecord retains the arrays
	return array.NewRecord(schema, arrays, int64(f.Height())), nil
}

// ToArrowTable exports the Frame as a single-chunk Arrow Table.
// The caller is responsible for calling Release() on the returned Table.
func (f *Frame) ToArrowTable() (arrow.Table, error) {
	record, err := f.ToArrow()
	if err != nil {
		return nil, err
	}
	defer record.Release()
	return array.NewTableFromRecords(record.Schema(), []arrow.Record{record}), nil
}

// ============================================================================
// Arrow Import
// ============================================================================

// NewFrameFromArrow creates a Frame from an Arrow Record. The Frame shares
// the record's buffers; the record may be released afterwards.
func NewFrameFromArrow(record arrow.Record) (*Frame, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: nil arrow record", ErrSchema)
	}
	schema := record.Schema()
	cols := make([]*Column, record.NumCols())
	for i := range cols {
		col, err := NewColumnFromArrow(schema.Field(i).Name, record.Column(i))
		if err != nil {
			releaseColumns(cols[:i])
			return nil, fmt.Errorf("column %s: %w", schema.Field(i).Name, err)
		}
		cols[i] = col
	}
	return NewFrame(cols...)
}

// NewFrameFromArrowTable creates a Frame from an Arrow Table. Chunked
// columns are concatenated into a single array each.
func NewFrameFromArrowTable(table arrow.Table) (*Frame, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: nil arrow table", ErrSchema)
	}
	mem := GetEvalConfig().allocator()
	cols := make([]*Column, table.NumCols())
	for i := range cols {
		tc := table.Column(i)
		col, err := chunkedToColumn(tc.Name(), tc.DataType(), tc.Data().Chunks(), mem)
		if err != nil {
			releaseColumns(cols[:i])
			return nil, fmt.Errorf("column %s: %w", tc.Name(), err)
		}
		cols[i] = col
	}
	return NewFrame(cols...)
}

func chunkedToColumn(name string, dt arrow.DataType, chunks []arrow.Array, mem memory.Allocator) (*Column, error) {
	switch len(chunks) {
	case 0:
		return newColumnOwned(name, array.MakeArrayOfNull(mem, dt, 0))
	case 1:
		return NewColumnFromArrow(name, chunks[0])
	}
	arr, err := array.Concatenate(chunks, mem)
	if err != nil {
		return nil, err
	}
	return newColumnOwned(name, arr)
}

func releaseColumns(cols []*Column) {
	for _, c := range cols {
		if c != nil {
			c.Release()
		}
	}
}
