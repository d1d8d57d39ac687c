package dsl

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
	"golang.org/x/sync/errgroup"
)

// columnOrderKey is the key-value metadata entry holding the frame's column
// order; parquet groups store their columns sorted by name.
const columnOrderKey = "dsl.column_order"

// ParquetReadOptions configures Parquet reading behavior
type ParquetReadOptions struct {
	Columns []string // Only read these columns (nil = all)
	MaxRows int      // Max rows to read (0 = unlimited)
}

// DefaultParquetReadOptions returns default Parquet reading options
func DefaultParquetReadOptions() ParquetReadOptions {
	return ParquetReadOptions{}
}

// ReadParquet reads a Parquet file into a Frame
func ReadParquet(path string, opts ...ParquetReadOptions) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return ReadParquetFromReader(f, stat.Size(), opts...)
}

// ReadParquetFromReader reads Parquet data from an io.ReaderAt into a Frame.
// Row groups are decoded concurrently, bounded by EvalConfig.MaxWorkers.
func ReadParquetFromReader(r io.ReaderAt, size int64, opts ...ParquetReadOptions) (*Frame, error) {
	opt := DefaultParquetReadOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	schema := pf.Schema()

	colNames := opt.Columns
	if len(colNames) == 0 {
		colNames = storedColumnOrder(pf, schema)
	}

	// Leaf index per column name
	colIndexMap := make(map[string]int)
	for i, path := range schema.Columns() {
		if len(path) > 0 {
			colIndexMap[path[0]] = i
		}
	}

	colIndices := make([]int, len(colNames))
	fields := make([]Field, len(colNames))
	for i, name := range colNames {
		idx, ok := colIndexMap[name]
		if !ok {
			return nil, fmt.Errorf("%w: column '%s' not found in parquet file", ErrColumnNotFound, name)
		}
		colIndices[i] = idx
		fields[i] = NewField(name, parquetFieldToDType(schema, name))
	}

	cfg := GetEvalConfig()
	mem := cfg.allocator()
	rowGroups := pf.RowGroups()

	// Each row group decodes into its own set of columns
	parts := make([][]*Column, len(rowGroups))
	g := new(errgroup.Group)
	g.SetLimit(cfg.numWorkers())
	for i, rg := range rowGroups {
		g.Go(func() error {
			cols, err := readRowGroup(rg, fields, colIndices, opt.MaxRows, mem)
			if err != nil {
				return fmt.Errorf("row group %d: %w", i, err)
			}
			parts[i] = cols
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, cols := range parts {
			releaseColumns(cols)
		}
		return nil, err
	}
	cfg.logger().Debug("read parquet", "columns", len(colNames), "row_groups", len(rowGroups), "rows", pf.NumRows())

	columns := make([]*Column, len(colNames))
	for i, field := range fields {
		chunks := make([]arrow.Array, 0, len(parts))
		for _, cols := range parts {
			chunks = append(chunks, cols[i].Arrow())
		}
		dt, err := dtypeToArrowType(field)
		if err != nil {
			return nil, err
		}
		col, err := chunkedToColumn(field.Name, dt, chunks, mem)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", field.Name, err)
		}
		if opt.MaxRows > 0 && col.Len() > opt.MaxRows {
			col = col.Slice(0, opt.MaxRows)
		}
		columns[i] = col
	}
	for _, cols := range parts {
		releaseColumns(cols)
	}

	if len(columns) == 0 {
		return emptyFrame(0), nil
	}
	return NewFrame(columns...)
}

// readRowGroup decodes up to maxRows rows (0 = all) of one row group
func readRowGroup(rg parquet.RowGroup, fields []Field, colIndices []int, maxRows int, mem memory.Allocator) ([]*Column, error) {
	builders := make([]array.Builder, len(fields))
	for i, f := range fields {
		dt, err := dtypeToArrowType(f)
		if err != nil {
			return nil, err
		}
		builders[i] = array.NewBuilder(mem, dt)
	}
	defer func() {
		for _, b := range builders {
			b.Release()
		}
	}()

	rows := rg.Rows()
	defer rows.Close()

	rowCount := 0
	rowBuf := make([]parquet.Row, 1000)
	for maxRows <= 0 || rowCount < maxRows {
		n, err := rows.ReadRows(rowBuf)
		for _, row := range rowBuf[:n] {
			if maxRows > 0 && rowCount >= maxRows {
				break
			}
			for i, colIdx := range colIndices {
				if colIdx < len(row) {
					appendParquetValue(builders[i], row[colIdx])
				} else {
					builders[i].AppendNull()
				}
			}
			rowCount++
		}
		if err == io.EOF || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read rows: %w", err)
		}
	}

	cols := make([]*Column, len(fields))
	for i, f := range fields {
		col, err := newColumnOwned(f.Name, builders[i].NewArray())
		if err != nil {
			releaseColumns(cols[:i])
			return nil, err
		}
		cols[i] = col
	}
	return cols, nil
}

// storedColumnOrder returns the frame column order recorded at write time,
// falling back to the schema's field order
func storedColumnOrder(pf *parquet.File, schema *parquet.Schema) []string {
	fields := schema.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}

	raw, ok := pf.Lookup(columnOrderKey)
	if !ok {
		return names
	}
	var order []string
	if err := json.Unmarshal([]byte(raw), &order); err != nil || len(order) != len(names) {
		return names
	}
	return order
}

func parquetFieldToDType(schema *parquet.Schema, name string) DType {
	for _, col := range schema.Fields() {
		if col.Name() != name {
			continue
		}
		t := col.Type()
		if t == nil {
			return String
		}
		switch t.Kind() {
		case parquet.Boolean:
			return Bool
		case parquet.Int32:
			return Int32
		case parquet.Int64:
			return Int64
		case parquet.Float:
			return Float32
		case parquet.Double:
			return Float64
		default:
			return String
		}
	}
	return String
}

func appendParquetValue(b array.Builder, val parquet.Value) {
	if val.IsNull() {
		b.AppendNull()
		return
	}
	switch bb := b.(type) {
	case *array.Float64Builder:
		bb.Append(val.Double())
	case *array.Float32Builder:
		bb.Append(val.Float())
	case *array.Int64Builder:
		bb.Append(val.Int64())
	case *array.Int32Builder:
		bb.Append(val.Int32())
	case *array.BooleanBuilder:
		bb.Append(val.Boolean())
	case *array.StringBuilder:
		bb.Append(string(val.ByteArray()))
	default:
		b.AppendNull()
	}
}

// ============================================================================
// Writing
// ============================================================================

// ParquetWriteOptions configures Parquet writing behavior
type ParquetWriteOptions struct {
	Compression  string // "snappy", "gzip", "zstd", "none" (default "snappy")
	RowGroupSize int    // Rows per row group (default 1000000)
}

// DefaultParquetWriteOptions returns default Parquet writing options
func DefaultParquetWriteOptions() ParquetWriteOptions {
	return ParquetWriteOptions{
		Compression:  "snappy",
		RowGroupSize: 1000000,
	}
}

// WriteParquet writes the Frame to a Parquet file
func (f *Frame) WriteParquet(path string, opts ...ParquetWriteOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := f.WriteParquetToWriter(file, opts...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteParquetToWriter writes the Frame to an io.Writer. Every column is
// written as an optional leaf so nulls survive the round trip. UInt32 and
// UInt64 columns are stored as INT64; Struct columns are not supported.
func (f *Frame) WriteParquetToWriter(w io.Writer, opts ...ParquetWriteOptions) error {
	opt := DefaultParquetWriteOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.RowGroupSize <= 0 {
		opt.RowGroupSize = DefaultParquetWriteOptions().RowGroupSize
	}

	if f.Width() == 0 {
		return fmt.Errorf("%w: cannot write a frame without columns", ErrSchema)
	}

	group := make(parquet.Group)
	for _, col := range f.Columns() {
		node, err := dtypeToParquetNode(col.DType())
		if err != nil {
			return fmt.Errorf("column %s: %w", col.Name(), err)
		}
		group[col.Name()] = parquet.Optional(node)
	}
	schema := parquet.NewSchema("frame", group)

	order, err := json.Marshal(f.ColumnNames())
	if err != nil {
		return err
	}

	writerOpts := []parquet.WriterOption{schema, parquet.KeyValueMetadata(columnOrderKey, string(order))}
	switch opt.Compression {
	case "snappy", "":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Snappy))
	case "gzip":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Gzip))
	case "zstd":
		writerOpts = append(writerOpts, parquet.Compression(&parquet.Zstd))
	case "none":
	default:
		return fmt.Errorf("unsupported parquet compression: %s", opt.Compression)
	}

	pw := parquet.NewWriter(w, writerOpts...)

	// Leaves are laid out in sorted name order
	sorted := f.ColumnNames()
	sort.Strings(sorted)
	cols := make([]*Column, len(sorted))
	for i, name := range sorted {
		cols[i] = f.Column(name)
	}

	batchSize := 1000
	rows := make([]parquet.Row, 0, batchSize)
	for i := 0; i < f.Height(); i++ {
		row := make(parquet.Row, len(cols))
		for j, col := range cols {
			row[j] = toParquetValue(col.Get(i), j)
		}
		rows = append(rows, row)

		if len(rows) >= batchSize {
			if _, err := pw.WriteRows(rows); err != nil {
				return fmt.Errorf("failed to write rows at %d: %w", i-len(rows)+1, err)
			}
			rows = rows[:0]
		}
		if (i+1)%opt.RowGroupSize == 0 && i+1 < f.Height() {
			if len(rows) > 0 {
				if _, err := pw.WriteRows(rows); err != nil {
					return fmt.Errorf("failed to write rows: %w", err)
				}
				rows = rows[:0]
			}
			if err := pw.Flush(); err != nil {
				return fmt.Errorf("failed to flush row group: %w", err)
			}
		}
	}

	if len(rows) > 0 {
		if _, err := pw.WriteRows(rows); err != nil {
			return fmt.Errorf("failed to write final rows: %w", err)
		}
	}

	return pw.Close()
}

func dtypeToParquetNode(dtype DType) (parquet.Node, error) {
	switch dtype {
	case Float64:
		return parquet.Leaf(parquet.DoubleType), nil
	case Float32:
		return parquet.Leaf(parquet.FloatType), nil
	case Int64, UInt64, UInt32:
		return parquet.Leaf(parquet.Int64Type), nil
	case Int32:
		return parquet.Leaf(parquet.Int32Type), nil
	case Bool:
		return parquet.Leaf(parquet.BooleanType), nil
	case String, Null:
		return parquet.Leaf(parquet.ByteArrayType), nil
	default:
		return nil, fmt.Errorf("%w: %s columns cannot be written to parquet", ErrSchema, dtype)
	}
}

// toParquetValue converts a Go value into a leaf value of an optional column
func toParquetValue(v interface{}, colIdx int) parquet.Value {
	var val parquet.Value
	switch x := v.(type) {
	case nil:
		return parquet.NullValue().Level(0, 0, colIdx)
	case float64:
		val = parquet.DoubleValue(x)
	case float32:
		val = parquet.FloatValue(x)
	case int64:
		val = parquet.Int64Value(x)
	case int32:
		val = parquet.Int32Value(x)
	case uint64:
		val = parquet.Int64Value(int64(x))
	case uint32:
		val = parquet.Int64Value(int64(x))
	case bool:
		val = parquet.BooleanValue(x)
	case string:
		val = parquet.ByteArrayValue([]byte(x))
	default:
		val = parquet.ByteArrayValue([]byte(fmt.Sprintf("%v", v)))
	}
	return val.Level(0, 1, colIdx)
}
