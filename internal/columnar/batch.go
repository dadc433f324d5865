// Package columnar implements the archive's columnar query engine: Arrow
// batch representation, predicate evaluation, the two DataProvider
// variants, and the QueryExecutor that ties them together.
package columnar

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ArrowBatch is a schema plus an aligned set of typed columns, all of
// length Len. Columns retain Arrow's reference-counted buffers so slicing
// and filtering can share storage with their parent batch where possible.
type ArrowBatch struct {
	Schema  *arrow.Schema
	Columns []arrow.Array
	Len     int
}

// ColumnByName returns the column with the given field name, or nil if the
// batch's schema carries no such field.
func (b *ArrowBatch) ColumnByName(name string) arrow.Array {
	for i, f := range b.Schema.Fields() {
		if f.Name == name {
			return b.Columns[i]
		}
	}
	return nil
}

// Release drops this batch's references to its underlying Arrow buffers.
func (b *ArrowBatch) Release() {
	for _, c := range b.Columns {
		c.Release()
	}
}

// Retain adds a reference to every column, matching the lifetime of a new
// owner (e.g. a provider handing this batch to a caller without copying).
func (b *ArrowBatch) Retain() {
	for _, c := range b.Columns {
		c.Retain()
	}
}

// batchBuilder accumulates rows for a schema one column at a time, used by
// both FilterBatch and the Parquet provider's row-to-batch conversion.
type batchBuilder struct {
	schema   *arrow.Schema
	mem      memory.Allocator
	builders []array.Builder
}

func newBatchBuilder(schema *arrow.Schema, mem memory.Allocator) *batchBuilder {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	builders := make([]array.Builder, len(schema.Fields()))
	for i, f := range schema.Fields() {
		builders[i] = newBuilderForField(f, mem)
	}
	return &batchBuilder{schema: schema, mem: mem, builders: builders}
}

func newBuilderForField(f arrow.Field, mem memory.Allocator) array.Builder {
	switch t := f.Type.(type) {
	case *arrow.Uint64Type:
		return array.NewUint64Builder(mem)
	case *arrow.Uint8Type:
		return array.NewUint8Builder(mem)
	case *arrow.BooleanType:
		return array.NewBooleanBuilder(mem)
	case *arrow.FixedSizeBinaryType:
		return array.NewFixedSizeBinaryBuilder(mem, t)
	case *arrow.BinaryType:
		return array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
	default:
		panic(fmt.Sprintf("columnar: unsupported field type %s for %s", f.Type, f.Name))
	}
}

// appendRow copies row i of src into the builder at column index col,
// preserving nulls.
func (bb *batchBuilder) appendRow(src *ArrowBatch, col, i int) {
	builder := bb.builders[col]
	column := src.Columns[col]
	if column.IsNull(i) {
		builder.AppendNull()
		return
	}
	switch b := builder.(type) {
	case *array.Uint64Builder:
		b.Append(column.(*array.Uint64).Value(i))
	case *array.Uint8Builder:
		b.Append(column.(*array.Uint8).Value(i))
	case *array.BooleanBuilder:
		b.Append(column.(*array.Boolean).Value(i))
	case *array.FixedSizeBinaryBuilder:
		b.Append(column.(*array.FixedSizeBinary).Value(i))
	case *array.BinaryBuilder:
		b.Append(column.(*array.Binary).Value(i))
	default:
		panic(fmt.Sprintf("columnar: unsupported builder type %T", builder))
	}
}

// newArrowBatch finalizes the accumulated rows into an ArrowBatch.
func (bb *batchBuilder) newArrowBatch() *ArrowBatch {
	columns := make([]arrow.Array, len(bb.builders))
	length := 0
	for i, b := range bb.builders {
		arr := b.NewArray()
		columns[i] = arr
		length = arr.Len()
	}
	return &ArrowBatch{Schema: bb.schema, Columns: columns, Len: length}
}

// FilterBatch returns a new ArrowBatch containing only the rows where mask
// is true, built fresh from an allocator (Arrow's builder API does not
// expose true zero-copy gather across arbitrary boolean masks, so rows are
// copied into new buffers; entire untouched batches are still returned by
// reference elsewhere, e.g. the in-memory provider's unfiltered read path).
func FilterBatch(batch *ArrowBatch, mask []bool) *ArrowBatch {
	bb := newBatchBuilder(batch.Schema, memory.DefaultAllocator)
	for i, keep := range mask {
		if !keep {
			continue
		}
		for col := range batch.Columns {
			bb.appendRow(batch, col, i)
		}
	}
	return bb.newArrowBatch()
}

// ProjectBatch returns a new ArrowBatch containing only the named columns,
// preserving the schema's original field order (not the caller's requested
// order), so downstream JSON key order stays stable.
func ProjectBatch(batch *ArrowBatch, fields []string) *ArrowBatch {
	wanted := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		wanted[f] = struct{}{}
	}

	var keptFields []arrow.Field
	var keptColumns []arrow.Array
	for i, f := range batch.Schema.Fields() {
		if _, ok := wanted[f.Name]; !ok {
			continue
		}
		keptFields = append(keptFields, f)
		col := batch.Columns[i]
		col.Retain()
		keptColumns = append(keptColumns, col)
	}
	schema := arrow.NewSchema(keptFields, nil)
	return &ArrowBatch{Schema: schema, Columns: keptColumns, Len: batch.Len}
}
