package columnar

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

func mustAppendUint64(bb *batchBuilder, col int, v uint64) {
	bb.builders[col].(*array.Uint64Builder).Append(v)
}

func mustAppendUint8(bb *batchBuilder, col int, v uint8) {
	bb.builders[col].(*array.Uint8Builder).Append(v)
}

func mustAppendFixed(bb *batchBuilder, col int, v []byte) {
	bb.builders[col].(*array.FixedSizeBinaryBuilder).Append(v)
}

func mustAppendOptionalFixed(bb *batchBuilder, col int, v []byte) {
	if v == nil {
		bb.builders[col].AppendNull()
		return
	}
	bb.builders[col].(*array.FixedSizeBinaryBuilder).Append(v)
}

func mustAppendOptionalBinary(bb *batchBuilder, col int, v []byte) {
	if v == nil {
		bb.builders[col].AppendNull()
		return
	}
	bb.builders[col].(*array.BinaryBuilder).Append(v)
}

func addr(b byte) []byte {
	a := make([]byte, 20)
	a[19] = b
	return a
}

func TestLogSelectionsMaskEmptySelectionIsAllUnset(t *testing.T) {
	bb := newBatchBuilder(LogsSchema, memory.DefaultAllocator)
	appendLogRow(bb, 1, 0, 0, addr(1), nil, nil, nil, nil, nil)
	appendLogRow(bb, 2, 0, 0, addr(2), nil, nil, nil, nil, nil)
	batch := bb.newArrowBatch()
	defer batch.Release()

	mask := LogSelectionsMask(batch, nil)
	for i, v := range mask {
		if v {
			t.Fatalf("row %d: expected all-unset mask for empty selection list", i)
		}
	}
}

func TestLogSelectionsMaskAddressMatch(t *testing.T) {
	bb := newBatchBuilder(LogsSchema, memory.DefaultAllocator)
	appendLogRow(bb, 1, 0, 0, addr(1), nil, nil, nil, nil, nil)
	appendLogRow(bb, 2, 0, 0, addr(2), nil, nil, nil, nil, nil)
	batch := bb.newArrowBatch()
	defer batch.Release()

	sel := LogSelection{Address: [][]byte{addr(2)}}
	mask := LogSelectionsMask(batch, []LogSelection{sel})
	if mask[0] || !mask[1] {
		t.Fatalf("got mask %v, want [false true]", mask)
	}
}

func TestLogSelectionsMaskOrAcrossSelections(t *testing.T) {
	bb := newBatchBuilder(LogsSchema, memory.DefaultAllocator)
	appendLogRow(bb, 1, 0, 0, addr(1), nil, nil, nil, nil, nil)
	appendLogRow(bb, 2, 0, 0, addr(2), nil, nil, nil, nil, nil)
	appendLogRow(bb, 3, 0, 0, addr(3), nil, nil, nil, nil, nil)
	batch := bb.newArrowBatch()
	defer batch.Release()

	mask := LogSelectionsMask(batch, []LogSelection{
		{Address: [][]byte{addr(1)}},
		{Address: [][]byte{addr(3)}},
	})
	if !mask[0] || mask[1] || !mask[2] {
		t.Fatalf("got mask %v, want [true false true]", mask)
	}
}

func TestRangeMaskBounds(t *testing.T) {
	bb := newBatchBuilder(BlocksSchema, memory.DefaultAllocator)
	for _, n := range []uint64{5, 10, 15, 20} {
		appendBlockRow(bb, n)
	}
	batch := bb.newArrowBatch()
	defer batch.Release()

	to := uint64(15)
	mask := RangeMask(batch, "number", 10, &to)
	want := []bool{false, true, false, false}
	for i := range want {
		if mask[i] != want[i] {
			t.Fatalf("mask[%d]=%v, want %v (full mask %v)", i, mask[i], want[i], mask)
		}
	}
}

func TestTxSelectionsMaskStatusEquality(t *testing.T) {
	bb := newBatchBuilder(TransactionsSchema, memory.DefaultAllocator)
	ok := uint8(1)
	fail := uint8(0)
	appendTxRow(bb, 1, 0, addr(1), addr(2), &ok)
	appendTxRow(bb, 1, 1, addr(1), addr(2), &fail)
	batch := bb.newArrowBatch()
	defer batch.Release()

	want := uint8(1)
	mask := TxSelectionsMask(batch, []TxSelection{{Status: &want}})
	if !mask[0] || mask[1] {
		t.Fatalf("got mask %v, want [true false]", mask)
	}
}

// appendLogRow/appendBlockRow/appendTxRow are small test-only builders that
// bypass the Parquet row path exercised elsewhere, appending directly to an
// in-progress batchBuilder.
func appendLogRow(bb *batchBuilder, block uint64, txIdx, logIdx uint8, address []byte, t0, t1, t2, t3, data []byte) {
	mustAppendUint64(bb, 0, block)
	mustAppendUint8(bb, 1, txIdx)
	mustAppendUint8(bb, 2, logIdx)
	mustAppendFixed(bb, 3, address)
	mustAppendOptionalFixed(bb, 4, t0)
	mustAppendOptionalFixed(bb, 5, t1)
	mustAppendOptionalFixed(bb, 6, t2)
	mustAppendOptionalFixed(bb, 7, t3)
	mustAppendOptionalBinary(bb, 8, data)
}

func appendTxRow(bb *batchBuilder, block uint64, txIdx uint8, from, to []byte, status *uint8) {
	mustAppendUint64(bb, 0, block)
	mustAppendUint8(bb, 1, txIdx)
	mustAppendFixed(bb, 2, make([]byte, 32))
	mustAppendFixed(bb, 3, from)
	mustAppendFixed(bb, 4, to)
	bb.builders[5].AppendNull()
	if status != nil {
		mustAppendUint8(bb, 6, *status)
	} else {
		bb.builders[6].AppendNull()
	}
}

func appendBlockRow(bb *batchBuilder, number uint64) {
	mustAppendUint64(bb, 0, number)
	mustAppendFixed(bb, 1, make([]byte, 32))
	mustAppendFixed(bb, 2, make([]byte, 32))
	mustAppendUint64(bb, 3, 0)
}
