package columnar

import (
	"bytes"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// binaryColumn abstracts over the two Arrow encodings the schema uses for
// byte-string data (fixed-size binary for addresses/topics/selectors,
// variable binary for opaque blobs), so predicate code can treat them
// uniformly.
type binaryColumn interface {
	Len() int
	IsNull(i int) bool
	Value(i int) []byte
}

func asBinaryColumn(col arrow.Array) binaryColumn {
	if col == nil {
		return nil
	}
	switch c := col.(type) {
	case *array.FixedSizeBinary:
		return c
	case *array.Binary:
		return c
	default:
		return nil
	}
}

// InSetBinary tests each row of col for membership in set. Null cells never
// match, preserving the underlying column's validity rather than treating
// null as a wildcard.
func InSetBinary(col binaryColumn, set [][]byte) []bool {
	n := col.Len()
	mask := make([]bool, n)
	if len(set) == 0 {
		return mask
	}
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.Value(i)
		for _, s := range set {
			if bytes.Equal(v, s) {
				mask[i] = true
				break
			}
		}
	}
	return mask
}

func andMask(a, b []bool) []bool {
	out := make([]bool, len(a))
	for i := range a {
		out[i] = a[i] && b[i]
	}
	return out
}

func orInto(dst, src []bool) {
	for i := range dst {
		dst[i] = dst[i] || src[i]
	}
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

// LogSelectionsMask computes the per-row mask for a list of LogSelections:
// AND across a selection's non-empty axes, OR across selections. An empty
// selection list yields an all-unset mask.
func LogSelectionsMask(batch *ArrowBatch, selections []LogSelection) []bool {
	n := batch.Len
	final := make([]bool, n)
	if len(selections) == 0 {
		return final
	}

	addrCol := asBinaryColumn(batch.ColumnByName("address"))
	topicCols := [4]binaryColumn{
		asBinaryColumn(batch.ColumnByName("topic0")),
		asBinaryColumn(batch.ColumnByName("topic1")),
		asBinaryColumn(batch.ColumnByName("topic2")),
		asBinaryColumn(batch.ColumnByName("topic3")),
	}

	for _, sel := range selections {
		mask := allTrue(n)
		if len(sel.Address) > 0 && addrCol != nil {
			mask = andMask(mask, InSetBinary(addrCol, sel.Address))
		}
		for i, topics := range sel.Topics {
			if len(topics) == 0 || topicCols[i] == nil {
				continue
			}
			mask = andMask(mask, InSetBinary(topicCols[i], topics))
		}
		orInto(final, mask)
	}
	return final
}

// TxSelectionsMask computes the per-row mask for a list of TxSelections,
// symmetric to LogSelectionsMask over from/to/sighash (binary) and status
// (u8 equality).
func TxSelectionsMask(batch *ArrowBatch, selections []TxSelection) []bool {
	n := batch.Len
	final := make([]bool, n)
	if len(selections) == 0 {
		return final
	}

	fromCol := asBinaryColumn(batch.ColumnByName("from"))
	toCol := asBinaryColumn(batch.ColumnByName("to"))
	sighashCol := asBinaryColumn(batch.ColumnByName("sighash"))
	statusCol, _ := batch.ColumnByName("status").(*array.Uint8)

	for _, sel := range selections {
		mask := allTrue(n)
		if len(sel.From) > 0 && fromCol != nil {
			mask = andMask(mask, InSetBinary(fromCol, sel.From))
		}
		if len(sel.To) > 0 && toCol != nil {
			mask = andMask(mask, InSetBinary(toCol, sel.To))
		}
		if len(sel.Sighash) > 0 && sighashCol != nil {
			mask = andMask(mask, InSetBinary(sighashCol, sel.Sighash))
		}
		if sel.Status != nil && statusCol != nil {
			mask = andMask(mask, statusEqualsMask(statusCol, *sel.Status))
		}
		orInto(final, mask)
	}
	return final
}

func statusEqualsMask(col *array.Uint8, want uint8) []bool {
	n := col.Len()
	mask := make([]bool, n)
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			continue
		}
		mask[i] = col.Value(i) == want
	}
	return mask
}

// RangeMask computes `number >= from AND (to absent OR number < to)` against
// the named unsigned-64 column.
func RangeMask(batch *ArrowBatch, numberColumn string, from uint64, to *uint64) []bool {
	n := batch.Len
	mask := make([]bool, n)
	col, ok := batch.ColumnByName(numberColumn).(*array.Uint64)
	if !ok {
		return mask
	}
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			continue
		}
		v := col.Value(i)
		if v < from {
			continue
		}
		if to != nil && v >= *to {
			continue
		}
		mask[i] = true
	}
	return mask
}

// InSetU64 tests each row of the named column for membership in a 64-bit
// Roaring bitmap of block numbers.
func InSetU64(batch *ArrowBatch, column string, set *roaring64.Bitmap) []bool {
	n := batch.Len
	mask := make([]bool, n)
	col, ok := batch.ColumnByName(column).(*array.Uint64)
	if !ok {
		return mask
	}
	for i := 0; i < n; i++ {
		if col.IsNull(i) {
			continue
		}
		mask[i] = set.Contains(col.Value(i))
	}
	return mask
}

// InSetTxKeys tests each row's (blockColumn, indexColumn) pair for
// membership in set, the two-column "in_set_double" predicate.
func InSetTxKeys(batch *ArrowBatch, blockColumn, indexColumn string, set map[TxKey]struct{}) []bool {
	n := batch.Len
	mask := make([]bool, n)
	blockCol, ok := batch.ColumnByName(blockColumn).(*array.Uint64)
	if !ok {
		return mask
	}
	idxCol, ok := batch.ColumnByName(indexColumn).(*array.Uint8)
	var idxCol32 *array.Uint64
	if !ok {
		idxCol32, ok = batch.ColumnByName(indexColumn).(*array.Uint64)
		if !ok {
			return mask
		}
	}
	for i := 0; i < n; i++ {
		if blockCol.IsNull(i) {
			continue
		}
		var idx uint32
		if idxCol != nil {
			if idxCol.IsNull(i) {
				continue
			}
			idx = uint32(idxCol.Value(i))
		} else {
			if idxCol32.IsNull(i) {
				continue
			}
			idx = uint32(idxCol32.Value(i))
		}
		key := TxKey{Block: blockCol.Value(i), Index: idx}
		if _, ok := set[key]; ok {
			mask[i] = true
		}
	}
	return mask
}
