package api

import (
	"encoding/hex"

	"github.com/apache/arrow-go/v18/arrow/array"

	"archived/internal/columnar"
)

// queryResponse is the POST /query payload. Data accumulates one
// element per partial QueryResult the handler produced; Data stays empty
// (never null) so clients can always range over it.
type queryResponse struct {
	Data          []partialJSON `json:"data"`
	ArchiveHeight *uint64       `json:"archiveHeight"`
	NextBlock     uint64        `json:"nextBlock"`
	TotalTime     int64         `json:"totalTime"`
}

type partialJSON struct {
	Logs         []map[string]any `json:"logs,omitempty"`
	Transactions []map[string]any `json:"transactions,omitempty"`
	Blocks       []map[string]any `json:"blocks,omitempty"`
}

// partialFromResult converts one QueryResultData into its JSON shape,
// hex-encoding binary columns (lowercase, no "0x" prefix) and leaving nulls
// as JSON null rather than an empty string, so clients can distinguish "no
// value" from "zero-length value".
func partialFromResult(data columnar.QueryResultData) partialJSON {
	return partialJSON{
		Logs:         batchesToRows(data.Logs),
		Transactions: batchesToRows(data.Transactions),
		Blocks:       batchesToRows(data.Blocks),
	}
}

func batchesToRows(batches []*columnar.ArrowBatch) []map[string]any {
	var rows []map[string]any
	for _, batch := range batches {
		for i := 0; i < batch.Len; i++ {
			row := make(map[string]any, len(batch.Columns))
			for colIdx, field := range batch.Schema.Fields() {
				row[field.Name] = cellValue(batch.Columns[colIdx], i)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// cellValue reads one Arrow cell as a JSON-ready value: binary-like columns
// become lowercase hex with no "0x" prefix, numeric columns their native Go
// type, and a null cell becomes nil regardless of column type.
func cellValue(col any, i int) any {
	type nullable interface{ IsNull(int) bool }
	if n, ok := col.(nullable); ok && n.IsNull(i) {
		return nil
	}

	switch c := col.(type) {
	case *array.Uint64:
		return c.Value(i)
	case *array.Uint8:
		return c.Value(i)
	case *array.Boolean:
		return c.Value(i)
	case *array.FixedSizeBinary:
		return hex.EncodeToString(c.Value(i))
	case *array.Binary:
		return hex.EncodeToString(c.Value(i))
	default:
		return nil
	}
}
