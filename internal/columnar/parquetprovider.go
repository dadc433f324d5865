package columnar

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"

	"archived/internal/folderindex"
)

// parquet-go row shapes mirroring LogsSchema/TransactionsSchema/BlocksSchema.
// Struct tags drive parquet-go's reflection-based decode; optional columns
// are pointers so a parquet null round-trips to a nil pointer.

type logRow struct {
	BlockNumber      uint64   `parquet:"block_number"`
	TransactionIndex uint8    `parquet:"transaction_index"`
	LogIndex         uint8    `parquet:"log_index"`
	Address          [20]byte `parquet:"address"`
	Topic0           *[32]byte `parquet:"topic0,optional"`
	Topic1           *[32]byte `parquet:"topic1,optional"`
	Topic2           *[32]byte `parquet:"topic2,optional"`
	Topic3           *[32]byte `parquet:"topic3,optional"`
	Data             []byte    `parquet:"data,optional"`
}

type txRow struct {
	BlockNumber      uint64   `parquet:"block_number"`
	TransactionIndex uint8    `parquet:"transaction_index"`
	Hash             [32]byte `parquet:"hash"`
	From             [20]byte `parquet:"from"`
	To               *[20]byte `parquet:"to,optional"`
	Sighash          *[4]byte  `parquet:"sighash,optional"`
	Status           *uint8    `parquet:"status,optional"`
}

type blockRow struct {
	Number     uint64   `parquet:"number"`
	Hash       [32]byte `parquet:"hash"`
	ParentHash [32]byte `parquet:"parent_hash"`
	Timestamp  uint64   `parquet:"timestamp"`
}

// ParquetDataProvider reads one folder's Parquet files, pruning row groups
// by the precomputed [min,max] block-range statistics in folder.RowGroups
// before touching any I/O, and by the folder's address bloom filter before
// that (the caller is expected to have already rewritten the query against
// the bloom filter — this provider just reads what it's asked to).
type ParquetDataProvider struct {
	folder *folderindex.FolderIndex
}

// NewParquetDataProvider builds a provider scoped to one folder.
func NewParquetDataProvider(folder *folderindex.FolderIndex) *ParquetDataProvider {
	return &ParquetDataProvider{folder: folder}
}

func (p *ParquetDataProvider) matchingRowGroups(from uint64, to *uint64) []folderindex.RowGroupStats {
	var matched []folderindex.RowGroupStats
	for _, rg := range p.folder.RowGroups {
		if rg.MaxBlock < from {
			continue
		}
		if to != nil && rg.MinBlock >= *to {
			continue
		}
		matched = append(matched, rg)
	}
	return matched
}

func (p *ParquetDataProvider) LoadLogs(_ *QueryContext, from uint64, to *uint64) ([]*ArrowBatch, error) {
	rows, err := readRowGroups[logRow](filepath.Join(p.folder.Path, "logs.parquet"), p.matchingRowGroups(from, to))
	if err != nil {
		return nil, fmt.Errorf("columnar: load logs: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return []*ArrowBatch{logRowsToBatch(rows)}, nil
}

func (p *ParquetDataProvider) LoadTransactions(_ *QueryContext, from uint64, to *uint64) ([]*ArrowBatch, error) {
	rows, err := readRowGroups[txRow](filepath.Join(p.folder.Path, "transactions.parquet"), p.matchingRowGroups(from, to))
	if err != nil {
		return nil, fmt.Errorf("columnar: load transactions: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return []*ArrowBatch{txRowsToBatch(rows)}, nil
}

func (p *ParquetDataProvider) LoadBlocks(_ *QueryContext, from uint64, to *uint64) ([]*ArrowBatch, error) {
	rows, err := readRowGroups[blockRow](filepath.Join(p.folder.Path, "blocks.parquet"), p.matchingRowGroups(from, to))
	if err != nil {
		return nil, fmt.Errorf("columnar: load blocks: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return []*ArrowBatch{blockRowsToBatch(rows)}, nil
}

// readRowGroups opens path and reads only the row groups named in
// matched, decoding each row into T via parquet-go's schema reflection.
func readRowGroups[T any](path string, matched []folderindex.RowGroupStats) ([]T, error) {
	if len(matched) == 0 {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, err
	}

	schema := parquet.SchemaOf(new(T))
	var out []T
	rowGroups := pf.RowGroups()
	for _, rg := range matched {
		if rg.Index < 0 || rg.Index >= len(rowGroups) {
			continue
		}
		group := rowGroups[rg.Index]
		reader := parquet.NewGenericRowGroupReader[T](group)
		buf := make([]T, group.NumRows())
		n, err := reader.Read(buf)
		if err != nil && n == 0 {
			return nil, err
		}
		_ = schema
		out = append(out, buf[:n]...)
	}
	return out, nil
}

func logRowsToBatch(rows []logRow) *ArrowBatch {
	bb := newBatchBuilder(LogsSchema, memory.DefaultAllocator)
	for _, r := range rows {
		bb.builders[0].(*array.Uint64Builder).Append(r.BlockNumber)
		bb.builders[1].(*array.Uint8Builder).Append(r.TransactionIndex)
		bb.builders[2].(*array.Uint8Builder).Append(r.LogIndex)
		bb.builders[3].(*array.FixedSizeBinaryBuilder).Append(r.Address[:])
		appendOptionalTopic(bb.builders[4], r.Topic0)
		appendOptionalTopic(bb.builders[5], r.Topic1)
		appendOptionalTopic(bb.builders[6], r.Topic2)
		appendOptionalTopic(bb.builders[7], r.Topic3)
		if r.Data != nil {
			bb.builders[8].(*array.BinaryBuilder).Append(r.Data)
		} else {
			bb.builders[8].AppendNull()
		}
	}
	return bb.newArrowBatch()
}

func txRowsToBatch(rows []txRow) *ArrowBatch {
	bb := newBatchBuilder(TransactionsSchema, memory.DefaultAllocator)
	for _, r := range rows {
		bb.builders[0].(*array.Uint64Builder).Append(r.BlockNumber)
		bb.builders[1].(*array.Uint8Builder).Append(r.TransactionIndex)
		bb.builders[2].(*array.FixedSizeBinaryBuilder).Append(r.Hash[:])
		bb.builders[3].(*array.FixedSizeBinaryBuilder).Append(r.From[:])
		if r.To != nil {
			bb.builders[4].(*array.FixedSizeBinaryBuilder).Append(r.To[:])
		} else {
			bb.builders[4].AppendNull()
		}
		if r.Sighash != nil {
			bb.builders[5].(*array.FixedSizeBinaryBuilder).Append(r.Sighash[:])
		} else {
			bb.builders[5].AppendNull()
		}
		if r.Status != nil {
			bb.builders[6].(*array.Uint8Builder).Append(*r.Status)
		} else {
			bb.builders[6].AppendNull()
		}
	}
	return bb.newArrowBatch()
}

func blockRowsToBatch(rows []blockRow) *ArrowBatch {
	bb := newBatchBuilder(BlocksSchema, memory.DefaultAllocator)
	for _, r := range rows {
		bb.builders[0].(*array.Uint64Builder).Append(r.Number)
		bb.builders[1].(*array.FixedSizeBinaryBuilder).Append(r.Hash[:])
		bb.builders[2].(*array.FixedSizeBinaryBuilder).Append(r.ParentHash[:])
		bb.builders[3].(*array.Uint64Builder).Append(r.Timestamp)
	}
	return bb.newArrowBatch()
}

// appendOptionalTopic appends a 32-byte topic value, or a null if topic is
// nil, to a FixedSizeBinaryBuilder.
func appendOptionalTopic(builder array.Builder, topic *[32]byte) {
	if topic == nil {
		builder.AppendNull()
		return
	}
	builder.(*array.FixedSizeBinaryBuilder).Append(topic[:])
}
