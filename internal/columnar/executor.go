package columnar

// QueryResultData holds one partial result's batches per entity. A nil slice
// means that entity was not requested or produced no rows.
type QueryResultData struct {
	Logs         []*ArrowBatch
	Transactions []*ArrowBatch
	Blocks       []*ArrowBatch
}

// Empty reports whether every entity of this result is empty, the signal
// QueryHandler uses to decide whether a partial is worth emitting.
func (d QueryResultData) Empty() bool {
	return len(d.Logs) == 0 && len(d.Transactions) == 0 && len(d.Blocks) == 0
}

// QueryExecutor runs the logs → transactions → blocks pipeline over batches
// a DataProvider has already loaded for one folder (or the in-memory
// buffer), propagating row membership forward through a QueryContext.
type QueryExecutor struct {
	provider DataProvider
}

// NewQueryExecutor wraps provider for one execution. A fresh instance (or a
// fresh QueryContext) is expected per folder/in-memory pass, matching the
// provider's own per-pass loading.
func NewQueryExecutor(provider DataProvider) *QueryExecutor {
	return &QueryExecutor{provider: provider}
}

// Execute runs the three phases against query over [from, to), returning
// whichever per-entity batches survived filtering and projection.
func (e *QueryExecutor) Execute(query *Query, from uint64, to *uint64) (QueryResultData, error) {
	ctx := NewQueryContext()
	var result QueryResultData

	if len(query.Logs) > 0 {
		logs, err := e.runLogsPhase(ctx, query, from, to)
		if err != nil {
			return QueryResultData{}, err
		}
		result.Logs = logs
	}

	if len(query.Transactions) > 0 || ctx.TransactionSet != nil && len(ctx.TransactionSet) > 0 {
		txs, err := e.runTransactionsPhase(ctx, query, from, to)
		if err != nil {
			return QueryResultData{}, err
		}
		result.Transactions = txs
	}

	wantBlocks := len(query.FieldSelection.Block) > 0 && (query.IncludeAllBlocks || ctx.BlockSet.GetCardinality() > 0)
	if wantBlocks {
		blocks, err := e.runBlocksPhase(ctx, query, from, to)
		if err != nil {
			return QueryResultData{}, err
		}
		result.Blocks = blocks
	}

	return result, nil
}

func (e *QueryExecutor) runLogsPhase(ctx *QueryContext, query *Query, from uint64, to *uint64) ([]*ArrowBatch, error) {
	batches, err := e.provider.LoadLogs(ctx, from, to)
	if err != nil {
		return nil, err
	}
	defer releaseBatches(batches)

	var out []*ArrowBatch
	for _, batch := range batches {
		mask := andMask(RangeMask(batch, "block_number", from, to), LogSelectionsMask(batch, query.Logs))
		filtered := FilterBatch(batch, mask)
		if filtered.Len == 0 {
			filtered.Release()
			continue
		}

		blockCol := filtered.ColumnByName("block_number")
		idxCol := filtered.ColumnByName("transaction_index")
		for i := 0; i < filtered.Len; i++ {
			block := arrowUint64At(blockCol, i)
			idx := arrowUint8At(idxCol, i)
			ctx.addTransaction(block, uint32(idx))
			ctx.addBlock(block)
		}

		if len(query.FieldSelection.Log) == 0 {
			filtered.Release()
			continue
		}
		projected := ProjectBatch(filtered, query.FieldSelection.Log)
		filtered.Release()
		out = append(out, projected)
	}
	return out, nil
}

func (e *QueryExecutor) runTransactionsPhase(ctx *QueryContext, query *Query, from uint64, to *uint64) ([]*ArrowBatch, error) {
	batches, err := e.provider.LoadTransactions(ctx, from, to)
	if err != nil {
		return nil, err
	}
	defer releaseBatches(batches)

	var out []*ArrowBatch
	for _, batch := range batches {
		mask := andMask(RangeMask(batch, "block_number", from, to), TxSelectionsMask(batch, query.Transactions))
		orInto(mask, InSetTxKeys(batch, "block_number", "transaction_index", ctx.TransactionSet))

		filtered := FilterBatch(batch, mask)
		if filtered.Len == 0 {
			filtered.Release()
			continue
		}

		blockCol := filtered.ColumnByName("block_number")
		for i := 0; i < filtered.Len; i++ {
			ctx.addBlock(arrowUint64At(blockCol, i))
		}

		if len(query.FieldSelection.Transaction) == 0 {
			filtered.Release()
			continue
		}
		projected := ProjectBatch(filtered, query.FieldSelection.Transaction)
		filtered.Release()
		out = append(out, projected)
	}
	return out, nil
}

func (e *QueryExecutor) runBlocksPhase(ctx *QueryContext, query *Query, from uint64, to *uint64) ([]*ArrowBatch, error) {
	batches, err := e.provider.LoadBlocks(ctx, from, to)
	if err != nil {
		return nil, err
	}
	defer releaseBatches(batches)

	var out []*ArrowBatch
	for _, batch := range batches {
		mask := RangeMask(batch, "number", from, to)
		if !query.IncludeAllBlocks {
			mask = andMask(mask, InSetU64(batch, "number", ctx.BlockSet))
		}

		filtered := FilterBatch(batch, mask)
		if filtered.Len == 0 {
			filtered.Release()
			continue
		}
		if len(query.FieldSelection.Block) == 0 {
			filtered.Release()
			continue
		}
		projected := ProjectBatch(filtered, query.FieldSelection.Block)
		filtered.Release()
		out = append(out, projected)
	}
	return out, nil
}

func releaseBatches(batches []*ArrowBatch) {
	for _, b := range batches {
		b.Release()
	}
}

func arrowUint64At(col interface{ IsNull(int) bool }, i int) uint64 {
	type valuer interface {
		Value(int) uint64
	}
	if v, ok := col.(valuer); ok && !col.IsNull(i) {
		return v.Value(i)
	}
	return 0
}

func arrowUint8At(col interface{ IsNull(int) bool }, i int) uint8 {
	type valuer interface {
		Value(int) uint8
	}
	if v, ok := col.(valuer); ok && !col.IsNull(i) {
		return v.Value(i)
	}
	return 0
}
