// Package queryhandler drives one query end to end: walking the cold
// Parquet folder index oldest-to-newest, pruning each folder's selections
// against its address bloom filter before paying for any row-group I/O,
// executing the columnar pipeline per folder, and finally querying the
// in-memory tail once the cold store is exhausted.
package queryhandler

import (
	"context"
	"log"
	"time"

	"archived/internal/columnar"
	"archived/internal/config"
	"archived/internal/folderindex"
	"archived/internal/metrics"
)

// QueryResult is one partial answer to a running query, with the block
// number the next partial (or a resumed query) should start from.
type QueryResult struct {
	Data      columnar.QueryResultData
	NextBlock uint64
}

// Result wraps one channel element: either a partial QueryResult, or a
// terminal error. The channel closes after an error or after the stream is
// exhausted, whichever comes first.
type Result struct {
	Value *QueryResult
	Err   error
}

// QueryHandler owns the cold folder index root and the in-memory tail
// provider, and answers archive_height / query requests against both.
type QueryHandler struct {
	rootDir     string
	inMem       *columnar.InMemDataProvider
	timeLimit   time.Duration
	coldHeight  func() uint64 // highest block number the cold store has flushed, exclusive
}

// New builds a QueryHandler. coldHeight reports the cold store's current
// exclusive frontier (the ingestion pipeline's own bookkeeping, out of
// scope here); it may be nil if there is no cold store yet.
func New(rootDir string, inMem *columnar.InMemDataProvider, cfg config.QueryConfig, coldHeight func() uint64) *QueryHandler {
	if coldHeight == nil {
		coldHeight = func() uint64 { return 0 }
	}
	return &QueryHandler{
		rootDir:    rootDir,
		inMem:      inMem,
		timeLimit:  time.Duration(cfg.TimeLimitMs) * time.Millisecond,
		coldHeight: coldHeight,
	}
}

// ArchiveHeight returns the highest block number known to either store, or
// nil when neither has ingested anything yet.
func (h *QueryHandler) ArchiveHeight() *uint64 {
	inMemTo := h.inMem.ToBlock()
	cold := h.coldHeight()
	top := inMemTo
	if cold > top {
		top = cold
	}
	if top == 0 {
		return nil
	}
	height := top - 1
	return &height
}

// Handle streams partial results for query. The returned channel has
// capacity 1: a slow consumer blocks the producer rather than buffering an
// unbounded backlog. Cancelling ctx stops the producer at its next send or
// folder boundary and releases any open Parquet file handles.
func (h *QueryHandler) Handle(ctx context.Context, query *columnar.Query) <-chan Result {
	out := make(chan Result, 1)
	go h.run(ctx, query, out)
	return out
}

func (h *QueryHandler) run(ctx context.Context, query *columnar.Query, out chan<- Result) {
	defer close(out)

	deadline := time.Now().Add(h.timeLimit)
	if h.timeLimit <= 0 {
		deadline = time.Time{}
	}

	iter, err := folderindex.Open(h.rootDir, query.FromBlock, query.ToBlock)
	if err != nil {
		h.send(ctx, out, Result{Err: err})
		return
	}

	next := query.FromBlock
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			log.Printf("[queryhandler] time_limit_ms exceeded, stopping at block %d", next)
			return
		}

		folder, ok := iter.Next()
		if !ok {
			break
		}

		result, err := h.handleFolder(query, folder)
		if err != nil {
			h.send(ctx, out, Result{Err: err})
			return
		}
		if !h.send(ctx, out, Result{Value: result}) {
			return
		}
		next = folder.Hi
	}

	h.handleInMemTail(ctx, query, next, out)
}

// handleFolder prunes query against one folder's bloom filter and, if
// anything survives, executes the columnar pipeline over that folder's
// Parquet files.
func (h *QueryHandler) handleFolder(query *columnar.Query, folder *folderindex.FolderIndex) (*QueryResult, error) {
	start := time.Now()
	defer func() { metrics.FolderScanDuration.Observe(time.Since(start).Seconds()) }()

	pruned := pruneQuery(query, folder)

	noLogs := len(pruned.Logs) == 0
	noTxs := len(pruned.Transactions) == 0
	if noLogs && noTxs && !query.IncludeAllBlocks {
		metrics.FoldersPrunedTotal.Inc()
		return &QueryResult{NextBlock: folder.Hi}, nil
	}

	from := query.FromBlock
	if folder.Lo > from {
		from = folder.Lo
	}
	to := folder.Hi
	if query.ToBlock != nil && *query.ToBlock < to {
		to = *query.ToBlock
	}

	provider := columnar.NewParquetDataProvider(folder)
	executor := columnar.NewQueryExecutor(provider)
	data, err := executor.Execute(pruned, from, &to)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Data: data, NextBlock: to}, nil
}

func (h *QueryHandler) handleInMemTail(ctx context.Context, query *columnar.Query, next uint64, out chan<- Result) {
	toBlock := h.inMem.ToBlock()
	if toBlock <= next {
		return
	}
	capped := toBlock
	if query.ToBlock != nil && *query.ToBlock < capped {
		capped = *query.ToBlock
	}
	if capped <= next {
		return
	}

	executor := columnar.NewQueryExecutor(h.inMem)
	data, err := executor.Execute(query, next, &capped)
	if err != nil {
		h.send(ctx, out, Result{Err: err})
		return
	}
	h.send(ctx, out, Result{Value: &QueryResult{Data: data, NextBlock: capped}})
}

// send delivers r, returning false if ctx was cancelled first (the
// caller's cue to stop producing).
func (h *QueryHandler) send(ctx context.Context, out chan<- Result, r Result) bool {
	select {
	case out <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// pruneQuery rewrites query's address-bearing selections through folder's
// bloom filter. A selection whose address set was non-empty but prunes to
// nothing is dropped entirely (it cannot match anything in this folder); a
// selection with no address constraint is a wildcard and passes through
// unchanged.
func pruneQuery(query *columnar.Query, folder *folderindex.FolderIndex) *columnar.Query {
	pruned := *query
	pruned.Logs = pruneLogSelections(query.Logs, folder)
	pruned.Transactions = pruneTxSelections(query.Transactions, folder)
	return &pruned
}

func pruneLogSelections(selections []columnar.LogSelection, folder *folderindex.FolderIndex) []columnar.LogSelection {
	var kept []columnar.LogSelection
	for _, sel := range selections {
		if len(sel.Address) > 0 {
			survivors := folder.PruneAddresses(sel.Address)
			if len(survivors) == 0 {
				continue
			}
			sel.Address = survivors
		}
		kept = append(kept, sel)
	}
	return kept
}

func pruneTxSelections(selections []columnar.TxSelection, folder *folderindex.FolderIndex) []columnar.TxSelection {
	var kept []columnar.TxSelection
	for _, sel := range selections {
		drop := false
		if len(sel.From) > 0 {
			survivors := folder.PruneAddresses(sel.From)
			if len(survivors) == 0 {
				drop = true
			}
			sel.From = survivors
		}
		if !drop && len(sel.To) > 0 {
			survivors := folder.PruneAddresses(sel.To)
			if len(survivors) == 0 {
				drop = true
			}
			sel.To = survivors
		}
		if drop {
			continue
		}
		kept = append(kept, sel)
	}
	return kept
}
