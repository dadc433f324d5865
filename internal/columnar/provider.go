package columnar

import "sync"

// DataProvider is the abstract source of Arrow batches QueryExecutor reads
// from. Two concrete variants exist: an in-memory tail and a Parquet-backed
// cold store with row-group pruning.
type DataProvider interface {
	LoadLogs(ctx *QueryContext, from uint64, to *uint64) ([]*ArrowBatch, error)
	LoadTransactions(ctx *QueryContext, from uint64, to *uint64) ([]*ArrowBatch, error)
	LoadBlocks(ctx *QueryContext, from uint64, to *uint64) ([]*ArrowBatch, error)
}

// InMemDataProvider serves the current in-memory buffer's columns directly;
// reads are zero-copy because they only Retain a reference to the held
// batch rather than copying it.
type InMemDataProvider struct {
	mu           sync.RWMutex
	logs         []*ArrowBatch
	transactions []*ArrowBatch
	blocks       []*ArrowBatch
	toBlock      uint64
}

// NewInMemDataProvider builds an empty in-memory provider.
func NewInMemDataProvider() *InMemDataProvider {
	return &InMemDataProvider{}
}

// Swap atomically replaces the buffer's contents — the single-writer path
// an ingestion pipeline (out of scope here) would call after flushing a new
// tail of blocks/transactions/logs.
func (p *InMemDataProvider) Swap(logs, transactions, blocks []*ArrowBatch, toBlock uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logs = logs
	p.transactions = transactions
	p.blocks = blocks
	p.toBlock = toBlock
}

// ToBlock reports the exclusive upper bound of the buffer's current range.
func (p *InMemDataProvider) ToBlock() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.toBlock
}

func (p *InMemDataProvider) LoadLogs(_ *QueryContext, _ uint64, _ *uint64) ([]*ArrowBatch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return retainAll(p.logs), nil
}

func (p *InMemDataProvider) LoadTransactions(_ *QueryContext, _ uint64, _ *uint64) ([]*ArrowBatch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return retainAll(p.transactions), nil
}

func (p *InMemDataProvider) LoadBlocks(_ *QueryContext, _ uint64, _ *uint64) ([]*ArrowBatch, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return retainAll(p.blocks), nil
}

func retainAll(batches []*ArrowBatch) []*ArrowBatch {
	out := make([]*ArrowBatch, len(batches))
	for i, b := range batches {
		b.Retain()
		out[i] = b
	}
	return out
}
