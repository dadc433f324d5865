package columnar

import "github.com/RoaringBitmap/roaring/roaring64"

// LogSelection is a conjunction of column-membership tests against the log
// entity; an empty axis is a wildcard, any non-empty axis restricts.
type LogSelection struct {
	Address [][]byte   // 20-byte addresses
	Topics  [4][][]byte // 32-byte topics, one set per topic position
}

// TxSelection is a conjunction of column-membership tests against the
// transaction entity.
type TxSelection struct {
	From    [][]byte // 20-byte addresses
	To      [][]byte // 20-byte addresses
	Sighash [][]byte // 4-byte selectors
	Status  *uint8
}

// FieldSelection names the columns to project per entity; empty means "no
// columns from this entity", not "all columns".
type FieldSelection struct {
	Block       []string
	Transaction []string
	Log         []string
}

// Query is a declarative block/transaction/log selection. ToBlock is
// exclusive when set; FromBlock is always inclusive.
type Query struct {
	FromBlock         uint64
	ToBlock           *uint64
	Logs              []LogSelection
	Transactions      []TxSelection
	FieldSelection    FieldSelection
	IncludeAllBlocks  bool
}

// TxKey identifies one transaction by its block and in-block index.
type TxKey struct {
	Block uint64
	Index uint32
}

// QueryContext carries cross-entity state through one query's logs → tx →
// blocks pipeline, populated during earlier phases and consumed by later
// ones. BlockSet is a Roaring bitmap (compact ordered uint64 membership);
// TransactionSet pairs (block, tx_index) aren't representable in a single
// Roaring bitmap, so they're kept as a plain set.
type QueryContext struct {
	BlockSet       *roaring64.Bitmap
	TransactionSet map[TxKey]struct{}
}

// NewQueryContext returns an empty QueryContext.
func NewQueryContext() *QueryContext {
	return &QueryContext{
		BlockSet:       roaring64.New(),
		TransactionSet: make(map[TxKey]struct{}),
	}
}

func (c *QueryContext) addBlock(n uint64) { c.BlockSet.Add(n) }

func (c *QueryContext) addTransaction(block uint64, idx uint32) {
	c.TransactionSet[TxKey{Block: block, Index: idx}] = struct{}{}
}

func (c *QueryContext) hasBlock(n uint64) bool { return c.BlockSet.Contains(n) }

func (c *QueryContext) hasTransaction(block uint64, idx uint32) bool {
	_, ok := c.TransactionSet[TxKey{Block: block, Index: idx}]
	return ok
}
