package columnar

import "github.com/apache/arrow-go/v18/arrow"

var addr20 = &arrow.FixedSizeBinaryType{ByteWidth: 20}
var topic32 = &arrow.FixedSizeBinaryType{ByteWidth: 32}
var bytes4 = &arrow.FixedSizeBinaryType{ByteWidth: 4}
var hash32 = &arrow.FixedSizeBinaryType{ByteWidth: 32}

// LogsSchema is the canonical column layout for log batches.
var LogsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "transaction_index", Type: arrow.PrimitiveTypes.Uint8},
	{Name: "log_index", Type: arrow.PrimitiveTypes.Uint8},
	{Name: "address", Type: addr20},
	{Name: "topic0", Type: topic32, Nullable: true},
	{Name: "topic1", Type: topic32, Nullable: true},
	{Name: "topic2", Type: topic32, Nullable: true},
	{Name: "topic3", Type: topic32, Nullable: true},
	{Name: "data", Type: arrow.BinaryTypes.Binary, Nullable: true},
}, nil)

// TransactionsSchema is the canonical column layout for transaction batches.
var TransactionsSchema = arrow.NewSchema([]arrow.Field{
	{Name: "block_number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "transaction_index", Type: arrow.PrimitiveTypes.Uint8},
	{Name: "hash", Type: hash32},
	{Name: "from", Type: addr20},
	{Name: "to", Type: addr20, Nullable: true},
	{Name: "sighash", Type: bytes4, Nullable: true},
	{Name: "status", Type: arrow.PrimitiveTypes.Uint8, Nullable: true},
}, nil)

// BlocksSchema is the canonical column layout for block batches.
var BlocksSchema = arrow.NewSchema([]arrow.Field{
	{Name: "number", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "hash", Type: hash32},
	{Name: "parent_hash", Type: hash32},
	{Name: "timestamp", Type: arrow.PrimitiveTypes.Uint64},
}, nil)
