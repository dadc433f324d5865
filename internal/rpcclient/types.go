package rpcclient

// Addr20 is a 20-byte account/contract address.
type Addr20 [20]byte

// Topic32 is a 32-byte log topic.
type Topic32 [32]byte

// Bytes4 is a 4-byte function selector (a transaction's "sighash").
type Bytes4 [4]byte

// RpcResponse is the decoded result of one underlying JSON-RPC call, kept
// as raw JSON so the caller (ingestion, out of scope here) can decode into
// whatever shape it needs.
type RpcResponse struct {
	Raw     []byte
	Results [][]byte // populated when the originating request was a Batch
}
