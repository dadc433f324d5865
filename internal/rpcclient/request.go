package rpcclient

import (
	"fmt"

	"archived/internal/config"
)

// RequestKind tags the variant carried by an RpcRequest.
type RequestKind int

const (
	KindGetBlockNumber RequestKind = iota
	KindGetBlockByNumber
	KindGetTransactionReceipt
	KindGetLogs
	KindBatch
)

// RpcRequest is one logical upstream call. Exactly the fields relevant to
// its Kind are populated; Batch carries Members in call order.
type RpcRequest struct {
	Kind RequestKind

	BlockNumber uint64 // GetBlockByNumber, GetTransactionReceipt (block part)
	TxHash      string // GetTransactionReceipt

	FromBlock uint64 // GetLogs
	ToBlock   uint64 // GetLogs, inclusive

	Members []RpcRequest // Batch
}

func GetBlockNumber() RpcRequest { return RpcRequest{Kind: KindGetBlockNumber} }

func GetBlockByNumber(n uint64) RpcRequest {
	return RpcRequest{Kind: KindGetBlockByNumber, BlockNumber: n}
}

func GetTransactionReceipt(block uint64, txHash string) RpcRequest {
	return RpcRequest{Kind: KindGetTransactionReceipt, BlockNumber: block, TxHash: txHash}
}

func GetLogs(from, to uint64) RpcRequest {
	return RpcRequest{Kind: KindGetLogs, FromBlock: from, ToBlock: to}
}

func Batch(members ...RpcRequest) RpcRequest {
	return RpcRequest{Kind: KindBatch, Members: members}
}

// RequiredTip returns the smallest block an endpoint must have observed to
// serve req, or nil when the request carries no height requirement.
func RequiredTip(req RpcRequest) *uint64 {
	switch req.Kind {
	case KindGetBlockNumber:
		return nil
	case KindGetBlockByNumber:
		v := req.BlockNumber
		return &v
	case KindGetTransactionReceipt:
		v := req.BlockNumber
		return &v
	case KindGetLogs:
		v := req.ToBlock
		return &v
	case KindBatch:
		var max *uint64
		for _, m := range req.Members {
			t := RequiredTip(m)
			if t == nil {
				continue
			}
			if max == nil || *t > *max {
				v := *t
				max = &v
			}
		}
		return max
	default:
		return nil
	}
}

// neededReqs computes the cost of a single non-batch request in isolation —
// the number of underlying HTTP calls it would take standing alone.
func neededReqs(req RpcRequest, rangeLimit int) int {
	if req.Kind != KindGetLogs {
		return 1
	}
	span := req.ToBlock - req.FromBlock + 1
	return ceilDiv(span, uint64(rangeLimit))
}

// ceilDiv computes ceil(a/b) as (a + b - 1) / b. Parenthesize the numerator:
// a + b - 1 / b divides first and silently overcounts.
func ceilDiv(a, b uint64) int {
	if b == 0 {
		return int(a)
	}
	return int((a + b - 1) / b)
}

// Cost computes the number of underlying upstream calls req will incur,
// after batch splitting and GetLogs range splitting, per the LimitConfig.
func Cost(req RpcRequest, limits config.LimitConfig) int {
	switch req.Kind {
	case KindBatch:
		return batchCost(req.Members, limits)
	default:
		c := neededReqs(req, limits.GetLogsRangeLimit)
		if c < 1 {
			c = 1
		}
		return c
	}
}

// batchCost partitions members into chunks of BatchSizeLimit; each chunk
// costs one underlying HTTP call plus one extra per extra sub-request a
// member's own range splitting induces.
func batchCost(members []RpcRequest, limits config.LimitConfig) int {
	if len(members) == 0 {
		return 1
	}
	total := 0
	chunkSize := limits.BatchSizeLimit
	if chunkSize < 1 {
		chunkSize = 1
	}
	for start := 0; start < len(members); start += chunkSize {
		end := start + chunkSize
		if end > len(members) {
			end = len(members)
		}
		chunkCost := 1
		for _, m := range members[start:end] {
			memberCost := neededReqs(m, limits.GetLogsRangeLimit)
			if memberCost < 1 {
				memberCost = 1
			}
			chunkCost += memberCost - 1
		}
		total += chunkCost
	}
	if total < 1 {
		total = 1
	}
	return total
}

func (r RpcRequest) String() string {
	switch r.Kind {
	case KindGetBlockNumber:
		return "GetBlockNumber"
	case KindGetBlockByNumber:
		return fmt.Sprintf("GetBlockByNumber(%d)", r.BlockNumber)
	case KindGetTransactionReceipt:
		return fmt.Sprintf("GetTransactionReceipt(%d,%s)", r.BlockNumber, r.TxHash)
	case KindGetLogs:
		return fmt.Sprintf("GetLogs{%d,%d}", r.FromBlock, r.ToBlock)
	case KindBatch:
		return fmt.Sprintf("Batch(%d members)", len(r.Members))
	default:
		return "Unknown"
	}
}
