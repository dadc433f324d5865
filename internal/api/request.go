package api

import (
	"encoding/hex"
	"strings"

	"archived/internal/columnar"
)

// queryRequest mirrors the wire shape of POST /query's body.
type queryRequest struct {
	FromBlock        uint64             `json:"from_block"`
	ToBlock          *uint64            `json:"to_block,omitempty"`
	Logs             []logSelectionJSON `json:"logs,omitempty"`
	Transactions     []txSelectionJSON  `json:"transactions,omitempty"`
	FieldSelection   fieldSelectionJSON `json:"field_selection"`
	IncludeAllBlocks bool               `json:"include_all_blocks"`
}

type logSelectionJSON struct {
	Address []string    `json:"address,omitempty"`
	Topics  [][]string  `json:"topics,omitempty"`
}

type txSelectionJSON struct {
	From    []string `json:"from,omitempty"`
	To      []string `json:"to,omitempty"`
	Sighash []string `json:"sighash,omitempty"`
	Status  *uint8   `json:"status,omitempty"`
}

type fieldSelectionJSON struct {
	Block       []string `json:"block,omitempty"`
	Transaction []string `json:"transaction,omitempty"`
	Log         []string `json:"log,omitempty"`
}

func (q *queryRequest) toQuery() *columnar.Query {
	out := &columnar.Query{
		FromBlock:        q.FromBlock,
		ToBlock:          q.ToBlock,
		IncludeAllBlocks: q.IncludeAllBlocks,
		FieldSelection: columnar.FieldSelection{
			Block:       q.FieldSelection.Block,
			Transaction: q.FieldSelection.Transaction,
			Log:         q.FieldSelection.Log,
		},
	}

	for _, sel := range q.Logs {
		ls := columnar.LogSelection{Address: hexSliceToBytes(sel.Address)}
		for i := 0; i < 4 && i < len(sel.Topics); i++ {
			ls.Topics[i] = hexSliceToBytes(sel.Topics[i])
		}
		out.Logs = append(out.Logs, ls)
	}

	for _, sel := range q.Transactions {
		out.Transactions = append(out.Transactions, columnar.TxSelection{
			From:    hexSliceToBytes(sel.From),
			To:      hexSliceToBytes(sel.To),
			Sighash: hexSliceToBytes(sel.Sighash),
			Status:  sel.Status,
		})
	}

	return out
}

func hexSliceToBytes(values []string) [][]byte {
	if len(values) == 0 {
		return nil
	}
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		if b := hexToBytes(v); b != nil {
			out = append(out, b)
		}
	}
	return out
}

func hexToBytes(input string) []byte {
	trimmed := strings.TrimPrefix(strings.ToLower(input), "0x")
	if trimmed == "" {
		return nil
	}
	out, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil
	}
	return out
}
