package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type jsonrpcEnvelope struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type jsonrpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonrpcReply struct {
	ID     int             `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

// buildEnvelope converts one non-batch RpcRequest into its JSON-RPC 2.0
// method name and params, id 1 (single calls are never pipelined with a
// sibling, so a fixed id is fine; Batch members get sequential ids).
func buildEnvelope(id int, req RpcRequest) jsonrpcEnvelope {
	switch req.Kind {
	case KindGetBlockNumber:
		return jsonrpcEnvelope{JSONRPC: "2.0", ID: id, Method: "eth_blockNumber", Params: []interface{}{}}
	case KindGetBlockByNumber:
		return jsonrpcEnvelope{JSONRPC: "2.0", ID: id, Method: "eth_getBlockByNumber",
			Params: []interface{}{hexBlockTag(req.BlockNumber), true}}
	case KindGetTransactionReceipt:
		return jsonrpcEnvelope{JSONRPC: "2.0", ID: id, Method: "eth_getTransactionReceipt",
			Params: []interface{}{req.TxHash}}
	case KindGetLogs:
		return jsonrpcEnvelope{JSONRPC: "2.0", ID: id, Method: "eth_getLogs",
			Params: []interface{}{map[string]string{
				"fromBlock": hexBlockTag(req.FromBlock),
				"toBlock":   hexBlockTag(req.ToBlock),
			}}}
	default:
		return jsonrpcEnvelope{JSONRPC: "2.0", ID: id, Method: "eth_blockNumber", Params: []interface{}{}}
	}
}

func hexBlockTag(n uint64) string {
	return fmt.Sprintf("0x%x", n)
}

// sendRpcRequest serializes req to its JSON-RPC envelope(s), POSTs to url,
// and parses the reply. A Batch produces a JSON array body and expects an
// array reply, preserving member order in RpcResponse.Results.
func sendRpcRequest(ctx context.Context, httpClient *http.Client, url string, req RpcRequest) (*RpcResponse, error) {
	var body []byte
	var err error

	if req.Kind == KindBatch {
		envs := make([]jsonrpcEnvelope, len(req.Members))
		for i, m := range req.Members {
			envs[i] = buildEnvelope(i+1, m)
		}
		body, err = json.Marshal(envs)
	} else {
		body, err = json.Marshal(buildEnvelope(1, req))
	}
	if err != nil {
		return nil, fmt.Errorf("encode rpc request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &HttpRequestError{URL: url, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return nil, &HttpRequestError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &HttpRequestError{URL: url, Err: err}
	}

	if req.Kind == KindBatch {
		var replies []jsonrpcReply
		if err := json.Unmarshal(respBody, &replies); err != nil {
			return nil, &InvalidRPCResponseError{URL: url, Body: string(respBody)}
		}
		results := make([][]byte, len(replies))
		for i, r := range replies {
			if r.Error != nil {
				return nil, &InvalidRPCResponseError{URL: url, Body: r.Error.Message}
			}
			// Replies may arrive in any order; member i was sent with id i+1.
			pos := i
			if r.ID >= 1 && r.ID <= len(results) {
				pos = r.ID - 1
			}
			results[pos] = []byte(r.Result)
		}
		return &RpcResponse{Raw: respBody, Results: results}, nil
	}

	var reply jsonrpcReply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		return nil, &InvalidRPCResponseError{URL: url, Body: string(respBody)}
	}
	if reply.Error != nil {
		return nil, &InvalidRPCResponseError{URL: url, Body: reply.Error.Message}
	}
	return &RpcResponse{Raw: []byte(reply.Result)}, nil
}
