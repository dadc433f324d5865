package api

import (
	"encoding/json"
	"testing"
)

func TestQueryRequestToQueryHexDecoding(t *testing.T) {
	body := `{
		"from_block": 10,
		"to_block": 20,
		"logs": [{"address": ["0xAA0000000000000000000000000000000000000b"]}],
		"field_selection": {"log": ["address"]}
	}`
	var req queryRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	query := req.toQuery()
	if query.FromBlock != 10 || query.ToBlock == nil || *query.ToBlock != 20 {
		t.Fatalf("unexpected range: from=%d to=%v", query.FromBlock, query.ToBlock)
	}
	if len(query.Logs) != 1 || len(query.Logs[0].Address) != 1 {
		t.Fatalf("expected one log selection with one decoded address, got %+v", query.Logs)
	}
	if query.Logs[0].Address[0][19] != 0x0b {
		t.Fatalf("address decoded incorrectly: %x", query.Logs[0].Address[0])
	}
}

func TestHexToBytesRejectsGarbage(t *testing.T) {
	if b := hexToBytes("not-hex"); b != nil {
		t.Fatalf("expected nil for invalid hex, got %x", b)
	}
	if b := hexToBytes(""); b != nil {
		t.Fatalf("expected nil for empty string, got %x", b)
	}
}
