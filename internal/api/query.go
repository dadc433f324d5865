package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	query := req.toQuery()

	start := time.Now()
	timeLimit := time.Duration(s.cfg.ResponseTimeLimitMs) * time.Millisecond
	sizeLimit := s.cfg.ResponseSizeLimitMB * 1024 * 1024

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	if timeLimit > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, timeLimit)
		defer timeoutCancel()
	}

	stream := s.handler.Handle(ctx, query)

	resp := queryResponse{
		Data:          []partialJSON{},
		ArchiveHeight: s.handler.ArchiveHeight(),
	}

	approxSize := 0
	for res := range stream {
		if res.Err != nil {
			writeError(w, http.StatusInternalServerError, res.Err)
			return
		}
		resp.NextBlock = res.Value.NextBlock
		if res.Value.Data.Empty() {
			continue
		}

		partial := partialFromResult(res.Value.Data)
		resp.Data = append(resp.Data, partial)
		approxSize += estimatePartialSize(partial)

		if sizeLimit > 0 && int64(approxSize) >= sizeLimit {
			cancel()
			break
		}
	}

	resp.TotalTime = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, resp)
}

// writeError writes the plain-text error body the facade uses for every
// failure: "Something went wrong: <detail>".
func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, "Something went wrong: %v", err)
}

// estimatePartialSize gives a cheap, approximate byte count for a partial's
// contribution to the accumulated response body, used only to decide when
// response_size_limit_mb has been reached — not an exact serialized size.
func estimatePartialSize(p partialJSON) int {
	n := 0
	for _, rows := range [][]map[string]any{p.Logs, p.Transactions, p.Blocks} {
		for _, row := range rows {
			for k, v := range row {
				n += len(k) + 16
				if s, ok := v.(string); ok {
					n += len(s)
				}
			}
		}
	}
	return n
}
