package rpcclient

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"archived/internal/config"
)

// Client fans out RPC requests over a pool of Endpoints: it picks the first
// whose tip satisfies the request, rotating on failure. In the absence of
// tip/limit errors a round-robin cursor distributes load evenly.
type Client struct {
	endpoints []*Endpoint
	rr        uint32
}

// NewClient builds a Client from the given endpoint configs, dialing none
// of them eagerly — each Endpoint starts its own health watcher immediately.
func NewClient(cfgs []config.EndpointConfig) (*Client, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("rpcclient: at least one endpoint is required")
	}
	httpClient := &http.Client{Timeout: 30 * time.Second}
	endpoints := make([]*Endpoint, 0, len(cfgs))
	for _, cfg := range cfgs {
		endpoints = append(endpoints, NewEndpoint(cfg, httpClient))
	}
	return &Client{endpoints: endpoints}, nil
}

// Close stops every endpoint's background goroutines.
func (c *Client) Close() {
	for _, e := range c.endpoints {
		e.Close()
	}
}

// Send selects the first endpoint (starting from a rotating cursor) whose
// tip satisfies req, trying the next on EndpointTooBehind, EndpointLimitTooLow,
// or transport failure. It returns the last error if every endpoint fails.
func (c *Client) Send(ctx context.Context, req RpcRequest) (*RpcResponse, error) {
	n := len(c.endpoints)
	if n == 0 {
		return nil, fmt.Errorf("rpcclient: no endpoints configured")
	}

	start := int(atomic.AddUint32(&c.rr, 1) % uint32(n))
	var lastErr error
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		resp, err := c.endpoints[idx].Send(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryableOnNextEndpoint(err) {
			return nil, err
		}
	}
	return nil, lastErr
}

func isRetryableOnNextEndpoint(err error) bool {
	switch err.(type) {
	case *EndpointTooBehindError, *EndpointLimitTooLowError, *HttpRequestError:
		return true
	default:
		return false
	}
}

// ArchiveTip returns the highest tip currently observed across all healthy
// endpoints, or nil if none are healthy.
func (c *Client) ArchiveTip() *uint64 {
	var best *uint64
	for _, e := range c.endpoints {
		t := e.Tip()
		if t == nil {
			continue
		}
		if best == nil || *t > *best {
			v := *t
			best = &v
		}
	}
	return best
}

// Endpoints exposes the underlying endpoint pool for diagnostics (the
// /endpoints debug route).
func (c *Client) Endpoints() []*Endpoint {
	return c.endpoints
}
