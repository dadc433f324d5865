package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"archived/internal/config"
	"archived/internal/metrics"
)

// job is one enqueued unit of work awaiting admission and dispatch.
type job struct {
	req   RpcRequest
	reply chan jobResult
}

type jobResult struct {
	resp *RpcResponse
	err  error
}

// Endpoint owns one upstream JSON-RPC node: its observed tip, a RateWindow,
// and a single-slot job queue drained by a background listener. The tip is
// single-writer (the health watcher) / many-reader (send callers), guarded
// by an atomic pointer so reads never block on the writer.
type Endpoint struct {
	url        string
	limits     config.LimitConfig
	httpClient *http.Client
	window     *RateWindow
	queue      chan job

	tip atomic.Pointer[uint64] // nil-equivalent: stored as nil pointer means unhealthy

	refreshInterval time.Duration
	stop            chan struct{}
}

// NewEndpoint constructs an Endpoint and starts its health watcher and queue
// listener goroutines. Callers must call Close to stop them.
func NewEndpoint(cfg config.EndpointConfig, httpClient *http.Client) *Endpoint {
	e := &Endpoint{
		url:             cfg.URL,
		limits:          cfg.Limits,
		httpClient:      httpClient,
		window:          NewRateWindow(cfg.Limits.ReqLimit, cfg.Limits.ReqLimitWindowMs),
		queue:           make(chan job, 1), // single-slot queue
		refreshInterval: time.Duration(cfg.StatusRefreshInterval) * time.Second,
		stop:            make(chan struct{}),
	}
	go e.healthWatcher()
	go e.queueListener()
	return e
}

// URL reports the endpoint's upstream address.
func (e *Endpoint) URL() string { return e.url }

// Tip returns the endpoint's last observed chain height, or nil if the
// endpoint is currently considered unhealthy.
func (e *Endpoint) Tip() *uint64 {
	return e.tip.Load()
}

// Close stops the endpoint's background goroutines.
func (e *Endpoint) Close() {
	close(e.stop)
}

func (e *Endpoint) healthWatcher() {
	if e.refreshInterval <= 0 {
		e.refreshInterval = 10 * time.Second
	}
	ticker := time.NewTicker(e.refreshInterval)
	defer ticker.Stop()

	e.refreshTip()
	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.refreshTip()
		}
	}
}

// refreshTip bypasses the rate limiter and single-slot queue — it is
// control traffic, issued directly via the low-level send path.
func (e *Endpoint) refreshTip() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := sendRpcRequest(ctx, e.httpClient, e.url, GetBlockNumber())
	if err != nil {
		log.Printf("[rpcclient] endpoint %s health check failed: %v", e.url, err)
		e.tip.Store(nil)
		return
	}
	height, err := decodeHexUint(resp.Raw)
	if err != nil {
		log.Printf("[rpcclient] endpoint %s health check returned invalid height: %v", e.url, err)
		e.tip.Store(nil)
		return
	}
	e.tip.Store(&height)
}

func decodeHexUint(raw []byte) (uint64, error) {
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return 0, err
	}
	var v uint64
	_, err := fmt.Sscanf(hexStr, "0x%x", &v)
	return v, err
}

func (e *Endpoint) queueListener() {
	for {
		select {
		case <-e.stop:
			return
		case j := <-e.queue:
			cost := Cost(j.req, e.limits)
			if err := e.window.Admit(cost); err != nil {
				metrics.RequestsRejected.WithLabelValues(e.url).Add(float64(cost))
				j.reply <- jobResult{err: &EndpointLimitTooLowError{URL: e.url, Cost: cost, Limit: e.limits.ReqLimit}}
				continue
			}
			metrics.RequestsAdmitted.WithLabelValues(e.url).Add(float64(cost))
			go e.dispatch(j)
		}
	}
}

func (e *Endpoint) dispatch(j job) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	resp, err := sendRpcRequest(ctx, e.httpClient, e.url, j.req)
	j.reply <- jobResult{resp: resp, err: err}
}

// Send is the endpoint's external contract: it checks tip adequacy, enqueues
// the job onto the single-slot queue, and blocks until the reply arrives.
func (e *Endpoint) Send(ctx context.Context, req RpcRequest) (*RpcResponse, error) {
	if required := RequiredTip(req); required != nil {
		tip := e.tip.Load()
		if tip == nil || *tip < *required {
			return nil, &EndpointTooBehindError{URL: e.url, Required: *required, Tip: tip}
		}
	}

	reply := make(chan jobResult, 1)
	select {
	case e.queue <- job{req: req, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
