// Command bench_rpc measures per-method latency against the archive's
// configured upstream JSON-RPC endpoints: block number lookups, single and
// batched block fetches, and a narrow-range log scan, with an optional
// VERBOSE full-sequential-fetch pass.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"archived/internal/config"
	"archived/internal/rpcclient"
)

func main() {
	configPath := os.Getenv("ARCHIVED_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Endpoints) == 0 {
		log.Fatal("no endpoints configured")
	}

	ctx := context.Background()
	for _, endpointCfg := range cfg.Endpoints {
		fmt.Printf("\n========== %s ==========\n", endpointCfg.URL)
		client, err := rpcclient.NewClient([]config.EndpointConfig{endpointCfg})
		if err != nil {
			fmt.Printf("  FAIL: construct client: %v\n", err)
			continue
		}
		runBench(ctx, client)
		client.Close()
	}
}

func runBench(ctx context.Context, client *rpcclient.Client) {
	// 1. eth_blockNumber
	t0 := time.Now()
	resp, err := client.Send(ctx, rpcclient.GetBlockNumber())
	d1 := time.Since(t0)
	if err != nil {
		fmt.Printf("  eth_blockNumber: FAIL (%v) [%v]\n", err, d1)
		return
	}
	height, err := decodeHexHeight(resp.Raw)
	if err != nil {
		fmt.Printf("  eth_blockNumber: decode failed: %v\n", err)
		return
	}
	fmt.Printf("  eth_blockNumber: OK [%v] height=%d\n", d1, height)

	// 2. eth_getBlockByNumber
	t0 = time.Now()
	_, err = client.Send(ctx, rpcclient.GetBlockByNumber(height))
	d2 := time.Since(t0)
	if err != nil {
		fmt.Printf("  eth_getBlockByNumber: FAIL (%v) [%v]\n", err, d2)
	} else {
		fmt.Printf("  eth_getBlockByNumber: OK [%v]\n", d2)
	}

	// 3. eth_getLogs over a narrow range
	from := height
	if from > 9 {
		from -= 9
	}
	t0 = time.Now()
	_, err = client.Send(ctx, rpcclient.GetLogs(from, height))
	d3 := time.Since(t0)
	if err != nil {
		fmt.Printf("  eth_getLogs (10 blocks): FAIL (%v) [%v]\n", err, d3)
	} else {
		fmt.Printf("  eth_getLogs (10 blocks): OK [%v]\n", d3)
	}

	// 4. 5 consecutive eth_getBlockByNumber calls
	t0 = time.Now()
	for i := uint64(0); i < 5; i++ {
		if _, err := client.Send(ctx, rpcclient.GetBlockByNumber(height-i)); err != nil {
			fmt.Printf("  Multi-block fetch: FAIL at height %d: %v\n", height-i, err)
			break
		}
	}
	d4 := time.Since(t0)
	fmt.Printf("  5 consecutive eth_getBlockByNumber: [%v] avg=%v\n", d4, d4/5)

	// 5. a batch of 10 eth_getBlockByNumber requests sent as one JSON-RPC array
	batch := make([]rpcclient.RpcRequest, 0, 10)
	for i := 0; i < 10; i++ {
		batch = append(batch, rpcclient.GetBlockByNumber(height-uint64(i)))
	}
	t0 = time.Now()
	_, err = client.Send(ctx, rpcclient.Batch(batch...))
	d5 := time.Since(t0)
	if err != nil {
		fmt.Printf("  batch(10): FAIL (%v) [%v]\n", err, d5)
	} else {
		fmt.Printf("  batch(10): OK [%v]\n", d5)
	}

	if os.Getenv("VERBOSE") != "" {
		t0 = time.Now()
		n := 0
		for i := uint64(0); i < 20; i++ {
			if _, err := client.Send(ctx, rpcclient.GetBlockByNumber(height-i)); err == nil {
				n++
			}
		}
		d6 := time.Since(t0)
		fmt.Printf("  Full sequential fetch (20 blocks): [%v] for %d ok = %v/block\n", d6, n, d6/time.Duration(maxInt(n, 1)))
	}
}

func decodeHexHeight(raw []byte) (uint64, error) {
	var hexStr string
	if err := json.Unmarshal(raw, &hexStr); err != nil {
		return 0, err
	}
	var v uint64
	_, err := fmt.Sscanf(hexStr, "0x%x", &v)
	return v, err
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
