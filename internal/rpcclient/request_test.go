package rpcclient

import (
	"testing"

	"archived/internal/config"
)

func TestRequiredTipAggregation(t *testing.T) {
	// Scenario 1: Batch = [GetBlockNumber, GetLogs{15,17}, GetBlockByNumber(199), GetBlockNumber]
	batch := Batch(
		GetBlockNumber(),
		GetLogs(15, 17),
		GetBlockByNumber(199),
		GetBlockNumber(),
	)
	got := RequiredTip(batch)
	if got == nil || *got != 199 {
		t.Fatalf("RequiredTip=%v, want 199", got)
	}
}

func TestRequiredTipAllNoneIsNil(t *testing.T) {
	batch := Batch(GetBlockNumber(), GetBlockNumber())
	if got := RequiredTip(batch); got != nil {
		t.Fatalf("RequiredTip=%v, want nil", got)
	}
}

func TestCostLargeHomogeneousBatch(t *testing.T) {
	// Scenario 2: 301 GetBlockNumbers, batch_size_limit=5 => ceil(301/5)=61 chunks, cost 1 each => 61.
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	members := make([]RpcRequest, 301)
	for i := range members {
		members[i] = GetBlockNumber()
	}
	got := Cost(Batch(members...), limits)
	if got != 61 {
		t.Fatalf("Cost=%d, want 61", got)
	}
}

func TestCostGetLogsRangeSplitting(t *testing.T) {
	// Scenario 3: GetLogs{1,16}, get_logs_range_limit=5 => ceil(16/5)=4.
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	got := Cost(GetLogs(1, 16), limits)
	if got != 4 {
		t.Fatalf("Cost=%d, want 4", got)
	}
}

func TestCostBatchOfTwoGetLogs(t *testing.T) {
	// Scenario 4: two GetLogs{1,7}, get_logs_range_limit=5 => ceil(7/5)=2 each,
	// batched into one chunk: 1 + (2-1) + (2-1) = 3.
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	got := Cost(Batch(GetLogs(1, 7), GetLogs(1, 7)), limits)
	if got != 3 {
		t.Fatalf("Cost=%d, want 3", got)
	}
}

func TestCostGetLogsExactRangeLimitBoundary(t *testing.T) {
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	if got := Cost(GetLogs(1, 5), limits); got != 1 {
		t.Fatalf("Cost(span=5)=%d, want 1", got)
	}
	if got := Cost(GetLogs(1, 6), limits); got != 2 {
		t.Fatalf("Cost(span=6)=%d, want 2", got)
	}
}

func TestCostGetLogsFromEqualsTo(t *testing.T) {
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	if got := Cost(GetLogs(10, 10), limits); got != 1 {
		t.Fatalf("Cost(from==to)=%d, want 1", got)
	}
}

func TestCostNeverBelowOne(t *testing.T) {
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	if got := Cost(Batch(), limits); got < 1 {
		t.Fatalf("Cost(empty batch)=%d, want >=1", got)
	}
}

func TestCeilDivUsesCorrectedFormula(t *testing.T) {
	// An earlier revision's bug: range + range_limit - 1 / range_limit
	// (operator precedence divides only 1 by range_limit). The corrected
	// formula is (range + range_limit - 1) / range_limit.
	got := ceilDiv(16, 5)
	if got != 4 {
		t.Fatalf("ceilDiv(16,5)=%d, want 4", got)
	}
	buggy := 16 + 5 - 1/5 // what the old precedence bug would compute (21)
	if got == buggy {
		t.Fatalf("ceilDiv should not match the buggy precedence result")
	}
}

func TestAdmitRejectsScenarioTwoBatch(t *testing.T) {
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	members := make([]RpcRequest, 301)
	for i := range members {
		members[i] = GetBlockNumber()
	}
	cost := Cost(Batch(members...), limits)

	w := NewRateWindow(limits.ReqLimit, limits.ReqLimitWindowMs)
	w.now = fixedClock()
	if err := w.Admit(cost); err == nil {
		t.Fatalf("Admit(%d) against limit %d should fail", cost, limits.ReqLimit)
	}
	if w.count != 0 {
		t.Fatalf("count=%d, want 0 after rejected admit", w.count)
	}
}

func TestAdmitSucceedsScenarioFourBatch(t *testing.T) {
	limits := config.LimitConfig{BatchSizeLimit: 5, GetLogsRangeLimit: 5, ReqLimit: 50, ReqLimitWindowMs: 1000}
	cost := Cost(Batch(GetLogs(1, 7), GetLogs(1, 7)), limits)

	w := NewRateWindow(limits.ReqLimit, limits.ReqLimitWindowMs)
	w.now = fixedClock()
	if err := w.Admit(cost); err != nil {
		t.Fatalf("Admit(%d) unexpected error: %v", cost, err)
	}
	if w.count != 3 {
		t.Fatalf("count=%d, want 3", w.count)
	}
}
