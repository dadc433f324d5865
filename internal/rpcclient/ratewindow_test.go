package rpcclient

import "testing"

func TestRateWindowAdmitWithinLimit(t *testing.T) {
	w := NewRateWindow(50, 1000)
	fixed := fixedClock()
	w.now = fixed

	if err := w.Admit(10); err != nil {
		t.Fatalf("Admit(10) unexpected error: %v", err)
	}
	if w.count != 10 {
		t.Fatalf("count=%d, want 10", w.count)
	}
}

func TestRateWindowStrictLessThan(t *testing.T) {
	// limit=50, batch cost 61 against an empty window must fail (61 >= 50)
	// and leave the counter untouched.
	w := NewRateWindow(50, 1000)
	w.now = fixedClock()

	err := w.Admit(61)
	if err == nil {
		t.Fatalf("Admit(61) against limit 50 should fail")
	}
	if w.count != 0 {
		t.Fatalf("count=%d, want 0 (rejected admits must not mutate count)", w.count)
	}
}

func TestRateWindowBoundaryReservesOneUnit(t *testing.T) {
	// count+cost must be strictly less than limit: with limit=10 and count=9,
	// cost=1 must fail (9+1=10 is not < 10).
	w := NewRateWindow(10, 1000)
	w.now = fixedClock()
	w.count = 9

	if err := w.Admit(1); err == nil {
		t.Fatalf("Admit(1) at count=9 limit=10 should fail due to strict <")
	}
}

func TestRateWindowResetsAfterWindowElapses(t *testing.T) {
	w := NewRateWindow(10, 100)
	base := newManualClock()
	w.now = base.now
	w.windowStart = base.now()

	if err := w.Admit(9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base.advance(101)
	if err := w.Admit(9); err != nil {
		t.Fatalf("post-reset Admit should succeed, got: %v", err)
	}
	if w.count != 9 {
		t.Fatalf("count=%d, want 9 after reset", w.count)
	}
}

func TestRateWindowScenarioTwoLeavesCounterAtZero(t *testing.T) {
	w := NewRateWindow(50, 1000)
	w.now = fixedClock()

	err := w.Admit(61)
	if err == nil {
		t.Fatalf("expected LimitExceeded")
	}
	if _, ok := err.(*LimitExceededError); !ok {
		t.Fatalf("expected *LimitExceededError, got %T", err)
	}
	if w.count != 0 {
		t.Fatalf("count=%d, want 0 after rejected admit", w.count)
	}
}
