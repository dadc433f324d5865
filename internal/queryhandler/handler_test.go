package queryhandler

import (
	"testing"

	"archived/internal/columnar"
	"archived/internal/config"
	"archived/internal/folderindex"
)

func testQueryConfig() config.QueryConfig {
	return config.QueryConfig{TimeLimitMs: 1000}
}

func addr(b byte) []byte {
	a := make([]byte, 20)
	a[19] = b
	return a
}

func TestPruneLogSelectionsWildcardPassesThroughNilFilter(t *testing.T) {
	folder := &folderindex.FolderIndex{Lo: 0, Hi: 100}
	selections := []columnar.LogSelection{
		{}, // wildcard: no address constraint
		{Address: [][]byte{addr(1)}},
	}
	kept := pruneLogSelections(selections, folder)
	if len(kept) != 2 {
		t.Fatalf("nil bloom filter should keep every selection, got %d of 2", len(kept))
	}
}

func TestPruneTxSelectionsNilFilterKeepsSelection(t *testing.T) {
	folder := &folderindex.FolderIndex{Lo: 0, Hi: 100}
	selections := []columnar.TxSelection{
		{From: [][]byte{addr(1)}, To: [][]byte{addr(2)}},
	}
	kept := pruneTxSelections(selections, folder)
	if len(kept) != 1 {
		t.Fatalf("nil bloom filter is permissive, selection should survive, got %d", len(kept))
	}
}

func TestArchiveHeightNilWhenNothingIngested(t *testing.T) {
	h := New(t.TempDir(), columnar.NewInMemDataProvider(), testQueryConfig(), nil)
	if got := h.ArchiveHeight(); got != nil {
		t.Fatalf("ArchiveHeight()=%v, want nil", *got)
	}
}

func TestArchiveHeightUsesHigherOfInMemAndCold(t *testing.T) {
	inMem := columnar.NewInMemDataProvider()
	inMem.Swap(nil, nil, nil, 50)
	h := New(t.TempDir(), inMem, testQueryConfig(), func() uint64 { return 120 })

	got := h.ArchiveHeight()
	if got == nil || *got != 119 {
		t.Fatalf("ArchiveHeight()=%v, want 119", got)
	}
}
