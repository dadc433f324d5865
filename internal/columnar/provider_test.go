package columnar

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestInMemDataProviderSwapAndLoad(t *testing.T) {
	bb := newBatchBuilder(BlocksSchema, memory.DefaultAllocator)
	appendBlockRow(bb, 1)
	batch := bb.newArrowBatch()

	p := NewInMemDataProvider()
	p.Swap(nil, nil, []*ArrowBatch{batch}, 5)

	if got := p.ToBlock(); got != 5 {
		t.Fatalf("ToBlock()=%d, want 5", got)
	}

	loaded, err := p.LoadBlocks(nil, 0, nil)
	if err != nil {
		t.Fatalf("LoadBlocks: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Len != 1 {
		t.Fatalf("unexpected loaded blocks: %+v", loaded)
	}
	loaded[0].Release()
	batch.Release()
}

func TestProjectBatchPreservesSchemaOrder(t *testing.T) {
	bb := newBatchBuilder(BlocksSchema, memory.DefaultAllocator)
	appendBlockRow(bb, 42)
	batch := bb.newArrowBatch()
	defer batch.Release()

	projected := ProjectBatch(batch, []string{"timestamp", "number"})
	defer projected.Release()

	fields := projected.Schema.Fields()
	if len(fields) != 2 || fields[0].Name != "number" || fields[1].Name != "timestamp" {
		t.Fatalf("ProjectBatch reordered fields, got %v", fields)
	}
}
