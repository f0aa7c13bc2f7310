package engine

import (
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func makeLine(supplier *uuid.UUID, quantity int, total string) Line {
	return Line{
		ItemID:     uuid.New(),
		SupplierID: supplier,
		Quantity:   quantity,
		LineTotal:  decimal.RequireFromString(total),
	}
}

func TestConsolidate_GroupsBySupplier(t *testing.T) {
	supplierA := uuid.New()
	supplierB := uuid.New()
	rule := &model.AutoPORule{ConsolidateBySupplier: true}

	lines := []Line{
		makeLine(&supplierA, 5, "50.00"),
		makeLine(&supplierB, 2, "20.00"),
		makeLine(&supplierA, 3, "30.00"),
	}

	drafts := Consolidate(rule, lines)
	if len(drafts) != 2 {
		t.Fatalf("expected one draft per supplier, got %d", len(drafts))
	}
	if drafts[0].SupplierID != supplierA {
		t.Error("drafts must keep first-seen supplier order")
	}
	if len(drafts[0].Lines) != 2 || !drafts[0].Total.Equal(decimal.RequireFromString("80.00")) {
		t.Errorf("supplier A draft: got %d lines, total %s", len(drafts[0].Lines), drafts[0].Total)
	}
	if len(drafts[1].Lines) != 1 || !drafts[1].Total.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("supplier B draft: got %d lines, total %s", len(drafts[1].Lines), drafts[1].Total)
	}
}

func TestConsolidate_OffMakesSingleLineDrafts(t *testing.T) {
	supplier := uuid.New()
	rule := &model.AutoPORule{ConsolidateBySupplier: false}

	lines := []Line{
		makeLine(&supplier, 5, "50.00"),
		makeLine(&supplier, 3, "30.00"),
	}

	drafts := Consolidate(rule, lines)
	if len(drafts) != 2 {
		t.Fatalf("expected one draft per line with consolidation off, got %d", len(drafts))
	}
	for _, draft := range drafts {
		if len(draft.Lines) != 1 {
			t.Errorf("each draft should carry exactly one line, got %d", len(draft.Lines))
		}
	}
}

func TestConsolidate_SkipsUnresolvedSuppliers(t *testing.T) {
	supplier := uuid.New()
	rule := &model.AutoPORule{ConsolidateBySupplier: true}

	lines := []Line{
		makeLine(nil, 5, "50.00"),
		makeLine(&supplier, 3, "30.00"),
	}

	drafts := Consolidate(rule, lines)
	if len(drafts) != 1 || drafts[0].SupplierID != supplier {
		t.Fatalf("lines without a supplier must not reach a draft, got %d drafts", len(drafts))
	}
}

func TestMergeLines_FreshWinsPerItem(t *testing.T) {
	supplier := uuid.New()
	shared := makeLine(&supplier, 5, "50.00")
	stale := shared
	stale.Quantity = 99

	bufferedOnly := makeLine(&supplier, 2, "20.00")
	freshOnly := makeLine(&supplier, 7, "70.00")

	merged := MergeLines([]Line{stale, bufferedOnly}, []Line{shared, freshOnly})
	if len(merged) != 3 {
		t.Fatalf("expected 3 merged lines, got %d", len(merged))
	}
	if merged[0].ItemID != shared.ItemID || merged[0].Quantity != 5 {
		t.Errorf("fresh computation must replace the buffered line, got quantity %d", merged[0].Quantity)
	}
	if merged[1].ItemID != bufferedOnly.ItemID {
		t.Error("buffered-only lines keep their position")
	}
	if merged[2].ItemID != freshOnly.ItemID {
		t.Error("new items append after buffered ones")
	}
}

func TestMergeLines_EmptyBuffered(t *testing.T) {
	supplier := uuid.New()
	fresh := []Line{makeLine(&supplier, 1, "10.00")}
	merged := MergeLines(nil, fresh)
	if len(merged) != 1 || merged[0].ItemID != fresh[0].ItemID {
		t.Fatal("empty buffer passes fresh lines through unchanged")
	}
}
