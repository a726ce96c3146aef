package adapters

import (
	"context"
	"testing"

	"kaamgarau/internal/core"
	"kaamgarau/internal/memory"
)

func TestSpendingRouterSplitsTraffic(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ledger := memory.New()
	router := NewSpendingRouter(store, ledger)

	e := core.SpendingEvent{Date: core.NewDate(2024, 3, 1), Amount: core.Money{Paisa: 500}, Category: "Design"}
	if _, err := router.RecordSpending(ctx, "c1", e); err != nil {
		t.Fatalf("RecordSpending: %v", err)
	}
	if _, err := router.RecordPostedJob(ctx, "c1", core.PostedJob{ProjectID: "p1", Budget: core.Money{Paisa: 500}}); err != nil {
		t.Fatalf("RecordPostedJob: %v", err)
	}

	inLedger, _ := ledger.SpendingEvents(ctx, "c1")
	inStore, _ := store.SpendingEvents(ctx, "c1")
	if len(inLedger) != 1 || len(inStore) != 0 {
		t.Fatalf("spending went to the wrong place: ledger=%d store=%d", len(inLedger), len(inStore))
	}

	viaRouter, _ := router.SpendingEvents(ctx, "c1")
	if len(viaRouter) != 1 {
		t.Errorf("router read %d events, want 1", len(viaRouter))
	}

	posted, _ := store.PostedJobs(ctx, "c1")
	if len(posted) != 1 {
		t.Errorf("posted jobs in store = %d, want 1", len(posted))
	}

	if err := router.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
