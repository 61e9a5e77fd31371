package testutil

import (
	"sync"
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Checkout.Coordinator.CheckoutEntry", "success", 10*time.Millisecond)
	h.IncConflict("Cart.CartAggregate.AddEntry")
	h.IncRetry("Checkout.Coordinator.CheckoutCart")

	if len(h.Operations) != 1 {
		t.Fatalf("expected 1 op event, got %d", len(h.Operations))
	}
	last, ok := h.Last()
	if !ok || last.Name != "Checkout.Coordinator.CheckoutEntry" || last.Status != "success" {
		t.Fatalf("unexpected op event: %+v", last)
	}
	if len(h.Conflicts) != 1 || h.Conflicts[0] != "Cart.CartAggregate.AddEntry" {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
	if len(h.Retries) != 1 || h.Retries[0] != "Checkout.Coordinator.CheckoutCart" {
		t.Fatalf("unexpected retries: %+v", h.Retries)
	}
}

func TestHooksRecorder_StatusCountsConcurrent(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := "success"
			if i%4 == 0 {
				status = "insufficient_inventory"
			}
			h.ObserveOperation("op", status, time.Millisecond)
		}(i)
	}
	wg.Wait()

	counts := h.StatusCounts("op")
	if counts["success"] != 15 || counts["insufficient_inventory"] != 5 {
		t.Fatalf("status counts: %+v", counts)
	}
	if len(h.StatusCounts("other")) != 0 {
		t.Fatalf("expected no counts for unknown op")
	}
}
