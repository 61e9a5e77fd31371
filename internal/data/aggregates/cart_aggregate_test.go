package aggregates_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yungbote/marketplace-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/marketplace-backend/internal/data/aggregates/testutil"
	repotest "github.com/yungbote/marketplace-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/domain/outbox"
)

func TestAddEntry_AccumulatesCartTotals(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	a := h.seedProduct(t, "Product A", "10.00", 100)
	b := h.seedProduct(t, "Product B", "5.00", 100)

	first := h.addEntry(t, c.ID, a.ID, 2)
	if !first.Entry.Cost.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("entry cost: want=20.00 got=%s", first.Entry.Cost)
	}
	second := h.addEntry(t, c.ID, b.ID, 3)
	if second.Cart.ItemCount != 5 {
		t.Fatalf("item_count: want=5 got=%d", second.Cart.ItemCount)
	}
	if !second.Cart.TotalCost.Equal(decimal.RequireFromString("35.00")) {
		t.Fatalf("total_cost: want=35.00 got=%s", second.Cart.TotalCost)
	}

	got := repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
	if got.ItemCount != 5 || !got.TotalCost.Equal(decimal.RequireFromString("35")) {
		t.Fatalf("stored cart: want=(5, 35) got=(%d, %s)", got.ItemCount, got.TotalCost)
	}
	if n := countTopic(h.topics(t), outbox.TopicEntryAdded); n != 2 {
		t.Fatalf("entry_added events: want=2 got=%d", n)
	}
}

func TestAddEntry_OutOfStockProductCanStillBeCarted(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	pen := h.seedProduct(t, "Fountain pen", "15.00", 0)

	res := h.addEntry(t, c.ID, pen.ID, 1)
	if res.Cart.ItemCount != 1 {
		t.Fatalf("item_count: want=1 got=%d", res.Cart.ItemCount)
	}
}

func TestAddEntry_DuplicateProductRejected(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	p := h.seedProduct(t, "Book", "20.00", 10)
	h.addEntry(t, c.ID, p.ID, 1)

	_, err := h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: c.ID, ProductID: p.ID, Quantity: 4})
	wantCode(t, err, domainagg.CodeDuplicateEntry)

	got := repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
	if got.ItemCount != 1 {
		t.Fatalf("item_count after rejected duplicate: want=1 got=%d", got.ItemCount)
	}
	if len(h.hooks.Conflicts) != 1 {
		t.Fatalf("conflict hook: want=1 got=%d", len(h.hooks.Conflicts))
	}
}

func TestAddEntry_ConcurrentDuplicatesLeaveOneEntry(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	p := h.seedProduct(t, "Book", "20.00", 10)

	const workers = 6
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  int
		rejected int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: c.ID, ProductID: p.ID, Quantity: 1})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case domainagg.IsCode(err, domainagg.CodeDuplicateEntry):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if success != 1 || rejected != workers-1 {
		t.Fatalf("outcomes: want=1/%d got=%d/%d", workers-1, success, rejected)
	}
	if entries := repotest.ListEntries(t, h.ctx, h.db, c.ID); len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
}

func TestAddEntry_InvalidQuantity(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	p := h.seedProduct(t, "Candy", "0.10", 10)

	for _, qty := range []int{0, -3} {
		_, err := h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: c.ID, ProductID: p.ID, Quantity: qty})
		wantCode(t, err, domainagg.CodeInvalidQuantity)
	}
	if entries := repotest.ListEntries(t, h.ctx, h.db, c.ID); len(entries) != 0 {
		t.Fatalf("entries: want=0 got=%d", len(entries))
	}
}

func TestAddEntry_UnknownCartOrProduct(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	p := h.seedProduct(t, "Candy", "0.10", 10)

	_, err := h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: uuid.New(), ProductID: p.ID, Quantity: 1})
	wantCode(t, err, domainagg.CodeCartNotFound)

	_, err = h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: c.ID, ProductID: uuid.New(), Quantity: 1})
	wantCode(t, err, domainagg.CodeProductNotFound)
}

func TestUpdateEntry_MovesTotalsByDifference(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	a := h.seedProduct(t, "Product A", "10.00", 100)
	b := h.seedProduct(t, "Product B", "5.00", 100)
	entry := h.addEntry(t, c.ID, a.ID, 2).Entry
	h.addEntry(t, c.ID, b.ID, 3)

	res, err := h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: entry.ID, CartID: c.ID, Quantity: 5})
	if err != nil {
		t.Fatalf("UpdateEntry up: %v", err)
	}
	if res.Cart.ItemCount != 8 || !res.Cart.TotalCost.Equal(decimal.RequireFromString("65.00")) {
		t.Fatalf("after increase: want=(8, 65.00) got=(%d, %s)", res.Cart.ItemCount, res.Cart.TotalCost)
	}
	if !res.Entry.Cost.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("entry cost: want=50.00 got=%s", res.Entry.Cost)
	}

	res, err = h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: entry.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("UpdateEntry down: %v", err)
	}
	if res.Cart.ItemCount != 4 || !res.Cart.TotalCost.Equal(decimal.RequireFromString("25.00")) {
		t.Fatalf("after decrease: want=(4, 25.00) got=(%d, %s)", res.Cart.ItemCount, res.Cart.TotalCost)
	}
	repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)

	// Same quantity is a no-op on the totals.
	res, err = h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: entry.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("UpdateEntry same: %v", err)
	}
	if res.Cart.ItemCount != 4 {
		t.Fatalf("after no-op: want=4 got=%d", res.Cart.ItemCount)
	}
	if n := countTopic(h.topics(t), outbox.TopicEntryUpdated); n != 3 {
		t.Fatalf("entry_updated events: want=3 got=%d", n)
	}
}

func TestUpdateEntry_Errors(t *testing.T) {
	h := newHarness(t)
	alice := h.seedCart(t, "alice")
	bob := h.seedCart(t, "bob")
	p := h.seedProduct(t, "Cool mug", "100.00", 1)
	entry := h.addEntry(t, alice.ID, p.ID, 1).Entry

	_, err := h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: entry.ID, Quantity: 0})
	wantCode(t, err, domainagg.CodeInvalidQuantity)

	_, err = h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: uuid.New(), Quantity: 2})
	wantCode(t, err, domainagg.CodeEntryNotFound)

	_, err = h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: entry.ID, CartID: bob.ID, Quantity: 2})
	wantCode(t, err, domainagg.CodeEntryNotFound)

	got := repotest.AssertCartConsistent(t, h.ctx, h.db, alice.ID)
	if got.ItemCount != 1 {
		t.Fatalf("item_count: want=1 got=%d", got.ItemCount)
	}
}

func TestUpdateEntry_RejectsNegativeInventory(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	p := h.seedProduct(t, "Music album", "20.00", 100)
	entry := h.addEntry(t, c.ID, p.ID, 2).Entry

	repotest.SetInventory(t, h.ctx, h.db, p.ID, -1)

	_, err := h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: entry.ID, Quantity: 3})
	wantCode(t, err, domainagg.CodeInsufficientInventory)

	entries := repotest.ListEntries(t, h.ctx, h.db, c.ID)
	if len(entries) != 1 || entries[0].ProductCount != 2 {
		t.Fatalf("entry should be unchanged: %+v", entries)
	}
	repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
}

func TestDeleteEntry_CreateThenDeleteRestoresCart(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")
	a := h.seedProduct(t, "Laptop", "1000.42", 20)
	b := h.seedProduct(t, "Candy", "0.10", 10)
	keep := h.addEntry(t, c.ID, b.ID, 3)

	entry := h.addEntry(t, c.ID, a.ID, 2).Entry
	res, err := h.cart.DeleteEntry(h.ctx, domainagg.DeleteCartEntryInput{EntryID: entry.ID, CartID: c.ID})
	if err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if res.Cart.ItemCount != keep.Cart.ItemCount || !res.Cart.TotalCost.Equal(keep.Cart.TotalCost) {
		t.Fatalf("totals after delete: want=(%d, %s) got=(%d, %s)",
			keep.Cart.ItemCount, keep.Cart.TotalCost, res.Cart.ItemCount, res.Cart.TotalCost)
	}
	repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)

	_, err = h.cart.DeleteEntry(h.ctx, domainagg.DeleteCartEntryInput{EntryID: entry.ID})
	wantCode(t, err, domainagg.CodeEntryNotFound)

	if n := countTopic(h.topics(t), outbox.TopicEntryDeleted); n != 1 {
		t.Fatalf("entry_deleted events: want=1 got=%d", n)
	}
}

func TestAddEntry_RollsBackOnFailureBeforeCommit(t *testing.T) {
	injected := errors.New("crash before commit")
	var faulty *aggtest.InjectedTxRunner
	h := newHarnessWithRunner(t, func(inner aggregates.TxRunner) aggregates.TxRunner {
		faulty = &aggtest.InjectedTxRunner{Inner: inner}
		return faulty
	})
	c := h.seedCart(t, "alice")
	p := h.seedProduct(t, "Book", "20.00", 10)

	faulty.FailAfterBody = injected
	_, err := h.cart.AddEntry(h.ctx, domainagg.AddCartEntryInput{CartID: c.ID, ProductID: p.ID, Quantity: 2})
	if !errors.Is(err, injected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	wantCode(t, err, domainagg.CodeInternal)

	if entries := repotest.ListEntries(t, h.ctx, h.db, c.ID); len(entries) != 0 {
		t.Fatalf("entries after rollback: want=0 got=%d", len(entries))
	}
	got := repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
	if got.ItemCount != 0 || !got.TotalCost.IsZero() {
		t.Fatalf("cart after rollback: got=(%d, %s)", got.ItemCount, got.TotalCost)
	}
	if topics := h.topics(t); len(topics) != 0 {
		t.Fatalf("outbox after rollback: %v", topics)
	}

	faulty.FailAfterBody = nil
	h.addEntry(t, c.ID, p.ID, 2)
	repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
}

func TestCartAggregate_ManyEntriesStayConsistent(t *testing.T) {
	h := newHarness(t)
	c := h.seedCart(t, "alice")

	var ids []uuid.UUID
	for i := 0; i < 8; i++ {
		p := h.seedProduct(t, fmt.Sprintf("Item %d", i), fmt.Sprintf("%d.25", i+1), 50)
		ids = append(ids, h.addEntry(t, c.ID, p.ID, i+1).Entry.ID)
	}
	for i, id := range ids {
		switch i % 3 {
		case 0:
			if _, err := h.cart.DeleteEntry(h.ctx, domainagg.DeleteCartEntryInput{EntryID: id}); err != nil {
				t.Fatalf("DeleteEntry: %v", err)
			}
		case 1:
			if _, err := h.cart.UpdateEntry(h.ctx, domainagg.UpdateCartEntryInput{EntryID: id, Quantity: 7}); err != nil {
				t.Fatalf("UpdateEntry: %v", err)
			}
		}
		repotest.AssertCartConsistent(t, h.ctx, h.db, c.ID)
	}
}
