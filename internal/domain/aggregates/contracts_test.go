package aggregates

import "testing"

func TestContractsAreAggregateOwned(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range Contracts() {
		if c.Name == "" {
			t.Fatalf("contract without name: %+v", c)
		}
		if seen[c.Name] {
			t.Fatalf("duplicate contract name %q", c.Name)
		}
		seen[c.Name] = true
		if !c.RequiresAggregateOwnedTx() {
			t.Fatalf("%s: write tx must be aggregate owned", c.Name)
		}
		if c.ReadPolicy != ReadPolicyInvariantScoped {
			t.Fatalf("%s: unexpected read policy %q", c.Name, c.ReadPolicy)
		}
	}
}

func TestCheckoutCartResultPartial(t *testing.T) {
	if (CheckoutCartResult{}).Partial() {
		t.Fatalf("empty result is not partial")
	}
	if !(CheckoutCartResult{Skipped: []SkippedEntry{{}}}).Partial() {
		t.Fatalf("result with skipped entries is partial")
	}
}
