package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	repotest "github.com/yungbote/marketplace-backend/internal/data/repos/testutil"
)

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/api/cart", "200", time.Millisecond)
	m.ObserveOperation("op", "success", time.Millisecond)
	m.IncConflict("op")
	m.IncRetry("op")
	m.ObserveOutboxPublished("cart.entry_added", 3)
	if got := m.AggregateCount("op", "success"); got != 0 {
		t.Fatalf("nil metrics count: want=0 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics status: want=503 got=%d", rec.Code)
	}
}

func TestMetricsAggregateHooks(t *testing.T) {
	m := NewMetrics(0)
	m.ObserveOperation("Checkout.Coordinator.CheckoutEntry", "success", 2*time.Millisecond)
	m.ObserveOperation("Checkout.Coordinator.CheckoutEntry", "success", 3*time.Millisecond)
	m.ObserveOperation("Checkout.Coordinator.CheckoutEntry", "insufficient_inventory", time.Millisecond)
	m.IncConflict("Cart.CartAggregate.AddEntry")

	if got := m.AggregateCount("Checkout.Coordinator.CheckoutEntry", "success"); got != 2 {
		t.Fatalf("success count: want=2 got=%v", got)
	}
	if got := m.aggregateLatency.Count("Checkout.Coordinator.CheckoutEntry"); got != 3 {
		t.Fatalf("latency observations: want=3 got=%d", got)
	}

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`mk_aggregate_operations_total{op="Checkout.Coordinator.CheckoutEntry",status="success"} 2`,
		`mk_aggregate_conflicts_total{op="Cart.CartAggregate.AddEntry"} 1`,
		`mk_aggregate_operation_duration_seconds_count{op="Checkout.Coordinator.CheckoutEntry"} 3`,
		"# TYPE mk_outbox_backlog gauge",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestMetricsWriteHTTP(t *testing.T) {
	m := NewMetrics(0)
	m.ObserveAPI("POST", "/api/cart/checkout", "200", 10*time.Millisecond)
	m.ApiInflightInc()

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `mk_api_requests_total{method="POST",route="/api/cart/checkout",status="200"} 1`) {
		t.Fatalf("missing api counter:\n%s", body)
	}
	if !strings.Contains(body, "mk_api_inflight_requests 1") {
		t.Fatalf("missing inflight gauge:\n%s", body)
	}
}

func TestMetricsSampleDB(t *testing.T) {
	m := NewMetrics(0)
	if err := m.sampleDB(repotest.DB(t)); err != nil {
		t.Fatalf("sampleDB: %v", err)
	}
	var buf bytes.Buffer
	if err := m.dbStats.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if !strings.Contains(buf.String(), `mk_db_pool{stat="max_open_connections"}`) {
		t.Fatalf("missing pool stat:\n%s", buf.String())
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"op"}, []string{"a\"b\\c"})
	if got != `{op="a\"b\\c"}` {
		t.Fatalf("labelString: got=%s", got)
	}
	if got := withLe("", "0.5"); got != `{le="0.5"}` {
		t.Fatalf("withLe empty: got=%s", got)
	}
	if got := withLe(`{op="x"}`, "+Inf"); got != `{op="x",le="+Inf"}` {
		t.Fatalf("withLe: got=%s", got)
	}
}
