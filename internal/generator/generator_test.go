package generator

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"ordersim/internal/model"
)

func TestOrder_InvariantsHold(t *testing.T) {
	g := New(42)
	for i := 0; i < 500; i++ {
		o := g.Order()
		if err := o.Validate(); err != nil {
			t.Fatalf("order %d invalid: %v (%+v)", i, err, o)
		}
		if len(o.Items) < minItems || len(o.Items) > maxItems {
			t.Fatalf("order %d: item count %d out of range", i, len(o.Items))
		}
		sum := decimal.Zero
		for _, it := range o.Items {
			sum = sum.Add(it.TotalPrice)
		}
		if !o.OrderTotal.Equal(sum) {
			t.Fatalf("order %d: total=%s sum=%s", i, o.OrderTotal, sum)
		}
	}
}

func TestLineItem_Bounds(t *testing.T) {
	g := New(7)
	lo, hi := decimal.NewFromFloat(minPrice), decimal.NewFromFloat(maxPrice)
	for i := 0; i < 500; i++ {
		it := g.LineItem()
		if it.Quantity < minQuantity || it.Quantity > maxQuantity {
			t.Fatalf("quantity out of range: %d", it.Quantity)
		}
		if it.UnitPrice.LessThan(lo) || it.UnitPrice.GreaterThan(hi) {
			t.Fatalf("unit_price out of range: %s", it.UnitPrice)
		}
		if it.UnitPrice.Exponent() < -2 {
			t.Fatalf("unit_price has more than 2 places: %s", it.UnitPrice)
		}
		if !it.TotalPrice.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			t.Fatalf("total_price mismatch: %+v", it)
		}
	}
}

func TestOrder_StoreConsistentAcrossDraws(t *testing.T) {
	g := New(3)
	seen := map[string][2]string{}
	for i := 0; i < 300; i++ {
		o := g.Order()
		rc := [2]string{o.StoreRegion, o.StoreCity}
		if prev, ok := seen[o.StoreID]; ok && prev != rc {
			t.Fatalf("store %s mapped to %v and %v", o.StoreID, prev, rc)
		}
		seen[o.StoreID] = rc
	}
	if len(seen) != len(model.Stores) {
		t.Fatalf("expected every store to be drawn, got %d", len(seen))
	}
}

func TestOrder_UniqueIDsAndTimestamp(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 6789, time.FixedZone("X", 3600))
	g := NewWithClock(1, func() time.Time { return fixed })
	a, b := g.Order(), g.Order()
	if a.OrderID == b.OrderID {
		t.Fatalf("order ids should differ: %s", a.OrderID)
	}
	if a.OrderTimestamp.Location() != time.UTC {
		t.Fatalf("timestamp should be UTC: %v", a.OrderTimestamp.Location())
	}
	if want := fixed.UTC().Truncate(time.Microsecond); !a.OrderTimestamp.Equal(want) {
		t.Fatalf("timestamp: got=%v want=%v", a.OrderTimestamp.Time, want)
	}
}

func TestOrder_SameSeedSameContent(t *testing.T) {
	now := func() time.Time { return time.Unix(1700000000, 0) }
	a, b := NewWithClock(99, now).Order(), NewWithClock(99, now).Order()
	if a.StoreID != b.StoreID || len(a.Items) != len(b.Items) || !a.OrderTotal.Equal(b.OrderTotal) {
		t.Fatalf("seeded generators diverged: %+v vs %+v", a, b)
	}
}
