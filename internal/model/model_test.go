package model

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func sampleOrder() Order {
	items := []LineItem{
		NewLineItem(Products[0], 2, decimal.RequireFromString("19.99")),
		NewLineItem(Products[3], 1, decimal.RequireFromString("45.50")),
	}
	return Order{
		OrderID:        "7f7c2b53-0a0e-4d5e-9f53-2b8b0f6c1a11",
		OrderTimestamp: Timestamp{time.Date(2026, 3, 1, 12, 30, 5, 123456000, time.UTC)},
		StoreID:        "STORE-NY-001",
		StoreRegion:    "US-East",
		StoreCity:      "New York",
		Items:          items,
		PaymentMethod:  "cash",
		OrderTotal:     SumTotals(items),
		LoyaltyMember:  true,
	}
}

func TestValidate_SampleOrder(t *testing.T) {
	o := sampleOrder()
	if err := o.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if want := decimal.RequireFromString("85.48"); !o.OrderTotal.Equal(want) {
		t.Fatalf("order_total: got=%s want=%s", o.OrderTotal, want)
	}
}

func TestValidate_BrokenInvariants(t *testing.T) {
	cases := map[string]func(o *Order){
		"empty items":    func(o *Order) { o.Items = nil; o.OrderTotal = decimal.Zero },
		"wrong total":    func(o *Order) { o.OrderTotal = o.OrderTotal.Add(decimal.NewFromInt(1)) },
		"wrong item sum": func(o *Order) { o.Items[0].TotalPrice = decimal.NewFromInt(1) },
		"wrong city":     func(o *Order) { o.StoreCity = "Chicago" },
		"unknown store":  func(o *Order) { o.StoreID = "STORE-XX-999" },
		"zero quantity":  func(o *Order) { o.Items[0].Quantity = 0 },
	}
	for name, mutate := range cases {
		o := sampleOrder()
		mutate(&o)
		if err := o.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestEncode_WireFormat(t *testing.T) {
	b, err := Encode(sampleOrder())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(b)
	for _, want := range []string{
		`"order_timestamp":"2026-03-01T12:30:05.123456+00:00"`,
		`"unit_price":19.99`,
		`"order_total":85.48`,
		`"store_id":"STORE-NY-001"`,
		`"loyalty_member":true`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("payload missing %s: %s", want, s)
		}
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := sampleOrder()
	b, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.OrderID != in.OrderID || out.StoreID != in.StoreID || out.StoreRegion != in.StoreRegion ||
		out.StoreCity != in.StoreCity || out.PaymentMethod != in.PaymentMethod || out.LoyaltyMember != in.LoyaltyMember {
		t.Fatalf("scalar mismatch: %+v vs %+v", out, in)
	}
	if !out.OrderTimestamp.Equal(in.OrderTimestamp.Time) {
		t.Fatalf("timestamp: got=%v want=%v", out.OrderTimestamp, in.OrderTimestamp)
	}
	if !out.OrderTotal.Equal(in.OrderTotal) {
		t.Fatalf("order_total: got=%s want=%s", out.OrderTotal, in.OrderTotal)
	}
	if len(out.Items) != len(in.Items) {
		t.Fatalf("items: got=%d want=%d", len(out.Items), len(in.Items))
	}
	for i := range in.Items {
		a, b := out.Items[i], in.Items[i]
		if a.SKU != b.SKU || a.Name != b.Name || a.Quantity != b.Quantity ||
			!a.UnitPrice.Equal(b.UnitPrice) || !a.TotalPrice.Equal(b.TotalPrice) {
			t.Fatalf("item %d: got=%+v want=%+v", i, a, b)
		}
	}
	if err := out.Validate(); err != nil {
		t.Fatalf("decoded order invalid: %v", err)
	}
}

func TestTimestamp_AcceptsZuluSuffix(t *testing.T) {
	var ts Timestamp
	if err := ts.UnmarshalJSON([]byte(`"2026-03-01T12:30:05.5Z"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ts.Nanosecond() != 500000000 {
		t.Fatalf("unexpected nanos: %d", ts.Nanosecond())
	}
}

func TestDecode_RejectsNonJSON(t *testing.T) {
	if _, err := Decode([]byte("not json")); err == nil {
		t.Fatalf("expected error")
	}
}
