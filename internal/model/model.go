package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// TimestampLayout is ISO-8601 with microseconds and a numeric offset.
const TimestampLayout = "2006-01-02T15:04:05.000000-07:00"

// Timestamp is a time.Time with the wire encoding used for order_timestamp.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(TimestampLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, err := time.Parse(TimestampLayout, s)
	if err != nil {
		// Accept any RFC 3339 instant, e.g. one with a Z suffix.
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("timestamp %q: %w", s, err)
		}
	}
	t.Time = parsed
	return nil
}

// LineItem is one product line of an order.
type LineItem struct {
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Order is the retail order event published to the stream.
type Order struct {
	OrderID        string          `json:"order_id"`
	OrderTimestamp Timestamp       `json:"order_timestamp"`
	StoreID        string          `json:"store_id"`
	StoreRegion    string          `json:"store_region"`
	StoreCity      string          `json:"store_city"`
	Items          []LineItem      `json:"items"`
	PaymentMethod  string          `json:"payment_method"`
	OrderTotal     decimal.Decimal `json:"order_total"`
	LoyaltyMember  bool            `json:"loyalty_member"`
}

// NewLineItem computes total_price from unit price and quantity.
func NewLineItem(p Product, quantity int, unitPrice decimal.Decimal) LineItem {
	return LineItem{
		SKU:        p.SKU,
		Name:       p.Name,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// SumTotals returns the sum of the items' total_price.
func SumTotals(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}

// Validate reports the first broken invariant, if any.
func (o Order) Validate() error {
	if strings.TrimSpace(o.OrderID) == "" {
		return errors.New("order_id is empty")
	}
	if len(o.Items) == 0 {
		return errors.New("items is empty")
	}
	store, ok := LookupStore(o.StoreID)
	if !ok {
		return fmt.Errorf("unknown store_id %q", o.StoreID)
	}
	if store.Region != o.StoreRegion || store.City != o.StoreCity {
		return fmt.Errorf("store %s: region/city %s/%s, want %s/%s",
			o.StoreID, o.StoreRegion, o.StoreCity, store.Region, store.City)
	}
	for i, it := range o.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("item %d: quantity %d", i, it.Quantity)
		}
		if !it.UnitPrice.IsPositive() {
			return fmt.Errorf("item %d: unit_price %s", i, it.UnitPrice)
		}
		want := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		if !it.TotalPrice.Equal(want) {
			return fmt.Errorf("item %d: total_price %s, want %s", i, it.TotalPrice, want)
		}
	}
	if sum := SumTotals(o.Items); !o.OrderTotal.Equal(sum) {
		return fmt.Errorf("order_total %s, want %s", o.OrderTotal, sum)
	}
	return nil
}

// Encode renders the order as its wire payload.
func Encode(o Order) ([]byte, error) {
	b, err := json.Marshal(o)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}
	return b, nil
}

// Decode parses a wire payload into an Order.
func Decode(b []byte) (Order, error) {
	var o Order
	if err := json.Unmarshal(b, &o); err != nil {
		return Order{}, fmt.Errorf("unmarshal order: %w", err)
	}
	return o, nil
}
