package generator

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ordersim/internal/model"
)

const (
	minItems    = 1
	maxItems    = 3
	minQuantity = 1
	maxQuantity = 5
	minPrice    = 10.0
	maxPrice    = 250.0
)

// Generator produces random orders. It is not safe for concurrent use.
type Generator struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// New returns a generator seeded with seed; 0 picks a random seed.
func New(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: time.Now}
}

// NewWithClock is for tests that need a fixed order_timestamp.
func NewWithClock(seed uint64, now func() time.Time) *Generator {
	return &Generator{faker: gofakeit.New(seed), now: now}
}

// LineItem draws one product line.
func (g *Generator) LineItem() model.LineItem {
	p := model.Products[g.faker.Number(0, len(model.Products)-1)]
	qty := g.faker.Number(minQuantity, maxQuantity)
	price := decimal.NewFromFloat(g.faker.Float64Range(minPrice, maxPrice)).Round(2)
	return model.NewLineItem(p, qty, price)
}

// Order draws one complete order.
func (g *Generator) Order() model.Order {
	store := model.Stores[g.faker.Number(0, len(model.Stores)-1)]
	n := g.faker.Number(minItems, maxItems)
	items := make([]model.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, g.LineItem())
	}
	return model.Order{
		OrderID:        uuid.NewString(),
		OrderTimestamp: model.Timestamp{Time: g.now().UTC().Truncate(time.Microsecond)},
		StoreID:        store.ID,
		StoreRegion:    store.Region,
		StoreCity:      store.City,
		Items:          items,
		PaymentMethod:  model.PaymentMethods[g.faker.Number(0, len(model.PaymentMethods)-1)],
		OrderTotal:     model.SumTotals(items),
		LoyaltyMember:  g.faker.Bool(),
	}
}
