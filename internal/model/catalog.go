package model

// Store is a physical store location.
type Store struct {
	ID     string
	City   string
	Region string
}

// Product is a catalog entry.
type Product struct {
	SKU  string
	Name string
}

var Stores = []Store{
	{ID: "STORE-NY-001", City: "New York", Region: "US-East"},
	{ID: "STORE-CHI-002", City: "Chicago", Region: "US-Central"},
	{ID: "STORE-SF-003", City: "San Francisco", Region: "US-West"},
	{ID: "STORE-LON-004", City: "London", Region: "EU-West"},
}

var Products = []Product{
	{SKU: "SKU-1000", Name: "Wireless Mouse"},
	{SKU: "SKU-1001", Name: "Mechanical Keyboard"},
	{SKU: "SKU-1002", Name: "27in Monitor"},
	{SKU: "SKU-1003", Name: "USB-C Hub"},
	{SKU: "SKU-1004", Name: "Noise Cancelling Headphones"},
}

var PaymentMethods = []string{"credit_card", "debit_card", "cash", "mobile_wallet"}

// LookupStore returns the catalog entry for id.
func LookupStore(id string) (Store, bool) {
	for _, s := range Stores {
		if s.ID == id {
			return s, true
		}
	}
	return Store{}, false
}
