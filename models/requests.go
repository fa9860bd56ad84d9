package models

// NoPriceChange marks an UpdateRequest that leaves the price untouched.
const NoPriceChange = -1

type CredentialRequest struct {
	Username string
	Password string
}

// StockAdjustment moves Amount units in or out of the product with ID.
type StockAdjustment struct {
	ID     string
	Amount int
}

// UpdateRequest carries a partial product edit. Blank strings and a negative
// price mean "keep the current value".
type UpdateRequest struct {
	Name     string
	Price    float64
	Category string
}
