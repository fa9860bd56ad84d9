package models

// Product is a single inventory record keyed by ID.
type Product struct {
	ID       string
	Name     string
	Price    float64
	Quantity int
	Category string
}

// TotalValue is price times quantity on hand. It is never stored.
func (p Product) TotalValue() float64 {
	return p.Price * float64(p.Quantity)
}
