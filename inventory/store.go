// Package inventory stores products and applies the stock rules.
package inventory

import (
	"context"
	"errors"

	"stockroom/models"
)

var (
	ErrNotFound          = errors.New("product not found")
	ErrDuplicateID       = errors.New("product id already exists")
	ErrInvalidProduct    = errors.New("product information incomplete")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Stats summarizes the whole inventory.
type Stats struct {
	ProductCount int
	TotalValue   float64
	Categories   []string
}

// Store is the product repository used by the HTTP handlers.
type Store interface {
	Add(ctx context.Context, p models.Product) error
	Get(ctx context.Context, id string) (models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	FindByName(ctx context.Context, name string) ([]models.Product, error)
	FindByCategory(ctx context.Context, category string) ([]models.Product, error)
	Update(ctx context.Context, id string, req models.UpdateRequest) (models.Product, error)
	Delete(ctx context.Context, id string) error
	StockIn(ctx context.Context, id string, amount int) (models.Product, error)
	StockOut(ctx context.Context, id string, amount int) (models.Product, error)
	Stats(ctx context.Context) (Stats, error)
	LowStock(ctx context.Context, threshold int) ([]models.Product, error)
}

var samples = []models.Product{
	{ID: "P001", Name: "Laptop", Price: 5999.00, Quantity: 50, Category: "Electronics"},
	{ID: "P002", Name: "Wireless Mouse", Price: 99.00, Quantity: 200, Category: "Electronics"},
	{ID: "P003", Name: "Office Chair", Price: 399.00, Quantity: 30, Category: "Furniture"},
	{ID: "P004", Name: "A4 Paper", Price: 25.00, Quantity: 500, Category: "Office Supplies"},
}

// SeedSamples adds the demo catalogue. Products that already exist are skipped.
func SeedSamples(ctx context.Context, s Store) error {
	for _, p := range samples {
		if err := s.Add(ctx, p); err != nil && !errors.Is(err, ErrDuplicateID) {
			return err
		}
	}
	return nil
}
