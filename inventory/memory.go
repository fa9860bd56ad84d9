package inventory

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"stockroom/models"
)

// MemoryStore keeps products in memory in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.Product
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*models.Product)}
}

func (s *MemoryStore) Add(_ context.Context, p models.Product) error {
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" || p.Price < 0 || p.Quantity < 0 {
		return ErrInvalidProduct
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[p.ID]; ok {
		return ErrDuplicateID
	}
	s.items[p.ID] = &p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.items[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	return *p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.Product, error) {
	return s.filter(func(models.Product) bool { return true }), nil
}

// FindByName matches products whose name contains name.
func (s *MemoryStore) FindByName(_ context.Context, name string) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return strings.Contains(p.Name, name) }), nil
}

func (s *MemoryStore) FindByCategory(_ context.Context, category string) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.Category == category }), nil
}

// LowStock lists products with fewer than threshold units.
func (s *MemoryStore) LowStock(_ context.Context, threshold int) ([]models.Product, error) {
	return s.filter(func(p models.Product) bool { return p.Quantity < threshold }), nil
}

func (s *MemoryStore) filter(keep func(models.Product) bool) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.order))
	for _, id := range s.order {
		if p := *s.items[id]; keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Update applies the non-blank fields of req.
func (s *MemoryStore) Update(_ context.Context, id string, req models.UpdateRequest) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if strings.TrimSpace(req.Name) != "" {
		p.Name = req.Name
	}
	if req.Price >= 0 {
		p.Price = req.Price
	}
	if strings.TrimSpace(req.Category) != "" {
		p.Category = req.Category
	}
	return *p, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// StockIn rejects an amount that would overflow the quantity on hand.
func (s *MemoryStore) StockIn(_ context.Context, id string, amount int) (models.Product, error) {
	if amount <= 0 {
		return models.Product{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if amount > math.MaxInt-p.Quantity {
		return models.Product{}, ErrInvalidAmount
	}
	p.Quantity += amount
	return *p, nil
}

// StockOut never lets the quantity drop below zero.
func (s *MemoryStore) StockOut(_ context.Context, id string, amount int) (models.Product, error) {
	if amount <= 0 {
		return models.Product{}, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.items[id]
	if !ok {
		return models.Product{}, ErrNotFound
	}
	if p.Quantity < amount {
		return models.Product{}, ErrInsufficientStock
	}
	p.Quantity -= amount
	return *p, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{ProductCount: len(s.items), Categories: []string{}}
	seen := make(map[string]bool)
	for _, id := range s.order {
		p := s.items[id]
		st.TotalValue += p.TotalValue()
		if !seen[p.Category] {
			seen[p.Category] = true
			st.Categories = append(st.Categories, p.Category)
		}
	}
	sort.Strings(st.Categories)
	return st, nil
}
