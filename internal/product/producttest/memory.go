// Package producttest holds an in-memory product.Repository for usecase tests.
package producttest

import (
	"context"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type MemRepository struct {
	mu       sync.Mutex
	products map[string]model.Product

	// Reads counts FindForResolution calls.
	Reads int
}

func NewMemRepository() *MemRepository {
	return &MemRepository{products: map[string]model.Product{}}
}

func (m *MemRepository) AddProduct(p model.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MemRepository) Product(id string) model.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id]
}

func (m *MemRepository) FindForResolution(ctx context.Context, venueID, productID string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reads++
	p, ok := m.products[productID]
	if !ok || p.VenueID != venueID {
		return nil, nil
	}
	return &p, nil
}

func (m *MemRepository) BackfillInventoryMethods(ctx context.Context, venueID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	recipe := string(model.InventoryMethodRecipe)
	for id, p := range m.products {
		if venueID != "" && p.VenueID != venueID {
			continue
		}
		if p.TrackInventory && p.InventoryMethod == nil && p.HasRecipe {
			p.InventoryMethod = &recipe
			m.products[id] = p
			n++
		}
	}
	return n, nil
}
