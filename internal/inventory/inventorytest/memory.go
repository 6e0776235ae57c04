// Package inventorytest holds an in-memory inventory.Repository for usecase tests.
package inventorytest

import (
	"context"
	"sort"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type MemRepository struct {
	mu        sync.Mutex
	items     map[string]model.Inventory // By product id
	movements []model.InventoryMovement

	// Locked makes LockByProduct fail with a lock conflict for these product ids.
	Locked map[string]bool
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		items:  map[string]model.Inventory{},
		Locked: map[string]bool{},
	}
}

func (m *MemRepository) AddInventory(inv model.Inventory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[inv.ProductID] = inv
}

func (m *MemRepository) Inventory(productID string) model.Inventory {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[productID]
}

func (m *MemRepository) Movements() []model.InventoryMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.InventoryMovement(nil), m.movements...)
}

func (m *MemRepository) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make(map[string]model.Inventory, len(m.items))
	for k, v := range m.items {
		items[k] = v
	}
	mv := append([]model.InventoryMovement(nil), m.movements...)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.items, m.movements = items, mv
	}
}

func (m *MemRepository) GetByProduct(ctx context.Context, venueID, productID string) (*model.Inventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.items[productID]
	if !ok || inv.VenueID != venueID {
		return nil, nil
	}
	return &inv, nil
}

func (m *MemRepository) LockByProduct(ctx context.Context, venueID, productID string) (*model.Inventory, error) {
	if m.Locked[productID] {
		return nil, apperror.NewLockConflict("inventory of product "+productID, nil)
	}
	return m.GetByProduct(ctx, venueID, productID)
}

func (m *MemRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Inventory{}
	for _, inv := range m.items {
		if f.VenueID != "" && inv.VenueID != f.VenueID {
			continue
		}
		if f.ProductID != "" && inv.ProductID != f.ProductID {
			continue
		}
		if f.LowStock && !(inv.MinimumStock.IsPositive() && inv.CurrentStock.LessThanOrEqual(inv.MinimumStock)) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, len(out), nil
}

func (m *MemRepository) UpdateStock(ctx context.Context, inv *model.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[inv.ProductID] = *inv
	return nil
}

func (m *MemRepository) LogMovement(ctx context.Context, movement *model.InventoryMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, *movement)
	return nil
}

func (m *MemRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.InventoryMovement{}
	for _, mv := range m.movements {
		if f.ProductID != "" && mv.ProductID != f.ProductID {
			continue
		}
		out = append(out, mv)
	}
	return out, len(out), nil
}
