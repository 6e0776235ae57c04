// Package stocktest holds an in-memory stock.Repository for usecase tests.
package stocktest

import (
	"context"
	"sort"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
)

type MemRepository struct {
	mu           sync.Mutex
	rawMaterials map[string]model.RawMaterial
	batches      map[string]model.StockBatch
	movements    []model.RawMaterialMovement

	// LockedBatches makes LockAvailableBatches fail with a lock conflict for these raw
	// material ids, as if another transaction held them.
	LockedBatches map[string]bool
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		rawMaterials:  map[string]model.RawMaterial{},
		batches:       map[string]model.StockBatch{},
		LockedBatches: map[string]bool{},
	}
}

func (m *MemRepository) AddRawMaterial(rm model.RawMaterial) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawMaterials[rm.ID] = rm
}

// AddBatch stores b and raises the owning raw material's counter accordingly.
func (m *MemRepository) AddBatch(b model.StockBatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = b
	if rm, ok := m.rawMaterials[b.RawMaterialID]; ok {
		rm.CurrentStock = rm.CurrentStock.Add(b.RemainingQuantity)
		m.rawMaterials[rm.ID] = rm
	}
}

func (m *MemRepository) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	rms := make(map[string]model.RawMaterial, len(m.rawMaterials))
	for k, v := range m.rawMaterials {
		rms[k] = v
	}
	bs := make(map[string]model.StockBatch, len(m.batches))
	for k, v := range m.batches {
		bs[k] = v
	}
	mv := append([]model.RawMaterialMovement(nil), m.movements...)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.rawMaterials, m.batches, m.movements = rms, bs, mv
	}
}

func (m *MemRepository) Stock(rawMaterialID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rawMaterials[rawMaterialID].CurrentStock
}

func (m *MemRepository) RawMaterial(rawMaterialID string) model.RawMaterial {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rawMaterials[rawMaterialID]
}

func (m *MemRepository) BatchRemaining(batchID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[batchID].RemainingQuantity
}

func (m *MemRepository) BatchTotal(rawMaterialID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, b := range m.batches {
		if b.RawMaterialID == rawMaterialID {
			total = total.Add(b.RemainingQuantity)
		}
	}
	return total
}

func (m *MemRepository) Movements() []model.RawMaterialMovement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.RawMaterialMovement(nil), m.movements...)
}

func (m *MemRepository) LockRawMaterial(ctx context.Context, venueID, rawMaterialID string) (*model.RawMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rm, ok := m.rawMaterials[rawMaterialID]
	if !ok || rm.VenueID != venueID || rm.DeletedAt != nil {
		return nil, nil
	}
	return &rm, nil
}

func (m *MemRepository) LockAvailableBatches(ctx context.Context, rawMaterialID string) ([]model.StockBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LockedBatches[rawMaterialID] {
		return nil, apperror.NewLockConflict("stock batches of raw material "+rawMaterialID, nil)
	}
	var out []model.StockBatch
	for _, b := range m.batches {
		if b.RawMaterialID == rawMaterialID && b.RemainingQuantity.IsPositive() {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ReceivedDate.Equal(out[j].ReceivedDate) {
			return out[i].ReceivedDate.Before(out[j].ReceivedDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemRepository) InsertBatch(ctx context.Context, b *model.StockBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches[b.ID] = *b
	return nil
}

func (m *MemRepository) UpdateBatchRemaining(ctx context.Context, batchID string, remaining decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.batches[batchID]
	b.RemainingQuantity = remaining
	m.batches[batchID] = b
	return nil
}

func (m *MemRepository) UpdateRawMaterialStock(ctx context.Context, rm *model.RawMaterial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawMaterials[rm.ID] = *rm
	return nil
}

func (m *MemRepository) InsertMovements(ctx context.Context, movements []model.RawMaterialMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *MemRepository) ListLowStock(ctx context.Context, venueID string) ([]model.RawMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.RawMaterial{}
	for _, rm := range m.rawMaterials {
		if rm.VenueID == venueID && rm.DeletedAt == nil && rm.Active &&
			rm.MinimumStock.IsPositive() && rm.CurrentStock.LessThanOrEqual(rm.MinimumStock) {
			out = append(out, rm)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemRepository) FindDivergent(ctx context.Context, venueID string) ([]dto.StockDivergence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []dto.StockDivergence{}
	for _, rm := range m.rawMaterials {
		if rm.VenueID != venueID || rm.DeletedAt != nil {
			continue
		}
		total := decimal.Zero
		for _, b := range m.batches {
			if b.RawMaterialID == rm.ID {
				total = total.Add(b.RemainingQuantity)
			}
		}
		if !total.Equal(rm.CurrentStock) {
			out = append(out, dto.StockDivergence{RawMaterialID: rm.ID, Name: rm.Name, CurrentStock: rm.CurrentStock, BatchTotal: total})
		}
	}
	return out, nil
}
