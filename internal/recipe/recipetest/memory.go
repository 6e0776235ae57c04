// Package recipetest holds an in-memory recipe.Repository for usecase tests.
package recipetest

import (
	"context"
	"sort"
	"sync"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type MemRepository struct {
	mu           sync.Mutex
	recipes      map[string]model.Recipe // By product id
	rawMaterials map[string]model.RawMaterial

	// Lookups counts FindActiveRawMaterials calls.
	Lookups int
}

func NewMemRepository() *MemRepository {
	return &MemRepository{
		recipes:      map[string]model.Recipe{},
		rawMaterials: map[string]model.RawMaterial{},
	}
}

func (m *MemRepository) AddRawMaterial(rm model.RawMaterial) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rawMaterials[rm.ID] = rm
}

func (m *MemRepository) AddRecipe(rec model.Recipe) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recipes[rec.ProductID] = clone(rec)
}

// Recipe returns the stored recipe of productID, or nil.
func (m *MemRepository) Recipe(productID string) *model.Recipe {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recipes[productID]
	if !ok {
		return nil
	}
	out := clone(rec)
	return &out
}

func (m *MemRepository) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := make(map[string]model.Recipe, len(m.recipes))
	for k, v := range m.recipes {
		saved[k] = clone(v)
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.recipes = saved
	}
}

func (m *MemRepository) FindByProduct(ctx context.Context, venueID, productID string) (*model.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recipes[productID]
	if !ok || rec.VenueID != venueID {
		return nil, nil
	}
	out := clone(rec)
	return &out, nil
}

func (m *MemRepository) FindActiveRawMaterials(ctx context.Context, venueID string, ids []string) ([]model.RawMaterial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Lookups++
	out := []model.RawMaterial{}
	for _, id := range ids {
		rm, ok := m.rawMaterials[id]
		if ok && rm.VenueID == venueID && rm.Active && rm.DeletedAt == nil {
			out = append(out, rm)
		}
	}
	return out, nil
}

func (m *MemRepository) Create(ctx context.Context, rec *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *rec
	stored.Lines = nil
	m.recipes[rec.ProductID] = stored
	return nil
}

func (m *MemRepository) Update(ctx context.Context, rec *model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.recipes[rec.ProductID]
	stored.PortionYield = rec.PortionYield
	stored.TotalCost = rec.TotalCost
	stored.UpdatedAt = rec.UpdatedAt
	m.recipes[rec.ProductID] = stored
	return nil
}

func (m *MemRepository) InsertLines(ctx context.Context, lines []model.RecipeLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range lines {
		for pid, rec := range m.recipes {
			if rec.ID == l.RecipeID {
				rec.Lines = append(rec.Lines, l)
				sort.SliceStable(rec.Lines, func(i, j int) bool { return rec.Lines[i].Position < rec.Lines[j].Position })
				m.recipes[pid] = rec
			}
		}
	}
	return nil
}

func (m *MemRepository) DeleteLines(ctx context.Context, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for pid, rec := range m.recipes {
		if rec.ID == recipeID {
			rec.Lines = nil
			m.recipes[pid] = rec
		}
	}
	return nil
}

func clone(rec model.Recipe) model.Recipe {
	rec.Lines = append([]model.RecipeLine(nil), rec.Lines...)
	return rec
}
