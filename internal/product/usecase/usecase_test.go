package usecase

import (
	"context"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/product/producttest"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const venue = "venue-1"

func method(m model.InventoryMethod) *string {
	s := string(m)
	return &s
}

func TestResolveMethod(t *testing.T) {
	repo := producttest.NewMemRepository()
	uc := NewProductUseCase(repo, logger.NewNop())

	legacyNone := ""
	products := []model.Product{
		{BaseModel: model.BaseModel{ID: "untracked"}, VenueID: venue, TrackInventory: false, InventoryMethod: method(model.InventoryMethodQuantity), HasRecipe: true},
		{BaseModel: model.BaseModel{ID: "bottled"}, VenueID: venue, TrackInventory: true, InventoryMethod: method(model.InventoryMethodQuantity)},
		{BaseModel: model.BaseModel{ID: "pizza"}, VenueID: venue, TrackInventory: true, InventoryMethod: method(model.InventoryMethodRecipe), HasRecipe: true},
		{BaseModel: model.BaseModel{ID: "explicit-wins"}, VenueID: venue, TrackInventory: true, InventoryMethod: method(model.InventoryMethodQuantity), HasRecipe: true},
		{BaseModel: model.BaseModel{ID: "legacy"}, VenueID: venue, TrackInventory: true, HasRecipe: true},
		{BaseModel: model.BaseModel{ID: "legacy-empty"}, VenueID: venue, TrackInventory: true, InventoryMethod: &legacyNone, HasRecipe: true},
		{BaseModel: model.BaseModel{ID: "bare"}, VenueID: venue, TrackInventory: true},
	}
	for _, p := range products {
		repo.AddProduct(p)
	}

	tests := []struct {
		productID string
		want      model.InventoryMethod
	}{
		{"untracked", model.InventoryMethodNone},
		{"bottled", model.InventoryMethodQuantity},
		{"pizza", model.InventoryMethodRecipe},
		{"explicit-wins", model.InventoryMethodQuantity},
		{"legacy", model.InventoryMethodRecipe},
		{"legacy-empty", model.InventoryMethodRecipe},
		{"bare", model.InventoryMethodNone},
	}
	for _, tt := range tests {
		t.Run(tt.productID, func(t *testing.T) {
			got, err := uc.ResolveMethod(context.Background(), venue, tt.productID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveMethod_UnknownProduct(t *testing.T) {
	repo := producttest.NewMemRepository()
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "pizza"}, VenueID: "venue-2", TrackInventory: true})
	uc := NewProductUseCase(repo, logger.NewNop())

	_, err := uc.ResolveMethod(context.Background(), venue, "pizza")

	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestResolveMethod_RejectsUnknownStoredMethod(t *testing.T) {
	repo := producttest.NewMemRepository()
	bogus := "WEIGHT"
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "p"}, VenueID: venue, TrackInventory: true, InventoryMethod: &bogus})
	uc := NewProductUseCase(repo, logger.NewNop())

	_, err := uc.ResolveMethod(context.Background(), venue, "p")

	assert.ErrorContains(t, err, "unknown inventory method")
}

func TestResolveMethod_RepeatableRead(t *testing.T) {
	repo := producttest.NewMemRepository()
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "legacy"}, VenueID: venue, TrackInventory: true, HasRecipe: true})
	uc := NewProductUseCase(repo, logger.NewNop())

	for i := 0; i < 3; i++ {
		got, err := uc.ResolveMethod(context.Background(), venue, "legacy")
		require.NoError(t, err)
		assert.Equal(t, model.InventoryMethodRecipe, got)
	}
	assert.Nil(t, repo.Product("legacy").InventoryMethod, "resolution must not write")
}

func TestBackfillInventoryMethods(t *testing.T) {
	repo := producttest.NewMemRepository()
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "legacy"}, VenueID: venue, TrackInventory: true, HasRecipe: true})
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "other-venue"}, VenueID: "venue-2", TrackInventory: true, HasRecipe: true})
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "untracked"}, VenueID: venue, HasRecipe: true})
	repo.AddProduct(model.Product{BaseModel: model.BaseModel{ID: "bare"}, VenueID: venue, TrackInventory: true})
	uc := NewProductUseCase(repo, logger.NewNop())

	n, err := uc.BackfillInventoryMethods(context.Background(), venue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NotNil(t, repo.Product("legacy").InventoryMethod)
	assert.Equal(t, "RECIPE", *repo.Product("legacy").InventoryMethod)
	assert.Nil(t, repo.Product("other-venue").InventoryMethod)

	n, err = uc.BackfillInventoryMethods(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := uc.ResolveMethod(context.Background(), venue, "legacy")
	require.NoError(t, err)
	assert.Equal(t, model.InventoryMethodRecipe, got)
}
