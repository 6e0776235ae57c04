package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) LockRawMaterial(ctx context.Context, venueID, rawMaterialID string) (*model.RawMaterial, error) {
	var rm model.RawMaterial
	query := `
        SELECT * FROM raw_materials
        WHERE id = $1 AND venue_id = $2 AND deleted_at IS NULL
        FOR UPDATE NOWAIT
    `
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &rm, query, rawMaterialID, venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if postgres.IsLockNotAvailable(err) {
			return nil, apperror.NewLockConflict("raw material "+rawMaterialID, err)
		}
		return nil, fmt.Errorf("failed to lock raw material: %w", err)
	}
	return &rm, nil
}

// LockAvailableBatches locks every batch with stock left, oldest first, so concurrent
// deductions on the same raw material always request locks in the same order.
func (r *PGRepository) LockAvailableBatches(ctx context.Context, rawMaterialID string) ([]model.StockBatch, error) {
	var batches []model.StockBatch
	query := `
        SELECT * FROM stock_batches
        WHERE raw_material_id = $1 AND remaining_quantity > 0
        ORDER BY received_date ASC, id ASC
        FOR UPDATE NOWAIT
    `
	err := postgres.Conn(ctx, r.DB).SelectContext(ctx, &batches, query, rawMaterialID)
	if err != nil {
		if postgres.IsLockNotAvailable(err) {
			return nil, apperror.NewLockConflict("stock batches of raw material "+rawMaterialID, err)
		}
		return nil, fmt.Errorf("failed to lock stock batches: %w", err)
	}
	return batches, nil
}

func (r *PGRepository) InsertBatch(ctx context.Context, b *model.StockBatch) error {
	query := `
        INSERT INTO stock_batches (
            id, raw_material_id, batch_number, received_date, initial_quantity,
            remaining_quantity, cost_per_unit, unit, created_at
        )
        VALUES (
            :id, :raw_material_id, :batch_number, :received_date, :initial_quantity,
            :remaining_quantity, :cost_per_unit, :unit, :created_at
        )
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, b); err != nil {
		return fmt.Errorf("failed to insert stock batch: %w", err)
	}
	return nil
}

func (r *PGRepository) UpdateBatchRemaining(ctx context.Context, batchID string, remaining decimal.Decimal) error {
	query := `UPDATE stock_batches SET remaining_quantity = $1 WHERE id = $2`
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, remaining, batchID)
	if err != nil {
		return fmt.Errorf("failed to update stock batch: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("stock batch %s vanished during deduction", batchID)
	}
	return nil
}

func (r *PGRepository) UpdateRawMaterialStock(ctx context.Context, rm *model.RawMaterial) error {
	query := `
        UPDATE raw_materials
        SET current_stock = :current_stock,
            cost_per_unit = :cost_per_unit,
            updated_at = :updated_at
        WHERE id = :id AND venue_id = :venue_id
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, rm); err != nil {
		return fmt.Errorf("failed to update raw material stock: %w", err)
	}
	return nil
}

func (r *PGRepository) InsertMovements(ctx context.Context, movements []model.RawMaterialMovement) error {
	if len(movements) == 0 {
		return nil
	}
	query := `
        INSERT INTO raw_material_movements (
            id, venue_id, raw_material_id, batch_id, type, quantity,
            previous_stock, new_stock, cost_per_unit, reason, reference, created_by, created_at
        )
        VALUES (
            :id, :venue_id, :raw_material_id, :batch_id, :type, :quantity,
            :previous_stock, :new_stock, :cost_per_unit, :reason, :reference, :created_by, :created_at
        )
    `
	// sqlx expands a slice argument into a multi-row VALUES list.
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, movements); err != nil {
		return fmt.Errorf("failed to log raw material movements: %w", err)
	}
	return nil
}

func (r *PGRepository) ListLowStock(ctx context.Context, venueID string) ([]model.RawMaterial, error) {
	items := []model.RawMaterial{}
	query := `
        SELECT * FROM raw_materials
        WHERE venue_id = $1 AND deleted_at IS NULL AND active = TRUE
          AND minimum_stock > 0 AND current_stock <= minimum_stock
        ORDER BY name ASC
    `
	if err := r.DB.SelectContext(ctx, &items, query, venueID); err != nil {
		return nil, fmt.Errorf("failed to list low stock raw materials: %w", err)
	}
	return items, nil
}

func (r *PGRepository) FindDivergent(ctx context.Context, venueID string) ([]dto.StockDivergence, error) {
	items := []dto.StockDivergence{}
	query := `
        SELECT rm.id AS raw_material_id, rm.name, rm.current_stock,
               COALESCE(SUM(sb.remaining_quantity), 0) AS batch_total
        FROM raw_materials rm
        LEFT JOIN stock_batches sb ON sb.raw_material_id = rm.id
        WHERE rm.venue_id = $1 AND rm.deleted_at IS NULL
        GROUP BY rm.id, rm.name, rm.current_stock
        HAVING rm.current_stock <> COALESCE(SUM(sb.remaining_quantity), 0)
        ORDER BY rm.name ASC
    `
	if err := r.DB.SelectContext(ctx, &items, query, venueID); err != nil {
		return nil, fmt.Errorf("failed to reconcile raw material stock: %w", err)
	}
	return items, nil
}
