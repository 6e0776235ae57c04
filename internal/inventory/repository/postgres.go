package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) GetByProduct(ctx context.Context, venueID, productID string) (*model.Inventory, error) {
	var inv model.Inventory
	query := `SELECT * FROM inventory WHERE venue_id = $1 AND product_id = $2`
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &inv, query, venueID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return &inv, nil
}

func (r *PGRepository) LockByProduct(ctx context.Context, venueID, productID string) (*model.Inventory, error) {
	var inv model.Inventory
	query := `
        SELECT * FROM inventory
        WHERE venue_id = $1 AND product_id = $2
        FOR UPDATE NOWAIT
    `
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &inv, query, venueID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if postgres.IsLockNotAvailable(err) {
			return nil, apperror.NewLockConflict("inventory of product "+productID, err)
		}
		return nil, fmt.Errorf("failed to lock inventory: %w", err)
	}
	return &inv, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.Inventory, int, error) {
	items := []model.Inventory{}
	conditions := []string{}
	args := map[string]interface{}{}

	if f.VenueID != "" {
		conditions = append(conditions, "venue_id = :venue_id")
		args["venue_id"] = f.VenueID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LowStock {
		conditions = append(conditions, "current_stock <= minimum_stock AND minimum_stock > 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.count(ctx, "SELECT count(*) FROM inventory"+whereClause, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory: %w", err)
	}

	query := "SELECT * FROM inventory" + whereClause + " ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) UpdateStock(ctx context.Context, inv *model.Inventory) error {
	query := `
        UPDATE inventory
        SET current_stock = :current_stock,
            updated_at = :updated_at
        WHERE id = :id AND venue_id = :venue_id
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, inv); err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	return nil
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, venue_id, product_id, type, quantity, previous_stock, new_stock,
            reason, reference, created_by, created_at
        )
        VALUES (
            :id, :venue_id, :product_id, :type, :quantity, :previous_stock, :new_stock,
            :reason, :reference, :created_by, :created_at
        )
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	items := []model.InventoryMovement{}
	conditions := []string{}
	args := map[string]interface{}{}

	if f.VenueID != "" {
		conditions = append(conditions, "venue_id = :venue_id")
		args["venue_id"] = f.VenueID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "type = :type")
		args["type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.count(ctx, "SELECT count(*) FROM inventory_movements"+whereClause, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (max(f.Page, 1) - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &items, args); err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	return items, count, nil
}

func (r *PGRepository) count(ctx context.Context, query string, args map[string]interface{}) (int, error) {
	rows, err := r.DB.NamedQueryContext(ctx, query, args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}
