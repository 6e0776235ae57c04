package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PGRepository) FindForResolution(ctx context.Context, venueID, productID string) (*model.Product, error) {
	var p model.Product
	query := `
        SELECT p.id, p.venue_id, p.name, p.track_inventory, p.inventory_method,
               p.created_at, p.updated_at,
               EXISTS (
                   SELECT 1 FROM recipes r
                   WHERE r.product_id = p.id AND r.venue_id = p.venue_id
               ) AS has_recipe
        FROM products p
        WHERE p.id = $1 AND p.venue_id = $2
        LIMIT 1
    `
	err := postgres.Conn(ctx, r.DB).GetContext(ctx, &p, query, productID, venueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *PGRepository) BackfillInventoryMethods(ctx context.Context, venueID string) (int64, error) {
	query := `
        UPDATE products p
        SET inventory_method = 'RECIPE', updated_at = NOW()
        WHERE p.inventory_method IS NULL
          AND p.track_inventory = TRUE
          AND EXISTS (SELECT 1 FROM recipes r WHERE r.product_id = p.id AND r.venue_id = p.venue_id)
    `
	args := []interface{}{}
	if venueID != "" {
		query += ` AND p.venue_id = $1`
		args = append(args, venueID)
	}

	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill inventory methods: %w", err)
	}
	return res.RowsAffected()
}
