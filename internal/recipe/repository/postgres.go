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

func (r *PGRepository) FindByProduct(ctx context.Context, venueID, productID string) (*model.Recipe, error) {
	conn := postgres.Conn(ctx, r.DB)

	var rec model.Recipe
	query := `SELECT * FROM recipes WHERE venue_id = $1 AND product_id = $2`
	if err := conn.GetContext(ctx, &rec, query, venueID, productID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	lines := []model.RecipeLine{}
	query = `SELECT * FROM recipe_lines WHERE recipe_id = $1 ORDER BY position ASC, id ASC`
	if err := conn.SelectContext(ctx, &lines, query, rec.ID); err != nil {
		return nil, fmt.Errorf("failed to get recipe lines: %w", err)
	}
	rec.Lines = lines
	return &rec, nil
}

func (r *PGRepository) FindActiveRawMaterials(ctx context.Context, venueID string, ids []string) ([]model.RawMaterial, error) {
	if len(ids) == 0 {
		return []model.RawMaterial{}, nil
	}

	query, args, err := sqlx.In(`
        SELECT * FROM raw_materials
        WHERE venue_id = ? AND id IN (?) AND active = TRUE AND deleted_at IS NULL
    `, venueID, ids)
	if err != nil {
		return nil, err
	}

	conn := postgres.Conn(ctx, r.DB)
	// Rebind for Postgres ($1, $2...)
	query = conn.Rebind(query)

	items := []model.RawMaterial{}
	if err := conn.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to look up raw materials: %w", err)
	}
	return items, nil
}

func (r *PGRepository) Create(ctx context.Context, rec *model.Recipe) error {
	query := `
        INSERT INTO recipes (id, venue_id, product_id, portion_yield, total_cost, created_at, updated_at)
        VALUES (:id, :venue_id, :product_id, :portion_yield, :total_cost, :created_at, :updated_at)
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, rec *model.Recipe) error {
	query := `
        UPDATE recipes
        SET portion_yield = :portion_yield,
            total_cost = :total_cost,
            updated_at = :updated_at
        WHERE id = :id AND venue_id = :venue_id
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("failed to update recipe: %w", err)
	}
	return nil
}

func (r *PGRepository) InsertLines(ctx context.Context, lines []model.RecipeLine) error {
	if len(lines) == 0 {
		return nil
	}
	query := `
        INSERT INTO recipe_lines (id, recipe_id, raw_material_id, quantity, unit, is_optional, position)
        VALUES (:id, :recipe_id, :raw_material_id, :quantity, :unit, :is_optional, :position)
    `
	if _, err := postgres.Conn(ctx, r.DB).NamedExecContext(ctx, query, lines); err != nil {
		return fmt.Errorf("failed to insert recipe lines: %w", err)
	}
	return nil
}

func (r *PGRepository) DeleteLines(ctx context.Context, recipeID string) error {
	if _, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM recipe_lines WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("failed to delete recipe lines: %w", err)
	}
	return nil
}
