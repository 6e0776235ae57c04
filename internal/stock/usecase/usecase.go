package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("omnipos-inventory-service/stock")

type stockUseCase struct {
	repo   stock.Repository
	tx     postgres.Transactor
	logger logger.ZapLogger
	now    func() time.Time
}

func NewStockUseCase(repo stock.Repository, tx postgres.Transactor, log logger.ZapLogger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		tx:     tx,
		logger: log,
		now:    time.Now,
	}
}

// DeductFIFO consumes quantity from the raw material's batches, oldest first, in one
// transaction. Either every batch update, movement and the aggregate counter commit
// together or nothing does.
func (uc *stockUseCase) DeductFIFO(ctx context.Context, input *dto.DeductFIFOInput) (*dto.FIFOResult, error) {
	if !input.Quantity.IsPositive() {
		return nil, apperror.NewValidation("deduction quantity must be positive")
	}
	movementType := input.MovementType
	if movementType == "" {
		movementType = model.RawMaterialMovementUsage
	}

	ctx, span := tracer.Start(ctx, "stock.DeductFIFO", trace.WithAttributes(
		attribute.String("venue_id", input.VenueID),
		attribute.String("raw_material_id", input.RawMaterialID),
		attribute.String("quantity", input.Quantity.String()),
	))
	defer span.End()

	var result *dto.FIFOResult
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 1. Lock the aggregate row first, then its batches oldest-first
		rm, err := uc.repo.LockRawMaterial(ctx, input.VenueID, input.RawMaterialID)
		if err != nil {
			return err
		}
		if rm == nil {
			return apperror.NewNotFound("raw material %s not found", input.RawMaterialID)
		}

		batches, err := uc.repo.LockAvailableBatches(ctx, rm.ID)
		if err != nil {
			return err
		}

		// 2. Plan the whole allocation before touching any row
		plan := stock.AllocateFIFO(batches, input.Quantity)
		if plan.Shortfall.IsPositive() {
			return apperror.NewInsufficientStock("raw material "+rm.Name, input.Quantity, plan.Allocated)
		}

		newStock := rm.CurrentStock.Sub(input.Quantity)
		if newStock.IsNegative() {
			return fmt.Errorf("aggregate stock of raw material %s (%s) is below its batch total", rm.ID, rm.CurrentStock)
		}

		// 3. Apply per batch, one movement each
		now := uc.now()
		running := rm.CurrentStock
		movements := make([]model.RawMaterialMovement, 0, len(plan.Allocations))
		for _, a := range plan.Allocations {
			if err := uc.repo.UpdateBatchRemaining(ctx, a.BatchID, a.RemainingAfter); err != nil {
				return err
			}
			batchID := a.BatchID
			movements = append(movements, model.RawMaterialMovement{
				ID:            uuid.New().String(),
				VenueID:       input.VenueID,
				RawMaterialID: rm.ID,
				BatchID:       &batchID,
				Type:          movementType,
				Quantity:      a.Quantity.Neg(),
				PreviousStock: running,
				NewStock:      running.Sub(a.Quantity),
				CostPerUnit:   a.CostPerUnit,
				Reason:        input.Reason,
				Reference:     optional(input.Reference),
				CreatedBy:     optional(input.ActorID),
				CreatedAt:     now,
			})
			running = running.Sub(a.Quantity)
		}
		if err := uc.repo.InsertMovements(ctx, movements); err != nil {
			return err
		}

		// 4. Aggregate counter in the same transaction
		rm.CurrentStock = newStock
		rm.UpdatedAt = now
		if err := uc.repo.UpdateRawMaterialStock(ctx, rm); err != nil {
			return err
		}

		result = &dto.FIFOResult{
			RawMaterialID: rm.ID,
			Unit:          rm.Unit,
			Quantity:      input.Quantity,
			Allocations:   plan.Allocations,
			TotalCost:     plan.TotalCost,
			NewStock:      newStock,
		}
		return nil
	})
	if err != nil {
		err = apperror.FromTx(err, "raw material "+input.RawMaterialID)
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("allocations", len(result.Allocations)))
	return result, nil
}

// ReceiveBatch books a new lot and raises the aggregate counter in one transaction.
func (uc *stockUseCase) ReceiveBatch(ctx context.Context, input *dto.ReceiveBatchInput) (*model.StockBatch, error) {
	if !input.Quantity.IsPositive() {
		return nil, apperror.NewValidation("received quantity must be positive")
	}
	if input.CostPerUnit.IsNegative() {
		return nil, apperror.NewValidation("cost per unit cannot be negative")
	}

	ctx, span := tracer.Start(ctx, "stock.ReceiveBatch", trace.WithAttributes(
		attribute.String("venue_id", input.VenueID),
		attribute.String("raw_material_id", input.RawMaterialID),
	))
	defer span.End()

	var batch *model.StockBatch
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		rm, err := uc.repo.LockRawMaterial(ctx, input.VenueID, input.RawMaterialID)
		if err != nil {
			return err
		}
		if rm == nil {
			return apperror.NewNotFound("raw material %s not found", input.RawMaterialID)
		}

		now := uc.now()
		received := input.ReceivedDate
		if received.IsZero() {
			received = now
		}
		unit := input.Unit
		if unit == "" {
			unit = rm.Unit
		}
		batchNumber := input.BatchNumber
		if batchNumber == "" {
			batchNumber = fmt.Sprintf("%s-%s", received.Format("20060102"), uuid.New().String()[:8])
		}

		batch = &model.StockBatch{
			ID:                uuid.New().String(),
			RawMaterialID:     rm.ID,
			BatchNumber:       batchNumber,
			ReceivedDate:      received,
			InitialQuantity:   input.Quantity,
			RemainingQuantity: input.Quantity,
			CostPerUnit:       input.CostPerUnit,
			Unit:              unit,
			CreatedAt:         now,
		}
		if err := uc.repo.InsertBatch(ctx, batch); err != nil {
			return err
		}

		newStock := rm.CurrentStock.Add(input.Quantity)
		movement := model.RawMaterialMovement{
			ID:            uuid.New().String(),
			VenueID:       input.VenueID,
			RawMaterialID: rm.ID,
			BatchID:       &batch.ID,
			Type:          model.RawMaterialMovementReceipt,
			Quantity:      input.Quantity,
			PreviousStock: rm.CurrentStock,
			NewStock:      newStock,
			CostPerUnit:   input.CostPerUnit,
			Reason:        input.Reason,
			Reference:     optional(input.Reference),
			CreatedBy:     optional(input.ActorID),
			CreatedAt:     now,
		}
		if err := uc.repo.InsertMovements(ctx, []model.RawMaterialMovement{movement}); err != nil {
			return err
		}

		rm.CurrentStock = newStock
		rm.CostPerUnit = input.CostPerUnit
		rm.UpdatedAt = now
		return uc.repo.UpdateRawMaterialStock(ctx, rm)
	})
	if err != nil {
		err = apperror.FromTx(err, "raw material "+input.RawMaterialID)
		span.RecordError(err)
		return nil, err
	}

	return batch, nil
}

func (uc *stockUseCase) ListLowStock(ctx context.Context, venueID string) ([]model.RawMaterial, error) {
	return uc.repo.ListLowStock(ctx, venueID)
}

// Reconcile reports raw materials whose aggregate counter drifted from their batches.
// It only reads; fixing a divergence is an operator decision.
func (uc *stockUseCase) Reconcile(ctx context.Context, venueID string) ([]dto.StockDivergence, error) {
	items, err := uc.repo.FindDivergent(ctx, venueID)
	if err != nil {
		return nil, err
	}
	for _, d := range items {
		uc.logger.Warn("raw material stock diverged from batches",
			zap.String("venue_id", venueID),
			zap.String("raw_material_id", d.RawMaterialID),
			zap.String("current_stock", d.CurrentStock.String()),
			zap.String("batch_total", d.BatchTotal.String()),
		)
	}
	return items, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
