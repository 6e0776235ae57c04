package stock

import (
	"sort"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/stock/dto"
	"github.com/shopspring/decimal"
)

// AllocateFIFO spreads quantity over batches oldest first (received date, then id) and
// never takes more than a batch holds. It does not mutate batches.
func AllocateFIFO(batches []model.StockBatch, quantity decimal.Decimal) dto.AllocationPlan {
	ordered := make([]model.StockBatch, len(batches))
	copy(ordered, batches)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].ReceivedDate.Equal(ordered[j].ReceivedDate) {
			return ordered[i].ReceivedDate.Before(ordered[j].ReceivedDate)
		}
		return ordered[i].ID < ordered[j].ID
	})

	plan := dto.AllocationPlan{
		Allocated: decimal.Zero,
		TotalCost: decimal.Zero,
	}
	outstanding := quantity

	for _, b := range ordered {
		if !outstanding.IsPositive() {
			break
		}
		if !b.RemainingQuantity.IsPositive() {
			continue
		}

		take := decimal.Min(b.RemainingQuantity, outstanding)
		cost := take.Mul(b.CostPerUnit)

		plan.Allocations = append(plan.Allocations, dto.Allocation{
			BatchID:        b.ID,
			BatchNumber:    b.BatchNumber,
			ReceivedDate:   b.ReceivedDate,
			Quantity:       take,
			CostPerUnit:    b.CostPerUnit,
			Cost:           cost,
			RemainingAfter: b.RemainingQuantity.Sub(take),
		})
		plan.Allocated = plan.Allocated.Add(take)
		plan.TotalCost = plan.TotalCost.Add(cost)
		outstanding = outstanding.Sub(take)
	}

	if outstanding.IsPositive() {
		plan.Shortfall = outstanding
	} else {
		plan.Shortfall = decimal.Zero
	}
	return plan
}
