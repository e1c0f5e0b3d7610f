package queries

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
)

// GetPlanQuery fetches a single plan from the catalog.
type GetPlanQuery struct {
	PlanID int64
}

// GetPlanHandler handles the GetPlanQuery.
type GetPlanHandler struct {
	planRepo domain.PlanRepository
}

// NewGetPlanHandler creates a new GetPlanHandler.
func NewGetPlanHandler(planRepo domain.PlanRepository) *GetPlanHandler {
	return &GetPlanHandler{planRepo: planRepo}
}

// Handle executes the GetPlanQuery.
func (h *GetPlanHandler) Handle(ctx context.Context, query GetPlanQuery) (*domain.Plan, error) {
	return h.planRepo.FindByID(ctx, query.PlanID)
}

// GetPlanCountHandler reports how many plans the catalog holds.
type GetPlanCountHandler struct {
	planRepo domain.PlanRepository
}

// NewGetPlanCountHandler creates a new GetPlanCountHandler.
func NewGetPlanCountHandler(planRepo domain.PlanRepository) *GetPlanCountHandler {
	return &GetPlanCountHandler{planRepo: planRepo}
}

// Handle returns the plan count.
func (h *GetPlanCountHandler) Handle(ctx context.Context) (int64, error) {
	return h.planRepo.Count(ctx)
}
