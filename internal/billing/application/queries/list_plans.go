package queries

import (
	"context"

	"github.com/dorakingx/subscryption/internal/billing/domain"
)

// ListPlansHandler lists every plan in catalog-id order.
type ListPlansHandler struct {
	planRepo domain.PlanRepository
}

// NewListPlansHandler creates a new ListPlansHandler.
func NewListPlansHandler(planRepo domain.PlanRepository) *ListPlansHandler {
	return &ListPlansHandler{planRepo: planRepo}
}

// Handle returns all plans.
func (h *ListPlansHandler) Handle(ctx context.Context) ([]*domain.Plan, error) {
	return h.planRepo.List(ctx)
}
