package cli

import (
	"context"
	"log/slog"

	"github.com/alexanderramin/cadence/internal/contract"
)

// NewLogPlanListener logs every assignment the coordinator re-plans.
func NewLogPlanListener(logger *slog.Logger) contract.PlanListener {
	return contract.PlanListenerFunc(func(ctx context.Context, res contract.PlanResult) {
		if logger == nil {
			return
		}
		logger.InfoContext(ctx, "assignment planned",
			"assignment_id", res.AssignmentID,
			"user_id", res.UserID,
			"changed_steps", res.ChangedSteps,
			"warnings", len(res.Warnings),
		)
	})
}
