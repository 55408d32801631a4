package sheets

import (
	"context"

	"github.com/google/uuid"

	"budget/internal/core"
)

// SummaryRow is one exported line of the family budget report: the derived
// figures for one account over one period.
type SummaryRow struct {
	AccountID uuid.UUID
	Period    string
	Summary   core.FinancialSummary
}

// SummaryWriter is the port for outbound report adapters.
type SummaryWriter interface {
	// AppendSummary writes one summary row and returns a row reference.
	AppendSummary(ctx context.Context, row SummaryRow) (rowRef string, err error)
}
