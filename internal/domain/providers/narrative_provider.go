package providers

import (
	"context"

	"github.com/clearcompass/clearcompass/backend/internal/domain/entities"
)

// NarrativeProvider generates a prose explanation of an estimate.
// It is purely presentational: failures or slow responses are replaced
// with a fixed default by the implementation, and the numeric result is
// never affected.
type NarrativeProvider interface {
	// ExplainEstimate returns a short explanation of the result,
	// optionally addressing a free-text question from the user.
	ExplainEstimate(ctx context.Context, result *entities.EstimateResult, question string) (string, error)
}
