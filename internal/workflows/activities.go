package workflows

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Vamsibolem10/Mini-Researcher/internal/remote"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

const (
	statusErrorType    = "ResearchStatusError"
	transportErrorType = "ResearchTransportError"
)

type ResearchClient interface {
	Research(ctx context.Context, req research.Request, answers []research.FollowupAnswer) (string, error)
}

type Activities struct {
	client ResearchClient
}

func NewActivities(client ResearchClient) *Activities {
	return &Activities{client: client}
}

// SubmitResearch calls the research service. Failures are non-retryable
// application errors; a status failure carries its code and text as details
// so the caller can rebuild it.
func (a *Activities) SubmitResearch(ctx context.Context, input ResearchInput) (ResearchOutput, error) {
	logger := activity.GetLogger(ctx)
	answers := input.Answers
	if answers == nil {
		answers = []research.FollowupAnswer{}
	}

	result, err := a.client.Research(ctx, input.Request, answers)
	if err != nil {
		logger.Warn("research call failed", "mode", string(input.Request.Mode), "error", err)
		var statusErr *remote.StatusError
		if errors.As(err, &statusErr) {
			return ResearchOutput{}, temporal.NewNonRetryableApplicationError(
				statusErr.Error(), statusErrorType, nil, statusErr.StatusCode, statusErr.StatusText,
			)
		}
		return ResearchOutput{}, temporal.NewNonRetryableApplicationError(err.Error(), transportErrorType, nil)
	}
	return ResearchOutput{Result: result}, nil
}
