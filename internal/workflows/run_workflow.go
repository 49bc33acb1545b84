package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

const SubmitResearchActivity = "SubmitResearch"

type ResearchInput struct {
	Request research.Request
	Answers []research.FollowupAnswer
}

type ResearchOutput struct {
	Result string
}

// ResearchWorkflow runs the final research call once. Reports can take
// around twelve minutes, so the activity gets a generous budget and no
// retries: a repeated call would start a second research run.
func ResearchWorkflow(ctx workflow.Context, input ResearchInput) (ResearchOutput, error) {
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	logger := workflow.GetLogger(ctx)
	logger.Info("research started", "mode", string(input.Request.Mode), "breadth", input.Request.Breadth, "depth", input.Request.Depth)

	var output ResearchOutput
	if err := workflow.ExecuteActivity(ctx, SubmitResearchActivity, input).Get(ctx, &output); err != nil {
		logger.Error("research activity failed", "error", err)
		return ResearchOutput{}, err
	}
	logger.Info("research finished", "result_bytes", len(output.Result))
	return output, nil
}
