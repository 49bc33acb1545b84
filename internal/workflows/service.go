package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Vamsibolem10/Mini-Researcher/internal/remote"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

const DefaultTaskQueue = "researcher-runs"

// Submitter runs research calls through ResearchWorkflow on a Temporal
// worker and waits for the report.
type Submitter struct {
	client    client.Client
	taskQueue string
}

func NewSubmitter(client client.Client, taskQueue string) *Submitter {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &Submitter{client: client, taskQueue: taskQueue}
}

func (s *Submitter) Research(ctx context.Context, req research.Request, answers []research.FollowupAnswer) (string, error) {
	options := client.StartWorkflowOptions{
		ID:        workflowID(uuid.NewString()),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, options, ResearchWorkflow, ResearchInput{
		Request: req,
		Answers: answers,
	})
	if err != nil {
		return "", &remote.TransportError{Op: remote.OpResearch, Err: err}
	}

	var output ResearchOutput
	if err := run.Get(ctx, &output); err != nil {
		if ctx.Err() != nil {
			_ = s.client.CancelWorkflow(context.WithoutCancel(ctx), run.GetID(), run.GetRunID())
			return "", &remote.TransportError{Op: remote.OpResearch, Err: ctx.Err()}
		}
		return "", translateError(err)
	}
	return output.Result, nil
}

// translateError turns a workflow failure back into the remote error the
// activity observed.
func translateError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return &remote.TransportError{Op: remote.OpResearch, Err: err}
	}
	if appErr.Type() == statusErrorType && appErr.HasDetails() {
		var statusCode int
		var statusText string
		if detailsErr := appErr.Details(&statusCode, &statusText); detailsErr == nil {
			return &remote.StatusError{Op: remote.OpResearch, StatusCode: statusCode, StatusText: statusText}
		}
	}
	return errors.New(appErr.Message())
}

func workflowID(id string) string {
	return fmt.Sprintf("research:%s", id)
}
