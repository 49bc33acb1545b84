package workflows

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	tests "go.temporal.io/sdk/testsuite"

	"github.com/Vamsibolem10/Mini-Researcher/internal/remote"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

type fakeResearchClient struct {
	result  string
	err     error
	req     research.Request
	answers []research.FollowupAnswer
}

func (f *fakeResearchClient) Research(ctx context.Context, req research.Request, answers []research.FollowupAnswer) (string, error) {
	f.req = req
	f.answers = answers
	return f.result, f.err
}

func newActivityEnv(client ResearchClient) (*tests.TestActivityEnvironment, *Activities) {
	suite := &tests.WorkflowTestSuite{}
	env := suite.NewTestActivityEnvironment()
	activities := NewActivities(client)
	env.RegisterActivity(activities)
	return env, activities
}

func TestSubmitResearch_Success(t *testing.T) {
	fake := &fakeResearchClient{result: "Report text"}
	env, activities := newActivityEnv(fake)
	input := sampleInput()

	value, err := env.ExecuteActivity(activities.SubmitResearch, input)
	require.NoError(t, err)

	var output ResearchOutput
	require.NoError(t, value.Get(&output))
	require.Equal(t, "Report text", output.Result)
	require.Equal(t, input.Request, fake.req)
	require.Equal(t, input.Answers, fake.answers)
}

func TestSubmitResearch_NilAnswersSentAsEmpty(t *testing.T) {
	fake := &fakeResearchClient{result: "ok"}
	env, activities := newActivityEnv(fake)

	_, err := env.ExecuteActivity(activities.SubmitResearch, ResearchInput{
		Request: research.NewRequest("Quick question", research.ModeFast),
	})
	require.NoError(t, err)
	require.NotNil(t, fake.answers)
	require.Empty(t, fake.answers)
}

func TestSubmitResearch_StatusErrorCarriesDetails(t *testing.T) {
	fake := &fakeResearchClient{err: &remote.StatusError{
		Op:         remote.OpResearch,
		StatusCode: http.StatusInternalServerError,
		StatusText: "Internal Server Error",
	}}
	env, activities := newActivityEnv(fake)

	_, err := env.ExecuteActivity(activities.SubmitResearch, sampleInput())
	require.Error(t, err)

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, statusErrorType, appErr.Type())
	require.True(t, appErr.NonRetryable())

	var statusErr *remote.StatusError
	require.ErrorAs(t, translateError(err), &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	require.Equal(t, "Internal Server Error", statusErr.StatusText)
}

func TestSubmitResearch_TransportError(t *testing.T) {
	fake := &fakeResearchClient{err: &remote.TransportError{Op: remote.OpResearch, Err: errors.New("connection refused")}}
	env, activities := newActivityEnv(fake)

	_, err := env.ExecuteActivity(activities.SubmitResearch, sampleInput())

	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, transportErrorType, appErr.Type())
	require.Equal(t, "Failed to submit research - connection refused", translateError(err).Error())
}
