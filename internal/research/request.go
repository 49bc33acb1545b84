package research

import (
	"errors"
	"fmt"
	"strings"
)

// NoAnswerProvided replaces blank follow-up answers at submission time.
const NoAnswerProvided = "No answer provided"

// UnknownFailure is shown when a failure carries no message of its own.
const UnknownFailure = "Research request failed"

var ErrEmptyQuery = errors.New("research query is required")

type BoundsError struct {
	Field string
	Value int
	Min   int
	Max   int
	Mode  Mode
}

func (e BoundsError) Error() string {
	return fmt.Sprintf("%s %d out of range [%d, %d] for %s mode", e.Field, e.Value, e.Min, e.Max, e.Mode)
}

type Request struct {
	Query   string `json:"query"`
	Mode    Mode   `json:"mode"`
	Breadth int    `json:"breadth"`
	Depth   int    `json:"depth"`
}

func NewRequest(query string, mode Mode) Request {
	params := Derive(mode)
	return Request{
		Query:   query,
		Mode:    params.Mode,
		Breadth: params.DefaultBreadth,
		Depth:   params.DefaultDepth,
	}
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	if !r.Mode.Valid() {
		return fmt.Errorf("unknown research mode: %q", r.Mode)
	}
	params := Derive(r.Mode)
	if r.Breadth < MinValue || r.Breadth > params.MaxBreadth {
		return BoundsError{Field: "breadth", Value: r.Breadth, Min: MinValue, Max: params.MaxBreadth, Mode: r.Mode}
	}
	if r.Depth < MinValue || r.Depth > params.MaxDepth {
		return BoundsError{Field: "depth", Value: r.Depth, Min: MinValue, Max: params.MaxDepth, Mode: r.Mode}
	}
	return nil
}

type FollowupAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PairAnswers zips answers onto questions by position. Missing or blank
// answers become NoAnswerProvided; surplus answers are dropped.
func PairAnswers(questions []string, answers []string) []FollowupAnswer {
	paired := make([]FollowupAnswer, 0, len(questions))
	for i, question := range questions {
		answer := ""
		if i < len(answers) {
			answer = answers[i]
		}
		if strings.TrimSpace(answer) == "" {
			answer = NoAnswerProvided
		}
		paired = append(paired, FollowupAnswer{Question: question, Answer: answer})
	}
	return paired
}

// AnyAnswered reports whether at least one answer has content.
func AnyAnswered(answers []string) bool {
	for _, answer := range answers {
		if strings.TrimSpace(answer) != "" {
			return true
		}
	}
	return false
}

// Outcome is the all-or-nothing result of a research cycle.
type Outcome struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

func ResultOutcome(result string) *Outcome {
	return &Outcome{Result: result}
}

// ErrorOutcome records a failed cycle. An error without text still yields a
// failed outcome.
func ErrorOutcome(err error) *Outcome {
	message := ""
	if err != nil {
		message = err.Error()
	}
	if strings.TrimSpace(message) == "" {
		message = UnknownFailure
	}
	return &Outcome{Error: message}
}

func (o *Outcome) Failed() bool {
	return o != nil && o.Error != ""
}

// Display is the text a front-end shows for the outcome.
func (o *Outcome) Display() string {
	if o == nil {
		return ""
	}
	if o.Error != "" {
		return "Error: " + o.Error
	}
	return o.Result
}
