package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vamsibolem10/Mini-Researcher/internal/events"
	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
	"github.com/Vamsibolem10/Mini-Researcher/internal/store"
)

// FollowupNegotiator asks the research service whether a query needs
// clarification. An empty result means it does not.
type FollowupNegotiator interface {
	Followup(ctx context.Context, query string) ([]string, error)
}

type ResearchSubmitter interface {
	Research(ctx context.Context, req research.Request, answers []research.FollowupAnswer) (string, error)
}

type Options struct {
	Broker          *events.Broker
	Store           store.Store
	Logger          *zap.Logger
	FollowupTimeout time.Duration
	ResearchTimeout time.Duration
}

// Orchestrator drives one research cycle at a time: initial submission,
// optional follow-up clarification, then the final research call.
type Orchestrator struct {
	negotiator      FollowupNegotiator
	submitter       ResearchSubmitter
	broker          *events.Broker
	store           store.Store
	logger          *zap.Logger
	followupTimeout time.Duration
	researchTimeout time.Duration
	now             func() time.Time

	mu        sync.Mutex
	id        string
	seq       int64
	state     State
	request   *research.Request
	questions []string
	answers   []research.FollowupAnswer
	outcome   *research.Outcome
	recordID  string
	createdAt time.Time
	updatedAt time.Time
}

func New(negotiator FollowupNegotiator, submitter ResearchSubmitter, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now().UTC()
	o := &Orchestrator{
		negotiator:      negotiator,
		submitter:       submitter,
		broker:          opts.Broker,
		store:           opts.Store,
		followupTimeout: opts.FollowupTimeout,
		researchTimeout: opts.ResearchTimeout,
		now:             func() time.Time { return time.Now().UTC() },
		id:              uuid.NewString(),
		state:           StateAwaitingQuery,
		createdAt:       now,
		updatedAt:       now,
	}
	o.logger = logger.Named("session").With(zap.String("session_id", o.id))
	return o
}

func (o *Orchestrator) ID() string {
	return o.id
}

// Submit starts a research cycle from AWAITING_QUERY. Remote failures are
// reported through the snapshot outcome; the returned error is only set when
// the call is rejected.
func (o *Orchestrator) Submit(ctx context.Context, req research.Request) (Snapshot, error) {
	o.mu.Lock()
	if err := o.admit("submit", StateAwaitingQuery); err != nil {
		o.mu.Unlock()
		return o.Snapshot(), err
	}
	if err := req.Validate(); err != nil {
		o.mu.Unlock()
		return o.Snapshot(), err
	}
	held := req
	o.request = &held
	o.questions = nil
	o.answers = nil
	o.outcome = nil
	o.recordID = ""
	o.setState(StateSubmittingInitial)
	o.mu.Unlock()
	defer o.release(StateSubmittingInitial, StateAwaitingQuery)

	o.logger.Info("research submitted",
		zap.String("mode", req.Mode.String()),
		zap.Int("breadth", req.Breadth),
		zap.Int("depth", req.Depth),
	)
	o.publish(events.TypeSubmitted, map[string]any{
		"query":   req.Query,
		"mode":    req.Mode.String(),
		"breadth": req.Breadth,
		"depth":   req.Depth,
	})

	questions, err := o.followup(ctx, req.Query)
	if err != nil {
		o.fail(StateAwaitingQuery, err)
		return o.Snapshot(), nil
	}
	if len(questions) > 0 {
		o.mu.Lock()
		o.questions = append([]string{}, questions...)
		o.setState(StateAwaitingFollowup)
		o.mu.Unlock()
		o.logger.Info("follow-up required", zap.Int("questions", len(questions)))
		o.publish(events.TypeFollowupRequired, map[string]any{"questions": questions})
		return o.Snapshot(), nil
	}

	o.research(ctx, req, []research.FollowupAnswer{}, StateAwaitingQuery)
	return o.Snapshot(), nil
}

// SubmitAnswers pairs answers with the pending questions by position and
// runs the final research call.
func (o *Orchestrator) SubmitAnswers(ctx context.Context, answers []string) (Snapshot, error) {
	o.mu.Lock()
	if err := o.admit("submit answers", StateAwaitingFollowup); err != nil {
		o.mu.Unlock()
		return o.Snapshot(), err
	}
	if o.request == nil {
		o.mu.Unlock()
		panic("session: awaiting follow-up without a pending request")
	}
	req := *o.request
	paired := research.PairAnswers(o.questions, answers)
	o.answers = paired
	o.outcome = nil
	o.setState(StateSubmittingFollowup)
	o.mu.Unlock()
	defer o.release(StateSubmittingFollowup, StateAwaitingFollowup)

	o.logger.Info("follow-up answers submitted", zap.Int("answers", len(paired)))
	o.publish(events.TypeAnswersSubmitted, map[string]any{"answers": paired})

	o.research(ctx, req, paired, StateAwaitingFollowup)
	return o.Snapshot(), nil
}

// Reset discards a completed cycle and returns to AWAITING_QUERY.
func (o *Orchestrator) Reset() (Snapshot, error) {
	o.mu.Lock()
	if err := o.admit("reset", StateComplete); err != nil {
		o.mu.Unlock()
		return o.Snapshot(), err
	}
	o.request = nil
	o.questions = nil
	o.answers = nil
	o.outcome = nil
	o.recordID = ""
	o.setState(StateAwaitingQuery)
	o.mu.Unlock()

	o.logger.Info("session reset")
	o.publish(events.TypeReset, map[string]any{})
	return o.Snapshot(), nil
}

// admit must be called with o.mu held.
func (o *Orchestrator) admit(op string, want State) error {
	if o.state.Busy() {
		return ErrBusy
	}
	if o.state != want {
		return &TransitionError{Op: op, State: o.state}
	}
	return nil
}

// release restores a resting state if a call left the session busy, which
// only happens when the remote call panics.
func (o *Orchestrator) release(busy State, rest State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == busy {
		o.setState(rest)
		if rest == StateAwaitingQuery {
			o.request = nil
		}
	}
}

func (o *Orchestrator) followup(ctx context.Context, query string) ([]string, error) {
	callCtx, cancel := withTimeout(ctx, o.followupTimeout)
	defer cancel()
	return o.negotiator.Followup(callCtx, query)
}

func (o *Orchestrator) research(ctx context.Context, req research.Request, answers []research.FollowupAnswer, from State) {
	callCtx, cancel := withTimeout(ctx, o.researchTimeout)
	result, err := o.submitter.Research(callCtx, req, answers)
	cancel()
	if err != nil {
		o.fail(from, err)
		return
	}

	recordID := o.saveRecord(ctx, req, answers, result)

	o.mu.Lock()
	o.answers = answers
	o.outcome = research.ResultOutcome(result)
	o.recordID = recordID
	o.setState(StateComplete)
	o.mu.Unlock()

	o.logger.Info("research completed", zap.Int("result_bytes", len(result)))
	o.publish(events.TypeCompleted, map[string]any{"record_id": recordID})
}

// saveRecord persists a completed cycle. A storage failure is logged and does
// not turn a successful research call into a failed one.
func (o *Orchestrator) saveRecord(ctx context.Context, req research.Request, answers []research.FollowupAnswer, result string) string {
	if o.store == nil {
		return ""
	}
	record := store.ResearchRecord{
		ID:        uuid.NewString(),
		SessionID: o.id,
		Query:     req.Query,
		Mode:      req.Mode.String(),
		Breadth:   req.Breadth,
		Depth:     req.Depth,
		Answers:   toStoreAnswers(answers),
		Result:    result,
		CreatedAt: o.now().Format(time.RFC3339Nano),
	}
	if err := o.store.SaveRecord(context.WithoutCancel(ctx), record); err != nil {
		o.logger.Error("save research record", zap.Error(err))
		return ""
	}
	return record.ID
}

func (o *Orchestrator) fail(rest State, err error) {
	o.mu.Lock()
	o.outcome = research.ErrorOutcome(err)
	if rest == StateAwaitingQuery {
		o.request = nil
		o.questions = nil
	}
	o.setState(rest)
	o.mu.Unlock()

	o.logger.Warn("research cycle failed", zap.String("phase", string(rest.Phase())), zap.Error(err))
	o.publish(events.TypeFailed, map[string]any{
		"error": err.Error(),
		"phase": string(rest.Phase()),
	})
}

// setState must be called with o.mu held.
func (o *Orchestrator) setState(state State) {
	o.state = state
	o.updatedAt = o.now()
}

func (o *Orchestrator) publish(eventType string, payload map[string]any) {
	if o.broker == nil {
		return
	}
	o.mu.Lock()
	o.seq++
	seq := o.seq
	o.mu.Unlock()
	o.broker.Publish(events.SessionEvent{
		SessionID: o.id,
		Seq:       seq,
		Type:      eventType,
		Ts:        o.now().Format(time.RFC3339Nano),
		TraceID:   uuid.NewString(),
		Payload:   payload,
	})
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func toStoreAnswers(answers []research.FollowupAnswer) []store.Answer {
	converted := make([]store.Answer, 0, len(answers))
	for _, answer := range answers {
		converted = append(converted, store.Answer{Question: answer.Question, Answer: answer.Answer})
	}
	return converted
}
