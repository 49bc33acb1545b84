package session

import (
	"time"

	"github.com/Vamsibolem10/Mini-Researcher/internal/research"
)

// Snapshot is a copy of the orchestrator's state safe to hand to
// presentation layers.
type Snapshot struct {
	SessionID string                    `json:"session_id"`
	State     State                     `json:"state"`
	Phase     Phase                     `json:"phase"`
	Busy      bool                      `json:"busy"`
	Request   *research.Request         `json:"request,omitempty"`
	Questions []string                  `json:"questions"`
	Answers   []research.FollowupAnswer `json:"answers,omitempty"`
	Outcome   *research.Outcome         `json:"outcome,omitempty"`
	Display   string                    `json:"display"`
	RecordID  string                    `json:"record_id,omitempty"`
	CreatedAt string                    `json:"created_at"`
	UpdatedAt string                    `json:"updated_at"`
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		SessionID: o.id,
		State:     o.state,
		Phase:     o.state.Phase(),
		Busy:      o.state.Busy(),
		Questions: append([]string{}, o.questions...),
		Display:   o.outcome.Display(),
		RecordID:  o.recordID,
		CreatedAt: o.createdAt.Format(time.RFC3339Nano),
		UpdatedAt: o.updatedAt.Format(time.RFC3339Nano),
	}
	if o.request != nil {
		req := *o.request
		snap.Request = &req
	}
	if o.answers != nil {
		snap.Answers = append([]research.FollowupAnswer{}, o.answers...)
	}
	if o.outcome != nil {
		outcome := *o.outcome
		snap.Outcome = &outcome
	}
	return snap
}
