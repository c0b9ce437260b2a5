package workflow

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-organizer-be/internal/entity"
	"ai-organizer-be/internal/pkg/apperrors"
	"ai-organizer-be/internal/pkg/serverutils"

	"github.com/google/uuid"
)

// StepResult is what a handler hands back to the orchestrator. Data is
// persisted verbatim on the step record (and returned to replays), Draft is
// merged into the job's draft_state for downstream steps.
type StepResult struct {
	Data      map[string]interface{}
	ResultRef string
	Draft     map[string]interface{}
}

// StepHandler is the capability behind one canonical step. ValidatePayload
// must reject a malformed payload before any state is touched.
type StepHandler interface {
	Name() string
	Requires() []string
	ValidatePayload(raw json.RawMessage) error
	Execute(ctx context.Context, job *entity.Job, raw json.RawMessage) (*StepResult, error)
}

// ReviewerNotifier pushes a "proposals are ready" notification to whoever
// reviews them. Delivery is best-effort; handlers never fail a step on it.
type ReviewerNotifier interface {
	NotifyProposalsReady(ctx context.Context, jobId uuid.UUID, count int) error
}

// Registry holds one handler per canonical step name. New step kinds are
// added by registering a handler, never by branching on type.
type Registry struct {
	handlers map[string]StepHandler
}

func NewRegistry(handlers ...StepHandler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]StepHandler, len(handlers))}
	for _, h := range handlers {
		if _, dup := r.handlers[h.Name()]; dup {
			return nil, fmt.Errorf("duplicate step handler %q", h.Name())
		}
		r.handlers[h.Name()] = h
	}
	return r, nil
}

func (r *Registry) Get(name string) (StepHandler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// decodePayload unmarshals a raw step payload into its typed variant and
// runs struct validation. An empty payload decodes as {} so steps with all
// optional fields accept it.
func decodePayload(raw json.RawMessage, dst interface{}) error {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Validation("malformed step payload: " + err.Error())
	}
	return serverutils.ValidateRequest(dst)
}
