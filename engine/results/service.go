package results

import (
	"context"
	"time"

	"github.com/chemgate/chemgate/engine/auth"
	"github.com/chemgate/chemgate/engine/core"
	"github.com/chemgate/chemgate/engine/task"
)

// Result is the user-facing view of a stored task record.
type Result struct {
	ID          core.ID    `json:"id"`
	Task        string     `json:"task"`
	State       task.State `json:"state"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt time.Time  `json:"completed_at,omitzero"`
}

// Service exposes a user's stored results. Every lookup is scoped to the
// requesting identity; admins may reach any record.
type Service struct {
	broker *task.Broker
}

func NewService(broker *task.Broker) *Service {
	return &Service{broker: broker}
}

// List returns the caller's results, newest first.
func (s *Service) List(ctx context.Context, identity *auth.Identity) ([]Result, error) {
	records, err := s.broker.ListOwned(ctx, identity.Username)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(records))
	for _, rec := range records {
		out = append(out, fromRecord(rec))
	}
	return out, nil
}

// Get fetches a single result the caller is allowed to see. Records owned
// by someone else are reported as not found rather than forbidden so that
// handles cannot be probed.
func (s *Service) Get(ctx context.Context, id core.ID, identity *auth.Identity) (*Result, error) {
	rec, err := s.broker.GetRecord(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, task.ErrNotFound
	}
	if rec.Owner != identity.Username && !identity.Admin {
		return nil, task.ErrNotFound
	}
	res := fromRecord(rec)
	return &res, nil
}

// Delete removes a stored result. Only the owner or an admin may delete.
func (s *Service) Delete(ctx context.Context, id core.ID, identity *auth.Identity) error {
	return s.broker.Delete(ctx, id, identity.Username, identity.Admin)
}

func fromRecord(rec *task.Record) Result {
	return Result{
		ID:          rec.ID,
		Task:        rec.Task,
		State:       rec.State,
		Result:      rec.Result,
		Error:       rec.Error,
		CreatedAt:   rec.CreatedAt,
		CompletedAt: rec.CompletedAt,
	}
}
