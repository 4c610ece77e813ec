package task

import (
	"errors"
	"time"

	"github.com/chemgate/chemgate/engine/core"
)

// State is the lifecycle state of a dispatched task.
type State string

const (
	StatePending State = "PENDING"
	StateStarted State = "STARTED"
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
	// StateUnknown is reported for a handle the broker has no record of:
	// expired, evicted or never created. The gateway cannot tell these
	// apart and never claims to.
	StateUnknown State = "UNKNOWN"
)

// Terminal reports whether no further transition can occur.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure
}

// Sentinel errors for broker operations.
var (
	// ErrBackendUnavailable indicates the broker could not reach Redis.
	// Not the caller's fault; surfaced as a server error.
	ErrBackendUnavailable = errors.New("task backend unavailable")
	// ErrNotFound indicates the referenced task record does not exist.
	ErrNotFound = errors.New("task record not found")
	// ErrForbidden indicates the requester does not own the record.
	ErrForbidden = errors.New("task record owned by another identity")
)

// Job is the payload enqueued for a worker.
type Job struct {
	ID         core.ID        `json:"id"`
	Task       string         `json:"task"`
	Queue      string         `json:"queue"`
	Args       map[string]any `json:"args"`
	Owner      string         `json:"owner,omitempty"`
	EnqueuedAt time.Time      `json:"enqueued_at"`
}

// Record tracks a task's state and eventual result. Owned by the broker;
// the gateway only reads and forwards it.
type Record struct {
	ID          core.ID   `json:"id"`
	Task        string    `json:"task"`
	Queue       string    `json:"queue"`
	State       State     `json:"state"`
	Result      any       `json:"result,omitempty"`
	Error       string    `json:"error,omitempty"`
	Owner       string    `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitzero"`
}

// Outcome is the result of awaiting a task. A non-terminal State means the
// wait deadline elapsed first; the task keeps running and its handle stays
// valid.
type Outcome struct {
	State  State
	Result any
	Error  string
}

// Terminal reports whether the awaited task finished.
func (o Outcome) Terminal() bool {
	return o.State.Terminal()
}

// QueueStat describes one queue's backlog.
type QueueStat struct {
	Name    string `json:"name"`
	Pending int64  `json:"pending"`
}
