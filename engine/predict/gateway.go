package predict

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/chemgate/chemgate/engine/core"
	"github.com/chemgate/chemgate/engine/schema"
	"github.com/chemgate/chemgate/engine/task"
	"github.com/chemgate/chemgate/pkg/logger"
)

// Endpoint declares one prediction endpoint: its route, schema, target
// queue and synchronous-wait bound.
type Endpoint struct {
	Name        string
	Path        string
	Queue       string
	Task        string
	Schema      *schema.Schema
	SyncTimeout time.Duration
	// OutputKey names the envelope key carrying the result; "output"
	// unless the endpoint declares otherwise.
	OutputKey string
	// AlwaysAsync endpoints return a handle regardless of caller flags.
	AlwaysAsync bool
}

// ResolutionKind tags the terminal state of one request.
type ResolutionKind int

const (
	// Rejected: validation failed; Errors carries the field report.
	Rejected ResolutionKind = iota
	// Accepted: detached dispatch; TaskID carries the handle.
	Accepted
	// Succeeded: synchronous completion; Output carries the payload.
	Succeeded
	// Failed: the task finished in a failed state; Reason carries the
	// worker's message.
	Failed
	// TimedOut: the bounded wait elapsed before a terminal state. The
	// task keeps running; TaskID stays pollable.
	TimedOut
	// Unavailable: the execution backend could not be reached.
	Unavailable
)

// Resolution is the terminal outcome of gateway orchestration. Exactly one
// of the payload fields is meaningful for each Kind.
type Resolution struct {
	Kind    ResolutionKind
	Request schema.Values
	TaskID  core.ID
	Output  any
	Errors  schema.ErrorReport
	Reason  string
}

// Gateway composes the schema validator, the broker and the awaiter into
// the per-endpoint request flow. It holds no per-request state.
type Gateway struct {
	broker         *task.Broker
	awaiter        *task.Awaiter
	defaultTimeout time.Duration
}

// NewGateway creates a gateway. defaultTimeout bounds synchronous waits for
// endpoints that do not declare their own.
func NewGateway(broker *task.Broker, awaiter *task.Awaiter, defaultTimeout time.Duration) *Gateway {
	return &Gateway{broker: broker, awaiter: awaiter, defaultTimeout: defaultTimeout}
}

// Process runs one request through validate, dispatch and await-or-detach.
// The echoed Request always reflects post-validation, post-default values.
func (g *Gateway) Process(
	ctx context.Context,
	ep *Endpoint,
	form url.Values,
	files map[string][]byte,
	owner string,
) Resolution {
	values, report := ep.Schema.Validate(form, files)
	if report != nil {
		return Resolution{Kind: Rejected, Errors: report}
	}
	id, err := g.broker.Dispatch(ctx, ep.Task, ep.Queue, values, owner)
	if err != nil {
		logger.FromContext(ctx).Error("dispatch failed",
			"endpoint", ep.Name, "queue", ep.Queue, "error", err)
		return Resolution{Kind: Unavailable, Request: values, Reason: dispatchReason(err)}
	}
	if g.detached(ep, values) {
		return Resolution{Kind: Accepted, Request: values, TaskID: id}
	}
	timeout := ep.SyncTimeout
	if timeout <= 0 {
		timeout = g.defaultTimeout
	}
	outcome, err := g.awaiter.Await(ctx, id, timeout)
	if err != nil {
		logger.FromContext(ctx).Error("await failed",
			"endpoint", ep.Name, "task_id", id, "error", err)
		return Resolution{Kind: Unavailable, Request: values, TaskID: id, Reason: dispatchReason(err)}
	}
	switch outcome.State {
	case task.StateSuccess:
		return Resolution{Kind: Succeeded, Request: values, TaskID: id, Output: outcome.Result}
	case task.StateFailure:
		return Resolution{Kind: Failed, Request: values, TaskID: id, Reason: outcome.Error}
	default:
		// Timeout cancels only the waiting, never the task.
		return Resolution{Kind: TimedOut, Request: values, TaskID: id,
			Reason: "Timed out waiting for task result."}
	}
}

// detached reports whether the caller chose to receive the handle without
// waiting. The async flag is itself a validated boolean field; endpoints
// without one are synchronous unless marked AlwaysAsync.
func (g *Gateway) detached(ep *Endpoint, values schema.Values) bool {
	if ep.AlwaysAsync {
		return true
	}
	flag, ok := values["async"].(bool)
	return ok && flag
}

func dispatchReason(err error) string {
	if errors.Is(err, task.ErrBackendUnavailable) {
		return "Task backend unavailable."
	}
	return err.Error()
}

// OutputKeyOrDefault returns the envelope key for the endpoint's result.
func (ep *Endpoint) OutputKeyOrDefault() string {
	if ep.OutputKey != "" {
		return ep.OutputKey
	}
	return "output"
}
