package task

import (
	"context"
	"errors"
	"time"

	"github.com/chemgate/chemgate/engine/core"
	"github.com/sethvargo/go-retry"
)

// Awaiter blocks until a task reaches a terminal state or a deadline
// elapses. It polls the broker; it never blocks without a bound.
type Awaiter struct {
	broker       *Broker
	pollInterval time.Duration
}

// NewAwaiter creates an awaiter polling at the given interval.
func NewAwaiter(broker *Broker, pollInterval time.Duration) *Awaiter {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}
	return &Awaiter{broker: broker, pollInterval: pollInterval}
}

var errNotTerminal = errors.New("task not yet terminal")

// Await polls until the task is terminal or the timeout elapses, whichever
// comes first. A non-terminal Outcome means the deadline won; the wait is
// abandoned but the task keeps running and its handle stays pollable.
// Awaiting an already-terminal task returns the same Outcome every time.
// The returned error is non-nil only when the broker is unreachable.
func (a *Awaiter) Await(ctx context.Context, id core.ID, timeout time.Duration) (Outcome, error) {
	var last *Record
	backoff := retry.WithMaxDuration(timeout, retry.NewConstant(a.pollInterval))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		rec, err := a.broker.GetRecord(ctx, id)
		if err != nil {
			return err
		}
		last = rec
		if rec == nil || !rec.State.Terminal() {
			return retry.RetryableError(errNotTerminal)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNotTerminal) && !errors.Is(err, context.DeadlineExceeded) {
		return Outcome{}, err
	}
	return outcomeFrom(last), nil
}

func outcomeFrom(rec *Record) Outcome {
	if rec == nil {
		return Outcome{State: StateUnknown}
	}
	return Outcome{State: rec.State, Result: rec.Result, Error: rec.Error}
}
