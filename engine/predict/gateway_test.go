package predict

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chemgate/chemgate/engine/schema"
	"github.com/chemgate/chemgate/engine/task"
	"github.com/chemgate/chemgate/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T) (*Gateway, *task.Broker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	broker := task.NewBroker(client, &config.BrokerConfig{
		KeyPrefix: "chemgate",
		ResultTTL: time.Hour,
	})
	awaiter := task.NewAwaiter(broker, 5*time.Millisecond)
	return NewGateway(broker, awaiter, 2*time.Second), broker, mr
}

func endpointByName(t *testing.T, name string) *Endpoint {
	t.Helper()
	for _, ep := range Endpoints() {
		if ep.Name == name {
			return ep
		}
	}
	t.Fatalf("no endpoint named %q", name)
	return nil
}

// completeNext reserves the next job off a queue and finishes it, standing
// in for a prediction worker.
func completeNext(t *testing.T, broker *task.Broker, queue string, result any, failWith string) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case <-deadline:
			t.Error("no job arrived on queue " + queue)
			return
		default:
		}
		job, err := broker.Reserve(context.Background(), queue)
		if err != nil {
			t.Errorf("reserve failed: %v", err)
			return
		}
		if job == nil {
			time.Sleep(time.Millisecond)
			continue
		}
		require.NoError(t, broker.MarkStarted(context.Background(), job.ID))
		if failWith != "" {
			require.NoError(t, broker.Fail(context.Background(), job.ID, failWith))
		} else {
			require.NoError(t, broker.Complete(context.Background(), job.ID, result))
		}
		return
	}
}

func TestGateway_Process(t *testing.T) {
	t.Run("Should reject invalid input without dispatching", func(t *testing.T) {
		gw, broker, _ := newTestGateway(t)
		ep := endpointByName(t, "retro")

		res := gw.Process(context.Background(), ep, url.Values{}, nil, "")
		assert.Equal(t, Rejected, res.Kind)
		assert.Equal(t, []string{"This field is required."}, res.Errors["target"])

		stats, err := broker.QueueStats(context.Background(), []string{ep.Queue})
		require.NoError(t, err)
		assert.Equal(t, int64(0), stats[0].Pending)
	})

	t.Run("Should detach by default and return a pollable handle", func(t *testing.T) {
		gw, broker, _ := newTestGateway(t)
		ep := endpointByName(t, "retro")

		form := url.Values{"target": {"CN(C)CCOC(c1ccccc1)c1ccccc1"}}
		res := gw.Process(context.Background(), ep, form, nil, "alice")
		require.Equal(t, Accepted, res.Kind)
		assert.False(t, res.TaskID.IsZero())
		assert.Equal(t, 100, res.Request["num_templates"])
		assert.Equal(t, true, res.Request["cluster"])

		state, err := broker.GetState(context.Background(), res.TaskID)
		require.NoError(t, err)
		assert.Equal(t, task.StatePending, state)
	})

	t.Run("Should wait for the result when async is false", func(t *testing.T) {
		gw, broker, _ := newTestGateway(t)
		ep := endpointByName(t, "forward")

		go completeNext(t, broker, ep.Queue, []any{map[string]any{"smiles": "CCO"}}, "")
		form := url.Values{"reactants": {"CCO.CC(=O)O"}, "async": {"false"}}
		res := gw.Process(context.Background(), ep, form, nil, "")
		require.Equal(t, Succeeded, res.Kind)
		assert.NotNil(t, res.Output)
		assert.Equal(t, "", res.Request["reagents"])
		assert.Equal(t, 100, res.Request["num_results"])
	})

	t.Run("Should surface a worker failure as Failed", func(t *testing.T) {
		gw, broker, _ := newTestGateway(t)
		ep := endpointByName(t, "scscore")

		go completeNext(t, broker, ep.Queue, nil, "model not loaded")
		form := url.Values{"smiles": {"CCO"}}
		res := gw.Process(context.Background(), ep, form, nil, "")
		require.Equal(t, Failed, res.Kind)
		assert.Equal(t, "model not loaded", res.Reason)
		assert.False(t, res.TaskID.IsZero())
	})

	t.Run("Should time out without killing the task", func(t *testing.T) {
		gw, broker, _ := newTestGateway(t)
		ep := &Endpoint{
			Name:  "slow",
			Queue: "slow_worker",
			Task:  "slow_task",
			Schema: schema.New(
				schema.Field{Name: "smiles", Kind: schema.KindString, Required: true},
			),
			SyncTimeout: 30 * time.Millisecond,
		}

		res := gw.Process(context.Background(), ep, url.Values{"smiles": {"CCO"}}, nil, "")
		require.Equal(t, TimedOut, res.Kind)
		assert.Equal(t, "Timed out waiting for task result.", res.Reason)

		state, err := broker.GetState(context.Background(), res.TaskID)
		require.NoError(t, err)
		assert.Equal(t, task.StatePending, state)
	})

	t.Run("Should always detach impurity predictions", func(t *testing.T) {
		gw, _, _ := newTestGateway(t)
		ep := endpointByName(t, "impurity")

		form := url.Values{"reactants": {"CCO"}, "async": {"false"}}
		res := gw.Process(context.Background(), ep, form, nil, "")
		assert.Equal(t, Accepted, res.Kind)
	})

	t.Run("Should report Unavailable when the backend is down", func(t *testing.T) {
		gw, _, mr := newTestGateway(t)
		ep := endpointByName(t, "scscore")
		mr.Close()

		res := gw.Process(context.Background(), ep, url.Values{"smiles": {"CCO"}}, nil, "")
		assert.Equal(t, Unavailable, res.Kind)
		assert.Equal(t, "Task backend unavailable.", res.Reason)
	})
}
