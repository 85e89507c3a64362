// Package providertest provides a scripted llm.Generator for tests.
package providertest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	svcerrors "coach-generation/internal/common/errors"
	"coach-generation/internal/llm"
)

// Step is one scripted provider answer: either an object or an error.
type Step struct {
	Object    map[string]interface{}
	Err       error
	RequestID string
}

// Respond scripts a successful answer.
func Respond(object map[string]interface{}) Step {
	return Step{Object: object}
}

// RespondJSON scripts a successful answer from a JSON object literal.
func RespondJSON(t testing.TB, raw string) Step {
	t.Helper()
	var object map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &object); err != nil {
		t.Fatalf("providertest: invalid scripted JSON: %v", err)
	}
	return Step{Object: object}
}

// Fail scripts an error answer.
func Fail(err error) Step {
	return Step{Err: err}
}

// Queue answers Generate calls from its script in order. Safe for concurrent
// use. A call beyond the script fails the test and returns CLIENT_ERROR.
type Queue struct {
	t     testing.TB
	mu    sync.Mutex
	steps []Step
	calls []llm.Request
}

func NewQueue(t testing.TB, steps ...Step) *Queue {
	return &Queue{t: t, steps: append([]Step(nil), steps...)}
}

// Push appends more scripted answers.
func (q *Queue) Push(steps ...Step) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.steps = append(q.steps, steps...)
}

func (q *Queue) Generate(ctx context.Context, req llm.Request) (*llm.RawResponse, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.calls = append(q.calls, req)
	if err := ctx.Err(); err != nil {
		return nil, svcerrors.NewClientError(req.Operation().String(), "LLM request was cancelled.", err)
	}
	if len(q.steps) == 0 {
		q.t.Errorf("providertest: unexpected call #%d for %s, script exhausted", len(q.calls), req.Operation())
		return nil, svcerrors.NewClientError(req.Operation().String(), "provider script exhausted", nil)
	}

	step := q.steps[0]
	q.steps = q.steps[1:]
	if step.Err != nil {
		return nil, step.Err
	}
	return &llm.RawResponse{Object: copyObject(step.Object), RequestID: step.RequestID, Status: 200, Attempts: 1}, nil
}

// Calls returns the requests received so far.
func (q *Queue) Calls() []llm.Request {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]llm.Request(nil), q.calls...)
}

func (q *Queue) CallCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.calls)
}

func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.steps)
}

// AssertDrained fails the test if scripted answers were left unused.
func (q *Queue) AssertDrained() {
	q.t.Helper()
	if n := q.Remaining(); n > 0 {
		q.t.Errorf("providertest: %d scripted answers never requested", n)
	}
}

func copyObject(object map[string]interface{}) map[string]interface{} {
	if object == nil {
		return nil
	}
	data, err := json.Marshal(object)
	if err != nil {
		panic(fmt.Sprintf("providertest: scripted object not encodable: %v", err))
	}
	var out map[string]interface{}
	_ = json.Unmarshal(data, &out)
	return out
}
