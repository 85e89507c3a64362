// Package camundatest provides an in-memory worker.JobClient that records
// the commands a handler sends, for tests that exercise Handle directly.
package camundatest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"google.golang.org/grpc"
)

// gateway implements only the job result RPCs; any other call panics on
// the nil embedded interface. Like gRPC, a done context rejects the call.
type gateway struct {
	pb.GatewayClient

	mu        sync.Mutex
	completed []*pb.CompleteJobRequest
	failed    []*pb.FailJobRequest
	thrown    []*pb.ThrowErrorRequest
}

func (g *gateway) CompleteJob(ctx context.Context, in *pb.CompleteJobRequest, _ ...grpc.CallOption) (*pb.CompleteJobResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.completed = append(g.completed, in)
	return &pb.CompleteJobResponse{}, nil
}

func (g *gateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failed = append(g.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (g *gateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.thrown = append(g.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

// JobClient records complete, fail and throw-error commands.
type JobClient struct {
	t  testing.TB
	gw *gateway
}

func NewJobClient(t testing.TB) *JobClient {
	return &JobClient{t: t, gw: &gateway{}}
}

func noRetry(context.Context, error) bool { return false }

func (c *JobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gw, noRetry)
}

func (c *JobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gw, noRetry)
}

func (c *JobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gw, noRetry)
}

// Completed returns the decoded variables of every completed job.
func (c *JobClient) Completed() []map[string]interface{} {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	out := make([]map[string]interface{}, 0, len(c.gw.completed))
	for _, req := range c.gw.completed {
		out = append(out, c.decode(req.GetVariables()))
	}
	return out
}

func (c *JobClient) Failed() []*pb.FailJobRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.FailJobRequest(nil), c.gw.failed...)
}

func (c *JobClient) Thrown() []*pb.ThrowErrorRequest {
	c.gw.mu.Lock()
	defer c.gw.mu.Unlock()
	return append([]*pb.ThrowErrorRequest(nil), c.gw.thrown...)
}

// Variables decodes a command's variables document.
func (c *JobClient) Variables(raw string) map[string]interface{} {
	return c.decode(raw)
}

func (c *JobClient) decode(raw string) map[string]interface{} {
	c.t.Helper()
	if raw == "" {
		return nil
	}
	var vars map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &vars); err != nil {
		c.t.Fatalf("camundatest: invalid variables document: %v", err)
	}
	return vars
}

// NewJob builds an activated job carrying variables.
func NewJob(t testing.TB, taskType string, retries int32, variables interface{}) entities.Job {
	t.Helper()
	data, err := json.Marshal(variables)
	if err != nil {
		t.Fatalf("camundatest: encode variables: %v", err)
	}
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                2251799813685249,
		Type:               taskType,
		ProcessInstanceKey: 2251799813685200,
		Retries:            retries,
		Variables:          string(data),
	}}
}
