// Package generationtest wires a generation engine to a scripted provider
// and an in-memory store for worker tests.
package generationtest

import (
	"testing"

	"coach-generation/internal/common/logger"
	"coach-generation/internal/llm/calllog"
	"coach-generation/internal/llm/pipeline"
	"coach-generation/internal/llm/providertest"
	"coach-generation/internal/llm/replay"
	"coach-generation/internal/store"
)

// Harness is an engine plus the doubles behind it.
type Harness struct {
	Engine   *pipeline.Engine
	Provider *providertest.Queue
	Store    *store.MemoryStore
}

// New builds a harness with two schema repairs and replay disabled.
func New(t testing.TB, steps ...providertest.Step) *Harness {
	return NewWithReplay(t, replay.Options{}, steps...)
}

func NewWithReplay(t testing.TB, opts replay.Options, steps ...providertest.Step) *Harness {
	t.Helper()
	log := logger.NewTestLogger(t)
	s := store.NewMemoryStore()
	queue := providertest.NewQueue(t, steps...)
	engine := pipeline.NewEngine(
		queue,
		calllog.NewObserver(s, nil, log),
		replay.New(s, opts, log),
		2,
		log,
	)
	return &Harness{Engine: engine, Provider: queue, Store: s}
}
