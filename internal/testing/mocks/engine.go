// Package mocks provides shared test doubles for mc packages.
package mocks

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/virtualphotonics/mcbatch/internal/engine"
	"github.com/virtualphotonics/mcbatch/internal/simulation"
)

// Call records one RunOne invocation.
type Call struct {
	Name       string
	Dir        string
	DirExisted bool
	Input      *simulation.Input
}

// Engine implements engine.Engine for testing.
// Use NewEngine() to create instances with a fluent builder API.
type Engine struct {
	failures map[string]string
	delay    time.Duration

	// RunFunc is called by RunOne when set. Its status is returned as is.
	RunFunc func(ctx context.Context, in *simulation.Input, dir string) engine.RunStatus

	// Execution tracking (thread-safe)
	inFlight int32
	peak     int32
	mu       sync.Mutex
	calls    []Call
}

// NewEngine creates a mock engine where every run succeeds.
func NewEngine() *Engine {
	return &Engine{failures: make(map[string]string)}
}

// WithFailure makes the run with the given output name fail with msg.
func (m *Engine) WithFailure(name, msg string) *Engine {
	m.failures[name] = msg
	return m
}

// WithDelay makes every run sleep for d (or until the context ends).
func (m *Engine) WithDelay(d time.Duration) *Engine {
	m.delay = d
	return m
}

// WithRunFunc sets the function called by RunOne.
func (m *Engine) WithRunFunc(fn func(ctx context.Context, in *simulation.Input, dir string) engine.RunStatus) *Engine {
	m.RunFunc = fn
	return m
}

// RunOne implements engine.Engine.
func (m *Engine) RunOne(ctx context.Context, in *simulation.Input, dir string) engine.RunStatus {
	n := atomic.AddInt32(&m.inFlight, 1)
	defer atomic.AddInt32(&m.inFlight, -1)
	for {
		p := atomic.LoadInt32(&m.peak)
		if n <= p || atomic.CompareAndSwapInt32(&m.peak, p, n) {
			break
		}
	}

	_, statErr := os.Stat(dir)
	m.mu.Lock()
	m.calls = append(m.calls, Call{Name: in.OutputName, Dir: dir, DirExisted: statErr == nil, Input: in.Clone()})
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return engine.Failed("%v", ctx.Err())
		}
	}

	if m.RunFunc != nil {
		return m.RunFunc(ctx, in, dir)
	}
	if msg, ok := m.failures[in.OutputName]; ok {
		return engine.Failed("%s", msg)
	}
	return engine.Succeeded("ok")
}

// Test inspection methods

// Calls returns the recorded invocations in call order.
func (m *Engine) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Call, len(m.calls))
	copy(result, m.calls)
	return result
}

// CallOrder returns the output names in call order.
func (m *Engine) CallOrder() []string {
	calls := m.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

// CallCount returns the number of RunOne invocations.
func (m *Engine) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// PeakConcurrency returns the highest number of simultaneous RunOne calls.
func (m *Engine) PeakConcurrency() int {
	return int(atomic.LoadInt32(&m.peak))
}

// Reset clears execution tracking state.
func (m *Engine) Reset() {
	atomic.StoreInt32(&m.peak, 0)
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}
