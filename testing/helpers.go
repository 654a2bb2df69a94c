// Package testing provides test utilities and helpers for code built on enval.
//
// This package includes inference assertions and a recording transformer
// to make tests of configuration parsing short and readable.
//
// Example usage:
//
//	func TestConfig(t *testing.T) {
//		envaltest.AssertInfers(t, "8080", enval.Number(8080))
//		envaltest.AssertKind(t, `{"debug":true}`, enval.KindObject)
//
//		mock := envaltest.NewMockTransformer[int](t, "port").WithReturn(8080)
//		port := enval.InferWith("", mock.Func())
//		envaltest.AssertTransformed(t, mock, 1)
//	}
package testing

import (
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/enval"
)

// Inference Assertions

// AssertInfers verifies that raw infers to want.
func AssertInfers(t *testing.T, raw any, want enval.Value) {
	t.Helper()
	got := enval.Infer(raw)
	if !got.Equal(want) {
		t.Errorf("expected %#v to infer %s %q, got %s %q",
			raw, want.Kind(), want.String(), got.Kind(), got.String())
	}
}

// AssertKind verifies that raw infers to a value of the given kind.
func AssertKind(t *testing.T, raw any, kind enval.Kind) {
	t.Helper()
	got := enval.Infer(raw)
	if got.Kind() != kind {
		t.Errorf("expected %#v to infer kind %s, got %s", raw, kind, got.Kind())
	}
}

// AssertString verifies that raw stays text and infers to the string want.
func AssertString(t *testing.T, raw any, want string) {
	t.Helper()
	got := enval.Infer(raw)
	s, ok := got.Str()
	if !ok {
		t.Errorf("expected %#v to stay a string, got %s %q", raw, got.Kind(), got.String())
		return
	}
	if s != want {
		t.Errorf("expected %#v to infer string %q, got %q", raw, want, s)
	}
}

// AssertFallback verifies that raw is text no detector recognizes: the result
// is a string, and that string matches no detector either.
func AssertFallback(t *testing.T, raw any) {
	t.Helper()
	got := enval.Infer(raw)
	s, ok := got.Str()
	if !ok {
		t.Errorf("expected %#v to fall back to a string, got %s %q", raw, got.Kind(), got.String())
		return
	}
	candidate := enval.Candidate{Text: s, Lower: strings.ToLower(s)}
	for _, d := range enval.Detectors() {
		if v, matched := d.Detect(candidate); matched {
			t.Errorf("expected %#v to fall back to a string, but %s detector matches %q as %s",
				raw, d.Name(), s, v.Kind())
		}
	}
}

// AssertPassthrough verifies that raw comes back from inference unchanged.
func AssertPassthrough(t *testing.T, raw any) {
	t.Helper()
	got := enval.Native(raw)
	if !reflect.DeepEqual(got, raw) {
		t.Errorf("expected %#v to pass through unchanged, got %#v", raw, got)
	}
}

// MockTransformer records every call made through its Func and returns a
// configured value. It is safe for concurrent use.
type MockTransformer[R any] struct { //nolint:govet // fieldalignment: Test helper struct optimized for functionality over memory efficiency
	t           *testing.T
	name        string
	callCount   int64
	returnVal   R
	fn          enval.Transformer[R]
	mu          sync.RWMutex
	lastCall    MockCall
	callHistory []MockCall
	maxHistory  int
}

// MockCall represents a single call to the mock transformer.
type MockCall struct {
	Inferred  enval.Value
	Raw       any
	Timestamp time.Time
}

// NewMockTransformer creates a new mock transformer for testing.
// It returns the zero R until configured otherwise.
func NewMockTransformer[R any](t *testing.T, name string) *MockTransformer[R] {
	return &MockTransformer[R]{
		t:          t,
		name:       name,
		maxHistory: 100, // Keep last 100 calls by default
	}
}

// WithReturn configures the mock to return a fixed value.
func (m *MockTransformer[R]) WithReturn(val R) *MockTransformer[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.fn = nil
	return m
}

// WithFunc configures the mock to delegate to fn while still recording calls.
func (m *MockTransformer[R]) WithFunc(fn enval.Transformer[R]) *MockTransformer[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	return m
}

// WithHistorySize configures how many calls to keep in history.
// Set to 0 to disable history tracking.
func (m *MockTransformer[R]) WithHistorySize(size int) *MockTransformer[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxHistory = size
	if size == 0 {
		m.callHistory = nil
	} else if len(m.callHistory) > size {
		m.callHistory = m.callHistory[len(m.callHistory)-size:]
	}
	return m
}

// Name returns the name of the mock transformer.
func (m *MockTransformer[R]) Name() enval.Name {
	return m.name
}

// Func returns the transformer to hand to enval.InferWith.
func (m *MockTransformer[R]) Func() enval.Transformer[R] {
	return m.transform
}

func (m *MockTransformer[R]) transform(inferred enval.Value, raw any) R {
	atomic.AddInt64(&m.callCount, 1)

	call := MockCall{Inferred: inferred, Raw: raw, Timestamp: time.Now()}

	m.mu.Lock()
	m.lastCall = call
	if m.maxHistory > 0 {
		m.callHistory = append(m.callHistory, call)
		if len(m.callHistory) > m.maxHistory {
			m.callHistory = m.callHistory[1:] // Remove oldest
		}
	}
	fn := m.fn
	returnVal := m.returnVal
	m.mu.Unlock()

	if fn != nil {
		return fn(inferred, raw)
	}
	return returnVal
}

// CallCount returns the number of times the transformer has been called.
func (m *MockTransformer[R]) CallCount() int {
	return int(atomic.LoadInt64(&m.callCount))
}

// LastCall returns the most recent call.
func (m *MockTransformer[R]) LastCall() MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastCall
}

// CallHistory returns a copy of all recorded calls.
// Returns nil if history tracking is disabled.
func (m *MockTransformer[R]) CallHistory() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.maxHistory == 0 {
		return nil
	}
	history := make([]MockCall, len(m.callHistory))
	copy(history, m.callHistory)
	return history
}

// Reset clears all call tracking.
func (m *MockTransformer[R]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	atomic.StoreInt64(&m.callCount, 0)
	m.lastCall = MockCall{}
	m.callHistory = nil
}

// AssertTransformed verifies that a mock transformer was called exactly n times.
func AssertTransformed[R any](t *testing.T, mock *MockTransformer[R], expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected mock transformer %s to be called %d times, but was called %d times",
			mock.name, expectedCalls, actualCalls)
	}
}

// AssertNotTransformed verifies that a mock transformer was never called.
func AssertNotTransformed[R any](t *testing.T, mock *MockTransformer[R]) {
	t.Helper()
	AssertTransformed(t, mock, 0)
}

// AssertTransformedWith verifies the last call received the given raw input
// and inferred value.
func AssertTransformedWith[R any](t *testing.T, mock *MockTransformer[R], raw any, inferred enval.Value) {
	t.Helper()
	if mock.CallCount() == 0 {
		t.Errorf("expected mock transformer %s to be called with %#v, but it was never called",
			mock.name, raw)
		return
	}

	call := mock.LastCall()
	if !reflect.DeepEqual(call.Raw, raw) {
		t.Errorf("expected mock transformer %s to receive raw %#v, got %#v",
			mock.name, raw, call.Raw)
	}
	if !call.Inferred.Equal(inferred) {
		t.Errorf("expected mock transformer %s to receive %s %q, got %s %q",
			mock.name, inferred.Kind(), inferred.String(), call.Inferred.Kind(), call.Inferred.String())
	}
}

// WaitForCalls waits for a mock transformer to be called at least n times,
// with a timeout. Returns true if the expected calls were reached.
func WaitForCalls[R any](mock *MockTransformer[R], expectedCalls int, timeout time.Duration) bool {
	start := time.Now()
	for time.Since(start) < timeout {
		if mock.CallCount() >= expectedCalls {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// ParallelTest runs a test function in parallel with multiple goroutines.
// Useful for checking that inference holds no shared state.
func ParallelTest(t *testing.T, goroutines int, testFunc func(int)) {
	t.Helper()

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			testFunc(id)
		}(i)
	}

	wg.Wait()
}

// MeasureLatency measures the latency of a function call.
func MeasureLatency(fn func()) time.Duration {
	start := time.Now()
	fn()
	return time.Since(start)
}

// MeasureLatencyWithResult measures the latency of a function call and returns both the result and duration.
func MeasureLatencyWithResult[T any](fn func() T) (T, time.Duration) {
	start := time.Now()
	result := fn()
	return result, time.Since(start)
}
