package enval

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Engine.
const (
	// Metrics.
	EngineProcessedTotal   = metricz.Key("engine.processed.total")
	EnginePassthroughTotal = metricz.Key("engine.passthrough.total")
	EngineEmptyTotal       = metricz.Key("engine.empty.total")
	EngineMatchedTotal     = metricz.Key("engine.matched.total")
	EngineFallbackTotal    = metricz.Key("engine.fallback.total")
	EngineRepairedTotal    = metricz.Key("engine.repaired.total")
	EngineDurationMs       = metricz.Key("engine.duration.ms")

	// Spans.
	EngineInferSpan  = tracez.Key("engine.infer")
	EngineDetectSpan = tracez.Key("engine.detect")

	// Tags.
	EngineTagName     = tracez.Tag("engine.name")
	EngineTagKind     = tracez.Tag("engine.kind")
	EngineTagDetector = tracez.Tag("engine.detector")
	EngineTagMatched  = tracez.Tag("engine.matched")

	// Hook event keys.
	EngineEventInferred    = hookz.Key("engine.inferred")
	EngineEventFallback    = hookz.Key("engine.fallback")
	EngineEventPassthrough = hookz.Key("engine.passthrough")
)

// InferenceEvent describes one inference made by an Engine.
type InferenceEvent struct {
	Raw       any           // Input exactly as given
	Value     Value         // Inferred result
	Name      Name          // Engine name
	Detector  Name          // Detector that matched; empty for fallback and pass-through
	Text      string        // Normalized text; empty for pass-through
	Kind      Kind          // Kind of the result
	Duration  time.Duration // Time spent inferring
	Timestamp time.Time     // When the inference finished
}

// Engine is an observable inference connector. It infers exactly what Infer
// does, and additionally records metrics, emits spans for the inference and
// for every detector it tries, and fires hook events.
//
// Engines are long-lived and safe for concurrent use. Create one per
// configuration source and Close it when done.
//
// # Observability
//
// Metrics:
//   - engine.processed.total: Counter of inferences
//   - engine.passthrough.total: Counter of non-textual inputs
//   - engine.empty.total: Counter of blank inputs
//   - engine.matched.total: Counter of inferences a detector matched
//   - engine.fallback.total: Counter of plain-string results
//   - engine.repaired.total: Counter of structured values recovered by repair
//   - engine.duration.ms: Gauge of the last inference duration
//
// Traces:
//   - engine.infer: Span for the whole inference
//   - engine.detect: Child span per detector tried
//
// Events (via hooks):
//   - engine.inferred: A detector matched
//   - engine.fallback: No detector matched, or the input was blank
//   - engine.passthrough: The input was not text
//
// Example:
//
//	engine := enval.NewEngine("settings").WithRepair(true)
//	defer engine.Close()
//
//	engine.OnFallback(func(_ context.Context, e enval.InferenceEvent) error {
//	    log.Printf("kept %q as a string", e.Text)
//	    return nil
//	})
//
//	v := engine.Infer(ctx, os.Getenv("FEATURES"))
type Engine struct {
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[InferenceEvent]
	name    Name
	chain   []Detector
	repair  bool
	mu      sync.RWMutex
}

// NewEngine creates an Engine running the standard detector chain.
func NewEngine(name Name) *Engine {
	metrics := metricz.New()
	metrics.Counter(EngineProcessedTotal)
	metrics.Counter(EnginePassthroughTotal)
	metrics.Counter(EngineEmptyTotal)
	metrics.Counter(EngineMatchedTotal)
	metrics.Counter(EngineFallbackTotal)
	metrics.Counter(EngineRepairedTotal)
	metrics.Gauge(EngineDurationMs)

	return &Engine{
		name:    name,
		chain:   Detectors(),
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[InferenceEvent](),
	}
}

// WithClock sets the clock used for event timestamps and durations.
func (e *Engine) WithClock(clock clockz.Clock) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = clock
	return e
}

// WithRepair enables or disables lenient structured values. When enabled,
// text delimited like a JSON object or array that fails strict parsing is
// repaired and parsed again before falling back to a string.
func (e *Engine) WithRepair(enabled bool) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.repair = enabled
	e.chain = Detectors()
	if enabled {
		e.chain = append(e.chain, repairDetector)
	}
	return e
}

// getClock returns the clock to use.
func (e *Engine) getClock() clockz.Clock {
	if e.clock == nil {
		return clockz.RealClock
	}
	return e.clock
}

// Infer infers raw the same way the package-level Infer does, recording the
// inference along the way. It never fails.
func (e *Engine) Infer(ctx context.Context, raw any) (result Value) {
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.RLock()
	chain := e.chain
	clock := e.getClock()
	e.mu.RUnlock()

	e.metrics.Counter(EngineProcessedTotal).Inc()
	start := clock.Now()

	ctx, span := e.tracer.StartSpan(ctx, EngineInferSpan)
	span.SetTag(EngineTagName, e.name)

	var (
		eventKey = EngineEventFallback
		detector Name
		text     string
	)
	defer func() {
		elapsed := clock.Since(start)
		e.metrics.Gauge(EngineDurationMs).Set(float64(elapsed.Milliseconds()))

		span.SetTag(EngineTagKind, result.Kind().String())
		if detector != "" {
			span.SetTag(EngineTagDetector, detector)
		}
		span.Finish()

		_ = e.hooks.Emit(ctx, eventKey, InferenceEvent{ //nolint:errcheck
			Name:      e.name,
			Detector:  detector,
			Kind:      result.Kind(),
			Value:     result,
			Raw:       raw,
			Text:      text,
			Duration:  elapsed,
			Timestamp: clock.Now(),
		})
	}()

	s, ok := textOf(raw)
	if !ok {
		e.metrics.Counter(EnginePassthroughTotal).Inc()
		eventKey = EngineEventPassthrough
		return Of(raw)
	}

	candidate, ok := newCandidate(s)
	if !ok {
		e.metrics.Counter(EngineEmptyTotal).Inc()
		e.metrics.Counter(EngineFallbackTotal).Inc()
		return String("")
	}
	text = candidate.Text

	for _, d := range chain {
		_, detectSpan := e.tracer.StartSpan(ctx, EngineDetectSpan)
		detectSpan.SetTag(EngineTagDetector, d.name)
		v, matched := d.fn(candidate)
		if matched {
			detectSpan.SetTag(EngineTagMatched, "true")
		} else {
			detectSpan.SetTag(EngineTagMatched, "false")
		}
		detectSpan.Finish()

		if matched {
			e.metrics.Counter(EngineMatchedTotal).Inc()
			if d.name == DetectorRepair {
				e.metrics.Counter(EngineRepairedTotal).Inc()
			}
			eventKey = EngineEventInferred
			detector = d.name
			return v
		}
	}

	e.metrics.Counter(EngineFallbackTotal).Inc()
	return String(candidate.Text)
}

// Process infers raw. The error is always nil; it exists so an Engine can sit
// wherever a func(context.Context, any) (Value, error) is expected.
func (e *Engine) Process(ctx context.Context, raw any) (Value, error) {
	return e.Infer(ctx, raw), nil
}

// InferWithEngine infers raw through e and passes the result and the raw
// input to transform, like InferWith.
func InferWithEngine[R any](ctx context.Context, e *Engine, raw any, transform Transformer[R]) R {
	return apply(e.Infer(ctx, raw), raw, transform)
}

// Name returns the name of this engine.
func (e *Engine) Name() Name {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

// Repairing reports whether lenient structured values are enabled.
func (e *Engine) Repairing() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.repair
}

// Detectors returns the names of the detectors this engine tries, in order.
func (e *Engine) Detectors() []Name {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]Name, len(e.chain))
	for i, d := range e.chain {
		names[i] = d.name
	}
	return names
}

// Metrics returns the metrics registry for this engine.
func (e *Engine) Metrics() *metricz.Registry {
	return e.metrics
}

// Tracer returns the tracer for this engine.
func (e *Engine) Tracer() *tracez.Tracer {
	return e.tracer
}

// Close gracefully shuts down observability components.
func (e *Engine) Close() error {
	if e.tracer != nil {
		e.tracer.Close()
	}
	e.hooks.Close()
	return nil
}

// OnInferred registers a handler for inferences a detector matched.
// The handler is called asynchronously.
func (e *Engine) OnInferred(handler func(context.Context, InferenceEvent) error) error {
	_, err := e.hooks.Hook(EngineEventInferred, handler)
	return err
}

// OnFallback registers a handler for text that stayed a string, blank input
// included. The handler is called asynchronously.
func (e *Engine) OnFallback(handler func(context.Context, InferenceEvent) error) error {
	_, err := e.hooks.Hook(EngineEventFallback, handler)
	return err
}

// OnPassthrough registers a handler for non-textual input returned unchanged.
// The handler is called asynchronously.
func (e *Engine) OnPassthrough(handler func(context.Context, InferenceEvent) error) error {
	_, err := e.hooks.Hook(EngineEventPassthrough, handler)
	return err
}
