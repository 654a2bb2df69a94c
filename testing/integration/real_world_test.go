package integration

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/enval"
	"github.com/zoobzio/enval/env"
	envaltest "github.com/zoobzio/enval/testing"
)

// ServiceConfig is a typical settings struct filled from inferred values.
type ServiceConfig struct {
	Name     string
	Port     int
	Debug    bool
	Ratio    float64
	Hosts    []string
	Limits   map[string]any
	Optional enval.Value
}

const dotenv = `APP_NAME="orders"
APP_PORT=8080
APP_DEBUG=yes
APP_RATIO='0.25'
APP_HOSTS=["db-1","db-2"]
APP_LIMITS={burst: 20, rate: 5}
APP_OPTIONAL=undefined
`

func toInt(v enval.Value, _ any) int {
	f, _ := v.Float()
	return int(f)
}

func toStrings(v enval.Value, _ any) []string {
	items, _ := v.Slice()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func loadConfig(ctx context.Context, t *testing.T, engine *enval.Engine, path string) ServiceConfig {
	t.Helper()

	values, err := env.NewReader(engine).Read(ctx, path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}

	var cfg ServiceConfig
	cfg.Name, _ = values["APP_NAME"].Str()
	cfg.Port = toInt(values["APP_PORT"], nil)
	cfg.Debug, _ = values["APP_DEBUG"].Boolean()
	cfg.Ratio, _ = values["APP_RATIO"].Float()
	cfg.Hosts = toStrings(values["APP_HOSTS"], nil)
	cfg.Limits, _ = values["APP_LIMITS"].Map()
	cfg.Optional = values["APP_OPTIONAL"]
	return cfg
}

// TestRealWorldConfigLoading reads a dotenv file through an observable engine
// and builds a typed settings struct from the inferred values.
func TestRealWorldConfigLoading(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(dotenv), 0o600); err != nil {
		t.Fatal(err)
	}

	engine := enval.NewEngine("service-config").WithRepair(true)
	defer engine.Close()

	var mu sync.Mutex
	var fallbacks []enval.InferenceEvent
	if err := engine.OnFallback(func(_ context.Context, e enval.InferenceEvent) error {
		mu.Lock()
		fallbacks = append(fallbacks, e)
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	cfg := loadConfig(context.Background(), t, engine, path)

	if cfg.Name != "orders" {
		t.Errorf("expected name 'orders', got %q", cfg.Name)
	}
	if cfg.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Port)
	}
	if !cfg.Debug {
		t.Error("expected debug to be enabled")
	}
	if cfg.Ratio != 0.25 {
		t.Errorf("expected ratio 0.25, got %v", cfg.Ratio)
	}
	if len(cfg.Hosts) != 2 || cfg.Hosts[0] != "db-1" || cfg.Hosts[1] != "db-2" {
		t.Errorf("expected hosts [db-1 db-2], got %v", cfg.Hosts)
	}
	if cfg.Limits["burst"] != float64(20) || cfg.Limits["rate"] != float64(5) {
		t.Errorf("expected repaired limits, got %v", cfg.Limits)
	}
	if !cfg.Optional.IsUndefined() {
		t.Errorf("expected optional to be undefined, got %s", cfg.Optional.Kind())
	}

	if got := engine.Metrics().Counter(enval.EngineProcessedTotal).Value(); got != 7 {
		t.Errorf("expected 7 processed, got %f", got)
	}
	if got := engine.Metrics().Counter(enval.EngineRepairedTotal).Value(); got != 1 {
		t.Errorf("expected 1 repaired, got %f", got)
	}

	// Wait for async hooks to fire
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(fallbacks) != 1 || fallbacks[0].Text != "orders" {
		t.Errorf("expected a single fallback for the name, got %v", fallbacks)
	}
}

// TestRealWorldSnapshot caches inferred settings with the codec and serves
// them back as JSON, the way a config service would.
func TestRealWorldSnapshot(t *testing.T) {
	values, err := env.Unmarshal(dotenv)
	if err != nil {
		t.Fatal(err)
	}

	data, err := enval.Encode(values)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	restored, err := enval.Decode[map[string]enval.Value](data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if len(restored) != len(values) {
		t.Fatalf("expected %d values, got %d", len(values), len(restored))
	}
	for key, want := range values {
		if !restored[key].Equal(want) {
			t.Errorf("%s: expected %s %q, got %s %q", key, want.Kind(), want, restored[key].Kind(), restored[key])
		}
	}
	if !restored["APP_OPTIONAL"].IsUndefined() {
		t.Error("expected undefined to survive the snapshot")
	}

	out, err := json.Marshal(map[string]enval.Value{
		"port":  restored["APP_PORT"],
		"debug": restored["APP_DEBUG"],
		"hosts": restored["APP_HOSTS"],
	})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"debug":true,"hosts":["db-1","db-2"],"port":8080}`
	if string(out) != want {
		t.Errorf("expected %s, got %s", want, out)
	}
}

// TestRealWorldConcurrentReaders shares one engine between many readers.
func TestRealWorldConcurrentReaders(t *testing.T) {
	engine := enval.NewEngine("shared")
	defer engine.Close()

	reader := env.NewReader(engine)
	t.Setenv("APP_WORKERS", "16")

	envaltest.ParallelTest(t, 50, func(i int) {
		v := reader.Get(context.Background(), "APP_WORKERS")
		if !v.Equal(enval.Number(16)) {
			t.Errorf("reader %d: expected 16, got %s", i, v)
		}
	})

	if got := engine.Metrics().Counter(enval.EngineProcessedTotal).Value(); got != 50 {
		t.Errorf("expected 50 processed, got %f", got)
	}
}
