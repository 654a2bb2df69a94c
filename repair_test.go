package enval

import (
	"context"
	"testing"
)

func TestRepair(t *testing.T) {
	t.Run("Infer Stays Strict", func(t *testing.T) {
		for _, raw := range []string{"{port: 8080}", "['a', 'b']", `{"a":1,}`} {
			v := Infer(raw)
			if s, ok := v.Str(); !ok || s != raw {
				t.Errorf("expected %q to stay a string, got %s %q", raw, v.Kind(), v)
			}
		}
	})

	t.Run("Engine Repairs Delimited Text", func(t *testing.T) {
		engine := NewEngine("test-repair").WithRepair(true)
		defer engine.Close()

		if !engine.Repairing() {
			t.Error("expected repair to be enabled")
		}
		names := engine.Detectors()
		if names[len(names)-1] != DetectorRepair {
			t.Errorf("expected repair detector last, got %v", names)
		}

		v := engine.Infer(context.Background(), "{port: 8080, hosts: ['a', 'b']}")
		want := Object(map[string]any{"port": float64(8080), "hosts": []any{"a", "b"}})
		if !v.Equal(want) {
			t.Errorf("expected %s, got %s %q", want, v.Kind(), v)
		}

		v = engine.Infer(context.Background(), "[1, 2, 3,]")
		if !v.Equal(Array([]any{float64(1), float64(2), float64(3)})) {
			t.Errorf("expected [1,2,3], got %s %q", v.Kind(), v)
		}

		if got := engine.Metrics().Counter(EngineRepairedTotal).Value(); got != 2 {
			t.Errorf("expected 2 repaired, got %f", got)
		}
	})

	t.Run("Strict Values Are Not Counted As Repaired", func(t *testing.T) {
		engine := NewEngine("test-repair-strict").WithRepair(true)
		defer engine.Close()

		v := engine.Infer(context.Background(), `{"a":1}`)
		if v.Kind() != KindObject {
			t.Errorf("expected object, got %s", v.Kind())
		}
		if got := engine.Metrics().Counter(EngineRepairedTotal).Value(); got != 0 {
			t.Errorf("expected 0 repaired, got %f", got)
		}
	})

	t.Run("Undelimited Text Is Never Repaired", func(t *testing.T) {
		engine := NewEngine("test-repair-plain").WithRepair(true)
		defer engine.Close()

		for _, raw := range []string{"hello", "key: value", "'quoted'", "{open"} {
			v := engine.Infer(context.Background(), raw)
			if v.Kind() != KindString {
				t.Errorf("expected %q to stay a string, got %s", raw, v.Kind())
			}
		}
	})

	t.Run("Disable", func(t *testing.T) {
		engine := NewEngine("test-repair-off").WithRepair(true).WithRepair(false)
		defer engine.Close()

		if engine.Repairing() {
			t.Error("expected repair to be disabled")
		}
		if len(engine.Detectors()) != len(Detectors()) {
			t.Errorf("expected standard chain, got %v", engine.Detectors())
		}
		if v := engine.Infer(context.Background(), "{a: 1}"); v.Kind() != KindString {
			t.Errorf("expected string, got %s", v.Kind())
		}
	})
}
