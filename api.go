package enval

// Name identifies detectors and engines in events, spans and metrics.
// Using a plain string alias keeps call sites free of conversions:
//
//	const ConfigEngineName enval.Name = "config"
//	engine := enval.NewEngine(ConfigEngineName)
type Name = string

// Transformer reshapes an inferred value. It receives the inferred Value and
// the raw input exactly as the caller passed it.
//
//	port := func(v enval.Value, _ any) int {
//	    if f, ok := v.Float(); ok {
//	        return int(f)
//	    }
//	    return 8080
//	}
type Transformer[R any] func(inferred Value, raw any) R

// Infer decides what typed value raw represents.
//
// Non-textual input is returned unchanged (see Of). Text is trimmed; blank
// text infers to the empty string. One matching pair of outer quotes is then
// stripped and the detectors run in order: boolean, nullish, number,
// structured. The first match wins. When nothing matches the trimmed,
// unquoted text is returned as a string.
//
// Infer has no side effects and never fails. It is safe for concurrent use.
func Infer(raw any) Value {
	text, ok := textOf(raw)
	if !ok {
		return Of(raw)
	}

	candidate, ok := newCandidate(text)
	if !ok {
		return String("")
	}

	for _, d := range detectors {
		if v, matched := d.fn(candidate); matched {
			return v
		}
	}
	return String(candidate.Text)
}

// Native infers raw and returns the native Go form of the result:
// string, float64, bool, nil, UndefinedValue{}, map[string]any, []any, or the
// untouched input for non-textual values.
func Native(raw any) any {
	return Infer(raw).Interface()
}

// InferWith infers raw and hands the result, together with the original raw
// input, to transform. Whatever transform returns is returned.
//
// A nil transform returns the inferred Value when R can hold it (Value or
// any) and the zero R otherwise. Panics raised by transform are not recovered.
func InferWith[R any](raw any, transform Transformer[R]) R {
	return apply(Infer(raw), raw, transform)
}

func apply[R any](inferred Value, raw any, transform Transformer[R]) R {
	if transform == nil {
		if r, ok := any(inferred).(R); ok {
			return r
		}
		var zero R
		return zero
	}
	return transform(inferred, raw)
}
