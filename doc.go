// Package enval infers typed values from loosely typed text such as
// environment variables and configuration strings.
//
// # Overview
//
// Environment variables are always strings, but the values they carry rarely
// are. enval looks at a string and decides what it really represents: a
// boolean, a number, null or undefined, a JSON object or array, or just a
// string. Anything that is not text passes through untouched.
//
//	enval.Infer("  true ")       // Bool(true)
//	enval.Infer(`"123"`)         // Number(123)
//	enval.Infer("01234")         // Number(1234)
//	enval.Infer(`{"a":1}`)       // Object{"a": 1}
//	enval.Infer("12.34.56")      // String("12.34.56")
//	enval.Infer(42)              // passed through as int 42
//
// # Inference Rules
//
// Text is trimmed. Blank text becomes the empty string and nothing else runs.
// If the trimmed text is wrapped in one matching pair of quotes ("..." or
// '...') that pair is removed. The detectors then run in a fixed order and
// the first match wins:
//
//   - boolean: true, yes, on / false, no, off (case-insensitive)
//   - nullish: null, undefined (case-insensitive)
//   - number: -?digits(.digits)?([eE][+-]?digits)?; integers must be exact
//     in a float64, fractional values are always accepted
//   - structured: {...} or [...] that parses as JSON
//
// When nothing matches, the trimmed and unquoted text is returned.
//
// # Values
//
// Inference yields a Value, a small tagged union:
//
//	v := enval.Infer(os.Getenv("WORKERS"))
//	switch v.Kind() {
//	case enval.KindNumber:
//	    n, _ := v.Float()
//	case enval.KindUndefined, enval.KindNull:
//	    // unset
//	}
//
// Native returns the plain Go form instead: string, float64, bool, nil for
// null, UndefinedValue{} for undefined, map[string]any or []any.
//
// # Transformers
//
// InferWith hands the inferred Value and the untouched raw input to a
// Transformer and returns whatever it produces:
//
//	hosts := enval.InferWith(os.Getenv("HOSTS"), func(v enval.Value, _ any) []string {
//	    if s, ok := v.Str(); ok {
//	        return strings.Split(s, ",")
//	    }
//	    ...
//	})
//
// # Engines
//
// Infer is pure and keeps no state. When inference should be observable,
// use an Engine: it infers the same values while recording metrics, spans and
// hook events, and can optionally repair near-JSON text.
//
//	engine := enval.NewEngine("config").WithRepair(true)
//	defer engine.Close()
//	v := engine.Infer(ctx, `{port: 8080}`) // Object{"port": 8080}
//
// The env subpackage reads process variables and dotenv files through either.
package enval
