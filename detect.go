package enval

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Detector names, in chain order.
const (
	DetectorBoolean    Name = "boolean"
	DetectorNullish    Name = "nullish"
	DetectorNumber     Name = "number"
	DetectorStructured Name = "structured"
)

// maxSafeInteger is the largest integer a float64 holds exactly with every
// smaller integer also representable (2^53 - 1).
const maxSafeInteger = 1<<53 - 1

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$`)

// Detector is a named, pure inference rule. Detect returns the inferred
// Value and true when the rule applies, or false when it does not; a false
// result is never confused with a legitimate undefined Value.
//
// Detectors are only built inside this package. The chain is fixed, see
// Detectors for its order.
type Detector struct {
	fn   func(Candidate) (Value, bool)
	name Name
}

// Detect applies the rule to a normalized candidate.
func (d Detector) Detect(c Candidate) (Value, bool) {
	return d.fn(c)
}

// Name returns the rule name.
func (d Detector) Name() Name {
	return d.name
}

// detectors is the process-wide chain. Keyword rules come first; the plain
// string fallback applies only after all four miss.
var detectors = [...]Detector{
	{name: DetectorBoolean, fn: detectBoolean},
	{name: DetectorNullish, fn: detectNullish},
	{name: DetectorNumber, fn: detectNumber},
	{name: DetectorStructured, fn: detectStructured},
}

// Detectors returns the detector chain in the order it is tried.
func Detectors() []Detector {
	out := make([]Detector, len(detectors))
	copy(out, detectors[:])
	return out
}

func detectBoolean(c Candidate) (Value, bool) {
	switch c.Lower {
	case "true", "yes", "on":
		return Bool(true), true
	case "false", "no", "off":
		return Bool(false), true
	}
	return Value{}, false
}

func detectNullish(c Candidate) (Value, bool) {
	switch c.Lower {
	case "null":
		return Null(), true
	case "undefined":
		return Undefined(), true
	}
	return Value{}, false
}

// detectNumber accepts integers only while they are exact. Fractional values
// are accepted at any magnitude; overflow to infinity is not a number here.
func detectNumber(c Candidate) (Value, bool) {
	if !numberPattern.MatchString(c.Text) {
		return Value{}, false
	}
	f, err := strconv.ParseFloat(c.Text, 64)
	if err != nil || math.IsInf(f, 0) {
		return Value{}, false
	}
	if f == math.Trunc(f) && math.Abs(f) > maxSafeInteger {
		return Value{}, false
	}
	return Number(f), true
}

func detectStructured(c Candidate) (Value, bool) {
	if !delimited(c.Text) {
		return Value{}, false
	}
	return parseStructured(c.Text)
}

// delimited reports whether text opens and closes like a JSON object or array.
func delimited(text string) bool {
	return (strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}")) ||
		(strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]"))
}

// parseStructured decodes a JSON document and keeps it only when the top
// level is an object or an array.
func parseStructured(text string) (Value, bool) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return Value{}, false
	}
	switch x := doc.(type) {
	case map[string]any:
		return Object(x), true
	case []any:
		return Array(x), true
	default:
		return Value{}, false
	}
}
