// Package env reads process environment variables and dotenv files and
// infers a typed value for each entry with enval.
//
//	debug := env.Get("DEBUG")          // Bool(true) for DEBUG=yes
//	values, err := env.Read(".env")    // map of inferred values
//
// Use NewReader with an enval.Engine to make the same lookups observable.
package env

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zoobzio/enval"
)

// Reader infers environment values, optionally through an Engine.
// The zero Reader uses enval.Infer.
type Reader struct {
	engine *enval.Engine
}

// NewReader returns a Reader that infers through engine. A nil engine
// behaves like the zero Reader.
func NewReader(engine *enval.Engine) *Reader {
	return &Reader{engine: engine}
}

var std = &Reader{}

func (r *Reader) infer(ctx context.Context, raw string) enval.Value {
	if r == nil || r.engine == nil {
		return enval.Infer(raw)
	}
	return r.engine.Infer(ctx, raw)
}

// Lookup infers the value of the environment variable key. The bool is
// false when the variable is not set.
func (r *Reader) Lookup(ctx context.Context, key string) (enval.Value, bool) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return enval.Undefined(), false
	}
	return r.infer(ctx, raw), true
}

// Get infers the value of the environment variable key. Unset variables are
// undefined; variables set to an empty string infer to the empty string.
func (r *Reader) Get(ctx context.Context, key string) enval.Value {
	v, _ := r.Lookup(ctx, key)
	return v
}

// Environ infers every variable in the process environment.
func (r *Reader) Environ(ctx context.Context) map[string]enval.Value {
	vars := os.Environ()
	out := make(map[string]enval.Value, len(vars))
	for _, kv := range vars {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		out[key] = r.infer(ctx, raw)
	}
	return out
}

// Read parses the named dotenv files, ".env" when none are given, and infers
// every value. Later files override earlier ones.
func (r *Reader) Read(ctx context.Context, filenames ...string) (map[string]enval.Value, error) {
	raw, err := godotenv.Read(filenames...)
	if err != nil {
		return nil, fmt.Errorf("env: reading dotenv files: %w", err)
	}
	return r.inferAll(ctx, raw), nil
}

// Parse reads dotenv content from src and infers every value.
func (r *Reader) Parse(ctx context.Context, src io.Reader) (map[string]enval.Value, error) {
	raw, err := godotenv.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("env: parsing dotenv: %w", err)
	}
	return r.inferAll(ctx, raw), nil
}

// Unmarshal parses dotenv content held in a string and infers every value.
func (r *Reader) Unmarshal(ctx context.Context, content string) (map[string]enval.Value, error) {
	raw, err := godotenv.Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("env: parsing dotenv: %w", err)
	}
	return r.inferAll(ctx, raw), nil
}

func (r *Reader) inferAll(ctx context.Context, raw map[string]string) map[string]enval.Value {
	out := make(map[string]enval.Value, len(raw))
	for key, value := range raw {
		out[key] = r.infer(ctx, value)
	}
	return out
}

// Lookup infers the environment variable key with enval.Infer.
func Lookup(key string) (enval.Value, bool) {
	return std.Lookup(context.Background(), key)
}

// Get infers the environment variable key with enval.Infer.
func Get(key string) enval.Value {
	return std.Get(context.Background(), key)
}

// Environ infers the whole process environment with enval.Infer.
func Environ() map[string]enval.Value {
	return std.Environ(context.Background())
}

// Read parses dotenv files and infers every value with enval.Infer.
func Read(filenames ...string) (map[string]enval.Value, error) {
	return std.Read(context.Background(), filenames...)
}

// Parse reads dotenv content and infers every value with enval.Infer.
func Parse(src io.Reader) (map[string]enval.Value, error) {
	return std.Parse(context.Background(), src)
}

// Unmarshal parses dotenv content from a string and infers every value.
func Unmarshal(content string) (map[string]enval.Value, error) {
	return std.Unmarshal(context.Background(), content)
}
