package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Result is the outcome of loading one key.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// Load resolves key from src, parses it and validates it. Unset keys yield
// def silently. Parse or validation failures yield def with a warning and
// FallbackApplied set.
func Load[T any](src *Source, key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw, ok := src.Lookup(key)
	if !ok {
		return Result[T]{Value: def}
	}

	value, err := parse(raw)
	if err == nil && validate != nil {
		err = validate(value)
	}
	if err != nil {
		return Result[T]{
			Value:           def,
			Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", key, raw, err, def)},
			FallbackApplied: true,
		}
	}

	return Result[T]{Value: value}
}

// LoadString loads a string value.
func LoadString(src *Source, key, def string, validate func(string) error) Result[string] {
	return Load(src, key, def, parseString, validate)
}

// LoadInt loads a base 10 integer.
func LoadInt(src *Source, key string, def int, validate func(int) error) Result[int] {
	return Load(src, key, def, parseInt, validate)
}

// LoadInt64 loads a base 10 64-bit integer.
func LoadInt64(src *Source, key string, def int64, validate func(int64) error) Result[int64] {
	return Load(src, key, def, parseInt64, validate)
}

// LoadDuration loads a time.ParseDuration value such as "30s" or "1m30s".
func LoadDuration(src *Source, key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return Load(src, key, def, time.ParseDuration, validate)
}

// LoadBool loads a strconv.ParseBool value.
func LoadBool(src *Source, key string, def bool) Result[bool] {
	return Load(src, key, def, strconv.ParseBool, nil)
}

func parseString(s string) (string, error) {
	return strings.TrimSpace(s), nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer format")
	}
	return v, nil
}

func parseInt64(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format")
	}
	return v, nil
}
