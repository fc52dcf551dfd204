// Package metrics times and counts every externally observable action: API
// calls, object store calls and metadata store calls.
//
// Operation names follow a "<scope>.<operation>" scheme, for example
// "api.file_upload", "s3.uploadFile" or "database.saveFileMetadata".
package metrics

import (
	"strings"
	"time"
)

const (
	ScopeAPI      = "api"
	ScopeS3       = "s3"
	ScopeDatabase = "database"
)

// Instrumentation records durations and counters. Implementations must never
// panic or block the caller.
type Instrumentation interface {
	Observe(name string, elapsed time.Duration)
	Count(name string)
}

// Time runs fn and records its wall-clock duration under name on every exit
// path, including a panic. fn's error is returned unchanged.
func Time(inst Instrumentation, name string, fn func() error) error {
	start := time.Now()
	defer func() {
		inst.Observe(name, time.Since(start))
	}()
	return fn()
}

// TimeValue is Time for functions that also produce a value.
func TimeValue[T any](inst Instrumentation, name string, fn func() (T, error)) (T, error) {
	start := time.Now()
	defer func() {
		inst.Observe(name, time.Since(start))
	}()
	return fn()
}

func API(operation string) string      { return ScopeAPI + "." + operation }
func S3(operation string) string       { return ScopeS3 + "." + operation }
func Database(operation string) string { return ScopeDatabase + "." + operation }

// split separates "scope.operation"; names without a dot get an empty scope.
func split(name string) (scope, operation string) {
	scope, operation, ok := strings.Cut(name, ".")
	if !ok {
		return "", name
	}
	return scope, operation
}

// Nop discards everything.
type Nop struct{}

func (Nop) Observe(string, time.Duration) {}
func (Nop) Count(string)                  {}
