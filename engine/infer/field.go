package infer

import "github.com/WessleyAI/lotscraper/engine/vehicle"

// Field is a value plus whether it came from the page or was made up.
type Field[T any] struct {
	Value  T
	Source vehicle.Source
}

// IsExtracted reports whether the value was read from the page.
func (f Field[T]) IsExtracted() bool { return f.Source == vehicle.Extracted }

func extracted[T any](v T) Field[T] { return Field[T]{Value: v, Source: vehicle.Extracted} }

func inferred[T any](v T) Field[T] { return Field[T]{Value: v, Source: vehicle.Inferred} }
