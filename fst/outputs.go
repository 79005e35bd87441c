package fst

import "github.com/cybroslabs/go-fst/store"

// Outputs is the output monoid contract a caller supplies to parameterize
// an FST (spec.md §6). Implementations live outside this package — see
// package outputs for NilOutputs and Int64 — mirroring how base.Stream is
// declared once and implemented independently by each transport package.
type Outputs[T any] interface {
	// NoOutput returns the sentinel "no output" value. It must compare
	// equal to itself; T is expected to be a comparable type in practice
	// even though Go cannot express that alongside `any` generically
	// here without forcing every caller into comparable.
	NoOutput() T

	// Merge combines two outputs: Get uses it to accumulate outputs along
	// a path, and Builder uses it when a second empty-output value is
	// added on top of an existing one.
	Merge(a, b T) T

	Write(v T, bs *store.ByteStore)
	WriteFinalOutput(v T, bs *store.ByteStore)
	Read(br store.BytesReader) (T, error)
	ReadFinalOutput(br store.BytesReader) (T, error)
}

// outputsEqual compares two output values for equality using the
// generic equality available through comparing interface boxed values.
// Outputs[T] implementations are expected to use comparable underlying
// types (int64, struct{}, strings, small structs of comparables); this
// helper is the one place that assumption is made explicit.
func outputsEqual[T any](a, b T) bool {
	return any(a) == any(b)
}
