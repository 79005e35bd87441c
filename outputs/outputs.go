// Package outputs provides reference implementations of the output
// monoid the core is generic over (spec.md §6 treats the codec as an
// external collaborator; this package supplies the two concrete ones a
// library consumer most commonly needs). The split mirrors the teacher's
// interface-owner/implementor pattern — base.Stream is declared in
// base/base.go and implemented independently by tcp, hdlc, and wrapper
// — here the interface lives in package fst and is implemented here.
package outputs

import "github.com/cybroslabs/go-fst/store"

// Int64 is the summing int64 output monoid: arc outputs along an
// accepted path are added together, and the no-output sentinel is 0.
// This is the PositiveIntOutputs monoid spec.md §8's concrete scenarios
// exercise.
type Int64 struct{}

// NoOutput returns the identity value, 0.
func (Int64) NoOutput() int64 { return 0 }

// Merge adds a and b; lookups use it to sum the outputs along a path.
func (Int64) Merge(a, b int64) int64 { return a + b }

// Write encodes v as a vlong.
func (Int64) Write(v int64, bs *store.ByteStore) { bs.WriteVlong(v) }

// WriteFinalOutput encodes v the same way Write does; the format draws
// no distinction between an arc output and a final output's wire shape.
func (o Int64) WriteFinalOutput(v int64, bs *store.ByteStore) { o.Write(v, bs) }

// Read decodes a value written by Write.
func (Int64) Read(br store.BytesReader) (int64, error) { return br.ReadVlong() }

// ReadFinalOutput decodes a value written by WriteFinalOutput.
func (o Int64) ReadFinalOutput(br store.BytesReader) (int64, error) { return o.Read(br) }

// NilOutputs is the no-output/acceptor monoid: every arc carries the
// identity value and lookups only answer "accepted or not". struct{} is
// the output type since there is nothing to encode.
type NilOutputs struct{}

// NoOutput returns the single value of struct{}.
func (NilOutputs) NoOutput() struct{} { return struct{}{} }

// Merge has nothing to combine; both operands are the identity.
func (NilOutputs) Merge(a, b struct{}) struct{} { return struct{}{} }

// Write encodes nothing: struct{} never reaches the wire.
func (NilOutputs) Write(struct{}, *store.ByteStore) {}

// WriteFinalOutput encodes nothing.
func (NilOutputs) WriteFinalOutput(struct{}, *store.ByteStore) {}

// Read always yields the identity value without consuming bytes.
func (NilOutputs) Read(store.BytesReader) (struct{}, error) { return struct{}{}, nil }

// ReadFinalOutput always yields the identity value without consuming bytes.
func (NilOutputs) ReadFinalOutput(store.BytesReader) (struct{}, error) { return struct{}{}, nil }
