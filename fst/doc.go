// Package fst implements a compact, byte-serialized, acyclic finite
// state transducer: a map from sequences of input labels to an
// output monoid value, stored as a single reversed byte buffer with
// per-arc flag bits and four target-pointer encodings.
//
// The package is organized the way the teacher protocol stack splits an
// interface from its implementors (base.Stream / tcp / hdlc / wrapper):
// Outputs is declared here and implemented by package outputs; FST
// itself never depends on a concrete output type beyond the generic
// parameter.
package fst
