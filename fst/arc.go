package fst

// Arc is a mutable traversal cursor, owned by the caller. Every
// concurrent reader must use its own Arc plus its own BytesReader
// (spec.md §5) — Arc itself holds no owned resources, just plain values.
type Arc[T any] struct {
	Label           int
	Output          T
	NextFinalOutput T
	Target          int64
	Flags           byte

	// nextArc is the byte position of the following sibling arc, valid
	// only in linear (non fixed-array) nodes.
	nextArc int64

	// Fixed-array bookkeeping, valid only when the enclosing node was
	// written as a fixed-size array.
	posArcsStart int64
	bytesPerArc  int
	arcIdx       int
	numArcs      int
}

// IsFinal reports whether the source state is final on this arc's label.
func (a *Arc[T]) IsFinal() bool { return a.Flags&FlagFinalArc != 0 }

// IsLast reports whether this is the last arc in its source state's arc list.
func (a *Arc[T]) IsLast() bool { return a.Flags&FlagLastArc != 0 }

// HasOutput reports whether an output value follows the label.
func (a *Arc[T]) HasOutput() bool { return a.Flags&FlagArcHasOutput != 0 }

// HasFinalOutput reports whether a final-output value follows the output.
func (a *Arc[T]) HasFinalOutput() bool { return a.Flags&FlagArcHasFinalOutput != 0 }

// isFixedArray reports whether the enclosing node is a fixed-size array.
func (a *Arc[T]) isFixedArray() bool { return a.bytesPerArc != 0 }

// CopyFrom replaces the receiver's fields with other's, for the root-arc
// cache hit path (spec.md §4.4 find_target_arc).
func (a *Arc[T]) CopyFrom(other *Arc[T]) {
	*a = *other
}
