package fst

import (
	"github.com/cybroslabs/go-fst/packedints"
	"github.com/cybroslabs/go-fst/store"
)

// FST is an immutable, byte-serialized finite state transducer. Build one
// with Builder, or obtain one from Load or Pack; there is no other way to
// construct one, matching spec.md §3's lifecycle ("once finished or
// loaded from bytes, the FST is immutable except for the Packer").
type FST[T any] struct {
	inputType InputType
	outputs   Outputs[T]
	bytes     *store.ByteStore

	startNode      int64
	hasEmptyOutput bool
	emptyOutput    T

	nodeCount          int64
	arcCount           int64
	arcWithOutputCount int64

	packed          bool
	version         int
	nodeRefToAddress *packedints.Reader // non-nil only for packed FSTs

	cachedRootArcs [128]*Arc[T]
}

// NodeCount returns the number of real (non-sentinel) nodes, plus the
// implicit final sink node.
func (f *FST[T]) NodeCount() int64 { return 1 + f.nodeCount }

// ArcCount returns the total number of arcs written.
func (f *FST[T]) ArcCount() int64 { return f.arcCount }

// ArcWithOutputCount returns the number of arcs that carried a non-empty output.
func (f *FST[T]) ArcWithOutputCount() int64 { return f.arcWithOutputCount }

// InputType reports the label width strategy this FST was built with.
func (f *FST[T]) InputType() InputType { return f.inputType }

// IsPacked reports whether this FST has gone through the packing rewrite.
func (f *FST[T]) IsPacked() bool { return f.packed }

// SizeInBytes returns the size of the raw arc-byte buffer, excluding
// auxiliary tables — the dominant cost for any real FST.
func (f *FST[T]) SizeInBytes() int64 {
	return f.bytes.GetPosition()
}

// GetBytesReader returns a fresh reader positioned at 0: forward for a
// packed FST, reverse for an unpacked one (spec.md §9's "single most
// confusing aspect"). Each caller must own its own reader.
func (f *FST[T]) GetBytesReader() store.BytesReader {
	if f.packed {
		return f.bytes.GetForwardReader()
	}
	return f.bytes.GetReverseReader()
}

// getNodeAddress resolves a node reference to an absolute byte position.
// Arc.Target is always already an absolute address by the time anything
// calls this, for both packed and unpacked FSTs: ReadNextRealArc's
// packed branch resolves TARGET_DELTA and dense-id-deref targets down to
// an absolute address itself, using nodeRefToAddress there. That table
// is the pack-time top-K deref table (indexed by dense id, not by
// address) and must never be reused here as a second, wider indirection
// — doing so indexes it clean out of range for any address above the
// handful of ids it holds.
func (f *FST[T]) getNodeAddress(node int64) int64 {
	return node
}

// targetHasArcs reports whether arc's target node has any outgoing arcs.
func targetHasArcs[T any](arc *Arc[T]) bool { return arc.Target > 0 }

// HasEmptyOutput reports whether the empty input sequence is accepted,
// and if so returns its output.
func (f *FST[T]) HasEmptyOutput() (T, bool) {
	return f.emptyOutput, f.hasEmptyOutput
}

// populateRootArcCache fills the 128-entry root-arc cache by walking the
// start node's real arcs once. Called exactly once per FST, from Finish,
// Load or Pack
// (spec.md §5: "populated exactly once ... and thereafter read-only").
func (f *FST[T]) populateRootArcCache() error {
	var first Arc[T]
	f.GetFirstArc(&first)
	if !targetHasArcs(&first) {
		return nil
	}

	br := f.GetBytesReader()
	arc := &Arc[T]{}
	if _, err := f.ReadFirstRealTargetArc(first.Target, arc, br); err != nil {
		return err
	}
	for {
		if arc.Label >= 0 && arc.Label < len(f.cachedRootArcs) {
			cached := *arc
			f.cachedRootArcs[arc.Label] = &cached
		}
		if arc.IsLast() {
			return nil
		}
		if _, err := f.ReadNextRealArc(arc, br); err != nil {
			return err
		}
	}
}
