package fst

import (
	"go.uber.org/zap"
	"k8s.io/utils/ptr"

	"github.com/cybroslabs/go-fst/store"
)

// builderSettings holds Builder's validated configuration. Optional
// numeric knobs are threaded through *int pointers exactly as
// ciphering/cipheringkms.go and gcm/gcmkms.go do for optional KMS
// parameters, so "unset" is distinguishable from "explicitly zero".
type builderSettings struct {
	allowArrayArcs bool
	willPackFST    bool
	maxBlockBits   *int
	logger         *zap.SugaredLogger
}

// BuilderOption configures a Builder at construction time.
type BuilderOption func(*builderSettings)

// WithAllowArrayArcs enables or disables the fixed-array node layout
// decision (spec.md §4.3). Defaults to enabled.
func WithAllowArrayArcs(allow bool) BuilderOption {
	return func(s *builderSettings) { s.allowArrayArcs = allow }
}

// WithPacking makes the node encoder count each node's in-degree while
// building and limits the node count to 2^31-1. Defaults to disabled.
// Pack does not read these counts and does not check for this option:
// it accepts any finished FST and recomputes in-degree itself.
func WithPacking(enabled bool) BuilderOption {
	return func(s *builderSettings) { s.willPackFST = enabled }
}

// WithMaxBlockBits overrides the ByteStore page-size exponent.
func WithMaxBlockBits(bits int) BuilderOption {
	return func(s *builderSettings) { s.maxBlockBits = ptr.To(bits) }
}

// WithLogger attaches a diagnostics logger. Nil (the default) disables
// logging entirely; the read path never logs regardless.
func WithLogger(l *zap.SugaredLogger) BuilderOption {
	return func(s *builderSettings) { s.logger = l }
}

// uncompiledArc is a not-yet-serialized outgoing arc of an open frontier
// node. Once target is frozen, resolved holds the fully-decided
// compiledArc ready for the owning node's own eventual addNode call.
type uncompiledArc[T any] struct {
	label    int
	target   *uncompiledNode[T]
	resolved compiledArc[T]
}

// uncompiledNode is one node of the open "frontier" path down to the
// most recently added input. It is compiled (frozen) once no further
// input can extend it, i.e. once a subsequently added input's shared
// prefix with the previous one no longer reaches this depth.
type uncompiledNode[T any] struct {
	depth       int
	arcs        []*uncompiledArc[T]
	isFinal     bool
	finalOutput T

	compiled bool
	address  int64
}

// Builder incrementally compiles (input, output) pairs, added in
// strictly ascending sorted order, into a finished FST. It performs
// prefix sharing along the single path being built (a trie) but does
// not hash-cons or merge suffixes across separate branches — that
// minimizing pass belongs to an upstream collaborator this package does
// not implement (spec.md §1).
type Builder[T any] struct {
	inputType InputType
	outputs   Outputs[T]
	settings  builderSettings

	encoder  *nodeEncoder[T]
	frontier []*uncompiledNode[T]

	lastInput    []int
	hasLastInput bool

	hasEmptyOutput bool
	emptyOutput    T

	finished bool
}

// NewBuilder constructs a Builder for the given input type and output codec.
func NewBuilder[T any](inputType InputType, outputs Outputs[T], opts ...BuilderOption) (*Builder[T], error) {
	settings := builderSettings{allowArrayArcs: true}
	for _, opt := range opts {
		opt(&settings)
	}

	blockBits := DefaultMaxBlockBits
	if settings.maxBlockBits != nil {
		blockBits = *settings.maxBlockBits
	}
	bs, err := store.New(blockBits)
	if err != nil {
		return nil, err
	}
	// Reserve byte offset 0: real nodes start at strictly positive
	// addresses (spec.md §3).
	bs.WriteByte(0)

	b := &Builder[T]{
		inputType: inputType,
		outputs:   outputs,
		settings:  settings,
		encoder:   newNodeEncoder(bs, outputs, inputType, settings.allowArrayArcs, settings.willPackFST),
		frontier:  []*uncompiledNode[T]{{depth: 0}},
	}
	if settings.logger != nil {
		settings.logger.Debugw("fst builder created", "inputType", inputType, "willPackFST", settings.willPackFST)
	}
	return b, nil
}

func (b *Builder[T]) logf(format string, args ...any) {
	if b.settings.logger != nil {
		b.settings.logger.Debugf(format, args...)
	}
}

func (b *Builder[T]) frontierNode(depth int) *uncompiledNode[T] {
	for depth >= len(b.frontier) {
		b.frontier = append(b.frontier, &uncompiledNode[T]{depth: len(b.frontier)})
	}
	if b.frontier[depth] == nil {
		b.frontier[depth] = &uncompiledNode[T]{depth: depth}
	}
	return b.frontier[depth]
}

// Add appends one (input, output) pair. input must be strictly greater
// than the previous call's input (by lexicographic label comparison);
// violating that is IllegalState, matching the source's contract that
// building requires sorted order.
func (b *Builder[T]) Add(input []int, output T) error {
	if b.finished {
		return newIllegalState("Add called after Finish")
	}

	if len(input) == 0 {
		if b.hasEmptyOutput {
			b.emptyOutput = b.outputs.Merge(b.emptyOutput, output)
		} else {
			b.emptyOutput = output
			b.hasEmptyOutput = true
		}
		return nil
	}

	if b.hasLastInput {
		cmp := compareLabels(b.lastInput, input)
		if cmp >= 0 {
			return newIllegalState("inputs must be added in strictly ascending order")
		}
	}

	prefixLen := commonPrefixLen(b.lastInput, input)

	if err := b.freezeTail(prefixLen); err != nil {
		return err
	}

	for depth := prefixLen; depth < len(input); depth++ {
		parent := b.frontierNode(depth)
		child := b.frontierNode(depth + 1)
		child.arcs = nil
		child.isFinal = false
		child.compiled = false
		parent.arcs = append(parent.arcs, &uncompiledArc[T]{label: input[depth], target: child})
	}

	leaf := b.frontierNode(len(input))
	if leaf.isFinal {
		leaf.finalOutput = b.outputs.Merge(leaf.finalOutput, output)
	} else {
		leaf.isFinal = true
		leaf.finalOutput = output
	}

	b.lastInput = append(b.lastInput[:0], input...)
	b.hasLastInput = true
	return nil
}

// freezeTail compiles every frontier node strictly deeper than
// prefixLen, from the deepest back up to prefixLen+1, resolving each
// one's incoming arc as it goes.
func (b *Builder[T]) freezeTail(prefixLen int) error {
	for depth := len(b.lastInput); depth > prefixLen; depth-- {
		if depth >= len(b.frontier) || b.frontier[depth] == nil {
			continue
		}
		node := b.frontier[depth]
		if node.compiled {
			continue
		}
		if err := b.freezeNode(node); err != nil {
			return err
		}
		parent := b.frontier[depth-1]
		if len(parent.arcs) > 0 {
			last := parent.arcs[len(parent.arcs)-1]
			if last.target == node {
				last.resolved = b.resolveArc(last.label, node)
			}
		}
	}
	return nil
}

// resolveArc decides, now that target is fully compiled, whether its
// accept value (if any) belongs on the arc's real output (target is a
// true leaf) or its final output (target is final but has further
// arcs) — see DESIGN.md for why this needs no output-pushing/subtraction.
func (b *Builder[T]) resolveArc(label int, target *uncompiledNode[T]) compiledArc[T] {
	arc := compiledArc[T]{label: label, target: target.address}
	noOutput := b.outputs.NoOutput()
	arc.output = noOutput
	arc.nextFinalOutput = noOutput
	if target.isFinal {
		arc.isFinal = true
		if len(target.arcs) == 0 {
			arc.output = target.finalOutput
		} else {
			arc.nextFinalOutput = target.finalOutput
		}
	}
	return arc
}

// freezeNode compiles node's own (already-resolved) arcs into bytes.
func (b *Builder[T]) freezeNode(node *uncompiledNode[T]) error {
	arcs := make([]compiledArc[T], len(node.arcs))
	for i, a := range node.arcs {
		arcs[i] = a.resolved
	}
	address, err := b.encoder.addNode(compiledNode[T]{arcs: arcs, isFinal: node.isFinal && len(arcs) == 0}, node.depth)
	if err != nil {
		return err
	}
	node.address = address
	node.compiled = true
	return nil
}

// Finish freezes the remaining frontier and returns the built FST. The
// Builder must not be used afterward.
func (b *Builder[T]) Finish() (*FST[T], error) {
	if b.finished {
		return nil, newIllegalState("Finish called twice")
	}
	if err := b.freezeTail(0); err != nil {
		return nil, err
	}
	root := b.frontier[0]
	if !root.compiled {
		if err := b.freezeNode(root); err != nil {
			return nil, err
		}
	}
	b.finished = true

	b.encoder.bytes.Finish()

	f := &FST[T]{
		inputType:          b.inputType,
		outputs:            b.outputs,
		bytes:              b.encoder.bytes,
		startNode:          root.address,
		hasEmptyOutput:     b.hasEmptyOutput,
		emptyOutput:        b.emptyOutput,
		nodeCount:          b.encoder.nodeCount,
		arcCount:           b.encoder.arcCount,
		arcWithOutputCount: b.encoder.arcWithOutputCount,
	}
	if err := f.populateRootArcCache(); err != nil {
		return nil, err
	}
	b.logf("fst finished: nodes=%d arcs=%d arcsWithOutput=%d", f.nodeCount, f.arcCount, f.arcWithOutputCount)
	return f, nil
}

func compareLabels(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func commonPrefixLen(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
