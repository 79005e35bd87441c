package fst

import (
	"sort"

	"go.uber.org/zap"
	"k8s.io/utils/ptr"

	"github.com/cybroslabs/go-fst/packedints"
	"github.com/cybroslabs/go-fst/store"
)

// packSettings holds Pack's validated configuration.
type packSettings struct {
	minInCountDeref       int
	maxDerefNodes         int
	acceptableOverheadRatio *float64
	maxIterations         int
	logger                *zap.SugaredLogger
}

// PackOption configures a Pack call.
type PackOption func(*packSettings)

// WithMinInCountDeref sets the minimum in-degree a node must have to be
// eligible for the dense-id deref table.
func WithMinInCountDeref(n int) PackOption {
	return func(s *packSettings) { s.minInCountDeref = n }
}

// WithMaxDerefNodes caps how many nodes get a dense id.
func WithMaxDerefNodes(n int) PackOption {
	return func(s *packSettings) { s.maxDerefNodes = n }
}

// WithAcceptableOverheadRatio is accepted for API compatibility and has
// no effect: the deref table is always built at the smallest byte width
// that holds the largest new node address.
func WithAcceptableOverheadRatio(ratio float64) PackOption {
	return func(s *packSettings) { s.acceptableOverheadRatio = ptr.To(ratio) }
}

// WithPackLogger attaches a diagnostics logger to Pack, nil-checked like
// every other optional logger in this package.
func WithPackLogger(l *zap.SugaredLogger) PackOption {
	return func(s *packSettings) { s.logger = l }
}

// packedNode is a decoded, in-memory copy of one node's arcs, captured
// by walking the source FST once before any rewriting begins.
type packedNode[T any] struct {
	address int64
	arcs    []compiledArc[T]
	isFinal bool
	depth   int
}

// Pack rewrites src into a smaller, packed FST: nodes with high in-degree
// get a dense id and arcs targeting them reference that id instead of an
// absolute address; other targets are written as absolute addresses.
// Nodes are emitted in ascending source-address order, so every target is
// written before the arcs that point at it; the forward delta encoding
// (TARGET_DELTA) therefore never applies to Pack's output. Pack accepts
// any finished FST, whether or not its Builder used WithPacking.
func Pack[T any](src *FST[T], opts ...PackOption) (*FST[T], error) {
	settings := packSettings{minInCountDeref: 1, maxDerefNodes: 1 << 16, maxIterations: 8}
	for _, opt := range opts {
		opt(&settings)
	}

	nodes, inDegree, order, err := walkNodes(src)
	if err != nil {
		return nil, err
	}

	derefIDs := selectDerefNodes(order, inDegree, settings.minInCountDeref, settings.maxDerefNodes)

	newAddr := make(map[int64]int64, len(nodes))
	for _, n := range nodes {
		newAddr[n.address] = n.address // coarse initial guess
	}
	newAddr[FinalEndNode] = FinalEndNode
	newAddr[NonFinalEndNode] = NonFinalEndNode

	var bs *store.ByteStore
	changed := true
	for iter := 0; changed && iter < settings.maxIterations; iter++ {
		changed = false
		bs, err = store.New(DefaultMaxBlockBits)
		if err != nil {
			return nil, err
		}
		bs.WriteByte(0)

		for i := len(order) - 1; i >= 0; i-- {
			addr := order[i]
			node := nodes[addr]
			address, err := emitPackedNode(bs, src.outputs, src.inputType, node, derefIDs, newAddr)
			if err != nil {
				return nil, err
			}
			if newAddr[addr] != address {
				changed = true
			}
			newAddr[addr] = address
		}
		if settings.logger != nil {
			settings.logger.Debugw("pack iteration", "iteration", iter, "changed", changed)
		}
	}

	derefTable := buildDerefTable(derefIDs, newAddr)

	dst := &FST[T]{
		inputType:          src.inputType,
		outputs:            src.outputs,
		bytes:              bs,
		hasEmptyOutput:     src.hasEmptyOutput,
		emptyOutput:        src.emptyOutput,
		nodeCount:          src.nodeCount,
		arcCount:           src.arcCount,
		arcWithOutputCount: src.arcWithOutputCount,
		packed:             true,
		version:            currentVersion,
		nodeRefToAddress:   derefTable,
		startNode:          resolveStart(src.startNode, newAddr),
	}
	if err := dst.populateRootArcCache(); err != nil {
		return nil, err
	}
	return dst, nil
}

func resolveStart(start int64, newAddr map[int64]int64) int64 {
	if start <= 0 {
		return start
	}
	return newAddr[start]
}

// walkNodes performs a full DFS over src from its start node, decoding
// every reachable node's arcs exactly once, and computing in-degree per
// node address.
func walkNodes[T any](src *FST[T]) (map[int64]*packedNode[T], map[int64]int, []int64, error) {
	nodes := make(map[int64]*packedNode[T])
	inDegree := make(map[int64]int)
	var order []int64

	var visit func(address int64, depth int) error
	visit = func(address int64, depth int) error {
		if address <= 0 {
			return nil
		}
		if _, ok := nodes[address]; ok {
			return nil
		}

		br := src.GetBytesReader()
		var arc Arc[T]
		if _, err := src.ReadFirstRealTargetArc(address, &arc, br); err != nil {
			return err
		}

		node := &packedNode[T]{address: address, depth: depth}
		for {
			compiled := compiledArc[T]{
				label:           arc.Label,
				output:          arc.Output,
				target:          arc.Target,
				isFinal:         arc.IsFinal(),
				nextFinalOutput: arc.NextFinalOutput,
			}
			node.arcs = append(node.arcs, compiled)
			if arc.Target > 0 {
				inDegree[arc.Target]++
			}
			if arc.IsLast() {
				break
			}
			if _, err := src.ReadNextRealArc(&arc, br); err != nil {
				return err
			}
		}
		nodes[address] = node
		order = append(order, address)

		for _, a := range node.arcs {
			if a.target > 0 {
				if err := visit(a.target, depth+1); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if src.startNode > 0 {
		if err := visit(src.startNode, 0); err != nil {
			return nil, nil, nil, err
		}
	}

	sort.Slice(order, func(i, j int) bool { return order[i] > order[j] })
	return nodes, inDegree, order, nil
}

// selectDerefNodes picks the top-K nodes by in-degree (ties broken by
// smaller address winning, i.e. "smaller node compares as greater" in
// the priority queue sense) and assigns dense ids, higher in-degree
// getting the lower id.
func selectDerefNodes(order []int64, inDegree map[int64]int, minInCount, maxNodes int) map[int64]int {
	type candidate struct {
		address int64
		count   int
	}
	var candidates []candidate
	for _, addr := range order {
		if c := inDegree[addr]; c >= minInCount {
			candidates = append(candidates, candidate{addr, c})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		return candidates[i].address < candidates[j].address
	})
	if len(candidates) > maxNodes {
		candidates = candidates[:maxNodes]
	}
	ids := make(map[int64]int, len(candidates))
	for i, c := range candidates {
		ids[c.address] = i
	}
	return ids
}

func buildDerefTable(derefIDs map[int64]int, newAddr map[int64]int64) *packedints.Reader {
	maxAddr := int64(0)
	for _, addr := range newAddr {
		if addr > maxAddr {
			maxAddr = addr
		}
	}
	mutable := packedints.NewMutable(len(derefIDs), maxAddr)
	for addr, id := range derefIDs {
		mutable.Set(id, newAddr[addr])
	}
	return mutable.Freeze()
}

// emitPackedNode re-serializes one node into bs, choosing among the four
// target encodings described in spec.md §4.5 for each arc, and returns
// the node's new address. Packed nodes are read forward (fst.go's
// GetBytesReader), so unlike the reverse-read NodeEncoder this returns
// the node's start address, not its last byte.
func emitPackedNode[T any](bs *store.ByteStore, outputs Outputs[T], typ InputType, node *packedNode[T], derefIDs map[int64]int, newAddr map[int64]int64) (int64, error) {
	if len(node.arcs) == 0 {
		if node.isFinal {
			return FinalEndNode, nil
		}
		return NonFinalEndNode, nil
	}

	startAddress := bs.GetPosition()
	noOutput := outputs.NoOutput()
	lastArc := len(node.arcs) - 1

	for idx, arc := range node.arcs {
		var flags byte
		if idx == lastArc {
			flags |= FlagLastArc
		}
		if arc.isFinal {
			flags |= FlagFinalArc
			if !outputsEqual(arc.nextFinalOutput, noOutput) {
				flags |= FlagArcHasFinalOutput
			}
		}
		targetHasArcs := arc.target > 0
		if !targetHasArcs {
			flags |= FlagStopNode
		}
		hasOutput := !outputsEqual(arc.output, noOutput)
		if hasOutput {
			flags |= FlagArcHasOutput
		}

		// Build the non-target prefix (flags, label, optional output,
		// optional final output) into a scratch buffer first, so its
		// exact length is known before deciding between delta and
		// absolute target encoding: ReadNextRealArc reads the target
		// vlong's delta relative to the position right after this
		// prefix, not the position before it.
		prefix, err := store.New(store.MinBlockBits)
		if err != nil {
			return 0, err
		}
		prefix.WriteByte(flags)
		if err := writeLabel(prefix, typ, arc.label); err != nil {
			return 0, err
		}
		if hasOutput {
			outputs.Write(arc.output, prefix)
		}
		if flags&FlagArcHasFinalOutput != 0 {
			outputs.WriteFinalOutput(arc.nextFinalOutput, prefix)
		}
		prefixBytes := drainBytes(prefix)

		var targetCode int64
		if targetHasArcs {
			newTarget := newAddr[arc.target]
			posAtVlong := bs.GetPosition() + int64(len(prefixBytes))
			delta := newTarget - posAtVlong
			if id, ok := derefIDs[arc.target]; ok && !(delta >= 0 && delta < int64(id)) {
				targetCode = int64(id)
			} else if delta >= 0 {
				targetCode = delta
				prefixBytes[0] |= FlagTargetDelta
			} else {
				targetCode = newTarget
			}
		}

		bs.WriteBytes(prefixBytes)
		if targetHasArcs {
			bs.WriteVlong(targetCode)
		}
	}

	return startAddress, nil
}
