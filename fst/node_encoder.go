package fst

import "github.com/cybroslabs/go-fst/store"

// compiledArc is one outgoing arc of a node about to be serialized. The
// target is a node address already assigned by the caller — the caller
// guarantees targets are written before the node that references them.
type compiledArc[T any] struct {
	label           int
	output          T
	target          int64
	isFinal         bool
	nextFinalOutput T
}

// compiledNode is the sorted arc list handed to addNode.
type compiledNode[T any] struct {
	arcs    []compiledArc[T]
	isFinal bool
}

// nodeEncoder serializes compiled nodes into a ByteStore, choosing
// between linear and fixed-array layout per node (spec.md §4.3).
type nodeEncoder[T any] struct {
	bytes          *store.ByteStore
	outputs        Outputs[T]
	inputType      InputType
	allowArrayArcs bool

	lastFrozenNode int64
	nodeCount      int64
	arcCount       int64
	arcWithOutputCount int64

	// inCounts, when non-nil, accumulates in-degree per node address;
	// only maintained when the Builder was constructed WithPacking. The
	// counts are not carried into the finished FST: Pack recomputes
	// in-degree by walking the FST.
	inCounts map[int64]int64
}

func newNodeEncoder[T any](bytes *store.ByteStore, outputs Outputs[T], typ InputType, allowArrayArcs bool, trackInCounts bool) *nodeEncoder[T] {
	e := &nodeEncoder[T]{
		bytes:          bytes,
		outputs:        outputs,
		inputType:      typ,
		allowArrayArcs: allowArrayArcs,
		lastFrozenNode: NonFinalEndNode,
	}
	if trackInCounts {
		e.inCounts = make(map[int64]int64)
	}
	return e
}

func (e *nodeEncoder[T]) shouldExpand(depth int, numArcs int) bool {
	return e.allowArrayArcs &&
		((depth <= fixedArrayShallowDepth && numArcs >= fixedArrayShallowArcs) || numArcs >= fixedArrayDeepArcs)
}

// addNode serializes node, returning its address (FinalEndNode or
// NonFinalEndNode for an empty node).
func (e *nodeEncoder[T]) addNode(node compiledNode[T], depth int) (int64, error) {
	if len(node.arcs) == 0 {
		if node.isFinal {
			return FinalEndNode, nil
		}
		return NonFinalEndNode, nil
	}
	if e.inCounts != nil && e.nodeCount >= 1<<31-1 {
		return 0, newCapacityExceeded("node count would exceed %d with packing enabled", 1<<31-1)
	}

	startAddress := e.bytes.GetPosition()
	doFixedArray := e.shouldExpand(depth, len(node.arcs))

	e.arcCount += int64(len(node.arcs))

	lastArc := len(node.arcs) - 1
	lastArcStart := e.bytes.GetPosition()
	bytesPerArc := make([]int, len(node.arcs))
	maxBytesPerArc := 0

	noOutput := e.outputs.NoOutput()

	for idx, arc := range node.arcs {
		var flags byte
		if idx == lastArc {
			flags |= FlagLastArc
		}
		if e.lastFrozenNode == arc.target && !doFixedArray {
			flags |= FlagTargetNext
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
		} else if e.inCounts != nil {
			e.inCounts[arc.target]++
		}
		hasOutput := !outputsEqual(arc.output, noOutput)
		if hasOutput {
			flags |= FlagArcHasOutput
		}

		e.bytes.WriteByte(flags)
		if err := writeLabel(e.bytes, e.inputType, arc.label); err != nil {
			return 0, err
		}
		if hasOutput {
			e.outputs.Write(arc.output, e.bytes)
			e.arcWithOutputCount++
		}
		if flags&FlagArcHasFinalOutput != 0 {
			e.outputs.WriteFinalOutput(arc.nextFinalOutput, e.bytes)
		}
		if targetHasArcs && flags&FlagTargetNext == 0 {
			e.bytes.WriteVlong(arc.target)
		}

		if doFixedArray {
			pos := e.bytes.GetPosition()
			bytesPerArc[idx] = int(pos - lastArcStart)
			lastArcStart = pos
			if bytesPerArc[idx] > maxBytesPerArc {
				maxBytesPerArc = bytesPerArc[idx]
			}
		}
	}

	if doFixedArray {
		const maxHeaderSize = 11 // marker(1) + vint(numArcs) + vint(bytesPerArc)
		header, err := encodeFixedArrayHeader(len(node.arcs), maxBytesPerArc)
		if err != nil {
			return 0, err
		}
		if len(header) > maxHeaderSize {
			return 0, newFormatError("fixed array header unexpectedly large: %d bytes", len(header))
		}
		headerLen := len(header)
		fixedArrayStart := startAddress + int64(headerLen)

		srcPos := e.bytes.GetPosition()
		destPos := fixedArrayStart + int64(len(node.arcs))*int64(maxBytesPerArc)
		if destPos > srcPos {
			e.bytes.SkipBytes(int(destPos - srcPos))
			for idx := len(node.arcs) - 1; idx >= 0; idx-- {
				destPos -= int64(maxBytesPerArc)
				srcPos -= int64(bytesPerArc[idx])
				if srcPos != destPos {
					e.bytes.CopyBytes(srcPos, destPos, bytesPerArc[idx])
				}
			}
		}
		e.bytes.WriteBytesAt(startAddress, header)
	}

	thisNodeAddress := e.bytes.GetPosition() - 1
	e.bytes.Reverse(startAddress, thisNodeAddress)

	e.nodeCount++
	e.lastFrozenNode = thisNodeAddress
	return thisNodeAddress, nil
}

// encodeFixedArrayHeader builds the ⟨ARCS_AS_FIXED_ARRAY, vint numArcs,
// vint bytesPerArc⟩ header as a standalone byte slice so its exact
// length is known before it is spliced into the ByteStore.
func encodeFixedArrayHeader(numArcs, bytesPerArc int) ([]byte, error) {
	scratch, err := store.New(store.MinBlockBits)
	if err != nil {
		return nil, err
	}
	scratch.WriteByte(ArcsAsFixedArray)
	scratch.WriteVint(numArcs)
	scratch.WriteVint(bytesPerArc)
	out := make([]byte, scratch.GetPosition())
	fr := scratch.GetForwardReader()
	for i := range out {
		b, err := fr.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
