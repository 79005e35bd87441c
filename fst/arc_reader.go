package fst

import "github.com/cybroslabs/go-fst/store"

// GetFirstArc initializes arc as the virtual incoming arc to the start
// node, filling it in place.
func (f *FST[T]) GetFirstArc(arc *Arc[T]) *Arc[T] {
	noOutput := f.outputs.NoOutput()
	if f.hasEmptyOutput {
		arc.Flags = FlagFinalArc | FlagLastArc
		arc.NextFinalOutput = f.emptyOutput
		if !outputsEqual(f.emptyOutput, noOutput) {
			arc.Flags |= FlagArcHasFinalOutput
		}
	} else {
		arc.Flags = FlagLastArc
		var zero T
		arc.NextFinalOutput = zero
	}
	arc.Output = noOutput
	arc.Target = f.startNode
	arc.bytesPerArc = 0
	return arc
}

// ReadFirstTargetArc follows follow and reads the first arc of its
// target into arc.
func (f *FST[T]) ReadFirstTargetArc(follow, arc *Arc[T], br store.BytesReader) (*Arc[T], error) {
	if follow.IsFinal() {
		arc.Label = EndLabel
		arc.Output = follow.NextFinalOutput
		arc.Flags = FlagFinalArc
		if follow.Target <= 0 {
			arc.Flags |= FlagLastArc
		} else {
			arc.nextArc = follow.Target
		}
		arc.Target = FinalEndNode
		return arc, nil
	}
	return f.ReadFirstRealTargetArc(follow.Target, arc, br)
}

// ReadFirstRealTargetArc positions br at node's address and reads its
// first real (non-synthetic) arc into arc.
func (f *FST[T]) ReadFirstRealTargetArc(node int64, arc *Arc[T], br store.BytesReader) (*Arc[T], error) {
	address := f.getNodeAddress(node)
	br.SetPosition(address)

	b, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == ArcsAsFixedArray {
		numArcs, err := br.ReadVint()
		if err != nil {
			return nil, err
		}
		bytesPerArc, err := br.ReadVint()
		if err != nil {
			return nil, err
		}
		arc.numArcs = numArcs
		arc.bytesPerArc = bytesPerArc
		arc.arcIdx = -1
		arc.posArcsStart = br.GetPosition()
		arc.nextArc = arc.posArcsStart
	} else {
		br.SkipBytes(-1)
		arc.nextArc = address
		arc.bytesPerArc = 0
	}
	return f.ReadNextRealArc(arc, br)
}

// ReadNextRealArc advances arc to the next real arc of the current node.
func (f *FST[T]) ReadNextRealArc(arc *Arc[T], br store.BytesReader) (*Arc[T], error) {
	if arc.bytesPerArc != 0 {
		arc.arcIdx++
		br.SetPosition(arc.posArcsStart)
		br.SkipBytes(arc.arcIdx * arc.bytesPerArc)
	} else {
		br.SetPosition(arc.nextArc)
	}

	flags, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	arc.Flags = flags
	label, err := readLabel(br, f.inputType)
	if err != nil {
		return nil, err
	}
	arc.Label = label

	if arc.HasOutput() {
		v, err := f.outputs.Read(br)
		if err != nil {
			return nil, err
		}
		arc.Output = v
	} else {
		arc.Output = f.outputs.NoOutput()
	}

	if arc.HasFinalOutput() {
		v, err := f.outputs.ReadFinalOutput(br)
		if err != nil {
			return nil, err
		}
		arc.NextFinalOutput = v
	} else {
		arc.NextFinalOutput = f.outputs.NoOutput()
	}

	switch {
	case flags&FlagStopNode != 0:
		if flags&FlagFinalArc != 0 {
			arc.Target = FinalEndNode
		} else {
			arc.Target = NonFinalEndNode
		}
		arc.nextArc = br.GetPosition()

	case flags&FlagTargetNext != 0:
		arc.nextArc = br.GetPosition()
		if f.nodeRefToAddress == nil {
			if flags&FlagLastArc == 0 {
				if arc.bytesPerArc == 0 {
					if err := f.seekToNextNode(br); err != nil {
						return nil, err
					}
				} else {
					br.SetPosition(arc.posArcsStart)
					br.SkipBytes(arc.bytesPerArc * arc.numArcs)
				}
			}
			arc.Target = br.GetPosition()
		} else {
			// nodeRefToAddress is only populated for packed FSTs. Pack
			// never emits TARGET_NEXT (only the unpacked node encoder
			// does), so the flag on a packed node is rejected as
			// malformed input.
			return nil, newFormatError("TARGET_NEXT is not valid on a packed node")
		}

	default:
		if f.packed {
			pos := br.GetPosition()
			code, err := br.ReadVlong()
			if err != nil {
				return nil, err
			}
			switch {
			case flags&FlagTargetDelta != 0:
				arc.Target = pos + code
			case f.nodeRefToAddress != nil && code < int64(f.nodeRefToAddress.Len()):
				arc.Target = f.nodeRefToAddress.Get(int(code))
			default:
				arc.Target = code
			}
		} else {
			target, err := br.ReadVlong()
			if err != nil {
				return nil, err
			}
			arc.Target = target
		}
		arc.nextArc = br.GetPosition()
	}

	return arc, nil
}

// ReadNextArc advances arc, following the synthetic END_LABEL arc back
// into real traversal if needed. Returns IllegalStateError if arc is
// already the last arc of its node.
func (f *FST[T]) ReadNextArc(arc *Arc[T], br store.BytesReader) (*Arc[T], error) {
	if arc.IsLast() {
		return nil, newIllegalState("ReadNextArc called on the last arc of a node")
	}
	if arc.Label == EndLabel {
		if arc.nextArc <= 0 {
			return nil, newIllegalState("ReadNextArc called on a final arc that is also last")
		}
		return f.ReadFirstRealTargetArc(arc.nextArc, arc, br)
	}
	return f.ReadNextRealArc(arc, br)
}

// ReadNextArcLabel peeks the label of the arc following arc without
// mutating it. Must not be called when arc.IsLast().
func (f *FST[T]) ReadNextArcLabel(arc *Arc[T], br store.BytesReader) (int, error) {
	if arc.Label == EndLabel {
		pos := f.getNodeAddress(arc.nextArc)
		br.SetPosition(pos)
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ArcsAsFixedArray {
			if _, err := br.ReadVint(); err != nil {
				return 0, err
			}
			if _, err := br.ReadVint(); err != nil {
				return 0, err
			}
		} else {
			br.SetPosition(pos)
		}
	} else if arc.bytesPerArc != 0 {
		br.SetPosition(arc.posArcsStart)
		br.SkipBytes((1 + arc.arcIdx) * arc.bytesPerArc)
	} else {
		br.SetPosition(arc.nextArc)
	}
	if _, err := br.ReadByte(); err != nil {
		return 0, err
	}
	return readLabel(br, f.inputType)
}

// ReadLastTargetArc reads the last arc of follow's target into arc.
func (f *FST[T]) ReadLastTargetArc(follow, arc *Arc[T], br store.BytesReader) (*Arc[T], error) {
	if !targetHasArcs(follow) {
		arc.Label = EndLabel
		arc.Target = FinalEndNode
		arc.Output = follow.NextFinalOutput
		arc.Flags = FlagLastArc
		return arc, nil
	}

	br.SetPosition(f.getNodeAddress(follow.Target))
	b, err := br.ReadByte()
	if err != nil {
		return nil, err
	}
	if b == ArcsAsFixedArray {
		numArcs, err := br.ReadVint()
		if err != nil {
			return nil, err
		}
		bytesPerArc, err := br.ReadVint()
		if err != nil {
			return nil, err
		}
		arc.numArcs = numArcs
		arc.bytesPerArc = bytesPerArc
		arc.posArcsStart = br.GetPosition()
		arc.arcIdx = numArcs - 2
	} else {
		arc.Flags = b
		arc.bytesPerArc = 0
		for !arc.IsLast() {
			if _, err := readLabel(br, f.inputType); err != nil {
				return nil, err
			}
			if arc.HasOutput() {
				if _, err := f.outputs.Read(br); err != nil {
					return nil, err
				}
			}
			if arc.HasFinalOutput() {
				if _, err := f.outputs.ReadFinalOutput(br); err != nil {
					return nil, err
				}
			}
			if arc.Flags&FlagStopNode == 0 && arc.Flags&FlagTargetNext == 0 {
				if _, err := br.ReadVlong(); err != nil {
					return nil, err
				}
			}
			flags, err := br.ReadByte()
			if err != nil {
				return nil, err
			}
			arc.Flags = flags
		}
		br.SkipBytes(-1)
		arc.nextArc = br.GetPosition()
	}
	return f.ReadNextRealArc(arc, br)
}

// FindTargetArc is the primary lookup: it finds the arc leaving follow's
// target labeled label, writing it into arc. The boolean result is false
// (with a nil error) when no such arc exists — "not found" is a normal
// return, never an error.
func (f *FST[T]) FindTargetArc(label int, follow, arc *Arc[T], br store.BytesReader) (bool, error) {
	if label == EndLabel {
		if follow.IsFinal() {
			if follow.Target <= 0 {
				arc.Flags = FlagLastArc
			} else {
				arc.Flags = 0
				arc.nextArc = follow.Target
			}
			arc.Output = follow.NextFinalOutput
			arc.Label = EndLabel
			return true, nil
		}
		return false, nil
	}

	if follow.Target == f.startNode && label >= 0 && label < len(f.cachedRootArcs) {
		cached := f.cachedRootArcs[label]
		if cached == nil {
			return false, nil
		}
		arc.CopyFrom(cached)
		return true, nil
	}

	if !targetHasArcs(follow) {
		return false, nil
	}

	br.SetPosition(f.getNodeAddress(follow.Target))

	b, err := br.ReadByte()
	if err != nil {
		return false, err
	}
	if b == ArcsAsFixedArray {
		numArcs, err := br.ReadVint()
		if err != nil {
			return false, err
		}
		bytesPerArc, err := br.ReadVint()
		if err != nil {
			return false, err
		}
		arc.numArcs = numArcs
		arc.bytesPerArc = bytesPerArc
		arc.posArcsStart = br.GetPosition()

		low, high := 0, numArcs-1
		for low <= high {
			mid := (low + high) >> 1
			br.SetPosition(arc.posArcsStart)
			br.SkipBytes(bytesPerArc*mid + 1)
			midLabel, err := readLabel(br, f.inputType)
			if err != nil {
				return false, err
			}
			switch {
			case midLabel < label:
				low = mid + 1
			case midLabel > label:
				high = mid - 1
			default:
				arc.arcIdx = mid - 1
				if _, err := f.ReadNextRealArc(arc, br); err != nil {
					return false, err
				}
				return true, nil
			}
		}
		return false, nil
	}

	if _, err := f.ReadFirstRealTargetArc(follow.Target, arc, br); err != nil {
		return false, err
	}
	for {
		switch {
		case arc.Label == label:
			return true, nil
		case arc.Label > label:
			return false, nil
		case arc.IsLast():
			return false, nil
		default:
			if _, err := f.ReadNextRealArc(arc, br); err != nil {
				return false, err
			}
		}
	}
}

// seekToNextNode scans forward through the current node's remaining
// arcs, discarding their content, positioning br right after the node —
// used to resolve TARGET_NEXT for a non-last arc of an unpacked linear
// node when the address that follows isn't otherwise known.
func (f *FST[T]) seekToNextNode(br store.BytesReader) error {
	for {
		flags, err := br.ReadByte()
		if err != nil {
			return err
		}
		if _, err := readLabel(br, f.inputType); err != nil {
			return err
		}
		if flags&FlagArcHasOutput != 0 {
			if _, err := f.outputs.Read(br); err != nil {
				return err
			}
		}
		if flags&FlagArcHasFinalOutput != 0 {
			if _, err := f.outputs.ReadFinalOutput(br); err != nil {
				return err
			}
		}
		if flags&FlagStopNode == 0 && flags&FlagTargetNext == 0 {
			if _, err := br.ReadVlong(); err != nil {
				return err
			}
		}
		if flags&FlagLastArc != 0 {
			return nil
		}
	}
}
