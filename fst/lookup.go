package fst

// Get looks up input and returns the accumulated output if accepted. A
// false result with a nil error means "not found" — never an error,
// matching spec.md §7's policy that traversal misses are a normal
// return.
func (f *FST[T]) Get(input []int) (T, bool, error) {
	var result T
	br := f.GetBytesReader()

	var arc Arc[T]
	f.GetFirstArc(&arc)

	output := f.outputs.NoOutput()
	for _, label := range input {
		ok, err := f.FindTargetArc(label, &arc, &arc, br)
		if err != nil {
			return result, false, err
		}
		if !ok {
			return result, false, nil
		}
		output = f.outputs.Merge(output, arc.Output)
	}

	if !arc.IsFinal() {
		return result, false, nil
	}
	output = f.outputs.Merge(output, arc.NextFinalOutput)
	return output, true, nil
}
