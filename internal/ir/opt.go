package ir

// StripDeadCode drops every instruction after the first terminator of each
// block of f and rebuilds the CFG edges from the remaining terminators. It
// returns the number of instructions removed.
func StripDeadCode(f *Function) int {
	removed := 0
	for _, b := range f.Blocks {
		out := b.Instrs[:0]
		terminated := false
		for _, ins := range b.Instrs {
			if terminated {
				ins.Block = nil
				removed++
				continue
			}
			out = append(out, ins)
			terminated = ins.Op.IsTerminator()
		}
		for i := len(out); i < len(b.Instrs); i++ {
			b.Instrs[i] = nil
		}
		b.Instrs = out
	}

	for _, b := range f.Blocks {
		b.Preds, b.Succs = nil, nil
	}
	for _, b := range f.Blocks {
		if t := b.Terminator(); t != nil {
			for _, s := range t.Targets {
				addEdge(b, s)
			}
		}
	}
	return removed
}
