package pass

import "github.com/sarchlab/hlsc/hwir"

// DelayNormalize rewrites every continuation with delay > 1 into a chain
// of delay-1 Empty instructions (§4.4), so that after this pass every
// continuation in m has delay 0 or 1 (invariant 3). The first hop of a
// chain keeps the original continuation's condition; every subsequent
// hop is unconditional (gated by the module's true constant), since only
// the first cycle's firing needs to observe cond.
func DelayNormalize(ctx *hwir.Context, m *hwir.Module) {
	for {
		changed := false
		for _, instr := range m.Body {
			if instr.Erased() {
				continue
			}
			for i := 0; i < len(instr.Continuations); i++ {
				c := instr.Continuations[i]
				if c.Delay <= 1 {
					continue
				}

				prev := instr
				cond := c.Cond
				remaining := c.Delay
				for remaining > 1 {
					node := m.AddEmpty()
					m.ContinueTo(prev, cond, node, 1)
					prev = node
					cond = trueCond(ctx, m)
					remaining--
				}
				dest := m.Instruction(c.Dest)
				m.ContinueTo(prev, cond, dest, 1)

				instr.Continuations = append(instr.Continuations[:i:i], instr.Continuations[i+1:]...)
				i--
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}
