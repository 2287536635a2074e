package pass

import "github.com/sarchlab/hlsc/hwir"

// DCE removes dead instructions and dead resources (§4.7), iterating the
// three sub-steps to a fixed point since collapsing a combinational jump
// can turn a once-referenced resource port into an unreferenced one, and
// vice versa.
func DCE(ctx *hwir.Context, m *hwir.Module) {
	for {
		changed := false
		if deleteEmptySinks(m) {
			changed = true
		}
		if collapseCombinationalJumps(ctx, m) {
			changed = true
		}
		if markDeadResources(m) {
			changed = true
		}
		if !changed {
			return
		}
	}
}

// deleteEmptySinks removes every live Empty instruction with no
// continuations.
func deleteEmptySinks(m *hwir.Module) bool {
	changed := false
	for _, instr := range m.Body {
		if instr.Erased() {
			continue
		}
		if instr.Kind == hwir.KindEmpty && len(instr.Continuations) == 0 {
			instr.MarkErased()
			changed = true
		}
	}
	return changed
}

// collapseCombinationalJumps bypasses every live, non-start Empty
// instruction whose single continuation is unconditional (gated by the
// 1-bit constant 1) and fires at delay 0: every predecessor edge
// pointing at it is retargeted to its successor instead, and the
// bypassed instruction is erased.
func collapseCombinationalJumps(ctx *hwir.Context, m *hwir.Module) bool {
	changed := false
	for _, instr := range m.Body {
		if instr.Erased() || instr.IsStart || instr.Kind != hwir.KindEmpty {
			continue
		}
		if len(instr.Continuations) != 1 {
			continue
		}
		c := instr.Continuations[0]
		if c.Delay != 0 || !isTrueConstPort(ctx, m, c.Cond) {
			continue
		}

		for _, pred := range m.Body {
			if pred.Erased() || pred == instr {
				continue
			}
			for i := range pred.Continuations {
				if pred.Continuations[i].Dest == instr.ID {
					pred.Continuations[i].Dest = c.Dest
				}
			}
		}
		instr.MarkErased()
		changed = true
	}
	return changed
}

// isTrueConstPort reports whether p names the "out" port of an instance
// of the module's width-1, value-1 constant primitive.
func isTrueConstPort(ctx *hwir.Context, m *hwir.Module, p hwir.Port) bool {
	if p.Instance == hwir.Self || p.Name != "out" {
		return false
	}
	inst := m.Resources[p.Instance]
	return inst != nil && inst.Module == ctx.TrueConst()
}

// markDeadResources tombstones every live resource none of whose
// output-facing ports is referenced by a structural connection, a live
// instruction, or a continuation condition.
func markDeadResources(m *hwir.Module) bool {
	changed := false
	for _, inst := range m.LiveResources() {
		live := false
		for _, name := range inst.Module.OrderedPortNames() {
			decl := inst.Module.Ports[name]
			if decl.Dir != hwir.DirOut {
				continue
			}
			if m.PortReferenced(inst.Pt(name)) {
				live = true
				break
			}
		}
		if !live {
			inst.Dead = true
			changed = true
		}
	}
	return changed
}
