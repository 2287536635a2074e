// Package pass implements the five CAC lowering passes: invoke inlining,
// delay normalization, channel synthesis, structural reduction, and
// dead-resource/dead-instruction elimination. Each pass consumes and
// mutates one hwir.Module and may be re-run idempotently.
package pass

import (
	"log/slog"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/internal/diag"
)

// trueCond returns the width-1, always-1 condition port used throughout
// the passes as an unconditional continuation guard, reusing a single
// constant instance per module instead of minting a fresh one per call.
func trueCond(ctx *hwir.Context, m *hwir.Module) hwir.Port {
	tc := ctx.TrueConst()
	for _, r := range m.Resources {
		if r != nil && !r.Dead && r.Module == tc {
			return r.Pt("out")
		}
	}
	inst := m.FreshInstance(tc, "true_const")
	return inst.Pt("out")
}

// Inline runs invoke inlining to a fixed point: every Invoke instruction
// is replaced by either a direct wiring to its primitive resource's ports
// (when the callee action has no body of its own) or a deep clone of the
// callee action's body and resources (§4.3), until no Invoke remains.
func Inline(ctx *hwir.Context, m *hwir.Module) {
	for {
		var target *hwir.Instruction
		for _, instr := range m.Body {
			if instr.Erased() || instr.Kind != hwir.KindInvoke {
				continue
			}
			target = instr
			break
		}
		if target == nil {
			return
		}

		owner := m.Resources[target.InvInstance]
		callee := owner.Module.Actions[target.InvAction]
		if callee.Primitive {
			primitiveInlineStep(ctx, m, target, owner, callee)
		} else {
			generalInlineStep(ctx, m, target, owner, callee)
		}
	}
}

// primitiveInlineStep lowers an Invoke of a primitive's calling
// convention (add/not/comparator's "apply", register's "st") directly to
// Connect instructions against the resource's own ports, since a
// primitive module has no body to clone. Register's "st" action settles
// one cycle later than a purely combinational apply (§9 ambiguity
// resolution: register-store completes after delay 1).
func primitiveInlineStep(ctx *hwir.Context, m *hwir.Module, instr *hwir.Instruction, owner *hwir.ModuleInstance, callee *hwir.Module) {
	cond := trueCond(ctx, m)

	connects := make([]*hwir.Instruction, 0, len(callee.Ports))
	for _, name := range callee.OrderedPortNames() {
		decl := callee.Ports[name]
		bound, ok := instr.InvBindings[name]
		diag.Require(ok, "invoke of action %q on instance %q missing binding for port %q", instr.InvAction, owner.Name, name)

		var c *hwir.Instruction
		if decl.Dir == hwir.DirIn {
			c = m.AddConnect(bound, owner.Pt(name))
		} else {
			c = m.AddConnect(owner.Pt(name), bound)
		}
		connects = append(connects, c)
	}

	done := m.AddEmpty()
	for _, c := range connects {
		m.ContinueTo(c, cond, done, 0)
	}

	origConts := instr.Continuations
	instr.Continuations = nil
	instr.EraseToEmpty()

	for _, c := range connects {
		m.ContinueTo(instr, cond, c, 0)
	}

	settleSink := done
	if instr.InvAction == "st" {
		settle := m.AddEmpty()
		m.ContinueTo(done, cond, settle, 1)
		settleSink = settle
	}
	for _, oc := range origConts {
		m.ContinueTo(settleSink, oc.Cond, m.Instruction(oc.Dest), oc.Delay)
	}

	slog.Debug("inline: primitive action lowered", "module", m.Name, "instance", owner.Name, "action", instr.InvAction)
}

// generalInlineStep lowers an Invoke of a user-defined (frontend- or
// SSA-authored) action by deep-cloning the callee's resources and body
// into the caller, per §4.3.
func generalInlineStep(ctx *hwir.Context, m *hwir.Module, instr *hwir.Instruction, owner *hwir.ModuleInstance, callee *hwir.Module) {
	for name := range callee.Ports {
		_, ok := instr.InvBindings[name]
		diag.Require(ok, "invoke of action %q on instance %q missing binding for port %q", instr.InvAction, owner.Name, name)
	}

	// Step 1: fresh caller-local instances for each of the callee's
	// resources.
	resourceMap := make(map[hwir.InstanceID]hwir.InstanceID)
	for _, r := range callee.Resources {
		if r == nil {
			continue
		}
		newInst := m.FreshInstance(r.Module, r.Name)
		resourceMap[r.ID] = newInst.ID
	}

	// Step 2: inv_end inherits I's continuations; clear I's continuations.
	invEnd := m.AddEmpty()
	invEnd.Continuations = append([]hwir.Continuation(nil), instr.Continuations...)
	instr.Continuations = nil

	rewrite := func(p hwir.Port) hwir.Port {
		if p.Instance == hwir.Self {
			bound, ok := instr.InvBindings[p.Name]
			diag.Require(ok, "invoke of action %q: unbound callee port %q", instr.InvAction, p.Name)
			return bound
		}
		newID, ok := resourceMap[p.Instance]
		diag.Require(ok, "invoke of action %q: no cloned resource for callee instance %d", instr.InvAction, p.Instance)
		return hwir.Port{Instance: newID, Name: p.Name}
	}

	// Step 3: deep-clone every callee instruction.
	cloneMap := make(map[hwir.InstID]*hwir.Instruction, len(callee.Body))
	clones := make([]*hwir.Instruction, 0, len(callee.Body))
	startClones := make([]*hwir.Instruction, 0)
	originals := make([]*hwir.Instruction, 0, len(callee.Body))

	for _, k := range callee.Body {
		if k.Erased() {
			continue
		}
		var clone *hwir.Instruction
		switch k.Kind {
		case hwir.KindEmpty:
			clone = m.AddEmpty()
		case hwir.KindConnect:
			clone = m.AddConnect(rewrite(k.ConnSrc), rewrite(k.ConnDst))
		case hwir.KindInvoke:
			newOwnerID := resourceMap[k.InvInstance]
			clone = m.AddInvoke(m.Resources[newOwnerID], k.InvAction)
			for name, p := range k.InvBindings {
				m.Bind(clone, name, rewrite(p))
			}
		}
		if k.IsStart {
			startClones = append(startClones, clone)
		}
		cloneMap[k.ID] = clone
		clones = append(clones, clone)
		originals = append(originals, k)
	}

	// Step 4: rewrite continuations for each clone.
	for i, k := range originals {
		clone := clones[i]
		for _, c := range k.Continuations {
			destClone, ok := cloneMap[c.Dest]
			diag.Require(ok, "invoke of action %q: continuation targets un-cloned instruction %d", instr.InvAction, c.Dest)
			m.ContinueTo(clone, rewrite(c.Cond), destClone, c.Delay)
		}
	}

	// Step 5: any clone with no continuations exits through inv_end.
	cond := trueCond(ctx, m)
	for _, clone := range clones {
		if len(clone.Continuations) == 0 {
			m.ContinueTo(clone, cond, invEnd, 0)
		}
	}

	// Step 6: instr activates every clone that was a start-action in the
	// callee, then itself becomes Empty.
	for _, sc := range startClones {
		m.ContinueTo(instr, cond, sc, 0)
	}
	if len(startClones) == 0 {
		m.ContinueTo(instr, cond, invEnd, 0)
	}
	instr.EraseToEmpty()

	slog.Debug("inline: action body cloned", "module", m.Name, "instance", owner.Name, "action", instr.InvAction, "clonedInstructions", len(clones))
}
