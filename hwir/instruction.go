package hwir

// InstKind tags the variant of an Instruction. Prefer this sum type over
// a base-class hierarchy or a single mutable "type" field: erasing an
// instruction ("convert to Empty") replaces the whole variant rather than
// mutating a type tag out from under live data.
type InstKind int

const (
	KindEmpty InstKind = iota
	KindConnect
	KindInvoke
)

// Continuation is an outgoing edge (cond, dest, delay): once the owning
// instruction "happened" at some cycle, if cond == 1 then dest "happens"
// delay cycles later. Delay 0 is combinational chaining in the same
// cycle; delay 1 is sequential. Arbitrary delay >= 0 is only legal before
// delay normalization has run.
type Continuation struct {
	Cond  Port
	Dest  InstID
	Delay int
}

// Instruction is one CC node: Empty, Connect, or Invoke, each carrying an
// ordered list of continuations.
type Instruction struct {
	ID      InstID
	Kind    InstKind
	IsStart bool

	Continuations []Continuation

	// Connect fields, valid when Kind == KindConnect.
	ConnSrc Port
	ConnDst Port

	// Invoke fields, valid when Kind == KindInvoke.
	InvInstance InstanceID
	InvAction   string
	InvBindings map[string]Port

	// erased is set once dead-instruction elimination deletes this slot;
	// kept distinct from Kind so "this slot used to be something" stays
	// inspectable by tests and by the emitter's reset-set computation.
	erased bool
}

// EraseToEmpty tombstones inst in place: its variant becomes Empty and
// all variant-specific fields are cleared, but its ID and continuations
// are left alone (callers that want continuations gone clear them too).
// This is how resource erasure and structural reduction "empty" an
// instruction without invalidating other instructions' references to it.
func (inst *Instruction) EraseToEmpty() {
	inst.Kind = KindEmpty
	inst.ConnSrc = Port{}
	inst.ConnDst = Port{}
	inst.InvInstance = 0
	inst.InvAction = ""
	inst.InvBindings = nil
}

// MarkErased flags inst as removed by dead-instruction elimination.
func (inst *Instruction) MarkErased() { inst.erased = true }

// Erased reports whether dead-instruction elimination removed inst.
func (inst *Instruction) Erased() bool { return inst.erased }

// ReplacePort rewrites every occurrence of old (as a Connect endpoint, an
// invoke binding value, or a continuation condition) to new. Used by
// channel synthesis to redirect a channel's readers to its resolved
// origin port or register data port, and by invoke inlining's port
// rewrite step.
func (inst *Instruction) ReplacePort(old, new Port) {
	if inst.ConnSrc == old {
		inst.ConnSrc = new
	}
	if inst.ConnDst == old {
		inst.ConnDst = new
	}
	for name, p := range inst.InvBindings {
		if p == old {
			inst.InvBindings[name] = new
		}
	}
	for i := range inst.Continuations {
		if inst.Continuations[i].Cond == old {
			inst.Continuations[i].Cond = new
		}
	}
}

// ReferencesPort reports whether inst reads or writes port p anywhere:
// as a Connect endpoint, an invoke binding, or a continuation condition.
func (inst *Instruction) ReferencesPort(p Port) bool {
	if inst.ConnSrc == p || inst.ConnDst == p {
		return true
	}
	for _, bp := range inst.InvBindings {
		if bp == p {
			return true
		}
	}
	for _, c := range inst.Continuations {
		if c.Cond == p {
			return true
		}
	}
	return false
}
