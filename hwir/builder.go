package hwir

import "fmt"

// AddEmpty appends a pure-control Empty instruction and returns it.
func (m *Module) AddEmpty() *Instruction {
	inst := &Instruction{ID: InstID(len(m.Body)), Kind: KindEmpty}
	m.Body = append(m.Body, inst)
	return inst
}

// AddStartConnect appends a Connect instruction marked as a start-action
// (it participates in reset-phase activation).
func (m *Module) AddStartConnect(a, b Port) *Instruction {
	inst := m.AddConnect(a, b)
	inst.IsStart = true
	return inst
}

// AddConnect appends a Connect instruction wiring a (output-facing) to b
// (input-facing). Fatal on direction or width mismatch (invariant 1).
func (m *Module) AddConnect(a, b Port) *Instruction {
	requiref(m.Facing(a) == FacingOutput, "connect source %+v is not output-facing in module %q", a, m.Name)
	requiref(m.Facing(b) == FacingInput, "connect destination %+v is not input-facing in module %q", b, m.Name)
	requiref(m.Width(a) == m.Width(b), "connect width mismatch in module %q: %+v is %d bits, %+v is %d bits",
		m.Name, a, m.Width(a), b, m.Width(b))

	inst := &Instruction{
		ID:      InstID(len(m.Body)),
		Kind:    KindConnect,
		ConnSrc: a,
		ConnDst: b,
	}
	m.Body = append(m.Body, inst)
	return inst
}

// AddInvoke appends an Invoke instruction naming the action actionName
// declared on the source module of inst, with no bindings yet. Use Bind
// to populate the binding map.
func (m *Module) AddInvoke(inst *ModuleInstance, actionName string) *Instruction {
	owner := m.mustInstance(inst.ID)
	_, ok := owner.Module.Actions[actionName]
	requiref(ok, "module %q has no action %q (instance %q)", owner.Module.Name, actionName, owner.Name)

	instr := &Instruction{
		ID:          InstID(len(m.Body)),
		Kind:        KindInvoke,
		InvInstance: inst.ID,
		InvAction:   actionName,
		InvBindings: make(map[string]Port),
	}
	m.Body = append(m.Body, instr)
	return instr
}

// calleeModule returns the action submodule that an Invoke instruction
// targets.
func (m *Module) calleeModule(instr *Instruction) *Module {
	requiref(instr.Kind == KindInvoke, "instruction %d is not an invoke", instr.ID)
	inst := m.mustInstance(instr.InvInstance)
	return inst.Module.Actions[instr.InvAction]
}

// Bind records that the callee's port name is driven by/reads from port
// p, visible in the caller m. Fatal if the callee does not declare name.
func (m *Module) Bind(instr *Instruction, name string, p Port) {
	callee := m.calleeModule(instr)
	_, ok := callee.Ports[name]
	requiref(ok, "action %q (instance %q) has no port %q to bind", instr.InvAction, m.Resources[instr.InvInstance].Name, name)
	instr.InvBindings[name] = p
}

// ContinueTo appends a continuation from src to dst, gated by cond (a
// width-1 port) and firing delay cycles later. delay may be >= 0 before
// delay normalization; after it, only 0 or 1 are legal (invariant 3).
func (m *Module) ContinueTo(src *Instruction, cond Port, dst *Instruction, delay int) {
	requiref(m.Width(cond) == 1, "continuation condition %+v must have width 1, got %d", cond, m.Width(cond))
	requiref(delay >= 0, "continuation delay must be >= 0, got %d", delay)
	src.Continuations = append(src.Continuations, Continuation{Cond: cond, Dest: dst.ID, Delay: delay})
}

// FreshInstance creates a new resource instance of module src inside m,
// with a locally-unique name derived from baseName.
func (m *Module) FreshInstance(src *Module, baseName string) *ModuleInstance {
	name := m.uniqueName(baseName)
	inst := &ModuleInstance{
		ID:     InstanceID(len(m.Resources)),
		Name:   name,
		Module: src,
	}
	m.Resources = append(m.Resources, inst)
	m.resourceNames[name] = struct{}{}
	return inst
}

// FreshSequentialInstance is FreshInstance plus two structural
// connections wiring the new instance's clk/rst to m's own clk/rst.
func (m *Module) FreshSequentialInstance(src *Module, baseName string) *ModuleInstance {
	inst := m.FreshInstance(src, baseName)
	m.AddStructuralConnection(SelfPort("clk"), inst.Pt("clk"))
	m.AddStructuralConnection(SelfPort("rst"), inst.Pt("rst"))
	return inst
}

func (m *Module) uniqueName(base string) string {
	for {
		name := fmt.Sprintf("%s_%d", base, m.resourceSeq)
		m.resourceSeq++
		if _, exists := m.resourceNames[name]; !exists {
			return name
		}
	}
}

// AddStructuralConnection records a compile-time-fixed output->input
// wiring. Fatal on direction or width mismatch (invariant 5).
func (m *Module) AddStructuralConnection(out, in Port) {
	requiref(m.Facing(out) == FacingOutput, "structural connection source %+v is not output-facing in module %q", out, m.Name)
	requiref(m.Facing(in) == FacingInput, "structural connection destination %+v is not input-facing in module %q", in, m.Name)
	requiref(m.Width(out) == m.Width(in), "structural connection width mismatch in module %q: %+v is %d bits, %+v is %d bits",
		m.Name, out, m.Width(out), in, m.Width(in))
	m.StructuralConnections = append(m.StructuralConnections, Connection{Src: out, Dst: in})
}
