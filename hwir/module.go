package hwir

import "github.com/sarchlab/hlsc/internal/diag"

// requiref aborts the process (via internal/diag) if cond is false. IR
// construction errors never return a Go error value: spec.md treats every
// violated invariant here as fatal, so the builder API surfaces them this
// way rather than through an (ok, err) return that callers could ignore.
func requiref(cond bool, format string, args ...interface{}) {
	diag.Require(cond, format, args...)
}

// Connection is a structural, compile-time-fixed output->input wiring
// that the RTL emitter turns into a continuous assignment.
type Connection struct {
	Src Port
	Dst Port
}

// ModuleInstance is a concrete resource occurrence inside a Module: an
// immutable back-reference to its source Module plus a locally unique
// name. Dead marks a tombstoned slot left behind by dead-resource
// elimination; the id stays valid but the instance no longer
// participates in emission.
type ModuleInstance struct {
	ID     InstanceID
	Name   string
	Module *Module
	Dead   bool
}

// Pt returns the Port named name on this instance, viewed from the
// enclosing module.
func (inst *ModuleInstance) Pt(name string) Port {
	_, ok := inst.Module.Ports[name]
	requiref(ok, "instance %q (module %q) has no port %q", inst.Name, inst.Module.Name, name)
	return Port{Instance: inst.ID, Name: name}
}

// Module is a named unit owning resource instances, CAC instructions,
// structural connections, actions, and its own port/default declarations.
type Module struct {
	ID        ModuleID
	Name      string
	Primitive bool

	// Kind names which built-in primitive schema this module is, when
	// Primitive is true; zero value for every non-primitive module.
	// Passes that need to recognize a specific primitive (channel
	// synthesis looking for PrimChannel resources) key off this instead
	// of re-deriving it from port shape or instance naming.
	Kind PrimKind

	// ConstValue and ComparatorOp recover the parameters folded into a
	// PrimConst/PrimComparator module's memoization key, for callers
	// (refsim) that need to evaluate the primitive's behavior directly
	// instead of reading it back out of generated Verilog text.
	ConstValue   int
	ComparatorOp ComparatorOp

	Ports    map[string]PortDecl
	portOrder []string

	Resources []*ModuleInstance
	resourceNames map[string]struct{}
	resourceSeq   int

	Actions map[string]*Module

	Body []*Instruction

	StructuralConnections []Connection

	// InstancePrefix is the verbatim instantiation-text prefix used by the
	// emitter for primitive modules, e.g. "add #(.WIDTH(16))".
	InstancePrefix string
}

func newModule(id ModuleID, name string, primitive bool) *Module {
	return &Module{
		ID:            id,
		Name:          name,
		Primitive:     primitive,
		Ports:         make(map[string]PortDecl),
		resourceNames: make(map[string]struct{}),
		Actions:       make(map[string]*Module),
	}
}

// AddPort declares a new named port on m. Fatal on a duplicate name.
func (m *Module) AddPort(name string, dir Direction, width int) {
	requiref(width >= 1, "port %q on module %q must have width >= 1, got %d", name, m.Name, width)
	_, exists := m.Ports[name]
	requiref(!exists, "module %q already declares port %q", m.Name, name)
	m.Ports[name] = PortDecl{Name: name, Dir: dir, Width: width}
	m.portOrder = append(m.portOrder, name)
}

// OrderedPortNames returns port names in declaration order, used by the
// emitter so header/port lists are deterministic.
func (m *Module) OrderedPortNames() []string {
	out := make([]string, len(m.portOrder))
	copy(out, m.portOrder)
	return out
}

// SetDefault installs a reset default on an existing self port, marking
// it sensitive.
func (m *Module) SetDefault(portName string, value int) {
	d, ok := m.Ports[portName]
	requiref(ok, "cannot set default on undeclared port %q of module %q", portName, m.Name)
	d.Sensitive = true
	d.Default = value
	m.Ports[portName] = d
}

// RegisterAction installs sub as the calling-convention module for
// actionName. Invariant 6: exactly one sub-module per action name, and
// the calling-convention module itself must have no nested actions.
func (m *Module) RegisterAction(actionName string, sub *Module) {
	_, exists := m.Actions[actionName]
	requiref(!exists, "module %q already registers action %q", m.Name, actionName)
	requiref(len(sub.Actions) == 0, "calling-convention module %q for action %q must not itself declare actions", sub.Name, actionName)
	m.Actions[actionName] = sub
}

func (m *Module) mustInstance(id InstanceID) *ModuleInstance {
	requiref(int(id) >= 0 && int(id) < len(m.Resources), "module %q has no resource instance %d", m.Name, id)
	inst := m.Resources[id]
	requiref(inst != nil, "module %q has no resource instance %d", m.Name, id)
	return inst
}

// Instruction returns the instruction with id in m's body arena.
func (m *Module) Instruction(id InstID) *Instruction {
	requiref(int(id) >= 0 && int(id) < len(m.Body), "module %q has no instruction %d", m.Name, id)
	return m.Body[id]
}

// LiveInstructions returns every instruction not yet removed by
// dead-instruction elimination.
func (m *Module) LiveInstructions() []*Instruction {
	out := make([]*Instruction, 0, len(m.Body))
	for _, inst := range m.Body {
		if !inst.Erased() {
			out = append(out, inst)
		}
	}
	return out
}

// LiveResources returns every resource instance not yet removed by
// dead-resource elimination.
func (m *Module) LiveResources() []*ModuleInstance {
	out := make([]*ModuleInstance, 0, len(m.Resources))
	for _, inst := range m.Resources {
		if inst != nil && !inst.Dead {
			out = append(out, inst)
		}
	}
	return out
}

// PortReferenced reports whether p is used anywhere in m: a live
// instruction, a structural connection, or (transitively) nowhere else.
func (m *Module) PortReferenced(p Port) bool {
	for _, conn := range m.StructuralConnections {
		if conn.Src == p || conn.Dst == p {
			return true
		}
	}
	for _, inst := range m.LiveInstructions() {
		if inst.ReferencesPort(p) {
			return true
		}
	}
	return false
}

// Context is the process-lifetime registry of named modules. It mints
// primitive built-ins on demand and never destroys a Module once
// created: the arena only ever grows.
type Context struct {
	modules   []*Module
	byName    map[string]ModuleID
	primCache map[primKey]ModuleID

	// Name and DefaultWidth are set by ContextBuilder; they carry no
	// invariant of their own and are consulted only by callers (ssair's
	// width-inference fallback, cmd/hlsc's diagnostics) that opt in.
	Name         string
	DefaultWidth int
}

// NewContext creates an empty Context with DefaultWidth 32.
func NewContext() *Context {
	return &Context{
		byName:       make(map[string]ModuleID),
		primCache:    make(map[primKey]ModuleID),
		DefaultWidth: 32,
	}
}

// Module looks up a module by id.
func (c *Context) Module(id ModuleID) *Module {
	requiref(int(id) >= 0 && int(id) < len(c.modules), "context has no module %d", id)
	return c.modules[id]
}

// Lookup looks up a module by name. Fatal if unknown.
func (c *Context) Lookup(name string) *Module {
	id, ok := c.byName[name]
	requiref(ok, "context has no module named %q", name)
	return c.modules[id]
}

func (c *Context) register(m *Module) {
	_, exists := c.byName[m.Name]
	requiref(!exists, "a module named %q already exists in this context", m.Name)
	m.ID = ModuleID(len(c.modules))
	c.modules = append(c.modules, m)
	c.byName[m.Name] = m.ID
}

// AddModule creates a sequential module pre-declared with clk and rst
// input ports of width 1. Fatal if name already exists.
func (c *Context) AddModule(name string) *Module {
	m := newModule(0, name, false)
	c.register(m)
	m.AddPort("clk", DirIn, 1)
	m.AddPort("rst", DirIn, 1)
	return m
}

// AddCombModule creates a combinational module with no clk/rst ports.
func (c *Context) AddCombModule(name string) *Module {
	m := newModule(0, name, false)
	c.register(m)
	return m
}

// addPrimitive is used by the primitive factory (primitives.go) to
// register a black-box module without going through the public
// AddModule/AddCombModule entry points (primitives do not automatically
// get clk/rst; each primitive schema declares exactly the ports it
// needs).
func (c *Context) addPrimitive(name string) *Module {
	m := newModule(0, name, true)
	c.register(m)
	return m
}
