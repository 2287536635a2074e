package hwir

// Direction is the direction a port is declared with on its owning
// Module.
type Direction int

const (
	// DirIn marks a port that receives a value from the port's owner's
	// caller.
	DirIn Direction = iota
	// DirOut marks a port that the owner drives for its caller to read.
	DirOut
)

func (d Direction) String() string {
	if d == DirIn {
		return "input"
	}
	return "output"
}

// Facing classifies a Port from the point of view of the enclosing
// Module's own instruction graph: an output-facing port may be the
// source of a Connect or the value side of a Continuation's condition;
// an input-facing port may only be a Connect destination.
type Facing int

const (
	FacingOutput Facing = iota
	FacingInput
)

// PortDecl is the declaration of a single named port on a Module: its
// direction, bit width, and whether the declaring Module registers a
// reset default for it (which makes it sensitive).
type PortDecl struct {
	Name      string
	Dir       Direction
	Width     int
	Sensitive bool
	Default   int
}

// Port is a reference to a declared port, either on the enclosing
// Module itself (Instance == Self) or on one of its resource instances.
// Two ports are equal iff they name the same (Instance, Name) pair.
type Port struct {
	Instance InstanceID
	Name     string
}

// SelfPort builds a Port naming one of the enclosing Module's own ports.
func SelfPort(name string) Port {
	return Port{Instance: Self, Name: name}
}

// decl resolves p to its PortDecl within m. Fatal if the port or
// instance does not exist.
func (m *Module) decl(p Port) PortDecl {
	if p.Instance == Self {
		d, ok := m.Ports[p.Name]
		requiref(ok, "module %q has no port %q", m.Name, p.Name)
		return d
	}

	inst := m.mustInstance(p.Instance)
	d, ok := inst.Module.Ports[p.Name]
	requiref(ok, "instance %q (module %q) has no port %q", inst.Name, inst.Module.Name, p.Name)
	return d
}

// Width returns the bit width of p as declared.
func (m *Module) Width(p Port) int {
	return m.decl(p).Width
}

// Sensitive reports whether p's declaring module registers a reset
// default for it.
func (m *Module) Sensitive(p Port) bool {
	return m.decl(p).Sensitive
}

// Default returns p's reset default value (meaningful only when
// Sensitive(p) is true; zero otherwise).
func (m *Module) Default(p Port) int {
	return m.decl(p).Default
}

// Dir returns p's declared direction.
func (m *Module) Dir(p Port) Direction {
	return m.decl(p).Dir
}

// Facing classifies p for connect-legality checks within m. A self port
// flips its declared direction: an input-declared self port is the
// value flowing into the module from its caller, so internally it acts
// as a source (output-facing); an output-declared self port is driven
// by internal logic, so internally it is a sink (input-facing). An
// instance port keeps its declared direction: an input-declared
// instance port is driven by the enclosing module's logic (input-facing)
// and an output-declared instance port is a source (output-facing).
func (m *Module) Facing(p Port) Facing {
	d := m.decl(p)
	isSelf := p.Instance == Self
	isInput := d.Dir == DirIn

	switch {
	case isSelf && isInput:
		return FacingOutput
	case isSelf && !isInput:
		return FacingInput
	case !isSelf && isInput:
		return FacingInput
	default:
		return FacingOutput
	}
}
