// Package ssair implements the SSA ingestion contract: it consumes a
// generic, already-scheduled SSA-style program — one flat list of
// value-defining operations plus a handful of named stateful resources —
// and lowers it straight into a well-formed *hwir.Module using the same
// builder API the textual front end uses. Unlike the textual language,
// a Program carries no labels or control flow of its own: every
// operation fires once per activation in list order, so Lower chains
// them with unconditional, zero-delay continuations.
package ssair

// PortSpec declares one boundary port of the module being lowered.
type PortSpec struct {
	Name    string
	IsInput bool
	Width   int
}

// ResourceSpec declares one named stateful resource (register or
// channel) that operations can invoke actions on.
type ResourceSpec struct {
	Kind  string // "register" or "channel"
	Width int
	Name  string
}

// Operation is one SSA-style value definition or resource action call.
//
// Op selects the behavior:
//   - "const": Dst is defined as the literal integer in Src[0].
//   - "add", "not", "cmp_eq", "cmp_lt", "cmp_gt", "cmp_le", "cmp_ge":
//     Dst is defined as the result of applying the operator to the
//     operands named in Src (width Width).
//   - "mov": the value named by Src[0] is connected into the
//     destination named by Dst, a self port or a new SSA value; a
//     dotted resource-port name is not resolved as a resource input.
//   - "invoke": Instance.Action is called with Args bound positionally
//     to the callee's declared ports, in declaration order; an Arg
//     bound to an output-facing callee port names the destination
//     (self port or a fresh SSA value) that receives the result, an
//     Arg bound to an input-facing callee port is resolved as a value.
type Operation struct {
	ID    int
	Op    string
	Dst   string
	Width int
	Src   []string

	Instance string
	Action   string
	Args     []string
}

// Program is the top-level ingestion unit: one module's worth of ports,
// resources, and a flat operation list.
type Program struct {
	Name      string
	Ports     []PortSpec
	Defaults  map[string]int
	Resources []ResourceSpec
	Ops       []Operation
}
