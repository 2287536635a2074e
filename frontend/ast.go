package frontend

// Expr is a parsed expression: an identifier (bare port name or
// "instance.port"), an integer literal, or a binary operation. The
// parser builds these for every expression position in the grammar
// (§6). lowerValueExpr in lower.go lowers '+' and the comparison
// operators through auto-materialized primitive instances; '*' and '%'
// parse but are rejected at lowering.
type Expr struct {
	// Ident, non-empty for a bare identifier or dotted instance.port
	// reference. Dotted references split Ident into Instance+Port.
	Ident    string
	Instance string
	Port     string

	IsInt bool
	Int   int

	Op          string
	Left, Right *Expr
}

// GotoSpec is one element of a goto statement's list.
type GotoSpec struct {
	Cond  Expr
	Label string
	Delay int
}

// Stmt is one parsed statement in a sequence body.
type Stmt struct {
	Label string

	// At most one of IsConnect / IsInvoke is true; a goto-only statement
	// has neither and lowers to an Empty instruction.
	IsConnect bool
	LHS, RHS  Expr

	IsInvoke     bool
	InstanceName string
	Action       string
	Args         []Expr

	Gotos []GotoSpec
}

// ResourceDecl is a `<kind>_<width>[_<extra>] <name> ;` resource
// declaration inside a module body; comparators are written
// `cmp_<op>_<width>`, with the operator in Extra.
type ResourceDecl struct {
	Kind  string
	Width int
	Extra string
	Name  string
}

// PortDecl is one entry of a module's port list.
type PortDecl struct {
	IsInput bool
	MSB, LSB int
	Name     string
}

// ModuleDecl is the parsed, not-yet-lowered form of one `module ...
// endmodule` block.
type ModuleDecl struct {
	Name       string
	Ports      []PortDecl
	External   bool
	Defaults   map[string]int
	Assigns    []struct{ LHS, RHS Expr }
	Resources  []ResourceDecl
	Sequences  []SequenceDecl
}

// SequenceDecl is one `sequence @(...) ...` block: an edge-triggered
// process whose flattened statement list lowers to CC instructions.
type SequenceDecl struct {
	Posedge  bool
	ClockSig string
	SynchSig string
	Stmts    []Stmt
}
