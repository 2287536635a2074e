package hwir

import "fmt"

// PrimKind names a built-in black-box primitive schema (§4.1). Built-in
// primitive libraries (add, cmp, reg, wire, const, ram) are opaque from
// the compiler's point of view: they are declared by name and port list
// only, and their actual behavior is supplied by the downstream Verilog
// simulator's builtins.v.
type PrimKind string

const (
	PrimWire       PrimKind = "wire"
	PrimConst      PrimKind = "const"
	PrimNot        PrimKind = "not"
	PrimRegister   PrimKind = "register"
	PrimAdd        PrimKind = "add"
	PrimComparator PrimKind = "comparator"
	PrimChannel    PrimKind = "channel"
)

// ComparatorOp names a comparator predicate (§4.1).
type ComparatorOp string

const (
	CmpEQ ComparatorOp = "eq"
	CmpNE ComparatorOp = "ne"
	CmpLT ComparatorOp = "lt"
	CmpLE ComparatorOp = "le"
	CmpGT ComparatorOp = "gt"
	CmpGE ComparatorOp = "ge"
)

type primKey struct {
	kind  PrimKind
	width int
	value int
	op    ComparatorOp
}

func (c *Context) cached(key primKey, build func() *Module) *Module {
	if id, ok := c.primCache[key]; ok {
		return c.modules[id]
	}
	m := build()
	c.primCache[key] = m.ID
	return m
}

// Wire returns the memoized width-w identity passthrough primitive: an
// input port "in" and an output port "out".
func (c *Context) Wire(width int) *Module {
	key := primKey{kind: PrimWire, width: width}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("wire_%d", width))
		m.Kind = PrimWire
		m.AddPort("in", DirIn, width)
		m.AddPort("out", DirOut, width)
		m.InstancePrefix = fmt.Sprintf("wire #(.WIDTH(%d))", width)
		return m
	})
}

// Const returns the memoized primitive that always drives value on its
// width-w output port "out".
func (c *Context) Const(width, value int) *Module {
	key := primKey{kind: PrimConst, width: width, value: value}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("const_%d_%d", width, value))
		m.Kind = PrimConst
		m.ConstValue = value
		m.AddPort("out", DirOut, width)
		m.InstancePrefix = fmt.Sprintf("constant #(.WIDTH(%d), .VALUE(%d))", width, value)
		return m
	})
}

// TrueConst is the width-1, value-1 constant used as the unconditional
// continuation guard throughout the passes (e.g. invoke inlining's
// single-exit wiring, dead-instruction bypass).
func (c *Context) TrueConst() *Module {
	return c.Const(1, 1)
}

// Not returns the memoized bitwise-complement primitive with an "apply"
// action.
func (c *Context) Not(width int) *Module {
	key := primKey{kind: PrimNot, width: width}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("not_%d", width))
		m.Kind = PrimNot
		m.AddPort("in", DirIn, width)
		m.AddPort("out", DirOut, width)
		m.InstancePrefix = fmt.Sprintf("not_gate #(.WIDTH(%d))", width)
		m.RegisterAction("apply", c.applyAction(width, width, width, "not"))
		return m
	})
}

// Register returns the memoized edge-triggered latch primitive: en/in
// inputs, a data output, en defaults to 0, and an "st" action that
// sequences en/in to set the register (completing one cycle later).
func (c *Context) Register(width int) *Module {
	key := primKey{kind: PrimRegister, width: width}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("register_%d", width))
		m.Kind = PrimRegister
		m.AddPort("en", DirIn, 1)
		m.AddPort("in", DirIn, width)
		m.AddPort("data", DirOut, width)
		m.SetDefault("en", 0)
		m.InstancePrefix = fmt.Sprintf("register #(.WIDTH(%d))", width)
		st := c.addPrimitive(fmt.Sprintf("register_%d_st", width))
		st.AddPort("en", DirIn, 1)
		st.AddPort("in", DirIn, width)
		m.RegisterAction("st", st)
		return m
	})
}

// Add returns the memoized integer-addition primitive with an "apply"
// action.
func (c *Context) Add(width int) *Module {
	key := primKey{kind: PrimAdd, width: width}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("add_%d", width))
		m.Kind = PrimAdd
		m.AddPort("in0", DirIn, width)
		m.AddPort("in1", DirIn, width)
		m.AddPort("out", DirOut, width)
		m.InstancePrefix = fmt.Sprintf("add #(.WIDTH(%d))", width)
		m.RegisterAction("apply", c.applyAction(width, width, width, "add"))
		return m
	})
}

// Comparator returns the memoized width-w predicate primitive for op,
// with a 1-bit output and an "apply" action.
func (c *Context) Comparator(op ComparatorOp, width int) *Module {
	key := primKey{kind: PrimComparator, width: width, op: op}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("cmp_%s_%d", op, width))
		m.Kind = PrimComparator
		m.ComparatorOp = op
		m.AddPort("in0", DirIn, width)
		m.AddPort("in1", DirIn, width)
		m.AddPort("out", DirOut, 1)
		m.InstancePrefix = fmt.Sprintf("comparator_%s #(.WIDTH(%d))", op, width)
		m.RegisterAction("apply", c.applyAction(width, width, 1, fmt.Sprintf("cmp_%s", op)))
		return m
	})
}

// Channel returns the memoized logical point-to-point unbuffered signal
// primitive: a width-w "in" and "out" with no temporal semantics of its
// own. Channel synthesis (hwir/pass) replaces every instance of it with
// per-path pipeline registers (named with a "chan_stage_" prefix, never
// "pipe_channel_") before the RTL emitter ever sees the module. Callers
// conventionally name Channel instances themselves with a "pipe_channel_"
// base so the post-synthesis testable property ("no resource with
// name-prefix pipe_channel_ remains", spec.md §8) is checkable by name.
func (c *Context) Channel(width int) *Module {
	key := primKey{kind: PrimChannel, width: width}
	return c.cached(key, func() *Module {
		m := c.addPrimitive(fmt.Sprintf("channel_%d", width))
		m.Kind = PrimChannel
		m.AddPort("in", DirIn, width)
		m.AddPort("out", DirOut, width)
		m.InstancePrefix = "" // erased before emission; never instantiated
		return m
	})
}

// applyAction builds the small calling-convention submodule shared by
// the two-input primitives (add, comparator) and the one-input ones
// (not): it only exists so Bind/AddInvoke can validate port names, since
// primitives have no body of their own to invoke into.
func (c *Context) applyAction(in0Width, in1Width, outWidth int, label string) *Module {
	sub := c.addPrimitive(fmt.Sprintf("%s_apply_%d_%d_%d_%d", label, in0Width, in1Width, outWidth, len(c.modules)))
	if in1Width > 0 && label != "not" {
		sub.AddPort("in0", DirIn, in0Width)
		sub.AddPort("in1", DirIn, in1Width)
	} else {
		sub.AddPort("in", DirIn, in0Width)
	}
	sub.AddPort("out", DirOut, outWidth)
	return sub
}
