// Package refsim provides an internal cycle-accurate reference simulator
// over a fully-passed *hwir.Module. It exists only so tests can check an
// end-to-end lowering scenario's behavior without shelling out to a real
// Verilog simulator: Unit interprets the same CAC "happened" semantics
// rtl.Emit compiles to Verilog, directly in Go.
package refsim

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/internal/diag"
)

// Unit is a TickingComponent wrapping one lowered module. NewUnit wires
// it to an engine the same way core.Builder wires a Core, but tests
// typically drive it directly with Tick rather than through a running
// engine, since there is no inter-component traffic to schedule.
type Unit struct {
	*sim.TickingComponent

	ctx *hwir.Context
	m   *hwir.Module

	// Inputs holds the current value of every self input port; callers
	// mutate it directly between Tick calls.
	Inputs map[string]int
	// Outputs holds every self output port's value as of the last Tick.
	Outputs map[string]int
	// Rst, while true, forces every IsStart instruction to fire,
	// mirroring rst in the emitted Verilog; IsStart instructions do not
	// fire while it is false. Port arbitration takes the first driver
	// that happened and checks no mutual exclusion, with or without Rst.
	Rst bool

	regs         map[hwir.InstanceID]int
	lastHappened map[hwir.InstID]bool
	snapshot     map[hwir.Port]int
}

// NewUnit builds a Unit for m, initializing every self input port and
// every register resource to zero.
func NewUnit(name string, engine sim.Engine, freq sim.Freq, ctx *hwir.Context, m *hwir.Module) *Unit {
	u := &Unit{
		ctx:          ctx,
		m:            m,
		Inputs:       make(map[string]int),
		Outputs:      make(map[string]int),
		regs:         make(map[hwir.InstanceID]int),
		lastHappened: make(map[hwir.InstID]bool),
		snapshot:     make(map[hwir.Port]int),
	}
	u.TickingComponent = sim.NewTickingComponent(name, engine, freq, u)

	for _, name := range m.OrderedPortNames() {
		if m.Ports[name].Dir == hwir.DirIn {
			u.Inputs[name] = 0
		}
	}
	for _, r := range m.LiveResources() {
		if r.Module.Kind == hwir.PrimRegister {
			u.regs[r.ID] = 0
		}
	}
	return u
}

func mask(width int) int { return (1 << uint(width)) - 1 }

// Tick evaluates one clock period: it settles the combinational network
// (instruction activation and port arbitration are mutually dependent,
// same as the Verilog they compile to), latches every register
// resource's state, and advances the delay-1 snapshot/last-cycle state
// for the next period. It always reports progress, since a clocked
// design has no notion of going idle on its own.
func (u *Unit) Tick(now sim.VTimeInSec) (madeProgress bool) {
	vals, happened := u.settle()

	for _, name := range u.m.OrderedPortNames() {
		if u.m.Ports[name].Dir == hwir.DirOut {
			u.Outputs[name] = vals[hwir.SelfPort(name)]
		}
	}

	for _, r := range u.m.LiveResources() {
		if r.Module.Kind != hwir.PrimRegister {
			continue
		}
		en := vals[r.Pt("en")]
		if en != 0 {
			width := u.m.Width(r.Pt("data"))
			u.regs[r.ID] = vals[r.Pt("in")] & mask(width)
		}
	}

	u.lastHappened = happened
	for p := range u.snapshot {
		u.snapshot[p] = vals[p]
	}
	for _, instr := range u.m.LiveInstructions() {
		for _, c := range instr.Continuations {
			if c.Delay == 1 {
				u.snapshot[c.Cond] = vals[c.Cond]
			}
		}
	}

	return true
}

// settle relaxes the combinational network to a fixed point: resource
// outputs, port arbitration, and instruction activation are computed
// together so that a combinational (delay-0) continuation whose cond
// port is itself arbitrated by another instruction converges within the
// same cycle, the same guarantee §4.8's always-blocks give the
// synthesized Verilog.
func (u *Unit) settle() (map[hwir.Port]int, map[hwir.InstID]bool) {
	vals := make(map[hwir.Port]int)
	happened := make(map[hwir.InstID]bool)

	for name, v := range u.Inputs {
		vals[hwir.SelfPort(name)] = v
	}

	preds := make(map[hwir.InstID][]*hwir.Instruction)
	for _, instr := range u.m.LiveInstructions() {
		for _, c := range instr.Continuations {
			preds[c.Dest] = append(preds[c.Dest], instr)
		}
	}

	rounds := len(u.m.LiveInstructions()) + 2
	for round := 0; round < rounds; round++ {
		u.evaluateResources(vals)
		u.evaluateArbitration(vals, happened)
		u.evaluateHappened(vals, happened, preds)
	}
	return vals, happened
}

func (u *Unit) evaluateResources(vals map[hwir.Port]int) {
	for _, r := range u.m.LiveResources() {
		switch r.Module.Kind {
		case hwir.PrimConst:
			vals[r.Pt("out")] = r.Module.ConstValue
		case hwir.PrimWire:
			vals[r.Pt("out")] = vals[r.Pt("in")]
		case hwir.PrimNot:
			width := u.m.Width(r.Pt("out"))
			vals[r.Pt("out")] = (^vals[r.Pt("in")]) & mask(width)
		case hwir.PrimAdd:
			width := u.m.Width(r.Pt("out"))
			vals[r.Pt("out")] = (vals[r.Pt("in0")] + vals[r.Pt("in1")]) & mask(width)
		case hwir.PrimComparator:
			vals[r.Pt("out")] = evalComparator(r.Module.ComparatorOp, vals[r.Pt("in0")], vals[r.Pt("in1")])
		case hwir.PrimRegister:
			vals[r.Pt("data")] = u.regs[r.ID]
		case hwir.PrimChannel:
			vals[r.Pt("out")] = vals[r.Pt("in")]
		}
	}
	for _, c := range u.m.StructuralConnections {
		vals[c.Dst] = vals[c.Src]
	}
}

func evalComparator(op hwir.ComparatorOp, a, b int) int {
	var ok bool
	switch op {
	case hwir.CmpEQ:
		ok = a == b
	case hwir.CmpNE:
		ok = a != b
	case hwir.CmpLT:
		ok = a < b
	case hwir.CmpGT:
		ok = a > b
	case hwir.CmpLE:
		ok = a <= b
	case hwir.CmpGE:
		ok = a >= b
	default:
		diag.Fatalf("refsim: unknown comparator op %q", op)
	}
	if ok {
		return 1
	}
	return 0
}

func (u *Unit) evaluateArbitration(vals map[hwir.Port]int, happened map[hwir.InstID]bool) {
	drivers := make(map[hwir.Port][]*hwir.Instruction)
	order := make([]hwir.Port, 0)
	for _, instr := range u.m.LiveInstructions() {
		if instr.Kind != hwir.KindConnect {
			continue
		}
		if _, seen := drivers[instr.ConnDst]; !seen {
			order = append(order, instr.ConnDst)
		}
		drivers[instr.ConnDst] = append(drivers[instr.ConnDst], instr)
	}

	for _, p := range order {
		defaultVal := 0
		if u.m.Sensitive(p) {
			defaultVal = u.m.Default(p)
		}
		val := defaultVal
		for _, d := range drivers[p] {
			if happened[d.ID] {
				val = vals[d.ConnSrc]
				break
			}
		}
		vals[p] = val
	}
}

func (u *Unit) evaluateHappened(vals map[hwir.Port]int, happened map[hwir.InstID]bool, preds map[hwir.InstID][]*hwir.Instruction) {
	for _, instr := range u.m.LiveInstructions() {
		fired := instr.IsStart && u.Rst
		for _, pred := range preds[instr.ID] {
			for _, c := range pred.Continuations {
				if c.Dest != instr.ID {
					continue
				}
				if c.Delay == 0 {
					fired = fired || (happened[pred.ID] && vals[c.Cond] != 0)
				} else {
					fired = fired || (u.lastHappened[pred.ID] && u.snapshot[c.Cond] != 0)
				}
			}
		}
		happened[instr.ID] = fired
	}
}
