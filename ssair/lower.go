package ssair

import (
	"strconv"
	"strings"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/internal/diag"
)

// Lower builds an *hwir.Module for prog inside ctx. Every operation
// contributes at most one CAC instruction, chained in list order by an
// unconditional delay-0 continuation; "const" operations contribute no
// instruction at all, since a literal needs no activation of its own.
func Lower(ctx *hwir.Context, prog *Program) *hwir.Module {
	m := ctx.AddModule(prog.Name)

	for _, p := range prog.Ports {
		dir := hwir.DirOut
		if p.IsInput {
			dir = hwir.DirIn
		}
		m.AddPort(p.Name, dir, p.Width)
	}
	for port, val := range prog.Defaults {
		m.SetDefault(port, val)
	}

	syms := make(map[string]hwir.Port)
	resources := make(map[string]*hwir.ModuleInstance)
	for _, rs := range prog.Resources {
		resources[rs.Name] = declareResource(ctx, m, rs)
	}

	resolve := func(ref string, width int) hwir.Port {
		if v, err := strconv.Atoi(ref); err == nil {
			inst := m.FreshInstance(ctx.Const(width, v), "imm")
			return inst.Pt("out")
		}
		if instName, portName, ok := strings.Cut(ref, "."); ok {
			inst, found := resources[instName]
			diag.Require(found, "ssair: reference to undeclared resource %q", instName)
			return inst.Pt(portName)
		}
		if _, ok := m.Ports[ref]; ok {
			return hwir.SelfPort(ref)
		}
		p, ok := syms[ref]
		diag.Require(ok, "ssair: reference to undefined value %q", ref)
		return p
	}

	resolveDest := func(ref string, width int) hwir.Port {
		if _, ok := m.Ports[ref]; ok {
			return hwir.SelfPort(ref)
		}
		tmp := m.FreshInstance(ctx.Wire(width), "val")
		syms[ref] = tmp.Pt("out")
		return tmp.Pt("in")
	}

	var built []*hwir.Instruction
	trueConst := func() hwir.Port {
		tc := ctx.TrueConst()
		for _, r := range m.Resources {
			if r != nil && !r.Dead && r.Module == tc {
				return r.Pt("out")
			}
		}
		return m.FreshInstance(tc, "true_const").Pt("out")
	}()

	for _, op := range prog.Ops {
		var instr *hwir.Instruction

		if op.Width == 0 {
			op.Width = ctx.DefaultWidth
		}

		switch op.Op {
		case "const":
			diag.Require(len(op.Src) == 1, "ssair: op %d (const): expected exactly one operand", op.ID)
			v, err := strconv.Atoi(op.Src[0])
			diag.Require(err == nil, "ssair: op %d (const): %q is not an integer literal", op.ID, op.Src[0])
			inst := m.FreshInstance(ctx.Const(op.Width, v), "k")
			syms[op.Dst] = inst.Pt("out")
			continue
		case "add", "not", "cmp_eq", "cmp_lt", "cmp_gt", "cmp_le", "cmp_ge":
			instr = lowerArith(ctx, m, op, resolve, resolveDest)
		case "mov":
			diag.Require(len(op.Src) == 1, "ssair: op %d (mov): expected exactly one operand", op.ID)
			dst := resolveDest(op.Dst, op.Width)
			src := resolve(op.Src[0], m.Width(dst))
			instr = m.AddConnect(src, dst)
		case "invoke":
			instr = lowerInvoke(m, op, resources, resolve, resolveDest)
		default:
			diag.Fatalf("ssair: op %d: unknown opcode %q", op.ID, op.Op)
		}

		if len(built) > 0 {
			m.ContinueTo(built[len(built)-1], trueConst, instr, 0)
		}
		built = append(built, instr)
	}

	if len(built) > 0 {
		built[0].IsStart = true
	}
	return m
}

func declareResource(ctx *hwir.Context, m *hwir.Module, rs ResourceSpec) *hwir.ModuleInstance {
	switch rs.Kind {
	case "register":
		return m.FreshInstance(ctx.Register(rs.Width), rs.Name)
	case "channel":
		return m.FreshInstance(ctx.Channel(rs.Width), rs.Name)
	}
	diag.Fatalf("ssair: unknown resource kind %q for %q", rs.Kind, rs.Name)
	return nil
}

func lowerArith(ctx *hwir.Context, m *hwir.Module, op Operation,
	resolve func(string, int) hwir.Port, resolveDest func(string, int) hwir.Port) *hwir.Instruction {

	var prim *hwir.Module
	outWidth := op.Width
	action := "apply"
	switch op.Op {
	case "add":
		prim = ctx.Add(op.Width)
	case "not":
		prim = ctx.Not(op.Width)
	case "cmp_eq":
		prim, outWidth = ctx.Comparator(hwir.CmpEQ, op.Width), 1
	case "cmp_lt":
		prim, outWidth = ctx.Comparator(hwir.CmpLT, op.Width), 1
	case "cmp_gt":
		prim, outWidth = ctx.Comparator(hwir.CmpGT, op.Width), 1
	case "cmp_le":
		prim, outWidth = ctx.Comparator(hwir.CmpLE, op.Width), 1
	case "cmp_ge":
		prim, outWidth = ctx.Comparator(hwir.CmpGE, op.Width), 1
	}

	inst := m.FreshInstance(prim, "op")
	invoke := m.AddInvoke(inst, action)
	dst := resolveDest(op.Dst, outWidth)

	if op.Op == "not" {
		diag.Require(len(op.Src) == 1, "ssair: op %d (%s): expected exactly one operand", op.ID, op.Op)
		m.Bind(invoke, "in", resolve(op.Src[0], op.Width))
	} else {
		diag.Require(len(op.Src) == 2, "ssair: op %d (%s): expected exactly two operands", op.ID, op.Op)
		m.Bind(invoke, "in0", resolve(op.Src[0], op.Width))
		m.Bind(invoke, "in1", resolve(op.Src[1], op.Width))
	}
	m.Bind(invoke, "out", dst)
	return invoke
}

func lowerInvoke(m *hwir.Module, op Operation, resources map[string]*hwir.ModuleInstance,
	resolve func(string, int) hwir.Port, resolveDest func(string, int) hwir.Port) *hwir.Instruction {

	inst, ok := resources[op.Instance]
	diag.Require(ok, "ssair: op %d: invoke on undeclared resource %q", op.ID, op.Instance)
	callee := inst.Module.Actions[op.Action]
	diag.Require(callee != nil, "ssair: op %d: resource %q has no action %q", op.ID, op.Instance, op.Action)

	names := callee.OrderedPortNames()
	diag.Require(len(names) == len(op.Args), "ssair: op %d: action %q on %q expects %d arguments, got %d",
		op.ID, op.Action, op.Instance, len(names), len(op.Args))

	invoke := m.AddInvoke(inst, op.Action)
	for i, name := range names {
		decl := callee.Ports[name]
		if decl.Dir == hwir.DirIn {
			m.Bind(invoke, name, resolve(op.Args[i], decl.Width))
		} else {
			m.Bind(invoke, name, resolveDest(op.Args[i], decl.Width))
		}
	}
	return invoke
}
