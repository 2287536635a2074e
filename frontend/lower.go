package frontend

import (
	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/internal/diag"
)

// symtab maps resource names declared in a module body to their
// allocated instance.
type symtab map[string]*hwir.ModuleInstance

// Lower builds an *hwir.Module for decl inside ctx, using ctx.AddModule
// for a sequential module (anything with a sequence block or at least
// one resource) or ctx.AddCombModule otherwise, matching the textual
// language's implicit clk/rst convention (§6).
func Lower(ctx *hwir.Context, decl *ModuleDecl) *hwir.Module {
	var m *hwir.Module
	if len(decl.Sequences) > 0 || len(decl.Resources) > 0 {
		m = ctx.AddModule(decl.Name)
	} else {
		m = ctx.AddCombModule(decl.Name)
	}

	for _, pd := range decl.Ports {
		width := pd.MSB - pd.LSB + 1
		dir := hwir.DirOut
		if pd.IsInput {
			dir = hwir.DirIn
		}
		m.AddPort(pd.Name, dir, width)
	}

	for port, val := range decl.Defaults {
		m.SetDefault(port, val)
	}

	syms := make(symtab)
	for _, rd := range decl.Resources {
		syms[rd.Name] = declareResource(ctx, m, rd)
	}

	for _, a := range decl.Assigns {
		dst := lowerDestExpr(m, syms, a.LHS)
		src, synth := lowerValueExpr(ctx, m, syms, a.RHS, m.Width(dst))
		diag.Require(len(synth) == 0, "module %q: top-level assign right-hand side must be a simple reference", decl.Name)
		m.AddStructuralConnection(src, dst)
	}

	for _, sd := range decl.Sequences {
		lowerSequence(ctx, m, syms, sd)
	}

	return m
}

func declareResource(ctx *hwir.Context, m *hwir.Module, rd ResourceDecl) *hwir.ModuleInstance {
	switch rd.Kind {
	case "wire":
		return m.FreshInstance(ctx.Wire(rd.Width), rd.Name)
	case "const":
		var value int
		for _, c := range rd.Extra {
			value = value*10 + int(c-'0')
		}
		return m.FreshInstance(ctx.Const(rd.Width, value), rd.Name)
	case "not":
		return m.FreshInstance(ctx.Not(rd.Width), rd.Name)
	case "register":
		return m.FreshInstance(ctx.Register(rd.Width), rd.Name)
	case "add":
		return m.FreshInstance(ctx.Add(rd.Width), rd.Name)
	case "cmp":
		return m.FreshInstance(ctx.Comparator(hwir.ComparatorOp(rd.Extra), rd.Width), rd.Name)
	case "channel":
		return m.FreshInstance(ctx.Channel(rd.Width), rd.Name)
	}
	diag.Fatalf("unknown resource kind %q", rd.Kind)
	return nil
}

func lowerDestExpr(m *hwir.Module, syms symtab, e Expr) hwir.Port {
	switch {
	case e.Instance != "":
		inst, ok := syms[e.Instance]
		diag.Require(ok, "reference to undeclared resource %q", e.Instance)
		return inst.Pt(e.Port)
	case e.Ident != "":
		return hwir.SelfPort(e.Ident)
	}
	diag.Fatalf("expected a port reference, got a compound expression")
	return hwir.Port{}
}

// lowerValueExpr resolves e to a readable (output-facing) port, widening
// literal immediates to widthHint, auto-materializing a primitive
// instance and an invoke (appended to synth, in evaluation order) for
// each binary operator encountered.
func lowerValueExpr(ctx *hwir.Context, m *hwir.Module, syms symtab, e Expr, widthHint int) (hwir.Port, []*hwir.Instruction) {
	switch {
	case e.IsInt:
		inst := m.FreshInstance(ctx.Const(widthHint, e.Int), "imm")
		return inst.Pt("out"), nil
	case e.Instance != "":
		inst, ok := syms[e.Instance]
		diag.Require(ok, "reference to undeclared resource %q", e.Instance)
		return inst.Pt(e.Port), nil
	case e.Ident != "":
		return hwir.SelfPort(e.Ident), nil
	}

	diag.Require(e.Op != "", "malformed expression")
	lp, lsyn := lowerValueExpr(ctx, m, syms, *e.Left, widthHint)
	rp, rsyn := lowerValueExpr(ctx, m, syms, *e.Right, widthHint)

	var prim *hwir.Module
	outWidth := widthHint
	switch e.Op {
	case "+":
		prim = ctx.Add(widthHint)
	case "==":
		prim, outWidth = ctx.Comparator(hwir.CmpEQ, widthHint), 1
	case "<":
		prim, outWidth = ctx.Comparator(hwir.CmpLT, widthHint), 1
	case ">":
		prim, outWidth = ctx.Comparator(hwir.CmpGT, widthHint), 1
	case "<=":
		prim, outWidth = ctx.Comparator(hwir.CmpLE, widthHint), 1
	case ">=":
		prim, outWidth = ctx.Comparator(hwir.CmpGE, widthHint), 1
	default:
		diag.Fatalf("operator %q has no backing primitive", e.Op)
	}

	inst := m.FreshInstance(prim, "expr")
	tmp := m.FreshInstance(ctx.Wire(outWidth), "expr_out")
	invoke := m.AddInvoke(inst, "apply")
	m.Bind(invoke, "in0", lp)
	m.Bind(invoke, "in1", rp)
	m.Bind(invoke, "out", tmp.Pt("in"))

	synth := append(lsyn, rsyn...)
	synth = append(synth, invoke)
	return tmp.Pt("out"), synth
}

func lowerSequence(ctx *hwir.Context, m *hwir.Module, syms symtab, sd SequenceDecl) {
	var built []*hwir.Instruction
	var mainIdx []int
	labelIndex := make(map[string]int)

	chainSynth := func(synth []*hwir.Instruction, main *hwir.Instruction) {
		trueConst := moduleTrueConst(ctx, m)
		prev := (*hwir.Instruction)(nil)
		for _, s := range synth {
			built = append(built, s)
			if prev != nil {
				m.ContinueTo(prev, trueConst, s, 0)
			}
			prev = s
		}
		idx := len(built)
		built = append(built, main)
		if prev != nil {
			m.ContinueTo(prev, trueConst, main, 0)
		}
		return0 := idx
		mainIdx = append(mainIdx, return0)
	}

	for _, st := range sd.Stmts {
		var main *hwir.Instruction
		var synth []*hwir.Instruction

		switch {
		case st.IsInvoke:
			inst, ok := syms[st.InstanceName]
			diag.Require(ok, "invoke of undeclared resource %q", st.InstanceName)
			callee := inst.Module.Actions[st.Action]
			diag.Require(callee != nil, "instance %q has no action %q", st.InstanceName, st.Action)
			names := callee.OrderedPortNames()
			diag.Require(len(names) == len(st.Args), "action %q on %q expects %d arguments, got %d", st.Action, st.InstanceName, len(names), len(st.Args))

			invoke := m.AddInvoke(inst, st.Action)
			for i, name := range names {
				decl := callee.Ports[name]
				if decl.Dir == hwir.DirIn {
					p, s := lowerValueExpr(ctx, m, syms, st.Args[i], decl.Width)
					synth = append(synth, s...)
					m.Bind(invoke, name, p)
				} else {
					m.Bind(invoke, name, lowerDestExpr(m, syms, st.Args[i]))
				}
			}
			main = invoke
		case st.IsConnect:
			dst := lowerDestExpr(m, syms, st.LHS)
			src, s := lowerValueExpr(ctx, m, syms, st.RHS, m.Width(dst))
			synth = s
			main = m.AddConnect(src, dst)
		default:
			main = m.AddEmpty()
		}

		chainSynth(synth, main)
		if st.Label != "" {
			labelIndex[st.Label] = mainIdx[len(mainIdx)-1]
		}
	}

	if len(built) > 0 {
		built[0].IsStart = true
	}

	trueConst := moduleTrueConst(ctx, m)
	for i, st := range sd.Stmts {
		mainInstr := built[mainIdx[i]]
		if len(st.Gotos) > 0 {
			for _, g := range st.Gotos {
				diag.Require(g.Cond.Op == "", "goto condition %q: compound expressions are not supported, use a named resource's output", g.Label)
				condPort, synth := lowerValueExpr(ctx, m, syms, g.Cond, 1)
				diag.Require(len(synth) == 0, "goto condition must be a simple port reference")
				destIdx, ok := labelIndex[g.Label]
				diag.Require(ok, "goto references undefined label %q", g.Label)
				m.ContinueTo(mainInstr, condPort, built[destIdx], g.Delay)
			}
			continue
		}
		if i+1 < len(mainIdx) {
			m.ContinueTo(mainInstr, trueConst, built[mainIdx[i+1]], 0)
		}
	}
}

func moduleTrueConst(ctx *hwir.Context, m *hwir.Module) hwir.Port {
	tc := ctx.TrueConst()
	for _, r := range m.Resources {
		if r != nil && !r.Dead && r.Module == tc {
			return r.Pt("out")
		}
	}
	inst := m.FreshInstance(tc, "true_const")
	return inst.Pt("out")
}
