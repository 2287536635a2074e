// Package rtl lowers a fully-passed hwir.Module into synthesizable
// Verilog text (§4.8): one file, one module, emitted in a fixed section
// order so output is reproducible across runs.
package rtl

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/internal/diag"
)

type edge struct {
	src   hwir.InstID
	cond  hwir.Port
	delay int
}

// Emit writes m's Verilog translation to sink. An invoke surviving to
// emission and an unreachable instruction are fatal via internal/diag,
// matching §7's "no error is written to the emitted file" rule. A port
// with no driving Connect gets no arbitration block; a sensitive port
// without a driver is not rejected.
func Emit(ctx *hwir.Context, m *hwir.Module, sink io.Writer) {
	w := &writer{w: sink}

	for _, instr := range m.LiveInstructions() {
		diag.Require(instr.Kind != hwir.KindInvoke, "module %q: instruction %d is still an invoke at emission", m.Name, instr.ID)
	}

	preds := predecessors(m)
	lastCycleSources := instructionsWithDelayOneSuccessor(m)
	snapshotPorts := condPortsOnDelayOneEdges(m)

	emitHeader(w, m)
	emitResourceDeclarations(w, m)
	emitStructuralAssigns(w, m)
	emitFlagDeclarations(w, m, lastCycleSources)
	emitSnapshotRegisters(w, m, snapshotPorts)
	emitPortArbitration(w, m)
	emitFlagComputation(w, m, preds)
	emitLastCycleRegisters(w, m, lastCycleSources)
	emitFooter(w, m)

	slog.Debug("rtl: module emitted", "module", m.Name, "instructions", len(m.LiveInstructions()), "resources", len(m.LiveResources()))
}

// writer wraps an io.Writer so every emission helper can fmt.Fprintf
// without individually checking the write error; a failed write aborts
// the process like any other emission error.
type writer struct{ w io.Writer }

func (w *writer) printf(format string, args ...interface{}) {
	_, err := fmt.Fprintf(w.w, format, args...)
	diag.Require(err == nil, "rtl: write to sink failed: %v", err)
}

func emitHeader(w *writer, m *hwir.Module) {
	names := m.OrderedPortNames()
	w.printf("module %s (\n", m.Name)
	for i, name := range names {
		decl := m.Ports[name]
		comma := ","
		if i == len(names)-1 {
			comma = ""
		}
		w.printf("    %s %s%s%s\n", headerDirection(decl.Dir), widthDecl(decl.Width), name, comma)
	}
	w.printf(");\n\n")
}

func emitResourceDeclarations(w *writer, m *hwir.Module) {
	structuralDst := make(map[hwir.Port]bool)
	for _, c := range m.StructuralConnections {
		structuralDst[c.Dst] = true
	}

	for _, inst := range m.LiveResources() {
		for _, name := range inst.Module.OrderedPortNames() {
			decl := inst.Module.Ports[name]
			ident := portIdent(m, inst.Pt(name))
			kind := "reg"
			if decl.Dir == hwir.DirOut || structuralDst[inst.Pt(name)] {
				kind = "wire"
			}
			w.printf("%s %s%s;\n", kind, widthDecl(decl.Width), ident)
		}
	}
	w.printf("\n")

	for _, inst := range m.LiveResources() {
		conns := make([]string, 0, len(inst.Module.Ports))
		for _, name := range inst.Module.OrderedPortNames() {
			conns = append(conns, fmt.Sprintf(".%s(%s)", name, portIdent(m, inst.Pt(name))))
		}
		if inst.Module.Kind == hwir.PrimRegister {
			conns = append(conns, ".clk(clk)", ".rst(rst)")
		}
		w.printf("%s %s (%s);\n", inst.Module.InstancePrefix, inst.Name, joinComma(conns))
	}
	w.printf("\n")
}

func emitStructuralAssigns(w *writer, m *hwir.Module) {
	for _, c := range m.StructuralConnections {
		w.printf("assign %s = %s;\n", portIdent(m, c.Dst), portIdent(m, c.Src))
	}
	w.printf("\n")
}

func emitFlagDeclarations(w *writer, m *hwir.Module, lastCycleSources map[hwir.InstID]bool) {
	for _, instr := range m.LiveInstructions() {
		w.printf("wire %s;\n", happenedName(instr.ID))
		if lastCycleSources[instr.ID] {
			w.printf("reg %s;\n", lastCycleName(instr.ID))
		}
	}
	w.printf("\n")
}

func emitSnapshotRegisters(w *writer, m *hwir.Module, ports []hwir.Port) {
	for _, p := range ports {
		w.printf("reg %s;\n", snapshotName(m, p))
	}
	w.printf("\n")
	for _, p := range ports {
		w.printf("always @(posedge clk) %s <= %s;\n", snapshotName(m, p), portIdent(m, p))
	}
	w.printf("\n")
}

// emitPortArbitration emits, for every input-facing port driven by one
// or more live Connect instructions, the pairwise mutual-exclusion
// assertions and the combinational driver-selection block (§4.8).
func emitPortArbitration(w *writer, m *hwir.Module) {
	drivers := make(map[hwir.Port][]*hwir.Instruction)
	order := []hwir.Port{}
	for _, instr := range m.LiveInstructions() {
		if instr.Kind != hwir.KindConnect {
			continue
		}
		if _, seen := drivers[instr.ConnDst]; !seen {
			order = append(order, instr.ConnDst)
		}
		drivers[instr.ConnDst] = append(drivers[instr.ConnDst], instr)
	}

	for _, p := range order {
		ds := drivers[p]
		ident := portIdent(m, p)

		for i := 0; i < len(ds); i++ {
			for j := i + 1; j < len(ds); j++ {
				hi, hj := happenedName(ds[i].ID), happenedName(ds[j].ID)
				w.printf("always @(*) if (!rst) if (%s && %s) $fatal(1, \"mutually exclusive drivers of %s violated\");\n", hi, hj, ident)
				w.printf("always @(*) if (rst) if (%s && %s) $fatal(1, \"mutually exclusive drivers of %s violated (reset)\");\n", hi, hj, ident)
			}
		}

		defaultVal := 0
		if m.Sensitive(p) {
			defaultVal = m.Default(p)
		}

		w.printf("always @(*) begin\n")
		w.printf("    if (rst) begin\n")
		emitDriverChain(w, m, ds, ident, defaultVal, "        ")
		w.printf("    end else begin\n")
		emitDriverChain(w, m, ds, ident, defaultVal, "        ")
		w.printf("    end\n")
		w.printf("end\n\n")
	}
}

func emitDriverChain(w *writer, m *hwir.Module, drivers []*hwir.Instruction, dstIdent string, defaultVal int, indent string) {
	for i, d := range drivers {
		kw := "if"
		if i > 0 {
			kw = "else if"
		}
		w.printf("%s%s (%s) %s = %s;\n", indent, kw, happenedName(d.ID), dstIdent, portIdent(m, d.ConnSrc))
	}
	prefix := "if"
	if len(drivers) > 0 {
		prefix = "else"
		w.printf("%s%s %s = %d;\n", indent, prefix, dstIdent, defaultVal)
		return
	}
	w.printf("%s%s (1'b1) %s = %d;\n", indent, prefix, dstIdent, defaultVal)
}

func emitFlagComputation(w *writer, m *hwir.Module, preds map[hwir.InstID][]edge) {
	for _, instr := range m.LiveInstructions() {
		terms := make([]string, 0)
		if instr.IsStart {
			terms = append(terms, "rst")
		}
		for _, e := range preds[instr.ID] {
			if e.delay == 0 {
				terms = append(terms, fmt.Sprintf("(%s && %s)", happenedName(e.src), portIdent(m, e.cond)))
			} else {
				terms = append(terms, fmt.Sprintf("(%s && %s)", lastCycleName(e.src), snapshotName(m, e.cond)))
			}
		}
		diag.Require(len(terms) > 0, "module %q: instruction %d is unreachable and has no reset-phase predicate", m.Name, instr.ID)
		w.printf("assign %s = %s;\n", happenedName(instr.ID), joinOr(terms))
	}
	w.printf("\n")
}

func emitLastCycleRegisters(w *writer, m *hwir.Module, lastCycleSources map[hwir.InstID]bool) {
	ids := make([]int, 0, len(lastCycleSources))
	for id := range lastCycleSources {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		iid := hwir.InstID(id)
		w.printf("always @(posedge clk) %s <= %s;\n", lastCycleName(iid), happenedName(iid))
	}
	w.printf("\n")
}

func emitFooter(w *writer, m *hwir.Module) {
	w.printf("endmodule\n")
}

func predecessors(m *hwir.Module) map[hwir.InstID][]edge {
	out := make(map[hwir.InstID][]edge)
	for _, instr := range m.LiveInstructions() {
		for _, c := range instr.Continuations {
			out[c.Dest] = append(out[c.Dest], edge{src: instr.ID, cond: c.Cond, delay: c.Delay})
		}
	}
	return out
}

func instructionsWithDelayOneSuccessor(m *hwir.Module) map[hwir.InstID]bool {
	out := make(map[hwir.InstID]bool)
	for _, instr := range m.LiveInstructions() {
		for _, c := range instr.Continuations {
			if c.Delay == 1 {
				out[instr.ID] = true
			}
		}
	}
	return out
}

func condPortsOnDelayOneEdges(m *hwir.Module) []hwir.Port {
	seen := make(map[hwir.Port]bool)
	out := make([]hwir.Port, 0)
	for _, instr := range m.LiveInstructions() {
		for _, c := range instr.Continuations {
			if c.Delay == 1 && !seen[c.Cond] {
				seen[c.Cond] = true
				out = append(out, c.Cond)
			}
		}
	}
	return out
}

func joinComma(items []string) string {
	return join(items, ", ")
}

func joinOr(items []string) string {
	return join(items, " || ")
}

func join(items []string, sep string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += sep
		}
		out += s
	}
	return out
}
