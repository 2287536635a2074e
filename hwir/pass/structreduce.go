package pass

import "github.com/sarchlab/hlsc/hwir"

// StructuralReduce promotes every insensitive resource input port that
// is written by exactly one live Connect instruction to a structural
// connection, turning that Connect into Empty (§4.6). This removes the
// need for runtime arbitration on ports whose driver is already known
// at compile time.
func StructuralReduce(m *hwir.Module) {
	for _, inst := range m.LiveResources() {
		for _, name := range inst.Module.OrderedPortNames() {
			decl := inst.Module.Ports[name]
			if decl.Dir != hwir.DirIn {
				continue
			}
			p := inst.Pt(name)
			if m.Sensitive(p) {
				continue
			}

			var writer *hwir.Instruction
			count := 0
			for _, instr := range m.LiveInstructions() {
				if instr.Kind == hwir.KindConnect && instr.ConnDst == p {
					writer = instr
					count++
				}
			}
			if count != 1 {
				continue
			}

			source := writer.ConnSrc
			writer.EraseToEmpty()
			m.AddStructuralConnection(source, p)
		}
	}
}
