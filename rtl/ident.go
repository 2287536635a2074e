package rtl

import (
	"fmt"

	"github.com/sarchlab/hlsc/hwir"
)

// portIdent returns the Verilog wire/reg identifier for p within m: a
// self port keeps its declared name (it IS the header port), an
// instance port is the instance's name underscore-joined with the port
// name.
func portIdent(m *hwir.Module, p hwir.Port) string {
	if p.Instance == hwir.Self {
		return p.Name
	}
	inst := m.Resources[p.Instance]
	return fmt.Sprintf("%s_%s", inst.Name, p.Name)
}

func happenedName(id hwir.InstID) string {
	return fmt.Sprintf("happened_%d", id)
}

func lastCycleName(id hwir.InstID) string {
	return fmt.Sprintf("happened_last_cycle_%d", id)
}

func snapshotName(m *hwir.Module, p hwir.Port) string {
	return "snap_" + portIdent(m, p)
}

// widthDecl returns the Verilog bit-range declaration for a width-w
// signal, empty for width 1.
func widthDecl(width int) string {
	if width <= 1 {
		return ""
	}
	return fmt.Sprintf("[%d:0] ", width-1)
}

// headerDirection inverts a declared direction to the Verilog-facing
// keyword used in the emitted module's port list (§4.8): the IR's
// declared direction describes the port from its caller's perspective,
// so the generated file's keyword is the opposite of what a reader
// might expect from the declaration alone.
func headerDirection(d hwir.Direction) string {
	if d == hwir.DirIn {
		return "output"
	}
	return "input"
}
