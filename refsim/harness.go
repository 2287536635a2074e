package refsim

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/hlsc/hwir"
)

// Harness drives a Unit directly, one clock period at a time, the way a
// unit test exercises a TickingComponent without running it through a
// live engine: there is no inter-component traffic here for the engine
// to schedule, only this module's own clocked state.
type Harness struct {
	Unit *Unit
	freq sim.Freq
	now  sim.VTimeInSec
}

// NewHarness builds a Harness around a fresh Unit for m.
func NewHarness(ctx *hwir.Context, m *hwir.Module) *Harness {
	engine := sim.NewSerialEngine()
	freq := 1 * sim.GHz
	return &Harness{
		Unit: NewUnit(m.Name, engine, freq, ctx, m),
		freq: freq,
	}
}

// Reset asserts rst for one clock period, then deasserts it, mirroring
// the single-cycle reset pulse every IsStart instruction is primed by.
func (h *Harness) Reset() {
	h.Unit.Rst = true
	h.Step()
	h.Unit.Rst = false
}

// Step advances the simulation by exactly one clock period and returns
// the self output port values observed at its end.
func (h *Harness) Step() map[string]int {
	h.Unit.Tick(h.now)
	h.now += sim.VTimeInSec(1 / float64(h.freq))

	out := make(map[string]int, len(h.Unit.Outputs))
	for k, v := range h.Unit.Outputs {
		out[k] = v
	}
	return out
}

// Run steps the simulation for the given number of clock periods,
// returning one output snapshot per period in order.
func (h *Harness) Run(cycles int) []map[string]int {
	trace := make([]map[string]int, cycles)
	for i := 0; i < cycles; i++ {
		trace[i] = h.Step()
	}
	return trace
}
