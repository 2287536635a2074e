package pass

import (
	"log/slog"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/internal/diag"
)

// chWork is one pending worklist entry during a single channel's
// traversal: v is the instruction whose continuations still need
// rewriting, s is the value port that now replaces the channel's output
// on v's side of the graph.
type chWork struct {
	v *hwir.Instruction
	s hwir.Port
}

// ChannelSynth replaces every channel resource instance in m with
// per-path pipeline registers carrying its value to each consumer,
// respecting the delay on each edge out of the writer (§4.5), then
// re-runs invoke inlining to absorb the register-store invokes this
// pass inserts.
func ChannelSynth(ctx *hwir.Context, m *hwir.Module) {
	for _, ch := range m.Resources {
		if ch == nil || ch.Dead || ch.Module.Kind != hwir.PrimChannel {
			continue
		}
		synthesizeOne(ctx, m, ch)
	}
	Inline(ctx, m)
}

func synthesizeOne(ctx *hwir.Context, m *hwir.Module, ch *hwir.ModuleInstance) {
	chIn := ch.Pt("in")
	chOut := ch.Pt("out")
	width := m.Width(chIn)

	var writer *hwir.Instruction
	var origin hwir.Port
	for _, instr := range m.LiveInstructions() {
		if instr.Kind != hwir.KindConnect || instr.ConnDst != chIn {
			continue
		}
		diag.Require(writer == nil, "channel instance %q has more than one writer", ch.Name)
		writer = instr
		origin = instr.ConnSrc
	}
	diag.Require(writer != nil, "channel instance %q has no writer", ch.Name)

	cond := trueCond(ctx, m)

	visited := make(map[hwir.InstID]bool)
	worklist := []chWork{{v: writer, s: origin}}

	for len(worklist) > 0 {
		w := worklist[0]
		worklist = worklist[1:]
		if visited[w.v.ID] {
			continue
		}

		origConts := append([]hwir.Continuation(nil), w.v.Continuations...)

		reg := m.FreshInstance(ctx.Register(width), "chan_stage_reg")
		store := m.AddInvoke(reg, "st")
		m.Bind(store, "in", w.s)
		trueConstInst := m.FreshInstance(ctx.TrueConst(), "chan_stage_en")
		m.Bind(store, "en", trueConstInst.Pt("out"))
		m.ContinueTo(w.v, cond, store, 0)

		for _, c := range origConts {
			dest := m.Instruction(c.Dest)
			if visited[dest.ID] {
				continue
			}
			switch c.Delay {
			case 1:
				dest.ReplacePort(chOut, reg.Pt("data"))
				worklist = append(worklist, chWork{v: dest, s: reg.Pt("data")})
			case 0:
				dest.ReplacePort(chOut, w.s)
				worklist = append(worklist, chWork{v: dest, s: w.s})
			}
		}
		visited[w.v.ID] = true
	}

	for _, instr := range m.Body {
		if instr.Erased() {
			continue
		}
		if instr.ReferencesPort(chIn) || instr.ReferencesPort(chOut) {
			instr.EraseToEmpty()
		}
	}
	ch.Dead = true

	slog.Debug("channelsynth: channel replaced with pipeline registers", "module", m.Name, "channel", ch.Name, "width", width)
}
