package refsim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/hwir/pass"
	"github.com/sarchlab/hlsc/refsim"
)

func buildAdderWrapper(ctx *hwir.Context) *hwir.Module {
	m := ctx.AddCombModule("add_wrap")
	m.AddPort("in0", hwir.DirIn, 16)
	m.AddPort("in1", hwir.DirIn, 16)
	m.AddPort("out", hwir.DirOut, 16)

	adder := m.FreshInstance(ctx.Add(16), "a")
	invoke := m.AddInvoke(adder, "apply")
	m.Bind(invoke, "in0", hwir.SelfPort("in0"))
	m.Bind(invoke, "in1", hwir.SelfPort("in1"))
	m.Bind(invoke, "out", hwir.SelfPort("out"))
	invoke.IsStart = true

	return m
}

// buildRegisterPipeline is end-to-end scenario 2 from §8: a module that
// registers its input for one cycle before presenting it on out.
func buildRegisterPipeline(ctx *hwir.Context, width int) *hwir.Module {
	m := ctx.AddModule("reg_pipe")
	m.AddPort("in", hwir.DirIn, width)
	m.AddPort("out", hwir.DirOut, width)

	r := m.FreshInstance(ctx.Register(width), "r")
	en := m.FreshInstance(ctx.TrueConst(), "en")

	store := m.AddInvoke(r, "st")
	m.Bind(store, "en", en.Pt("out"))
	m.Bind(store, "in", hwir.SelfPort("in"))
	store.IsStart = true

	read := m.AddConnect(r.Pt("data"), hwir.SelfPort("out"))
	m.ContinueTo(store, en.Pt("out"), read, 1)
	m.ContinueTo(read, en.Pt("out"), store, 0)

	return m
}

var _ = Describe("Unit", func() {
	It("computes a combinational sum on the same cycle it is reset", func() {
		ctx := hwir.NewContext()
		m := buildAdderWrapper(ctx)
		pass.Inline(ctx, m)
		pass.DelayNormalize(ctx, m)
		pass.StructuralReduce(m)
		pass.DCE(ctx, m)

		h := refsim.NewHarness(ctx, m)
		h.Unit.Inputs["in0"] = 7
		h.Unit.Inputs["in1"] = 5
		h.Unit.Rst = true
		out := h.Step()
		Expect(out["out"]).To(Equal(12))
	})

	It("delays a registered value by exactly one cycle", func() {
		ctx := hwir.NewContext()
		m := buildRegisterPipeline(ctx, 8)
		pass.Inline(ctx, m)
		pass.DelayNormalize(ctx, m)
		pass.StructuralReduce(m)
		pass.DCE(ctx, m)

		h := refsim.NewHarness(ctx, m)
		h.Unit.Inputs["in"] = 42
		h.Reset()

		first := h.Step()
		Expect(first["out"]).To(Equal(42))

		h.Unit.Inputs["in"] = 99
		second := h.Step()
		Expect(second["out"]).To(Equal(42))
	})
})
