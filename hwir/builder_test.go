package hwir_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
)

var _ = Describe("Builder", func() {
	var ctx *hwir.Context

	BeforeEach(func() {
		ctx = hwir.NewContext()
	})

	Describe("AddConnect", func() {
		It("wires an output-facing source to an input-facing destination", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("in", hwir.DirIn, 8)
			m.AddPort("out", hwir.DirOut, 8)
			instr := m.AddConnect(hwir.SelfPort("in"), hwir.SelfPort("out"))
			Expect(instr.Kind).To(Equal(hwir.KindConnect))
			Expect(instr.ConnSrc).To(Equal(hwir.SelfPort("in")))
			Expect(instr.ConnDst).To(Equal(hwir.SelfPort("out")))
		})

		It("fatals when the source is not output-facing", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("a", hwir.DirOut, 8)
			m.AddPort("b", hwir.DirOut, 8)
			Expect(func() { m.AddConnect(hwir.SelfPort("a"), hwir.SelfPort("b")) }).To(Panic())
		})

		It("fatals on a width mismatch", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("in", hwir.DirIn, 8)
			m.AddPort("out", hwir.DirOut, 4)
			Expect(func() { m.AddConnect(hwir.SelfPort("in"), hwir.SelfPort("out")) }).To(Panic())
		})
	})

	Describe("AddInvoke and Bind", func() {
		It("binds every callee port by name", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("a", hwir.DirIn, 16)
			m.AddPort("b", hwir.DirIn, 16)
			m.AddPort("out", hwir.DirOut, 16)

			adder := m.FreshInstance(ctx.Add(16), "adder")
			instr := m.AddInvoke(adder, "apply")
			m.Bind(instr, "in0", hwir.SelfPort("a"))
			m.Bind(instr, "in1", hwir.SelfPort("b"))
			m.Bind(instr, "out", hwir.SelfPort("out"))

			Expect(instr.InvBindings).To(HaveLen(3))
			Expect(instr.InvBindings["in0"]).To(Equal(hwir.SelfPort("a")))
		})

		It("fatals on an unknown action", func() {
			m := ctx.AddCombModule("m")
			adder := m.FreshInstance(ctx.Add(16), "adder")
			Expect(func() { m.AddInvoke(adder, "frobnicate") }).To(Panic())
		})

		It("fatals binding an unknown callee port", func() {
			m := ctx.AddCombModule("m")
			adder := m.FreshInstance(ctx.Add(16), "adder")
			instr := m.AddInvoke(adder, "apply")
			Expect(func() { m.Bind(instr, "nonexistent", hwir.SelfPort("a")) }).To(Panic())
		})
	})

	Describe("ContinueTo", func() {
		It("appends a continuation with the given cond, dest and delay", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("c", hwir.DirIn, 1)
			a := m.AddEmpty()
			b := m.AddEmpty()
			m.ContinueTo(a, hwir.SelfPort("c"), b, 1)
			Expect(a.Continuations).To(HaveLen(1))
			Expect(a.Continuations[0].Dest).To(Equal(b.ID))
			Expect(a.Continuations[0].Delay).To(Equal(1))
		})

		It("fatals when the condition port is wider than 1 bit", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("c", hwir.DirIn, 4)
			a := m.AddEmpty()
			b := m.AddEmpty()
			Expect(func() { m.ContinueTo(a, hwir.SelfPort("c"), b, 0) }).To(Panic())
		})
	})

	Describe("FreshInstance and FreshSequentialInstance", func() {
		It("mints locally-unique instance names from a shared base", func() {
			m := ctx.AddCombModule("m")
			a := m.FreshInstance(ctx.Wire(4), "w")
			b := m.FreshInstance(ctx.Wire(4), "w")
			Expect(a.Name).NotTo(Equal(b.Name))
		})

		It("wires clk/rst structurally for a sequential sub-instance", func() {
			m := ctx.AddModule("m")
			sub := m.FreshSequentialInstance(ctx.AddModule("sub"), "s")
			found := false
			for _, c := range m.StructuralConnections {
				if c.Dst == sub.Pt("clk") {
					found = true
				}
			}
			Expect(found).To(BeTrue())
		})
	})

	Describe("AddStructuralConnection", func() {
		It("fatals on a direction mismatch", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("a", hwir.DirOut, 4)
			m.AddPort("b", hwir.DirIn, 4)
			Expect(func() { m.AddStructuralConnection(hwir.SelfPort("a"), hwir.SelfPort("b")) }).To(Panic())
		})

		It("records a valid output-to-input wiring", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("in", hwir.DirIn, 4)
			m.AddPort("out", hwir.DirOut, 4)
			m.AddStructuralConnection(hwir.SelfPort("in"), hwir.SelfPort("out"))
			Expect(m.StructuralConnections).To(HaveLen(1))
		})
	})
})
