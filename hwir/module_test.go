package hwir_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
)

var _ = Describe("Context and Module", func() {
	var ctx *hwir.Context

	BeforeEach(func() {
		ctx = hwir.NewContext()
	})

	It("pre-declares clk/rst on a sequential module", func() {
		m := ctx.AddModule("seq")
		Expect(m.Ports).To(HaveKey("clk"))
		Expect(m.Ports).To(HaveKey("rst"))
		Expect(m.Ports["clk"].Dir).To(Equal(hwir.DirIn))
		Expect(m.Width(hwir.SelfPort("clk"))).To(Equal(1))
	})

	It("declares no clk/rst on a combinational module", func() {
		m := ctx.AddCombModule("comb")
		Expect(m.Ports).NotTo(HaveKey("clk"))
		Expect(m.Ports).NotTo(HaveKey("rst"))
	})

	It("fatals on a duplicate module name", func() {
		ctx.AddCombModule("dup")
		Expect(func() { ctx.AddCombModule("dup") }).To(Panic())
	})

	It("fatals on a duplicate port name", func() {
		m := ctx.AddCombModule("m")
		m.AddPort("a", hwir.DirIn, 8)
		Expect(func() { m.AddPort("a", hwir.DirOut, 8) }).To(Panic())
	})

	It("fatals on a sub-width-1 port", func() {
		m := ctx.AddCombModule("m")
		Expect(func() { m.AddPort("a", hwir.DirIn, 0) }).To(Panic())
	})

	It("preserves port declaration order", func() {
		m := ctx.AddCombModule("m")
		m.AddPort("c", hwir.DirIn, 1)
		m.AddPort("a", hwir.DirIn, 1)
		m.AddPort("b", hwir.DirOut, 1)
		Expect(m.OrderedPortNames()).To(Equal([]string{"c", "a", "b"}))
	})

	It("marks a port sensitive once given a reset default", func() {
		m := ctx.AddCombModule("m")
		m.AddPort("en", hwir.DirIn, 1)
		Expect(m.Sensitive(hwir.SelfPort("en"))).To(BeFalse())
		m.SetDefault("en", 0)
		Expect(m.Sensitive(hwir.SelfPort("en"))).To(BeTrue())
		Expect(m.Default(hwir.SelfPort("en"))).To(Equal(0))
	})

	It("registers at most one action per name", func() {
		m := ctx.AddCombModule("m")
		sub1 := ctx.AddCombModule("sub1")
		sub2 := ctx.AddCombModule("sub2")
		m.RegisterAction("do", sub1)
		Expect(func() { m.RegisterAction("do", sub2) }).To(Panic())
	})

	It("rejects an action calling-convention module that itself declares actions", func() {
		m := ctx.AddCombModule("m")
		sub := ctx.AddCombModule("sub")
		nested := ctx.AddCombModule("nested")
		sub.RegisterAction("inner", nested)
		Expect(func() { m.RegisterAction("do", sub) }).To(Panic())
	})

	Describe("Facing", func() {
		It("treats a self input port as output-facing internally", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("in", hwir.DirIn, 4)
			Expect(m.Facing(hwir.SelfPort("in"))).To(Equal(hwir.FacingOutput))
		})

		It("treats a self output port as input-facing internally", func() {
			m := ctx.AddCombModule("m")
			m.AddPort("out", hwir.DirOut, 4)
			Expect(m.Facing(hwir.SelfPort("out"))).To(Equal(hwir.FacingInput))
		})

		It("treats an instance input port as input-facing", func() {
			m := ctx.AddCombModule("m")
			inst := m.FreshInstance(ctx.Add(8), "a")
			Expect(m.Facing(inst.Pt("in0"))).To(Equal(hwir.FacingInput))
		})

		It("treats an instance output port as output-facing", func() {
			m := ctx.AddCombModule("m")
			inst := m.FreshInstance(ctx.Add(8), "a")
			Expect(m.Facing(inst.Pt("out"))).To(Equal(hwir.FacingOutput))
		})
	})

	Describe("LiveResources and LiveInstructions", func() {
		It("omits resources marked dead and instructions erased", func() {
			m := ctx.AddCombModule("m")
			wire := m.FreshInstance(ctx.Wire(4), "w")
			Expect(m.LiveResources()).To(HaveLen(1))

			instr := m.AddEmpty()
			Expect(m.LiveInstructions()).To(HaveLen(1))

			instr.MarkErased()
			Expect(m.LiveInstructions()).To(BeEmpty())

			wire.Dead = true
			Expect(m.LiveResources()).To(BeEmpty())
		})
	})
})
