package hwir_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
)

var _ = Describe("Instruction", func() {
	var ctx *hwir.Context
	var m *hwir.Module

	BeforeEach(func() {
		ctx = hwir.NewContext()
		m = ctx.AddCombModule("m")
		m.AddPort("in", hwir.DirIn, 8)
		m.AddPort("out", hwir.DirOut, 8)
		m.AddPort("c", hwir.DirIn, 1)
	})

	Describe("EraseToEmpty", func() {
		It("clears variant-specific fields but keeps the id and continuations", func() {
			instr := m.AddConnect(hwir.SelfPort("in"), hwir.SelfPort("out"))
			sink := m.AddEmpty()
			m.ContinueTo(instr, hwir.SelfPort("c"), sink, 0)

			id := instr.ID
			conts := instr.Continuations
			instr.EraseToEmpty()

			Expect(instr.Kind).To(Equal(hwir.KindEmpty))
			Expect(instr.ConnSrc).To(Equal(hwir.Port{}))
			Expect(instr.ConnDst).To(Equal(hwir.Port{}))
			Expect(instr.ID).To(Equal(id))
			Expect(instr.Continuations).To(Equal(conts))
		})
	})

	Describe("MarkErased and Erased", func() {
		It("reports erased only after MarkErased", func() {
			instr := m.AddEmpty()
			Expect(instr.Erased()).To(BeFalse())
			instr.MarkErased()
			Expect(instr.Erased()).To(BeTrue())
		})
	})

	Describe("ReplacePort", func() {
		It("rewrites a Connect endpoint", func() {
			instr := m.AddConnect(hwir.SelfPort("in"), hwir.SelfPort("out"))
			m.AddPort("alt", hwir.DirOut, 8)
			instr.ReplacePort(hwir.SelfPort("out"), hwir.SelfPort("alt"))
			Expect(instr.ConnDst).To(Equal(hwir.SelfPort("alt")))
		})

		It("rewrites an invoke binding", func() {
			adder := m.FreshInstance(ctx.Add(8), "a")
			instr := m.AddInvoke(adder, "apply")
			m.Bind(instr, "in0", hwir.SelfPort("in"))
			m.AddPort("in2", hwir.DirIn, 8)
			instr.ReplacePort(hwir.SelfPort("in"), hwir.SelfPort("in2"))
			Expect(instr.InvBindings["in0"]).To(Equal(hwir.SelfPort("in2")))
		})

		It("rewrites a continuation condition", func() {
			instr := m.AddEmpty()
			sink := m.AddEmpty()
			m.ContinueTo(instr, hwir.SelfPort("c"), sink, 0)
			m.AddPort("c2", hwir.DirIn, 1)
			instr.ReplacePort(hwir.SelfPort("c"), hwir.SelfPort("c2"))
			Expect(instr.Continuations[0].Cond).To(Equal(hwir.SelfPort("c2")))
		})
	})

	Describe("ReferencesPort", func() {
		It("finds a port used as a Connect source or destination", func() {
			instr := m.AddConnect(hwir.SelfPort("in"), hwir.SelfPort("out"))
			Expect(instr.ReferencesPort(hwir.SelfPort("in"))).To(BeTrue())
			Expect(instr.ReferencesPort(hwir.SelfPort("out"))).To(BeTrue())
			Expect(instr.ReferencesPort(hwir.SelfPort("c"))).To(BeFalse())
		})

		It("finds a port used as a continuation condition", func() {
			instr := m.AddEmpty()
			sink := m.AddEmpty()
			m.ContinueTo(instr, hwir.SelfPort("c"), sink, 0)
			Expect(instr.ReferencesPort(hwir.SelfPort("c"))).To(BeTrue())
		})
	})
})
