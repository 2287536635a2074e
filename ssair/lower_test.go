package ssair_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/hwir/pass"
	"github.com/sarchlab/hlsc/ssair"
)

var _ = Describe("LoadYAML", func() {
	It("parses an operation list with an auto-materialized adder", func() {
		prog := ssair.LoadYAML("testdata/adder.yaml")
		Expect(prog.Name).To(Equal("ssa_adder"))
		Expect(prog.Ports).To(HaveLen(3))
		Expect(prog.Ops).To(HaveLen(2))
		Expect(prog.Ops[0].Op).To(Equal("add"))
	})

	It("parses a register resource and an invoke operation", func() {
		prog := ssair.LoadYAML("testdata/pipeline.yaml")
		Expect(prog.Resources).To(ConsistOf(ssair.ResourceSpec{Kind: "register", Width: 8, Name: "r"}))
		Expect(prog.Ops[1].Op).To(Equal("invoke"))
		Expect(prog.Ops[1].Args).To(Equal([]string{"%en", "in"}))
	})
})

var _ = Describe("Lower", func() {
	It("builds a module whose add invoke and mov connect are chained from reset", func() {
		prog := ssair.LoadYAML("testdata/adder.yaml")
		ctx := hwir.NewContext()
		m := ssair.Lower(ctx, prog)

		Expect(m.Width(hwir.SelfPort("out"))).To(Equal(16))

		live := m.LiveInstructions()
		Expect(live).To(HaveLen(2))
		Expect(live[0].IsStart).To(BeTrue())

		pass.Inline(ctx, m)
		for _, instr := range m.LiveInstructions() {
			Expect(instr.Kind).NotTo(Equal(hwir.KindInvoke))
		}
	})

	It("falls back to the context's default width when an operation omits one", func() {
		prog := &ssair.Program{
			Name: "no_width",
			Ports: []ssair.PortSpec{
				{Name: "a", IsInput: true, Width: 8},
				{Name: "b", IsInput: false, Width: 8},
			},
			Ops: []ssair.Operation{
				{ID: 0, Op: "mov", Dst: "%t", Src: []string{"a"}},
				{ID: 1, Op: "mov", Dst: "b", Src: []string{"%t"}},
			},
		}
		ctx := hwir.ContextBuilder{}.WithDefaultWidth(8).Build()
		m := ssair.Lower(ctx, prog)

		live := m.LiveInstructions()
		Expect(live).To(HaveLen(2))
		for _, instr := range live {
			Expect(instr.Kind).To(Equal(hwir.KindConnect))
		}
	})

	It("lowers a register store/read pipeline and survives the full pass pipeline", func() {
		prog := ssair.LoadYAML("testdata/pipeline.yaml")
		ctx := hwir.NewContext()
		m := ssair.Lower(ctx, prog)

		pass.Inline(ctx, m)
		pass.DelayNormalize(ctx, m)
		pass.StructuralReduce(m)
		pass.DCE(ctx, m)

		for _, instr := range m.LiveInstructions() {
			Expect(instr.Kind).NotTo(Equal(hwir.KindInvoke))
			for _, c := range instr.Continuations {
				Expect(c.Delay).To(BeNumerically("<=", 1))
			}
		}
	})
})
