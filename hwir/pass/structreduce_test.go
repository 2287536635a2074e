package pass_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/hwir/pass"
)

var _ = Describe("StructuralReduce", func() {
	var ctx *hwir.Context
	var m *hwir.Module

	BeforeEach(func() {
		ctx = hwir.NewContext()
		m = ctx.AddCombModule("m")
	})

	It("promotes a single-writer insensitive input to a structural connection (scenario 4)", func() {
		c := m.FreshInstance(ctx.Const(16, 7), "seven")
		a := m.FreshInstance(ctx.Add(16), "a")
		connect := m.AddConnect(c.Pt("out"), a.Pt("in0"))

		pass.StructuralReduce(m)

		Expect(connect.Kind).To(Equal(hwir.KindEmpty))

		found := false
		for _, sc := range m.StructuralConnections {
			if sc.Src == c.Pt("out") && sc.Dst == a.Pt("in0") {
				found = true
			}
		}
		Expect(found).To(BeTrue())
	})

	It("leaves a sensitive port's writer alone", func() {
		reg := m.FreshInstance(ctx.Register(8), "r")
		trueC := m.FreshInstance(ctx.TrueConst(), "t")
		connect := m.AddConnect(trueC.Pt("out"), reg.Pt("en"))

		pass.StructuralReduce(m)

		Expect(connect.Kind).To(Equal(hwir.KindConnect))
		Expect(m.StructuralConnections).To(BeEmpty())
	})

	It("leaves a port with more than one writer alone", func() {
		a := m.FreshInstance(ctx.Add(8), "a")
		b := m.FreshInstance(ctx.Add(8), "b")
		adder := m.FreshInstance(ctx.Add(8), "target")
		c1 := m.AddConnect(a.Pt("out"), adder.Pt("in0"))
		c2 := m.AddConnect(b.Pt("out"), adder.Pt("in0"))

		pass.StructuralReduce(m)

		Expect(c1.Kind).To(Equal(hwir.KindConnect))
		Expect(c2.Kind).To(Equal(hwir.KindConnect))
		Expect(m.StructuralConnections).To(BeEmpty())
	})

	It("is idempotent", func() {
		c := m.FreshInstance(ctx.Const(16, 1), "one")
		a := m.FreshInstance(ctx.Add(16), "a")
		m.AddConnect(c.Pt("out"), a.Pt("in0"))

		pass.StructuralReduce(m)
		before := len(m.StructuralConnections)
		pass.StructuralReduce(m)
		Expect(len(m.StructuralConnections)).To(Equal(before))
	})
})
