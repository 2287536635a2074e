package pass_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/hwir"
	"github.com/sarchlab/hlsc/hwir/pass"
)

func allDelaysWithin01(m *hwir.Module) bool {
	for _, instr := range m.LiveInstructions() {
		for _, c := range instr.Continuations {
			if c.Delay != 0 && c.Delay != 1 {
				return false
			}
		}
	}
	return true
}

var _ = Describe("DelayNormalize", func() {
	var ctx *hwir.Context
	var m *hwir.Module

	BeforeEach(func() {
		ctx = hwir.NewContext()
		m = ctx.AddCombModule("m")
		m.AddPort("c", hwir.DirIn, 1)
	})

	It("leaves delay-0 and delay-1 continuations untouched", func() {
		a := m.AddEmpty()
		b := m.AddEmpty()
		d := m.AddEmpty()
		m.ContinueTo(a, hwir.SelfPort("c"), b, 0)
		m.ContinueTo(b, hwir.SelfPort("c"), d, 1)

		pass.DelayNormalize(ctx, m)

		Expect(a.Continuations[0].Delay).To(Equal(0))
		Expect(a.Continuations[0].Dest).To(Equal(b.ID))
		Expect(b.Continuations[0].Delay).To(Equal(1))
		Expect(b.Continuations[0].Dest).To(Equal(d.ID))
	})

	It("splits a delay-3 continuation into a chain of delay-1 hops (scenario 5)", func() {
		src := m.AddEmpty()
		dest := m.AddEmpty()
		m.ContinueTo(src, hwir.SelfPort("c"), dest, 3)

		before := len(m.LiveInstructions())
		pass.DelayNormalize(ctx, m)
		after := len(m.LiveInstructions())

		Expect(after - before).To(Equal(2), "a delay-3 continuation should insert exactly two intermediate Empty instructions")
		Expect(allDelaysWithin01(m)).To(BeTrue())

		// Walk the chain from src and confirm it reaches dest in exactly
		// three delay-1 hops, each gated (directly or transitively) by the
		// original condition.
		hops := 0
		cur := src
		for {
			Expect(cur.Continuations).To(HaveLen(1))
			c := cur.Continuations[0]
			Expect(c.Delay).To(Equal(1))
			hops++
			if c.Dest == dest.ID {
				break
			}
			cur = m.Instruction(c.Dest)
			Expect(hops).To(BeNumerically("<", 10), "chain should terminate at dest")
		}
		Expect(hops).To(Equal(3))
	})

	It("is idempotent once every delay is within {0,1}", func() {
		src := m.AddEmpty()
		dest := m.AddEmpty()
		m.ContinueTo(src, hwir.SelfPort("c"), dest, 3)
		pass.DelayNormalize(ctx, m)
		before := len(m.LiveInstructions())
		pass.DelayNormalize(ctx, m)
		Expect(len(m.LiveInstructions())).To(Equal(before))
	})
})
