package frontend_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/hlsc/frontend"
)

var _ = Describe("Tokenize", func() {
	It("recognizes keywords, identifiers, and bracketed bit ranges", func() {
		toks := frontend.Tokenize("module foo(input[15:0] a); endmodule")
		var kinds []frontend.TokenKind
		for _, t := range toks {
			kinds = append(kinds, t.Kind)
		}
		Expect(kinds).To(Equal([]frontend.TokenKind{
			frontend.TokModule, frontend.TokIdent,
			frontend.TokLParen, frontend.TokInput, frontend.TokLBracket,
			frontend.TokInt, frontend.TokColon, frontend.TokInt, frontend.TokRBracket,
			frontend.TokIdent, frontend.TokRParen, frontend.TokSemi,
			frontend.TokEndmodule, frontend.TokEOF,
		}))
	})

	It("tokenizes comparison operators distinctly from assignment", func() {
		toks := frontend.Tokenize("a == b <= c")
		kinds := make([]frontend.TokenKind, 0, len(toks))
		for _, t := range toks {
			kinds = append(kinds, t.Kind)
		}
		Expect(kinds).To(Equal([]frontend.TokenKind{
			frontend.TokIdent, frontend.TokEQ, frontend.TokIdent,
			frontend.TokLE, frontend.TokIdent, frontend.TokEOF,
		}))
	})

	It("strips line comments", func() {
		toks := frontend.Tokenize("a // this is a comment\nb")
		Expect(toks[0].Kind).To(Equal(frontend.TokIdent))
		Expect(toks[1].Kind).To(Equal(frontend.TokIdent))
		Expect(toks[1].Line).To(Equal(2))
	})

	It("fails fatally on an unexpected character", func() {
		Expect(func() { frontend.Tokenize("a $ b") }).To(Panic())
	})
})
