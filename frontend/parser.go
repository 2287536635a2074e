package frontend

import (
	"github.com/sarchlab/hlsc/internal/diag"
)

// Parser consumes a flat token stream and builds a ModuleDecl parse
// tree for a single module.
type Parser struct {
	toks []Token
	pos  int
}

// NewParser tokenizes src and prepares a Parser positioned at its start.
func NewParser(src string) *Parser {
	return &Parser{toks: Tokenize(src)}
}

func (p *Parser) cur() Token  { return p.toks[p.pos] }
func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k TokenKind) Token {
	t := p.cur()
	diag.Require(t.Kind == k, "line %d: expected token kind %v, got %v (%q)", t.Line, k, t.Kind, t.Text)
	return p.advance()
}

func (p *Parser) at(k TokenKind) bool { return p.cur().Kind == k }

// ParseModule parses exactly one `module ... endmodule` block.
func (p *Parser) ParseModule() *ModuleDecl {
	p.expect(TokModule)
	name := p.expect(TokIdent).Text

	decl := &ModuleDecl{Name: name, Defaults: make(map[string]int)}

	p.expect(TokLParen)
	for !p.at(TokRParen) {
		decl.Ports = append(decl.Ports, p.parsePortDecl())
		if p.at(TokComma) {
			p.advance()
		}
	}
	p.expect(TokRParen)
	p.expect(TokSemi)

	for !p.at(TokEndmodule) {
		p.parseBodyItem(decl)
	}
	p.expect(TokEndmodule)

	return decl
}

func (p *Parser) parsePortDecl() PortDecl {
	pd := PortDecl{}
	switch p.cur().Kind {
	case TokInput:
		pd.IsInput = true
		p.advance()
	case TokOutput:
		pd.IsInput = false
		p.advance()
	default:
		diag.Fatalf("line %d: expected input/output in port list", p.cur().Line)
	}

	pd.MSB, pd.LSB = 0, 0
	if p.at(TokLBracket) {
		p.advance()
		pd.MSB = p.expect(TokInt).Value
		p.expect(TokColon)
		pd.LSB = p.expect(TokInt).Value
		p.expect(TokRBracket)
	}
	pd.Name = p.expect(TokIdent).Text
	return pd
}

func (p *Parser) parseBodyItem(decl *ModuleDecl) {
	switch p.cur().Kind {
	case TokExternal:
		p.advance()
		p.expect(TokSemi)
		decl.External = true
	case TokDefault:
		p.advance()
		port := p.expect(TokIdent).Text
		p.expect(TokAssign)
		val := p.expect(TokInt).Value
		p.expect(TokSemi)
		decl.Defaults[port] = val
	case TokAssignKw:
		p.advance()
		lhs := p.parseExpr()
		p.expect(TokAssign)
		rhs := p.parseExpr()
		p.expect(TokSemi)
		decl.Assigns = append(decl.Assigns, struct{ LHS, RHS Expr }{lhs, rhs})
	case TokSequence:
		decl.Sequences = append(decl.Sequences, p.parseSequence())
	default:
		decl.Resources = append(decl.Resources, p.parseResourceDecl())
	}
}

func (p *Parser) parseResourceDecl() ResourceDecl {
	typeName := p.expect(TokIdent).Text
	name := p.expect(TokIdent).Text
	p.expect(TokSemi)
	return parseResourceType(typeName, name)
}

func (p *Parser) parseSequence() SequenceDecl {
	p.expect(TokSequence)
	p.expect(TokAt)
	p.expect(TokLParen)

	sd := SequenceDecl{}
	switch p.cur().Kind {
	case TokPosedge:
		sd.Posedge = true
		p.advance()
	case TokNegedge:
		sd.Posedge = false
		p.advance()
	default:
		diag.Fatalf("line %d: expected posedge/negedge in sequence header", p.cur().Line)
	}
	sd.ClockSig = p.expect(TokIdent).Text
	p.expect(TokComma)
	p.expect(TokSynch)
	sd.SynchSig = p.expect(TokIdent).Text
	p.expect(TokRParen)

	sd.Stmts = p.parseFlatStmtList()
	return sd
}

// parseFlatStmtList parses a single statement or a begin...end block,
// flattening any nested begin...end into one linear statement list.
func (p *Parser) parseFlatStmtList() []Stmt {
	if p.at(TokBegin) {
		p.advance()
		var out []Stmt
		for !p.at(TokEnd) {
			out = append(out, p.parseFlatStmtList()...)
		}
		p.expect(TokEnd)
		return out
	}
	return []Stmt{p.parseStmt()}
}

func (p *Parser) parseStmt() Stmt {
	s := Stmt{}

	if p.at(TokIdent) && p.toks[p.pos+1].Kind == TokColon {
		s.Label = p.advance().Text
		p.expect(TokColon)
	}

	if p.at(TokGoto) {
		s.Gotos = p.parseGotoList()
		p.expect(TokSemi)
		return s
	}

	if p.at(TokIdent) && p.toks[p.pos+1].Kind == TokDot {
		s.IsInvoke = true
		s.InstanceName = p.advance().Text
		p.expect(TokDot)
		s.Action = p.expect(TokIdent).Text
		p.expect(TokLParen)
		for !p.at(TokRParen) {
			s.Args = append(s.Args, p.parseExpr())
			if p.at(TokComma) {
				p.advance()
			}
		}
		p.expect(TokRParen)
		p.expect(TokSemi)
		return s
	}

	s.IsConnect = true
	s.LHS = p.parseExpr()
	p.expect(TokAssign)
	s.RHS = p.parseExpr()
	p.expect(TokSemi)
	return s
}

func (p *Parser) parseGotoList() []GotoSpec {
	p.expect(TokGoto)
	var out []GotoSpec
	for {
		p.expect(TokLParen)
		cond := p.parseExpr()
		p.expect(TokComma)
		label := p.expect(TokIdent).Text
		p.expect(TokComma)
		delay := p.expect(TokInt).Value
		p.expect(TokRParen)
		out = append(out, GotoSpec{Cond: cond, Label: label, Delay: delay})
		if p.at(TokComma) {
			p.advance()
			continue
		}
		break
	}
	return out
}

// Expression grammar, precedence low to high: {==,<,>,<=,>=} > {*,%,+} > '.'
func (p *Parser) parseExpr() Expr           { return p.parseCompare() }

func (p *Parser) parseCompare() Expr {
	left := p.parseAdditive()
	for {
		var op string
		switch p.cur().Kind {
		case TokEQ:
			op = "=="
		case TokLT:
			op = "<"
		case TokGT:
			op = ">"
		case TokLE:
			op = "<="
		case TokGE:
			op = ">="
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		left = Expr{Op: op, Left: &left, Right: &right}
	}
}

func (p *Parser) parseAdditive() Expr {
	left := p.parseDotted()
	for {
		var op string
		switch p.cur().Kind {
		case TokPlus:
			op = "+"
		case TokStar:
			op = "*"
		case TokPercent:
			op = "%"
		default:
			return left
		}
		p.advance()
		right := p.parseDotted()
		left = Expr{Op: op, Left: &left, Right: &right}
	}
}

func (p *Parser) parseDotted() Expr {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() Expr {
	t := p.cur()
	switch t.Kind {
	case TokInt:
		p.advance()
		return Expr{IsInt: true, Int: t.Value}
	case TokIdent:
		p.advance()
		if p.at(TokDot) {
			p.advance()
			port := p.expect(TokIdent).Text
			return Expr{Instance: t.Text, Port: port}
		}
		return Expr{Ident: t.Text}
	case TokLParen:
		p.advance()
		e := p.parseExpr()
		p.expect(TokRParen)
		return e
	}
	diag.Fatalf("line %d: unexpected token %v in expression", t.Line, t)
	return Expr{}
}
