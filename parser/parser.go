// Package parser implements the recursive-descent, single-token
// lookahead parser that turns a token stream into an *ast.Program.
package parser

import (
	"github.com/anemo-lang/anemo/ast"
	"github.com/anemo-lang/anemo/diag"
	"github.com/anemo-lang/anemo/token"
)

// tokenSource is satisfied by *lexer.Lexer; the parser doesn't import
// the lexer package directly so it can be driven by a pre-tokenized
// slice in tests.
type tokenSource interface {
	Next() (token.Token, error)
}

// Parser consumes a token stream and builds a syntax tree.
type Parser struct {
	file string
	src  tokenSource

	cur  token.Token
	prev token.Token
}

// New builds a Parser reading tokens from src.
func New(file string, src tokenSource) *Parser {
	return &Parser{file: file, src: src}
}

// Parse runs the parser to completion and returns the program, or the
// first diagnostic encountered.
func Parse(file string, src tokenSource) (prog *ast.Program, err error) {
	p := New(file, src)
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) advance() error {
	tok, err := p.src.Next()
	if err != nil {
		return err
	}
	p.prev = p.cur
	p.cur = tok
	return nil
}

func (p *Parser) check(k token.Kind) bool {
	return p.cur.Kind == k
}

func (p *Parser) match(k token.Kind) (bool, error) {
	if !p.check(k) {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) expect(k token.Kind, message string) (token.Token, error) {
	if p.check(k) {
		t := p.cur
		if err := p.advance(); err != nil {
			return token.Token{}, err
		}
		return t, nil
	}
	t := p.cur
	return token.Token{}, diag.New(p.file, t.Pos.Line, t.Pos.Col, "%s (found %s)", message, t.Kind)
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return diag.New(p.file, p.cur.Pos.Line, p.cur.Pos.Col, format, args...)
}

func (p *Parser) skipNewlines() error {
	for {
		matched, err := p.match(token.NEWLINE)
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}
	}
}

func (p *Parser) expectLineEnd() error {
	matched, err := p.match(token.NEWLINE)
	if err != nil {
		return err
	}
	if matched {
		return p.skipNewlines()
	}
	if p.check(token.EOF) || p.check(token.CLOSE) || p.check(token.ELSE) {
		return nil
	}
	return p.errorf("expected newline (found %s)", p.cur.Kind)
}

func (p *Parser) parseType() (ast.Type, error) {
	t := p.cur
	var kind ast.Type
	switch {
	case p.check(token.TYPE_INT):
		kind = ast.Int
	case p.check(token.TYPE_BOOL):
		kind = ast.Bool
	case p.check(token.TYPE_TEXT):
		kind = ast.Text
	case p.check(token.TYPE_UNIT):
		kind = ast.Unit
	default:
		return ast.Invalid, diag.New(p.file, t.Pos.Line, t.Pos.Col, "expected type keyword ember|pulse|text|mist (found %s)", t.Kind)
	}
	if err := p.advance(); err != nil {
		return ast.Invalid, err
	}
	return kind, nil
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}

	prog := &ast.Program{}
	for !p.check(token.EOF) {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}

	if len(prog.Functions) == 0 {
		return nil, p.errorf("program must declare at least one glyph")
	}
	return prog, nil
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	kw, err := p.expect(token.PROC, "expected glyph")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT, "expected function name after glyph")
	if err != nil {
		return nil, err
	}

	fn := &ast.Function{Name: name.Lexeme, Pos: kw.Pos}

	if _, err := p.expect(token.LBRACKET, "expected '[' to start parameter list"); err != nil {
		return nil, err
	}
	if !p.check(token.RBRACKET) {
		for {
			pn, err := p.expect(token.IDENT, "expected parameter name")
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON, "expected ':' after parameter name"); err != nil {
				return nil, err
			}
			pt, err := p.parseType()
			if err != nil {
				return nil, err
			}
			fn.Params = append(fn.Params, ast.Param{Name: pn.Lexeme, Type: pt, Pos: pn.Pos})

			matched, err := p.match(token.COMMA)
			if err != nil {
				return nil, err
			}
			if !matched {
				break
			}
		}
	}
	if _, err := p.expect(token.RBRACKET, "expected ']' to close parameter list"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.YIELDS, "expected yields after parameter list"); err != nil {
		return nil, err
	}
	rt, err := p.parseType()
	if err != nil {
		return nil, err
	}
	fn.ReturnType = rt

	if _, err := p.expect(token.NEWLINE, "expected newline after function signature"); err != nil {
		return nil, err
	}
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}

	body, err := p.parseBlockUntil(token.CLOSE, token.CLOSE)
	if err != nil {
		return nil, err
	}
	fn.Body = body

	if _, err := p.expect(token.CLOSE, "expected seal to close function"); err != nil {
		return nil, err
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}

	return fn, nil
}

func (p *Parser) parseBlockUntil(endA, endB token.Kind) (*ast.Block, error) {
	block := &ast.Block{}
	for !p.check(token.EOF) && !p.check(endA) && !p.check(endB) {
		matched, err := p.match(token.NEWLINE)
		if err != nil {
			return nil, err
		}
		if matched {
			continue
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	t := p.cur

	switch {
	case p.check(token.LET_IMM):
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT, "expected identifier after bind")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN, "expected '=' in bind statement"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.BindStmt{Name: name.Lexeme, Value: value, Pos: t.Pos}, nil

	case p.check(token.LET_MUT):
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT, "expected identifier after morph")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN, "expected '=' in morph statement"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.MorphStmt{Name: name.Lexeme, Value: value, Pos: t.Pos}, nil

	case p.check(token.ASSIGN_K):
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT, "expected identifier after shift")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.ASSIGN, "expected '=' in shift statement"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.ShiftStmt{Name: name.Lexeme, Value: value, Pos: t.Pos}, nil

	case p.check(token.IF):
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.NEWLINE, "expected newline after fork condition"); err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		thenBlock, err := p.parseBlockUntil(token.ELSE, token.CLOSE)
		if err != nil {
			return nil, err
		}
		stmt := &ast.ForkStmt{Cond: cond, Then: thenBlock, Pos: t.Pos}
		matched, err := p.match(token.ELSE)
		if err != nil {
			return nil, err
		}
		if matched {
			if _, err := p.expect(token.NEWLINE, "expected newline after otherwise"); err != nil {
				return nil, err
			}
			if err := p.skipNewlines(); err != nil {
				return nil, err
			}
			elseBlock, err := p.parseBlockUntil(token.CLOSE, token.CLOSE)
			if err != nil {
				return nil, err
			}
			stmt.Else = elseBlock
		}
		if _, err := p.expect(token.CLOSE, "expected seal to close fork"); err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return stmt, nil

	case p.check(token.LOOP):
		if err := p.advance(); err != nil {
			return nil, err
		}
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.NEWLINE, "expected newline after cycle condition"); err != nil {
			return nil, err
		}
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		body, err := p.parseBlockUntil(token.CLOSE, token.CLOSE)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.CLOSE, "expected seal to close cycle"); err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.CycleStmt{Cond: cond, Body: body, Pos: t.Pos}, nil

	case p.check(token.BREAK):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Pos: t.Pos}, nil

	case p.check(token.CONTINUE):
		if err := p.advance(); err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Pos: t.Pos}, nil

	case p.check(token.RETURN):
		if err := p.advance(); err != nil {
			return nil, err
		}
		var value ast.Expr
		if !p.check(token.NEWLINE) && !p.check(token.CLOSE) && !p.check(token.ELSE) && !p.check(token.EOF) {
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			value = v
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Value: value, Pos: t.Pos}, nil

	case p.check(token.PRINT):
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expectLineEnd(); err != nil {
			return nil, err
		}
		return &ast.PrintStmt{Value: value, Pos: t.Pos}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expectLineEnd(); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Value: expr, Pos: expr.Position()}, nil
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		matched, err := p.match(token.OR)
		if err != nil {
			return nil, err
		}
		if !matched {
			return left, nil
		}
		op := p.prev
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Pos, ast.Or, left, right)
	}
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for {
		matched, err := p.match(token.AND)
		if err != nil {
			return nil, err
		}
		if !matched {
			return left, nil
		}
		op := p.prev
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Pos, ast.And, left, right)
	}
}

func (p *Parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.check(token.EQ) || p.check(token.NE) {
		op := p.cur
		var bop ast.BinaryOp
		if op.Kind == token.EQ {
			bop = ast.Eq
		} else {
			bop = ast.Ne
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Pos, bop, left, right)
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.check(token.LT) || p.check(token.GT) || p.check(token.LE) || p.check(token.GE) {
		op := p.cur
		var bop ast.BinaryOp
		switch op.Kind {
		case token.LT:
			bop = ast.Lt
		case token.GT:
			bop = ast.Gt
		case token.LE:
			bop = ast.Le
		case token.GE:
			bop = ast.Ge
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Pos, bop, left, right)
	}
	return left, nil
}

func (p *Parser) parseAdd() (ast.Expr, error) {
	left, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := p.cur
		bop := ast.Add
		if op.Kind == token.MINUS {
			bop = ast.Sub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Pos, bop, left, right)
	}
	return left, nil
}

func (p *Parser) parseMul() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.check(token.STAR) || p.check(token.SLASH) {
		op := p.cur
		bop := ast.Mul
		if op.Kind == token.SLASH {
			bop = ast.Div
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryExpr(op.Pos, bop, left, right)
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.check(token.MINUS) {
		op := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(op.Pos, ast.Neg, operand), nil
	}
	if p.check(token.NOT) {
		op := p.cur
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryExpr(op.Pos, ast.Flip, operand), nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	t := p.cur

	switch {
	case p.check(token.INT):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewIntLit(t.Pos, t.IntValue), nil
	case p.check(token.STRING):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewStringLit(t.Pos, t.Lexeme), nil
	case p.check(token.TRUE):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewBoolLit(t.Pos, true), nil
	case p.check(token.FALSE):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewBoolLit(t.Pos, false), nil
	case p.check(token.CALL):
		return p.parseCall()
	case p.check(token.IDENT):
		if err := p.advance(); err != nil {
			return nil, err
		}
		return ast.NewVarExpr(t.Pos, t.Lexeme), nil
	}

	return nil, diag.New(p.file, t.Pos.Line, t.Pos.Col, "expected expression (found %s)", t.Kind)
}

func (p *Parser) parseCall() (ast.Expr, error) {
	kw, err := p.expect(token.CALL, "expected invoke")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT, "expected function name after invoke")
	if err != nil {
		return nil, err
	}

	call := ast.NewCallExpr(kw.Pos, name.Lexeme, nil)

	matched, err := p.match(token.WITH)
	if err != nil {
		return nil, err
	}
	if matched {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		for {
			m, err := p.match(token.COMMA)
			if err != nil {
				return nil, err
			}
			if !m {
				break
			}
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
	}
	return call, nil
}
