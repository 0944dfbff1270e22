package parser

import (
	"strconv"

	"github.com/csh1668/pyhyeon/internal/ast"
	"github.com/csh1668/pyhyeon/internal/lexer"
)

// parseExpression is the top-level entry point; precedence climbs from
// here down through parseTernary -> parseOr -> parseAnd -> parseNot ->
// parseComparison -> parseAdditive -> parseMultiplicative -> parseUnary
// -> parsePostfix -> parsePrimary, each level calling the next tighter
// one for its operands (the teacher's Pratt-parsing convention, spelled
// out as one function per level rather than a precedence table since
// this grammar's operator set is small and fixed).
func (p *Parser) parseExpression() ast.Expression { return p.parseTernary() }

func (p *Parser) parseTernary() ast.Expression {
	line := p.cur.Line
	then := p.parseOr()
	if !p.curIs(lexer.IF) {
		return then
	}
	p.next() // if
	cond := p.parseOr()
	p.expect(lexer.ELSE)
	elseExpr := p.parseTernary()
	return &ast.CondExpr{Base: at(line), Cond: cond, Then: then, Else: elseExpr}
}

func (p *Parser) parseOr() ast.Expression {
	line := p.cur.Line
	left := p.parseAnd()
	for p.curIs(lexer.OR) {
		p.next()
		right := p.parseAnd()
		left = &ast.OrExpr{Base: at(line), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	line := p.cur.Line
	left := p.parseNot()
	for p.curIs(lexer.AND) {
		p.next()
		right := p.parseNot()
		left = &ast.AndExpr{Base: at(line), Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseNot() ast.Expression {
	if p.curIs(lexer.NOT) {
		line := p.cur.Line
		p.next()
		return &ast.NotExpr{Base: at(line), Operand: p.parseNot()}
	}
	return p.parseComparison()
}

var compareOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.EQ: ast.OpEq, lexer.NOTEQ: ast.OpNe,
	lexer.LT: ast.OpLt, lexer.LE: ast.OpLe,
	lexer.GT: ast.OpGt, lexer.GE: ast.OpGe,
}

func (p *Parser) parseComparison() ast.Expression {
	line := p.cur.Line
	left := p.parseAdditive()
	if op, ok := compareOps[p.cur.Type]; ok {
		p.next()
		right := p.parseAdditive()
		return &ast.BinaryExpr{Base: at(line), Op: op, Left: left, Right: right}
	}
	return left
}

var additiveOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub,
}

func (p *Parser) parseAdditive() ast.Expression {
	line := p.cur.Line
	left := p.parseMultiplicative()
	for {
		op, ok := additiveOps[p.cur.Type]
		if !ok {
			return left
		}
		p.next()
		right := p.parseMultiplicative()
		left = &ast.BinaryExpr{Base: at(line), Op: op, Left: left, Right: right}
	}
}

var multiplicativeOps = map[lexer.TokenType]ast.BinaryOp{
	lexer.STAR: ast.OpMul, lexer.SLASH: ast.OpDiv,
	lexer.SLASHSLASH: ast.OpFloorDiv, lexer.PERCENT: ast.OpMod,
}

func (p *Parser) parseMultiplicative() ast.Expression {
	line := p.cur.Line
	left := p.parseUnary()
	for {
		op, ok := multiplicativeOps[p.cur.Type]
		if !ok {
			return left
		}
		p.next()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Base: at(line), Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expression {
	line := p.cur.Line
	switch p.cur.Type {
	case lexer.MINUS:
		p.next()
		return &ast.UnaryExpr{Base: at(line), Op: ast.UnaryNeg, Operand: p.parseUnary()}
	case lexer.PLUS:
		p.next()
		return &ast.UnaryExpr{Base: at(line), Op: ast.UnaryPos, Operand: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expression {
	expr := p.parsePrimary()
	for {
		switch p.cur.Type {
		case lexer.DOT:
			line := p.cur.Line
			p.next()
			name := p.cur.Lexeme
			p.expect(lexer.IDENT)
			if p.curIs(lexer.LPAREN) {
				args := p.parseArgs()
				expr = &ast.MethodCall{Base: at(line), Receiver: expr, Method: name, Args: args}
			} else {
				expr = &ast.AttrExpr{Base: at(line), Target: expr, Attr: name}
			}
		case lexer.LBRACKET:
			line := p.cur.Line
			p.next()
			idx := p.parseExpression()
			p.expect(lexer.RBRACKET)
			expr = &ast.IndexExpr{Base: at(line), Target: expr, Index: idx}
		case lexer.LPAREN:
			line := p.cur.Line
			args := p.parseArgs()
			expr = &ast.Call{Base: at(line), Callee: expr, Args: args}
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []ast.Expression {
	p.expect(lexer.LPAREN)
	var args []ast.Expression
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpression())
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

func (p *Parser) parsePrimary() ast.Expression {
	line := p.cur.Line
	switch p.cur.Type {
	case lexer.INT:
		v, err := strconv.ParseInt(p.cur.Lexeme, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", p.cur.Lexeme)
		}
		p.next()
		return &ast.IntLiteral{Base: at(line), Value: v}

	case lexer.FLOAT:
		v, err := strconv.ParseFloat(p.cur.Lexeme, 64)
		if err != nil {
			p.errorf("invalid float literal %q", p.cur.Lexeme)
		}
		p.next()
		return &ast.FloatLiteral{Base: at(line), Value: v}

	case lexer.STRING:
		v := p.cur.Literal
		p.next()
		return &ast.StringLiteral{Base: at(line), Value: v}

	case lexer.TRUE:
		p.next()
		return &ast.BoolLiteral{Base: at(line), Value: true}

	case lexer.FALSE:
		p.next()
		return &ast.BoolLiteral{Base: at(line), Value: false}

	case lexer.NONE:
		p.next()
		return &ast.NoneLiteral{Base: at(line)}

	case lexer.IDENT:
		name := p.cur.Lexeme
		p.next()
		return &ast.Identifier{Base: at(line), Name: name}

	case lexer.LAMBDA:
		return p.parseLambda()

	case lexer.LPAREN:
		p.next()
		expr := p.parseExpression()
		p.expect(lexer.RPAREN)
		return expr

	case lexer.LBRACKET:
		return p.parseListLiteral()

	case lexer.LBRACE:
		return p.parseDictLiteral()

	default:
		p.errorf("unexpected token %s %q in expression", p.cur.Type, p.cur.Lexeme)
		p.next()
		return &ast.NoneLiteral{Base: at(line)}
	}
}

func (p *Parser) parseLambda() ast.Expression {
	line := p.cur.Line
	p.next() // lambda
	var params []string
	for !p.curIs(lexer.COLON) && !p.curIs(lexer.EOF) {
		params = append(params, p.cur.Lexeme)
		p.expect(lexer.IDENT)
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.COLON)
	body := p.parseExpression()
	return &ast.Lambda{Base: at(line), Params: params, Body: body}
}

func (p *Parser) parseListLiteral() ast.Expression {
	line := p.cur.Line
	p.next() // [
	var items []ast.Expression
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		items = append(items, p.parseExpression())
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACKET)
	return &ast.ListLiteral{Base: at(line), Items: items}
}

func (p *Parser) parseDictLiteral() ast.Expression {
	line := p.cur.Line
	p.next() // {
	var entries []ast.DictEntry
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		key := p.parseExpression()
		p.expect(lexer.COLON)
		value := p.parseExpression()
		entries = append(entries, ast.DictEntry{Key: key, Value: value})
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RBRACE)
	return &ast.DictLiteral{Base: at(line), Entries: entries}
}
