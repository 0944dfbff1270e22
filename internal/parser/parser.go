// Package parser turns a lexer.Token stream into internal/ast trees:
// recursive-descent for statements, precedence-climbing ("Pratt style")
// for expressions, producing internal/ast nodes directly as
// SPEC_FULL.md §4 describes.
package parser

import (
	"fmt"

	"github.com/csh1668/pyhyeon/internal/ast"
	"github.com/csh1668/pyhyeon/internal/lexer"
)

type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	errors []string
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Parse lexes and parses source in one step, the entry point
// cmd/pyhyeon and the REPL use.
func Parse(source string) (*ast.Program, error) {
	p := New(lexer.New(source))
	prog := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, fmt.Errorf("parse: %s", p.errors[0])
	}
	return prog, nil
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func at(line int) ast.Base { return ast.Base{Ln: line} }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Sprintf("line %d: %s", p.cur.Line, fmt.Sprintf(format, args...)))
}

func (p *Parser) curIs(t lexer.TokenType) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t lexer.TokenType) bool { return p.peek.Type == t }

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s %q", t, p.cur.Type, p.cur.Lexeme)
	return false
}

// skipNewlines consumes blank statement separators; NEWLINE is
// otherwise meaningful only as a statement terminator, never inside an
// expression.
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) {
		p.next()
	}
}

func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Base: at(p.cur.Line)}
	p.skipNewlines()
	for !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipNewlines()
	}
	return prog
}

// parseBlock parses statements until one of the given terminator
// keywords is the current token (without consuming the terminator).
func (p *Parser) parseBlock(terminators ...lexer.TokenType) []ast.Statement {
	var stmts []ast.Statement
	p.skipNewlines()
	for !p.atAny(terminators...) && !p.curIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.skipNewlines()
	}
	return stmts
}

func (p *Parser) atAny(types ...lexer.TokenType) bool {
	for _, t := range types {
		if p.curIs(t) {
			return true
		}
	}
	return false
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.DEF:
		return p.parseFunctionDef()
	case lexer.CLASS:
		return p.parseClassDef()
	case lexer.IF:
		return p.parseIf()
	case lexer.WHILE:
		return p.parseWhile()
	case lexer.FOR:
		return p.parseFor()
	case lexer.RETURN:
		return p.parseReturn()
	case lexer.BREAK:
		b := &ast.BreakStatement{Base: at(p.cur.Line)}
		p.next()
		return b
	case lexer.CONTINUE:
		c := &ast.ContinueStatement{Base: at(p.cur.Line)}
		p.next()
		return c
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) parseFunctionDef() *ast.FunctionDef {
	line := p.cur.Line
	p.next() // def
	name := p.cur.Lexeme
	p.expect(lexer.IDENT)
	p.expect(lexer.LPAREN)
	var params []string
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		params = append(params, p.cur.Lexeme)
		p.expect(lexer.IDENT)
		if p.curIs(lexer.COMMA) {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.COLON)
	body := p.parseBlock(lexer.END)
	p.expect(lexer.END)
	return &ast.FunctionDef{Base: at(line), Name: name, Params: params, Body: body}
}

func (p *Parser) parseClassDef() ast.Statement {
	line := p.cur.Line
	p.next() // class
	name := p.cur.Lexeme
	p.expect(lexer.IDENT)
	p.expect(lexer.COLON)
	p.skipNewlines()
	var methods []*ast.FunctionDef
	for p.curIs(lexer.DEF) {
		methods = append(methods, p.parseFunctionDef())
		p.skipNewlines()
	}
	p.expect(lexer.END)
	return &ast.ClassDef{Base: at(line), Name: name, Methods: methods}
}

func (p *Parser) parseIf() ast.Statement {
	line := p.cur.Line
	p.next() // if
	cond := p.parseExpression()
	p.expect(lexer.COLON)
	then := p.parseBlock(lexer.ELIF, lexer.ELSE, lexer.END)

	if p.curIs(lexer.ELIF) {
		elseStmts := []ast.Statement{p.parseElif()}
		return &ast.IfStatement{Base: at(line), Cond: cond, Then: then, Else: elseStmts}
	}

	var elseStmts []ast.Statement
	if p.curIs(lexer.ELSE) {
		p.next()
		p.expect(lexer.COLON)
		elseStmts = p.parseBlock(lexer.END)
	}
	p.expect(lexer.END)
	return &ast.IfStatement{Base: at(line), Cond: cond, Then: then, Else: elseStmts}
}

// parseElif parses one `elif cond: body` arm, recursing for further
// elif/else arms and folding the whole chain into a single nested
// IfStatement per ast.IfStatement's documented representation. It does
// not itself consume the closing `end` — the outermost parseIf does.
func (p *Parser) parseElif() ast.Statement {
	line := p.cur.Line
	p.next() // elif
	cond := p.parseExpression()
	p.expect(lexer.COLON)
	then := p.parseBlock(lexer.ELIF, lexer.ELSE, lexer.END)

	var elseStmts []ast.Statement
	switch {
	case p.curIs(lexer.ELIF):
		elseStmts = []ast.Statement{p.parseElif()}
	case p.curIs(lexer.ELSE):
		p.next()
		p.expect(lexer.COLON)
		elseStmts = p.parseBlock(lexer.END)
	}
	return &ast.IfStatement{Base: at(line), Cond: cond, Then: then, Else: elseStmts}
}

func (p *Parser) parseWhile() ast.Statement {
	line := p.cur.Line
	p.next() // while
	cond := p.parseExpression()
	p.expect(lexer.COLON)
	body := p.parseBlock(lexer.END)
	p.expect(lexer.END)
	return &ast.WhileStatement{Base: at(line), Cond: cond, Body: body}
}

func (p *Parser) parseFor() ast.Statement {
	line := p.cur.Line
	p.next() // for
	name := p.cur.Lexeme
	p.expect(lexer.IDENT)
	p.expect(lexer.IN)
	iterable := p.parseExpression()
	p.expect(lexer.COLON)
	body := p.parseBlock(lexer.END)
	p.expect(lexer.END)
	return &ast.ForStatement{Base: at(line), Var: name, Iterable: iterable, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	line := p.cur.Line
	p.next() // return
	if p.curIs(lexer.NEWLINE) || p.curIs(lexer.EOF) || p.curIs(lexer.END) {
		return &ast.ReturnStatement{Base: at(line)}
	}
	return &ast.ReturnStatement{Base: at(line), Value: p.parseExpression()}
}

// parseExprOrAssignStatement parses an expression, then reinterprets it
// as an assignment target if `=` follows — the lightest-weight way to
// share postfix parsing between plain expressions and Name/Attr/Index
// assignment targets.
func (p *Parser) parseExprOrAssignStatement() ast.Statement {
	line := p.cur.Line
	expr := p.parseExpression()
	if !p.curIs(lexer.ASSIGN) {
		return &ast.ExprStatement{Base: at(line), Expr: expr}
	}
	p.next() // =
	value := p.parseExpression()
	switch target := expr.(type) {
	case *ast.Identifier:
		return &ast.Assign{Base: at(line), Name: target.Name, Value: value}
	case *ast.AttrExpr:
		return &ast.AttrAssign{Base: at(line), Target: target.Target, Attr: target.Attr, Value: value}
	case *ast.IndexExpr:
		return &ast.IndexAssign{Base: at(line), Target: target.Target, Index: target.Index, Value: value}
	default:
		p.errorf("invalid assignment target")
		return &ast.ExprStatement{Base: at(line), Expr: expr}
	}
}
