// Package lexer turns pyhyeon source text into a flat token stream for
// internal/parser, in the hand-written-scanner style of the teacher's
// own internal/lexer.
package lexer

import "github.com/csh1668/pyhyeon/internal/config"

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	NEWLINE

	IDENT
	INT
	FLOAT
	STRING

	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	SLASHSLASH
	PERCENT
	EQ
	NOTEQ
	LT
	LE
	GT
	GE

	COMMA
	COLON
	DOT
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE

	// Keywords
	DEF
	CLASS
	IF
	ELIF
	ELSE
	END
	WHILE
	FOR
	IN
	RETURN
	BREAK
	CONTINUE
	AND
	OR
	NOT
	LAMBDA
	TRUE
	FALSE
	NONE
)

var tokenNames = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", NEWLINE: "NEWLINE",
	IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	ASSIGN: "=", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/",
	SLASHSLASH: "//", PERCENT: "%", EQ: "==", NOTEQ: "!=",
	LT: "<", LE: "<=", GT: ">", GE: ">=",
	COMMA: ",", COLON: ":", DOT: ".",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}",
	DEF: "def", CLASS: "class", IF: "if", ELIF: "elif", ELSE: "else", END: config.BlockEnd,
	WHILE: "while", FOR: "for", IN: "in", RETURN: "return", BREAK: "break",
	CONTINUE: "continue", AND: "and", OR: "or", NOT: "not", LAMBDA: "lambda",
	TRUE: "True", FALSE: "False", NONE: "None",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"def": DEF, "class": CLASS, "if": IF, "elif": ELIF, "else": ELSE,
	config.BlockEnd: END, "while": WHILE, "for": FOR, "in": IN,
	"return": RETURN, "break": BREAK, "continue": CONTINUE,
	"and": AND, "or": OR, "not": NOT, "lambda": LAMBDA,
	"True": TRUE, "False": FALSE, "None": NONE,
}

func lookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Token is one lexeme: its kind, the source text backing it (Literal
// carries the unescaped string contents for STRING), and its line for
// diagnostics.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal string
	Line    int
}
