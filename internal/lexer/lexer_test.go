package lexer

import "testing"

func collectTypes(input string) []TokenType {
	l := New(input)
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	return types
}

func TestNextToken_Operators(t *testing.T) {
	input := "+ - * / // % = == != < <= > >="
	want := []TokenType{
		PLUS, MINUS, STAR, SLASH, SLASHSLASH, PERCENT, ASSIGN, EQ, NOTEQ,
		LT, LE, GT, GE, EOF,
	}
	got := collectTypes(input)
	if len(got) != len(want) {
		t.Fatalf("token count: got %d, want %d (%v)", len(got), len(want), got)
	}
	for i, tt := range want {
		if got[i] != tt {
			t.Errorf("token %d: got %s, want %s", i, got[i], tt)
		}
	}
}

func TestNextToken_Keywords(t *testing.T) {
	input := "def class if elif else end while for in return break continue and or not lambda True False None"
	want := []TokenType{
		DEF, CLASS, IF, ELIF, ELSE, END, WHILE, FOR, IN, RETURN, BREAK,
		CONTINUE, AND, OR, NOT, LAMBDA, TRUE, FALSE, NONE, EOF,
	}
	got := collectTypes(input)
	if len(got) != len(want) {
		t.Fatalf("token count: got %d, want %d (%v)", len(got), len(want), got)
	}
	for i, tt := range want {
		if got[i] != tt {
			t.Errorf("token %d: got %s, want %s", i, got[i], tt)
		}
	}
}

func TestNextToken_Identifiers(t *testing.T) {
	l := New("foo bar_baz x1")
	for _, want := range []string{"foo", "bar_baz", "x1"} {
		tok := l.NextToken()
		if tok.Type != IDENT || tok.Lexeme != want {
			t.Errorf("got %s %q, want IDENT %q", tok.Type, tok.Lexeme, want)
		}
	}
}

func TestNextToken_Numbers(t *testing.T) {
	l := New("42 3.14 0")
	tok := l.NextToken()
	if tok.Type != INT || tok.Lexeme != "42" {
		t.Errorf("got %s %q, want INT 42", tok.Type, tok.Lexeme)
	}
	tok = l.NextToken()
	if tok.Type != FLOAT || tok.Lexeme != "3.14" {
		t.Errorf("got %s %q, want FLOAT 3.14", tok.Type, tok.Lexeme)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.Lexeme != "0" {
		t.Errorf("got %s %q, want INT 0", tok.Type, tok.Lexeme)
	}
}

func TestNextToken_Strings(t *testing.T) {
	l := New(`"hello\nworld" 'single'`)
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "hello\nworld" {
		t.Errorf("got %s %q, want STRING \"hello\\nworld\"", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != STRING || tok.Literal != "single" {
		t.Errorf("got %s %q, want STRING \"single\"", tok.Type, tok.Literal)
	}
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`"unterminated`)
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Errorf("got %s, want ILLEGAL", tok.Type)
	}
}

func TestNextToken_CommentsSkipped(t *testing.T) {
	l := New("1 # a comment\n2")
	tok := l.NextToken()
	if tok.Type != INT || tok.Lexeme != "1" {
		t.Fatalf("got %s %q", tok.Type, tok.Lexeme)
	}
	tok = l.NextToken()
	if tok.Type != NEWLINE {
		t.Fatalf("got %s, want NEWLINE", tok.Type)
	}
	tok = l.NextToken()
	if tok.Type != INT || tok.Lexeme != "2" {
		t.Fatalf("got %s %q, want INT 2", tok.Type, tok.Lexeme)
	}
}

func TestNextToken_LineNumbers(t *testing.T) {
	l := New("1\n2\n3")
	var lines []int
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == INT {
			lines = append(lines, tok.Line)
		}
	}
	want := []int{1, 2, 3}
	if len(lines) != len(want) {
		t.Fatalf("got %v, want %v", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %d, want %d", i, lines[i], want[i])
		}
	}
}

func TestNextToken_IllegalChar(t *testing.T) {
	l := New("@")
	tok := l.NextToken()
	if tok.Type != ILLEGAL || tok.Lexeme != "@" {
		t.Errorf("got %s %q, want ILLEGAL @", tok.Type, tok.Lexeme)
	}
}
