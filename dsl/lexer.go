package dsl

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// 颜色按 8/6/3 位从长到短匹配，否则 #0F62FE 会被切成 #0F6。
var sceneLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r]+`},
	{Name: "Newline", Pattern: `\n+`},
	{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})`},
	{Name: "HashComment", Pattern: `#[^\n]*`},
	{Name: "Number", Pattern: `(?:\d+\.\d+|\d+|\.\d+)(?:px|pt|%)?`},
	{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
	{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
	{Name: "LBrace", Pattern: `{`},
	{Name: "RBrace", Pattern: `}`},
})

// tokenTable 缓存语法里需要特判的 token 类型。
type tokenTable struct {
	names                                   map[lexer.TokenType]string
	newline, lbrace, rbrace, symbol, quoted lexer.TokenType
}

var tokenKinds = newTokenTable(sceneLexer.Symbols())

func newTokenTable(symbols map[string]lexer.TokenType) tokenTable {
	lookup := func(name string) lexer.TokenType {
		tt, ok := symbols[name]
		if !ok {
			panic(fmt.Sprintf("dsl: 未定义的 token %s", name))
		}
		return tt
	}
	t := tokenTable{
		names:   make(map[lexer.TokenType]string, len(symbols)),
		newline: lookup("Newline"),
		lbrace:  lookup("LBrace"),
		rbrace:  lookup("RBrace"),
		symbol:  lookup("Symbol"),
		quoted:  lookup("String"),
	}
	for name, tt := range symbols {
		t.names[tt] = name
	}
	return t
}

// Lexeme 是命令参数与表达式中的单个 token。
// String 类型的 Value 已去掉引号，Raw 保留原文。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Is 判断 token 是否为给定类型；value 非空时还要求取值相同。
func (l *Lexeme) Is(typ, value string) bool {
	return l != nil && l.Type == typ && (value == "" || l.Value == value)
}

// Parse implements participle.Parseable: 一个参数 token，遇到换行、花括号或 ';' 结束。
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	tok := lex.Peek()
	if tok.EOF() || endsCommand(tok) {
		return participle.NextMatch
	}
	next, err := takeLexeme(lex)
	if err != nil {
		return err
	}
	*l = next
	return nil
}

func takeLexeme(lex *lexer.PeekingLexer) (Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return Lexeme{}, participle.NextMatch
	}
	name, ok := tokenKinds.names[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	value := tok.Value
	if tok.Type == tokenKinds.quoted {
		unquoted, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, fmt.Errorf("%s: 字符串 %s 无法解析: %w", tok.Pos, tok.Value, err)
		}
		value = unquoted
	}
	return Lexeme{Type: name, Value: value, Raw: tok.Value, Pos: tok.Pos}, nil
}

func endsCommand(tok *lexer.Token) bool {
	switch tok.Type {
	case tokenKinds.newline, tokenKinds.lbrace, tokenKinds.rbrace:
		return true
	case tokenKinds.symbol:
		return tok.Value == ";"
	}
	return false
}

// endsExpression 判断表达式是否在 tok 前结束；括号内的 token 一律收下。
func endsExpression(tok *lexer.Token, depth int) bool {
	if tok.EOF() {
		return true
	}
	if depth > 0 {
		return false
	}
	if endsCommand(tok) {
		return true
	}
	return tok.Type == tokenKinds.symbol && (tok.Value == "," || tok.Value == "]")
}
