package dsl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Document 是场景文件的根节点：doc <Name> <Version> { meta / resources / canvas }。
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section 是顶层段落，三者取其一。
type Section struct {
	Meta      *MetaSection      `parser:"  @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Canvas    *CanvasSection    `parser:"| @@"`
}

// Kind 返回段落类型名，用于报错与调试。
func (s *Section) Kind() string {
	switch {
	case s == nil:
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Canvas != nil:
		return "canvas"
	}
	return "unknown"
}

// MetaSection 保存文档元信息（title/subject/author/keywords/creator）。
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// ResourcesSection 声明字体、字体链、图片与颜色：
//
//	font Body { src: "builtin:go-regular" }
//	fonts Noto { weight: 400 }
//	image Logo { src: "logo.png" }
//	color Accent = #0F62FE
type ResourcesSection struct {
	Block *Block `parser:"'resources' @@"`
}

// CanvasSection 描述画布尺寸、背景以及其中的 text/image 元素，
// 如 canvas width 1200 height 630 background #fff { ... }。
type CanvasSection struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Params []*Lexeme      `parser:"'canvas' @@*"`
	Block  *Block         `parser:"Newline* @@"`
}

// Block 是花括号包围的语句列表，语句之间用换行或 ';' 分隔。
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Commands 返回块内的命令语句。
func (b *Block) Commands() []*Command {
	if b == nil {
		return nil
	}
	var out []*Command
	for _, stmt := range b.Statements {
		if stmt.Command != nil {
			out = append(out, stmt.Command)
		}
	}
	return out
}

// Assignments 返回块内的 key: value 语句。
func (b *Block) Assignments() []*Assignment {
	if b == nil {
		return nil
	}
	var out []*Assignment
	for _, stmt := range b.Statements {
		if stmt.Assignment != nil {
			out = append(out, stmt.Assignment)
		}
	}
	return out
}

// Text 拼接块内全部字符串字面量。
func (b *Block) Text() string {
	if b == nil {
		return ""
	}
	var sb strings.Builder
	for _, stmt := range b.Statements {
		if stmt.Text != nil {
			sb.WriteString(string(stmt.Text.Value))
		}
	}
	return sb.String()
}

// HasText 报告块内是否至少有一个字符串字面量。
func (b *Block) HasText() bool {
	if b == nil {
		return false
	}
	for _, stmt := range b.Statements {
		if stmt.Text != nil {
			return true
		}
	}
	return false
}

// Statement 是块内的一条语句。
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment 即 key: value。
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command 是 name arg... [{ block }] 形式的指令，例如 text x 60 y 80 { "hi" }。
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"( Newline* @@ )?"`
}

// TextLiteral 是块内单独出现的字符串。
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value 是赋值右侧的取值。
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue 是 [a, b] 列表，元素间可用逗号、分号或换行分隔。
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// Expression 保留未求值的 token，例如数据路径 user.company。
type Expression struct {
	Parts []*Lexeme
}

// Parse implements participle.Parseable.
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for !endsExpression(lex.Peek(), depth) {
		part, err := takeLexeme(lex)
		if err != nil {
			return err
		}
		switch part.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			if depth > 0 {
				depth--
			}
		}
		e.Parts = append(e.Parts, &part)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// Path 把 token 无空格拼接，user . company 得到 user.company。
func (e *Expression) Path() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range e.Parts {
		sb.WriteString(part.Value)
	}
	return sb.String()
}

// StringLiteral 在捕获时去掉引号并处理转义。
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串字面量为空")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}
