package dsl_test

import (
	"strings"
	"testing"

	"github.com/ByLCY/ogcard/dsl"
)

const sampleDSL = `
doc Card v1 {
  meta {
    title: "Launch card"
    keywords: [
      "og"
      "social"
    ]
    subject: user.company
  }

  resources {
    font Body { src: "builtin:go-regular" }
    font JP { google: "Noto Sans JP" weight: 700 }
    fonts Noto { weight: 400 }
    image Logo { src: "logo.png" }

    color Accent = #0F62FE
  }

  canvas width 1200 height 630 background #fff {
    text x 60 y 80 width 90% size 64 line-height 80 clamp 2 align center color Accent fonts [Body, JP] { "Hello ${user.name} 😀" }
    image Logo x 40 y 40 width 120px height 120
  }
}
`

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Card" || doc.Version != "v1" {
		t.Fatalf("unexpected header %s %s", doc.Name, doc.Version)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	kinds := []string{"meta", "resources", "canvas"}
	for i, k := range kinds {
		if got := doc.Sections[i].Kind(); got != k {
			t.Fatalf("section %d kind = %s, want %s", i, got, k)
		}
	}

	meta := doc.Sections[0].Meta
	title := meta.Block.Statements[0].Assignment
	if title == nil || title.Key != "title" || string(*title.Value.String) != "Launch card" {
		t.Fatalf("expected title assignment, got %+v", meta.Block.Statements[0])
	}
	keywords := meta.Block.Statements[1].Assignment
	if keywords == nil || keywords.Value.Array == nil || len(keywords.Value.Array.Values) != 2 {
		t.Fatalf("expected 2 keywords, got %+v", keywords)
	}
	subject := meta.Block.Statements[2].Assignment
	if subject == nil || subject.Value.Expr == nil {
		t.Fatalf("subject should capture an expression, got %+v", meta.Block.Statements[2])
	}
	if got := tokensToString(subject.Value.Expr.Parts); got != "user . company" {
		t.Fatalf("unexpected expression tokens: %s", got)
	}
}

func TestParseResources(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	stmts := doc.Sections[1].Resources.Block.Statements
	if len(stmts) != 5 {
		t.Fatalf("expected 5 resource statements, got %d", len(stmts))
	}

	jp := stmts[1].Command
	if jp == nil || jp.Name != "font" || jp.Args[0].Value != "JP" {
		t.Fatalf("expected font JP, got %+v", stmts[1])
	}
	// 同一行内的多个赋值
	if len(jp.Block.Statements) != 2 {
		t.Fatalf("expected google + weight, got %+v", jp.Block.Statements)
	}
	if w := jp.Block.Statements[1].Assignment; w == nil || w.Key != "weight" || *w.Value.Number != "700" {
		t.Fatalf("unexpected weight assignment %+v", jp.Block.Statements[1])
	}

	if noto := stmts[2].Command; noto == nil || noto.Name != "fonts" {
		t.Fatalf("expected fonts chain, got %+v", stmts[2])
	}

	color := stmts[4].Command
	if color == nil || color.Name != "color" || len(color.Args) != 3 {
		t.Fatalf("unexpected color statement %+v", stmts[4])
	}
	if color.Args[2].Type != "Color" || color.Args[2].Value != "#0F62FE" {
		t.Fatalf("unexpected color value %+v", color.Args[2])
	}
}

func TestParseCanvas(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	canvas := doc.Sections[2].Canvas
	if got := tokensToString(canvas.Params); got != "width 1200 height 630 background #fff" {
		t.Fatalf("unexpected canvas params: %s", got)
	}
	if len(canvas.Block.Statements) != 2 {
		t.Fatalf("expected 2 canvas elements, got %d", len(canvas.Block.Statements))
	}

	text := canvas.Block.Statements[0].Command
	if text == nil || text.Name != "text" {
		t.Fatalf("expected text command, got %+v", canvas.Block.Statements[0])
	}
	args := tokensToString(text.Args)
	if !strings.Contains(args, "width 90%") || !strings.Contains(args, "line-height 80") {
		t.Fatalf("unexpected text args: %s", args)
	}
	if !strings.HasSuffix(args, "fonts [ Body , JP ]") {
		t.Fatalf("font list should be kept as tokens: %s", args)
	}
	if text.Block == nil || text.Block.Statements[0].Text == nil {
		t.Fatalf("text command missing literal content")
	}
	if got := string(text.Block.Statements[0].Text.Value); got != "Hello ${user.name} 😀" {
		t.Fatalf("unexpected text literal %q", got)
	}

	image := canvas.Block.Statements[1].Command
	if image == nil || image.Name != "image" || image.Block != nil {
		t.Fatalf("expected block-less image command, got %+v", canvas.Block.Statements[1])
	}
	if image.Args[0].Value != "Logo" || image.Args[6].Value != "120px" {
		t.Fatalf("unexpected image args: %s", tokensToString(image.Args))
	}
}

func TestParseRejectsUnknownSection(t *testing.T) {
	if _, err := dsl.ParseString(`doc A v1 { page A4 { } }`); err == nil {
		t.Fatalf("expected error for unknown section")
	}
}

func TestDocumentAccessors(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Canvas() != doc.Sections[2].Canvas {
		t.Fatalf("Canvas() should return the canvas section")
	}
	meta := doc.Meta()
	if len(meta) != 3 || meta[2].Key != "subject" {
		t.Fatalf("unexpected meta assignments %+v", meta)
	}
	if got := meta[2].Value.Expr.Path(); got != "user.company" {
		t.Fatalf("expression path = %q", got)
	}
	res := doc.Resources()
	if len(res) != 5 || res[0].Name != "font" || res[4].Name != "color" {
		t.Fatalf("unexpected resources %+v", res)
	}
	if !res[4].Args[1].Is("Symbol", "=") || res[4].Args[1].Is("Symbol", ":") {
		t.Fatalf("Is should match type and value")
	}

	empty, err := dsl.ParseString(`doc E v1 { meta { title: "x" } }`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if empty.Canvas() != nil || empty.Resources() != nil {
		t.Fatalf("expected no canvas and no resources")
	}
}

func TestBlockText(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  canvas {
    text { "Hello, "; "world" }
    text { size: 12 }
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	cmds := doc.Canvas().Block.Commands()
	if len(cmds) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(cmds))
	}
	if got := cmds[0].Block.Text(); got != "Hello, world" {
		t.Fatalf("text = %q", got)
	}
	if cmds[1].Block.HasText() || cmds[1].Block.Text() != "" {
		t.Fatalf("assignment-only block should have no text")
	}
	var nilBlock *dsl.Block
	if nilBlock.HasText() || nilBlock.Commands() != nil || nilBlock.Assignments() != nil {
		t.Fatalf("nil block accessors should be empty")
	}
}

func TestLexerTokens(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  canvas width 12pt height .5 background #0F62FEcc x 50% y #abc {
  }
}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	params := doc.Canvas().Params
	want := []struct{ typ, value string }{
		{"Ident", "width"}, {"Number", "12pt"},
		{"Ident", "height"}, {"Number", ".5"},
		{"Ident", "background"}, {"Color", "#0F62FEcc"},
		{"Ident", "x"}, {"Number", "50%"},
		{"Ident", "y"}, {"Color", "#abc"},
	}
	if len(params) != len(want) {
		t.Fatalf("expected %d params, got %s", len(want), tokensToString(params))
	}
	for i, w := range want {
		if !params[i].Is(w.typ, w.value) {
			t.Fatalf("param %d = %s(%s), want %s(%s)", i, params[i].Type, params[i].Value, w.typ, w.value)
		}
	}
}

func TestParseFileReportsName(t *testing.T) {
	_, err := dsl.ParseFile("card.ogcard", strings.NewReader("doc {"))
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !strings.Contains(err.Error(), "card.ogcard") {
		t.Fatalf("error should mention the file name: %v", err)
	}
}

func tokensToString(parts []*dsl.Lexeme) string {
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		values = append(values, p.Value)
	}
	return strings.Join(values, " ")
}
