// Package dsl parses ogcard scene files.
package dsl

import (
	"io"

	"github.com/alecthomas/participle/v2"
)

var documentParser = participle.MustBuild[Document](
	participle.Lexer(sceneLexer),
	participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
)

// Parse parses a scene from r.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseFile 与 Parse 相同，但错误信息带上文件名。
func ParseFile(name string, r io.Reader) (*Document, error) {
	return documentParser.Parse(name, r)
}

// ParseString parses a scene held in memory.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// Canvas 返回第一个 canvas 段落，没有时返回 nil。
func (d *Document) Canvas() *CanvasSection {
	for _, s := range d.Sections {
		if s.Canvas != nil {
			return s.Canvas
		}
	}
	return nil
}

// Meta 按出现顺序返回所有 meta 段落中的赋值。
func (d *Document) Meta() []*Assignment {
	var out []*Assignment
	for _, s := range d.Sections {
		if s.Meta != nil {
			out = append(out, s.Meta.Block.Assignments()...)
		}
	}
	return out
}

// Resources 按出现顺序返回所有 resources 段落中的声明。
func (d *Document) Resources() []*Command {
	var out []*Command
	for _, s := range d.Sections {
		if s.Resources != nil {
			out = append(out, s.Resources.Block.Commands()...)
		}
	}
	return out
}
