package layout

import (
	"fmt"

	"github.com/ByLCY/ogcard/fonts"
)

// monoFace 是等宽的测试字体：unitsPerEm 为 1000，每个字形宽 1000，.notdef 宽 500。
type monoFace struct {
	has func(r rune) bool
}

func (f *monoFace) UnitsPerEm() float64 { return 1000 }

func (f *monoFace) GlyphForRune(r rune) fonts.Glyph {
	if f.has != nil && !f.has(r) {
		return fonts.Glyph{Rune: r, Advance: 500}
	}
	return fonts.Glyph{ID: 1 + uint16(r&0x7fff), Rune: r, Advance: 1000}
}

func (f *monoFace) Shape(text string) []fonts.Glyph {
	var out []fonts.Glyph
	for _, r := range text {
		out = append(out, f.GlyphForRune(r))
	}
	return out
}

func (f *monoFace) Outline(g fonts.Glyph, x, y, size float64) (fonts.Path, error) {
	if g.Rune == ' ' {
		return nil, nil
	}
	return fonts.Path{
		{Op: fonts.MoveTo, Points: [3]fonts.Point{{X: x, Y: y}}},
		{Op: fonts.LineTo, Points: [3]fonts.Point{{X: x + size, Y: y}}},
		{Op: fonts.LineTo, Points: [3]fonts.Point{{X: x + size, Y: y - size}}},
		{Op: fonts.Close},
	}, nil
}

var (
	latinFace = &monoFace{has: func(r rune) bool { return r < 0x80 || r == '…' }}
	cjkFace   = &monoFace{has: func(r rune) bool { return isCJK(r) }}
	allFace   = &monoFace{}
)

// fakeParser 把字体数据当作名字，映射到测试字体。
func fakeParser(data []byte) (Shaper, error) {
	switch string(data) {
	case "latin":
		return latinFace, nil
	case "cjk":
		return cjkFace, nil
	case "all":
		return allFace, nil
	}
	return nil, fmt.Errorf("unknown test font %q", data)
}

func monoOptions(width float64) Options {
	return Options{
		MaxWidth:   width,
		FontSize:   10,
		LineHeight: 20,
		Fonts:      []FontSource{EmbeddedFont("all", []byte("all"))},
	}
}

// glyphChars 构造一个分段的等宽字符序列，每个字符宽 w。
func glyphChars(segment int, text string, w float64) []Char {
	var out []Char
	for _, r := range text {
		out = append(out, Char{
			Kind:     CharGlyph,
			Width:    w,
			Segment:  segment,
			Glyph:    fonts.Glyph{ID: 1, Rune: r},
			Resolved: true,
		})
	}
	return out
}
