package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Glyph is a font glyph resolved for one code point. Advance is in font design units.
type Glyph struct {
	ID      uint16  `json:"id"`
	Rune    rune    `json:"rune"`
	Advance float64 `json:"advance"`
}

// Missing reports whether the font has no real glyph for the rune
// (the cmap mapped it to glyph 0, ".notdef").
func (g Glyph) Missing() bool { return g.ID == 0 }

// Face wraps a parsed TrueType/OpenType font. It is safe for concurrent use.
type Face struct {
	font   *sfnt.Font
	family string
	upem   float64
	bufs   sync.Pool
}

// Parse 解析 TTF/OTF 字节数据。
func Parse(data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体失败: %w", err)
	}
	upem := float64(f.UnitsPerEm())
	if upem <= 0 {
		return nil, fmt.Errorf("字体 unitsPerEm 非法: %v", upem)
	}
	face := &Face{font: f, upem: upem}
	face.bufs.New = func() any { return new(sfnt.Buffer) }

	buf := face.buffer()
	defer face.release(buf)
	if name, err := f.Name(buf, sfnt.NameIDFamily); err == nil {
		face.family = name
	}
	return face, nil
}

func (f *Face) buffer() *sfnt.Buffer { return f.bufs.Get().(*sfnt.Buffer) }

func (f *Face) release(b *sfnt.Buffer) { f.bufs.Put(b) }

// Family returns the family name recorded in the font's name table, if any.
func (f *Face) Family() string { return f.family }

// UnitsPerEm returns the design grid size of the font.
func (f *Face) UnitsPerEm() float64 { return f.upem }

// Shape maps every code point of text to a glyph, in order. Unmapped code points
// yield glyph 0 with the advance of ".notdef".
func (f *Face) Shape(text string) []Glyph {
	buf := f.buffer()
	defer f.release(buf)
	glyphs := make([]Glyph, 0, len(text))
	for _, r := range text {
		glyphs = append(glyphs, f.glyph(buf, r))
	}
	return glyphs
}

// GlyphForRune returns the glyph for a single code point.
func (f *Face) GlyphForRune(r rune) Glyph {
	buf := f.buffer()
	defer f.release(buf)
	return f.glyph(buf, r)
}

func (f *Face) glyph(buf *sfnt.Buffer, r rune) Glyph {
	idx, err := f.font.GlyphIndex(buf, r)
	if err != nil {
		idx = 0
	}
	g := Glyph{ID: uint16(idx), Rune: r, Advance: f.upem}
	// 以 ppem == unitsPerEm 取得的 advance 即设计单位
	adv, err := f.font.GlyphAdvance(buf, idx, fixed.I(int(f.upem)), font.HintingNone)
	if err == nil {
		g.Advance = float64(adv) / 64
	}
	return g
}

// Outline 返回字形在 size 像素字号下、原点（基线起点）位于 (x, y) 时的轮廓。
func (f *Face) Outline(g Glyph, x, y, size float64) (Path, error) {
	buf := f.buffer()
	defer f.release(buf)
	ppem := fixed.Int26_6(size*64 + 0.5)
	segments, err := f.font.LoadGlyph(buf, sfnt.GlyphIndex(g.ID), ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("读取字形 %d 轮廓失败: %w", g.ID, err)
	}

	// LoadGlyph 按 ppem 取整后的字号缩放，这里补偿到精确字号
	adjust := 1.0
	if ppem > 0 {
		adjust = size * 64 / float64(ppem)
	}
	pt := func(p fixed.Point26_6) Point {
		return Point{X: x + float64(p.X)/64*adjust, Y: y + float64(p.Y)/64*adjust}
	}

	path := make(Path, 0, len(segments)+4)
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				path = append(path, Segment{Op: Close})
			}
			path = append(path, Segment{Op: MoveTo, Points: [3]Point{pt(seg.Args[0])}})
			open = true
		case sfnt.SegmentOpLineTo:
			path = append(path, Segment{Op: LineTo, Points: [3]Point{pt(seg.Args[0])}})
		case sfnt.SegmentOpQuadTo:
			path = append(path, Segment{Op: QuadTo, Points: [3]Point{pt(seg.Args[0]), pt(seg.Args[1])}})
		case sfnt.SegmentOpCubeTo:
			path = append(path, Segment{Op: CubeTo, Points: [3]Point{pt(seg.Args[0]), pt(seg.Args[1]), pt(seg.Args[2])}})
		}
	}
	if open {
		path = append(path, Segment{Op: Close})
	}
	return path, nil
}
