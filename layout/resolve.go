package layout

// Resolve 为每个分段生成字符序列：word 段每个码点一个字形字符，emoji 段一个图片字符。
//
// 字体按 faces 顺序逐字符回退：第一个能给出真实字形（非 .notdef）的字体胜出；
// 全部缺字时使用第一个字体的占位字形，并标记为未解析。
func Resolve(segments []Segment, fontSize float64, faces []Shaper) []Char {
	chars := make([]Char, 0, len(segments)*2)
	for i, seg := range segments {
		if seg.Kind == SegmentEmoji {
			chars = append(chars, Char{
				Kind:      CharImage,
				Width:     fontSize,
				Segment:   i,
				CodePoint: EmojiCodePoint(seg.Text),
			})
			continue
		}
		chars = append(chars, resolveWord(seg.Text, i, fontSize, faces)...)
	}
	return chars
}

func resolveWord(text string, segment int, fontSize float64, faces []Shaper) []Char {
	if len(faces) == 0 {
		return nil
	}
	var word []Char
	for fi, face := range faces {
		scale := fontSize / face.UnitsPerEm()
		for ci, g := range face.Shape(text) {
			if ci >= len(word) {
				// 第一个字体为每个位置占位
				word = append(word, Char{
					Kind:     CharGlyph,
					Width:    g.Advance * scale,
					Segment:  segment,
					Glyph:    g,
					Face:     fi,
					Resolved: !g.Missing(),
				})
				continue
			}
			if word[ci].Resolved || g.Missing() {
				continue
			}
			word[ci] = Char{
				Kind:     CharGlyph,
				Width:    g.Advance * scale,
				Segment:  segment,
				Glyph:    g,
				Face:     fi,
				Resolved: true,
			}
		}
	}
	return word
}

// EllipsisChar 返回 face 在给定字号下的省略号字符（Segment 为 -1）。
func EllipsisChar(face Shaper, faceIndex int, fontSize float64) Char {
	g := face.GlyphForRune('…')
	return Char{
		Kind:     CharGlyph,
		Width:    g.Advance * fontSize / face.UnitsPerEm(),
		Segment:  -1,
		Glyph:    g,
		Face:     faceIndex,
		Resolved: !g.Missing(),
	}
}
