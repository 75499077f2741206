package layout

// Truncate 把行数限制为 clamp，并在最后一行末尾放置省略号。
//
// 从最后一行末尾逐个移除字符，直到“剩余宽度 + 省略号宽度 <= maxWidth”，
// 先检查不移除任何字符的情况。即使移除全部字符仍放不下，最后一行也只保留省略号。
// ellipsis 为 nil 时只截断行，不追加省略号。clamp <= 0 表示不限制。
func Truncate(chars []Char, lines []Line, clamp int, maxWidth float64, ellipsis *Char) ([]Char, []Line, bool) {
	if clamp <= 0 || clamp >= len(lines) {
		return chars, lines, false
	}
	kept := make([]Line, clamp)
	copy(kept, lines[:clamp])
	last := &kept[clamp-1]

	if ellipsis == nil {
		return chars[:last.End:last.End], kept, true
	}

	width := last.Width
	cut := last.End
	for i := 0; i <= last.Len(); i++ {
		if i > 0 {
			cut--
			width -= chars[cut].Width
		}
		if maxWidth >= width+ellipsis.Width {
			break
		}
	}
	if maxWidth < width+ellipsis.Width {
		cut, width = last.Start, 0
	}

	out := append(chars[:cut:cut], *ellipsis)
	last.End = cut + 1
	last.Width = width + ellipsis.Width
	return out, kept, true
}
