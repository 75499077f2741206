package layout

// lineBuilder 维护已关闭的行与当前打开的行，只通过 start/extend 两种事件推进。
type lineBuilder struct {
	lines []Line
	open  bool
}

func (b *lineBuilder) current() *Line {
	if !b.open {
		return nil
	}
	return &b.lines[len(b.lines)-1]
}

// start 以下标 at 处的 n 个字符开启新行；首字符为空格时跳过它且不计宽度。
func (b *lineBuilder) start(at, n int, width float64, first Char) {
	line := Line{Start: at, End: at + n, Width: width}
	if first.IsSpace() {
		line.Start++
		line.Width -= first.Width
	}
	b.lines = append(b.lines, line)
	b.open = true
}

func (b *lineBuilder) extend(n int, width float64) {
	l := b.current()
	l.End += n
	l.Width += width
}

// BreakLines 按最大行宽 maxWidth 对字符序列做贪心断行。
//
// 同一分段的字符作为整体放置；整体宽于 maxWidth 的分段退化为逐字符断行。
// 除单个超宽字符独占一行外，每行宽度不超过 maxWidth。
func BreakLines(chars []Char, maxWidth float64) []Line {
	var b lineBuilder
	for start := 0; start < len(chars); {
		end := start + 1
		for end < len(chars) && chars[end].Segment == chars[start].Segment {
			end++
		}
		b.place(chars[start:end], start, maxWidth)
		start = end
	}
	return b.lines
}

func (b *lineBuilder) place(seg []Char, at int, maxWidth float64) {
	width := 0.0
	for _, c := range seg {
		width += c.Width
	}

	if width > maxWidth {
		for i, c := range seg {
			cur := b.current()
			// 分段首字符总是另起一行，除非当前行宽度为 0（只含被跳过的空格）
			if (i == 0 && (cur == nil || cur.Width != 0)) || maxWidth < cur.Width+c.Width {
				b.start(at+i, 1, c.Width, c)
				continue
			}
			b.extend(1, c.Width)
		}
		return
	}

	cur := b.current()
	if cur == nil || maxWidth < cur.Width+width {
		b.start(at, len(seg), width, seg[0])
		return
	}
	b.extend(len(seg), width)
}
