package layout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// lineOffset 返回对齐方式下行首的水平偏移。
func lineOffset(align Align, maxWidth, lineWidth float64) float64 {
	switch align {
	case AlignRight:
		return maxWidth - lineWidth
	case AlignCenter:
		return (maxWidth - lineWidth) / 2
	default:
		return 0
	}
}

// emit 按行、行内字符的顺序为每个字符生成一个绘制图元。
// emoji 图片并发获取，结果按原顺序回填，任一失败即整体失败。
func (e *Engine) emit(ctx context.Context, chars []Char, lines []Line, faces []Shaper, opts Options) ([]Primitive, error) {
	size, lh := opts.FontSize, opts.LineHeight
	prims := make([]Primitive, 0, len(chars))
	images := make(map[string][]int)
	var order []string

	for li, line := range lines {
		x := lineOffset(opts.Align, opts.MaxWidth, line.Width)
		for ci := line.Start; ci < line.End; ci++ {
			c := chars[ci]
			switch c.Kind {
			case CharImage:
				if _, ok := images[c.CodePoint]; !ok {
					order = append(order, c.CodePoint)
				}
				images[c.CodePoint] = append(images[c.CodePoint], len(prims))
				prims = append(prims, Primitive{
					Kind:      PrimitiveImage,
					X:         x,
					Y:         lh*float64(li) + (lh-size)/2,
					Width:     size,
					Height:    size,
					CodePoint: c.CodePoint,
				})
			default:
				baseline := lh*float64(li+1) - (lh-size)/2
				p := Primitive{
					Kind: PrimitiveGlyph,
					X:    x,
					Y:    baseline,
					Fill: opts.Color,
					Rune: c.Glyph.Rune,
					Face: c.Face,
				}
				if c.Face < len(faces) {
					path, err := faces[c.Face].Outline(c.Glyph, x, baseline, size)
					if err != nil {
						e.logf("字形 %q 轮廓获取失败，输出空路径: %v", c.Glyph.Rune, err)
					}
					p.Path = path
					p.D = path.SVG(2)
				}
				prims = append(prims, p)
			}
			x += c.Width
		}
	}

	if e.Emoji == nil || len(order) == 0 {
		return prims, nil
	}
	data := make([][]byte, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency())
	for i, cp := range order {
		g.Go(func() error {
			b, err := e.Emoji.Emoji(gctx, cp)
			if err != nil {
				return &EmojiError{CodePoint: cp, Err: err}
			}
			data[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, cp := range order {
		for _, idx := range images[cp] {
			prims[idx].Data = data[i]
		}
	}
	return prims, nil
}
