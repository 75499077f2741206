package layout

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Layout 使用零值 Engine 排版：只使用内嵌字体，emoji 图元只携带码点。
func Layout(ctx context.Context, text string, opts Options) (*Result, error) {
	var e Engine
	return e.Layout(ctx, text, opts)
}

// Layout 把文本排进宽度为 opts.MaxWidth 的文本框，返回各阶段结果与按行序排列的绘制图元。
//
// 字体级错误（远程字体获取失败、字体无法解析、轮廓读取失败）只记录日志；
// emoji 图片获取失败会以 *EmojiError 返回。
func (e *Engine) Layout(ctx context.Context, text string, opts Options) (*Result, error) {
	opts, err := opts.validate()
	if err != nil {
		return nil, err
	}
	text = NormalizeSpace(text)
	res := &Result{Width: max(opts.MaxWidth, 0)}
	if opts.MaxWidth <= 0 || text == "" {
		return res, nil
	}

	faces, names, err := e.loadFonts(ctx, opts.Fonts, text+"…")
	if err != nil {
		return nil, err
	}
	segments := SplitSegments(text)
	if len(faces) == 0 && hasWords(segments) {
		return nil, fmt.Errorf("%w: 共 %d 个字体，均不可用", ErrNoFont, len(opts.Fonts))
	}

	chars := Resolve(segments, opts.FontSize, faces)
	lines := BreakLines(chars, opts.MaxWidth)

	var ellipsis *Char
	if len(faces) > 0 {
		c := EllipsisChar(faces[0], 0, opts.FontSize)
		ellipsis = &c
	}
	chars, lines, truncated := Truncate(chars, lines, opts.LineClamp, opts.MaxWidth, ellipsis)

	prims, err := e.emit(ctx, chars, lines, faces, opts)
	if err != nil {
		return nil, err
	}

	res.Segments = segments
	res.Chars = chars
	res.Lines = lines
	res.Primitives = prims
	res.Height = opts.LineHeight * float64(len(lines))
	res.Truncated = truncated
	res.Fonts = names
	return res, nil
}

func hasWords(segments []Segment) bool {
	for _, s := range segments {
		if s.Kind == SegmentWord {
			return true
		}
	}
	return false
}

// loadFonts 并发加载回退链中的字体，保持原顺序并剔除不可用的字体。
// 同一远程字体（family + weight）在一次调用内只获取一次。
func (e *Engine) loadFonts(ctx context.Context, sources []FontSource, text string) ([]Shaper, []string, error) {
	loaded := make([]Shaper, len(sources))
	first := make(map[string]int)
	parse := e.parser()

	var g errgroup.Group
	g.SetLimit(e.concurrency())
	for i, src := range sources {
		if src.Remote() {
			key := fmt.Sprintf("%s:%d", src.Family, src.Weight)
			if _, dup := first[key]; dup {
				continue
			}
			first[key] = i
		}
		g.Go(func() error {
			data := src.Data
			if src.Remote() {
				if e.Fonts == nil {
					e.logf("字体 %s 需要远程获取，但未配置 FontProvider，已跳过", src.Name)
					return nil
				}
				b, err := e.Fonts.LoadFont(ctx, src, text)
				if err != nil {
					e.logf("获取字体 %s 失败，已跳过: %v", src.Name, err)
					return nil
				}
				data = b
			}
			if len(data) == 0 {
				e.logf("字体 %s 没有数据，已跳过", src.Name)
				return nil
			}
			face, err := parse(data)
			if err != nil {
				e.logf("解析字体 %s 失败，已跳过: %v", src.Name, err)
				return nil
			}
			loaded[i] = face
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var (
		faces []Shaper
		names []string
	)
	for i, src := range sources {
		face := loaded[i]
		if face == nil && src.Remote() {
			face = loaded[first[fmt.Sprintf("%s:%d", src.Family, src.Weight)]]
		}
		if face == nil {
			continue
		}
		faces = append(faces, face)
		names = append(names, src.Name)
	}
	return faces, names, nil
}
