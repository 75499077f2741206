// Package compose places laid-out text boxes and images on a canvas.
package compose

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/ogcard/layout"
)

// ErrInvalidScene 表示场景本身不合法（画布尺寸、空元素等）。
var ErrInvalidScene = errors.New("compose: 场景不合法")

// BuildOptions 控制合成过程。
type BuildOptions struct {
	// Engine 为 nil 时使用零值引擎（只加载内嵌字体）。
	Engine *layout.Engine
	// Concurrency 限制同时排版的文本框数量，<= 0 时不限制。
	Concurrency int
}

// Build 并发排版场景中的全部文本框，按元素顺序输出图层。
// 任一文本框排版失败（例如 emoji 获取失败）都会使整个合成失败。
func Build(ctx context.Context, scene *Scene, opts BuildOptions) (*Frame, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: 场景为空", ErrInvalidScene)
	}
	if scene.Width <= 0 || scene.Height <= 0 {
		return nil, fmt.Errorf("%w: 画布尺寸必须大于 0，当前 %gx%g", ErrInvalidScene, scene.Width, scene.Height)
	}
	engine := opts.Engine
	if engine == nil {
		engine = &layout.Engine{}
	}

	for i, el := range scene.Elements {
		switch {
		case el.Text != nil:
		case el.Image != nil:
			if len(el.Image.Data) == 0 {
				return nil, fmt.Errorf("%w: 第 %d 个元素（image %s）缺少图片数据", ErrInvalidScene, i, el.Image.Name)
			}
		default:
			return nil, fmt.Errorf("%w: 第 %d 个元素既不是 text 也不是 image", ErrInvalidScene, i)
		}
	}

	layers := make([]Layer, len(scene.Elements))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, el := range scene.Elements {
		if el.Image != nil {
			img := *el.Image
			if img.Fit == "" {
				img.Fit = FitFill
			}
			layers[i] = Layer{X: img.X, Y: img.Y, Image: &img}
			continue
		}
		box := el.Text
		fonts := scene.pickFonts(box.FontFamily)
		g.Go(func() error {
			res, err := engine.Layout(gctx, norm.NFC.String(box.Text), layout.Options{
				MaxWidth:   box.Width,
				FontSize:   box.FontSize,
				LineHeight: box.LineHeight,
				LineClamp:  box.LineClamp,
				Align:      box.Align,
				Color:      box.Color,
				Fonts:      fonts,
			})
			if err != nil {
				return fmt.Errorf("第 %d 个元素（text）排版失败: %w", i, err)
			}
			layers[i] = Layer{X: box.X, Y: box.Y, Text: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Frame{
		Width:      scene.Width,
		Height:     scene.Height,
		Background: scene.Background,
		Layers:     layers,
		Meta:       scene.Meta,
	}, nil
}

// pickFonts 按 family 顺序从场景字体中取出回退链；别名展开为多个字体，未知名字跳过。
// family 为空时使用全部场景字体。
func (s *Scene) pickFonts(family []string) []layout.FontSource {
	if len(family) == 0 {
		return s.Fonts
	}
	var out []layout.FontSource
	seen := make(map[string]bool)
	add := func(name string) {
		if seen[name] {
			return
		}
		for _, f := range s.Fonts {
			if f.Name == name {
				seen[name] = true
				out = append(out, f)
				return
			}
		}
	}
	for _, name := range family {
		if names, ok := s.Aliases[name]; ok {
			for _, n := range names {
				add(n)
			}
			continue
		}
		add(name)
	}
	return out
}
