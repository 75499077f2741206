package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"log"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
	"golang.org/x/image/colornames"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/ogcard/compose"
	"github.com/ByLCY/ogcard/fonts"
	"github.com/ByLCY/ogcard/layout"
	"github.com/ByLCY/ogcard/renderer"
)

// Format 是输出文件格式。
type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

// ParseFormat 解析 png/svg/pdf，空字符串为 png。
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(v), "."))); f {
	case "":
		return FormatPNG, nil
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的输出格式 %s（可用：png, svg, pdf）", v)
	}
}

// FormatFromPath 根据文件扩展名推断输出格式，无法识别时返回 png。
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatPNG
}

// Options configures the canvas renderer.
type Options struct {
	Format Format
	// Scale 是每个画面像素对应的输出像素数，作用于 PNG 输出与位图重采样，<= 0 时为 1。
	Scale float64
	// Logger 接收可忽略的绘制问题（例如缺少数据的 emoji）；nil 表示不输出。
	Logger *log.Logger
}

// Renderer draws composed frames via github.com/tdewolff/canvas.
// One canvas unit is one frame pixel.
type Renderer struct {
	opts Options
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates a renderer with the given options.
func New(opts Options) *Renderer {
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) logf(format string, args ...any) {
	if r.opts.Logger != nil {
		r.opts.Logger.Printf(format, args...)
	}
}

// Render 绘制背景与各图层，并按配置的格式编码。
func (r *Renderer) Render(frame *compose.Frame) ([]byte, error) {
	if frame == nil {
		return nil, fmt.Errorf("渲染画面为空")
	}
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("画面尺寸必须大于 0，当前 %gx%g", frame.Width, frame.Height)
	}

	c := canvas.New(frame.Width, frame.Height)
	ctx := canvas.NewContext(c)
	ctx.SetStrokeColor(canvas.Transparent)
	if err := r.drawFrame(ctx, frame); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch r.opts.Format {
	case FormatPNG:
		img := rasterizer.Draw(c, canvas.DPMM(r.opts.Scale), canvas.DefaultColorSpace)
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("编码 PNG 失败: %w", err)
		}
	case FormatSVG:
		writer := svg.New(&buf, frame.Width, frame.Height, nil)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case FormatPDF:
		writer := pdf.New(&buf, frame.Width, frame.Height, nil)
		meta := frame.Meta
		writer.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
		c.RenderTo(writer)
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("写入 PDF 失败: %w", err)
		}
	default:
		return nil, fmt.Errorf("不支持的输出格式 %s", r.opts.Format)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawFrame(ctx *canvas.Context, frame *compose.Frame) error {
	if frame.Background != "" {
		bg, err := ParseColor(frame.Background)
		if err != nil {
			return fmt.Errorf("背景色: %w", err)
		}
		ctx.SetFillColor(bg)
		ctx.DrawPath(0, 0, canvas.Rectangle(frame.Width, frame.Height))
	}

	for i, layer := range frame.Layers {
		var err error
		switch {
		case layer.Text != nil:
			err = r.drawText(ctx, frame.Height, layer.X, layer.Y, layer.Text)
		case layer.Image != nil:
			err = r.drawImage(ctx, frame.Height, layer.Image)
		}
		if err != nil {
			return fmt.Errorf("绘制第 %d 个图层失败: %w", i, err)
		}
	}
	return nil
}

// drawText 绘制一个文本图层。画面坐标以左上角为原点、y 向下，
// canvas 默认坐标系 y 向上，字形与图片在这里统一翻转。
func (r *Renderer) drawText(ctx *canvas.Context, height, x, y float64, res *layout.Result) error {
	fills := map[string]color.Color{}
	for _, p := range res.Primitives {
		switch p.Kind {
		case layout.PrimitiveGlyph:
			if p.Path.Empty() {
				continue
			}
			fill, ok := fills[p.Fill]
			if !ok {
				var err error
				if fill, err = ParseColor(p.Fill); err != nil {
					return err
				}
				fills[p.Fill] = fill
			}
			ctx.SetFillColor(fill)
			ctx.DrawPath(0, 0, toCanvasPath(p.Path, x, y, height))
		case layout.PrimitiveImage:
			if len(p.Data) == 0 {
				r.logf("emoji %s 没有图片数据，跳过", p.CodePoint)
				continue
			}
			src, _, err := image.Decode(bytes.NewReader(p.Data))
			if err != nil {
				return fmt.Errorf("解码 emoji %s 失败: %w", p.CodePoint, err)
			}
			r.placeImage(ctx, height, src, x+p.X, y+p.Y, p.Width, p.Height, compose.FitContain)
		}
	}
	return nil
}

func (r *Renderer) drawImage(ctx *canvas.Context, height float64, img *compose.Image) error {
	if img.Width <= 0 || img.Height <= 0 {
		return nil
	}
	src, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return fmt.Errorf("解码图片 %s 失败: %w", img.Name, err)
	}
	r.placeImage(ctx, height, src, img.X, img.Y, img.Width, img.Height, img.Fit)
	return nil
}

// placeImage 把位图按 fit 重采样到目标矩形 (x, y, w, h) 内绘制，(x, y) 为左上角。
func (r *Renderer) placeImage(ctx *canvas.Context, height float64, src image.Image, x, y, w, h float64, fit compose.Fit) {
	scale := r.opts.Scale
	pw := max(int(math.Round(w*scale)), 1)
	ph := max(int(math.Round(h*scale)), 1)

	var dst image.Image
	dh := h
	switch fit {
	case compose.FitCover:
		dst = imaging.Fill(src, pw, ph, imaging.Center, imaging.Lanczos)
	case compose.FitContain:
		b := src.Bounds()
		ratio := math.Min(float64(pw)/float64(b.Dx()), float64(ph)/float64(b.Dy()))
		cw := max(int(math.Round(float64(b.Dx())*ratio)), 1)
		ch := max(int(math.Round(float64(b.Dy())*ratio)), 1)
		dst = imaging.Resize(src, cw, ch, imaging.Lanczos)
		dh = float64(ch) / scale
		x += (w - float64(cw)/scale) / 2
		y += (h - dh) / 2
	default:
		dst = imaging.Resize(src, pw, ph, imaging.Lanczos)
	}
	ctx.DrawImage(x, height-y-dh, dst, canvas.DPMM(scale))
}

// toCanvasPath 把文本框内的字形轮廓平移 (dx, dy) 并翻转到 y 向上的坐标系。
func toCanvasPath(p fonts.Path, dx, dy, height float64) *canvas.Path {
	out := &canvas.Path{}
	var pt [3]fonts.Point
	for _, seg := range p {
		for i, q := range seg.Points {
			pt[i] = fonts.Point{X: dx + q.X, Y: height - dy - q.Y}
		}
		switch seg.Op {
		case fonts.MoveTo:
			out.MoveTo(pt[0].X, pt[0].Y)
		case fonts.LineTo:
			out.LineTo(pt[0].X, pt[0].Y)
		case fonts.QuadTo:
			out.QuadTo(pt[0].X, pt[0].Y, pt[1].X, pt[1].Y)
		case fonts.CubeTo:
			out.CubeTo(pt[0].X, pt[0].Y, pt[1].X, pt[1].Y, pt[2].X, pt[2].Y)
		case fonts.Close:
			out.Close()
		}
	}
	return out
}

// ParseColor 解析 #rgb/#rgba/#rrggbb/#rrggbbaa、CSS 颜色名与 transparent；空值为黑色。
func ParseColor(v string) (color.Color, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case v == "":
		return canvas.Black, nil
	case v == "transparent" || v == "none":
		return canvas.Transparent, nil
	case strings.HasPrefix(v, "#"):
		hex := v[1:]
		switch len(hex) {
		case 3, 4, 6, 8:
		default:
			return nil, fmt.Errorf("颜色值 %s 无法解析", v)
		}
		for _, ch := range hex {
			if !strings.ContainsRune("0123456789abcdef", ch) {
				return nil, fmt.Errorf("颜色值 %s 无法解析", v)
			}
		}
		return canvas.Hex(v), nil
	}
	if c, ok := colornames.Map[v]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("颜色值 %s 无法解析", v)
}
