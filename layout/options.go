package layout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ByLCY/ogcard/fonts"
)

var (
	// ErrInvalidOptions 表示排版参数不合法（字号、行数限制等）。
	ErrInvalidOptions = errors.New("layout: 排版参数不合法")
	// ErrNoFont 表示存在需要字体的文字，但没有任何字体可用。
	ErrNoFont = errors.New("layout: 没有可用字体")
)

// Options 描述一次文本框排版的全部输入，长度单位均为像素。
type Options struct {
	MaxWidth   float64
	FontSize   float64
	LineHeight float64 // <= 0 时取 FontSize
	LineClamp  int     // 0 表示不限制行数
	Align      Align
	Color      string // 默认 #000
	Fonts      []FontSource
}

// FontSource 是回退链中的一个字体：内嵌字节，或交由 FontProvider 获取的远程字体。
type FontSource struct {
	Name   string
	Data   []byte
	Family string
	Weight int
}

// EmbeddedFont 构造一个内嵌字体来源。
func EmbeddedFont(name string, data []byte) FontSource {
	return FontSource{Name: name, Data: data}
}

// RemoteFont 构造一个远程字体来源（如 Google Fonts 的 "Noto Sans JP", 700）。
func RemoteFont(family string, weight int) FontSource {
	return FontSource{Name: fmt.Sprintf("%s %d", family, weight), Family: family, Weight: weight}
}

// Remote reports whether the font must be fetched through a FontProvider.
func (f FontSource) Remote() bool { return len(f.Data) == 0 && f.Family != "" }

// Shaper 是排版所需的字体能力，fonts.Face 为默认实现。
type Shaper interface {
	UnitsPerEm() float64
	Shape(text string) []fonts.Glyph
	GlyphForRune(r rune) fonts.Glyph
	Outline(g fonts.Glyph, x, y, size float64) (fonts.Path, error)
}

// FontParser 把字体字节解析为 Shaper。
type FontParser func(data []byte) (Shaper, error)

// FontProvider 获取远程字体的二进制数据。text 为待排版文字（含省略号），
// 便于提供方只下载子集。返回 nil 数据或错误都视为字体不可用。
type FontProvider interface {
	LoadFont(ctx context.Context, font FontSource, text string) ([]byte, error)
}

// EmojiProvider 按规范化码点（如 "1f600"、"1f468-200d-1f469"）返回 emoji 图片数据。
type EmojiProvider interface {
	Emoji(ctx context.Context, codePoint string) ([]byte, error)
}

// FontProviderFunc adapts a function to FontProvider.
type FontProviderFunc func(ctx context.Context, font FontSource, text string) ([]byte, error)

func (f FontProviderFunc) LoadFont(ctx context.Context, font FontSource, text string) ([]byte, error) {
	return f(ctx, font, text)
}

// EmojiProviderFunc adapts a function to EmojiProvider.
type EmojiProviderFunc func(ctx context.Context, codePoint string) ([]byte, error)

func (f EmojiProviderFunc) Emoji(ctx context.Context, codePoint string) ([]byte, error) {
	return f(ctx, codePoint)
}

// EmojiError 表示 emoji 图片获取失败，这会使整个排版调用失败。
type EmojiError struct {
	CodePoint string
	Err       error
}

func (e *EmojiError) Error() string {
	return fmt.Sprintf("获取 emoji %s 失败: %v", e.CodePoint, e.Err)
}

func (e *EmojiError) Unwrap() error { return e.Err }

// Engine 持有排版所依赖的外部能力。零值可用：只加载内嵌字体，emoji 只输出码点引用。
type Engine struct {
	Fonts FontProvider
	Emoji EmojiProvider
	// Parse 默认使用 fonts.Parse。
	Parse FontParser
	// Logger 接收被吸收的字体级错误；nil 表示不输出。
	Logger *log.Logger
	// Concurrency 限制同一次调用内并发的远程请求数，<= 0 时为 4。
	Concurrency int
}

func (e *Engine) parser() FontParser {
	if e.Parse != nil {
		return e.Parse
	}
	return func(data []byte) (Shaper, error) {
		face, err := fonts.Parse(data)
		if err != nil {
			return nil, err
		}
		return face, nil
	}
}

func (e *Engine) concurrency() int {
	if e.Concurrency > 0 {
		return e.Concurrency
	}
	return 4
}

func (e *Engine) logf(format string, args ...any) {
	if e.Logger != nil {
		e.Logger.Printf(format, args...)
	}
}

func (o Options) validate() (Options, error) {
	if o.FontSize <= 0 {
		return o, fmt.Errorf("%w: 字号必须大于 0，当前 %g", ErrInvalidOptions, o.FontSize)
	}
	if o.LineClamp < 0 {
		return o, fmt.Errorf("%w: lineClamp 不能为负数，当前 %d", ErrInvalidOptions, o.LineClamp)
	}
	if o.LineHeight <= 0 {
		o.LineHeight = o.FontSize
	}
	if o.Color == "" {
		o.Color = "#000"
	}
	return o, nil
}
