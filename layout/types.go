package layout

// 该文件定义排版流水线各阶段共用的数据结构：分段、字符、行与绘制图元。

import (
	"strings"

	"github.com/ByLCY/ogcard/fonts"
)

// Align 是行内水平对齐方式。
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// ParseAlign 解析 left/right/center（以及 start/end 别名），无法识别时返回 AlignLeft。
func ParseAlign(v string) Align {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "right", "end":
		return AlignRight
	case "center", "middle":
		return AlignCenter
	default:
		return AlignLeft
	}
}

func (a Align) String() string {
	switch a {
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "left"
	}
}

// MarshalText lets Align appear as "left"/"right"/"center" in debug JSON.
func (a Align) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// SegmentKind 区分普通文字段与 emoji 段。
type SegmentKind int

const (
	SegmentWord SegmentKind = iota
	SegmentEmoji
)

func (k SegmentKind) MarshalText() ([]byte, error) {
	if k == SegmentEmoji {
		return []byte("emoji"), nil
	}
	return []byte("word"), nil
}

// Segment 是分段器输出的最小换行单元，按阅读顺序排列。
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// CharKind 区分字形字符与内联图片字符。
type CharKind int

const (
	CharGlyph CharKind = iota
	CharImage
)

func (k CharKind) MarshalText() ([]byte, error) {
	if k == CharImage {
		return []byte("image"), nil
	}
	return []byte("glyph"), nil
}

// Char 是排版的原子单位：文字段中的一个码点，或一个 emoji 段。
type Char struct {
	Kind  CharKind `json:"kind"`
	Width float64  `json:"width"`
	// Segment 为所属分段下标；省略号为 -1。
	Segment int `json:"segment"`

	// 仅 CharGlyph 有效。Face 是提供字形（及轮廓）的字体下标；
	// Resolved 为 false 表示所有字体都缺字，字形取自第一个字体的 .notdef。
	Glyph    fonts.Glyph `json:"glyph"`
	Face     int         `json:"face"`
	Resolved bool        `json:"resolved"`

	// 仅 CharImage 有效。
	CodePoint string `json:"codePoint,omitempty"`
}

// Font returns the index of the font that resolved this glyph, and false when
// no font did (the glyph is the first font's placeholder).
func (c Char) Font() (int, bool) {
	if c.Kind != CharGlyph || !c.Resolved {
		return 0, false
	}
	return c.Face, true
}

// IsSpace reports whether the char is a U+0020 glyph.
func (c Char) IsSpace() bool {
	return c.Kind == CharGlyph && c.Glyph.Rune == ' '
}

// Line 是字符序列上的半开区间 [Start, End) 及其累计宽度（像素）。
type Line struct {
	Start int     `json:"start"`
	End   int     `json:"end"`
	Width float64 `json:"width"`
}

// Len returns the number of chars in the line.
func (l Line) Len() int { return l.End - l.Start }

// PrimitiveKind 区分矢量字形与图片两类绘制图元。
type PrimitiveKind int

const (
	PrimitiveGlyph PrimitiveKind = iota
	PrimitiveImage
)

func (k PrimitiveKind) MarshalText() ([]byte, error) {
	if k == PrimitiveImage {
		return []byte("image"), nil
	}
	return []byte("glyph"), nil
}

// Primitive 是排版的最终输出，坐标相对文本框左上角（像素，y 向下）。
type Primitive struct {
	Kind PrimitiveKind `json:"kind"`
	// 字形的 X/Y 为基线起点；图片的 X/Y 为左上角。
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// PrimitiveGlyph
	Path fonts.Path `json:"-"`
	D    string     `json:"d,omitempty"`
	Fill string     `json:"fill,omitempty"`
	Rune rune       `json:"rune,omitempty"`
	Face int        `json:"face"`

	// PrimitiveImage
	Width     float64 `json:"width,omitempty"`
	Height    float64 `json:"height,omitempty"`
	CodePoint string  `json:"codePoint,omitempty"`
	Data      []byte  `json:"-"`
}

// Result 保存一次排版调用的全部中间结果与输出图元。
type Result struct {
	Segments   []Segment   `json:"segments"`
	Chars      []Char      `json:"chars"`
	Lines      []Line      `json:"lines"`
	Primitives []Primitive `json:"primitives"`
	// Width 为约束宽度，Height = 行数 × 行高。
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Truncated bool    `json:"truncated"`
	// Fonts 记录实际参与回退链的字体名，下标与 Char.Face 对应。
	Fonts []string `json:"fonts"`
}
