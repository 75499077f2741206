package compose

// 该文件定义场景（输入）与画面（输出）的数据结构，供排版、渲染与调试 JSON 共用。

import (
	"github.com/ByLCY/ogcard/layout"
)

// Scene 描述一张待合成的图片：画布尺寸、背景、可用字体与按绘制顺序排列的元素。
type Scene struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background,omitempty"` // 为空时不绘制背景
	// Fonts 是场景内可按名字引用的字体。
	Fonts []layout.FontSource `json:"-"`
	// Aliases 把一个名字展开为多个字体名，例如 Noto 默认回退链。
	Aliases  map[string][]string `json:"aliases,omitempty"`
	Elements []Element           `json:"elements"`
	Meta     Meta                `json:"meta"`
}

// Meta 对应 DSL 的 meta 段，PDF 输出时写入文档信息。
type Meta struct {
	Title    string   `json:"title,omitempty"`
	Subject  string   `json:"subject,omitempty"`
	Author   string   `json:"author,omitempty"`
	Creator  string   `json:"creator,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// Element 是文本框或图片之一。
type Element struct {
	Text  *TextBox `json:"text,omitempty"`
	Image *Image   `json:"image,omitempty"`
}

// TextBox 是一个定宽文本框，坐标为画布上的左上角（像素）。
type TextBox struct {
	Text       string       `json:"text"`
	X          float64      `json:"x"`
	Y          float64      `json:"y"`
	Width      float64      `json:"width"`
	FontFamily []string     `json:"fontFamily"` // 为空时使用场景内全部字体
	FontSize   float64      `json:"fontSize"`
	LineHeight float64      `json:"lineHeight"`
	LineClamp  int          `json:"lineClamp,omitempty"`
	Align      layout.Align `json:"align"`
	Color      string       `json:"color,omitempty"`
}

// Fit 决定图片如何放进目标矩形。
type Fit string

const (
	FitFill    Fit = "fill"    // 拉伸
	FitContain Fit = "contain" // 等比缩放到完全可见
	FitCover   Fit = "cover"   // 等比缩放并裁剪以铺满
)

// Image 是一张位图，Data 为 PNG/JPEG/GIF/WebP 编码数据。
type Image struct {
	Name   string  `json:"name,omitempty"`
	Data   []byte  `json:"-"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Fit    Fit     `json:"fit,omitempty"`
}

// Frame 是合成结果：按元素顺序排列的图层，可直接交给渲染器。
type Frame struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background string  `json:"background,omitempty"`
	Layers     []Layer `json:"layers"`
	Meta       Meta    `json:"meta"`
}

// Layer 是一个已定位的元素；Text 的图元坐标相对 (X, Y)。
type Layer struct {
	X     float64        `json:"x"`
	Y     float64        `json:"y"`
	Text  *layout.Result `json:"text,omitempty"`
	Image *Image         `json:"image,omitempty"`
}
