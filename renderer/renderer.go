package renderer

import "github.com/ByLCY/ogcard/compose"

// Renderer 将合成好的画面输出为最终文件，例如 PNG、SVG 或 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(frame *compose.Frame) ([]byte, error)
}
