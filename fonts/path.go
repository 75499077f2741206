package fonts

import (
	"math"
	"strconv"
	"strings"
)

// Op identifies the drawing operation of a path segment.
type Op uint8

const (
	MoveTo Op = iota
	LineTo
	QuadTo
	CubeTo
	Close
)

// Point is a position in pixels, y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Segment is one drawing step. Only the first n points are meaningful:
// 1 for MoveTo/LineTo, 2 for QuadTo, 3 for CubeTo, 0 for Close.
type Segment struct {
	Op     Op       `json:"op"`
	Points [3]Point `json:"points"`
}

// Path 是一个字形的矢量轮廓，坐标已经换算为像素并平移到绘制位置。
type Path []Segment

func (op Op) arity() int {
	switch op {
	case MoveTo, LineTo:
		return 1
	case QuadTo:
		return 2
	case CubeTo:
		return 3
	default:
		return 0
	}
}

// Empty reports whether the path draws nothing (e.g. a space glyph).
func (p Path) Empty() bool {
	for _, seg := range p {
		if seg.Op != MoveTo && seg.Op != Close {
			return false
		}
	}
	return true
}

// Bounds 返回控制点的包围盒 (minX, minY, maxX, maxY)；空路径返回全零。
func (p Path) Bounds() (minX, minY, maxX, maxY float64) {
	first := true
	for _, seg := range p {
		for i := 0; i < seg.Op.arity(); i++ {
			pt := seg.Points[i]
			if first {
				minX, maxX, minY, maxY = pt.X, pt.X, pt.Y, pt.Y
				first = false
				continue
			}
			minX = math.Min(minX, pt.X)
			maxX = math.Max(maxX, pt.X)
			minY = math.Min(minY, pt.Y)
			maxY = math.Max(maxY, pt.Y)
		}
	}
	return minX, minY, maxX, maxY
}

// SVG 输出 SVG path 的 d 属性，decimals 为保留的小数位数。
func (p Path) SVG(decimals int) string {
	var sb strings.Builder
	num := func(v float64) {
		sb.WriteString(formatNumber(v, decimals))
	}
	for _, seg := range p {
		switch seg.Op {
		case MoveTo:
			sb.WriteByte('M')
		case LineTo:
			sb.WriteByte('L')
		case QuadTo:
			sb.WriteByte('Q')
		case CubeTo:
			sb.WriteByte('C')
		case Close:
			sb.WriteByte('Z')
			continue
		}
		for i := 0; i < seg.Op.arity(); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			num(seg.Points[i].X)
			sb.WriteByte(' ')
			num(seg.Points[i].Y)
		}
	}
	return sb.String()
}

// formatNumber 按 decimals 位小数格式化并去掉多余的 0。
func formatNumber(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
