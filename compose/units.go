package compose

import (
	"strconv"
	"strings"
)

// Unit 是 DSL 长度值书写时的单位。
type Unit int

const (
	UnitPX      Unit = iota // 像素，缺省单位
	UnitPT                  // 点，1pt = 96/72 px
	UnitPercent             // 相对参考长度的百分比
)

// PtToPx 是 CSS 参考像素下 pt 到 px 的换算系数。
const PtToPx = 96.0 / 72.0

func (u Unit) String() string {
	switch u {
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return "px"
	}
}

// Length 保留长度的数值与原始单位，百分比在使用处按参考长度解析。
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Px 把长度换算为像素；百分比相对 reference。
func (l Length) Px(reference float64) float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value * PtToPx
	case UnitPercent:
		return reference * l.Value / 100
	default:
		return l.Value
	}
}

// ParseLength 解析 "120"、"120px"、"12pt"、"90%"，可带负号；无法解析时 ok 为 false。
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitPX
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// parseDimension 解析长度并换算为像素，空值或非法值返回 fallback。
func parseDimension(value string, reference, fallback float64) float64 {
	l, ok := ParseLength(value)
	if !ok {
		return fallback
	}
	return l.Px(reference)
}

// lineHeight 解析行高：百分比相对字号，其余为绝对长度；缺省为字号的 1.25 倍。
func lineHeight(value string, fontSize float64) float64 {
	return parseDimension(value, fontSize, fontSize*1.25)
}
