package compose

import (
	"math"
	"testing"
)

// TestParseLength 覆盖 px/pt/% 与无单位写法。
func TestParseLength(t *testing.T) {
	cases := []struct {
		in   string
		want Length
	}{
		{"120", Length{Value: 120, Unit: UnitPX}},
		{"120px", Length{Value: 120, Unit: UnitPX}},
		{"12pt", Length{Value: 12, Unit: UnitPT}},
		{"90%", Length{Value: 90, Unit: UnitPercent}},
		{"-8", Length{Value: -8, Unit: UnitPX}},
		{".5", Length{Value: 0.5, Unit: UnitPX}},
	}
	for _, c := range cases {
		got, ok := ParseLength(c.in)
		if !ok || got != c.want {
			t.Fatalf("ParseLength(%q) = %+v, %v，期望 %+v", c.in, got, ok, c.want)
		}
	}
	for _, bad := range []string{"", "abc", "px", "12em"} {
		if _, ok := ParseLength(bad); ok {
			t.Fatalf("ParseLength(%q) 应当失败", bad)
		}
	}
}

// TestLengthPx 验证换算到像素：pt 按 96/72，百分比相对参考长度。
func TestLengthPx(t *testing.T) {
	if got := (Length{Value: 72, Unit: UnitPT}).Px(0); math.Abs(got-96) > 1e-9 {
		t.Fatalf("72pt 期望 96px，实际 %g", got)
	}
	if got := (Length{Value: 90, Unit: UnitPercent}).Px(1200); math.Abs(got-1080) > 1e-9 {
		t.Fatalf("90%% of 1200 期望 1080，实际 %g", got)
	}
	if got := (Length{Value: 40, Unit: UnitPX}).Px(1200); got != 40 {
		t.Fatalf("40px 期望 40，实际 %g", got)
	}
}

// TestLineHeight 覆盖缺省、百分比与绝对行高。
func TestLineHeight(t *testing.T) {
	if got := lineHeight("", 40); got != 50 {
		t.Fatalf("缺省行高期望 50，实际 %g", got)
	}
	if got := lineHeight("150%", 40); got != 60 {
		t.Fatalf("150%% 行高期望 60，实际 %g", got)
	}
	if got := lineHeight("48", 40); got != 48 {
		t.Fatalf("绝对行高期望 48，实际 %g", got)
	}
}
