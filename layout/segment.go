package layout

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/segmenter"
	ucd "github.com/go-text/typesetting/unicodedata"
)

// NormalizeSpace 把每一段连续空白折叠为一个 U+0020，必须在分段之前调用。
func NormalizeSpace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '\uFEFF' {
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		sb.WriteRune(r)
	}
	return sb.String()
}

// SplitSegments 将已规范化的文本拆为有序的 word/emoji 分段：
//  1. 按 UAX #29 词边界粗分；
//  2. 在每个粗分段内识别 emoji 字素簇；
//  3. 在 word 段内把每个中日韩字符单独成段，使按段换行对 CJK 退化为逐字换行。
//
// 所有分段文本按顺序拼接即为输入文本。
func SplitSegments(text string) []Segment {
	if text == "" {
		return nil
	}
	var out []Segment
	for _, group := range wordGroups([]rune(text)) {
		for _, seg := range splitEmoji(group) {
			if seg.Kind == SegmentEmoji {
				out = append(out, seg)
				continue
			}
			out = appendCJKSplit(out, seg.Text)
		}
	}
	return out
}

// wordGroups 返回粗分段，每段是若干字素簇。词内的字素簇归为同一组，
// 词与词之间的内容每个字素簇各自成组（等价于 UAX #29 在非词字符间处处可断）。
func wordGroups(runes []rune) [][][]rune {
	var seg segmenter.Segmenter
	seg.Init(runes)

	var words [][2]int
	wi := seg.WordIterator()
	for wi.Next() {
		w := wi.Word()
		if len(w.Text) > 0 {
			words = append(words, [2]int{w.Offset, w.Offset + len(w.Text)})
		}
	}

	var (
		groups  [][][]rune
		current [][]rune
		next    int
		pos     int
		merging bool
	)
	gi := seg.GraphemeIterator()
	for gi.Next() {
		g := gi.Grapheme()
		if len(g.Text) == 0 {
			continue
		}
		end := g.Offset + len(g.Text)
		pos = end
		for next < len(words) && words[next][1] <= g.Offset {
			next++
		}
		if next < len(words) && g.Offset >= words[next][0] {
			current = append(current, g.Text)
			if end >= words[next][1] {
				groups = append(groups, current)
				current = nil
				next++
			}
			merging = false
			continue
		}
		if current != nil {
			groups = append(groups, current)
			current = nil
		}
		// 紧跟在词后的词字符可能不被 WordIterator 报告（如 "漢abc" 中的 abc），这里把它们并回一组
		wordLike := isWordCluster(g.Text)
		if merging && wordLike {
			groups[len(groups)-1] = append(groups[len(groups)-1], g.Text)
		} else {
			groups = append(groups, [][]rune{g.Text})
		}
		merging = wordLike
	}
	if current != nil {
		groups = append(groups, current)
	}
	if pos < len(runes) {
		groups = append(groups, [][]rune{runes[pos:]})
	}
	return groups
}

func isWordCluster(c []rune) bool {
	return unicode.Is(ucd.Word, c[0]) && !isCJK(c[0])
}

// splitEmoji 把一个粗分段拆成交替的 word 段与 emoji 段。
func splitEmoji(clusters [][]rune) []Segment {
	var (
		out  []Segment
		word strings.Builder
	)
	flush := func() {
		if word.Len() > 0 {
			out = append(out, Segment{Kind: SegmentWord, Text: word.String()})
			word.Reset()
		}
	}
	for _, c := range clusters {
		if isEmoji(c) {
			flush()
			out = append(out, Segment{Kind: SegmentEmoji, Text: string(c)})
			continue
		}
		word.WriteString(string(c))
	}
	flush()
	return out
}

func appendCJKSplit(out []Segment, text string) []Segment {
	start := 0
	for i, r := range text {
		if !isCJK(r) {
			continue
		}
		if start < i {
			out = append(out, Segment{Kind: SegmentWord, Text: text[start:i]})
		}
		size := len(string(r))
		out = append(out, Segment{Kind: SegmentWord, Text: text[i : i+size]})
		start = i + size
	}
	if start < len(text) {
		out = append(out, Segment{Kind: SegmentWord, Text: text[start:]})
	}
	return out
}

// isCJK 判断码点的脚本（含脚本扩展）是否为汉字、平假名、片假名或谚文。
func isCJK(r rune) bool {
	switch language.LookupScript(r) {
	case language.Han, language.Hiragana, language.Katakana, language.Hangul:
		return true
	}
	return unicode.Is(cjkExtensions, r)
}

func isRegionalIndicator(r rune) bool { return r >= 0x1F1E6 && r <= 0x1F1FF }

func isSkinTone(r rune) bool { return r >= 0x1F3FB && r <= 0x1F3FF }

func isKeycapBase(r rune) bool { return r == '#' || r == '*' || (r >= '0' && r <= '9') }

// isEmoji 判断一个字素簇是否按 emoji 图片渲染。
func isEmoji(c []rune) bool {
	if len(c) == 0 {
		return false
	}
	if isRegionalIndicator(c[0]) {
		return true
	}
	presented := false
	for _, r := range c {
		switch {
		case r == 0x20E3:
			if isKeycapBase(c[0]) {
				return true
			}
		case r == 0xFE0F, r == 0x200D, isSkinTone(r):
			presented = true
		}
	}
	for _, r := range c {
		if !unicode.Is(ucd.Extended_Pictographic, r) {
			continue
		}
		if presented || unicode.Is(emojiPresentation, r) {
			return true
		}
		if r >= 0x1F000 && !unicode.Is(textPresentation, r) {
			return true
		}
	}
	return false
}

// emojiPresentation 收录 BMP 内默认以 emoji 呈现的码点（Emoji_Presentation=Yes）。
var emojiPresentation = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x231A, Hi: 0x231B, Stride: 1},
		{Lo: 0x23E9, Hi: 0x23EC, Stride: 1},
		{Lo: 0x23F0, Hi: 0x23F0, Stride: 1},
		{Lo: 0x23F3, Hi: 0x23F3, Stride: 1},
		{Lo: 0x25FD, Hi: 0x25FE, Stride: 1},
		{Lo: 0x2614, Hi: 0x2615, Stride: 1},
		{Lo: 0x2648, Hi: 0x2653, Stride: 1},
		{Lo: 0x267F, Hi: 0x267F, Stride: 1},
		{Lo: 0x2693, Hi: 0x2693, Stride: 1},
		{Lo: 0x26A1, Hi: 0x26A1, Stride: 1},
		{Lo: 0x26AA, Hi: 0x26AB, Stride: 1},
		{Lo: 0x26BD, Hi: 0x26BE, Stride: 1},
		{Lo: 0x26C4, Hi: 0x26C5, Stride: 1},
		{Lo: 0x26CE, Hi: 0x26CE, Stride: 1},
		{Lo: 0x26D4, Hi: 0x26D4, Stride: 1},
		{Lo: 0x26EA, Hi: 0x26EA, Stride: 1},
		{Lo: 0x26F2, Hi: 0x26F3, Stride: 1},
		{Lo: 0x26F5, Hi: 0x26F5, Stride: 1},
		{Lo: 0x26FA, Hi: 0x26FA, Stride: 1},
		{Lo: 0x26FD, Hi: 0x26FD, Stride: 1},
		{Lo: 0x2705, Hi: 0x2705, Stride: 1},
		{Lo: 0x270A, Hi: 0x270B, Stride: 1},
		{Lo: 0x2728, Hi: 0x2728, Stride: 1},
		{Lo: 0x274C, Hi: 0x274C, Stride: 1},
		{Lo: 0x274E, Hi: 0x274E, Stride: 1},
		{Lo: 0x2753, Hi: 0x2755, Stride: 1},
		{Lo: 0x2757, Hi: 0x2757, Stride: 1},
		{Lo: 0x2795, Hi: 0x2797, Stride: 1},
		{Lo: 0x27B0, Hi: 0x27B0, Stride: 1},
		{Lo: 0x27BF, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2B1B, Hi: 0x2B1C, Stride: 1},
		{Lo: 0x2B50, Hi: 0x2B50, Stride: 1},
		{Lo: 0x2B55, Hi: 0x2B55, Stride: 1},
	},
}

// textPresentation 是 U+1F000 以上默认按文字呈现的图形符号。
var textPresentation = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F170, Hi: 0x1F171, Stride: 1},
		{Lo: 0x1F17E, Hi: 0x1F17F, Stride: 1},
		{Lo: 0x1F321, Hi: 0x1F32C, Stride: 1},
		{Lo: 0x1F336, Hi: 0x1F336, Stride: 1},
		{Lo: 0x1F37D, Hi: 0x1F37D, Stride: 1},
	},
}

// cjkExtensions 是脚本为 Common/Inherited、但脚本扩展包含 Hani/Hira/Kana/Hang 的码点。
var cjkExtensions = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x3001, Hi: 0x3003, Stride: 1},
		{Lo: 0x3008, Hi: 0x3011, Stride: 1},
		{Lo: 0x3013, Hi: 0x301F, Stride: 1},
		{Lo: 0x302A, Hi: 0x302D, Stride: 1},
		{Lo: 0x3030, Hi: 0x3035, Stride: 1},
		{Lo: 0x3037, Hi: 0x3037, Stride: 1},
		{Lo: 0x303C, Hi: 0x303D, Stride: 1},
		{Lo: 0x3099, Hi: 0x309C, Stride: 1},
		{Lo: 0x30A0, Hi: 0x30A0, Stride: 1},
		{Lo: 0x30FB, Hi: 0x30FC, Stride: 1},
		{Lo: 0x3190, Hi: 0x319F, Stride: 1},
		{Lo: 0x31C0, Hi: 0x31E3, Stride: 1},
		{Lo: 0x3220, Hi: 0x3247, Stride: 1},
		{Lo: 0x3280, Hi: 0x32B0, Stride: 1},
		{Lo: 0x32C0, Hi: 0x32CB, Stride: 1},
		{Lo: 0x32FF, Hi: 0x32FF, Stride: 1},
		{Lo: 0x3358, Hi: 0x3370, Stride: 1},
		{Lo: 0x337B, Hi: 0x337F, Stride: 1},
		{Lo: 0x33E0, Hi: 0x33FE, Stride: 1},
		{Lo: 0xFE45, Hi: 0xFE46, Stride: 1},
		{Lo: 0xFF61, Hi: 0xFF65, Stride: 1},
		{Lo: 0xFF70, Hi: 0xFF70, Stride: 1},
		{Lo: 0xFF9E, Hi: 0xFF9F, Stride: 1},
	},
}

// EmojiCodePoint 返回 emoji 的规范化码点键，与 twemoji 的资源命名一致：
// 小写十六进制码点以 "-" 连接；不含 ZWJ 时去掉 U+FE0F。
func EmojiCodePoint(emoji string) string {
	keepVS := strings.ContainsRune(emoji, 0x200D)
	parts := make([]string, 0, len(emoji)/2)
	for _, r := range emoji {
		if r == 0xFE0F && !keepVS {
			continue
		}
		parts = append(parts, strconv.FormatInt(int64(r), 16))
	}
	return strings.Join(parts, "-")
}
