// Package googlefonts fetches subset fonts from the Google Fonts css2 API.
package googlefonts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"

	"github.com/ByLCY/ogcard/layout"
)

const (
	// DefaultBaseURL is the css2 stylesheet endpoint.
	DefaultBaseURL = "https://fonts.googleapis.com/css2"
	// DefaultUserAgent 是旧版 Safari 的 UA，Google 对它返回 TTF/OTF 而不是 WOFF2。
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; U; Intel Mac OS X 10_6_8; de-at) AppleWebKit/533.21.1 (KHTML, like Gecko) Version/5.0.5 Safari/533.21.1"

	maxStylesheetSize = 1 << 20
	maxFontSize       = 32 << 20
)

// ErrNoResource 表示样式表中没有 opentype/truetype 格式的字体地址。
var ErrNoResource = errors.New("googlefonts: 样式表中没有可用的字体资源")

// Provider implements layout.FontProvider. The zero value is ready to use.
type Provider struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

var _ layout.FontProvider = (*Provider)(nil)

// DefaultFonts 返回 Noto Sans 系列的默认回退链，覆盖拉丁、中日韩与常见南亚/中东文字。
func DefaultFonts(weight int) []layout.FontSource {
	families := []string{
		"Noto Sans",
		"Noto Sans JP",
		"Noto Sans SC",
		"Noto Sans KR",
		"Noto Sans Thai",
		"Noto Sans Hebrew",
		"Noto Sans Arabic",
		"Noto Sans Bengali",
		"Noto Sans Tamil",
		"Noto Sans Telugu",
		"Noto Sans Malayalam",
		"Noto Sans Devanagari",
	}
	out := make([]layout.FontSource, 0, len(families))
	for _, f := range families {
		out = append(out, layout.RemoteFont(f, weight))
	}
	return out
}

func (p *Provider) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

// StylesheetURL 构造 css2 请求地址，text 用于让 Google 只返回包含这些字符的子集。
func (p *Provider) StylesheetURL(family string, weight int, text string) string {
	base := p.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	fam := strings.ReplaceAll(strings.TrimSpace(family), " ", "+")
	if weight > 0 {
		fam += ":wght@" + strconv.Itoa(weight)
	}
	q := "family=" + fam
	if text != "" {
		q += "&text=" + url.QueryEscape(text)
	}
	if strings.Contains(base, "?") {
		return base + "&" + q
	}
	return base + "?" + q
}

// LoadFont 请求样式表，解析出第一个 opentype/truetype 资源并下载。
func (p *Provider) LoadFont(ctx context.Context, font layout.FontSource, text string) ([]byte, error) {
	if font.Family == "" {
		return nil, fmt.Errorf("googlefonts: 字体 %q 缺少 family", font.Name)
	}
	ua := p.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	sheet, err := p.get(ctx, p.StylesheetURL(font.Family, font.Weight, text), ua, maxStylesheetSize)
	if err != nil {
		return nil, fmt.Errorf("获取 %s 样式表失败: %w", font.Name, err)
	}
	src, err := ResourceURL(string(sheet))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", font.Name, err)
	}
	data, err := p.get(ctx, src, ua, maxFontSize)
	if err != nil {
		return nil, fmt.Errorf("下载字体 %s 失败: %w", font.Name, err)
	}
	return data, nil
}

func (p *Provider) get(ctx context.Context, target, ua string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", ua)
	resp, err := p.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s 返回状态 %s", target, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return data, nil
}

// ResourceURL 从 @font-face 样式表中找出第一个 format('opentype'|'truetype') 对应的 url。
func ResourceURL(stylesheet string) (string, error) {
	lex := css.NewLexer(parse.NewInputString(stylesheet))
	var (
		src        string
		inURL      bool
		inFormat   bool
		formatName string
	)
	for {
		tt, data := lex.Next()
		switch tt {
		case css.ErrorToken:
			return "", ErrNoResource
		case css.URLToken:
			src = unwrapURL(string(data))
		case css.FunctionToken:
			switch strings.ToLower(string(data)) {
			case "url(":
				inURL = true
			case "format(":
				inFormat = true
				formatName = ""
			}
		case css.StringToken:
			value := strings.Trim(string(data), `"'`)
			switch {
			case inURL:
				src = value
			case inFormat && formatName == "":
				formatName = strings.ToLower(value)
			}
		case css.IdentToken:
			if inFormat && formatName == "" {
				formatName = strings.ToLower(string(data))
			}
		case css.RightParenthesisToken:
			if inFormat {
				inFormat = false
				if src != "" && (formatName == "opentype" || formatName == "truetype") {
					return src, nil
				}
			}
			inURL = false
		case css.SemicolonToken, css.RightBraceToken:
			src, inURL, inFormat = "", false, false
		}
	}
}

func unwrapURL(token string) string {
	v := strings.TrimSpace(token)
	if len(v) >= 4 && strings.EqualFold(v[:4], "url(") {
		v = v[4:]
	}
	v = strings.TrimSuffix(v, ")")
	return strings.Trim(strings.TrimSpace(v), `"'`)
}
