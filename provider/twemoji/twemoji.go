// Package twemoji fetches Twemoji PNG assets by canonical code point.
package twemoji

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/ByLCY/ogcard/layout"
)

// DefaultBaseURL 指向 jsDelivr 上的 twemoji 14.0.2 72x72 PNG 资源。
const DefaultBaseURL = "https://cdn.jsdelivr.net/gh/twitter/twemoji@14.0.2/assets/72x72"

const maxAssetSize = 4 << 20

// ErrNotFound 表示 CDN 上没有该码点的图片。
var ErrNotFound = errors.New("twemoji: 找不到 emoji 图片")

var codePointPattern = regexp.MustCompile(`^[0-9a-f]{1,6}(?:-[0-9a-f]{1,6})*$`)

// Provider implements layout.EmojiProvider. The zero value uses DefaultBaseURL.
type Provider struct {
	Client  *http.Client
	BaseURL string
}

var _ layout.EmojiProvider = (*Provider)(nil)

// URL returns the asset address for a code point such as "1f600" or "1f468-200d-1f469".
func (p *Provider) URL(codePoint string) string {
	base := p.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/" + codePoint + ".png"
}

// Emoji 下载码点对应的 PNG 数据。
func (p *Provider) Emoji(ctx context.Context, codePoint string) ([]byte, error) {
	if !codePointPattern.MatchString(codePoint) {
		return nil, fmt.Errorf("twemoji: 非法码点 %q", codePoint)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL(codePoint), nil)
	if err != nil {
		return nil, err
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求 emoji %s 失败: %w", codePoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, codePoint)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("请求 emoji %s 返回状态 %s", codePoint, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return nil, fmt.Errorf("读取 emoji %s 失败: %w", codePoint, err)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("emoji %s 不是图片数据（%s）", codePoint, ct)
	}
	return data, nil
}
