package compose

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/ogcard/fonts"
)

const maxResourceSize = 32 << 20

// Loader 读取场景引用的字体与图片：builtin:/embed: 内置字体、http(s) 地址或本地路径。
type Loader struct {
	// BaseDir 是相对路径的基准目录，通常为场景文件所在目录。
	BaseDir string
	Client  *http.Client
}

// Load 返回 src 指向的原始字节。
func (l *Loader) Load(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	switch {
	case src == "":
		return nil, fmt.Errorf("资源地址为空")
	case fonts.IsBuiltin(src):
		return fonts.Load(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.download(ctx, src)
	}
	path := src
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取资源 %s 失败: %w", src, err)
	}
	return data, nil
}

// LoadImage 读取资源并确认其内容为图片。
func (l *Loader) LoadImage(ctx context.Context, src string) ([]byte, error) {
	data, err := l.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("资源 %s 不是图片（%s）", src, ct)
	}
	return data, nil
}

func (l *Loader) download(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("下载 %s 失败: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("下载 %s 返回状态 %s", src, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
	if err != nil {
		return nil, fmt.Errorf("读取 %s 失败: %w", src, err)
	}
	return data, nil
}
