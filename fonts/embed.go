package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// builtin 收录随程序分发的 Go 字体，键为 builtin: 之后的名称。
var builtin = map[string][]byte{
	"go-regular": goregular.TTF,
	"go-bold":    gobold.TTF,
	"go-italic":  goitalic.TTF,
	"go-medium":  gomedium.TTF,
	"go-mono":    gomono.TTF,
}

// Load 返回内置字体的字节数据，src 可写为 "builtin:go-regular"、"embed:go-regular" 或直接 "go-regular"。
func Load(src string) ([]byte, error) {
	name := strings.TrimPrefix(src, "builtin:")
	name = strings.TrimPrefix(name, "built-in:")
	name = strings.TrimPrefix(name, "embed:")
	name = strings.ToLower(strings.TrimSpace(name))
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s（可用：%s）", src, strings.Join(Builtins(), ", "))
	}
	return data, nil
}

// IsBuiltin 判断 src 是否指向内置字体。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:") || strings.HasPrefix(src, "embed:")
}

// Builtins 按字母序列出内置字体名称。
func Builtins() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
