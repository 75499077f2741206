package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteDebugJSON 将排版结果（或任何可序列化的中间结构）写成缩进 JSON，便于比对与可视化。
func WriteDebugJSON(v any, path string) error {
	if v == nil || path == "" {
		return nil
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化调试数据失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入调试文件 %s 失败: %w", path, err)
	}
	return nil
}
