package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/ogcard/compose"
	"github.com/ByLCY/ogcard/dsl"
	"github.com/ByLCY/ogcard/layout"
	"github.com/ByLCY/ogcard/provider/googlefonts"
	"github.com/ByLCY/ogcard/provider/twemoji"
	"github.com/ByLCY/ogcard/renderer"
	canvasrenderer "github.com/ByLCY/ogcard/renderer/canvas"
)

// config 汇总命令行参数。
type config struct {
	input       string
	output      string
	format      string
	scale       float64
	debugPath   string
	data        string
	dataFile    string
	googleFonts bool
	emoji       bool
	concurrency int
	timeout     time.Duration
	verbose     bool
}

func main() {
	var cfg config
	pflag.StringVarP(&cfg.input, "in", "i", "examples/card.ogcard", "场景 DSL 文件路径")
	pflag.StringVarP(&cfg.output, "out", "o", "output/card.png", "输出文件路径")
	pflag.StringVarP(&cfg.format, "format", "f", "", "输出格式 png/svg/pdf，默认按输出文件扩展名推断")
	pflag.Float64Var(&cfg.scale, "scale", 1, "PNG 输出倍率")
	pflag.StringVar(&cfg.debugPath, "debug", "", "排版调试 JSON 输出路径")
	pflag.StringVar(&cfg.data, "data", "", "绑定到 DSL 的数据（JSON 或 YAML）")
	pflag.StringVar(&cfg.dataFile, "data-file", "", "绑定数据文件（JSON 或 YAML）")
	pflag.BoolVar(&cfg.googleFonts, "google-fonts", true, "通过 Google Fonts 获取远程字体")
	pflag.BoolVar(&cfg.emoji, "twemoji", true, "通过 Twemoji CDN 获取 emoji 图片")
	pflag.IntVar(&cfg.concurrency, "concurrency", 4, "远程请求与文本框排版的并发上限")
	pflag.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "整体超时时间")
	pflag.BoolVarP(&cfg.verbose, "verbose", "v", false, "输出被忽略的字体与绘制问题")
	pflag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("生成图片失败: %v", err)
	}
	log.Printf("已生成：%s", cfg.output)
}

// run 串联解析、合成与渲染。
func run(ctx context.Context, cfg config) error {
	data, err := loadData(cfg.data, cfg.dataFile)
	if err != nil {
		return err
	}

	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.ParseFile(cfg.input, file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	scene, err := compose.FromDocument(ctx, doc, data, compose.DocumentOptions{BaseDir: filepath.Dir(cfg.input)})
	if err != nil {
		return fmt.Errorf("构建场景失败: %w", err)
	}

	var logger *log.Logger
	if cfg.verbose {
		logger = log.New(os.Stderr, "ogcard: ", log.LstdFlags)
	}
	engine := &layout.Engine{Logger: logger, Concurrency: cfg.concurrency}
	if cfg.googleFonts {
		engine.Fonts = &googlefonts.Provider{}
	}
	if cfg.emoji {
		engine.Emoji = &twemoji.Provider{}
	}

	frame, err := compose.Build(ctx, scene, compose.BuildOptions{Engine: engine, Concurrency: cfg.concurrency})
	if err != nil {
		return fmt.Errorf("排版失败: %w", err)
	}

	if cfg.debugPath != "" {
		if err := writeDebug(frame, cfg.debugPath); err != nil {
			return err
		}
	}

	format := canvasrenderer.FormatFromPath(cfg.output)
	if cfg.format != "" {
		if format, err = canvasrenderer.ParseFormat(cfg.format); err != nil {
			return err
		}
	}
	var r renderer.Renderer = canvasrenderer.New(canvasrenderer.Options{
		Format: format,
		Scale:  cfg.scale,
		Logger: logger,
	})
	out, err := r.Render(frame)
	if err != nil {
		return fmt.Errorf("渲染 %s 失败: %w", format, err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(cfg.output, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

// loadData 解析绑定数据；YAML 是 JSON 的超集，两种格式共用一个解码器。
func loadData(inline, path string) (any, error) {
	raw := []byte(inline)
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取数据文件 %s 失败: %w", path, err)
		}
		raw = b
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析绑定数据失败: %w", err)
	}
	return data, nil
}

func writeDebug(frame *compose.Frame, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(frame, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
