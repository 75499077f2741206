package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"

	"github.com/ByLCY/ogcard/binding"
	"github.com/ByLCY/ogcard/dsl"
	"github.com/ByLCY/ogcard/fonts"
	"github.com/ByLCY/ogcard/layout"
	"github.com/ByLCY/ogcard/provider/googlefonts"
)

const (
	defaultCanvasWidth  = 1200.0
	defaultCanvasHeight = 630.0
	defaultFontSize     = 32.0
	defaultFontWeight   = 400
	defaultFontName     = "Body"
)

// DocumentOptions 控制 DSL 文档到场景的转换。
type DocumentOptions struct {
	// BaseDir 是资源相对路径的基准目录。
	BaseDir string
	// Client 用于下载 http(s) 资源，nil 时使用 http.DefaultClient。
	Client *http.Client
}

type imageResource struct {
	Name   string
	Src    string
	Width  string
	Height string
	Fit    string
}

type docBuilder struct {
	ctx    context.Context
	loader *Loader
	data   any
	colors map[string]string
	images map[string]imageResource
	cache  map[string][]byte
	scene  *Scene
}

// FromDocument 根据 DSL AST 生成场景：收集资源，解析画布参数与 text/image 元素，
// 并把 data 绑定进文本与字符串参数。
func FromDocument(ctx context.Context, doc *dsl.Document, data any, opts DocumentOptions) (*Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	b := &docBuilder{
		ctx:    ctx,
		loader: &Loader{BaseDir: opts.BaseDir, Client: opts.Client},
		data:   data,
		colors: map[string]string{},
		images: map[string]imageResource{},
		cache:  map[string][]byte{},
		scene:  &Scene{Aliases: map[string][]string{}},
	}
	if err := b.collectResources(doc); err != nil {
		return nil, err
	}
	b.scene.Meta = collectMeta(doc, data)

	canvas := doc.Canvas()
	if canvas == nil {
		return nil, fmt.Errorf("文档中缺少 canvas 段落")
	}
	if err := b.buildCanvas(canvas); err != nil {
		return nil, err
	}
	return b.scene, nil
}

func (b *docBuilder) collectResources(doc *dsl.Document) error {
	for _, cmd := range doc.Resources() {
		switch cmd.Name {
		case "font":
			font, err := b.parseFontResource(cmd)
			if err != nil {
				return err
			}
			b.scene.Fonts = append(b.scene.Fonts, font)
		case "fonts":
			if len(cmd.Args) == 0 {
				return fmt.Errorf("第 %d 行 fonts 资源缺少名称", cmd.Pos.Line)
			}
			props := blockProps(cmd.Block, b.data)
			weight := atoiDefault(props["weight"], defaultFontWeight)
			var names []string
			for _, f := range googlefonts.DefaultFonts(weight) {
				b.scene.Fonts = append(b.scene.Fonts, f)
				names = append(names, f.Name)
			}
			b.scene.Aliases[cmd.Args[0].Value] = names
		case "image":
			img := parseImageResource(cmd, b.data)
			if img.Name == "" {
				return fmt.Errorf("第 %d 行 image 资源缺少名称", cmd.Pos.Line)
			}
			b.images[img.Name] = img
		case "color":
			name, value := parseColorResource(cmd)
			if name == "" || value == "" {
				continue
			}
			b.colors[name] = value
		default:
			return fmt.Errorf("第 %d 行：未知资源类型 %s", cmd.Pos.Line, cmd.Name)
		}
	}

	if len(b.scene.Fonts) == 0 {
		data, err := fonts.Load("builtin:go-regular")
		if err != nil {
			return err
		}
		b.scene.Fonts = append(b.scene.Fonts, layout.EmbeddedFont(defaultFontName, data))
	}
	return nil
}

// parseFontResource 支持两种写法：
//
//	font Body { src: "builtin:go-regular" }
//	font JP { google: "Noto Sans JP" weight: 700 }
func (b *docBuilder) parseFontResource(cmd *dsl.Command) (layout.FontSource, error) {
	if len(cmd.Args) == 0 {
		return layout.FontSource{}, fmt.Errorf("第 %d 行 font 资源缺少名称", cmd.Pos.Line)
	}
	name := cmd.Args[0].Value
	props := blockProps(cmd.Block, b.data)
	switch {
	case props["google"] != "":
		return layout.FontSource{
			Name:   name,
			Family: props["google"],
			Weight: atoiDefault(props["weight"], defaultFontWeight),
		}, nil
	case props["src"] != "":
		data, err := b.loader.Load(b.ctx, props["src"])
		if err != nil {
			return layout.FontSource{}, fmt.Errorf("加载字体 %s 失败: %w", name, err)
		}
		return layout.EmbeddedFont(name, data), nil
	case fonts.IsBuiltin(name):
		data, err := fonts.Load(name)
		if err != nil {
			return layout.FontSource{}, err
		}
		return layout.EmbeddedFont(name, data), nil
	default:
		return layout.FontSource{}, fmt.Errorf("字体 %s 缺少 src 或 google", name)
	}
}

func parseImageResource(cmd *dsl.Command, data any) imageResource {
	if len(cmd.Args) == 0 {
		return imageResource{}
	}
	props := blockProps(cmd.Block, data)
	return imageResource{
		Name:   cmd.Args[0].Value,
		Src:    props["src"],
		Width:  props["width"],
		Height: props["height"],
		Fit:    props["fit"],
	}
}

func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) == 0 {
		return "", ""
	}
	name := cmd.Args[0].Value
	value := ""
	if len(cmd.Args) > 1 {
		value = cmd.Args[len(cmd.Args)-1].Value
	}
	return name, value
}

func (b *docBuilder) color(value string) string {
	if c, ok := b.colors[value]; ok {
		return c
	}
	return value
}

func (b *docBuilder) buildCanvas(section *dsl.CanvasSection) error {
	params := parseArgs(section.Params, false, b.data)
	b.scene.Width = parseDimension(params.get("width"), 0, defaultCanvasWidth)
	b.scene.Height = parseDimension(params.get("height"), 0, defaultCanvasHeight)
	b.scene.Background = b.color(params.get("background"))

	for _, cmd := range section.Block.Commands() {
		var (
			el  Element
			err error
		)
		switch cmd.Name {
		case "text":
			el.Text, err = b.textBox(cmd)
		case "image":
			el.Image, err = b.image(cmd)
		default:
			err = fmt.Errorf("第 %d 行：未知命令 %s", cmd.Pos.Line, cmd.Name)
		}
		if err != nil {
			return err
		}
		b.scene.Elements = append(b.scene.Elements, el)
	}
	return nil
}

func (b *docBuilder) textBox(cmd *dsl.Command) (*TextBox, error) {
	if !cmd.Block.HasText() {
		return nil, fmt.Errorf("第 %d 行 text 语句缺少文本块", cmd.Pos.Line)
	}
	args := parseArgs(cmd.Args, false, b.data)
	cw, ch := b.scene.Width, b.scene.Height

	x := parseDimension(args.get("x"), cw, 0)
	size := parseDimension(args.get("size", "font-size"), 0, defaultFontSize)
	return &TextBox{
		Text:       binding.Interpolate(cmd.Block.Text(), b.data),
		X:          x,
		Y:          parseDimension(args.get("y"), ch, 0),
		Width:      parseDimension(args.get("width"), cw, cw-x),
		FontFamily: args.list("fonts", "font"),
		FontSize:   size,
		LineHeight: lineHeight(args.get("line-height"), size),
		LineClamp:  atoiDefault(args.get("clamp", "line-clamp"), 0),
		Align:      layout.ParseAlign(args.get("align")),
		Color:      b.color(args.get("color")),
	}, nil
}

func (b *docBuilder) image(cmd *dsl.Command) (*Image, error) {
	args := parseArgs(cmd.Args, true, b.data)
	res, ok := b.images[args.name]
	if args.name != "" && !ok {
		return nil, fmt.Errorf("第 %d 行：未定义的图片资源 %s", cmd.Pos.Line, args.name)
	}
	src := firstNonEmpty(args.get("src"), res.Src)
	if src == "" {
		return nil, fmt.Errorf("第 %d 行 image 语句缺少资源或 src", cmd.Pos.Line)
	}
	data, err := b.loadImage(src)
	if err != nil {
		return nil, err
	}

	fit := Fit(strings.ToLower(firstNonEmpty(args.get("fit"), res.Fit, string(FitFill))))
	switch fit {
	case FitFill, FitContain, FitCover:
	default:
		return nil, fmt.Errorf("第 %d 行：不支持的 fit %s", cmd.Pos.Line, fit)
	}

	cw, ch := b.scene.Width, b.scene.Height
	img := &Image{
		Name:   firstNonEmpty(args.name, src),
		Data:   data,
		X:      parseDimension(args.get("x"), cw, 0),
		Y:      parseDimension(args.get("y"), ch, 0),
		Width:  parseDimension(firstNonEmpty(args.get("width"), res.Width), cw, 0),
		Height: parseDimension(firstNonEmpty(args.get("height"), res.Height), ch, 0),
		Fit:    fit,
	}
	if img.Width <= 0 || img.Height <= 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("无法识别图片 %s 的尺寸: %w", src, err)
		}
		iw, ih := float64(cfg.Width), float64(cfg.Height)
		switch {
		case img.Width <= 0 && img.Height <= 0:
			img.Width, img.Height = iw, ih
		case img.Width <= 0 && ih > 0:
			img.Width = img.Height * iw / ih
		case img.Height <= 0 && iw > 0:
			img.Height = img.Width * ih / iw
		}
	}
	return img, nil
}

func (b *docBuilder) loadImage(src string) ([]byte, error) {
	if data, ok := b.cache[src]; ok {
		return data, nil
	}
	data, err := b.loader.LoadImage(b.ctx, src)
	if err != nil {
		return nil, err
	}
	b.cache[src] = data
	return data, nil
}

func collectMeta(doc *dsl.Document, data any) Meta {
	meta := Meta{Creator: "ogcard"}
	for _, a := range doc.Meta() {
		switch strings.ToLower(a.Key) {
		case "title":
			meta.Title = valueToString(a.Value, data)
		case "author":
			meta.Author = valueToString(a.Value, data)
		case "subject":
			meta.Subject = valueToString(a.Value, data)
		case "creator":
			meta.Creator = valueToString(a.Value, data)
		case "keywords":
			meta.Keywords = valueToStringSlice(a.Value, data)
		}
	}
	return meta
}

// cmdArgs 是命令参数解析结果：可选的首个名称，以及 key value 与 key [a, b] 形式的属性。
type cmdArgs struct {
	name  string
	props map[string]string
	lists map[string][]string
}

// get 返回第一个非空的属性值。
func (a cmdArgs) get(keys ...string) string {
	for _, k := range keys {
		if v := a.props[k]; v != "" {
			return v
		}
	}
	return ""
}

// list 返回列表属性；单值属性视为一个元素的列表。
func (a cmdArgs) list(keys ...string) []string {
	for _, k := range keys {
		if v, ok := a.lists[k]; ok {
			return v
		}
		if v := a.props[k]; v != "" {
			return []string{v}
		}
	}
	return nil
}

func parseArgs(lexemes []*dsl.Lexeme, allowName bool, data any) cmdArgs {
	args := cmdArgs{props: map[string]string{}, lists: map[string][]string{}}
	cursor := 0
	if allowName && len(lexemes) > 0 && (lexemes[0].Is("Ident", "") || lexemes[0].Is("String", "")) &&
		(len(lexemes) == 1 || lexemes[1].Is("Ident", "")) {
		args.name = lexemes[0].Value
		cursor = 1
	}

	for cursor < len(lexemes)-1 {
		key := lexemes[cursor].Value
		tok := lexemes[cursor+1]
		cursor += 2
		switch {
		case tok.Is("Symbol", "["):
			var items []string
			for ; cursor < len(lexemes) && !lexemes[cursor].Is("Symbol", "]"); cursor++ {
				if lexemes[cursor].Is("Symbol", ",") {
					continue
				}
				items = append(items, argValue(lexemes[cursor], data))
			}
			cursor++
			args.lists[key] = items
		case tok.Is("Symbol", "-") && cursor < len(lexemes):
			args.props[key] = "-" + lexemes[cursor].Value
			cursor++
		default:
			args.props[key] = argValue(tok, data)
		}
	}
	return args
}

func argValue(l *dsl.Lexeme, data any) string {
	if l.Type == "String" {
		return binding.Interpolate(l.Value, data)
	}
	return l.Value
}

func blockProps(block *dsl.Block, data any) map[string]string {
	props := map[string]string{}
	for _, a := range block.Assignments() {
		props[a.Key] = valueToString(a.Value, data)
	}
	return props
}

// valueToString 把属性值转为文本：字符串做插值，表达式按数据路径取值，取不到时保留原文。
func valueToString(val *dsl.Value, data any) string {
	if val == nil {
		return ""
	}
	switch {
	case val.String != nil:
		return binding.Interpolate(string(*val.String), data)
	case val.Number != nil:
		return *val.Number
	case val.Color != nil:
		return *val.Color
	case val.Expr != nil:
		path := val.Expr.Path()
		if v, ok := binding.Resolve(data, path); ok && v != nil {
			return binding.Format(v)
		}
		return path
	default:
		return ""
	}
}

func valueToStringSlice(val *dsl.Value, data any) []string {
	if val == nil {
		return nil
	}
	if val.Array != nil {
		out := make([]string, 0, len(val.Array.Values))
		for _, item := range val.Array.Values {
			if s := valueToString(item, data); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if s := valueToString(val, data); s != "" {
		return []string{s}
	}
	return nil
}

func atoiDefault(v string, fallback int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return n
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
