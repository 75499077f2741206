package compose

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ByLCY/ogcard/dsl"
	"github.com/ByLCY/ogcard/layout"
)

const cardDSL = `
doc Card v1 {
  meta {
    title: "Launch ${product|card}"
    keywords: [
      "og"
      "social"
    ]
    subject: user.company
  }

  resources {
    font Body { src: "builtin:go-regular" }
    font JP { google: "Noto Sans JP" weight: 700 }
    fonts Noto { weight: 400 }
    image Logo { src: "logo.png" }

    color Accent = #0F62FE
  }

  canvas width 1200 height 630 background #fff {
    text x 60 y 80 width 90% size 64 line-height 80 clamp 2 align center color Accent fonts [Body, JP] { "Hello ${user.name} 😀" }
    image Logo x 40 y -8 width 120px height 120 fit cover
  }
}
`

func writeLogo(t *testing.T, w, h int) (string, []byte) {
	t.Helper()
	dir := t.TempDir()
	data := testPNG(t, w, h)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), data, 0o644))
	return dir, data
}

func sceneFromDSL(t *testing.T, src, dir string, data any) (*Scene, error) {
	t.Helper()
	doc, err := dsl.ParseString(src)
	require.NoError(t, err)
	return FromDocument(context.Background(), doc, data, DocumentOptions{BaseDir: dir})
}

func TestFromDocument(t *testing.T) {
	dir, logo := writeLogo(t, 8, 8)
	data := map[string]any{"user": map[string]any{"name": "Ada", "company": "Acme"}}

	scene, err := sceneFromDSL(t, cardDSL, dir, data)
	require.NoError(t, err)

	require.Equal(t, 1200.0, scene.Width)
	require.Equal(t, 630.0, scene.Height)
	require.Equal(t, "#fff", scene.Background)

	require.Len(t, scene.Fonts, 14)
	require.Equal(t, "Body", scene.Fonts[0].Name)
	require.NotEmpty(t, scene.Fonts[0].Data)
	require.Equal(t, layout.FontSource{Name: "JP", Family: "Noto Sans JP", Weight: 700}, scene.Fonts[1])
	require.Len(t, scene.Aliases["Noto"], 12)
	require.Equal(t, "Noto Sans 400", scene.Aliases["Noto"][0])

	require.Equal(t, Meta{
		Title:    "Launch card",
		Subject:  "Acme",
		Creator:  "ogcard",
		Keywords: []string{"og", "social"},
	}, scene.Meta)

	require.Len(t, scene.Elements, 2)
	require.Equal(t, &TextBox{
		Text:       "Hello Ada 😀",
		X:          60,
		Y:          80,
		Width:      1080,
		FontFamily: []string{"Body", "JP"},
		FontSize:   64,
		LineHeight: 80,
		LineClamp:  2,
		Align:      layout.AlignCenter,
		Color:      "#0F62FE",
	}, scene.Elements[0].Text)

	img := scene.Elements[1].Image
	require.NotNil(t, img)
	require.Equal(t, "Logo", img.Name)
	require.Equal(t, logo, img.Data)
	require.Equal(t, 40.0, img.X)
	require.Equal(t, -8.0, img.Y)
	require.Equal(t, 120.0, img.Width)
	require.Equal(t, 120.0, img.Height)
	require.Equal(t, FitCover, img.Fit)
}

// 远程字体没有提供方时被丢弃，内嵌字体照常排版。
func TestFromDocumentThenBuild(t *testing.T) {
	dir, _ := writeLogo(t, 8, 8)
	scene, err := sceneFromDSL(t, cardDSL, dir, map[string]any{"user": map[string]any{"name": "Ada"}})
	require.NoError(t, err)

	frame, err := Build(context.Background(), scene, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, frame.Layers, 2)
	text := frame.Layers[0].Text
	require.Equal(t, []string{"Body"}, text.Fonts)
	require.Equal(t, "Hello", text.Segments[0].Text)
	last := text.Primitives[len(text.Primitives)-1]
	require.Equal(t, layout.PrimitiveImage, last.Kind)
	require.Equal(t, "1f600", last.CodePoint)
	require.Equal(t, "user.company", frame.Meta.Subject)
}

func TestImageIntrinsicSize(t *testing.T) {
	dir, _ := writeLogo(t, 40, 20)
	src := `doc T v1 {
  resources {
    image Logo { src: "logo.png" }
  }
  canvas width 400 height 200 {
    image Logo
    image Logo width 80
    image src "logo.png" height 50%
  }
}`
	scene, err := sceneFromDSL(t, src, dir, nil)
	require.NoError(t, err)
	require.Len(t, scene.Elements, 3)

	first := scene.Elements[0].Image
	require.Equal(t, 40.0, first.Width)
	require.Equal(t, 20.0, first.Height)
	require.Equal(t, FitFill, first.Fit)

	second := scene.Elements[1].Image
	require.Equal(t, 80.0, second.Width)
	require.Equal(t, 40.0, second.Height)

	third := scene.Elements[2].Image
	require.Equal(t, "logo.png", third.Name)
	require.Equal(t, 100.0, third.Height)
	require.Equal(t, 200.0, third.Width)
}

func TestFromDocumentDefaults(t *testing.T) {
	scene, err := sceneFromDSL(t, `doc T v1 {
  canvas {
    text { "hi" }
  }
}`, "", nil)
	require.NoError(t, err)
	require.Equal(t, defaultCanvasWidth, scene.Width)
	require.Equal(t, defaultCanvasHeight, scene.Height)
	require.Len(t, scene.Fonts, 1)
	require.Equal(t, defaultFontName, scene.Fonts[0].Name)

	box := scene.Elements[0].Text
	require.Equal(t, defaultCanvasWidth, box.Width)
	require.Equal(t, defaultFontSize, box.FontSize)
	require.Equal(t, defaultFontSize*1.25, box.LineHeight)
	require.Equal(t, layout.AlignLeft, box.Align)
	require.Empty(t, box.FontFamily)
}

func TestFromDocumentErrors(t *testing.T) {
	cases := map[string]string{
		"缺少 canvas": `doc T v1 {
  meta { title: "x" }
}`,
		"未知命令": `doc T v1 {
  canvas { rect x 1 }
}`,
		"未定义图片": `doc T v1 {
  canvas { image Nope }
}`,
		"字体缺少来源": `doc T v1 {
  resources { font Body { style: "x" } }
  canvas { text { "a" } }
}`,
		"图片文件不存在": `doc T v1 {
  canvas { image src "missing.png" width 10 height 10 }
}`,
		"非法 fit": `doc T v1 {
  resources { image Logo { src: "logo.png" } }
  canvas { image Logo fit stretch }
}`,
		"text 缺少文本块": `doc T v1 {
  canvas { text x 1 }
}`,
	}
	dir, _ := writeLogo(t, 4, 4)
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sceneFromDSL(t, src, dir, nil)
			require.Error(t, err)
		})
	}

	_, err := FromDocument(context.Background(), nil, nil, DocumentOptions{})
	require.Error(t, err)
}

func TestLoaderDownloadsImages(t *testing.T) {
	logo := testPNG(t, 2, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/logo.png":
			_, _ = w.Write(logo)
		case "/page.html":
			_, _ = w.Write([]byte("<html><body>not an image</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := &Loader{Client: srv.Client()}
	data, err := l.LoadImage(context.Background(), srv.URL+"/logo.png")
	require.NoError(t, err)
	require.Equal(t, logo, data)

	_, err = l.LoadImage(context.Background(), srv.URL+"/page.html")
	require.Error(t, err)
	_, err = l.Load(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	_, err = l.Load(context.Background(), "")
	require.Error(t, err)

	font, err := l.Load(context.Background(), "embed:go-mono")
	require.NoError(t, err)
	require.NotEmpty(t, font)
}

func TestParseArgs(t *testing.T) {
	doc, err := dsl.ParseString(`doc T v1 {
  canvas {
    image Logo x -12 fonts [A, "B C"] title "${who|anon}" fit cover
  }
}`)
	require.NoError(t, err)
	cmd := doc.Sections[0].Canvas.Block.Statements[0].Command

	args := parseArgs(cmd.Args, true, nil)
	require.Equal(t, "Logo", args.name)
	require.Equal(t, "-12", args.get("x"))
	require.Equal(t, []string{"A", "B C"}, args.list("fonts"))
	require.Equal(t, "anon", args.get("title"))
	require.Equal(t, "cover", args.get("fit"))
	require.Equal(t, []string{"cover"}, args.list("fit"))
	require.Nil(t, args.list("missing"))
}
