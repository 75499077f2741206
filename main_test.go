package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const offlineScene = `doc T v1 {
  meta { title: "${title|card}" }
  resources {
    font Body { src: "builtin:go-regular" }
    color Ink = #222
  }
  canvas width 320 height 160 background #fff {
    text x 16 y 16 width 288 size 24 clamp 2 color Ink fonts [Body] { "Hello ${user.name} 😀" }
  }
}`

func TestRunOffline(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "card.ogcard")
	require.NoError(t, os.WriteFile(in, []byte(offlineScene), 0o644))

	cfg := config{
		input:       in,
		output:      filepath.Join(dir, "out", "card.png"),
		debugPath:   filepath.Join(dir, "debug", "frame.json"),
		data:        `{"user": {"name": "Ada"}}`,
		scale:       1,
		concurrency: 2,
		timeout:     time.Second,
	}
	require.NoError(t, run(context.Background(), cfg))

	out, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, 320, img.Bounds().Dx())
	require.Equal(t, 160, img.Bounds().Dy())

	raw, err := os.ReadFile(cfg.debugPath)
	require.NoError(t, err)
	var frame struct {
		Layers []struct {
			Text struct {
				Segments []struct {
					Text string `json:"text"`
				} `json:"segments"`
			} `json:"text"`
		} `json:"layers"`
		Meta struct {
			Title string `json:"title"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(raw, &frame))
	require.Len(t, frame.Layers, 1)
	require.Equal(t, "Ada", frame.Layers[0].Text.Segments[2].Text)
	require.Equal(t, "card", frame.Meta.Title)
}

func TestRunFormats(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "card.ogcard")
	require.NoError(t, os.WriteFile(in, []byte(offlineScene), 0o644))

	cfg := config{input: in, output: filepath.Join(dir, "card.svg"), timeout: time.Second}
	require.NoError(t, run(context.Background(), cfg))
	out, err := os.ReadFile(cfg.output)
	require.NoError(t, err)
	require.Contains(t, string(out), "<svg")

	cfg.output = filepath.Join(dir, "card.bin")
	cfg.format = "pdf"
	require.NoError(t, run(context.Background(), cfg))
	out, err = os.ReadFile(cfg.output)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	cfg.format = "gif"
	require.Error(t, run(context.Background(), cfg))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, run(context.Background(), config{input: filepath.Join(dir, "missing.ogcard")}))

	bad := filepath.Join(dir, "bad.ogcard")
	require.NoError(t, os.WriteFile(bad, []byte("doc {"), 0o644))
	require.Error(t, run(context.Background(), config{input: bad, output: filepath.Join(dir, "x.png")}))
}

func TestLoadData(t *testing.T) {
	data, err := loadData(`{"user": {"name": "Ada"}}`, "")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"user": map[string]any{"name": "Ada"}}, data)

	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: Launch\ntags:\n  - a\n  - b\n"), 0o644))
	data, err = loadData("ignored", path)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"title": "Launch", "tags": []any{"a", "b"}}, data)

	data, err = loadData("", "")
	require.NoError(t, err)
	require.Nil(t, data)

	_, err = loadData("{", "")
	require.Error(t, err)
	_, err = loadData("", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
