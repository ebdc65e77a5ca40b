package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/internal/config"
	"github.com/Faultbox/glbforge/pkg/glb"
	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/texture"
)

// workspace isolates config lookup and returns a directory holding a small
// config file.
func workspace(t *testing.T) (dir, cfgPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	cfgPath = filepath.Join(dir, "glbforge.yaml")
	writeConfig(t, cfgPath, "demo.glb")
	return dir, cfgPath
}

func writeConfig(t *testing.T, path, name string) {
	t.Helper()
	content := "texture:\n  size: 32\noutput:\n  dir: out\n  name: " + name + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Texture.Size = 32
	return cfg
}

func runCmd(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestBuildDemo(t *testing.T) {
	b, err := buildDemo(smallConfig(), zap.NewNop())
	require.NoError(t, err)

	data, err := b.Bytes()
	require.NoError(t, err)
	c, err := glb.Parse(data)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	require.NoError(t, crossCheck(data))

	doc := c.Document
	assert.Equal(t, []string{manifest.ExtSpecularGlossiness}, doc.ExtensionsUsed)
	assert.Len(t, doc.Images, 3)
	assert.Len(t, doc.Animations, 1)
	assert.Len(t, doc.Animations[0].Channels, 2)
	require.NotNil(t, doc.Scene)
	assert.Len(t, doc.Scenes[*doc.Scene].Nodes, 1)

	var plinth *manifest.Mesh
	for i := range doc.Meshes {
		if doc.Meshes[i].Name == "plinth" {
			plinth = &doc.Meshes[i]
		}
	}
	require.NotNil(t, plinth)
	assert.Len(t, plinth.Primitives, 2)

	_, hasTangent := doc.Meshes[0].Primitives[0].Attributes[manifest.AttrTangent]
	assert.True(t, hasTangent)
	_, hasColor := doc.Meshes[3].Primitives[0].Attributes[manifest.Color(0)]
	assert.True(t, hasColor, "the icosphere carries vertex colors")
}

func TestBuildDemoHonorsConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.Export.Tangents = false
	cfg.Export.Strict = true
	cfg.Texture.Format = "jpeg"
	cfg.Export.Generator = "showcase"

	b, err := buildDemo(cfg, zap.NewNop())
	require.NoError(t, err)
	doc, err := b.Document()
	require.NoError(t, err)

	assert.Equal(t, "showcase", doc.Asset.Generator)
	assert.Equal(t, texture.MIMEJPEG, doc.Images[0].MimeType)
	assert.Equal(t, texture.MIMEPNG, doc.Images[1].MimeType, "normal maps stay lossless")
	for _, m := range doc.Meshes {
		for _, p := range m.Primitives {
			_, ok := p.Attributes[manifest.AttrTangent]
			assert.False(t, ok, "mesh %q", m.Name)
		}
	}
}

func TestDemoInspectValidateExtract(t *testing.T) {
	dir, _ := workspace(t)

	code, stdout, stderr := runCmd(t, "demo")
	require.Equal(t, 0, code, stderr)
	glbPath := filepath.Join("out", "demo.glb")
	assert.Contains(t, stdout, glbPath)

	code, stdout, stderr = runCmd(t, "inspect", "-v", glbPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "JSON")
	assert.Contains(t, stdout, "BIN")
	assert.Contains(t, stdout, "glTF 2.0 (glbforge)")
	assert.Contains(t, stdout, manifest.ExtSpecularGlossiness)
	assert.Contains(t, stdout, `"plinth"`)
	assert.Contains(t, stdout, "node")

	code, stdout, stderr = runCmd(t, "validate", glbPath)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "OK")

	imgDir := filepath.Join(dir, "images")
	code, _, stderr = runCmd(t, "extract", "-out", imgDir, glbPath)
	require.Equal(t, 0, code, stderr)
	files, err := filepath.Glob(filepath.Join(imgDir, "*.png"))
	require.NoError(t, err)
	assert.Len(t, files, 3)

	webpDir := filepath.Join(dir, "webp")
	code, _, stderr = runCmd(t, "extract", "-webp", "-out", webpDir, glbPath)
	require.Equal(t, 0, code, stderr)
	files, err = filepath.Glob(filepath.Join(webpDir, "*.webp"))
	require.NoError(t, err)
	require.Len(t, files, 3)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	mime, err := texture.DetectMIME(data)
	require.NoError(t, err)
	assert.Equal(t, texture.MIMEWebP, mime)
}

func TestValidateReportsBrokenFile(t *testing.T) {
	dir, _ := workspace(t)
	bad := filepath.Join(dir, "bad.glb")
	require.NoError(t, os.WriteFile(bad, []byte("glTF but not really"), 0644))

	code, stdout, stderr := runCmd(t, "validate", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "FAIL")
	assert.Contains(t, stderr, "1 of 1 files failed")
}

func TestUsageErrors(t *testing.T) {
	workspace(t)

	code, _, stderr := runCmd(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, stderr = runCmd(t, "render")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Unknown command: render")

	code, _, stderr = runCmd(t, "inspect")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "usage: glbtool inspect")

	code, stdout, _ := runCmd(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Commands:")

	code, _, _ = runCmd(t, "demo", "-h")
	assert.Equal(t, 0, code)
}

func TestChunkName(t *testing.T) {
	assert.Equal(t, "JSON", chunkName(glb.ChunkJSON))
	assert.Equal(t, "BIN", chunkName(glb.ChunkBIN))
	assert.True(t, strings.HasPrefix(chunkName(7), "0x"))
}

func TestWatchRebuildsOnConfigChange(t *testing.T) {
	_, cfgPath := workspace(t)
	flags := &config.Flags{Config: cfgPath}
	cfg, err := config.Load(flags)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	built := make(chan string, 8)
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, cfgPath, flags, cfg, zap.NewNop(), func(out string) { built <- out })
	}()

	select {
	case out := <-built:
		assert.Equal(t, "demo.glb", filepath.Base(out))
	case <-time.After(10 * time.Second):
		t.Fatal("initial build did not happen")
	}

	writeConfig(t, cfgPath, "second.glb")
	select {
	case out := <-built:
		assert.Equal(t, "second.glb", filepath.Base(out))
		_, err := os.Stat(out)
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("no rebuild after config change")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
