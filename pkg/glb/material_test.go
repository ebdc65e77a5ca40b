package glb

import (
	"encoding/json"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/math"
	"github.com/Faultbox/glbforge/pkg/texture"
)

func checkerPNG(t *testing.T) []byte {
	t.Helper()
	img, err := texture.Checkerboard(16, 16, 4, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 255})
	require.NoError(t, err)
	data, err := texture.EncodePNG(img)
	require.NoError(t, err)
	return data
}

func ptr[T any](v T) *T { return &v }

func TestMaterialDefaults(t *testing.T) {
	b := New()
	idx, err := b.AddMaterial(NewMaterial("plain"))
	require.NoError(t, err)

	doc := mustDocument(t, b)
	m := doc.Materials[idx]
	require.NotNil(t, m.PBRMetallicRoughness)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, m.PBRMetallicRoughness.BaseColorFactor)
	assert.Equal(t, float32(1), m.PBRMetallicRoughness.MetallicFactor)
	assert.Equal(t, float32(1), m.PBRMetallicRoughness.RoughnessFactor)
	assert.Equal(t, manifest.AlphaOpaque, m.AlphaMode)
	assert.Nil(t, m.EmissiveFactor)
	assert.False(t, m.DoubleSided)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")
}

func TestMetallicMaterialKeepsZeroFactor(t *testing.T) {
	b := New()
	_, err := b.AddMaterial(MetallicMaterial("plastic", math.V4(0.2, 0.4, 0.6, 1), 0, 0.5))
	require.NoError(t, err)

	doc := mustDocument(t, b)
	data, err := json.Marshal(doc.Materials[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"metallicFactor":0`)
	assert.Contains(t, string(data), `"roughnessFactor":0.5`)
}

func TestTexturedMaterial(t *testing.T) {
	b := New()
	img, err := b.AddImage(checkerPNG(t), texture.MIMEPNG)
	require.NoError(t, err)
	smp, err := b.AddSampler(DefaultSampler())
	require.NoError(t, err)
	tex, err := b.AddTexture(img, &smp)
	require.NoError(t, err)

	m := TexturedMaterial("textured", &tex, &tex, &tex)
	m.EmissiveTexture = &tex
	m.AlphaMode = manifest.AlphaMask
	m.AlphaCutoff = ptr(float32(0.5))
	m.DoubleSided = true
	idx, err := b.AddMaterial(m)
	require.NoError(t, err)

	rec := mustDocument(t, b).Materials[idx]
	assert.Equal(t, tex, rec.PBRMetallicRoughness.BaseColorTexture.Index)
	assert.Equal(t, float32(1), rec.NormalTexture.Scale)
	assert.Equal(t, float32(1), rec.OcclusionTexture.Strength)
	assert.Equal(t, &[3]float32{1, 1, 1}, rec.EmissiveFactor)
	assert.Equal(t, float32(0.5), *rec.AlphaCutoff)
	assert.True(t, rec.DoubleSided)
}

func TestAddMaterialErrors(t *testing.T) {
	b := New()

	_, err := b.AddMaterial(TexturedMaterial("missing", ptr(0), nil, nil))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.EqualError(t, err, "material 0: pbrMetallicRoughness.baseColorTexture: texture 0 of 0: index out of range")

	m := NewMaterial("mode")
	m.AlphaMode = "SHINY"
	_, err = b.AddMaterial(m)
	assert.ErrorIs(t, err, ErrInvalidData)

	m = NewMaterial("cutoff")
	m.AlphaCutoff = ptr(float32(0.5))
	_, err = b.AddMaterial(m)
	assert.ErrorIs(t, err, ErrInvariant, "cutoff needs MASK")

	m = NewMaterial("nan")
	m.Roughness = float32NaN()
	_, err = b.AddMaterial(m)
	assert.ErrorIs(t, err, ErrInvalidData)

	assert.Zero(t, b.MaterialCount())
}

func TestSpecularGlossinessExtensionListedOnce(t *testing.T) {
	b := New()
	sg := DefaultSpecularGlossiness()
	sg.Glossiness = 0.3
	first, err := b.AddSpecularGlossinessMaterial(NewMaterial("a"), sg)
	require.NoError(t, err)
	_, err = b.AddSpecularGlossinessMaterial(NewMaterial("b"), DefaultSpecularGlossiness())
	require.NoError(t, err)

	doc := mustDocument(t, b)
	assert.Equal(t, []string{manifest.ExtSpecularGlossiness}, doc.ExtensionsUsed)
	ext := doc.Materials[first].SpecularGlossiness()
	require.NotNil(t, ext)
	assert.Equal(t, float32(0.3), ext.GlossinessFactor)
	assert.Equal(t, [3]float32{1, 1, 1}, ext.SpecularFactor)
	require.NotNil(t, doc.Materials[first].PBRMetallicRoughness, "fallback block is kept")

	data, err := manifest.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"extensions":{"KHR_materials_pbrSpecularGlossiness":{`)
}

func TestSpecularGlossinessBadTexture(t *testing.T) {
	b := New()
	sg := DefaultSpecularGlossiness()
	sg.DiffuseTexture = ptr(2)
	_, err := b.AddSpecularGlossinessMaterial(NewMaterial("x"), sg)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Empty(t, mustDocument(t, b).ExtensionsUsed)
}

func TestAddImage(t *testing.T) {
	b := New()
	png := checkerPNG(t)

	_, err := b.AddImage(png, "image/webp")
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = b.AddImage(nil, texture.MIMEPNG)
	assert.ErrorIs(t, err, ErrInvalidData)

	idx, err := b.AddImageAuto(png)
	require.NoError(t, err)

	doc := mustDocument(t, b)
	img := doc.Images[idx]
	assert.Equal(t, texture.MIMEPNG, img.MimeType)
	require.NotNil(t, img.BufferView)
	view := doc.BufferViews[*img.BufferView]
	assert.Equal(t, len(png), view.ByteLength)
	assert.Zero(t, view.Target, "image views carry no target")

	_, err = b.AddImageAuto([]byte("not an image"))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestAddImageMIMEMismatchWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	b := New(WithLogger(zap.New(core)))
	_, err := b.AddImage(checkerPNG(t), texture.MIMEJPEG)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("image content does not match declared MIME type").Len())
}

func TestEmbedImage(t *testing.T) {
	img, err := texture.UVTestPattern(32, 32)
	require.NoError(t, err)

	b := New()
	idx, err := b.EmbedImage(img, texture.JPEG, 0)
	require.NoError(t, err)
	assert.Equal(t, texture.MIMEJPEG, mustDocument(t, b).Images[idx].MimeType)

	_, err = b.EmbedImage(img, texture.WebP, 0)
	assert.ErrorIs(t, err, ErrInvalidData, "glTF core only embeds PNG and JPEG")
}

func TestSamplersAndTextures(t *testing.T) {
	b := New()
	_, err := b.AddSampler(manifest.Sampler{MagFilter: manifest.FilterLinearMipmapLinear})
	assert.ErrorIs(t, err, ErrInvalidData, "mipmap filters are minification only")
	_, err = b.AddSampler(manifest.Sampler{WrapS: 1})
	assert.ErrorIs(t, err, ErrInvalidData)

	empty, err := b.AddSampler(manifest.Sampler{})
	require.NoError(t, err)

	_, err = b.AddTexture(0, nil)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	img, err := b.AddImage(checkerPNG(t), texture.MIMEPNG)
	require.NoError(t, err)
	_, err = b.AddTexture(img, ptr(4))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	tex, err := b.AddTexture(img, &empty)
	require.NoError(t, err)
	plain, err := b.AddTexture(img, nil)
	require.NoError(t, err)

	doc := mustDocument(t, b)
	assert.Equal(t, empty, *doc.Textures[tex].Sampler)
	assert.Nil(t, doc.Textures[plain].Sampler)

	data, err := json.Marshal(doc.Samplers[empty])
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestDefaultSampler(t *testing.T) {
	s := DefaultSampler()
	assert.Equal(t, manifest.Filter(9729), s.MagFilter)
	assert.Equal(t, manifest.Filter(9987), s.MinFilter)
	assert.Equal(t, manifest.Wrap(10497), s.WrapS)
	assert.Equal(t, manifest.Wrap(10497), s.WrapT)
}
