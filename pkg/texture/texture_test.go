package texture

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestCheckerboard(t *testing.T) {
	img, err := Checkerboard(8, 4, 2, red, blue)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, red},
		{1, 1, red},
		{2, 0, blue},
		{0, 2, blue},
		{2, 2, red},
		{7, 3, red},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, img.NRGBAAt(tt.x, tt.y), "pixel (%d, %d)", tt.x, tt.y)
	}
}

func TestCheckerboardInvalid(t *testing.T) {
	_, err := Checkerboard(0, 4, 2, red, blue)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = Checkerboard(4, 4, 0, red, blue)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
	_, err = BumpNormalMap(-1, 4, 1)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestUVTestPattern(t *testing.T) {
	img, err := UVTestPattern(64, 64)
	require.NoError(t, err)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}
	assert.Equal(t, white, img.NRGBAAt(0, 0))
	assert.Equal(t, black, img.NRGBAAt(8, 0))
	assert.Equal(t, white, img.NRGBAAt(63, 63))

	small, err := UVTestPattern(4, 4)
	require.NoError(t, err)
	assert.Equal(t, black, small.NRGBAAt(1, 0), "cells never shrink below one pixel")
}

func TestColoredCheckerboard(t *testing.T) {
	img, err := ColoredCheckerboard(4, 4, 2, [3]uint8{10, 20, 30}, [3]uint8{40, 50, 60})
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, img.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 40, G: 50, B: 60, A: 255}, img.NRGBAAt(3, 0))
}

func TestNormalMaps(t *testing.T) {
	bump, err := BumpNormalMap(64, 64, 1)
	require.NoError(t, err)
	flat := bump.NRGBAAt(32, 32)
	assert.Equal(t, uint8(127), flat.R)
	assert.Equal(t, uint8(127), flat.G)
	assert.Equal(t, uint8(255), flat.B)

	// Right of center the dome tilts toward +X.
	assert.Greater(t, bump.NRGBAAt(45, 32).R, uint8(140))
	// Outside the dome the surface is flat.
	assert.Equal(t, uint8(255), bump.NRGBAAt(0, 0).B)

	wave, err := WaveNormalMap(32, 32, 4, 2)
	require.NoError(t, err)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			assert.Greater(t, wave.NRGBAAt(x, y).B, uint8(127), "wave normals face outward")
		}
	}
}

func TestAOMaps(t *testing.T) {
	radial, err := RadialAOMap(64, 64, 0)
	require.NoError(t, err)
	center := radial.NRGBAAt(32, 32)
	corner := radial.NRGBAAt(0, 0)
	assert.Equal(t, uint8(255), center.R)
	assert.Less(t, corner.R, uint8(60))
	assert.Equal(t, center.R, center.G)

	blurred, err := RadialAOMap(64, 64, 3)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), blurred.Bounds())
	assert.Greater(t, blurred.NRGBAAt(32, 32).R, blurred.NRGBAAt(2, 2).R)

	grid, err := GridAOMap(64, 64, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(128), grid.NRGBAAt(0, 5).R)
	assert.Equal(t, uint8(128), grid.NRGBAAt(9, 5).R)
	assert.Equal(t, uint8(255), grid.NRGBAAt(4, 4).R)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	src, err := Checkerboard(16, 16, 4, red, blue)
	require.NoError(t, err)

	tests := []struct {
		format   Format
		wantMIME string
		lossless bool
	}{
		{PNG, MIMEPNG, true},
		{JPEG, MIMEJPEG, false},
		{WebP, MIMEWebP, true},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			data, err := Encode(src, tt.format, 0)
			require.NoError(t, err)

			mime, err := DetectMIME(data)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMIME, mime)
			assert.Equal(t, tt.wantMIME, tt.format.MIME())

			img, name, err := Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.format.String(), name)
			assert.Equal(t, src.Bounds(), img.Bounds())
			if tt.lossless {
				r, g, b, a := img.At(5, 1).RGBA()
				assert.Equal(t, []uint32{0, 0, 0xffff, 0xffff}, []uint32{r, g, b, a})
			}
		})
	}
}

func TestEncodeJPEGQuality(t *testing.T) {
	src, err := UVTestPattern(64, 64)
	require.NoError(t, err)
	low, err := EncodeJPEG(src, 5)
	require.NoError(t, err)
	high, err := EncodeJPEG(src, 1000)
	require.NoError(t, err)
	assert.Less(t, len(low), len(high))
}

func TestDetectMIMEUnknown(t *testing.T) {
	_, err := DetectMIME([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad(t *testing.T) {
	src, err := Checkerboard(8, 8, 2, red, blue)
	require.NoError(t, err)
	data, err := EncodePNG(src)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "checker.png")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, src.Bounds(), img.Bounds())

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestResize(t *testing.T) {
	src, err := Checkerboard(16, 16, 16, red, blue)
	require.NoError(t, err)
	dst, err := Resize(src, 4, 8)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 8), dst.Bounds())
	px := dst.NRGBAAt(2, 4)
	assert.InDelta(t, 255, int(px.R), 2)
	assert.InDelta(t, 0, int(px.B), 2)

	_, err = Resize(src, 0, 8)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{"JPG", JPEG, false},
		{"image/jpeg", JPEG, false},
		{" webp ", WebP, false},
		{"ktx2", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
