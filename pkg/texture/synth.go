package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
)

// Checkerboard fills a width x height image with square cells of the given
// size, alternating c1 and c2. The top-left cell is c1.
func Checkerboard(width, height, cell int, c1, c2 color.NRGBA) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if cell <= 0 {
		return nil, fmt.Errorf("checker cell size %d: %w", cell, ErrInvalidDimensions)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := c1
			if (x/cell+y/cell)%2 != 0 {
				c = c2
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}

// ColoredCheckerboard is Checkerboard with opaque RGB colors.
func ColoredCheckerboard(width, height, cell int, c1, c2 [3]uint8) (*image.NRGBA, error) {
	return Checkerboard(width, height, cell,
		color.NRGBA{R: c1[0], G: c1[1], B: c1[2], A: 255},
		color.NRGBA{R: c2[0], G: c2[1], B: c2[2], A: 255})
}

// UVTestPattern returns a black and white 8x8 checkerboard.
func UVTestPattern(width, height int) (*image.NRGBA, error) {
	return Checkerboard(width, height, max(width/8, 1),
		color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		color.NRGBA{A: 255})
}

// encodeNormal maps a normal from [-1, 1] to the RGB [0, 255] convention of
// tangent-space normal maps.
func encodeNormal(nx, ny, nz float32) color.NRGBA {
	l := math32.Sqrt(nx*nx + ny*ny + nz*nz)
	if l == 0 {
		nx, ny, nz, l = 0, 0, 1, 1
	}
	ch := func(v float32) uint8 {
		return uint8(clampUnit((v/l+1)/2) * 255)
	}
	return color.NRGBA{R: ch(nx), G: ch(ny), B: ch(nz), A: 255}
}

func clampUnit(v float32) float32 {
	return math32.Max(0, math32.Min(1, v))
}

// BumpNormalMap returns a normal map of a single dome centered in the image,
// reaching 80% of the shorter half-extent. bumpHeight scales its steepness.
func BumpNormalMap(width, height int, bumpHeight float32) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	cx, cy := float32(width)/2, float32(height)/2
	maxDist := math32.Min(cx, cy) * 0.8

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float32(x)-cx, float32(y)-cy
			dist := math32.Sqrt(dx*dx + dy*dy)
			if dist <= 0.001 {
				img.SetNRGBA(x, y, encodeNormal(0, 0, 1))
				continue
			}
			t := math32.Min(dist/maxDist, 1)
			strength := (1 - t) * bumpHeight
			nz := math32.Cos((1-t)*math32.Pi/2) * bumpHeight
			if t >= 1 {
				// Flat outside the dome.
				nz = 1
			}
			img.SetNRGBA(x, y, encodeNormal(dx/dist*strength, dy/dist*strength, nz))
		}
	}
	return img, nil
}

// WaveNormalMap returns the normal map of the height field
// amplitude * sin(2*pi*frequency*u) * sin(2*pi*frequency*v).
func WaveNormalMap(width, height int, amplitude, frequency float32) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	k := 2 * math32.Pi * frequency
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ax := float32(x) / float32(width) * k
			ay := float32(y) / float32(height) * k
			dx := -amplitude * math32.Cos(ax) * math32.Sin(ay) * (k / float32(width))
			dy := -amplitude * math32.Sin(ax) * math32.Cos(ay) * (k / float32(height))
			img.SetNRGBA(x, y, encodeNormal(dx, dy, 1))
		}
	}
	return img, nil
}

// RadialAOMap returns an ambient-occlusion map that darkens toward the edge
// of a centered disc, up to 80% occlusion. A positive blur radius softens it
// with a Gaussian blur.
func RadialAOMap(width, height int, blurRadius float64) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	cx, cy := float32(width)/2, float32(height)/2
	maxDist := math32.Min(cx, cy) * 0.9

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			dx, dy := float32(x)-cx, float32(y)-cy
			t := math32.Min(math32.Sqrt(dx*dx+dy*dy)/maxDist, 1)
			img.SetNRGBA(x, y, gray(1-t*0.8))
		}
	}
	return soften(img, blurRadius), nil
}

// GridAOMap returns an ambient-occlusion map with half-occluded grid lines
// every min(width, height)/8 pixels.
func GridAOMap(width, height, lineWidth int) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	grid := max(min(width, height)/8, 1)

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			if x%grid < lineWidth || y%grid < lineWidth {
				c = color.NRGBA{R: 128, G: 128, B: 128, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}

func gray(brightness float32) color.NRGBA {
	v := uint8(clampUnit(brightness) * 255)
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

func soften(img *image.NRGBA, radius float64) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	return ToNRGBA(blur.Gaussian(img, radius))
}

// ToNRGBA returns img as *image.NRGBA, converting when needed.
func ToNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
