package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// DetectMIME sniffs the MIME type of encoded image data from its magic bytes.
func DetectMIME(data []byte) (string, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return "", fmt.Errorf("sniffing image type: %w", err)
	}
	if kind == filetype.Unknown || !filetype.IsImage(data) {
		return "", ErrUnsupportedFormat
	}
	return kind.MIME.Value, nil
}

// Decode reads an encoded PNG, JPEG, BMP, WebP or TGA image. TGA has no
// magic number, so it is tried last. The second result is the format name.
func Decode(r io.Reader) (image.Image, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading image: %w", err)
	}
	return decodeBytes(data, "")
}

// Load decodes the image file at path.
func Load(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	img, _, err := decodeBytes(data, strings.ToLower(filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("loading texture %s: %w", path, err)
	}
	return img, nil
}

func decodeBytes(data []byte, ext string) (image.Image, string, error) {
	r := bytes.NewReader(data)
	if ext == ".tga" {
		img, err := tga.Decode(r)
		if err != nil {
			return nil, "", fmt.Errorf("decoding tga: %w", err)
		}
		return img, "tga", nil
	}

	mime, err := DetectMIME(data)
	if err != nil {
		img, tgaErr := tga.Decode(r)
		if tgaErr != nil {
			return nil, "", ErrUnsupportedFormat
		}
		return img, "tga", nil
	}

	var img image.Image
	var name string
	switch mime {
	case MIMEPNG:
		img, err = png.Decode(r)
		name = "png"
	case MIMEJPEG:
		img, err = jpeg.Decode(r)
		name = "jpeg"
	case "image/bmp":
		img, err = bmp.Decode(r)
		name = "bmp"
	case MIMEWebP:
		img, err = webp.Decode(r)
		name = "webp"
	default:
		return nil, "", fmt.Errorf("%s: %w", mime, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, name, nil
}

// Resize scales img to width x height with Catmull-Rom filtering.
func Resize(img image.Image, width, height int) (*image.NRGBA, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst, nil
}
