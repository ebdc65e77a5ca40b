package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/glb"
	"github.com/Faultbox/glbforge/pkg/texture"
)

func cmdExtract(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("extract", stderr)
	toWebP := fs.Bool("webp", false, "Re-encode images as WebP")
	cfg, _, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: glbtool extract [-webp] [-out dir] <file.glb>")
	}

	c, err := glb.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	extracted := 0
	for i, img := range c.Document.Images {
		data, mime, err := c.ImageData(i)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading image %d: %v\n", i, err)
			continue
		}
		ext := extension(mime)
		if *toWebP {
			if data, err = reencodeWebP(data); err != nil {
				fmt.Fprintf(stderr, "Error converting image %d: %v\n", i, err)
				continue
			}
			ext = ".webp"
		}

		name := img.Name
		if name == "" {
			name = fmt.Sprintf("image%d", i)
		}
		out := filepath.Join(cfg.Output.Dir, filepath.Base(name)+ext)
		if err := os.WriteFile(out, data, 0644); err != nil {
			fmt.Fprintf(stderr, "Error writing %s: %v\n", out, err)
			continue
		}
		log.Debug("extracted image", zap.Int("image", i), zap.String("path", out), zap.Int("bytes", len(data)))
		fmt.Fprintf(stdout, "Extracted: %s (%d bytes)\n", out, len(data))
		extracted++
	}

	fmt.Fprintf(stderr, "\nExtracted %d of %d images\n", extracted, len(c.Document.Images))
	if extracted < len(c.Document.Images) {
		return fmt.Errorf("%d images could not be extracted", len(c.Document.Images)-extracted)
	}
	return nil
}

func extension(mime string) string {
	switch mime {
	case texture.MIMEJPEG:
		return ".jpg"
	case texture.MIMEWebP:
		return ".webp"
	default:
		return ".png"
	}
}

func reencodeWebP(data []byte) ([]byte, error) {
	img, _, err := texture.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return texture.EncodeWebP(img)
}
