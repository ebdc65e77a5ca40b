package glb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/Faultbox/glbforge/pkg/manifest"
)

// Container is a parsed GLB envelope. It is used by tooling to inspect and
// check files; scene contents are not interpreted beyond the manifest.
type Container struct {
	Header   Header
	Chunks   []ChunkHeader
	JSON     []byte
	BIN      []byte
	Document *manifest.Document
}

// Decode reads a GLB container, checking the header, chunk lengths and
// padding, and unmarshals the JSON chunk.
func Decode(r io.Reader) (*Container, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading GLB: %w: %w", ErrIO, err)
	}
	return Parse(data)
}

// Load reads and decodes the GLB file at path.
func Load(path string) (*Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w: %w", path, ErrIO, err)
	}
	return Parse(data)
}

// Parse decodes a GLB held in memory.
func Parse(data []byte) (*Container, error) {
	var c Container
	rd := bytes.NewReader(data)
	if err := binary.Read(rd, binary.LittleEndian, &c.Header); err != nil {
		return nil, fmt.Errorf("reading header: %w", ErrInvalidData)
	}
	if c.Header.Magic != Magic {
		return nil, fmt.Errorf("magic 0x%08X: %w", c.Header.Magic, ErrInvalidData)
	}
	if c.Header.Version != Version {
		return nil, fmt.Errorf("unsupported GLB version %d: %w", c.Header.Version, ErrInvalidData)
	}
	if int(c.Header.Length) != len(data) {
		return nil, fmt.Errorf("header length %d, file length %d: %w", c.Header.Length, len(data), ErrInvalidData)
	}

	for rd.Len() > 0 {
		var ch ChunkHeader
		if err := binary.Read(rd, binary.LittleEndian, &ch); err != nil {
			return nil, fmt.Errorf("chunk %d: truncated header: %w", len(c.Chunks), ErrInvalidData)
		}
		if ch.Length%4 != 0 {
			return nil, fmt.Errorf("chunk %d: length %d is not a multiple of 4: %w", len(c.Chunks), ch.Length, ErrInvalidData)
		}
		if int(ch.Length) > rd.Len() {
			return nil, fmt.Errorf("chunk %d: length %d exceeds remaining %d bytes: %w", len(c.Chunks), ch.Length, rd.Len(), ErrInvalidData)
		}
		payload := make([]byte, ch.Length)
		if _, err := io.ReadFull(rd, payload); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", len(c.Chunks), ErrInvalidData)
		}

		switch {
		case len(c.Chunks) == 0 && ch.Type != ChunkJSON:
			return nil, fmt.Errorf("first chunk type 0x%08X is not JSON: %w", ch.Type, ErrInvalidData)
		case len(c.Chunks) == 0:
			c.JSON = payload
		case len(c.Chunks) == 1 && ch.Type == ChunkBIN:
			c.BIN = payload
		}
		c.Chunks = append(c.Chunks, ch)
	}
	if len(c.Chunks) == 0 {
		return nil, fmt.Errorf("no JSON chunk: %w", ErrInvalidData)
	}

	doc, err := manifest.Unmarshal(bytes.TrimRight(c.JSON, " "))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidData)
	}
	c.Document = doc
	return &c, nil
}

// Validate runs the manifest validation pass against the BIN payload.
func (c *Container) Validate() error {
	return manifest.Validate(c.Document, len(c.BIN))
}

// ViewData returns the bytes of buffer view i.
func (c *Container) ViewData(i int) ([]byte, error) {
	views := c.Document.BufferViews
	if i < 0 || i >= len(views) {
		return nil, entityErr("bufferView", i, "", "%d of %d: %w", i, len(views), ErrIndexOutOfRange)
	}
	v := views[i]
	end := v.ByteOffset + v.ByteLength
	if v.ByteOffset < 0 || end > len(c.BIN) {
		return nil, entityErr("bufferView", i, "byteLength", "range [%d, %d) exceeds %d bytes: %w",
			v.ByteOffset, end, len(c.BIN), ErrInvalidData)
	}
	return c.BIN[v.ByteOffset:end], nil
}

// ImageData returns the encoded bytes and MIME type of image i.
func (c *Container) ImageData(i int) ([]byte, string, error) {
	images := c.Document.Images
	if i < 0 || i >= len(images) {
		return nil, "", entityErr("image", i, "", "%d of %d: %w", i, len(images), ErrIndexOutOfRange)
	}
	img := images[i]
	if img.BufferView == nil {
		return nil, "", entityErr("image", i, "bufferView", "image is not embedded: %w", ErrInvalidData)
	}
	data, err := c.ViewData(*img.BufferView)
	if err != nil {
		return nil, "", err
	}
	return data, img.MimeType, nil
}
