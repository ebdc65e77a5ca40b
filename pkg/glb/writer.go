package glb

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
)

// Header is the 12-byte GLB file header.
type Header struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

// ChunkHeader precedes every chunk payload.
type ChunkHeader struct {
	Length uint32
	Type   uint32
}

// Encode writes a GLB container holding jsonData and bin. Both chunks are
// padded to a multiple of 4 bytes, JSON with spaces and BIN with zeros. The
// BIN chunk is omitted when bin is empty.
func Encode(w io.Writer, jsonData, bin []byte) error {
	jsonLen := pad4(len(jsonData))
	total := HeaderSize + ChunkHeaderSize + jsonLen
	binLen := 0
	if len(bin) > 0 {
		binLen = pad4(len(bin))
		total += ChunkHeaderSize + binLen
	}
	if uint64(total) > 0xFFFFFFFF {
		return fmt.Errorf("GLB of %d bytes exceeds 4 GiB: %w", total, ErrInvalidData)
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, Header{Magic, Version, uint32(total)}); err != nil {
		return fmt.Errorf("writing header: %w: %w", ErrIO, err)
	}
	if err := writeChunk(bw, ChunkJSON, jsonData, jsonLen, jsonPad); err != nil {
		return fmt.Errorf("writing JSON chunk: %w: %w", ErrIO, err)
	}
	if binLen > 0 {
		if err := writeChunk(bw, ChunkBIN, bin, binLen, binPad); err != nil {
			return fmt.Errorf("writing BIN chunk: %w: %w", ErrIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing GLB: %w: %w", ErrIO, err)
	}
	return nil
}

func writeChunk(w io.Writer, typ uint32, data []byte, padded int, pad byte) error {
	if err := binary.Write(w, binary.LittleEndian, ChunkHeader{uint32(padded), typ}); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if n := padded - len(data); n > 0 {
		if _, err := w.Write(bytes.Repeat([]byte{pad}, n)); err != nil {
			return err
		}
	}
	return nil
}

// WriteGLB validates the document and writes the complete GLB to w. Nothing
// is written when validation fails. On an I/O error the sink holds a partial
// file.
func (b *Builder) WriteGLB(w io.Writer) error {
	doc, err := b.Document()
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	jsonData, err := manifest.Marshal(doc)
	if err != nil {
		return err
	}
	if err := Encode(w, jsonData, b.buf.Bytes()); err != nil {
		return err
	}
	b.log.Debug("wrote GLB",
		zap.Int("jsonBytes", len(jsonData)),
		zap.Int("binBytes", b.buf.Len()),
		zap.Int("accessors", len(doc.Accessors)),
		zap.Int("meshes", len(doc.Meshes)))
	return nil
}

// Bytes returns the GLB as a byte slice.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.WriteGLB(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the GLB to path. A partially written file is left in
// place on failure.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w: %w", path, ErrIO, err)
	}
	b.log.Info("wrote GLB file", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
