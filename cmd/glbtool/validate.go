package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/glb"
)

func cmdValidate(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("validate", stderr)
	_, _, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: glbtool validate <file.glb>...")
	}

	failed := 0
	for _, path := range fs.Args() {
		if err := validateFile(path); err != nil {
			failed++
			log.Debug("validation failed", zap.String("path", path), zap.Error(err))
			fmt.Fprintf(stdout, "%s: FAIL: %v\n", path, err)
			continue
		}
		fmt.Fprintf(stdout, "%s: OK\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, fs.NArg())
	}
	return nil
}

// validateFile runs the structural checks and then decodes the file with an
// independent glTF reader, reading back every position and index stream.
func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	c, err := glb.Parse(data)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return crossCheck(data)
}

func crossCheck(data []byte) error {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return fmt.Errorf("gltf decode: %w", err)
	}
	for i, m := range doc.Meshes {
		for p, prim := range m.Primitives {
			pos, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				return fmt.Errorf("mesh %d primitive %d: no POSITION", i, p)
			}
			acc := doc.Accessors[pos]
			positions, err := modeler.ReadPosition(doc, acc, nil)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: positions: %w", i, p, err)
			}
			if len(positions) != int(acc.Count) {
				return fmt.Errorf("mesh %d primitive %d: read %d positions, accessor has %d", i, p, len(positions), acc.Count)
			}
			if prim.Indices == nil {
				continue
			}
			indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d: indices: %w", i, p, err)
			}
			for _, idx := range indices {
				if int(idx) >= len(positions) {
					return fmt.Errorf("mesh %d primitive %d: index %d of %d vertices", i, p, idx, len(positions))
				}
			}
		}
	}
	return nil
}
