package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Faultbox/glbforge/pkg/glb"
	"github.com/Faultbox/glbforge/pkg/manifest"
)

func cmdInspect(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	verbose := fs.Bool("v", false, "List meshes, accessors and animations")
	if _, _, _, err := setup(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: glbtool inspect [-v] <file.glb>")
	}

	c, err := glb.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	printSummary(stdout, fs.Arg(0), c)
	if *verbose {
		printDetails(stdout, c.Document)
	}
	return nil
}

func chunkName(typ uint32) string {
	switch typ {
	case glb.ChunkJSON:
		return "JSON"
	case glb.ChunkBIN:
		return "BIN"
	default:
		return fmt.Sprintf("0x%08X", typ)
	}
}

func printSummary(w io.Writer, path string, c *glb.Container) {
	doc := c.Document

	fmt.Fprintf(w, "File:      %s\n", path)
	fmt.Fprintf(w, "Version:   %d\n", c.Header.Version)
	fmt.Fprintf(w, "Length:    %d bytes\n", c.Header.Length)
	fmt.Fprintln(w, "Chunks:")
	for i, ch := range c.Chunks {
		fmt.Fprintf(w, "  %d  %-5s %d bytes\n", i, chunkName(ch.Type), ch.Length)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Asset:     glTF %s", doc.Asset.Version)
	if doc.Asset.Generator != "" {
		fmt.Fprintf(w, " (%s)", doc.Asset.Generator)
	}
	fmt.Fprintln(w)
	if doc.Asset.Copyright != "" {
		fmt.Fprintf(w, "Copyright: %s\n", doc.Asset.Copyright)
	}
	if len(doc.ExtensionsUsed) > 0 {
		fmt.Fprintf(w, "Extensions: %s\n", strings.Join(doc.ExtensionsUsed, ", "))
	}

	scene := "none"
	if doc.Scene != nil {
		scene = fmt.Sprint(*doc.Scene)
	}
	counts := []struct {
		name string
		n    int
	}{
		{"scenes", len(doc.Scenes)},
		{"nodes", len(doc.Nodes)},
		{"meshes", len(doc.Meshes)},
		{"materials", len(doc.Materials)},
		{"textures", len(doc.Textures)},
		{"images", len(doc.Images)},
		{"samplers", len(doc.Samplers)},
		{"accessors", len(doc.Accessors)},
		{"bufferViews", len(doc.BufferViews)},
		{"animations", len(doc.Animations)},
	}
	fmt.Fprintf(w, "Default scene: %s\n", scene)
	for _, cnt := range counts {
		fmt.Fprintf(w, "  %-12s %d\n", cnt.name, cnt.n)
	}
}

func printDetails(w io.Writer, doc *manifest.Document) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Meshes:")
	for i, m := range doc.Meshes {
		fmt.Fprintf(w, "  [%d] %q\n", i, m.Name)
		for p, prim := range m.Primitives {
			semantics := make([]string, 0, len(prim.Attributes))
			for s := range prim.Attributes {
				semantics = append(semantics, s)
			}
			slices.Sort(semantics)

			vertices := 0
			if pos, ok := prim.Attributes[manifest.AttrPosition]; ok && pos < len(doc.Accessors) {
				vertices = doc.Accessors[pos].Count
			}
			fmt.Fprintf(w, "      primitive %d: %d vertices, %s", p, vertices, strings.Join(semantics, " "))
			if prim.Indices != nil && *prim.Indices < len(doc.Accessors) {
				idx := doc.Accessors[*prim.Indices]
				fmt.Fprintf(w, ", %d indices (%s)", idx.Count, idx.ComponentType)
			}
			if prim.Material != nil {
				fmt.Fprintf(w, ", material %d", *prim.Material)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w, "Accessors:")
	for i, a := range doc.Accessors {
		fmt.Fprintf(w, "  [%d] view %d  %-6s %-14s x%d", i, a.BufferView, a.Type, a.ComponentType, a.Count)
		if a.Min != nil {
			fmt.Fprintf(w, "  min %v max %v", a.Min, a.Max)
		}
		fmt.Fprintln(w)
	}

	if len(doc.Animations) > 0 {
		fmt.Fprintln(w, "Animations:")
	}
	for i, a := range doc.Animations {
		fmt.Fprintf(w, "  [%d] %q\n", i, a.Name)
		for _, ch := range a.Channels {
			if ch.Sampler < 0 || ch.Sampler >= len(a.Samplers) {
				fmt.Fprintf(w, "      node %d %s, sampler %d missing\n", ch.Target.Node, ch.Target.Path, ch.Sampler)
				continue
			}
			smp := a.Samplers[ch.Sampler]
			keys := 0
			if smp.Input < len(doc.Accessors) {
				keys = doc.Accessors[smp.Input].Count
			}
			fmt.Fprintf(w, "      node %d %s, %d keys, %s\n", ch.Target.Node, ch.Target.Path, keys, smp.Interpolation)
		}
	}
}
