package manifest

import (
	"slices"
	"strconv"

	"github.com/chewxy/math32"
)

// Validate checks the structural rules of a document before it is written:
// every cross-reference resolves, the node hierarchy is a forest, accessors
// fit their views, views fit the buffer and counts agree where glTF requires
// it. binLength is the unpadded size of the binary chunk payload; pass a
// negative value to skip the buffer-size check. The first violation found
// is returned as an *EntityError.
func Validate(doc *Document, binLength int) error {
	v := validator{doc: doc, binLength: binLength}
	checks := []func() error{
		v.asset,
		v.buffers,
		v.bufferViews,
		v.accessors,
		v.images,
		v.samplers,
		v.textures,
		v.materials,
		v.meshes,
		v.nodes,
		v.scenes,
		v.animations,
		v.extensions,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type validator struct {
	doc       *Document
	binLength int
	parent    []int // filled by nodes, read by scenes
}

func finite(values ...float32) bool {
	for _, f := range values {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}

func inRange(i, n int) bool { return i >= 0 && i < n }

func (v *validator) asset() error {
	if v.doc.Asset.Version != Version {
		return Errorf("asset", 0, "version", "%q: %w", v.doc.Asset.Version, ErrInvalidData)
	}
	return nil
}

func (v *validator) buffers() error {
	if len(v.doc.Buffers) > 1 {
		return Errorf("buffer", 1, "", "only one embedded buffer is allowed: %w", ErrInvariant)
	}
	for i, b := range v.doc.Buffers {
		if b.ByteLength <= 0 {
			return Errorf("buffer", i, "byteLength", "%d: %w", b.ByteLength, ErrInvalidData)
		}
		if v.binLength >= 0 && b.ByteLength > v.binLength {
			return Errorf("buffer", i, "byteLength", "%d exceeds binary chunk of %d bytes: %w",
				b.ByteLength, v.binLength, ErrIndexOutOfRange)
		}
	}
	return nil
}

func (v *validator) bufferViews() error {
	for i, bv := range v.doc.BufferViews {
		if !inRange(bv.Buffer, len(v.doc.Buffers)) {
			return outOfRange("bufferView", i, "buffer", bv.Buffer, len(v.doc.Buffers))
		}
		if bv.ByteOffset < 0 || bv.ByteOffset%4 != 0 {
			return Errorf("bufferView", i, "byteOffset", "%d is not 4-byte aligned: %w", bv.ByteOffset, ErrInvariant)
		}
		if bv.ByteLength <= 0 {
			return Errorf("bufferView", i, "byteLength", "%d: %w", bv.ByteLength, ErrInvalidData)
		}
		if end, size := bv.ByteOffset+bv.ByteLength, v.doc.Buffers[bv.Buffer].ByteLength; end > size {
			return Errorf("bufferView", i, "byteLength", "ends at %d past buffer length %d: %w", end, size, ErrIndexOutOfRange)
		}
		if bv.Target != 0 && bv.Target != TargetArrayBuffer && bv.Target != TargetElementArrayBuffer {
			return Errorf("bufferView", i, "target", "%d: %w", bv.Target, ErrInvalidData)
		}
	}
	return nil
}

func (v *validator) accessors() error {
	for i := range v.doc.Accessors {
		a := &v.doc.Accessors[i]
		if !inRange(a.BufferView, len(v.doc.BufferViews)) {
			return outOfRange("accessor", i, "bufferView", a.BufferView, len(v.doc.BufferViews))
		}
		size := a.ComponentType.Size()
		if size == 0 {
			return Errorf("accessor", i, "componentType", "%v: %w", a.ComponentType, ErrInvalidData)
		}
		comps := a.Type.Components()
		if comps == 0 {
			return Errorf("accessor", i, "type", "%q: %w", a.Type, ErrInvalidData)
		}
		if a.Count <= 0 {
			return Errorf("accessor", i, "count", "%d: %w", a.Count, ErrInvalidData)
		}
		if a.ByteOffset%size != 0 {
			return Errorf("accessor", i, "byteOffset", "%d is not a multiple of %d: %w", a.ByteOffset, size, ErrInvariant)
		}
		view := v.doc.BufferViews[a.BufferView]
		if end := a.ByteOffset + a.ByteLength(); end > view.ByteLength {
			return Errorf("accessor", i, "count", "needs %d bytes, view %d has %d: %w",
				end, a.BufferView, view.ByteLength, ErrIndexOutOfRange)
		}
		if (a.Min == nil) != (a.Max == nil) {
			return Errorf("accessor", i, "min", "min and max must be set together: %w", ErrInvariant)
		}
		if a.Min != nil && (len(a.Min) != comps || len(a.Max) != comps) {
			return Errorf("accessor", i, "min", "%d/%d bounds for %s: %w", len(a.Min), len(a.Max), a.Type, ErrAttributeMismatch)
		}
		if !finite(a.Min...) || !finite(a.Max...) {
			return Errorf("accessor", i, "min", "bounds must be finite: %w", ErrInvalidData)
		}
	}
	return nil
}

func (v *validator) images() error {
	for i, img := range v.doc.Images {
		if img.BufferView == nil {
			return Errorf("image", i, "bufferView", "embedded images need a buffer view: %w", ErrInvariant)
		}
		if !inRange(*img.BufferView, len(v.doc.BufferViews)) {
			return outOfRange("image", i, "bufferView", *img.BufferView, len(v.doc.BufferViews))
		}
		if img.MimeType != "image/png" && img.MimeType != "image/jpeg" {
			return Errorf("image", i, "mimeType", "%q: %w", img.MimeType, ErrInvalidData)
		}
	}
	return nil
}

func (v *validator) samplers() error {
	for i, s := range v.doc.Samplers {
		if s.MagFilter != 0 && !s.MagFilter.IsMagFilter() {
			return Errorf("sampler", i, "magFilter", "%d: %w", s.MagFilter, ErrInvalidData)
		}
		if s.MinFilter != 0 && !s.MinFilter.IsMinFilter() {
			return Errorf("sampler", i, "minFilter", "%d: %w", s.MinFilter, ErrInvalidData)
		}
		if s.WrapS != 0 && !s.WrapS.Valid() {
			return Errorf("sampler", i, "wrapS", "%d: %w", s.WrapS, ErrInvalidData)
		}
		if s.WrapT != 0 && !s.WrapT.Valid() {
			return Errorf("sampler", i, "wrapT", "%d: %w", s.WrapT, ErrInvalidData)
		}
	}
	return nil
}

func (v *validator) textures() error {
	for i, t := range v.doc.Textures {
		if !inRange(t.Source, len(v.doc.Images)) {
			return outOfRange("texture", i, "source", t.Source, len(v.doc.Images))
		}
		if t.Sampler != nil && !inRange(*t.Sampler, len(v.doc.Samplers)) {
			return outOfRange("texture", i, "sampler", *t.Sampler, len(v.doc.Samplers))
		}
	}
	return nil
}

func (v *validator) materials() error {
	for i := range v.doc.Materials {
		m := &v.doc.Materials[i]
		for _, ref := range m.textureRefs() {
			if !inRange(ref.index, len(v.doc.Textures)) {
				return outOfRange("material", i, ref.field, ref.index, len(v.doc.Textures))
			}
		}
		if m.AlphaMode != "" && !m.AlphaMode.Valid() {
			return Errorf("material", i, "alphaMode", "%q: %w", m.AlphaMode, ErrInvalidData)
		}
		if pbr := m.PBRMetallicRoughness; pbr != nil {
			if !finite(pbr.BaseColorFactor[:]...) || !finite(pbr.MetallicFactor, pbr.RoughnessFactor) {
				return Errorf("material", i, "pbrMetallicRoughness", "factors must be finite: %w", ErrInvalidData)
			}
		}
		if m.EmissiveFactor != nil && !finite(m.EmissiveFactor[:]...) {
			return Errorf("material", i, "emissiveFactor", "must be finite: %w", ErrInvalidData)
		}
		if m.AlphaCutoff != nil && (!finite(*m.AlphaCutoff) || *m.AlphaCutoff < 0) {
			return Errorf("material", i, "alphaCutoff", "%v: %w", *m.AlphaCutoff, ErrInvalidData)
		}
		if sg := m.SpecularGlossiness(); sg != nil {
			if !finite(sg.DiffuseFactor[:]...) || !finite(sg.SpecularFactor[:]...) || !finite(sg.GlossinessFactor) {
				return Errorf("material", i, "extensions", "factors must be finite: %w", ErrInvalidData)
			}
		}
	}
	return nil
}

func (v *validator) accessor(kind string, index int, field string, ref int) (*Accessor, error) {
	if !inRange(ref, len(v.doc.Accessors)) {
		return nil, outOfRange(kind, index, field, ref, len(v.doc.Accessors))
	}
	return &v.doc.Accessors[ref], nil
}

func (v *validator) meshes() error {
	for i, m := range v.doc.Meshes {
		if len(m.Primitives) == 0 {
			return Errorf("mesh", i, "primitives", "mesh has no primitives: %w", ErrInvariant)
		}
		for p, prim := range m.Primitives {
			if err := v.primitive(i, p, &prim); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) primitive(mesh, p int, prim *Primitive) error {
	field := func(name string) string {
		return "primitives[" + strconv.Itoa(p) + "]." + name
	}
	pos, ok := prim.Attributes[AttrPosition]
	if !ok {
		return Errorf("mesh", mesh, field("attributes"), "missing %s: %w", AttrPosition, ErrAttributeMismatch)
	}
	posAcc, err := v.accessor("mesh", mesh, field(AttrPosition), pos)
	if err != nil {
		return err
	}
	if posAcc.Type != Vec3 || posAcc.ComponentType != Float {
		return Errorf("mesh", mesh, field(AttrPosition), "%s %v: %w", posAcc.Type, posAcc.ComponentType, ErrInvalidData)
	}
	if posAcc.Min == nil {
		return Errorf("mesh", mesh, field(AttrPosition), "position accessor %d has no bounds: %w", pos, ErrInvariant)
	}

	semantics := make([]string, 0, len(prim.Attributes))
	for s := range prim.Attributes {
		semantics = append(semantics, s)
	}
	slices.Sort(semantics)
	for _, s := range semantics {
		acc, err := v.accessor("mesh", mesh, field(s), prim.Attributes[s])
		if err != nil {
			return err
		}
		if acc.Count != posAcc.Count {
			return Errorf("mesh", mesh, field(s), "%d elements, %s has %d: %w",
				acc.Count, AttrPosition, posAcc.Count, ErrAttributeMismatch)
		}
	}

	if prim.Indices != nil {
		idx, err := v.accessor("mesh", mesh, field("indices"), *prim.Indices)
		if err != nil {
			return err
		}
		if idx.Type != Scalar {
			return Errorf("mesh", mesh, field("indices"), "type %s: %w", idx.Type, ErrInvalidData)
		}
		switch idx.ComponentType {
		case UnsignedByte, UnsignedShort, UnsignedInt:
		default:
			return Errorf("mesh", mesh, field("indices"), "component type %v: %w", idx.ComponentType, ErrInvalidData)
		}
		if idx.Count%3 != 0 {
			return Errorf("mesh", mesh, field("indices"), "%d indices do not form triangles: %w", idx.Count, ErrInvariant)
		}
		if view := v.doc.BufferViews[idx.BufferView]; view.Target != 0 && view.Target != TargetElementArrayBuffer {
			return Errorf("mesh", mesh, field("indices"), "view %d target %d: %w", idx.BufferView, view.Target, ErrInvalidData)
		}
	}
	if prim.Material != nil && !inRange(*prim.Material, len(v.doc.Materials)) {
		return outOfRange("mesh", mesh, field("material"), *prim.Material, len(v.doc.Materials))
	}
	if prim.Mode != ModeTriangles {
		return Errorf("mesh", mesh, field("mode"), "%d: %w", prim.Mode, ErrInvalidData)
	}
	return nil
}

func (v *validator) nodes() error {
	n := len(v.doc.Nodes)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = -1
	}

	for i := range v.doc.Nodes {
		node := &v.doc.Nodes[i]
		if node.Mesh != nil && !inRange(*node.Mesh, len(v.doc.Meshes)) {
			return outOfRange("node", i, "mesh", *node.Mesh, len(v.doc.Meshes))
		}
		if node.Matrix != nil && node.HasTRS() {
			return Errorf("node", i, "matrix", "matrix and TRS are both set: %w", ErrInvariant)
		}
		if !nodeFinite(node) {
			return Errorf("node", i, "transform", "must be finite: %w", ErrInvalidData)
		}
		if r := node.Rotation; r != nil {
			if l := math32.Sqrt(r[0]*r[0] + r[1]*r[1] + r[2]*r[2] + r[3]*r[3]); math32.Abs(l-1) > 1e-3 {
				return Errorf("node", i, "rotation", "length %g is not 1: %w", l, ErrInvalidData)
			}
		}
		for _, c := range node.Children {
			if !inRange(c, n) {
				return outOfRange("node", i, "children", c, n)
			}
			if c == i {
				return Errorf("node", i, "children", "node is its own child: %w", ErrInvariant)
			}
			if parent[c] >= 0 {
				return Errorf("node", c, "", "child of both node %d and node %d: %w", parent[c], i, ErrInvariant)
			}
			parent[c] = i
		}
	}

	// With at most one parent per node, a cycle is a parent chain that never
	// reaches a root.
	state := make([]uint8, n) // 0 unvisited, 1 on the current chain, 2 reaches a root
	for i := range v.doc.Nodes {
		var chain []int
		j := i
		for j >= 0 && state[j] == 0 {
			state[j] = 1
			chain = append(chain, j)
			j = parent[j]
		}
		if j >= 0 && state[j] == 1 {
			return Errorf("node", j, "children", "hierarchy contains a cycle: %w", ErrInvariant)
		}
		for _, c := range chain {
			state[c] = 2
		}
	}
	v.parent = parent
	return nil
}

func nodeFinite(n *Node) bool {
	if n.Matrix != nil && !finite(n.Matrix[:]...) {
		return false
	}
	if n.Translation != nil && !finite(n.Translation[:]...) {
		return false
	}
	if n.Rotation != nil && !finite(n.Rotation[:]...) {
		return false
	}
	if n.Scale != nil && !finite(n.Scale[:]...) {
		return false
	}
	return true
}

func (v *validator) scenes() error {
	if v.doc.Scene != nil && !inRange(*v.doc.Scene, len(v.doc.Scenes)) {
		return outOfRange("scene", *v.doc.Scene, "", *v.doc.Scene, len(v.doc.Scenes))
	}
	for i, s := range v.doc.Scenes {
		for _, root := range s.Nodes {
			if !inRange(root, len(v.doc.Nodes)) {
				return outOfRange("scene", i, "nodes", root, len(v.doc.Nodes))
			}
			if p := v.parent[root]; p >= 0 {
				return Errorf("scene", i, "nodes", "node %d is a child of node %d: %w", root, p, ErrInvariant)
			}
		}
	}
	return nil
}

func (v *validator) animations() error {
	for i, anim := range v.doc.Animations {
		if len(anim.Channels) == 0 || len(anim.Samplers) == 0 {
			return Errorf("animation", i, "channels", "animation has no tracks: %w", ErrInvariant)
		}
		paths := make([]Path, len(anim.Samplers))
		targets := make(map[ChannelTarget]int, len(anim.Channels))
		for c, ch := range anim.Channels {
			field := "channels[" + strconv.Itoa(c) + "]"
			if !inRange(ch.Sampler, len(anim.Samplers)) {
				return outOfRange("animation", i, field+".sampler", ch.Sampler, len(anim.Samplers))
			}
			if !inRange(ch.Target.Node, len(v.doc.Nodes)) {
				return outOfRange("animation", i, field+".target.node", ch.Target.Node, len(v.doc.Nodes))
			}
			if ch.Target.Path.ElementType() == "" {
				return Errorf("animation", i, field+".target.path", "%q: %w", ch.Target.Path, ErrInvalidData)
			}
			if v.doc.Nodes[ch.Target.Node].Matrix != nil {
				return Errorf("animation", i, field+".target.node", "node %d uses a matrix: %w", ch.Target.Node, ErrInvariant)
			}
			if prev, ok := targets[ch.Target]; ok {
				return Errorf("animation", i, field+".target", "same target as channel %d: %w", prev, ErrInvariant)
			}
			targets[ch.Target] = c
			paths[ch.Sampler] = ch.Target.Path
		}
		for s, smp := range anim.Samplers {
			field := "samplers[" + strconv.Itoa(s) + "]"
			if !smp.Interpolation.Valid() {
				return Errorf("animation", i, field+".interpolation", "%q: %w", smp.Interpolation, ErrInvalidData)
			}
			in, err := v.accessor("animation", i, field+".input", smp.Input)
			if err != nil {
				return err
			}
			if in.Type != Scalar || in.ComponentType != Float || in.Min == nil {
				return Errorf("animation", i, field+".input", "needs a bounded float scalar accessor: %w", ErrInvalidData)
			}
			out, err := v.accessor("animation", i, field+".output", smp.Output)
			if err != nil {
				return err
			}
			keys := in.Count * smp.Interpolation.OutputsPerKey()
			if paths[s] == PathWeights {
				if out.Count%keys != 0 {
					return Errorf("animation", i, field+".output", "%d weights for %d keyframes: %w", out.Count, in.Count, ErrAttributeMismatch)
				}
			} else if out.Count != keys {
				return Errorf("animation", i, field+".output", "%d outputs for %d keyframes: %w", out.Count, in.Count, ErrAttributeMismatch)
			}
		}
	}
	return nil
}

func (v *validator) extensions() error {
	for i, ext := range v.doc.ExtensionsUsed {
		if slices.Index(v.doc.ExtensionsUsed, ext) != i {
			return Errorf("document", 0, "extensionsUsed", "%q listed twice: %w", ext, ErrInvariant)
		}
	}
	for _, ext := range v.doc.ExtensionsRequired {
		if !slices.Contains(v.doc.ExtensionsUsed, ext) {
			return Errorf("document", 0, "extensionsRequired", "%q is not in extensionsUsed: %w", ext, ErrInvariant)
		}
	}
	for i := range v.doc.Materials {
		if v.doc.Materials[i].SpecularGlossiness() != nil && !slices.Contains(v.doc.ExtensionsUsed, ExtSpecularGlossiness) {
			return Errorf("material", i, "extensions", "%s is not in extensionsUsed: %w", ExtSpecularGlossiness, ErrInvariant)
		}
	}
	return nil
}
