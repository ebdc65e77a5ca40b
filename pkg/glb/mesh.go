package glb

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/mesh"
)

// MeshOptions selects which optional vertex attributes are exported. An
// attribute is written only when it is enabled here and at least one vertex
// of the mesh carries it.
type MeshOptions struct {
	Normals  bool
	UVs      bool
	Tangents bool
	Colors   bool
	// Material overrides the material index carried by the mesh.
	Material *int
}

// DefaultMeshOptions exports every attribute the mesh carries.
func DefaultMeshOptions() MeshOptions {
	return MeshOptions{Normals: true, UVs: true, Tangents: true, Colors: true}
}

// AddMesh registers m as a single-primitive mesh and returns its index.
func (b *Builder) AddMesh(m *mesh.Mesh, opts MeshOptions) (int, error) {
	name := ""
	if m != nil {
		name = m.Name
	}
	return b.AddPrimitiveMesh(name, []*mesh.Mesh{m}, opts)
}

// AddPrimitiveMesh registers a mesh with one primitive per part. Each part
// uses its own material unless opts.Material is set.
func (b *Builder) AddPrimitiveMesh(name string, parts []*mesh.Mesh, opts MeshOptions) (int, error) {
	index := len(b.meshes)
	if len(parts) == 0 {
		return 0, entityErr("mesh", index, "primitives", "no primitives: %w", ErrInvariant)
	}
	for p, part := range parts {
		if err := b.checkPart(index, p, part, opts); err != nil {
			return 0, err
		}
	}

	cp := b.checkpoint()
	prims := make([]manifest.Primitive, 0, len(parts))
	for p, part := range parts {
		prim, err := b.addPrimitive(part, opts)
		if err != nil {
			b.rollback(cp)
			return 0, &EntityError{Kind: "mesh", Index: index, Field: fmt.Sprintf("primitive %d", p), Err: err}
		}
		if prim.Material == nil {
			b.log.Warn("mesh primitive has no material",
				zap.Int("mesh", index), zap.String("name", name), zap.Int("primitive", p))
		}
		prims = append(prims, prim)
	}

	b.meshes = append(b.meshes, manifest.Mesh{Name: name, Primitives: prims})
	b.log.Debug("added mesh",
		zap.Int("mesh", index), zap.String("name", name), zap.Int("primitives", len(prims)))
	return index, nil
}

func materialOf(part *mesh.Mesh, opts MeshOptions) *int {
	src := part.Material
	if opts.Material != nil {
		src = opts.Material
	}
	if src == nil {
		return nil
	}
	mat := *src
	return &mat
}

// checkPart validates a primitive before anything is registered.
func (b *Builder) checkPart(index, p int, part *mesh.Mesh, opts MeshOptions) error {
	field := fmt.Sprintf("primitive %d", p)
	if part == nil || part.VertexCount() == 0 {
		return entityErr("mesh", index, field, "empty primitive: %w", ErrInvariant)
	}
	if err := part.Validate(); err != nil {
		if errors.Is(err, mesh.ErrInvalidIndex) {
			return entityErr("mesh", index, field, "%v: %w", err, ErrIndexOutOfRange)
		}
		return entityErr("mesh", index, field, "%w", err)
	}
	for i := range part.Vertices {
		if !part.Vertices[i].Position.IsFinite() {
			return entityErr("mesh", index, field, "vertex %d: non-finite position: %w", i, ErrInvalidData)
		}
	}
	if mat := materialOf(part, opts); mat != nil && (*mat < 0 || *mat >= len(b.materials)) {
		return entityErr("mesh", index, field, "material %d of %d: %w", *mat, len(b.materials), ErrIndexOutOfRange)
	}

	if !b.strict {
		return nil
	}
	attrs := exported(part.Attributes(), opts)
	for i := range part.Vertices {
		v := &part.Vertices[i]
		missing := ""
		switch {
		case attrs.Normals && v.Normal == nil:
			missing = manifest.AttrNormal
		case attrs.UVs && v.UV == nil:
			missing = manifest.TexCoord(0)
		case attrs.Tangents && v.Tangent == nil:
			missing = manifest.AttrTangent
		case attrs.Colors && v.Color == nil:
			missing = manifest.Color(0)
		}
		if missing != "" {
			return entityErr("mesh", index, field, "vertex %d lacks %s: %w", i, missing, ErrAttributeMismatch)
		}
	}
	for i, t := range part.Triangles {
		if t.Degenerate() {
			return entityErr("mesh", index, field, "triangle %d (%d, %d, %d) is degenerate: %w",
				i, t[0], t[1], t[2], ErrInvariant)
		}
	}
	return nil
}

func exported(a mesh.Attributes, opts MeshOptions) mesh.Attributes {
	return mesh.Attributes{
		Normals:  a.Normals && opts.Normals,
		UVs:      a.UVs && opts.UVs,
		Tangents: a.Tangents && opts.Tangents,
		Colors:   a.Colors && opts.Colors,
	}
}

// addPrimitive registers the vertex streams and indices of part. Missing
// attribute slots are filled with the mesh package defaults.
func (b *Builder) addPrimitive(part *mesh.Mesh, opts MeshOptions) (manifest.Primitive, error) {
	prim := manifest.Primitive{
		Attributes: make(map[string]int),
		Material:   materialOf(part, opts),
		Mode:       manifest.ModeTriangles,
	}
	attrs := exported(part.Attributes(), opts)
	verts := part.Vertices

	type stream struct {
		semantic string
		elem     manifest.ElementType
		enabled  bool
		fill     func(dst []float32, v *mesh.Vertex) []float32
	}
	streams := []stream{
		{manifest.AttrPosition, manifest.Vec3, true, func(dst []float32, v *mesh.Vertex) []float32 {
			return append(dst, v.Position.X, v.Position.Y, v.Position.Z)
		}},
		{manifest.AttrNormal, manifest.Vec3, attrs.Normals, func(dst []float32, v *mesh.Vertex) []float32 {
			n := v.NormalOr(mesh.DefaultNormal)
			return append(dst, n.X, n.Y, n.Z)
		}},
		{manifest.TexCoord(0), manifest.Vec2, attrs.UVs, func(dst []float32, v *mesh.Vertex) []float32 {
			uv := v.UVOr(mesh.DefaultUV)
			return append(dst, uv.X, uv.Y)
		}},
		{manifest.AttrTangent, manifest.Vec4, attrs.Tangents, func(dst []float32, v *mesh.Vertex) []float32 {
			t := v.TangentOr(mesh.DefaultTangent)
			return append(dst, t.X, t.Y, t.Z, t.W)
		}},
		{manifest.Color(0), manifest.Vec4, attrs.Colors, func(dst []float32, v *mesh.Vertex) []float32 {
			c := v.ColorOr(mesh.DefaultColor)
			return append(dst, c.X, c.Y, c.Z, c.W)
		}},
	}

	for _, s := range streams {
		if !s.enabled {
			continue
		}
		values := make([]float32, 0, len(verts)*s.elem.Components())
		for i := range verts {
			values = s.fill(values, &verts[i])
		}
		acc, err := b.reg.RegisterFloats(s.semantic, s.elem, values)
		if err != nil {
			return prim, err
		}
		prim.Attributes[s.semantic] = acc
	}

	if len(part.Triangles) > 0 {
		indices := make([]uint32, 0, 3*len(part.Triangles))
		for _, t := range part.Triangles {
			indices = append(indices, t[0], t[1], t[2])
		}
		acc, err := b.reg.RegisterIndices(indices, len(verts))
		if err != nil {
			return prim, err
		}
		prim.Indices = &acc
	}
	return prim, nil
}
