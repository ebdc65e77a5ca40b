package mesh

import (
	"fmt"

	"github.com/Faultbox/glbforge/pkg/math"
)

// Transform applies mat to every position. Normals use the inverse-transpose
// and are renormalized; tangents keep their handedness. A mirroring matrix
// also reverses triangle winding so front faces stay front faces.
func Transform(m *Mesh, mat math.Mat4) {
	if mat.IsIdentity() {
		return
	}
	normalMat := mat.NormalMatrix()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = mat.TransformPoint(v.Position)
		if v.Normal != nil {
			n := normalMat.TransformDirection(*v.Normal).Normalize()
			v.Normal = &n
		}
		if v.Tangent != nil {
			t := mat.TransformDirection(v.Tangent.XYZ()).Normalize()
			tan := math.FromVec3(t, v.Tangent.W)
			v.Tangent = &tan
		}
	}
	if mat.Determinant() < 0 {
		reverseWinding(m)
	}
}

// Scale scales the mesh about the origin.
func Scale(m *Mesh, s math.Vec3) {
	Transform(m, math.Scale(s.X, s.Y, s.Z))
}

// Rotate rotates the mesh about the origin.
func Rotate(m *Mesh, q math.Quat) {
	Transform(m, q.ToMat4())
}

// Translate moves every vertex by offset.
func Translate(m *Mesh, offset math.Vec3) {
	Transform(m, math.Translate(offset.X, offset.Y, offset.Z))
}

// FlipNormals turns the mesh inside out: normals are negated and every
// triangle's winding reversed. Tangent handedness flips with the normal.
func FlipNormals(m *Mesh) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		if v.Normal != nil {
			n := v.Normal.Negate()
			v.Normal = &n
		}
		if v.Tangent != nil {
			t := *v.Tangent
			t.W = -t.W
			v.Tangent = &t
		}
	}
	reverseWinding(m)
}

func reverseWinding(m *Mesh) {
	for i := range m.Triangles {
		t := &m.Triangles[i]
		t[0], t[2] = t[2], t[0]
	}
}

// SmoothNormals replaces every vertex normal with the area-weighted average
// of the adjacent face normals. Vertices touching no face, or whose faces
// cancel out, get DefaultNormal. The result depends only on positions and
// triangles, so applying it twice yields the same normals.
func SmoothNormals(m *Mesh) {
	acc := make([]math.Vec3, len(m.Vertices))
	for _, t := range m.Triangles {
		p0 := m.Vertices[t[0]].Position
		p1 := m.Vertices[t[1]].Position
		p2 := m.Vertices[t[2]].Position
		face := p1.Sub(p0).Cross(p2.Sub(p0))
		for _, idx := range t {
			acc[idx] = acc[idx].Add(face)
		}
	}
	for i := range m.Vertices {
		n := acc[i].Normalize()
		if n == (math.Vec3{}) {
			n = DefaultNormal
		}
		m.Vertices[i].Normal = &n
	}
}

// FlatNormals splits every triangle into its own three vertices carrying the
// face normal.
func FlatNormals(m *Mesh) {
	vertices := make([]Vertex, 0, len(m.Triangles)*3)
	triangles := make([]Triangle, 0, len(m.Triangles))
	for i, t := range m.Triangles {
		n := m.FaceNormal(i)
		if n == (math.Vec3{}) {
			n = DefaultNormal
		}
		base := uint32(len(vertices))
		for _, idx := range t {
			vertices = append(vertices, m.Vertices[idx].WithNormal(n))
		}
		triangles = append(triangles, Triangle{base, base + 1, base + 2})
	}
	m.Vertices = vertices
	m.Triangles = triangles
}

// GenerateTangents computes per-vertex tangents from positions, normals and
// texture coordinates. The W component is -1 where the UV mapping is mirrored.
func GenerateTangents(m *Mesh) error {
	attrs := m.Attributes()
	if !attrs.UVs {
		return fmt.Errorf("generating tangents: texture coordinates: %w", ErrMissingAttribute)
	}
	if !attrs.Normals {
		SmoothNormals(m)
	}

	tan := make([]math.Vec3, len(m.Vertices))
	bitan := make([]math.Vec3, len(m.Vertices))
	for _, t := range m.Triangles {
		v0, v1, v2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		e1 := v1.Position.Sub(v0.Position)
		e2 := v2.Position.Sub(v0.Position)
		d1 := v1.UVOr(DefaultUV).Sub(v0.UVOr(DefaultUV))
		d2 := v2.UVOr(DefaultUV).Sub(v0.UVOr(DefaultUV))

		det := d1.X*d2.Y - d2.X*d1.Y
		if det == 0 {
			continue
		}
		r := 1 / det
		sdir := e1.Scale(d2.Y).Sub(e2.Scale(d1.Y)).Scale(r)
		tdir := e2.Scale(d1.X).Sub(e1.Scale(d2.X)).Scale(r)
		for _, idx := range t {
			tan[idx] = tan[idx].Add(sdir)
			bitan[idx] = bitan[idx].Add(tdir)
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].NormalOr(DefaultNormal)
		// Gram-Schmidt against the normal.
		t := tan[i].Sub(n.Scale(n.Dot(tan[i]))).Normalize()
		if t == (math.Vec3{}) {
			t = anyPerpendicular(n)
		}
		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		tv := math.FromVec3(t, w)
		m.Vertices[i].Tangent = &tv
	}
	return nil
}

func anyPerpendicular(n math.Vec3) math.Vec3 {
	ref := math.UnitX
	if n.X > 0.9 || n.X < -0.9 {
		ref = math.UnitY
	}
	return ref.Sub(n.Scale(n.Dot(ref))).Normalize()
}

// RemoveDegenerateTriangles drops triangles with repeated indices or
// (near) zero area and returns how many were removed.
func RemoveDegenerateTriangles(m *Mesh) int {
	const minCrossSq = 1e-10

	kept := m.Triangles[:0]
	removed := 0
	for _, t := range m.Triangles {
		if t.Degenerate() {
			removed++
			continue
		}
		p0 := m.Vertices[t[0]].Position
		cross := m.Vertices[t[1]].Position.Sub(p0).Cross(m.Vertices[t[2]].Position.Sub(p0))
		if cross.LengthSquared() <= minCrossSq {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	m.Triangles = kept
	return removed
}

// RemoveUnusedVertices drops vertices no triangle references, preserving
// the order of the rest, and returns how many were removed.
func RemoveUnusedVertices(m *Mesh) int {
	used := make([]bool, len(m.Vertices))
	for _, t := range m.Triangles {
		for _, idx := range t {
			used[idx] = true
		}
	}

	remap := make([]uint32, len(m.Vertices))
	vertices := make([]Vertex, 0, len(m.Vertices))
	for i, v := range m.Vertices {
		if !used[i] {
			continue
		}
		remap[i] = uint32(len(vertices))
		vertices = append(vertices, v)
	}
	removed := len(m.Vertices) - len(vertices)
	if removed == 0 {
		return 0
	}

	for i := range m.Triangles {
		t := &m.Triangles[i]
		t[0], t[1], t[2] = remap[t[0]], remap[t[1]], remap[t[2]]
	}
	m.Vertices = vertices
	return removed
}
