// Package mesh provides the triangle mesh data model, primitive generators
// and in-place mesh modifiers.
package mesh

import (
	"errors"
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/Faultbox/glbforge/pkg/math"
)

// Mesh errors.
var (
	ErrInvalidIndex     = errors.New("vertex index out of range")
	ErrTooFewVertices   = errors.New("polygon needs at least 3 vertices")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingAttribute = errors.New("missing vertex attribute")
	ErrInvalidFaceIndex = errors.New("face index out of range")
)

// Default values used when a vertex lacks an attribute that other vertices
// of the same mesh carry.
var (
	DefaultNormal  = math.Vec3{X: 0, Y: 1, Z: 0}
	DefaultUV      = math.Vec2{X: 0, Y: 0}
	DefaultTangent = math.Vec4{X: 1, Y: 0, Z: 0, W: 1}
	DefaultColor   = math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
)

// Vertex is a mesh vertex. Position is required; nil attributes are absent.
type Vertex struct {
	Position math.Vec3
	Normal   *math.Vec3
	UV       *math.Vec2
	Tangent  *math.Vec4 // W is handedness, +1 or -1
	Color    *math.Vec4
}

// NewVertex returns a vertex carrying only a position.
func NewVertex(pos math.Vec3) Vertex {
	return Vertex{Position: pos}
}

// NewVertexPNU returns a vertex with position, normal and texture coordinate.
func NewVertexPNU(pos, normal math.Vec3, uv math.Vec2) Vertex {
	return Vertex{Position: pos, Normal: &normal, UV: &uv}
}

// WithNormal returns a copy of v carrying normal n.
func (v Vertex) WithNormal(n math.Vec3) Vertex {
	v.Normal = &n
	return v
}

// WithUV returns a copy of v carrying texture coordinate uv.
func (v Vertex) WithUV(uv math.Vec2) Vertex {
	v.UV = &uv
	return v
}

// WithTangent returns a copy of v carrying tangent t.
func (v Vertex) WithTangent(t math.Vec4) Vertex {
	v.Tangent = &t
	return v
}

// WithColor returns a copy of v carrying color c.
func (v Vertex) WithColor(c math.Vec4) Vertex {
	v.Color = &c
	return v
}

// NormalOr returns the normal, or def when absent.
func (v Vertex) NormalOr(def math.Vec3) math.Vec3 {
	if v.Normal == nil {
		return def
	}
	return *v.Normal
}

// UVOr returns the texture coordinate, or def when absent.
func (v Vertex) UVOr(def math.Vec2) math.Vec2 {
	if v.UV == nil {
		return def
	}
	return *v.UV
}

// TangentOr returns the tangent, or def when absent.
func (v Vertex) TangentOr(def math.Vec4) math.Vec4 {
	if v.Tangent == nil {
		return def
	}
	return *v.Tangent
}

// ColorOr returns the color, or def when absent.
func (v Vertex) ColorOr(def math.Vec4) math.Vec4 {
	if v.Color == nil {
		return def
	}
	return *v.Color
}

// Triangle is an ordered triple of vertex indices, counter-clockwise when
// seen from the front.
type Triangle [3]uint32

// Degenerate reports whether two indices are equal.
func (t Triangle) Degenerate() bool {
	return t[0] == t[1] || t[1] == t[2] || t[0] == t[2]
}

// Max returns the largest index.
func (t Triangle) Max() uint32 {
	return max(t[0], t[1], t[2])
}

// Edge is an unordered vertex pair stored with the smaller index first.
type Edge [2]uint32

// NewEdge returns the canonical edge between a and b.
func NewEdge(a, b uint32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Attributes reports which optional attributes a mesh carries.
type Attributes struct {
	Normals  bool
	UVs      bool
	Tangents bool
	Colors   bool
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Mesh is an indexed triangle mesh.
type Mesh struct {
	Name      string
	Vertices  []Vertex
	Triangles []Triangle
	// Material is an index into the owning document's materials, nil for the
	// default material.
	Material *int
}

// New returns an empty mesh.
func New(name string) *Mesh {
	return &Mesh{Name: name}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// SetMaterial assigns a material index.
func (m *Mesh) SetMaterial(index int) {
	m.Material = &index
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(v Vertex) uint32 {
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1)
}

// AddTriangle appends a triangle after checking its indices.
func (m *Mesh) AddTriangle(a, b, c uint32) error {
	t := Triangle{a, b, c}
	if int(t.Max()) >= len(m.Vertices) {
		return fmt.Errorf("triangle %d (%d, %d, %d): %w", len(m.Triangles), a, b, c, ErrInvalidIndex)
	}
	m.Triangles = append(m.Triangles, t)
	return nil
}

// AddPolygon fan-triangulates a convex polygon given in counter-clockwise order.
func (m *Mesh) AddPolygon(indices []uint32) error {
	if len(indices) < 3 {
		return fmt.Errorf("polygon with %d vertices: %w", len(indices), ErrTooFewVertices)
	}
	for _, idx := range indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("polygon vertex %d: %w", idx, ErrInvalidIndex)
		}
	}
	for i := 1; i+1 < len(indices); i++ {
		m.Triangles = append(m.Triangles, Triangle{indices[0], indices[i], indices[i+1]})
	}
	return nil
}

// Attributes reports which optional attributes at least one vertex carries.
func (m *Mesh) Attributes() Attributes {
	var a Attributes
	for i := range m.Vertices {
		v := &m.Vertices[i]
		a.Normals = a.Normals || v.Normal != nil
		a.UVs = a.UVs || v.UV != nil
		a.Tangents = a.Tangents || v.Tangent != nil
		a.Colors = a.Colors || v.Color != nil
	}
	return a
}

// HasNormals reports whether any vertex carries a normal.
func (m *Mesh) HasNormals() bool { return m.Attributes().Normals }

// HasUVs reports whether any vertex carries a texture coordinate.
func (m *Mesh) HasUVs() bool { return m.Attributes().UVs }

// HasTangents reports whether any vertex carries a tangent.
func (m *Mesh) HasTangents() bool { return m.Attributes().Tangents }

// HasColors reports whether any vertex carries a color.
func (m *Mesh) HasColors() bool { return m.Attributes().Colors }

// Validate checks that every triangle index is in range.
func (m *Mesh) Validate() error {
	n := uint32(len(m.Vertices))
	for i, t := range m.Triangles {
		if t.Max() >= n {
			return fmt.Errorf("triangle %d (%d, %d, %d): %w", i, t[0], t[1], t[2], ErrInvalidIndex)
		}
	}
	return nil
}

// Edges returns the unique edges in order of first appearance.
func (m *Mesh) Edges() []Edge {
	seen := make(map[Edge]struct{}, len(m.Triangles)*3/2)
	edges := make([]Edge, 0, len(m.Triangles)*3/2)
	for _, t := range m.Triangles {
		for i := 0; i < 3; i++ {
			e := NewEdge(t[i], t[(i+1)%3])
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges
}

// FaceNormal returns the unit normal of triangle i, or zero for a degenerate
// triangle.
func (m *Mesh) FaceNormal(i int) math.Vec3 {
	t := m.Triangles[i]
	p0 := m.Vertices[t[0]].Position
	p1 := m.Vertices[t[1]].Position
	p2 := m.Vertices[t[2]].Position
	return p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
}

// CalculateNormals recomputes smooth, face-weighted vertex normals.
func (m *Mesh) CalculateNormals() {
	SmoothNormals(m)
}

// Bounds returns the bounding box of all vertex positions.
// An empty mesh has zero bounds.
func (m *Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for i := 1; i < len(m.Vertices); i++ {
		p := m.Vertices[i].Position
		b.Min = b.Min.Min(p)
		b.Max = b.Max.Max(p)
	}
	return b
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() (*Mesh, error) {
	dst := &Mesh{}
	if err := copier.CopyWithOption(dst, m, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("cloning mesh %q: %w", m.Name, err)
	}
	return dst, nil
}

// Append merges other into m, offsetting its triangle indices.
func (m *Mesh) Append(other *Mesh) {
	base := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, t := range other.Triangles {
		m.Triangles = append(m.Triangles, Triangle{t[0] + base, t[1] + base, t[2] + base})
	}
}
