package mesh

import "github.com/Faultbox/glbforge/pkg/math"

// Subdivide splits every triangle into four by inserting one vertex at the
// midpoint of each edge. Midpoints are shared between the triangles that
// meet at an edge, and attributes present on both endpoints are averaged.
func Subdivide(m *Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}
	subdivideTopology(m)
	return nil
}

func subdivideTopology(m *Mesh) {
	midpoints := make(map[Edge]uint32, len(m.Triangles)*3/2)
	midpoint := func(a, b uint32) uint32 {
		e := NewEdge(a, b)
		if idx, ok := midpoints[e]; ok {
			return idx
		}
		idx := m.AddVertex(lerpVertex(m.Vertices[e[0]], m.Vertices[e[1]], 0.5))
		midpoints[e] = idx
		return idx
	}

	triangles := make([]Triangle, 0, len(m.Triangles)*4)
	for _, t := range m.Triangles {
		a, b, c := t[0], t[1], t[2]
		ab := midpoint(a, b)
		bc := midpoint(b, c)
		ca := midpoint(c, a)
		triangles = append(triangles,
			Triangle{a, ab, ca},
			Triangle{ab, b, bc},
			Triangle{ca, bc, c},
			Triangle{ab, bc, ca},
		)
	}
	m.Triangles = triangles
}

// lerpVertex interpolates every attribute both vertices carry.
func lerpVertex(a, b Vertex, t float32) Vertex {
	out := NewVertex(a.Position.Lerp(b.Position, t))
	if a.Normal != nil && b.Normal != nil {
		n := a.Normal.Lerp(*b.Normal, t).Normalize()
		if n == (math.Vec3{}) {
			n = *a.Normal
		}
		out.Normal = &n
	}
	if a.UV != nil && b.UV != nil {
		uv := a.UV.Lerp(*b.UV, t)
		out.UV = &uv
	}
	if a.Tangent != nil && b.Tangent != nil {
		xyz := a.Tangent.XYZ().Lerp(b.Tangent.XYZ(), t).Normalize()
		tan := math.FromVec3(xyz, a.Tangent.W)
		out.Tangent = &tan
	}
	if a.Color != nil && b.Color != nil {
		c := a.Color.Scale(1 - t).Add(b.Color.Scale(t))
		out.Color = &c
	}
	return out
}
