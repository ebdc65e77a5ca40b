package mesh

import (
	"fmt"

	"github.com/Faultbox/glbforge/pkg/math"
)

// Extrude lifts the selected faces by amount along their averaged normal.
// The selected faces are re-pointed at displaced copies of their vertices
// and side walls are stitched along the boundary of the selection.
// On error the mesh is left unchanged.
func Extrude(m *Mesh, faces []int, amount float32) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if len(faces) == 0 {
		return nil
	}

	selected := make(map[int]struct{}, len(faces))
	unique := make([]int, 0, len(faces))
	var normal math.Vec3
	for _, f := range faces {
		if f < 0 || f >= len(m.Triangles) {
			return fmt.Errorf("extrude face %d of %d: %w", f, len(m.Triangles), ErrInvalidFaceIndex)
		}
		if _, dup := selected[f]; dup {
			continue
		}
		selected[f] = struct{}{}
		unique = append(unique, f)
		t := m.Triangles[f]
		p0 := m.Vertices[t[0]].Position
		normal = normal.Add(m.Vertices[t[1]].Position.Sub(p0).Cross(m.Vertices[t[2]].Position.Sub(p0)))
	}
	normal = normal.Normalize()
	if normal == (math.Vec3{}) {
		return fmt.Errorf("extrude: selected faces have no area: %w", ErrInvalidParameter)
	}
	offset := normal.Scale(amount)

	// Directed boundary edges: an edge of the selection whose reverse is not
	// also in the selection.
	directed := make(map[[2]uint32]int)
	var order [][2]uint32
	for _, f := range unique {
		t := m.Triangles[f]
		for i := 0; i < 3; i++ {
			e := [2]uint32{t[i], t[(i+1)%3]}
			if _, ok := directed[e]; !ok {
				order = append(order, e)
			}
			directed[e]++
		}
	}

	vertices := append([]Vertex(nil), m.Vertices...)
	triangles := append([]Triangle(nil), m.Triangles...)

	lifted := make(map[uint32]uint32)
	lift := func(idx uint32) uint32 {
		if n, ok := lifted[idx]; ok {
			return n
		}
		v := vertices[idx]
		v.Position = v.Position.Add(offset)
		vertices = append(vertices, v)
		n := uint32(len(vertices) - 1)
		lifted[idx] = n
		return n
	}

	for _, f := range unique {
		t := triangles[f]
		triangles[f] = Triangle{lift(t[0]), lift(t[1]), lift(t[2])}
	}

	for _, e := range order {
		if _, inner := directed[[2]uint32{e[1], e[0]}]; inner {
			continue
		}
		u, v := e[0], e[1]
		uu, vv := lift(u), lift(v)
		triangles = append(triangles, Triangle{u, v, vv}, Triangle{u, vv, uu})
	}

	m.Vertices = vertices
	m.Triangles = triangles
	return nil
}
