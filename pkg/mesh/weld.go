package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/glbforge/pkg/math"
)

// WeldParams controls which vertices Weld merges.
type WeldParams struct {
	// Distance is the largest position distance at which vertices merge.
	// Zero merges only exactly coincident positions.
	Distance float32

	CheckNormals    bool
	NormalThreshold float32 // largest allowed 1 - dot(n1, n2)

	CheckUVs    bool
	UVThreshold float32 // largest allowed UV distance
}

// DefaultWeldParams returns the usual welding tolerances.
func DefaultWeldParams() WeldParams {
	return WeldParams{
		Distance:        0.0001,
		CheckNormals:    true,
		NormalThreshold: 0.01,
		CheckUVs:        true,
		UVThreshold:     0.01,
	}
}

type cellKey [3]int32

// Weld merges vertices that lie within params.Distance of an earlier vertex
// (and, when enabled, have matching normals and UVs). Triangles are remapped
// to the surviving vertices, which keep their original relative order.
// It returns the number of vertices merged away.
func Weld(m *Mesh, params WeldParams) (int, error) {
	if params.Distance < 0 || math32.IsNaN(params.Distance) {
		return 0, fmt.Errorf("weld distance %v: %w", params.Distance, ErrInvalidParameter)
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}

	cell := params.Distance
	exact := cell == 0
	key := func(p math.Vec3) cellKey {
		if exact {
			// Adding zero folds -0 into +0.
			return cellKey{
				int32(math32.Float32bits(p.X + 0)),
				int32(math32.Float32bits(p.Y + 0)),
				int32(math32.Float32bits(p.Z + 0)),
			}
		}
		return cellKey{
			int32(math32.Floor(p.X / cell)),
			int32(math32.Floor(p.Y / cell)),
			int32(math32.Floor(p.Z / cell)),
		}
	}

	grid := make(map[cellKey][]uint32)
	remap := make([]uint32, len(m.Vertices))
	vertices := make([]Vertex, 0, len(m.Vertices))

	for i, v := range m.Vertices {
		k := key(v.Position)
		match, found := uint32(0), false

		if exact {
			for _, cand := range grid[k] {
				if weldCompatible(&vertices[cand], &v, params) {
					match, found = cand, true
					break
				}
			}
		} else {
		search:
			for dx := int32(-1); dx <= 1; dx++ {
				for dy := int32(-1); dy <= 1; dy++ {
					for dz := int32(-1); dz <= 1; dz++ {
						for _, cand := range grid[cellKey{k[0] + dx, k[1] + dy, k[2] + dz}] {
							c := &vertices[cand]
							if c.Position.Distance(v.Position) <= params.Distance && weldCompatible(c, &v, params) {
								match, found = cand, true
								break search
							}
						}
					}
				}
			}
		}

		if found {
			remap[i] = match
			continue
		}
		idx := uint32(len(vertices))
		vertices = append(vertices, v)
		grid[k] = append(grid[k], idx)
		remap[i] = idx
	}

	merged := len(m.Vertices) - len(vertices)
	if merged == 0 {
		return 0, nil
	}
	for i := range m.Triangles {
		t := &m.Triangles[i]
		t[0], t[1], t[2] = remap[t[0]], remap[t[1]], remap[t[2]]
	}
	m.Vertices = vertices
	return merged, nil
}

func weldCompatible(a, b *Vertex, params WeldParams) bool {
	if params.CheckNormals && (a.Normal != nil || b.Normal != nil) {
		if a.Normal == nil || b.Normal == nil {
			return false
		}
		if 1-a.Normal.Dot(*b.Normal) > params.NormalThreshold {
			return false
		}
	}
	if params.CheckUVs && (a.UV != nil || b.UV != nil) {
		if a.UV == nil || b.UV == nil {
			return false
		}
		if a.UV.Distance(*b.UV) > params.UVThreshold {
			return false
		}
	}
	return true
}
