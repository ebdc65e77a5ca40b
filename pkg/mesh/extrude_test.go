package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtrude(t *testing.T) {
	tests := []struct {
		name          string
		faces         []int
		wantVertices  int
		wantTriangles int
	}{
		{"single face", []int{0}, 4 + 3, 2 + 3*2},
		{"whole plane", []int{0, 1}, 4 + 4, 2 + 4*2},
		{"duplicates ignored", []int{1, 1, 0}, 4 + 4, 2 + 4*2},
		{"nothing selected", nil, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Plane(1, 1, 1, 1)
			require.NoError(t, Extrude(m, tt.faces, 0.5))
			require.NoError(t, m.Validate())
			assert.Equal(t, tt.wantVertices, m.VertexCount())
			assert.Equal(t, tt.wantTriangles, m.TriangleCount())

			for _, f := range tt.faces {
				for _, idx := range m.Triangles[f] {
					assert.InDelta(t, 0.5, m.Vertices[idx].Position.Y, 1e-6)
				}
			}
		})
	}
}

func TestExtrudeWholePlaneEnclosesVolume(t *testing.T) {
	m := Plane(1, 1, 1, 1)
	require.NoError(t, Extrude(m, []int{0, 1}, 2))

	// Lifted top plus walls, closed by the original plane seen from below.
	for _, tri := range Plane(1, 1, 1, 1).Triangles {
		m.Triangles = append(m.Triangles, Triangle{tri[0], tri[2], tri[1]})
	}
	assert.InDelta(t, 2.0, signedVolume(m), 1e-5)
}

func TestExtrudeErrorsLeaveMeshUnchanged(t *testing.T) {
	m := Plane(1, 1, 1, 1)
	want := mustClone(t, m)

	err := Extrude(m, []int{0, 5}, 1)
	assert.ErrorIs(t, err, ErrInvalidFaceIndex)
	err = Extrude(m, []int{-1}, 1)
	assert.ErrorIs(t, err, ErrInvalidFaceIndex)
	assert.Equal(t, want.Vertices, m.Vertices)
	assert.Equal(t, want.Triangles, m.Triangles)

	flat := New("degenerate")
	flat.Vertices = append(flat.Vertices, m.Vertices[0], m.Vertices[0], m.Vertices[0])
	flat.Triangles = []Triangle{{0, 1, 2}}
	assert.ErrorIs(t, Extrude(flat, []int{0}, 1), ErrInvalidParameter)
}
