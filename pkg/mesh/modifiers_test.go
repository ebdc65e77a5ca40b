package mesh

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glbforge/pkg/math"
)

func mustClone(t *testing.T, m *Mesh) *Mesh {
	t.Helper()
	c, err := m.Clone()
	require.NoError(t, err)
	return c
}

func assertVec3InDelta(t *testing.T, want, got math.Vec3, delta float64, msgAndArgs ...interface{}) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, delta, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, delta, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, delta, msgAndArgs...)
}

func TestTransformIdentityIsNoop(t *testing.T) {
	m := Cube(1, 1, 1)
	require.NoError(t, GenerateTangents(m))
	want := mustClone(t, m)

	Transform(m, math.Identity())
	assert.Equal(t, want.Vertices, m.Vertices)
	assert.Equal(t, want.Triangles, m.Triangles)
}

func TestTranslateAndScale(t *testing.T) {
	m := Cube(1, 1, 1)
	Translate(m, math.V3(1, 2, 3))
	b := m.Bounds()
	assert.Equal(t, math.V3(0.5, 1.5, 2.5), b.Min)
	assert.Equal(t, math.V3(1.5, 2.5, 3.5), b.Max)

	m = Cube(1, 1, 1)
	Scale(m, math.V3(2, 2, 2))
	assert.Equal(t, math.V3(2, 2, 2), m.Bounds().Size())
	for _, v := range m.Vertices {
		assert.InDelta(t, 1.0, v.Normal.Length(), 1e-5)
	}
}

func TestMirrorKeepsOutwardWinding(t *testing.T) {
	m := Cube(1, 1, 1)
	Scale(m, math.V3(-1, 1, 1))
	assert.Greater(t, signedVolume(m), float32(0))
	for i := range m.Triangles {
		vn := *m.Vertices[m.Triangles[i][0]].Normal
		assert.InDelta(t, 1.0, m.FaceNormal(i).Dot(vn), 1e-5)
	}
}

func TestRotate(t *testing.T) {
	m := quad()
	Rotate(m, math.QuatFromAxisAngle(math.UnitY, math32.Pi/2))
	// +Z normals turn to +X.
	for _, v := range m.Vertices {
		assertVec3InDelta(t, math.V3(1, 0, 0), *v.Normal, 1e-5)
	}
}

func TestFlipNormalsTwiceRestores(t *testing.T) {
	m := Sphere(1, 8, 6)
	require.NoError(t, GenerateTangents(m))
	want := mustClone(t, m)

	FlipNormals(m)
	assert.Less(t, signedVolume(m), float32(0))
	assert.Equal(t, want.Vertices[3].Normal.Negate(), *m.Vertices[3].Normal)
	assert.Equal(t, -want.Vertices[3].Tangent.W, m.Vertices[3].Tangent.W)

	FlipNormals(m)
	assert.Equal(t, want.Vertices, m.Vertices)
	assert.Equal(t, want.Triangles, m.Triangles)
}

func TestSmoothNormals(t *testing.T) {
	m := Icosphere(DefaultIcosphereParams())
	SmoothNormals(m)
	for _, v := range m.Vertices {
		// A sphere's smooth normals point away from its center.
		assert.InDelta(t, 1.0, v.Normal.Dot(v.Position.Normalize()), 1e-2)
	}

	first := mustClone(t, m)
	m.CalculateNormals()
	for i := range m.Vertices {
		assertVec3InDelta(t, *first.Vertices[i].Normal, *m.Vertices[i].Normal, 1e-6)
	}
}

func TestSmoothNormalsIsolatedVertex(t *testing.T) {
	m := quad()
	m.AddVertex(NewVertex(math.V3(5, 5, 5)))
	SmoothNormals(m)
	assert.Equal(t, DefaultNormal, *m.Vertices[4].Normal)
}

func TestFlatNormals(t *testing.T) {
	m := Icosphere(IcosphereParams{Radius: 1})
	FlatNormals(m)
	assert.Equal(t, 60, m.VertexCount())
	for i, tri := range m.Triangles {
		fn := m.FaceNormal(i)
		for _, idx := range tri {
			assertVec3InDelta(t, fn, *m.Vertices[idx].Normal, 1e-5)
		}
	}
}

func TestGenerateTangents(t *testing.T) {
	m := quad()
	require.NoError(t, GenerateTangents(m))
	for _, v := range m.Vertices {
		require.NotNil(t, v.Tangent)
		assert.InDelta(t, 1.0, v.Tangent.X, 1e-5)
		assert.InDelta(t, 0.0, v.Tangent.Y, 1e-5)
		assert.Equal(t, float32(1), v.Tangent.W)
	}

	mirrored := quad()
	for i := range mirrored.Vertices {
		uv := *mirrored.Vertices[i].UV
		flipped := math.V2(1-uv.X, uv.Y)
		mirrored.Vertices[i].UV = &flipped
	}
	require.NoError(t, GenerateTangents(mirrored))
	assert.Equal(t, float32(-1), mirrored.Vertices[0].Tangent.W)
	assert.InDelta(t, -1.0, mirrored.Vertices[0].Tangent.X, 1e-5)
}

func TestGenerateTangentsNeedsUVs(t *testing.T) {
	m := New("bare")
	m.AddVertex(NewVertex(math.V3(0, 0, 0)))
	m.AddVertex(NewVertex(math.V3(1, 0, 0)))
	m.AddVertex(NewVertex(math.V3(0, 1, 0)))
	require.NoError(t, m.AddTriangle(0, 1, 2))

	assert.ErrorIs(t, GenerateTangents(m), ErrMissingAttribute)
	assert.False(t, m.HasTangents())
}

func TestRemoveDegenerateAndUnused(t *testing.T) {
	m := quad()
	extra := m.AddVertex(NewVertexPNU(math.V3(2, 0, 0), math.V3(0, 0, 1), math.V2(0, 0)))
	m.Triangles = append(m.Triangles, Triangle{0, 0, 1}, Triangle{0, 1, extra})

	assert.Equal(t, 2, RemoveDegenerateTriangles(m))
	assert.Equal(t, []Triangle{{0, 1, 2}, {0, 2, 3}}, m.Triangles)

	assert.Equal(t, 1, RemoveUnusedVertices(m))
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 0, RemoveUnusedVertices(m))
}

func TestRemoveUnusedRemaps(t *testing.T) {
	m := New("gap")
	m.AddVertex(NewVertex(math.V3(9, 9, 9)))
	m.AddVertex(NewVertex(math.V3(0, 0, 0)))
	m.AddVertex(NewVertex(math.V3(1, 0, 0)))
	m.AddVertex(NewVertex(math.V3(0, 1, 0)))
	require.NoError(t, m.AddTriangle(1, 2, 3))

	assert.Equal(t, 1, RemoveUnusedVertices(m))
	assert.Equal(t, []Triangle{{0, 1, 2}}, m.Triangles)
	assert.Equal(t, math.V3(0, 0, 0), m.Vertices[0].Position)
}
