package manifest

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalOmitsEmptyTables(t *testing.T) {
	data, err := Marshal(&Document{Asset: Asset{Version: Version}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"asset":{"version":"2.0"}}`, string(data))
}

func TestMarshalPropertyOrder(t *testing.T) {
	data, err := Marshal(validDoc())
	require.NoError(t, err)
	s := string(data)

	order := []string{`"asset"`, `"scene"`, `"scenes"`, `"nodes"`, `"meshes"`, `"materials"`, `"textures"`,
		`"samplers"`, `"images"`, `"accessors"`, `"bufferViews"`, `"buffers"`, `"animations"`}
	last := -1
	for _, key := range order {
		i := strings.Index(s, key)
		require.GreaterOrEqual(t, i, 0, "%s missing", key)
		assert.Greater(t, i, last, "%s out of order", key)
		last = i
	}
	assert.NotContains(t, s, "null")
	assert.NotContains(t, s, `"uri"`)
}

func TestMarshalSceneZero(t *testing.T) {
	doc := validDoc()
	data, err := Marshal(doc)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "0", string(raw["scene"]), "a default scene of 0 is still written")
}

func TestUnmarshalRoundTrip(t *testing.T) {
	data, err := Marshal(validDoc())
	require.NoError(t, err)
	doc, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, validDoc(), doc)

	_, err = Unmarshal([]byte("{"))
	assert.Error(t, err)
}

func TestSamplerZeroFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(Sampler{MinFilter: FilterLinear})
	require.NoError(t, err)
	assert.JSONEq(t, `{"minFilter":9729}`, string(data))
}

func TestComponentType(t *testing.T) {
	tests := []struct {
		c    ComponentType
		size int
		name string
	}{
		{Byte, 1, "BYTE"},
		{UnsignedByte, 1, "UNSIGNED_BYTE"},
		{Short, 2, "SHORT"},
		{UnsignedShort, 2, "UNSIGNED_SHORT"},
		{UnsignedInt, 4, "UNSIGNED_INT"},
		{Float, 4, "FLOAT"},
		{5124, 0, "ComponentType(5124)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.c.Size(), tt.name)
		assert.Equal(t, tt.name, tt.c.String())
	}
	assert.Equal(t, ComponentType(5125), UnsignedInt)
	assert.Equal(t, ComponentType(5126), Float)
}

func TestElementTypeComponents(t *testing.T) {
	want := map[ElementType]int{Scalar: 1, Vec2: 2, Vec3: 3, Vec4: 4, Mat2: 4, Mat3: 9, Mat4: 16, "VEC9": 0}
	for e, n := range want {
		assert.Equal(t, n, e.Components(), string(e))
	}
}

func TestPathAndInterpolation(t *testing.T) {
	assert.Equal(t, Vec3, PathTranslation.ElementType())
	assert.Equal(t, Vec4, PathRotation.ElementType())
	assert.Equal(t, Vec3, PathScale.ElementType())
	assert.Equal(t, Scalar, PathWeights.ElementType())
	assert.Equal(t, ElementType(""), Path("color").ElementType())

	assert.Equal(t, 1, InterpolationStep.OutputsPerKey())
	assert.Equal(t, 1, InterpolationLinear.OutputsPerKey())
	assert.Equal(t, 3, InterpolationCubicSpline.OutputsPerKey())
	assert.False(t, Interpolation("linear").Valid())
}

func TestSemantics(t *testing.T) {
	assert.Equal(t, "TEXCOORD_0", TexCoord(0))
	assert.Equal(t, "TEXCOORD_1", TexCoord(1))
	assert.Equal(t, "COLOR_0", Color(0))
}

func TestEntityError(t *testing.T) {
	err := Errorf("node", 3, "mesh", "%d of %d: %w", 7, 2, ErrIndexOutOfRange)
	assert.EqualError(t, err, "node 3: mesh: 7 of 2: index out of range")
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	bare := &EntityError{Kind: "scene", Index: 0, Err: ErrInvariant}
	assert.EqualError(t, bare, "scene 0: invariant violation")
}
