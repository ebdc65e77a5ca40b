package glb

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/math"
)

func TestAnimatedTranslation(t *testing.T) {
	b := New()
	node, err := b.AddNode(NodeSpec{Name: "N"})
	require.NoError(t, err)
	anim := b.AddAnimation("slide")

	track := TranslationTrack(node, []float32{0, 1, 2}, []math.Vec3{
		math.V3(0, 0, 0), math.V3(1, 0, 0), math.V3(0, 0, 0),
	})
	ch, err := b.AddTrack(anim, track)
	require.NoError(t, err)
	assert.Equal(t, 0, ch)

	doc := mustDocument(t, b)
	require.Len(t, doc.Animations, 1)
	a := doc.Animations[0]
	require.Len(t, a.Samplers, 1)
	require.Len(t, a.Channels, 1)

	smp := a.Samplers[0]
	assert.Equal(t, manifest.InterpolationLinear, smp.Interpolation)
	in := doc.Accessors[smp.Input]
	assert.Equal(t, 3, in.Count)
	assert.Equal(t, manifest.Scalar, in.Type)
	assert.Equal(t, []float32{0}, in.Min)
	assert.Equal(t, []float32{2}, in.Max)
	out := doc.Accessors[smp.Output]
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, manifest.Vec3, out.Type)

	assert.Equal(t, manifest.ChannelTarget{Node: node, Path: manifest.PathTranslation}, a.Channels[0].Target)
	assert.Equal(t, 0, a.Channels[0].Sampler)
}

func TestSamplerIndicesAreLocal(t *testing.T) {
	b := New()
	node, _ := b.AddNode(NodeSpec{Name: "n"})
	first := b.AddAnimation("first")
	second := b.AddAnimation("second")

	times := []float32{0, 1}
	_, err := b.AddTrack(first, ScaleTrack(node, times, []math.Vec3{math.V3(1, 1, 1), math.V3(2, 2, 2)}))
	require.NoError(t, err)
	q := math.QuatFromAxisAngle(math.V3(0, 1, 0), math32.Pi)
	_, err = b.AddTrack(first, RotationTrack(node, times, []math.Quat{math.QuatIdentity(), q}))
	require.NoError(t, err)
	ch, err := b.AddTrack(second, TranslationTrack(node, times, []math.Vec3{{}, math.V3(0, 1, 0)}))
	require.NoError(t, err)

	doc := mustDocument(t, b)
	assert.Equal(t, 1, doc.Animations[first].Channels[1].Sampler)
	assert.Equal(t, 0, doc.Animations[second].Channels[ch].Sampler)
	rot := doc.Accessors[doc.Animations[first].Samplers[1].Output]
	assert.Equal(t, manifest.Vec4, rot.Type)
}

func TestCubicSplineNeedsThreeOutputsPerKey(t *testing.T) {
	b := New()
	node, _ := b.AddNode(NodeSpec{Name: "n"})
	anim := b.AddAnimation("spline")

	track := Track{
		Node:          node,
		Path:          manifest.PathTranslation,
		Interpolation: manifest.InterpolationCubicSpline,
		Times:         []float32{0, 1},
		Values:        make([]float32, 2*3),
	}
	_, err := b.AddTrack(anim, track)
	assert.ErrorIs(t, err, ErrAttributeMismatch)

	track.Values = make([]float32, 2*3*3)
	_, err = b.AddTrack(anim, track)
	require.NoError(t, err)
	doc := mustDocument(t, b)
	assert.Equal(t, 6, doc.Accessors[doc.Animations[anim].Samplers[0].Output].Count)
}

func TestWeightsTrack(t *testing.T) {
	b := New()
	node, _ := b.AddNode(NodeSpec{Name: "morph"})
	anim := b.AddAnimation("blend")
	_, err := b.AddTrack(anim, WeightsTrack(node, []float32{0, 1}, [][]float32{{0, 1}, {1, 0}}))
	require.NoError(t, err)

	_, err = b.AddTrack(anim, WeightsTrack(node, []float32{0, 1}, [][]float32{{0, 1}, {1}}))
	assert.ErrorIs(t, err, ErrAttributeMismatch)

	doc := mustDocument(t, b)
	out := doc.Accessors[doc.Animations[anim].Samplers[0].Output]
	assert.Equal(t, manifest.Scalar, out.Type)
	assert.Equal(t, 4, out.Count)
}

func TestAddTrackErrors(t *testing.T) {
	b := New()
	node, _ := b.AddNode(NodeSpec{Name: "n"})
	anim := b.AddAnimation("broken")
	vals := []math.Vec3{{}, math.V3(1, 0, 0)}

	_, err := b.AddTrack(5, TranslationTrack(node, []float32{0, 1}, vals))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = b.AddTrack(anim, TranslationTrack(7, []float32{0, 1}, vals))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = b.AddTrack(anim, TranslationTrack(node, nil, nil))
	assert.ErrorIs(t, err, ErrInvariant)

	_, err = b.AddTrack(anim, TranslationTrack(node, []float32{1, 0}, vals))
	assert.ErrorIs(t, err, ErrInvalidData, "times must increase")

	_, err = b.AddTrack(anim, TranslationTrack(node, []float32{0, 1, 2}, vals))
	assert.ErrorIs(t, err, ErrAttributeMismatch)

	bad := TranslationTrack(node, []float32{0, 1}, vals)
	bad.Path = "color"
	_, err = b.AddTrack(anim, bad)
	assert.ErrorIs(t, err, ErrInvalidData)

	bad = TranslationTrack(node, []float32{0, 1}, vals)
	bad.Interpolation = "SMOOTH"
	_, err = b.AddTrack(anim, bad)
	assert.ErrorIs(t, err, ErrInvalidData)

	fixed, err := b.AddNode(NodeSpec{Name: "m"}.WithMatrix(math.Identity()))
	require.NoError(t, err)
	_, err = b.AddTrack(anim, TranslationTrack(fixed, []float32{0, 1}, vals))
	assert.ErrorIs(t, err, ErrInvariant, "matrix nodes cannot be animated")

	_, err = b.AddTrack(anim, TranslationTrack(node, []float32{0, 1}, vals))
	require.NoError(t, err)
	_, err = b.AddTrack(anim, TranslationTrack(node, []float32{0, 2}, vals))
	assert.ErrorIs(t, err, ErrInvariant, "node and path are animated once per animation")
	_, err = b.AddTrack(anim, ScaleTrack(node, []float32{0, 1}, []math.Vec3{math.V3(1, 1, 1), math.V3(2, 2, 2)}))
	assert.NoError(t, err, "another path on the same node is fine")

	other := b.AddAnimation("other")
	_, err = b.AddTrack(other, TranslationTrack(node, []float32{0, 1}, vals))
	assert.NoError(t, err, "the same target in another animation is fine")

	doc := mustDocument(t, b)
	assert.Len(t, doc.Animations[anim].Channels, 2)
	assert.Len(t, doc.Animations[other].Channels, 1)
}

func TestRotationTrackNeedsUnitQuaternions(t *testing.T) {
	b := New()
	node, _ := b.AddNode(NodeSpec{Name: "n"})
	anim := b.AddAnimation("spin")
	bufLen := b.buf.Len()

	_, err := b.AddTrack(anim, RotationTrack(node, []float32{0, 1}, []math.Quat{{W: 5}, {X: 3}}))
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = b.AddTrack(anim, RotationTrack(node, []float32{0, 1}, []math.Quat{math.QuatIdentity(), {W: 0.5}}))
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Empty(t, b.Registry().Accessors())
	assert.Equal(t, bufLen, b.buf.Len())

	// Cubic-spline tangents may have any length; only the values are checked.
	spline := Track{
		Node:          node,
		Path:          manifest.PathRotation,
		Interpolation: manifest.InterpolationCubicSpline,
		Times:         []float32{0, 1},
		Values: []float32{
			3, 0, 0, 0, 0, 0, 0, 1, 0, 7, 0, 0,
			0, 0, 0, 0, 0, 0, 0, 2, 0, 0, 0, 0,
		},
	}
	_, err = b.AddTrack(anim, spline)
	assert.ErrorIs(t, err, ErrInvalidData, "second keyframe value has length 2")

	spline.Values[19] = 1
	_, err = b.AddTrack(anim, spline)
	require.NoError(t, err)
}

func TestAddTrackRollsBackInput(t *testing.T) {
	b := New()
	node, _ := b.AddNode(NodeSpec{Name: "n"})
	anim := b.AddAnimation("nan")
	bufLen := b.buf.Len()

	track := TranslationTrack(node, []float32{0, 1}, []math.Vec3{{}, math.V3(float32NaN(), 0, 0)})
	_, err := b.AddTrack(anim, track)
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.Empty(t, b.Registry().Accessors(), "the registered input is rolled back")
	assert.Equal(t, bufLen, b.buf.Len())
}

func TestEmptyAnimationFailsExport(t *testing.T) {
	b := New()
	b.AddAnimation("empty")
	_, err := b.Bytes()
	assert.ErrorIs(t, err, ErrInvariant)
}
