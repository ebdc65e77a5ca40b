package glb

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/math"
)

// Track is one animated node property. Values holds the flattened output
// elements: VEC3 for translation and scale, VEC4 (x, y, z, w) for rotation
// and one scalar per morph target for weights. Cubic-spline tracks carry
// an in-tangent, value and out-tangent per keyframe.
type Track struct {
	Node          int
	Path          manifest.Path
	Interpolation manifest.Interpolation
	Times         []float32
	Values        []float32
}

// TranslationTrack returns a linear translation track.
func TranslationTrack(node int, times []float32, values []math.Vec3) Track {
	return Track{
		Node:          node,
		Path:          manifest.PathTranslation,
		Interpolation: manifest.InterpolationLinear,
		Times:         times,
		Values:        flattenVec3(values),
	}
}

// RotationTrack returns a linear rotation track.
func RotationTrack(node int, times []float32, values []math.Quat) Track {
	flat := make([]float32, 0, 4*len(values))
	for _, q := range values {
		flat = append(flat, q.X, q.Y, q.Z, q.W)
	}
	return Track{
		Node:          node,
		Path:          manifest.PathRotation,
		Interpolation: manifest.InterpolationLinear,
		Times:         times,
		Values:        flat,
	}
}

// ScaleTrack returns a linear scale track.
func ScaleTrack(node int, times []float32, values []math.Vec3) Track {
	return Track{
		Node:          node,
		Path:          manifest.PathScale,
		Interpolation: manifest.InterpolationLinear,
		Times:         times,
		Values:        flattenVec3(values),
	}
}

// WeightsTrack returns a linear morph weights track; weights holds one row
// of target weights per keyframe.
func WeightsTrack(node int, times []float32, weights [][]float32) Track {
	var flat []float32
	for _, row := range weights {
		flat = append(flat, row...)
	}
	return Track{
		Node:          node,
		Path:          manifest.PathWeights,
		Interpolation: manifest.InterpolationLinear,
		Times:         times,
		Values:        flat,
	}
}

func flattenVec3(values []math.Vec3) []float32 {
	flat := make([]float32, 0, 3*len(values))
	for _, v := range values {
		flat = append(flat, v.X, v.Y, v.Z)
	}
	return flat
}

// isUnit reports whether q has unit length within 1e-3.
func isUnit(q math.Quat) bool {
	return math32.Abs(q.Length()-1) <= 1e-3
}

// nonUnitKey returns the first keyframe whose rotation value is not a unit
// quaternion, or -1. Cubic-spline tangents are exempt.
func nonUnitKey(values []float32, interp manifest.Interpolation) int {
	stride, offset := 4, 0
	if interp == manifest.InterpolationCubicSpline {
		stride, offset = 12, 4
	}
	for i := offset; i+4 <= len(values); i += stride {
		q := math.Quat{X: values[i], Y: values[i+1], Z: values[i+2], W: values[i+3]}
		if !isUnit(q) {
			return i / stride
		}
	}
	return -1
}

// AddAnimation adds an empty animation. It must receive at least one track
// before export.
func (b *Builder) AddAnimation(name string) int {
	b.animations = append(b.animations, manifest.Animation{Name: name})
	index := len(b.animations) - 1
	b.log.Debug("added animation", zap.Int("animation", index), zap.String("name", name))
	return index
}

// AddTrack registers the keyframes of t as an input/output accessor pair
// and adds a sampler and a channel to animation anim. It returns the index
// of the channel within the animation.
func (b *Builder) AddTrack(anim int, t Track) (int, error) {
	if anim < 0 || anim >= len(b.animations) {
		return 0, entityErr("animation", anim, "", "%d of %d: %w", anim, len(b.animations), ErrIndexOutOfRange)
	}
	a := &b.animations[anim]
	field := "channels"

	if t.Node < 0 || t.Node >= len(b.nodes) {
		return 0, entityErr("animation", anim, field, "target node %d of %d: %w", t.Node, len(b.nodes), ErrIndexOutOfRange)
	}
	if b.nodes[t.Node].Matrix != nil {
		return 0, entityErr("animation", anim, field, "target node %d uses a matrix: %w", t.Node, ErrInvariant)
	}
	for _, ch := range a.Channels {
		if ch.Target.Node == t.Node && ch.Target.Path == t.Path {
			return 0, entityErr("animation", anim, field, "node %d %s is already animated: %w", t.Node, t.Path, ErrInvariant)
		}
	}
	elem := t.Path.ElementType()
	if elem == "" {
		return 0, entityErr("animation", anim, field, "path %q: %w", t.Path, ErrInvalidData)
	}
	interp := t.Interpolation
	if interp == "" {
		interp = manifest.InterpolationLinear
	}
	if !interp.Valid() {
		return 0, entityErr("animation", anim, field, "interpolation %q: %w", interp, ErrInvalidData)
	}
	if len(t.Times) == 0 {
		return 0, entityErr("animation", anim, field, "track has no keyframes: %w", ErrInvariant)
	}

	keys := len(t.Times) * interp.OutputsPerKey()
	comps := elem.Components()
	if t.Path == manifest.PathWeights {
		if len(t.Values) == 0 || len(t.Values)%keys != 0 {
			return 0, entityErr("animation", anim, field, "%d weights for %d outputs: %w", len(t.Values), keys, ErrAttributeMismatch)
		}
	} else if len(t.Values) != keys*comps {
		return 0, entityErr("animation", anim, field, "%d values for %d %s outputs: %w",
			len(t.Values), keys, elem, ErrAttributeMismatch)
	}
	if t.Path == manifest.PathRotation {
		if k := nonUnitKey(t.Values, interp); k >= 0 {
			return 0, entityErr("animation", anim, field, "rotation at keyframe %d is not a unit quaternion: %w", k, ErrInvalidData)
		}
	}

	cp := b.checkpoint()
	input, err := b.reg.RegisterAnimationInput(t.Times)
	if err != nil {
		return 0, &EntityError{Kind: "animation", Index: anim, Field: field, Err: err}
	}
	output, err := b.reg.RegisterAnimationOutput(t.Values, elem)
	if err != nil {
		b.rollback(cp)
		return 0, &EntityError{Kind: "animation", Index: anim, Field: field, Err: err}
	}

	a.Samplers = append(a.Samplers, manifest.AnimationSampler{Input: input, Output: output, Interpolation: interp})
	a.Channels = append(a.Channels, manifest.Channel{
		Sampler: len(a.Samplers) - 1,
		Target:  manifest.ChannelTarget{Node: t.Node, Path: t.Path},
	})
	channel := len(a.Channels) - 1
	b.log.Debug("added animation track",
		zap.Int("animation", anim), zap.Int("channel", channel),
		zap.Int("node", t.Node), zap.String("path", string(t.Path)),
		zap.String("interpolation", string(interp)), zap.Int("keyframes", len(t.Times)))
	return channel, nil
}
