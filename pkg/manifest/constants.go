package manifest

import "fmt"

// ComponentType is the numeric type of an accessor's components.
type ComponentType uint32

// Component types.
const (
	Byte          ComponentType = 5120
	UnsignedByte  ComponentType = 5121
	Short         ComponentType = 5122
	UnsignedShort ComponentType = 5123
	UnsignedInt   ComponentType = 5125
	Float         ComponentType = 5126
)

// Size returns the component size in bytes, or 0 for an unknown type.
func (c ComponentType) Size() int {
	switch c {
	case Byte, UnsignedByte:
		return 1
	case Short, UnsignedShort:
		return 2
	case UnsignedInt, Float:
		return 4
	default:
		return 0
	}
}

// String returns the OpenGL-style name of the type.
func (c ComponentType) String() string {
	switch c {
	case Byte:
		return "BYTE"
	case UnsignedByte:
		return "UNSIGNED_BYTE"
	case Short:
		return "SHORT"
	case UnsignedShort:
		return "UNSIGNED_SHORT"
	case UnsignedInt:
		return "UNSIGNED_INT"
	case Float:
		return "FLOAT"
	default:
		return fmt.Sprintf("ComponentType(%d)", uint32(c))
	}
}

// ElementType is the shape of an accessor element.
type ElementType string

// Element types.
const (
	Scalar ElementType = "SCALAR"
	Vec2   ElementType = "VEC2"
	Vec3   ElementType = "VEC3"
	Vec4   ElementType = "VEC4"
	Mat2   ElementType = "MAT2"
	Mat3   ElementType = "MAT3"
	Mat4   ElementType = "MAT4"
)

// Components returns the number of components per element, or 0 for an
// unknown type.
func (e ElementType) Components() int {
	switch e {
	case Scalar:
		return 1
	case Vec2:
		return 2
	case Vec3:
		return 3
	case Vec4, Mat2:
		return 4
	case Mat3:
		return 9
	case Mat4:
		return 16
	default:
		return 0
	}
}

// Target is a buffer view's binding hint.
type Target uint32

// Buffer view targets.
const (
	TargetArrayBuffer        Target = 34962
	TargetElementArrayBuffer Target = 34963
)

// Filter is a texture sampler filter.
type Filter uint32

// Sampler filters.
const (
	FilterNearest              Filter = 9728
	FilterLinear               Filter = 9729
	FilterNearestMipmapNearest Filter = 9984
	FilterLinearMipmapNearest  Filter = 9985
	FilterNearestMipmapLinear  Filter = 9986
	FilterLinearMipmapLinear   Filter = 9987
)

// IsMagFilter reports whether f is allowed as a magnification filter.
func (f Filter) IsMagFilter() bool {
	return f == FilterNearest || f == FilterLinear
}

// IsMinFilter reports whether f is allowed as a minification filter.
func (f Filter) IsMinFilter() bool {
	switch f {
	case FilterNearest, FilterLinear,
		FilterNearestMipmapNearest, FilterLinearMipmapNearest,
		FilterNearestMipmapLinear, FilterLinearMipmapLinear:
		return true
	}
	return false
}

// Wrap is a texture coordinate wrapping mode.
type Wrap uint32

// Wrapping modes.
const (
	WrapRepeat         Wrap = 10497
	WrapClampToEdge    Wrap = 33071
	WrapMirroredRepeat Wrap = 33648
)

// Valid reports whether w is a known wrapping mode.
func (w Wrap) Valid() bool {
	return w == WrapRepeat || w == WrapClampToEdge || w == WrapMirroredRepeat
}

// Mode is a primitive topology.
type Mode uint32

// ModeTriangles is the only topology emitted.
const ModeTriangles Mode = 4

// AlphaMode selects how a material's alpha is interpreted.
type AlphaMode string

// Alpha modes.
const (
	AlphaOpaque AlphaMode = "OPAQUE"
	AlphaMask   AlphaMode = "MASK"
	AlphaBlend  AlphaMode = "BLEND"
)

// Valid reports whether a is a known alpha mode.
func (a AlphaMode) Valid() bool {
	return a == AlphaOpaque || a == AlphaMask || a == AlphaBlend
}

// Path is the node property an animation channel drives.
type Path string

// Channel paths.
const (
	PathTranslation Path = "translation"
	PathRotation    Path = "rotation"
	PathScale       Path = "scale"
	PathWeights     Path = "weights"
)

// ElementType returns the output element type for the path.
func (p Path) ElementType() ElementType {
	switch p {
	case PathTranslation, PathScale:
		return Vec3
	case PathRotation:
		return Vec4
	case PathWeights:
		return Scalar
	default:
		return ""
	}
}

// Interpolation is an animation sampler's interpolation mode.
type Interpolation string

// Interpolation modes.
const (
	InterpolationStep        Interpolation = "STEP"
	InterpolationLinear      Interpolation = "LINEAR"
	InterpolationCubicSpline Interpolation = "CUBICSPLINE"
)

// Valid reports whether i is a known interpolation mode.
func (i Interpolation) Valid() bool {
	return i == InterpolationStep || i == InterpolationLinear || i == InterpolationCubicSpline
}

// OutputsPerKey returns how many output elements each keyframe carries.
func (i Interpolation) OutputsPerKey() int {
	if i == InterpolationCubicSpline {
		return 3
	}
	return 1
}

// ExtSpecularGlossiness is the specular-glossiness material extension.
const ExtSpecularGlossiness = "KHR_materials_pbrSpecularGlossiness"

// Vertex attribute semantics.
const (
	AttrPosition = "POSITION"
	AttrNormal   = "NORMAL"
	AttrTangent  = "TANGENT"
)

// TexCoord returns the semantic of UV channel n.
func TexCoord(n int) string { return fmt.Sprintf("TEXCOORD_%d", n) }

// Color returns the semantic of vertex color set n.
func Color(n int) string { return fmt.Sprintf("COLOR_%d", n) }
