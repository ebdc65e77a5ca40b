package glb

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
)

// maxShortIndexVertices is the largest vertex count addressed with 16-bit
// indices.
const maxShortIndexVertices = 65535

// Registry allocates buffer views and accessors over an Assembler. Every
// registration appends one block and records one view and, except for
// images, one accessor. Records are immutable once registered.
type Registry struct {
	buf       *Assembler
	views     []manifest.BufferView
	accessors []manifest.Accessor
	log       *zap.Logger
}

// NewRegistry returns a registry appending to buf. A nil logger disables
// logging.
func NewRegistry(buf *Assembler, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{buf: buf, log: log}
}

// Views returns the registered buffer views.
func (r *Registry) Views() []manifest.BufferView { return r.views }

// Accessors returns the registered accessors.
func (r *Registry) Accessors() []manifest.Accessor { return r.accessors }

// Accessor returns accessor i.
func (r *Registry) Accessor(i int) (manifest.Accessor, error) {
	if i < 0 || i >= len(r.accessors) {
		return manifest.Accessor{}, entityErr("accessor", i, "", "%d of %d: %w", i, len(r.accessors), ErrIndexOutOfRange)
	}
	return r.accessors[i], nil
}

// View returns buffer view i.
func (r *Registry) View(i int) (manifest.BufferView, error) {
	if i < 0 || i >= len(r.views) {
		return manifest.BufferView{}, entityErr("bufferView", i, "", "%d of %d: %w", i, len(r.views), ErrIndexOutOfRange)
	}
	return r.views[i], nil
}

func (r *Registry) addView(block []byte, align int, target manifest.Target) int {
	offset, length := r.buf.Append(block, align)
	r.views = append(r.views, manifest.BufferView{
		Buffer:     0,
		ByteOffset: offset,
		ByteLength: length,
		Target:     target,
	})
	return len(r.views) - 1
}

func (r *Registry) addAccessor(block []byte, target manifest.Target, acc manifest.Accessor, semantic string) int {
	acc.BufferView = r.addView(block, acc.ComponentType.Size(), target)
	r.accessors = append(r.accessors, acc)
	idx := len(r.accessors) - 1

	view := r.views[acc.BufferView]
	r.log.Debug("registered accessor",
		zap.Int("accessor", idx),
		zap.String("semantic", semantic),
		zap.String("type", string(acc.Type)),
		zap.Stringer("componentType", acc.ComponentType),
		zap.Int("count", acc.Count),
		zap.Int("byteOffset", view.ByteOffset),
		zap.Int("byteLength", view.ByteLength))
	return idx
}

// RegisterVertexAttribute stores little-endian vertex data for semantic.
// Position data must be float VEC3; its component-wise bounds are recorded.
// Integer colors and texture coordinates are marked normalized.
func (r *Registry) RegisterVertexAttribute(semantic string, elem manifest.ElementType, comp manifest.ComponentType, data []byte) (int, error) {
	size, comps := comp.Size(), elem.Components()
	if size == 0 || comps == 0 {
		return 0, fmt.Errorf("attribute %s: %s of %v: %w", semantic, elem, comp, manifest.ErrInvalidData)
	}
	stride := size * comps
	if len(data) == 0 || len(data)%stride != 0 {
		return 0, fmt.Errorf("attribute %s: %d bytes is not a whole number of %d-byte elements: %w",
			semantic, len(data), stride, manifest.ErrAttributeMismatch)
	}

	acc := manifest.Accessor{
		ComponentType: comp,
		Count:         len(data) / stride,
		Type:          elem,
	}
	if semantic == manifest.AttrPosition {
		if comp != manifest.Float || elem != manifest.Vec3 {
			return 0, fmt.Errorf("attribute %s: %s of %v: %w", semantic, elem, comp, manifest.ErrInvalidData)
		}
		values := decodeFloats(data)
		if !allFinite(values) {
			return 0, fmt.Errorf("attribute %s: non-finite position: %w", semantic, manifest.ErrInvalidData)
		}
		acc.Min, acc.Max = bounds(values, comps)
	}
	if (comp == manifest.UnsignedByte || comp == manifest.UnsignedShort) &&
		(strings.HasPrefix(semantic, "COLOR_") || strings.HasPrefix(semantic, "TEXCOORD_")) {
		acc.Normalized = true
	}
	return r.addAccessor(data, manifest.TargetArrayBuffer, acc, semantic), nil
}

// RegisterFloats stores float vertex data for semantic.
func (r *Registry) RegisterFloats(semantic string, elem manifest.ElementType, values []float32) (int, error) {
	return r.RegisterVertexAttribute(semantic, elem, manifest.Float, encodeFloats(values))
}

// RegisterIndices stores a triangle index list for a mesh of vertexCount
// vertices. Indices are written as unsigned 16-bit when vertexCount fits,
// unsigned 32-bit otherwise.
func (r *Registry) RegisterIndices(indices []uint32, vertexCount int) (int, error) {
	if len(indices) == 0 || len(indices)%3 != 0 {
		return 0, fmt.Errorf("indices: %d is not a positive multiple of 3: %w", len(indices), manifest.ErrInvariant)
	}
	for i, idx := range indices {
		if int64(idx) >= int64(vertexCount) {
			return 0, fmt.Errorf("indices[%d] = %d of %d vertices: %w", i, idx, vertexCount, manifest.ErrIndexOutOfRange)
		}
	}

	acc := manifest.Accessor{Count: len(indices), Type: manifest.Scalar}
	var data []byte
	if vertexCount <= maxShortIndexVertices {
		acc.ComponentType = manifest.UnsignedShort
		data = make([]byte, 2*len(indices))
		for i, idx := range indices {
			binary.LittleEndian.PutUint16(data[2*i:], uint16(idx))
		}
	} else {
		acc.ComponentType = manifest.UnsignedInt
		data = make([]byte, 4*len(indices))
		for i, idx := range indices {
			binary.LittleEndian.PutUint32(data[4*i:], idx)
		}
	}
	return r.addAccessor(data, manifest.TargetElementArrayBuffer, acc, "indices"), nil
}

// RegisterAnimationInput stores keyframe times. Times must be finite and
// strictly increasing; the accessor records their bounds.
func (r *Registry) RegisterAnimationInput(times []float32) (int, error) {
	if len(times) == 0 {
		return 0, fmt.Errorf("animation input: no keyframes: %w", manifest.ErrInvariant)
	}
	if !allFinite(times) {
		return 0, fmt.Errorf("animation input: non-finite time: %w", manifest.ErrInvalidData)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return 0, fmt.Errorf("animation input: time %d (%v) is not after %v: %w",
				i, times[i], times[i-1], manifest.ErrInvalidData)
		}
	}
	acc := manifest.Accessor{
		ComponentType: manifest.Float,
		Count:         len(times),
		Type:          manifest.Scalar,
		Min:           []float32{times[0]},
		Max:           []float32{times[len(times)-1]},
	}
	return r.addAccessor(encodeFloats(times), 0, acc, "input"), nil
}

// RegisterAnimationOutput stores keyframe values as elements of elem.
func (r *Registry) RegisterAnimationOutput(values []float32, elem manifest.ElementType) (int, error) {
	comps := elem.Components()
	if comps == 0 {
		return 0, fmt.Errorf("animation output: type %q: %w", elem, manifest.ErrInvalidData)
	}
	if len(values) == 0 || len(values)%comps != 0 {
		return 0, fmt.Errorf("animation output: %d values is not a whole number of %s: %w",
			len(values), elem, manifest.ErrAttributeMismatch)
	}
	if !allFinite(values) {
		return 0, fmt.Errorf("animation output: non-finite value: %w", manifest.ErrInvalidData)
	}
	acc := manifest.Accessor{
		ComponentType: manifest.Float,
		Count:         len(values) / comps,
		Type:          elem,
	}
	return r.addAccessor(encodeFloats(values), 0, acc, "output"), nil
}

// RegisterImage stores an encoded image and returns its buffer view.
func (r *Registry) RegisterImage(data []byte) int {
	idx := r.addView(data, 4, 0)
	r.log.Debug("registered image view", zap.Int("bufferView", idx), zap.Int("byteLength", len(data)))
	return idx
}

func (r *Registry) truncate(views, accessors int) {
	r.views = r.views[:views]
	r.accessors = r.accessors[:accessors]
}

func encodeFloats(values []float32) []byte {
	data := make([]byte, 4*len(values))
	for i, f := range values {
		binary.LittleEndian.PutUint32(data[4*i:], math32.Float32bits(f))
	}
	return data
}

func decodeFloats(data []byte) []float32 {
	values := make([]float32, len(data)/4)
	for i := range values {
		values[i] = math32.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return values
}

// bounds returns the component-wise min and max of interleaved elements.
func bounds(values []float32, comps int) (lo, hi []float32) {
	lo = append([]float32(nil), values[:comps]...)
	hi = append([]float32(nil), values[:comps]...)
	for i := comps; i < len(values); i += comps {
		for c := 0; c < comps; c++ {
			lo[c] = math32.Min(lo[c], values[i+c])
			hi[c] = math32.Max(hi[c], values[i+c])
		}
	}
	return lo, hi
}

func allFinite(values []float32) bool {
	for _, f := range values {
		if math32.IsNaN(f) || math32.IsInf(f, 0) {
			return false
		}
	}
	return true
}
