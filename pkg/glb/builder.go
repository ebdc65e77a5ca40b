// Package glb builds glTF 2.0 scenes in memory and writes them as a single
// binary GLB container.
//
// A Builder owns append-only tables of meshes, nodes, scenes, materials,
// textures and animations. Every Add method returns the stable index of the
// new entry, and cross-references are always indices into these tables.
// Vertex, index, keyframe and image data is packed into one binary buffer as
// it is added; nothing is re-encoded at export.
//
// Add methods validate their input before touching the builder, so a failed
// call leaves it unchanged. WriteGLB runs a final structural validation pass
// over the whole document before writing a single byte.
//
// A Builder is not safe for concurrent use.
package glb

import (
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
)

// Builder accumulates a glTF document and its binary buffer.
type Builder struct {
	buf *Assembler
	reg *Registry
	log *zap.Logger

	strict    bool
	generator string
	copyright string

	scenes       []manifest.Scene
	defaultScene *int
	nodes        []manifest.Node
	parent       []int
	meshes       []manifest.Mesh
	materials    []manifest.Material
	textures     []manifest.Texture
	samplers     []manifest.Sampler
	images       []manifest.Image
	animations   []manifest.Animation
	extensions   []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used for registration and warning messages.
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

// WithStrict turns partial vertex attributes and degenerate triangles into
// errors instead of filling defaults.
func WithStrict(strict bool) Option {
	return func(b *Builder) { b.strict = strict }
}

// WithGenerator sets asset.generator.
func WithGenerator(generator string) Option {
	return func(b *Builder) { b.generator = generator }
}

// WithCopyright sets asset.copyright.
func WithCopyright(copyright string) Option {
	return func(b *Builder) { b.copyright = copyright }
}

// New returns an empty builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		buf:       &Assembler{},
		log:       zap.NewNop(),
		generator: DefaultGenerator,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.reg = NewRegistry(b.buf, b.log)
	return b
}

// Registry exposes the accessor and buffer view tables.
func (b *Builder) Registry() *Registry { return b.reg }

// Strict reports whether strict validation is enabled.
func (b *Builder) Strict() bool { return b.strict }

// Counts of the builder tables.
func (b *Builder) MeshCount() int      { return len(b.meshes) }
func (b *Builder) NodeCount() int      { return len(b.nodes) }
func (b *Builder) SceneCount() int     { return len(b.scenes) }
func (b *Builder) MaterialCount() int  { return len(b.materials) }
func (b *Builder) TextureCount() int   { return len(b.textures) }
func (b *Builder) SamplerCount() int   { return len(b.samplers) }
func (b *Builder) ImageCount() int     { return len(b.images) }
func (b *Builder) AnimationCount() int { return len(b.animations) }

// checkpoint records the registry and buffer sizes so a multi-step
// registration can be undone.
type checkpoint struct {
	bufLen, views, accessors int
}

func (b *Builder) checkpoint() checkpoint {
	return checkpoint{
		bufLen:    b.buf.Len(),
		views:     len(b.reg.views),
		accessors: len(b.reg.accessors),
	}
}

func (b *Builder) rollback(cp checkpoint) {
	b.buf.truncate(cp.bufLen)
	b.reg.truncate(cp.views, cp.accessors)
}

func (b *Builder) useExtension(name string) {
	if !slices.Contains(b.extensions, name) {
		b.extensions = append(b.extensions, name)
	}
}

// Document assembles the manifest from the builder tables and validates it.
// The returned document shares no slices with the builder.
func (b *Builder) Document() (*manifest.Document, error) {
	doc := &manifest.Document{
		Asset: manifest.Asset{
			Version:   manifest.Version,
			Generator: b.generator,
			Copyright: b.copyright,
		},
		Scenes:         cloneScenes(b.scenes),
		Nodes:          cloneNodes(b.nodes),
		Meshes:         cloneMeshes(b.meshes),
		Materials:      slices.Clone(b.materials),
		Textures:       slices.Clone(b.textures),
		Samplers:       slices.Clone(b.samplers),
		Images:         slices.Clone(b.images),
		Accessors:      slices.Clone(b.reg.accessors),
		BufferViews:    slices.Clone(b.reg.views),
		Animations:     cloneAnimations(b.animations),
		ExtensionsUsed: slices.Clone(b.extensions),
	}
	if b.defaultScene != nil {
		scene := *b.defaultScene
		doc.Scene = &scene
	}
	if n := b.buf.Len(); n > 0 {
		doc.Buffers = []manifest.Buffer{{ByteLength: n}}
	}

	if err := manifest.Validate(doc, b.buf.Len()); err != nil {
		return nil, err
	}
	return doc, nil
}

func cloneScenes(in []manifest.Scene) []manifest.Scene {
	out := slices.Clone(in)
	for i := range out {
		out[i].Nodes = slices.Clone(out[i].Nodes)
	}
	return out
}

func cloneNodes(in []manifest.Node) []manifest.Node {
	out := slices.Clone(in)
	for i := range out {
		out[i].Children = slices.Clone(out[i].Children)
	}
	return out
}

func cloneMeshes(in []manifest.Mesh) []manifest.Mesh {
	out := slices.Clone(in)
	for i := range out {
		out[i].Primitives = slices.Clone(out[i].Primitives)
	}
	return out
}

func cloneAnimations(in []manifest.Animation) []manifest.Animation {
	out := slices.Clone(in)
	for i := range out {
		out[i].Channels = slices.Clone(out[i].Channels)
		out[i].Samplers = slices.Clone(out[i].Samplers)
	}
	return out
}
