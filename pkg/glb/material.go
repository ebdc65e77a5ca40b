package glb

import (
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/math"
)

// Material describes a metallic-roughness PBR material. Texture fields are
// texture indices; nil means untextured.
type Material struct {
	Name string

	BaseColor                math.Vec4
	BaseColorTexture         *int
	Metallic                 float32
	Roughness                float32
	MetallicRoughnessTexture *int

	NormalTexture     *int
	NormalScale       float32
	OcclusionTexture  *int
	OcclusionStrength float32
	EmissiveTexture   *int
	// Emissive is written as white when it is zero and EmissiveTexture is
	// set, since the texture is multiplied by it.
	Emissive math.Vec3

	AlphaMode   manifest.AlphaMode
	AlphaCutoff *float32
	DoubleSided bool
}

// NewMaterial returns an opaque white material with metallic and roughness
// factors of 1.
func NewMaterial(name string) Material {
	return Material{
		Name:              name,
		BaseColor:         math.V4(1, 1, 1, 1),
		Metallic:          1,
		Roughness:         1,
		NormalScale:       1,
		OcclusionStrength: 1,
		AlphaMode:         manifest.AlphaOpaque,
	}
}

// BasicMaterial returns a default material with base color rgba.
func BasicMaterial(name string, rgba math.Vec4) Material {
	m := NewMaterial(name)
	m.BaseColor = rgba
	return m
}

// MetallicMaterial returns a material with explicit metallic and roughness
// factors.
func MetallicMaterial(name string, rgba math.Vec4, metallic, roughness float32) Material {
	m := BasicMaterial(name, rgba)
	m.Metallic = metallic
	m.Roughness = roughness
	return m
}

// TexturedMaterial returns a white material sampling baseColor, which may
// be nil, with optional normal and occlusion maps.
func TexturedMaterial(name string, baseColor, normal, occlusion *int) Material {
	m := NewMaterial(name)
	m.BaseColorTexture = baseColor
	m.NormalTexture = normal
	m.OcclusionTexture = occlusion
	return m
}

// SpecularGlossiness holds the KHR_materials_pbrSpecularGlossiness
// parameters.
type SpecularGlossiness struct {
	Diffuse                   math.Vec4
	DiffuseTexture            *int
	Specular                  math.Vec3
	Glossiness                float32
	SpecularGlossinessTexture *int
}

// DefaultSpecularGlossiness returns white diffuse and specular with full
// glossiness.
func DefaultSpecularGlossiness() SpecularGlossiness {
	return SpecularGlossiness{
		Diffuse:    math.V4(1, 1, 1, 1),
		Specular:   math.V3(1, 1, 1),
		Glossiness: 1,
	}
}

// AddMaterial adds a metallic-roughness material.
func (b *Builder) AddMaterial(m Material) (int, error) {
	index := len(b.materials)
	rec, err := b.materialRecord(index, m)
	if err != nil {
		return 0, err
	}
	b.materials = append(b.materials, rec)
	b.log.Debug("added material", zap.Int("material", index), zap.String("name", m.Name))
	return index, nil
}

// AddSpecularGlossinessMaterial adds a material carrying the
// specular-glossiness extension. fallback supplies the metallic-roughness
// block for viewers without the extension.
func (b *Builder) AddSpecularGlossinessMaterial(fallback Material, sg SpecularGlossiness) (int, error) {
	index := len(b.materials)
	rec, err := b.materialRecord(index, fallback)
	if err != nil {
		return 0, err
	}

	const field = "extensions." + manifest.ExtSpecularGlossiness
	if !finite(sg.Diffuse.X, sg.Diffuse.Y, sg.Diffuse.Z, sg.Diffuse.W,
		sg.Specular.X, sg.Specular.Y, sg.Specular.Z, sg.Glossiness) {
		return 0, entityErr("material", index, field, "factors must be finite: %w", ErrInvalidData)
	}
	ext := &manifest.PBRSpecularGlossiness{
		DiffuseFactor:    sg.Diffuse.Array(),
		SpecularFactor:   sg.Specular.Array(),
		GlossinessFactor: sg.Glossiness,
	}
	if ext.DiffuseTexture, err = b.textureInfo(index, field+".diffuseTexture", sg.DiffuseTexture); err != nil {
		return 0, err
	}
	if ext.SpecularGlossinessTexture, err = b.textureInfo(index, field+".specularGlossinessTexture", sg.SpecularGlossinessTexture); err != nil {
		return 0, err
	}
	rec.Extensions = &manifest.MaterialExtensions{SpecularGlossiness: ext}

	b.materials = append(b.materials, rec)
	b.useExtension(manifest.ExtSpecularGlossiness)
	b.log.Debug("added specular-glossiness material", zap.Int("material", index), zap.String("name", fallback.Name))
	return index, nil
}

func (b *Builder) textureInfo(material int, field string, tex *int) (*manifest.TextureInfo, error) {
	if tex == nil {
		return nil, nil
	}
	if *tex < 0 || *tex >= len(b.textures) {
		return nil, entityErr("material", material, field, "texture %d of %d: %w", *tex, len(b.textures), ErrIndexOutOfRange)
	}
	return &manifest.TextureInfo{Index: *tex}, nil
}

func (b *Builder) materialRecord(index int, m Material) (manifest.Material, error) {
	rec := manifest.Material{
		Name:        m.Name,
		AlphaMode:   m.AlphaMode,
		DoubleSided: m.DoubleSided,
	}
	if rec.AlphaMode == "" {
		rec.AlphaMode = manifest.AlphaOpaque
	}
	if !rec.AlphaMode.Valid() {
		return rec, entityErr("material", index, "alphaMode", "%q: %w", m.AlphaMode, ErrInvalidData)
	}
	if m.AlphaCutoff != nil {
		if rec.AlphaMode != manifest.AlphaMask {
			return rec, entityErr("material", index, "alphaCutoff", "only valid with MASK: %w", ErrInvariant)
		}
		if !finite(*m.AlphaCutoff) || *m.AlphaCutoff < 0 {
			return rec, entityErr("material", index, "alphaCutoff", "%v: %w", *m.AlphaCutoff, ErrInvalidData)
		}
		cutoff := *m.AlphaCutoff
		rec.AlphaCutoff = &cutoff
	}

	c, e := m.BaseColor, m.Emissive
	if !finite(c.X, c.Y, c.Z, c.W, m.Metallic, m.Roughness, e.X, e.Y, e.Z, m.NormalScale, m.OcclusionStrength) {
		return rec, entityErr("material", index, "pbrMetallicRoughness", "factors must be finite: %w", ErrInvalidData)
	}

	pbr := &manifest.PBRMetallicRoughness{
		BaseColorFactor: c.Array(),
		MetallicFactor:  m.Metallic,
		RoughnessFactor: m.Roughness,
	}
	var err error
	if pbr.BaseColorTexture, err = b.textureInfo(index, "pbrMetallicRoughness.baseColorTexture", m.BaseColorTexture); err != nil {
		return rec, err
	}
	if pbr.MetallicRoughnessTexture, err = b.textureInfo(index, "pbrMetallicRoughness.metallicRoughnessTexture", m.MetallicRoughnessTexture); err != nil {
		return rec, err
	}
	rec.PBRMetallicRoughness = pbr

	if info, err := b.textureInfo(index, "normalTexture", m.NormalTexture); err != nil {
		return rec, err
	} else if info != nil {
		rec.NormalTexture = &manifest.NormalTextureInfo{Index: info.Index, Scale: m.NormalScale}
	}
	if info, err := b.textureInfo(index, "occlusionTexture", m.OcclusionTexture); err != nil {
		return rec, err
	} else if info != nil {
		rec.OcclusionTexture = &manifest.OcclusionTextureInfo{Index: info.Index, Strength: m.OcclusionStrength}
	}
	if rec.EmissiveTexture, err = b.textureInfo(index, "emissiveTexture", m.EmissiveTexture); err != nil {
		return rec, err
	}
	if e != (math.Vec3{}) || rec.EmissiveTexture != nil {
		emissive := e.Array()
		if rec.EmissiveTexture != nil && e == (math.Vec3{}) {
			emissive = [3]float32{1, 1, 1}
		}
		rec.EmissiveFactor = &emissive
	}
	return rec, nil
}

// finite reports whether no value is NaN or infinite.
func finite(values ...float32) bool {
	return allFinite(values)
}
