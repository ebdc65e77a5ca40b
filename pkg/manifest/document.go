// Package manifest holds the glTF 2.0 JSON document emitted into the JSON
// chunk of a GLB file, the numeric and string constants it uses, and the
// structural validation run before export.
//
// Every optional field is a pointer or carries omitempty so unset values are
// left out of the JSON instead of being written as null.
package manifest

import (
	"encoding/json"
	"fmt"
)

// Version is the only glTF version emitted.
const Version = "2.0"

// Document is the root of the manifest. Field order follows the order in
// which the properties are written.
type Document struct {
	Asset              Asset        `json:"asset"`
	Scene              *int         `json:"scene,omitempty"`
	Scenes             []Scene      `json:"scenes,omitempty"`
	Nodes              []Node       `json:"nodes,omitempty"`
	Meshes             []Mesh       `json:"meshes,omitempty"`
	Materials          []Material   `json:"materials,omitempty"`
	Textures           []Texture    `json:"textures,omitempty"`
	Samplers           []Sampler    `json:"samplers,omitempty"`
	Images             []Image      `json:"images,omitempty"`
	Accessors          []Accessor   `json:"accessors,omitempty"`
	BufferViews        []BufferView `json:"bufferViews,omitempty"`
	Buffers            []Buffer     `json:"buffers,omitempty"`
	Animations         []Animation  `json:"animations,omitempty"`
	ExtensionsUsed     []string     `json:"extensionsUsed,omitempty"`
	ExtensionsRequired []string     `json:"extensionsRequired,omitempty"`
}

// Asset carries the glTF version and the generator string.
type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

// Scene lists root nodes.
type Scene struct {
	Name  string `json:"name,omitempty"`
	Nodes []int  `json:"nodes,omitempty"`
}

// Node is one element of the node forest. Matrix and the TRS fields are
// mutually exclusive.
type Node struct {
	Name        string       `json:"name,omitempty"`
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"`
	Scale       *[3]float32  `json:"scale,omitempty"`
}

// HasTRS reports whether any of translation, rotation or scale is set.
func (n *Node) HasTRS() bool {
	return n.Translation != nil || n.Rotation != nil || n.Scale != nil
}

// Mesh is a named list of primitives.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive is one draw call: attribute accessors, an optional index
// accessor and an optional material.
type Primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Material   *int           `json:"material,omitempty"`
	Mode       Mode           `json:"mode"`
}

// TextureInfo references a texture from a material.
type TextureInfo struct {
	Index    int `json:"index"`
	TexCoord int `json:"texCoord,omitempty"`
}

// NormalTextureInfo references a tangent-space normal map.
type NormalTextureInfo struct {
	Index    int     `json:"index"`
	TexCoord int     `json:"texCoord,omitempty"`
	Scale    float32 `json:"scale"`
}

// OcclusionTextureInfo references an ambient-occlusion map.
type OcclusionTextureInfo struct {
	Index    int     `json:"index"`
	TexCoord int     `json:"texCoord,omitempty"`
	Strength float32 `json:"strength"`
}

// PBRMetallicRoughness is the core material model. Factors are always
// written so a zero metallic factor survives serialization.
type PBRMetallicRoughness struct {
	BaseColorFactor          [4]float32   `json:"baseColorFactor"`
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicFactor           float32      `json:"metallicFactor"`
	RoughnessFactor          float32      `json:"roughnessFactor"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// PBRSpecularGlossiness is the KHR_materials_pbrSpecularGlossiness record.
type PBRSpecularGlossiness struct {
	DiffuseFactor             [4]float32   `json:"diffuseFactor"`
	DiffuseTexture            *TextureInfo `json:"diffuseTexture,omitempty"`
	SpecularFactor            [3]float32   `json:"specularFactor"`
	GlossinessFactor          float32      `json:"glossinessFactor"`
	SpecularGlossinessTexture *TextureInfo `json:"specularGlossinessTexture,omitempty"`
}

// MaterialExtensions holds the material extensions this package emits.
type MaterialExtensions struct {
	SpecularGlossiness *PBRSpecularGlossiness `json:"KHR_materials_pbrSpecularGlossiness,omitempty"`
}

// Material is a PBR material record.
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PBRMetallicRoughness *PBRMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *NormalTextureInfo    `json:"normalTexture,omitempty"`
	OcclusionTexture     *OcclusionTextureInfo `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	EmissiveFactor       *[3]float32           `json:"emissiveFactor,omitempty"`
	AlphaMode            AlphaMode             `json:"alphaMode,omitempty"`
	AlphaCutoff          *float32              `json:"alphaCutoff,omitempty"`
	DoubleSided          bool                  `json:"doubleSided,omitempty"`
	Extensions           *MaterialExtensions   `json:"extensions,omitempty"`
}

type textureRef struct {
	field string
	index int
}

// textureRefs lists every texture reference in the material with its field
// path, for error messages.
func (m *Material) textureRefs() []textureRef {
	var refs []textureRef
	add := func(field string, info *TextureInfo) {
		if info != nil {
			refs = append(refs, textureRef{field, info.Index})
		}
	}
	if pbr := m.PBRMetallicRoughness; pbr != nil {
		add("pbrMetallicRoughness.baseColorTexture", pbr.BaseColorTexture)
		add("pbrMetallicRoughness.metallicRoughnessTexture", pbr.MetallicRoughnessTexture)
	}
	if m.NormalTexture != nil {
		refs = append(refs, textureRef{"normalTexture", m.NormalTexture.Index})
	}
	if m.OcclusionTexture != nil {
		refs = append(refs, textureRef{"occlusionTexture", m.OcclusionTexture.Index})
	}
	add("emissiveTexture", m.EmissiveTexture)
	if sg := m.SpecularGlossiness(); sg != nil {
		add("extensions.KHR_materials_pbrSpecularGlossiness.diffuseTexture", sg.DiffuseTexture)
		add("extensions.KHR_materials_pbrSpecularGlossiness.specularGlossinessTexture", sg.SpecularGlossinessTexture)
	}
	return refs
}

// SpecularGlossiness returns the material's specular-glossiness extension,
// or nil.
func (m *Material) SpecularGlossiness() *PBRSpecularGlossiness {
	if m.Extensions == nil {
		return nil
	}
	return m.Extensions.SpecularGlossiness
}

// Texture couples an image with an optional sampler.
type Texture struct {
	Name    string `json:"name,omitempty"`
	Sampler *int   `json:"sampler,omitempty"`
	Source  int    `json:"source"`
}

// Sampler selects filtering and wrapping. Zero fields are omitted.
type Sampler struct {
	MagFilter Filter `json:"magFilter,omitempty"`
	MinFilter Filter `json:"minFilter,omitempty"`
	WrapS     Wrap   `json:"wrapS,omitempty"`
	WrapT     Wrap   `json:"wrapT,omitempty"`
}

// Image is an image embedded through a buffer view.
type Image struct {
	Name       string `json:"name,omitempty"`
	BufferView *int   `json:"bufferView,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
	URI        string `json:"uri,omitempty"`
}

// Accessor is a typed view over a buffer view.
type Accessor struct {
	BufferView    int           `json:"bufferView"`
	ByteOffset    int           `json:"byteOffset,omitempty"`
	ComponentType ComponentType `json:"componentType"`
	Normalized    bool          `json:"normalized,omitempty"`
	Count         int           `json:"count"`
	Type          ElementType   `json:"type"`
	Min           []float32     `json:"min,omitempty"`
	Max           []float32     `json:"max,omitempty"`
}

// ByteLength returns the number of bytes the accessor's elements occupy.
func (a *Accessor) ByteLength() int {
	return a.Count * a.Type.Components() * a.ComponentType.Size()
}

// BufferView is a byte range of buffer 0.
type BufferView struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride,omitempty"`
	Target     Target `json:"target,omitempty"`
}

// Buffer is the GLB-embedded binary buffer; it never has a URI.
type Buffer struct {
	ByteLength int `json:"byteLength"`
}

// Animation is a set of samplers and the channels that use them.
type Animation struct {
	Name     string             `json:"name,omitempty"`
	Channels []Channel          `json:"channels"`
	Samplers []AnimationSampler `json:"samplers"`
}

// Channel binds an animation sampler, by index local to its animation, to
// a node property.
type Channel struct {
	Sampler int           `json:"sampler"`
	Target  ChannelTarget `json:"target"`
}

// ChannelTarget names the animated node and property.
type ChannelTarget struct {
	Node int  `json:"node"`
	Path Path `json:"path"`
}

// AnimationSampler pairs a time input accessor with an output accessor.
type AnimationSampler struct {
	Input         int           `json:"input"`
	Output        int           `json:"output"`
	Interpolation Interpolation `json:"interpolation"`
}

// Marshal encodes the document as compact JSON.
func Marshal(doc *Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON manifest.
func Unmarshal(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling manifest: %w", err)
	}
	return &doc, nil
}
