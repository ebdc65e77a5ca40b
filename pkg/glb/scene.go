package glb

import (
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/pkg/manifest"
	"github.com/Faultbox/glbforge/pkg/math"
)

// NodeSpec describes a node to add. Matrix and the TRS fields are mutually
// exclusive; leaving all of them nil gives an identity transform.
type NodeSpec struct {
	Name        string
	Mesh        *int
	Matrix      *math.Mat4
	Translation *math.Vec3
	Rotation    *math.Quat
	Scale       *math.Vec3
	// Children must already exist and have no parent.
	Children []int
}

// MeshNode returns a spec for a node showing mesh at the origin.
func MeshNode(name string, mesh int) NodeSpec {
	return NodeSpec{Name: name, Mesh: &mesh}
}

// At returns a copy of s translated to t.
func (s NodeSpec) At(t math.Vec3) NodeSpec {
	s.Translation = &t
	return s
}

// Rotated returns a copy of s rotated by q.
func (s NodeSpec) Rotated(q math.Quat) NodeSpec {
	s.Rotation = &q
	return s
}

// Scaled returns a copy of s scaled by v.
func (s NodeSpec) Scaled(v math.Vec3) NodeSpec {
	s.Scale = &v
	return s
}

// WithMatrix returns a copy of s using matrix m.
func (s NodeSpec) WithMatrix(m math.Mat4) NodeSpec {
	s.Matrix = &m
	return s
}

// AddNode adds a node and attaches its children.
func (b *Builder) AddNode(spec NodeSpec) (int, error) {
	index := len(b.nodes)
	node := manifest.Node{Name: spec.Name}

	if spec.Mesh != nil {
		if *spec.Mesh < 0 || *spec.Mesh >= len(b.meshes) {
			return 0, entityErr("node", index, "mesh", "%d of %d: %w", *spec.Mesh, len(b.meshes), ErrIndexOutOfRange)
		}
		mesh := *spec.Mesh
		node.Mesh = &mesh
	}

	hasTRS := spec.Translation != nil || spec.Rotation != nil || spec.Scale != nil
	if spec.Matrix != nil && hasTRS {
		return 0, entityErr("node", index, "matrix", "matrix and TRS are both set: %w", ErrInvariant)
	}
	if spec.Matrix != nil {
		if !spec.Matrix.IsFinite() {
			return 0, entityErr("node", index, "matrix", "must be finite: %w", ErrInvalidData)
		}
		m := [16]float32(*spec.Matrix)
		node.Matrix = &m
	}
	if spec.Translation != nil {
		if !spec.Translation.IsFinite() {
			return 0, entityErr("node", index, "translation", "must be finite: %w", ErrInvalidData)
		}
		t := spec.Translation.Array()
		node.Translation = &t
	}
	if spec.Rotation != nil {
		if !spec.Rotation.IsFinite() {
			return 0, entityErr("node", index, "rotation", "must be finite: %w", ErrInvalidData)
		}
		if !isUnit(*spec.Rotation) {
			return 0, entityErr("node", index, "rotation", "length %g is not 1: %w", spec.Rotation.Length(), ErrInvalidData)
		}
		r := spec.Rotation.Array()
		node.Rotation = &r
	}
	if spec.Scale != nil {
		if !spec.Scale.IsFinite() {
			return 0, entityErr("node", index, "scale", "must be finite: %w", ErrInvalidData)
		}
		s := spec.Scale.Array()
		node.Scale = &s
	}

	for i, c := range spec.Children {
		if c < 0 || c >= index {
			return 0, entityErr("node", index, "children", "%d of %d: %w", c, index, ErrIndexOutOfRange)
		}
		if p := b.parent[c]; p >= 0 {
			return 0, entityErr("node", c, "", "already a child of node %d: %w", p, ErrInvariant)
		}
		if b.isSceneRoot(c) {
			return 0, entityErr("node", c, "", "is a scene root: %w", ErrInvariant)
		}
		for _, prev := range spec.Children[:i] {
			if prev == c {
				return 0, entityErr("node", index, "children", "node %d listed twice: %w", c, ErrInvariant)
			}
		}
	}

	node.Children = append([]int(nil), spec.Children...)
	for _, c := range node.Children {
		b.parent[c] = index
	}
	b.nodes = append(b.nodes, node)
	b.parent = append(b.parent, -1)
	b.log.Debug("added node", zap.Int("node", index), zap.String("name", spec.Name), zap.Ints("children", node.Children))
	return index, nil
}

// AddChild attaches child under parent. A node has at most one parent and
// the hierarchy may not contain cycles.
func (b *Builder) AddChild(parent, child int) error {
	n := len(b.nodes)
	if parent < 0 || parent >= n {
		return entityErr("node", parent, "", "%d of %d: %w", parent, n, ErrIndexOutOfRange)
	}
	if child < 0 || child >= n {
		return entityErr("node", parent, "children", "%d of %d: %w", child, n, ErrIndexOutOfRange)
	}
	if p := b.parent[child]; p >= 0 {
		return entityErr("node", child, "", "already a child of node %d: %w", p, ErrInvariant)
	}
	for a := parent; a >= 0; a = b.parent[a] {
		if a == child {
			return entityErr("node", parent, "children", "adding node %d creates a cycle: %w", child, ErrInvariant)
		}
	}
	if b.isSceneRoot(child) {
		return entityErr("node", child, "", "is a scene root: %w", ErrInvariant)
	}

	b.nodes[parent].Children = append(b.nodes[parent].Children, child)
	b.parent[child] = parent
	return nil
}

func (b *Builder) isSceneRoot(node int) bool {
	for _, s := range b.scenes {
		for _, root := range s.Nodes {
			if root == node {
				return true
			}
		}
	}
	return false
}

// Parent returns the parent of node i, or -1 for a root.
func (b *Builder) Parent(i int) (int, error) {
	if i < 0 || i >= len(b.parent) {
		return 0, entityErr("node", i, "", "%d of %d: %w", i, len(b.parent), ErrIndexOutOfRange)
	}
	return b.parent[i], nil
}

// AddScene adds a scene with the given root nodes. The first scene added
// becomes the default scene.
func (b *Builder) AddScene(name string, roots []int) (int, error) {
	index := len(b.scenes)
	for i, r := range roots {
		if r < 0 || r >= len(b.nodes) {
			return 0, entityErr("scene", index, "nodes", "%d of %d: %w", r, len(b.nodes), ErrIndexOutOfRange)
		}
		if p := b.parent[r]; p >= 0 {
			return 0, entityErr("scene", index, "nodes", "node %d is a child of node %d: %w", r, p, ErrInvariant)
		}
		for _, prev := range roots[:i] {
			if prev == r {
				return 0, entityErr("scene", index, "nodes", "node %d listed twice: %w", r, ErrInvariant)
			}
		}
	}

	b.scenes = append(b.scenes, manifest.Scene{Name: name, Nodes: append([]int(nil), roots...)})
	if b.defaultScene == nil {
		b.defaultScene = &index
	}
	b.log.Debug("added scene", zap.Int("scene", index), zap.String("name", name), zap.Ints("nodes", roots))
	return index, nil
}

// SetDefaultScene marks scene i as the scene to display on load.
func (b *Builder) SetDefaultScene(i int) error {
	if i < 0 || i >= len(b.scenes) {
		return entityErr("scene", i, "", "%d of %d: %w", i, len(b.scenes), ErrIndexOutOfRange)
	}
	b.defaultScene = &i
	return nil
}
