package main

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/glbforge/internal/config"
	"github.com/Faultbox/glbforge/pkg/glb"
	"github.com/Faultbox/glbforge/pkg/math"
	"github.com/Faultbox/glbforge/pkg/mesh"
	"github.com/Faultbox/glbforge/pkg/texture"
)

func cmdDemo(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("demo", stderr)
	cfg, _, log, err := setup(fs, args)
	if err != nil {
		return err
	}
	path, err := writeDemo(cfg, log)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote: %s\n", path)
	return nil
}

// writeDemo builds the showcase scene and writes it to the configured output.
func writeDemo(cfg *config.Config, log *zap.Logger) (string, error) {
	b, err := buildDemo(cfg, log)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(cfg.Output.Dir, cfg.Output.Name)
	if err := b.WriteFile(path); err != nil {
		return "", err
	}
	return path, nil
}

// demoMaterials holds the material indices used by the showcase scene.
type demoMaterials struct {
	red, metal, checker, gloss int
}

// buildDemo assembles a scene exercising every builder feature: generated
// primitives, embedded textures, both material models, a node hierarchy,
// keyframe animation and a bent cylinder.
func buildDemo(cfg *config.Config, log *zap.Logger) (*glb.Builder, error) {
	b := glb.New(cfg.BuilderOptions(log)...)

	mats, err := addDemoMaterials(b, cfg)
	if err != nil {
		return nil, err
	}

	cube := mesh.Cube(1, 1, 1)
	cube.SetMaterial(mats.checker)

	sphere := mesh.Sphere(0.5, 32, 16)
	sphere.SetMaterial(mats.metal)

	torus := mesh.Torus(mesh.DefaultTorusParams())
	torus.SetMaterial(mats.gloss)

	ico := mesh.Icosphere(mesh.DefaultIcosphereParams())
	for i := range ico.Vertices {
		n := ico.Vertices[i].Position.Normalize()
		c := math.V4(0.5+0.5*n.X, 0.5+0.5*n.Y, 0.5+0.5*n.Z, 1)
		ico.Vertices[i].Color = &c
	}

	cylParams := mesh.DefaultCylinderParams()
	cylParams.Radius = 0.15
	cylParams.Height = 2
	cylParams.HeightSegments = 24
	bent := mesh.Cylinder(cylParams)
	bent.Name = "bent cylinder"
	if err := mesh.BendAuto(bent, math32.Pi/2, math.AxisZ, math.AxisY); err != nil {
		return nil, err
	}
	bent.SetMaterial(mats.red)

	parts := []*mesh.Mesh{cube, sphere, torus, ico, bent}
	if cfg.Export.Tangents {
		for _, m := range parts {
			if err := mesh.GenerateTangents(m); err != nil {
				return nil, fmt.Errorf("%s: %w", m.Name, err)
			}
		}
	}

	opts := cfg.MeshOptions()
	meshIDs := make([]int, len(parts))
	for i, m := range parts {
		if meshIDs[i], err = b.AddMesh(m, opts); err != nil {
			return nil, err
		}
	}

	// Plinth made of two primitives sharing one mesh.
	base := mesh.Plane(6, 3, 6, 3)
	base.SetMaterial(mats.metal)
	rim := mesh.Cube(6, 0.1, 0.1)
	mesh.Translate(rim, math.V3(0, 0.05, -1.5))
	rim.SetMaterial(mats.red)
	plinth, err := b.AddPrimitiveMesh("plinth", []*mesh.Mesh{base, rim}, opts)
	if err != nil {
		return nil, err
	}

	var children []int
	add := func(spec glb.NodeSpec) (int, error) {
		n, err := b.AddNode(spec)
		if err == nil {
			children = append(children, n)
		}
		return n, err
	}

	if _, err := add(glb.MeshNode("Cube", meshIDs[0]).At(math.V3(-2, 0.5, 0))); err != nil {
		return nil, err
	}
	sphereNode, err := add(glb.MeshNode("Sphere", meshIDs[1]).At(math.V3(-0.7, 0.5, 0)))
	if err != nil {
		return nil, err
	}
	torusNode, err := add(glb.MeshNode("Torus", meshIDs[2]).
		At(math.V3(0.7, 0.5, 0)).
		Rotated(math.QuatFromAxisAngle(math.UnitX, math32.Pi/2)))
	if err != nil {
		return nil, err
	}
	if _, err := add(glb.MeshNode("Icosphere", meshIDs[3]).At(math.V3(2, 0.5, 0)).Scaled(math.V3(0.5, 0.5, 0.5))); err != nil {
		return nil, err
	}
	if _, err := add(glb.MeshNode("Bent", meshIDs[4]).WithMatrix(math.Translate(0, 1, 1))); err != nil {
		return nil, err
	}
	if _, err := add(glb.MeshNode("Plinth", plinth)); err != nil {
		return nil, err
	}

	root, err := b.AddNode(glb.NodeSpec{Name: "Showcase", Children: children})
	if err != nil {
		return nil, err
	}
	if _, err := b.AddScene("Showcase", []int{root}); err != nil {
		return nil, err
	}

	if err := addDemoAnimation(b, sphereNode, torusNode); err != nil {
		return nil, err
	}
	return b, nil
}

func addDemoMaterials(b *glb.Builder, cfg *config.Config) (demoMaterials, error) {
	var mats demoMaterials
	size := cfg.Texture.Size

	checker, err := texture.Checkerboard(size, size, max(size/8, 1),
		color.NRGBA{R: 230, G: 230, B: 230, A: 255}, color.NRGBA{R: 40, G: 40, B: 40, A: 255})
	if err != nil {
		return mats, err
	}
	normalMap, err := texture.BumpNormalMap(size, size, 0.5)
	if err != nil {
		return mats, err
	}
	aoMap, err := texture.RadialAOMap(size, size, 2)
	if err != nil {
		return mats, err
	}

	baseImg, err := b.EmbedImage(checker, cfg.ImageFormat(), cfg.Texture.JPEGQuality)
	if err != nil {
		return mats, err
	}
	// Normal and occlusion data are always lossless.
	normalImg, err := b.EmbedImage(normalMap, texture.PNG, 0)
	if err != nil {
		return mats, err
	}
	aoImg, err := b.EmbedImage(aoMap, texture.PNG, 0)
	if err != nil {
		return mats, err
	}

	sampler, err := b.AddSampler(glb.DefaultSampler())
	if err != nil {
		return mats, err
	}
	baseTex, err := b.AddTexture(baseImg, &sampler)
	if err != nil {
		return mats, err
	}
	normalTex, err := b.AddTexture(normalImg, &sampler)
	if err != nil {
		return mats, err
	}
	aoTex, err := b.AddTexture(aoImg, &sampler)
	if err != nil {
		return mats, err
	}

	if mats.red, err = b.AddMaterial(glb.BasicMaterial("red", math.V4(0.8, 0.1, 0.1, 1))); err != nil {
		return mats, err
	}
	metal := glb.MetallicMaterial("metal", math.V4(0.9, 0.9, 0.95, 1), cfg.Export.Metallic, cfg.Export.Roughness)
	if mats.metal, err = b.AddMaterial(metal); err != nil {
		return mats, err
	}
	if mats.checker, err = b.AddMaterial(glb.TexturedMaterial("checker", &baseTex, &normalTex, &aoTex)); err != nil {
		return mats, err
	}

	sg := glb.DefaultSpecularGlossiness()
	sg.Diffuse = math.V4(0.2, 0.5, 0.9, 1)
	sg.Specular = math.V3(0.8, 0.8, 0.8)
	sg.Glossiness = 0.7
	fallback := glb.MetallicMaterial("gloss", sg.Diffuse, 0, 0.3)
	if mats.gloss, err = b.AddSpecularGlossinessMaterial(fallback, sg); err != nil {
		return mats, err
	}
	return mats, nil
}

func addDemoAnimation(b *glb.Builder, bounce, spin int) error {
	anim := b.AddAnimation("Idle")

	times := []float32{0, 0.5, 1}
	hops := []math.Vec3{math.V3(-0.7, 0.5, 0), math.V3(-0.7, 1.2, 0), math.V3(-0.7, 0.5, 0)}
	if _, err := b.AddTrack(anim, glb.TranslationTrack(bounce, times, hops)); err != nil {
		return err
	}

	tilt := math.QuatFromAxisAngle(math.UnitX, math32.Pi/2)
	spinTimes := []float32{0, 1, 2}
	rotations := make([]math.Quat, len(spinTimes))
	for i := range spinTimes {
		turn := math.QuatFromAxisAngle(math.UnitY, float32(i)*math32.Pi)
		rotations[i] = turn.Mul(tilt)
	}
	if _, err := b.AddTrack(anim, glb.RotationTrack(spin, spinTimes, rotations)); err != nil {
		return err
	}
	return nil
}
