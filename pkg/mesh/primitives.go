package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/glbforge/pkg/math"
)

// cubeFace describes one side of a box: the outward normal and two in-plane
// axes with u x v = normal, so corners listed (-u-v, +u-v, +u+v, -u+v)
// wind counter-clockwise from outside.
type cubeFace struct {
	normal, u, v math.Vec3
}

var cubeFaces = [6]cubeFace{
	{normal: math.V3(0, 0, 1), u: math.V3(1, 0, 0), v: math.V3(0, 1, 0)},
	{normal: math.V3(0, 0, -1), u: math.V3(-1, 0, 0), v: math.V3(0, 1, 0)},
	{normal: math.V3(1, 0, 0), u: math.V3(0, 0, -1), v: math.V3(0, 1, 0)},
	{normal: math.V3(-1, 0, 0), u: math.V3(0, 0, 1), v: math.V3(0, 1, 0)},
	{normal: math.V3(0, 1, 0), u: math.V3(1, 0, 0), v: math.V3(0, 0, -1)},
	{normal: math.V3(0, -1, 0), u: math.V3(1, 0, 0), v: math.V3(0, 0, 1)},
}

// Cube returns a box centered at the origin with 24 vertices (four per face,
// flat normals) and 12 triangles.
func Cube(width, height, depth float32) *Mesh {
	m := New("cube")
	half := math.V3(width/2, height/2, depth/2)

	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	// glTF texture space has V pointing down.
	uvs := [4]math.Vec2{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0}}

	for _, f := range cubeFaces {
		base := uint32(len(m.Vertices))
		for i, c := range corners {
			dir := f.normal.Add(f.u.Scale(c[0])).Add(f.v.Scale(c[1]))
			m.AddVertex(NewVertexPNU(dir.Mul(half), f.normal, uvs[i]))
		}
		m.Triangles = append(m.Triangles,
			Triangle{base, base + 1, base + 2},
			Triangle{base, base + 2, base + 3},
		)
	}
	return m
}

// Plane returns a grid on the XZ plane facing +Y.
func Plane(width, depth float32, widthSegments, depthSegments int) *Mesh {
	widthSegments = max(widthSegments, 1)
	depthSegments = max(depthSegments, 1)

	m := New("plane")
	stride := uint32(widthSegments + 1)
	for z := 0; z <= depthSegments; z++ {
		for x := 0; x <= widthSegments; x++ {
			u := float32(x) / float32(widthSegments)
			v := float32(z) / float32(depthSegments)
			pos := math.V3(-width/2+u*width, 0, -depth/2+v*depth)
			m.AddVertex(NewVertexPNU(pos, math.UnitY, math.V2(u, v)))
		}
	}

	for z := 0; z < depthSegments; z++ {
		for x := 0; x < widthSegments; x++ {
			i0 := uint32(z)*stride + uint32(x)
			i1 := i0 + 1
			i2 := i0 + stride + 1
			i3 := i0 + stride
			m.Triangles = append(m.Triangles, Triangle{i0, i2, i1}, Triangle{i0, i3, i2})
		}
	}
	return m
}

// ringPoint returns a point on a horizontal circle; angle grows from +X
// toward +Z.
func ringPoint(radius, y, angle float32) math.Vec3 {
	return math.V3(radius*math32.Cos(angle), y, radius*math32.Sin(angle))
}

// appendBand stitches two rows of (segments+1) vertices, upper row first,
// with outward-facing winding for rows produced by ringPoint.
func appendBand(m *Mesh, upper, lower uint32, segments int) {
	for s := uint32(0); s < uint32(segments); s++ {
		a, b := upper+s, upper+s+1
		c, d := lower+s, lower+s+1
		m.Triangles = append(m.Triangles, Triangle{a, b, d}, Triangle{a, d, c})
	}
}

// Sphere returns a UV sphere centered at the origin. Poles are single
// vertices; each ring repeats its first vertex to close the texture seam.
func Sphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	m := New("sphere")
	top := m.AddVertex(NewVertexPNU(math.V3(0, radius, 0), math.UnitY, math.V2(0.5, 0)))

	firstRing := uint32(len(m.Vertices))
	for r := 1; r < rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		y := radius * math32.Cos(phi)
		ringRadius := radius * math32.Sin(phi)
		for s := 0; s <= segments; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(segments)
			pos := ringPoint(ringRadius, y, theta)
			uv := math.V2(float32(s)/float32(segments), float32(r)/float32(rings))
			m.AddVertex(NewVertexPNU(pos, pos.Normalize(), uv))
		}
	}
	bottom := m.AddVertex(NewVertexPNU(math.V3(0, -radius, 0), math.V3(0, -1, 0), math.V2(0.5, 1)))

	rowLen := uint32(segments + 1)
	for s := uint32(0); s < uint32(segments); s++ {
		m.Triangles = append(m.Triangles, Triangle{top, firstRing + s + 1, firstRing + s})
	}
	for r := 0; r < rings-2; r++ {
		upper := firstRing + uint32(r)*rowLen
		appendBand(m, upper, upper+rowLen, segments)
	}
	last := firstRing + uint32(rings-2)*rowLen
	for s := uint32(0); s < uint32(segments); s++ {
		m.Triangles = append(m.Triangles, Triangle{bottom, last + s, last + s + 1})
	}
	return m
}

// appendCap adds a flat disc at height y. Top caps face +Y, bottom caps -Y.
func appendCap(m *Mesh, radius, y float32, segments int, top bool) {
	normal := math.V3(0, -1, 0)
	if top {
		normal = math.UnitY
	}
	center := m.AddVertex(NewVertexPNU(math.V3(0, y, 0), normal, math.V2(0.5, 0.5)))
	first := uint32(len(m.Vertices))
	for s := 0; s <= segments; s++ {
		theta := 2 * math32.Pi * float32(s) / float32(segments)
		pos := ringPoint(radius, y, theta)
		uv := math.V2(0.5+0.5*math32.Cos(theta), 0.5+0.5*math32.Sin(theta))
		m.AddVertex(NewVertexPNU(pos, normal, uv))
	}
	for s := uint32(0); s < uint32(segments); s++ {
		if top {
			m.Triangles = append(m.Triangles, Triangle{center, first + s + 1, first + s})
		} else {
			m.Triangles = append(m.Triangles, Triangle{center, first + s, first + s + 1})
		}
	}
}

// ConeParams configures Cone.
type ConeParams struct {
	Radius   float32
	Height   float32
	Segments int
	Cap      bool
}

// DefaultConeParams returns a unit-height cone of radius 0.5.
func DefaultConeParams() ConeParams {
	return ConeParams{Radius: 0.5, Height: 1, Segments: 32, Cap: true}
}

// Cone returns a cone along Y centered at the origin, tip at +Height/2.
func Cone(p ConeParams) *Mesh {
	segments := max(p.Segments, 3)
	half := p.Height / 2

	m := New("cone")
	// Slant normal: perpendicular to the side line in the radial plane.
	slope := p.Radius / p.Height
	first := uint32(len(m.Vertices))
	for s := 0; s <= segments; s++ {
		theta := 2 * math32.Pi * float32(s) / float32(segments)
		radial := ringPoint(1, 0, theta)
		normal := math.V3(radial.X, slope, radial.Z).Normalize()
		u := float32(s) / float32(segments)
		// Tip vertices are duplicated per segment so each keeps its own normal.
		m.AddVertex(NewVertexPNU(math.V3(0, half, 0), normal, math.V2(u, 0)))
		m.AddVertex(NewVertexPNU(ringPoint(p.Radius, -half, theta), normal, math.V2(u, 1)))
	}
	for s := uint32(0); s < uint32(segments); s++ {
		tip := first + 2*s
		base := tip + 1
		nextBase := tip + 3
		m.Triangles = append(m.Triangles, Triangle{tip, nextBase, base})
	}
	if p.Cap {
		appendCap(m, p.Radius, -half, segments, false)
	}
	return m
}

// CylinderParams configures Cylinder.
type CylinderParams struct {
	Radius         float32
	Height         float32
	RadialSegments int
	HeightSegments int
	TopCap         bool
	BottomCap      bool
}

// DefaultCylinderParams returns a unit-height capped cylinder of radius 0.5.
func DefaultCylinderParams() CylinderParams {
	return CylinderParams{
		Radius:         0.5,
		Height:         1,
		RadialSegments: 32,
		HeightSegments: 1,
		TopCap:         true,
		BottomCap:      true,
	}
}

// Cylinder returns a cylinder along Y centered at the origin.
func Cylinder(p CylinderParams) *Mesh {
	radial := max(p.RadialSegments, 3)
	rows := max(p.HeightSegments, 1)
	half := p.Height / 2

	m := New("cylinder")
	first := uint32(len(m.Vertices))
	for r := 0; r <= rows; r++ {
		v := float32(r) / float32(rows)
		y := half - v*p.Height
		for s := 0; s <= radial; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(radial)
			pos := ringPoint(p.Radius, y, theta)
			normal := ringPoint(1, 0, theta)
			m.AddVertex(NewVertexPNU(pos, normal, math.V2(float32(s)/float32(radial), v)))
		}
	}
	rowLen := uint32(radial + 1)
	for r := 0; r < rows; r++ {
		upper := first + uint32(r)*rowLen
		appendBand(m, upper, upper+rowLen, radial)
	}

	if p.TopCap {
		appendCap(m, p.Radius, half, radial, true)
	}
	if p.BottomCap {
		appendCap(m, p.Radius, -half, radial, false)
	}
	return m
}

// TorusParams configures Torus.
type TorusParams struct {
	Radius          float32 // center of the tube to center of the torus
	TubeRadius      float32
	RadialSegments  int
	TubularSegments int
}

// DefaultTorusParams returns a torus of radius 0.5 and tube radius 0.2.
func DefaultTorusParams() TorusParams {
	return TorusParams{Radius: 0.5, TubeRadius: 0.2, RadialSegments: 32, TubularSegments: 24}
}

// Torus returns a torus lying in the XZ plane.
func Torus(p TorusParams) *Mesh {
	radial := max(p.RadialSegments, 3)
	tubular := max(p.TubularSegments, 3)

	m := New("torus")
	for i := 0; i <= radial; i++ {
		phi := 2 * math32.Pi * float32(i) / float32(radial)
		for j := 0; j <= tubular; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(tubular)
			ring := p.Radius + p.TubeRadius*math32.Cos(theta)
			pos := math.V3(ring*math32.Cos(phi), p.TubeRadius*math32.Sin(theta), ring*math32.Sin(phi))
			normal := math.V3(math32.Cos(theta)*math32.Cos(phi), math32.Sin(theta), math32.Cos(theta)*math32.Sin(phi))
			uv := math.V2(float32(i)/float32(radial), float32(j)/float32(tubular))
			m.AddVertex(NewVertexPNU(pos, normal.Normalize(), uv))
		}
	}

	stride := uint32(tubular + 1)
	for i := uint32(0); i < uint32(radial); i++ {
		for j := uint32(0); j < uint32(tubular); j++ {
			a := i*stride + j
			b := (i+1)*stride + j
			c := (i+1)*stride + j + 1
			d := i*stride + j + 1
			m.Triangles = append(m.Triangles, Triangle{a, d, c}, Triangle{a, c, b})
		}
	}
	return m
}

// IcosphereParams configures Icosphere.
type IcosphereParams struct {
	Radius       float32
	Subdivisions int
}

// DefaultIcosphereParams returns a radius 0.5 sphere subdivided twice.
func DefaultIcosphereParams() IcosphereParams {
	return IcosphereParams{Radius: 0.5, Subdivisions: 2}
}

var icosahedronFaces = [20]Triangle{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// Icosphere returns a geodesic sphere: an icosahedron subdivided and
// projected back onto the sphere. Vertices are shared between faces.
func Icosphere(p IcosphereParams) *Mesh {
	t := (1 + math32.Sqrt(5)) / 2
	corners := []math.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}

	m := New("icosphere")
	for _, c := range corners {
		m.AddVertex(NewVertex(c.Normalize()))
	}
	m.Triangles = append(m.Triangles, icosahedronFaces[:]...)

	for i := 0; i < p.Subdivisions; i++ {
		subdivideTopology(m)
		for j := range m.Vertices {
			m.Vertices[j].Position = m.Vertices[j].Position.Normalize()
		}
	}

	for i := range m.Vertices {
		n := m.Vertices[i].Position
		u := 0.5 + math32.Atan2(n.Z, n.X)/(2*math32.Pi)
		v := math32.Acos(clamp(n.Y, -1, 1)) / math32.Pi
		m.Vertices[i] = NewVertexPNU(n.Scale(p.Radius), n, math.V2(u, v))
	}
	return m
}

func clamp(x, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, x))
}
