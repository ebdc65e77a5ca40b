package mesh

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/glbforge/pkg/math"
)

// BendParams configures Bend.
type BendParams struct {
	// Angle is the total bend in radians across [Min, Max].
	Angle float32
	// Axis is the axis the mesh is bent about.
	Axis math.Axis
	// Along is the axis the bend progresses along; it must differ from Axis.
	Along math.Axis
	// Center is a point on the mesh's spine, the line parallel to Along
	// that stays attached to the arc.
	Center math.Vec3
	// Min and Max bound the bent region on the Along axis.
	Min, Max float32
}

// Radius returns the arc radius (Max - Min) / Angle.
func (p BendParams) Radius() float32 {
	return (p.Max - p.Min) / p.Angle
}

// Direction returns the unit vector the spine curves toward: Along rotated
// a quarter turn about Axis.
func (p BendParams) Direction() math.Vec3 {
	return p.Axis.Unit().Cross(p.Along.Unit())
}

// ArcCenter returns the center of curvature of the bent spine.
func (p BendParams) ArcCenter() math.Vec3 {
	base := p.Center.With(p.Along, p.Min)
	return base.Add(p.Direction().Scale(p.Radius()))
}

func (p BendParams) validate() error {
	switch {
	case !p.Axis.Valid() || !p.Along.Valid():
		return fmt.Errorf("bend axes %v/%v: %w", p.Axis, p.Along, ErrInvalidParameter)
	case p.Axis == p.Along:
		return fmt.Errorf("bend axis and along axis are both %v: %w", p.Axis, ErrInvalidParameter)
	case !(p.Max > p.Min):
		return fmt.Errorf("bend bounds [%v, %v]: %w", p.Min, p.Max, ErrInvalidParameter)
	case math32.IsNaN(p.Angle) || math32.IsInf(p.Angle, 0):
		return fmt.Errorf("bend angle %v: %w", p.Angle, ErrInvalidParameter)
	}
	return nil
}

// Bend curls the mesh around p.Axis. Each vertex gets
// t = clamp((v[Along] - Min) / (Max - Min), 0, 1); its cross-section offset
// from the spine is rotated by t*Angle about Axis and re-attached to the
// spine point at arc length t*(Max - Min) on a circle of radius
// (Max - Min) / Angle. Vertices at or below Min are unchanged; those past Max
// continue straight along the end tangent. Normals and tangents rotate by
// the same per-vertex angle.
func Bend(m *Mesh, p BendParams) error {
	if err := p.validate(); err != nil {
		return err
	}
	if p.Angle == 0 {
		return nil
	}

	along := p.Along.Unit()
	dir := p.Direction()
	radius := p.Radius()
	length := p.Max - p.Min
	base := p.Center.With(p.Along, p.Min)

	for i := range m.Vertices {
		v := &m.Vertices[i]
		s := v.Position.Get(p.Along)
		clamped := math32.Max(p.Min, math32.Min(p.Max, s))
		t := (clamped - p.Min) / length
		angle := t * p.Angle
		if angle == 0 {
			continue
		}

		rot := math.RotateAxis(p.Axis.Unit(), angle)
		// Offset from the spine, perpendicular to Along.
		d := v.Position.Sub(p.Center)
		lateral := d.Sub(along.Scale(d.Dot(along)))
		spine := base.
			Add(along.Scale(radius * math32.Sin(angle))).
			Add(dir.Scale(radius * (1 - math32.Cos(angle))))
		overshoot := s - clamped

		v.Position = spine.
			Add(rot.TransformDirection(lateral)).
			Add(rot.TransformDirection(along).Scale(overshoot))

		if v.Normal != nil {
			n := rot.TransformDirection(*v.Normal).Normalize()
			v.Normal = &n
		}
		if v.Tangent != nil {
			tan := math.FromVec3(rot.TransformDirection(v.Tangent.XYZ()).Normalize(), v.Tangent.W)
			v.Tangent = &tan
		}
	}
	return nil
}

// BendAuto bends along the mesh's full extent on the along axis, using the
// bounds center as the spine.
func BendAuto(m *Mesh, angle float32, axis, along math.Axis) error {
	b := m.Bounds()
	return Bend(m, BendParams{
		Angle:  angle,
		Axis:   axis,
		Along:  along,
		Center: b.Center(),
		Min:    b.Min.Get(along),
		Max:    b.Max.Get(along),
	})
}
