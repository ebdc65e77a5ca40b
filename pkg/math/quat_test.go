package math

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	if abs(n.Length()-1) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(UnitY, float32(math.Pi/2))

	result0 := q1.Slerp(q2, 0)
	if abs(result0.W-q1.W) > 0.001 {
		t.Errorf("Slerp at t=0 should equal q1")
	}

	result1 := q1.Slerp(q2, 1)
	if abs(result1.W-q2.W) > 0.001 {
		t.Errorf("Slerp at t=1 should equal q2")
	}

	// Halfway through a 90 degree turn is 45 degrees.
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if abs(result5.W-expectedW) > 0.01 {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	axis := Vec3{1, 2, 3}.Normalize()
	q := QuatFromAxisAngle(axis, 1.1)
	v := Vec3{0.3, -2, 5}

	got := q.Rotate(v)
	want := q.ToMat4().TransformPoint(v)
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("Quat.Rotate() = %v, matrix gives %v", got, want)
	}
}

func TestQuatAgainstMathgl(t *testing.T) {
	axis := Vec3{0, 1, 1}.Normalize()
	angle := float32(0.7)

	q := QuatFromAxisAngle(axis, angle)
	ref := mgl32.QuatRotate(angle, mgl32.Vec3{axis.X, axis.Y, axis.Z})

	if abs(q.W-ref.W) > 1e-6 || abs(q.X-ref.V[0]) > 1e-6 || abs(q.Y-ref.V[1]) > 1e-6 || abs(q.Z-ref.V[2]) > 1e-6 {
		t.Errorf("QuatFromAxisAngle = %v, mathgl = %v", q, ref)
	}

	m := q.ToMat4()
	refM := ref.Mat4()
	for i := range m {
		if abs(m[i]-refM[i]) > 1e-5 {
			t.Errorf("ToMat4 element %d: got %v, mathgl %v", i, m[i], refM[i])
		}
	}
}

func TestQuatConjugateInverts(t *testing.T) {
	q := QuatFromAxisAngle(UnitX, 0.5)
	r := q.Mul(q.Conjugate())
	if abs(r.W-1) > 1e-6 || abs(r.X) > 1e-6 {
		t.Errorf("q * conj(q) = %v, want identity", r)
	}
}
