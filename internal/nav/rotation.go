package nav

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rotation is an element of SO(3), stored as a 3x3 matrix. The zero value
// is the identity rotation.
type Rotation struct {
	m *mat.Dense
}

// IdentityRotation returns the identity element of SO(3).
func IdentityRotation() Rotation {
	return Rotation{}
}

// NewRotation wraps a 3x3 matrix as a Rotation. The caller is responsible
// for supplying an orthonormal matrix.
func NewRotation(m *mat.Dense) Rotation {
	return Rotation{m: m}
}

// Mat returns the rotation as a 3x3 dense matrix. The returned matrix is a
// copy; mutating it does not affect the Rotation.
func (r Rotation) Mat() *mat.Dense {
	out := identity3()
	if r.m != nil {
		out.Copy(r.m)
	}
	return out
}

func (r Rotation) ref() *mat.Dense {
	if r.m == nil {
		return identity3()
	}
	return r.m
}

// Mul returns the composition r * s.
func (r Rotation) Mul(s Rotation) Rotation {
	out := mat.NewDense(3, 3, nil)
	out.Mul(r.ref(), s.ref())
	return Rotation{m: out}
}

// Apply rotates v: returns r * v.
func (r Rotation) Apply(v Vec3) Vec3 {
	m := r.ref()
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m.At(i, 0)*v[0] + m.At(i, 1)*v[1] + m.At(i, 2)*v[2]
	}
	return out
}

// Inverse returns the transpose (= inverse for SO(3)).
func (r Rotation) Inverse() Rotation {
	m := r.ref()
	out := mat.NewDense(3, 3, nil)
	out.Copy(m.T())
	return Rotation{m: out}
}

// RotX returns the rotation about the x axis by angle a (radians).
func RotX(a float64) Rotation {
	c, s := math.Cos(a), math.Sin(a)
	return Rotation{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})}
}

// RotY returns the rotation about the y axis by angle a (radians).
func RotY(a float64) Rotation {
	c, s := math.Cos(a), math.Sin(a)
	return Rotation{m: mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})}
}

// RotZ returns the rotation about the z axis by angle a (radians).
func RotZ(a float64) Rotation {
	c, s := math.Cos(a), math.Sin(a)
	return Rotation{m: mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})}
}

// RotationRPY composes three independent single-axis rotations: roll about
// x, then pitch about y, then yaw about z, multiplied in exactly that
// order (Rx * Ry * Rz). The ordering matches the prior estimator that
// produced the angles and must not be swapped for an intrinsic or
// extrinsic Euler reordering: trajectory seeding depends on it.
func RotationRPY(roll, pitch, yaw float64) Rotation {
	return RotX(roll).Mul(RotY(pitch)).Mul(RotZ(yaw))
}

// ExpSO3 is the exponential map of SO(3) (Rodrigues' formula): it maps a
// rotation vector w (axis * angle) to a rotation matrix.
func ExpSO3(w Vec3) Rotation {
	theta := math.Sqrt(w[0]*w[0] + w[1]*w[1] + w[2]*w[2])
	k := hat(w)
	out := identity3()
	if theta < 1e-12 {
		// Small-angle: I + hat(w) is accurate to first order.
		out.Add(out, k)
		return Rotation{m: out}
	}
	a := math.Sin(theta) / theta
	b := (1 - math.Cos(theta)) / (theta * theta)
	k2 := mat.NewDense(3, 3, nil)
	k2.Mul(k, k)
	tmp := mat.NewDense(3, 3, nil)
	tmp.Scale(a, k)
	out.Add(out, tmp)
	tmp.Scale(b, k2)
	out.Add(out, tmp)
	return Rotation{m: out}
}

// hat returns the skew-symmetric matrix of v, so that hat(v)*w = v x w.
func hat(v Vec3) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0,
	})
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}
