package nav

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ImuNoise holds the continuous-time noise densities of the IMU, used to
// propagate the preintegration covariance.
type ImuNoise struct {
	GyroSigma  float64 // rad/s/sqrt(Hz)
	AccelSigma float64 // m/s^2/sqrt(Hz)
}

// DefaultImuNoise returns noise densities typical of a tactical-grade MEMS
// unit; production runs should configure the real datasheet values.
func DefaultImuNoise() ImuNoise {
	return ImuNoise{GyroSigma: 1e-3, AccelSigma: 1e-2}
}

// PreintegratedMotion summarises a window of IMU samples between two state
// checkpoints as one relative-motion constraint: rotation, velocity and
// position deltas in the frame of the first checkpoint, elapsed time, and
// a 9x9 covariance over the [rotation, velocity, position] tangent.
type PreintegratedMotion struct {
	DeltaR Rotation
	DeltaV Vec3
	DeltaP Vec3
	DeltaT float64

	// Cov is the accumulated measurement covariance, tangent order
	// [dtheta(3), dv(3), dp(3)].
	Cov *mat.Dense

	// Gravity is the gravity magnitude the solver must apply when
	// evaluating the motion residual; the deltas themselves are
	// gravity-free body-frame quantities.
	Gravity float64

	// Samples counts the IMU measurements folded into this window.
	Samples int
}

// identityMotion returns the zero-length motion with zero covariance.
func identityMotion(gravity float64) PreintegratedMotion {
	return PreintegratedMotion{
		DeltaR:  IdentityRotation(),
		Cov:     mat.NewDense(9, 9, nil),
		Gravity: gravity,
	}
}

// Compose appends another preintegration window to this one and returns
// the combined window, as if the underlying samples had been integrated in
// one pass. Covariance composition is first order: the incoming window's
// uncertainty is rotated into this window's start frame and the existing
// uncertainty is propagated across the incoming deltas.
func (m PreintegratedMotion) Compose(n PreintegratedMotion) PreintegratedMotion {
	out := identityMotion(m.Gravity)
	out.DeltaR = m.DeltaR.Mul(n.DeltaR)
	out.DeltaV = m.DeltaV.Add(m.DeltaR.Apply(n.DeltaV))
	out.DeltaP = m.DeltaP.Add(m.DeltaV.Scale(n.DeltaT)).Add(m.DeltaR.Apply(n.DeltaP))
	out.DeltaT = m.DeltaT + n.DeltaT
	out.Samples = m.Samples + n.Samples

	// P = Phi * P1 * Phi^T + G * P2 * G^T
	phi := identity9()
	setBlock3(phi, 0, 0, n.DeltaR.Inverse().Mat())
	nv := mat.NewDense(3, 3, nil)
	nv.Mul(m.DeltaR.ref(), hat(n.DeltaV))
	nv.Scale(-1, nv)
	setBlock3(phi, 3, 0, nv)
	np := mat.NewDense(3, 3, nil)
	np.Mul(m.DeltaR.ref(), hat(n.DeltaP))
	np.Scale(-1, np)
	setBlock3(phi, 6, 0, np)
	setBlock3(phi, 6, 3, scaledIdentity3(n.DeltaT))

	g := mat.NewDense(9, 9, nil)
	setBlock3(g, 0, 0, identity3())
	setBlock3(g, 3, 3, m.DeltaR.Mat())
	setBlock3(g, 6, 6, m.DeltaR.Mat())

	out.Cov = propagate(phi, m.Cov, g, n.Cov)
	return out
}

// Preintegrator accumulates raw IMU samples between two state-graph
// checkpoints into one PreintegratedMotion. It is constructed once with a
// gravity magnitude and a constant bias estimate; exactly one accumulator
// is live at any time, owned by the sequencer's dispatch loop.
type Preintegrator struct {
	gravity float64
	bias    BiasEstimate
	noise   ImuNoise
	current PreintegratedMotion
}

// NewPreintegrator builds a Preintegrator with the given gravity magnitude
// (m/s^2, e.g. 9.81), constant bias estimate and IMU noise densities.
func NewPreintegrator(gravity float64, bias BiasEstimate, noise ImuNoise) *Preintegrator {
	return &Preintegrator{
		gravity: gravity,
		bias:    bias,
		noise:   noise,
		current: identityMotion(gravity),
	}
}

// Bias returns the constant bias estimate the integrator corrects with.
func (p *Preintegrator) Bias() BiasEstimate { return p.bias }

// Integrate folds one IMU sample spanning dt seconds into the live
// accumulator. dt must be strictly positive; callers must discard
// non-positive intervals upstream rather than pass them in.
//
// The update is first order on SO(3): the bias-corrected angular rate is
// mapped through the exponential map and composed onto the rotation delta,
// and the bias-corrected acceleration is rotated by the pre-update delta
// before updating the velocity and position deltas. After N calls the
// accumulator equals the closed-form relative motion between the first
// and last sample times, to within the truncation error of the scheme.
func (p *Preintegrator) Integrate(angularRate, linearAccel Vec3, dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: imu dt %g", ErrNonPositiveInterval, dt)
	}
	w := angularRate.Sub(p.bias.Gyro)
	a := linearAccel.Sub(p.bias.Accel)
	r := p.current.DeltaR

	// Covariance first: the transition uses the pre-update rotation delta.
	incr := ExpSO3(w.Scale(dt))
	phi := identity9()
	setBlock3(phi, 0, 0, incr.Inverse().Mat())
	ra := mat.NewDense(3, 3, nil)
	ra.Mul(r.ref(), hat(a))
	rva := mat.NewDense(3, 3, nil)
	rva.Scale(-dt, ra)
	setBlock3(phi, 3, 0, rva)
	rpa := mat.NewDense(3, 3, nil)
	rpa.Scale(-0.5*dt*dt, ra)
	setBlock3(phi, 6, 0, rpa)
	setBlock3(phi, 6, 3, scaledIdentity3(dt))

	g := mat.NewDense(9, 6, nil)
	setBlock3(g, 0, 0, scaledIdentity3(dt))
	rdt := mat.NewDense(3, 3, nil)
	rdt.Scale(dt, r.ref())
	setBlock3(g, 3, 3, rdt)
	rdt2 := mat.NewDense(3, 3, nil)
	rdt2.Scale(0.5*dt*dt, r.ref())
	setBlock3(g, 6, 3, rdt2)

	q := mat.NewDense(6, 6, nil)
	for i := 0; i < 3; i++ {
		q.Set(i, i, p.noise.GyroSigma*p.noise.GyroSigma/dt)
		q.Set(i+3, i+3, p.noise.AccelSigma*p.noise.AccelSigma/dt)
	}
	gq := mat.NewDense(9, 9, nil)
	gqt := mat.NewDense(9, 6, nil)
	gqt.Mul(g, q)
	gq.Mul(gqt, g.T())
	next := mat.NewDense(9, 9, nil)
	tmp := mat.NewDense(9, 9, nil)
	tmp.Mul(phi, p.current.Cov)
	next.Mul(tmp, phi.T())
	next.Add(next, gq)
	p.current.Cov = next

	// State deltas.
	acc := r.Apply(a)
	p.current.DeltaP = p.current.DeltaP.Add(p.current.DeltaV.Scale(dt)).Add(acc.Scale(0.5 * dt * dt))
	p.current.DeltaV = p.current.DeltaV.Add(acc.Scale(dt))
	p.current.DeltaR = r.Mul(incr)
	p.current.DeltaT += dt
	p.current.Samples++
	return nil
}

// ConsumeAndReset returns the accumulated motion and resets the live
// accumulator to identity, so exactly one motion factor is ever built per
// accumulation window. Consuming twice with no intervening Integrate
// yields the identity motion.
func (p *Preintegrator) ConsumeAndReset() PreintegratedMotion {
	out := p.current
	p.current = identityMotion(p.gravity)
	return out
}

// setBlock3 copies a 3x3 matrix into dst at block offset (r, c).
func setBlock3(dst *mat.Dense, r, c int, src *mat.Dense) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst.Set(r+i, c+j, src.At(i, j))
		}
	}
}

func scaledIdentity3(s float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		s, 0, 0,
		0, s, 0,
		0, 0, s,
	})
}

func identity9() *mat.Dense {
	out := mat.NewDense(9, 9, nil)
	for i := 0; i < 9; i++ {
		out.Set(i, i, 1)
	}
	return out
}

// propagate computes phi*p1*phi^T + g*p2*g^T for 9x9 operands.
func propagate(phi, p1, g, p2 *mat.Dense) *mat.Dense {
	out := mat.NewDense(9, 9, nil)
	tmp := mat.NewDense(9, 9, nil)
	tmp.Mul(phi, p1)
	out.Mul(tmp, phi.T())
	tmp.Mul(g, p2)
	add := mat.NewDense(9, 9, nil)
	add.Mul(tmp, g.T())
	out.Add(out, add)
	return out
}
