package nav

import "gonum.org/v1/gonum/mat"

// DepthConvention reconciles the depth sensor's positive-down readings
// with the pose frame's z axis. The reconciliation used to live as an
// inline negation at the factor call site; it is an explicit, tested
// configuration here.
type DepthConvention int

const (
	// DepthPositiveDown is the logged-sensor convention: deeper readings
	// are larger and must be negated onto the pose z axis.
	DepthPositiveDown DepthConvention = iota

	// DepthPositiveUp means the logged values already share the pose z
	// axis sign and pass through unchanged.
	DepthPositiveUp
)

// Normalize maps a raw logged reading onto the pose z-axis sign.
func (c DepthConvention) Normalize(raw float64) float64 {
	if c == DepthPositiveDown {
		return -raw
	}
	return raw
}

// DepthObservation is a unary scalar constraint on one pose node's
// vertical coordinate. It is a small value type constructed per depth
// event and consumed once; Measured must already be normalized via
// DepthConvention.Normalize.
type DepthObservation struct {
	Measured float64
	Sigma    float64
}

// Residual returns the scalar error between the normalized measurement
// and the pose's vertical coordinate. A normalized reading that agrees
// with the predicted pose yields exactly zero.
func (d DepthObservation) Residual(predicted Pose) float64 {
	return d.Measured + predicted.Pos[2]
}

// Jacobian returns the 1x6 derivative of the residual with respect to the
// pose tangent [position(3), rotation(3)]. Only the position z entry is
// nonzero; the observation never constrains orientation.
func (d DepthObservation) Jacobian(predicted Pose) *mat.Dense {
	j := mat.NewDense(1, 6, nil)
	j.Set(0, 2, 1)
	return j
}
