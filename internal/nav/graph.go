package nav

import "fmt"

// NodeKind tags the logical role of a graph variable.
type NodeKind uint8

const (
	NodePose NodeKind = iota
	NodeVelocity
	NodeBias
)

// String returns the conventional single-letter tag for the kind.
func (k NodeKind) String() string {
	switch k {
	case NodePose:
		return "x"
	case NodeVelocity:
		return "v"
	case NodeBias:
		return "b"
	}
	return "?"
}

// NodeKey identifies one graph variable: a kind plus a checkpoint index.
// Bias uses index 0 always (one shared bias node per run). Typed keys in
// lookup maps replace the bit-packed symbol encoding common in factor
// graph libraries.
type NodeKey struct {
	Kind  NodeKind
	Index int
}

// PoseKey returns the pose variable key for checkpoint index i.
func PoseKey(i int) NodeKey { return NodeKey{Kind: NodePose, Index: i} }

// VelocityKey returns the velocity variable key for checkpoint index i.
func VelocityKey(i int) NodeKey { return NodeKey{Kind: NodeVelocity, Index: i} }

// BiasKey returns the single shared bias variable key.
func BiasKey() NodeKey { return NodeKey{Kind: NodeBias} }

func (k NodeKey) String() string {
	return fmt.Sprintf("%s%d", k.Kind, k.Index)
}

// Factor is one probabilistic constraint between graph variables. Factors
// are append-only: never removed or mutated after insertion.
type Factor interface {
	// Keys lists the variables the factor constrains.
	Keys() []NodeKey

	// Name is a short stable identifier for summaries and error context.
	Name() string
}

// PriorPoseFactor anchors one pose variable to a known pose with an
// isotropic sigma over the 6-dof tangent.
type PriorPoseFactor struct {
	Key   NodeKey
	Prior Pose
	Sigma float64
}

func (f PriorPoseFactor) Keys() []NodeKey { return []NodeKey{f.Key} }
func (f PriorPoseFactor) Name() string    { return "prior_pose" }

// PriorVelocityFactor anchors one velocity variable to a known velocity.
type PriorVelocityFactor struct {
	Key   NodeKey
	Prior Vec3
	Sigma float64
}

func (f PriorVelocityFactor) Keys() []NodeKey { return []NodeKey{f.Key} }
func (f PriorVelocityFactor) Name() string    { return "prior_velocity" }

// DepthFactor is a unary scalar constraint on one pose's vertical
// coordinate.
type DepthFactor struct {
	Key NodeKey
	Obs DepthObservation
}

func (f DepthFactor) Keys() []NodeKey { return []NodeKey{f.Key} }
func (f DepthFactor) Name() string    { return "depth" }

// ImuMotionFactor constrains consecutive pose/velocity pairs with one
// preintegrated IMU window, parameterised by the shared bias variable.
type ImuMotionFactor struct {
	PoseI, VelI NodeKey
	PoseJ, VelJ NodeKey
	Bias        NodeKey
	Motion      PreintegratedMotion
}

func (f ImuMotionFactor) Keys() []NodeKey {
	return []NodeKey{f.PoseI, f.VelI, f.PoseJ, f.VelJ, f.Bias}
}
func (f ImuMotionFactor) Name() string { return "imu_motion" }

// Values holds the initial estimate for every graph variable, keyed by
// NodeKey. The external solver requires every referenced variable to be
// seeded before (or together with) the factor that references it.
type Values struct {
	poses      map[int]Pose
	velocities map[int]Vec3
	bias       *BiasEstimate
}

// NewValues returns an empty initial-value container.
func NewValues() *Values {
	return &Values{
		poses:      make(map[int]Pose),
		velocities: make(map[int]Vec3),
	}
}

// InsertPose seeds the pose variable at index i. Seeding the same
// variable twice is a construction bug.
func (v *Values) InsertPose(i int, p Pose) error {
	if _, ok := v.poses[i]; ok {
		return fmt.Errorf("nav: initial value for %s inserted twice", PoseKey(i))
	}
	v.poses[i] = p
	return nil
}

// InsertVelocity seeds the velocity variable at index i.
func (v *Values) InsertVelocity(i int, vel Vec3) error {
	if _, ok := v.velocities[i]; ok {
		return fmt.Errorf("nav: initial value for %s inserted twice", VelocityKey(i))
	}
	v.velocities[i] = vel
	return nil
}

// InsertBias seeds the single shared bias variable.
func (v *Values) InsertBias(b BiasEstimate) error {
	if v.bias != nil {
		return fmt.Errorf("nav: initial value for %s inserted twice", BiasKey())
	}
	bb := b
	v.bias = &bb
	return nil
}

// Has reports whether the variable behind key has an initial value.
func (v *Values) Has(key NodeKey) bool {
	switch key.Kind {
	case NodePose:
		_, ok := v.poses[key.Index]
		return ok
	case NodeVelocity:
		_, ok := v.velocities[key.Index]
		return ok
	case NodeBias:
		return v.bias != nil
	}
	return false
}

// Pose returns the seeded pose at index i.
func (v *Values) Pose(i int) (Pose, bool) {
	p, ok := v.poses[i]
	return p, ok
}

// Velocity returns the seeded velocity at index i.
func (v *Values) Velocity(i int) (Vec3, bool) {
	vel, ok := v.velocities[i]
	return vel, ok
}

// Bias returns the seeded bias, if any.
func (v *Values) Bias() (BiasEstimate, bool) {
	if v.bias == nil {
		return BiasEstimate{}, false
	}
	return *v.bias, true
}

// Len returns the number of seeded variables, the bias included.
func (v *Values) Len() int {
	n := len(v.poses) + len(v.velocities)
	if v.bias != nil {
		n++
	}
	return n
}

// FactorGraph is the append-only collection of factors plus the
// initial-value container. It grows monotonically over a run and is
// handed to the external solver by reference; already-submitted factors
// must never be mutated afterwards.
type FactorGraph struct {
	factors []Factor
	values  *Values
}

// NewFactorGraph returns an empty graph with an empty value container.
func NewFactorGraph() *FactorGraph {
	return &FactorGraph{values: NewValues()}
}

// Values returns the graph's initial-value container.
func (g *FactorGraph) Values() *Values { return g.values }

// Add appends a factor after verifying every referenced variable is
// seeded. A missing value is fatal: it indicates a sequencing bug, not a
// recoverable data condition.
func (g *FactorGraph) Add(f Factor) error {
	for _, key := range f.Keys() {
		if !g.values.Has(key) {
			return fmt.Errorf("%w: %s factor references %s", ErrMissingInitialValue, f.Name(), key)
		}
	}
	g.factors = append(g.factors, f)
	return nil
}

// Len returns the number of factors in the graph.
func (g *FactorGraph) Len() int { return len(g.factors) }

// Factors returns the factor list. Callers must treat it as read-only.
func (g *FactorGraph) Factors() []Factor { return g.factors }

// FactorCounts tallies factors by name, for run summaries and tests.
func (g *FactorGraph) FactorCounts() map[string]int {
	counts := make(map[string]int)
	for _, f := range g.factors {
		counts[f.Name()]++
	}
	return counts
}
