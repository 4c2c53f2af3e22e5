package nav

import (
	"errors"
	"fmt"

	"github.com/banshee-data/auvnav/internal/monitoring"
)

// BuilderPhase is the lifecycle state of a GraphBuilder.
type BuilderPhase uint8

const (
	PhaseUninitialized BuilderPhase = iota
	PhaseSeeding
	PhaseExtending
	PhaseDone
)

func (p BuilderPhase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseSeeding:
		return "seeding"
	case PhaseExtending:
		return "extending"
	case PhaseDone:
		return "done"
	}
	return "unknown"
}

// BuilderConfig holds the graph construction parameters. Sigma values are
// isotropic standard deviations for the corresponding factor residuals.
type BuilderConfig struct {
	// MaxCheckpoints bounds the run length. Zero means every checkpoint
	// the state source has.
	MaxCheckpoints int

	PriorPoseSigma     float64
	PriorVelocitySigma float64
	DepthSigma         float64

	DepthConvention DepthConvention

	// TickScale converts integer timestamps to seconds for every stream.
	TickScale float64

	// Streaming submits new factors to the solver after every checkpoint
	// instead of once at the end of the run.
	Streaming bool
}

// DefaultBuilderConfig returns the construction parameters used by the
// offline batch runs.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		PriorPoseSigma:     0.1,
		PriorVelocitySigma: 0.1,
		DepthSigma:         0.01,
		DepthConvention:    DepthPositiveDown,
		TickScale:          DefaultTickScale,
	}
}

// RunStats summarises one construction run.
type RunStats struct {
	Checkpoints        int
	SkippedCheckpoints int
	ImuSamples         int
	DepthSamples       int
	Nodes              int
	Factors            int
	SolverCalls        int
}

// GraphBuilder owns the growing factor graph and initial-value container.
// It drives the checkpoint loop over the state source, routes merged
// sensor events through the sequencer, and hands the graph to the solver.
//
// Phases: Uninitialized -> Seeding (checkpoint 0) -> Extending -> Done.
type GraphBuilder struct {
	cfg    BuilderConfig
	src    StateSource
	seq    *Sequencer
	pim    *Preintegrator
	solver Solver

	graph *FactorGraph
	phase BuilderPhase

	nodeIdx     int             // highest seeded node index
	current     NavigationState // state at the active checkpoint
	depthInSpan bool            // a depth event closed the active span
	submitted   int             // factors already handed to the solver
	stats       RunStats
}

// NewGraphBuilder wires the construction pipeline together. The solver may
// be nil for diagnostic runs that only want the finished graph.
func NewGraphBuilder(cfg BuilderConfig, src StateSource, seq *Sequencer, pim *Preintegrator, solver Solver) *GraphBuilder {
	if cfg.TickScale <= 0 {
		cfg.TickScale = DefaultTickScale
	}
	return &GraphBuilder{
		cfg:    cfg,
		src:    src,
		seq:    seq,
		pim:    pim,
		solver: solver,
		graph:  NewFactorGraph(),
		phase:  PhaseUninitialized,
	}
}

// Phase returns the builder's lifecycle state.
func (b *GraphBuilder) Phase() BuilderPhase { return b.phase }

// Graph returns the graph under construction.
func (b *GraphBuilder) Graph() *FactorGraph { return b.graph }

// Stats returns the running construction counters.
func (b *GraphBuilder) Stats() RunStats {
	s := b.stats
	s.Nodes = b.nodeIdx + 1
	s.Factors = b.graph.Len()
	return s
}

// Run executes the full construction loop and returns the finished graph.
// Stream exhaustion ends the run early without error; structural graph
// violations and state-source range errors abort with context.
func (b *GraphBuilder) Run() (*FactorGraph, error) {
	if b.phase != PhaseUninitialized {
		return nil, fmt.Errorf("nav: builder already run (phase %s)", b.phase)
	}
	n := b.src.Count()
	if b.cfg.MaxCheckpoints > 0 && b.cfg.MaxCheckpoints < n {
		n = b.cfg.MaxCheckpoints
	}
	for idx := 0; idx < n; idx++ {
		state, err := b.src.StateAt(idx)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", idx, err)
		}
		b.current = state

		if idx == 0 {
			b.phase = PhaseSeeding
			if err := b.seed(state); err != nil {
				return nil, fmt.Errorf("checkpoint 0: %w", err)
			}
			b.phase = PhaseExtending
			b.stats.Checkpoints++
			continue
		}

		prevT, err := b.src.TimeAt(idx - 1)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", idx, err)
		}
		currT, err := b.src.TimeAt(idx)
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d: %w", idx, err)
		}
		// Duplicate or out-of-order prior-estimator ticks are tolerated:
		// skip the checkpoint entirely, no node and no factors.
		if dt := b.cfg.TickScale * float64(currT-prevT); dt <= 0 {
			monitoring.Debugf("nav: skipping checkpoint %d, dt=%g", idx, dt)
			b.stats.SkippedCheckpoints++
			continue
		}

		b.depthInSpan = false
		if err := b.seq.AdvanceTo(prevT, currT, b); err != nil {
			if errors.Is(err, ErrStreamExhausted) {
				monitoring.Logf("nav: end of run at checkpoint %d: %v", idx, err)
				break
			}
			return nil, fmt.Errorf("checkpoint %d: %w", idx, err)
		}

		// Close out the checkpoint with a relative-motion factor unless a
		// depth event in this span already consumed the accumulator into
		// one; leftover samples then roll into the next span.
		if !b.depthInSpan {
			if err := b.extendNode(nil); err != nil {
				return nil, fmt.Errorf("checkpoint %d: %w", idx, err)
			}
		}
		b.stats.Checkpoints++

		if b.cfg.Streaming {
			if err := b.submit(); err != nil {
				return nil, fmt.Errorf("checkpoint %d: %w", idx, err)
			}
		}
	}
	b.phase = PhaseDone
	if err := b.submit(); err != nil {
		return nil, err
	}
	return b.graph, nil
}

// seed anchors checkpoint 0: prior pose and velocity factors, initial
// values for node 0, and the single shared bias value.
func (b *GraphBuilder) seed(state NavigationState) error {
	values := b.graph.Values()
	if err := values.InsertPose(0, state.Pose); err != nil {
		return err
	}
	if err := values.InsertVelocity(0, state.Vel); err != nil {
		return err
	}
	if err := values.InsertBias(b.pim.Bias()); err != nil {
		return err
	}
	if err := b.graph.Add(PriorPoseFactor{Key: PoseKey(0), Prior: state.Pose, Sigma: b.cfg.PriorPoseSigma}); err != nil {
		return err
	}
	if err := b.graph.Add(PriorVelocityFactor{Key: VelocityKey(0), Prior: state.Vel, Sigma: b.cfg.PriorVelocitySigma}); err != nil {
		return err
	}
	return nil
}

// extendNode consumes the live preintegration window into a motion factor
// spanning (nodeIdx -> nodeIdx+1), seeds the new node from the active
// checkpoint state, and, when obs is non-nil, attaches the depth factor at
// nodeIdx in the same step. The pairing keeps the graph free of dangling
// unconstrained nodes past index 0.
func (b *GraphBuilder) extendNode(obs *DepthObservation) error {
	i := b.nodeIdx
	values := b.graph.Values()
	if err := values.InsertPose(i+1, b.current.Pose); err != nil {
		return err
	}
	if err := values.InsertVelocity(i+1, b.current.Vel); err != nil {
		return err
	}
	if obs != nil {
		if err := b.graph.Add(DepthFactor{Key: PoseKey(i), Obs: *obs}); err != nil {
			return err
		}
	}
	motion := b.pim.ConsumeAndReset()
	factor := ImuMotionFactor{
		PoseI: PoseKey(i), VelI: VelocityKey(i),
		PoseJ: PoseKey(i + 1), VelJ: VelocityKey(i + 1),
		Bias:   BiasKey(),
		Motion: motion,
	}
	if err := b.graph.Add(factor); err != nil {
		return err
	}
	b.nodeIdx = i + 1
	return nil
}

// HandleImu implements EventHandler: route the sample into the live
// preintegration accumulator.
func (b *GraphBuilder) HandleImu(s ImuSample, dt float64) error {
	b.stats.ImuSamples++
	return b.pim.Integrate(s.AngularRate, s.LinearAccel, dt)
}

// HandleDepth implements EventHandler: extend the graph with a new node,
// the depth factor, and the motion factor closing the accumulation window.
func (b *GraphBuilder) HandleDepth(s DepthSample) error {
	b.stats.DepthSamples++
	obs := DepthObservation{
		Measured: b.cfg.DepthConvention.Normalize(s.Depth),
		Sigma:    b.cfg.DepthSigma,
	}
	if err := b.extendNode(&obs); err != nil {
		return err
	}
	b.depthInSpan = true
	return nil
}

// submit hands the factors appended since the previous submission to the
// solver, together with the shared value container. Already-submitted
// factors are never resubmitted or mutated.
func (b *GraphBuilder) submit() error {
	if b.solver == nil {
		return nil
	}
	tail := b.graph.Factors()[b.submitted:]
	if len(tail) == 0 {
		return nil
	}
	if err := b.solver.Update(tail, b.graph.Values()); err != nil {
		return fmt.Errorf("solver update: %w", err)
	}
	b.submitted = b.graph.Len()
	b.stats.SolverCalls++
	return nil
}
