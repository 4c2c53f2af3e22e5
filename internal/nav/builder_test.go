package nav

import (
	"testing"
)

// scenarioSource builds a three-checkpoint prior trajectory at the given
// ticks, with distinct positions so seeding can be traced.
func scenarioSource(t *testing.T, ticks ...Ticks) *SliceStateSource {
	t.Helper()
	states := make([]NavigationState, len(ticks))
	for i := range ticks {
		states[i] = StateFromEuler(Vec3{float64(i), 0, 0.5 * float64(i)}, Vec3{1, 0, 0}, 0, 0, 0.1*float64(i))
	}
	src, err := NewSliceStateSource(states, ticks)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func newTestBuilder(src StateSource, imu []ImuSample, depth []DepthSample, solver Solver) *GraphBuilder {
	cfg := DefaultBuilderConfig()
	cfg.TickScale = 1
	pim := NewPreintegrator(9.81, BiasEstimate{Accel: Vec3{0.067, 0.115, 0.320}, Gyro: Vec3{0.067, 0.115, 0.320}}, DefaultImuNoise())
	seq := NewSequencer(imu, depth, 1)
	return NewGraphBuilder(cfg, src, seq, pim, solver)
}

func TestGraphBuilder_EndToEndScenario(t *testing.T) {
	// Three checkpoints, one depth sample strictly between checkpoint 0
	// and 1, five IMU samples across the window (plus never-dispatched
	// guards past the end).
	src := scenarioSource(t, 0, 100, 200)
	imu := imuAt(10, 40, 90, 130, 170, 1000)
	depth := depthAt(50, 1000)

	solver := &RecordingSolver{}
	b := newTestBuilder(src, imu, depth, solver)
	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	counts := graph.FactorCounts()
	if counts["prior_pose"] != 1 {
		t.Errorf("prior_pose = %d, want 1", counts["prior_pose"])
	}
	if counts["prior_velocity"] != 1 {
		t.Errorf("prior_velocity = %d, want 1", counts["prior_velocity"])
	}
	if counts["depth"] != 1 {
		t.Errorf("depth = %d, want 1", counts["depth"])
	}
	if counts["imu_motion"] != 2 {
		t.Errorf("imu_motion = %d, want 2", counts["imu_motion"])
	}

	// Initial values for node indices {0, 1, 2} plus the bias node.
	values := graph.Values()
	for i := 0; i <= 2; i++ {
		if !values.Has(PoseKey(i)) || !values.Has(VelocityKey(i)) {
			t.Errorf("node %d missing initial values", i)
		}
	}
	if values.Has(PoseKey(3)) {
		t.Error("unexpected node 3")
	}
	if !values.Has(BiasKey()) {
		t.Error("bias node missing initial value")
	}
	if values.Len() != 7 {
		t.Errorf("Len() = %d, want 7", values.Len())
	}

	// The motion factors span 0->1 and 1->2.
	var spans [][2]int
	for _, f := range graph.Factors() {
		if mf, ok := f.(ImuMotionFactor); ok {
			spans = append(spans, [2]int{mf.PoseI.Index, mf.PoseJ.Index})
			if mf.Motion.Samples == 0 {
				t.Errorf("motion factor %v consumed an empty window", mf.PoseI)
			}
		}
	}
	if len(spans) != 2 || spans[0] != [2]int{0, 1} || spans[1] != [2]int{1, 2} {
		t.Errorf("motion spans = %v, want [[0 1] [1 2]]", spans)
	}

	if b.Phase() != PhaseDone {
		t.Errorf("phase = %v, want done", b.Phase())
	}
	stats := b.Stats()
	if stats.ImuSamples != 5 {
		t.Errorf("ImuSamples = %d, want 5", stats.ImuSamples)
	}
	if stats.DepthSamples != 1 {
		t.Errorf("DepthSamples = %d, want 1", stats.DepthSamples)
	}
	if solver.Calls != 1 {
		t.Errorf("solver calls = %d, want 1 for batch mode", solver.Calls)
	}
	if len(solver.Submitted) != graph.Len() {
		t.Errorf("solver got %d factors, graph has %d", len(solver.Submitted), graph.Len())
	}
}

func TestGraphBuilder_WellFormedness(t *testing.T) {
	src := scenarioSource(t, 0, 100, 200)
	b := newTestBuilder(src, imuAt(10, 40, 90, 130, 170, 1000), depthAt(50, 150, 1000), nil)
	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Every factor's referenced keys have initial values.
	for _, f := range graph.Factors() {
		for _, key := range f.Keys() {
			if !graph.Values().Has(key) {
				t.Errorf("%s factor references unseeded %s", f.Name(), key)
			}
		}
	}

	// Priors appear at index 0 and nowhere else.
	for _, f := range graph.Factors() {
		switch pf := f.(type) {
		case PriorPoseFactor:
			if pf.Key.Index != 0 {
				t.Errorf("prior pose at index %d", pf.Key.Index)
			}
		case PriorVelocityFactor:
			if pf.Key.Index != 0 {
				t.Errorf("prior velocity at index %d", pf.Key.Index)
			}
		}
	}
}

func TestGraphBuilder_DepthSeedsFromCurrentCheckpoint(t *testing.T) {
	src := scenarioSource(t, 0, 100, 200)
	b := newTestBuilder(src, imuAt(10, 40, 90, 130, 170, 1000), depthAt(50, 1000), nil)
	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The depth event during checkpoint 1's span seeds node 1 from the
	// state at checkpoint 1.
	state1, _ := src.StateAt(1)
	pose1, ok := graph.Values().Pose(1)
	if !ok {
		t.Fatal("node 1 pose missing")
	}
	if pose1.Pos != state1.Pose.Pos {
		t.Errorf("node 1 seeded with %v, want %v", pose1.Pos, state1.Pose.Pos)
	}
	vel1, _ := graph.Values().Velocity(1)
	if vel1 != state1.Vel {
		t.Errorf("node 1 velocity seeded with %v, want %v", vel1, state1.Vel)
	}
}

func TestGraphBuilder_SkipsNonPositiveCheckpointGap(t *testing.T) {
	// Checkpoint 2 duplicates checkpoint 1's tick: no node, no factor,
	// and the index still advances past it.
	src := scenarioSource(t, 0, 100, 100, 200)
	b := newTestBuilder(src, imuAt(10, 60, 110, 160, 1000), depthAt(1000), nil)
	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := b.Stats()
	if stats.SkippedCheckpoints != 1 {
		t.Errorf("SkippedCheckpoints = %d, want 1", stats.SkippedCheckpoints)
	}
	if stats.Checkpoints != 3 {
		t.Errorf("Checkpoints = %d, want 3 processed", stats.Checkpoints)
	}
	// Two spans survive: 0->1 and 1->2.
	if counts := graph.FactorCounts(); counts["imu_motion"] != 2 {
		t.Errorf("imu_motion = %d, want 2", counts["imu_motion"])
	}
	if graph.Values().Has(PoseKey(3)) {
		t.Error("skipped checkpoint still produced a node")
	}
}

func TestGraphBuilder_StreamExhaustionEndsRun(t *testing.T) {
	// The depth stream dries up after the first span while checkpoints
	// remain: the run ends cleanly instead of reading past the end.
	src := scenarioSource(t, 0, 100, 200, 300)
	b := newTestBuilder(src, imuAt(10, 60, 110, 160, 210, 260), depthAt(50), nil)
	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if b.Phase() != PhaseDone {
		t.Errorf("phase = %v, want done", b.Phase())
	}
	if graph.Len() == 0 {
		t.Error("graph empty after early end")
	}
}

func TestGraphBuilder_Streaming(t *testing.T) {
	src := scenarioSource(t, 0, 100, 200)
	solver := &RecordingSolver{}
	cfg := DefaultBuilderConfig()
	cfg.TickScale = 1
	cfg.Streaming = true
	pim := NewPreintegrator(9.81, BiasEstimate{}, DefaultImuNoise())
	seq := NewSequencer(imuAt(10, 40, 90, 130, 170, 1000), depthAt(50, 1000), 1)
	b := NewGraphBuilder(cfg, src, seq, pim, solver)

	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if solver.Calls < 2 {
		t.Errorf("solver calls = %d, want per-checkpoint submissions", solver.Calls)
	}
	if len(solver.Submitted) != graph.Len() {
		t.Errorf("solver got %d factors total, graph has %d", len(solver.Submitted), graph.Len())
	}
}

func TestGraphBuilder_MaxCheckpointsBound(t *testing.T) {
	src := scenarioSource(t, 0, 100, 200, 300)
	cfg := DefaultBuilderConfig()
	cfg.TickScale = 1
	cfg.MaxCheckpoints = 2
	pim := NewPreintegrator(9.81, BiasEstimate{}, DefaultImuNoise())
	seq := NewSequencer(imuAt(10, 60, 1000), depthAt(1000), 1)
	b := NewGraphBuilder(cfg, src, seq, pim, nil)

	graph, err := b.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if graph.Values().Has(PoseKey(2)) {
		t.Error("node past the checkpoint bound")
	}
	if counts := graph.FactorCounts(); counts["imu_motion"] != 1 {
		t.Errorf("imu_motion = %d, want 1", counts["imu_motion"])
	}
}

func TestGraphBuilder_RunTwice(t *testing.T) {
	src := scenarioSource(t, 0, 100)
	b := newTestBuilder(src, imuAt(10, 1000), depthAt(1000), nil)
	if _, err := b.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := b.Run(); err == nil {
		t.Error("second Run must fail")
	}
}
