package nav

import (
	"errors"
	"testing"
)

func TestNodeKeyString(t *testing.T) {
	if s := PoseKey(3).String(); s != "x3" {
		t.Errorf("PoseKey(3) = %q, want x3", s)
	}
	if s := VelocityKey(0).String(); s != "v0" {
		t.Errorf("VelocityKey(0) = %q, want v0", s)
	}
	if s := BiasKey().String(); s != "b0" {
		t.Errorf("BiasKey() = %q, want b0", s)
	}
}

func TestValues_DuplicateInsert(t *testing.T) {
	v := NewValues()
	if err := v.InsertPose(0, Pose{}); err != nil {
		t.Fatal(err)
	}
	if err := v.InsertPose(0, Pose{}); err == nil {
		t.Error("second InsertPose(0) must fail")
	}
	if err := v.InsertBias(BiasEstimate{}); err != nil {
		t.Fatal(err)
	}
	if err := v.InsertBias(BiasEstimate{}); err == nil {
		t.Error("second InsertBias must fail")
	}
}

func TestValues_Has(t *testing.T) {
	v := NewValues()
	if v.Has(PoseKey(0)) || v.Has(VelocityKey(0)) || v.Has(BiasKey()) {
		t.Error("empty container reports values")
	}
	_ = v.InsertPose(1, Pose{})
	_ = v.InsertVelocity(1, Vec3{})
	_ = v.InsertBias(BiasEstimate{})
	if !v.Has(PoseKey(1)) || !v.Has(VelocityKey(1)) || !v.Has(BiasKey()) {
		t.Error("inserted values not reported")
	}
	if v.Len() != 3 {
		t.Errorf("Len() = %d, want 3", v.Len())
	}
}

func TestFactorGraph_AddRequiresValues(t *testing.T) {
	g := NewFactorGraph()
	err := g.Add(PriorPoseFactor{Key: PoseKey(0), Sigma: 0.1})
	if !errors.Is(err, ErrMissingInitialValue) {
		t.Fatalf("err = %v, want ErrMissingInitialValue", err)
	}

	if err := g.Values().InsertPose(0, Pose{}); err != nil {
		t.Fatal(err)
	}
	if err := g.Add(PriorPoseFactor{Key: PoseKey(0), Sigma: 0.1}); err != nil {
		t.Errorf("Add after seeding: %v", err)
	}
	if g.Len() != 1 {
		t.Errorf("Len() = %d, want 1", g.Len())
	}
}

func TestFactorGraph_ImuFactorKeyCheck(t *testing.T) {
	g := NewFactorGraph()
	v := g.Values()
	_ = v.InsertPose(0, Pose{})
	_ = v.InsertVelocity(0, Vec3{})
	_ = v.InsertPose(1, Pose{})
	_ = v.InsertVelocity(1, Vec3{})
	// Bias not seeded: the five-key factor must be rejected.
	f := ImuMotionFactor{
		PoseI: PoseKey(0), VelI: VelocityKey(0),
		PoseJ: PoseKey(1), VelJ: VelocityKey(1),
		Bias: BiasKey(),
	}
	if err := g.Add(f); !errors.Is(err, ErrMissingInitialValue) {
		t.Fatalf("err = %v, want ErrMissingInitialValue", err)
	}
	_ = v.InsertBias(BiasEstimate{})
	if err := g.Add(f); err != nil {
		t.Errorf("Add with all keys seeded: %v", err)
	}
}

func TestFactorCounts(t *testing.T) {
	g := NewFactorGraph()
	v := g.Values()
	_ = v.InsertPose(0, Pose{})
	_ = v.InsertVelocity(0, Vec3{})
	_ = g.Add(PriorPoseFactor{Key: PoseKey(0)})
	_ = g.Add(PriorVelocityFactor{Key: VelocityKey(0)})
	_ = g.Add(DepthFactor{Key: PoseKey(0)})
	_ = g.Add(DepthFactor{Key: PoseKey(0)})

	counts := g.FactorCounts()
	if counts["prior_pose"] != 1 || counts["prior_velocity"] != 1 || counts["depth"] != 2 {
		t.Errorf("counts = %v", counts)
	}
}
