// Package nav builds an incremental factor graph from asynchronous AUV
// sensor streams.
//
// The package merges a prior trajectory (e.g. from an invariant EKF), a
// high-rate IMU stream and a low-rate depth stream into a single
// chronological timeline, preintegrates IMU samples between trajectory
// checkpoints, and emits state nodes and probabilistic constraints
// (priors, relative-motion factors, depth factors) together with an
// initial estimate for every node. The nonlinear solver that consumes the
// graph is external; see the Solver interface.
//
// The pipeline is single-threaded and synchronous: correctness depends on
// a single global time order, so there is nothing to parallelise.
package nav
