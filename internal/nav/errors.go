package nav

import "errors"

// Error taxonomy for graph construction. Sequencing anomalies
// (duplicate or out-of-order prior-estimator ticks) are tolerated and
// skipped; structural graph violations are never recovered.
var (
	// ErrIndexOutOfRange reports a state-source index past the available
	// ticks. Fatal: aborts the run.
	ErrIndexOutOfRange = errors.New("nav: state index out of range")

	// ErrNonPositiveInterval reports a computed time delta <= 0 between
	// consecutive samples. Recovered locally by skipping the affected
	// checkpoint or sample.
	ErrNonPositiveInterval = errors.New("nav: non-positive time interval")

	// ErrMissingInitialValue reports a factor referencing a node key with
	// no initial estimate. Fatal: indicates a sequencing bug upstream.
	ErrMissingInitialValue = errors.New("nav: factor references node without initial value")

	// ErrStreamExhausted reports that one sensor stream ran out while
	// checkpoints remain. Treated as an end-of-run condition, never read
	// past the end.
	ErrStreamExhausted = errors.New("nav: sensor stream exhausted")
)
