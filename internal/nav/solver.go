package nav

// Solver is the contract of the external incremental nonlinear smoother.
// The builder submits newly appended factors plus the shared initial-value
// container (by reference, never by copy); everything submitted in earlier
// calls is immutable from the solver's point of view. The core never
// inspects solver internals.
type Solver interface {
	Update(newFactors []Factor, values *Values) error
}

// RecordingSolver is the in-repo stand-in for the external smoother: it
// records what was submitted and when. Used by tests and by the offline
// batch front end to summarise a run.
type RecordingSolver struct {
	Calls     int
	Submitted []Factor
}

// Update implements Solver by appending the submitted factors.
func (r *RecordingSolver) Update(newFactors []Factor, values *Values) error {
	r.Calls++
	r.Submitted = append(r.Submitted, newFactors...)
	return nil
}
