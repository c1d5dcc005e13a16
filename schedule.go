package cells

// Scheduler decides whether a step with no pending rebuild needs a fresh
// binning pass.
type Scheduler interface {
	ShouldCompute(step uint64) bool
}

// OncePerStep computes the first time it sees each step number.
type OncePerStep struct {
	last    uint64
	started bool
}

func (s *OncePerStep) ShouldCompute(step uint64) bool {
	if s.started && s.last == step {
		return false
	}
	s.started, s.last = true, step
	return true
}

// Every computes on steps which are multiples of n. Every(0) and Every(1)
// compute on every call.
type Every uint64

func (e Every) ShouldCompute(step uint64) bool {
	return e <= 1 || step%uint64(e) == 0
}
