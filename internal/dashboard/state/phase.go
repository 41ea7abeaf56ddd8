package state

// Phase is the step a store's mutation flow is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConfirming
	PhaseMutating
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseConfirming:
		return "confirming"
	case PhaseMutating:
		return "mutating"
	case PhaseSettled:
		return "settled"
	}
	return "unknown"
}

// Flow tracks idle → confirming → mutating → settled. A pending
// confirmation is kept apart from the running mutations, so a create started
// while a delete waits for its answer does not consume that confirmation.
// It carries no lock; the owning store guards it.
type Flow struct {
	pending  bool
	inFlight int
	// rest is the phase reported when nothing is pending or running.
	rest Phase
}

func (f *Flow) Phase() Phase {
	switch {
	case f.inFlight > 0:
		return PhaseMutating
	case f.pending:
		return PhaseConfirming
	}
	return f.rest
}

// Confirm enters the confirming phase. Only one confirmation may be pending
// and none may start while a mutation runs.
func (f *Flow) Confirm() error {
	if f.pending || f.inFlight > 0 {
		return ErrBusy
	}
	f.pending = true
	return nil
}

// Decline drops the pending confirmation without mutating.
func (f *Flow) Decline() {
	f.pending = false
}

// Proceed turns the pending confirmation into a running mutation.
func (f *Flow) Proceed() {
	f.pending = false
	f.inFlight++
}

// Mutate marks a mutation without a confirmation step as started. Such
// mutations may overlap; the flow settles when the last one finishes.
func (f *Flow) Mutate() {
	f.inFlight++
}

// Settle marks one mutation as finished.
func (f *Flow) Settle() {
	if f.inFlight > 0 {
		f.inFlight--
	}
	if f.inFlight == 0 {
		f.rest = PhaseSettled
	}
}

// Reset returns to idle, forgetting the pending confirmation and running
// mutations.
func (f *Flow) Reset() {
	*f = Flow{}
}
