package core

import "github.com/roottap/firmware-core/internal/ctap2"

// PresenceGate is the blocking user-presence primitive the spec requires
// before any credential-mutating or signing operation. A real
// implementation parks the calling goroutine until the host's button/touch
// driver signals approval, denial, or a 20-second timeout; this package
// only depends on the interface so tests and the CLI simulator can supply
// deterministic implementations without touching hardware.
type PresenceGate interface {
	// Wait blocks until the user responds or the gate's timeout elapses.
	// It returns StatusOK on approval, StatusOperationDenied if the user
	// declined, StatusTimeout if the wait expired or the underlying
	// driver reported an error, and StatusOther for anything else.
	Wait() ctap2.Status
}

// AlwaysApproveGate approves every request instantly. It is useful for
// tests and for host integrations that have already gated presence
// upstream of the engine.
type AlwaysApproveGate struct{}

// Wait implements PresenceGate.
func (AlwaysApproveGate) Wait() ctap2.Status {
	return ctap2.StatusOK
}

// FixedGate always returns the configured status, useful for exercising
// denial and timeout paths in tests.
type FixedGate struct {
	Status ctap2.Status
}

// Wait implements PresenceGate.
func (g FixedGate) Wait() ctap2.Status {
	return g.Status
}
