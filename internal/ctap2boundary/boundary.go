// Package ctap2boundary is the thin ABI-shaped adapter between the
// allocation-free internal/core engine and a host. It is where
// ctap2.Status meets ordinary Go error handling: every primitive here
// mirrors one of the boundary ABI's four functions (ctx_size, init,
// handle_request, persist_blob_size/save_state/load_state/is_dirty/
// mark_clean) but speaks []byte and *core.Context instead of raw
// pointers, since a Go host never needs to placement-construct into
// caller-owned memory the way an embedded C host does.
package ctap2boundary

import (
	"unsafe"

	"github.com/roottap/firmware-core/internal/core"
	"github.com/roottap/firmware-core/internal/ctap2"
)

// Adapter owns one engine context and exposes the boundary ABI over it.
// It takes no logging dependency, matching internal/core: status codes
// are the only thing that crosses this boundary, logging belongs to the
// CLI layer that calls it.
type Adapter struct {
	ctx *core.Context
}

// CtxSize reports the byte footprint of one engine context, mirroring
// ctx_size() for hosts that need to size a context region up front (an
// FFI caller allocating the equivalent of core.Context across a cgo
// boundary, for instance). A pure-Go host never needs this to allocate —
// Init does that — but the primitive is kept for ABI parity.
func CtxSize() int {
	return int(unsafe.Sizeof(core.Context{}))
}

// Init validates mem and constructs a fresh, initialized Adapter. It
// rejects a nil or undersized mem exactly as the ABI's init() rejects a
// nil pointer or insufficient length; mem's bytes themselves are not
// interpreted, the engine's context lives in ordinary Go-managed memory.
func Init(mem []byte) (*Adapter, ctap2.Status) {
	if mem == nil || len(mem) < CtxSize() {
		return nil, ctap2.StatusOther
	}
	return &Adapter{ctx: core.New()}, ctap2.StatusOK
}

// HandleRequest mirrors handle_request: it requires a previously
// initialized Adapter, dispatches the request, and returns the number of
// bytes written to resp (status byte included) on success. A nonzero
// status means resp's contents are undefined beyond whatever a partial
// handler run produced, per the boundary's failure-typed contract.
func (a *Adapter) HandleRequest(req []byte, resp []byte, rng core.RandomSource, gate core.PresenceGate) (int, ctap2.Status) {
	if a == nil || !a.ctx.Initialized() {
		return 0, ctap2.StatusOther
	}
	return core.Dispatch(a.ctx, req, resp, rng, gate)
}

// PersistBlobSize mirrors persist_blob_size().
func PersistBlobSize() int {
	return core.PersistBlobSize
}

// SaveState mirrors save_state: it requires an initialized Adapter and
// copies the exported blob into out, failing InvalidLength if out is too
// small to hold it.
func (a *Adapter) SaveState(out []byte) (int, ctap2.Status) {
	if a == nil || !a.ctx.Initialized() {
		return 0, ctap2.StatusOther
	}
	blob := core.Export(a.ctx)
	if len(out) < len(blob) {
		return 0, ctap2.StatusInvalidLength
	}
	return copy(out, blob), ctap2.StatusOK
}

// LoadState mirrors load_state: unlike the other primitives it may run
// against a freshly Init'd Adapter, since restoring persisted state is
// exactly how a host repopulates a context after a cold start.
func (a *Adapter) LoadState(data []byte) ctap2.Status {
	if a == nil || a.ctx == nil {
		return ctap2.StatusOther
	}
	return core.Import(a.ctx, data)
}

// IsDirty mirrors is_dirty: it requires an initialized Adapter.
func (a *Adapter) IsDirty() (bool, ctap2.Status) {
	if a == nil || !a.ctx.Initialized() {
		return false, ctap2.StatusOther
	}
	return a.ctx.Dirty(), ctap2.StatusOK
}

// MarkClean mirrors mark_clean: it requires an initialized Adapter.
func (a *Adapter) MarkClean() ctap2.Status {
	if a == nil || !a.ctx.Initialized() {
		return ctap2.StatusOther
	}
	a.ctx.MarkClean()
	return ctap2.StatusOK
}
