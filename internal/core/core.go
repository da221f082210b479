// Package core implements the CTAP2 authenticator engine: the credential
// store, its persistence codec, and the GetInfo/MakeCredential/GetAssertion
// command handlers behind the dispatcher. All state lives in a Context
// value the caller owns; the package holds no package-level mutable state
// of its own, so independent Contexts are fully independent for testing.
package core

import "github.com/roottap/firmware-core/internal/ctap2"

// Credential is one fixed-size credential record. When InUse is false the
// record is semantically empty and its other fields must not be read.
type Credential struct {
	InUse      bool
	CredID     [ctap2.CredentialIDSize]byte
	RPIDHash   [ctap2.RPIDHashSize]byte
	UserID     [ctap2.MaxUserIDSize]byte
	UserIDLen  uint8
	SignCount  uint32
	PrivateKey [ctap2.PrivateKeySize]byte
}

// Context is the engine's entire mutable state. The host allocates and
// owns the memory it lives in; the engine only mutates it for the
// duration of a single call.
type Context struct {
	initialized bool
	credentials [ctap2.MaxCredentials]Credential
	dirty       bool
}

// New returns a freshly initialized, empty context, mirroring what the
// boundary adapter's init primitive placement-constructs into caller
// memory.
func New() *Context {
	return &Context{initialized: true}
}

// Initialized reports whether Init (or a successful Import) has run.
func (c *Context) Initialized() bool {
	return c.initialized
}

// Init resets c to a fresh, empty, initialized state.
func (c *Context) Init() {
	*c = Context{initialized: true}
}

// Dirty reports whether a credential-affecting operation has succeeded
// since the last MarkClean.
func (c *Context) Dirty() bool {
	return c.dirty
}

// MarkClean clears the dirty flag. The host calls this once the current
// state has been durably persisted.
func (c *Context) MarkClean() {
	c.dirty = false
}

func (c *Context) markDirty() {
	c.dirty = true
}
