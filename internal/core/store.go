package core

import "github.com/roottap/firmware-core/internal/ctap2"

// allocSlot returns the first free credential slot, linear-scanning the
// store. No reordering or compaction ever happens on use.
func (c *Context) allocSlot() (*Credential, ctap2.Status) {
	for i := range c.credentials {
		if !c.credentials[i].InUse {
			return &c.credentials[i], ctap2.StatusOK
		}
	}
	return nil, ctap2.StatusKeyStoreFull
}

// findCredential scans every slot for a credential matching both the
// credential ID and the relying-party ID hash.
func (c *Context) findCredential(credID [ctap2.CredentialIDSize]byte, rpIDHash [ctap2.RPIDHashSize]byte) (*Credential, ctap2.Status) {
	for i := range c.credentials {
		cr := &c.credentials[i]
		if cr.InUse && cr.CredID == credID && cr.RPIDHash == rpIDHash {
			return cr, ctap2.StatusOK
		}
	}
	return nil, ctap2.StatusNoCredentials
}
