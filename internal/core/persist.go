package core

import (
	"encoding/binary"

	"github.com/roottap/firmware-core/internal/ctap2"
)

// recordSize is the on-disk size of one persisted credential record:
// in_use(1) + user_id_len(1) + reserved(2) + sign_count(4) + cred_id(16)
// + rp_id_hash(32) + user_id(32) + private_key(32).
const recordSize = 1 + 1 + 2 + 4 + ctap2.CredentialIDSize + ctap2.RPIDHashSize + ctap2.MaxUserIDSize + ctap2.PrivateKeySize

// headerSize is the on-disk size of the blob header: magic(4) +
// version(2) + reserved(2).
const headerSize = 4 + 2 + 2

// PersistBlobSize is the fixed size in bytes of the exported state blob.
const PersistBlobSize = headerSize + ctap2.MaxCredentials*recordSize

// Export snapshots the credential store into the fixed-layout persisted
// blob format described by the spec. It never fails for an initialized
// context.
func Export(ctx *Context) []byte {
	blob := make([]byte, PersistBlobSize)

	binary.LittleEndian.PutUint32(blob[0:4], ctap2.PersistMagic)
	binary.LittleEndian.PutUint16(blob[4:6], ctap2.PersistVersion)
	// blob[6:8] reserved, left zero.

	for i := range ctx.credentials {
		writeRecord(blob[headerSize+i*recordSize:headerSize+(i+1)*recordSize], &ctx.credentials[i])
	}

	return blob
}

func writeRecord(dst []byte, cred *Credential) {
	if cred.InUse {
		dst[0] = 1
	} else {
		dst[0] = 0
	}
	dst[1] = cred.UserIDLen
	// dst[2:4] reserved, left zero.
	binary.NativeEndian.PutUint32(dst[4:8], cred.SignCount)

	n := 8
	n += copy(dst[n:], cred.CredID[:])
	n += copy(dst[n:], cred.RPIDHash[:])
	n += copy(dst[n:], cred.UserID[:])
	copy(dst[n:], cred.PrivateKey[:])
}

// Import validates and restores a context from a previously exported
// blob. It stages the decode into a temporary context and only commits it
// into ctx once every record has validated, so a failing import leaves
// ctx completely untouched. On success ctx is marked initialized and
// clean (not dirty).
func Import(ctx *Context, data []byte) ctap2.Status {
	if len(data) != PersistBlobSize {
		return ctap2.StatusInvalidLength
	}

	magic := binary.LittleEndian.Uint32(data[0:4])
	if magic != ctap2.PersistMagic {
		return ctap2.StatusOther
	}
	version := binary.LittleEndian.Uint16(data[4:6])
	if version != ctap2.PersistVersion {
		return ctap2.StatusOther
	}

	var staged Context
	staged.initialized = true

	for i := range staged.credentials {
		rec := data[headerSize+i*recordSize : headerSize+(i+1)*recordSize]
		if st := readRecord(rec, &staged.credentials[i]); st != ctap2.StatusOK {
			return st
		}
	}

	*ctx = staged
	return ctap2.StatusOK
}

func readRecord(src []byte, cred *Credential) ctap2.Status {
	inUse := src[0] != 0
	userIDLen := src[1]

	if inUse && userIDLen > ctap2.MaxUserIDSize {
		return ctap2.StatusOther
	}

	cred.InUse = inUse
	cred.UserIDLen = userIDLen
	cred.SignCount = binary.NativeEndian.Uint32(src[4:8])

	n := 8
	copy(cred.CredID[:], src[n:n+ctap2.CredentialIDSize])
	n += ctap2.CredentialIDSize
	copy(cred.RPIDHash[:], src[n:n+ctap2.RPIDHashSize])
	n += ctap2.RPIDHashSize
	copy(cred.UserID[:], src[n:n+ctap2.MaxUserIDSize])
	n += ctap2.MaxUserIDSize
	copy(cred.PrivateKey[:], src[n:n+ctap2.PrivateKeySize])

	return ctap2.StatusOK
}
