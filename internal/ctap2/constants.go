package ctap2

// Command opcodes: the first byte of every CTAP2 request.
const (
	CmdMakeCredential byte = 0x01
	CmdGetAssertion   byte = 0x02
	CmdGetInfo        byte = 0x04
	CmdClientPIN      byte = 0x06
	CmdReset          byte = 0x07
	CmdSelection      byte = 0x0B
)

// Size limits and device identity.
const (
	// MaxMsgSize is the largest request/response payload this core accepts,
	// reported to the platform via GetInfo.
	MaxMsgSize = 1024

	// MaxCredentials is the fixed capacity of the credential store.
	MaxCredentials = 4

	// CredentialIDSize is the length in bytes of a generated credential ID.
	CredentialIDSize = 16

	// MaxUserIDSize is the largest user.id the store will retain.
	MaxUserIDSize = 32

	// RPIDHashSize is the length of a SHA-256 relying-party ID hash.
	RPIDHashSize = 32

	// PrivateKeySize is the length of a raw P-256 scalar.
	PrivateKeySize = 32

	// ClientDataHashSize is the required length of clientDataHash inputs.
	ClientDataHashSize = 32
)

// AAGUID identifies this authenticator's make and model. It is the ASCII
// string "ROOTTAP" zero-padded to 15 bytes, followed by a version byte.
var AAGUID = [16]byte{
	0x52, 0x4f, 0x4f, 0x54, 0x54, 0x41, 0x50, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
}

// PersistMagic is the little-endian uint32 interpretation of the 4 ASCII
// bytes "RTKY" that guard the persisted credential store blob.
const PersistMagic uint32 = 0x594b5452

// PersistVersion is the current persisted blob layout version.
const PersistVersion uint16 = 1

// ES256Alg is the COSE algorithm identifier for ECDSA with SHA-256 over
// P-256, the only algorithm this core accepts.
const ES256Alg int64 = -7
