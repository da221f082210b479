// Package ctap2 holds the wire-level constants shared by the authenticator
// core: the CTAP2 status taxonomy, command opcodes, and size limits.
package ctap2

import "fmt"

// Status is the single-byte outcome code carried across the boundary ABI.
// Zero is success; every other value names a CTAP2 error kind.
type Status uint8

// Status kinds used by this core. Values match the CTAP2 wire codes.
const (
	StatusOK                   Status = 0x00
	StatusInvalidCommand       Status = 0x01
	StatusInvalidParameter     Status = 0x02
	StatusInvalidLength        Status = 0x03
	StatusTimeout              Status = 0x05
	StatusCborUnexpectedType   Status = 0x11
	StatusInvalidCbor          Status = 0x12
	StatusMissingParameter     Status = 0x14
	StatusUnsupportedAlgorithm Status = 0x26
	StatusOperationDenied      Status = 0x27
	StatusKeyStoreFull         Status = 0x28
	StatusNoCredentials        Status = 0x2E
	StatusOther                Status = 0x7F
)

var statusNames = map[Status]string{
	StatusOK:                   "ok",
	StatusInvalidCommand:       "invalid_command",
	StatusInvalidParameter:     "invalid_parameter",
	StatusInvalidLength:        "invalid_length",
	StatusTimeout:              "timeout",
	StatusCborUnexpectedType:   "cbor_unexpected_type",
	StatusInvalidCbor:          "invalid_cbor",
	StatusMissingParameter:     "missing_parameter",
	StatusUnsupportedAlgorithm: "unsupported_algorithm",
	StatusOperationDenied:      "operation_denied",
	StatusKeyStoreFull:         "key_store_full",
	StatusNoCredentials:        "no_credentials",
	StatusOther:                "other",
}

// String implements fmt.Stringer so status values log and format cleanly.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(0x%02x)", uint8(s))
}

// Error satisfies the error interface so a Status can be returned directly
// from parsing/encoding helpers and still be handled with errors.Is/As.
func (s Status) Error() string {
	return s.String()
}

// AsInt32 conveys the status across the host boundary, where it is a signed
// integer return code (0 = success).
func (s Status) AsInt32() int32 {
	return int32(s)
}

// OK reports whether the status represents success.
func (s Status) OK() bool {
	return s == StatusOK
}
