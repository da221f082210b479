// Package inspect is a debug-only CBOR pretty-printer for CTAP2
// payloads captured off the wire. It deliberately does not touch
// internal/core: the engine's own codec (internal/ctap2/cbor) is a
// deterministic, allocation-free, status-returning encoder built for the
// embedded core, not a general reflective decoder, so this package
// reaches for the ecosystem's reflective decoder instead — exactly the
// kind of debug/inspection tool that library is suited for.
package inspect

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// Pretty decodes a single definite-length CBOR value and renders it as an
// indented, human-readable tree. It accepts the same byte-for-byte wire
// format internal/ctap2/cbor produces, so a captured request or response
// payload can be dropped in directly.
func Pretty(data []byte) (string, error) {
	var v interface{}
	if err := cbor.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("inspect: decode: %w", err)
	}
	var b strings.Builder
	render(&b, v, 0)
	return b.String(), nil
}

func render(b *strings.Builder, v interface{}, depth int) {
	indent := strings.Repeat("  ", depth)
	switch val := v.(type) {
	case map[interface{}]interface{}:
		renderMap(b, val, depth, indent)
	case []interface{}:
		if len(val) == 0 {
			b.WriteString("[]\n")
			return
		}
		b.WriteString("\n")
		for _, item := range val {
			b.WriteString(indent + "- ")
			render(b, item, depth+1)
		}
	case []byte:
		fmt.Fprintf(b, "h'%x'\n", val)
	default:
		fmt.Fprintf(b, "%v\n", val)
	}
}

func renderMap(b *strings.Builder, m map[interface{}]interface{}, depth int, indent string) {
	if len(m) == 0 {
		b.WriteString("{}\n")
		return
	}
	b.WriteString("\n")
	keys := make([]string, 0, len(m))
	byKey := make(map[string]interface{}, len(m))
	for k, v := range m {
		ks := fmt.Sprintf("%v", k)
		keys = append(keys, ks)
		byKey[ks] = v
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(indent + k + ": ")
		render(b, byKey[k], depth+1)
	}
}
