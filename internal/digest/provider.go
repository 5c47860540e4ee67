// Package digest exposes the narrow cryptographic-digest contract the
// fork-choice core depends on (spec §6). Hashing, signatures, and address
// formats are external collaborators; the core only ever needs a
// fixed-size opaque digest of a byte string.
package digest

// Provider is the digest collaborator the core consumes. Implementations
// may back it with any hash function; the core only relies on it being
// deterministic and fixed-width.
type Provider interface {
	Sum256(input []byte) [32]byte
}

// WellKnown hashes a small ASCII label into one of the store's reserved
// keys (spec §6: hash("canonical_tip"), hash("canonical_height")).
func WellKnown(p Provider, label string) [32]byte {
	return p.Sum256([]byte(label))
}
