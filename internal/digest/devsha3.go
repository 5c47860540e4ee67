package digest

import "golang.org/x/crypto/sha3"

// DevProvider is a development-only Provider. It makes no claim about
// suitability for production consensus; it exists so the fork-choice core
// and its tests have a concrete digest to exercise without pulling in a
// full signing/verification stack.
type DevProvider struct{}

func (DevProvider) Sum256(input []byte) [32]byte {
	h := sha3.New256()
	_, _ = h.Write(input)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
