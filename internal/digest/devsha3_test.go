package digest

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDevProviderSum256KnownVector(t *testing.T) {
	p := DevProvider{}
	sum := p.Sum256([]byte("abc"))
	require.Equal(t, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532", hex.EncodeToString(sum[:]))
}

func TestWellKnownKeysAreStable(t *testing.T) {
	p := DevProvider{}
	tip := WellKnown(p, "canonical_tip")
	height := WellKnown(p, "canonical_height")
	require.NotEqual(t, tip, height)
	require.Equal(t, tip, WellKnown(p, "canonical_tip"))
}
