package chainengine

// Config holds the chain engine's tunable constants. Defaults mirror the
// teacher's original fixed constants (MIN_HEIGHT=10, MAX_HEIGHT=10,
// MAX_ORPHANS=10), expanded with an explicit, documented reorg
// hysteresis in place of the source's unresolved TODO (spec §9 open
// question: default 0, strict-greater-than).
type Config struct {
	// MinHeight bounds how far behind the current height an admitted
	// block may be: min = max(1, height-MinHeight).
	MinHeight uint64
	// MaxHeight bounds how far ahead of the current height an admitted
	// block may be: max = height+MaxHeight.
	MaxHeight uint64
	// MaxOrphans is the orphan pool's capacity.
	MaxOrphans int
	// ReorgHysteresis is the margin a candidate branch's depth must
	// exceed the canonical branch's depth by, beyond simple equality,
	// before a reorg is triggered. Zero means strict '>'.
	ReorgHysteresis uint64
}

// DefaultConfig returns the constants the source hard-codes.
func DefaultConfig() Config {
	return Config{
		MinHeight:       10,
		MaxHeight:       10,
		MaxOrphans:      10,
		ReorgHysteresis: 0,
	}
}
