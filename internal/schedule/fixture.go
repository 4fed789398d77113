// Package schedule produces ordered fixture lists for round-robin and
// Swiss tournaments.
package schedule

import "fmt"

// Fixture is one scheduled game instance.
type Fixture struct {
	RoundIndex             int
	WhiteEngineID          int
	BlackEngineID          int
	GameIndexWithinPairing int
	PairingID              string
}

// PairingIDFor returns the canonical "pair_<lo>_<hi>" identifier for an
// unordered pair of engine ids.
func PairingIDFor(a, b int) string {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("pair_%d_%d", lo, hi)
}

// PairKey returns a canonical, orderable key for an unordered pair.
func PairKey(a, b int) int64 {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return int64(lo)<<32 | int64(hi)
}
