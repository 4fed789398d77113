package schedule

// Opening is a deterministic starting position plus pre-played moves for
// one fixture.
type Opening struct {
	ID    string
	FEN   string
	Moves []string
}

// AssignRoundRobin maps each fixture ordinal to an opening for a dense
// round-robin fixture list. When openings is empty every fixture gets the
// zero-value Opening (standard start).
func AssignRoundRobin(fixtureCount int, openings []Opening, gamesPerPairing int) []Opening {
	out := make([]Opening, fixtureCount)
	if len(openings) == 0 {
		return out
	}
	if gamesPerPairing < 1 {
		gamesPerPairing = 1
	}
	assigned := 0
	pairingIndex := 0
	for i := 0; i < fixtureCount; i++ {
		if gamesPerPairing <= 1 || assigned%gamesPerPairing == 0 {
			pairingIndex = assigned / gamesPerPairing
		}
		out[i] = openings[pairingIndex%len(openings)]
		assigned++
	}
	return out
}

// AssignSwissForIndex maps one global game index (dense across all rounds
// played so far) to an opening.
func AssignSwissForIndex(globalGameIndex int, openings []Opening, gamesPerPairing int) Opening {
	if len(openings) == 0 {
		return Opening{}
	}
	pairingIndex := globalGameIndex
	if gamesPerPairing > 0 {
		pairingIndex = globalGameIndex / gamesPerPairing
	}
	return openings[pairingIndex%len(openings)]
}
