package schedule

import "testing"

func standingsFor(points ...float64) []PlayerStanding {
	out := make([]PlayerStanding, len(points))
	for i, p := range points {
		out[i] = PlayerStanding{EngineID: i, Points: p}
	}
	return out
}

func TestBuildRoundEvenFieldNoBye(t *testing.T) {
	in := SwissRoundInput{
		Standings: standingsFor(3, 2, 1, 0),
	}
	round := BuildRound(in)
	if round.ByeTo != -1 {
		t.Errorf("ByeTo = %d, want -1 for an even field", round.ByeTo)
	}
	if len(round.Pairs) != 2 {
		t.Fatalf("got %d pairs, want 2", len(round.Pairs))
	}
	if len(round.Fixtures) != 2 {
		t.Fatalf("got %d fixtures, want 2", len(round.Fixtures))
	}
}

func TestBuildRoundOddFieldIssuesBye(t *testing.T) {
	in := SwissRoundInput{
		Standings: standingsFor(3, 2, 1),
	}
	round := BuildRound(in)
	if round.ByeTo == -1 {
		t.Fatal("expected a bye for an odd field")
	}
	if len(round.Pairs) != 1 {
		t.Fatalf("got %d pairs, want 1", len(round.Pairs))
	}
}

func TestBuildRoundByeAvoidsRepeatRecipient(t *testing.T) {
	// Engines 0,1,2 rank in that order by points; engine 2 (the natural bye
	// candidate, lowest ranked) already had a bye, so it should fall to 1.
	in := SwissRoundInput{
		Standings:  standingsFor(3, 2, 1),
		ByeHistory: map[int]bool{2: true},
	}
	round := BuildRound(in)
	if round.ByeTo != 1 {
		t.Errorf("ByeTo = %d, want 1 (next lowest-ranked engine that hasn't already had a bye)", round.ByeTo)
	}
}

func TestBuildRoundAvoidRepeatsSkipsPlayedPairing(t *testing.T) {
	in := SwissRoundInput{
		Standings:      standingsFor(3, 3, 3, 3),
		AvoidRepeats:   true,
		PairingsPlayed: map[int64]bool{PairKey(0, 1): true},
	}
	round := BuildRound(in)
	for _, pr := range round.Pairs {
		if PairKey(pr[0], pr[1]) == PairKey(0, 1) {
			t.Errorf("pairing (0,1) was repeated despite AvoidRepeats")
		}
	}
}

func TestChooseColorsBalancesStreak(t *testing.T) {
	history := map[int]ColorHistory{
		1: {LastColor: 1, Streak: 3},
		2: {LastColor: -1, Streak: 1},
	}
	white, black := chooseColors(1, 2, history)
	if white != 2 || black != 1 {
		t.Errorf("chooseColors(1, 2) = (%d, %d), want engine 2 to get white to break its long white streak", white, black)
	}
}

func TestChooseColorsTiesBreakOnLowerID(t *testing.T) {
	white, black := chooseColors(5, 2, map[int]ColorHistory{})
	if white != 2 || black != 5 {
		t.Errorf("chooseColors(5, 2) with no history = (%d, %d), want lower id (2) to get white", white, black)
	}
}

func TestBuildRoundGamesPerPairingAlternatesColor(t *testing.T) {
	in := SwissRoundInput{
		Standings:       standingsFor(1, 1),
		GamesPerPairing: 2,
	}
	round := BuildRound(in)
	if len(round.Fixtures) != 2 {
		t.Fatalf("got %d fixtures, want 2", len(round.Fixtures))
	}
	if round.Fixtures[0].WhiteEngineID == round.Fixtures[1].WhiteEngineID {
		t.Errorf("both games in the pairing have the same white engine")
	}
}
