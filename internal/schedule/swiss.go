package schedule

import "sort"

// ColorHistory tracks one engine's most recent color and how many
// consecutive games it has held that color.
type ColorHistory struct {
	LastColor int // -1 black, 0 none yet, +1 white
	Streak    int
}

// PlayerStanding is the subset of standings state the Swiss ranker needs.
type PlayerStanding struct {
	EngineID int
	Points   float64
}

// SwissRoundInput carries everything needed to build one round.
type SwissRoundInput struct {
	RoundIndex        int
	Standings         []PlayerStanding
	OpponentsPlayed   map[int][]int // engineID -> opponent engine ids faced so far
	ByeHistory        map[int]bool
	ColorHistory      map[int]ColorHistory
	PairingsPlayed    map[int64]bool
	GamesPerPairing   int
	AvoidRepeats      bool
}

// SwissRoundResult is one round's pairing and fixture output.
type SwissRoundResult struct {
	Pairs    [][2]int // [white-favored-a, b] prior to color assignment
	Fixtures []Fixture
	ByeTo    int // -1 if no bye issued
}

func colorPenalty(h ColorHistory, color int) int {
	if h.LastColor == 0 || h.LastColor != color {
		return 0
	}
	if h.Streak >= 2 {
		return 100
	}
	return 10
}

// chooseColors picks the cheaper color assignment for pair (a,b), breaking
// ties by giving white to the lower id.
func chooseColors(a, b int, history map[int]ColorHistory) (white, black int) {
	ha, hb := history[a], history[b]
	option1 := colorPenalty(ha, 1) + colorPenalty(hb, -1) // a white, b black
	option2 := colorPenalty(ha, -1) + colorPenalty(hb, 1) // a black, b white
	if option1 < option2 {
		return a, b
	}
	if option2 < option1 {
		return b, a
	}
	if a < b {
		return a, b
	}
	return b, a
}

func buchholz(engineID int, standings map[int]float64, opponents map[int][]int) float64 {
	sum := 0.0
	for _, opp := range opponents[engineID] {
		sum += standings[opp]
	}
	return sum
}

// BuildRound produces one Swiss round's pairings and fixtures.
func BuildRound(in SwissRoundInput) SwissRoundResult {
	pointsByID := make(map[int]float64, len(in.Standings))
	for _, s := range in.Standings {
		pointsByID[s.EngineID] = s.Points
	}

	type ranked struct {
		id       int
		points   float64
		buchholz float64
	}
	ranks := make([]ranked, 0, len(in.Standings))
	for _, s := range in.Standings {
		ranks = append(ranks, ranked{
			id:       s.EngineID,
			points:   s.Points,
			buchholz: buchholz(s.EngineID, pointsByID, in.OpponentsPlayed),
		})
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].points != ranks[j].points {
			return ranks[i].points > ranks[j].points
		}
		if ranks[i].buchholz != ranks[j].buchholz {
			return ranks[i].buchholz > ranks[j].buchholz
		}
		return ranks[i].id < ranks[j].id
	})

	pool := make([]int, len(ranks))
	for i, r := range ranks {
		pool[i] = r.id
	}

	result := SwissRoundResult{ByeTo: -1}

	if len(pool)%2 == 1 {
		byeIdx := -1
		for i := len(pool) - 1; i >= 0; i-- {
			if !in.ByeHistory[pool[i]] {
				byeIdx = i
				break
			}
		}
		if byeIdx == -1 {
			byeIdx = len(pool) - 1
		}
		result.ByeTo = pool[byeIdx]
		pool = append(pool[:byeIdx], pool[byeIdx+1:]...)
	}

	played := func(a, b int) bool {
		if !in.AvoidRepeats {
			return false
		}
		return in.PairingsPlayed[PairKey(a, b)]
	}

	// Group consecutive equal-points players into score groups, pairing
	// within each group with a carry into the next when no legal partner
	// remains.
	var pairs [][2]int
	var carry []int
	i := 0
	for i < len(pool) {
		groupPoints := pointsByID[pool[i]]
		group := append([]int{}, carry...)
		carry = nil
		for i < len(pool) && pointsByID[pool[i]] == groupPoints {
			group = append(group, pool[i])
			i++
		}
		isLastGroup := i >= len(pool)

		for len(group) > 0 {
			a := group[0]
			rest := group[1:]
			partnerIdx := -1
			for j, b := range rest {
				if !played(a, b) {
					partnerIdx = j
					break
				}
			}
			if partnerIdx == -1 {
				if len(rest) == 0 {
					carry = append(carry, a)
					group = nil
					break
				}
				if isLastGroup {
					partnerIdx = 0
				} else {
					carry = append(carry, a)
					group = rest
					continue
				}
			}
			b := rest[partnerIdx]
			pairs = append(pairs, [2]int{a, b})
			newRest := make([]int, 0, len(rest)-1)
			for j, x := range rest {
				if j != partnerIdx {
					newRest = append(newRest, x)
				}
			}
			group = newRest
		}
	}
	if len(carry) == 1 {
		if result.ByeTo == -1 {
			result.ByeTo = carry[0]
		} else {
			pairs = append(pairs, [2]int{carry[0], result.ByeTo})
		}
	}

	result.Pairs = pairs

	if in.GamesPerPairing < 1 {
		in.GamesPerPairing = 1
	}
	for _, pr := range pairs {
		white, black := chooseColors(pr[0], pr[1], in.ColorHistory)
		for g := 0; g < in.GamesPerPairing; g++ {
			w, b := white, black
			if g%2 == 1 {
				w, b = black, white
			}
			result.Fixtures = append(result.Fixtures, Fixture{
				RoundIndex:             in.RoundIndex,
				WhiteEngineID:          w,
				BlackEngineID:          b,
				GameIndexWithinPairing: g,
				PairingID:              PairingIDFor(white, black),
			})
		}
	}

	return result
}
