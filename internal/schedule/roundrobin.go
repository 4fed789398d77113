package schedule

// RoundRobinParams configures the circle-method scheduler.
type RoundRobinParams struct {
	EngineCount       int
	DoubleRoundRobin  bool
	GamesPerPairing   int
	RepeatCount       int
}

const byeSentinel = -1

// BuildRoundRobin produces a dense, deterministic fixture list using the
// circle method. Odd engine counts get a sentinel bye seat; fixtures
// touching the bye seat are never emitted.
//
// A double round-robin's second cycle inverts colors at the pairing level
// relative to the first cycle (rather than repeating them byte-for-byte),
// so that combined with the per-game color swap within a pairing, every
// unordered pair's colors alternate across all of its games.
func BuildRoundRobin(p RoundRobinParams) []Fixture {
	if p.EngineCount < 2 {
		return nil
	}
	if p.GamesPerPairing < 1 {
		p.GamesPerPairing = 1
	}
	if p.RepeatCount < 1 {
		p.RepeatCount = 1
	}

	teams := buildTeamList(p.EngineCount)
	teamCount := len(teams)
	rounds := teamCount - 1

	baseFixtures := make([]Fixture, 0, rounds*(teamCount/2)*p.GamesPerPairing)
	work := make([]int, teamCount)
	copy(work, teams)

	for round := 0; round < rounds; round++ {
		swapColors := round%2 == 1
		for i := 0; i < teamCount/2; i++ {
			a := work[i]
			b := work[teamCount-1-i]
			if a == byeSentinel || b == byeSentinel {
				continue
			}

			pairSwap := swapColors
			if i == 0 {
				pairSwap = !pairSwap
			}

			for g := 0; g < p.GamesPerPairing; g++ {
				gameSwap := pairSwap
				if g%2 == 1 {
					gameSwap = !gameSwap
				}
				white, black := a, b
				if gameSwap {
					white, black = b, a
				}
				baseFixtures = append(baseFixtures, Fixture{
					RoundIndex:             round,
					WhiteEngineID:          white,
					BlackEngineID:          black,
					GameIndexWithinPairing: g,
					PairingID:              PairingIDFor(a, b),
				})
			}
		}
		rotateTeams(work)
	}

	cycles := 1
	if p.DoubleRoundRobin {
		cycles = 2
	}

	var out []Fixture
	for repeat := 0; repeat < p.RepeatCount; repeat++ {
		for cycle := 0; cycle < cycles; cycle++ {
			invert := cycle%2 == 1
			roundOffset := repeat*rounds*cycles + cycle*rounds
			for _, f := range baseFixtures {
				fx := f
				fx.RoundIndex += roundOffset
				if invert {
					fx.WhiteEngineID, fx.BlackEngineID = fx.BlackEngineID, fx.WhiteEngineID
				}
				out = append(out, fx)
			}
		}
	}
	return out
}

func buildTeamList(n int) []int {
	teams := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		teams = append(teams, i)
	}
	if n%2 == 1 {
		teams = append(teams, byeSentinel)
	}
	return teams
}

// rotateTeams keeps index 0 fixed and shifts the rest forward by one,
// moving the last element into index 1.
func rotateTeams(teams []int) {
	if len(teams) < 3 {
		return
	}
	last := teams[len(teams)-1]
	for i := len(teams) - 1; i > 1; i-- {
		teams[i] = teams[i-1]
	}
	teams[1] = last
}
