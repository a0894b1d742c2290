package rating

import "math"

// KFactor is the ELO K-factor used for club matches.
const KFactor = 32.0

// DefaultElo is what a newly registered player starts with.
const DefaultElo = 1000

// EloChange calculates rating changes using the standard ELO formula
// Returns (winnerChange, loserChange)
func EloChange(winnerElo, loserElo int) (int, int) {
	expectedWinner := 1.0 / (1.0 + math.Pow(10, float64(loserElo-winnerElo)/400))
	expectedLoser := 1.0 - expectedWinner

	winnerChange := KFactor * (1.0 - expectedWinner)
	loserChange := KFactor * (0.0 - expectedLoser)

	return int(math.Round(winnerChange)), int(math.Round(loserChange))
}
