// Package rating implements the pairwise ELO update used for every match.
// The same functions back the live update, the replay and the client preview,
// so all three produce identical deltas for identical inputs.
package rating

import "math"

const (
	// KFactor is shared by every code path that computes a delta.
	KFactor = 20.0

	InitialRating = 1500.0

	// spread is the rating gap at which the stronger side is expected to win
	// ten times as often.
	spread = 400.0
)

// Delta is the signed rating change for both sides of one match.
type Delta struct {
	Winner float64 `json:"winner"`
	Loser  float64 `json:"loser"`
}

// Outcome is a delta together with the ratings it produces.
type Outcome struct {
	Delta
	NewWinnerRating float64 `json:"new_winner_rating"`
	NewLoserRating  float64 `json:"new_loser_rating"`
}

// Expected returns the expected score of a side rated ra against a side rated rb.
func Expected(ra, rb float64) float64 {
	return 1 / (1 + math.Pow(10, (rb-ra)/spread))
}

// ComputeDelta returns the cent-rounded deltas for a win by the side rated
// winner over the side rated loser.
func ComputeDelta(winner, loser, k float64) Delta {
	expectedWinner := Expected(winner, loser)
	expectedLoser := Expected(loser, winner)

	return Delta{
		Winner: Round2(k * (1 - expectedWinner)),
		Loser:  Round2(k * (0 - expectedLoser)),
	}
}

// Apply computes the delta with KFactor and the resulting ratings.
func Apply(winner, loser float64) Outcome {
	d := ComputeDelta(winner, loser, KFactor)
	return Outcome{
		Delta:           d,
		NewWinnerRating: Round2(winner + d.Winner),
		NewLoserRating:  Round2(loser + d.Loser),
	}
}

// Round2 rounds half-up at the second decimal place.
func Round2(x float64) float64 {
	return math.Floor(x*100+0.5) / 100
}
