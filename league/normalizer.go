package league

import (
	"math"

	"github.com/Dosada05/fidel-league/models"
)

// WinningScore is the fixed score of the winning side of every canonical match.
const WinningScore = 10

// Normalize converts a stored record into the canonical match shape. It
// reports false for records that cannot be read as a winner, a loser and a
// loser score; such records are skipped by replay rather than treated as errors.
func Normalize(r models.MatchRecord) (models.Match, bool) {
	m := models.Match{ID: r.ID}
	if r.CreatedAt != nil && !r.CreatedAt.IsZero() {
		m.CreatedAt = *r.CreatedAt
		m.HasTimestamp = true
	}

	teamA, teamB := r.TeamA(), r.TeamB()
	scoreA, scoreB := r.ScoresAB()

	switch {
	case validID(r.WinnerID) && validID(r.LoserID) && finite(r.LoserScore):
		m.WinnerID, m.LoserID = *r.WinnerID, *r.LoserID
		m.WinnerPoints, m.LoserPoints = WinningScore, int(math.Round(*r.LoserScore))

	case validID(teamA) && validID(teamB) && finite(r.LoserScore):
		// written by the recompute script between schema revisions: team A won
		m.WinnerID, m.LoserID = *teamA, *teamB
		m.WinnerPoints, m.LoserPoints = WinningScore, int(math.Round(*r.LoserScore))

	case validID(teamA) && validID(teamB) && finite(scoreA) && finite(scoreB):
		a, b := int(math.Round(*scoreA)), int(math.Round(*scoreB))
		if a >= b {
			m.WinnerID, m.LoserID = *teamA, *teamB
			m.WinnerPoints, m.LoserPoints = a, b
		} else {
			m.WinnerID, m.LoserID = *teamB, *teamA
			m.WinnerPoints, m.LoserPoints = b, a
		}

	default:
		return models.Match{}, false
	}

	if m.WinnerID == m.LoserID {
		return models.Match{}, false
	}
	return m, true
}

// MatchRequest is a "record match" payload as received at the API boundary.
// It accepts camelCase and snake_case keys and the legacy two-score shape.
type MatchRequest struct {
	WinnerID   *int     `json:"winnerId,omitempty"`
	LoserID    *int     `json:"loserId,omitempty"`
	LoserScore *float64 `json:"loserScore,omitempty"`

	WinnerIDSnake   *int     `json:"winner_id,omitempty"`
	LoserIDSnake    *int     `json:"loser_id,omitempty"`
	LoserScoreSnake *float64 `json:"loser_score,omitempty"`

	TeamAID *int     `json:"teamAId,omitempty"`
	TeamBID *int     `json:"teamBId,omitempty"`
	ScoreA  *float64 `json:"scoreA,omitempty"`
	ScoreB  *float64 `json:"scoreB,omitempty"`
}

// MatchInput is a translated MatchRequest.
type MatchInput struct {
	WinnerID   int
	LoserID    int
	LoserScore float64
}

// Resolve translates the request into winner, loser and loser score. Missing
// pieces come back as zero values together with the matching validation error.
func (r MatchRequest) Resolve() (MatchInput, error) {
	winner := firstInt(r.WinnerID, r.WinnerIDSnake)
	loser := firstInt(r.LoserID, r.LoserIDSnake)
	score := firstFloat(r.LoserScore, r.LoserScoreSnake)

	if winner == nil && r.TeamAID != nil && r.TeamBID != nil && r.ScoreA != nil && r.ScoreB != nil {
		if *r.ScoreA >= *r.ScoreB {
			winner, loser, score = r.TeamAID, r.TeamBID, r.ScoreB
		} else {
			winner, loser, score = r.TeamBID, r.TeamAID, r.ScoreA
		}
	}

	if !validID(winner) || !validID(loser) {
		return MatchInput{}, ErrMatchTeamsRequired
	}
	if score == nil {
		return MatchInput{}, ErrLoserScoreRequired
	}

	return MatchInput{WinnerID: *winner, LoserID: *loser, LoserScore: *score}, nil
}

func validID(p *int) bool {
	return p != nil && *p > 0
}

func finite(p *float64) bool {
	return p != nil && !math.IsNaN(*p) && !math.IsInf(*p, 0)
}

func firstInt(ps ...*int) *int {
	for _, p := range ps {
		if p != nil {
			return p
		}
	}
	return nil
}

func firstFloat(ps ...*float64) *float64 {
	for _, p := range ps {
		if p != nil {
			return p
		}
	}
	return nil
}
