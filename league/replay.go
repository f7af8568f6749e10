package league

import (
	"sort"

	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/rating"
)

// SkipReason says why a record did not take part in a replay.
type SkipReason string

const (
	SkipUnparseable SkipReason = "unparseable"
	SkipUnknownTeam SkipReason = "unknown_team"
)

// Skipped identifies a record left out of a replay.
type Skipped struct {
	MatchID int        `json:"match_id"`
	Reason  SkipReason `json:"reason"`
}

// ReplayResult is the state rebuilt from a match history.
type ReplayResult struct {
	Teams   []models.Team
	Matches []models.MatchRecord
	Skipped []Skipped
}

type replayEntry struct {
	index int
	match models.Match
}

// Replay rebuilds every team's rating, record and point differential from the
// identity state by folding over the history in chronological order. Inputs are
// not modified; teams and records come back in their input order, with the
// rating deltas of every replayed record refreshed.
//
// The result depends only on the team identities and the set of records, so
// replaying a replayed state yields the same ratings.
func Replay(teams []models.Team, records []models.MatchRecord) ReplayResult {
	res := ReplayResult{
		Teams:   make([]models.Team, len(teams)),
		Matches: make([]models.MatchRecord, len(records)),
	}

	byID := make(map[int]*models.Team, len(teams))
	for i, t := range teams {
		res.Teams[i] = resetTeam(t)
		byID[t.ID] = &res.Teams[i]
	}

	entries := make([]replayEntry, 0, len(records))
	for i, r := range records {
		res.Matches[i] = r.Clone()
		m, ok := Normalize(r)
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{MatchID: r.ID, Reason: SkipUnparseable})
			continue
		}
		entries = append(entries, replayEntry{index: i, match: m})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return chronological(entries[i].match, entries[j].match)
	})

	for _, e := range entries {
		winner, okW := byID[e.match.WinnerID]
		loser, okL := byID[e.match.LoserID]
		if !okW || !okL {
			res.Skipped = append(res.Skipped, Skipped{MatchID: e.match.ID, Reason: SkipUnknownTeam})
			continue
		}

		d := applyMatch(winner, loser, e.match)
		rec := &res.Matches[e.index]
		rec.EloChangeWinner = &d.Winner
		rec.EloChangeLoser = &d.Loser
		if rec.Legacy() {
			refreshLegacyDeltas(rec, e.match, d)
		}
	}

	return res
}

// refreshLegacyDeltas keeps the per-side deltas of a team A / team B record in
// step with the winner/loser pair.
func refreshLegacyDeltas(rec *models.MatchRecord, m models.Match, d rating.Delta) {
	da, db := d.Winner, d.Loser
	if a := rec.TeamA(); a != nil && *a != m.WinnerID {
		da, db = d.Loser, d.Winner
	}
	rec.EloChangeA = &da
	rec.EloChangeB = &db
}

// applyMatch is the single place a match outcome changes team state. Both the
// incremental append and the replay go through it.
func applyMatch(winner, loser *models.Team, m models.Match) rating.Delta {
	out := rating.Apply(winner.Rating, loser.Rating)

	winner.Rating = out.NewWinnerRating
	loser.Rating = out.NewLoserRating
	winner.Wins++
	loser.Losses++
	winner.PointDifferential += m.PointMargin()
	loser.PointDifferential -= m.PointMargin()

	return out.Delta
}

func resetTeam(t models.Team) models.Team {
	t.Rating = rating.InitialRating
	t.Wins = 0
	t.Losses = 0
	t.PointDifferential = 0
	return t
}

// chronological orders by timestamp, then id. A missing timestamp orders as the
// zero time, which keeps the ordering total.
func chronological(a, b models.Match) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
