package league

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/Dosada05/fidel-league/models"
	"github.com/Dosada05/fidel-league/rating"
)

// The operations below work on an explicit document value. Mutating operations
// change doc in place and leave it untouched when they return an error, so the
// caller decides whether the new state is persisted.

// RecordResult is what recording a match produces.
type RecordResult struct {
	Match     models.MatchRecord `json:"match"`
	Delta     rating.Delta       `json:"rating_delta"`
	Standings []models.Team      `json:"standings"`
}

// Preview is the projected outcome of a match that has not been recorded.
type Preview struct {
	Winner models.Team    `json:"winner"`
	Loser  models.Team    `json:"loser"`
	Result rating.Outcome `json:"result"`
}

func AddTeam(doc *models.LeagueDocument, name string, now time.Time) (models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Team{}, ErrTeamNameRequired
	}
	for _, t := range doc.Teams {
		if strings.EqualFold(strings.TrimSpace(t.Name), name) {
			return models.Team{}, ErrTeamNameConflict
		}
	}

	team := models.Team{
		ID:        doc.NextTeamID,
		Name:      name,
		Rating:    rating.InitialRating,
		CreatedAt: now.UTC(),
	}
	doc.NextTeamID++
	doc.Teams = append(doc.Teams, team)

	return team, nil
}

// RecordMatch appends a match and updates both teams incrementally. Appending
// to the end of the history cannot change any earlier result, so no replay is
// needed; the stored timestamp never precedes an existing one, which keeps the
// new match last in replay order.
func RecordMatch(doc *models.LeagueDocument, in MatchInput, now time.Time) (RecordResult, error) {
	if in.WinnerID <= 0 || in.LoserID <= 0 {
		return RecordResult{}, ErrMatchTeamsRequired
	}
	if in.WinnerID == in.LoserID {
		return RecordResult{}, ErrMatchSameTeam
	}
	if err := validateLoserScore(in.LoserScore); err != nil {
		return RecordResult{}, err
	}

	wi, okW := doc.TeamByID(in.WinnerID)
	li, okL := doc.TeamByID(in.LoserID)
	if !okW || !okL {
		return RecordResult{}, ErrMatchTeamNotFound
	}

	created := now.UTC()
	if latest := latestTimestamp(doc.Matches); created.Before(latest) {
		created = latest
	}

	m := models.Match{
		ID:           doc.NextMatchID,
		WinnerID:     in.WinnerID,
		LoserID:      in.LoserID,
		WinnerPoints: WinningScore,
		LoserPoints:  int(in.LoserScore),
		CreatedAt:    created,
		HasTimestamp: true,
	}
	d := applyMatch(&doc.Teams[wi], &doc.Teams[li], m)

	rec := canonicalRecord(m, d)
	doc.NextMatchID++
	doc.Matches = append(doc.Matches, rec)

	return RecordResult{
		Match:     rec.Clone(),
		Delta:     d,
		Standings: ListTeams(doc),
	}, nil
}

// ListTeams returns copies of the teams ordered by rating, highest first, with
// ties broken by id.
func ListTeams(doc *models.LeagueDocument) []models.Team {
	teams := make([]models.Team, len(doc.Teams))
	copy(teams, doc.Teams)
	sort.SliceStable(teams, func(i, j int) bool {
		if teams[i].Rating != teams[j].Rating {
			return teams[i].Rating > teams[j].Rating
		}
		return teams[i].ID < teams[j].ID
	})
	return teams
}

// ListMatches returns copies of the stored records, newest first, with ties
// broken by id. Records without a timestamp come last.
func ListMatches(doc *models.LeagueDocument) []models.MatchRecord {
	matches := make([]models.MatchRecord, len(doc.Matches))
	for i, m := range doc.Matches {
		matches[i] = m.Clone()
	}
	sort.SliceStable(matches, func(i, j int) bool {
		ti, tj := matches[i].Timestamp(), matches[j].Timestamp()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matches[i].ID > matches[j].ID
	})
	return matches
}

// DeleteMatch removes a match and rebuilds the whole league from the remaining
// history. ELO updates are path dependent, so removing a match from the middle
// changes every later result along the affected chains.
func DeleteMatch(doc *models.LeagueDocument, id int) ([]Skipped, error) {
	idx := -1
	for i, m := range doc.Matches {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrMatchNotFound
	}

	remaining := make([]models.MatchRecord, 0, len(doc.Matches)-1)
	remaining = append(remaining, doc.Matches[:idx]...)
	remaining = append(remaining, doc.Matches[idx+1:]...)
	doc.Matches = remaining

	return Recompute(doc), nil
}

// Recompute replaces every derived field in doc with the result of a full
// replay and returns the records that could not take part.
func Recompute(doc *models.LeagueDocument) []Skipped {
	res := Replay(doc.Teams, doc.Matches)
	doc.Teams = res.Teams
	doc.Matches = res.Matches
	return res.Skipped
}

// ClearMatches drops the whole history and resets every team to its initial
// state. Team ids and names are kept, and match ids are not handed out again.
func ClearMatches(doc *models.LeagueDocument) int {
	n := len(doc.Matches)
	doc.Matches = []models.MatchRecord{}
	for i := range doc.Teams {
		doc.Teams[i] = resetTeam(doc.Teams[i])
	}
	return n
}

func PreviewMatch(doc *models.LeagueDocument, winnerID, loserID int) (Preview, error) {
	if winnerID <= 0 || loserID <= 0 {
		return Preview{}, ErrMatchTeamsRequired
	}
	if winnerID == loserID {
		return Preview{}, ErrMatchSameTeam
	}
	wi, okW := doc.TeamByID(winnerID)
	li, okL := doc.TeamByID(loserID)
	if !okW || !okL {
		return Preview{}, ErrMatchTeamNotFound
	}

	w, l := doc.Teams[wi], doc.Teams[li]
	return Preview{
		Winner: w,
		Loser:  l,
		Result: rating.Apply(w.Rating, l.Rating),
	}, nil
}

func validateLoserScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return ErrLoserScoreOutOfRange
	}
	if score < 0 || score > WinningScore || score != math.Trunc(score) {
		return ErrLoserScoreOutOfRange
	}
	return nil
}

func latestTimestamp(records []models.MatchRecord) time.Time {
	var latest time.Time
	for _, r := range records {
		if ts := r.Timestamp(); ts.After(latest) {
			latest = ts
		}
	}
	return latest
}

func canonicalRecord(m models.Match, d rating.Delta) models.MatchRecord {
	winner, loser := m.WinnerID, m.LoserID
	winnerScore, loserScore := float64(m.WinnerPoints), float64(m.LoserPoints)
	created := m.CreatedAt

	return models.MatchRecord{
		ID:              m.ID,
		WinnerID:        &winner,
		LoserID:         &loser,
		WinnerScore:     &winnerScore,
		LoserScore:      &loserScore,
		EloChangeWinner: &d.Winner,
		EloChangeLoser:  &d.Loser,
		CreatedAt:       &created,
	}
}
