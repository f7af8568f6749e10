package models

import "time"

// MatchRecord is a match as it is stored in the league document. Canonical
// records carry winner/loser fields; records written by older revisions carry
// the symmetric team_a/team_b fields instead. Every payload field is optional so
// a record survives a load/save round trip exactly as it was found.
type MatchRecord struct {
	ID int `json:"id"`

	WinnerID        *int     `json:"winner_id,omitempty"`
	LoserID         *int     `json:"loser_id,omitempty"`
	LoserScore      *float64 `json:"loser_score,omitempty"`
	WinnerScore     *float64 `json:"winner_score,omitempty"`
	EloChangeWinner *float64 `json:"elo_change_winner,omitempty"`
	EloChangeLoser  *float64 `json:"elo_change_loser,omitempty"`

	TeamAID    *int     `json:"team_a_id,omitempty"`
	TeamBID    *int     `json:"team_b_id,omitempty"`
	ScoreA     *float64 `json:"score_a,omitempty"`
	ScoreB     *float64 `json:"score_b,omitempty"`
	EloChangeA *float64 `json:"elo_change_a,omitempty"`
	EloChangeB *float64 `json:"elo_change_b,omitempty"`

	// The same legacy shape as sent by the old client, stored verbatim.
	TeamAIDCamel *int     `json:"teamAId,omitempty"`
	TeamBIDCamel *int     `json:"teamBId,omitempty"`
	ScoreACamel  *float64 `json:"scoreA,omitempty"`
	ScoreBCamel  *float64 `json:"scoreB,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Match is the canonical view of a MatchRecord.
type Match struct {
	ID           int
	WinnerID     int
	LoserID      int
	WinnerPoints int
	LoserPoints  int
	CreatedAt    time.Time
	HasTimestamp bool
}

// PointMargin is the winner's points minus the loser's points.
func (m Match) PointMargin() int {
	return m.WinnerPoints - m.LoserPoints
}

// Timestamp returns the replay ordering key; records without a timestamp order
// as the zero time.
func (r MatchRecord) Timestamp() time.Time {
	if r.CreatedAt == nil {
		return time.Time{}
	}
	return *r.CreatedAt
}

// Legacy reports whether the record uses the symmetric team A / team B shape
// rather than winner/loser fields.
func (r MatchRecord) Legacy() bool {
	return r.WinnerID == nil && r.LoserID == nil
}

// TeamA returns the legacy team A id in either spelling.
func (r MatchRecord) TeamA() *int {
	if r.TeamAID != nil {
		return r.TeamAID
	}
	return r.TeamAIDCamel
}

func (r MatchRecord) TeamB() *int {
	if r.TeamBID != nil {
		return r.TeamBID
	}
	return r.TeamBIDCamel
}

func (r MatchRecord) ScoresAB() (a, b *float64) {
	a, b = r.ScoreA, r.ScoreB
	if a == nil {
		a = r.ScoreACamel
	}
	if b == nil {
		b = r.ScoreBCamel
	}
	return a, b
}

func (r MatchRecord) Clone() MatchRecord {
	c := r
	c.WinnerID = cloneInt(r.WinnerID)
	c.LoserID = cloneInt(r.LoserID)
	c.LoserScore = cloneFloat(r.LoserScore)
	c.WinnerScore = cloneFloat(r.WinnerScore)
	c.EloChangeWinner = cloneFloat(r.EloChangeWinner)
	c.EloChangeLoser = cloneFloat(r.EloChangeLoser)
	c.TeamAID = cloneInt(r.TeamAID)
	c.TeamBID = cloneInt(r.TeamBID)
	c.ScoreA = cloneFloat(r.ScoreA)
	c.ScoreB = cloneFloat(r.ScoreB)
	c.EloChangeA = cloneFloat(r.EloChangeA)
	c.EloChangeB = cloneFloat(r.EloChangeB)
	c.TeamAIDCamel = cloneInt(r.TeamAIDCamel)
	c.TeamBIDCamel = cloneInt(r.TeamBIDCamel)
	c.ScoreACamel = cloneFloat(r.ScoreACamel)
	c.ScoreBCamel = cloneFloat(r.ScoreBCamel)
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		c.CreatedAt = &t
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
