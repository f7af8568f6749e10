package models

// LeagueDocument is the full persisted state of one league.
type LeagueDocument struct {
	Teams       []Team        `json:"teams"`
	Matches     []MatchRecord `json:"matches"`
	NextTeamID  int           `json:"nextTeamId"`
	NextMatchID int           `json:"nextMatchId"`
}

func NewLeagueDocument() *LeagueDocument {
	return &LeagueDocument{
		Teams:       []Team{},
		Matches:     []MatchRecord{},
		NextTeamID:  1,
		NextMatchID: 1,
	}
}

// Normalize fills in missing collections and repairs id counters so that an
// id already present in the document is never handed out again.
func (d *LeagueDocument) Normalize() {
	if d.Teams == nil {
		d.Teams = []Team{}
	}
	if d.Matches == nil {
		d.Matches = []MatchRecord{}
	}
	if d.NextTeamID < 1 {
		d.NextTeamID = 1
	}
	if d.NextMatchID < 1 {
		d.NextMatchID = 1
	}
	for _, t := range d.Teams {
		if t.ID >= d.NextTeamID {
			d.NextTeamID = t.ID + 1
		}
	}
	for _, m := range d.Matches {
		if m.ID >= d.NextMatchID {
			d.NextMatchID = m.ID + 1
		}
	}
}

func (d *LeagueDocument) Clone() *LeagueDocument {
	c := &LeagueDocument{
		Teams:       make([]Team, len(d.Teams)),
		Matches:     make([]MatchRecord, len(d.Matches)),
		NextTeamID:  d.NextTeamID,
		NextMatchID: d.NextMatchID,
	}
	copy(c.Teams, d.Teams)
	for i, m := range d.Matches {
		c.Matches[i] = m.Clone()
	}
	return c
}

func (d *LeagueDocument) TeamByID(id int) (int, bool) {
	for i := range d.Teams {
		if d.Teams[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
