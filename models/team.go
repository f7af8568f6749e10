package models

import "time"

type Team struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Rating            float64   `json:"elo"`
	Wins              int       `json:"wins"`
	Losses            int       `json:"losses"`
	PointDifferential int       `json:"plus_minus"`
	CreatedAt         time.Time `json:"created_at"`
}

// Played is the number of matches the team appears in.
func (t Team) Played() int {
	return t.Wins + t.Losses
}
