package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/fidel-league/league"
	"github.com/Dosada05/fidel-league/services"
)

type LeagueHandler struct {
	leagueService services.LeagueService
	logger        *slog.Logger
}

func NewLeagueHandler(ls services.LeagueService, logger *slog.Logger) *LeagueHandler {
	return &LeagueHandler{
		leagueService: ls,
		logger:        logger,
	}
}

type createTeamInput struct {
	Name string `json:"name"`
}

// ListTeams godoc
// @Summary Standings
// @Tags teams
// @Description Teams ordered by rating, highest first.
// @Produce json
// @Success 200 {array} models.Team
// @Failure 503 {object} map[string]string "Storage unavailable"
// @Router /teams [get]
func (h *LeagueHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.leagueService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, teams, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// CreateTeam godoc
// @Summary Add a team
// @Tags teams
// @Accept json
// @Produce json
// @Param input body createTeamInput true "Team name"
// @Success 201 {object} map[string]interface{} "Team created"
// @Failure 400 {object} map[string]string "Missing or duplicate name"
// @Router /teams [post]
func (h *LeagueHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input createTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	team, err := h.leagueService.AddTeam(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, team, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// ListMatches godoc
// @Summary Match history
// @Tags matches
// @Description Stored match records, newest first.
// @Produce json
// @Success 200 {array} models.MatchRecord
// @Router /matches [get]
func (h *LeagueHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.leagueService.ListMatches(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, matches, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// RecordMatch godoc
// @Summary Record a match
// @Tags matches
// @Description The winner always scores 10. Legacy teamAId/teamBId/scoreA/scoreB payloads are accepted.
// @Accept json
// @Produce json
// @Param input body league.MatchRequest true "Match result"
// @Success 201 {object} map[string]interface{} "matchId, ratingDelta, updatedStandings"
// @Failure 400 {object} map[string]string "Validation error"
// @Router /matches [post]
func (h *LeagueHandler) RecordMatch(w http.ResponseWriter, r *http.Request) {
	var req league.MatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	input, err := req.Resolve()
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	res, err := h.leagueService.RecordMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	response := jsonResponse{
		"matchId":          res.Match.ID,
		"ratingDelta":      res.Delta,
		"eloDelta":         res.Delta,
		"match":            res.Match,
		"updatedStandings": res.Standings,
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// DeleteMatch godoc
// @Summary Delete a match
// @Tags matches
// @Description Removes the match and replays the remaining history.
// @Produce json
// @Param matchID path int true "Match ID"
// @Success 200 {object} map[string]interface{} "ok"
// @Failure 404 {object} map[string]string "Match not found"
// @Router /matches/{matchID} [delete]
func (h *LeagueHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	skipped, err := h.leagueService.DeleteMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ok": true, "skipped": skippedIDs(skipped)}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// PreviewMatch godoc
// @Summary Preview rating changes
// @Tags matches
// @Produce json
// @Param winnerId query int true "Winner team ID"
// @Param loserId query int true "Loser team ID"
// @Success 200 {object} league.Preview
// @Failure 400 {object} map[string]string "Validation error"
// @Router /matches/preview [get]
func (h *LeagueHandler) PreviewMatch(w http.ResponseWriter, r *http.Request) {
	winnerID, err := getIDFromQuery(r, "winnerId")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}
	loserID, err := getIDFromQuery(r, "loserId")
	if err != nil {
		badRequestResponse(w, r, h.logger, err)
		return
	}

	preview, err := h.leagueService.PreviewMatch(r.Context(), winnerID, loserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, preview, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

// Recompute godoc
// @Summary Replay the whole history
// @Tags league
// @Produce json
// @Success 200 {object} map[string]interface{} "ok and the ids of skipped records"
// @Router /recompute [post]
func (h *LeagueHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	skipped, err := h.leagueService.Recompute(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, h.logger, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"ok": true, "skipped": skippedIDs(skipped)}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func (h *LeagueHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": "ok"}, nil); err != nil {
		serverErrorResponse(w, r, h.logger, err)
	}
}

func skippedIDs(skipped []league.Skipped) []int {
	ids := make([]int, 0, len(skipped))
	for _, s := range skipped {
		ids = append(ids, s.MatchID)
	}
	return ids
}
