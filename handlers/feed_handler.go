package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/fidel-league/feed"
	"github.com/Dosada05/fidel-league/services"
)

type FeedHandler struct {
	hub           *feed.Hub
	leagueService services.LeagueService
	upgrader      websocket.Upgrader
	logger        *slog.Logger
}

// NewFeedHandler accepts websocket subscribers from any of allowedOrigins;
// "*" allows every origin.
func NewFeedHandler(hub *feed.Hub, ls services.LeagueService, allowedOrigins []string, logger *slog.Logger) *FeedHandler {
	return &FeedHandler{
		hub:           hub,
		leagueService: ls,
		logger:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// ServeStandings upgrades the connection, sends the current standings and
// keeps the client subscribed to every later update.
func (h *FeedHandler) ServeStandings(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := feed.NewClient(h.hub, conn, feed.StandingsRoom)
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()

	teams, err := h.leagueService.ListTeams(r.Context())
	if err != nil {
		h.logger.Error("failed to load standings snapshot", slog.String("client_id", client.ID), slog.Any("error", err))
		return
	}
	if err := client.Send(feed.StandingsMessage(teams)); err != nil {
		h.logger.Error("failed to send standings snapshot", slog.String("client_id", client.ID), slog.Any("error", err))
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
