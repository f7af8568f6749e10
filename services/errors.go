package services

import "errors"

// Errors shared by the services and the HTTP error mapping. Validation and
// not-found errors come from the league package.
var (
	// Loading or saving the league document failed. Nothing was changed.
	ErrPersistenceFailed = errors.New("league storage unavailable")

	ErrLeagueLoadFailed = errors.New("failed to load league")
	ErrLeagueSaveFailed = errors.New("failed to save league")
)
