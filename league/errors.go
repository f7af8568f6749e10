package league

import (
	"errors"
	"fmt"
)

var (
	ErrValidationFailed = errors.New("validation failed")
	ErrNotFound         = errors.New("requested resource not found")

	ErrTeamNameRequired     = fmt.Errorf("%w: team name is required", ErrValidationFailed)
	ErrTeamNameConflict     = fmt.Errorf("%w: team name already exists", ErrValidationFailed)
	ErrMatchTeamsRequired   = fmt.Errorf("%w: winnerId and loserId are required", ErrValidationFailed)
	ErrMatchSameTeam        = fmt.Errorf("%w: winnerId and loserId must be different", ErrValidationFailed)
	ErrMatchTeamNotFound    = fmt.Errorf("%w: team(s) not found", ErrValidationFailed)
	ErrLoserScoreRequired   = fmt.Errorf("%w: loserScore is required", ErrValidationFailed)
	ErrLoserScoreOutOfRange = fmt.Errorf("%w: loserScore must be a whole number between 0 and %d", ErrValidationFailed, WinningScore)

	ErrMatchNotFound = fmt.Errorf("%w: match not found", ErrNotFound)
)
