package bracket

import "errors"

// Every error here is a contract violation by the caller: the engine does no
// I/O so nothing is worth retrying.
var (
	// Winner not in the match, a slot still empty, or the match already decided.
	ErrInvalidAdvancement = errors.New("invalid advancement")
	// The downstream match has no free slot left for the incoming player.
	ErrDuplicateAdvancement = errors.New("duplicate advancement")
	// Semifinals composed before every feeding final is decided.
	ErrPrematureComposition = errors.New("semifinals cannot start yet")
	ErrUnknownMatchID       = errors.New("unknown match id")

	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrDuplicatePlayer  = errors.New("player registered twice")
	ErrInvalidBracket   = errors.New("invalid bracket")
)
