package game

import "errors"

// Sentinel errors returned by App operations. The service layer maps these to
// HTTP status codes; callers check them with errors.Is.
var (
	// ErrNotFound means no game matched the given id or short code.
	ErrNotFound = errors.New("game not found")

	// ErrAmbiguousID means a short code matched more than one game.
	ErrAmbiguousID = errors.New("game code is ambiguous")

	// ErrInvalidState means the operation is not allowed in the game's
	// current status, e.g. starting a game that is not WAITING.
	ErrInvalidState = errors.New("operation not allowed in current game state")

	// ErrForbidden means the requester lacks the required role, or is acting
	// on behalf of a user who is not in the game.
	ErrForbidden = errors.New("forbidden")

	// ErrGameFull means the roster is at maxPlayers.
	ErrGameFull = errors.New("game is full")

	// ErrInsufficientPlayers means a start was attempted with fewer than two
	// players.
	ErrInsufficientPlayers = errors.New("at least 2 players required")
)
