package game

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/footyguess/footyguess/internal/auth"
)

// Service exposes the game application over HTTP JSON.
type Service struct {
	app            *App
	internalSecret string
}

// NewService creates the HTTP service. internalSecret guards the relay's
// disconnect hook.
func NewService(app *App, internalSecret string) *Service {
	return &Service{app: app, internalSecret: internalSecret}
}

// RegisterRoutes mounts all game endpoints on mux. Everything except the
// internal disconnect hook expects an authenticated identity.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	authed := func(h http.HandlerFunc) http.Handler { return auth.Middleware(h) }

	mux.Handle("POST /api/games", authed(s.handleCreate))
	mux.Handle("POST /api/games/join", authed(s.handleJoin))
	mux.Handle("GET /api/games/{id}", authed(s.handleGet))
	mux.Handle("POST /api/games/{id}/start", authed(s.handleStart))
	mux.Handle("POST /api/games/{id}/score", authed(s.handleScore))
	mux.Handle("POST /api/games/{id}/turn", authed(s.handleTurn))
	mux.Handle("POST /api/games/{id}/question", authed(s.handleQuestion))
	mux.Handle("POST /api/games/{id}/guess", authed(s.handleGuess))
	mux.Handle("POST /api/games/{id}/leave", authed(s.handleLeave))
	mux.Handle("POST /api/games/{id}/forfeit", authed(s.handleForfeit))
	mux.Handle("POST /api/games/{id}/remove-player", authed(s.handleRemovePlayer))
	mux.Handle("POST /api/games/{id}/finish", authed(s.handleFinish))
	mux.Handle("GET /api/games/{id}/results", authed(s.handleResults))

	mux.Handle("POST /api/games/{id}/socket-disconnect",
		auth.RequireInternal(s.internalSecret, http.HandlerFunc(s.handleSocketDisconnect)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels to status codes. Unrecognized errors are
// logged and reported as a generic 500 so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: ErrNotFound.Error()})
	case errors.Is(err, ErrAmbiguousID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrAmbiguousID.Error()})
	case errors.Is(err, ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrGameFull):
		writeJSON(w, http.StatusConflict, errorResponse{Error: ErrGameFull.Error()})
	case errors.Is(err, ErrInsufficientPlayers):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ErrInsufficientPlayers.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func identity(r *http.Request) (auth.Identity, bool) {
	return auth.FromContext(r.Context())
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req CreateGameRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	v, err := s.app.Create(r.Context(), id.UserID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (s *Service) handleJoin(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		GameID string `json:"gameId"`
	}
	if err := decode(r, &req); err != nil || req.GameID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "gameId is required"})
		return
	}
	res, err := s.app.Join(r.Context(), req.GameID, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleGet(w http.ResponseWriter, r *http.Request) {
	v, err := s.app.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleStart(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	g, err := s.app.Start(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Service) handleScore(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		IsCorrect bool `json:"isCorrect"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	p, err := s.app.RecordAnswer(r.Context(), r.PathValue("id"), id.UserID, req.IsCorrect)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Service) handleTurn(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		NextTurn int `json:"nextTurn"`
	}
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	res, err := s.app.AdvanceTurn(r.Context(), r.PathValue("id"), id.UserID, req.NextTurn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleQuestion(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.QuestionForRound(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Guess string `json:"guess"`
	}
	if err := decode(r, &req); err != nil || req.Guess == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "guess is required"})
		return
	}
	res, err := s.app.CheckGuess(r.Context(), r.PathValue("id"), req.Guess)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleLeave(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	res, err := s.app.Leave(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleForfeit(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	res, err := s.app.Forfeit(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req struct {
		PlayerID uuid.UUID `json:"playerId"`
	}
	if err := decode(r, &req); err != nil || req.PlayerID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "playerId is required"})
		return
	}
	v, err := s.app.RemovePlayer(r.Context(), r.PathValue("id"), id.UserID, req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Service) handleFinish(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	res, err := s.app.Finish(r.Context(), r.PathValue("id"), id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Service) handleResults(w http.ResponseWriter, r *http.Request) {
	res, err := s.app.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleSocketDisconnect is the relay's internal hook: remove a non-host
// player whose socket dropped while the game was still WAITING.
func (s *Service) handleSocketDisconnect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID uuid.UUID `json:"userId"`
	}
	if err := decode(r, &req); err != nil || req.UserID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "userId is required"})
		return
	}
	res, err := s.app.HandleDisconnect(r.Context(), r.PathValue("id"), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
