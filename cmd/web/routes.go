package main

import (
	"bufio"
	"database/sql"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/markbates/goth/gothic"

	"github.com/sabo-arena/arena-bracket/internal/bracket"
	"github.com/sabo-arena/arena-bracket/internal/httputil"
	"github.com/sabo-arena/arena-bracket/internal/live"
	"github.com/sabo-arena/arena-bracket/internal/middleware"
	"github.com/sabo-arena/arena-bracket/internal/service"
	users "github.com/sabo-arena/arena-bracket/internal/user"
)

const maxAvatarForm = 3 << 20

type createTournamentRequest struct {
	service.CreateTournamentInput
	// Pasted roster, one player per line. Used when Players is empty.
	Roster string `json:"roster,omitempty"`
}

type advanceRequest struct {
	WinnerID uuid.UUID           `json:"winner_id"`
	Score    *bracket.MatchScore `json:"score,omitempty"`
}

func newRouter(app *application, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(corsOptions(allowedOrigins)))
	r.Use(app.sessions.LoadAndSave)

	r.Post("/auth/guest", func(w http.ResponseWriter, r *http.Request) {
		user, err := app.users.EnsureGuestUser(r.Context())
		if err != nil {
			httputil.InternalServerError(w, "Failed to load guest operator", err)
			return
		}
		if !app.startSession(w, r, user) {
			return
		}
		httputil.WriteJSON(w, http.StatusOK, user)
	})

	r.Get("/auth/{provider}", func(w http.ResponseWriter, r *http.Request) {
		gothic.BeginAuthHandler(w, withProvider(r))
	})

	r.Get("/auth/{provider}/callback", func(w http.ResponseWriter, r *http.Request) {
		gothUser, err := gothic.CompleteUserAuth(w, withProvider(r))
		if err != nil {
			httputil.BadRequest(w, "Authentication failure", err)
			return
		}

		user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
		if err != nil {
			writeServiceError(w, "Failed to find or create operator", err)
			return
		}
		if !app.startSession(w, r, user) {
			return
		}

		if app.loginRedirect != "" {
			http.Redirect(w, r, app.loginRedirect, http.StatusFound)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, user)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		if err := app.sessions.Destroy(r.Context()); err != nil {
			httputil.InternalServerError(w, "Failed to destroy session", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		data, err := app.tournaments.GetTournamentData(r.Context(), id)
		if err != nil {
			writeServiceError(w, "Failed to load tournament", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	})

	r.Get("/ws/tournaments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(w, r)
		if !ok {
			return
		}
		data, err := app.tournaments.GetTournamentData(r.Context(), id)
		if err != nil {
			writeServiceError(w, "Failed to load tournament", err)
			return
		}
		app.hub.ServeRoom(w, r, live.RoomFor(id), &live.Message{Type: live.TournamentUpdated, Payload: data})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(app.sessions, app.userStore))

		r.Get("/me", func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteJSON(w, http.StatusOK, middleware.GetAuthenticatedUser(r.Context()))
		})

		r.Get("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			tournaments, err := app.tournaments.GetTournamentsForUser(r.Context())
			if err != nil {
				httputil.InternalServerError(w, "Failed to get tournaments", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, tournaments)
		})

		r.Post("/tournaments", func(w http.ResponseWriter, r *http.Request) {
			var req createTournamentRequest
			if err := httputil.DecodeJSON(w, r, &req); err != nil {
				httputil.BadRequest(w, "Invalid tournament", err)
				return
			}

			input := req.CreateTournamentInput
			if len(input.Players) == 0 && req.Roster != "" {
				players, err := app.players.ParsePlayers(req.Roster)
				if err != nil {
					httputil.BadRequest(w, err.Error(), err)
					return
				}
				input.Players = players
			}

			id, err := app.tournaments.CreateTournament(r.Context(), input)
			if err != nil {
				writeServiceError(w, "Failed to create tournament", err)
				return
			}
			app.respondWithTournament(w, r, http.StatusCreated, id)
		})

		r.Post("/tournaments/{id}/regenerate", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r)
			if !ok {
				return
			}
			if err := app.tournaments.RegenerateBracket(r.Context(), id); err != nil {
				writeServiceError(w, "Failed to regenerate bracket", err)
				return
			}
			app.respondWithTournament(w, r, http.StatusOK, id)
		})

		r.Post("/matches/{id}/score", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r)
			if !ok {
				return
			}
			var score bracket.MatchScore
			if err := httputil.DecodeJSON(w, r, &score); err != nil {
				httputil.BadRequest(w, "Invalid score", err)
				return
			}
			tournamentID, err := app.matches.RecordScore(r.Context(), id, score)
			if err != nil {
				writeServiceError(w, "Failed to record score", err)
				return
			}
			app.respondWithTournament(w, r, http.StatusOK, tournamentID)
		})

		r.Post("/matches/{id}/advance", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r)
			if !ok {
				return
			}
			var req advanceRequest
			if err := httputil.DecodeJSON(w, r, &req); err != nil {
				httputil.BadRequest(w, "Invalid advancement", err)
				return
			}
			tournamentID, err := app.matches.AdvanceWinner(r.Context(), id, req.WinnerID, req.Score)
			if err != nil {
				writeServiceError(w, "Failed to advance winner", err)
				return
			}
			app.respondWithTournament(w, r, http.StatusOK, tournamentID)
		})

		r.Put("/matches/{id}/game-info", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r)
			if !ok {
				return
			}
			var info bracket.GameInfo
			if err := httputil.DecodeJSON(w, r, &info); err != nil {
				httputil.BadRequest(w, "Invalid game info", err)
				return
			}
			tournamentID, err := app.matches.AssignGameInfo(r.Context(), id, info)
			if err != nil {
				writeServiceError(w, "Failed to assign game info", err)
				return
			}
			app.respondWithTournament(w, r, http.StatusOK, tournamentID)
		})

		r.Post("/players/{id}/avatar", func(w http.ResponseWriter, r *http.Request) {
			id, ok := urlID(w, r)
			if !ok {
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxAvatarForm)
			file, header, err := r.FormFile("avatar")
			if err != nil {
				httputil.BadRequest(w, "Missing avatar file", err)
				return
			}
			defer file.Close()

			// Clients often send parts as application/octet-stream
			body := bufio.NewReader(file)
			contentType := header.Header.Get("Content-Type")
			if contentType == "" || contentType == "application/octet-stream" {
				head, _ := body.Peek(512)
				contentType = http.DetectContentType(head)
			}

			url, err := app.players.UploadAvatar(r.Context(), id, contentType, body)
			if err != nil {
				writeServiceError(w, "Failed to upload avatar", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"avatar_url": url})
		})
	})

	return r
}

// corsOptions only lets browsers send the session cookie cross-origin to
// origins that were listed explicitly.
func corsOptions(allowedOrigins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: len(allowedOrigins) > 0 && !slices.Contains(allowedOrigins, "*"),
		MaxAge:           300,
	}
}

// withProvider copies the chi path parameter into the query, where gothic
// looks for the provider name.
func withProvider(r *http.Request) *http.Request {
	r = r.Clone(r.Context())
	q := r.URL.Query()
	q.Set("provider", chi.URLParam(r, "provider"))
	r.URL.RawQuery = q.Encode()
	return r
}

// startSession binds user to a fresh session token.
func (app *application) startSession(w http.ResponseWriter, r *http.Request, user *users.User) bool {
	if err := app.sessions.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, "Failed to renew session", err)
		return false
	}
	app.sessions.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
	return true
}

func urlID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (app *application) respondWithTournament(w http.ResponseWriter, r *http.Request, status int, id uuid.UUID) {
	data, err := app.tournaments.GetTournamentData(r.Context(), id)
	if err != nil {
		httputil.InternalServerError(w, "Failed to load tournament", err)
		return
	}
	httputil.WriteJSON(w, status, data)
}

// writeServiceError maps domain errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, bracket.ErrUnknownMatchID):
		httputil.NotFound(w, "Not found", err)
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrUnsupportedImage),
		errors.Is(err, bracket.ErrNotEnoughPlayers),
		errors.Is(err, bracket.ErrDuplicatePlayer):
		httputil.BadRequest(w, err.Error(), err)
	case errors.Is(err, bracket.ErrInvalidAdvancement),
		errors.Is(err, bracket.ErrDuplicateAdvancement),
		errors.Is(err, bracket.ErrPrematureComposition),
		errors.Is(err, bracket.ErrInvalidBracket),
		errors.Is(err, service.ErrTournamentCompleted):
		httputil.Conflict(w, err.Error(), err)
	case errors.Is(err, service.ErrNotOwner):
		httputil.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		httputil.ServiceUnavailable(w, msg, err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}
